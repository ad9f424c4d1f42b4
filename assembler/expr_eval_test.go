// expr_eval_test.go

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package assembler

import (
	"testing"
)

func evalOK(t *testing.T, e *Evaluator, expr string) int64 {
	t.Helper()
	v, err := e.Eval(expr)
	if err != nil {
		t.Fatalf("Eval(%q) failed: %v", expr, err)
	}
	return v
}

// ---------------------------------------------------------------------------
// Literals and operators
// ---------------------------------------------------------------------------

func TestEval_Literals(t *testing.T) {
	tests := []struct {
		expr string
		want int64
	}{
		{"42", 42},
		{"$FF", 255},
		{"$ff", 255},
		{"0x1234", 0x1234},
		{"%1010", 10},
		{"0b1111", 15},
		{"%.#.#", 5},
		{"1_000", 1000},
		{"'A'", 65},
		{"3.7", 3},
	}
	e := NewEvaluator()
	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			if got := evalOK(t, e, tc.expr); got != tc.want {
				t.Errorf("Eval(%q) = %d, want %d", tc.expr, got, tc.want)
			}
		})
	}
}

func TestEval_Precedence(t *testing.T) {
	tests := []struct {
		expr string
		want int64
	}{
		{"2+3*4", 14},
		{"(2+3)*4", 20},
		{"10-4-3", 3},
		{"2**3**2", 512},
		{"1<<4|1", 17},
		{"$F0 & $3C", 0x30},
		{"$F0 ^ $FF", 0x0F},
		{"17 % 5", 2},
		{"-3+10", 7},
		{"-(2+3)", -5},
		{"~0", -1},
		{"!0", 1},
		{"!5", 0},
		{"<$1234", 0x34},
		{">$1234", 0x12},
		{"^$123456", 0x12},
		{"1+2 == 3", 1},
		{"3 != 3", 0},
		{"2 >= 2 && 1 <= 0", 0},
		{"0 || 4 > 3", 1},
		{"10/3", 3},
		{"10.0/4*2", 5},
	}
	e := NewEvaluator()
	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			if got := evalOK(t, e, tc.expr); got != tc.want {
				t.Errorf("Eval(%q) = %d, want %d", tc.expr, got, tc.want)
			}
		})
	}
}

func TestEval_Condition(t *testing.T) {
	e := NewEvaluator()
	ok, err := e.EvalCondition("1<2&&3>2")
	if err != nil {
		t.Fatalf("EvalCondition failed: %v", err)
	}
	if !ok {
		t.Error("1<2&&3>2 should be true")
	}
	// only exactly 1 is true
	ok, err = e.EvalCondition("2")
	if err != nil {
		t.Fatalf("EvalCondition failed: %v", err)
	}
	if ok {
		t.Error("2 should not be a true condition")
	}
}

func TestEval_Functions(t *testing.T) {
	tests := []struct {
		expr string
		want int64
	}{
		{"sqrt(16)", 4},
		{"abs(-5)", 5},
		{"min(3, 7)", 3},
		{"max(3, 7)", 7},
		{"pow(2, 10)", 1024},
		{"floor(7.9)", 7},
		{"ceil(7.1)", 8},
		{"round(2.5)", 3},
		{"sgn(-9)", -1},
		{"strlen(\"hello\")", 5},
		{"1 + abs(min(-4, 2))", 5},
	}
	e := NewEvaluator()
	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			if got := evalOK(t, e, tc.expr); got != tc.want {
				t.Errorf("Eval(%q) = %d, want %d", tc.expr, got, tc.want)
			}
		})
	}
}

func TestEval_Random(t *testing.T) {
	e := NewEvaluator()
	e.Seed(1)
	for i := 0; i < 50; i++ {
		v := evalOK(t, e, "random(1, 6)")
		if v < 1 || v > 6 {
			t.Fatalf("random(1, 6) = %d", v)
		}
	}
}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

func TestEval_Errors(t *testing.T) {
	tests := []struct {
		expr string
		kind ErrorKind
	}{
		{"1/0", KindDivideByZero},
		{"5 % (2-2)", KindDivideByZero},
		{"2 +", KindParse},
		{"(1+2", KindParse},
		{"1+2)", KindParse},
		{"sqrt(1, 2)", KindParse},
		{"sqrt(-1)", KindOverflow},
		{"2 ** 63", KindOverflow},
		{"3 ** 40", KindOverflow},
		{"10 ** 19", KindOverflow},
	}
	e := NewEvaluator()
	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			_, err := e.Eval(tc.expr)
			if err == nil {
				t.Fatalf("Eval(%q) should fail", tc.expr)
			}
			if got := KindOf(err); got != tc.kind {
				t.Errorf("Eval(%q) error kind = %v, want %v (%v)", tc.expr, got, tc.kind, err)
			}
		})
	}
}

func TestEval_Power(t *testing.T) {
	tests := []struct {
		expr string
		want int64
	}{
		{"2 ** 10", 1024},
		{"0 ** 0", 1},
		{"7 ** 1", 7},
		{"-1 ** 3", -1},
		{"2 ** 62", 1 << 62},
		{"3 ** 39", 4052555153018976267},
		{"1 ** $7FFFFFFFFFFF", 1},
		{"0 ** $7FFFFFFFFFFFFFFF", 0},
	}
	e := NewEvaluator()
	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			got, err := e.Eval(tc.expr)
			if err != nil {
				t.Fatalf("Eval(%q): %v", tc.expr, err)
			}
			if got != tc.want {
				t.Errorf("Eval(%q) = %d, want %d", tc.expr, got, tc.want)
			}
		})
	}
}

func TestEval_Range(t *testing.T) {
	e := NewEvaluator()
	if _, err := e.EvalRange("256", 0, 255); KindOf(err) != KindOverflow {
		t.Errorf("EvalRange(256, 0, 255) error = %v, want overflow", err)
	}
	v, err := e.EvalRange("$FF", 0, 255)
	if err != nil || v != 255 {
		t.Errorf("EvalRange($FF) = %d, %v", v, err)
	}
}

// ---------------------------------------------------------------------------
// Lookups
// ---------------------------------------------------------------------------

func TestEval_SymbolLookup(t *testing.T) {
	e := NewEvaluator()
	calls := 0
	err := e.DefineSymbolLookup(`reg[0-9]+`, func(name string) (string, bool) {
		calls++
		return name[3:], true
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := evalOK(t, e, "reg12 * 2"); got != 24 {
		t.Errorf("reg12 * 2 = %d, want 24", got)
	}
	evalOK(t, e, "reg12 * 2")
	if calls != 2 {
		t.Errorf("lookup expressions should not be cached, got %d calls", calls)
	}
	if _, err := e.Eval("regx"); err == nil {
		t.Error("unmatched identifier should fail")
	}
}

func TestEval_Cache(t *testing.T) {
	e := NewEvaluator()
	evalOK(t, e, "6*7")
	if v, ok := e.cached("6*7"); !ok || v != 42 {
		t.Errorf("cached(6*7) = %d, %v", v, ok)
	}
	evalOK(t, e, "'x'")
	if _, ok := e.cached("'x'"); ok {
		t.Error("character literals must not be cached")
	}
}
