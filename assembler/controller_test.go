// controller_test.go

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
	"bytes"
	"errors"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// assembleSource assembles src with the default options and fails the test
// on any error.
func assembleSource(t *testing.T, src string) *Result {
	t.Helper()
	res, err := AssembleString("test.s", src, DefaultOptions())
	if err != nil {
		var log bytes.Buffer
		if res != nil && res.Log != nil {
			_ = res.Log.Dump(&log)
		}
		t.Fatalf("assembly failed: %v\n%s", err, log.String())
	}
	return res
}

// assembleFailure assembles src and returns the error it must produce.
func assembleFailure(t *testing.T, src string) (*Result, error) {
	t.Helper()
	res, err := AssembleString("test.s", src, DefaultOptions())
	if err == nil {
		t.Fatalf("expected assembly to fail, got % X", res.Code)
	}
	return res, err
}

func assertCode(t *testing.T, res *Result, want []byte) {
	t.Helper()
	if !bytes.Equal(res.Code, want) {
		t.Errorf("code mismatch\n  got:  % X\n  want: % X", res.Code, want)
	}
}

func logContains(res *Result, text string) bool {
	for _, e := range res.Log.Entries() {
		if strings.Contains(e.Message, text) {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Passes
// ---------------------------------------------------------------------------

func TestController_SinglePass(t *testing.T) {
	res := assembleSource(t, `
start   .byte 1, 2, 3
        .word start
`)
	if res.Passes != 1 {
		t.Errorf("passes = %d, want 1", res.Passes)
	}
	assertCode(t, res, []byte{1, 2, 3, 0, 0})
}

func TestController_ForwardReference(t *testing.T) {
	res := assembleSource(t, `
        .word target
target  .byte 1
`)
	if res.Passes != 2 {
		t.Errorf("passes = %d, want 2", res.Passes)
	}
	assertCode(t, res, []byte{2, 0, 1})
}

func TestController_ChainedForwardReference(t *testing.T) {
	// a is still unknown when pass 1 reaches the .byte, and pass 1 errors
	// are final
	res, err := assembleFailure(t, `
        .byte a
a       = b
b       = 5
`)
	if !errors.Is(err, ErrAssemblyFailed) {
		t.Fatalf("error = %v, want ErrAssemblyFailed", err)
	}
	if res.Passes != 2 {
		t.Errorf("passes = %d, want 2", res.Passes)
	}
	entries := res.Log.Entries()
	if len(entries) != 1 || !strings.Contains(entries[0].Message, "Symbol 'a' not defined") || entries[0].LineNumber != 2 {
		t.Errorf("log = %v, want one undefined-symbol error for a on line 2", entries)
	}
}

func TestController_ForwardChainInOrder(t *testing.T) {
	res := assembleSource(t, `
        .byte a
b       = 5
a       = b
`)
	if res.Passes != 2 {
		t.Errorf("passes = %d, want 2", res.Passes)
	}
	assertCode(t, res, []byte{5})
}

func TestController_PCChangeForcesPass(t *testing.T) {
	res := assembleSource(t, `
        .fill size
        .byte *
size    = 2
`)
	assertCode(t, res, []byte{0, 0, 2})
}

func TestController_TooManyPasses(t *testing.T) {
	res, err := assembleFailure(t, `
start
        .fill (fin - start) == 0
fin
`)
	if !errors.Is(err, ErrTooManyPasses) {
		t.Fatalf("error = %v, want ErrTooManyPasses", err)
	}
	if res.Passes != DefaultMaxPasses {
		t.Errorf("passes = %d, want %d", res.Passes, DefaultMaxPasses)
	}
	if !logContains(res, "Too many passes") {
		t.Error("log should report the pass ceiling")
	}
}

func TestController_Origin(t *testing.T) {
	opts := DefaultOptions()
	opts.Origin = 0xC000
	res, err := AssembleString("test.s", "here .word here\n", opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.Origin != 0xC000 {
		t.Errorf("origin = $%X, want $C000", res.Origin)
	}
	assertCode(t, res, []byte{0x00, 0xC0})

	opts.Origin = 0x10000
	if _, err := AssembleString("test.s", " .byte 0\n", opts); err == nil {
		t.Error("origin beyond the address space should fail")
	}
}

func TestController_ProgramCounter(t *testing.T) {
	res := assembleSource(t, `
* = $1000
        .byte <*, >*
        .org $1004
        .byte $AA
`)
	if res.Origin != 0x1000 || res.End != 0x1005 {
		t.Errorf("range = $%X-$%X", res.Origin, res.End)
	}
	assertCode(t, res, []byte{0x00, 0x10, 0, 0, 0xAA})
}

func TestController_Relocate(t *testing.T) {
	res := assembleSource(t, `
* = $0801
        .relocate $C000
code    .word code
        .endrelocate
after   .word after
`)
	assertCode(t, res, []byte{0x00, 0xC0, 0x03, 0x08})
}

func TestController_End(t *testing.T) {
	res := assembleSource(t, `
        .byte 1
        .end
        .byte 2
`)
	assertCode(t, res, []byte{1})
}

// ---------------------------------------------------------------------------
// Labels and scopes
// ---------------------------------------------------------------------------

func TestController_AnonymousLabels(t *testing.T) {
	res := assembleSource(t, `
* = $1000
-       .byte 0
-       .byte 1
        .word -
        .word --
        .word +
        .word ++
+       .byte 2
+       .byte 3
`)
	assertCode(t, res, []byte{
		0x00, 0x01,
		0x01, 0x10,
		0x00, 0x10,
		0x0A, 0x10,
		0x0B, 0x10,
		0x02, 0x03,
	})
}

func TestController_AnonymousUnresolved(t *testing.T) {
	res, err := assembleFailure(t, " .word +\n")
	if !errors.Is(err, ErrAssemblyFailed) {
		t.Fatalf("error = %v, want ErrAssemblyFailed", err)
	}
	if !logContains(res, "anonymous") {
		t.Errorf("log should name the anonymous label: %v", res.Log.Entries())
	}
}

func TestController_LocalLabels(t *testing.T) {
	res := assembleSource(t, `
first   .byte 0
_tmp    .byte 1
        .word _tmp
second  .byte 2
_tmp    .byte 3
        .word _tmp
`)
	assertCode(t, res, []byte{0, 1, 1, 0, 2, 3, 5, 0})
}

func TestController_Blocks(t *testing.T) {
	res := assembleSource(t, `
outer   .block
value   = 1
inner   .block
value   = 2
        .byte value
        .endblock
        .byte value
        .endblock
        .byte outer.inner.value
`)
	assertCode(t, res, []byte{2, 1, 2})
}

func TestController_UnnamedBlocks(t *testing.T) {
	res := assembleSource(t, `
        .block
n       = 1
        .byte n
        .endblock
        .block
n       = 2
        .byte n
        .endblock
`)
	assertCode(t, res, []byte{1, 2})
}

func TestController_LocalLabelsPerBlock(t *testing.T) {
	src := `
* = $10
A       .block
_x      .byte 1
        .word _x
        .endblock
B       .block
_x      .byte 2
        .word _x
        .endblock
`
	res := assembleSource(t, src)
	assertCode(t, res, []byte{1, 0x10, 0, 2, 0x13, 0})

	res, err := assembleFailure(t, src+"        .word _x\n")
	if !errors.Is(err, ErrAssemblyFailed) {
		t.Fatalf("error = %v, want ErrAssemblyFailed", err)
	}
	if !logContains(res, "Symbol '_x' not defined") {
		t.Errorf("log = %v", res.Log.Entries())
	}
}

func TestController_Variables(t *testing.T) {
	res := assembleSource(t, `
count   .var 1
        .byte count
count   .var count + 1
        .byte count
        .let count = count * 10
        .byte count
`)
	assertCode(t, res, []byte{1, 2, 20})
}

func TestController_Defines(t *testing.T) {
	opts := DefaultOptions()
	opts.Defines = map[string]int64{"VERSION": 3}
	res, err := AssembleString("test.s", " .byte VERSION\n", opts)
	if err != nil {
		t.Fatal(err)
	}
	assertCode(t, res, []byte{3})

	if _, err := AssembleString("test.s", "VERSION = 4\n", opts); !errors.Is(err, ErrAssemblyFailed) {
		t.Errorf("redefining a define error = %v", err)
	}
}

func TestController_CompoundStatements(t *testing.T) {
	res := assembleSource(t, "loop .byte 1 : .byte 2 : .byte ':'\n")
	assertCode(t, res, []byte{1, 2, ':'})
}

// ---------------------------------------------------------------------------
// Conditions
// ---------------------------------------------------------------------------

func TestController_IfElifElse(t *testing.T) {
	tests := []struct {
		a, b int
		want byte
	}{
		{1, 0, 1},
		{0, 1, 2},
		{0, 0, 3},
		{1, 1, 1},
	}
	for _, tc := range tests {
		src := strings.NewReplacer("A", string(rune('0'+tc.a)), "B", string(rune('0'+tc.b))).Replace(`
        .if A
        .byte 1
        .elif B
        .byte 2
        .else
        .byte 3
        .endif
`)
		res := assembleSource(t, src)
		assertCode(t, res, []byte{tc.want})
	}
}

func TestController_IfDefNested(t *testing.T) {
	res := assembleSource(t, `
FLAG    = 1
        .ifdef FLAG
        .ifndef OTHER
        .byte 4
        .else
        .byte 5
        .endif
        .endif
        .if 0
        .if 1
        .byte 6
        .endif
        .endif
`)
	assertCode(t, res, []byte{4})
}

func TestController_ConditionSuppressesBlocks(t *testing.T) {
	res := assembleSource(t, `
        .if 0
m       .macro
        .byte 9
        .endmacro
        .repeat 3
        .byte 9
        .endrepeat
        .endif
        .byte 1
`)
	assertCode(t, res, []byte{1})
}

// ---------------------------------------------------------------------------
// Repeat and loops
// ---------------------------------------------------------------------------

func TestController_RepeatNested(t *testing.T) {
	res := assembleSource(t, `
        .repeat 3
        .byte 0
        .repeat 2
        .byte 1
        .endrepeat
        .endrepeat
`)
	assertCode(t, res, []byte{0, 1, 1, 0, 1, 1, 0, 1, 1})
}

func TestController_RepeatZero(t *testing.T) {
	res := assembleSource(t, `
        .repeat 0
        .byte 1
        .endrepeat
        .byte 2
`)
	assertCode(t, res, []byte{2})
}

func TestController_RepeatAnonymousLabels(t *testing.T) {
	res := assembleSource(t, `
* = $10
        .repeat 2
-       .byte <-
        .endrepeat
`)
	assertCode(t, res, []byte{0x10, 0x11})
}

func TestController_RepeatLabelsPerIteration(t *testing.T) {
	res := assembleSource(t, `
* = $20
        .repeat 2
lbl     .byte <lbl
        .repeat 2
in      .byte <in
        .endrepeat
        .endrepeat
`)
	assertCode(t, res, []byte{0x20, 0x21, 0x22, 0x23, 0x24, 0x25})
}

func TestController_ForNextLabelsPerIteration(t *testing.T) {
	res := assembleSource(t, `
* = $30
        .for i = 0, i < 3
lbl     .byte <lbl + i
        .next
`)
	assertCode(t, res, []byte{0x30, 0x32, 0x34})
}

func TestController_ForNextAccumulates(t *testing.T) {
	res := assembleSource(t, `
sum     .var 0
        .for i = 1, i <= 4
sum     .var sum + i
        .next
        .byte sum
`)
	assertCode(t, res, []byte{10})
}

func TestController_ForNext(t *testing.T) {
	res := assembleSource(t, `
        .for i = 0, i < 4
        .byte i * 2
        .next
`)
	assertCode(t, res, []byte{0, 2, 4, 6})
}

func TestController_ForNextStep(t *testing.T) {
	res := assembleSource(t, `
        .for i = 1, i < 100, i = i * 2
        .byte i
        .next
        .for j = 10, j > 0, -3
        .byte j
        .next
`)
	assertCode(t, res, []byte{1, 2, 4, 8, 16, 32, 64, 10, 7, 4, 1})
}

func TestController_ForNextNested(t *testing.T) {
	res := assembleSource(t, `
        .for y = 0, y < 2
        .for x = 0, x < 3
        .byte y * 3 + x
        .next
        .next
`)
	assertCode(t, res, []byte{0, 1, 2, 3, 4, 5})
}

func TestController_ForNextBreak(t *testing.T) {
	res := assembleSource(t, `
        .for i = 0, i < 10
        .if i == 3
        .break
        .endif
        .byte i
        .next
        .byte $FF
`)
	assertCode(t, res, []byte{0, 1, 2, 0xFF})
}

func TestController_ForNextBreakInner(t *testing.T) {
	res := assembleSource(t, `
        .for y = 0, y < 2
        .for x = 0, x < 5
        .if x == 2
        .break
        .endif
        .byte y * 10 + x
        .next
        .next
`)
	assertCode(t, res, []byte{0, 1, 10, 11})
}

func TestController_ForNextRunaway(t *testing.T) {
	_, err := assembleFailure(t, `
        .for i = 0, 1, 0
        .next
`)
	if KindOf(err) != KindStructural {
		t.Errorf("error = %v, want a structural error", err)
	}
}

// ---------------------------------------------------------------------------
// Macros and segments
// ---------------------------------------------------------------------------

func TestController_Macro(t *testing.T) {
	res := assembleSource(t, `
add     .macro a, b=10
        .byte \a + \b
        .endmacro
        .add 1, 2
        .add 5
        .ADD 7, 1
`)
	assertCode(t, res, []byte{3, 15, 8})
}

func TestController_MacroPositional(t *testing.T) {
	res := assembleSource(t, `
pair    .macro first, second
        .byte \2, \1
        .endmacro
        .pair 1, 2
`)
	assertCode(t, res, []byte{2, 1})
}

func TestController_MacroQuotedArgument(t *testing.T) {
	res := assembleSource(t, `
text    .macro s
        .string "<@{s}>"
        .endmacro
        .text "hi"
`)
	assertCode(t, res, []byte("<hi>"))
}

func TestController_MacroLabelScope(t *testing.T) {
	res := assembleSource(t, `
store   .macro v
_x      .byte \v
        .word _x
        .endmacro
one     .store 7
two     .store 9
        .word one, two
`)
	assertCode(t, res, []byte{7, 0, 0, 9, 3, 0, 0, 0, 3, 0})
}

func TestController_MacroLabelsPerInvocation(t *testing.T) {
	res := assembleSource(t, `
* = $40
put     .macro v
lbl     .byte \v, <lbl
        .endmacro
        .put 1
        .put 1
`)
	assertCode(t, res, []byte{1, 0x40, 1, 0x42})

	// the same call twice yields the same bytes
	one := assembleSource(t, "put .macro\nlbl .byte 7\n .word lbl - *\n .endmacro\n .put\n")
	two := assembleSource(t, "put .macro\nlbl .byte 7\n .word lbl - *\n .endmacro\n .put\n .put\n")
	if !bytes.Equal(two.Code[:len(one.Code)], one.Code) || !bytes.Equal(two.Code[len(one.Code):], one.Code) {
		t.Errorf("expansions differ: % X then % X", one.Code, two.Code)
	}
}

func TestController_MacroNestedInvocation(t *testing.T) {
	res := assembleSource(t, `
inner   .macro v
        .byte \v
        .endmacro
outer   .macro v
        .inner \v
        .inner \v + 1
        .endmacro
        .outer 4
`)
	assertCode(t, res, []byte{4, 5})
}

func TestController_MacroRecursion(t *testing.T) {
	_, err := assembleFailure(t, `
loop    .macro
        .loop
        .endmacro
        .loop
`)
	if KindOf(err) != KindStructural {
		t.Errorf("error = %v, want a structural error", err)
	}
}

func TestController_Segments(t *testing.T) {
	res := assembleSource(t, `
        .segment data
        .byte 9
        .endsegment
        .byte 1
        .dsegment data
        .dsegment data
`)
	assertCode(t, res, []byte{1, 9, 9})
}

func TestMacro_ExpandIsRepeatable(t *testing.T) {
	m := &Macro{
		Name:   "put",
		Params: []MacroParam{{Name: "v", Position: 1}},
		Body:   []*SourceLine{NewSourceLine("m.s", 2, `        .byte \v, \1`)},
	}
	call := NewSourceLine("m.s", 9, " .put 5")
	call.Operand = "5"

	first, err := m.Expand(call)
	if err != nil {
		t.Fatal(err)
	}
	second, err := m.Expand(call)
	if err != nil {
		t.Fatal(err)
	}
	if first[0].Text() != second[0].Text() || first[0].Text() != "        .byte 5, 5" {
		t.Errorf("expansions = %q, %q", first[0].Text(), second[0].Text())
	}
	if first[0] == second[0] {
		t.Error("each expansion must produce fresh lines")
	}
	if m.Body[0].Text() != `        .byte \v, \1` {
		t.Errorf("expansion modified the body: %q", m.Body[0].Text())
	}

	call.Operand = "1, 2"
	if _, err := m.Expand(call); KindOf(err) != KindParse {
		t.Errorf("too many arguments error = %v", err)
	}
}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

func TestController_ErrorHandling(t *testing.T) {
	tests := []struct {
		name       string
		src        string
		structural bool
		message    string
	}{
		{name: "undefined symbol", src: " .byte nowhere\n", message: "not defined"},
		{name: "overflow", src: " .byte 256\n", message: "Illegal quantity"},
		{name: "divide by zero", src: " .byte 1/0\n", message: "divide by zero"},
		{name: "redefined label", src: "x .byte 1\nx .byte 2\n", message: "redefined"},
		{name: "unknown directive", src: " .bogus 1\n", message: "Unknown instruction"},
		{name: "bad expression", src: " .byte 1 +\n", message: "end of expression"},
		{name: "label and variable", src: "v .var 1\nv = 2\n", message: "variable"},
		{name: "endif without if", src: " .endif\n", structural: true},
		{name: "else after else", src: " .if 1\n .else\n .else\n .endif\n", structural: true},
		{name: "missing endif", src: " .if 1\n .byte 1\n", structural: true},
		{name: "missing endrepeat", src: " .repeat 2\n .byte 1\n", structural: true},
		{name: "next without for", src: " .next\n", structural: true},
		{name: "break outside loop", src: " .break\n", structural: true},
		{name: "nested macro definition", src: "a .macro\nb .macro\n .endmacro\n .endmacro\n", structural: true},
		{name: "reserved macro name", src: "byte .macro\n .endmacro\n", structural: true},
		{name: "missing endblock", src: " .block\n .byte 1\n", structural: true},
		{name: "duplicate macro parameter", src: "m .macro a, a\n .endmacro\n", structural: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := assembleFailure(t, tc.src)
			if tc.structural {
				if KindOf(err) != KindStructural {
					t.Errorf("error = %v, want a structural error", err)
				}
				return
			}
			if !errors.Is(err, ErrAssemblyFailed) {
				t.Fatalf("error = %v, want ErrAssemblyFailed", err)
			}
			if !logContains(res, tc.message) {
				t.Errorf("log does not mention %q: %v", tc.message, res.Log.Entries())
			}
		})
	}
}

func TestController_BlockDirectiveErrorsAreImmediate(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"if", " .if 1/0\n .byte 1\n .endif\n"},
		{"elif", " .if 0\n .elif 1/0\n .endif\n"},
		{"repeat", " .repeat 1/0\n .byte 1\n .endrepeat\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := assembleFailure(t, tc.src)
			if !errors.Is(err, ErrAssemblyFailed) {
				t.Fatalf("error = %v, want ErrAssemblyFailed", err)
			}
			if res.Passes != 1 {
				t.Errorf("passes = %d, want 1", res.Passes)
			}
			if !logContains(res, "divide by zero") {
				t.Errorf("log = %v", res.Log.Entries())
			}
		})
	}
}

func TestController_ErrorsCarryPosition(t *testing.T) {
	res, _ := assembleFailure(t, " .byte 1\n .byte 999\n")
	entries := res.Log.Entries()
	if len(entries) != 1 {
		t.Fatalf("got %d log entries, want 1: %v", len(entries), entries)
	}
	if entries[0].Filename != "test.s" || entries[0].LineNumber != 2 {
		t.Errorf("entry position = %s:%d", entries[0].Filename, entries[0].LineNumber)
	}
	if !strings.HasPrefix(entries[0].String(), "test.s:2: error:") {
		t.Errorf("entry = %q", entries[0].String())
	}
}

func TestKind_Recoverable(t *testing.T) {
	recoverable := []ErrorKind{KindUndefined, KindOverflow, KindInvalidPC, KindDivideByZero, KindSymbolCollision}
	for _, k := range recoverable {
		if !k.Recoverable() {
			t.Errorf("%v should be recoverable", k)
		}
	}
	for _, k := range []ErrorKind{KindParse, KindSymbol, KindStructural} {
		if k.Recoverable() {
			t.Errorf("%v should not be recoverable", k)
		}
	}
	if KindOf(errors.New("io")) != KindStructural {
		t.Error("foreign errors should be treated as structural")
	}
}

// ---------------------------------------------------------------------------
// Diagnostics from source
// ---------------------------------------------------------------------------

func TestController_WarningsFromFinalPassOnly(t *testing.T) {
	res := assembleSource(t, `
        .warn "check ", later
        .byte later
later   = 3
`)
	if res.Passes != 2 {
		t.Errorf("passes = %d, want 2", res.Passes)
	}
	if res.Log.WarningCount() != 1 {
		t.Fatalf("warnings = %d, want 1: %v", res.Log.WarningCount(), res.Log.Entries())
	}
	if !logContains(res, "check 3") {
		t.Errorf("warning text = %v", res.Log.Entries())
	}
}

func TestController_WarningsAsErrors(t *testing.T) {
	opts := DefaultOptions()
	opts.WarningsAsErrors = true
	_, err := AssembleString("test.s", " .warnif 1, \"careful\"\n", opts)
	if !errors.Is(err, ErrWarningsAsErrors) {
		t.Errorf("error = %v, want ErrWarningsAsErrors", err)
	}
}

func TestController_Assert(t *testing.T) {
	assembleSource(t, " .assert 2 + 2 == 4\n")

	res, err := assembleFailure(t, " .assert 2 + 2 == 5, \"math is broken\"\n")
	if !errors.Is(err, ErrAssemblyFailed) {
		t.Fatalf("error = %v", err)
	}
	if !logContains(res, "math is broken") {
		t.Errorf("log = %v", res.Log.Entries())
	}

	res, _ = assembleFailure(t, " .errorif 1, \"stop\"\n")
	if res.Log.ErrorCount() != 1 {
		t.Errorf("errors = %d, want 1", res.Log.ErrorCount())
	}
}

func TestController_Echo(t *testing.T) {
	lines, err := NewSourceHandler(nil).ReadString("echo.s", `
        .echo "value=", v
        .byte v
v       = 42
`)
	if err != nil {
		t.Fatal(err)
	}
	ctx := NewAssemblyContext(DefaultOptions())
	var out bytes.Buffer
	ctx.Echo = &out
	if _, err := AssembleContext(ctx, lines); err != nil {
		t.Fatal(err)
	}
	if out.String() != "value=42\n" {
		t.Errorf("echo output = %q", out.String())
	}
}

// ---------------------------------------------------------------------------
// Listing
// ---------------------------------------------------------------------------

func TestWriteListing(t *testing.T) {
	res := assembleSource(t, `
* = $1000
start   .byte 1, 2
        .word start
`)
	var buf bytes.Buffer
	if err := WriteListing(&buf, res.Lines); err != nil {
		t.Fatal(err)
	}
	listing := buf.String()
	for _, want := range []string{"00001000  01 02", "00001002  00 10", "start   .byte 1, 2"} {
		if !strings.Contains(listing, want) {
			t.Errorf("listing missing %q:\n%s", want, listing)
		}
	}
}
