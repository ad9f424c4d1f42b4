package assembler

import (
	"math"
	"unicode/utf8"
)

type builtinFunction struct {
	args int
	fn   func(e *Evaluator, args []number) (number, error)
}

func floatFunc(f func(float64) float64) builtinFunction {
	return builtinFunction{args: 1, fn: func(_ *Evaluator, a []number) (number, error) {
		return floatResult(f(a[0].asFloat()))
	}}
}

func floatFunc2(f func(float64, float64) float64) builtinFunction {
	return builtinFunction{args: 2, fn: func(_ *Evaluator, a []number) (number, error) {
		return floatResult(f(a[0].asFloat(), a[1].asFloat()))
	}}
}

func floatResult(f float64) (number, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return number{}, newError(KindOverflow, "Function result is out of range")
	}
	return number{f: f, float: true}, nil
}

// builtinFunctions is keyed by lower-case name. strlen is handled
// separately because its argument is a string.
var builtinFunctions = map[string]builtinFunction{
	"abs": {args: 1, fn: func(_ *Evaluator, a []number) (number, error) {
		if a[0].float {
			return number{f: math.Abs(a[0].f), float: true}, nil
		}
		if a[0].i < 0 {
			return number{i: -a[0].i}, nil
		}
		return a[0], nil
	}},
	"acos":  floatFunc(math.Acos),
	"asin":  floatFunc(math.Asin),
	"atan":  floatFunc(math.Atan),
	"cbrt":  floatFunc(math.Cbrt),
	"ceil":  floatFunc(math.Ceil),
	"cos":   floatFunc(math.Cos),
	"cosh":  floatFunc(math.Cosh),
	"deg":   floatFunc(func(x float64) float64 { return x * 180 / math.Pi }),
	"exp":   floatFunc(math.Exp),
	"floor": floatFunc(math.Floor),
	"frac":  floatFunc(func(x float64) float64 { _, f := math.Modf(x); return f }),
	"hypot": floatFunc2(math.Hypot),
	"ln":    floatFunc(math.Log),
	"log10": floatFunc(math.Log10),
	"pow":   floatFunc2(math.Pow),
	"rad":   floatFunc(func(x float64) float64 { return x * math.Pi / 180 }),
	"round": floatFunc(math.Round),
	"sin":   floatFunc(math.Sin),
	"sinh":  floatFunc(math.Sinh),
	"sqrt":  floatFunc(math.Sqrt),
	"tan":   floatFunc(math.Tan),
	"tanh":  floatFunc(math.Tanh),
	"sgn": {args: 1, fn: func(_ *Evaluator, a []number) (number, error) {
		f := a[0].asFloat()
		switch {
		case f < 0:
			return number{i: -1}, nil
		case f > 0:
			return number{i: 1}, nil
		}
		return number{}, nil
	}},
	"min": {args: 2, fn: func(_ *Evaluator, a []number) (number, error) {
		if a[1].asFloat() < a[0].asFloat() {
			return a[1], nil
		}
		return a[0], nil
	}},
	"max": {args: 2, fn: func(_ *Evaluator, a []number) (number, error) {
		if a[1].asFloat() > a[0].asFloat() {
			return a[1], nil
		}
		return a[0], nil
	}},
	"random": {args: 2, fn: func(e *Evaluator, a []number) (number, error) {
		lo, hi := a[0].asInt(), a[1].asInt()
		if hi < lo {
			return number{}, newError(KindOverflow, "random() upper bound is below lower bound")
		}
		return number{i: lo + e.rng.Int64N(hi-lo+1)}, nil
	}},
	"strlen": {args: 1},
}

func (e *Evaluator) callFunction(name string, args [][]ExpressionElement) (number, error) {
	f := builtinFunctions[name]
	if len(args) != f.args {
		return number{}, newError(KindParse, "Function '%s' expects %d argument(s)", name, f.args)
	}
	if name == "strlen" {
		arg := args[0]
		if len(arg) != 1 || !isQuotedWord(arg[0].Word) {
			return number{}, newError(KindParse, "strlen() expects a string")
		}
		s, err := decodeLiteral(arg[0].Word)
		if err != nil {
			return number{}, err
		}
		return number{i: int64(utf8.RuneCountInString(s))}, nil
	}
	vals := make([]number, len(args))
	for i, arg := range args {
		if len(arg) == 0 {
			return number{}, newError(KindParse, "Missing argument to '%s'", name)
		}
		v, err := e.evalValue(arg)
		if err != nil {
			return number{}, err
		}
		vals[i] = v
	}
	return f.fn(e, vals)
}
