// expr_eval.go - Shunting-yard expression evaluator

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
	"math"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// number is an intermediate value. Arithmetic stays integral until a
// non-integral operand takes part.
type number struct {
	i     int64
	f     float64
	float bool
}

func (n number) asFloat() float64 {
	if n.float {
		return n.f
	}
	return float64(n.i)
}

func (n number) asInt() int64 {
	if n.float {
		return int64(n.f)
	}
	return n.i
}

func (n number) isZero() bool {
	if n.float {
		return n.f == 0
	}
	return n.i == 0
}

func boolNumber(b bool) number {
	if b {
		return number{i: 1}
	}
	return number{}
}

// SymbolLookup resolves an identifier the symbol tables do not know. It
// reports false when the name cannot be resolved.
type SymbolLookup func(name string) (string, bool)

type symbolLookup struct {
	re *regexp.Regexp
	fn SymbolLookup
}

// Evaluator evaluates arithmetic expressions. Symbol-free expressions are
// memoized by their text.
type Evaluator struct {
	lookups []symbolLookup
	cache   map[string]int64
	rng     *rand.Rand
}

// NewEvaluator returns an evaluator with an empty cache.
func NewEvaluator() *Evaluator {
	seed := uint64(time.Now().UnixNano())
	return &Evaluator{
		cache: make(map[string]int64),
		rng:   rand.New(rand.NewPCG(seed, seed>>1|1)),
	}
}

// Seed makes random() reproducible.
func (e *Evaluator) Seed(seed uint64) {
	e.rng = rand.New(rand.NewPCG(seed, seed>>1|1))
}

// DefineSymbolLookup registers fn for identifiers that wholly match
// pattern. Lookups run in registration order.
func (e *Evaluator) DefineSymbolLookup(pattern string, fn SymbolLookup) error {
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return err
	}
	e.lookups = append(e.lookups, symbolLookup{re: re, fn: fn})
	return nil
}

func (e *Evaluator) hasLookup(name string) bool {
	for _, l := range e.lookups {
		if l.re.MatchString(name) {
			return true
		}
	}
	return false
}

// Eval evaluates expr, truncating a non-integral result.
func (e *Evaluator) Eval(expr string) (int64, error) {
	key := strings.TrimSpace(expr)
	if v, ok := e.cache[key]; ok {
		return v, nil
	}
	elems, err := lexExpression(key)
	if err != nil {
		return 0, err
	}
	cacheable := true
	for i, el := range elems {
		switch {
		case el.Type == TypeFunction && el.Word == "random":
			cacheable = false
		case el.Type != TypeOperand:
		case isQuotedWord(el.Word):
			cacheable = false
			s, err := decodeLiteral(el.Word)
			if err != nil {
				return 0, err
			}
			if r := []rune(s); len(r) == 1 {
				elems[i] = operandElement(number{i: int64(r[0])})
			}
		case !isNumericWord(el.Word):
			cacheable = false
		}
	}
	v, err := e.EvalElements(elems)
	if err != nil {
		return 0, err
	}
	if cacheable {
		e.cache[key] = v
	}
	return v, nil
}

// EvalRange evaluates expr and requires min <= result <= max.
func (e *Evaluator) EvalRange(expr string, min, max int64) (int64, error) {
	v, err := e.Eval(expr)
	if err != nil {
		return 0, err
	}
	return checkRange(v, min, max)
}

// EvalCondition is true iff expr evaluates to exactly 1.
func (e *Evaluator) EvalCondition(expr string) (bool, error) {
	v, err := e.Eval(expr)
	if err != nil {
		return false, err
	}
	return v == 1, nil
}

func checkRange(v, min, max int64) (int64, error) {
	if v < min || v > max {
		return 0, newError(KindOverflow, "Illegal quantity %d", v)
	}
	return v, nil
}

func (e *Evaluator) cached(expr string) (int64, bool) {
	v, ok := e.cache[strings.TrimSpace(expr)]
	return v, ok
}

func (e *Evaluator) remember(expr string, v int64) {
	e.cache[strings.TrimSpace(expr)] = v
}

// EvalElements evaluates an already lexed and translated expression.
func (e *Evaluator) EvalElements(elems []ExpressionElement) (int64, error) {
	v, err := e.evalValue(elems)
	if err != nil {
		return 0, err
	}
	return v.asInt(), nil
}

func (e *Evaluator) evalValue(elems []ExpressionElement) (number, error) {
	elems, err := e.resolveLookups(elems)
	if err != nil {
		return number{}, err
	}
	elems, err = e.reduceFunctions(elems)
	if err != nil {
		return number{}, err
	}
	if err := validateSequence(elems); err != nil {
		return number{}, err
	}
	postfix, err := toPostfix(rewriteUnary(elems))
	if err != nil {
		return number{}, err
	}
	return evalPostfix(postfix)
}

func (e *Evaluator) resolveLookups(elems []ExpressionElement) ([]ExpressionElement, error) {
	out := make([]ExpressionElement, 0, len(elems))
	for _, el := range elems {
		if el.Type != TypeOperand || !isSymbolWord(el.Word) {
			out = append(out, el)
			continue
		}
		resolved := false
		for _, l := range e.lookups {
			if !l.re.MatchString(el.Word) {
				continue
			}
			text, ok := l.fn(el.Word)
			if !ok {
				break
			}
			sub, err := lexExpression(text)
			if err != nil {
				return nil, err
			}
			out = append(out, ExpressionElement{Type: TypeGroup, SubType: SubOpen, Word: "("})
			out = append(out, sub...)
			out = append(out, ExpressionElement{Type: TypeGroup, SubType: SubClose, Word: ")"})
			resolved = true
			break
		}
		if !resolved {
			return nil, newError(KindUndefined, "Symbol '%s' not defined", el.Word)
		}
	}
	return out, nil
}

// reduceFunctions replaces each function call with its value, innermost
// calls first.
func (e *Evaluator) reduceFunctions(elems []ExpressionElement) ([]ExpressionElement, error) {
	for {
		fi := -1
		for i, el := range elems {
			if el.Type == TypeFunction {
				fi = i
			}
		}
		if fi < 0 {
			return elems, nil
		}
		if fi+1 >= len(elems) || elems[fi+1].SubType != SubOpen {
			return nil, newError(KindParse, "Function '%s' requires arguments", elems[fi].Word)
		}
		depth, end := 0, -1
		for j := fi + 1; j < len(elems) && end < 0; j++ {
			switch elems[j].SubType {
			case SubOpen:
				depth++
			case SubClose:
				depth--
				if depth == 0 {
					end = j
				}
			}
		}
		if end < 0 {
			return nil, newError(KindParse, "Missing closing parenthesis")
		}
		args := splitArguments(elems[fi+2 : end])
		v, err := e.callFunction(elems[fi].Word, args)
		if err != nil {
			return nil, err
		}
		reduced := append([]ExpressionElement{}, elems[:fi]...)
		reduced = append(reduced, operandElement(v))
		elems = append(reduced, elems[end+1:]...)
	}
}

func splitArguments(elems []ExpressionElement) [][]ExpressionElement {
	if len(elems) == 0 {
		return nil
	}
	var args [][]ExpressionElement
	depth, start := 0, 0
	for i, el := range elems {
		switch {
		case el.SubType == SubOpen:
			depth++
		case el.SubType == SubClose:
			depth--
		case el.Word == "," && el.Type == TypeOperator && depth == 0:
			args = append(args, elems[start:i])
			start = i + 1
		}
	}
	return append(args, elems[start:])
}

// validateSequence rejects operand/operand and operator/operator adjacency
// and stray literals.
func validateSequence(elems []ExpressionElement) error {
	prevOperand := false
	for _, el := range elems {
		switch {
		case el.Type == TypeOperand:
			if prevOperand {
				return newError(KindParse, "Missing operator before '%s'", el.Word)
			}
			if isQuotedWord(el.Word) {
				return newError(KindParse, "Unexpected string %s in expression", el.Word)
			}
			if !isNumericWord(el.Word) {
				return newError(KindUndefined, "Symbol '%s' not defined", el.Word)
			}
			prevOperand = true
		case el.SubType == SubOpen:
			if prevOperand {
				return newError(KindParse, "Missing operator before '('")
			}
		case el.SubType == SubClose:
		case el.Word == ",":
			return newError(KindParse, "Unexpected ',' in expression")
		case el.SubType == SubBinary:
			if !prevOperand {
				return newError(KindParse, "Missing operand before '%s'", el.Word)
			}
			prevOperand = false
		case el.SubType == SubUnary:
			if prevOperand {
				return newError(KindParse, "Missing operator before '%s'", el.Word)
			}
		}
	}
	if !prevOperand {
		return newError(KindParse, "Missing operand")
	}
	return nil
}

// rewriteUnary turns each unary operator into a binary one applied to an
// implicit zero left operand.
func rewriteUnary(elems []ExpressionElement) []ExpressionElement {
	out := make([]ExpressionElement, 0, len(elems)*2)
	for _, el := range elems {
		if el.Type == TypeOperator && el.SubType == SubUnary {
			out = append(out, ExpressionElement{Type: TypeOperand, Word: "0", Integral: true})
			el.SubType = SubBinary
		}
		out = append(out, el)
	}
	return out
}

func toPostfix(elems []ExpressionElement) ([]ExpressionElement, error) {
	var out, ops []ExpressionElement
	for _, el := range elems {
		switch {
		case el.Type == TypeOperand:
			out = append(out, el)
		case el.SubType == SubOpen:
			ops = append(ops, el)
		case el.SubType == SubClose:
			for len(ops) > 0 && ops[len(ops)-1].SubType != SubOpen {
				out = append(out, ops[len(ops)-1])
				ops = ops[:len(ops)-1]
			}
			if len(ops) == 0 {
				return nil, newError(KindParse, "Unbalanced parentheses")
			}
			ops = ops[:len(ops)-1]
		default:
			p := precedence(el.Word)
			for len(ops) > 0 {
				top := ops[len(ops)-1]
				if top.SubType == SubOpen {
					break
				}
				tp := precedence(top.Word)
				if tp > p || (tp == p && !rightAssociative(el.Word)) {
					out = append(out, top)
					ops = ops[:len(ops)-1]
					continue
				}
				break
			}
			ops = append(ops, el)
		}
	}
	for len(ops) > 0 {
		top := ops[len(ops)-1]
		if top.SubType == SubOpen {
			return nil, newError(KindParse, "Unbalanced parentheses")
		}
		out = append(out, top)
		ops = ops[:len(ops)-1]
	}
	return out, nil
}

func parseOperand(el ExpressionElement) (number, error) {
	if el.Integral {
		v, err := strconv.ParseInt(el.Word, 10, 64)
		if err == nil {
			return number{i: v}, nil
		}
	}
	if v, err := strconv.ParseInt(el.Word, 10, 64); err == nil {
		return number{i: v}, nil
	}
	f, err := strconv.ParseFloat(el.Word, 64)
	if err != nil {
		return number{}, newError(KindParse, "Invalid operand '%s'", el.Word)
	}
	return number{f: f, float: true}, nil
}

func evalPostfix(postfix []ExpressionElement) (number, error) {
	var stack []number
	for _, el := range postfix {
		if el.Type == TypeOperand {
			v, err := parseOperand(el)
			if err != nil {
				return number{}, err
			}
			stack = append(stack, v)
			continue
		}
		if len(stack) < 2 {
			return number{}, newError(KindParse, "Missing operand for '%s'", el.Word)
		}
		a, b := stack[len(stack)-2], stack[len(stack)-1]
		stack = stack[:len(stack)-2]
		v, err := applyOperator(el.Word, a, b)
		if err != nil {
			return number{}, err
		}
		stack = append(stack, v)
	}
	if len(stack) != 1 {
		return number{}, newError(KindParse, "Malformed expression")
	}
	return stack[0], nil
}

func applyOperator(op string, a, b number) (number, error) {
	float := a.float || b.float
	switch op {
	case "+":
		if float {
			return number{f: a.asFloat() + b.asFloat(), float: true}, nil
		}
		return number{i: a.i + b.i}, nil
	case "-":
		if float {
			return number{f: a.asFloat() - b.asFloat(), float: true}, nil
		}
		return number{i: a.i - b.i}, nil
	case "*":
		if float {
			return number{f: a.asFloat() * b.asFloat(), float: true}, nil
		}
		return number{i: a.i * b.i}, nil
	case "/":
		if b.isZero() {
			return number{}, newError(KindDivideByZero, "Attempted to divide by zero")
		}
		if float {
			return number{f: a.asFloat() / b.asFloat(), float: true}, nil
		}
		return number{i: a.i / b.i}, nil
	case "%":
		if b.isZero() {
			return number{}, newError(KindDivideByZero, "Attempted to divide by zero")
		}
		if float {
			return number{f: math.Mod(a.asFloat(), b.asFloat()), float: true}, nil
		}
		return number{i: a.i % b.i}, nil
	case opPow:
		if !float && b.i >= 0 {
			r, ok := intPow(a.i, b.i)
			if !ok {
				return number{}, newError(KindOverflow, "Illegal quantity %d ** %d", a.i, b.i)
			}
			return number{i: r}, nil
		}
		return number{f: math.Pow(a.asFloat(), b.asFloat()), float: true}, nil
	case "&":
		return number{i: a.asInt() & b.asInt()}, nil
	case "|":
		return number{i: a.asInt() | b.asInt()}, nil
	case "^":
		return number{i: a.asInt() ^ b.asInt()}, nil
	case opShl:
		return number{i: a.asInt() << uint64(b.asInt()&63)}, nil
	case opShr:
		return number{i: a.asInt() >> uint64(b.asInt()&63)}, nil
	case opEq:
		return boolNumber(a.asFloat() == b.asFloat()), nil
	case opNe:
		return boolNumber(a.asFloat() != b.asFloat()), nil
	case "<":
		return boolNumber(a.asFloat() < b.asFloat()), nil
	case opLe:
		return boolNumber(a.asFloat() <= b.asFloat()), nil
	case ">":
		return boolNumber(a.asFloat() > b.asFloat()), nil
	case opGe:
		return boolNumber(a.asFloat() >= b.asFloat()), nil
	case opAnd:
		return boolNumber(!a.isZero() && !b.isZero()), nil
	case opOr:
		return boolNumber(!a.isZero() || !b.isZero()), nil
	case opNeg:
		return applyOperator("-", a, b)
	case opPlus:
		return b, nil
	case opNot:
		return boolNumber(b.isZero()), nil
	case opCompl:
		return number{i: ^b.asInt()}, nil
	case opLo:
		return number{i: b.asInt() % 256}, nil
	case opHi:
		return number{i: (b.asInt() / 256) % 256}, nil
	case opBank:
		return number{i: (b.asInt() / 65536) % 256}, nil
	}
	return number{}, newError(KindParse, "Unknown operator '%s'", op)
}

// intPow raises base to exp by squaring. It reports false when the result
// does not fit an int64.
func intPow(base, exp int64) (int64, bool) {
	r, ok := int64(1), true
	for exp > 0 {
		if exp&1 == 1 {
			if r, ok = mulInt64(r, base); !ok {
				return 0, false
			}
		}
		exp >>= 1
		if exp > 0 {
			if base, ok = mulInt64(base, base); !ok {
				return 0, false
			}
		}
	}
	return r, true
}

func mulInt64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	c := a * b
	return c, c/b == a
}
