package assembler

import (
	"strconv"
	"strings"
)

// ElementType is the broad class of an expression element.
type ElementType int

const (
	TypeGroup ElementType = iota
	TypeOperand
	TypeFunction
	TypeOperator
)

// ElementSubType refines an element's type.
type ElementSubType int

const (
	SubNone ElementSubType = iota
	SubOpen
	SubClose
	SubBinary
	SubUnary
)

// ExpressionElement is one token of a lexed expression. Operand words hold
// decimal numbers, quoted character literals, symbol names, '*' or runs of
// '+'/'-' naming anonymous labels until symbols are translated.
type ExpressionElement struct {
	Type     ElementType
	SubType  ElementSubType
	Word     string
	Integral bool
}

func (e ExpressionElement) String() string {
	return e.Word
}

// Internal single-symbol spellings of multi-character and unary operators.
const (
	opShl   = "«"
	opShr   = "»"
	opEq    = "≡"
	opNe    = "≠"
	opLe    = "≤"
	opGe    = "≥"
	opAnd   = "∧"
	opOr    = "∨"
	opPow   = "↑"
	opNeg   = "u-"
	opPlus  = "u+"
	opNot   = "u!"
	opCompl = "u~"
	opLo    = "u<"
	opHi    = "u>"
	opBank  = "u^"
)

var twoCharOperators = map[string]string{
	"<<": opShl,
	">>": opShr,
	"==": opEq,
	"!=": opNe,
	"<=": opLe,
	">=": opGe,
	"&&": opAnd,
	"||": opOr,
	"**": opPow,
}

var unaryOperators = map[byte]string{
	'-': opNeg,
	'+': opPlus,
	'!': opNot,
	'~': opCompl,
	'<': opLo,
	'>': opHi,
	'^': opBank,
}

const unaryPrecedence = 12

var operatorPrecedence = map[string]int{
	opOr:  1,
	opAnd: 2,
	opEq:  3,
	opNe:  3,
	"<":   4,
	opLe:  4,
	">":   4,
	opGe:  4,
	"|":   5,
	"^":   6,
	"&":   7,
	opShl: 8,
	opShr: 8,
	"+":   9,
	"-":   9,
	"*":   10,
	"/":   10,
	"%":   10,
	opPow: 11,
}

func precedence(op string) int {
	if strings.HasPrefix(op, "u") {
		return unaryPrecedence
	}
	return operatorPrecedence[op]
}

func rightAssociative(op string) bool {
	return op == opPow || strings.HasPrefix(op, "u")
}

func operandElement(v number) ExpressionElement {
	if v.float {
		return ExpressionElement{Type: TypeOperand, Word: strconv.FormatFloat(v.f, 'g', -1, 64)}
	}
	return ExpressionElement{Type: TypeOperand, Word: strconv.FormatInt(v.i, 10), Integral: true}
}

func isNumericWord(w string) bool {
	if w == "" {
		return false
	}
	c := w[0]
	if c == '-' && len(w) > 1 {
		c = w[1]
	}
	return c >= '0' && c <= '9'
}

func isQuotedWord(w string) bool {
	return len(w) >= 2 && (w[0] == '\'' || w[0] == '"')
}

func isSymbolWord(w string) bool {
	return w != "" && isIdentStart(w[0])
}

func isAnonymousWord(w string) bool {
	if w == "" {
		return false
	}
	return strings.Trim(w, "+") == "" || strings.Trim(w, "-") == ""
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9') || c == '.'
}
