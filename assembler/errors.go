package assembler

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure raised while evaluating a line.
type ErrorKind int

const (
	KindParse ErrorKind = iota
	KindSymbol
	KindUndefined
	KindOverflow
	KindInvalidPC
	KindDivideByZero
	KindSymbolCollision
	KindStructural
)

var kindNames = [...]string{
	KindParse:           "parse",
	KindSymbol:          "symbol",
	KindUndefined:       "undefined",
	KindOverflow:        "overflow",
	KindInvalidPC:       "invalid pc",
	KindDivideByZero:    "divide by zero",
	KindSymbolCollision: "symbol collision",
	KindStructural:      "structural",
}

func (k ErrorKind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Recoverable reports whether a later pass might clear the failure. On the
// first pass such failures only schedule another pass.
func (k ErrorKind) Recoverable() bool {
	switch k {
	case KindUndefined, KindOverflow, KindInvalidPC, KindDivideByZero, KindSymbolCollision:
		return true
	}
	return false
}

// Error is the failure result of evaluating a single line.
type Error struct {
	Kind ErrorKind
	Line *SourceLine
	Msg  string
}

func (e *Error) Error() string {
	if e.Line != nil {
		return fmt.Sprintf("%s: %s", e.Line.Position(), e.Msg)
	}
	return e.Msg
}

func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func lineError(line *SourceLine, kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Line: line, Msg: fmt.Sprintf(format, args...)}
}

// NewLineError builds an *Error for line. Targets use it so their failures
// are classified like the core's.
func NewLineError(line *SourceLine, kind ErrorKind, format string, args ...interface{}) *Error {
	return lineError(line, kind, format, args...)
}

// attachLine fills in the line of an *Error that was raised without one.
func attachLine(err error, line *SourceLine) error {
	var ae *Error
	if errors.As(err, &ae) && ae.Line == nil {
		ae.Line = line
	}
	return err
}

// KindOf returns the kind carried by err. Errors that are not *Error are
// reported as structural.
func KindOf(err error) ErrorKind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindStructural
}

var (
	// ErrTooManyPasses is returned when the pass ceiling is reached and
	// addresses still have not settled.
	ErrTooManyPasses = errors.New("too many passes attempted")

	// ErrAssemblyFailed is returned when the run finished with logged errors.
	ErrAssemblyFailed = errors.New("assembly failed")

	// ErrWarningsAsErrors is returned when warnings were promoted to errors.
	ErrWarningsAsErrors = errors.New("warnings treated as errors")
)
