package ie32

import (
	"strings"

	"github.com/intuitionamiga/ieasm/assembler"
)

type directiveKind int

const (
	dirSpace directiveKind = iota
	dirASCII
	dirIncbin
)

var directives = map[string]directiveKind{
	".space":  dirSpace,
	".ascii":  dirASCII,
	".incbin": dirIncbin,
}

func (t *Target) assembleDirective(line *assembler.SourceLine, d directiveKind) error {
	b, err := t.directiveBytes(line, d)
	if err != nil {
		return err
	}
	return t.ctx.Emit(line, b)
}

func (t *Target) directiveBytes(line *assembler.SourceLine, d directiveKind) ([]byte, error) {
	ops := assembler.SplitOperands(line.Operand)
	switch d {
	case dirSpace:
		if len(ops) != 1 {
			return nil, parseErr(line, ".space requires a size")
		}
		n, err := t.ctx.EvaluateRange(line, ops[0], 0, t.ctx.Output.MaxAddress())
		if err != nil {
			return nil, err
		}
		return make([]byte, n), nil

	case dirASCII:
		if len(ops) != 1 {
			return nil, parseErr(line, ".ascii requires one quoted string")
		}
		s, ok := assembler.UnquoteString(ops[0])
		if !ok {
			return nil, parseErr(line, "Invalid string %s", ops[0])
		}
		return t.ctx.Encodings.EncodeString(s)

	case dirIncbin:
		if len(ops) < 1 || len(ops) > 3 {
			return nil, parseErr(line, ".incbin requires \"file\"[,offset[,length]]")
		}
		name, ok := assembler.UnquoteString(ops[0])
		if !ok {
			return nil, parseErr(line, ".incbin requires a quoted file name")
		}
		data, err := t.ctx.ReadBinary(line, name)
		if err != nil {
			return nil, err
		}
		var off int64
		if len(ops) >= 2 {
			if off, err = t.ctx.EvaluateRange(line, ops[1], 0, int64(len(data))); err != nil {
				return nil, err
			}
		}
		n := int64(len(data)) - off
		if len(ops) == 3 {
			if n, err = t.ctx.EvaluateRange(line, ops[2], 0, n); err != nil {
				return nil, err
			}
		}
		return data[off : off+n], nil
	}
	return nil, nil
}

// directiveSize estimates a directive that failed to evaluate.
func (t *Target) directiveSize(line *assembler.SourceLine, d directiveKind) int {
	if b, err := t.directiveBytes(line, d); err == nil {
		return len(b)
	}
	if d == dirASCII {
		if s, ok := assembler.UnquoteString(strings.TrimSpace(line.Operand)); ok {
			return len(s)
		}
	}
	return 0
}
