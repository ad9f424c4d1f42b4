// directives.go - IE64 data and layout directives

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

package ie64

import (
	"encoding/binary"
	"math"
	"strings"

	"github.com/intuitionamiga/ieasm/assembler"
)

type directiveKind int

const (
	dirDC directiveKind = iota
	dirDS
	dirAlign
	dirIncbin
	dirOrg
)

type directive struct {
	kind  directiveKind
	width int
}

var directives = map[string]directive{
	"dc.b":   {dirDC, 1},
	"dc.w":   {dirDC, 2},
	"dc.l":   {dirDC, 4},
	"dc.q":   {dirDC, 8},
	"ds.b":   {dirDS, 1},
	"ds.w":   {dirDS, 2},
	"ds.l":   {dirDS, 4},
	"ds.q":   {dirDS, 8},
	"align":  {dirAlign, 1},
	"incbin": {dirIncbin, 1},
	"org":    {dirOrg, 0},
}

// dcRange bounds each dc width, accepting signed and unsigned values.
var dcRange = map[int][2]int64{
	1: {math.MinInt8, math.MaxUint8},
	2: {math.MinInt16, math.MaxUint16},
	4: {math.MinInt32, math.MaxUint32},
	8: {math.MinInt64, math.MaxInt64},
}

func (t *Target) assembleDirective(line *assembler.SourceLine, d directive) error {
	ops := assembler.SplitOperands(line.Operand)
	switch d.kind {
	case dirDC:
		b, err := t.dc(line, d.width, ops)
		if err != nil {
			return err
		}
		return t.ctx.Emit(line, b)

	case dirDS:
		if len(ops) != 1 {
			return parseErr(line, "%s requires a count", line.Instruction)
		}
		n, err := t.ctx.EvaluateRange(line, ops[0], 0, t.ctx.Output.MaxAddress())
		if err != nil {
			return err
		}
		return t.ctx.Emit(line, make([]byte, n*int64(d.width)))

	case dirAlign:
		if len(ops) != 1 {
			return parseErr(line, "align requires a boundary")
		}
		n, err := t.ctx.EvaluateRange(line, ops[0], 1, t.ctx.Output.MaxAddress())
		if err != nil {
			return err
		}
		return t.ctx.Emit(line, make([]byte, assembler.AlignPadding(line.PC, int(n))))

	case dirIncbin:
		b, err := t.incbin(line, ops)
		if err != nil {
			return err
		}
		return t.ctx.Emit(line, b)

	case dirOrg:
		v, err := t.ctx.EvaluateRange(line, line.Operand, 0, t.ctx.Output.MaxAddress())
		if err != nil {
			return err
		}
		return t.ctx.Output.SetPC(v)
	}
	return nil
}

// dc evaluates every value before encoding. dc.b also takes strings.
func (t *Target) dc(line *assembler.SourceLine, width int, ops []string) ([]byte, error) {
	if len(ops) == 0 {
		return nil, parseErr(line, "%s requires at least one value", line.Instruction)
	}
	var b []byte
	for _, op := range ops {
		if strings.HasPrefix(op, `"`) {
			if width != 1 {
				return nil, parseErr(line, "Strings are only allowed in dc.b")
			}
			s, ok := assembler.UnquoteString(op)
			if !ok {
				return nil, parseErr(line, "Invalid string %s", op)
			}
			enc, err := t.ctx.Encodings.EncodeString(s)
			if err != nil {
				return nil, err
			}
			b = append(b, enc...)
			continue
		}
		r := dcRange[width]
		v, err := t.ctx.EvaluateRange(line, op, r[0], r[1])
		if err != nil {
			return nil, err
		}
		var word [8]byte
		binary.LittleEndian.PutUint64(word[:], uint64(v))
		b = append(b, word[:width]...)
	}
	return b, nil
}

func (t *Target) incbin(line *assembler.SourceLine, ops []string) ([]byte, error) {
	if len(ops) != 1 && len(ops) != 3 {
		return nil, parseErr(line, "incbin requires \"file\" or \"file\",offset,length")
	}
	name, ok := assembler.UnquoteString(ops[0])
	if !ok {
		return nil, parseErr(line, "incbin requires a quoted file name")
	}
	data, err := t.ctx.ReadBinary(line, name)
	if err != nil {
		return nil, err
	}
	if len(ops) == 1 {
		return data, nil
	}
	off, err := t.ctx.EvaluateRange(line, ops[1], 0, int64(len(data)))
	if err != nil {
		return nil, err
	}
	n, err := t.ctx.EvaluateRange(line, ops[2], 0, int64(len(data))-off)
	if err != nil {
		return nil, err
	}
	return data[off : off+n], nil
}

// directiveSize estimates a directive that failed to evaluate.
func (t *Target) directiveSize(line *assembler.SourceLine, d directive) int {
	ops := assembler.SplitOperands(line.Operand)
	switch d.kind {
	case dirDC:
		n := 0
		for _, op := range ops {
			if s, ok := assembler.UnquoteString(op); ok && strings.HasPrefix(op, `"`) {
				n += len(s)
				continue
			}
			n += d.width
		}
		return n
	case dirDS:
		if len(ops) == 1 {
			if v, err := t.ctx.Evaluate(line, ops[0]); err == nil && v > 0 {
				return int(v) * d.width
			}
		}
	case dirAlign:
		if len(ops) == 1 {
			if v, err := t.ctx.Evaluate(line, ops[0]); err == nil && v > 0 {
				return assembler.AlignPadding(line.PC, int(v))
			}
		}
	case dirIncbin:
		if b, err := t.incbin(line, ops); err == nil {
			return len(b)
		}
	}
	return 0
}
