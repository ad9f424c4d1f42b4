// pseudo_ops.go - Target-independent pseudo-ops

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
	"strconv"
	"strings"
)

type dataType struct {
	size     int
	min, max int64
	rta      bool
}

var dataTypes = map[string]dataType{
	".byte":  {size: 1, min: -128, max: 255},
	".sbyte": {size: 1, min: -128, max: 127},
	".char":  {size: 1, min: -128, max: 127},
	".word":  {size: 2, min: -32768, max: 65535},
	".addr":  {size: 2, min: 0, max: 65535},
	".sint":  {size: 2, min: -32768, max: 32767},
	".rta":   {size: 2, min: 1, max: 65536, rta: true},
	".lint":  {size: 3, min: -8388608, max: 8388607},
	".long":  {size: 3, min: -8388608, max: 16777215},
	".dint":  {size: 4, min: -2147483648, max: 2147483647},
	".dword": {size: 4, min: -2147483648, max: 4294967295},
}

var stringTypes = map[string]bool{
	".string":   true,
	".cstring":  true,
	".pstring":  true,
	".lsstring": true,
	".nstring":  true,
}

var otherPseudoOps = map[string]bool{
	".fill":     true,
	".align":    true,
	".binary":   true,
	".echo":     true,
	".warn":     true,
	".warnif":   true,
	".error":    true,
	".errorif":  true,
	".assert":   true,
	".encoding": true,
	".map":      true,
	".unmap":    true,
}

// PseudoOps assembles the data, string and diagnostic directives shared by
// every target.
type PseudoOps struct {
	ctx *AssemblyContext
}

// NewPseudoOps binds the pseudo-ops to ctx.
func NewPseudoOps(ctx *AssemblyContext) *PseudoOps {
	return &PseudoOps{ctx: ctx}
}

func (p *PseudoOps) AssemblesInstruction(name string) bool {
	_, data := dataTypes[name]
	return data || stringTypes[name] || otherPseudoOps[name]
}

func (p *PseudoOps) GetInstructionSize(line *SourceLine) int {
	ops := SplitOperands(line.Operand)
	instr := line.Instruction
	if dt, ok := dataTypes[instr]; ok {
		return dt.size * len(ops)
	}
	if stringTypes[instr] {
		n := 0
		for _, op := range ops {
			if s, ok := UnquoteString(op); ok && strings.HasPrefix(op, `"`) {
				b, err := p.ctx.Encodings.EncodeString(s)
				if err == nil {
					n += len(b)
					continue
				}
			}
			n++
		}
		if instr == ".cstring" || instr == ".pstring" {
			n++
		}
		return n
	}
	switch instr {
	case ".fill":
		if len(ops) > 0 {
			if v, err := p.ctx.Evaluate(line, ops[0]); err == nil && v > 0 {
				return int(v)
			}
		}
	case ".align":
		if len(ops) > 0 {
			if v, err := p.ctx.Evaluate(line, ops[0]); err == nil && v > 0 {
				return AlignPadding(line.PC, int(v))
			}
		}
	case ".binary":
		if b, err := p.binary(line, ops); err == nil {
			return len(b)
		}
	}
	return 0
}

func (p *PseudoOps) AssembleLine(line *SourceLine) error {
	instr := line.Instruction
	if dt, ok := dataTypes[instr]; ok {
		return p.assembleData(line, dt)
	}
	if stringTypes[instr] {
		return p.assembleString(line)
	}
	ops := SplitOperands(line.Operand)
	switch instr {
	case ".fill", ".align":
		return p.assembleFill(line, ops)
	case ".binary":
		b, err := p.binary(line, ops)
		if err != nil {
			return err
		}
		return p.emit(line, b)
	case ".echo":
		msg, err := p.message(line, ops)
		if err != nil {
			return err
		}
		p.ctx.EchoLine(line, msg)
	case ".warn", ".error":
		msg, err := p.message(line, ops)
		if err != nil {
			return err
		}
		if instr == ".warn" {
			p.ctx.Warn(line, "%s", msg)
		} else {
			p.ctx.UserError(line, "%s", msg)
		}
	case ".warnif", ".errorif", ".assert":
		return p.assembleCheck(line, ops)
	case ".encoding":
		name := strings.TrimSpace(line.Operand)
		if s, ok := UnquoteString(name); ok {
			name = s
		}
		if !identPattern.MatchString(name) {
			return lineError(line, KindParse, "Invalid encoding name '%s'", name)
		}
		p.ctx.Encodings.Select(name)
	case ".map", ".unmap":
		return p.assembleMap(line, ops)
	}
	return nil
}

func (p *PseudoOps) emit(line *SourceLine, b []byte) error {
	return p.ctx.Emit(line, b)
}

func (p *PseudoOps) assembleData(line *SourceLine, dt dataType) error {
	ops := SplitOperands(line.Operand)
	if len(ops) == 0 {
		return lineError(line, KindParse, "Expected expression for '%s'", line.Instruction)
	}
	const reserve = int64(-1) << 62
	values := make([]int64, len(ops))
	for i, op := range ops {
		if op == "?" {
			values[i] = reserve
			continue
		}
		v, err := p.ctx.EvaluateRange(line, op, dt.min, dt.max)
		if err != nil {
			return err
		}
		if dt.rta {
			v--
		}
		values[i] = v
	}
	for _, v := range values {
		if v == reserve {
			if err := p.ctx.Output.AddUninitialized(dt.size); err != nil {
				return attachLine(err, line)
			}
			continue
		}
		b, err := p.ctx.Output.Add(v, dt.size)
		if err != nil {
			return attachLine(err, line)
		}
		line.Assembly = append(line.Assembly, b...)
	}
	return nil
}

func (p *PseudoOps) assembleString(line *SourceLine) error {
	ops := SplitOperands(line.Operand)
	if len(ops) == 0 {
		return lineError(line, KindParse, "Expected string for '%s'", line.Instruction)
	}
	var b []byte
	for _, op := range ops {
		if strings.HasPrefix(op, `"`) {
			s, ok := UnquoteString(op)
			if !ok {
				return lineError(line, KindParse, "Invalid string %s", op)
			}
			enc, err := p.ctx.Encodings.EncodeString(s)
			if err != nil {
				return attachLine(err, line)
			}
			b = append(b, enc...)
			continue
		}
		v, err := p.ctx.EvaluateRange(line, op, -128, 255)
		if err != nil {
			return err
		}
		b = append(b, byte(v))
	}

	switch line.Instruction {
	case ".cstring":
		b = append(b, 0)
	case ".pstring":
		if len(b) > 255 {
			return lineError(line, KindOverflow, "String too long for '.pstring'")
		}
		b = append([]byte{byte(len(b))}, b...)
	case ".lsstring", ".nstring":
		for i, c := range b {
			if c > 0x7F {
				return lineError(line, KindOverflow, "Illegal quantity %d for '%s'", c, line.Instruction)
			}
			if line.Instruction == ".lsstring" {
				b[i] = c << 1
			}
		}
		if n := len(b); n > 0 {
			if line.Instruction == ".lsstring" {
				b[n-1] |= 1
			} else {
				b[n-1] |= 0x80
			}
		}
	}
	return p.emit(line, b)
}

func (p *PseudoOps) assembleFill(line *SourceLine, ops []string) error {
	if len(ops) == 0 || len(ops) > 2 {
		return lineError(line, KindParse, "Expected '%s amount[, value]'", line.Instruction)
	}
	min := int64(0)
	if line.Instruction == ".align" {
		min = 1
	}
	amount, err := p.ctx.EvaluateRange(line, ops[0], min, p.ctx.Output.MaxAddress())
	if err != nil {
		return err
	}
	var value int64
	hasValue := len(ops) == 2
	if hasValue {
		if value, err = p.ctx.Evaluate(line, ops[1]); err != nil {
			return err
		}
	}
	var b []byte
	if line.Instruction == ".align" {
		b, err = p.ctx.Output.Align(int(amount), value, hasValue)
	} else {
		b, err = p.ctx.Output.Fill(int(amount), value, hasValue)
	}
	if err != nil {
		return attachLine(err, line)
	}
	line.Assembly = append(line.Assembly, b...)
	return nil
}

func (p *PseudoOps) binary(line *SourceLine, ops []string) ([]byte, error) {
	if len(ops) == 0 || len(ops) > 3 {
		return nil, lineError(line, KindParse, "Expected '.binary \"file\"[, offset[, size]]'")
	}
	name, ok := UnquoteString(ops[0])
	if !ok {
		return nil, lineError(line, KindParse, "Expected file name")
	}
	data, err := p.ctx.ReadBinary(line, name)
	if err != nil {
		return nil, err
	}
	offset, size := int64(0), int64(len(data))
	if len(ops) > 1 {
		if offset, err = p.ctx.EvaluateRange(line, ops[1], 0, int64(len(data))); err != nil {
			return nil, err
		}
		size -= offset
	}
	if len(ops) > 2 {
		if size, err = p.ctx.EvaluateRange(line, ops[2], 0, int64(len(data))-offset); err != nil {
			return nil, err
		}
	}
	return data[offset : offset+size], nil
}

// message joins string literals and evaluated expressions.
func (p *PseudoOps) message(line *SourceLine, ops []string) (string, error) {
	var b strings.Builder
	for _, op := range ops {
		if s, ok := UnquoteString(op); ok && strings.HasPrefix(op, `"`) {
			b.WriteString(s)
			continue
		}
		v, err := p.ctx.Evaluate(line, op)
		if err != nil {
			return "", err
		}
		b.WriteString(strconv.FormatInt(v, 10))
	}
	return b.String(), nil
}

func (p *PseudoOps) assembleCheck(line *SourceLine, ops []string) error {
	if len(ops) == 0 {
		return lineError(line, KindParse, "Expected condition for '%s'", line.Instruction)
	}
	ok, err := p.ctx.EvaluateCondition(line, ops[0])
	if err != nil {
		return err
	}
	msg, err := p.message(line, ops[1:])
	if err != nil {
		return err
	}
	switch line.Instruction {
	case ".assert":
		if !ok {
			if msg == "" {
				msg = "Assertion failed"
			}
			p.ctx.UserError(line, "%s", msg)
		}
	case ".warnif":
		if ok {
			p.ctx.Warn(line, "%s", msg)
		}
	case ".errorif":
		if ok {
			p.ctx.UserError(line, "%s", msg)
		}
	}
	return nil
}

func (p *PseudoOps) assembleMap(line *SourceLine, ops []string) error {
	unmap := line.Instruction == ".unmap"
	want := 2
	if unmap {
		want = 1
	}
	if len(ops) != want && len(ops) != want+1 {
		return lineError(line, KindParse, "Invalid arguments for '%s'", line.Instruction)
	}
	var from, to rune
	if len(ops) == want+1 {
		a, errA := singleRune(ops[0])
		b, errB := singleRune(ops[1])
		if errA != nil || errB != nil {
			return lineError(line, KindParse, "Expected character literals for '%s'", line.Instruction)
		}
		from, to = a, b
	} else {
		s, ok := UnquoteString(ops[0])
		r := []rune(s)
		if !ok || len(r) == 0 || len(r) > 2 {
			return lineError(line, KindParse, "Expected one or two characters for '%s'", line.Instruction)
		}
		from, to = r[0], r[len(r)-1]
	}
	if unmap {
		p.ctx.Encodings.Unmap(from, to)
		return nil
	}
	code, err := p.ctx.Evaluate(line, ops[len(ops)-1])
	if err != nil {
		return err
	}
	return attachLine(p.ctx.Encodings.Map(from, to, code), line)
}

func singleRune(op string) (rune, error) {
	s, ok := UnquoteString(op)
	r := []rune(s)
	if !ok || len(r) != 1 {
		return 0, newError(KindParse, "Expected a character")
	}
	return r[0], nil
}
