// target.go - IE32 line assembler

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

// Package ie32 assembles the original 32-bit Intuition Engine instruction
// set and registers it as the "ie32" target.
//
// Every instruction is one 8-byte word. Operands take one of five forms:
//
//	#expr       immediate
//	A..W        register
//	[R] [R+n]   register indirect, R one of A, X, Y, Z and n a multiple of 4
//	[expr]      memory indirect
//	@expr       direct
//
// A bare expression is an immediate, so "LOAD A, COUNT" and
// "LOAD A, #COUNT" encode the same way.
package ie32

import (
	"encoding/binary"
	"math"
	"strings"

	"github.com/intuitionamiga/ieasm/assembler"
)

// DefaultOrigin is where IE32 programs are loaded.
const DefaultOrigin = 0x1000

func init() {
	assembler.RegisterTarget("ie32", func(ctx *assembler.AssemblyContext) assembler.LineAssembler {
		return New(ctx)
	})
}

// Target is the IE32 line assembler.
type Target struct {
	ctx *assembler.AssemblyContext
}

// New binds a target to ctx.
func New(ctx *assembler.AssemblyContext) *Target {
	return &Target{ctx: ctx}
}

func (t *Target) AssemblesInstruction(name string) bool {
	if _, ok := directives[name]; ok {
		return true
	}
	_, ok := instructions[name]
	return ok
}

func (t *Target) GetInstructionSize(line *assembler.SourceLine) int {
	if d, ok := directives[line.Instruction]; ok {
		return t.directiveSize(line, d)
	}
	return InstrSize
}

func (t *Target) AssembleLine(line *assembler.SourceLine) error {
	if d, ok := directives[line.Instruction]; ok {
		return t.assembleDirective(line, d)
	}
	def := instructions[line.Instruction]
	instr, err := t.encode(line, def, assembler.SplitOperands(line.Operand))
	if err != nil {
		return err
	}
	return t.ctx.Emit(line, instr)
}

func encodeInstruction(opcode, reg, mode byte, operand uint32) []byte {
	instr := make([]byte, InstrSize)
	instr[0] = opcode
	instr[1] = reg
	instr[2] = mode
	binary.LittleEndian.PutUint32(instr[4:], operand)
	return instr
}

var operandCounts = map[form]int{
	formNone: 0, formRegOp: 2, formImplied: 1, formOperand: 1,
	formReg: 1, formJump: 1, formBranch: 2,
}

func (t *Target) encode(line *assembler.SourceLine, def instrDef, ops []string) ([]byte, error) {
	if want := operandCounts[def.form]; len(ops) != want {
		return nil, parseErr(line, "%s requires %d operand(s), got %d", strings.ToUpper(line.Instruction), want, len(ops))
	}

	switch def.form {
	case formNone:
		return encodeInstruction(def.opcode, 0, 0, 0), nil

	case formRegOp:
		reg, err := t.register(line, ops[0])
		if err != nil {
			return nil, err
		}
		mode, v, err := t.operand(line, ops[1])
		if err != nil {
			return nil, err
		}
		return encodeInstruction(def.opcode, reg, mode, v), nil

	case formImplied:
		mode, v, err := t.operand(line, ops[0])
		if err != nil {
			return nil, err
		}
		return encodeInstruction(def.opcode, def.reg, mode, v), nil

	case formOperand:
		mode, v, err := t.operand(line, ops[0])
		if err != nil {
			return nil, err
		}
		return encodeInstruction(def.opcode, 0, mode, v), nil

	case formReg:
		reg, err := t.register(line, ops[0])
		if err != nil {
			return nil, err
		}
		return encodeInstruction(def.opcode, reg, 0, 0), nil

	case formJump:
		target, err := t.address(line, ops[0])
		if err != nil {
			return nil, err
		}
		return encodeInstruction(def.opcode, 0, 0, target), nil

	case formBranch:
		reg, err := t.register(line, ops[0])
		if err != nil {
			return nil, err
		}
		target, err := t.address(line, ops[1])
		if err != nil {
			return nil, err
		}
		return encodeInstruction(def.opcode, reg, 0, target), nil
	}
	return nil, parseErr(line, "Unknown instruction '%s'", line.Instruction)
}

// ---------------------------------------------------------------------
// Operands
// ---------------------------------------------------------------------

func parseErr(line *assembler.SourceLine, format string, args ...interface{}) error {
	return assembler.NewLineError(line, assembler.KindParse, format, args...)
}

func parseRegister(s string) (byte, bool) {
	r, ok := registers[strings.ToUpper(strings.TrimSpace(s))]
	return r, ok
}

func (t *Target) register(line *assembler.SourceLine, op string) (byte, error) {
	r, ok := parseRegister(op)
	if !ok {
		return 0, parseErr(line, "Invalid register '%s'", strings.TrimSpace(op))
	}
	return r, nil
}

func (t *Target) value32(line *assembler.SourceLine, expr string) (uint32, error) {
	v, err := t.ctx.EvaluateRange(line, expr, math.MinInt32, math.MaxUint32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

// address evaluates a jump target. Targets are absolute.
func (t *Target) address(line *assembler.SourceLine, op string) (uint32, error) {
	return t.value32(line, strings.TrimPrefix(strings.TrimSpace(op), "@"))
}

// operand classifies op and evaluates its value field.
func (t *Target) operand(line *assembler.SourceLine, op string) (byte, uint32, error) {
	op = strings.TrimSpace(op)
	switch {
	case op == "":
		return 0, 0, parseErr(line, "Missing operand")

	case strings.HasPrefix(op, "#"):
		v, err := t.value32(line, op[1:])
		return ADDR_IMMEDIATE, v, err

	case strings.HasPrefix(op, "@"):
		v, err := t.value32(line, op[1:])
		return ADDR_DIRECT, v, err

	case strings.HasPrefix(op, "[") && strings.HasSuffix(op, "]"):
		return t.indirect(line, op[1:len(op)-1])
	}

	if r, ok := parseRegister(op); ok {
		return ADDR_REGISTER, uint32(r), nil
	}
	v, err := t.value32(line, op)
	return ADDR_IMMEDIATE, v, err
}

// indirect handles the inside of [...]: a register with an optional
// offset, or a memory address.
func (t *Target) indirect(line *assembler.SourceLine, inner string) (byte, uint32, error) {
	base, offExpr, hasOffset := strings.Cut(inner, "+")
	reg, isReg := parseRegister(base)
	if !isReg {
		v, err := t.value32(line, inner)
		return ADDR_MEM_IND, v, err
	}
	if reg > regIndirectMask {
		return 0, 0, parseErr(line, "Indirect base must be A, X, Y or Z, got '%s'", strings.TrimSpace(base))
	}
	if !hasOffset {
		return ADDR_REG_IND, uint32(reg), nil
	}
	off, err := t.value32(line, offExpr)
	if err != nil {
		return 0, 0, err
	}
	if off&regIndirectMask != 0 {
		return 0, 0, parseErr(line, "Offset %d must be a multiple of 4", off)
	}
	return ADDR_REG_IND, uint32(reg) | off&offsetMask, nil
}
