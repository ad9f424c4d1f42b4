// target.go - IE64 line assembler

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

// Package ie64 assembles the IE64 instruction set. Importing it registers
// the "ie64" target with the assembler.
//
// Syntax is 68K-flavoured: sized mnemonics (move.l), immediates prefixed
// with '#', and disp(rs) addressing. The pseudo-instructions la, li and
// beqz..blez are lowered to real instructions, and the dc/ds/align/incbin/org
// directives are accepted next to the assembler's own dotted pseudo-ops.
package ie64

import (
	"fmt"
	"math"
	"strings"

	"github.com/intuitionamiga/ieasm/assembler"
)

// DefaultOrigin is where IE64 programs are loaded.
const DefaultOrigin = 0x1000

func init() {
	assembler.RegisterTarget("ie64", func(ctx *assembler.AssemblyContext) assembler.LineAssembler {
		return New(ctx)
	})
}

// Target is the IE64 line assembler.
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
	if _, ok := zeroBranches[name]; ok {
		return true
	}
	if name == "la" || name == "li" {
		return true
	}
	base, _, _ := splitSize(name)
	_, ok := instructions[base]
	return ok
}

func (t *Target) GetInstructionSize(line *assembler.SourceLine) int {
	if d, ok := directives[line.Instruction]; ok {
		return t.directiveSize(line, d)
	}
	if line.Instruction == "li" {
		ops := assembler.SplitOperands(line.Operand)
		if len(ops) == 2 {
			if v, err := t.immediate(line, ops[1]); err == nil && uint64(v) <= math.MaxUint32 {
				return InstrSize
			}
		}
		return 2 * InstrSize
	}
	return InstrSize
}

func (t *Target) AssembleLine(line *assembler.SourceLine) error {
	name := line.Instruction
	if d, ok := directives[name]; ok {
		return t.assembleDirective(line, d)
	}
	ops := assembler.SplitOperands(line.Operand)

	var instr []byte
	var err error
	switch {
	case name == "la":
		instr, err = t.asmLa(line, ops)
	case name == "li":
		instr, err = t.asmLi(line, ops)
	case zeroBranches[name] != "":
		if len(ops) != 2 {
			return parseErr(line, "%s requires 2 operands (rs, label)", name)
		}
		base := zeroBranches[name]
		instr, err = t.encode(line, base, instructions[base], SIZE_Q, []string{ops[0], "r0", ops[1]})
	default:
		base, size, explicit := splitSize(name)
		def := instructions[base]
		if explicit && !def.sized {
			if isFPOpcode(def.opcode) {
				return parseErr(line, "Size suffixes not allowed on FP instruction '%s'", name)
			}
			return parseErr(line, "Size suffix not allowed on '%s'", base)
		}
		instr, err = t.encode(line, base, def, size, ops)
	}
	if err != nil {
		return err
	}
	return t.ctx.Emit(line, instr)
}

// operandCounts is the operand count each form expects.
var operandCounts = map[form]int{
	formNone: 0, formMove: 2, formImm: 2, formLea: 2, formMem: 2,
	formALU3: 3, formALU2: 2, formBra: 1, formBcc: 3, formJmp: 1, formJsr: 1,
	formPush: 1, formPop: 1, formWait: 1,
	formFP2: 2, formFP2IntF: 2, formFP2FInt: 2, formFP3: 3, formFPCmp: 3,
	formFPLoad: 2, formFPStore: 2, formFPImm: 2, formFPStatus: 1, formFPCtrl: 1,
}

// encode assembles one real instruction. Every operand is evaluated before
// the word is built.
func (t *Target) encode(line *assembler.SourceLine, name string, def instrDef, size byte, ops []string) ([]byte, error) {
	if want := operandCounts[def.form]; len(ops) != want {
		return nil, parseErr(line, "%s requires %d operand(s), got %d", name, want, len(ops))
	}
	op := def.opcode

	switch def.form {
	case formNone:
		return encodeInstruction(op, 0, 0, 0, 0, 0, 0), nil

	case formMove:
		rd, err := t.register(line, ops[0])
		if err != nil {
			return nil, err
		}
		if strings.HasPrefix(ops[1], "#") {
			v, err := t.immediate(line, ops[1])
			if err != nil {
				return nil, err
			}
			t.warnTruncation(line, v, size)
			return encodeInstruction(op, rd, size, 1, 0, 0, uint32(v)), nil
		}
		rs, err := t.register(line, ops[1])
		if err != nil {
			return nil, err
		}
		return encodeInstruction(op, rd, size, 0, rs, 0, 0), nil

	case formImm:
		rd, err := t.register(line, ops[0])
		if err != nil {
			return nil, err
		}
		imm, err := t.imm32(line, ops[1])
		if err != nil {
			return nil, err
		}
		return encodeInstruction(op, rd, SIZE_Q, 1, 0, 0, imm), nil

	case formLea:
		rd, err := t.register(line, ops[0])
		if err != nil {
			return nil, err
		}
		disp, rs, err := t.indirect(line, ops[1])
		if err != nil {
			return nil, err
		}
		return encodeInstruction(op, rd, SIZE_Q, 1, rs, 0, disp), nil

	case formMem:
		rd, err := t.register(line, ops[0])
		if err != nil {
			return nil, err
		}
		disp, rs, err := t.indirect(line, ops[1])
		if err != nil {
			return nil, err
		}
		return encodeInstruction(op, rd, size, xbit(disp), rs, 0, disp), nil

	case formALU3:
		rd, err := t.register(line, ops[0])
		if err != nil {
			return nil, err
		}
		rs, err := t.register(line, ops[1])
		if err != nil {
			return nil, err
		}
		if strings.HasPrefix(ops[2], "#") {
			imm, err := t.imm32(line, ops[2])
			if err != nil {
				return nil, err
			}
			return encodeInstruction(op, rd, size, 1, rs, 0, imm), nil
		}
		rt, err := t.register(line, ops[2])
		if err != nil {
			return nil, err
		}
		return encodeInstruction(op, rd, size, 0, rs, rt, 0), nil

	case formALU2:
		rd, err := t.register(line, ops[0])
		if err != nil {
			return nil, err
		}
		rs, err := t.register(line, ops[1])
		if err != nil {
			return nil, err
		}
		return encodeInstruction(op, rd, size, 0, rs, 0, 0), nil

	case formBra:
		offset, err := t.relative(line, ops[0])
		if err != nil {
			return nil, err
		}
		return encodeInstruction(op, 0, SIZE_Q, 0, 0, 0, offset), nil

	case formBcc:
		rs, err := t.register(line, ops[0])
		if err != nil {
			return nil, err
		}
		rt, err := t.register(line, ops[1])
		if err != nil {
			return nil, err
		}
		offset, err := t.relative(line, ops[2])
		if err != nil {
			return nil, err
		}
		return encodeInstruction(op, 0, SIZE_Q, 0, rs, rt, offset), nil

	case formJmp:
		disp, rs, err := t.indirect(line, ops[0])
		if err != nil {
			return nil, err
		}
		return encodeInstruction(op, 0, 0, 0, rs, 0, disp), nil

	case formJsr:
		if _, _, ok := splitIndirect(ops[0]); ok {
			disp, rs, err := t.indirect(line, ops[0])
			if err != nil {
				return nil, err
			}
			return encodeInstruction(OP64_JSR_IND, 0, 0, 0, rs, 0, disp), nil
		}
		offset, err := t.relative(line, ops[0])
		if err != nil {
			return nil, err
		}
		return encodeInstruction(op, 0, SIZE_Q, 0, 0, 0, offset), nil

	case formPush:
		rs, err := t.register(line, ops[0])
		if err != nil {
			return nil, err
		}
		return encodeInstruction(op, 0, SIZE_Q, 0, rs, 0, 0), nil

	case formPop:
		rd, err := t.register(line, ops[0])
		if err != nil {
			return nil, err
		}
		return encodeInstruction(op, rd, SIZE_Q, 0, 0, 0, 0), nil

	case formWait:
		imm, err := t.imm32(line, ops[0])
		if err != nil {
			return nil, err
		}
		return encodeInstruction(op, 0, 0, 1, 0, 0, imm), nil
	}
	return t.encodeFP(line, def, ops)
}

// fpOperandKinds lists the register file of each operand: f for FPU, r for
// integer.
var fpOperandKinds = map[form]string{
	formFP2:      "ff",
	formFP2IntF:  "fr",
	formFP2FInt:  "rf",
	formFP3:      "fff",
	formFPCmp:    "rff",
	formFPStatus: "r",
	formFPCtrl:   "r",
}

// encodeFP handles the FPU forms. FPU operations are always .l.
func (t *Target) encodeFP(line *assembler.SourceLine, def instrDef, ops []string) ([]byte, error) {
	op := def.opcode
	var regs [3]byte
	if k, ok := fpOperandKinds[def.form]; ok {
		for i := range k {
			var err error
			if k[i] == 'f' {
				regs[i], err = t.fpRegister(line, ops[i])
			} else {
				regs[i], err = t.register(line, ops[i])
			}
			if err != nil {
				return nil, err
			}
		}
	}

	switch def.form {
	case formFP2, formFP2IntF, formFP2FInt:
		return encodeInstruction(op, regs[0], SIZE_L, 0, regs[1], 0, 0), nil
	case formFP3, formFPCmp:
		return encodeInstruction(op, regs[0], SIZE_L, 0, regs[1], regs[2], 0), nil
	case formFPStatus:
		return encodeInstruction(op, regs[0], SIZE_L, 0, 0, 0, 0), nil
	case formFPCtrl:
		return encodeInstruction(op, 0, SIZE_L, 0, regs[0], 0, 0), nil

	case formFPLoad, formFPStore:
		fr, err := t.fpRegister(line, ops[0])
		if err != nil {
			return nil, err
		}
		disp, rs, err := t.indirect(line, ops[1])
		if err != nil {
			return nil, err
		}
		return encodeInstruction(op, fr, SIZE_L, xbit(disp), rs, 0, disp), nil

	case formFPImm:
		fd, err := t.fpRegister(line, ops[0])
		if err != nil {
			return nil, err
		}
		imm, err := t.imm32(line, ops[1])
		if err != nil {
			return nil, err
		}
		return encodeInstruction(op, fd, SIZE_L, 1, 0, 0, imm), nil
	}
	return nil, fmt.Errorf("ie64: no encoder for opcode $%02X", op)
}

func xbit(disp uint32) byte {
	if disp != 0 {
		return 1
	}
	return 0
}

// ---------------------------------------------------------------------
// Pseudo-instructions
// ---------------------------------------------------------------------

// asmLa lowers "la rd, addr" to "lea rd, addr(r0)".
func (t *Target) asmLa(line *assembler.SourceLine, ops []string) ([]byte, error) {
	if len(ops) != 2 {
		return nil, parseErr(line, "la requires 2 operands (rd, addr)")
	}
	rd, err := t.register(line, ops[0])
	if err != nil {
		return nil, err
	}
	addr, err := t.ctx.Evaluate(line, ops[1])
	if err != nil {
		return nil, err
	}
	imm, err := field32(line, addr)
	if err != nil {
		return nil, err
	}
	t.ctx.Warn(line, "pseudo-op 'la' lowered to lea %s, %s(r0)", ops[0], ops[1])
	return encodeInstruction(OP64_LEA, rd, SIZE_Q, 1, 0, 0, imm), nil
}

// asmLi lowers "li rd, #imm" to move.l, followed by movt when the value
// needs more than 32 bits.
func (t *Target) asmLi(line *assembler.SourceLine, ops []string) ([]byte, error) {
	if len(ops) != 2 {
		return nil, parseErr(line, "li requires 2 operands (rd, #imm)")
	}
	rd, err := t.register(line, ops[0])
	if err != nil {
		return nil, err
	}
	v, err := t.immediate(line, ops[1])
	if err != nil {
		return nil, err
	}
	val := uint64(v)
	if val <= math.MaxUint32 {
		t.ctx.Warn(line, "pseudo-op 'li' lowered to move.l %s, #%d", ops[0], val)
		return encodeInstruction(OP64_MOVE, rd, SIZE_L, 1, 0, 0, uint32(val)), nil
	}
	lo, hi := uint32(val), uint32(val>>32)
	t.ctx.Warn(line, "pseudo-op 'li' lowered to move.l + movt %s, #$%X_%08X", ops[0], hi, lo)
	instr := encodeInstruction(OP64_MOVE, rd, SIZE_L, 1, 0, 0, lo)
	return append(instr, encodeInstruction(OP64_MOVT, rd, SIZE_Q, 1, 0, 0, hi)...), nil
}
