// encode.go - IE64 instruction word and operand parsing

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
	"strconv"
	"strings"

	"github.com/intuitionamiga/ieasm/assembler"
)

func encodeInstruction(opcode byte, rd, size, xbit, rs, rt byte, imm32 uint32) []byte {
	instr := make([]byte, InstrSize)
	instr[0] = opcode
	instr[1] = (rd << 3) | (size << 1) | xbit
	instr[2] = rs << 3
	instr[3] = rt << 3
	binary.LittleEndian.PutUint32(instr[4:], imm32)
	return instr
}

// ---------------------------------------------------------------------
// Register parsing
// ---------------------------------------------------------------------

func parseRegister(name string) (byte, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "sp" {
		return 31, true
	}
	if strings.HasPrefix(name, "r") {
		n, err := strconv.Atoi(name[1:])
		if err == nil && n >= 0 && n <= 31 {
			return byte(n), true
		}
	}
	return 0, false
}

func parseFPRegister(name string) (byte, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if strings.HasPrefix(name, "f") {
		n, err := strconv.Atoi(name[1:])
		if err == nil && n >= 0 && n <= 15 {
			return byte(n), true
		}
	}
	return 0, false
}

// splitIndirect splits "disp(rs)" or "(rs)". ok is false when s does not
// end in a register in parentheses.
func splitIndirect(s string) (disp string, reg byte, ok bool) {
	s = strings.TrimSpace(s)
	if !strings.HasSuffix(s, ")") {
		return "", 0, false
	}
	open := strings.LastIndexByte(s, '(')
	if open < 0 {
		return "", 0, false
	}
	reg, ok = parseRegister(s[open+1 : len(s)-1])
	return strings.TrimSpace(s[:open]), reg, ok
}

// ---------------------------------------------------------------------
// Operand evaluation
// ---------------------------------------------------------------------

func parseErr(line *assembler.SourceLine, format string, args ...interface{}) error {
	return assembler.NewLineError(line, assembler.KindParse, format, args...)
}

func (t *Target) register(line *assembler.SourceLine, op string) (byte, error) {
	r, ok := parseRegister(op)
	if !ok {
		return 0, parseErr(line, "Invalid register '%s'", strings.TrimSpace(op))
	}
	return r, nil
}

func (t *Target) fpRegister(line *assembler.SourceLine, op string) (byte, error) {
	r, ok := parseFPRegister(op)
	if !ok {
		return 0, parseErr(line, "Invalid FP register '%s'", strings.TrimSpace(op))
	}
	return r, nil
}

// immediate evaluates a "#expr" operand.
func (t *Target) immediate(line *assembler.SourceLine, op string) (int64, error) {
	op = strings.TrimSpace(op)
	if !strings.HasPrefix(op, "#") {
		return 0, parseErr(line, "Immediate operand expected, got '%s'", op)
	}
	return t.ctx.Evaluate(line, op[1:])
}

// imm32 evaluates an immediate that must fit the 32-bit field as either a
// signed or an unsigned value.
func (t *Target) imm32(line *assembler.SourceLine, op string) (uint32, error) {
	v, err := t.immediate(line, op)
	if err != nil {
		return 0, err
	}
	return field32(line, v)
}

func field32(line *assembler.SourceLine, v int64) (uint32, error) {
	if v < math.MinInt32 || v > math.MaxUint32 {
		return 0, assembler.NewLineError(line, assembler.KindOverflow, "Illegal quantity %d", v)
	}
	return uint32(v), nil
}

// indirect evaluates a "disp(rs)" operand.
func (t *Target) indirect(line *assembler.SourceLine, op string) (uint32, byte, error) {
	dispStr, rs, ok := splitIndirect(op)
	if !ok {
		return 0, 0, parseErr(line, "Expected disp(rs), got '%s'", strings.TrimSpace(op))
	}
	if dispStr == "" {
		return 0, rs, nil
	}
	disp, err := t.ctx.Evaluate(line, dispStr)
	if err != nil {
		return 0, 0, err
	}
	d, err := field32(line, disp)
	return d, rs, err
}

// relative evaluates a branch target as an offset from the instruction.
func (t *Target) relative(line *assembler.SourceLine, op string) (uint32, error) {
	target, err := t.ctx.Evaluate(line, op)
	if err != nil {
		return 0, err
	}
	offset := target - line.PC
	if offset < math.MinInt32 || offset > math.MaxInt32 {
		return 0, assembler.NewLineError(line, assembler.KindOverflow, "Branch target $%X out of range", target)
	}
	return uint32(int32(offset)), nil
}

// warnTruncation flags move immediates wider than the operation size.
func (t *Target) warnTruncation(line *assembler.SourceLine, v int64, size byte) {
	bits := [4]uint{8, 16, 32, 32}[size]
	if v >= -(int64(1)<<(bits-1)) && v <= (int64(1)<<bits)-1 {
		return
	}
	if size == SIZE_Q {
		t.ctx.Warn(line, "immediate $%X truncated to 32-bit field, use li", uint64(v))
		return
	}
	t.ctx.Warn(line, "immediate $%X truncated to %d-bit (%s)", uint64(v), bits, sizeSuffix[size])
}
