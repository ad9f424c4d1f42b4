// disasm.go - IE64 disassembler

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
	"fmt"
	"strings"
)

// Instruction holds the decoded fields of one instruction word.
type Instruction struct {
	PC     uint32
	Raw    [InstrSize]byte
	Opcode byte
	Rd     byte
	Size   byte
	Xbit   byte
	Rs     byte
	Rt     byte
	Imm32  uint32
}

// Decode decodes the instruction word at the start of data, which must
// hold at least InstrSize bytes.
func Decode(data []byte, pc uint32) Instruction {
	var d Instruction
	d.PC = pc
	copy(d.Raw[:], data[:InstrSize])
	d.Opcode = data[0]
	d.Rd = data[1] >> 3
	d.Size = (data[1] >> 1) & 0x03
	d.Xbit = data[1] & 1
	d.Rs = data[2] >> 3
	d.Rt = data[3] >> 3
	d.Imm32 = binary.LittleEndian.Uint32(data[4:8])
	return d
}

func regName(r byte) string {
	if r == 31 {
		return "sp"
	}
	return fmt.Sprintf("r%d", r)
}

func fpName(r byte) string {
	return fmt.Sprintf("f%d", r&0x0F)
}

func hexWord(raw [InstrSize]byte) string {
	parts := make([]string, len(raw))
	for i, b := range raw {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, " ")
}

func indirectOperand(disp uint32, reg byte) string {
	d := int32(disp)
	switch {
	case d == 0:
		return fmt.Sprintf("(%s)", regName(reg))
	case d < 0:
		return fmt.Sprintf("-%d(%s)", -int64(d), regName(reg))
	}
	return fmt.Sprintf("%d(%s)", d, regName(reg))
}

func (d Instruction) target() uint32 {
	return uint32(int32(d.PC) + int32(d.Imm32))
}

// zeroBranchNames reverses the beqz..blez lowering.
var zeroBranchNames = func() map[string]string {
	m := make(map[string]string, len(zeroBranches))
	for pseudo, base := range zeroBranches {
		m[base] = pseudo
	}
	return m
}()

// FormatInstruction returns the hex bytes and source text of d. It does not
// recognize the two-word li sequence; Disassemble does.
func FormatInstruction(d Instruction) (string, string) {
	hex := hexWord(d.Raw)
	name, ok := opcodeNames[d.Opcode]
	if !ok {
		return hex, fmt.Sprintf("dc.b $%02X  ; unknown opcode", d.Opcode)
	}
	def := instructions[name]
	mnemonic := name
	if def.sized {
		mnemonic += sizeSuffix[d.Size]
	}

	if d.Opcode == OP64_JSR_IND {
		return hex, fmt.Sprintf("%s %s", mnemonic, indirectOperand(d.Imm32, d.Rs))
	}

	switch def.form {
	case formNone:
		return hex, mnemonic
	case formWait:
		return hex, fmt.Sprintf("%s #%d", mnemonic, d.Imm32)
	case formMove:
		if d.Xbit == 1 {
			return hex, fmt.Sprintf("%s %s, #$%X", mnemonic, regName(d.Rd), d.Imm32)
		}
		return hex, fmt.Sprintf("%s %s, %s", mnemonic, regName(d.Rd), regName(d.Rs))
	case formImm:
		return hex, fmt.Sprintf("%s %s, #$%X", mnemonic, regName(d.Rd), d.Imm32)
	case formLea:
		if d.Rs == 0 {
			return hex, fmt.Sprintf("la %s, $%X", regName(d.Rd), d.Imm32)
		}
		return hex, fmt.Sprintf("%s %s, %s", mnemonic, regName(d.Rd), indirectOperand(d.Imm32, d.Rs))
	case formMem:
		return hex, fmt.Sprintf("%s %s, %s", mnemonic, regName(d.Rd), indirectOperand(d.Imm32, d.Rs))
	case formALU3:
		if d.Xbit == 1 {
			return hex, fmt.Sprintf("%s %s, %s, #$%X", mnemonic, regName(d.Rd), regName(d.Rs), d.Imm32)
		}
		return hex, fmt.Sprintf("%s %s, %s, %s", mnemonic, regName(d.Rd), regName(d.Rs), regName(d.Rt))
	case formALU2:
		return hex, fmt.Sprintf("%s %s, %s", mnemonic, regName(d.Rd), regName(d.Rs))
	case formBra, formJsr:
		return hex, fmt.Sprintf("%s $%06X", mnemonic, d.target())
	case formBcc:
		if pseudo, ok := zeroBranchNames[name]; ok && d.Rt == 0 {
			return hex, fmt.Sprintf("%s %s, $%06X", pseudo, regName(d.Rs), d.target())
		}
		return hex, fmt.Sprintf("%s %s, %s, $%06X", mnemonic, regName(d.Rs), regName(d.Rt), d.target())
	case formJmp:
		return hex, fmt.Sprintf("%s %s", mnemonic, indirectOperand(d.Imm32, d.Rs))
	case formPush:
		return hex, fmt.Sprintf("%s %s", mnemonic, regName(d.Rs))
	case formPop:
		return hex, fmt.Sprintf("%s %s", mnemonic, regName(d.Rd))

	case formFP2:
		return hex, fmt.Sprintf("%s %s, %s", mnemonic, fpName(d.Rd), fpName(d.Rs))
	case formFP2IntF:
		return hex, fmt.Sprintf("%s %s, %s", mnemonic, fpName(d.Rd), regName(d.Rs))
	case formFP2FInt:
		return hex, fmt.Sprintf("%s %s, %s", mnemonic, regName(d.Rd), fpName(d.Rs))
	case formFP3:
		return hex, fmt.Sprintf("%s %s, %s, %s", mnemonic, fpName(d.Rd), fpName(d.Rs), fpName(d.Rt))
	case formFPCmp:
		return hex, fmt.Sprintf("%s %s, %s, %s", mnemonic, regName(d.Rd), fpName(d.Rs), fpName(d.Rt))
	case formFPLoad, formFPStore:
		return hex, fmt.Sprintf("%s %s, %s", mnemonic, fpName(d.Rd), indirectOperand(d.Imm32, d.Rs))
	case formFPImm:
		return hex, fmt.Sprintf("%s %s, #%d", mnemonic, fpName(d.Rd), d.Imm32)
	case formFPStatus:
		return hex, fmt.Sprintf("%s %s", mnemonic, regName(d.Rd))
	case formFPCtrl:
		return hex, fmt.Sprintf("%s %s", mnemonic, regName(d.Rs))
	}
	return hex, mnemonic + " ???"
}

// Disassemble formats a whole image loaded at base. A move.l immediate
// followed by a movt to the same register is shown as li.
func Disassemble(data []byte, base uint32) []string {
	var lines []string
	offset := 0
	for offset+InstrSize <= len(data) {
		pc := base + uint32(offset)
		d := Decode(data[offset:], pc)

		if d.Opcode == OP64_MOVE && d.Xbit == 1 && d.Size == SIZE_L && offset+2*InstrSize <= len(data) {
			next := Decode(data[offset+InstrSize:], pc+InstrSize)
			if next.Opcode == OP64_MOVT && next.Rd == d.Rd {
				combined := uint64(next.Imm32)<<32 | uint64(d.Imm32)
				lines = append(lines,
					fmt.Sprintf("$%06X: %s    li %s, #$%X", pc, hexWord(d.Raw), regName(d.Rd), combined),
					fmt.Sprintf("$%06X: %s     ; (movt %s, #$%X)", next.PC, hexWord(next.Raw), regName(next.Rd), next.Imm32))
				offset += 2 * InstrSize
				continue
			}
		}

		hex, text := FormatInstruction(d)
		lines = append(lines, fmt.Sprintf("$%06X: %s    %s", pc, hex, text))
		offset += InstrSize
	}

	if offset < len(data) {
		var parts []string
		for _, b := range data[offset:] {
			parts = append(parts, fmt.Sprintf("%02X", b))
		}
		lines = append(lines, fmt.Sprintf("$%06X: %-23s    dc.b $%s  ; trailing bytes",
			base+uint32(offset), strings.Join(parts, " "), strings.Join(parts, ", $")))
	}
	return lines
}
