// opcodes.go - IE32 instruction table

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

package ie32

import "strings"

// InstrSize is the width of every IE32 instruction:
//
//	Byte 0:    opcode
//	Byte 1:    register
//	Byte 2:    addressing mode
//	Byte 3:    unused
//	Bytes 4-7: operand (32-bit LE)
const InstrSize = 8

// Addressing modes
const (
	ADDR_IMMEDIATE = 0x00
	ADDR_REGISTER  = 0x01
	ADDR_REG_IND   = 0x02
	ADDR_MEM_IND   = 0x03
	ADDR_DIRECT    = 0x04
)

// Register-indirect operands carry the base register in the low two bits
// and a word-aligned offset above them, so only A, X, Y and Z can be a base.
const (
	regIndirectMask = 0x03
	offsetMask      = 0xFFFFFFFC
)

var registers = map[string]byte{
	"A": 0, "X": 1, "Y": 2, "Z": 3,
	"B": 4, "C": 5, "D": 6, "E": 7,
	"F": 8, "G": 9, "H": 10, "S": 11,
	"T": 12, "U": 13, "V": 14, "W": 15,
}

type form int

const (
	formNone    form = iota
	formRegOp        // reg, operand
	formImplied      // operand, register implied by the mnemonic
	formOperand      // operand
	formReg          // reg
	formJump         // target
	formBranch       // reg, target
)

type instrDef struct {
	opcode byte
	form   form
	reg    byte // implied register for formImplied
}

var instructions = map[string]instrDef{
	"load":  {0x01, formRegOp, 0},
	"store": {0x02, formRegOp, 0},
	"add":   {0x03, formRegOp, 0},
	"sub":   {0x04, formRegOp, 0},
	"and":   {0x05, formRegOp, 0},
	"or":    {0x09, formRegOp, 0},
	"xor":   {0x0A, formRegOp, 0},
	"shl":   {0x0B, formRegOp, 0},
	"shr":   {0x0C, formRegOp, 0},
	"mul":   {0x14, formRegOp, 0},
	"div":   {0x15, formRegOp, 0},
	"mod":   {0x16, formRegOp, 0},

	"jmp": {0x06, formJump, 0},
	"jsr": {0x18, formJump, 0},
	"jnz": {0x07, formBranch, 0},
	"jz":  {0x08, formBranch, 0},
	"jgt": {0x0E, formBranch, 0},
	"jge": {0x0F, formBranch, 0},
	"jlt": {0x10, formBranch, 0},
	"jle": {0x11, formBranch, 0},

	"not":  {0x0D, formReg, 0},
	"push": {0x12, formReg, 0},
	"pop":  {0x13, formReg, 0},

	"wait": {0x17, formOperand, 0},
	"inc":  {0x28, formOperand, 0},
	"dec":  {0x29, formOperand, 0},

	"rts":  {0x19, formNone, 0},
	"sei":  {0x1A, formNone, 0},
	"cli":  {0x1B, formNone, 0},
	"rti":  {0x1C, formNone, 0},
	"nop":  {0xEE, formNone, 0},
	"halt": {0xFF, formNone, 0},
}

// The per-register loads and stores were added in two batches, so their
// opcodes are not contiguous.
func init() {
	loads := map[string]byte{
		"a": 0x20, "x": 0x21, "y": 0x22, "z": 0x23,
		"b": 0x3A, "c": 0x3B, "d": 0x3C, "e": 0x3D, "f": 0x3E, "g": 0x3F,
		"h": 0x4C, "s": 0x4D, "t": 0x4E, "u": 0x40, "v": 0x41, "w": 0x42,
	}
	stores := map[string]byte{
		"a": 0x24, "x": 0x25, "y": 0x26, "z": 0x27,
		"b": 0x43, "c": 0x44, "d": 0x45, "e": 0x46, "f": 0x47, "g": 0x48,
		"h": 0x4F, "s": 0x50, "t": 0x51, "u": 0x49, "v": 0x4A, "w": 0x4B,
	}
	for r, op := range loads {
		instructions["ld"+r] = instrDef{op, formImplied, registerOf(r)}
	}
	for r, op := range stores {
		instructions["st"+r] = instrDef{op, formImplied, registerOf(r)}
	}
}

func registerOf(name string) byte {
	return registers[strings.ToUpper(name)]
}
