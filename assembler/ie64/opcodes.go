// opcodes.go - IE64 opcode map and instruction forms

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

/*
IE64 Instruction Encoding (8 bytes, little-endian):
  Byte 0:   Opcode (8 bits)
  Byte 1:   Rd[4:0] (5 bits) | Size[1:0] (2 bits) | X (1 bit)
  Byte 2:   Rs[4:0] (5 bits) | unused (3 bits)
  Byte 3:   Rt[4:0] (5 bits) | unused (3 bits)
  Bytes 4-7: imm32 (32-bit LE)

Registers: r0-r31 (sp = r31), f0-f15 for the FPU.
*/

package ie64

// ---------------------------------------------------------------------
// Opcode constants
// ---------------------------------------------------------------------
const (
	OP64_MOVE    = 0x01
	OP64_MOVT    = 0x02
	OP64_MOVEQ   = 0x03
	OP64_LEA     = 0x04
	OP64_LOAD    = 0x10
	OP64_STORE   = 0x11
	OP64_ADD     = 0x20
	OP64_SUB     = 0x21
	OP64_MULU    = 0x22
	OP64_MULS    = 0x23
	OP64_DIVU    = 0x24
	OP64_DIVS    = 0x25
	OP64_MOD     = 0x26
	OP64_NEG     = 0x27
	OP64_AND     = 0x30
	OP64_OR      = 0x31
	OP64_EOR     = 0x32
	OP64_NOT     = 0x33
	OP64_LSL     = 0x34
	OP64_LSR     = 0x35
	OP64_ASR     = 0x36
	OP64_CLZ     = 0x37
	OP64_BRA     = 0x40
	OP64_BEQ     = 0x41
	OP64_BNE     = 0x42
	OP64_BLT     = 0x43
	OP64_BGE     = 0x44
	OP64_BGT     = 0x45
	OP64_BLE     = 0x46
	OP64_BHI     = 0x47
	OP64_BLS     = 0x48
	OP64_JMP     = 0x49
	OP64_JSR     = 0x50
	OP64_RTS     = 0x51
	OP64_PUSH    = 0x52
	OP64_POP     = 0x53
	OP64_JSR_IND = 0x54
	OP64_FMOV    = 0x60
	OP64_FLOAD   = 0x61
	OP64_FSTORE  = 0x62
	OP64_FADD    = 0x63
	OP64_FSUB    = 0x64
	OP64_FMUL    = 0x65
	OP64_FDIV    = 0x66
	OP64_FMOD    = 0x67
	OP64_FABS    = 0x68
	OP64_FNEG    = 0x69
	OP64_FSQRT   = 0x6A
	OP64_FINT    = 0x6B
	OP64_FCMP    = 0x6C
	OP64_FCVTIF  = 0x6D
	OP64_FCVTFI  = 0x6E
	OP64_FMOVI   = 0x6F
	OP64_FMOVO   = 0x70
	OP64_FSIN    = 0x71
	OP64_FCOS    = 0x72
	OP64_FTAN    = 0x73
	OP64_FATAN   = 0x74
	OP64_FLOG    = 0x75
	OP64_FEXP    = 0x76
	OP64_FPOW    = 0x77
	OP64_FMOVECR = 0x78
	OP64_FMOVSR  = 0x79
	OP64_FMOVCR  = 0x7A
	OP64_FMOVSC  = 0x7B
	OP64_FMOVCC  = 0x7C
	OP64_NOP     = 0xE0
	OP64_HALT    = 0xE1
	OP64_SEI     = 0xE2
	OP64_CLI     = 0xE3
	OP64_RTI     = 0xE4
	OP64_WAIT    = 0xE5
)

// Size codes
const (
	SIZE_B = 0
	SIZE_W = 1
	SIZE_L = 2
	SIZE_Q = 3
)

// InstrSize is the width of every IE64 instruction.
const InstrSize = 8

// form selects the operand parser for a mnemonic.
type form int

const (
	formNone form = iota
	formMove
	formImm      // rd, #imm
	formLea      // rd, disp(rs)
	formMem      // rd, disp(rs) with X set for a non-zero displacement
	formALU3     // rd, rs, rt|#imm
	formALU2     // rd, rs
	formBra      // target
	formBcc      // rs, rt, target
	formJmp      // disp(rs)
	formJsr      // target | disp(rs)
	formPush     // rs
	formPop      // rd
	formWait     // #cycles
	formFP2      // fd, fs
	formFP2IntF  // fd, rs
	formFP2FInt  // rd, fs
	formFP3      // fd, fs, ft
	formFPCmp    // rd, fs, ft
	formFPLoad   // fd, disp(rs)
	formFPStore  // fs, disp(rs)
	formFPImm    // fd, #imm
	formFPStatus // rd
	formFPCtrl   // rs
)

type instrDef struct {
	opcode byte
	form   form
	sized  bool
}

var instructions = map[string]instrDef{
	"move":  {OP64_MOVE, formMove, true},
	"movt":  {OP64_MOVT, formImm, false},
	"moveq": {OP64_MOVEQ, formImm, false},
	"lea":   {OP64_LEA, formLea, false},
	"load":  {OP64_LOAD, formMem, true},
	"store": {OP64_STORE, formMem, true},

	"add":  {OP64_ADD, formALU3, true},
	"sub":  {OP64_SUB, formALU3, true},
	"mulu": {OP64_MULU, formALU3, true},
	"muls": {OP64_MULS, formALU3, true},
	"divu": {OP64_DIVU, formALU3, true},
	"divs": {OP64_DIVS, formALU3, true},
	"mod":  {OP64_MOD, formALU3, true},
	"neg":  {OP64_NEG, formALU2, true},
	"and":  {OP64_AND, formALU3, true},
	"or":   {OP64_OR, formALU3, true},
	"eor":  {OP64_EOR, formALU3, true},
	"not":  {OP64_NOT, formALU2, true},
	"lsl":  {OP64_LSL, formALU3, true},
	"lsr":  {OP64_LSR, formALU3, true},
	"asr":  {OP64_ASR, formALU3, true},
	"clz":  {OP64_CLZ, formALU2, true},

	"bra": {OP64_BRA, formBra, false},
	"beq": {OP64_BEQ, formBcc, false},
	"bne": {OP64_BNE, formBcc, false},
	"blt": {OP64_BLT, formBcc, false},
	"bge": {OP64_BGE, formBcc, false},
	"bgt": {OP64_BGT, formBcc, false},
	"ble": {OP64_BLE, formBcc, false},
	"bhi": {OP64_BHI, formBcc, false},
	"bls": {OP64_BLS, formBcc, false},
	"jmp": {OP64_JMP, formJmp, false},

	"jsr":  {OP64_JSR, formJsr, false},
	"rts":  {OP64_RTS, formNone, false},
	"push": {OP64_PUSH, formPush, false},
	"pop":  {OP64_POP, formPop, false},

	"fmov":    {OP64_FMOV, formFP2, false},
	"fload":   {OP64_FLOAD, formFPLoad, false},
	"fstore":  {OP64_FSTORE, formFPStore, false},
	"fadd":    {OP64_FADD, formFP3, false},
	"fsub":    {OP64_FSUB, formFP3, false},
	"fmul":    {OP64_FMUL, formFP3, false},
	"fdiv":    {OP64_FDIV, formFP3, false},
	"fmod":    {OP64_FMOD, formFP3, false},
	"fabs":    {OP64_FABS, formFP2, false},
	"fneg":    {OP64_FNEG, formFP2, false},
	"fsqrt":   {OP64_FSQRT, formFP2, false},
	"fint":    {OP64_FINT, formFP2, false},
	"fcmp":    {OP64_FCMP, formFPCmp, false},
	"fcvtif":  {OP64_FCVTIF, formFP2IntF, false},
	"fcvtfi":  {OP64_FCVTFI, formFP2FInt, false},
	"fmovi":   {OP64_FMOVI, formFP2IntF, false},
	"fmovo":   {OP64_FMOVO, formFP2FInt, false},
	"fsin":    {OP64_FSIN, formFP2, false},
	"fcos":    {OP64_FCOS, formFP2, false},
	"ftan":    {OP64_FTAN, formFP2, false},
	"fatan":   {OP64_FATAN, formFP2, false},
	"flog":    {OP64_FLOG, formFP2, false},
	"fexp":    {OP64_FEXP, formFP2, false},
	"fpow":    {OP64_FPOW, formFP3, false},
	"fmovecr": {OP64_FMOVECR, formFPImm, false},
	"fmovsr":  {OP64_FMOVSR, formFPStatus, false},
	"fmovcr":  {OP64_FMOVCR, formFPStatus, false},
	"fmovsc":  {OP64_FMOVSC, formFPCtrl, false},
	"fmovcc":  {OP64_FMOVCC, formFPCtrl, false},

	"nop":  {OP64_NOP, formNone, false},
	"halt": {OP64_HALT, formNone, false},
	"sei":  {OP64_SEI, formNone, false},
	"cli":  {OP64_CLI, formNone, false},
	"rti":  {OP64_RTI, formNone, false},
	"wait": {OP64_WAIT, formWait, false},
}

// zeroBranches lowers "bxxz rs, target" to "bxx rs, r0, target".
var zeroBranches = map[string]string{
	"beqz": "beq",
	"bnez": "bne",
	"bltz": "blt",
	"bgez": "bge",
	"bgtz": "bgt",
	"blez": "ble",
}

// opcodeNames maps an opcode back to its mnemonic.
var opcodeNames = func() map[byte]string {
	m := make(map[byte]string, len(instructions)+1)
	for name, def := range instructions {
		m[def.opcode] = name
	}
	m[OP64_JSR_IND] = "jsr"
	return m
}()

func isFPOpcode(op byte) bool {
	return op >= OP64_FMOV && op <= OP64_FMOVCC
}

var sizeSuffix = [4]string{".b", ".w", ".l", ".q"}

// splitSize strips a .b/.w/.l/.q suffix. Without one the size is .q.
func splitSize(mnemonic string) (base string, size byte, explicit bool) {
	for code, suf := range sizeSuffix {
		if len(mnemonic) > len(suf) && mnemonic[len(mnemonic)-len(suf):] == suf {
			return mnemonic[:len(mnemonic)-len(suf)], byte(code), true
		}
	}
	return mnemonic, SIZE_Q, false
}
