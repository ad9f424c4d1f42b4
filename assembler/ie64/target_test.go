// target_test.go

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
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/intuitionamiga/ieasm/assembler"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// encodeInstr builds an expected 8-byte instruction for comparison.
//
//	Byte 0: opcode
//	Byte 1: Rd[4:0] (5 bits) | Size[1:0] (2 bits) | X (1 bit)
//	Byte 2: Rs[4:0] (5 bits) | unused (3 bits)
//	Byte 3: Rt[4:0] (5 bits) | unused (3 bits)
//	Bytes 4-7: imm32 (32-bit LE)
func encodeInstr(opcode byte, rd, size, xbit, rs, rt byte, imm32 uint32) []byte {
	instr := make([]byte, 8)
	instr[0] = opcode
	instr[1] = (rd << 3) | (size << 1) | xbit
	instr[2] = rs << 3
	instr[3] = rt << 3
	binary.LittleEndian.PutUint32(instr[4:], imm32)
	return instr
}

func testOptions() assembler.Options {
	opts := assembler.DefaultOptions()
	opts.CPU = "ie64"
	opts.Origin = DefaultOrigin
	opts.MaxAddress = 0xFFFFFFFF
	return opts
}

// assembleResult assembles src with the IE64 target selected.
func assembleResult(t *testing.T, src string) (*assembler.Result, error) {
	t.Helper()
	return assembler.AssembleString("test.asm", src, testOptions())
}

func assembleString(t *testing.T, src string) []byte {
	t.Helper()
	res, err := assembleResult(t, src)
	if err != nil {
		for _, e := range res.Log.Entries() {
			t.Log(e)
		}
		t.Fatalf("assembly failed: %v", err)
	}
	return res.Code
}

func assembleExpectError(t *testing.T, src string) *assembler.Result {
	t.Helper()
	res, err := assembleResult(t, src)
	if err == nil {
		t.Fatal("expected assembly error, got nil")
	}
	return res
}

func logContains(res *assembler.Result, text string) bool {
	for _, e := range res.Log.Entries() {
		if strings.Contains(e.Message, text) {
			return true
		}
	}
	return false
}

// IE64 size codes
const (
	szB byte = 0
	szW byte = 1
	szL byte = 2
	szQ byte = 3
)

// assertBytes compares output at offset, producing a clear diff on failure.
func assertBytes(t *testing.T, got []byte, offset int, expected []byte, label string) {
	t.Helper()
	end := offset + len(expected)
	if end > len(got) {
		t.Fatalf("%s: output too short, want %d bytes at offset %d, got %d total bytes",
			label, len(expected), offset, len(got))
	}
	actual := got[offset:end]
	if !bytes.Equal(actual, expected) {
		t.Errorf("%s: mismatch at offset %d\n  got:  %02x\n  want: %02x",
			label, offset, actual, expected)
	}
}

func assertLen(t *testing.T, got []byte, want int, label string) {
	t.Helper()
	if len(got) != want {
		t.Fatalf("%s: output length = %d, want %d", label, len(got), want)
	}
}

// ---------------------------------------------------------------------------
// Directives and symbols
// ---------------------------------------------------------------------------

func TestIE64Asm_Org(t *testing.T) {
	src := `
		org $2000
start:
		move.q r1, #start
`
	bin := assembleString(t, src)
	want := encodeInstr(OP64_MOVE, 1, szQ, 1, 0, 0, 0x2000)
	assertBytes(t, bin, 0, want, "org $2000 / move.q r1, #start")
}

func TestIE64Asm_Equ(t *testing.T) {
	src := `
SCREEN = $A0000
		move.q r1, #SCREEN
`
	bin := assembleString(t, src)
	assertBytes(t, bin, 0, encodeInstr(OP64_MOVE, 1, szQ, 1, 0, 0, 0xA0000), "SCREEN")
}

func TestIE64Asm_Labels(t *testing.T) {
	// Default origin is $1000 and every instruction is 8 bytes.
	src := `
first:
		nop
second:
		nop
		move.q r1, #first
		move.q r2, #second
`
	bin := assembleString(t, src)
	assertLen(t, bin, 4*8, "labels")
	assertBytes(t, bin, 16, encodeInstr(OP64_MOVE, 1, szQ, 1, 0, 0, 0x1000), "label first")
	assertBytes(t, bin, 24, encodeInstr(OP64_MOVE, 2, szQ, 1, 0, 0, 0x1008), "label second")
}

func TestIE64Asm_DC(t *testing.T) {
	q := make([]byte, 8)
	binary.LittleEndian.PutUint64(q, 0xCAFEBABE_DEADBEEF)

	tests := []struct {
		src  string
		want []byte
	}{
		{"\tdc.b 1,2,3", []byte{1, 2, 3}},
		{"\tdc.b -1", []byte{0xFF}},
		{"\tdc.w $1234,$5678", []byte{0x34, 0x12, 0x78, 0x56}},
		{"\tdc.l $12345678", []byte{0x78, 0x56, 0x34, 0x12}},
		{"\tdc.q $CAFEBABE_DEADBEEF", q},
		{"\tdc.b \"Hello\"", []byte("Hello")},
		{"\tdc.b \"a\\n\\t\\0\\\\\\\"\"", []byte{'a', '\n', '\t', 0, '\\', '"'}},
		{"\tdc.b \"AB\", 0", []byte{'A', 'B', 0}},
	}
	for _, tc := range tests {
		t.Run(tc.src, func(t *testing.T) {
			bin := assembleString(t, tc.src)
			assertLen(t, bin, len(tc.want), tc.src)
			assertBytes(t, bin, 0, tc.want, tc.src)
		})
	}
}

func TestIE64Asm_DS(t *testing.T) {
	tests := []struct {
		src  string
		want int
	}{
		{"\tds.b 16", 16},
		{"\tds.w 3", 6},
		{"\tds.l 2", 8},
		{"\tds.q 2", 16},
	}
	for _, tc := range tests {
		bin := assembleString(t, tc.src+"\n\tdc.b $AA")
		assertLen(t, bin, tc.want+1, tc.src)
		if !bytes.Equal(bin[:tc.want], make([]byte, tc.want)) {
			t.Errorf("%s: reserved bytes not zero: % X", tc.src, bin[:tc.want])
		}
	}
}

func TestIE64Asm_Align(t *testing.T) {
	src := `
		dc.b 1
		align 8
here:
		move.q r1, #here
`
	bin := assembleString(t, src)
	assertLen(t, bin, 16, "align")
	assertBytes(t, bin, 0, []byte{1, 0, 0, 0, 0, 0, 0, 0}, "padding")
	assertBytes(t, bin, 8, encodeInstr(OP64_MOVE, 1, szQ, 1, 0, 0, 0x1008), "aligned label")
}

func TestIE64Asm_Incbin(t *testing.T) {
	binFile := filepath.Join(t.TempDir(), "data.bin")
	payload := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0xCA, 0xFE}
	if err := os.WriteFile(binFile, payload, 0644); err != nil {
		t.Fatal(err)
	}

	bin := assembleString(t, "\tincbin \""+binFile+"\"\n")
	assertLen(t, bin, len(payload), "incbin")
	assertBytes(t, bin, 0, payload, "incbin")

	bin = assembleString(t, "\tincbin \""+binFile+"\",2,3\n")
	assertLen(t, bin, 3, "incbin slice")
	assertBytes(t, bin, 0, []byte{0xBE, 0xEF, 0xCA}, "incbin slice")
}

func TestIE64Asm_HexFormats(t *testing.T) {
	bin := assembleString(t, `
		move.l r1, #$FF
		move.l r2, #0xFF
		move.l r3, #%11111111
		move.l r4, #255
`)
	for i := 0; i < 4; i++ {
		assertBytes(t, bin, i*8, encodeInstr(OP64_MOVE, byte(i+1), szL, 1, 0, 0, 0xFF), "hex format")
	}
}

func TestIE64Asm_Comments(t *testing.T) {
	bin := assembleString(t, `
; full line comment
		nop ; trailing comment
`)
	assertLen(t, bin, 8, "comments")
	assertBytes(t, bin, 0, encodeInstr(OP64_NOP, 0, 0, 0, 0, 0, 0), "nop")
}

func TestIE64Asm_CaseInsensitive(t *testing.T) {
	bin := assembleString(t, `
		MOVE.Q R1, R2
		Add.L r3, SP, #4
		DC.B 7
`)
	assertBytes(t, bin, 0, encodeInstr(OP64_MOVE, 1, szQ, 0, 2, 0, 0), "MOVE.Q")
	assertBytes(t, bin, 8, encodeInstr(OP64_ADD, 3, szL, 1, 31, 0, 4), "Add.L")
	assertBytes(t, bin, 16, []byte{7}, "DC.B")
}

func TestIE64Asm_SelectWithCPUDirective(t *testing.T) {
	opts := assembler.DefaultOptions()
	res, err := assembler.AssembleString("test.asm", "\t.cpu \"ie64\"\n\thalt\n", opts)
	if err != nil {
		t.Fatal(err)
	}
	assertBytes(t, res.Code, 0, encodeInstr(OP64_HALT, 0, 0, 0, 0, 0, 0), ".cpu ie64")
}

// ---------------------------------------------------------------------------
// Instructions
// ---------------------------------------------------------------------------

func TestIE64Asm_Move(t *testing.T) {
	tests := []struct {
		src  string
		want []byte
	}{
		{"move.q r1, r2", encodeInstr(OP64_MOVE, 1, szQ, 0, 2, 0, 0)},
		{"move r1, r2", encodeInstr(OP64_MOVE, 1, szQ, 0, 2, 0, 0)},
		{"move.l r5, #$DEAD", encodeInstr(OP64_MOVE, 5, szL, 1, 0, 0, 0xDEAD)},
		{"move.b r1, #-1", encodeInstr(OP64_MOVE, 1, szB, 1, 0, 0, 0xFFFFFFFF)},
		{"movt r3, #$CAFEBABE", encodeInstr(OP64_MOVT, 3, szQ, 1, 0, 0, 0xCAFEBABE)},
		{"moveq r7, #-256", encodeInstr(OP64_MOVEQ, 7, szQ, 1, 0, 0, 0xFFFFFF00)},
		{"lea r1, 8(r2)", encodeInstr(OP64_LEA, 1, szQ, 1, 2, 0, 8)},
		{"lea r1, (r2)", encodeInstr(OP64_LEA, 1, szQ, 1, 2, 0, 0)},
	}
	for _, tc := range tests {
		t.Run(tc.src, func(t *testing.T) {
			assertBytes(t, assembleString(t, "\t"+tc.src), 0, tc.want, tc.src)
		})
	}
}

func TestIE64Asm_LoadStore(t *testing.T) {
	tests := []struct {
		src  string
		want []byte
	}{
		{"load.l r1, (r2)", encodeInstr(OP64_LOAD, 1, szL, 0, 2, 0, 0)},
		{"load.q r1, 16(r2)", encodeInstr(OP64_LOAD, 1, szQ, 1, 2, 0, 16)},
		{"store.b r3, -4(sp)", encodeInstr(OP64_STORE, 3, szB, 1, 31, 0, 0xFFFFFFFC)},
		{"store.w r4, (2+2)*2(r5)", encodeInstr(OP64_STORE, 4, szW, 1, 5, 0, 8)},
	}
	for _, tc := range tests {
		t.Run(tc.src, func(t *testing.T) {
			assertBytes(t, assembleString(t, "\t"+tc.src), 0, tc.want, tc.src)
		})
	}
}

func TestIE64Asm_ALU(t *testing.T) {
	tests := []struct {
		mnemonic string
		opcode   byte
	}{
		{"add", OP64_ADD}, {"sub", OP64_SUB}, {"mulu", OP64_MULU}, {"muls", OP64_MULS},
		{"divu", OP64_DIVU}, {"divs", OP64_DIVS}, {"mod", OP64_MOD},
		{"and", OP64_AND}, {"or", OP64_OR}, {"eor", OP64_EOR},
		{"lsl", OP64_LSL}, {"lsr", OP64_LSR}, {"asr", OP64_ASR},
	}
	for _, tc := range tests {
		t.Run(tc.mnemonic, func(t *testing.T) {
			bin := assembleString(t, "\t"+tc.mnemonic+".q r1, r2, r3\n\t"+tc.mnemonic+".w r4, r5, #10\n")
			assertBytes(t, bin, 0, encodeInstr(tc.opcode, 1, szQ, 0, 2, 3, 0), "register form")
			assertBytes(t, bin, 8, encodeInstr(tc.opcode, 4, szW, 1, 5, 0, 10), "immediate form")
		})
	}

	bin := assembleString(t, "\tneg.l r1, r2\n\tnot.b r3, r4\n\tclz r5, r6\n")
	assertBytes(t, bin, 0, encodeInstr(OP64_NEG, 1, szL, 0, 2, 0, 0), "neg.l")
	assertBytes(t, bin, 8, encodeInstr(OP64_NOT, 3, szB, 0, 4, 0, 0), "not.b")
	assertBytes(t, bin, 16, encodeInstr(OP64_CLZ, 5, szQ, 0, 6, 0, 0), "clz")
}

func TestIE64Asm_Branch(t *testing.T) {
	src := `
loop:
		add.q r1, r1, #1
		bne r1, r2, loop
		bra done
		nop
done:
		halt
`
	res, err := assembleResult(t, src)
	if err != nil {
		t.Fatal(err)
	}
	if res.Passes != 2 {
		t.Errorf("passes = %d, want 2", res.Passes)
	}
	bin := res.Code
	assertBytes(t, bin, 8, encodeInstr(OP64_BNE, 0, szQ, 0, 1, 2, 0xFFFFFFF8), "backward bne")
	assertBytes(t, bin, 16, encodeInstr(OP64_BRA, 0, szQ, 0, 0, 0, 0x10), "forward bra")
}

func TestIE64Asm_AnonymousBranch(t *testing.T) {
	bin := assembleString(t, `
-		sub.q r1, r1, #1
		bnez r1, -
		beqz r2, +
		nop
+		halt
`)
	assertBytes(t, bin, 8, encodeInstr(OP64_BNE, 0, szQ, 0, 1, 0, 0xFFFFFFF8), "bnez -")
	assertBytes(t, bin, 16, encodeInstr(OP64_BEQ, 0, szQ, 0, 2, 0, 0x10), "beqz +")
}

func TestIE64Asm_ZeroBranches(t *testing.T) {
	tests := []struct {
		pseudo string
		opcode byte
	}{
		{"beqz", OP64_BEQ}, {"bnez", OP64_BNE}, {"bltz", OP64_BLT},
		{"bgez", OP64_BGE}, {"bgtz", OP64_BGT}, {"blez", OP64_BLE},
	}
	for _, tc := range tests {
		t.Run(tc.pseudo, func(t *testing.T) {
			bin := assembleString(t, "target:\n\t"+tc.pseudo+" r7, target\n")
			assertBytes(t, bin, 0, encodeInstr(tc.opcode, 0, szQ, 0, 7, 0, 0), tc.pseudo)
		})
	}
}

func TestIE64Asm_JsrRts(t *testing.T) {
	bin := assembleString(t, `
		jsr sub
		jsr (r5)
		jsr 16(r5)
		halt
sub:
		rts
`)
	assertBytes(t, bin, 0, encodeInstr(OP64_JSR, 0, szQ, 0, 0, 0, 0x20), "jsr sub")
	assertBytes(t, bin, 8, encodeInstr(OP64_JSR_IND, 0, 0, 0, 5, 0, 0), "jsr (r5)")
	assertBytes(t, bin, 16, encodeInstr(OP64_JSR_IND, 0, 0, 0, 5, 0, 16), "jsr 16(r5)")
	assertBytes(t, bin, 32, encodeInstr(OP64_RTS, 0, 0, 0, 0, 0, 0), "rts")
}

func TestIE64Asm_Jmp(t *testing.T) {
	bin := assembleString(t, "\tjmp (r3)\n\tjmp -8(sp)\n")
	assertBytes(t, bin, 0, encodeInstr(OP64_JMP, 0, 0, 0, 3, 0, 0), "jmp (r3)")
	assertBytes(t, bin, 8, encodeInstr(OP64_JMP, 0, 0, 0, 31, 0, 0xFFFFFFF8), "jmp -8(sp)")
}

func TestIE64Asm_PushPop(t *testing.T) {
	bin := assembleString(t, "\tpush r3\n\tpop r4\n")
	assertBytes(t, bin, 0, encodeInstr(OP64_PUSH, 0, szQ, 0, 3, 0, 0), "push uses rs")
	assertBytes(t, bin, 8, encodeInstr(OP64_POP, 4, szQ, 0, 0, 0, 0), "pop uses rd")
}

func TestIE64Asm_System(t *testing.T) {
	bin := assembleString(t, "\tnop\n\thalt\n\tsei\n\tcli\n\trti\n\twait #100\n")
	ops := []byte{OP64_NOP, OP64_HALT, OP64_SEI, OP64_CLI, OP64_RTI}
	for i, op := range ops {
		assertBytes(t, bin, i*8, encodeInstr(op, 0, 0, 0, 0, 0, 0), opcodeNames[op])
	}
	assertBytes(t, bin, 40, encodeInstr(OP64_WAIT, 0, 0, 1, 0, 0, 100), "wait")
}

func TestIE64Asm_FPU(t *testing.T) {
	tests := []struct {
		src  string
		want []byte
	}{
		{"fmov f1, f2", encodeInstr(OP64_FMOV, 1, szL, 0, 2, 0, 0)},
		{"fadd f1, f2, f3", encodeInstr(OP64_FADD, 1, szL, 0, 2, 3, 0)},
		{"fpow f4, f5, f6", encodeInstr(OP64_FPOW, 4, szL, 0, 5, 6, 0)},
		{"fcmp r1, f2, f3", encodeInstr(OP64_FCMP, 1, szL, 0, 2, 3, 0)},
		{"fcvtif f1, r2", encodeInstr(OP64_FCVTIF, 1, szL, 0, 2, 0, 0)},
		{"fcvtfi r1, f2", encodeInstr(OP64_FCVTFI, 1, szL, 0, 2, 0, 0)},
		{"fload f1, 8(r2)", encodeInstr(OP64_FLOAD, 1, szL, 1, 2, 0, 8)},
		{"fstore f1, (r2)", encodeInstr(OP64_FSTORE, 1, szL, 0, 2, 0, 0)},
		{"fstore f5, 8(r10)", encodeInstr(OP64_FSTORE, 5, szL, 1, 10, 0, 8)},
		{"fmovi f0, r8", encodeInstr(OP64_FMOVI, 0, szL, 0, 8, 0, 0)},
		{"fmovo r8, f0", encodeInstr(OP64_FMOVO, 8, szL, 0, 0, 0, 0)},
		{"fmovecr f0, #3", encodeInstr(OP64_FMOVECR, 0, szL, 1, 0, 0, 3)},
		{"fmovsr r5", encodeInstr(OP64_FMOVSR, 5, szL, 0, 0, 0, 0)},
		{"fmovsc r5", encodeInstr(OP64_FMOVSC, 0, szL, 0, 5, 0, 0)},
	}
	for _, tc := range tests {
		t.Run(tc.src, func(t *testing.T) {
			assertBytes(t, assembleString(t, "\t"+tc.src), 0, tc.want, tc.src)
		})
	}
}

// ---------------------------------------------------------------------------
// Pseudo-instructions
// ---------------------------------------------------------------------------

func TestIE64Asm_La(t *testing.T) {
	res, err := assembleResult(t, "\tla r1, $2000\n")
	if err != nil {
		t.Fatal(err)
	}
	assertBytes(t, res.Code, 0, encodeInstr(OP64_LEA, 1, szQ, 1, 0, 0, 0x2000), "la")
	if !logContains(res, "pseudo-op 'la' lowered to lea r1, $2000(r0)") {
		t.Errorf("missing lowering warning: %v", res.Log.Entries())
	}
}

func TestIE64Asm_Li(t *testing.T) {
	bin := assembleString(t, "\tli r1, #$12345678\n")
	assertLen(t, bin, 8, "li 32-bit")
	assertBytes(t, bin, 0, encodeInstr(OP64_MOVE, 1, szL, 1, 0, 0, 0x12345678), "li 32-bit")

	bin = assembleString(t, "\tli r2, #$CAFEBABE_DEADBEEF\n")
	assertLen(t, bin, 16, "li 64-bit")
	assertBytes(t, bin, 0, encodeInstr(OP64_MOVE, 2, szL, 1, 0, 0, 0xDEADBEEF), "li lo")
	assertBytes(t, bin, 8, encodeInstr(OP64_MOVT, 2, szQ, 1, 0, 0, 0xCAFEBABE), "li hi")
}

func TestIE64Asm_LiForwardReference(t *testing.T) {
	// unresolved li reserves two words until the value is known
	res, err := assembleResult(t, `
		li r1, #small
end:
		move.q r2, #end
small = 5
`)
	if err != nil {
		t.Fatal(err)
	}
	assertLen(t, res.Code, 16, "li shrinks")
	assertBytes(t, res.Code, 8, encodeInstr(OP64_MOVE, 2, szQ, 1, 0, 0, 0x1008), "label after li")
	if res.Passes != 3 {
		t.Errorf("passes = %d, want 3", res.Passes)
	}

	bin := assembleString(t, `
		li r1, #big
		halt
big = $1_0000_0000
`)
	assertLen(t, bin, 24, "li 64-bit forward")
	assertBytes(t, bin, 8, encodeInstr(OP64_MOVT, 1, szQ, 1, 0, 0, 1), "li hi forward")
}

// ---------------------------------------------------------------------------
// Integration with the shared directives
// ---------------------------------------------------------------------------

func TestIE64Asm_Macro(t *testing.T) {
	bin := assembleString(t, `
clear   .macro reg
		move.q \reg, #0
		.endmacro
		.clear r3
		.clear sp
`)
	assertBytes(t, bin, 0, encodeInstr(OP64_MOVE, 3, szQ, 1, 0, 0, 0), "clear r3")
	assertBytes(t, bin, 8, encodeInstr(OP64_MOVE, 31, szQ, 1, 0, 0, 0), "clear sp")
}

func TestIE64Asm_ForLoop(t *testing.T) {
	bin := assembleString(t, `
		.for i = 0, i < 3
		add.q r1, r1, #i
		.next
`)
	assertLen(t, bin, 24, "unrolled")
	for i := 0; i < 3; i++ {
		assertBytes(t, bin, i*8, encodeInstr(OP64_ADD, 1, szQ, 1, 1, 0, uint32(i)), "add i")
	}
}

func TestIE64Asm_Conditional(t *testing.T) {
	opts := testOptions()
	opts.Defines = map[string]int64{"DEBUG": 1}
	res, err := assembler.AssembleString("test.asm", `
		.if DEBUG
		halt
		.else
		nop
		.endif
`, opts)
	if err != nil {
		t.Fatal(err)
	}
	assertLen(t, res.Code, 8, "if")
	assertBytes(t, res.Code, 0, encodeInstr(OP64_HALT, 0, 0, 0, 0, 0, 0), "DEBUG branch")
}

// ---------------------------------------------------------------------------
// Diagnostics
// ---------------------------------------------------------------------------

func TestIE64Asm_ErrorHandling(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"bad register", "\tmove.q r99, #1", "Invalid register 'r99'"},
		{"operand count", "\tadd.q r1, r2", "requires 3 operand(s)"},
		{"fp suffix", "\tfadd.l f1, f2, f3", "Size suffixes not allowed"},
		{"branch suffix", "\tbra.q somewhere", "Size suffix not allowed"},
		{"movt range", "\tmovt r1, #$1_0000_0000", "Illegal quantity"},
		{"not indirect", "\tload.q r1, r2", "Expected disp(rs)"},
		{"string in dc.w", "\tdc.w \"ab\"", "only allowed in dc.b"},
		{"missing immediate", "\twait 10", "Immediate operand expected"},
		{"bad fp register", "\tfadd f1, f2, f16", "Invalid FP register 'f16'"},
		{"dc.b range", "\tdc.b 256", "Illegal quantity"},
		{"memory-first fstore", "\tfstore 8(r10), f5", "Invalid FP register"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := assembleExpectError(t, tc.src)
			if !logContains(res, tc.want) {
				t.Errorf("log %v does not mention %q", res.Log.Entries(), tc.want)
			}
		})
	}
}

func TestIE64Asm_UndefinedLabel(t *testing.T) {
	res := assembleExpectError(t, "\tbra nowhere\n")
	if res.Log.ErrorCount() == 0 {
		t.Error("undefined branch target should be logged")
	}
}

func TestIE64Asm_Lint_SizeTruncation(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"move.b r1, #$1FF", "truncated to 8-bit (.b)"},
		{"move.w r1, #$12345", "truncated to 16-bit (.w)"},
		{"move.l r1, #$1_0000_0000", "truncated to 32-bit (.l)"},
		{"move.q r1, #$1_0000_0000", "use li"},
	}
	for _, tc := range tests {
		t.Run(tc.src, func(t *testing.T) {
			res, err := assembleResult(t, "\t"+tc.src)
			if err != nil {
				t.Fatal(err)
			}
			if !logContains(res, tc.want) {
				t.Errorf("log %v does not mention %q", res.Log.Entries(), tc.want)
			}
		})
	}

	res, err := assembleResult(t, "\tmove.b r1, #-128\n\tmove.b r1, #255\n")
	if err != nil {
		t.Fatal(err)
	}
	if res.Log.WarningCount() != 0 {
		t.Errorf("in-range immediates warned: %v", res.Log.Entries())
	}
}

func TestIE64Asm_FullProgram(t *testing.T) {
	src := `
; copy a block of quads
COUNT = 4
		la r1, source
		la r2, dest
		move.q r3, #COUNT
-		load.q r4, (r1)
		store.q r4, (r2)
		add.q r1, r1, #8
		add.q r2, r2, #8
		sub.q r3, r3, #1
		bnez r3, -
		halt
source:
		dc.q 1, 2, 3, 4
dest:
		ds.q COUNT
`
	bin := assembleString(t, src)
	// 10 instructions, 4 quads of data, 4 reserved quads
	assertLen(t, bin, 10*8+8*8, "program")
	assertBytes(t, bin, 0, encodeInstr(OP64_LEA, 1, szQ, 1, 0, 0, 0x1050), "la source")
	assertBytes(t, bin, 8, encodeInstr(OP64_LEA, 2, szQ, 1, 0, 0, 0x1070), "la dest")
	assertBytes(t, bin, 64, encodeInstr(OP64_BNE, 0, szQ, 0, 3, 0, neg32(0x1018-0x1040)), "loop")

	lines := Disassemble(bin[:80], DefaultOrigin)
	if len(lines) != 10 {
		t.Fatalf("disassembled %d lines, want 10", len(lines))
	}
	if !strings.Contains(lines[0], "la r1, $1050") || !strings.Contains(lines[8], "bnez r3, $001018") {
		t.Errorf("unexpected disassembly:\n%s", strings.Join(lines, "\n"))
	}
}
