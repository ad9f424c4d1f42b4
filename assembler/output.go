// output.go - Output buffer and program counters

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

// Compilation collects the bytes of a pass. It tracks the real program
// counter, where bytes land, and a logical one that relocation may offset
// from it.
type Compilation struct {
	memory []byte
	base   int64
	start  int64
	end    int64

	pc         int64
	logicalPC  int64
	maxAddress int64
	bigEndian  bool
}

// NewCompilation creates an empty buffer addressing 0..maxAddress.
func NewCompilation(maxAddress int64, bigEndian bool) *Compilation {
	c := &Compilation{maxAddress: maxAddress, bigEndian: bigEndian}
	c.Reset()
	return c
}

// Reset discards all output and rewinds both counters to zero.
func (c *Compilation) Reset() {
	c.memory = c.memory[:0]
	c.base, c.start, c.end = 0, -1, -1
	c.pc, c.logicalPC = 0, 0
}

// PC returns the real program counter.
func (c *Compilation) PC() int64 { return c.pc }

// LogicalPC returns the program counter symbols and '*' see.
func (c *Compilation) LogicalPC() int64 { return c.logicalPC }

// MaxAddress returns the highest addressable byte.
func (c *Compilation) MaxAddress() int64 { return c.maxAddress }

// BigEndian reports the byte order of multi-byte values.
func (c *Compilation) BigEndian() bool { return c.bigEndian }

// SetPC moves both program counters.
func (c *Compilation) SetPC(addr int64) error {
	if addr < 0 || addr > c.maxAddress {
		return newError(KindInvalidPC, "Invalid Program Counter assignment $%X", addr)
	}
	c.pc, c.logicalPC = addr, addr
	return nil
}

// SetLogicalPC relocates the logical counter without moving output.
func (c *Compilation) SetLogicalPC(addr int64) error {
	if addr < 0 || addr > c.maxAddress {
		return newError(KindInvalidPC, "Invalid Program Counter assignment $%X", addr)
	}
	c.logicalPC = addr
	return nil
}

// SynchPC ends relocation.
func (c *Compilation) SynchPC() {
	c.logicalPC = c.pc
}

// ProgramStart returns the lowest address written or reserved, or -1.
func (c *Compilation) ProgramStart() int64 { return c.start }

// ProgramEnd returns one past the highest address written or reserved.
func (c *Compilation) ProgramEnd() int64 { return c.end }

// Bytes returns the output between ProgramStart and ProgramEnd. Reserved
// but unwritten bytes read as zero.
func (c *Compilation) Bytes() []byte {
	if c.start < 0 {
		return nil
	}
	c.ensure(c.start, c.end)
	out := make([]byte, c.end-c.start)
	copy(out, c.memory[c.start-c.base:c.end-c.base])
	return out
}

func (c *Compilation) advance(n int64) error {
	if n == 0 {
		return nil
	}
	if c.pc+n-1 > c.maxAddress {
		return newError(KindInvalidPC, "Program Counter overflow")
	}
	if c.start < 0 || c.pc < c.start {
		c.start = c.pc
	}
	if c.pc+n > c.end {
		c.end = c.pc + n
	}
	c.pc += n
	c.logicalPC += n
	return nil
}

// ensure makes memory cover [from, to).
func (c *Compilation) ensure(from, to int64) {
	if len(c.memory) == 0 {
		c.base = from
	}
	if from < c.base {
		grown := make([]byte, int64(len(c.memory))+c.base-from)
		copy(grown[c.base-from:], c.memory)
		c.memory, c.base = grown, from
	}
	if need := to - c.base; need > int64(len(c.memory)) {
		if need <= int64(cap(c.memory)) {
			old := len(c.memory)
			c.memory = c.memory[:need]
			clear(c.memory[old:]) // may hold a previous pass
		} else {
			grown := make([]byte, need, need*2)
			copy(grown, c.memory)
			c.memory = grown
		}
	}
}

// AddBytes writes b at the program counter.
func (c *Compilation) AddBytes(b []byte) ([]byte, error) {
	at := c.pc
	if err := c.advance(int64(len(b))); err != nil {
		return nil, err
	}
	if len(b) > 0 {
		c.ensure(at, at+int64(len(b)))
		copy(c.memory[at-c.base:], b)
	}
	return b, nil
}

// Add writes value as size bytes. Values must fit the size as either a
// signed or an unsigned quantity.
func (c *Compilation) Add(value int64, size int) ([]byte, error) {
	b, err := c.encode(value, size)
	if err != nil {
		return nil, err
	}
	return c.AddBytes(b)
}

func (c *Compilation) encode(value int64, size int) ([]byte, error) {
	if size < 8 {
		bits := uint(8 * size)
		if value < -(int64(1)<<(bits-1)) || value > (int64(1)<<bits)-1 {
			return nil, newError(KindOverflow, "Illegal quantity %d", value)
		}
	}
	b := make([]byte, size)
	for i := 0; i < size; i++ {
		shift := uint(8 * i)
		if c.bigEndian {
			shift = uint(8 * (size - 1 - i))
		}
		b[i] = byte(uint64(value) >> shift)
	}
	return b, nil
}

// AddUninitialized reserves size bytes without writing them.
func (c *Compilation) AddUninitialized(size int) error {
	if size < 0 {
		return newError(KindOverflow, "Illegal quantity %d", size)
	}
	return c.advance(int64(size))
}

// Fill emits amount bytes repeating the minimal little-endian form of
// value. Without a value the space is only reserved.
func (c *Compilation) Fill(amount int, value int64, hasValue bool) ([]byte, error) {
	if amount < 0 {
		return nil, newError(KindOverflow, "Illegal quantity %d", amount)
	}
	if !hasValue {
		return nil, c.AddUninitialized(amount)
	}
	pattern := minimalBytes(value)
	b := make([]byte, amount)
	for i := range b {
		b[i] = pattern[i%len(pattern)]
	}
	return c.AddBytes(b)
}

// Align pads until the logical counter is a multiple of amount.
func (c *Compilation) Align(amount int, value int64, hasValue bool) ([]byte, error) {
	if amount <= 0 {
		return nil, newError(KindOverflow, "Illegal quantity %d", amount)
	}
	return c.Fill(AlignPadding(c.logicalPC, amount), value, hasValue)
}

// AlignPadding returns how many bytes move pc to a multiple of amount.
func AlignPadding(pc int64, amount int) int {
	if amount <= 0 {
		return 0
	}
	rem := int(pc % int64(amount))
	if rem == 0 {
		return 0
	}
	return amount - rem
}

func minimalBytes(value int64) []byte {
	u := uint64(value)
	if value < 0 {
		switch {
		case value >= -0x80:
			return []byte{byte(u)}
		case value >= -0x8000:
			return []byte{byte(u), byte(u >> 8)}
		}
	}
	var b []byte
	for {
		b = append(b, byte(u))
		u >>= 8
		if u == 0 || len(b) == 8 {
			return b
		}
	}
}
