// line_assembler.go - Line assembler contract and target registry

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
	"sort"
	"strings"
	"sync"
)

// LineAssembler turns instructions into bytes. Targets and the pseudo-op
// table both implement it.
type LineAssembler interface {
	// AssemblesInstruction reports whether the lower-cased mnemonic or
	// directive belongs to this assembler.
	AssemblesInstruction(name string) bool

	// AssembleLine emits the line's bytes into the output. Implementations
	// evaluate every operand before emitting so a failed line emits nothing.
	AssembleLine(line *SourceLine) error

	// GetInstructionSize is a best-effort size used to keep the program
	// counter moving when AssembleLine fails with a recoverable error.
	GetInstructionSize(line *SourceLine) int
}

// TargetFactory builds a target bound to a context.
type TargetFactory func(ctx *AssemblyContext) LineAssembler

var (
	targetsMu sync.RWMutex
	targets   = make(map[string]TargetFactory)
)

// RegisterTarget makes a CPU available to .cpu and Options.CPU. It panics
// on a duplicate name.
func RegisterTarget(name string, factory TargetFactory) {
	targetsMu.Lock()
	defer targetsMu.Unlock()
	name = strings.ToLower(name)
	if factory == nil {
		panic("assembler: RegisterTarget factory is nil")
	}
	if _, dup := targets[name]; dup {
		panic("assembler: RegisterTarget called twice for " + name)
	}
	targets[name] = factory
}

// TargetNames lists the registered CPUs.
func TargetNames() []string {
	targetsMu.RLock()
	defer targetsMu.RUnlock()
	names := make([]string, 0, len(targets))
	for n := range targets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func lookupTarget(name string) (TargetFactory, bool) {
	targetsMu.RLock()
	defer targetsMu.RUnlock()
	f, ok := targets[strings.ToLower(name)]
	return f, ok
}

// Targets routes instructions to the pseudo-ops or the selected CPU.
type Targets struct {
	ctx       *AssemblyContext
	pseudo    LineAssembler
	instances map[string]LineAssembler
	name      string
	cpu       LineAssembler
}

func newTargets(ctx *AssemblyContext, pseudo LineAssembler) *Targets {
	return &Targets{ctx: ctx, pseudo: pseudo, instances: make(map[string]LineAssembler)}
}

// Select makes the named CPU current. The empty name selects none.
func (t *Targets) Select(name string) error {
	name = strings.ToLower(name)
	if name == "" {
		t.name, t.cpu = "", nil
		return nil
	}
	inst, ok := t.instances[name]
	if !ok {
		factory, found := lookupTarget(name)
		if !found {
			return newError(KindParse, "Unknown CPU '%s'", name)
		}
		inst = factory(t.ctx)
		t.instances[name] = inst
	}
	t.name, t.cpu = name, inst
	return nil
}

// Selected returns the current CPU name.
func (t *Targets) Selected() string {
	return t.name
}

// Assembler returns the assembler for instr, or nil.
func (t *Targets) Assembler(instr string) LineAssembler {
	if t.pseudo.AssemblesInstruction(instr) {
		return t.pseudo
	}
	if t.cpu != nil && t.cpu.AssemblesInstruction(instr) {
		return t.cpu
	}
	return nil
}

// IsInstruction reports whether any active assembler knows instr.
func (t *Targets) IsInstruction(instr string) bool {
	return t.Assembler(strings.ToLower(instr)) != nil
}
