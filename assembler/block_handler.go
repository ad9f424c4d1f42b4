package assembler

// BlockHandler consumes the lines of a multi-line construct. A fresh handler
// is created for each construct opened, so nested frames never share state.
type BlockHandler interface {
	// Processes reports whether instr opens or closes this handler's
	// construct.
	Processes(instr string) bool

	// Process consumes one line. Lines passed here are never assembled
	// themselves.
	Process(line *SourceLine) error

	// IsProcessing reports whether the construct is still open.
	IsProcessing() bool

	// GetProcessedLines returns the lines the closed construct expands to.
	GetProcessedLines() []*SourceLine

	// Reset discards all buffered state.
	Reset()
}

// lineIterator is implemented by handlers whose expansion must be produced
// one chunk at a time, each chunk fully processed before the next is built.
// emit reports whether the chunk ended with a .break.
type lineIterator interface {
	Iterate(emit func([]*SourceLine) (bool, error)) error
}

// iterationHandler is implemented by handlers whose expansion is known in
// full once the block closes but repeats a body. Each iteration is
// expanded in an anonymous scope of its own.
type iterationHandler interface {
	Iterations() [][]*SourceLine
}
