// block_repeat.go - .repeat blocks

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

type repeatBlock struct {
	header *SourceLine
	footer *SourceLine
	count  int64
}

// RepeatHandler buffers a .repeat block and hands it back one iteration at
// a time. Nested repeats are replayed as source, so each of their
// iterations is expanded on its own too. The outer count is evaluated when
// the .repeat line is reached; inner counts when their copy is expanded.
type RepeatHandler struct {
	ctx  *AssemblyContext
	tree *BlockTree[repeatBlock]
	root BlockID
}

// NewRepeatHandler returns an idle handler.
func NewRepeatHandler(ctx *AssemblyContext) *RepeatHandler {
	return &RepeatHandler{ctx: ctx, tree: NewBlockTree[repeatBlock](), root: noBlock}
}

func (h *RepeatHandler) Processes(instr string) bool {
	return instr == ".repeat" || instr == ".endrepeat"
}

func (h *RepeatHandler) IsProcessing() bool {
	return h.tree.IsOpen()
}

// GetProcessedLines returns every iteration back to back.
func (h *RepeatHandler) GetProcessedLines() []*SourceLine {
	var out []*SourceLine
	for _, it := range h.Iterations() {
		out = append(out, it...)
	}
	return out
}

func (h *RepeatHandler) Reset() {
	h.tree.Reset()
	h.root = noBlock
}

func (h *RepeatHandler) Process(line *SourceLine) error {
	switch line.Instruction {
	case ".repeat":
		block := repeatBlock{header: line}
		var err error
		if !h.tree.IsOpen() {
			block.count, err = h.ctx.EvaluateRange(line, line.Operand, 0, maxLoopIterations)
			if err != nil {
				block.count = 0
			}
		}
		id := h.tree.Open(block)
		if h.root == noBlock {
			h.root = id
		}
		return err
	case ".endrepeat":
		id, ok := h.tree.Close()
		if !ok {
			return lineError(line, KindStructural, "'.endrepeat' without '.repeat'")
		}
		h.tree.Node(id).Key.footer = line
		return nil
	}
	h.tree.Add(line)
	return nil
}

// Iterations returns fresh copies of the body, one slice per iteration.
func (h *RepeatHandler) Iterations() [][]*SourceLine {
	if h.root == noBlock || h.tree.IsOpen() {
		return nil
	}
	n := h.tree.Node(h.root).Key.count
	out := make([][]*SourceLine, 0, n)
	for i := int64(0); i < n; i++ {
		out = append(out, h.body(h.root))
	}
	return out
}

func (h *RepeatHandler) body(id BlockID) []*SourceLine {
	var out []*SourceLine
	for _, e := range h.tree.Node(id).Entries {
		if e.Line != nil {
			out = append(out, e.Line.Clone())
			continue
		}
		child := h.tree.Node(e.Child).Key
		out = append(out, child.header.Clone())
		out = append(out, h.body(e.Child)...)
		out = append(out, child.footer.Clone())
	}
	return out
}
