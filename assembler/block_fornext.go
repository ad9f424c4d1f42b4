// block_fornext.go - .for/.next loops

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
	"strconv"
	"strings"
)

// maxLoopIterations bounds a single loop.
const maxLoopIterations = 65536

type forLoop struct {
	header    *SourceLine
	footer    *SourceLine
	variable  string
	init      string
	condition string
	step      string
	assign    bool // step is "var = expr" rather than an increment
	valid     bool
}

// ForNextHandler buffers a .for block and runs it lazily: each iteration's
// lines are fully processed before the condition is tested again, so the
// body may change what the condition sees. Nested loops are replayed as
// source and run by their own handler.
type ForNextHandler struct {
	ctx  *AssemblyContext
	tree *BlockTree[forLoop]
	root BlockID
}

// NewForNextHandler returns an idle handler.
func NewForNextHandler(ctx *AssemblyContext) *ForNextHandler {
	return &ForNextHandler{ctx: ctx, tree: NewBlockTree[forLoop](), root: noBlock}
}

func (h *ForNextHandler) Processes(instr string) bool {
	return instr == ".for" || instr == ".next"
}

func (h *ForNextHandler) IsProcessing() bool {
	return h.tree.IsOpen()
}

// GetProcessedLines returns nothing; use Iterate.
func (h *ForNextHandler) GetProcessedLines() []*SourceLine {
	return nil
}

func (h *ForNextHandler) Reset() {
	h.tree.Reset()
	h.root = noBlock
}

func (h *ForNextHandler) Process(line *SourceLine) error {
	switch line.Instruction {
	case ".for":
		loop, err := parseForLoop(line)
		id := h.tree.Open(loop)
		if h.root == noBlock {
			h.root = id
		}
		if h.tree.Depth() > 1 {
			// inner loops are only parsed when they run
			return nil
		}
		return err
	case ".next":
		id, ok := h.tree.Close()
		if !ok {
			return lineError(line, KindStructural, "'.next' without '.for'")
		}
		h.tree.Node(id).Key.footer = line
		return nil
	}
	h.tree.Add(line)
	return nil
}

func parseForLoop(line *SourceLine) (forLoop, error) {
	loop := forLoop{header: line, step: "1"}
	parts := SplitOperands(line.Operand)
	if len(parts) < 2 || len(parts) > 3 {
		return loop, lineError(line, KindParse, "Expected '.for var = init, condition[, step]'")
	}
	name, init, ok := splitAssignment(parts[0])
	if !ok {
		return loop, lineError(line, KindParse, "Expected loop variable assignment")
	}
	loop.variable, loop.init, loop.condition = name, init, parts[1]
	if len(parts) == 3 {
		loop.step = parts[2]
		if v, expr, ok := splitAssignment(parts[2]); ok {
			if v != name {
				return loop, lineError(line, KindParse, "Step must assign '%s'", name)
			}
			loop.step, loop.assign = expr, true
		}
	}
	loop.valid = true
	return loop, nil
}

// splitAssignment splits "name = expr" at its first assignment '='.
func splitAssignment(s string) (string, string, bool) {
	for i := 0; i < len(s); i++ {
		if s[i] != '=' {
			continue
		}
		if (i+1 < len(s) && s[i+1] == '=') || (i > 0 && strings.IndexByte("=!<>", s[i-1]) >= 0) {
			i++
			continue
		}
		name := strings.TrimSpace(s[:i])
		if !identPattern.MatchString(name) {
			return "", "", false
		}
		return name, strings.TrimSpace(s[i+1:]), true
	}
	return "", "", false
}

// flatten clones a block's lines, re-creating nested loops as source.
func (h *ForNextHandler) flatten(id BlockID) []*SourceLine {
	b := h.tree.Node(id)
	var out []*SourceLine
	for _, e := range b.Entries {
		if e.Line != nil {
			out = append(out, e.Line.Clone())
			continue
		}
		child := h.tree.Node(e.Child)
		out = append(out, child.Key.header.Clone())
		out = append(out, h.flatten(e.Child)...)
		if child.Key.footer != nil {
			out = append(out, child.Key.footer.Clone())
		}
	}
	return out
}

func (h *ForNextHandler) assign(loop forLoop, value int64) error {
	return attachLine(h.ctx.Symbols.AssignVariable(loop.variable, value, loop.header.symbolScope(loop.variable)), loop.header)
}

// Iterate runs the outermost loop. Each chunk handed to emit starts with a
// synthesized assignment of the loop variable so later passes replay the
// same values.
func (h *ForNextHandler) Iterate(emit func([]*SourceLine) (bool, error)) error {
	if h.root == noBlock {
		return nil
	}
	loop := h.tree.Node(h.root).Key
	if !loop.valid {
		return nil
	}
	value, err := h.ctx.Evaluate(loop.header, loop.init)
	if err != nil {
		return err
	}
	for n := 0; ; n++ {
		if err := h.assign(loop, value); err != nil {
			return err
		}
		ok, err := h.ctx.EvaluateCondition(loop.header, loop.condition)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if n == maxLoopIterations {
			return lineError(loop.header, KindStructural, "Loop exceeded %d iterations", maxLoopIterations)
		}

		lines := []*SourceLine{newShadowLine(loop.header, " .var "+loop.variable+" = "+strconv.FormatInt(value, 10))}
		lines = append(lines, h.flatten(h.root)...)
		broke, err := emit(lines)
		if err != nil || broke {
			return err
		}

		next := loop.variable + " + (" + loop.step + ")"
		if loop.assign {
			next = loop.step
		}
		if value, err = h.ctx.Evaluate(loop.header, next); err != nil {
			return err
		}
	}
}
