// block_condition.go - Conditional assembly

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

import "strings"

type condition struct {
	directive    string
	parentActive bool
	active       bool
	taken        bool
	elseSeen     bool
}

// ConditionHandler filters lines through .if/.ifdef/.ifndef blocks. Unlike
// the buffering handlers it passes every line straight through, marking the
// ones in untaken branches DoNotAssemble. Conditions are evaluated when
// their line is reached.
type ConditionHandler struct {
	ctx  *AssemblyContext
	tree *BlockTree[condition]
}

// NewConditionHandler returns a handler with no open condition.
func NewConditionHandler(ctx *AssemblyContext) *ConditionHandler {
	return &ConditionHandler{ctx: ctx, tree: NewBlockTree[condition]()}
}

var conditionDirectives = map[string]bool{
	".if": true, ".ifdef": true, ".ifndef": true,
	".elif": true, ".elifdef": true, ".elifndef": true,
	".else": true, ".endif": true,
}

func (h *ConditionHandler) Processes(instr string) bool {
	return conditionDirectives[instr]
}

// Active reports whether lines at the current nesting are assembled.
func (h *ConditionHandler) Active() bool {
	if !h.tree.IsOpen() {
		return true
	}
	return h.tree.Node(h.tree.Current()).Key.active
}

func (h *ConditionHandler) IsProcessing() bool {
	return h.tree.IsOpen()
}

// GetProcessedLines returns nothing; lines are never buffered.
func (h *ConditionHandler) GetProcessedLines() []*SourceLine {
	return nil
}

func (h *ConditionHandler) Reset() {
	h.tree.Reset()
}

func (h *ConditionHandler) test(line *SourceLine, directive string) (bool, error) {
	switch {
	case strings.HasSuffix(directive, "ndef"):
		return !h.ctx.IsDefined(line, line.Operand), nil
	case strings.HasSuffix(directive, "def"):
		return h.ctx.IsDefined(line, line.Operand), nil
	}
	return h.ctx.EvaluateCondition(line, line.Operand)
}

// Process handles one conditional directive. Lines that are not directives
// are only marked.
func (h *ConditionHandler) Process(line *SourceLine) error {
	instr := line.Instruction
	if !conditionDirectives[instr] {
		line.DoNotAssemble = line.DoNotAssemble || !h.Active()
		return nil
	}
	line.DoNotAssemble = true

	switch instr {
	case ".if", ".ifdef", ".ifndef":
		parent := h.Active()
		c := condition{directive: instr, parentActive: parent}
		var err error
		if parent {
			c.active, err = h.test(line, instr)
			c.taken = c.active
		}
		h.tree.Open(c)
		if err != nil {
			return attachLine(err, line)
		}
		return nil

	case ".endif":
		if _, ok := h.tree.Close(); !ok {
			return lineError(line, KindStructural, "'.endif' without '.if'")
		}
		return nil
	}

	if !h.tree.IsOpen() {
		return lineError(line, KindStructural, "'%s' without '.if'", instr)
	}
	c := &h.tree.Node(h.tree.Current()).Key
	if c.elseSeen {
		return lineError(line, KindStructural, "'%s' after '.else'", instr)
	}
	if instr == ".else" {
		c.elseSeen = true
		c.active = c.parentActive && !c.taken
		c.taken = true
		return nil
	}
	c.active = false
	if !c.parentActive || c.taken {
		return nil
	}
	ok, err := h.test(line, instr)
	if err != nil {
		return attachLine(err, line)
	}
	c.active, c.taken = ok, ok
	return nil
}
