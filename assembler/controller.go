// controller.go - Multi-pass assembly controller

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
	"errors"
	"strconv"
	"strings"

	"github.com/golang/glog"
)

const maxExpansionDepth = 256

// controllerDirectives are handled by the controller itself rather than a
// line assembler.
var controllerDirectives = map[string]bool{
	".org": true, ".relocate": true, ".pseudopc": true, ".endrelocate": true, ".realpc": true,
	".cpu": true, ".block": true, ".endblock": true, ".end": true, ".break": true,
	".equ": true, ".var": true, ".let": true, ".dsegment": true,
	".include": true, ".binclude": true, ".comment": true, ".endcomment": true,
	".macro": true, ".endmacro": true, ".segment": true, ".endsegment": true,
	".repeat": true, ".endrepeat": true, ".for": true, ".next": true,
}

// Controller runs the passes of an assembly. The first pass walks the
// source, expanding every block construct into a flat list of processed
// lines; later passes replay that list until every line's program counter
// is the same as in the pass before.
type Controller struct {
	ctx       *AssemblyContext
	processed []*SourceLine
	nextID    int
	needPass  bool
	passes    int
	ended     bool

	openers []func() BlockHandler

	scopes    []string
	anchors   map[string]string
	expanding []string
	loopDepth int
	depth     int
	lastLine  *SourceLine
}

// NewController returns a controller for ctx.
func NewController(ctx *AssemblyContext) *Controller {
	c := &Controller{ctx: ctx, anchors: make(map[string]string)}
	c.openers = []func() BlockHandler{
		func() BlockHandler { return NewMacroHandler(ctx.Macros, c.isReserved) },
		func() BlockHandler { return NewRepeatHandler(ctx) },
		func() BlockHandler { return NewForNextHandler(ctx) },
	}
	return c
}

// Passes returns the number of passes the last run took.
func (c *Controller) Passes() int {
	return c.passes
}

// ProcessedLines returns every line the first pass produced, in order.
func (c *Controller) ProcessedLines() []*SourceLine {
	return c.processed
}

// Context returns the context the controller assembles into.
func (c *Controller) Context() *AssemblyContext {
	return c.ctx
}

func (c *Controller) isReserved(directive string) bool {
	return controllerDirectives[directive] || conditionDirectives[directive] ||
		c.ctx.Targets.IsInstruction(directive)
}

func (c *Controller) isInstruction(tok string) bool {
	return strings.HasPrefix(tok, ".") || c.ctx.Targets.IsInstruction(tok)
}

// Assemble runs passes over lines until addresses settle, an error is
// logged, or the pass ceiling is reached.
func (c *Controller) Assemble(lines []*SourceLine) error {
	opts := c.ctx.Options
	if err := c.ctx.Targets.Select(opts.CPU); err != nil {
		return err
	}
	if opts.Origin < 0 || opts.Origin > c.ctx.Output.MaxAddress() {
		return newError(KindInvalidPC, "Invalid origin $%X", opts.Origin)
	}

	maxPasses := opts.maxPasses()
	for pass := 0; ; pass++ {
		c.beginPass(pass)
		var err error
		if pass == 0 {
			err = c.firstPass(lines)
		} else {
			err = c.replay()
		}
		c.passes = pass + 1
		if err != nil {
			c.ctx.Log.LogError(err)
			return err
		}

		glog.V(1).Infof("pass %d: %d lines, pc $%X, another pass: %v",
			pass, len(c.processed), c.ctx.Output.PC(), c.needPass)

		if c.ctx.Log.HasErrors() || !c.needPass {
			break
		}
		if c.passes == maxPasses {
			c.ctx.Log.LogEntry(nil, true, "Too many passes attempted.")
			return ErrTooManyPasses
		}
	}

	c.ctx.commitDeferred()
	if c.ctx.Log.HasErrors() {
		return ErrAssemblyFailed
	}
	if opts.WarningsAsErrors && c.ctx.Log.HasWarnings() {
		return ErrWarningsAsErrors
	}
	return nil
}

func (c *Controller) beginPass(pass int) {
	c.ctx.beginPass(pass)
	_ = c.ctx.Targets.Select(c.ctx.Options.CPU)
	_ = c.ctx.Output.SetPC(c.ctx.Options.Origin)
	c.needPass = false
	c.ended = false
}

// handle applies the error policy to a line's result. Only errors that
// abort the run are returned.
func (c *Controller) handle(line *SourceLine, err error, claimed bool) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if !errors.As(err, &ae) {
		return err
	}
	if ae.Line == nil {
		ae.Line = line
	}
	switch {
	case ae.Kind == KindStructural:
		return ae
	case ae.Kind.Recoverable() && !claimed && c.ctx.Pass == 0:
		glog.V(2).Infof("%s: deferred: %s", ae.Line.Position(), ae.Msg)
		c.needPass = true
	default:
		c.ctx.Log.LogEntry(ae.Line, true, "%s", ae.Msg)
	}
	return nil
}

// ---------------------------------------------------------------------
// First pass: expansion walk
// ---------------------------------------------------------------------

type frame struct {
	cond   *ConditionHandler
	active BlockHandler
}

func (c *Controller) firstPass(lines []*SourceLine) error {
	c.processed = c.processed[:0]
	c.scopes = c.scopes[:0]
	c.expanding = c.expanding[:0]
	c.loopDepth, c.depth = 0, 0
	if _, err := c.expand(lines); err != nil {
		return err
	}
	if len(c.scopes) > 0 && !c.ended {
		return lineError(c.lastLine, KindStructural, "Missing '.endblock'")
	}
	return nil
}

// expand processes lines in a fresh frame. It reports whether a .break
// ended the frame early.
func (c *Controller) expand(lines []*SourceLine) (bool, error) {
	c.depth++
	defer func() { c.depth-- }()
	if c.depth > maxExpansionDepth {
		return false, lineError(c.lastLine, KindStructural, "Expansion nested too deeply")
	}

	f := &frame{cond: NewConditionHandler(c.ctx)}
	for i := 0; i < len(lines) && !c.ended; i++ {
		line := lines[i]
		if !line.parsed {
			extra, err := Tokenize(line, c.isInstruction)
			if len(extra) > 0 {
				spliced := make([]*SourceLine, 0, len(lines)+len(extra))
				spliced = append(spliced, lines[:i+1]...)
				spliced = append(spliced, extra...)
				lines = append(spliced, lines[i+1:]...)
			}
			if err != nil {
				c.register(line)
				c.consume(line)
				if err := c.handle(line, err, false); err != nil {
					return false, err
				}
				continue
			}
		}
		c.register(line)
		brk, err := c.route(f, line)
		if err != nil || brk {
			return brk, err
		}
	}
	if c.ended {
		return false, nil
	}
	if f.active != nil {
		return false, lineError(c.lastLine, KindStructural, "Missing closure for block")
	}
	if f.cond.IsProcessing() {
		return false, lineError(c.lastLine, KindStructural, "Missing '.endif'")
	}
	return false, nil
}

func (c *Controller) currentScope() string {
	if len(c.scopes) == 0 {
		return ""
	}
	return c.scopes[len(c.scopes)-1]
}

func (c *Controller) pushScope(name string) {
	if cur := c.currentScope(); cur != "" {
		name = cur + "." + name
	}
	c.scopes = append(c.scopes, name)
}

// pushAnonymousScope opens a scope named after a reserved line number.
func (c *Controller) pushAnonymousScope() {
	c.nextID++
	c.pushScope("@" + strconv.Itoa(c.nextID))
}

// restoreScopes drops scopes an expansion left open.
func (c *Controller) restoreScopes(depth int) {
	if len(c.scopes) > depth {
		c.scopes = c.scopes[:depth]
	}
}

func (c *Controller) popScope() {
	if len(c.scopes) > 0 {
		c.scopes = c.scopes[:len(c.scopes)-1]
	}
}

// register numbers a line and records its scope and local-label anchor.
func (c *Controller) register(line *SourceLine) {
	c.lastLine = line
	if line.ID != 0 {
		return
	}
	c.nextID++
	line.ID = c.nextID
	line.Scope = c.currentScope()
	line.PC = c.ctx.Output.LogicalPC()
	if anchorsLocals(line) {
		c.anchors[line.Scope] = line.Label
	}
	line.anchor = c.anchors[line.Scope]
}

func anchorsLocals(line *SourceLine) bool {
	l := line.Label
	if l == "" || l == "*" || isAnonymousLabel(l) || isLocalName(l) {
		return false
	}
	switch line.Instruction {
	case "=", ".equ", ".var", ".let", ".macro":
		return false
	}
	return true
}

// consume keeps a line in the processed list without ever assembling it.
func (c *Controller) consume(line *SourceLine) {
	line.DoNotAssemble = true
	c.processed = append(c.processed, line)
}

// assemble appends a line to the processed list and evaluates it.
func (c *Controller) assemble(line *SourceLine) error {
	c.processed = append(c.processed, line)
	return c.handle(line, c.assembleLine(line), false)
}

func (c *Controller) route(f *frame, line *SourceLine) (bool, error) {
	instr := line.Instruction

	if f.active != nil {
		c.consume(line)
		if err := c.handle(line, f.active.Process(line), true); err != nil {
			return false, err
		}
		if f.active.IsProcessing() {
			return false, nil
		}
		h := f.active
		f.active = nil
		return c.flush(h)
	}

	if line.IsComment {
		c.processed = append(c.processed, line)
		return false, nil
	}

	if f.cond.Processes(instr) {
		c.processed = append(c.processed, line)
		return false, c.handle(line, f.cond.Process(line), true)
	}
	if !f.cond.Active() {
		c.consume(line)
		return false, nil
	}

	for _, open := range c.openers {
		h := open()
		if !h.Processes(instr) {
			continue
		}
		if line.Label != "" && instr != ".macro" {
			if _, err := c.expand([]*SourceLine{newShadowLine(line, line.Label)}); err != nil {
				return false, err
			}
		}
		c.consume(line)
		if err := c.handle(line, h.Process(line), true); err != nil {
			return false, err
		}
		if h.IsProcessing() {
			f.active = h
			return false, nil
		}
		return c.flush(h)
	}

	if m, ok := c.ctx.Macros.Lookup(instr); ok {
		return c.invoke(line, m)
	}

	switch instr {
	case ".dsegment":
		name := strings.TrimSpace(line.Operand)
		m, ok := c.ctx.Macros.Segment(name)
		if !ok {
			c.consume(line)
			return false, c.handle(line, lineError(line, KindParse, "Segment '%s' not defined", name), true)
		}
		return c.invoke(line, m)
	case ".block":
		if err := c.assemble(line); err != nil {
			return false, err
		}
		name := line.Label
		if name == "" || isAnonymousLabel(name) {
			name = "@" + strconv.Itoa(line.ID)
		}
		c.pushScope(name)
		return false, nil
	case ".endblock":
		if len(c.scopes) == 0 {
			return false, lineError(line, KindStructural, "'.endblock' without '.block'")
		}
		err := c.assemble(line)
		c.popScope()
		return false, err
	case ".break":
		if c.loopDepth == 0 {
			return false, lineError(line, KindStructural, "'.break' outside of a loop")
		}
		c.consume(line)
		return true, nil
	case ".end":
		err := c.assemble(line)
		c.ended = true
		return false, err
	}
	return false, c.assemble(line)
}

// invoke expands a macro or segment in place. A label on the invoking line
// is defined at the current PC and scopes the labels of the expansion; an
// unlabelled macro call gets an anonymous scope. Segments share the scope
// they are placed in.
func (c *Controller) invoke(line *SourceLine, m *Macro) (bool, error) {
	for _, name := range c.expanding {
		if name == m.Name {
			return false, lineError(line, KindStructural, "Recursive invocation of '%s'", m.Name)
		}
	}
	lines, err := m.Expand(line)
	if err != nil {
		c.consume(line)
		return false, c.handle(line, err, true)
	}
	if err := c.assemble(line); err != nil {
		return false, err
	}
	if !m.IsSegment {
		defer c.restoreScopes(len(c.scopes))
		if l := line.Label; l != "" && !isAnonymousLabel(l) {
			c.pushScope(l)
		} else {
			c.pushAnonymousScope()
		}
	}
	c.expanding = append(c.expanding, m.Name)
	defer func() { c.expanding = c.expanding[:len(c.expanding)-1] }()
	return c.expand(lines)
}

// flush expands a closed block. Loop iterations each get their own scope.
func (c *Controller) flush(h BlockHandler) (bool, error) {
	defer h.Reset()
	switch it := h.(type) {
	case lineIterator:
		c.loopDepth++
		err := it.Iterate(c.expandScoped)
		c.loopDepth--
		return false, c.handle(c.lastLine, err, true)
	case iterationHandler:
		for _, lines := range it.Iterations() {
			if brk, err := c.expandScoped(lines); err != nil || brk {
				return brk, err
			}
		}
		return false, nil
	}
	return c.expand(h.GetProcessedLines())
}

func (c *Controller) expandScoped(lines []*SourceLine) (bool, error) {
	defer c.restoreScopes(len(c.scopes))
	c.pushAnonymousScope()
	return c.expand(lines)
}

// ---------------------------------------------------------------------
// Later passes
// ---------------------------------------------------------------------

func (c *Controller) replay() error {
	for _, line := range c.processed {
		if c.ended {
			break
		}
		if line.DoNotAssemble || line.IsComment {
			continue
		}
		if line.Instruction == ".end" {
			c.ended = true
		}
		if err := c.handle(line, c.assembleLine(line), false); err != nil {
			return err
		}
	}
	return nil
}

// ---------------------------------------------------------------------
// Line evaluation
// ---------------------------------------------------------------------

// assembleLine evaluates one line against the current pass state. It is
// the only place the program counter moves.
func (c *Controller) assembleLine(line *SourceLine) error {
	out := c.ctx.Output
	pc := out.LogicalPC()
	if c.ctx.Pass > 0 && line.PC != pc {
		c.needPass = true
	}
	line.PC = pc
	line.Assembly = nil

	err := c.evaluateLine(line, pc)
	if c.ctx.Symbols.takeUnresolved() {
		c.needPass = true
	}
	return attachLine(err, line)
}

func (c *Controller) evaluateLine(line *SourceLine, pc int64) error {
	out := c.ctx.Output
	switch line.Instruction {
	case "=", ".equ":
		return c.assignLabel(line)
	case ".var", ".let":
		return c.assignVariable(line)
	}
	if err := c.defineLabel(line, pc); err != nil {
		return err
	}

	switch line.Instruction {
	case "", ".block", ".endblock", ".end", ".dsegment":
		return nil
	case ".org":
		v, err := c.ctx.EvaluateRange(line, line.Operand, 0, out.MaxAddress())
		if err != nil {
			return err
		}
		return out.SetPC(v)
	case ".relocate", ".pseudopc":
		v, err := c.ctx.EvaluateRange(line, line.Operand, 0, out.MaxAddress())
		if err != nil {
			return err
		}
		return out.SetLogicalPC(v)
	case ".endrelocate", ".realpc":
		out.SynchPC()
		return nil
	case ".cpu":
		name := line.Operand
		if s, ok := UnquoteString(name); ok {
			name = s
		}
		return c.ctx.Targets.Select(strings.TrimSpace(name))
	}
	if _, ok := c.ctx.Macros.Lookup(line.Instruction); ok {
		return nil
	}

	asm := c.ctx.Targets.Assembler(line.Instruction)
	if asm == nil {
		return lineError(line, KindParse, "Unknown instruction '%s'", line.Instruction)
	}
	err := asm.AssembleLine(line)
	if err != nil && KindOf(err).Recoverable() {
		// keep later addresses close to right for the next pass
		if gap := int64(asm.GetInstructionSize(line)) - (out.LogicalPC() - pc); gap > 0 {
			_ = out.AddUninitialized(int(gap))
		}
	}
	return err
}

func (c *Controller) defineLabel(line *SourceLine, pc int64) error {
	l := line.Label
	switch {
	case l == "" || line.Instruction == ".macro":
		return nil
	case isAnonymousLabel(l):
		c.ctx.Symbols.AddAnonymous(line)
		if l == "+" && c.ctx.Pass == 0 {
			c.needPass = true
		}
		return nil
	}
	return c.ctx.Symbols.SetLabel(l, pc, line.symbolScope(l), true)
}

func (c *Controller) assignLabel(line *SourceLine) error {
	l := line.Label
	switch {
	case l == "":
		return lineError(line, KindSymbol, "Assignment requires a symbol name")
	case isAnonymousLabel(l):
		return lineError(line, KindSymbol, "Anonymous labels cannot be assigned")
	case l == "*":
		v, err := c.ctx.EvaluateRange(line, line.Operand, 0, c.ctx.Output.MaxAddress())
		if err != nil {
			return err
		}
		return c.ctx.Output.SetPC(v)
	}
	v, err := c.ctx.Evaluate(line, line.Operand)
	if err != nil {
		return err
	}
	return c.ctx.Symbols.SetLabel(l, v, line.symbolScope(l), true)
}

func (c *Controller) assignVariable(line *SourceLine) error {
	name, expr := line.Label, line.Operand
	if name == "" {
		var ok bool
		if name, expr, ok = splitAssignment(line.Operand); !ok {
			return lineError(line, KindParse, "Expected '%s name = value'", line.Instruction)
		}
	}
	if name == "*" || isAnonymousLabel(name) {
		return lineError(line, KindParse, "'%s' cannot be a variable", name)
	}
	v, err := c.ctx.Evaluate(line, expr)
	if err != nil {
		return err
	}
	return c.ctx.Symbols.AssignVariable(name, v, line.symbolScope(name))
}
