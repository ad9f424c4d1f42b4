// block_macro.go - Macro and segment definitions

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
	"regexp"
	"strings"
)

// MacroParam is one declared macro parameter.
type MacroParam struct {
	Name     string
	Default  string
	Position int
}

// Macro is a named, parameterized block of lines. Segments are macros with
// no parameters that are placed with .dsegment.
type Macro struct {
	Name      string
	Params    []MacroParam
	Body      []*SourceLine
	IsSegment bool
}

var macroArgPattern = regexp.MustCompile(`\\([A-Za-z_][A-Za-z0-9_]*|[1-9])`)
var quotedArgPattern = regexp.MustCompile(`@\{([A-Za-z_][A-Za-z0-9_]*|[1-9])\}`)

// Expand substitutes the arguments of call into fresh copies of the body.
// \name and \1..\9 are replaced everywhere; @{name} only inside quotes.
func (m *Macro) Expand(call *SourceLine) ([]*SourceLine, error) {
	var args []string
	if !m.IsSegment {
		args = SplitOperands(call.Operand)
	}
	if len(args) > len(m.Params) {
		return nil, lineError(call, KindParse, "Too many arguments for macro '%s'", m.Name)
	}
	values := make(map[string]string, 2*len(m.Params))
	for i, p := range m.Params {
		v := p.Default
		if i < len(args) && args[i] != "" {
			v = args[i]
		}
		values[p.Name] = v
		if i < 9 {
			values[string(rune('1'+i))] = v
		}
	}

	out := make([]*SourceLine, 0, len(m.Body))
	for _, body := range m.Body {
		text := macroArgPattern.ReplaceAllStringFunc(body.text, func(ref string) string {
			if v, ok := values[ref[1:]]; ok {
				return v
			}
			return ref
		})
		text = substituteQuoted(text, values)
		out = append(out, body.cloneWithText(text))
	}
	return out, nil
}

// substituteQuoted replaces @{name} inside quoted literals only. Quoted
// argument values are inserted without their quotes.
func substituteQuoted(text string, values map[string]string) string {
	if !strings.Contains(text, "@{") {
		return text
	}
	var b strings.Builder
	var q quoteState
	start := 0
	for i := 0; i < len(text); i++ {
		inside := q.step(text[i])
		if !inside || q.quote == 0 || text[i] != '@' {
			continue
		}
		loc := quotedArgPattern.FindStringSubmatchIndex(text[i:])
		if loc == nil || loc[0] != 0 {
			continue
		}
		v, ok := values[text[i+loc[2]:i+loc[3]]]
		if !ok {
			continue
		}
		if s, isString := UnquoteString(v); isString {
			v = s
		}
		b.WriteString(text[start:i])
		b.WriteString(v)
		i += loc[1] - 1
		start = i + 1
	}
	b.WriteString(text[start:])
	return b.String()
}

// Macros is the run's registry of macros and segments.
type Macros struct {
	defs     map[string]*Macro
	segments map[string]*Macro
}

// NewMacros returns an empty registry.
func NewMacros() *Macros {
	return &Macros{defs: make(map[string]*Macro), segments: make(map[string]*Macro)}
}

// Define registers m. Names are case-insensitive and may not be redefined.
func (r *Macros) Define(m *Macro) error {
	table := r.defs
	if m.IsSegment {
		table = r.segments
	}
	key := strings.ToLower(m.Name)
	if _, dup := table[key]; dup {
		return newError(KindStructural, "'%s' is already defined", m.Name)
	}
	table[key] = m
	return nil
}

// Lookup finds the macro invoked by instr, which includes the leading dot.
func (r *Macros) Lookup(instr string) (*Macro, bool) {
	if !strings.HasPrefix(instr, ".") {
		return nil, false
	}
	m, ok := r.defs[strings.ToLower(instr[1:])]
	return m, ok
}

// Segment finds a segment by name.
func (r *Macros) Segment(name string) (*Macro, bool) {
	m, ok := r.segments[strings.ToLower(name)]
	return m, ok
}

// Names lists the defined macros.
func (r *Macros) Names() []string {
	names := make([]string, 0, len(r.defs))
	for _, m := range r.defs {
		names = append(names, m.Name)
	}
	return names
}

// MacroHandler records a .macro or .segment definition.
type MacroHandler struct {
	macros   *Macros
	reserved func(directive string) bool
	current  *Macro
	closer   string
	invalid  bool
}

// NewMacroHandler returns a handler registering into macros. reserved
// rejects names whose invocation would shadow a directive.
func NewMacroHandler(macros *Macros, reserved func(directive string) bool) *MacroHandler {
	return &MacroHandler{macros: macros, reserved: reserved}
}

func (h *MacroHandler) Processes(instr string) bool {
	switch instr {
	case ".macro", ".endmacro", ".segment", ".endsegment":
		return true
	}
	return false
}

func (h *MacroHandler) IsProcessing() bool {
	return h.current != nil
}

// GetProcessedLines returns nothing; a definition emits no lines.
func (h *MacroHandler) GetProcessedLines() []*SourceLine {
	return nil
}

func (h *MacroHandler) Reset() {
	h.current, h.closer, h.invalid = nil, "", false
}

func (h *MacroHandler) Process(line *SourceLine) error {
	instr := line.Instruction
	if h.current == nil {
		switch instr {
		case ".macro":
			return h.open(line, false)
		case ".segment":
			return h.open(line, true)
		}
		return lineError(line, KindStructural, "'%s' without matching opening directive", instr)
	}

	switch instr {
	case ".macro", ".segment":
		return lineError(line, KindStructural, "Nested definitions are not allowed")
	case ".endmacro", ".endsegment":
		if instr != h.closer {
			return lineError(line, KindStructural, "'%s' does not close '%s'", instr, h.current.Name)
		}
		m, invalid := h.current, h.invalid
		h.Reset()
		if invalid {
			return nil
		}
		return attachLine(h.macros.Define(m), line)
	}
	h.current.Body = append(h.current.Body, line)
	return nil
}

func (h *MacroHandler) open(line *SourceLine, segment bool) error {
	m := &Macro{IsSegment: segment}
	h.closer = ".endmacro"
	if segment {
		h.closer = ".endsegment"
		m.Name = strings.TrimSpace(line.Operand)
	} else {
		m.Name = line.Label
	}
	h.current = m
	h.invalid = true
	if m.Name == "" || isAnonymousLabel(m.Name) || !identPattern.MatchString(m.Name) {
		return lineError(line, KindStructural, "Invalid or missing name for '%s'", line.Instruction)
	}
	if directive := "." + strings.ToLower(m.Name); !segment && h.reserved != nil && h.reserved(directive) {
		return lineError(line, KindStructural, "'%s' is a reserved directive", m.Name)
	}
	if segment {
		h.invalid = false
		return nil
	}

	seen := make(map[string]bool)
	for i, p := range SplitOperands(line.Operand) {
		name, def, _ := strings.Cut(p, "=")
		name, def = strings.TrimSpace(name), strings.TrimSpace(def)
		if !identPattern.MatchString(name) {
			return lineError(line, KindStructural, "Invalid parameter name '%s'", name)
		}
		if seen[name] {
			return lineError(line, KindStructural, "Duplicate parameter name '%s'", name)
		}
		seen[name] = true
		m.Params = append(m.Params, MacroParam{Name: name, Default: def, Position: i + 1})
	}
	h.invalid = false
	return nil
}
