// symbols.go - Scoped symbol tables

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
	"strconv"
	"strings"
)

type symbolEntry struct {
	value  int64
	pass   int
	strict bool
}

// SymbolManager holds labels and variables keyed by their scoped name.
// Labels are fixed within a pass; variables may be reassigned freely.
type SymbolManager struct {
	labels    map[string]*symbolEntry
	variables map[string]*symbolEntry
	anon      anonymousLabels

	caseInsensitive bool
	pass            int
	encodings       *Encodings

	// deferUnknown keeps an unknown identifier in the expression for a
	// later lookup instead of failing translation.
	deferUnknown func(name string) bool

	unresolved bool
}

// NewSymbolManager creates empty tables. enc encodes character literals
// during translation.
func NewSymbolManager(caseInsensitive bool, enc *Encodings) *SymbolManager {
	return &SymbolManager{
		labels:          make(map[string]*symbolEntry),
		variables:       make(map[string]*symbolEntry),
		caseInsensitive: caseInsensitive,
		encodings:       enc,
	}
}

// SetPass records the pass used to tell redefinitions from updates.
func (s *SymbolManager) SetPass(pass int) {
	s.pass = pass
}

func (s *SymbolManager) key(scope, name string) string {
	k := name
	if scope != "" {
		k = scope + "." + name
	}
	if s.caseInsensitive {
		return strings.ToLower(k)
	}
	return k
}

func parentScope(scope string) string {
	if i := strings.LastIndexByte(scope, '.'); i >= 0 {
		return scope[:i]
	}
	return ""
}

// Define seeds a constant that source may not redefine.
func (s *SymbolManager) Define(name string, value int64) {
	s.labels[s.key("", name)] = &symbolEntry{value: value, pass: -1, strict: true}
}

// SetLabel defines or updates a label. A declared label defined twice in
// the same pass is a symbol error.
func (s *SymbolManager) SetLabel(name string, value int64, scope string, isDeclaration bool) error {
	k := s.key(scope, name)
	if _, ok := s.variables[k]; ok {
		return newError(KindSymbolCollision, "Symbol '%s' is already defined as a variable", name)
	}
	if e, ok := s.labels[k]; ok {
		if e.strict && (e.pass < 0 || (isDeclaration && e.pass == s.pass)) {
			return newError(KindSymbol, "Symbol '%s' redefined", name)
		}
		e.value, e.pass = value, s.pass
		e.strict = e.strict || isDeclaration
		return nil
	}
	s.labels[k] = &symbolEntry{value: value, pass: s.pass, strict: isDeclaration}
	return nil
}

// SetVariable assigns a variable.
func (s *SymbolManager) SetVariable(name string, value int64, scope string) error {
	k := s.key(scope, name)
	if _, ok := s.labels[k]; ok {
		return newError(KindSymbolCollision, "Symbol '%s' is already defined as a label", name)
	}
	if e, ok := s.variables[k]; ok {
		e.value, e.pass = value, s.pass
		return nil
	}
	s.variables[k] = &symbolEntry{value: value, pass: s.pass}
	return nil
}

// AssignVariable is SetVariable for assignments made inside anonymous
// scopes: a variable already held by an enclosing scope is updated there,
// so loop bodies and macro expansions can accumulate into it.
func (s *SymbolManager) AssignVariable(name string, value int64, scope string) error {
	for sc := scope; !isLocalName(name) && isAnonymousScope(sc); {
		sc = parentScope(sc)
		if e, ok := s.variables[s.key(sc, name)]; ok {
			e.value, e.pass = value, s.pass
			return nil
		}
	}
	return s.SetVariable(name, value, scope)
}

func isAnonymousScope(scope string) bool {
	return strings.HasPrefix(scope[strings.LastIndexByte(scope, '.')+1:], "@")
}

// GetValue looks name up from scope outwards, variables before labels.
func (s *SymbolManager) GetValue(name, scope string) (int64, error) {
	if isLocalName(name) {
		return s.lookup(name, scope)
	}
	for sc := scope; ; sc = parentScope(sc) {
		v, err := s.lookup(name, sc)
		if err == nil || KindOf(err) != KindUndefined {
			return v, err
		}
		if sc == "" {
			return 0, err
		}
	}
}

func (s *SymbolManager) lookup(name, scope string) (int64, error) {
	k := s.key(scope, name)
	v, vok := s.variables[k]
	l, lok := s.labels[k]
	switch {
	case vok && lok:
		return 0, newError(KindSymbolCollision, "Symbol '%s' is both a label and a variable", name)
	case vok:
		return v.value, nil
	case lok:
		return l.value, nil
	}
	return 0, newError(KindUndefined, "Symbol '%s' not defined", name)
}

// IsDefined reports whether name resolves from scope.
func (s *SymbolManager) IsDefined(name, scope string) bool {
	_, err := s.GetValue(name, scope)
	return err == nil
}

// Labels returns a copy of the label table keyed by scoped name.
func (s *SymbolManager) Labels() map[string]int64 {
	out := make(map[string]int64, len(s.labels))
	for k, e := range s.labels {
		out[k] = e.value
	}
	return out
}

// Variables returns a copy of the variable table keyed by scoped name.
func (s *SymbolManager) Variables() map[string]int64 {
	out := make(map[string]int64, len(s.variables))
	for k, e := range s.variables {
		out[k] = e.value
	}
	return out
}

// LabelNames returns the scoped label names in sorted order.
func (s *SymbolManager) LabelNames() []string {
	names := make([]string, 0, len(s.labels))
	for k := range s.labels {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// AddAnonymous records the anonymous label defined on line at line.PC.
func (s *SymbolManager) AddAnonymous(line *SourceLine) {
	s.anon.add(line)
}

// takeUnresolved reports and clears whether a translation substituted a
// placeholder for an anonymous label it could not resolve.
func (s *SymbolManager) takeUnresolved() bool {
	u := s.unresolved
	s.unresolved = false
	return u
}

// TranslateExpressionSymbols lexes expr and replaces '*', anonymous label
// references, character literals and symbols with numeric operands. An
// unresolved anonymous reference is an error when errorOnUnresolved is set;
// otherwise the line's PC stands in and the manager remembers that another
// pass is needed.
func (s *SymbolManager) TranslateExpressionSymbols(line *SourceLine, expr, scope string, errorOnUnresolved bool) ([]ExpressionElement, error) {
	elems, _, err := s.translate(line, expr, scope, errorOnUnresolved)
	return elems, err
}

// translate also reports whether expr referred to anything other than
// literals.
func (s *SymbolManager) translate(line *SourceLine, expr, scope string, errorOnUnresolved bool) ([]ExpressionElement, bool, error) {
	elems, err := lexExpression(expr)
	if err != nil {
		return nil, false, err
	}
	symbolic := false
	for i, el := range elems {
		if el.Type != TypeOperand || isNumericWord(el.Word) {
			continue
		}
		w := el.Word
		switch {
		case w == "*":
			symbolic = true
			elems[i] = operandElement(number{i: line.PC})
		case isAnonymousWord(w):
			symbolic = true
			pc, ok := s.anon.resolve(w, line)
			if !ok {
				if errorOnUnresolved {
					return nil, true, newError(KindUndefined, "Cannot resolve anonymous label '%s'", w)
				}
				s.unresolved = true
				pc = line.PC
			}
			elems[i] = operandElement(number{i: pc})
		case isQuotedWord(w):
			// encoding may change between lines
			symbolic = true
			text, err := decodeLiteral(w)
			if err != nil {
				return nil, true, err
			}
			if r := []rune(text); len(r) == 1 {
				elems[i] = operandElement(number{i: s.encodings.Encode(r[0])})
			}
		default:
			symbolic = true
			sc := scope
			if isLocalName(w) {
				sc = line.symbolScope(w)
			}
			v, err := s.GetValue(w, sc)
			if err != nil {
				if KindOf(err) == KindUndefined && s.deferUnknown != nil && s.deferUnknown(w) {
					continue
				}
				return nil, true, err
			}
			elems[i] = operandElement(number{i: v})
		}
	}
	return elems, symbolic, nil
}

// FormatValue renders a symbol value the way listings and dumps show it.
func FormatValue(v int64) string {
	if v < 0 {
		return strconv.FormatInt(v, 10)
	}
	return "$" + strings.ToUpper(strconv.FormatInt(v, 16))
}
