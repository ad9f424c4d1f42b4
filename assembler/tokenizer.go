// tokenizer.go - Statement tokenizer

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
	"regexp"
	"strings"
)

var (
	labelPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)
	// identPattern names macros, parameters, loop variables and encodings
	identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

var errUnterminatedQuote = errors.New("unterminated quote")

// ---------------------------------------------------------------------
// Quote and paren aware scanning
// ---------------------------------------------------------------------

// quoteState tracks whether a scan is inside a quoted literal.
type quoteState struct {
	quote   byte
	escaped bool
}

// step feeds c and reports whether it belongs to a quoted literal,
// delimiters included.
func (q *quoteState) step(c byte) bool {
	if q.quote != 0 {
		switch {
		case q.escaped:
			q.escaped = false
		case c == '\\':
			q.escaped = true
		case c == q.quote:
			q.quote = 0
		}
		return true
	}
	if c == '"' || c == '\'' {
		q.quote = c
		return true
	}
	return false
}

// stripComment removes a ; comment from a line, respecting quoted strings.
func stripComment(line string) (string, error) {
	var q quoteState
	for i := 0; i < len(line); i++ {
		if q.step(line[i]) {
			continue
		}
		if line[i] == ';' {
			return line[:i], nil
		}
	}
	if q.quote != 0 {
		return line, errUnterminatedQuote
	}
	return line, nil
}

// findTopLevel returns the index of the first c outside quotes and
// parentheses, or -1.
func findTopLevel(s string, c byte) int {
	var q quoteState
	depth := 0
	for i := 0; i < len(s); i++ {
		if q.step(s[i]) {
			continue
		}
		switch s[i] {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case c:
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// SplitOperands splits on commas but respects parentheses and quotes.
func SplitOperands(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var result []string
	for {
		i := findTopLevel(s, ',')
		if i < 0 {
			break
		}
		result = append(result, strings.TrimSpace(s[:i]))
		s = s[i+1:]
	}
	return append(result, strings.TrimSpace(s))
}

// ---------------------------------------------------------------------
// Tokenizer
// ---------------------------------------------------------------------

func firstToken(s string, stops string) (string, string) {
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(stops, s[i]) >= 0 {
			return s[:i], s[i:]
		}
	}
	return s, ""
}

func isAssignment(s string) bool {
	s = strings.TrimLeft(s, " \t")
	return strings.HasPrefix(s, "=") && !strings.HasPrefix(s, "==")
}

// Tokenize splits a line's text into label, instruction and operand.
// Instructions are lower-cased. A ':' outside quotes and parentheses after
// the label ends the statement; the remainder comes back as further lines to
// be processed directly after this one.
//
// isInstruction tells mnemonics apart from labels written in column zero.
func Tokenize(line *SourceLine, isInstruction func(string) bool) ([]*SourceLine, error) {
	line.parsed = true
	line.Label, line.Instruction, line.Operand = "", "", ""

	code, err := stripComment(line.text)
	if err != nil {
		return nil, lineError(line, KindParse, "%v", err)
	}
	if strings.TrimSpace(code) == "" {
		line.IsComment = true
		return nil, nil
	}

	column0 := code[0] != ' ' && code[0] != '\t'
	rest := strings.TrimLeft(code, " \t")
	tok, after := firstToken(rest, " \t=:")

	isLabel := false
	if tok != "" {
		switch {
		case strings.HasPrefix(after, ":"):
			isLabel = true
			after = after[1:]
		case isAssignment(after):
			isLabel = true
		case strings.HasPrefix(tok, "."), isInstruction(tok):
		case column0:
			isLabel = true
		default:
			next, _ := firstToken(strings.TrimLeft(after, " \t"), " \t:")
			isLabel = strings.HasPrefix(next, ".") || (next != "" && isInstruction(next))
		}
	}
	if isLabel {
		if tok != "*" && !isAnonymousLabel(tok) && !labelPattern.MatchString(tok) {
			return nil, lineError(line, KindSymbol, "Invalid label name '%s'", tok)
		}
		line.Label = tok
		rest = strings.TrimLeft(after, " \t")
	}

	var instr string
	switch {
	case strings.HasPrefix(rest, "="):
		instr, rest = "=", rest[1:]
	case strings.HasPrefix(rest, ":"):
	default:
		instr, rest = firstToken(rest, " \t:")
	}
	if line.Label == "*" && instr != "=" {
		return nil, lineError(line, KindParse, "'*' may only be assigned")
	}

	var extra []*SourceLine
	if i := findTopLevel(rest, ':'); i >= 0 {
		tail := strings.TrimSpace(rest[i+1:])
		line.text = code[:len(code)-len(rest)+i]
		rest = rest[:i]
		if tail != "" {
			next := line.cloneWithText(" " + tail)
			more, err := Tokenize(next, isInstruction)
			extra = append([]*SourceLine{next}, more...)
			if err != nil {
				return extra, err
			}
		}
	}

	line.Instruction = strings.ToLower(instr)
	line.Operand = strings.TrimSpace(rest)
	return extra, nil
}
