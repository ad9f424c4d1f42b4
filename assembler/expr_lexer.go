// expr_lexer.go - Expression lexer

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

// lexExpression splits an expression into elements. Numeric literals are
// normalized to decimal words and multi-character operators to their
// internal single-symbol spelling. Whether '-', '+', '<', '>', '^', '!' and
// '~' are unary is decided by position.
func lexExpression(s string) ([]ExpressionElement, error) {
	var elems []ExpressionElement
	expectOperand := true
	i := 0
	for i < len(s) {
		ch := s[i]
		if ch == ' ' || ch == '\t' {
			i++
			continue
		}

		switch {
		case ch == '(':
			elems = append(elems, ExpressionElement{Type: TypeGroup, SubType: SubOpen, Word: "("})
			expectOperand = true
			i++
			continue
		case ch == ')':
			if expectOperand {
				return nil, newError(KindParse, "Unexpected ')' in expression '%s'", s)
			}
			elems = append(elems, ExpressionElement{Type: TypeGroup, SubType: SubClose, Word: ")"})
			i++
			continue
		case ch == ',':
			if expectOperand {
				return nil, newError(KindParse, "Unexpected ',' in expression '%s'", s)
			}
			elems = append(elems, ExpressionElement{Type: TypeOperator, SubType: SubNone, Word: ","})
			expectOperand = true
			i++
			continue
		}

		if !expectOperand {
			op, n := binaryOperatorAt(s, i)
			if n == 0 {
				return nil, newError(KindParse, "Unexpected '%c' in expression '%s'", ch, s)
			}
			elems = append(elems, ExpressionElement{Type: TypeOperator, SubType: SubBinary, Word: op})
			expectOperand = true
			i += n
			continue
		}

		// Operand position.
		switch {
		case ch == '\'' || ch == '"':
			end, err := scanQuoted(s, i)
			if err != nil {
				return nil, err
			}
			elems = append(elems, ExpressionElement{Type: TypeOperand, Word: s[i:end]})
			i = end
		case ch == '$' || (ch == '%' && i+1 < len(s) && strings.IndexByte("01.#", s[i+1]) >= 0) ||
			(ch >= '0' && ch <= '9') || (ch == '.' && i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '9'):
			el, end, err := scanNumber(s, i)
			if err != nil {
				return nil, err
			}
			elems = append(elems, el)
			i = end
		case isIdentStart(ch):
			start := i
			for i < len(s) && isIdentChar(s[i]) {
				i++
			}
			name := strings.TrimRight(s[start:i], ".")
			i = start + len(name)
			if _, ok := builtinFunctions[strings.ToLower(name)]; ok && nextNonSpace(s, i) == '(' {
				elems = append(elems, ExpressionElement{Type: TypeFunction, Word: strings.ToLower(name)})
				continue
			}
			elems = append(elems, ExpressionElement{Type: TypeOperand, Word: name})
		case ch == '*':
			elems = append(elems, ExpressionElement{Type: TypeOperand, Word: "*"})
			i++
		case ch == '+' || ch == '-':
			run := i
			for run < len(s) && s[run] == ch {
				run++
			}
			if next := nextNonSpace(s, run); next == 0 || next == ')' || next == ',' {
				elems = append(elems, ExpressionElement{Type: TypeOperand, Word: s[i:run]})
				i = run
				break
			}
			elems = append(elems, ExpressionElement{Type: TypeOperator, SubType: SubUnary, Word: unaryOperators[ch]})
			i++
			continue
		default:
			op, ok := unaryOperators[ch]
			if !ok {
				return nil, newError(KindParse, "Unexpected '%c' in expression '%s'", ch, s)
			}
			elems = append(elems, ExpressionElement{Type: TypeOperator, SubType: SubUnary, Word: op})
			i++
			continue
		}
		expectOperand = false
	}

	if len(elems) == 0 {
		return nil, newError(KindParse, "Expression expected")
	}
	if expectOperand {
		return nil, newError(KindParse, "Unexpected end of expression '%s'", s)
	}
	return elems, nil
}

func nextNonSpace(s string, i int) byte {
	for ; i < len(s); i++ {
		if s[i] != ' ' && s[i] != '\t' {
			return s[i]
		}
	}
	return 0
}

func binaryOperatorAt(s string, i int) (string, int) {
	if i+1 < len(s) {
		if op, ok := twoCharOperators[s[i:i+2]]; ok {
			return op, 2
		}
	}
	switch s[i] {
	case '+', '-', '*', '/', '%', '&', '|', '^', '<', '>':
		return s[i : i+1], 1
	}
	return "", 0
}

// scanQuoted returns the index just past the quoted literal starting at i.
func scanQuoted(s string, i int) (int, error) {
	var q quoteState
	for j := i; j < len(s); j++ {
		q.step(s[j])
		if q.quote == 0 {
			return j + 1, nil
		}
	}
	return 0, newError(KindParse, "Unterminated quote in expression '%s'", s)
}

// scanNumber lexes a hex ($ or 0x), binary (%, 0b or %.# bit pictures),
// decimal or fractional literal. Underscores separate digits.
func scanNumber(s string, i int) (ExpressionElement, int, error) {
	base := 10
	start := i
	digits := "0123456789_"
	switch {
	case s[i] == '$':
		base, digits = 16, "0123456789abcdefABCDEF_"
		i++
	case s[i] == '%':
		base, digits = 2, "01_.#"
		i++
	case s[i] == '0' && i+1 < len(s) && (s[i+1] == 'x' || s[i+1] == 'X'):
		base, digits = 16, "0123456789abcdefABCDEF_"
		i += 2
	case s[i] == '0' && i+1 < len(s) && (s[i+1] == 'b' || s[i+1] == 'B') &&
		i+2 < len(s) && (s[i+2] == '0' || s[i+2] == '1'):
		base, digits = 2, "01_"
		i += 2
	}
	body := i
	for i < len(s) && strings.IndexByte(digits, s[i]) >= 0 {
		i++
	}
	fraction := false
	if base == 10 && i < len(s) && s[i] == '.' {
		fraction = true
		i++
		for i < len(s) && ((s[i] >= '0' && s[i] <= '9') || s[i] == '_') {
			i++
		}
	}
	if i < len(s) && isIdentChar(s[i]) {
		return ExpressionElement{}, 0, newError(KindParse, "Invalid number '%s'", s[start:i+1])
	}
	text := strings.ReplaceAll(s[body:i], "_", "")
	if base == 2 {
		text = strings.NewReplacer(".", "0", "#", "1").Replace(text)
	}
	if text == "" || text == "." {
		return ExpressionElement{}, 0, newError(KindParse, "Invalid number '%s'", s[start:i])
	}
	if fraction {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return ExpressionElement{}, 0, newError(KindParse, "Invalid number '%s'", s[start:i])
		}
		return operandElement(number{f: f, float: true}), i, nil
	}
	v, err := strconv.ParseUint(text, base, 64)
	if err != nil {
		return ExpressionElement{}, 0, newError(KindOverflow, "Number '%s' is too large", s[start:i])
	}
	return operandElement(number{i: int64(v)}), i, nil
}

// decodeLiteral returns the characters of a quoted operand word.
func decodeLiteral(word string) (string, error) {
	if s, ok := UnquoteString(word); ok {
		return s, nil
	}
	return "", newError(KindParse, "Invalid literal %s", word)
}

// UnquoteString strips the quotes from a "string" or 'c' literal and
// processes escapes.
func UnquoteString(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || (s[0] != '"' && s[0] != '\'') || s[len(s)-1] != s[0] {
		return "", false
	}
	var b strings.Builder
	body := s[1 : len(s)-1]
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c == '\\' && i+1 < len(body) {
			i++
			c = unescapeChar(body[i])
		}
		b.WriteByte(c)
	}
	return b.String(), true
}

func unescapeChar(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	default:
		return c
	}
}
