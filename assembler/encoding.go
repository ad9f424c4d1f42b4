// encoding.go - Text encodings for string and character literals

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
	"unicode/utf8"
)

// Built-in encoding names.
const (
	EncodingNone      = "none"
	EncodingPETSCII   = "petscii"
	EncodingCBMScreen = "cbmscreen"
	EncodingATAScreen = "atascreen"
)

var builtinEncodings = map[string]func(rune) rune{
	EncodingNone:      func(r rune) rune { return r },
	EncodingPETSCII:   petscii,
	EncodingCBMScreen: cbmScreen,
	EncodingATAScreen: ataScreen,
}

func petscii(r rune) rune {
	switch {
	case r >= 'a' && r <= 'z':
		return r - 'a' + 0x41
	case r >= 'A' && r <= 'Z':
		return r - 'A' + 0xC1
	case r == '£':
		return 0x5C
	}
	return r
}

func cbmScreen(r rune) rune {
	switch {
	case r == '@':
		return 0
	case r >= 'a' && r <= 'z':
		return r - 'a' + 1
	case r >= 'A' && r <= 'Z':
		return r - 'A' + 0x41
	case r == '[':
		return 0x1B
	case r == '£':
		return 0x1C
	case r == ']':
		return 0x1D
	}
	return r
}

func ataScreen(r rune) rune {
	switch {
	case r >= 0x20 && r <= 0x5F:
		return r - 0x20
	case r >= 0 && r < 0x20:
		return r + 0x40
	}
	return r
}

// Encodings holds the selected text encoding and any custom mappings.
// Mappings made with Map override the built-in conversion of the encoding
// they were made under.
type Encodings struct {
	custom  map[string]map[rune]int64
	current string
}

// NewEncodings selects EncodingNone.
func NewEncodings() *Encodings {
	return &Encodings{
		custom:  make(map[string]map[rune]int64),
		current: EncodingNone,
	}
}

// Select makes name current, creating an empty custom encoding when it is
// not built in.
func (e *Encodings) Select(name string) {
	name = strings.ToLower(name)
	if _, ok := builtinEncodings[name]; !ok {
		if _, ok := e.custom[name]; !ok {
			e.custom[name] = make(map[rune]int64)
		}
	}
	e.current = name
}

// Current returns the selected encoding name.
func (e *Encodings) Current() string {
	return e.current
}

// Names lists the built-in and custom encodings.
func (e *Encodings) Names() []string {
	seen := make(map[string]bool)
	for n := range builtinEncodings {
		seen[n] = true
	}
	for n := range e.custom {
		seen[n] = true
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Map assigns consecutive codes starting at code to the runes from..to in
// the current encoding.
func (e *Encodings) Map(from, to rune, code int64) error {
	if to < from {
		return newError(KindParse, "Invalid mapping range")
	}
	if code < 0 || code+int64(to-from) > 0xFF {
		return newError(KindOverflow, "Mapping code out of range")
	}
	m := e.custom[e.current]
	if m == nil {
		m = make(map[rune]int64)
		e.custom[e.current] = m
	}
	for r := from; r <= to; r++ {
		m[r] = code + int64(r-from)
	}
	return nil
}

// Unmap removes custom mappings for from..to in the current encoding.
func (e *Encodings) Unmap(from, to rune) {
	m := e.custom[e.current]
	for r := from; r <= to; r++ {
		delete(m, r)
	}
}

// Encode returns the code of r in the current encoding.
func (e *Encodings) Encode(r rune) int64 {
	if code, ok := e.custom[e.current][r]; ok {
		return code
	}
	if conv, ok := builtinEncodings[e.current]; ok {
		return int64(conv(r))
	}
	return int64(r)
}

// EncodeString encodes s. Without an active conversion, characters outside
// one byte are emitted as UTF-8.
func (e *Encodings) EncodeString(s string) ([]byte, error) {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		code := e.Encode(r)
		switch {
		case code >= 0 && code <= 0xFF:
			out = append(out, byte(code))
		case e.current == EncodingNone && code == int64(r):
			out = utf8.AppendRune(out, r)
		default:
			return nil, newError(KindOverflow, "Character '%c' cannot be encoded in '%s'", r, e.current)
		}
	}
	return out, nil
}
