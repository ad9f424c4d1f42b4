// source_line.go - Source line model

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
	"fmt"
	"strings"
)

// ShadowSource is the SourceString of lines synthesized by block handlers
// rather than read from a file.
const ShadowSource = "\x00shadow"

// SourceLine is one statement of the program. Lines read from disk, lines
// produced by expansion and lines synthesized by handlers all share this
// shape. Lines are never removed from the processed list; lines that must not
// be evaluated carry DoNotAssemble instead.
type SourceLine struct {
	Filename   string
	LineNumber int

	// ID orders lines in processing order. Zero until the first pass
	// reaches the line.
	ID int

	Label       string
	Instruction string
	Operand     string

	// Scope is the dotted scope path active where the line was processed.
	Scope string

	// PC is the logical program counter at the start of the line, as of the
	// most recent pass.
	PC int64

	// Assembly holds the bytes emitted for the line in the most recent pass.
	Assembly []byte

	// SourceString is the original text, or ShadowSource.
	SourceString string

	IsComment     bool
	DoNotAssemble bool

	text   string // statement text fed to the tokenizer
	parsed bool
	anchor string // nearest preceding non-local label in the same scope
}

// NewSourceLine creates an untokenized line read from source.
func NewSourceLine(filename string, lineNumber int, text string) *SourceLine {
	return &SourceLine{
		Filename:     filename,
		LineNumber:   lineNumber,
		SourceString: text,
		text:         text,
	}
}

// newShadowLine synthesizes a statement attributed to the position of from.
func newShadowLine(from *SourceLine, text string) *SourceLine {
	return &SourceLine{
		Filename:     from.Filename,
		LineNumber:   from.LineNumber,
		SourceString: ShadowSource,
		text:         text,
	}
}

// IsShadow reports whether the line was synthesized by a handler.
func (l *SourceLine) IsShadow() bool {
	return l.SourceString == ShadowSource
}

// Clone returns an untokenized copy of the line ready to be processed again.
func (l *SourceLine) Clone() *SourceLine {
	return &SourceLine{
		Filename:     l.Filename,
		LineNumber:   l.LineNumber,
		SourceString: l.SourceString,
		text:         l.text,
	}
}

// cloneWithText is Clone with the statement text replaced.
func (l *SourceLine) cloneWithText(text string) *SourceLine {
	c := l.Clone()
	c.text = text
	return c
}

// Text returns the statement text the tokenizer sees.
func (l *SourceLine) Text() string {
	return l.text
}

// Position formats the source position for diagnostics.
func (l *SourceLine) Position() string {
	if l.Filename == "" {
		return fmt.Sprintf("line %d", l.LineNumber)
	}
	return fmt.Sprintf("%s:%d", l.Filename, l.LineNumber)
}

func (l *SourceLine) String() string {
	if l.IsShadow() {
		return l.text
	}
	return l.SourceString
}

// symbolScope returns the scope a name is keyed under when referenced from
// this line. Names starting with an underscore bind to the nearest
// preceding non-local label.
func (l *SourceLine) symbolScope(name string) string {
	if isLocalName(name) {
		return l.Scope + "::" + l.anchor
	}
	return l.Scope
}

func isLocalName(name string) bool {
	return strings.HasPrefix(name, "_")
}

func isAnonymousLabel(name string) bool {
	return name == "+" || name == "-"
}
