// source_handler.go - Source reader with include expansion

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
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
)

// SourceHandler reads source files into lines, splicing .include and
// .binclude files in place and marking .comment blocks. A file may be
// included at most once per run.
type SourceHandler struct {
	includePaths []string
	included     map[string]bool
}

// NewSourceHandler creates a reader that searches includePaths after the
// directory of the including file.
func NewSourceHandler(includePaths []string) *SourceHandler {
	return &SourceHandler{
		includePaths: includePaths,
		included:     make(map[string]bool),
	}
}

// ReadFile loads path and everything it includes.
func (h *SourceHandler) ReadFile(path string) ([]*SourceLine, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, newError(KindStructural, "Unable to open source file '%s': %v", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, newError(KindStructural, "Unable to open source file '%s': %v", path, err)
	}
	h.included[abs] = true
	return h.expand(path, filepath.Dir(abs), string(data))
}

// ReadString treats text as the contents of a file called name. Includes
// resolve against the working directory.
func (h *SourceHandler) ReadString(name, text string) ([]*SourceLine, error) {
	return h.expand(name, ".", text)
}

func (h *SourceHandler) expand(name, dir, text string) ([]*SourceLine, error) {
	var lines []*SourceLine
	inComment := false

	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	number := 0
	for sc.Scan() {
		number++
		line := NewSourceLine(name, number, strings.TrimRight(sc.Text(), "\r"))
		directive, operand := peekDirective(line.text)

		if inComment {
			line.IsComment, line.parsed = true, true
			lines = append(lines, line)
			if directive == ".endcomment" {
				inComment = false
			}
			continue
		}

		switch directive {
		case ".comment":
			inComment = true
			line.IsComment, line.parsed = true, true
			lines = append(lines, line)
		case ".endcomment":
			return nil, lineError(line, KindStructural, "'.endcomment' without '.comment'")
		case ".include", ".binclude":
			sub, err := h.include(line, dir, operand)
			if err != nil {
				return nil, err
			}
			line.IsComment, line.parsed = true, true
			lines = append(lines, line)
			if directive == ".binclude" {
				lines = append(lines, newShadowLine(line, " .block"))
				lines = append(lines, sub...)
				lines = append(lines, newShadowLine(line, " .endblock"))
			} else {
				lines = append(lines, sub...)
			}
		default:
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, newError(KindStructural, "Unable to read '%s': %v", name, err)
	}
	if inComment {
		return nil, newError(KindStructural, "%s: missing '.endcomment'", name)
	}
	return lines, nil
}

func (h *SourceHandler) include(line *SourceLine, dir, operand string) ([]*SourceLine, error) {
	filename, ok := UnquoteString(operand)
	if !ok || filename == "" {
		return nil, lineError(line, KindStructural, "Missing file name for include")
	}
	path, err := resolvePath(filename, dir, h.includePaths)
	if err != nil {
		return nil, lineError(line, KindStructural, "Unable to open include file '%s'", filename)
	}
	if h.included[path] {
		return nil, lineError(line, KindStructural, "File '%s' was already included", filename)
	}
	h.included[path] = true
	glog.V(2).Infof("including %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, lineError(line, KindStructural, "Unable to open include file '%s'", filename)
	}
	return h.expand(filename, filepath.Dir(path), string(data))
}

// resolvePath finds filename relative to dir, then in each search path.
func resolvePath(filename, dir string, searchPaths []string) (string, error) {
	candidates := []string{filename}
	if !filepath.IsAbs(filename) {
		candidates = []string{filepath.Join(dir, filename)}
		for _, p := range searchPaths {
			candidates = append(candidates, filepath.Join(p, filename))
		}
	}
	var lastErr error
	for _, c := range candidates {
		abs, err := filepath.Abs(c)
		if err != nil {
			lastErr = err
			continue
		}
		if _, err := os.Stat(abs); err != nil {
			lastErr = err
			continue
		}
		return abs, nil
	}
	return "", lastErr
}

// peekDirective returns the lower-cased directive and operand of a line
// that starts (after optional whitespace) with a directive.
func peekDirective(text string) (string, string) {
	code, err := stripComment(text)
	if err != nil {
		return "", ""
	}
	code = strings.TrimSpace(code)
	if !strings.HasPrefix(code, ".") {
		return "", ""
	}
	tok, rest := firstToken(code, " \t")
	return strings.ToLower(tok), strings.TrimSpace(rest)
}
