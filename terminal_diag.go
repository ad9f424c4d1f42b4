// terminal_diag.go - Diagnostic output for terminals and pipes

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

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/intuitionamiga/ieasm/assembler"
)

const (
	ansiRed    = "\033[38;2;255;60;60m"
	ansiYellow = "\033[38;2;255;200;60m"
	ansiDim    = "\033[2m"
	ansiReset  = "\033[0m"
)

// DiagPrinter renders error log entries, colored when the output is a
// terminal.
type DiagPrinter struct {
	w     io.Writer
	color bool
}

// NewDiagPrinter returns a printer for w. Color is enabled only when w is a
// terminal.
func NewDiagPrinter(w io.Writer) *DiagPrinter {
	return &DiagPrinter{w: w, color: isTerminal(w)}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Print writes one entry, followed by its source line when it has one.
func (p *DiagPrinter) Print(e assembler.LogEntry) {
	kind, color := "warning", ansiYellow
	if e.IsError {
		kind, color = "error", ansiRed
	}
	var where string
	if e.Filename != "" || e.LineNumber != 0 {
		where = fmt.Sprintf("%s:%d: ", e.Filename, e.LineNumber)
	}
	src := strings.TrimSpace(e.Source)

	if !p.color {
		fmt.Fprintf(p.w, "%s%s: %s\n", where, kind, e.Message)
		if src != "" {
			fmt.Fprintf(p.w, "    %s\n", src)
		}
		return
	}
	fmt.Fprintf(p.w, "%s%s%s:%s %s\n", where, color, kind, ansiReset, e.Message)
	if src != "" {
		fmt.Fprintf(p.w, "    %s%s%s\n", ansiDim, src, ansiReset)
	}
}

// PrintLog writes every entry of log and a summary line when there were
// any diagnostics.
func (p *DiagPrinter) PrintLog(name string, log *assembler.ErrorLog) {
	for _, e := range log.Entries() {
		p.Print(e)
	}
	if log.ErrorCount() > 0 || log.WarningCount() > 0 {
		fmt.Fprintf(p.w, "%s: %d error(s), %d warning(s)\n", name, log.ErrorCount(), log.WarningCount())
	}
}
