// assemble.go - Convenience entry points and listings

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
	"io"
	"strings"
)

// Result is the outcome of an assembly run.
type Result struct {
	Code   []byte
	Origin int64
	End    int64
	Passes int
	Lines  []*SourceLine
	Log    *ErrorLog

	// Context gives access to the final symbol tables.
	Context *AssemblyContext
}

// AssembleString assembles source text. name is used in diagnostics.
func AssembleString(name, source string, opts Options) (*Result, error) {
	ctx := NewAssemblyContext(opts)
	lines, err := NewSourceHandler(opts.IncludePaths).ReadString(name, source)
	if err != nil {
		ctx.Log.LogError(err)
		return &Result{Log: ctx.Log, Context: ctx}, err
	}
	return run(ctx, lines)
}

// AssembleFile assembles the file at path.
func AssembleFile(path string, opts Options) (*Result, error) {
	ctx := NewAssemblyContext(opts)
	lines, err := NewSourceHandler(opts.IncludePaths).ReadFile(path)
	if err != nil {
		ctx.Log.LogError(err)
		return &Result{Log: ctx.Log, Context: ctx}, err
	}
	return run(ctx, lines)
}

// AssembleContext assembles lines into a caller-prepared context.
func AssembleContext(ctx *AssemblyContext, lines []*SourceLine) (*Result, error) {
	return run(ctx, lines)
}

func run(ctx *AssemblyContext, lines []*SourceLine) (*Result, error) {
	c := NewController(ctx)
	err := c.Assemble(lines)
	res := &Result{
		Passes:  c.Passes(),
		Lines:   c.ProcessedLines(),
		Log:     ctx.Log,
		Context: ctx,
	}
	if err == nil {
		res.Code = ctx.Output.Bytes()
		res.Origin = ctx.Output.ProgramStart()
		res.End = ctx.Output.ProgramEnd()
	}
	return res, err
}

// WriteListing writes address, bytes and source for every assembled line.
func WriteListing(w io.Writer, lines []*SourceLine) error {
	for _, l := range lines {
		if l.DoNotAssemble || l.IsShadow() {
			continue
		}
		src := strings.TrimRight(l.SourceString, " \t")
		if len(l.Assembly) == 0 {
			if _, err := fmt.Fprintf(w, "%08X  %-24s %s\n", l.PC, "", src); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "%08X  %-24s %s\n", l.PC, hexBytes(l.Assembly), src); err != nil {
			return err
		}
	}
	return nil
}

func hexBytes(data []byte) string {
	var b strings.Builder
	for i, c := range data {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%02X", c)
		if i >= 7 {
			b.WriteString("...")
			break
		}
	}
	return b.String()
}
