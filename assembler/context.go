// context.go - Per-run assembly context

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
	"os"
	"path/filepath"
	"strings"
)

type deferredEntry struct {
	line    *SourceLine
	isError bool
	echo    bool
	msg     string
}

// AssemblyContext owns the state shared by the controller, handlers and
// targets for one run.
type AssemblyContext struct {
	Options   Options
	Evaluator *Evaluator
	Symbols   *SymbolManager
	Output    *Compilation
	Log       *ErrorLog
	Encodings *Encodings
	Macros    *Macros
	Targets   *Targets

	// Echo receives .echo output from the final pass.
	Echo io.Writer

	// Pass is the zero-based pass in progress.
	Pass int

	deferred []deferredEntry
	binaries map[string][]byte
}

// NewAssemblyContext wires a fresh context for opts.
func NewAssemblyContext(opts Options) *AssemblyContext {
	enc := NewEncodings()
	ctx := &AssemblyContext{
		Options:   opts,
		Evaluator: NewEvaluator(),
		Symbols:   NewSymbolManager(opts.CaseInsensitive, enc),
		Output:    NewCompilation(opts.maxAddress(), opts.BigEndian),
		Log:       NewErrorLog(),
		Encodings: enc,
		Macros:    NewMacros(),
		Echo:      os.Stdout,
		binaries:  make(map[string][]byte),
	}
	ctx.Targets = newTargets(ctx, NewPseudoOps(ctx))
	ctx.Symbols.deferUnknown = ctx.Evaluator.hasLookup

	booleans := func(name string) (string, bool) {
		if strings.EqualFold(name, "true") {
			return "1", true
		}
		return "0", true
	}
	_ = ctx.Evaluator.DefineSymbolLookup("(?i:true|false)", booleans)

	for name, v := range opts.Defines {
		ctx.Symbols.Define(name, v)
	}
	return ctx
}

// Evaluate evaluates expr as seen from line.
func (ctx *AssemblyContext) Evaluate(line *SourceLine, expr string) (int64, error) {
	if strings.TrimSpace(expr) == "" {
		return 0, lineError(line, KindParse, "Expression expected")
	}
	if v, ok := ctx.Evaluator.cached(expr); ok {
		return v, nil
	}
	elems, symbolic, err := ctx.Symbols.translate(line, expr, line.Scope, ctx.Pass > 0)
	if err != nil {
		return 0, attachLine(err, line)
	}
	v, err := ctx.Evaluator.EvalElements(elems)
	if err != nil {
		return 0, attachLine(err, line)
	}
	if !symbolic && !callsRandom(elems) {
		ctx.Evaluator.remember(expr, v)
	}
	return v, nil
}

func callsRandom(elems []ExpressionElement) bool {
	for _, el := range elems {
		if el.Type == TypeFunction && el.Word == "random" {
			return true
		}
	}
	return false
}

// EvaluateRange evaluates expr and requires min <= result <= max.
func (ctx *AssemblyContext) EvaluateRange(line *SourceLine, expr string, min, max int64) (int64, error) {
	v, err := ctx.Evaluate(line, expr)
	if err != nil {
		return 0, err
	}
	v, err = checkRange(v, min, max)
	return v, attachLine(err, line)
}

// EvaluateCondition is true iff expr evaluates to exactly 1.
func (ctx *AssemblyContext) EvaluateCondition(line *SourceLine, expr string) (bool, error) {
	v, err := ctx.Evaluate(line, expr)
	if err != nil {
		return false, err
	}
	return v == 1, nil
}

// IsDefined reports whether name resolves from line.
func (ctx *AssemblyContext) IsDefined(line *SourceLine, name string) bool {
	return ctx.Symbols.IsDefined(name, line.symbolScope(name))
}

// Warn records a warning. Only the final pass's warnings are kept.
func (ctx *AssemblyContext) Warn(line *SourceLine, format string, args ...interface{}) {
	ctx.deferred = append(ctx.deferred, deferredEntry{line: line, msg: fmt.Sprintf(format, args...)})
}

// UserError records an error raised by source. Like warnings it is only
// kept from the final pass.
func (ctx *AssemblyContext) UserError(line *SourceLine, format string, args ...interface{}) {
	ctx.deferred = append(ctx.deferred, deferredEntry{line: line, isError: true, msg: fmt.Sprintf(format, args...)})
}

// EchoLine queues text for Echo.
func (ctx *AssemblyContext) EchoLine(line *SourceLine, text string) {
	ctx.deferred = append(ctx.deferred, deferredEntry{line: line, echo: true, msg: text})
}

func (ctx *AssemblyContext) beginPass(pass int) {
	ctx.Pass = pass
	ctx.deferred = ctx.deferred[:0]
	ctx.Symbols.SetPass(pass)
	ctx.Symbols.takeUnresolved()
	ctx.Output.Reset()
	ctx.Encodings.Select(ctx.encoding())
}

func (ctx *AssemblyContext) encoding() string {
	if ctx.Options.Encoding == "" {
		return EncodingNone
	}
	return ctx.Options.Encoding
}

func (ctx *AssemblyContext) commitDeferred() {
	for _, d := range ctx.deferred {
		switch {
		case d.echo:
			if ctx.Echo != nil {
				fmt.Fprintln(ctx.Echo, d.msg)
			}
		default:
			ctx.Log.LogEntry(d.line, d.isError, "%s", d.msg)
		}
	}
	ctx.deferred = ctx.deferred[:0]
}

// Emit writes b at the program counter and records it on the line.
func (ctx *AssemblyContext) Emit(line *SourceLine, b []byte) error {
	out, err := ctx.Output.AddBytes(b)
	if err != nil {
		return attachLine(err, line)
	}
	line.Assembly = append(line.Assembly, out...)
	return nil
}

// ReadBinary loads a file named by source, relative to the referring file
// first and then the include paths. Contents are cached for the run.
func (ctx *AssemblyContext) ReadBinary(line *SourceLine, name string) ([]byte, error) {
	dir := "."
	if line.Filename != "" {
		dir = filepath.Dir(line.Filename)
	}
	path, err := resolvePath(name, dir, append([]string{"."}, ctx.Options.IncludePaths...))
	if err != nil {
		return nil, lineError(line, KindParse, "Unable to open file '%s'", name)
	}
	if b, ok := ctx.binaries[path]; ok {
		return b, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, lineError(line, KindParse, "Unable to open file '%s'", name)
	}
	ctx.binaries[path] = b
	return b, nil
}
