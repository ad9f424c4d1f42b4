// cli_asm.go - The asm command

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
	"path/filepath"
	"runtime"
	"strings"

	"github.com/golang/glog"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"
	"golang.design/x/clipboard"
	"golang.org/x/sync/errgroup"

	"github.com/intuitionamiga/ieasm/assembler"
	"github.com/intuitionamiga/ieasm/assembler/ie32"
	"github.com/intuitionamiga/ieasm/assembler/ie64"
)

type asmFlags struct {
	output          string
	cpu             string
	config          string
	origin          string
	maxAddress      string
	encoding        string
	defines         []string
	includes        []string
	caseInsensitive bool
	werror          bool
	bigEndian       bool
	listing         bool
	dumpSymbols     bool
	clip            bool
	jobs            int
}

func newAsmCmd() *cobra.Command {
	f := &asmFlags{}
	cmd := &cobra.Command{
		Use:   "asm [flags] file...",
		Short: "Assemble one or more source files",
		Long: `Assemble each source file to a flat binary. Files are independent and
are assembled concurrently. Options come from ieasm.lua (or --config) and are
overridden by flags.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := buildOptions(cmd, f)
			if err != nil {
				return err
			}
			return runAsm(cmd.OutOrStdout(), os.Stderr, f, opts, args)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.output, "output", "o", "", "Output file (single input only, default: input.bin)")
	fl.StringVar(&f.cpu, "cpu", "", "Target CPU "+fmt.Sprint(assembler.TargetNames()))
	fl.StringVar(&f.config, "config", "", "Lua options file (default: ./"+DefaultConfigFile+" when present)")
	fl.StringVar(&f.origin, "origin", "", "Start address ($hex, 0x hex or decimal)")
	fl.StringVar(&f.maxAddress, "max-address", "", "Highest address the output may reach")
	fl.StringVar(&f.encoding, "encoding", "", "Initial text encoding")
	fl.StringArrayVarP(&f.defines, "define", "D", nil, "Define NAME or NAME=VALUE (repeatable)")
	fl.StringArrayVarP(&f.includes, "include", "I", nil, "Add an include search directory (repeatable)")
	fl.BoolVar(&f.caseInsensitive, "case-insensitive", false, "Ignore case in symbol names")
	fl.BoolVar(&f.werror, "werror", false, "Treat warnings as errors")
	fl.BoolVar(&f.bigEndian, "big-endian", false, "Emit multi-byte values big-endian")
	fl.BoolVarP(&f.listing, "listing", "l", false, "Write a listing next to each output file")
	fl.BoolVar(&f.dumpSymbols, "dump-symbols", false, "Print the final symbol tables")
	fl.BoolVar(&f.clip, "clip", false, "Copy a hex dump of the output to the clipboard (single input only)")
	fl.IntVarP(&f.jobs, "jobs", "j", runtime.NumCPU(), "Files assembled in parallel")
	return cmd
}

// buildOptions layers defaults, the Lua file and changed flags, in that
// order.
func buildOptions(cmd *cobra.Command, f *asmFlags) (assembler.Options, error) {
	opts := assembler.DefaultOptions()
	base := opts
	if err := loadDefaultConfig(f.config, &opts); err != nil {
		return opts, err
	}
	originSet := opts.Origin != base.Origin
	maxSet := opts.MaxAddress != base.MaxAddress

	changed := cmd.Flags().Changed
	if changed("cpu") {
		opts.CPU = f.cpu
	}
	if changed("encoding") {
		opts.Encoding = f.encoding
	}
	if changed("case-insensitive") {
		opts.CaseInsensitive = f.caseInsensitive
	}
	if changed("werror") {
		opts.WarningsAsErrors = f.werror
	}
	if changed("big-endian") {
		opts.BigEndian = f.bigEndian
	}
	if changed("origin") {
		v, err := parseAddressFlag(f.origin)
		if err != nil {
			return opts, fmt.Errorf("--origin: %w", err)
		}
		opts.Origin, originSet = v, true
	}
	if changed("max-address") {
		v, err := parseAddressFlag(f.maxAddress)
		if err != nil {
			return opts, fmt.Errorf("--max-address: %w", err)
		}
		opts.MaxAddress, maxSet = v, true
	}
	opts.IncludePaths = append(opts.IncludePaths, f.includes...)

	for _, d := range f.defines {
		name, value, err := parseDefine(d)
		if err != nil {
			return opts, err
		}
		if opts.Defines == nil {
			opts.Defines = make(map[string]int64)
		}
		opts.Defines[name] = value
	}

	applyTargetDefaults(&opts, originSet, maxSet)
	return opts, nil
}

// targetLayouts is the load address and address space of each target.
var targetLayouts = map[string]struct{ origin, maxAddress int64 }{
	"ie32": {ie32.DefaultOrigin, 0xFFFFFFFF},
	"ie64": {ie64.DefaultOrigin, 0xFFFFFFFF},
}

// applyTargetDefaults fills in the memory layout a target expects when
// neither the config file nor a flag chose one.
func applyTargetDefaults(opts *assembler.Options, originSet, maxSet bool) {
	layout, ok := targetLayouts[strings.ToLower(opts.CPU)]
	if !ok {
		return
	}
	if !originSet {
		opts.Origin = layout.origin
	}
	if !maxSet {
		opts.MaxAddress = layout.maxAddress
	}
}

// parseDefine splits NAME[=VALUE]. VALUE is any constant expression.
func parseDefine(s string) (string, int64, error) {
	name, expr, hasValue := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if name == "" {
		return "", 0, fmt.Errorf("-D %q: missing name", s)
	}
	if !hasValue {
		return name, 1, nil
	}
	v, err := assembler.NewEvaluator().Eval(expr)
	if err != nil {
		return "", 0, fmt.Errorf("-D %s: %w", name, err)
	}
	return name, v, nil
}

func outputPath(input, explicit string) string {
	if explicit != "" {
		return explicit
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".bin"
}

type fileResult struct {
	path   string
	output string
	res    *assembler.Result
	err    error
}

// assembleFiles runs every file through its own context, at most jobs at a
// time. Only I/O failures on the outputs abort the group; assembly errors
// are reported per file.
func assembleFiles(f *asmFlags, opts assembler.Options, files []string) ([]fileResult, error) {
	results := make([]fileResult, len(files))
	var g errgroup.Group
	if f.jobs > 0 {
		g.SetLimit(f.jobs)
	}
	for i, path := range files {
		g.Go(func() error {
			out := outputPath(path, f.output)
			res, err := assembler.AssembleFile(path, opts)
			results[i] = fileResult{path: path, output: out, res: res, err: err}
			if err != nil {
				return nil
			}
			glog.V(1).Infof("%s: %d bytes in %d pass(es)", path, len(res.Code), res.Passes)
			if err := os.WriteFile(out, res.Code, 0644); err != nil {
				return fmt.Errorf("error writing %s: %w", out, err)
			}
			if f.listing {
				if err := writeListing(strings.TrimSuffix(out, filepath.Ext(out))+".lst", res); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return results, g.Wait()
}

func writeListing(path string, res *assembler.Result) error {
	fh, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	if err := assembler.WriteListing(fh, res.Lines); err != nil {
		fh.Close()
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	return fh.Close()
}

func runAsm(stdout, stderr io.Writer, f *asmFlags, opts assembler.Options, files []string) error {
	if len(files) > 1 && (f.output != "" || f.clip) {
		return fmt.Errorf("-o and --clip take a single input file")
	}

	results, err := assembleFiles(f, opts, files)
	if err != nil {
		return err
	}

	diag := NewDiagPrinter(stderr)
	failed := 0
	for _, r := range results {
		if r.res != nil {
			diag.PrintLog(r.path, r.res.Log)
		}
		if r.err != nil {
			failed++
			if r.res == nil || !r.res.Log.HasErrors() {
				fmt.Fprintf(stderr, "%s: %v\n", r.path, r.err)
			}
			continue
		}
		fmt.Fprintf(stdout, "%s -> %s: %d bytes, $%X-$%X, %d pass(es)\n",
			r.path, r.output, len(r.res.Code), r.res.Origin, r.res.End, r.res.Passes)
		if f.dumpSymbols {
			dumpSymbols(stdout, r.path, r.res.Context.Symbols)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed", failed, len(files))
	}

	if f.clip {
		r := results[0]
		if err := copyToClipboard(hexDump(r.res.Code, r.res.Origin)); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "hex dump of %s copied to clipboard\n", r.path)
	}
	return nil
}

type symbolDump struct {
	File      string
	Labels    map[string]string
	Variables map[string]string
}

func dumpSymbols(w io.Writer, file string, syms *assembler.SymbolManager) {
	d := symbolDump{
		File:      file,
		Labels:    make(map[string]string),
		Variables: make(map[string]string),
	}
	for name, v := range syms.Labels() {
		d.Labels[name] = assembler.FormatValue(v)
	}
	for name, v := range syms.Variables() {
		d.Variables[name] = assembler.FormatValue(v)
	}
	printer := pp.New()
	printer.SetOutput(w)
	printer.SetColoringEnabled(isTerminal(w))
	printer.Println(d)
}

// hexDump formats data 16 bytes per row, addressed from origin.
func hexDump(data []byte, origin int64) string {
	var b strings.Builder
	for off := 0; off < len(data); off += 16 {
		end := min(off+16, len(data))
		fmt.Fprintf(&b, "$%06X:", origin+int64(off))
		for _, c := range data[off:end] {
			fmt.Fprintf(&b, " %02X", c)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func copyToClipboard(text string) error {
	if err := clipboard.Init(); err != nil {
		return fmt.Errorf("clipboard unavailable: %w", err)
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}
