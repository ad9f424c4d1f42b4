package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/intuitionamiga/ieasm/assembler"
)

func newEvalCmd() *cobra.Command {
	var defines []string
	cmd := &cobra.Command{
		Use:   "eval [-D NAME=VALUE] expr...",
		Short: "Evaluate constant expressions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(cmd.OutOrStdout(), defines, args)
		},
	}
	cmd.Flags().StringArrayVarP(&defines, "define", "D", nil, "Define NAME or NAME=VALUE (repeatable)")
	return cmd
}

func runEval(w io.Writer, defines []string, exprs []string) error {
	values := make(map[string]int64, len(defines))
	for _, d := range defines {
		name, v, err := parseDefine(d)
		if err != nil {
			return err
		}
		values[name] = v
	}

	e := assembler.NewEvaluator()
	lookup := func(name string) (string, bool) {
		v, ok := values[name]
		if !ok {
			return "", false
		}
		return strconv.FormatInt(v, 10), true
	}
	if err := e.DefineSymbolLookup(`[A-Za-z_][A-Za-z0-9_]*`, lookup); err != nil {
		return err
	}

	for _, expr := range exprs {
		v, err := e.Eval(expr)
		if err != nil {
			return fmt.Errorf("%s: %w", expr, err)
		}
		fmt.Fprintf(w, "%s = %d ($%X)\n", expr, v, uint64(v))
	}
	return nil
}
