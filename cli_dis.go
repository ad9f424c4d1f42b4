package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/intuitionamiga/ieasm/assembler/ie64"
)

func newDisCmd() *cobra.Command {
	var base string
	cmd := &cobra.Command{
		Use:   "dis [--base addr] file.bin",
		Short: "Disassemble an IE64 binary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr := int64(ie64.DefaultOrigin)
			if cmd.Flags().Changed("base") {
				v, err := parseAddressFlag(base)
				if err != nil {
					return fmt.Errorf("--base: %w", err)
				}
				addr = v
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return runDis(cmd.OutOrStdout(), data, uint32(addr))
		},
	}
	cmd.Flags().StringVar(&base, "base", "", "Load address of the first byte (default $1000)")
	return cmd
}

func runDis(w io.Writer, data []byte, base uint32) error {
	for _, line := range ie64.Disassemble(data, base) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
