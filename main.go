// main.go - Entry point for the ieasm assembler

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
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/intuitionamiga/ieasm/assembler"
)

func boilerPlate() {
	fmt.Fprintln(os.Stderr, "\033[38;2;255;20;147mieasm\033[0m - retargetable multi-pass assembler for the Intuition Engine")
	fmt.Fprintln(os.Stderr, "(c) 2024 - 2026 Zayn Otley")
	fmt.Fprintln(os.Stderr, "https://github.com/IntuitionAmiga/IntuitionEngine")
	fmt.Fprintln(os.Stderr, "License: GPLv3 or later")
}

var quiet bool

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ieasm",
		Short: "Retargetable multi-pass assembler",
		Long: `ieasm assembles source for any registered target CPU. The core handles
macros, conditional and loop blocks, scoped and anonymous labels, and repeats
passes until every address settles.

Targets: ` + fmt.Sprint(assembler.TargetNames()),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if !quiet {
				boilerPlate()
			}
		},
	}
	root.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress the banner")

	// glog registers -v, -vmodule, -logtostderr and friends on the standard
	// flag set.
	root.PersistentFlags().AddGoFlagSet(flag.CommandLine)

	root.AddCommand(newAsmCmd(), newEvalCmd(), newDisCmd())
	return root
}

func main() {
	_ = flag.Set("logtostderr", "true")
	// glog complains about logging before flag.Parse; cobra parses instead.
	_ = flag.CommandLine.Parse(nil)

	err := newRootCmd().Execute()
	glog.Flush()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// parseAddressFlag accepts decimal, 0x and $ forms.
func parseAddressFlag(value string) (int64, error) {
	if len(value) > 1 && value[0] == '$' {
		value = "0x" + value[1:]
	}
	parsed, err := strconv.ParseInt(value, 0, 64)
	if err != nil {
		return 0, err
	}
	if parsed < 0 || parsed > 0xFFFFFFFF {
		return 0, fmt.Errorf("value out of range: %s", value)
	}
	return parsed, nil
}
