// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/beevik/asm14/host"
	"github.com/spf13/cobra"
)

var (
	verbose   bool
	sourceMap bool
	dump      bool
	settings  []string
)

var rootCmd = &cobra.Command{
	Use:   "asm14 [flags] file...",
	Short: "A two-pass macro assembler for a 14-bit word machine",
	Long: `Asm14 assembles each named source file. A file name may be given with
or without its .as extension.

For each file the assembler writes the macro-expanded source to a .am
file. If no errors are found, it writes the object listing to a .ob file,
the addresses of entry labels to a .ent file, and the references to
external labels to a .ext file. The .ent and .ext files are only written
when they are not empty.`,

	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := newHost()
		if err != nil {
			return err
		}
		return h.AssembleFiles(args)
	},
}

var disasmCmd = &cobra.Command{
	Use:   "disasm file...",
	Short: "Disassemble object listings",
	Long: `Disasm reads the .ob object listing of each named file and prints the
instructions and data it contains.`,

	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := newHost()
		if err != nil {
			return err
		}
		return h.DisassembleFiles(args)
	},
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Display all settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := newHost()
		if err != nil {
			return err
		}
		h.DisplaySettings()
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "trace each stage of assembly")
	flags.BoolVarP(&sourceMap, "map", "m", false, "write a source map for each object file")
	flags.BoolVarP(&dump, "dump", "d", false, "print the symbol table after assembly")
	flags.StringArrayVar(&settings, "set", nil, "change a setting (key=value)")

	rootCmd.AddCommand(disasmCmd)
	rootCmd.AddCommand(settingsCmd)
}

// Create a host configured by the command-line flags.
func newHost() (*host.Host, error) {
	h := host.New(os.Stdout)
	for _, s := range settings {
		if err := h.SetString(s); err != nil {
			return nil, err
		}
	}
	if verbose {
		h.Set("verbose", true)
	}
	if sourceMap {
		h.Set("sourcemap", true)
	}
	if dump {
		h.Set("dumpsymbols", true)
	}
	return h, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
