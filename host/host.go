// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package host drives the assembler over a batch of source files.
package host

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/beevik/asm14/asm"
	"github.com/beevik/asm14/cpu"
	"github.com/beevik/asm14/disasm"
	"github.com/beevik/term"
	"github.com/k0kubun/pp/v3"
)

const defaultWidth = 80

// A Host assembles files one at a time, reporting progress to an output
// stream.
type Host struct {
	output      *bufio.Writer
	interactive bool // output is a terminal
	termWidth   int
	settings    *settings
}

// New creates a host that writes its output to 'w'.
func New(w io.Writer) *Host {
	h := &Host{
		output:    bufio.NewWriter(w),
		termWidth: defaultWidth,
		settings:  newSettings(),
	}

	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		h.interactive = true
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			h.termWidth = width
		}
	}
	return h
}

// Set changes the value of a setting. The key may be abbreviated.
func (h *Host) Set(key string, value any) error {
	return h.settings.Set(key, value)
}

// SetString changes a setting using an assignment of the form key=value.
func (h *Host) SetString(assignment string) error {
	return h.settings.SetString(assignment)
}

// DisplaySettings writes all settings and their values.
func (h *Host) DisplaySettings() {
	h.println("Settings:")
	h.settings.Display(h.output)
	h.flush()
}

// AssembleFiles assembles each named source file. Names may be given with
// or without the source file extension. Every file is processed, even when
// an earlier one fails; an error is returned if any file failed.
func (h *Host) AssembleFiles(names []string) error {
	failed := 0
	for _, name := range names {
		if !h.assembleFile(strings.TrimSuffix(name, asm.SourceExt)) {
			failed++
		}
	}

	h.separator()
	h.progress("%d of %d %s assembled successfully.\n", len(names)-failed, len(names), plural(len(names), "file", "files"))
	h.flush()

	if failed > 0 {
		return fmt.Errorf("%d %s failed to assemble", failed, plural(failed, "file", "files"))
	}
	return nil
}

func (h *Host) assembleFile(base string) bool {
	h.separator()
	h.progress("Now processing '%s':\n", base+asm.SourceExt)

	// Each file is assembled with a fresh set of reserved names, so
	// macros defined by one file are not visible to the next.
	reserved := asm.NewNameSet(cpu.GetInstructionSet())
	assembly, err := asm.AssembleFile(base, reserved, h.options(), h.output)

	switch {
	case err == nil:
		h.progress("The file was assembled with no errors.\n")
	case errors.Is(err, asm.ErrFatal) || assembly == nil:
		h.printf("Failed to assemble '%s': %v\n", base+asm.SourceExt, err)
	default:
		h.printf("Found %d %s in '%s'; no output files were written.\n",
			len(assembly.Errors), plural(len(assembly.Errors), "error", "errors"), base+asm.SourceExt)
	}

	if h.settings.DumpSymbols && assembly != nil {
		h.dumpSymbols(assembly.Symbols)
	}
	if h.settings.Disassemble && assembly != nil && assembly.Object != nil {
		h.disassemble(assembly.Object)
	}

	h.flush()
	return err == nil
}

// DisassembleFiles reads the object listing of each named file and prints
// its disassembly.
func (h *Host) DisassembleFiles(names []string) error {
	var firstErr error
	for _, name := range names {
		base := strings.TrimSuffix(name, asm.ObjectExt)
		if err := h.disassembleFile(base + asm.ObjectExt); err != nil {
			h.printf("Failed to disassemble '%s': %v\n", base+asm.ObjectExt, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	h.flush()
	return firstErr
}

func (h *Host) disassembleFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var obj asm.Object
	if _, err := obj.ReadFrom(file); err != nil {
		return err
	}

	h.separator()
	h.progress("Disassembly of '%s':\n", path)
	h.disassemble(&obj)
	return nil
}

func (h *Host) disassemble(obj *asm.Object) {
	for addr := cpu.Origin; addr < cpu.Origin+obj.Size(); {
		line, next := disasm.Disassemble(obj, addr)
		words := make([]string, 0, next-addr)
		for a := addr; a < next; a++ {
			w, _ := obj.Load(a)
			words = append(words, asm.EncodeWord(w))
		}
		h.printf("%04d  %-24s %s\n", addr, strings.Join(words, " "), line)
		addr = next
	}
}

func (h *Host) dumpSymbols(symbols []asm.Symbol) {
	p := pp.New()
	p.SetOutput(h.output)
	p.SetColoringEnabled(h.interactive)
	h.println("Symbols:")
	p.Println(symbols)
}

func (h *Host) options() asm.Option {
	var options asm.Option
	if h.settings.Verbose {
		options |= asm.Verbose
	}
	if h.settings.SourceMap {
		options |= asm.WriteMap
	}
	return options
}

func (h *Host) separator() {
	if h.settings.Quiet {
		return
	}
	width := h.settings.Width
	if width <= 0 {
		width = h.termWidth
	}
	h.println(strings.Repeat("-", width))
}

// Print a progress message unless quiet mode is enabled.
func (h *Host) progress(format string, args ...any) {
	if !h.settings.Quiet {
		h.printf(format, args...)
	}
}

func (h *Host) printf(format string, args ...any) {
	fmt.Fprintf(h.output, format, args...)
}

func (h *Host) println(args ...any) {
	fmt.Fprintln(h.output, args...)
}

func (h *Host) flush() {
	h.output.Flush()
}
