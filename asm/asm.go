// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package asm implements a two-pass macro assembler for a 14-bit word
// machine.
package asm

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/asm14/cpu"
)

// Errors returned by the assembler.
var (
	ErrDiagnostics = errors.New("errors found in source")
	ErrFatal       = errors.New("fatal error")
)

// File extensions of the assembler's inputs and outputs.
const (
	SourceExt   = ".as"
	ExpandedExt = ".am"
	ObjectExt   = ".ob"
	EntryExt    = ".ent"
	ExternExt   = ".ext"
	MapExt      = ".map"
)

// Status describes the outcome of assembly.
type Status byte

// Assembly status values
const (
	StatusOK          Status = iota // assembled without errors
	StatusDiagnostics               // errors were found in the source
	StatusFatal                     // a resource error stopped assembly
)

var statusName = []string{"ok", "diagnostics", "fatal"}

func (s Status) String() string {
	return statusName[s]
}

// Option type used by the Assemble function.
type Option uint

// Options for the Assemble function.
const (
	Verbose   Option = 1 << iota // verbose output during assembly
	WriteMap                     // AssembleFile writes a source map
)

// The assembler is a state object used during the translation of
// expanded assembly code into machine code.
type assembler struct {
	reporter
	set         *cpu.InstructionSet // instruction, directive and register tables
	reserved    ReservedNames       // names unavailable to labels
	r           io.Reader           // the reader passed to Translate
	symbols     *SymbolTable        // labels and constants
	resolver    operandResolver     // operand addressing mode resolver
	image       *cpu.Image          // generated instruction and data words
	ic          int                 // the instruction counter
	patches     []patch             // words awaiting label addresses
	externs     []Export            // references to external labels
	sourceLines []SourceLine        // source code line mappings
	lastLine    fstring             // last line parsed
	overflow    bool                // code image overflow was reported
	obj         *Object             // generated object
}

// Assembly contains the result of assembling a source file.
type Assembly struct {
	Object           *Object  // Object code; nil unless Status is StatusOK
	Symbols          []Symbol // Symbol table in definition order
	InstructionCount int      // Number of instruction words
	DataCount        int      // Number of data words
	Status           Status   // Outcome of assembly
	Errors           []string // Errors encountered during assembly
}

// Translate reads macro-expanded assembly code from the provided stream
// and assembles it. Errors in the source are collected into the returned
// assembly and cause ErrDiagnostics to be returned.
func Translate(r io.Reader, filename string, reserved ReservedNames, out io.Writer, options Option) (*Assembly, *SourceMap, error) {
	set := cpu.GetInstructionSet()
	if reserved == nil {
		reserved = NewNameSet(set)
	}

	a := &assembler{
		reporter: newReporter(filename, "first pass", out, options),
		set:      set,
		reserved: reserved,
		r:        r,
		symbols:  NewSymbolTable(),
		image:    cpu.NewImage(),
	}
	a.resolver = operandResolver{set: set, symbols: a.symbols, reserved: reserved}

	// Translation consists of the following steps
	steps := []func(a *assembler) error{
		(*assembler).firstPass,       // Encode instructions and data, build symbols
		(*assembler).finalizeSymbols, // Relocate data labels after the code
		(*assembler).resolvePatches,  // Fill in label addresses
		(*assembler).generateObject,  // Produce the object code
	}

	// Errors in the source do not stop the steps, so the second pass
	// reports its own errors. Only a resource error does.
	var err error
	for _, step := range steps {
		err = step(a)
		if err != nil {
			break
		}
	}

	assembly := &Assembly{
		Object:           a.obj,
		Symbols:          a.symbols.Symbols(),
		InstructionCount: a.ic,
		DataCount:        len(a.image.Data()),
		Status:           StatusOK,
		Errors:           a.errorStrings(),
	}
	switch {
	case err != nil:
		assembly.Status = StatusFatal
		assembly.Object = nil
	case len(a.errors) > 0:
		assembly.Status = StatusDiagnostics
		err = ErrDiagnostics
	}

	sourceMap := &SourceMap{
		File:    filename,
		Lines:   a.sourceLines,
		Entries: a.exports(),
	}

	return assembly, sourceMap, err
}

func (a *assembler) exports() []Export {
	if a.obj == nil {
		return nil
	}
	return a.obj.Entries
}

// Assemble reads assembly code from the provided stream, expands its
// macros, and assembles the result.
func Assemble(r io.Reader, filename string, reserved ReservedNames, out io.Writer, options Option) (*Assembly, *SourceMap, error) {
	if reserved == nil {
		reserved = NewNameSet(cpu.GetInstructionSet())
	}

	x, err := Expand(r, filename, reserved, out, options)
	if err != nil {
		return &Assembly{Status: StatusFatal, Errors: x.Errors}, nil, err
	}
	if x.Aborted {
		return &Assembly{Status: StatusDiagnostics, Errors: x.Errors}, nil, ErrDiagnostics
	}

	src := strings.NewReader(strings.Join(x.Lines, "\n"))
	assembly, sourceMap, err := Translate(src, filename, reserved, out, options)
	return merge(x, assembly), sourceMap, mergeErr(x, err)
}

// Combine the results of expansion and translation. Errors found during
// expansion suppress the object code.
func merge(x *Expansion, assembly *Assembly) *Assembly {
	if x.Status == StatusOK {
		return assembly
	}
	assembly.Errors = append(append([]string(nil), x.Errors...), assembly.Errors...)
	assembly.Object = nil
	if assembly.Status == StatusOK {
		assembly.Status = StatusDiagnostics
	}
	return assembly
}

func mergeErr(x *Expansion, err error) error {
	if err == nil && x.Status != StatusOK {
		return ErrDiagnostics
	}
	return err
}

// AssembleFile assembles the source file 'base'.as. The expanded source is
// written to 'base'.am and then assembled. If no errors are found, the
// object listing is written to 'base'.ob, exported labels to 'base'.ent and
// external references to 'base'.ext. The entry and extern files are only
// written when they are not empty.
func AssembleFile(base string, reserved ReservedNames, options Option, out io.Writer) (*Assembly, error) {
	if out == nil {
		out = os.Stdout
	}
	if reserved == nil {
		reserved = NewNameSet(cpu.GetInstructionSet())
	}

	outputs := []string{base + ObjectExt, base + EntryExt, base + ExternExt, base + MapExt}
	removeFiles(outputs)

	srcPath := base + SourceExt
	inFile, err := os.Open(srcPath)
	if err != nil {
		return &Assembly{Status: StatusFatal}, fmt.Errorf("%w: %v", ErrFatal, err)
	}
	x, err := Expand(inFile, srcPath, reserved, out, options)
	inFile.Close()
	if err != nil {
		return &Assembly{Status: StatusFatal, Errors: x.Errors}, err
	}
	if x.Aborted {
		printErrors(out, x.Errors)
		return &Assembly{Status: StatusDiagnostics, Errors: x.Errors}, ErrDiagnostics
	}

	amPath := base + ExpandedExt
	if err := writeFile(amPath, x); err != nil {
		return &Assembly{Status: StatusFatal, Errors: x.Errors}, err
	}
	if x.Status == StatusOK {
		fmt.Fprintf(out, "Expanded '%s' to '%s'.\n", filepath.Base(srcPath), filepath.Base(amPath))
	}

	amFile, err := os.Open(amPath)
	if err != nil {
		return &Assembly{Status: StatusFatal, Errors: x.Errors}, fmt.Errorf("%w: %v", ErrFatal, err)
	}
	assembly, sourceMap, err := Translate(amFile, amPath, reserved, out, options)
	amFile.Close()
	assembly, err = merge(x, assembly), mergeErr(x, err)
	if err != nil {
		printErrors(out, assembly.Errors)
		return assembly, err
	}

	obj := assembly.Object
	written := []string{base + ObjectExt}
	err = writeFile(base+ObjectExt, obj)
	if err == nil && len(obj.Entries) > 0 {
		written = append(written, base+EntryExt)
		err = writeFile(base+EntryExt, writerFunc(obj.WriteEntries))
	}
	if err == nil && len(obj.Externs) > 0 {
		written = append(written, base+ExternExt)
		err = writeFile(base+ExternExt, writerFunc(obj.WriteExterns))
	}
	if err == nil && (options&WriteMap) != 0 {
		written = append(written, base+MapExt)
		err = writeFile(base+MapExt, sourceMap)
	}
	if err != nil {
		removeFiles(outputs)
		assembly.Status = StatusFatal
		return assembly, err
	}

	names := make([]string, len(written))
	for i, w := range written {
		names[i] = "'" + filepath.Base(w) + "'"
	}
	fmt.Fprintf(out, "Assembled '%s' to produce %s.\n", filepath.Base(amPath), strings.Join(names, ", "))
	return assembly, nil
}

// A writerFunc adapts a function to the io.WriterTo interface.
type writerFunc func(w io.Writer) (int64, error)

func (f writerFunc) WriteTo(w io.Writer) (int64, error) {
	return f(w)
}

// Create a file and fill it with the contents of 'src'.
func writeFile(path string, src io.WriterTo) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFatal, err)
	}

	_, err = src.WriteTo(file)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return fmt.Errorf("%w: %v", ErrFatal, err)
	}
	return nil
}

func removeFiles(paths []string) {
	for _, p := range paths {
		os.Remove(p)
	}
}

func printErrors(out io.Writer, errors []string) {
	for _, e := range errors {
		fmt.Fprintln(out, e)
	}
}
