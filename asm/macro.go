// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"bufio"
	"fmt"
	"io"

	"github.com/beevik/asm14/cpu"
)

// MaxLineLength is the maximum number of characters in a source line, not
// counting the line terminator.
const MaxLineLength = 80

// Keywords that open and close a macro definition.
const (
	macroStart = "mcr"
	macroEnd   = "endmcr"
)

// An Expansion is the source produced by the macro expander.
type Expansion struct {
	Lines   []string // expanded source lines, without terminators
	Macros  []string // names of defined macros, in definition order
	Status  Status   // StatusOK or StatusDiagnostics
	Aborted bool     // true if a macro definition error stopped expansion
	Errors  []string // errors encountered during expansion
}

// WriteTo writes the expanded source, one line per row.
func (x *Expansion) WriteTo(w io.Writer) (n int64, err error) {
	bw := bufio.NewWriter(w)
	for _, l := range x.Lines {
		var nn int
		nn, err = bw.WriteString(l + "\n")
		n += int64(nn)
		if err != nil {
			return n, err
		}
	}
	return n, bw.Flush()
}

// A macro is a named block of source lines.
type macro struct {
	name string
	body []string
}

// Macro expander states
type expandState byte

const (
	stateOutside   expandState = iota // copying lines to the output
	stateCapturing                    // collecting the body of a macro
	stateClosed                       // expansion aborted
)

// The expander is a state machine that copies source lines to its output,
// capturing macro definitions and replacing macro invocations with the
// bodies of the invoked macros.
type expander struct {
	reporter
	reserved ReservedNames
	macros   map[string]*macro
	order    []string
	current  *macro
	state    expandState
	lines    []string
}

// Line handlers for each state except stateClosed.
var expandTransitions = []func(e *expander, line fstring){
	(*expander).outside,
	(*expander).capturing,
}

// Expand reads assembly source from 'r' and expands its macros. Macro
// bodies are emitted verbatim; macros are never invoked from within other
// macros. Unless expansion is aborted, the names of all macros are added
// to the reserved name set. The returned error is non-nil only if the
// source could not be read.
func Expand(r io.Reader, filename string, reserved ReservedNames, out io.Writer, options Option) (*Expansion, error) {
	if reserved == nil {
		reserved = NewNameSet(cpu.GetInstructionSet())
	}

	e := &expander{
		reporter: newReporter(filename, "macro expansion", out, options),
		reserved: reserved,
		macros:   make(map[string]*macro),
	}

	e.logSection("Expanding macros")
	err := e.run(r)
	if err != nil {
		return &Expansion{Status: StatusFatal, Errors: e.errorStrings()}, fmt.Errorf("%w: %v", ErrFatal, err)
	}

	x := &Expansion{
		Lines:   e.lines,
		Macros:  e.order,
		Status:  StatusOK,
		Aborted: e.state == stateClosed,
		Errors:  e.errorStrings(),
	}
	if len(e.errors) > 0 {
		x.Status = StatusDiagnostics
	}
	if !x.Aborted {
		for _, name := range e.order {
			reserved.Reserve(name)
		}
	}
	return x, nil
}

func (e *expander) run(r io.Reader) error {
	row := 0
	err := readLines(r, func(n int, text string) bool {
		row = n
		if len(text) > MaxLineLength {
			e.addError(newFstring(row, text[:MaxLineLength]), "line is longer than %d characters", MaxLineLength)
			return true
		}

		line := newFstring(row, text).trim()
		if line.isEmpty() || line.startsWith(comment) {
			return true
		}

		expandTransitions[e.state](e, line)
		return e.state != stateClosed
	})
	if err != nil || e.state == stateClosed {
		return err
	}

	if e.state == stateCapturing {
		e.abort(newFstring(row, ""), "macro '%s' is missing '%s'", e.current.name, macroEnd)
	}
	return nil
}

func (e *expander) outside(line fstring) {
	word, rest := line.consumeWord()

	if word.str == macroStart {
		e.define(word, rest)
		return
	}

	if m, ok := e.macros[word.str]; ok {
		if rest = rest.trim(); !rest.isEmpty() {
			e.addError(rest, "unexpected text after invocation of macro '%s'", m.name)
		}
		e.logLine(line, "expand %s (%d lines)", m.name, len(m.body))
		e.lines = append(e.lines, m.body...)
		return
	}

	e.lines = append(e.lines, line.str)
}

// Begin a macro definition.
func (e *expander) define(keyword, rest fstring) {
	name, rest := rest.consumeWord()
	if name.isEmpty() {
		e.abort(keyword, "missing macro name")
		return
	}
	if rest = rest.trim(); !rest.isEmpty() {
		e.abort(rest, "unexpected text after macro name '%s'", name.str)
		return
	}
	if _, ok := e.macros[name.str]; ok {
		e.abort(name, "macro '%s' is already defined", name.str)
		return
	}
	if status := ValidateLabel(name.str, nil, e.reserved); status != LabelFresh {
		e.abort(name, "invalid macro name: %s", status.message(name.str))
		return
	}

	e.logLine(name, "define %s", name.str)
	e.current = &macro{name: name.str}
	e.state = stateCapturing
}

func (e *expander) capturing(line fstring) {
	word, rest := line.consumeWord()
	if word.str != macroEnd {
		e.current.body = append(e.current.body, line.str)
		return
	}

	if rest = rest.trim(); !rest.isEmpty() {
		e.abort(rest, "unexpected text after '%s'", macroEnd)
		return
	}

	e.macros[e.current.name] = e.current
	e.order = append(e.order, e.current.name)
	e.current = nil
	e.state = stateOutside
}

func (e *expander) abort(line fstring, format string, args ...any) {
	e.addError(line, format, args...)
	e.state = stateClosed
}
