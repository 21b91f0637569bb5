// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// An asmerror represents an error encountered during assembly.
type asmerror struct {
	line  fstring // line causing the error
	stage string  // stage of assembly that found the error
	msg   string  // error message
}

// A reporter collects errors and writes verbose output for one stage of
// assembly.
type reporter struct {
	filename string    // name of the file being processed
	stage    string    // name of the stage reporting errors
	out      io.Writer // output used for verbose output
	verbose  bool      // verbose output
	errors   []asmerror
}

func newReporter(filename, stage string, out io.Writer, options Option) reporter {
	if out == nil {
		out = io.Discard
	}
	return reporter{
		filename: filename,
		stage:    stage,
		out:      out,
		verbose:  (options & Verbose) != 0,
	}
}

// Append an error message to the error list.
func (r *reporter) addError(l fstring, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	e := asmerror{l, r.stage, msg}
	r.errors = append(r.errors, e)
	if r.verbose {
		fmt.Fprintln(r.out, r.format(e))
		fmt.Fprintln(r.out, l.full)
		for i := 0; i < l.column; i++ {
			fmt.Fprintf(r.out, "-")
		}
		fmt.Fprintln(r.out, "^")
	}
}

func (r *reporter) format(e asmerror) string {
	return fmt.Sprintf("Error in '%s' line %d, col %d (%s): %s", r.filename, e.line.row, e.line.column+1, e.stage, e.msg)
}

func (r *reporter) errorStrings() []string {
	s := make([]string, 0, len(r.errors))
	for _, e := range r.errors {
		s = append(s, r.format(e))
	}
	return s
}

// In verbose mode, log a string to the output.
func (r *reporter) log(format string, args ...any) {
	if r.verbose {
		fmt.Fprintf(r.out, format, args...)
		fmt.Fprintf(r.out, "\n")
	}
}

// In verbose mode, log a string and its associated line
// of assembly code.
func (r *reporter) logLine(line fstring, format string, args ...any) {
	if r.verbose {
		detail := fmt.Sprintf(format, args...)
		fmt.Fprintf(r.out, "%-3d %-3d | %-24s | %s\n", line.row, line.column+1, detail, line.full)
	}
}

// In verbose mode, log a section header to the output.
func (r *reporter) logSection(name string) {
	if r.verbose {
		fmt.Fprintln(r.out, strings.Repeat("-", len(name)+6))
		fmt.Fprintf(r.out, "-- %s --\n", name)
		fmt.Fprintln(r.out, strings.Repeat("-", len(name)+6))
	}
}

// Parse a signed decimal integer. At least one digit is required after
// the optional sign.
func parseInt(s string) (int, bool) {
	digits := s
	if len(digits) > 0 && sign(digits[0]) {
		digits = digits[1:]
	}
	if len(digits) == 0 {
		return 0, false
	}
	for i := 0; i < len(digits); i++ {
		if !decimal(digits[i]) {
			return 0, false
		}
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		// Out of range for an int; treat it as far out of range.
		if s[0] == '-' {
			return -1 << 31, true
		}
		return 1<<31 - 1, true
	}
	return v, true
}

// Call fn with each line read from r, stripped of its line terminator.
// Lines may be of any length. Reading stops early when fn returns false.
func readLines(r io.Reader, fn func(row int, text string) bool) error {
	reader := bufio.NewReader(r)
	for row := 1; ; row++ {
		text, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return err
		}
		if len(text) == 0 && err == io.EOF {
			return nil
		}
		text = strings.TrimSuffix(strings.TrimSuffix(text, "\n"), "\r")
		if !fn(row, text) || err == io.EOF {
			return nil
		}
	}
}
