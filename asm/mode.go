// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"fmt"

	"github.com/beevik/asm14/cpu"
)

// An operand is a parsed instruction operand.
type operand struct {
	mode  cpu.Mode
	value int     // immediate value (IMM) or index value (IDX)
	label fstring // address label (DIR, IDX)
	reg   int     // register number (REG)
}

// An operandError describes an operand that could not be resolved.
type operandError struct {
	at  fstring
	msg string
}

func (e *operandError) Error() string {
	return e.msg
}

func operandErrorf(at fstring, format string, args ...any) *operandError {
	return &operandError{at, fmt.Sprintf(format, args...)}
}

// An operandResolver classifies operand text by addressing mode. It never
// modifies the symbol table.
type operandResolver struct {
	set      *cpu.InstructionSet
	symbols  *SymbolTable
	reserved ReservedNames
}

// Resolve the addressing mode of the operand and parse its contents.
//
//	#value, #constant   immediate
//	r0..r7              register direct
//	label[index]        indexed direct; index is a value or constant
//	label               direct
func (r *operandResolver) resolve(tok fstring) (operand, error) {
	switch {
	case tok.isEmpty():
		return operand{}, operandErrorf(tok, "missing operand")

	case tok.startsWithChar('#'):
		v, err := r.value(tok.consume(1), "immediate value")
		if err != nil {
			return operand{}, err
		}
		return operand{mode: cpu.IMM, value: v}, nil
	}

	if reg, ok := r.set.Register(tok.str); ok {
		return operand{mode: cpu.REG, reg: reg}, nil
	}

	if i := tok.scanUntilChar('['); i < len(tok.str) {
		label, rest := tok.trunc(i), tok.consume(i+1)
		index, rest := rest.consumeUntilChar(']')
		if rest.isEmpty() {
			return operand{}, operandErrorf(tok, "missing ']' in operand '%s'", tok.str)
		}
		if rest = rest.consume(1); !rest.isEmpty() {
			return operand{}, operandErrorf(rest, "unexpected text '%s' after ']'", rest.str)
		}
		if err := r.address(label); err != nil {
			return operand{}, err
		}
		v, err := r.value(index, "index")
		if err != nil {
			return operand{}, err
		}
		return operand{mode: cpu.IDX, label: label, value: v}, nil
	}

	if err := r.address(tok); err != nil {
		return operand{}, err
	}
	return operand{mode: cpu.DIR, label: tok}, nil
}

// Check that a label may be used as an address. Labels that do not yet
// exist are allowed; they are resolved after the first pass.
func (r *operandResolver) address(label fstring) error {
	status := ValidateLabel(label.str, r.symbols, r.reserved)
	switch status {
	case LabelFresh, LabelEntryPending:
		return nil
	case LabelTaken:
		if sym := r.symbols.Lookup(label.str); sym.Kind == KindConstant {
			return operandErrorf(label, "constant '%s' cannot be used as an address; use '#%s'", label.str, label.str)
		}
		return nil
	case LabelReserved:
		return operandErrorf(label, "'%s' cannot be used as an operand", label.str)
	default:
		return operandErrorf(label, "invalid operand: %s", status.message(label.str))
	}
}

// Parse a decimal integer or the name of a constant, and check that it fits
// into an operand word.
func (r *operandResolver) value(tok fstring, what string) (int, error) {
	if tok.isEmpty() {
		return 0, operandErrorf(tok, "missing %s", what)
	}
	v, ok := parseInt(tok.str)
	if !ok {
		sym := r.symbols.Lookup(tok.str)
		if sym == nil || sym.Kind != KindConstant {
			return 0, operandErrorf(tok, "%s '%s' is neither a number nor a constant", what, tok.str)
		}
		v = sym.Value
	}
	if v < cpu.MinImmediate || v > cpu.MaxImmediate {
		return 0, operandErrorf(tok, "%s %d out of range [%d, %d]", what, v, cpu.MinImmediate, cpu.MaxImmediate)
	}
	return v, nil
}
