// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"fmt"

	"github.com/beevik/asm14/cpu"
)

// MaxLabelLength is the maximum number of characters in a label, constant
// or macro name.
const MaxLabelLength = 31

// ReservedNames is the set of names that may not be used as labels,
// constants or macros. The assembler adds the names of macros it expands
// to the set.
type ReservedNames interface {
	IsReserved(name string) bool
	Reserve(name string)
}

// A NameSet is a ReservedNames implementation backed by a map.
type NameSet struct {
	names map[string]struct{}
}

// NewNameSet creates a reserved name set holding every register, mnemonic
// and directive name in the instruction set.
func NewNameSet(set *cpu.InstructionSet) *NameSet {
	s := &NameSet{names: make(map[string]struct{})}
	for _, r := range set.Registers() {
		s.Reserve(r)
	}
	for _, op := range set.Opcodes() {
		s.Reserve(op.Name)
	}
	for _, d := range set.Directives() {
		s.Reserve(d.Name)
	}
	return s
}

// IsReserved returns true if the name is in the set.
func (s *NameSet) IsReserved(name string) bool {
	_, ok := s.names[name]
	return ok
}

// Reserve adds a name to the set.
func (s *NameSet) Reserve(name string) {
	s.names[name] = struct{}{}
}

// LabelStatus is the result of validating a candidate label name.
type LabelStatus byte

// Label validation results
const (
	LabelFresh LabelStatus = iota
	LabelTaken
	LabelEntryPending
	LabelReserved
	LabelTooLong
	LabelMalformed
)

var labelStatusMsg = []string{
	"",
	"label '%s' is already defined",
	"label '%s' is already declared as an entry",
	"'%s' is a reserved name",
	"label '%s' is longer than 31 characters",
	"label '%s' is not a valid name",
}

func (s LabelStatus) message(name string) string {
	if s == LabelFresh {
		return ""
	}
	return fmt.Sprintf(labelStatusMsg[s], name)
}

// ValidateLabel reports whether 'name' may be used for a new label or
// constant. Checks run in priority order: an existing symbol, the length
// limit, the reserved set, and finally the name's syntax (a letter
// followed by letters and digits).
func ValidateLabel(name string, symbols *SymbolTable, reserved ReservedNames) LabelStatus {
	if symbols != nil {
		if sym := symbols.Lookup(name); sym != nil {
			if sym.Kind == KindEntryPending {
				return LabelEntryPending
			}
			return LabelTaken
		}
	}
	if len(name) > MaxLabelLength {
		return LabelTooLong
	}
	if reserved != nil && reserved.IsReserved(name) {
		return LabelReserved
	}
	if !wellFormed(name) {
		return LabelMalformed
	}
	return LabelFresh
}

// Return true if the name is a letter followed by letters and digits.
func wellFormed(name string) bool {
	if len(name) == 0 || !alpha(name[0]) {
		return false
	}
	for i := 1; i < len(name); i++ {
		if !alphanumeric(name[i]) {
			return false
		}
	}
	return true
}
