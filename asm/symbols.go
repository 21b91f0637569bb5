// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"errors"

	"github.com/beevik/asm14/cpu"
)

var errDuplicateSymbol = errors.New("duplicate symbol")

// SymbolKind describes what a symbol names.
type SymbolKind byte

// Symbol kinds
const (
	KindConstant     SymbolKind = iota // .define constant
	KindCode                           // label on an instruction
	KindData                           // label on .data or .string
	KindEntry                          // exported label
	KindExtern                         // label defined in another module
	KindEntryPending                   // declared by .entry, not yet defined
	KindEntryData                      // exported data label, not yet relocated
)

var kindName = []string{"constant", "code", "data", "entry", "extern", "entry-pending", "entry-data"}

func (k SymbolKind) String() string {
	if int(k) < len(kindName) {
		return kindName[k]
	}
	return "???"
}

// A Symbol is a named value: a constant, or the address of a label.
type Symbol struct {
	Name  string
	Kind  SymbolKind
	Value int
	Reloc cpu.Relocation
	decl  fstring // name as it appeared in the declaring line
}

// A SymbolTable holds symbols in the order they were added.
type SymbolTable struct {
	symbols []Symbol
	index   map[string]int
}

// NewSymbolTable creates an empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{index: make(map[string]int)}
}

// Lookup returns the named symbol, or nil if there isn't one. The returned
// symbol may be modified in place.
func (t *SymbolTable) Lookup(name string) *Symbol {
	if i, ok := t.index[name]; ok {
		return &t.symbols[i]
	}
	return nil
}

// Insert adds a symbol to the table.
func (t *SymbolTable) Insert(s Symbol) error {
	if _, ok := t.index[s.Name]; ok {
		return errDuplicateSymbol
	}
	t.index[s.Name] = len(t.symbols)
	t.symbols = append(t.symbols, s)
	return nil
}

// Len returns the number of symbols in the table.
func (t *SymbolTable) Len() int {
	return len(t.symbols)
}

// Symbols returns a copy of all symbols in insertion order.
func (t *SymbolTable) Symbols() []Symbol {
	s := make([]Symbol, len(t.symbols))
	copy(s, t.symbols)
	return s
}

// Entries returns all exported symbols in insertion order.
func (t *SymbolTable) Entries() []Symbol {
	var s []Symbol
	for _, sym := range t.symbols {
		if sym.Kind == KindEntry {
			s = append(s, sym)
		}
	}
	return s
}

// Relocate data symbols so they follow the final instruction image, which
// is 'ic' words long. Return any symbols that were declared as entries but
// never defined.
func (t *SymbolTable) relocate(ic int) (pending []Symbol) {
	for i := range t.symbols {
		s := &t.symbols[i]
		switch s.Kind {
		case KindData:
			s.Value += ic + cpu.Origin
		case KindEntryData:
			s.Value += ic + cpu.Origin
			s.Kind = KindEntry
		case KindEntryPending:
			pending = append(pending, *s)
		}
	}
	return pending
}
