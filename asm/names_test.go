// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"strings"
	"testing"

	"github.com/beevik/asm14/cpu"
)

func TestValidateLabel(t *testing.T) {
	reserved := NewNameSet(cpu.GetInstructionSet())
	reserved.Reserve("mymacro")

	symbols := NewSymbolTable()
	symbols.Insert(Symbol{Name: "LOOP", Kind: KindCode, Value: 100})
	symbols.Insert(Symbol{Name: "LATER", Kind: KindEntryPending})

	tests := []struct {
		name   string
		status LabelStatus
	}{
		{"MAIN", LabelFresh},
		{"a1b2", LabelFresh},
		{strings.Repeat("a", 31), LabelFresh},
		{"LOOP", LabelTaken},
		{"LATER", LabelEntryPending},
		{"mov", LabelReserved},
		{"r7", LabelReserved},
		{".data", LabelReserved},
		{"mymacro", LabelReserved},
		{strings.Repeat("a", 32), LabelTooLong},
		{"", LabelMalformed},
		{"1abc", LabelMalformed},
		{"ab_c", LabelMalformed},
		{"a.b", LabelMalformed},
		{"Mov", LabelFresh},
	}

	for _, tt := range tests {
		if s := ValidateLabel(tt.name, symbols, reserved); s != tt.status {
			t.Errorf("ValidateLabel(%q) = %v; want %v", tt.name, s, tt.status)
		}
	}
}

func TestSymbolTable(t *testing.T) {
	symbols := NewSymbolTable()
	for _, s := range []Symbol{
		{Name: "C", Kind: KindCode, Value: 100},
		{Name: "D", Kind: KindData, Value: 2},
		{Name: "E", Kind: KindEntryData, Value: 0},
		{Name: "P", Kind: KindEntryPending},
		{Name: "K", Kind: KindConstant, Value: 5},
	} {
		if err := symbols.Insert(s); err != nil {
			t.Fatal(err)
		}
	}
	if err := symbols.Insert(Symbol{Name: "C"}); err != errDuplicateSymbol {
		t.Errorf("expected duplicate symbol error, got %v", err)
	}

	pending := symbols.relocate(10)
	if len(pending) != 1 || pending[0].Name != "P" {
		t.Errorf("pending = %v", pending)
	}

	expected := map[string]int{"C": 100, "D": 112, "E": 110, "K": 5}
	for name, v := range expected {
		if s := symbols.Lookup(name); s.Value != v {
			t.Errorf("%s = %d, expected %d", name, s.Value, v)
		}
	}
	if s := symbols.Lookup("E"); s.Kind != KindEntry {
		t.Errorf("E kind = %v", s.Kind)
	}

	names := []string{}
	for _, s := range symbols.Symbols() {
		names = append(names, s.Name)
	}
	if strings.Join(names, ",") != "C,D,E,P,K" {
		t.Errorf("symbol order = %v", names)
	}
}

func TestInsertSymbol(t *testing.T) {
	a := &assembler{
		reporter: newReporter("test.as", "first pass", nil, 0),
		symbols:  NewSymbolTable(),
		image:    cpu.NewImage(),
	}
	at := newFstring(1, "A")

	if !a.insertSymbol(at, Symbol{Name: "A", Kind: KindCode}) {
		t.Fatal("insert failed")
	}
	if a.insertSymbol(at, Symbol{Name: "A", Kind: KindConstant}) {
		t.Error("duplicate insert succeeded")
	}
	if len(a.errors) != 1 || a.errors[0].msg != "label 'A' is already defined" {
		t.Errorf("errors = %q", a.errorStrings())
	}
	if sym := a.symbols.Lookup("A"); sym.Kind != KindCode {
		t.Errorf("symbol kind = %v", sym.Kind)
	}
}

func TestPatchWord(t *testing.T) {
	a := &assembler{
		reporter: newReporter("test.as", "second pass", nil, 0),
		symbols:  NewSymbolTable(),
		image:    cpu.NewImage(),
	}
	label := newFstring(1, "X")

	if !a.patchWord(patch{label, 0}, cpu.EncodeValue(7, cpu.Relocatable)) {
		t.Error("patch at offset 0 failed")
	}
	if w := a.image.LoadCode(0); w != cpu.EncodeValue(7, cpu.Relocatable) {
		t.Errorf("patched word = %d", w)
	}

	if a.patchWord(patch{label, cpu.CodeSize}, 0) {
		t.Error("patch past the image succeeded")
	}
	if len(a.errors) != 1 || !strings.Contains(a.errors[0].msg, "out of bounds") {
		t.Errorf("errors = %q", a.errorStrings())
	}

	a.overflow = true
	if a.patchWord(patch{label, cpu.CodeSize}, 0) || len(a.errors) != 1 {
		t.Errorf("overflowed patch: errors = %q", a.errorStrings())
	}
}
