// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

import "testing"

func TestInstructionSet(t *testing.T) {
	set := GetInstructionSet()

	for i, op := range set.Opcodes() {
		if int(op.Index) != i {
			t.Errorf("%s: index %d, expected %d", op.Name, op.Index, i)
		}
		if set.Opcode(op.Name) == nil {
			t.Errorf("%s: lookup failed", op.Name)
		}
		if set.OpcodeByIndex(op.Index).Name != op.Name {
			t.Errorf("%s: index lookup failed", op.Name)
		}
		if op.Operands < 2 && op.SrcModes != NoModes {
			t.Errorf("%s: source modes set on instruction without source", op.Name)
		}
		if op.Operands == 0 && op.DstModes != NoModes {
			t.Errorf("%s: destination modes set on instruction without operands", op.Name)
		}
		if !op.LabelAllowed {
			t.Errorf("%s: label not allowed", op.Name)
		}
	}

	ops := set.Opcodes()
	ops[0].Name = "xxx"
	dirs := set.Directives()
	dirs[0].LabelAllowed = false
	regs := set.Registers()
	regs[0] = "xx"
	if set.Opcodes()[0].Name != "mov" || set.Opcode("mov") == nil {
		t.Error("opcode table modified through Opcodes")
	}
	if !set.Directives()[0].LabelAllowed || !set.Directive(".data").LabelAllowed {
		t.Error("directive table modified through Directives")
	}
	if set.Registers()[0] != "r0" {
		t.Error("register table modified through Registers")
	}

	if set.Opcode("MOV") != nil {
		t.Error("mnemonics should be case-sensitive")
	}
	if set.OpcodeByIndex(16) != nil {
		t.Error("opcode 16 should not exist")
	}

	lea := set.Opcode("lea")
	if lea.SrcModes.Has(IMM) || lea.SrcModes.Has(REG) || !lea.SrcModes.Has(IDX) {
		t.Errorf("lea source modes incorrect: %04b", lea.SrcModes)
	}
	if !set.Opcode("cmp").DstModes.Has(IMM) || set.Opcode("mov").DstModes.Has(IMM) {
		t.Error("destination immediate modes incorrect")
	}

	for _, d := range []struct {
		name  string
		label bool
	}{
		{".data", true}, {".string", true}, {".entry", false}, {".extern", false}, {".define", false},
	} {
		dir := set.Directive(d.name)
		if dir == nil {
			t.Errorf("%s: lookup failed", d.name)
			continue
		}
		if dir.LabelAllowed != d.label {
			t.Errorf("%s: LabelAllowed = %v; want %v", d.name, dir.LabelAllowed, d.label)
		}
	}

	for i := 0; i < NumRegisters; i++ {
		r, ok := set.Register(set.Registers()[i])
		if !ok || r != i {
			t.Errorf("register %d lookup failed", i)
		}
	}
	if _, ok := set.Register("r8"); ok {
		t.Error("r8 should not be a register")
	}
}

func TestWordEncoding(t *testing.T) {
	set := GetInstructionSet()

	w := EncodeHeader(set.Opcode("lea"), DIR, REG)
	if w != 6<<6|1<<4|3<<2 {
		t.Errorf("lea header = %d", w)
	}
	index, src, dst := DecodeHeader(w)
	if index != 6 || src != DIR || dst != REG {
		t.Errorf("DecodeHeader(%d) = %d, %v, %v", w, index, src, dst)
	}

	modes := []Mode{IMM, DIR, IDX, REG}
	for _, op := range set.Opcodes() {
		for _, src := range modes {
			for _, dst := range modes {
				w := EncodeHeader(&op, src, dst)
				if _, r := DecodeValue(w); r != Absolute {
					t.Errorf("%s header has relocation %v", op.Name, r)
				}
				index, s, d := DecodeHeader(w)
				if index != op.Index || s != src || d != dst {
					t.Errorf("%s %v,%v: DecodeHeader(%d) = %d, %v, %v", op.Name, src, dst, w, index, s, d)
				}
			}
		}
	}

	w = EncodeRegisters(3, 5)
	if w != 3<<5|5<<2 {
		t.Errorf("register word = %d", w)
	}
	if s, d := DecodeRegisters(w); s != 3 || d != 5 {
		t.Errorf("DecodeRegisters(%d) = %d, %d", w, s, d)
	}

	tests := []struct {
		v int
		r Relocation
	}{
		{0, Absolute}, {1, Absolute}, {MaxImmediate, Absolute},
		{MinImmediate, Absolute}, {-1, Absolute}, {107, Relocatable}, {0, External},
	}
	for _, tt := range tests {
		w := EncodeValue(tt.v, tt.r)
		v, r := DecodeValue(w)
		if v != tt.v || r != tt.r {
			t.Errorf("DecodeValue(EncodeValue(%d, %v)) = %d, %v", tt.v, tt.r, v, r)
		}
	}

	if SignExtend(Word(-1)) != -1 || SignExtend(Word(MaxData)) != MaxData || SignExtend(Word(MinData)) != MinData {
		t.Error("SignExtend failed")
	}
}

func TestImage(t *testing.T) {
	m := NewImage()
	if m.LoadCode(0) != Unfilled {
		t.Error("new image should be unfilled")
	}
	if err := m.StoreCode(2, 5); err != nil {
		t.Error(err)
	}
	if len(m.Code()) != 3 || m.Code()[2] != 5 || m.Code()[0] != Unfilled {
		t.Errorf("unexpected code %v", m.Code())
	}
	if err := m.StoreCode(CodeSize, 0); err != ErrMemoryOutOfBounds {
		t.Errorf("expected out of bounds error, got %v", err)
	}
	if dc := m.AppendData(7); dc != 0 {
		t.Errorf("AppendData returned %d", dc)
	}
	if m.Size() != 4 {
		t.Errorf("Size = %d", m.Size())
	}
	m.Reset()
	if m.Size() != 0 || m.LoadCode(2) != Unfilled {
		t.Error("Reset failed")
	}
}
