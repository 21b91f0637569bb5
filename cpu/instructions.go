// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

import "slices"

// Mode describes an operand addressing mode. Its value is the 2-bit field
// stored in an instruction's header word.
type Mode byte

// All possible operand addressing modes
const (
	IMM Mode = iota // Immediate (#value)
	DIR             // Direct (label)
	IDX             // Indexed direct (label[index])
	REG             // Register direct (r0..r7)
)

var modeName = []string{"IMM", "DIR", "IDX", "REG"}

func (m Mode) String() string {
	if int(m) < len(modeName) {
		return modeName[m]
	}
	return "???"
}

// A ModeSet is a bitmask of addressing modes, one bit per Mode.
type ModeSet byte

// Frequently used mode sets
const (
	NoModes    ModeSet = 0
	AllModes   ModeSet = 1<<IMM | 1<<DIR | 1<<IDX | 1<<REG
	Writable   ModeSet = 1<<DIR | 1<<IDX | 1<<REG
	Memory     ModeSet = 1<<DIR | 1<<IDX
	JumpTarget ModeSet = 1<<DIR | 1<<REG
)

// Has returns true if the mode is a member of the set.
func (s ModeSet) Has(m Mode) bool {
	return s&(1<<m) != 0
}

// An Opcode describes a machine instruction: its mnemonic, its 4-bit opcode
// value, the number of operands it takes, and the addressing modes allowed
// for each of its operands.
type Opcode struct {
	Name         string  // lower-case mnemonic
	Index        byte    // opcode value stored in the header word
	Operands     int     // number of operands (0, 1 or 2)
	SrcModes     ModeSet // modes allowed for the source operand
	DstModes     ModeSet // modes allowed for the destination operand
	LabelAllowed bool    // line containing the instruction may be labeled
}

var opcodes = []Opcode{
	{"mov", 0, 2, AllModes, Writable, true},
	{"cmp", 1, 2, AllModes, AllModes, true},
	{"add", 2, 2, AllModes, Writable, true},
	{"sub", 3, 2, AllModes, Writable, true},
	{"not", 4, 1, NoModes, Writable, true},
	{"clr", 5, 1, NoModes, Writable, true},
	{"lea", 6, 2, Memory, Writable, true},
	{"inc", 7, 1, NoModes, Writable, true},
	{"dec", 8, 1, NoModes, Writable, true},
	{"jmp", 9, 1, NoModes, JumpTarget, true},
	{"bne", 10, 1, NoModes, JumpTarget, true},
	{"red", 11, 1, NoModes, Writable, true},
	{"prn", 12, 1, NoModes, AllModes, true},
	{"jsr", 13, 1, NoModes, JumpTarget, true},
	{"rts", 14, 0, NoModes, NoModes, true},
	{"hlt", 15, 0, NoModes, NoModes, true},
}

// DirectiveKind identifies an assembler directive.
type DirectiveKind byte

// All assembler directives
const (
	Data DirectiveKind = iota
	String
	Entry
	Extern
	Define
)

// A Directive describes an assembler directive.
type Directive struct {
	Name         string
	Kind         DirectiveKind
	LabelAllowed bool
}

var directives = []Directive{
	{".data", Data, true},
	{".string", String, true},
	{".entry", Entry, false},
	{".extern", Extern, false},
	{".define", Define, false},
}

// NumRegisters is the number of general purpose registers.
const NumRegisters = 8

var registers = []string{"r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7"}

// An InstructionSet holds the read-only instruction, directive and register
// tables of the machine.
type InstructionSet struct {
	opcodes    map[string]*Opcode
	directives map[string]*Directive
	registers  map[string]int
}

// Opcode returns the instruction with the requested mnemonic, or nil if
// there isn't one. Mnemonics are case-sensitive.
func (s *InstructionSet) Opcode(name string) *Opcode {
	return s.opcodes[name]
}

// OpcodeByIndex returns the instruction whose opcode value is 'index', or
// nil if the value is out of range.
func (s *InstructionSet) OpcodeByIndex(index byte) *Opcode {
	if int(index) >= len(opcodes) {
		return nil
	}
	return &opcodes[index]
}

// Directive returns the directive with the requested name (including its
// leading '.'), or nil if there isn't one.
func (s *InstructionSet) Directive(name string) *Directive {
	return s.directives[name]
}

// Register returns the number of the named register.
func (s *InstructionSet) Register(name string) (int, bool) {
	r, ok := s.registers[name]
	return r, ok
}

// Opcodes returns a copy of all instructions ordered by opcode value.
func (s *InstructionSet) Opcodes() []Opcode {
	return slices.Clone(opcodes)
}

// Directives returns a copy of all directives.
func (s *InstructionSet) Directives() []Directive {
	return slices.Clone(directives)
}

// Registers returns the names of all registers.
func (s *InstructionSet) Registers() []string {
	return slices.Clone(registers)
}

func newInstructionSet() *InstructionSet {
	set := &InstructionSet{
		opcodes:    make(map[string]*Opcode, len(opcodes)),
		directives: make(map[string]*Directive, len(directives)),
		registers:  make(map[string]int, len(registers)),
	}
	for i := range opcodes {
		if int(opcodes[i].Index) != i {
			panic("opcode table out of order")
		}
		set.opcodes[opcodes[i].Name] = &opcodes[i]
	}
	for i := range directives {
		set.directives[directives[i].Name] = &directives[i]
	}
	for i, r := range registers {
		set.registers[r] = i
	}
	return set
}

var instructionSet *InstructionSet

// GetInstructionSet returns the machine's instruction set.
func GetInstructionSet() *InstructionSet {
	if instructionSet == nil {
		// Lazy-create the instruction set.
		instructionSet = newInstructionSet()
	}
	return instructionSet
}
