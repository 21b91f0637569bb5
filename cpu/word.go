// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

// A Word is a single machine word. Only the low WordBits bits are
// significant; the rest are ignored when the word is emitted.
type Word int16

// Word layout
const (
	WordBits = 14
	WordMask = 1<<WordBits - 1

	opcodeShift  = 6
	srcModeShift = 4
	dstModeShift = 2
	valueShift   = 2
	relocMask    = 3
)

// Unfilled marks a memory cell that has not been written. It lies outside
// the range of any legal word value.
const Unfilled Word = 1 << (WordBits - 1)

// Relocation describes how the linker should treat an operand word. It
// occupies the low 2 bits of the word.
type Relocation byte

// Relocation kinds
const (
	Absolute    Relocation = 0
	External    Relocation = 1
	Relocatable Relocation = 2
)

var relocName = []string{"A", "E", "R", "?"}

func (r Relocation) String() string {
	return relocName[r&relocMask]
}

// Value ranges of encoded literals.
const (
	MinImmediate = -(1 << (WordBits - valueShift - 1))
	MaxImmediate = 1<<(WordBits-valueShift-1) - 1
	MinData      = -(1 << (WordBits - 1))
	MaxData      = 1<<(WordBits-1) - 1
)

// EncodeHeader returns the first word of an instruction.
func EncodeHeader(op *Opcode, src, dst Mode) Word {
	return Word(int(op.Index)<<opcodeShift | int(src)<<srcModeShift | int(dst)<<dstModeShift)
}

// DecodeHeader splits an instruction's first word into its opcode value and
// operand modes.
func DecodeHeader(w Word) (index byte, src, dst Mode) {
	v := int(w) & WordMask
	index = byte(v >> opcodeShift & 0xf)
	src = Mode(v >> srcModeShift & 3)
	dst = Mode(v >> dstModeShift & 3)
	return
}

// EncodeValue returns an operand word holding a value and its relocation
// kind.
func EncodeValue(v int, r Relocation) Word {
	return Word(v<<valueShift | int(r))
}

// DecodeValue splits an operand word into its sign-extended value and its
// relocation kind.
func DecodeValue(w Word) (v int, r Relocation) {
	u := int(w) & WordMask
	r = Relocation(u & relocMask)
	v = u >> valueShift
	if v&(1<<(WordBits-valueShift-1)) != 0 {
		v -= 1 << (WordBits - valueShift)
	}
	return
}

// SignExtend interprets the low WordBits bits of a word as a signed value.
func SignExtend(w Word) int {
	v := int(w) & WordMask
	if v&(1<<(WordBits-1)) != 0 {
		v -= 1 << WordBits
	}
	return v
}
