// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

// Bit positions of register numbers within a register operand word.
const (
	srcRegShift = 5
	dstRegShift = 2
	regMask     = 7
)

// EncodeRegisters returns an operand word naming a source and destination
// register. When an instruction has two register operands they share a
// single word; otherwise the unused field is zero.
func EncodeRegisters(src, dst int) Word {
	return Word((src&regMask)<<srcRegShift | (dst&regMask)<<dstRegShift)
}

// DecodeRegisters returns the source and destination register numbers held
// in a register operand word.
func DecodeRegisters(w Word) (src, dst int) {
	v := int(w) & WordMask
	return v >> srcRegShift & regMask, v >> dstRegShift & regMask
}
