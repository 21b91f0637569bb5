// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

import "errors"

// Errors
var (
	ErrMemoryOutOfBounds = errors.New("memory access out of bounds")
)

// Memory layout
const (
	MemorySize = 4096 // total words of RAM
	Origin     = 100  // address of the first instruction word
	CodeSize   = MemorySize - Origin
)

// An Image holds the words produced by the assembler. Instruction words are
// stored in a fixed-capacity array indexed by instruction counter; data
// words are appended to a separate, growable array and are placed after the
// instructions when the image is emitted.
type Image struct {
	code [CodeSize]Word
	ic   int
	data []Word
}

// NewImage creates an empty memory image.
func NewImage() *Image {
	m := &Image{}
	m.Reset()
	return m
}

// Reset clears the image.
func (m *Image) Reset() {
	for i := range m.code {
		m.code[i] = Unfilled
	}
	m.ic = 0
	m.data = m.data[:0]
}

// StoreCode stores an instruction word at instruction counter 'ic'.
func (m *Image) StoreCode(ic int, w Word) error {
	if ic < 0 || ic >= CodeSize {
		return ErrMemoryOutOfBounds
	}
	m.code[ic] = w
	if ic >= m.ic {
		m.ic = ic + 1
	}
	return nil
}

// LoadCode returns the instruction word at instruction counter 'ic'.
func (m *Image) LoadCode(ic int) Word {
	if ic < 0 || ic >= CodeSize {
		return Unfilled
	}
	return m.code[ic]
}

// Code returns the instruction words written so far.
func (m *Image) Code() []Word {
	return m.code[:m.ic]
}

// AppendData appends a data word and returns its data counter.
func (m *Image) AppendData(w Word) int {
	m.data = append(m.data, w)
	return len(m.data) - 1
}

// Data returns the data words.
func (m *Image) Data() []Word {
	return m.data
}

// Size returns the number of words the image occupies.
func (m *Image) Size() int {
	return m.ic + len(m.data)
}
