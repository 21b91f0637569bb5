// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/beevik/asm14/cpu"
)

var errBadWord = errors.New("invalid encoded word")

// Symbols used to encode each 2-bit group of a word, from 00 to 11.
const wordAlphabet = "*#%!"

// Number of symbols in an encoded word.
const encodedWordLen = cpu.WordBits / 2

// EncodeWord returns the 7-symbol representation of the low 14 bits of a
// word, most significant group first.
func EncodeWord(w cpu.Word) string {
	v := int(w) & cpu.WordMask
	var b [encodedWordLen]byte
	for i := encodedWordLen - 1; i >= 0; i-- {
		b[i] = wordAlphabet[v&3]
		v >>= 2
	}
	return string(b[:])
}

// DecodeWord converts a 7-symbol encoded word back into a signed word.
func DecodeWord(s string) (cpu.Word, error) {
	if len(s) != encodedWordLen {
		return 0, errBadWord
	}
	v := 0
	for i := 0; i < len(s); i++ {
		d := strings.IndexByte(wordAlphabet, s[i])
		if d < 0 {
			return 0, errBadWord
		}
		v = v<<2 | d
	}
	return cpu.Word(cpu.SignExtend(cpu.Word(v))), nil
}

// An Export describes a label and its address.
type Export struct {
	Label   string
	Address int
}

// An Object holds the output of a successful assembly: instruction words
// starting at cpu.Origin, data words following them, the entry labels the
// module exports, and every reference to an external label.
type Object struct {
	Code    []cpu.Word // instruction words
	Data    []cpu.Word // data words
	Entries []Export   // exported labels
	Externs []Export   // addresses of words referring to external labels
}

// Size returns the number of words in the object.
func (o *Object) Size() int {
	return len(o.Code) + len(o.Data)
}

// Load returns the word at a machine address.
func (o *Object) Load(addr int) (cpu.Word, bool) {
	i := addr - cpu.Origin
	switch {
	case i < 0 || i >= o.Size():
		return 0, false
	case i < len(o.Code):
		return o.Code[i], true
	default:
		return o.Data[i-len(o.Code)], true
	}
}

// IsCode returns true if the address lies within the instruction words.
func (o *Object) IsCode(addr int) bool {
	i := addr - cpu.Origin
	return i >= 0 && i < len(o.Code)
}

// WriteTo writes the object listing: a header holding the instruction
// and data word counts, followed by one line per word giving its address
// and encoded value.
func (o *Object) WriteTo(w io.Writer) (n int64, err error) {
	var b bytes.Buffer
	fmt.Fprintf(&b, "  %d %d\n", len(o.Code), len(o.Data))
	for addr := cpu.Origin; addr < cpu.Origin+o.Size(); addr++ {
		v, _ := o.Load(addr)
		fmt.Fprintf(&b, "%04d %s\n", addr, EncodeWord(v))
	}
	nn, err := w.Write(b.Bytes())
	return int64(nn), err
}

// ReadFrom reads an object listing produced by WriteTo. Entries and
// external references are not part of the listing.
func (o *Object) ReadFrom(r io.Reader) (n int64, err error) {
	b, err := io.ReadAll(r)
	n = int64(len(b))
	if err != nil {
		return n, err
	}

	scanner := bufio.NewScanner(bytes.NewReader(b))
	row := 0
	next := func() ([]string, bool) {
		for scanner.Scan() {
			row++
			if f := strings.Fields(scanner.Text()); len(f) > 0 {
				return f, true
			}
		}
		return nil, false
	}

	header, ok := next()
	if !ok || len(header) != 2 {
		return n, fmt.Errorf("object listing: missing header")
	}
	ic, err1 := strconv.Atoi(header[0])
	dc, err2 := strconv.Atoi(header[1])
	if err1 != nil || err2 != nil || ic < 0 || dc < 0 || ic+dc > cpu.CodeSize {
		return n, fmt.Errorf("object listing line %d: invalid header", row)
	}

	words := make([]cpu.Word, ic+dc)
	for i := range words {
		f, ok := next()
		if !ok {
			return n, fmt.Errorf("object listing: expected %d words, found %d", len(words), i)
		}
		if len(f) != 2 {
			return n, fmt.Errorf("object listing line %d: malformed line", row)
		}
		if addr, err := strconv.Atoi(f[0]); err != nil || addr != cpu.Origin+i {
			return n, fmt.Errorf("object listing line %d: expected address %04d", row, cpu.Origin+i)
		}
		if words[i], err = DecodeWord(f[1]); err != nil {
			return n, fmt.Errorf("object listing line %d: %v", row, err)
		}
	}

	o.Code, o.Data = words[:ic:ic], words[ic:]
	o.Entries, o.Externs = nil, nil
	return n, nil
}

// WriteEntries writes one line per exported label giving its address.
func (o *Object) WriteEntries(w io.Writer) (n int64, err error) {
	return writeExports(w, o.Entries)
}

// WriteExterns writes one line per reference to an external label giving
// the address of the referring word.
func (o *Object) WriteExterns(w io.Writer) (n int64, err error) {
	return writeExports(w, o.Externs)
}

func writeExports(w io.Writer, exports []Export) (n int64, err error) {
	for _, e := range exports {
		var nn int
		nn, err = fmt.Fprintf(w, "%s\t%04d\n", e.Label, e.Address)
		n += int64(nn)
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
