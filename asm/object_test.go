// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/beevik/asm14/cpu"
)

func TestEncodeWord(t *testing.T) {
	tests := []struct {
		w cpu.Word
		s string
	}{
		{0, "*******"},
		{1, "******#"},
		{2, "******%"},
		{3, "******!"},
		{4, "*****#*"},
		{-1, "!!!!!!!"},
		{cpu.MinData, "%******"},
		{cpu.MaxData, "#!!!!!!"},
		{768, "**!****"},
	}
	for _, tt := range tests {
		if s := EncodeWord(tt.w); s != tt.s {
			t.Errorf("EncodeWord(%d) = %s; want %s", tt.w, s, tt.s)
		}
	}

	// Every 14-bit value survives a round trip.
	for v := cpu.MinData; v <= cpu.MaxData; v++ {
		s := EncodeWord(cpu.Word(v))
		w, err := DecodeWord(s)
		if err != nil || int(w) != v {
			t.Fatalf("DecodeWord(%s) = %d, %v; want %d", s, w, err, v)
		}
	}

	for _, s := range []string{"", "******", "********", "***x***"} {
		if _, err := DecodeWord(s); err == nil {
			t.Errorf("DecodeWord(%q) should fail", s)
		}
	}
}

const listing = `  3 1
0100 **!****
0101 ****##*
0102 **!!***
0103 *****#!
`

func TestObjectListing(t *testing.T) {
	assembly := mustAssemble(t, "MAIN: prn #5\nhlt\nD: .data 7")

	var b bytes.Buffer
	n, err := assembly.Object.WriteTo(&b)
	if err != nil {
		t.Fatal(err)
	}
	if b.String() != listing {
		t.Errorf("listing:\n%s\nexpected:\n%s", b.String(), listing)
	}
	if n != int64(len(listing)) {
		t.Errorf("WriteTo returned %d, expected %d", n, len(listing))
	}

	var obj Object
	if _, err := obj.ReadFrom(strings.NewReader(listing)); err != nil {
		t.Fatal(err)
	}
	if len(obj.Code) != 3 || len(obj.Data) != 1 {
		t.Fatalf("read %d code and %d data words", len(obj.Code), len(obj.Data))
	}
	for addr := cpu.Origin; addr < cpu.Origin+4; addr++ {
		w1, _ := obj.Load(addr)
		w2, _ := assembly.Object.Load(addr)
		if w1 != w2 {
			t.Errorf("word at %d = %d, expected %d", addr, w1, w2)
		}
	}
	if !obj.IsCode(102) || obj.IsCode(103) {
		t.Error("IsCode failed")
	}
	if _, ok := obj.Load(104); ok {
		t.Error("Load beyond the object should fail")
	}
}

func TestObjectListingErrors(t *testing.T) {
	for _, s := range []string{
		"",
		"  x 1\n",
		"  1 0\n",
		"  1 0\n0101 *******\n",
		"  1 0\n0100 ***\n",
		"  1 0\n0100\n",
	} {
		var obj Object
		if _, err := obj.ReadFrom(strings.NewReader(s)); err == nil {
			t.Errorf("ReadFrom(%q) should fail", s)
		}
	}
}
