// Copyright 2014 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package disasm

import (
	"strings"
	"testing"

	"github.com/beevik/asm14/asm"
	"github.com/beevik/asm14/cpu"
)

func TestDisassemble(t *testing.T) {
	src := `.extern X
.define k=3
MAIN: mov #-5, r3
mov r1, r2
lea D[k], r6
cmp X, #k
prn r4
jmp MAIN
hlt
D: .data 7, -1`

	assembly, _, err := asm.Assemble(strings.NewReader(src), "test", nil, nil, 0)
	if err != nil {
		t.Fatalf("%v: %v", err, assembly.Errors)
	}

	expected := []string{
		"mov #-5, r3",
		"mov r1, r2",
		"lea 0117[3], r6",
		"cmp ?ext, #3",
		"prn r4",
		"jmp 0100",
		"hlt",
		".data 7",
		".data -1",
	}

	addr := cpu.Origin
	for i, e := range expected {
		line, next := Disassemble(assembly.Object, addr)
		if line != e {
			t.Errorf("line %d: got %q, expected %q", i, line, e)
		}
		addr = next
	}
	if addr != cpu.Origin+assembly.Object.Size() {
		t.Errorf("ended at %d, expected %d", addr, cpu.Origin+assembly.Object.Size())
	}
}
