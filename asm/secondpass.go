// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import "github.com/beevik/asm14/cpu"

// Fill every patched instruction word with the address of its label,
// recording a reference for each use of an external label.
func (a *assembler) resolvePatches() error {
	a.logSection("Second pass")
	a.stage = "second pass"

	for _, p := range a.patches {
		sym := a.symbols.Lookup(p.label.str)
		if sym == nil {
			a.addError(p.label, "undefined label '%s'", p.label.str)
			continue
		}

		addr := p.offset + cpu.Origin
		switch sym.Kind {
		case KindExtern:
			if !a.patchWord(p, cpu.EncodeValue(0, cpu.External)) {
				continue
			}
			a.externs = append(a.externs, Export{Label: sym.Name, Address: addr})
			a.logLine(p.label, "%04d extern %s", addr, sym.Name)

		case KindConstant:
			a.addError(p.label, "constant '%s' cannot be used as an address", sym.Name)

		case KindEntryPending:
			// Reported when the symbols were relocated.

		default:
			if !a.patchWord(p, cpu.EncodeValue(sym.Value, sym.Reloc)) {
				continue
			}
			a.logLine(p.label, "%04d %s=%d", addr, sym.Name, sym.Value)
		}
	}
	return nil
}

// Store a resolved word at the patch's offset. Words past the end of the
// instruction image have no cell to fill; the first pass has already
// reported the overflow.
func (a *assembler) patchWord(p patch, w cpu.Word) bool {
	if err := a.image.StoreCode(p.offset, w); err != nil {
		if !a.overflow {
			a.addError(p.label, "%v", err)
		}
		return false
	}
	return true
}

// Produce the object code if no errors have been encountered.
func (a *assembler) generateObject() error {
	if len(a.errors) > 0 {
		return nil
	}

	a.logSection("Generating object code")

	obj := &Object{
		Code:    append([]cpu.Word(nil), a.image.Code()...),
		Data:    append([]cpu.Word(nil), a.image.Data()...),
		Externs: a.externs,
	}
	for _, s := range a.symbols.Entries() {
		obj.Entries = append(obj.Entries, Export{Label: s.Name, Address: s.Value})
	}

	for addr := cpu.Origin; addr < cpu.Origin+obj.Size(); addr++ {
		w, _ := obj.Load(addr)
		a.log("%04d %s", addr, EncodeWord(w))
	}

	a.obj = obj
	return nil
}
