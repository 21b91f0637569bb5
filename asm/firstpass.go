// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"fmt"

	"github.com/beevik/asm14/cpu"
)

// A patch is an instruction word whose value is the address of a label
// that must be resolved after the first pass.
type patch struct {
	label  fstring // label whose address fills the word
	offset int     // instruction counter of the word
}

// Read the expanded source, encoding instructions into the code image and
// data into the data image, building the symbol table, and recording a
// patch for every label reference.
func (a *assembler) firstPass() error {
	a.logSection("First pass")

	err := readLines(a.r, func(row int, text string) bool {
		line := newFstring(row, text).trim()
		if !line.isEmpty() && !line.startsWith(comment) {
			a.lastLine = line
			a.parseLine(line)
		}
		return true
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFatal, err)
	}
	return nil
}

// Parse a single line of expanded source.
func (a *assembler) parseLine(line fstring) {
	word, rest := line.consumeWord()

	var label fstring
	hasLabel, entry := false, false
	if word.endsWithChar(':') {
		label, hasLabel = word.trunc(len(word.str)-1), true
		word, rest = rest.consumeWord()
		if word.isEmpty() {
			a.addError(label, "label '%s' must be followed by an instruction or directive", label.str)
			return
		}

		switch status := ValidateLabel(label.str, a.symbols, a.reserved); status {
		case LabelFresh:
		case LabelEntryPending:
			entry = true
		default:
			a.addError(label, "%s", status.message(label.str))
			return
		}
	}

	if op := a.set.Opcode(word.str); op != nil {
		if hasLabel && !op.LabelAllowed {
			a.addError(label, "a label is not allowed on '%s'", op.Name)
			return
		}
		addr := a.ic + cpu.Origin
		if a.parseInstruction(op, word, rest) && hasLabel {
			a.defineLabel(label, KindCode, addr, entry)
		}
		return
	}

	if d := a.set.Directive(word.str); d != nil {
		if hasLabel && !d.LabelAllowed {
			a.addError(label, "a label is not allowed on '%s'", d.Name)
			return
		}
		dc := len(a.image.Data())
		if a.parseDirective(d, word, rest) && hasLabel {
			a.defineLabel(label, KindData, dc, entry)
		}
		return
	}

	a.addError(word, "unrecognized instruction '%s'", word.str)
}

// Add a label to the symbol table. If the label was previously declared
// with .entry, the pending symbol is upgraded instead.
func (a *assembler) defineLabel(label fstring, kind SymbolKind, value int, entry bool) {
	if entry {
		sym := a.symbols.Lookup(label.str)
		sym.Value = value
		sym.Reloc = cpu.Relocatable
		if kind == KindCode {
			sym.Kind = KindEntry
		} else {
			sym.Kind = KindEntryData
		}
		a.logLine(label, "entry %s=%d", label.str, value)
		return
	}

	sym := Symbol{Name: label.str, Kind: kind, Value: value, Reloc: cpu.Relocatable}
	if a.insertSymbol(label, sym) {
		a.logLine(label, "%s %s=%d", kind, label.str, value)
	}
}

// Add a new symbol to the symbol table, reporting an error at 'at' if the
// name is already taken.
func (a *assembler) insertSymbol(at fstring, sym Symbol) bool {
	if err := a.symbols.Insert(sym); err != nil {
		a.addError(at, "%s", LabelTaken.message(sym.Name))
		return false
	}
	return true
}

// Split a comma-separated operand list. Each operand is a single
// whitespace-delimited word. Report an error and return false if a comma
// is misplaced or missing.
func (a *assembler) splitOperands(rest fstring) ([]fstring, bool) {
	var args []fstring
	var lastComma fstring
	expectOperand := true

	s := rest.consumeWhitespace()
	for !s.isEmpty() {
		if s.startsWith(comma) {
			if expectOperand {
				a.addError(s, "unexpected comma")
				return nil, false
			}
			lastComma, expectOperand = s, true
			s = s.consume(1).consumeWhitespace()
			continue
		}

		var tok fstring
		tok, s = s.consumeUntil(separator)
		if !expectOperand {
			a.addError(tok, "missing comma before '%s'", tok.str)
			return nil, false
		}
		args, expectOperand = append(args, tok), false
		s = s.consumeWhitespace()
	}

	if expectOperand && len(args) > 0 {
		a.addError(lastComma, "trailing comma")
		return nil, false
	}
	return args, true
}

// Parse an instruction's operands and encode the instruction.
func (a *assembler) parseInstruction(op *cpu.Opcode, word, rest fstring) bool {
	args, ok := a.splitOperands(rest)
	if !ok {
		return false
	}
	switch {
	case len(args) > op.Operands:
		a.addError(args[op.Operands], "too many operands for '%s' (expected %d)", op.Name, op.Operands)
		return false
	case len(args) < op.Operands:
		a.addError(word, "missing operands for '%s' (expected %d, found %d)", op.Name, op.Operands, len(args))
		return false
	}

	operands := make([]operand, len(args))
	for i, arg := range args {
		o, err := a.resolver.resolve(arg)
		if err != nil {
			e := err.(*operandError)
			a.addError(e.at, "%s", e.msg)
			return false
		}
		operands[i] = o
	}

	var src, dst *operand
	switch len(operands) {
	case 2:
		src, dst = &operands[0], &operands[1]
	case 1:
		dst = &operands[0]
	}

	var srcMode, dstMode cpu.Mode
	if src != nil {
		if !op.SrcModes.Has(src.mode) {
			a.addError(args[0], "addressing mode %v is not allowed for the source operand of '%s'", src.mode, op.Name)
			return false
		}
		srcMode = src.mode
	}
	if dst != nil {
		if !op.DstModes.Has(dst.mode) {
			a.addError(args[len(args)-1], "addressing mode %v is not allowed for the destination operand of '%s'", dst.mode, op.Name)
			return false
		}
		dstMode = dst.mode
	}

	a.sourceLines = append(a.sourceLines, SourceLine{Address: a.ic + cpu.Origin, Line: word.row})
	a.logLine(word, "%04d %s", a.ic+cpu.Origin, op.Name)
	a.emit(word, cpu.EncodeHeader(op, srcMode, dstMode))

	if src != nil && src.mode == cpu.REG && dst.mode == cpu.REG {
		a.emit(word, cpu.EncodeRegisters(src.reg, dst.reg))
		return true
	}
	if src != nil {
		a.emitOperand(word, src, true)
	}
	if dst != nil {
		a.emitOperand(word, dst, false)
	}
	return true
}

// Encode the words of a single operand.
func (a *assembler) emitOperand(at fstring, o *operand, isSrc bool) {
	switch o.mode {
	case cpu.IMM:
		a.emit(at, cpu.EncodeValue(o.value, cpu.Absolute))
	case cpu.DIR:
		a.emitPatch(o.label)
	case cpu.IDX:
		a.emitPatch(o.label)
		a.emit(at, cpu.EncodeValue(o.value, cpu.Absolute))
	case cpu.REG:
		if isSrc {
			a.emit(at, cpu.EncodeRegisters(o.reg, 0))
		} else {
			a.emit(at, cpu.EncodeRegisters(0, o.reg))
		}
	}
}

// Reserve an instruction word to be filled with a label's address during
// the second pass.
func (a *assembler) emitPatch(label fstring) {
	a.patches = append(a.patches, patch{label: label, offset: a.ic})
	a.emit(label, cpu.Unfilled)
}

// Store a word at the instruction counter and advance it.
func (a *assembler) emit(at fstring, w cpu.Word) {
	if err := a.image.StoreCode(a.ic, w); err != nil && !a.overflow {
		a.addError(at, "program exceeds %d words of memory", cpu.CodeSize)
		a.overflow = true
	}
	a.ic++
}

// Parse a directive.
func (a *assembler) parseDirective(d *cpu.Directive, word, rest fstring) bool {
	switch d.Kind {
	case cpu.Data:
		return a.parseData(word, rest)
	case cpu.String:
		return a.parseString(word, rest)
	case cpu.Entry:
		return a.parseEntry(word, rest)
	case cpu.Extern:
		return a.parseExtern(word, rest)
	case cpu.Define:
		return a.parseDefine(word, rest)
	default:
		panic("unknown directive")
	}
}

// .data value[, value...]
func (a *assembler) parseData(word, rest fstring) bool {
	args, ok := a.splitOperands(rest)
	if !ok {
		return false
	}
	if len(args) == 0 {
		a.addError(word, "missing values for '%s'", word.str)
		return false
	}

	values := make([]int, len(args))
	for i, arg := range args {
		v, ok := a.dataValue(arg)
		if !ok {
			return false
		}
		values[i] = v
	}

	for _, v := range values {
		a.image.AppendData(cpu.Word(v))
	}
	a.logLine(word, "data %d words", len(values))
	return true
}

// Parse a .data or .define value: a decimal integer or the name of a
// previously defined constant.
func (a *assembler) dataValue(tok fstring) (int, bool) {
	v, ok := parseInt(tok.str)
	if !ok {
		sym := a.symbols.Lookup(tok.str)
		if sym == nil || sym.Kind != KindConstant {
			a.addError(tok, "'%s' is neither a number nor a constant", tok.str)
			return 0, false
		}
		v = sym.Value
	}
	if v < cpu.MinData || v > cpu.MaxData {
		a.addError(tok, "value %d out of range [%d, %d]", v, cpu.MinData, cpu.MaxData)
		return 0, false
	}
	return v, true
}

// .string "text"
func (a *assembler) parseString(word, rest fstring) bool {
	rest = rest.trim()
	if !rest.startsWith(stringQuote) {
		a.addError(rest, "'%s' requires a quoted string", word.str)
		return false
	}
	if len(rest.str) < 2 || !rest.endsWithChar('"') {
		a.addError(rest, "string is not terminated by a quote")
		return false
	}

	s := rest.consume(1).trunc(len(rest.str) - 2)
	for i := 0; i < len(s.str); i++ {
		if !printable(s.str[i]) {
			a.addError(s.consume(i), "string contains a non-printable character")
			return false
		}
	}

	for i := 0; i < len(s.str); i++ {
		a.image.AppendData(cpu.Word(s.str[i]))
	}
	a.image.AppendData(0)
	a.logLine(word, "string %d words", len(s.str)+1)
	return true
}

// Parse the single label operand of .entry or .extern.
func (a *assembler) singleLabel(word, rest fstring) (fstring, bool) {
	args, ok := a.splitOperands(rest)
	switch {
	case !ok:
		return fstring{}, false
	case len(args) == 0:
		a.addError(word, "missing label for '%s'", word.str)
		return fstring{}, false
	case len(args) > 1:
		a.addError(args[1], "too many operands for '%s'", word.str)
		return fstring{}, false
	}
	return args[0], true
}

// .entry label
func (a *assembler) parseEntry(word, rest fstring) bool {
	name, ok := a.singleLabel(word, rest)
	if !ok {
		return false
	}

	switch status := ValidateLabel(name.str, a.symbols, a.reserved); status {
	case LabelFresh:
		sym := Symbol{Name: name.str, Kind: KindEntryPending, Reloc: cpu.Relocatable, decl: name}
		if !a.insertSymbol(name, sym) {
			return false
		}
		a.logLine(name, "entry %s (pending)", name.str)

	case LabelEntryPending:
		// Already declared.

	case LabelTaken:
		sym := a.symbols.Lookup(name.str)
		switch sym.Kind {
		case KindConstant:
			a.addError(name, "constant '%s' cannot be an entry", name.str)
			return false
		case KindExtern:
			a.addError(name, "external label '%s' cannot be an entry", name.str)
			return false
		case KindCode:
			sym.Kind = KindEntry
		case KindData:
			sym.Kind = KindEntryData
		}
		a.logLine(name, "entry %s", name.str)

	default:
		a.addError(name, "%s", status.message(name.str))
		return false
	}
	return true
}

// .extern label
func (a *assembler) parseExtern(word, rest fstring) bool {
	name, ok := a.singleLabel(word, rest)
	if !ok {
		return false
	}

	switch status := ValidateLabel(name.str, a.symbols, a.reserved); status {
	case LabelFresh:
		sym := Symbol{Name: name.str, Kind: KindExtern, Reloc: cpu.External}
		if !a.insertSymbol(name, sym) {
			return false
		}
		a.logLine(name, "extern %s", name.str)
		return true
	case LabelEntryPending:
		a.addError(name, "entry '%s' cannot be external", name.str)
		return false
	default:
		a.addError(name, "%s", status.message(name.str))
		return false
	}
}

// .define name = value
func (a *assembler) parseDefine(word, rest fstring) bool {
	i := rest.scanUntilChar('=')
	if i == len(rest.str) {
		a.addError(rest, "'%s' requires the form name=value", word.str)
		return false
	}

	name := rest.trunc(i).trim()
	value := rest.consume(i + 1).trim()
	if name.isEmpty() {
		a.addError(word, "missing constant name")
		return false
	}
	if n := name.scanUntil(whitespace); n < len(name.str) {
		a.addError(name.consume(n).consumeWhitespace(), "unexpected text in constant name")
		return false
	}
	if value.isEmpty() {
		a.addError(value, "missing value for constant '%s'", name.str)
		return false
	}

	if status := ValidateLabel(name.str, a.symbols, a.reserved); status != LabelFresh {
		a.addError(name, "%s", status.message(name.str))
		return false
	}
	v, ok := a.dataValue(value)
	if !ok {
		return false
	}

	sym := Symbol{Name: name.str, Kind: KindConstant, Value: v, Reloc: cpu.Absolute}
	if !a.insertSymbol(name, sym) {
		return false
	}
	a.logLine(name, "constant %s=%d", name.str, v)
	return true
}

// Relocate data symbols to follow the instruction image, and check for
// entries that were never defined.
func (a *assembler) finalizeSymbols() error {
	a.logSection("Relocating symbols")

	for _, s := range a.symbols.relocate(a.ic) {
		a.addError(s.decl, "entry '%s' is never defined", s.Name)
	}
	if !a.overflow && a.image.Size() > cpu.CodeSize {
		a.addError(a.lastLine, "program exceeds %d words of memory", cpu.CodeSize)
	}

	for _, s := range a.symbols.symbols {
		a.log("%-31s %-13s %4d %v", s.Name, s.Kind, s.Value, s.Reloc)
	}
	return nil
}
