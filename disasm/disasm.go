// Copyright 2014 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package disasm implements a disassembler for assembled object code.
package disasm

import (
	"fmt"
	"strings"

	"github.com/beevik/asm14/asm"
	"github.com/beevik/asm14/cpu"
)

// Disassembler formatting for addressing modes
var modeFormat = []string{
	"#%s",    // IMM
	"%s",     // DIR
	"%s[%s]", // IDX
	"r%s",    // REG
}

// Format the address held in a label word.
func addressString(w cpu.Word) string {
	v, r := cpu.DecodeValue(w)
	switch r {
	case cpu.External:
		return "?ext"
	case cpu.Relocatable:
		return fmt.Sprintf("%04d", v)
	default:
		return fmt.Sprintf("%d", v)
	}
}

// Disassemble the object code at address 'addr'. Return a 'line' string
// representing the disassembled instruction or data word and a 'next'
// address that starts the following line.
func Disassemble(obj *asm.Object, addr int) (line string, next int) {
	w, ok := obj.Load(addr)
	if !ok {
		return "", addr + 1
	}
	if !obj.IsCode(addr) {
		return fmt.Sprintf(".data %d", cpu.SignExtend(w)), addr + 1
	}

	index, srcMode, dstMode := cpu.DecodeHeader(w)
	op := cpu.GetInstructionSet().OpcodeByIndex(index)
	next = addr + 1

	// Fetch the next operand word.
	fetch := func() cpu.Word {
		w, _ := obj.Load(next)
		next++
		return w
	}

	var operands []string
	switch {
	case op.Operands == 2 && srcMode == cpu.REG && dstMode == cpu.REG:
		src, dst := cpu.DecodeRegisters(fetch())
		operands = append(operands, fmt.Sprintf(modeFormat[cpu.REG], fmt.Sprint(src)))
		operands = append(operands, fmt.Sprintf(modeFormat[cpu.REG], fmt.Sprint(dst)))
	case op.Operands == 2:
		operands = append(operands, operandString(srcMode, true, fetch))
		operands = append(operands, operandString(dstMode, false, fetch))
	case op.Operands == 1:
		operands = append(operands, operandString(dstMode, false, fetch))
	}

	if len(operands) == 0 {
		return op.Name, next
	}
	return op.Name + " " + strings.Join(operands, ", "), next
}

// Decode the words of a single operand.
func operandString(mode cpu.Mode, isSrc bool, fetch func() cpu.Word) string {
	switch mode {
	case cpu.IMM:
		v, _ := cpu.DecodeValue(fetch())
		return fmt.Sprintf(modeFormat[mode], fmt.Sprint(v))
	case cpu.DIR:
		return fmt.Sprintf(modeFormat[mode], addressString(fetch()))
	case cpu.IDX:
		label := addressString(fetch())
		v, _ := cpu.DecodeValue(fetch())
		return fmt.Sprintf(modeFormat[mode], label, fmt.Sprint(v))
	default:
		src, dst := cpu.DecodeRegisters(fetch())
		if isSrc {
			return fmt.Sprintf(modeFormat[mode], fmt.Sprint(src))
		}
		return fmt.Sprintf(modeFormat[mode], fmt.Sprint(dst))
	}
}
