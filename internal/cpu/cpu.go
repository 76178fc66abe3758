/*
   CPU: main Universal Machine instruction decode and execute.

   Copyright (c) 2024, Richard Cornwell

   Permission is hereby granted, free of charge, to any person obtaining a
   copy of this software and associated documentation files (the "Software"),
   to deal in the Software without restriction, including without limitation
   the rights to use, copy, modify, merge, publish, distribute, sublicense,
   and/or sell copies of the Software, and to permit persons to whom the
   Software is furnished to do so, subject to the following conditions:

   The above copyright notice and this permission notice shall be included in
   all copies or substantial portions of the Software.

   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.  IN NO EVENT SHALL
   ROBERT M SUPNIK BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
   IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
   CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

*/

// Package cpu implements the semantics of the Universal Machine's 14
// opcodes against a register file and a segment arena.
package cpu

import (
	"errors"
	"fmt"
	"io"

	"github.com/bchao-msoto/um32/internal/bitpack"
	"github.com/bchao-msoto/um32/internal/opcode"
	"github.com/bchao-msoto/um32/internal/segment"
	"github.com/bchao-msoto/um32/internal/um"
)

// Sentinel errors for the non-addressing, non-resource fault classes.
var (
	ErrBadOpcode    = errors.New("cpu: opcode not defined")
	ErrDivideByZero = errors.New("cpu: division by zero")
	ErrOutputRange  = errors.New("cpu: output value exceeds a byte")
	ErrHostIO       = errors.New("cpu: host I/O failure")
)

// IO is the Universal Machine's byte-oriented host sink and source. Out may
// be nil if the program never executes Output; In may be nil if it never
// executes Input.
type IO struct {
	In  io.Reader
	Out io.Writer
}

// stepInfo holds the decoded fields of one instruction.
type stepInfo struct {
	opcode  uint8
	a, b, c uint8
	imm     um.Word
}

// Outcome describes what the fetch/dispatch loop should do after a step.
type Outcome struct {
	Halted bool
	Jumped bool   // opcode 12 set PC directly; loop must not auto-advance
	NewPC  um.Word
}

// Executor dispatches a decoded instruction to its opcode handler through a
// dense table, built once in NewExecutor.
type Executor struct {
	table [opcode.Count]func(*Executor, *um.Registers, *segment.Arena, IO, stepInfo) (Outcome, error)
}

// NewExecutor builds the opcode dispatch table.
func NewExecutor() *Executor {
	ex := &Executor{}
	ex.table[opcode.CMov] = (*Executor).execCMov
	ex.table[opcode.Load] = (*Executor).execLoad
	ex.table[opcode.Store] = (*Executor).execStore
	ex.table[opcode.Add] = (*Executor).execAdd
	ex.table[opcode.Mul] = (*Executor).execMul
	ex.table[opcode.Div] = (*Executor).execDiv
	ex.table[opcode.Nand] = (*Executor).execNand
	ex.table[opcode.Halt] = (*Executor).execHalt
	ex.table[opcode.Map] = (*Executor).execMap
	ex.table[opcode.Unmap] = (*Executor).execUnmap
	ex.table[opcode.Output] = (*Executor).execOutput
	ex.table[opcode.Input] = (*Executor).execInput
	ex.table[opcode.LoadProgram] = (*Executor).execLoadProgram
	ex.table[opcode.LoadValue] = (*Executor).execLoadValue
	return ex
}

// Decode extracts the opcode and operand fields of word.
func Decode(word um.Word) (op uint8, a, b, c uint8, imm um.Word) {
	op = uint8(bitpack.Getu(word, 4, 28))
	if opcode.ThreeRegister(op) {
		a = uint8(bitpack.Getu(word, 3, 6))
		b = uint8(bitpack.Getu(word, 3, 3))
		c = uint8(bitpack.Getu(word, 3, 0))
		return op, a, b, c, 0
	}
	a = uint8(bitpack.Getu(word, 3, 25))
	imm = bitpack.Getu(word, 25, 0)
	return op, a, 0, 0, imm
}

// Step decodes word and executes it against regs and mem, using hostIO for the
// Input/Output opcodes.
func (ex *Executor) Step(regs *um.Registers, mem *segment.Arena, hostIO IO, word um.Word) (Outcome, error) {
	op, a, b, c, imm := Decode(word)
	if op >= opcode.Count {
		return Outcome{}, fmt.Errorf("%w: %d", ErrBadOpcode, op)
	}
	fn := ex.table[op]
	step := stepInfo{opcode: op, a: a, b: b, c: c, imm: imm}
	return fn(ex, regs, mem, hostIO, step)
}

func (ex *Executor) execCMov(regs *um.Registers, mem *segment.Arena, hostIO IO, step stepInfo) (Outcome, error) {
	if regs.Get(step.c) != 0 {
		regs.Set(step.a, regs.Get(step.b))
	}
	return Outcome{}, nil
}

func (ex *Executor) execLoad(regs *um.Registers, mem *segment.Arena, hostIO IO, step stepInfo) (Outcome, error) {
	v, err := mem.Load(regs.Get(step.b), regs.Get(step.c))
	if err != nil {
		return Outcome{}, err
	}
	regs.Set(step.a, v)
	return Outcome{}, nil
}

func (ex *Executor) execStore(regs *um.Registers, mem *segment.Arena, hostIO IO, step stepInfo) (Outcome, error) {
	err := mem.Store(regs.Get(step.a), regs.Get(step.b), regs.Get(step.c))
	return Outcome{}, err
}

func (ex *Executor) execAdd(regs *um.Registers, mem *segment.Arena, hostIO IO, step stepInfo) (Outcome, error) {
	regs.Set(step.a, regs.Get(step.b)+regs.Get(step.c))
	return Outcome{}, nil
}

func (ex *Executor) execMul(regs *um.Registers, mem *segment.Arena, hostIO IO, step stepInfo) (Outcome, error) {
	regs.Set(step.a, regs.Get(step.b)*regs.Get(step.c))
	return Outcome{}, nil
}

func (ex *Executor) execDiv(regs *um.Registers, mem *segment.Arena, hostIO IO, step stepInfo) (Outcome, error) {
	divisor := regs.Get(step.c)
	if divisor == 0 {
		return Outcome{}, ErrDivideByZero
	}
	regs.Set(step.a, regs.Get(step.b)/divisor)
	return Outcome{}, nil
}

func (ex *Executor) execNand(regs *um.Registers, mem *segment.Arena, hostIO IO, step stepInfo) (Outcome, error) {
	regs.Set(step.a, ^(regs.Get(step.b) & regs.Get(step.c)))
	return Outcome{}, nil
}

func (ex *Executor) execHalt(regs *um.Registers, mem *segment.Arena, hostIO IO, step stepInfo) (Outcome, error) {
	return Outcome{Halted: true}, nil
}

func (ex *Executor) execMap(regs *um.Registers, mem *segment.Arena, hostIO IO, step stepInfo) (Outcome, error) {
	id, err := mem.Map(regs.Get(step.c))
	if err != nil {
		return Outcome{}, err
	}
	regs.Set(step.b, id)
	return Outcome{}, nil
}

func (ex *Executor) execUnmap(regs *um.Registers, mem *segment.Arena, hostIO IO, step stepInfo) (Outcome, error) {
	err := mem.Unmap(regs.Get(step.c))
	return Outcome{}, err
}

func (ex *Executor) execOutput(regs *um.Registers, mem *segment.Arena, hostIO IO, step stepInfo) (Outcome, error) {
	v := regs.Get(step.c)
	if v > 255 {
		return Outcome{}, fmt.Errorf("%w: %d", ErrOutputRange, v)
	}
	if hostIO.Out == nil {
		return Outcome{}, fmt.Errorf("%w: no output sink configured", ErrHostIO)
	}
	if _, err := hostIO.Out.Write([]byte{byte(v)}); err != nil {
		return Outcome{}, fmt.Errorf("%w: %v", ErrHostIO, err)
	}
	return Outcome{}, nil
}

func (ex *Executor) execInput(regs *um.Registers, mem *segment.Arena, hostIO IO, step stepInfo) (Outcome, error) {
	if hostIO.In == nil {
		regs.Set(step.c, 0xFFFFFFFF)
		return Outcome{}, nil
	}
	var buf [1]byte
	_, err := hostIO.In.Read(buf[:])
	switch {
	case errors.Is(err, io.EOF):
		regs.Set(step.c, 0xFFFFFFFF)
		return Outcome{}, nil
	case err != nil:
		return Outcome{}, fmt.Errorf("%w: %v", ErrHostIO, err)
	default:
		regs.Set(step.c, um.Word(buf[0]))
		return Outcome{}, nil
	}
}

func (ex *Executor) execLoadProgram(regs *um.Registers, mem *segment.Arena, hostIO IO, step stepInfo) (Outcome, error) {
	b := regs.Get(step.b)
	if b != 0 {
		if err := mem.DuplicateIntoZero(b); err != nil {
			return Outcome{}, err
		}
	}
	return Outcome{Jumped: true, NewPC: regs.Get(step.c)}, nil
}

func (ex *Executor) execLoadValue(regs *um.Registers, mem *segment.Arena, hostIO IO, step stepInfo) (Outcome, error) {
	regs.Set(step.a, step.imm)
	return Outcome{}, nil
}
