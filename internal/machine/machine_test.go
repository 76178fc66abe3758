/*
 * UM32  - Fetch/decode/dispatch loop
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package machine

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/bchao-msoto/um32/internal/bitpack"
	"github.com/bchao-msoto/um32/internal/cpu"
	"github.com/bchao-msoto/um32/internal/opcode"
	"github.com/bchao-msoto/um32/internal/segment"
	"github.com/bchao-msoto/um32/internal/um"
)

func threeReg(op, a, b, c uint8) um.Word {
	var w um.Word
	w = bitpack.Newu(w, 4, 28, uint32(op))
	w = bitpack.Newu(w, 3, 6, uint32(a))
	w = bitpack.Newu(w, 3, 3, uint32(b))
	w = bitpack.Newu(w, 3, 0, uint32(c))
	return w
}

func loadValueWord(a uint8, v uint32) um.Word {
	var w um.Word
	w = bitpack.Newu(w, 4, 28, uint32(opcode.LoadValue))
	w = bitpack.Newu(w, 3, 25, uint32(a))
	w = bitpack.Newu(w, 25, 0, v)
	return w
}

func mustNew(t *testing.T, program []um.Word, maxWords int, io cpu.IO) *Machine {
	t.Helper()
	m, err := New(program, maxWords, io)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	return m
}

// Scenario 1: Halt immediately.
func TestRunHaltsImmediately(t *testing.T) {
	program := []um.Word{threeReg(opcode.Halt, 0, 0, 0)}
	m := mustNew(t, program, 0, cpu.IO{})
	if err := m.Run(); err != nil {
		t.Fatalf("Run error: %v", err)
	}
}

// Scenario 2: load a value and print it, then halt.
func TestRunPrintsLoadedValue(t *testing.T) {
	program := []um.Word{
		loadValueWord(1, 'B'),
		threeReg(opcode.Output, 0, 0, 1),
		threeReg(opcode.Halt, 0, 0, 0),
	}
	var out bytes.Buffer
	m := mustNew(t, program, 0, cpu.IO{Out: &out})
	if err := m.Run(); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if out.String() != "B" {
		t.Errorf("got: %q want: %q", out.String(), "B")
	}
}

// Scenario 3: add two loaded values and print the sum.
func TestRunAddsAndOutputs(t *testing.T) {
	program := []um.Word{
		loadValueWord(1, '3'),
		loadValueWord(2, 3), // '3' + 3 == '6'
		threeReg(opcode.Add, 3, 1, 2),
		threeReg(opcode.Output, 0, 0, 3),
		threeReg(opcode.Halt, 0, 0, 0),
	}
	var out bytes.Buffer
	m := mustNew(t, program, 0, cpu.IO{Out: &out})
	if err := m.Run(); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if out.String() != "6" {
		t.Errorf("got: %q want: %q", out.String(), "6")
	}
}

// Scenario 4: echo one byte of input back out.
func TestRunEchoesInput(t *testing.T) {
	program := []um.Word{
		threeReg(opcode.Input, 0, 0, 1),
		threeReg(opcode.Output, 0, 0, 1),
		threeReg(opcode.Halt, 0, 0, 0),
	}
	var out bytes.Buffer
	m := mustNew(t, program, 0, cpu.IO{In: strings.NewReader("Q"), Out: &out})
	if err := m.Run(); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if out.String() != "Q" {
		t.Errorf("got: %q want: %q", out.String(), "Q")
	}
}

// Input at EOF must fault if the program tries to print the sentinel
// 0xFFFFFFFF, since it exceeds a byte.
func TestRunEOFThenOutputIsFatal(t *testing.T) {
	program := []um.Word{
		threeReg(opcode.Input, 0, 0, 1),
		threeReg(opcode.Output, 0, 0, 1),
		threeReg(opcode.Halt, 0, 0, 0),
	}
	var out bytes.Buffer
	m := mustNew(t, program, 0, cpu.IO{In: strings.NewReader(""), Out: &out})
	err := m.Run()
	if !errors.Is(err, cpu.ErrOutputRange) {
		t.Errorf("got: %v want: %v", err, cpu.ErrOutputRange)
	}
}

// Scenario 5: map a segment, store into it, load back, print.
func TestRunMapStoreLoadRoundTrip(t *testing.T) {
	program := []um.Word{
		loadValueWord(1, 1), // length
		threeReg(opcode.Map, 0, 2, 1),
		loadValueWord(3, 0),
		loadValueWord(4, '7'),
		threeReg(opcode.Store, 2, 3, 4),
		threeReg(opcode.Load, 5, 2, 3),
		threeReg(opcode.Output, 0, 0, 5),
		threeReg(opcode.Halt, 0, 0, 0),
	}
	var out bytes.Buffer
	m := mustNew(t, program, 0, cpu.IO{Out: &out})
	if err := m.Run(); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if out.String() != "7" {
		t.Errorf("got: %q want: %q", out.String(), "7")
	}
}

// Fatal termination: divide by zero.
func TestRunDivideByZeroIsFatal(t *testing.T) {
	program := []um.Word{
		threeReg(opcode.Div, 1, 2, 3), // R[2]/R[3], both start at 0
		threeReg(opcode.Halt, 0, 0, 0),
	}
	m := mustNew(t, program, 0, cpu.IO{})
	if err := m.Run(); !errors.Is(err, cpu.ErrDivideByZero) {
		t.Errorf("got: %v want: %v", err, cpu.ErrDivideByZero)
	}
}

// Fatal termination: unmapping segment 0.
func TestRunUnmapSegmentZeroIsFatal(t *testing.T) {
	program := []um.Word{
		loadValueWord(1, 0),
		threeReg(opcode.Unmap, 0, 0, 1),
		threeReg(opcode.Halt, 0, 0, 0),
	}
	m := mustNew(t, program, 0, cpu.IO{})
	if err := m.Run(); !errors.Is(err, segment.ErrUnmapZero) {
		t.Errorf("got: %v want: %v", err, segment.ErrUnmapZero)
	}
}

// Fatal termination: store beyond a segment's length.
func TestRunStoreOutOfRangeIsFatal(t *testing.T) {
	program := []um.Word{
		loadValueWord(1, 1), // length 1
		threeReg(opcode.Map, 0, 2, 1),
		loadValueWord(3, 5), // out of range offset
		loadValueWord(4, 9),
		threeReg(opcode.Store, 2, 3, 4),
		threeReg(opcode.Halt, 0, 0, 0),
	}
	m := mustNew(t, program, 0, cpu.IO{})
	if err := m.Run(); !errors.Is(err, segment.ErrOutOfRange) {
		t.Errorf("got: %v want: %v", err, segment.ErrOutOfRange)
	}
}

// Fatal termination: fetch beyond segment 0's length.
func TestRunPCOutOfRangeIsFatal(t *testing.T) {
	program := []um.Word{threeReg(opcode.Add, 0, 0, 0)}
	m := mustNew(t, program, 0, cpu.IO{})
	m.pc = 99
	if err := m.Run(); !errors.Is(err, ErrPCOutOfRange) {
		t.Errorf("got: %v want: %v", err, ErrPCOutOfRange)
	}
}

// Fatal termination: undefined opcode.
func TestRunUndefinedOpcodeIsFatal(t *testing.T) {
	var w um.Word
	w = bitpack.Newu(w, 4, 28, 13+1) // 14, undefined
	program := []um.Word{w}
	m := mustNew(t, program, 0, cpu.IO{})
	if err := m.Run(); !errors.Is(err, cpu.ErrBadOpcode) {
		t.Errorf("got: %v want: %v", err, cpu.ErrBadOpcode)
	}
}

// Fatal termination: output value of 256 or more.
func TestRunOutputOutOfRangeIsFatal(t *testing.T) {
	program := []um.Word{
		loadValueWord(1, 256),
		threeReg(opcode.Output, 0, 0, 1),
		threeReg(opcode.Halt, 0, 0, 0),
	}
	m := mustNew(t, program, 0, cpu.IO{})
	if err := m.Run(); !errors.Is(err, cpu.ErrOutputRange) {
		t.Errorf("got: %v want: %v", err, cpu.ErrOutputRange)
	}
}

// LIFO reuse at the machine level, driven entirely by Map/Unmap opcodes.
func TestRunMapUnmapLIFOReuse(t *testing.T) {
	program := []um.Word{
		loadValueWord(1, 2),
		threeReg(opcode.Map, 0, 2, 1), // seg 2 -> expect id 1
		loadValueWord(1, 4),
		threeReg(opcode.Map, 0, 3, 1), // seg 3 -> expect id 2
		threeReg(opcode.Unmap, 0, 0, 2),
		threeReg(opcode.Unmap, 0, 0, 3),
		loadValueWord(1, 1),
		threeReg(opcode.Map, 0, 4, 1), // expect reissue of id 2 (most recent free)
		threeReg(opcode.Output, 0, 0, 4),
		threeReg(opcode.Halt, 0, 0, 0),
	}
	var out bytes.Buffer
	m := mustNew(t, program, 0, cpu.IO{Out: &out})
	if err := m.Run(); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	regs := m.Registers()
	if got := regs.Get(4); got != 2 {
		t.Errorf("reissued segment id got: %d want: %d", got, 2)
	}
}

// New must report a resource error, not panic, when the program being
// loaded is already larger than the configured word budget.
func TestNewRejectsProgramOverBudget(t *testing.T) {
	program := []um.Word{
		threeReg(opcode.Halt, 0, 0, 0),
		threeReg(opcode.Halt, 0, 0, 0),
		threeReg(opcode.Halt, 0, 0, 0),
	}
	if _, err := New(program, 2, cpu.IO{}); !errors.Is(err, segment.ErrResourceCap) {
		t.Errorf("got: %v want: %v", err, segment.ErrResourceCap)
	}
}
