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

// Package machine ties the register file, segment arena, and instruction
// executor together into the Universal Machine's synchronous run loop.
package machine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/bchao-msoto/um32/internal/cpu"
	"github.com/bchao-msoto/um32/internal/segment"
	"github.com/bchao-msoto/um32/internal/um"
)

// ErrPCOutOfRange is returned when the program counter runs off the end of
// segment 0.
var ErrPCOutOfRange = errors.New("machine: program counter out of range")

// Machine owns a register file, a segment arena, and an instruction
// executor, and drives them through one program from segment 0's first
// word until Halt or a fault.
type Machine struct {
	regs um.Registers
	mem  *segment.Arena
	ex   *cpu.Executor
	io   cpu.IO
	pc   um.Word

	// zero caches segment 0's backing slice across iterations; it is
	// invalidated (re-fetched) after any Outcome.Jumped, since only
	// opcode 12 ever replaces segment 0's storage.
	zero []um.Word
}

// New builds a Machine with program loaded into segment 0 and execution
// starting at word 0. maxWords is the arena's Map word budget (see
// segment.New), and the initial program load counts against it; a program
// larger than maxWords is a resource error, not a panic, and is returned as
// such.
func New(program []um.Word, maxWords int, io cpu.IO) (*Machine, error) {
	mem := segment.New(maxWords)
	// Segment 0 is created empty by segment.New; load the program by
	// mapping a fresh segment sized to hold it and duplicating it in.
	id, err := mem.Map(uint32(len(program)))
	if err != nil {
		return nil, fmt.Errorf("machine: loading program: %w", err)
	}
	for i, w := range program {
		_ = mem.Store(id, uint32(i), w)
	}
	_ = mem.DuplicateIntoZero(id)
	_ = mem.Unmap(id)

	m := &Machine{
		mem: mem,
		ex:  cpu.NewExecutor(),
		io:  io,
	}
	m.zero = mem.ZeroWords()
	return m, nil
}

// Run executes instructions until the program halts or faults. A nil
// return means the program executed opcode 7 (Halt); any other return is
// a fatal machine error.
func (m *Machine) Run() error {
	slog.Info("machine started")
	for {
		if int(m.pc) >= len(m.zero) {
			err := fmt.Errorf("%w: pc %d, segment 0 length %d", ErrPCOutOfRange, m.pc, len(m.zero))
			slog.Error("machine faulted", "error", err)
			return err
		}
		word := m.zero[m.pc]

		outcome, err := m.ex.Step(&m.regs, m.mem, m.io, word)
		if err != nil {
			slog.Error("machine faulted", "error", err, "pc", m.pc)
			return err
		}
		if outcome.Halted {
			slog.Info("machine halted", "pc", m.pc)
			return nil
		}
		if outcome.Jumped {
			m.pc = outcome.NewPC
			m.zero = m.mem.ZeroWords()
			continue
		}
		m.pc++
	}
}

// Registers returns a copy of the register file, for tests that need to
// inspect machine state after Run returns.
func (m *Machine) Registers() um.Registers {
	return m.regs
}
