/*
 * UM32 - Universal Machine word and register file
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

// Package um holds the shared Word type and the eight-register file of the
// Universal Machine.
package um

// Word is a 32-bit value, used interchangeably as an instruction and as data.
type Word = uint32

// NumRegisters is the number of general-purpose registers.
const NumRegisters = 8

// Registers is the Universal Machine's eight general-purpose registers.
// The zero value is eight registers initialized to 0, matching spec.
type Registers struct {
	r [NumRegisters]Word
}

// Get returns the value of register i. i must be < NumRegisters.
func (reg *Registers) Get(i uint8) Word {
	return reg.r[i]
}

// Set assigns value to register i. i must be < NumRegisters.
func (reg *Registers) Set(i uint8, value Word) {
	reg.r[i] = value
}
