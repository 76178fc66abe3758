/*
 * UM32 - Universal Machine opcode definitions
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

// Package opcode names the 14 Universal Machine opcodes and their operand shape.
package opcode

const (
	CMov        uint8 = 0  // Conditional Move: if R[C] != 0 then R[A] = R[B]
	Load        uint8 = 1  // Segmented Load: R[A] = M[R[B]][R[C]]
	Store       uint8 = 2  // Segmented Store: M[R[A]][R[B]] = R[C]
	Add         uint8 = 3  // R[A] = (R[B] + R[C]) mod 2^32
	Mul         uint8 = 4  // R[A] = (R[B] * R[C]) mod 2^32
	Div         uint8 = 5  // R[A] = R[B] / R[C]
	Nand        uint8 = 6  // R[A] = ^(R[B] & R[C])
	Halt        uint8 = 7  // terminate normally
	Map         uint8 = 8  // R[B] = id of newly mapped segment of R[C] words
	Unmap       uint8 = 9  // unmap segment R[C]
	Output      uint8 = 10 // write low byte of R[C]
	Input       uint8 = 11 // R[C] = next input byte, or 0xFFFFFFFF on EOF
	LoadProgram uint8 = 12 // replace segment 0 with segment R[B]; pc = R[C]
	LoadValue   uint8 = 13 // R[A] = 25-bit immediate

	// Count is one past the highest valid opcode; 14 and 15 are undefined.
	Count uint8 = 14
)

// ThreeRegister reports whether op uses the three-register instruction
// shape (A, B, C fields) as opposed to the load-value shape.
func ThreeRegister(op uint8) bool {
	return op != LoadValue && op < Count
}
