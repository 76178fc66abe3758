/*
 * UM32 - Bit field extraction and insertion for 32-bit instruction words
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

// Package bitpack extracts and inserts unsigned bit fields in a 32-bit word.
package bitpack

// Getu returns the width-bit unsigned field starting at lsb (bit 0 is
// least significant). Requires width <= 32 and width+lsb <= 32.
func Getu(word uint32, width, lsb uint) uint32 {
	if width == 0 {
		return 0
	}
	return (word >> lsb) & ((1 << width) - 1)
}

// Newu returns word with its width-bit field at lsb replaced by value.
// Only used by test authoring helpers; the fetch/execute path only reads
// fields with Getu.
func Newu(word uint32, width, lsb uint, value uint32) uint32 {
	mask := uint32((1 << width) - 1)
	word &^= mask << lsb
	return word | ((value & mask) << lsb)
}
