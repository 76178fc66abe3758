/*
 * UM32  - Segment memory
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

// Package segment implements the Universal Machine's segmented memory: an
// indexed collection of variable-length word arrays with map, unmap, load,
// store, and whole-segment duplication primitives.
package segment

import (
	"errors"
	"fmt"

	"github.com/bchao-msoto/um32/internal/um"
)

// Sentinel errors, matching the taxonomy of addressing and resource errors.
var (
	ErrNotMapped   = errors.New("segment: not mapped")
	ErrOutOfRange  = errors.New("segment: offset out of range")
	ErrUnmapZero   = errors.New("segment: cannot unmap segment 0")
	ErrResourceCap = errors.New("segment: arena word budget exceeded")
)

type slot struct {
	words  []um.Word
	mapped bool
}

// Arena is the Universal Machine's segment memory. The zero value is not
// ready to use; construct one with New.
type Arena struct {
	slots    []slot
	freeIDs  []uint32 // LIFO stack of unmapped, reusable segment ids
	maxWords int      // resource guard; 0 means unlimited
	words    int      // total words currently allocated across live segments
}

// New returns an Arena with segment 0 mapped and empty (length 0). maxWords
// bounds the total number of live words the arena will allocate via Map; 0
// means no limit.
func New(maxWords int) *Arena {
	a := &Arena{maxWords: maxWords}
	a.slots = append(a.slots, slot{words: []um.Word{}, mapped: true})
	return a
}

// Length returns the number of words in segment id, or an error if id is
// not currently mapped.
func (a *Arena) Length(id uint32) (int, error) {
	s, err := a.mapped(id)
	if err != nil {
		return 0, err
	}
	return len(s.words), nil
}

// Load returns the word at segment id, offset off.
func (a *Arena) Load(id, off uint32) (um.Word, error) {
	s, err := a.mapped(id)
	if err != nil {
		return 0, err
	}
	if off >= uint32(len(s.words)) {
		return 0, fmt.Errorf("%w: segment %d offset %d length %d", ErrOutOfRange, id, off, len(s.words))
	}
	return s.words[off], nil
}

// Store writes value into segment id at offset off.
func (a *Arena) Store(id, off uint32, value um.Word) error {
	s, err := a.mappedPtr(id)
	if err != nil {
		return err
	}
	if off >= uint32(len(s.words)) {
		return fmt.Errorf("%w: segment %d offset %d length %d", ErrOutOfRange, id, off, len(s.words))
	}
	s.words[off] = value
	return nil
}

// Map creates a new segment of length words, all zero-initialized, and
// returns its assigned id. A previously unmapped id is reused (LIFO) if
// one is available; otherwise a new slot is appended.
func (a *Arena) Map(length uint32) (uint32, error) {
	if a.maxWords != 0 && a.words+int(length) > a.maxWords {
		return 0, fmt.Errorf("%w: requested %d, in use %d, budget %d", ErrResourceCap, length, a.words, a.maxWords)
	}

	words := make([]um.Word, length)

	if n := len(a.freeIDs); n > 0 {
		id := a.freeIDs[n-1]
		a.freeIDs = a.freeIDs[:n-1]
		a.slots[id] = slot{words: words, mapped: true}
		a.words += int(length)
		return id, nil
	}

	id := uint32(len(a.slots))
	a.slots = append(a.slots, slot{words: words, mapped: true})
	a.words += int(length)
	return id, nil
}

// Unmap releases segment id, making its identifier eligible for reuse by a
// later Map. Segment 0 can never be unmapped.
func (a *Arena) Unmap(id uint32) error {
	if id == 0 {
		return ErrUnmapZero
	}
	s, err := a.mappedPtr(id)
	if err != nil {
		return err
	}
	a.words -= len(s.words)
	s.words = nil
	s.mapped = false
	a.freeIDs = append(a.freeIDs, id)
	return nil
}

// DuplicateIntoZero replaces segment 0 with a deep copy of segment id's
// current contents, releasing segment 0's previous storage.
func (a *Arena) DuplicateIntoZero(id uint32) error {
	s, err := a.mapped(id)
	if err != nil {
		return err
	}
	cp := make([]um.Word, len(s.words))
	copy(cp, s.words)

	a.words -= len(a.slots[0].words)
	a.words += len(cp)
	a.slots[0] = slot{words: cp, mapped: true}
	return nil
}

// ZeroWords returns a read-only view of segment 0's backing array, for the
// fetch loop to cache between Load Program instructions. The returned
// slice must be treated as invalidated the moment a Map, Unmap, or
// DuplicateIntoZero call touches segment 0.
func (a *Arena) ZeroWords() []um.Word {
	return a.slots[0].words
}

func (a *Arena) mapped(id uint32) (slot, error) {
	if id >= uint32(len(a.slots)) || !a.slots[id].mapped {
		return slot{}, fmt.Errorf("%w: segment %d", ErrNotMapped, id)
	}
	return a.slots[id], nil
}

func (a *Arena) mappedPtr(id uint32) (*slot, error) {
	if id >= uint32(len(a.slots)) || !a.slots[id].mapped {
		return nil, fmt.Errorf("%w: segment %d", ErrNotMapped, id)
	}
	return &a.slots[id], nil
}
