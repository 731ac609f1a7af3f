// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package word provides the closed family of fixed-width symbolic machine
// words.  Only the widths 8, 16, 32 and 64 are legal; any other width is
// represented by a payload-free marker which exists solely so that width
// errors can report what was requested.  Operations are lifted over the
// family by dispatching on the width tag, and mixing tags (or operating on
// the payload of an unsupported width) is a fatal internal-consistency
// violation which should have been prevented by upstream type checking.
package word

import (
	"fmt"
	"math/big"

	"github.com/consensys/go-spindle/pkg/sym"
)

// Word is one member of the closed word family: a symbolic payload tagged
// with one of the supported widths, or the payload-free unsupported marker.
// The family is sealed; no variants exist beyond those defined here.
type Word interface {
	// Width returns the tagged width of this word.
	Width() uint
	// Payload returns the symbolic word carried by this tag.  Requesting the
	// payload of an unsupported width panics, since no payload exists.
	Payload() sym.Word
	// String returns the concrete value of this word when statically known,
	// and an opaque width-tagged placeholder otherwise.
	String() string
	// rewrap wraps a new payload in this word's tag, sealing the family.
	rewrap(payload sym.Word) Word
}

// Supported enumerates the legal word widths, in ascending order.
var Supported = [...]uint{8, 16, 32, 64}

// IsSupported checks whether a given width is a member of the closed width
// family.
func IsSupported(width uint) bool {
	for _, w := range Supported {
		if w == width {
			return true
		}
	}
	//
	return false
}

// NewWord constructs a word of the requested width holding a given constant,
// truncating (i.e. wrapping) the value into that width's range.  Requesting
// a width outside the family yields the unsupported marker.
func NewWord(width uint, value *big.Int) Word {
	if !IsSupported(width) {
		return Unsupported{width}
	}
	//
	w, _ := newSupported(width, sym.NewConst(width, value))
	//
	return w
}

// NewVariable constructs a word of the requested width holding a fresh
// symbolic variable, such as an input port declared during code generation.
// Requesting a width outside the family yields the unsupported marker.
func NewVariable(name string, width uint) Word {
	if !IsSupported(width) {
		return Unsupported{width}
	}
	//
	w, _ := newSupported(width, sym.NewVar(name, width))
	//
	return w
}

// Pack assembles a word from an ordered sequence of bits, where the first
// bit is the most significant.  The width of the result is exactly the
// number of bits given; a length outside the family yields the unsupported
// marker (discarding the bits, which the marker cannot carry).
func Pack(bits []sym.Bit) Word {
	width := uint(len(bits))
	//
	if !IsSupported(width) {
		return Unsupported{width}
	}
	//
	w, _ := newSupported(width, sym.NewFromBits(bits))
	//
	return w
}

// Unpack decomposes a word into its ordered sequence of bits, most
// significant first.  This is the exact inverse of Pack for supported
// widths; unpacking the unsupported marker is fatal, since it has no payload
// to decompose.
func Unpack(w Word) []sym.Bit {
	payload := w.Payload()
	bits := make([]sym.Bit, w.Width())
	//
	for i := range bits {
		bits[i] = sym.NewBitOf(payload, uint(i))
	}
	//
	return bits
}

// ============================================================================
// Lifting
// ============================================================================

// LiftUnary lifts an operation over symbolic payloads to an operation over
// the word family, dispatching on the width tag and re-wrapping the result in
// the same tag.  Applying the lifted operation to an unsupported width is
// fatal.
func LiftUnary(fn func(sym.Word) sym.Word) func(Word) Word {
	return func(arg Word) Word {
		return arg.rewrap(fn(arg.Payload()))
	}
}

// LiftBinary lifts a binary operation over symbolic payloads to an operation
// over the word family.  Both operands must carry the same width tag;
// mismatched tags, or either operand being of unsupported width, is a fatal
// size-mismatch error naming both widths.
func LiftBinary(fn func(sym.Word, sym.Word) sym.Word) func(Word, Word) Word {
	return func(lhs Word, rhs Word) Word {
		checkMatchingTags(lhs, rhs)
		//
		return lhs.rewrap(fn(lhs.Payload(), rhs.Payload()))
	}
}

// LiftBinaryPropagate behaves as LiftBinary, except that applying the lifted
// operation to two unsupported words of equal reported width propagates the
// unsupported marker with that width (a best-effort "still don't know how,
// but the widths agree").  Every other unsupported or mismatched combination
// remains fatal.
func LiftBinaryPropagate(fn func(sym.Word, sym.Word) sym.Word) func(Word, Word) Word {
	return func(lhs Word, rhs Word) Word {
		lu, lok := lhs.(Unsupported)
		ru, rok := rhs.(Unsupported)
		//
		if lok && rok && lu.width == ru.width {
			return lu
		}
		//
		checkMatchingTags(lhs, rhs)
		//
		return lhs.rewrap(fn(lhs.Payload(), rhs.Payload()))
	}
}

// LiftShift lifts a shift operation over symbolic payloads to an operation
// over the word family.  Unlike LiftBinary the shift amount may carry any
// supported width tag, and the result takes the tag of the shifted operand.
func LiftShift(fn func(sym.Word, sym.Word) sym.Word) func(Word, Word) Word {
	return func(lhs Word, rhs Word) Word {
		return lhs.rewrap(fn(lhs.Payload(), rhs.Payload()))
	}
}

// LiftCompare lifts a comparison over symbolic payloads to a comparison over
// the word family, producing a symbolic bit.  Both operands must carry the
// same width tag; comparing words of differing widths, or any word of
// unsupported width, is fatal.
func LiftCompare(fn func(sym.Word, sym.Word) sym.Bit) func(Word, Word) sym.Bit {
	return func(lhs Word, rhs Word) sym.Bit {
		checkMatchingTags(lhs, rhs)
		//
		return fn(lhs.Payload(), rhs.Payload())
	}
}

// Mux performs a three-way conditional selection between two words of
// identical width, keyed on a symbolic bit.  Merging two unsupported words
// of equal reported width propagates the marker, exactly as for a
// propagating binary operation.
func Mux(cond sym.Bit, then Word, els Word) Word {
	lift := LiftBinaryPropagate(func(t sym.Word, f sym.Word) sym.Word {
		return sym.NewMux(cond, t, f)
	})
	//
	return lift(then, els)
}

// ============================================================================
// Unsupported widths
// ============================================================================

// Unsupported marks a word whose width lies outside the closed family.  It
// carries no payload; it exists solely so that width errors can report what
// width was requested.
type Unsupported struct {
	width uint
}

var _ Word = Unsupported{}

// Width returns the width that was requested of this word.
func (p Unsupported) Width() uint { return p.width }

// Payload panics, since an unsupported width carries no payload.
func (p Unsupported) Payload() sym.Word {
	panic(fmt.Sprintf("word of unsupported width %d has no payload", p.width))
}

func (p Unsupported) String() string {
	return fmt.Sprintf("<[%d]>", p.width)
}

func (p Unsupported) rewrap(payload sym.Word) Word {
	panic(fmt.Sprintf("cannot construct word of unsupported width %d", p.width))
}

// ============================================================================
// Helpers
// ============================================================================

// Check that two words carry identical, supported width tags; everything
// else is a fatal size mismatch naming both widths.
func checkMatchingTags(lhs Word, rhs Word) {
	_, lok := lhs.(Unsupported)
	_, rok := rhs.(Unsupported)
	//
	if lok || rok || lhs.Width() != rhs.Width() {
		panic(fmt.Sprintf("word size mismatch (%d vs %d)", lhs.Width(), rhs.Width()))
	}
}
