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
package sym

import (
	"fmt"
)

// Bit is a symbolic boolean.  Like a symbolic word, a bit can report whether
// it is a compile-time constant, and can be evaluated to a concrete boolean
// under an assignment of its free variables.
type Bit interface {
	// AsConstant returns the concrete value of this bit, if it is a
	// compile-time constant.
	AsConstant() (bool, bool)
	// Eval evaluates this bit under a given assignment of its variables.
	Eval(env Assignment) bool
	// String returns a textual representation for diagnostics.
	String() string
}

var (
	bitTrue  Bit = &BitConst{true}
	bitFalse Bit = &BitConst{false}
)

// ============================================================================
// Constant
// ============================================================================

// BitConst represents a compile-time constant bit.
type BitConst struct {
	value bool
}

var _ Bit = (*BitConst)(nil)

// NewBool returns the constant bit for a given boolean.
func NewBool(value bool) Bit {
	if value {
		return bitTrue
	}
	//
	return bitFalse
}

// AsConstant returns the value of this constant.
func (p *BitConst) AsConstant() (bool, bool) { return p.value, true }

// Eval returns the value of this constant.
func (p *BitConst) Eval(env Assignment) bool { return p.value }

func (p *BitConst) String() string {
	if p.value {
		return "true"
	}
	//
	return "false"
}

// ============================================================================
// Negation
// ============================================================================

// BitNot represents the negation of a symbolic bit.
type BitNot struct {
	Arg Bit
}

var _ Bit = (*BitNot)(nil)

// NewBitNot constructs (or folds) the negation of a bit.
func NewBitNot(arg Bit) Bit {
	if c, ok := arg.AsConstant(); ok {
		return NewBool(!c)
	} else if n, ok := arg.(*BitNot); ok {
		// Double negation cancels.
		return n.Arg
	}
	//
	return &BitNot{arg}
}

// AsConstant returns false, since a constant argument was folded at
// construction.
func (p *BitNot) AsConstant() (bool, bool) { return false, false }

// Eval evaluates the argument, then negates it.
func (p *BitNot) Eval(env Assignment) bool { return !p.Arg.Eval(env) }

func (p *BitNot) String() string {
	return fmt.Sprintf("(not %s)", p.Arg)
}

// ============================================================================
// Binary operation
// ============================================================================

// BitBin represents a binary operation applied to two symbolic bits.
type BitBin struct {
	Op  BitOp
	Lhs Bit
	Rhs Bit
}

var _ Bit = (*BitBin)(nil)

// NewBitBin constructs (or folds) a binary operation over two bits.
func NewBitBin(op BitOp, lhs Bit, rhs Bit) Bit {
	// Normalise a constant operand to the left.
	if _, ok := rhs.AsConstant(); ok {
		lhs, rhs = rhs, lhs
	}
	//
	if c, ok := lhs.AsConstant(); ok {
		switch op {
		case BAND:
			if !c {
				return NewBool(false)
			}
			//
			return rhs
		case BOR:
			if c {
				return NewBool(true)
			}
			//
			return rhs
		case BXOR:
			if c {
				return NewBitNot(rhs)
			}
			//
			return rhs
		}
	}
	//
	return &BitBin{op, lhs, rhs}
}

// AsConstant returns false, since constant operands were folded at
// construction.
func (p *BitBin) AsConstant() (bool, bool) { return false, false }

// Eval evaluates both operands, then applies the operation.
func (p *BitBin) Eval(env Assignment) bool {
	lhs, rhs := p.Lhs.Eval(env), p.Rhs.Eval(env)
	//
	switch p.Op {
	case BAND:
		return lhs && rhs
	case BOR:
		return lhs || rhs
	case BXOR:
		return lhs != rhs
	default:
		panic(fmt.Sprintf("unknown operation %s", p.Op))
	}
}

func (p *BitBin) String() string {
	return fmt.Sprintf("(%s %s %s)", p.Op, p.Lhs, p.Rhs)
}

// ============================================================================
// Word comparison
// ============================================================================

// Cmp represents a comparison of two symbolic words of identical width.
type Cmp struct {
	Op  CmpOp
	Lhs Word
	Rhs Word
}

var _ Bit = (*Cmp)(nil)

// NewCmp constructs (or folds) a comparison over two words.  Operands of
// unequal width indicate an upstream typing bug and result in a panic.
func NewCmp(op CmpOp, lhs Word, rhs Word) Bit {
	if lhs.Width() != rhs.Width() {
		panic(fmt.Sprintf("incompatible widths for %s (%d vs %d)", op, lhs.Width(), rhs.Width()))
	}
	//
	lc, rc := lhs.AsConstant(), rhs.AsConstant()
	// Fold constant operands.
	if lc != nil && rc != nil {
		return NewBool(applyCmp(op, lc.Cmp(rc)))
	}
	// Identical terms compare as equal.
	if lhs == rhs {
		return NewBool(applyCmp(op, 0))
	}
	//
	return &Cmp{op, lhs, rhs}
}

// AsConstant returns false, since constant operands were folded at
// construction.
func (p *Cmp) AsConstant() (bool, bool) { return false, false }

// Eval evaluates both operands, then compares them.
func (p *Cmp) Eval(env Assignment) bool {
	return applyCmp(p.Op, p.Lhs.Eval(env).Cmp(p.Rhs.Eval(env)))
}

func (p *Cmp) String() string {
	return fmt.Sprintf("(%s %s %s)", p.Op, p.Lhs, p.Rhs)
}

// ============================================================================
// Multiplexer
// ============================================================================

// BitMux represents a three-way conditional selection between two bits,
// keyed on a symbolic bit.
type BitMux struct {
	Cond Bit
	Then Bit
	Else Bit
}

var _ Bit = (*BitMux)(nil)

// NewBitMux constructs (or folds) a conditional selection between two bits.
// A constant condition selects the corresponding branch outright.
func NewBitMux(cond Bit, then Bit, els Bit) Bit {
	if c, ok := cond.AsConstant(); ok {
		if c {
			return then
		}
		//
		return els
	} else if then == els {
		return then
	}
	//
	return &BitMux{cond, then, els}
}

// AsConstant returns false, since a constant condition was folded at
// construction.
func (p *BitMux) AsConstant() (bool, bool) { return false, false }

// Eval evaluates the condition, then the selected branch.
func (p *BitMux) Eval(env Assignment) bool {
	if p.Cond.Eval(env) {
		return p.Then.Eval(env)
	}
	//
	return p.Else.Eval(env)
}

func (p *BitMux) String() string {
	return fmt.Sprintf("(ite %s %s %s)", p.Cond, p.Then, p.Else)
}

// ============================================================================
// Bit extraction
// ============================================================================

// BitOf represents the extraction of a single bit from a symbolic word.  The
// index counts from the most significant end, consistent with the big-endian
// assembly of FromBits.
type BitOf struct {
	Arg Word
	// Index of the extracted bit, where index zero denotes the most
	// significant bit.
	Index uint
}

var _ Bit = (*BitOf)(nil)

// NewBitOf constructs (or folds) the extraction of a given bit from a word.
// An out-of-range index indicates an upstream typing bug and results in a
// panic.
func NewBitOf(arg Word, index uint) Bit {
	if index >= arg.Width() {
		panic(fmt.Sprintf("bit index %d out of range for width %d", index, arg.Width()))
	}
	//
	if c := arg.AsConstant(); c != nil {
		// Convert into a little-endian bit position.
		return NewBool(c.Bit(int(arg.Width()-1-index)) == 1)
	} else if w, ok := arg.(*FromBits); ok {
		return w.Bits[index]
	}
	//
	return &BitOf{arg, index}
}

// AsConstant returns false, since a constant argument was folded at
// construction.
func (p *BitOf) AsConstant() (bool, bool) { return false, false }

// Eval evaluates the argument, then extracts the bit.
func (p *BitOf) Eval(env Assignment) bool {
	value := p.Arg.Eval(env)
	//
	return value.Bit(int(p.Arg.Width()-1-p.Index)) == 1
}

func (p *BitOf) String() string {
	return fmt.Sprintf("(bit %s %d)", p.Arg, p.Index)
}

// ============================================================================
// Helpers
// ============================================================================

// Apply a given comparison to the three-way result of comparing two concrete
// operand values.
func applyCmp(op CmpOp, sign int) bool {
	switch op {
	case EQ:
		return sign == 0
	case NE:
		return sign != 0
	case LT:
		return sign < 0
	case LE:
		return sign <= 0
	default:
		panic(fmt.Sprintf("unknown comparison %s", op))
	}
}
