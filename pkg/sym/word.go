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
	"math/big"
	"strings"
)

// Word is a symbolic machine word of a fixed bit width.  Every word knows its
// width, can report whether it is a compile-time constant, and can be
// evaluated to a concrete value under an assignment of its free variables.
type Word interface {
	// Width returns the bit width of this word.
	Width() uint
	// AsConstant returns the concrete (unsigned) value of this word, or nil
	// if the word is not a compile-time constant.
	AsConstant() *big.Int
	// Eval evaluates this word under a given assignment of its variables,
	// producing the unsigned representation of the result.
	Eval(env Assignment) *big.Int
	// String returns a textual representation for diagnostics.
	String() string
}

// ============================================================================
// Constant
// ============================================================================

// Const represents a compile-time constant word.  The value held is always
// the unsigned representation, truncated into the width.
type Const struct {
	value *big.Int
	width uint
}

var _ Word = (*Const)(nil)

// NewConst constructs a constant word of a given width, truncating (i.e.
// wrapping) the given value into that width's range.  Negative values are
// wrapped into their two's complement representation.
func NewConst(width uint, value *big.Int) *Const {
	return &Const{truncate(value, width), width}
}

// NewConst64 constructs a constant word of a given width from a machine
// integer.
func NewConst64(width uint, value uint64) *Const {
	return NewConst(width, new(big.Int).SetUint64(value))
}

// Width returns the bit width of this word.
func (p *Const) Width() uint { return p.width }

// AsConstant returns the value of this constant.
func (p *Const) AsConstant() *big.Int { return p.value }

// Eval returns the value of this constant.
func (p *Const) Eval(env Assignment) *big.Int { return p.value }

func (p *Const) String() string { return p.value.String() }

// ============================================================================
// Variable
// ============================================================================

// Var represents a named symbolic variable, such as an input port declared
// during code generation.
type Var struct {
	// Name of this variable.
	Name  string
	width uint
}

var _ Word = (*Var)(nil)

// NewVar constructs a fresh symbolic variable of a given width.
func NewVar(name string, width uint) *Var {
	return &Var{name, width}
}

// Width returns the bit width of this word.
func (p *Var) Width() uint { return p.width }

// AsConstant returns nil, since a variable is never constant.
func (p *Var) AsConstant() *big.Int { return nil }

// Eval looks up the assignment of this variable, truncating it into range.
func (p *Var) Eval(env Assignment) *big.Int {
	return truncate(env.Get(p.Name), p.width)
}

func (p *Var) String() string { return p.Name }

// ============================================================================
// Binary operation
// ============================================================================

// Bin represents a binary operation applied to two symbolic words.  Both
// operands have the same width, except for shifts where the shift amount may
// have any width.
type Bin struct {
	Op  Op
	Lhs Word
	Rhs Word
}

var _ Word = (*Bin)(nil)

// NewBin constructs (or folds) a binary operation over two words.  Operands
// of unequal width (shifts aside) indicate an upstream typing bug and result
// in a panic.  When both operands are constant the operation is folded to a
// constant; a handful of algebraic identities are also applied.
func NewBin(op Op, lhs Word, rhs Word) Word {
	if op != SHL && op != SHR && lhs.Width() != rhs.Width() {
		panic(fmt.Sprintf("incompatible widths for %s (%d vs %d)", op, lhs.Width(), rhs.Width()))
	}
	//
	width := lhs.Width()
	lc, rc := lhs.AsConstant(), rhs.AsConstant()
	// Fold constant operands.
	if lc != nil && rc != nil {
		return NewConst(width, applyOp(op, width, lc, rc))
	}
	// Apply cheap identities.
	if w := foldIdentity(op, width, lhs, rhs, lc, rc); w != nil {
		return w
	}
	//
	return &Bin{op, lhs, rhs}
}

// Width returns the bit width of this word.
func (p *Bin) Width() uint { return p.Lhs.Width() }

// AsConstant returns nil, since constant operands were folded at
// construction.
func (p *Bin) AsConstant() *big.Int { return nil }

// Eval evaluates both operands, then applies the operation.
func (p *Bin) Eval(env Assignment) *big.Int {
	return applyOp(p.Op, p.Width(), p.Lhs.Eval(env), p.Rhs.Eval(env))
}

func (p *Bin) String() string {
	return fmt.Sprintf("(%s %s %s)", p.Op, p.Lhs, p.Rhs)
}

// ============================================================================
// Complement
// ============================================================================

// Not represents the bitwise complement of a symbolic word.
type Not struct {
	Arg Word
}

var _ Word = (*Not)(nil)

// NewNot constructs (or folds) the bitwise complement of a word.
func NewNot(arg Word) Word {
	if c := arg.AsConstant(); c != nil {
		return NewConst(arg.Width(), new(big.Int).Sub(allOnes(arg.Width()), c))
	} else if n, ok := arg.(*Not); ok {
		// Double complement cancels.
		return n.Arg
	}
	//
	return &Not{arg}
}

// NewNeg constructs the arithmetic negation of a word (i.e. its two's
// complement).
func NewNeg(arg Word) Word {
	zero := NewConst64(arg.Width(), 0)
	//
	return NewBin(SUB, zero, arg)
}

// Width returns the bit width of this word.
func (p *Not) Width() uint { return p.Arg.Width() }

// AsConstant returns nil, since a constant argument was folded at
// construction.
func (p *Not) AsConstant() *big.Int { return nil }

// Eval evaluates the argument, then complements it.
func (p *Not) Eval(env Assignment) *big.Int {
	return new(big.Int).Sub(allOnes(p.Width()), p.Arg.Eval(env))
}

func (p *Not) String() string {
	return fmt.Sprintf("(not %s)", p.Arg)
}

// ============================================================================
// Multiplexer
// ============================================================================

// Mux represents a three-way conditional selection between two words of equal
// width, keyed on a symbolic bit.  This is the merge point for symbolic
// control flow.
type Mux struct {
	Cond Bit
	Then Word
	Else Word
}

var _ Word = (*Mux)(nil)

// NewMux constructs (or folds) a conditional selection between two words.  A
// constant condition selects the corresponding branch outright.
func NewMux(cond Bit, then Word, els Word) Word {
	if then.Width() != els.Width() {
		panic(fmt.Sprintf("incompatible widths for mux (%d vs %d)", then.Width(), els.Width()))
	} else if c, ok := cond.AsConstant(); ok {
		if c {
			return then
		}
		//
		return els
	} else if then == els {
		return then
	}
	//
	return &Mux{cond, then, els}
}

// Width returns the bit width of this word.
func (p *Mux) Width() uint { return p.Then.Width() }

// AsConstant returns nil, since a constant condition was folded at
// construction.
func (p *Mux) AsConstant() *big.Int { return nil }

// Eval evaluates the condition, then the selected branch.
func (p *Mux) Eval(env Assignment) *big.Int {
	if p.Cond.Eval(env) {
		return p.Then.Eval(env)
	}
	//
	return p.Else.Eval(env)
}

func (p *Mux) String() string {
	return fmt.Sprintf("(ite %s %s %s)", p.Cond, p.Then, p.Else)
}

// ============================================================================
// Bit assembly
// ============================================================================

// FromBits represents a word assembled from individual symbolic bits, given
// in big-endian order (i.e. the first bit is the most significant).
type FromBits struct {
	Bits []Bit
}

var _ Word = (*FromBits)(nil)

// NewFromBits assembles a word from a big-endian sequence of bits.  The width
// of the resulting word is exactly the number of bits given.  When all bits
// are constant the result folds to a constant; reassembling the bits of an
// existing word yields that word back.
func NewFromBits(bits []Bit) Word {
	width := uint(len(bits))
	// Fold all-constant bits.
	value := big.NewInt(0)
	constant := true
	//
	for _, b := range bits {
		value.Lsh(value, 1)
		//
		if c, ok := b.AsConstant(); !ok {
			constant = false
			break
		} else if c {
			value.SetBit(value, 0, 1)
		}
	}
	//
	if constant {
		return NewConst(width, value)
	}
	// Fold exact reassembly of an existing word.
	if w := foldReassembly(bits); w != nil {
		return w
	}
	//
	bits = append([]Bit{}, bits...)
	//
	return &FromBits{bits}
}

// Width returns the bit width of this word.
func (p *FromBits) Width() uint { return uint(len(p.Bits)) }

// AsConstant returns nil, since all-constant bits were folded at
// construction.
func (p *FromBits) AsConstant() *big.Int { return nil }

// Eval evaluates each bit, assembling the result in big-endian order.
func (p *FromBits) Eval(env Assignment) *big.Int {
	value := big.NewInt(0)
	//
	for _, b := range p.Bits {
		value.Lsh(value, 1)
		//
		if b.Eval(env) {
			value.SetBit(value, 0, 1)
		}
	}
	//
	return value
}

func (p *FromBits) String() string {
	var builder strings.Builder
	//
	builder.WriteString("(bits")
	//
	for _, b := range p.Bits {
		builder.WriteString(" ")
		builder.WriteString(b.String())
	}
	//
	builder.WriteString(")")
	//
	return builder.String()
}

// ============================================================================
// Helpers
// ============================================================================

// Apply a given binary operation to two concrete (unsigned) operand values,
// producing the unsigned representation of the result.
func applyOp(op Op, width uint, lhs *big.Int, rhs *big.Int) *big.Int {
	var result big.Int
	//
	switch op {
	case ADD:
		result.Add(lhs, rhs)
	case SUB:
		result.Sub(lhs, rhs)
	case MUL:
		result.Mul(lhs, rhs)
	case DIV, REM:
		if rhs.Sign() == 0 {
			panic("division by zero")
		}
		// Reinterpret as signed, truncating towards zero.
		if op == DIV {
			result.Quo(signed(lhs, width), signed(rhs, width))
		} else {
			result.Rem(signed(lhs, width), signed(rhs, width))
		}
	case AND:
		result.And(lhs, rhs)
	case OR:
		result.Or(lhs, rhs)
	case XOR:
		result.Xor(lhs, rhs)
	case SHL, SHR:
		// Shifting by the width (or more) always yields zero.
		if rhs.IsUint64() && rhs.Uint64() < uint64(width) {
			if op == SHL {
				result.Lsh(lhs, uint(rhs.Uint64()))
			} else {
				result.Rsh(lhs, uint(rhs.Uint64()))
			}
		}
	default:
		panic(fmt.Sprintf("unknown operation %s", op))
	}
	//
	return truncate(&result, width)
}

// Attempt to fold a binary operation where exactly one operand is a constant,
// returning nil if no identity applies.
func foldIdentity(op Op, width uint, lhs Word, rhs Word, lc *big.Int, rc *big.Int) Word {
	switch op {
	case ADD, OR, XOR:
		// x op 0 == x (and symmetrically)
		if rc != nil && rc.Sign() == 0 {
			return lhs
		} else if lc != nil && lc.Sign() == 0 {
			return rhs
		}
	case SUB, SHL, SHR:
		if rc != nil && rc.Sign() == 0 {
			return lhs
		}
	case MUL:
		if rc != nil {
			lhs, rhs, lc, rc = rhs, lhs, rc, lc
		}
		//
		if lc != nil && lc.Sign() == 0 {
			return NewConst64(width, 0)
		} else if lc != nil && lc.Cmp(big.NewInt(1)) == 0 {
			return rhs
		}
	case AND:
		if rc != nil {
			lhs, rhs, lc, rc = rhs, lhs, rc, lc
		}
		//
		if lc != nil && lc.Sign() == 0 {
			return NewConst64(width, 0)
		} else if lc != nil && lc.Cmp(allOnes(width)) == 0 {
			return rhs
		}
	case DIV:
		if rc != nil && rc.Cmp(big.NewInt(1)) == 0 {
			return lhs
		}
	}
	//
	return nil
}

// Attempt to fold the reassembly of successive bits of one underlying word
// back into that word, returning nil if the bits do not line up.
func foldReassembly(bits []Bit) Word {
	first, ok := bits[0].(*BitOf)
	//
	if !ok || first.Index != 0 || first.Arg.Width() != uint(len(bits)) {
		return nil
	}
	//
	for i, b := range bits {
		if bit, ok := b.(*BitOf); !ok || bit.Arg != first.Arg || bit.Index != uint(i) {
			return nil
		}
	}
	//
	return first.Arg
}

// Construct the all-ones value for a given bit width.
func allOnes(width uint) *big.Int {
	var v big.Int
	//
	v.Lsh(big.NewInt(1), width)
	//
	return v.Sub(&v, big.NewInt(1))
}
