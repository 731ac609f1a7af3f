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

// Package sym provides symbolic bits and symbolic machine words of a fixed
// bit width.  A symbolic term stands for a set of possible concrete values,
// and is manipulated as an expression graph rather than being forced to one
// concrete outcome.  Terms are immutable; constructors apply constant folding
// where both operands are known, and otherwise build a new node.  Sharing of
// subterms is permitted (the graph is a DAG) which downstream emitters
// exploit for common subexpression elimination.
package sym

import (
	"fmt"
	"math/big"
)

// Op identifies a binary operation over two symbolic words of identical
// width.  Division and remainder follow signed two's complement semantics
// with truncation towards zero.  Shifts are logical, and (unlike the other
// operations) permit a shift amount of any width.
type Op int

// Binary word operations.
const (
	ADD Op = iota
	SUB
	MUL
	DIV
	REM
	AND
	OR
	XOR
	SHL
	SHR
)

var opNames = [...]string{
	ADD: "add",
	SUB: "sub",
	MUL: "mul",
	DIV: "sdiv",
	REM: "srem",
	AND: "and",
	OR:  "or",
	XOR: "xor",
	SHL: "shl",
	SHR: "shr",
}

// String returns the name of this operation.
func (op Op) String() string {
	if op >= 0 && int(op) < len(opNames) {
		return opNames[op]
	}
	//
	return fmt.Sprintf("op<%d>", op)
}

// CmpOp identifies a comparison of two symbolic words of identical width,
// producing a symbolic bit.  Order comparisons are unsigned.
type CmpOp int

// Word comparisons.  Greater-than forms are normalised away by swapping
// operands during construction.
const (
	EQ CmpOp = iota
	NE
	LT
	LE
)

var cmpNames = [...]string{
	EQ: "eq",
	NE: "ne",
	LT: "ult",
	LE: "ule",
}

// String returns the name of this comparison.
func (op CmpOp) String() string {
	if op >= 0 && int(op) < len(cmpNames) {
		return cmpNames[op]
	}
	//
	return fmt.Sprintf("cmp<%d>", op)
}

// BitOp identifies a binary operation over two symbolic bits.
type BitOp int

// Binary bit operations.
const (
	BAND BitOp = iota
	BOR
	BXOR
)

var bitOpNames = [...]string{
	BAND: "and",
	BOR:  "or",
	BXOR: "xor",
}

// String returns the name of this operation.
func (op BitOp) String() string {
	if op >= 0 && int(op) < len(bitOpNames) {
		return bitOpNames[op]
	}
	//
	return fmt.Sprintf("bitop<%d>", op)
}

// Assignment maps variable names to concrete values, allowing a symbolic term
// to be evaluated to a single concrete outcome.  Missing assignments indicate
// a caller bug and cause a panic during evaluation.
type Assignment map[string]*big.Int

// Get returns the concrete value assigned to a given variable.
func (p Assignment) Get(name string) *big.Int {
	if v, ok := p[name]; ok {
		return v
	}
	//
	panic(fmt.Sprintf("variable %s has no assignment", name))
}

// ============================================================================
// Helpers
// ============================================================================

// Truncate a given (possibly negative) integer into the unsigned
// representation of a given bit width.
func truncate(value *big.Int, width uint) *big.Int {
	var modulus big.Int
	// Compute 2^width
	modulus.Lsh(big.NewInt(1), width)
	// Wrap into range (Mod is Euclidean, hence never negative)
	var r big.Int
	//
	r.Mod(value, &modulus)
	//
	return &r
}

// Reinterpret the unsigned representation of a given bit width as a signed
// two's complement integer.
func signed(value *big.Int, width uint) *big.Int {
	var bound big.Int
	// Compute 2^(width-1)
	bound.Lsh(big.NewInt(1), width-1)
	//
	if value.Cmp(&bound) >= 0 {
		var modulus big.Int
		//
		modulus.Lsh(big.NewInt(1), width)
		//
		return new(big.Int).Sub(value, &modulus)
	}
	//
	return new(big.Int).Set(value)
}
