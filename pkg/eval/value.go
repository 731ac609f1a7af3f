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

// Package eval provides the generic expression evaluator, along with the
// standard operations backend which evaluates expressions to symbolic values
// over the fixed-width word family.  Values are produced only by the
// evaluator and are immutable thereafter.
package eval

import (
	"github.com/consensys/go-spindle/pkg/spindle/ast"
	"github.com/consensys/go-spindle/pkg/sym"
	"github.com/consensys/go-spindle/pkg/word"
)

// Value represents a runtime value.  The set of variants is closed: boolean
// bits, fixed-width words, finite and unbounded sequences, tuples, records,
// functions, and values still abstracted over a type parameter.
type Value interface {
	// String returns the default rendering of this value, showing at most
	// DefaultDisplayLength elements of any unbounded sequence.
	String() string
}

// ============================================================================
// Bit
// ============================================================================

// Bit is a (possibly symbolic) boolean value.
type Bit struct {
	Term sym.Bit
}

var _ Value = &Bit{}

// NewBit wraps a symbolic boolean as a value.
func NewBit(term sym.Bit) *Bit {
	return &Bit{term}
}

// NewBool constructs a concrete boolean value.
func NewBool(value bool) *Bit {
	return &Bit{sym.NewBool(value)}
}

func (p *Bit) String() string {
	return Render(p, DefaultDisplayLength)
}

// ============================================================================
// Word
// ============================================================================

// Word is a fixed-width (possibly symbolic) machine word.
type Word struct {
	Term word.Word
}

var _ Value = &Word{}

// NewWord wraps a tagged word as a value.
func NewWord(term word.Word) *Word {
	return &Word{term}
}

func (p *Word) String() string {
	return Render(p, DefaultDisplayLength)
}

// ============================================================================
// List
// ============================================================================

// List is a finite ordered sequence of values.
type List struct {
	Items []Value
}

var _ Value = &List{}

// NewList constructs a finite sequence value.
func NewList(items []Value) *List {
	return &List{items}
}

func (p *List) String() string {
	return Render(p, DefaultDisplayLength)
}

// ============================================================================
// Stream
// ============================================================================

// Stream is an unbounded sequence of values.  Elements are computed on
// demand from the underlying generator, and the sequence is never
// materialised in full.
type Stream struct {
	generator func(uint) Value
}

var _ Value = &Stream{}

// NewStream constructs an unbounded sequence from a generator giving the
// element at each position.
func NewStream(generator func(uint) Value) *Stream {
	return &Stream{generator}
}

// Get returns the element at a given position of this stream.
func (p *Stream) Get(index uint) Value {
	return p.generator(index)
}

func (p *Stream) String() string {
	return Render(p, DefaultDisplayLength)
}

// ============================================================================
// Tuple
// ============================================================================

// Tuple is a heterogeneous tuple of values.
type Tuple struct {
	Items []Value
}

var _ Value = &Tuple{}

// NewTuple constructs a tuple value.
func NewTuple(items []Value) *Tuple {
	return &Tuple{items}
}

func (p *Tuple) String() string {
	return Render(p, DefaultDisplayLength)
}

// ============================================================================
// Record
// ============================================================================

// ValueField is a single named field of a record value.
type ValueField struct {
	Name  string
	Value Value
}

// Record is a record of named values.  Field order is retained for display,
// whilst field identity is by name.
type Record struct {
	Fields []ValueField
}

var _ Value = &Record{}

// NewRecord constructs a record value.
func NewRecord(fields []ValueField) *Record {
	return &Record{fields}
}

// Lookup returns the value of a given field, if present.
func (p *Record) Lookup(name string) (Value, bool) {
	for _, f := range p.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	//
	return nil, false
}

func (p *Record) String() string {
	return Render(p, DefaultDisplayLength)
}

// ============================================================================
// Function
// ============================================================================

// Func is a function value.  Its internals are opaque; the only available
// observation is application to an argument.
type Func struct {
	fn func(Value) Value
}

var _ Value = &Func{}

// NewFunc constructs a function value.
func NewFunc(fn func(Value) Value) *Func {
	return &Func{fn}
}

// Apply this function to a given argument.
func (p *Func) Apply(argument Value) Value {
	return p.fn(argument)
}

func (p *Func) String() string {
	return Render(p, DefaultDisplayLength)
}

// ============================================================================
// Polymorphic Value
// ============================================================================

// Poly is a value still abstracted over a type parameter, which must be
// supplied before evaluation can continue.
type Poly struct {
	fn func(ast.Type) Value
}

var _ Value = &Poly{}

// NewPoly constructs a polymorphic value.
func NewPoly(fn func(ast.Type) Value) *Poly {
	return &Poly{fn}
}

// Instantiate this value at a given type.
func (p *Poly) Instantiate(t ast.Type) Value {
	return p.fn(t)
}

func (p *Poly) String() string {
	return Render(p, DefaultDisplayLength)
}
