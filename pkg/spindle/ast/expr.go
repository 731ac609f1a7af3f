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
package ast

import (
	"math/big"
	"strconv"

	"github.com/consensys/go-spindle/pkg/util/source/sexp"
)

// Expr represents an expression of the core language.  The parser produces
// expressions containing raw literals and unresolved variables; elaboration
// resolves variables against their defining scope, rewrites literals into
// demotion operators, and inserts explicit type abstraction and application
// around polymorphic definitions.  The evaluator accepts only elaborated
// expressions.
type Expr interface {
	// Lisp returns a textual rendering of this expression suitable for
	// debugging output.
	Lisp() sexp.SExp
}

// ============================================================================
// Variable
// ============================================================================

// Var is a reference to a bound name, either a local (lambda or let bound)
// or, after resolution, the qualified name of a top-level declaration.
type Var struct {
	Name string
}

var _ Expr = &Var{}

// Lisp implementation for Expr interface.
func (p *Var) Lisp() sexp.SExp {
	return sexp.NewSymbol(p.Name)
}

// ============================================================================
// Primitive
// ============================================================================

// Prim is a reference to a primitive operator.  Which operators exist, and
// what they do, is determined entirely by the operator table the evaluator is
// constructed with.
type Prim struct {
	Name string
}

var _ Expr = &Prim{}

// Lisp implementation for Expr interface.
func (p *Prim) Lisp() sexp.SExp {
	return sexp.NewSymbol(p.Name)
}

// ============================================================================
// Literal
// ============================================================================

// Lit is a raw numeric literal as written in the source.  Its width is
// unknown until the checker has seen it, so elaboration replaces every
// literal with a demotion applied at an explicit type; a literal surviving
// into evaluation indicates a malfunction upstream.
type Lit struct {
	Value *big.Int
}

var _ Expr = &Lit{}

// Lisp implementation for Expr interface.
func (p *Lit) Lisp() sexp.SExp {
	return sexp.NewSymbol(p.Value.String())
}

// ============================================================================
// Application
// ============================================================================

// App applies a function to a single argument.  Multi-argument applications
// are curried chains.
type App struct {
	Fn  Expr
	Arg Expr
}

var _ Expr = &App{}

// Lisp implementation for Expr interface.
func (p *App) Lisp() sexp.SExp {
	return sexp.NewList([]sexp.SExp{p.Fn.Lisp(), p.Arg.Lisp()})
}

// ============================================================================
// Abstraction
// ============================================================================

// Abs is a function of one parameter.  Multi-parameter functions are curried
// chains.
type Abs struct {
	Param string
	Body  Expr
}

var _ Expr = &Abs{}

// Lisp implementation for Expr interface.
func (p *Abs) Lisp() sexp.SExp {
	return sexp.NewList([]sexp.SExp{
		sexp.NewSymbol("fun"), sexp.NewSymbol(p.Param), p.Body.Lisp()})
}

// ============================================================================
// Type Abstraction
// ============================================================================

// TAbs abstracts an expression over a type variable.  Elaboration wraps the
// body of every polymorphic declaration in one type abstraction per
// quantified variable of its scheme.
type TAbs struct {
	Param string
	Body  Expr
}

var _ Expr = &TAbs{}

// Lisp implementation for Expr interface.
func (p *TAbs) Lisp() sexp.SExp {
	return sexp.NewList([]sexp.SExp{
		sexp.NewSymbol("tfun"), sexp.NewSymbol(p.Param), p.Body.Lisp()})
}

// ============================================================================
// Type Application
// ============================================================================

// TApp applies an expression to a type.  Elaboration instantiates every
// reference to a polymorphic declaration with one type application per
// quantified variable.
type TApp struct {
	Fn  Expr
	Arg Type
}

var _ Expr = &TApp{}

// Lisp implementation for Expr interface.
func (p *TApp) Lisp() sexp.SExp {
	return sexp.NewList([]sexp.SExp{p.Fn.Lisp(), sexp.NewSymbol(p.Arg.String())})
}

// ============================================================================
// Conditional
// ============================================================================

// If is a conditional expression.  Both branches have the same type, and the
// condition is a bit.
type If struct {
	Cond Expr
	Then Expr
	Else Expr
}

var _ Expr = &If{}

// Lisp implementation for Expr interface.
func (p *If) Lisp() sexp.SExp {
	return sexp.NewList([]sexp.SExp{
		sexp.NewSymbol("if"), p.Cond.Lisp(), p.Then.Lisp(), p.Else.Lisp()})
}

// ============================================================================
// Let
// ============================================================================

// Let binds the value of one expression to a name within another.  Surface
// bindings of several names desugar into nested instances.
type Let struct {
	Name  string
	Bound Expr
	Body  Expr
}

var _ Expr = &Let{}

// Lisp implementation for Expr interface.
func (p *Let) Lisp() sexp.SExp {
	binding := sexp.NewList([]sexp.SExp{sexp.NewSymbol(p.Name), p.Bound.Lisp()})
	//
	return sexp.NewList([]sexp.SExp{sexp.NewSymbol("let"),
		sexp.NewList([]sexp.SExp{binding}), p.Body.Lisp()})
}

// ============================================================================
// Tuple
// ============================================================================

// Tuple constructs a heterogeneous tuple of two or more components.
type Tuple struct {
	Items []Expr
}

var _ Expr = &Tuple{}

// Lisp implementation for Expr interface.
func (p *Tuple) Lisp() sexp.SExp {
	items := make([]sexp.SExp, len(p.Items)+1)
	items[0] = sexp.NewSymbol("tuple")
	//
	for i, item := range p.Items {
		items[i+1] = item.Lisp()
	}
	//
	return sexp.NewList(items)
}

// ============================================================================
// Record
// ============================================================================

// RecordField is a single named field of a record expression.
type RecordField struct {
	Name string
	Expr Expr
}

// Record constructs a record from named fields.  Field order is retained for
// display, whilst field identity is by name.
type Record struct {
	Fields []RecordField
}

var _ Expr = &Record{}

// Lisp implementation for Expr interface.
func (p *Record) Lisp() sexp.SExp {
	fields := make([]sexp.SExp, len(p.Fields))
	//
	for i, f := range p.Fields {
		fields[i] = sexp.NewList([]sexp.SExp{sexp.NewSymbol(f.Name), f.Expr.Lisp()})
	}
	//
	return sexp.NewSet(fields)
}

// ============================================================================
// Record Selection
// ============================================================================

// Select projects a named field out of a record.
type Select struct {
	Arg   Expr
	Field string
}

var _ Expr = &Select{}

// Lisp implementation for Expr interface.
func (p *Select) Lisp() sexp.SExp {
	return sexp.NewList([]sexp.SExp{
		sexp.NewSymbol("get"), p.Arg.Lisp(), sexp.NewSymbol(p.Field)})
}

// ============================================================================
// Tuple Selection
// ============================================================================

// Proj projects a positional component out of a tuple.
type Proj struct {
	Arg   Expr
	Index uint
}

var _ Expr = &Proj{}

// Lisp implementation for Expr interface.
func (p *Proj) Lisp() sexp.SExp {
	return sexp.NewList([]sexp.SExp{
		sexp.NewSymbol("proj"), p.Arg.Lisp(),
		sexp.NewSymbol(strconv.FormatUint(uint64(p.Index), 10))})
}

// ============================================================================
// Sequence Selection
// ============================================================================

// Index selects an element of a sequence at a computed position.  When the
// sequence is a word, the selected element is the bit the corresponding
// distance from its most significant end.
type Index struct {
	Arg   Expr
	Index Expr
}

var _ Expr = &Index{}

// Lisp implementation for Expr interface.
func (p *Index) Lisp() sexp.SExp {
	return sexp.NewList([]sexp.SExp{sexp.NewSymbol("@"), p.Arg.Lisp(), p.Index.Lisp()})
}

// ============================================================================
// Sequence
// ============================================================================

// Seq constructs a sequence from its elements.  The element type is unknown
// at parse time and filled in by the checker; a sequence of bits evaluates
// to a packed word.
type Seq struct {
	Items   []Expr
	Element Type
}

var _ Expr = &Seq{}

// Lisp implementation for Expr interface.
func (p *Seq) Lisp() sexp.SExp {
	items := make([]sexp.SExp, len(p.Items))
	//
	for i, item := range p.Items {
		items[i] = item.Lisp()
	}
	//
	return sexp.NewArray(items)
}

// ============================================================================
// Repeat
// ============================================================================

// Repeat constructs the unbounded sequence repeating a single value.
type Repeat struct {
	Arg Expr
}

var _ Expr = &Repeat{}

// Lisp implementation for Expr interface.
func (p *Repeat) Lisp() sexp.SExp {
	return sexp.NewList([]sexp.SExp{sexp.NewSymbol("repeat"), p.Arg.Lisp()})
}
