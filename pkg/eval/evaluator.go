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
package eval

import (
	"fmt"

	"github.com/consensys/go-spindle/pkg/spindle/ast"
	"github.com/consensys/go-spindle/pkg/sym"
	"github.com/consensys/go-spindle/pkg/word"
)

// Ops supplies the backend-specific behaviour of the evaluator, so that one
// recursive walk can serve several evaluation backends without branching on
// backend identity inside the recursion.  Implementations are expected to
// fail loudly (rather than recover) on conditions which upstream phases were
// supposed to rule out, such as unknown names or unsupported operators.
type Ops interface {
	// Prim returns the value implementing a given primitive operator.
	// Operators absent from the backend's table are a fatal condition.
	Prim(name string) Value
	// BindLocal extends an environment with a local term binding.
	BindLocal(env *Environment, name string, value Value) *Environment
	// BindType extends an environment with a type variable binding.
	BindType(env *Environment, name string, typ ast.Type) *Environment
	// Lookup resolves a name against an environment.  Failure to resolve
	// is a fatal condition, since expressions reaching the evaluator are
	// fully resolved.
	Lookup(env *Environment, name string) Value
	// EvalType resolves a type expression to a concrete type under the
	// environment's type bindings.
	EvalType(env *Environment, typ ast.Type) ast.Type
	// Index selects the element at a given position of a sequence-like
	// value.  For words, this selects the bit the given distance from the
	// most significant end.
	Index(index uint, value Value) Value
	// Merge selects between two values of identical shape according to a
	// boolean condition.  When the condition is not a known constant, the
	// result is a single value combining both branches symbolically.
	Merge(cond Value, then Value, els Value) Value
	// Render returns the textual form of a value for diagnostics.
	Render(value Value) string
}

// Evaluator reduces elaborated expressions to values.  All behaviour beyond
// the shape of the recursion itself is delegated to the operations table the
// evaluator was constructed with.
type Evaluator struct {
	ops Ops
}

// NewEvaluator constructs an evaluator over a given operations table.
func NewEvaluator(ops Ops) *Evaluator {
	return &Evaluator{ops}
}

// Eval reduces a given expression to a value under a given environment.
func (p *Evaluator) Eval(env *Environment, expr ast.Expr) Value {
	switch e := expr.(type) {
	case *ast.Var:
		return p.ops.Lookup(env, e.Name)
	case *ast.Prim:
		return p.ops.Prim(e.Name)
	case *ast.Lit:
		panic(fmt.Sprintf("literal %s was not elaborated", e.Value))
	case *ast.App:
		return p.evalApp(env, e)
	case *ast.Abs:
		return p.evalAbs(env, e)
	case *ast.TAbs:
		return p.evalTAbs(env, e)
	case *ast.TApp:
		return p.evalTApp(env, e)
	case *ast.If:
		return p.evalIf(env, e)
	case *ast.Let:
		bound := p.Eval(env, e.Bound)
		return p.Eval(p.ops.BindLocal(env, e.Name, bound), e.Body)
	case *ast.Tuple:
		return NewTuple(p.evalAll(env, e.Items))
	case *ast.Record:
		return p.evalRecord(env, e)
	case *ast.Select:
		return p.evalSelect(env, e)
	case *ast.Proj:
		return p.evalProj(env, e)
	case *ast.Index:
		return p.evalIndex(env, e)
	case *ast.Seq:
		return p.evalSeq(env, e)
	case *ast.Repeat:
		item := p.Eval(env, e.Arg)
		return NewStream(func(uint) Value { return item })
	default:
		panic(fmt.Sprintf("unknown expression %s", expr.Lisp()))
	}
}

func (p *Evaluator) evalAll(env *Environment, exprs []ast.Expr) []Value {
	values := make([]Value, len(exprs))
	//
	for i, e := range exprs {
		values[i] = p.Eval(env, e)
	}
	//
	return values
}

func (p *Evaluator) evalApp(env *Environment, expr *ast.App) Value {
	fn := p.Eval(env, expr.Fn)
	arg := p.Eval(env, expr.Arg)
	//
	if fn, ok := fn.(*Func); ok {
		return fn.Apply(arg)
	}
	//
	panic(fmt.Sprintf("cannot apply non-function value %s", p.ops.Render(fn)))
}

func (p *Evaluator) evalAbs(env *Environment, expr *ast.Abs) Value {
	// Capture the defining environment, not the applying one.
	return NewFunc(func(arg Value) Value {
		return p.Eval(p.ops.BindLocal(env, expr.Param, arg), expr.Body)
	})
}

func (p *Evaluator) evalTAbs(env *Environment, expr *ast.TAbs) Value {
	return NewPoly(func(t ast.Type) Value {
		return p.Eval(p.ops.BindType(env, expr.Param, t), expr.Body)
	})
}

func (p *Evaluator) evalTApp(env *Environment, expr *ast.TApp) Value {
	fn := p.Eval(env, expr.Fn)
	//
	if fn, ok := fn.(*Poly); ok {
		return fn.Instantiate(p.ops.EvalType(env, expr.Arg))
	}
	//
	panic(fmt.Sprintf("cannot instantiate non-polymorphic value %s", p.ops.Render(fn)))
}

func (p *Evaluator) evalIf(env *Environment, expr *ast.If) Value {
	cond := p.Eval(env, expr.Cond)
	//
	if _, ok := cond.(*Bit); !ok {
		panic(fmt.Sprintf("conditional on non-boolean value %s", p.ops.Render(cond)))
	}
	// Both branches are evaluated against the same environment snapshot, and
	// the operations table decides how to combine them.
	return p.ops.Merge(cond, p.Eval(env, expr.Then), p.Eval(env, expr.Else))
}

func (p *Evaluator) evalRecord(env *Environment, expr *ast.Record) Value {
	fields := make([]ValueField, len(expr.Fields))
	//
	for i, f := range expr.Fields {
		fields[i] = ValueField{f.Name, p.Eval(env, f.Expr)}
	}
	//
	return NewRecord(fields)
}

func (p *Evaluator) evalSelect(env *Environment, expr *ast.Select) Value {
	arg := p.Eval(env, expr.Arg)
	//
	if record, ok := arg.(*Record); ok {
		if value, ok := record.Lookup(expr.Field); ok {
			return value
		}
		//
		panic(fmt.Sprintf("record %s has no field %s", p.ops.Render(arg), expr.Field))
	}
	//
	panic(fmt.Sprintf("cannot select field %s of non-record value %s", expr.Field, p.ops.Render(arg)))
}

func (p *Evaluator) evalProj(env *Environment, expr *ast.Proj) Value {
	arg := p.Eval(env, expr.Arg)
	//
	if tuple, ok := arg.(*Tuple); ok {
		if expr.Index < uint(len(tuple.Items)) {
			return tuple.Items[expr.Index]
		}
		//
		panic(fmt.Sprintf("component %d out of bounds in tuple %s", expr.Index, p.ops.Render(arg)))
	}
	//
	panic(fmt.Sprintf("cannot project component %d of non-tuple value %s", expr.Index, p.ops.Render(arg)))
}

func (p *Evaluator) evalIndex(env *Environment, expr *ast.Index) Value {
	arg := p.Eval(env, expr.Arg)
	index := p.Eval(env, expr.Index)
	// Positions must be known statically; there is no gather operation over
	// symbolic indices.
	position, ok := index.(*Word)
	//
	if !ok {
		panic(fmt.Sprintf("cannot index by non-word value %s", p.ops.Render(index)))
	} else if constant := position.Term.Payload().AsConstant(); constant != nil {
		return p.ops.Index(uint(constant.Uint64()), arg)
	}
	//
	panic(fmt.Sprintf("cannot index by symbolic value %s", p.ops.Render(index)))
}

func (p *Evaluator) evalSeq(env *Environment, expr *ast.Seq) Value {
	if expr.Element == nil {
		panic("sequence literal was not elaborated")
	}
	//
	items := p.evalAll(env, expr.Items)
	element := p.ops.EvalType(env, expr.Element)
	// A sequence of bits is a word, and is packed immediately.
	if _, ok := element.(*ast.BitType); ok {
		bits := make([]sym.Bit, len(items))
		//
		for i, item := range items {
			bit, ok := item.(*Bit)
			//
			if !ok {
				panic(fmt.Sprintf("expected a bit, got %s", p.ops.Render(item)))
			}
			//
			bits[i] = bit.Term
		}
		//
		return NewWord(word.Pack(bits))
	}
	//
	return NewList(items)
}
