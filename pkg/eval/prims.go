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

// WordOps is the standard operations table, evaluating expressions to
// symbolic values over the fixed-width word family.  The table is total over
// the operators below; any other operator is a fatal condition rather than a
// silent no-op.
type WordOps struct {
	prims map[string]Value
}

var _ Ops = &WordOps{}

// NewWordOps constructs the standard operations table.
func NewWordOps() *WordOps {
	p := &WordOps{}
	//
	p.prims = map[string]Value{
		"true":   NewBool(true),
		"false":  NewBool(false),
		"demote": demote(),
		// arithmetic
		"+":      binary(p.pointwise(arith(sym.ADD), bitsUnexpected("+"))),
		"-":      binary(p.pointwise(arith(sym.SUB), bitsUnexpected("-"))),
		"*":      binary(p.pointwise(arith(sym.MUL), bitsUnexpected("*"))),
		"/":      binary(p.pointwise(arith(sym.DIV), bitsUnexpected("/"))),
		"%":      binary(p.pointwise(arith(sym.REM), bitsUnexpected("%"))),
		"negate": unary(p.pointwiseUnary(word.LiftUnary(sym.NewNeg), bitUnexpected("negate"))),
		// bitwise
		"&": binary(p.pointwise(arith(sym.AND), bitwise(sym.BAND))),
		"|": binary(p.pointwise(arith(sym.OR), bitwise(sym.BOR))),
		"^": binary(p.pointwise(arith(sym.XOR), bitwise(sym.BXOR))),
		"~": unary(p.pointwiseUnary(word.LiftUnary(sym.NewNot), sym.NewBitNot)),
		// shifts
		"<<": binary(p.pointwise(shift(sym.SHL), bitsUnexpected("<<"))),
		">>": binary(p.pointwise(shift(sym.SHR), bitsUnexpected(">>"))),
		// comparisons
		"==": binary(p.comparison(compare(sym.EQ, false))),
		"!=": binary(p.comparison(compare(sym.NE, false))),
		"<":  binary(p.comparison(compare(sym.LT, false))),
		"<=": binary(p.comparison(compare(sym.LE, false))),
		">":  binary(p.comparison(compare(sym.LT, true))),
		">=": binary(p.comparison(compare(sym.LE, true))),
		// function equality
		"===": binary(p.funcwise(p.comparison(compare(sym.EQ, false)))),
		"!==": binary(p.funcwise(p.comparison(compare(sym.NE, false)))),
		// ordering-derived selection
		"min": binary(p.minmax(false)),
		"max": binary(p.minmax(true)),
	}
	//
	return p
}

// ============================================================================
// Ops interface
// ============================================================================

// Prim implementation for the Ops interface.
func (p *WordOps) Prim(name string) Value {
	if value, ok := p.prims[name]; ok {
		return value
	}
	//
	panic(fmt.Sprintf("operation not supported: %s", name))
}

// BindLocal implementation for the Ops interface.
func (p *WordOps) BindLocal(env *Environment, name string, value Value) *Environment {
	return env.BindLocal(name, value)
}

// BindType implementation for the Ops interface.
func (p *WordOps) BindType(env *Environment, name string, typ ast.Type) *Environment {
	return env.BindType(name, typ)
}

// Lookup implementation for the Ops interface.  Uninterpreted declarations
// are consulted first, then local bindings; a name absent from both mappings
// signals a scoping defect in an upstream phase.
func (p *WordOps) Lookup(env *Environment, name string) Value {
	if value, ok := p.lookupUninterpreted(env, name); ok {
		return value
	}
	//
	if value, ok := env.LookupLocal(name); ok {
		return value
	}
	//
	panic(fmt.Sprintf("variable %s not in scope", name))
}

// lookupUninterpreted attempts to manufacture an opaque value for a name
// declared uninterpreted.  This always reports the name absent, so that
// resolution falls back to the placeholder bound alongside the declaration.
//
// TODO: manufacture opaque values from the declared scheme.
func (p *WordOps) lookupUninterpreted(env *Environment, name string) (Value, bool) {
	return nil, false
}

// EvalType implementation for the Ops interface.
func (p *WordOps) EvalType(env *Environment, t ast.Type) ast.Type {
	switch t := t.(type) {
	case *ast.BitType, *ast.NumType, *ast.InfType:
		return t
	case *ast.VarType:
		if binding, ok := env.LookupType(t.Name); ok {
			return binding
		}
		//
		panic(fmt.Sprintf("type variable %s not in scope", t.Name))
	case *ast.SeqType:
		return &ast.SeqType{
			Length:  p.EvalType(env, t.Length),
			Element: p.EvalType(env, t.Element)}
	case *ast.TupleType:
		elements := make([]ast.Type, len(t.Elements))
		//
		for i, e := range t.Elements {
			elements[i] = p.EvalType(env, e)
		}
		//
		return &ast.TupleType{Elements: elements}
	case *ast.RecordType:
		fields := make([]ast.Field, len(t.Fields))
		//
		for i, f := range t.Fields {
			fields[i] = ast.Field{Name: f.Name, Type: p.EvalType(env, f.Type)}
		}
		//
		return &ast.RecordType{Fields: fields}
	case *ast.FunType:
		return &ast.FunType{
			Argument: p.EvalType(env, t.Argument),
			Result:   p.EvalType(env, t.Result)}
	default:
		panic(fmt.Sprintf("unknown type %s", t))
	}
}

// Index implementation for the Ops interface.  Words select the bit the
// given distance from their most significant end, consistent with big-endian
// packing; sequences select the element at that position.
func (p *WordOps) Index(index uint, value Value) Value {
	switch value := value.(type) {
	case *Word:
		return NewBit(sym.NewBitOf(value.Term.Payload(), index))
	case *List:
		if index < uint(len(value.Items)) {
			return value.Items[index]
		}
		//
		panic(fmt.Sprintf("index %d out of bounds in sequence %s", index, p.Render(value)))
	case *Stream:
		return value.Get(index)
	default:
		panic(fmt.Sprintf("cannot index into value %s", p.Render(value)))
	}
}

// Merge implementation for the Ops interface.  A known condition selects the
// corresponding branch outright; a symbolic condition combines both branches
// pointwise through the word and bit multiplexers, so that the result is
// faithful to either outcome.
func (p *WordOps) Merge(cond Value, then Value, els Value) Value {
	bit, ok := cond.(*Bit)
	//
	if !ok {
		panic(fmt.Sprintf("cannot branch on non-boolean value %s", p.Render(cond)))
	}
	//
	if value, ok := bit.Term.AsConstant(); ok {
		if value {
			return then
		}
		//
		return els
	}
	//
	return p.merge(bit.Term, then, els)
}

func (p *WordOps) merge(cond sym.Bit, then Value, els Value) Value {
	switch then := then.(type) {
	case *Bit:
		if els, ok := els.(*Bit); ok {
			return NewBit(sym.NewBitMux(cond, then.Term, els.Term))
		}
	case *Word:
		if els, ok := els.(*Word); ok {
			return NewWord(word.Mux(cond, then.Term, els.Term))
		}
	case *List:
		if els, ok := els.(*List); ok && len(then.Items) == len(els.Items) {
			items := make([]Value, len(then.Items))
			//
			for i := range then.Items {
				items[i] = p.merge(cond, then.Items[i], els.Items[i])
			}
			//
			return NewList(items)
		}
	case *Stream:
		if els, ok := els.(*Stream); ok {
			return NewStream(func(index uint) Value {
				return p.merge(cond, then.Get(index), els.Get(index))
			})
		}
	case *Tuple:
		if els, ok := els.(*Tuple); ok && len(then.Items) == len(els.Items) {
			items := make([]Value, len(then.Items))
			//
			for i := range then.Items {
				items[i] = p.merge(cond, then.Items[i], els.Items[i])
			}
			//
			return NewTuple(items)
		}
	case *Record:
		if els, ok := els.(*Record); ok && sameFields(then, els) {
			fields := make([]ValueField, len(then.Fields))
			//
			for i := range then.Fields {
				fields[i] = ValueField{
					then.Fields[i].Name,
					p.merge(cond, then.Fields[i].Value, els.Fields[i].Value)}
			}
			//
			return NewRecord(fields)
		}
	case *Func:
		if els, ok := els.(*Func); ok {
			return NewFunc(func(arg Value) Value {
				return p.merge(cond, then.Apply(arg), els.Apply(arg))
			})
		}
	case *Poly:
		if els, ok := els.(*Poly); ok {
			return NewPoly(func(t ast.Type) Value {
				return p.merge(cond, then.Instantiate(t), els.Instantiate(t))
			})
		}
	}
	//
	panic(fmt.Sprintf("cannot merge values %s and %s", p.Render(then), p.Render(els)))
}

// Render implementation for the Ops interface.
func (p *WordOps) Render(value Value) string {
	return Render(value, DefaultDisplayLength)
}

// ============================================================================
// Combinators
// ============================================================================

// pointwise lifts a word-level binary operation, together with its
// boolean-level counterpart, over whole values: word operands dispatch
// through the width family, bit operands through the boolean operation, and
// structured operands of identical shape combine componentwise.
func (p *WordOps) pointwise(wordOp func(word.Word, word.Word) word.Word,
	bitOp func(sym.Bit, sym.Bit) sym.Bit) func(Value, Value) Value {
	//
	var apply func(Value, Value) Value
	//
	apply = func(lhs Value, rhs Value) Value {
		switch lhs := lhs.(type) {
		case *Word:
			if rhs, ok := rhs.(*Word); ok {
				return NewWord(wordOp(lhs.Term, rhs.Term))
			}
		case *Bit:
			if rhs, ok := rhs.(*Bit); ok {
				return NewBit(bitOp(lhs.Term, rhs.Term))
			}
		case *List:
			if rhs, ok := rhs.(*List); ok && len(lhs.Items) == len(rhs.Items) {
				items := make([]Value, len(lhs.Items))
				//
				for i := range lhs.Items {
					items[i] = apply(lhs.Items[i], rhs.Items[i])
				}
				//
				return NewList(items)
			}
		case *Stream:
			if rhs, ok := rhs.(*Stream); ok {
				return NewStream(func(index uint) Value {
					return apply(lhs.Get(index), rhs.Get(index))
				})
			}
		case *Tuple:
			if rhs, ok := rhs.(*Tuple); ok && len(lhs.Items) == len(rhs.Items) {
				items := make([]Value, len(lhs.Items))
				//
				for i := range lhs.Items {
					items[i] = apply(lhs.Items[i], rhs.Items[i])
				}
				//
				return NewTuple(items)
			}
		case *Record:
			if rhs, ok := rhs.(*Record); ok && sameFields(lhs, rhs) {
				fields := make([]ValueField, len(lhs.Fields))
				//
				for i := range lhs.Fields {
					fields[i] = ValueField{
						lhs.Fields[i].Name,
						apply(lhs.Fields[i].Value, rhs.Fields[i].Value)}
				}
				//
				return NewRecord(fields)
			}
		case *Func:
			if rhs, ok := rhs.(*Func); ok {
				return NewFunc(func(arg Value) Value {
					return apply(lhs.Apply(arg), rhs.Apply(arg))
				})
			}
		}
		//
		panic(fmt.Sprintf("cannot combine values %s and %s", p.Render(lhs), p.Render(rhs)))
	}
	//
	return apply
}

// pointwiseUnary lifts a word-level unary operation, together with its
// boolean-level counterpart, over whole values.
func (p *WordOps) pointwiseUnary(wordOp func(word.Word) word.Word,
	bitOp func(sym.Bit) sym.Bit) func(Value) Value {
	//
	var apply func(Value) Value
	//
	apply = func(arg Value) Value {
		switch arg := arg.(type) {
		case *Word:
			return NewWord(wordOp(arg.Term))
		case *Bit:
			return NewBit(bitOp(arg.Term))
		case *List:
			items := make([]Value, len(arg.Items))
			//
			for i, item := range arg.Items {
				items[i] = apply(item)
			}
			//
			return NewList(items)
		case *Stream:
			return NewStream(func(index uint) Value { return apply(arg.Get(index)) })
		case *Tuple:
			items := make([]Value, len(arg.Items))
			//
			for i, item := range arg.Items {
				items[i] = apply(item)
			}
			//
			return NewTuple(items)
		case *Record:
			fields := make([]ValueField, len(arg.Fields))
			//
			for i, f := range arg.Fields {
				fields[i] = ValueField{f.Name, apply(f.Value)}
			}
			//
			return NewRecord(fields)
		case *Func:
			return NewFunc(func(x Value) Value { return apply(arg.Apply(x)) })
		default:
			panic(fmt.Sprintf("cannot transform value %s", p.Render(arg)))
		}
	}
	//
	return apply
}

// comparison builds a word-level comparison over whole values.  Comparisons
// are defined only for words; any other operand shape was ruled out by type
// checking and is fatal here.
func (p *WordOps) comparison(fn func(word.Word, word.Word) sym.Bit) func(Value, Value) Value {
	return func(lhs Value, rhs Value) Value {
		if lhs, ok := lhs.(*Word); ok {
			if rhs, ok := rhs.(*Word); ok {
				return NewBit(fn(lhs.Term, rhs.Term))
			}
		}
		//
		if _, ok := lhs.(*Bit); ok {
			panic("bits unexpectedly present in comparison")
		}
		//
		panic(fmt.Sprintf("cannot compare values %s and %s", p.Render(lhs), p.Render(rhs)))
	}
}

// funcwise lifts a comparison over function values by application: two
// functions compare at every argument, yielding a function from arguments to
// comparison results.
func (p *WordOps) funcwise(cmp func(Value, Value) Value) func(Value, Value) Value {
	var apply func(Value, Value) Value
	//
	apply = func(lhs Value, rhs Value) Value {
		f, fok := lhs.(*Func)
		g, gok := rhs.(*Func)
		//
		if fok && gok {
			return NewFunc(func(arg Value) Value {
				return apply(f.Apply(arg), g.Apply(arg))
			})
		}
		//
		return cmp(lhs, rhs)
	}
	//
	return apply
}

// minmax builds the ordering-derived selection of two words, merging the
// operands under their comparison so that symbolic operands remain faithful
// to both outcomes.
func (p *WordOps) minmax(largest bool) func(Value, Value) Value {
	less := p.comparison(compare(sym.LT, false))
	//
	return func(lhs Value, rhs Value) Value {
		if largest {
			return p.Merge(less(lhs, rhs), rhs, lhs)
		}
		//
		return p.Merge(less(lhs, rhs), lhs, rhs)
	}
}

// ============================================================================
// Helpers
// ============================================================================

// binary curries a two-argument implementation into a function value.
func binary(fn func(Value, Value) Value) Value {
	return NewFunc(func(lhs Value) Value {
		return NewFunc(func(rhs Value) Value { return fn(lhs, rhs) })
	})
}

// unary wraps a one-argument implementation as a function value.
func unary(fn func(Value) Value) Value {
	return NewFunc(fn)
}

// arith lifts a symbolic word operation across the width family, propagating
// agreement on an unsupported width rather than failing.
func arith(op sym.Op) func(word.Word, word.Word) word.Word {
	return word.LiftBinaryPropagate(func(lhs sym.Word, rhs sym.Word) sym.Word {
		return sym.NewBin(op, lhs, rhs)
	})
}

// shift lifts a symbolic shift operation, for which the two operand widths
// need not agree.
func shift(op sym.Op) func(word.Word, word.Word) word.Word {
	return word.LiftShift(func(lhs sym.Word, rhs sym.Word) sym.Word {
		return sym.NewBin(op, lhs, rhs)
	})
}

// compare lifts a symbolic comparison across the width family.  The
// greater-than forms are obtained by swapping operands.
func compare(op sym.CmpOp, swap bool) func(word.Word, word.Word) sym.Bit {
	fn := word.LiftCompare(func(lhs sym.Word, rhs sym.Word) sym.Bit {
		return sym.NewCmp(op, lhs, rhs)
	})
	//
	if swap {
		return func(lhs word.Word, rhs word.Word) sym.Bit { return fn(rhs, lhs) }
	}
	//
	return fn
}

// bitwise constructs the boolean-level counterpart of a bitwise operation.
func bitwise(op sym.BitOp) func(sym.Bit, sym.Bit) sym.Bit {
	return func(lhs sym.Bit, rhs sym.Bit) sym.Bit {
		return sym.NewBitBin(op, lhs, rhs)
	}
}

// bitsUnexpected is the boolean-level counterpart of operations defined only
// for words.
func bitsUnexpected(op string) func(sym.Bit, sym.Bit) sym.Bit {
	return func(sym.Bit, sym.Bit) sym.Bit {
		panic(fmt.Sprintf("bits unexpectedly present in %s", op))
	}
}

// bitUnexpected is the unary form of bitsUnexpected.
func bitUnexpected(op string) func(sym.Bit) sym.Bit {
	return func(sym.Bit) sym.Bit {
		panic(fmt.Sprintf("bits unexpectedly present in %s", op))
	}
}

// demote constructs the operator converting a type-level numeral into a
// runtime word.  The numeral comes as the first type argument, followed by
// the representation type, which must be a word type of some width.
func demote() Value {
	return NewPoly(func(value ast.Type) Value {
		return NewPoly(func(rep ast.Type) Value {
			num, ok := value.(*ast.NumType)
			//
			if !ok {
				panic(fmt.Sprintf("cannot demote non-numeral type %s", value))
			}
			//
			if rep, ok := rep.(*ast.SeqType); ok {
				if width, ok := rep.AsWord(); ok {
					return NewWord(word.NewWord(width, num.Value))
				}
			}
			//
			panic(fmt.Sprintf("cannot demote %s to type %s", num, rep))
		})
	})
}

// sameFields checks whether two records have identical field names in
// identical order.
func sameFields(lhs *Record, rhs *Record) bool {
	if len(lhs.Fields) != len(rhs.Fields) {
		return false
	}
	//
	for i := range lhs.Fields {
		if lhs.Fields[i].Name != rhs.Fields[i].Name {
			return false
		}
	}
	//
	return true
}
