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
	"fmt"
	"math/big"
	"slices"
	"strings"
)

// Type represents a type of the expression language.  Words are not a
// primitive type; rather, a word of width n is a sequence of exactly n bits,
// and the familiar names (u8, u16, etc) are surface sugar for such
// sequences.  Types containing variables or type-level numerals arise during
// checking and must be eliminated (by substitution and defaulting) before
// evaluation.
type Type interface {
	// String returns a textual rendering of this type.
	String() string
}

// ============================================================================
// Bit
// ============================================================================

// BitType is the type of booleans.
type BitType struct{}

var _ Type = &BitType{}

func (p *BitType) String() string { return "bit" }

// ============================================================================
// Numeral
// ============================================================================

// NumType is a type-level numeral, as used for sequence lengths and for the
// value argument of the demotion operator.
type NumType struct {
	Value *big.Int
}

var _ Type = &NumType{}

// NewNumType constructs a type-level numeral from a machine integer.
func NewNumType(value uint64) *NumType {
	return &NumType{new(big.Int).SetUint64(value)}
}

func (p *NumType) String() string { return p.Value.String() }

// ============================================================================
// Variable
// ============================================================================

// VarType is a type variable, standing for an as-yet-unknown type or
// type-level numeral.
type VarType struct {
	Name string
}

var _ Type = &VarType{}

func (p *VarType) String() string { return p.Name }

// ============================================================================
// Infinity
// ============================================================================

// InfType is the length of an unbounded sequence.
type InfType struct{}

var _ Type = &InfType{}

func (p *InfType) String() string { return "inf" }

// ============================================================================
// Sequence
// ============================================================================

// SeqType is the type of sequences of a given length, which is either a
// type-level numeral, the infinity marker, or (during checking) a variable.
type SeqType struct {
	Length  Type
	Element Type
}

var _ Type = &SeqType{}

// NewWordType constructs the type of words of a given width, i.e. the type
// of sequences of exactly that many bits.
func NewWordType(width uint) *SeqType {
	return &SeqType{NewNumType(uint64(width)), &BitType{}}
}

// AsWord checks whether this is a word type (i.e. a bit sequence of known
// finite length) and, if so, returns its width.
func (p *SeqType) AsWord() (uint, bool) {
	length, ok := p.Length.(*NumType)
	//
	if _, bit := p.Element.(*BitType); ok && bit && length.Value.IsUint64() {
		return uint(length.Value.Uint64()), true
	}
	//
	return 0, false
}

func (p *SeqType) String() string {
	if width, ok := p.AsWord(); ok {
		return fmt.Sprintf("u%d", width)
	}
	//
	return fmt.Sprintf("[%s]%s", p.Length, p.Element)
}

// ============================================================================
// Tuple
// ============================================================================

// TupleType is the type of heterogeneous tuples.
type TupleType struct {
	Elements []Type
}

var _ Type = &TupleType{}

func (p *TupleType) String() string {
	var builder strings.Builder
	//
	builder.WriteString("(")
	//
	for i, e := range p.Elements {
		if i != 0 {
			builder.WriteString(", ")
		}
		//
		builder.WriteString(e.String())
	}
	//
	builder.WriteString(")")
	//
	return builder.String()
}

// ============================================================================
// Record
// ============================================================================

// Field is a single named field of a record type.
type Field struct {
	Name string
	Type Type
}

// RecordType is the type of records.  Field order is retained for display,
// whilst field identity is by name.
type RecordType struct {
	Fields []Field
}

var _ Type = &RecordType{}

// Lookup returns the type of a given field, if present.
func (p *RecordType) Lookup(name string) (Type, bool) {
	for _, f := range p.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	//
	return nil, false
}

func (p *RecordType) String() string {
	var builder strings.Builder
	//
	builder.WriteString("{")
	//
	for i, f := range p.Fields {
		if i != 0 {
			builder.WriteString(", ")
		}
		//
		builder.WriteString(f.Name)
		builder.WriteString(" : ")
		builder.WriteString(f.Type.String())
	}
	//
	builder.WriteString("}")
	//
	return builder.String()
}

// ============================================================================
// Function
// ============================================================================

// FunType is the type of functions.  Multi-argument functions are curried
// chains of this type.
type FunType struct {
	Argument Type
	Result   Type
}

var _ Type = &FunType{}

func (p *FunType) String() string {
	return fmt.Sprintf("(%s -> %s)", p.Argument, p.Result)
}

// ============================================================================
// Schemes
// ============================================================================

// Scheme is a type quantified over zero or more type variables.  A scheme
// with no quantified variables and no free variables in its body is
// monomorphic, which code generation requires of its target.
type Scheme struct {
	Vars []string
	Body Type
}

// NewMonoScheme constructs a scheme quantifying no variables.
func NewMonoScheme(body Type) Scheme {
	return Scheme{nil, body}
}

// IsMonomorphic checks whether this scheme is closed (i.e. quantifies
// nothing and captures nothing).
func (p *Scheme) IsMonomorphic() bool {
	return len(p.Vars) == 0 && len(FreeVars(p.Body)) == 0
}

func (p *Scheme) String() string {
	if len(p.Vars) == 0 {
		return p.Body.String()
	}
	//
	return fmt.Sprintf("forall %s. %s", strings.Join(p.Vars, " "), p.Body)
}

// ============================================================================
// Operations
// ============================================================================

// Substitution maps type variables to the types they stand for.
type Substitution map[string]Type

// Substitute applies a substitution to a type, replacing every mapped
// variable occurring within it.
func Substitute(subst Substitution, t Type) Type {
	switch t := t.(type) {
	case *BitType, *NumType, *InfType:
		return t
	case *VarType:
		if binding, ok := subst[t.Name]; ok {
			return binding
		}
		//
		return t
	case *SeqType:
		return &SeqType{Substitute(subst, t.Length), Substitute(subst, t.Element)}
	case *TupleType:
		elements := make([]Type, len(t.Elements))
		//
		for i, e := range t.Elements {
			elements[i] = Substitute(subst, e)
		}
		//
		return &TupleType{elements}
	case *RecordType:
		fields := make([]Field, len(t.Fields))
		//
		for i, f := range t.Fields {
			fields[i] = Field{f.Name, Substitute(subst, f.Type)}
		}
		//
		return &RecordType{fields}
	case *FunType:
		return &FunType{Substitute(subst, t.Argument), Substitute(subst, t.Result)}
	default:
		panic(fmt.Sprintf("unknown type %s", t))
	}
}

// FreeVars returns the type variables occurring in a given type, in order of
// first occurrence.
func FreeVars(t Type) []string {
	var vars []string
	//
	collectFreeVars(t, &vars)
	//
	return vars
}

func collectFreeVars(t Type, vars *[]string) {
	switch t := t.(type) {
	case *BitType, *NumType, *InfType:
		// terminal
	case *VarType:
		if !slices.Contains(*vars, t.Name) {
			*vars = append(*vars, t.Name)
		}
	case *SeqType:
		collectFreeVars(t.Length, vars)
		collectFreeVars(t.Element, vars)
	case *TupleType:
		for _, e := range t.Elements {
			collectFreeVars(e, vars)
		}
	case *RecordType:
		for _, f := range t.Fields {
			collectFreeVars(f.Type, vars)
		}
	case *FunType:
		collectFreeVars(t.Argument, vars)
		collectFreeVars(t.Result, vars)
	default:
		panic(fmt.Sprintf("unknown type %s", t))
	}
}

// Equals checks whether two types are structurally identical.
func Equals(lhs Type, rhs Type) bool {
	switch lhs := lhs.(type) {
	case *BitType:
		_, ok := rhs.(*BitType)
		return ok
	case *InfType:
		_, ok := rhs.(*InfType)
		return ok
	case *NumType:
		if rhs, ok := rhs.(*NumType); ok {
			return lhs.Value.Cmp(rhs.Value) == 0
		}
	case *VarType:
		if rhs, ok := rhs.(*VarType); ok {
			return lhs.Name == rhs.Name
		}
	case *SeqType:
		if rhs, ok := rhs.(*SeqType); ok {
			return Equals(lhs.Length, rhs.Length) && Equals(lhs.Element, rhs.Element)
		}
	case *TupleType:
		if rhs, ok := rhs.(*TupleType); ok && len(lhs.Elements) == len(rhs.Elements) {
			for i := range lhs.Elements {
				if !Equals(lhs.Elements[i], rhs.Elements[i]) {
					return false
				}
			}
			//
			return true
		}
	case *RecordType:
		if rhs, ok := rhs.(*RecordType); ok && len(lhs.Fields) == len(rhs.Fields) {
			for i := range lhs.Fields {
				if lhs.Fields[i].Name != rhs.Fields[i].Name ||
					!Equals(lhs.Fields[i].Type, rhs.Fields[i].Type) {
					return false
				}
			}
			//
			return true
		}
	case *FunType:
		if rhs, ok := rhs.(*FunType); ok {
			return Equals(lhs.Argument, rhs.Argument) && Equals(lhs.Result, rhs.Result)
		}
	default:
		panic(fmt.Sprintf("unknown type %s", lhs))
	}
	//
	return false
}
