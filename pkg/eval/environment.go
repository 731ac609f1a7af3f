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
)

type bindingKind uint8

const (
	// rootBinding marks the empty environment at the head of every chain.
	rootBinding bindingKind = iota
	// localBinding binds a name to a value.
	localBinding
	// uninterpBinding records a name as deliberately uninterpreted, with
	// only its scheme known.
	uninterpBinding
	// typeBinding binds a type variable to a type.
	typeBinding
)

// Environment is a persistent binding context made up of three mappings:
// local terms (name to value, covering both truly local bindings and inlined
// top-level definitions), uninterpreted terms (name to scheme, for
// declarations deliberately left abstract), and type bindings (type variable
// to type).  Extending an environment never modifies the receiver; instead a
// child environment is returned sharing every entry of its parent.  Every
// name in the uninterpreted mapping is also present in the local mapping.
type Environment struct {
	parent *Environment
	kind   bindingKind
	name   string
	value  Value
	scheme ast.Scheme
	typ    ast.Type
}

// NewEnvironment constructs an empty environment.
func NewEnvironment() *Environment {
	return &Environment{kind: rootBinding}
}

// BindLocal returns this environment extended with a binding of the given
// name to the given value.
func (p *Environment) BindLocal(name string, value Value) *Environment {
	return &Environment{parent: p, kind: localBinding, name: name, value: value}
}

// BindType returns this environment extended with a binding of the given
// type variable to the given type.
func (p *Environment) BindType(name string, typ ast.Type) *Environment {
	return &Environment{parent: p, kind: typeBinding, name: name, typ: typ}
}

// BindUninterpreted returns this environment extended with an uninterpreted
// declaration of the given name.  The name is recorded against its scheme
// and, since every uninterpreted name must also resolve as a local, bound to
// the given placeholder value as well.
func (p *Environment) BindUninterpreted(name string, scheme ast.Scheme, placeholder Value) *Environment {
	env := &Environment{parent: p, kind: uninterpBinding, name: name, scheme: scheme}
	//
	return env.BindLocal(name, placeholder)
}

// UninterpretedPlaceholder returns a value suitable for binding in the local
// mapping alongside an uninterpreted declaration.  The placeholder exists
// only so that the name resolves; forcing it fails, since evaluation of
// uninterpreted terms is not supported yet.
func UninterpretedPlaceholder(name string) Value {
	return NewFunc(func(Value) Value {
		panic(fmt.Sprintf("uninterpreted term %s not supported yet", name))
	})
}

// LookupLocal returns the value bound to a given name, if any.
func (p *Environment) LookupLocal(name string) (Value, bool) {
	for env := p; env != nil; env = env.parent {
		if env.kind == localBinding && env.name == name {
			return env.value, true
		}
	}
	//
	return nil, false
}

// LookupUninterpreted returns the scheme a given name was declared
// uninterpreted at, if any.
func (p *Environment) LookupUninterpreted(name string) (ast.Scheme, bool) {
	for env := p; env != nil; env = env.parent {
		if env.kind == uninterpBinding && env.name == name {
			return env.scheme, true
		}
	}
	//
	return ast.Scheme{}, false
}

// LookupType returns the type bound to a given type variable, if any.
func (p *Environment) LookupType(name string) (ast.Type, bool) {
	for env := p; env != nil; env = env.parent {
		if env.kind == typeBinding && env.name == name {
			return env.typ, true
		}
	}
	//
	return nil, false
}
