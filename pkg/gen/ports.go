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
package gen

import (
	"fmt"
	"io"

	"github.com/consensys/go-spindle/pkg/eval"
	"github.com/consensys/go-spindle/pkg/spindle"
	"github.com/consensys/go-spindle/pkg/spindle/ast"
	"github.com/consensys/go-spindle/pkg/word"
)

// Port is one externally visible connection point of a generated artifact: a
// name paired with the symbolic word flowing through it.  For an input port
// the word is a fresh variable; for an output port it is the full expression
// computed from the inputs.
type Port struct {
	Name string
	Word word.Word
}

// Backend renders the ports of a generation run as a target-specific
// artifact.  Ports are declared input ports first, in argument order, and
// rendering happens strictly after every declaration has been made.
type Backend interface {
	// DeclareInput declares an input port carrying a fresh symbolic
	// variable.
	DeclareInput(name string, value word.Word)
	// DeclareOutput declares an output port carrying the expression computed
	// from the declared inputs.
	DeclareOutput(name string, value word.Word)
	// WriteTo renders an artifact over the declared ports.
	WriteTo(w io.Writer) error
}

// decompose strips a root's function type one argument at a time, feeding a
// fresh variable of the argument's width through the root value at each step
// and collecting the variables as input ports.  Whatever value remains once
// the arrows run out becomes the single output port.  Every port must be a
// word of supported width; anything else refuses cleanly, naming the
// offending type.
func decompose(decl *spindle.Declaration, typ ast.Type, value eval.Value) ([]Port, Port, error) {
	var (
		prefix = decl.Name.Mangle()
		inputs []Port
		index  uint
	)
	//
	for {
		arrow, ok := typ.(*ast.FunType)
		if !ok {
			break
		}
		//
		width, ok := portWidth(arrow.Argument)
		if !ok {
			return nil, Port{}, abortf("generation", "cannot generate input port of type %s", arrow.Argument)
		}
		//
		name := fmt.Sprintf("%s_%s", prefix, paramName(decl, index))
		variable := word.NewVariable(name, width)
		inputs = append(inputs, Port{name, variable})
		// Feed the fresh variable through the root.
		fn, ok := value.(*eval.Func)
		if !ok {
			panic(fmt.Sprintf("cannot apply non-function value %s", value))
		}
		//
		value = fn.Apply(eval.NewWord(variable))
		typ = arrow.Result
		index++
	}
	//
	if _, ok := portWidth(typ); !ok {
		return nil, Port{}, abortf("generation", "cannot generate output port of type %s", typ)
	}
	//
	result, ok := value.(*eval.Word)
	if !ok {
		panic(fmt.Sprintf("expected a word, got %s", value))
	}
	//
	return inputs, Port{prefix + "_result", result.Term}, nil
}

// portWidth returns the width of a port-compatible type, that is, a word
// type of one of the supported widths.
func portWidth(t ast.Type) (uint, bool) {
	if seq, ok := t.(*ast.SeqType); ok {
		if width, ok := seq.AsWord(); ok && word.IsSupported(width) {
			return width, true
		}
	}
	//
	return 0, false
}

// paramName returns the declared name of a root's parameter, falling back on
// a positional name for parameters without one (such as those of a curried
// intermediate).
func paramName(decl *spindle.Declaration, index uint) string {
	if index < uint(len(decl.Params)) {
		return decl.Params[index]
	}
	//
	return fmt.Sprintf("arg%d", index)
}
