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

	"github.com/consensys/go-spindle/pkg/util"
)

// Name identifies a declaration, either as written in the source (qualified
// by its enclosing module) or as invented by the compiler.  Names render two
// ways: String gives the source-level form, whilst Mangle gives a flat
// identifier safe for use in generated artifacts.
type Name interface {
	// Mangle returns a flat rendering of this name using only characters
	// acceptable to downstream toolchains.
	Mangle() string
	// String returns the source-level rendering of this name.
	String() string
}

// ============================================================================
// Qualified Names
// ============================================================================

// QualifiedName identifies a source declaration by the path of its enclosing
// module followed by its local name.
type QualifiedName struct {
	path util.Path
}

var _ Name = QualifiedName{}

// NewQualifiedName constructs the name of a declaration within a given
// module.
func NewQualifiedName(module util.Path, name string) QualifiedName {
	return QualifiedName{module.Extend(name)}
}

// Module returns the path of the enclosing module.
func (p QualifiedName) Module() util.Path {
	return p.path.Parent()
}

// Local returns the name of the declaration within its module.
func (p QualifiedName) Local() string {
	return p.path.Tail()
}

// Mangle implementation for Name interface.
func (p QualifiedName) Mangle() string {
	return p.path.Join("_")
}

func (p QualifiedName) String() string {
	return p.path.String()
}

// ============================================================================
// Generated Names
// ============================================================================

// GeneratedName identifies an entity invented by the compiler, such as a
// synthesised input port.  It has no source form; instead it carries the
// name of the pass which invented it along with a disambiguating index.
type GeneratedName struct {
	pass  string
	index uint
}

var _ Name = GeneratedName{}

// NewGeneratedName constructs a fresh compiler-internal name.
func NewGeneratedName(pass string, index uint) GeneratedName {
	return GeneratedName{pass, index}
}

// Mangle implementation for Name interface.
func (p GeneratedName) Mangle() string {
	return fmt.Sprintf("%s_%d", p.pass, p.index)
}

func (p GeneratedName) String() string {
	return fmt.Sprintf("%s#%d", p.pass, p.index)
}
