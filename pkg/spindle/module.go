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

// Package spindle provides the source-level front end: parsing source text
// into declarations, elaborating those declarations against the declarations
// before them, and defaulting whatever type ambiguity then remains.  The
// result of a successful elaboration is a module environment binding every
// declared name to an elaborated expression and its scheme.
package spindle

import (
	"github.com/consensys/go-spindle/pkg/spindle/ast"
	"github.com/consensys/go-spindle/pkg/util"
	"github.com/consensys/go-spindle/pkg/util/source"
)

// ============================================================================
// Surface declarations
// ============================================================================

// Decl is a top-level declaration as parsed, prior to elaboration.
type Decl interface {
	// DeclaredName returns the name this declaration binds.
	DeclaredName() string
}

// Param is a single function parameter together with its declared type.
type Param struct {
	Name string
	Type ast.Type
}

// DefFun declares a function of one or more parameters.
type DefFun struct {
	Name   string
	Params []Param
	Return ast.Type
	Body   ast.Expr
}

// DeclaredName implementation for Decl interface.
func (p *DefFun) DeclaredName() string { return p.Name }

// DefConst declares a named constant of a declared type.
type DefConst struct {
	Name string
	Type ast.Type
	Body ast.Expr
}

// DeclaredName implementation for Decl interface.
func (p *DefConst) DeclaredName() string { return p.Name }

// DefExtern declares a name deliberately left uninterpreted, so that only
// its type is known.
type DefExtern struct {
	Name string
	Type ast.Type
}

// DeclaredName implementation for Decl interface.
func (p *DefExtern) DeclaredName() string { return p.Name }

// ============================================================================
// Module
// ============================================================================

// Module is the parsed form of one source file: an optional module header
// followed by an ordered sequence of declarations.  The module retains its
// source file and source maps so that later phases can anchor their
// diagnostics in the original text.
type Module struct {
	// Path of this module, as given by its module header (empty for the
	// root module).
	Path util.Path
	// Declarations in source order.
	Decls []Decl
	//
	srcfile *source.File
	exprmap *source.Map[ast.Expr]
	declmap *source.Map[Decl]
}

// Name returns the qualified name a given declaration of this module binds.
func (p *Module) Name(decl Decl) ast.QualifiedName {
	return ast.NewQualifiedName(p.Path, decl.DeclaredName())
}

// SourceFile returns the file this module was parsed from.
func (p *Module) SourceFile() *source.File {
	return p.srcfile
}

// SyntaxError constructs an error anchored at a given expression of this
// module.  Expressions introduced by rewriting carry no span of their own and
// anchor at the enclosing declaration instead.
func (p *Module) SyntaxError(decl Decl, expr ast.Expr, msg string) *source.SyntaxError {
	if p.exprmap.Has(expr) {
		return p.srcfile.SyntaxError(p.exprmap.Get(expr), msg)
	}
	//
	return p.DeclSyntaxError(decl, msg)
}

// DeclSyntaxError constructs an error anchored at a given declaration of
// this module.
func (p *Module) DeclSyntaxError(decl Decl, msg string) *source.SyntaxError {
	return p.srcfile.SyntaxError(p.declmap.Get(decl), msg)
}

// ============================================================================
// Module environment
// ============================================================================

// Declaration is the elaborated form of one declaration: its qualified name,
// its scheme, and (unless uninterpreted) its elaborated body.
type Declaration struct {
	Name   ast.QualifiedName
	Scheme ast.Scheme
	// Body is the elaborated core expression, or nil for an uninterpreted
	// declaration.
	Body ast.Expr
	// Params holds the declared parameter names of a function, in argument
	// order, for use when naming generated ports.
	Params []string
	// Extern marks a declaration deliberately left uninterpreted.
	Extern bool
}

// ModuleEnv is the global scope produced by elaboration: every declaration
// seen so far, in declaration order, indexed by the rendering of its
// qualified name.
type ModuleEnv struct {
	order []*Declaration
	index map[string]*Declaration
}

// NewModuleEnv constructs an empty module environment.
func NewModuleEnv() *ModuleEnv {
	return &ModuleEnv{index: make(map[string]*Declaration)}
}

// Declare adds a declaration to this environment, failing if its name is
// already taken.
func (p *ModuleEnv) Declare(decl *Declaration) bool {
	name := decl.Name.String()
	//
	if _, ok := p.index[name]; ok {
		return false
	}
	//
	p.order = append(p.order, decl)
	p.index[name] = decl
	//
	return true
}

// Lookup returns the declaration bound to a given qualified name, if any.
func (p *ModuleEnv) Lookup(name string) (*Declaration, bool) {
	decl, ok := p.index[name]
	return decl, ok
}

// Declarations returns every declaration of this environment, in declaration
// order.
func (p *ModuleEnv) Declarations() []*Declaration {
	return p.order
}
