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
package spindle

import (
	"github.com/consensys/go-spindle/pkg/spindle/ast"
	"github.com/consensys/go-spindle/pkg/util"
	"github.com/consensys/go-spindle/pkg/util/source"
)

// ElaborateModule elaborates every declaration of a module in order,
// producing the global environment used for evaluation.  A declaration may
// refer only to names declared strictly before it; in particular, recursive
// definitions are rejected as unknown symbols.
func ElaborateModule(module *Module) (*ModuleEnv, []source.SyntaxError) {
	return ElaborateModules(module)
}

// ElaborateModules elaborates several modules in file order into one shared
// environment, as used when a project spans multiple source files.  The
// declared-strictly-before rule extends across files: a declaration may refer
// to any declaration of an earlier module, but never to a later one.
func ElaborateModules(modules ...*Module) (*ModuleEnv, []source.SyntaxError) {
	var (
		env    = NewModuleEnv()
		errors []source.SyntaxError
	)
	//
	for _, module := range modules {
		for _, decl := range module.Decls {
			declaration, errs := elaborateDeclaration(module, env, decl)
			//
			if len(errs) > 0 {
				errors = append(errors, errs...)
			} else if !env.Declare(declaration) {
				errors = append(errors, *module.DeclSyntaxError(decl, "symbol already exists"))
			}
		}
	}
	//
	return env, errors
}

// Elaborate resolves and checks a standalone expression against an
// elaborated module environment, as used for the generation root.  The path
// qualifies unqualified references, and the source map anchors diagnostics.
// The resulting type may still contain free type variables when the
// expression is polymorphic; whether that is acceptable rests with the
// defaulting step.
func Elaborate(env *ModuleEnv, path util.Path, expr ast.Expr,
	exprmap *source.Map[ast.Expr]) (ast.Expr, ast.Type, []source.SyntaxError) {
	//
	chk := newChecker(path, env, exprAnchor(exprmap))
	//
	typ, elaborated := chk.inferExpression(nil, expr)
	chk.defaultWidths()
	chk.checkLiteralBounds()
	//
	if len(chk.errors) > 0 {
		return nil, nil, chk.errors
	}
	//
	return chk.zonkExpression(elaborated), chk.zonk(typ), nil
}

func elaborateDeclaration(module *Module, env *ModuleEnv, decl Decl) (*Declaration, []source.SyntaxError) {
	switch d := decl.(type) {
	case *DefFun:
		return elaborateDefFun(module, env, d)
	case *DefConst:
		return elaborateDefConst(module, env, d)
	case *DefExtern:
		return elaborateDefExtern(module, d)
	default:
		return nil, []source.SyntaxError{*module.DeclSyntaxError(decl, "unknown declaration")}
	}
}

func elaborateDefFun(module *Module, env *ModuleEnv, decl *DefFun) (*Declaration, []source.SyntaxError) {
	var (
		chk   = newChecker(module.Path, env, declAnchor(module, decl))
		sc    *scope
		types = make([]ast.Type, len(decl.Params)+1)
	)
	// Bind parameters at their declared types.
	for i, param := range decl.Params {
		sc = sc.bind(param.Name, param.Type)
		types[i] = param.Type
	}
	//
	types[len(decl.Params)] = decl.Return
	// Check the body against the declared return type.
	body, elaborated := chk.inferExpression(sc, decl.Body)
	chk.unify(decl.Return, body, decl.Body)
	// Resolve residual width ambiguity.
	chk.defaultWidths()
	chk.checkLiteralBounds()
	//
	if len(chk.errors) > 0 {
		return nil, chk.errors
	}
	//
	elaborated = chk.zonkExpression(elaborated)
	signature := arrow(types...)
	// Quantify over the variables of the declared signature.
	vars := ast.FreeVars(signature)
	//
	if len(residualVars(signature, elaborated)) > 0 {
		return nil, []source.SyntaxError{*module.DeclSyntaxError(decl, "ambiguous type")}
	}
	// Wrap parameters, then quantifiers, around the body.
	for i := len(decl.Params) - 1; i >= 0; i-- {
		elaborated = &ast.Abs{Param: decl.Params[i].Name, Body: elaborated}
	}
	//
	for i := len(vars) - 1; i >= 0; i-- {
		elaborated = &ast.TAbs{Param: vars[i], Body: elaborated}
	}
	//
	params := make([]string, len(decl.Params))
	//
	for i, param := range decl.Params {
		params[i] = param.Name
	}
	//
	return &Declaration{
		Name:   module.Name(decl),
		Scheme: ast.Scheme{Vars: vars, Body: signature},
		Body:   elaborated,
		Params: params,
	}, nil
}

func elaborateDefConst(module *Module, env *ModuleEnv, decl *DefConst) (*Declaration, []source.SyntaxError) {
	chk := newChecker(module.Path, env, declAnchor(module, decl))
	//
	body, elaborated := chk.inferExpression(nil, decl.Body)
	chk.unify(decl.Type, body, decl.Body)
	chk.defaultWidths()
	chk.checkLiteralBounds()
	//
	if len(chk.errors) > 0 {
		return nil, chk.errors
	}
	//
	elaborated = chk.zonkExpression(elaborated)
	vars := ast.FreeVars(decl.Type)
	//
	if len(residualVars(decl.Type, elaborated)) > 0 {
		return nil, []source.SyntaxError{*module.DeclSyntaxError(decl, "ambiguous type")}
	}
	//
	for i := len(vars) - 1; i >= 0; i-- {
		elaborated = &ast.TAbs{Param: vars[i], Body: elaborated}
	}
	//
	return &Declaration{
		Name:   module.Name(decl),
		Scheme: ast.Scheme{Vars: vars, Body: decl.Type},
		Body:   elaborated,
	}, nil
}

// An uninterpreted declaration has no body to check; only its type is
// recorded, and uses of it remain abstract.
func elaborateDefExtern(module *Module, decl *DefExtern) (*Declaration, []source.SyntaxError) {
	return &Declaration{
		Name:   module.Name(decl),
		Scheme: ast.Scheme{Vars: ast.FreeVars(decl.Type), Body: decl.Type},
		Extern: true,
	}, nil
}

// declAnchor anchors diagnostics raised whilst checking a declaration.
func declAnchor(module *Module, decl Decl) func(ast.Expr, string) *source.SyntaxError {
	return func(expr ast.Expr, msg string) *source.SyntaxError {
		return module.SyntaxError(decl, expr, msg)
	}
}

// exprAnchor anchors diagnostics raised whilst checking a standalone
// expression.
func exprAnchor(exprmap *source.Map[ast.Expr]) func(ast.Expr, string) *source.SyntaxError {
	return func(expr ast.Expr, msg string) *source.SyntaxError {
		srcfile := exprmap.Source()
		//
		if exprmap.Has(expr) {
			return srcfile.SyntaxError(exprmap.Get(expr), msg)
		}
		// Fall back on the whole text.
		return srcfile.SyntaxError(source.NewSpan(0, len(srcfile.Contents())), msg)
	}
}
