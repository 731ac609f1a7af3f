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
	"github.com/consensys/go-spindle/pkg/eval"
	"github.com/consensys/go-spindle/pkg/spindle"
	"github.com/consensys/go-spindle/pkg/spindle/ast"
	"github.com/consensys/go-spindle/pkg/util"
	"github.com/consensys/go-spindle/pkg/util/source"
)

// Pipeline abstracts the front-end stages a root selector is pushed through
// before generation proper: parsing, elaboration against the module, and
// defaulting.  It also exposes the module's declarations, both as metadata
// and as evaluation bindings.  The driver depends only on this interface;
// the production pipeline delegates to the spindle front end.
type Pipeline interface {
	// ParseRoot parses a root selector into an expression.
	ParseRoot(text string) (ast.Expr, []source.SyntaxError)
	// Elaborate resolves and types a parsed root against the module.  It
	// must not be called before a successful ParseRoot, since diagnostics
	// anchor into the parsed text.
	Elaborate(expr ast.Expr) (ast.Expr, ast.Type, []source.SyntaxError)
	// Default closes over residual type ambiguity of an elaborated root,
	// refusing when the root is not monomorphic.
	Default(expr ast.Expr, typ ast.Type) util.Option[util.Pair[ast.Substitution, ast.Expr]]
	// Resolve maps the canonical name of an elaborated variable back to its
	// declaration.
	Resolve(name string) (*spindle.Declaration, bool)
	// Bindings evaluates every declaration of the module, in declaration
	// order, into an environment binding its canonical name.
	Bindings(ops eval.Ops) *eval.Environment
}

// NewPipeline constructs the production pipeline over an elaborated module.
func NewPipeline(module *spindle.Module, env *spindle.ModuleEnv) Pipeline {
	return &pipeline{module: module, env: env}
}

type pipeline struct {
	module *spindle.Module
	env    *spindle.ModuleEnv
	// exprmap anchors elaboration diagnostics into the parsed root text.
	exprmap *source.Map[ast.Expr]
}

var _ Pipeline = &pipeline{}

// ParseRoot implementation for the Pipeline interface.
func (p *pipeline) ParseRoot(text string) (ast.Expr, []source.SyntaxError) {
	expr, exprmap, errs := spindle.ParseExpr(source.NewSourceFile("<root>", []byte(text)))
	//
	if len(errs) > 0 {
		return nil, errs
	}
	//
	p.exprmap = exprmap
	//
	return expr, nil
}

// Elaborate implementation for the Pipeline interface.  Unqualified names in
// the root resolve as if written inside the module itself.
func (p *pipeline) Elaborate(expr ast.Expr) (ast.Expr, ast.Type, []source.SyntaxError) {
	return spindle.Elaborate(p.env, p.module.Path, expr, p.exprmap)
}

// Default implementation for the Pipeline interface.
func (p *pipeline) Default(expr ast.Expr, typ ast.Type) util.Option[util.Pair[ast.Substitution, ast.Expr]] {
	return spindle.Default(expr, typ)
}

// Resolve implementation for the Pipeline interface.
func (p *pipeline) Resolve(name string) (*spindle.Declaration, bool) {
	return p.env.Lookup(name)
}

// Bindings implementation for the Pipeline interface.  Declarations may only
// refer to names declared strictly before them, so evaluating in declaration
// order lands every dependency in the environment ahead of its uses.
// Uninterpreted declarations bind a placeholder alongside their scheme.
func (p *pipeline) Bindings(ops eval.Ops) *eval.Environment {
	var (
		env       = eval.NewEnvironment()
		evaluator = eval.NewEvaluator(ops)
	)
	//
	for _, decl := range p.env.Declarations() {
		name := decl.Name.String()
		//
		if decl.Extern {
			env = env.BindUninterpreted(name, decl.Scheme, eval.UninterpretedPlaceholder(name))
		} else {
			env = env.BindLocal(name, evaluator.Eval(env, decl.Body))
		}
	}
	//
	return env
}
