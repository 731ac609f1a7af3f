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
)

// Default confirms that an elaborated expression is fully determined,
// producing the substitution applied together with the completed expression.
// Width variables with literal evidence were already defaulted during
// elaboration, so the substitution is empty here; what remains is the
// monomorphism gate: any free type variable surviving in the type, or in
// the expression's own annotations, means the expression is still
// polymorphic and nothing is returned.  Code generation requires a
// monomorphic target.
func Default(expr ast.Expr, typ ast.Type) util.Option[util.Pair[ast.Substitution, ast.Expr]] {
	if len(ast.FreeVars(typ)) > 0 || len(residualVars(typ, expr)) > 0 {
		return util.None[util.Pair[ast.Substitution, ast.Expr]]()
	}
	//
	return util.Some(util.NewPair(ast.Substitution{}, expr))
}
