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
	"fmt"
	"math/big"
	"slices"
	"strings"

	"github.com/consensys/go-spindle/pkg/spindle/ast"
	"github.com/consensys/go-spindle/pkg/util"
	"github.com/consensys/go-spindle/pkg/util/source"
	"github.com/consensys/go-spindle/pkg/word"
)

// ===================================================================
// Scope
// ===================================================================

// scope gives types to the term variables bound within an expression (i.e.
// by lambdas and lets).  Extension is by structural sharing, so sibling
// branches of an expression cannot observe each other's bindings.
type scope struct {
	parent *scope
	name   string
	typ    ast.Type
}

func (p *scope) bind(name string, typ ast.Type) *scope {
	return &scope{p, name, typ}
}

func (p *scope) lookup(name string) (ast.Type, bool) {
	for s := p; s != nil; s = s.parent {
		if s.name == name {
			return s.typ, true
		}
	}
	//
	return nil, false
}

// ===================================================================
// Checker
// ===================================================================

// checker infers types for a single expression using unification, whilst
// rewriting the expression into its elaborated form: references to global
// declarations are instantiated with explicit type applications, and every
// literal is replaced by an explicit demotion at a width determined either
// by unification or (failing that) by defaulting.  Variables declared in
// signatures are rigid; only the unification variables allocated here (whose
// names begin with "?") are ever solved.
type checker struct {
	// Path of the enclosing module, used to qualify global references.
	path util.Path
	// Environment of previously elaborated declarations.
	env *ModuleEnv
	// Anchor constructs a diagnostic against a given piece of syntax.
	anchor func(ast.Expr, string) *source.SyntaxError
	// Accumulated solution for unification variables.
	subst ast.Substitution
	// Number of unification variables allocated so far.
	counter uint
	// Literal occurrences, keyed by width variable, retained for defaulting
	// and the final bounds check.
	literals []literal
	// Accumulated diagnostics.
	errors []source.SyntaxError
}

// literal records one literal occurrence along with the width variable it
// was demoted at.
type literal struct {
	name   string
	value  *big.Int
	source ast.Expr
}

func newChecker(path util.Path, env *ModuleEnv,
	anchor func(ast.Expr, string) *source.SyntaxError) *checker {
	//
	return &checker{
		path:   path,
		env:    env,
		anchor: anchor,
		subst:  ast.Substitution{},
	}
}

// fresh allocates a previously unused unification variable.
func (p *checker) fresh() *ast.VarType {
	name := fmt.Sprintf("?%d", p.counter)
	p.counter++
	//
	return &ast.VarType{Name: name}
}

// freshWord constructs the type of words whose width is a fresh unification
// variable.
func (p *checker) freshWord() *ast.SeqType {
	return &ast.SeqType{Length: p.fresh(), Element: &ast.BitType{}}
}

// flexible checks whether a type variable is a unification variable, as
// opposed to a rigid variable declared in some signature.
func flexible(name string) bool {
	return strings.HasPrefix(name, "?")
}

func (p *checker) errorAt(at ast.Expr, msg string) {
	p.errors = append(p.errors, *p.anchor(at, msg))
}

// ===================================================================
// Unification
// ===================================================================

// resolve chases a type through the current substitution until its head is
// no longer a solved variable.
func (p *checker) resolve(t ast.Type) ast.Type {
	for {
		v, ok := t.(*ast.VarType)
		//
		if !ok {
			return t
		}
		//
		bound, ok := p.subst[v.Name]
		//
		if !ok {
			return t
		}
		//
		t = bound
	}
}

// zonk applies the current substitution throughout a type.
func (p *checker) zonk(t ast.Type) ast.Type {
	switch t := p.resolve(t).(type) {
	case *ast.SeqType:
		return &ast.SeqType{Length: p.zonk(t.Length), Element: p.zonk(t.Element)}
	case *ast.TupleType:
		elements := make([]ast.Type, len(t.Elements))
		//
		for i, e := range t.Elements {
			elements[i] = p.zonk(e)
		}
		//
		return &ast.TupleType{Elements: elements}
	case *ast.RecordType:
		fields := make([]ast.Field, len(t.Fields))
		//
		for i, f := range t.Fields {
			fields[i] = ast.Field{Name: f.Name, Type: p.zonk(f.Type)}
		}
		//
		return &ast.RecordType{Fields: fields}
	case *ast.FunType:
		return &ast.FunType{Argument: p.zonk(t.Argument), Result: p.zonk(t.Result)}
	default:
		return t
	}
}

// unify solves the constraint that two types must be equal, extending the
// substitution as needed.  Failure is reported against the given syntax.
func (p *checker) unify(expected ast.Type, found ast.Type, at ast.Expr) {
	expected, found = p.resolve(expected), p.resolve(found)
	//
	lhs, lok := expected.(*ast.VarType)
	rhs, rok := found.(*ast.VarType)
	//
	switch {
	case lok && rok && lhs.Name == rhs.Name:
		return
	case lok && flexible(lhs.Name):
		p.bindVar(lhs.Name, found, at)
		return
	case rok && flexible(rhs.Name):
		p.bindVar(rhs.Name, expected, at)
		return
	case lok || rok:
		// Distinct rigid variables, or a rigid variable against a concrete
		// type.  A rigid variable stands for an arbitrary caller-chosen
		// type, so nothing can be assumed of it.
		p.typeError(expected, found, at)
		return
	}
	//
	switch lhs := expected.(type) {
	case *ast.BitType:
		if _, ok := found.(*ast.BitType); ok {
			return
		}
	case *ast.InfType:
		if _, ok := found.(*ast.InfType); ok {
			return
		}
	case *ast.NumType:
		if rhs, ok := found.(*ast.NumType); ok && lhs.Value.Cmp(rhs.Value) == 0 {
			return
		}
	case *ast.SeqType:
		if rhs, ok := found.(*ast.SeqType); ok {
			p.unify(lhs.Length, rhs.Length, at)
			p.unify(lhs.Element, rhs.Element, at)
			//
			return
		}
	case *ast.TupleType:
		if rhs, ok := found.(*ast.TupleType); ok && len(lhs.Elements) == len(rhs.Elements) {
			for i := range lhs.Elements {
				p.unify(lhs.Elements[i], rhs.Elements[i], at)
			}
			//
			return
		}
	case *ast.RecordType:
		if rhs, ok := found.(*ast.RecordType); ok && sameFieldNames(lhs, rhs) {
			for i := range lhs.Fields {
				p.unify(lhs.Fields[i].Type, rhs.Fields[i].Type, at)
			}
			//
			return
		}
	case *ast.FunType:
		if rhs, ok := found.(*ast.FunType); ok {
			p.unify(lhs.Argument, rhs.Argument, at)
			p.unify(lhs.Result, rhs.Result, at)
			//
			return
		}
	}
	//
	p.typeError(expected, found, at)
}

func (p *checker) bindVar(name string, t ast.Type, at ast.Expr) {
	// Occurs check
	if slices.Contains(ast.FreeVars(p.zonk(t)), name) {
		p.errorAt(at, fmt.Sprintf("recursive type %s", p.zonk(t)))
		return
	}
	//
	p.subst[name] = t
}

func (p *checker) typeError(expected ast.Type, found ast.Type, at ast.Expr) {
	p.errorAt(at, fmt.Sprintf("expected type %s (found %s)", p.zonk(expected), p.zonk(found)))
}

func sameFieldNames(lhs *ast.RecordType, rhs *ast.RecordType) bool {
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

// instantiate replaces the quantified variables of a scheme with fresh
// unification variables, returning the opened body along with the chosen
// arguments in quantifier order.
func (p *checker) instantiate(scheme ast.Scheme) (ast.Type, []ast.Type) {
	if len(scheme.Vars) == 0 {
		return scheme.Body, nil
	}
	//
	var (
		args  = make([]ast.Type, len(scheme.Vars))
		subst = ast.Substitution{}
	)
	//
	for i, v := range scheme.Vars {
		args[i] = p.fresh()
		subst[v] = args[i]
	}
	//
	return ast.Substitute(subst, scheme.Body), args
}

// ===================================================================
// Primitive signatures
// ===================================================================

// wordOf constructs the type of words whose width is given by a variable.
func wordOf(name string) ast.Type {
	return &ast.SeqType{Length: &ast.VarType{Name: name}, Element: &ast.BitType{}}
}

// arrow folds a sequence of types into a right-associated function type.
func arrow(types ...ast.Type) ast.Type {
	result := types[len(types)-1]
	//
	for i := len(types) - 2; i >= 0; i-- {
		result = &ast.FunType{Argument: types[i], Result: result}
	}
	//
	return result
}

// primitiveScheme returns the type scheme of a given primitive.  Arithmetic
// and ordering are defined over words of a single (arbitrary) width, whilst
// the bit connectives apply pointwise to operands of any one type.  Shifts
// alone permit operands of differing widths, with the result taking the
// width of the value shifted.  Extensional equality has no scheme at all
// (its result type mirrors the structure of its operands) and is handled by
// a dedicated rule instead.
func primitiveScheme(name string) (ast.Scheme, bool) {
	var (
		bit = &ast.BitType{}
		a   = &ast.VarType{Name: "a"}
		m   = wordOf("m")
		n   = wordOf("n")
	)
	//
	switch name {
	case "true", "false":
		return ast.NewMonoScheme(bit), true
	case "+", "-", "*", "/", "%", "min", "max":
		return ast.Scheme{Vars: []string{"n"}, Body: arrow(n, n, n)}, true
	case "negate":
		return ast.Scheme{Vars: []string{"n"}, Body: arrow(n, n)}, true
	case "&", "|", "^":
		return ast.Scheme{Vars: []string{"a"}, Body: arrow(a, a, a)}, true
	case "~":
		return ast.Scheme{Vars: []string{"a"}, Body: arrow(a, a)}, true
	case "<<", ">>":
		return ast.Scheme{Vars: []string{"m", "n"}, Body: arrow(m, n, m)}, true
	case "<", ">", "<=", ">=", "==", "!=":
		return ast.Scheme{Vars: []string{"n"}, Body: arrow(n, n, bit)}, true
	}
	//
	return ast.Scheme{}, false
}

// ===================================================================
// Inference
// ===================================================================

// inferExpression determines the type of an expression whilst rewriting it
// into elaborated form.  On error, a diagnostic is recorded and inference
// continues with a fresh variable, so that one mistake does not drown out
// the rest.
func (p *checker) inferExpression(sc *scope, expr ast.Expr) (ast.Type, ast.Expr) {
	switch e := expr.(type) {
	case *ast.Var:
		return p.inferVariable(sc, e)
	case *ast.Prim:
		return p.inferPrimitive(e)
	case *ast.Lit:
		return p.inferLiteral(e)
	case *ast.App:
		return p.inferApplication(sc, e)
	case *ast.Abs:
		return p.inferLambda(sc, e)
	case *ast.If:
		return p.inferConditional(sc, e)
	case *ast.Let:
		return p.inferLet(sc, e)
	case *ast.Tuple:
		return p.inferTuple(sc, e)
	case *ast.Record:
		return p.inferRecord(sc, e)
	case *ast.Select:
		return p.inferSelection(sc, e)
	case *ast.Proj:
		return p.inferProjection(sc, e)
	case *ast.Index:
		return p.inferIndex(sc, e)
	case *ast.Seq:
		return p.inferSequence(sc, e)
	case *ast.Repeat:
		return p.inferRepeat(sc, e)
	default:
		p.errorAt(expr, "unknown expression encountered during elaboration")
		return p.fresh(), expr
	}
}

func (p *checker) inferVariable(sc *scope, expr *ast.Var) (ast.Type, ast.Expr) {
	// Locals shadow globals.
	if typ, ok := sc.lookup(expr.Name); ok {
		return typ, expr
	}
	// Otherwise resolve against previously elaborated declarations, first
	// within the enclosing module and then as written.
	decl, ok := p.env.Lookup(ast.NewQualifiedName(p.path, expr.Name).String())
	//
	if !ok {
		decl, ok = p.env.Lookup(expr.Name)
	}
	//
	if !ok {
		p.errorAt(expr, fmt.Sprintf("unknown symbol %s", expr.Name))
		return p.fresh(), expr
	}
	//
	typ, args := p.instantiate(decl.Scheme)
	// Record the instantiation, so evaluation can replay it.
	var elaborated ast.Expr = &ast.Var{Name: decl.Name.String()}
	//
	for _, arg := range args {
		elaborated = &ast.TApp{Fn: elaborated, Arg: arg}
	}
	//
	return typ, elaborated
}

func (p *checker) inferPrimitive(expr *ast.Prim) (ast.Type, ast.Expr) {
	scheme, ok := primitiveScheme(expr.Name)
	//
	if !ok {
		p.errorAt(expr, fmt.Sprintf("unsupported operation %s", expr.Name))
		return p.fresh(), expr
	}
	// Primitives dispatch on width at evaluation time, so the instantiation
	// need not be recorded against them.
	typ, _ := p.instantiate(scheme)
	//
	return typ, expr
}

func (p *checker) inferLiteral(expr *ast.Lit) (ast.Type, ast.Expr) {
	// Allocate the width variable this literal will be demoted at.
	width := p.fresh()
	typ := &ast.SeqType{Length: width, Element: &ast.BitType{}}
	// Retain the occurrence for defaulting and the bounds check.
	p.literals = append(p.literals, literal{width.Name, expr.Value, expr})
	// Replace the literal by an explicit demotion.
	demoted := &ast.TApp{
		Fn:  &ast.TApp{Fn: &ast.Prim{Name: "demote"}, Arg: &ast.NumType{Value: expr.Value}},
		Arg: typ,
	}
	//
	return typ, demoted
}

func (p *checker) inferApplication(sc *scope, expr *ast.App) (ast.Type, ast.Expr) {
	// Equality over functions cannot be described by a scheme, so it has a
	// rule of its own.
	if inner, ok := expr.Fn.(*ast.App); ok {
		if prim, ok := inner.Fn.(*ast.Prim); ok && (prim.Name == "===" || prim.Name == "!==") {
			return p.inferEquality(sc, prim, inner.Arg, expr.Arg)
		}
	}
	//
	fn, fnExpr := p.inferExpression(sc, expr.Fn)
	arg, argExpr := p.inferExpression(sc, expr.Arg)
	result := p.fresh()
	//
	p.unify(&ast.FunType{Argument: arg, Result: result}, fn, expr.Fn)
	//
	return result, &ast.App{Fn: fnExpr, Arg: argExpr}
}

func (p *checker) inferEquality(sc *scope, prim *ast.Prim, lhs ast.Expr, rhs ast.Expr) (ast.Type, ast.Expr) {
	lhsType, lhsExpr := p.inferExpression(sc, lhs)
	rhsType, rhsExpr := p.inferExpression(sc, rhs)
	//
	p.unify(lhsType, rhsType, rhs)
	//
	elaborated := &ast.App{Fn: &ast.App{Fn: prim, Arg: lhsExpr}, Arg: rhsExpr}
	//
	return p.equalityResult(lhsType, lhs), elaborated
}

// equalityResult determines the type of an extensional equality test over a
// given operand type, which mirrors any function structure before bottoming
// out at a bit.  The operand type must already be determined at this point;
// comparing (say) two bare lambda parameters is rejected.
func (p *checker) equalityResult(typ ast.Type, at ast.Expr) ast.Type {
	switch t := p.resolve(typ).(type) {
	case *ast.FunType:
		return &ast.FunType{Argument: t.Argument, Result: p.equalityResult(t.Result, at)}
	case *ast.SeqType:
		// Words only; comparison of general sequences is not defined.
		p.unify(&ast.BitType{}, t.Element, at)
		return &ast.BitType{}
	default:
		p.errorAt(at, fmt.Sprintf("expected comparable type (found %s)", p.zonk(typ)))
		return &ast.BitType{}
	}
}

func (p *checker) inferLambda(sc *scope, expr *ast.Abs) (ast.Type, ast.Expr) {
	param := p.fresh()
	body, bodyExpr := p.inferExpression(sc.bind(expr.Param, param), expr.Body)
	//
	return &ast.FunType{Argument: param, Result: body}, &ast.Abs{Param: expr.Param, Body: bodyExpr}
}

func (p *checker) inferConditional(sc *scope, expr *ast.If) (ast.Type, ast.Expr) {
	cond, condExpr := p.inferExpression(sc, expr.Cond)
	p.unify(&ast.BitType{}, cond, expr.Cond)
	// Both branches must agree.
	thenType, thenExpr := p.inferExpression(sc, expr.Then)
	elseType, elseExpr := p.inferExpression(sc, expr.Else)
	p.unify(thenType, elseType, expr.Else)
	//
	return thenType, &ast.If{Cond: condExpr, Then: thenExpr, Else: elseExpr}
}

func (p *checker) inferLet(sc *scope, expr *ast.Let) (ast.Type, ast.Expr) {
	// NOTE: let bindings are not generalised, hence the bound variable is
	// monomorphic within the body.
	bound, boundExpr := p.inferExpression(sc, expr.Bound)
	body, bodyExpr := p.inferExpression(sc.bind(expr.Name, bound), expr.Body)
	//
	return body, &ast.Let{Name: expr.Name, Bound: boundExpr, Body: bodyExpr}
}

func (p *checker) inferTuple(sc *scope, expr *ast.Tuple) (ast.Type, ast.Expr) {
	var (
		types = make([]ast.Type, len(expr.Items))
		items = make([]ast.Expr, len(expr.Items))
	)
	//
	for i, item := range expr.Items {
		types[i], items[i] = p.inferExpression(sc, item)
	}
	//
	return &ast.TupleType{Elements: types}, &ast.Tuple{Items: items}
}

func (p *checker) inferRecord(sc *scope, expr *ast.Record) (ast.Type, ast.Expr) {
	var (
		types  = make([]ast.Field, len(expr.Fields))
		fields = make([]ast.RecordField, len(expr.Fields))
	)
	//
	for i, field := range expr.Fields {
		typ, fieldExpr := p.inferExpression(sc, field.Expr)
		types[i] = ast.Field{Name: field.Name, Type: typ}
		fields[i] = ast.RecordField{Name: field.Name, Expr: fieldExpr}
	}
	//
	return &ast.RecordType{Fields: types}, &ast.Record{Fields: fields}
}

func (p *checker) inferSelection(sc *scope, expr *ast.Select) (ast.Type, ast.Expr) {
	arg, argExpr := p.inferExpression(sc, expr.Arg)
	elaborated := &ast.Select{Arg: argExpr, Field: expr.Field}
	// Record shapes are never inferred from their use, so the target type
	// must be determined by this point.
	record, ok := p.resolve(arg).(*ast.RecordType)
	//
	if !ok {
		p.errorAt(expr.Arg, fmt.Sprintf("expected record type (found %s)", p.zonk(arg)))
		return p.fresh(), elaborated
	}
	//
	typ, ok := record.Lookup(expr.Field)
	//
	if !ok {
		p.errorAt(expr, fmt.Sprintf("unknown field %s", expr.Field))
		return p.fresh(), elaborated
	}
	//
	return typ, elaborated
}

func (p *checker) inferProjection(sc *scope, expr *ast.Proj) (ast.Type, ast.Expr) {
	arg, argExpr := p.inferExpression(sc, expr.Arg)
	elaborated := &ast.Proj{Arg: argExpr, Index: expr.Index}
	//
	tuple, ok := p.resolve(arg).(*ast.TupleType)
	//
	if !ok {
		p.errorAt(expr.Arg, fmt.Sprintf("expected tuple type (found %s)", p.zonk(arg)))
		return p.fresh(), elaborated
	}
	//
	if expr.Index >= uint(len(tuple.Elements)) {
		p.errorAt(expr, "component index out-of-bounds")
		return p.fresh(), elaborated
	}
	//
	return tuple.Elements[expr.Index], elaborated
}

func (p *checker) inferIndex(sc *scope, expr *ast.Index) (ast.Type, ast.Expr) {
	arg, argExpr := p.inferExpression(sc, expr.Arg)
	index, indexExpr := p.inferExpression(sc, expr.Index)
	elaborated := &ast.Index{Arg: argExpr, Index: indexExpr}
	// Positions are themselves words, of any width.
	p.unify(p.freshWord(), index, expr.Index)
	//
	seq, ok := p.resolve(arg).(*ast.SeqType)
	//
	if !ok {
		p.errorAt(expr.Arg, fmt.Sprintf("expected sequence type (found %s)", p.zonk(arg)))
		return p.fresh(), elaborated
	}
	// For a word, this selects a single bit.
	return seq.Element, elaborated
}

func (p *checker) inferSequence(sc *scope, expr *ast.Seq) (ast.Type, ast.Expr) {
	var (
		element = p.fresh()
		items   = make([]ast.Expr, len(expr.Items))
	)
	//
	for i, item := range expr.Items {
		typ, itemExpr := p.inferExpression(sc, item)
		p.unify(element, typ, item)
		items[i] = itemExpr
	}
	// Element type is retained for evaluation, where a sequence of bits
	// becomes a packed word.
	elaborated := &ast.Seq{Items: items, Element: element}
	length := ast.NewNumType(uint64(len(expr.Items)))
	//
	return &ast.SeqType{Length: length, Element: element}, elaborated
}

func (p *checker) inferRepeat(sc *scope, expr *ast.Repeat) (ast.Type, ast.Expr) {
	arg, argExpr := p.inferExpression(sc, expr.Arg)
	//
	return &ast.SeqType{Length: &ast.InfType{}, Element: arg}, &ast.Repeat{Arg: argExpr}
}

// ===================================================================
// Defaulting
// ===================================================================

// defaultWidths resolves any width variables left undetermined after
// inference, using the literal occurrences recorded against them.  Each is
// defaulted to the smallest supported width able to hold every occurrence,
// or to the exact bit length when none can.  Variables without literal
// evidence are never defaulted; if free, they surface as ambiguity instead.
func (p *checker) defaultWidths() {
	widths := make(map[string]uint)
	//
	for _, lit := range p.literals {
		rep, ok := p.resolve(&ast.VarType{Name: lit.name}).(*ast.VarType)
		// Skip anything already solved, and anything equated with a rigid
		// variable (whose width the caller chooses).
		if !ok || !flexible(rep.Name) {
			continue
		}
		//
		bits := uint(lit.value.BitLen())
		//
		if existing, has := widths[rep.Name]; !has || bits > existing {
			widths[rep.Name] = bits
		}
	}
	//
	for name, bits := range widths {
		p.subst[name] = ast.NewNumType(uint64(defaultWidth(bits)))
	}
}

// defaultWidth gives the smallest supported width able to hold a value of a
// given bit length, or that exact length when no supported width can.
func defaultWidth(bits uint) uint {
	for _, width := range word.Supported {
		if bits <= width {
			return width
		}
	}
	//
	return bits
}

// checkLiteralBounds validates every literal occurrence against the width
// it was finally given.  Occurrences whose width remains open (i.e. rigid)
// cannot be checked statically and are wrapped at evaluation time instead.
func (p *checker) checkLiteralBounds() {
	for _, lit := range p.literals {
		width, ok := p.resolve(&ast.VarType{Name: lit.name}).(*ast.NumType)
		//
		if !ok || !width.Value.IsUint64() {
			continue
		}
		//
		if uint64(lit.value.BitLen()) > width.Value.Uint64() {
			p.errorAt(lit.source, "constant out-of-bounds")
		}
	}
}

// ===================================================================
// Zonking
// ===================================================================

// zonkExpression applies the final substitution to every type annotation
// embedded within an elaborated expression.
func (p *checker) zonkExpression(expr ast.Expr) ast.Expr {
	switch e := expr.(type) {
	case *ast.App:
		return &ast.App{Fn: p.zonkExpression(e.Fn), Arg: p.zonkExpression(e.Arg)}
	case *ast.Abs:
		return &ast.Abs{Param: e.Param, Body: p.zonkExpression(e.Body)}
	case *ast.TAbs:
		return &ast.TAbs{Param: e.Param, Body: p.zonkExpression(e.Body)}
	case *ast.TApp:
		return &ast.TApp{Fn: p.zonkExpression(e.Fn), Arg: p.zonk(e.Arg)}
	case *ast.If:
		return &ast.If{
			Cond: p.zonkExpression(e.Cond),
			Then: p.zonkExpression(e.Then),
			Else: p.zonkExpression(e.Else),
		}
	case *ast.Let:
		return &ast.Let{
			Name:  e.Name,
			Bound: p.zonkExpression(e.Bound),
			Body:  p.zonkExpression(e.Body),
		}
	case *ast.Tuple:
		items := make([]ast.Expr, len(e.Items))
		//
		for i, item := range e.Items {
			items[i] = p.zonkExpression(item)
		}
		//
		return &ast.Tuple{Items: items}
	case *ast.Record:
		fields := make([]ast.RecordField, len(e.Fields))
		//
		for i, f := range e.Fields {
			fields[i] = ast.RecordField{Name: f.Name, Expr: p.zonkExpression(f.Expr)}
		}
		//
		return &ast.Record{Fields: fields}
	case *ast.Select:
		return &ast.Select{Arg: p.zonkExpression(e.Arg), Field: e.Field}
	case *ast.Proj:
		return &ast.Proj{Arg: p.zonkExpression(e.Arg), Index: e.Index}
	case *ast.Index:
		return &ast.Index{Arg: p.zonkExpression(e.Arg), Index: p.zonkExpression(e.Index)}
	case *ast.Seq:
		items := make([]ast.Expr, len(e.Items))
		//
		for i, item := range e.Items {
			items[i] = p.zonkExpression(item)
		}
		//
		return &ast.Seq{Items: items, Element: p.zonk(e.Element)}
	case *ast.Repeat:
		return &ast.Repeat{Arg: p.zonkExpression(e.Arg)}
	default:
		// Variables, primitives and (unelaborated) literals carry no types.
		return expr
	}
}

// residualVars collects the unification variables remaining in a type and
// in the annotations of an elaborated expression.  Any remainder after
// defaulting means the type was never fully determined.
func residualVars(typ ast.Type, expr ast.Expr) []string {
	var vars []string
	//
	collect := func(t ast.Type) {
		for _, v := range ast.FreeVars(t) {
			if flexible(v) && !slices.Contains(vars, v) {
				vars = append(vars, v)
			}
		}
	}
	//
	collect(typ)
	walkTypes(expr, collect)
	//
	return vars
}

// walkTypes visits every type annotation embedded within an expression.
func walkTypes(expr ast.Expr, visit func(ast.Type)) {
	switch e := expr.(type) {
	case *ast.App:
		walkTypes(e.Fn, visit)
		walkTypes(e.Arg, visit)
	case *ast.Abs:
		walkTypes(e.Body, visit)
	case *ast.TAbs:
		walkTypes(e.Body, visit)
	case *ast.TApp:
		walkTypes(e.Fn, visit)
		visit(e.Arg)
	case *ast.If:
		walkTypes(e.Cond, visit)
		walkTypes(e.Then, visit)
		walkTypes(e.Else, visit)
	case *ast.Let:
		walkTypes(e.Bound, visit)
		walkTypes(e.Body, visit)
	case *ast.Tuple:
		for _, item := range e.Items {
			walkTypes(item, visit)
		}
	case *ast.Record:
		for _, f := range e.Fields {
			walkTypes(f.Expr, visit)
		}
	case *ast.Select:
		walkTypes(e.Arg, visit)
	case *ast.Proj:
		walkTypes(e.Arg, visit)
	case *ast.Index:
		walkTypes(e.Arg, visit)
		walkTypes(e.Index, visit)
	case *ast.Seq:
		for _, item := range e.Items {
			walkTypes(item, visit)
		}
		//
		if e.Element != nil {
			visit(e.Element)
		}
	case *ast.Repeat:
		walkTypes(e.Arg, visit)
	}
}
