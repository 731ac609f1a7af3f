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
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"unicode"

	"github.com/consensys/go-spindle/pkg/spindle/ast"
	"github.com/consensys/go-spindle/pkg/util"
	"github.com/consensys/go-spindle/pkg/util/source"
	"github.com/consensys/go-spindle/pkg/util/source/sexp"
)

// ===================================================================
// Public
// ===================================================================

// Parse parses the contents of a single source file into a module.  A module
// consists of an optional module header followed by zero or more
// declarations.
func Parse(srcfile *source.File) (*Module, []source.SyntaxError) {
	// Parse bytes into S-expressions
	terms, srcmap, err := sexp.ParseAll(srcfile)
	// Check the file lexed ok
	if err != nil {
		return nil, []source.SyntaxError{*err}
	}
	//
	return NewParser(srcfile, srcmap).parseModule(terms)
}

// ParseExpr parses a single expression, as used for the generation root
// selector.
func ParseExpr(srcfile *source.File) (ast.Expr, *source.Map[ast.Expr], []source.SyntaxError) {
	term, srcmap, err := sexp.Parse(srcfile)
	//
	if err != nil {
		return nil, nil, []source.SyntaxError{*err}
	}
	//
	parser := NewParser(srcfile, srcmap)
	expr, errors := parser.translator.Translate(term)
	//
	if len(errors) > 0 {
		return nil, nil, errors
	}
	//
	return expr, parser.translator.SourceMap(), nil
}

// ===================================================================
// Parser
// ===================================================================

// Parser implements a simple parser for the surface language.  The parser
// itself packages the relevant lisp constructs into their corresponding
// declaration and expression forms, and can fail on malformed shapes (e.g. a
// "defconst" without exactly three arguments).  It makes no attempt at
// deeper validation; whether expressions are well-scoped and well-typed is
// the elaborator's concern.
type Parser struct {
	srcfile *source.File
	// Translator used for recursive expressions.
	translator *sexp.Translator[ast.Expr]
	// Mapping from declarations to their spans in the original text.
	declmap *source.Map[Decl]
}

// NewParser constructs a new parser using a given mapping from S-expressions
// to spans in the underlying source file.
func NewParser(srcfile *source.File, srcmap *source.Map[sexp.SExp]) *Parser {
	t := sexp.NewTranslator[ast.Expr](srcfile, srcmap)
	// Construct parser
	parser := &Parser{srcfile, t, source.NewSourceMap[Decl](srcmap.Source())}
	// Configure expression translator
	t.AddSymbolRule(literalParserRule)
	t.AddSymbolRule(boolParserRule)
	t.AddSymbolRule(identifierParserRule)
	//
	for name := range primArities {
		t.AddRecursiveListRule(name, primParserRule)
	}
	//
	t.AddRecursiveListRule("if", ifParserRule)
	t.AddRecursiveListRule("tuple", tupleParserRule)
	t.AddRecursiveListRule("@", indexParserRule)
	t.AddRecursiveListRule("repeat", repeatParserRule)
	t.AddListRule("let", letParserRule(parser))
	t.AddListRule("fun", lambdaParserRule(parser))
	t.AddListRule("get", selectParserRule(parser))
	t.AddListRule("proj", projParserRule(parser))
	t.AddDefaultListRule(applicationParserRule(parser))
	t.AddDefaultSetRule(recordParserRule(parser))
	t.AddDefaultArrayRule(sequenceParserRule(parser))
	//
	return parser
}

// Extract all declarations of the module and package them up.
func (p *Parser) parseModule(terms []sexp.SExp) (*Module, []source.SyntaxError) {
	var (
		module = &Module{
			srcfile: p.srcfile,
			exprmap: p.translator.SourceMap(),
			declmap: p.declmap,
		}
		errors []source.SyntaxError
	)
	// Leading module header, if any
	if len(terms) > 0 && isModuleHeader(terms[0]) {
		path, errs := p.parseModuleStart(terms[0])
		//
		if len(errs) > 0 {
			return nil, errs
		}
		//
		module.Path = path
		terms = terms[1:]
	}
	//
	for _, term := range terms {
		if isModuleHeader(term) {
			errors = append(errors, *p.translator.SyntaxError(term, "misplaced module declaration"))
		} else if decl, errs := p.parseDeclaration(term); len(errs) > 0 {
			errors = append(errors, errs...)
		} else {
			module.Decls = append(module.Decls, decl)
		}
	}
	//
	if len(errors) > 0 {
		return nil, errors
	}
	//
	return module, nil
}

// Parse a module header of the form "(module m)", where the name may be
// dotted to indicate nesting.
func (p *Parser) parseModuleStart(s sexp.SExp) (util.Path, []source.SyntaxError) {
	l := s.(*sexp.List)
	//
	if l.Len() != 2 || l.Get(1).AsSymbol() == nil {
		return util.Path{}, p.translator.SyntaxErrors(l, "malformed module declaration")
	}
	//
	name := l.Get(1).AsSymbol().Value
	//
	if !isIdentifier(name) {
		return util.Path{}, p.translator.SyntaxErrors(l.Get(1), "invalid module name")
	}
	//
	return util.NewPath(strings.Split(name, ".")...), nil
}

func (p *Parser) parseDeclaration(s sexp.SExp) (Decl, []source.SyntaxError) {
	l, ok := s.(*sexp.List)
	// Check for error
	if !ok {
		return nil, p.translator.SyntaxErrors(s, "unexpected or malformed declaration")
	}
	//
	var (
		decl   Decl
		errors []source.SyntaxError
	)
	//
	if l.Len() == 4 && l.MatchSymbols(1, "defun") {
		decl, errors = p.parseDefFun(l)
	} else if l.Len() == 4 && l.MatchSymbols(1, "defconst") {
		decl, errors = p.parseDefConst(l)
	} else if l.Len() == 3 && l.MatchSymbols(1, "defextern") {
		decl, errors = p.parseDefExtern(l)
	} else {
		errors = p.translator.SyntaxErrors(s, "malformed declaration")
	}
	// Register declaration span
	if decl != nil && len(errors) == 0 {
		p.declmap.Put(decl, p.translator.SpanOf(s))
	}
	//
	return decl, errors
}

// Parse a function declaration of the form "(defun (name (x T) ...) R body)".
func (p *Parser) parseDefFun(l *sexp.List) (Decl, []source.SyntaxError) {
	var errors []source.SyntaxError
	// Extract signature
	signature, ok := l.Get(1).(*sexp.List)
	//
	if !ok || signature.Len() < 2 {
		return nil, p.translator.SyntaxErrors(l.Get(1), "malformed function signature")
	}
	// Extract function name
	name := signature.Get(0).AsSymbol()
	//
	if name == nil || !isUnqualifiedIdentifier(name.Value) {
		return nil, p.translator.SyntaxErrors(signature.Get(0), "invalid function name")
	}
	// Extract parameters
	params := make([]Param, signature.Len()-1)
	//
	for i := range params {
		param, errs := p.parseParam(signature.Get(i + 1))
		errors = append(errors, errs...)
		params[i] = param
	}
	// Extract return type
	ret, errs := p.parseType(l.Get(2))
	errors = append(errors, errs...)
	// Extract body
	body, errs := p.translator.Translate(l.Get(3))
	errors = append(errors, errs...)
	//
	if len(errors) > 0 {
		return nil, errors
	}
	//
	return &DefFun{name.Value, params, ret, body}, nil
}

func (p *Parser) parseParam(s sexp.SExp) (Param, []source.SyntaxError) {
	l, ok := s.(*sexp.List)
	//
	if !ok || l.Len() != 2 || l.Get(0).AsSymbol() == nil {
		return Param{}, p.translator.SyntaxErrors(s, "malformed parameter")
	}
	//
	name := l.Get(0).AsSymbol().Value
	//
	if !isUnqualifiedIdentifier(name) {
		return Param{}, p.translator.SyntaxErrors(l.Get(0), "invalid parameter name")
	}
	//
	typ, errors := p.parseType(l.Get(1))
	//
	if len(errors) > 0 {
		return Param{}, errors
	}
	//
	return Param{name, typ}, nil
}

// Parse a constant declaration of the form "(defconst name T value)".
func (p *Parser) parseDefConst(l *sexp.List) (Decl, []source.SyntaxError) {
	name := l.Get(1).AsSymbol()
	//
	if name == nil || !isUnqualifiedIdentifier(name.Value) {
		return nil, p.translator.SyntaxErrors(l.Get(1), "invalid constant name")
	}
	//
	typ, errors := p.parseType(l.Get(2))
	//
	body, errs := p.translator.Translate(l.Get(3))
	errors = append(errors, errs...)
	//
	if len(errors) > 0 {
		return nil, errors
	}
	//
	return &DefConst{name.Value, typ, body}, nil
}

// Parse an uninterpreted declaration of the form "(defextern name T)".
func (p *Parser) parseDefExtern(l *sexp.List) (Decl, []source.SyntaxError) {
	name := l.Get(1).AsSymbol()
	//
	if name == nil || !isUnqualifiedIdentifier(name.Value) {
		return nil, p.translator.SyntaxErrors(l.Get(1), "invalid declaration name")
	}
	//
	typ, errors := p.parseType(l.Get(2))
	//
	if len(errors) > 0 {
		return nil, errors
	}
	//
	return &DefExtern{name.Value, typ}, nil
}

// ===================================================================
// Types
// ===================================================================

// Widths of the built-in word type names.
var wordTypes = map[string]uint{
	"u8": 8, "u16": 16, "u32": 32, "u64": 64,
}

func (p *Parser) parseType(s sexp.SExp) (ast.Type, []source.SyntaxError) {
	switch t := s.(type) {
	case *sexp.Symbol:
		return p.parseTypeSymbol(t)
	case *sexp.List:
		return p.parseTypeList(t)
	default:
		return nil, p.translator.SyntaxErrors(s, "malformed type")
	}
}

func (p *Parser) parseTypeSymbol(s *sexp.Symbol) (ast.Type, []source.SyntaxError) {
	name := s.Value
	//
	switch {
	case name == "bit":
		return &ast.BitType{}, nil
	case name == "inf":
		return &ast.InfType{}, nil
	}
	// Word sugar
	if width, ok := wordTypes[name]; ok {
		return ast.NewWordType(width), nil
	}
	// Type-level numeral
	if name[0] >= '0' && name[0] <= '9' {
		var num big.Int
		//
		if _, ok := num.SetString(name, 10); !ok {
			return nil, p.translator.SyntaxErrors(s, "invalid type-level numeral")
		}
		//
		return &ast.NumType{Value: &num}, nil
	}
	// Single-letter type variable
	if len(name) == 1 && unicode.IsLower(rune(name[0])) {
		return &ast.VarType{Name: name}, nil
	}
	//
	return nil, p.translator.SyntaxErrors(s, fmt.Sprintf("unknown type %s", name))
}

func (p *Parser) parseTypeList(l *sexp.List) (ast.Type, []source.SyntaxError) {
	var errors []source.SyntaxError
	//
	switch {
	case l.Len() == 3 && l.MatchSymbols(1, "seq"):
		length, errs := p.parseType(l.Get(1))
		errors = append(errors, errs...)
		element, errs := p.parseType(l.Get(2))
		errors = append(errors, errs...)
		//
		if len(errors) > 0 {
			return nil, errors
		}
		//
		return &ast.SeqType{Length: length, Element: element}, nil
	case l.Len() >= 3 && l.MatchSymbols(1, "tuple"):
		elements := make([]ast.Type, l.Len()-1)
		//
		for i := range elements {
			element, errs := p.parseType(l.Get(i + 1))
			errors = append(errors, errs...)
			elements[i] = element
		}
		//
		if len(errors) > 0 {
			return nil, errors
		}
		//
		return &ast.TupleType{Elements: elements}, nil
	case l.MatchSymbols(1, "record"):
		fields := make([]ast.Field, l.Len()-1)
		//
		for i := range fields {
			field, errs := p.parseTypeField(l.Get(i + 1))
			errors = append(errors, errs...)
			fields[i] = field
		}
		//
		if len(errors) > 0 {
			return nil, errors
		}
		//
		return &ast.RecordType{Fields: fields}, nil
	case l.Len() >= 3 && l.MatchSymbols(1, "fun"):
		types := make([]ast.Type, l.Len()-1)
		//
		for i := range types {
			typ, errs := p.parseType(l.Get(i + 1))
			errors = append(errors, errs...)
			types[i] = typ
		}
		//
		if len(errors) > 0 {
			return nil, errors
		}
		// Arrows associate to the right.
		result := types[len(types)-1]
		//
		for i := len(types) - 2; i >= 0; i-- {
			result = &ast.FunType{Argument: types[i], Result: result}
		}
		//
		return result, nil
	default:
		return nil, p.translator.SyntaxErrors(l, "malformed type")
	}
}

func (p *Parser) parseTypeField(s sexp.SExp) (ast.Field, []source.SyntaxError) {
	l, ok := s.(*sexp.List)
	//
	if !ok || l.Len() != 2 || l.Get(0).AsSymbol() == nil {
		return ast.Field{}, p.translator.SyntaxErrors(s, "malformed record field")
	}
	//
	typ, errors := p.parseType(l.Get(1))
	//
	if len(errors) > 0 {
		return ast.Field{}, errors
	}
	//
	return ast.Field{Name: l.Get(0).AsSymbol().Value, Type: typ}, nil
}

// ===================================================================
// Expression rules
// ===================================================================

// Arities of the primitive operator symbols recognised in operator position.
var primArities = map[string]int{
	"+": 2, "-": 2, "*": 2, "/": 2, "%": 2,
	"&": 2, "|": 2, "^": 2, "~": 1,
	"<<": 2, ">>": 2,
	"<": 2, ">": 2, "<=": 2, ">=": 2, "==": 2, "!=": 2,
	"===": 2, "!==": 2,
	"min": 2, "max": 2, "negate": 1,
}

func literalParserRule(symbol string) (ast.Expr, bool, error) {
	var (
		base int
		name string
		num  big.Int
	)
	//
	if strings.HasPrefix(symbol, "0x") {
		symbol = symbol[2:]
		base = 16
		name = "hexadecimal"
	} else if strings.HasPrefix(symbol, "0b") {
		symbol = symbol[2:]
		base = 2
		name = "binary"
	} else if (symbol[0] >= '0' && symbol[0] <= '9') ||
		(symbol[0] == '-' && len(symbol) > 1) {
		base = 10
		name = "integer"
	} else {
		// Not applicable
		return nil, false, nil
	}
	// Attempt to parse
	if _, ok := num.SetString(symbol, base); !ok {
		return nil, true, fmt.Errorf("invalid %s constant", name)
	}
	// Done
	return &ast.Lit{Value: &num}, true, nil
}

func boolParserRule(symbol string) (ast.Expr, bool, error) {
	if symbol == "true" || symbol == "false" {
		return &ast.Prim{Name: symbol}, true, nil
	}
	//
	return nil, false, nil
}

func identifierParserRule(symbol string) (ast.Expr, bool, error) {
	if !isIdentifier(symbol) {
		return nil, false, nil
	}
	//
	return &ast.Var{Name: symbol}, true, nil
}

func primParserRule(name string, args []ast.Expr) (ast.Expr, error) {
	// Unary minus is negation
	if name == "-" && len(args) == 1 {
		return &ast.App{Fn: &ast.Prim{Name: "negate"}, Arg: args[0]}, nil
	}
	//
	if arity := primArities[name]; len(args) != arity {
		return nil, fmt.Errorf("incorrect number of arguments (expected %d)", arity)
	}
	// Curry the arguments
	var expr ast.Expr = &ast.Prim{Name: name}
	//
	for _, arg := range args {
		expr = &ast.App{Fn: expr, Arg: arg}
	}
	//
	return expr, nil
}

func ifParserRule(_ string, args []ast.Expr) (ast.Expr, error) {
	if len(args) != 3 {
		return nil, errors.New("incorrect number of arguments")
	}
	//
	return &ast.If{Cond: args[0], Then: args[1], Else: args[2]}, nil
}

func tupleParserRule(_ string, args []ast.Expr) (ast.Expr, error) {
	if len(args) < 2 {
		return nil, errors.New("tuples require at least two components")
	}
	//
	return &ast.Tuple{Items: args}, nil
}

func indexParserRule(_ string, args []ast.Expr) (ast.Expr, error) {
	if len(args) != 2 {
		return nil, errors.New("incorrect number of arguments")
	}
	//
	return &ast.Index{Arg: args[0], Index: args[1]}, nil
}

func repeatParserRule(_ string, args []ast.Expr) (ast.Expr, error) {
	if len(args) != 1 {
		return nil, errors.New("incorrect number of arguments")
	}
	//
	return &ast.Repeat{Arg: args[0]}, nil
}

func letParserRule(p *Parser) sexp.ListRule[ast.Expr] {
	return func(l *sexp.List) (ast.Expr, []source.SyntaxError) {
		var errors []source.SyntaxError
		//
		if l.Len() != 3 {
			return nil, p.translator.SyntaxErrors(l, "malformed let")
		}
		//
		bindings, ok := l.Get(1).(*sexp.List)
		//
		if !ok || bindings.Len() == 0 {
			return nil, p.translator.SyntaxErrors(l.Get(1), "malformed let bindings")
		}
		//
		names := make([]string, bindings.Len())
		bounds := make([]ast.Expr, bindings.Len())
		//
		for i := 0; i < bindings.Len(); i++ {
			binding, ok := bindings.Get(i).(*sexp.List)
			//
			if !ok || binding.Len() != 2 || binding.Get(0).AsSymbol() == nil {
				errors = append(errors, *p.translator.SyntaxError(bindings.Get(i), "malformed let binding"))
				continue
			}
			//
			names[i] = binding.Get(0).AsSymbol().Value
			bound, errs := p.translator.Translate(binding.Get(1))
			errors = append(errors, errs...)
			bounds[i] = bound
		}
		//
		body, errs := p.translator.Translate(l.Get(2))
		errors = append(errors, errs...)
		//
		if len(errors) > 0 {
			return nil, errors
		}
		// Desugar into nested single bindings, first binding outermost.
		for i := bindings.Len() - 1; i >= 0; i-- {
			body = &ast.Let{Name: names[i], Bound: bounds[i], Body: body}
		}
		//
		return body, nil
	}
}

func lambdaParserRule(p *Parser) sexp.ListRule[ast.Expr] {
	return func(l *sexp.List) (ast.Expr, []source.SyntaxError) {
		if l.Len() != 3 {
			return nil, p.translator.SyntaxErrors(l, "malformed function")
		}
		//
		params, ok := l.Get(1).(*sexp.List)
		//
		if !ok || params.Len() == 0 {
			return nil, p.translator.SyntaxErrors(l.Get(1), "malformed parameter list")
		}
		//
		names := make([]string, params.Len())
		//
		for i := 0; i < params.Len(); i++ {
			symbol := params.Get(i).AsSymbol()
			//
			if symbol == nil || !isUnqualifiedIdentifier(symbol.Value) {
				return nil, p.translator.SyntaxErrors(params.Get(i), "invalid parameter name")
			}
			//
			names[i] = symbol.Value
		}
		//
		body, errors := p.translator.Translate(l.Get(2))
		//
		if len(errors) > 0 {
			return nil, errors
		}
		// Curry the parameters
		for i := params.Len() - 1; i >= 0; i-- {
			body = &ast.Abs{Param: names[i], Body: body}
		}
		//
		return body, nil
	}
}

func selectParserRule(p *Parser) sexp.ListRule[ast.Expr] {
	return func(l *sexp.List) (ast.Expr, []source.SyntaxError) {
		if l.Len() != 3 || l.Get(2).AsSymbol() == nil {
			return nil, p.translator.SyntaxErrors(l, "malformed field selection")
		}
		//
		arg, errors := p.translator.Translate(l.Get(1))
		//
		if len(errors) > 0 {
			return nil, errors
		}
		//
		return &ast.Select{Arg: arg, Field: l.Get(2).AsSymbol().Value}, nil
	}
}

func projParserRule(p *Parser) sexp.ListRule[ast.Expr] {
	return func(l *sexp.List) (ast.Expr, []source.SyntaxError) {
		if l.Len() != 3 || l.Get(2).AsSymbol() == nil {
			return nil, p.translator.SyntaxErrors(l, "malformed projection")
		}
		//
		index, err := strconv.ParseUint(l.Get(2).AsSymbol().Value, 10, 32)
		//
		if err != nil {
			return nil, p.translator.SyntaxErrors(l.Get(2), "invalid component index")
		}
		//
		arg, errors := p.translator.Translate(l.Get(1))
		//
		if len(errors) > 0 {
			return nil, errors
		}
		//
		return &ast.Proj{Arg: arg, Index: uint(index)}, nil
	}
}

func applicationParserRule(p *Parser) sexp.ListRule[ast.Expr] {
	return func(l *sexp.List) (ast.Expr, []source.SyntaxError) {
		var errors []source.SyntaxError
		//
		if l.Len() < 2 {
			return nil, p.translator.SyntaxErrors(l, "malformed application")
		}
		// Translate all elements, including the function itself
		exprs := make([]ast.Expr, l.Len())
		//
		for i := 0; i < l.Len(); i++ {
			expr, errs := p.translator.Translate(l.Get(i))
			errors = append(errors, errs...)
			exprs[i] = expr
		}
		//
		if len(errors) > 0 {
			return nil, errors
		}
		// Curry the arguments
		expr := exprs[0]
		//
		for _, arg := range exprs[1:] {
			expr = &ast.App{Fn: expr, Arg: arg}
		}
		//
		return expr, nil
	}
}

func recordParserRule(p *Parser) sexp.SetRule[ast.Expr] {
	return func(s *sexp.Set) (ast.Expr, []source.SyntaxError) {
		var (
			errors []source.SyntaxError
			seen   = make(map[string]bool)
		)
		//
		fields := make([]ast.RecordField, s.Len())
		//
		for i := 0; i < s.Len(); i++ {
			field, ok := s.Get(i).(*sexp.List)
			//
			if !ok || field.Len() != 2 || field.Get(0).AsSymbol() == nil {
				errors = append(errors, *p.translator.SyntaxError(s.Get(i), "malformed record field"))
				continue
			}
			//
			name := field.Get(0).AsSymbol().Value
			//
			if seen[name] {
				errors = append(errors, *p.translator.SyntaxError(field.Get(0), fmt.Sprintf("duplicate field %s", name)))
			}
			//
			seen[name] = true
			expr, errs := p.translator.Translate(field.Get(1))
			errors = append(errors, errs...)
			fields[i] = ast.RecordField{Name: name, Expr: expr}
		}
		//
		if len(errors) > 0 {
			return nil, errors
		}
		//
		return &ast.Record{Fields: fields}, nil
	}
}

func sequenceParserRule(p *Parser) sexp.ArrayRule[ast.Expr] {
	return func(a *sexp.Array) (ast.Expr, []source.SyntaxError) {
		var errors []source.SyntaxError
		//
		items := make([]ast.Expr, a.Len())
		//
		for i := 0; i < a.Len(); i++ {
			item, errs := p.translator.Translate(a.Get(i))
			errors = append(errors, errs...)
			items[i] = item
		}
		//
		if len(errors) > 0 {
			return nil, errors
		}
		// Element type is filled in by the checker.
		return &ast.Seq{Items: items}, nil
	}
}

// ===================================================================
// Helpers
// ===================================================================

func isModuleHeader(s sexp.SExp) bool {
	l, ok := s.(*sexp.List)
	return ok && l.MatchSymbols(1, "module")
}

// isIdentifier checks whether a symbol is a valid, possibly dot-qualified,
// name.
func isIdentifier(symbol string) bool {
	for i, c := range symbol {
		if i == 0 && !unicode.IsLetter(c) && c != '_' {
			return false
		} else if i != 0 && !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '_' && c != '.' {
			return false
		}
	}
	//
	return len(symbol) > 0
}

// isUnqualifiedIdentifier checks whether a symbol is a valid name without
// any qualification.
func isUnqualifiedIdentifier(symbol string) bool {
	return isIdentifier(symbol) && !strings.Contains(symbol, ".")
}
