package spindle

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/consensys/go-spindle/pkg/spindle/ast"
	"github.com/consensys/go-spindle/pkg/util/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func srcFile(text string) *source.File {
	return source.NewSourceFile("test.spin", []byte(text))
}

func parseModule(t *testing.T, text string) *Module {
	t.Helper()
	//
	module, errors := Parse(srcFile(text))
	require.Empty(t, errors)
	//
	return module
}

func parseExpr(t *testing.T, text string) ast.Expr {
	t.Helper()
	//
	expr, _, errors := ParseExpr(srcFile(text))
	require.Empty(t, errors)
	//
	return expr
}

func TestParseEmptyModule(t *testing.T) {
	module := parseModule(t, "")
	assert.Empty(t, module.Decls)
	assert.Equal(t, uint(0), module.Path.Depth())
}

func TestParseModuleHeader(t *testing.T) {
	module := parseModule(t, "(module arith)\n(defconst one u8 1)")
	//
	assert.Equal(t, "arith", module.Path.String())
	require.Len(t, module.Decls, 1)
	assert.Equal(t, "arith.one", module.Name(module.Decls[0]).String())
}

func TestParseNestedModuleHeader(t *testing.T) {
	module := parseModule(t, "(module std.arith)")
	assert.Equal(t, uint(2), module.Path.Depth())
	assert.Equal(t, "std.arith", module.Path.String())
}

func TestParseDefFun(t *testing.T) {
	module := parseModule(t, "(defun (add (x u8) (y u8)) u8 (+ x y))")
	//
	require.Len(t, module.Decls, 1)
	decl, ok := module.Decls[0].(*DefFun)
	require.True(t, ok)
	//
	assert.Equal(t, "add", decl.Name)
	require.Len(t, decl.Params, 2)
	assert.Equal(t, "x", decl.Params[0].Name)
	assert.True(t, ast.Equals(ast.NewWordType(8), decl.Params[0].Type))
	assert.True(t, ast.Equals(ast.NewWordType(8), decl.Return))
}

func TestParseDefConst(t *testing.T) {
	module := parseModule(t, "(defconst mask u16 0xff00)")
	//
	decl, ok := module.Decls[0].(*DefConst)
	require.True(t, ok)
	assert.Equal(t, "mask", decl.Name)
	//
	lit, ok := decl.Body.(*ast.Lit)
	require.True(t, ok)
	assert.Equal(t, int64(0xff00), lit.Value.Int64())
}

func TestParseDefExtern(t *testing.T) {
	module := parseModule(t, "(defextern rom (fun u8 u8))")
	//
	decl, ok := module.Decls[0].(*DefExtern)
	require.True(t, ok)
	assert.Equal(t, "rom", decl.Name)
	//
	fn, ok := decl.Type.(*ast.FunType)
	require.True(t, ok)
	assert.True(t, ast.Equals(ast.NewWordType(8), fn.Argument))
}

func TestParseTypes(t *testing.T) {
	tests := []struct {
		text     string
		expected ast.Type
	}{
		{"bit", &ast.BitType{}},
		{"inf", &ast.InfType{}},
		{"u8", ast.NewWordType(8)},
		{"u64", ast.NewWordType(64)},
		{"17", ast.NewNumType(17)},
		{"a", &ast.VarType{Name: "a"}},
		{"(seq 4 u16)", &ast.SeqType{Length: ast.NewNumType(4), Element: ast.NewWordType(16)}},
		{"(seq inf bit)", &ast.SeqType{Length: &ast.InfType{}, Element: &ast.BitType{}}},
		{"(tuple u8 bit)", &ast.TupleType{Elements: []ast.Type{ast.NewWordType(8), &ast.BitType{}}}},
		{"(record (lo u8) (hi u8))", &ast.RecordType{Fields: []ast.Field{
			{Name: "lo", Type: ast.NewWordType(8)},
			{Name: "hi", Type: ast.NewWordType(8)},
		}}},
		// Arrows associate rightwards.
		{"(fun u8 u16 u32)", &ast.FunType{
			Argument: ast.NewWordType(8),
			Result:   &ast.FunType{Argument: ast.NewWordType(16), Result: ast.NewWordType(32)},
		}},
	}
	//
	for _, test := range tests {
		module := parseModule(t, fmt.Sprintf("(defextern x %s)", test.text))
		decl := module.Decls[0].(*DefExtern)
		//
		assert.True(t, ast.Equals(test.expected, decl.Type), "parsing type %s", test.text)
	}
}

func TestParseLiterals(t *testing.T) {
	tests := []struct {
		text     string
		expected int64
	}{
		{"0", 0},
		{"42", 42},
		{"-7", -7},
		{"0xff", 255},
		{"0b1010", 10},
	}
	//
	for _, test := range tests {
		lit, ok := parseExpr(t, test.text).(*ast.Lit)
		require.True(t, ok, "parsing %s", test.text)
		assert.Equal(t, test.expected, lit.Value.Int64())
	}
}

func TestParseBooleans(t *testing.T) {
	for _, text := range []string{"true", "false"} {
		prim, ok := parseExpr(t, text).(*ast.Prim)
		require.True(t, ok)
		assert.Equal(t, text, prim.Name)
	}
}

func TestParseOperators(t *testing.T) {
	// Binary operators curry leftwards.
	expr := parseExpr(t, "(+ x y)")
	outer, ok := expr.(*ast.App)
	require.True(t, ok)
	inner, ok := outer.Fn.(*ast.App)
	require.True(t, ok)
	//
	prim, ok := inner.Fn.(*ast.Prim)
	require.True(t, ok)
	assert.Equal(t, "+", prim.Name)
	assert.Equal(t, "x", inner.Arg.(*ast.Var).Name)
	assert.Equal(t, "y", outer.Arg.(*ast.Var).Name)
}

func TestParseUnaryMinus(t *testing.T) {
	expr, ok := parseExpr(t, "(- x)").(*ast.App)
	require.True(t, ok)
	//
	prim, ok := expr.Fn.(*ast.Prim)
	require.True(t, ok)
	assert.Equal(t, "negate", prim.Name)
}

func TestParseConditional(t *testing.T) {
	expr, ok := parseExpr(t, "(if c x y)").(*ast.If)
	require.True(t, ok)
	assert.Equal(t, "c", expr.Cond.(*ast.Var).Name)
	assert.Equal(t, "x", expr.Then.(*ast.Var).Name)
	assert.Equal(t, "y", expr.Else.(*ast.Var).Name)
}

func TestParseLetDesugaring(t *testing.T) {
	// Multiple bindings desugar into nested single bindings, with the first
	// binding outermost.
	expr, ok := parseExpr(t, "(let ((x 1) (y 2)) y)").(*ast.Let)
	require.True(t, ok)
	assert.Equal(t, "x", expr.Name)
	//
	body, ok := expr.Body.(*ast.Let)
	require.True(t, ok)
	assert.Equal(t, "y", body.Name)
}

func TestParseLambdaCurrying(t *testing.T) {
	expr, ok := parseExpr(t, "(fun (x y) x)").(*ast.Abs)
	require.True(t, ok)
	assert.Equal(t, "x", expr.Param)
	//
	body, ok := expr.Body.(*ast.Abs)
	require.True(t, ok)
	assert.Equal(t, "y", body.Param)
}

func TestParseApplicationCurrying(t *testing.T) {
	expr, ok := parseExpr(t, "(f x y)").(*ast.App)
	require.True(t, ok)
	assert.Equal(t, "y", expr.Arg.(*ast.Var).Name)
	//
	inner, ok := expr.Fn.(*ast.App)
	require.True(t, ok)
	assert.Equal(t, "f", inner.Fn.(*ast.Var).Name)
	assert.Equal(t, "x", inner.Arg.(*ast.Var).Name)
}

func TestParseSelection(t *testing.T) {
	expr, ok := parseExpr(t, "(get r lo)").(*ast.Select)
	require.True(t, ok)
	assert.Equal(t, "lo", expr.Field)
}

func TestParseProjection(t *testing.T) {
	expr, ok := parseExpr(t, "(proj x 1)").(*ast.Proj)
	require.True(t, ok)
	assert.Equal(t, uint(1), expr.Index)
}

func TestParseIndexing(t *testing.T) {
	expr, ok := parseExpr(t, "(@ x 3)").(*ast.Index)
	require.True(t, ok)
	//
	lit, ok := expr.Index.(*ast.Lit)
	require.True(t, ok)
	assert.Equal(t, int64(3), lit.Value.Int64())
}

func TestParseRecord(t *testing.T) {
	expr, ok := parseExpr(t, "{(lo 1) (hi 2)}").(*ast.Record)
	require.True(t, ok)
	require.Len(t, expr.Fields, 2)
	assert.Equal(t, "lo", expr.Fields[0].Name)
	assert.Equal(t, "hi", expr.Fields[1].Name)
}

func TestParseSequence(t *testing.T) {
	expr, ok := parseExpr(t, "[1 2 3]").(*ast.Seq)
	require.True(t, ok)
	assert.Len(t, expr.Items, 3)
	// Element type is left open for the checker.
	assert.Nil(t, expr.Element)
}

func TestParseRepeat(t *testing.T) {
	expr, ok := parseExpr(t, "(repeat 0)").(*ast.Repeat)
	require.True(t, ok)
	//
	_, ok = expr.Arg.(*ast.Lit)
	assert.True(t, ok)
}

func TestParseQualifiedReference(t *testing.T) {
	expr, ok := parseExpr(t, "arith.add").(*ast.Var)
	require.True(t, ok)
	assert.Equal(t, "arith.add", expr.Name)
}

func TestParseWideLiteral(t *testing.T) {
	var expected big.Int
	expected.SetString("10000000000000000", 16)
	//
	lit, ok := parseExpr(t, "0x10000000000000000").(*ast.Lit)
	require.True(t, ok)
	assert.Equal(t, 0, expected.Cmp(lit.Value))
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		// malformed declarations
		"(defun)",
		"(defun add u8 x)",
		"(defun (add (x u8)) u8)",
		"(defconst mask u16)",
		"(defextern rom)",
		"(badform x y)",
		"x",
		// misplaced module header
		"(defconst one u8 1)\n(module m)",
		// malformed types
		"(defextern x u7)",
		"(defextern x (seq 4))",
		"(defextern x (tuple u8))",
		"(defextern x ABC)",
		// malformed expressions
		"(defconst k u8 (if true 1))",
		"(defconst k u8 (let ((x)) x))",
		"(defconst k u8 (let () x))",
		"(defconst k u8 (fun () x))",
		"(defconst k u8 (proj x z))",
		"(defconst k u8 (+ 1 2 3))",
		"(defconst k u8 ())",
		"(defconst k u8 {(lo 1) (lo 2)})",
		"(defconst k u8 0xzz)",
	}
	//
	for _, test := range tests {
		_, errors := Parse(srcFile(test))
		assert.NotEmpty(t, errors, "parsing %s", test)
	}
}
