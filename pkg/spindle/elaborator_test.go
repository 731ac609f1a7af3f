package spindle

import (
	"strings"
	"testing"

	"github.com/consensys/go-spindle/pkg/spindle/ast"
	"github.com/consensys/go-spindle/pkg/util/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func elaborate(t *testing.T, text string) (*Module, *ModuleEnv) {
	t.Helper()
	//
	module := parseModule(t, text)
	env, errors := ElaborateModule(module)
	require.Empty(t, errors)
	//
	return module, env
}

func elaborateFailure(t *testing.T, text string) []source.SyntaxError {
	t.Helper()
	//
	module := parseModule(t, text)
	_, errors := ElaborateModule(module)
	require.NotEmpty(t, errors)
	//
	return errors
}

// demoteWidths extracts the word widths at which the literals of an
// elaborated expression were demoted.
func demoteWidths(expr ast.Expr) []uint {
	var widths []uint
	//
	var walk func(ast.Expr)
	//
	walk = func(expr ast.Expr) {
		switch e := expr.(type) {
		case *ast.TApp:
			if inner, ok := e.Fn.(*ast.TApp); ok {
				if prim, ok := inner.Fn.(*ast.Prim); ok && prim.Name == "demote" {
					if seq, ok := e.Arg.(*ast.SeqType); ok {
						if width, ok := seq.AsWord(); ok {
							widths = append(widths, width)
						}
					}
					//
					return
				}
			}
			//
			walk(e.Fn)
		case *ast.App:
			walk(e.Fn)
			walk(e.Arg)
		case *ast.Abs:
			walk(e.Body)
		case *ast.TAbs:
			walk(e.Body)
		case *ast.If:
			walk(e.Cond)
			walk(e.Then)
			walk(e.Else)
		case *ast.Let:
			walk(e.Bound)
			walk(e.Body)
		case *ast.Seq:
			for _, item := range e.Items {
				walk(item)
			}
		}
	}
	//
	walk(expr)
	//
	return widths
}

func TestElaborateFunction(t *testing.T) {
	_, env := elaborate(t, "(defun (complement (x u8)) u8 (~ x))")
	//
	decl, ok := env.Lookup("complement")
	require.True(t, ok)
	//
	u8 := ast.NewWordType(8)
	assert.True(t, decl.Scheme.IsMonomorphic())
	assert.True(t, ast.Equals(&ast.FunType{Argument: u8, Result: u8}, decl.Scheme.Body))
	assert.Equal(t, []string{"x"}, decl.Params)
	assert.False(t, decl.Extern)
	//
	_, ok = decl.Body.(*ast.Abs)
	assert.True(t, ok)
}

func TestElaborateConstant(t *testing.T) {
	_, env := elaborate(t, "(defconst mask u16 0xff00)")
	//
	decl, ok := env.Lookup("mask")
	require.True(t, ok)
	assert.True(t, ast.Equals(ast.NewWordType(16), decl.Scheme.Body))
	assert.Equal(t, []uint{16}, demoteWidths(decl.Body))
}

func TestElaborateLiteralWidthFromContext(t *testing.T) {
	// The literal takes its width from the parameter it is combined with.
	_, env := elaborate(t, "(defun (inc (x u16)) u16 (+ x 1))")
	//
	decl, _ := env.Lookup("inc")
	assert.Equal(t, []uint{16}, demoteWidths(decl.Body))
}

func TestElaborateLiteralWidthDefaulted(t *testing.T) {
	// Nothing constrains the comparison width, so it defaults to the
	// smallest supported width holding both literals.
	_, env := elaborate(t, "(defconst t bit (< 1 2))")
	decl, _ := env.Lookup("t")
	assert.Equal(t, []uint{8, 8}, demoteWidths(decl.Body))
	//
	_, env = elaborate(t, "(defconst u bit (< 300 299))")
	decl, _ = env.Lookup("u")
	assert.Equal(t, []uint{16, 16}, demoteWidths(decl.Body))
}

func TestElaborateDefaultedWidthBeyondSupport(t *testing.T) {
	// No supported width holds 2^70, so the literals are given their exact
	// bit length.  Evaluating the comparison would then fault; rejecting
	// the width is deferred until a word must actually be operated on.
	_, env := elaborate(t, "(defconst t bit (< 0x400000000000000000 1))")
	//
	decl, _ := env.Lookup("t")
	assert.Equal(t, []uint{71, 71}, demoteWidths(decl.Body))
}

func TestElaboratePolymorphicFunction(t *testing.T) {
	_, env := elaborate(t, "(defun (id (x a)) a x)")
	//
	decl, ok := env.Lookup("id")
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, decl.Scheme.Vars)
	assert.False(t, decl.Scheme.IsMonomorphic())
	// Body is quantified ahead of the parameter.
	tabs, ok := decl.Body.(*ast.TAbs)
	require.True(t, ok)
	assert.Equal(t, "a", tabs.Param)
	//
	_, ok = tabs.Body.(*ast.Abs)
	assert.True(t, ok)
}

func TestElaborateGlobalReference(t *testing.T) {
	_, env := elaborate(t,
		"(defun (id (x a)) a x)\n(defun (twice (x u8)) u8 (id (id x)))")
	//
	decl, _ := env.Lookup("twice")
	// Each reference to id is instantiated at u8.
	var instantiations []ast.Type
	//
	walkTypes(decl.Body, func(typ ast.Type) {
		instantiations = append(instantiations, typ)
	})
	//
	require.Len(t, instantiations, 2)
	//
	for _, typ := range instantiations {
		assert.True(t, ast.Equals(ast.NewWordType(8), typ))
	}
}

func TestElaborateQualifiedReference(t *testing.T) {
	_, env := elaborate(t,
		"(module m)\n(defconst one u8 1)\n(defconst two u8 (+ m.one one))")
	//
	_, ok := env.Lookup("m.two")
	assert.True(t, ok)
	//
	_, ok = env.Lookup("two")
	assert.False(t, ok)
}

func TestElaborateUseBeforeDefinition(t *testing.T) {
	errors := elaborateFailure(t, "(defconst a u8 b)\n(defconst b u8 1)")
	assert.Contains(t, errors[0].Message(), "unknown symbol")
}

func TestElaborateRecursionRejected(t *testing.T) {
	errors := elaborateFailure(t, "(defun (f (x u8)) u8 (f x))")
	assert.Contains(t, errors[0].Message(), "unknown symbol")
}

func TestElaborateDuplicateSymbol(t *testing.T) {
	errors := elaborateFailure(t, "(defconst k u8 1)\n(defconst k u8 2)")
	assert.Contains(t, errors[0].Message(), "symbol already exists")
}

func TestElaborateExtern(t *testing.T) {
	_, env := elaborate(t,
		"(defextern rom (fun u8 u8))\n(defun (f (x u8)) u8 (rom x))")
	//
	decl, ok := env.Lookup("rom")
	require.True(t, ok)
	assert.True(t, decl.Extern)
	assert.Nil(t, decl.Body)
	assert.True(t, decl.Scheme.IsMonomorphic())
}

func TestElaborateSequenceElementFilled(t *testing.T) {
	// Eight bits form a u8.
	_, env := elaborate(t,
		"(defconst k u8 [true false true true false false true true])")
	//
	decl, _ := env.Lookup("k")
	seq, ok := decl.Body.(*ast.Seq)
	require.True(t, ok)
	//
	_, ok = seq.Element.(*ast.BitType)
	assert.True(t, ok)
}

func TestElaborateShiftMixedWidths(t *testing.T) {
	// Shifts alone accept operands of differing widths.
	_, env := elaborate(t, "(defun (f (x u16) (y u8)) u16 (<< x y))")
	//
	decl, _ := env.Lookup("f")
	assert.True(t, decl.Scheme.IsMonomorphic())
}

func TestElaborateFunctionEquality(t *testing.T) {
	_, env := elaborate(t,
		"(defextern rom (fun u8 u8))\n(defun (same (x u8)) bit ((=== rom rom) x))")
	//
	decl, _ := env.Lookup("same")
	assert.True(t, decl.Scheme.IsMonomorphic())
}

func TestElaborateTypeErrors(t *testing.T) {
	tests := []struct {
		text string
		msg  string
	}{
		{"(defun (f (x u8)) u16 x)", "expected type u16 (found u8)"},
		{"(defconst k bit (+ true false))", "expected type"},
		{"(defconst k bit (== true true))", "expected type"},
		{"(defconst k u8 (if true 1 true))", "expected type"},
		{"(defconst k u8 (if 1 2 3))", "expected type bit"},
		{"(defun (f (x a)) a (+ x 1))", "expected type"},
		{"(defconst k u8 [1 true])", "expected type"},
		{"(defconst k u8 (get 5 lo))", "expected record type"},
		{"(defconst k u8 (get {(lo 1)} hi))", "unknown field hi"},
		{"(defconst k u8 (proj 1 0))", "expected tuple type"},
		{"(defconst k u8 (proj (tuple 1 2) 5))", "component index out-of-bounds"},
		{"(defconst k u8 (@ (tuple 1 2) 0))", "expected sequence type"},
		{"(defconst k u8 300)", "constant out-of-bounds"},
		{"(defconst k bit ((fun (x y) (=== x y)) 1 2))", "expected comparable type"},
	}
	//
	for _, test := range tests {
		errors := elaborateFailure(t, test.text)
		//
		found := false
		//
		for _, err := range errors {
			if strings.Contains(err.Message(), test.msg) {
				found = true
			}
		}
		//
		assert.True(t, found, "elaborating %s: got %v", test.text, errors)
	}
}

func TestElaborateAmbiguousType(t *testing.T) {
	errors := elaborateFailure(t,
		"(defun (id (x a)) a x)\n(defconst k u8 (let ((g id)) 1))")
	assert.Contains(t, errors[0].Message(), "ambiguous type")
}

func TestElaborateRootExpression(t *testing.T) {
	module, env := elaborate(t, "(defun (complement (x u8)) u8 (~ x))")
	//
	expr, exprmap, errors := ParseExpr(srcFile("complement"))
	require.Empty(t, errors)
	//
	elaborated, typ, errors := Elaborate(env, module.Path, expr, exprmap)
	require.Empty(t, errors)
	//
	u8 := ast.NewWordType(8)
	assert.True(t, ast.Equals(&ast.FunType{Argument: u8, Result: u8}, typ))
	//
	v, ok := elaborated.(*ast.Var)
	require.True(t, ok)
	assert.Equal(t, "complement", v.Name)
	// Monomorphic, so defaulting accepts it.
	assert.True(t, Default(elaborated, typ).HasValue())
}

func TestElaborateRootPolymorphic(t *testing.T) {
	module, env := elaborate(t, "(defun (id (x a)) a x)")
	//
	expr, exprmap, errors := ParseExpr(srcFile("id"))
	require.Empty(t, errors)
	//
	elaborated, typ, errors := Elaborate(env, module.Path, expr, exprmap)
	require.Empty(t, errors)
	// The instantiation was never determined, so defaulting must refuse.
	assert.NotEmpty(t, ast.FreeVars(typ))
	assert.True(t, Default(elaborated, typ).IsEmpty())
}

func TestElaborateRootUnknown(t *testing.T) {
	module, env := elaborate(t, "(defconst k u8 1)")
	//
	expr, exprmap, errors := ParseExpr(srcFile("missing"))
	require.Empty(t, errors)
	//
	_, _, errors = Elaborate(env, module.Path, expr, exprmap)
	require.NotEmpty(t, errors)
	assert.Contains(t, errors[0].Message(), "unknown symbol")
}
