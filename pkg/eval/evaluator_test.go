package eval

import (
	"math/big"
	"testing"

	"github.com/consensys/go-spindle/pkg/spindle/ast"
	"github.com/consensys/go-spindle/pkg/sym"
	"github.com/consensys/go-spindle/pkg/word"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Construct the literal value at the given width, exactly as elaboration
// rewrites source literals.
func num(value uint64, width uint) ast.Expr {
	numeral := &ast.NumType{Value: new(big.Int).SetUint64(value)}
	//
	return &ast.TApp{
		Fn:  &ast.TApp{Fn: &ast.Prim{Name: "demote"}, Arg: numeral},
		Arg: ast.NewWordType(width),
	}
}

func apply(op string, args ...ast.Expr) ast.Expr {
	var expr ast.Expr = &ast.Prim{Name: op}
	//
	for _, arg := range args {
		expr = &ast.App{Fn: expr, Arg: arg}
	}
	//
	return expr
}

func evalExpr(env *Environment, expr ast.Expr) Value {
	return NewEvaluator(NewWordOps()).Eval(env, expr)
}

func asWordConstant(t *testing.T, value Value) uint64 {
	w, ok := value.(*Word)
	require.True(t, ok, "expected a word, got %s", value)
	//
	constant := w.Term.Payload().AsConstant()
	require.NotNil(t, constant, "expected a concrete word, got %s", value)
	//
	return constant.Uint64()
}

func asBitConstant(t *testing.T, value Value) bool {
	b, ok := value.(*Bit)
	require.True(t, ok, "expected a bit, got %s", value)
	//
	constant, ok := b.Term.AsConstant()
	require.True(t, ok, "expected a concrete bit, got %s", value)
	//
	return constant
}

func TestEvalArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		expr     ast.Expr
		expected uint64
	}{
		{"add", apply("+", num(1, 8), num(2, 8)), 3},
		{"add_wraps", apply("+", num(255, 8), num(1, 8)), 0},
		{"sub_wraps", apply("-", num(0, 8), num(1, 8)), 255},
		{"mul", apply("*", num(16, 8), num(16, 8)), 0},
		{"sdiv", apply("/", num(254, 8), num(2, 8)), 255},
		{"srem", apply("%", num(255, 8), num(2, 8)), 255},
		{"and", apply("&", num(0xF0, 8), num(0x3C, 8)), 0x30},
		{"or", apply("|", num(0xF0, 8), num(0x0F, 8)), 0xFF},
		{"xor", apply("^", num(0xFF, 8), num(0x0F, 8)), 0xF0},
		{"shl", apply("<<", num(1, 8), num(4, 8)), 16},
		{"shr", apply(">>", num(0x80, 8), num(7, 8)), 1},
		{"shl_overflow", apply("<<", num(1, 8), num(8, 16)), 0},
		{"negate", apply("negate", num(1, 8)), 255},
		{"complement", apply("~", num(0, 8)), 255},
		{"wide_add", apply("+", num(1<<32, 64), num(1, 64)), (1 << 32) + 1},
	}
	//
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, asWordConstant(t, evalExpr(NewEnvironment(), test.expr)))
		})
	}
}

func TestEvalComparisons(t *testing.T) {
	tests := []struct {
		name     string
		expr     ast.Expr
		expected bool
	}{
		{"lt", apply("<", num(3, 8), num(5, 8)), true},
		{"lt_unsigned", apply("<", num(0x80, 8), num(0x7F, 8)), false},
		{"le", apply("<=", num(5, 8), num(5, 8)), true},
		{"gt", apply(">", num(5, 8), num(3, 8)), true},
		{"ge", apply(">=", num(3, 8), num(5, 8)), false},
		{"eq", apply("==", num(5, 8), num(5, 8)), true},
		{"ne", apply("!=", num(5, 8), num(5, 8)), false},
	}
	//
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, asBitConstant(t, evalExpr(NewEnvironment(), test.expr)))
		})
	}
}

func TestEvalBitConnectives(t *testing.T) {
	tru := &ast.Prim{Name: "true"}
	fls := &ast.Prim{Name: "false"}
	//
	assert.False(t, asBitConstant(t, evalExpr(NewEnvironment(), apply("&", tru, fls))))
	assert.True(t, asBitConstant(t, evalExpr(NewEnvironment(), apply("|", tru, fls))))
	assert.False(t, asBitConstant(t, evalExpr(NewEnvironment(), apply("^", tru, tru))))
	assert.False(t, asBitConstant(t, evalExpr(NewEnvironment(), apply("~", tru))))
}

func TestEvalLet(t *testing.T) {
	// let x = 5 in x + x
	expr := &ast.Let{
		Name:  "x",
		Bound: num(5, 8),
		Body:  apply("+", &ast.Var{Name: "x"}, &ast.Var{Name: "x"}),
	}
	//
	assert.Equal(t, uint64(10), asWordConstant(t, evalExpr(NewEnvironment(), expr)))
}

func TestEvalLambda(t *testing.T) {
	// (\x -> x * 2) 21
	double := &ast.Abs{Param: "x", Body: apply("*", &ast.Var{Name: "x"}, num(2, 8))}
	expr := &ast.App{Fn: double, Arg: num(21, 8)}
	//
	assert.Equal(t, uint64(42), asWordConstant(t, evalExpr(NewEnvironment(), expr)))
}

func TestEvalClosureCapture(t *testing.T) {
	// let y = 1 in (\x -> x + y) applied under a shadowing binding of y
	inner := &ast.Abs{Param: "x", Body: apply("+", &ast.Var{Name: "x"}, &ast.Var{Name: "y"})}
	expr := &ast.Let{
		Name:  "y",
		Bound: num(1, 8),
		Body: &ast.Let{
			Name:  "f",
			Bound: inner,
			Body: &ast.Let{
				Name:  "y",
				Bound: num(100, 8),
				Body:  &ast.App{Fn: &ast.Var{Name: "f"}, Arg: num(2, 8)},
			},
		},
	}
	// The lambda sees its defining y, not the shadowing one.
	assert.Equal(t, uint64(3), asWordConstant(t, evalExpr(NewEnvironment(), expr)))
}

func TestEvalConditionalConcrete(t *testing.T) {
	affirmative := &ast.If{Cond: &ast.Prim{Name: "true"}, Then: num(1, 8), Else: num(2, 8)}
	negative := &ast.If{Cond: &ast.Prim{Name: "false"}, Then: num(1, 8), Else: num(2, 8)}
	//
	assert.Equal(t, uint64(1), asWordConstant(t, evalExpr(NewEnvironment(), affirmative)))
	assert.Equal(t, uint64(2), asWordConstant(t, evalExpr(NewEnvironment(), negative)))
}

func TestEvalMergeSymbolic(t *testing.T) {
	// Branch on an unknown bit, then check the merged result is faithful to
	// both outcomes of that bit.
	cond := NewBit(sym.NewBitOf(sym.NewVar("x", 8), 0))
	env := NewEnvironment().BindLocal("c", cond)
	//
	expr := &ast.If{Cond: &ast.Var{Name: "c"}, Then: num(1, 8), Else: num(2, 8)}
	value := evalExpr(env, expr)
	//
	merged, ok := value.(*Word)
	require.True(t, ok)
	require.Nil(t, merged.Term.Payload().AsConstant())
	// Most significant bit set, so the condition holds
	taken := merged.Term.Payload().Eval(sym.Assignment{"x": big.NewInt(0x80)})
	assert.Equal(t, uint64(1), taken.Uint64())
	// Most significant bit clear, so the condition fails
	untaken := merged.Term.Payload().Eval(sym.Assignment{"x": big.NewInt(0x00)})
	assert.Equal(t, uint64(2), untaken.Uint64())
}

func TestEvalTupleProjection(t *testing.T) {
	tuple := &ast.Tuple{Items: []ast.Expr{num(1, 8), num(2, 8), num(3, 8)}}
	//
	first := &ast.Proj{Arg: tuple, Index: 0}
	last := &ast.Proj{Arg: tuple, Index: 2}
	//
	assert.Equal(t, uint64(1), asWordConstant(t, evalExpr(NewEnvironment(), first)))
	assert.Equal(t, uint64(3), asWordConstant(t, evalExpr(NewEnvironment(), last)))
}

func TestEvalRecordSelection(t *testing.T) {
	record := &ast.Record{Fields: []ast.RecordField{
		{Name: "lo", Expr: num(1, 8)},
		{Name: "hi", Expr: num(2, 8)},
	}}
	//
	expr := &ast.Select{Arg: record, Field: "hi"}
	//
	assert.Equal(t, uint64(2), asWordConstant(t, evalExpr(NewEnvironment(), expr)))
}

func TestEvalIndexSelectsMostSignificantBit(t *testing.T) {
	// 0x80 has only its most significant bit set, which lives at position 0.
	head := &ast.Index{Arg: num(0x80, 8), Index: num(0, 8)}
	tail := &ast.Index{Arg: num(0x80, 8), Index: num(7, 8)}
	//
	assert.True(t, asBitConstant(t, evalExpr(NewEnvironment(), head)))
	assert.False(t, asBitConstant(t, evalExpr(NewEnvironment(), tail)))
}

func TestEvalIndexSequence(t *testing.T) {
	items := &ast.Seq{
		Items:   []ast.Expr{num(10, 8), num(20, 8), num(30, 8)},
		Element: ast.NewWordType(8),
	}
	//
	expr := &ast.Index{Arg: items, Index: num(1, 8)}
	//
	assert.Equal(t, uint64(20), asWordConstant(t, evalExpr(NewEnvironment(), expr)))
}

func TestEvalSequenceOfBitsPacks(t *testing.T) {
	bits := make([]ast.Expr, 8)
	// Alternate 1, 0 from the most significant bit down.
	for i := range bits {
		if i%2 == 0 {
			bits[i] = &ast.Prim{Name: "true"}
		} else {
			bits[i] = &ast.Prim{Name: "false"}
		}
	}
	//
	expr := &ast.Seq{Items: bits, Element: &ast.BitType{}}
	//
	assert.Equal(t, uint64(0xAA), asWordConstant(t, evalExpr(NewEnvironment(), expr)))
}

func TestEvalRepeat(t *testing.T) {
	expr := &ast.Repeat{Arg: num(7, 8)}
	//
	stream, ok := evalExpr(NewEnvironment(), expr).(*Stream)
	require.True(t, ok)
	//
	assert.Equal(t, uint64(7), asWordConstant(t, stream.Get(0)))
	assert.Equal(t, uint64(7), asWordConstant(t, stream.Get(1000)))
}

func TestEvalMinMax(t *testing.T) {
	assert.Equal(t, uint64(3), asWordConstant(t, evalExpr(NewEnvironment(), apply("min", num(3, 8), num(5, 8)))))
	assert.Equal(t, uint64(5), asWordConstant(t, evalExpr(NewEnvironment(), apply("max", num(3, 8), num(5, 8)))))
	// Selection is unsigned, like the ordering it derives from
	assert.Equal(t, uint64(1), asWordConstant(t, evalExpr(NewEnvironment(), apply("min", num(0x80, 8), num(1, 8)))))
}

func TestEvalFunctionEquality(t *testing.T) {
	identity := NewFunc(func(v Value) Value { return v })
	double := NewFunc(func(v Value) Value {
		w := v.(*Word)
		return NewWord(wordAdd(w.Term, w.Term))
	})
	//
	env := NewEnvironment().BindLocal("f", identity).BindLocal("g", identity).BindLocal("h", double)
	// f === g yields a function from arguments to comparison results
	same, ok := evalExpr(env, apply("===", &ast.Var{Name: "f"}, &ast.Var{Name: "g"})).(*Func)
	require.True(t, ok)
	assert.True(t, asBitConstant(t, same.Apply(NewWord(newConstWord(8, 5)))))
	// f !== h at 5 compares 5 against 10
	diff, ok := evalExpr(env, apply("!==", &ast.Var{Name: "f"}, &ast.Var{Name: "h"})).(*Func)
	require.True(t, ok)
	assert.True(t, asBitConstant(t, diff.Apply(NewWord(newConstWord(8, 5)))))
}

func TestEvalPolymorphicValue(t *testing.T) {
	// Instantiating \a -> \x : a -> x at u8 gives the identity on words
	poly := &ast.TAbs{Param: "a", Body: &ast.Abs{Param: "x", Body: &ast.Var{Name: "x"}}}
	//
	value, ok := evalExpr(NewEnvironment(), poly).(*Poly)
	require.True(t, ok)
	//
	fn, ok := value.Instantiate(ast.NewWordType(8)).(*Func)
	require.True(t, ok)
	//
	assert.Equal(t, uint64(9), asWordConstant(t, fn.Apply(NewWord(newConstWord(8, 9)))))
	// Instantiation through a type application resolves the bound variable
	expr := &ast.App{
		Fn:  &ast.TApp{Fn: poly, Arg: ast.NewWordType(8)},
		Arg: num(9, 8),
	}
	assert.Equal(t, uint64(9), asWordConstant(t, evalExpr(NewEnvironment(), expr)))
}

func TestEvalLiteralWidthResolution(t *testing.T) {
	// A literal whose width is a bound type variable resolves through the
	// type bindings of the environment.
	numeral := &ast.NumType{Value: big.NewInt(7)}
	literal := &ast.TApp{
		Fn:  &ast.TApp{Fn: &ast.Prim{Name: "demote"}, Arg: numeral},
		Arg: &ast.SeqType{Length: &ast.VarType{Name: "n"}, Element: &ast.BitType{}},
	}
	//
	expr := &ast.App{
		Fn:  &ast.TApp{Fn: &ast.TAbs{Param: "n", Body: &ast.Abs{Param: "x", Body: literal}}, Arg: &ast.NumType{Value: big.NewInt(16)}},
		Arg: num(0, 16),
	}
	//
	value := evalExpr(NewEnvironment(), expr).(*Word)
	assert.Equal(t, uint(16), value.Term.Width())
	assert.Equal(t, uint64(7), asWordConstant(t, value))
}

func TestEvalUnsupportedWidthPropagation(t *testing.T) {
	// Arithmetic over an unsupported width flows that width onwards, whilst
	// comparisons over it fail.
	five := &ast.SeqType{Length: &ast.NumType{Value: big.NewInt(5)}, Element: &ast.BitType{}}
	numeral := &ast.NumType{Value: big.NewInt(1)}
	odd := &ast.TApp{
		Fn:  &ast.TApp{Fn: &ast.Prim{Name: "demote"}, Arg: numeral},
		Arg: five,
	}
	//
	value := evalExpr(NewEnvironment(), apply("+", odd, odd))
	assert.Equal(t, "<[5]>", value.String())
	//
	assert.Panics(t, func() { evalExpr(NewEnvironment(), apply("<", odd, odd)) })
}

func TestEvalFatalConditions(t *testing.T) {
	tests := []struct {
		name string
		expr ast.Expr
	}{
		{"unsupported_operator", &ast.Prim{Name: "frobnicate"}},
		{"unresolved_literal", &ast.Lit{Value: big.NewInt(1)}},
		{"unbound_variable", &ast.Var{Name: "ghost"}},
		{"apply_non_function", &ast.App{Fn: num(1, 8), Arg: num(2, 8)}},
		{"instantiate_non_polymorphic", &ast.TApp{Fn: num(1, 8), Arg: ast.NewWordType(8)}},
		{"index_non_indexable", &ast.Index{
			Arg:   &ast.Tuple{Items: []ast.Expr{num(1, 8), num(2, 8)}},
			Index: num(0, 8)}},
		{"select_non_record", &ast.Select{Arg: num(1, 8), Field: "lo"}},
		{"project_out_of_bounds", &ast.Proj{
			Arg:   &ast.Tuple{Items: []ast.Expr{num(1, 8)}},
			Index: 3}},
		{"missing_field", &ast.Select{
			Arg:   &ast.Record{Fields: []ast.RecordField{{Name: "lo", Expr: num(1, 8)}}},
			Field: "hi"}},
		{"arithmetic_on_bits", apply("+", &ast.Prim{Name: "true"}, &ast.Prim{Name: "false"})},
		{"comparison_on_bits", apply("<", &ast.Prim{Name: "true"}, &ast.Prim{Name: "false"})},
		{"branch_on_non_bit", &ast.If{Cond: num(1, 8), Then: num(1, 8), Else: num(2, 8)}},
		{"mismatched_widths", apply("+", num(1, 8), num(1, 16))},
		{"demote_to_non_word", &ast.TApp{
			Fn:  &ast.TApp{Fn: &ast.Prim{Name: "demote"}, Arg: &ast.NumType{Value: big.NewInt(1)}},
			Arg: &ast.BitType{}}},
	}
	//
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Panics(t, func() { evalExpr(NewEnvironment(), test.expr) })
		})
	}
}

// ============================================================================
// Helpers
// ============================================================================

func newConstWord(width uint, value uint64) word.Word {
	return word.NewWord(width, new(big.Int).SetUint64(value))
}

func wordAdd(lhs word.Word, rhs word.Word) word.Word {
	return word.LiftBinary(func(l sym.Word, r sym.Word) sym.Word {
		return sym.NewBin(sym.ADD, l, r)
	})(lhs, rhs)
}
