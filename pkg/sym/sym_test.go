package sym

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstTruncation(t *testing.T) {
	tests := []struct {
		name     string
		width    uint
		value    int64
		expected uint64
	}{
		{"in range", 8, 200, 200},
		{"wraps above", 8, 256, 0},
		{"wraps far above", 8, 511, 255},
		{"negative wraps", 8, -1, 255},
		{"negative wraps wide", 16, -2, 65534},
		{"zero", 64, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConst(tt.width, big.NewInt(tt.value))
			assert.Equal(t, tt.width, c.Width())
			assert.Equal(t, tt.expected, c.AsConstant().Uint64())
		})
	}
}

func TestBinConstantFolding(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		lhs      uint64
		rhs      uint64
		expected uint64
	}{
		{"add", ADD, 100, 200, 44}, // wraps at width 8
		{"sub", SUB, 10, 20, 246},
		{"mul", MUL, 16, 16, 0},
		{"sdiv", DIV, 254, 2, 255},  // -2 / 2 == -1
		{"srem", REM, 255, 2, 255},  // -1 rem 2 == -1
		{"sdiv trunc", DIV, 249, 2, 253}, // -7 / 2 == -3
		{"and", AND, 0xF0, 0x3C, 0x30},
		{"or", OR, 0xF0, 0x0F, 0xFF},
		{"xor", XOR, 0xFF, 0x0F, 0xF0},
		{"shl", SHL, 1, 3, 8},
		{"shr", SHR, 0x80, 7, 1},
		{"shl overflow", SHL, 1, 9, 0},
		{"shr overflow", SHR, 0xFF, 8, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewBin(tt.op, NewConst64(8, tt.lhs), NewConst64(8, tt.rhs))
			require.NotNil(t, w.AsConstant())
			assert.Equal(t, tt.expected, w.AsConstant().Uint64())
			assert.Equal(t, uint(8), w.Width())
		})
	}
}

func TestBinIdentities(t *testing.T) {
	x := NewVar("x", 8)
	zero := NewConst64(8, 0)
	one := NewConst64(8, 1)
	// x op 0 folds back to x
	assert.Equal(t, Word(x), NewBin(ADD, x, zero))
	assert.Equal(t, Word(x), NewBin(ADD, zero, x))
	assert.Equal(t, Word(x), NewBin(SUB, x, zero))
	assert.Equal(t, Word(x), NewBin(OR, x, zero))
	assert.Equal(t, Word(x), NewBin(XOR, x, zero))
	assert.Equal(t, Word(x), NewBin(MUL, x, one))
	assert.Equal(t, Word(x), NewBin(DIV, x, one))
	// x * 0 and x & 0 collapse to zero
	assert.Equal(t, uint64(0), NewBin(MUL, x, zero).AsConstant().Uint64())
	assert.Equal(t, uint64(0), NewBin(AND, x, zero).AsConstant().Uint64())
	// x & ones folds back to x
	assert.Equal(t, Word(x), NewBin(AND, x, NewConst64(8, 255)))
	// double complement cancels
	assert.Equal(t, Word(x), NewNot(NewNot(x)))
}

func TestBinWidthMismatch(t *testing.T) {
	x := NewVar("x", 8)
	y := NewVar("y", 16)

	assert.Panics(t, func() { NewBin(ADD, x, y) })
	assert.Panics(t, func() { NewCmp(LT, x, y) })
	assert.Panics(t, func() { NewMux(NewBool(true), x, y) })
	// Shift amounts, however, may differ in width.
	assert.NotPanics(t, func() { NewBin(SHL, x, y) })
}

func TestDivisionByZero(t *testing.T) {
	assert.Panics(t, func() { NewBin(DIV, NewConst64(8, 1), NewConst64(8, 0)) })
	assert.Panics(t, func() { NewBin(REM, NewConst64(8, 1), NewConst64(8, 0)) })
}

func TestCmpFolding(t *testing.T) {
	// Comparisons are unsigned: 200 is not less than 100.
	lt := NewCmp(LT, NewConst64(8, 200), NewConst64(8, 100))
	value, ok := lt.AsConstant()
	require.True(t, ok)
	assert.False(t, value)
	// Identical terms compare equal without being constant.
	x := NewVar("x", 8)
	eq := NewCmp(EQ, x, x)
	value, ok = eq.AsConstant()
	require.True(t, ok)
	assert.True(t, value)
}

func TestBitOf(t *testing.T) {
	// Index zero denotes the most significant bit.
	c := NewConst64(8, 0x80)
	msb, ok := NewBitOf(c, 0).AsConstant()
	require.True(t, ok)
	assert.True(t, msb)
	//
	lsb, ok := NewBitOf(c, 7).AsConstant()
	require.True(t, ok)
	assert.False(t, lsb)
	// Out of range indices panic.
	assert.Panics(t, func() { NewBitOf(c, 8) })
}

func TestFromBits(t *testing.T) {
	bits := make([]Bit, 8)
	for i := range bits {
		bits[i] = NewBool(i%2 == 0)
	}
	// 0b10101010
	w := NewFromBits(bits)
	require.NotNil(t, w.AsConstant())
	assert.Equal(t, uint64(0xAA), w.AsConstant().Uint64())
	assert.Equal(t, uint(8), w.Width())
}

func TestFromBitsReassembly(t *testing.T) {
	x := NewVar("x", 8)
	bits := make([]Bit, 8)
	//
	for i := range bits {
		bits[i] = NewBitOf(x, uint(i))
	}
	// Reassembling all bits of x in order yields x itself.
	assert.Equal(t, Word(x), NewFromBits(bits))
}

func TestEvalUnderAssignment(t *testing.T) {
	x := NewVar("x", 8)
	y := NewVar("y", 8)
	sum := NewBin(ADD, x, y)
	env := Assignment{"x": big.NewInt(200), "y": big.NewInt(100)}
	// 200 + 100 wraps at width 8
	assert.Equal(t, uint64(44), sum.Eval(env).Uint64())
	// Assignments are truncated into the variable's width.
	wide := Assignment{"x": big.NewInt(300), "y": big.NewInt(0)}
	assert.Equal(t, uint64(44), sum.Eval(wide).Uint64())
}

func TestMuxSelection(t *testing.T) {
	x := NewVar("x", 8)
	then := NewConst64(8, 1)
	els := NewConst64(8, 2)
	// Constant conditions select a branch outright.
	assert.Equal(t, Word(then), NewMux(NewBool(true), then, els))
	assert.Equal(t, Word(els), NewMux(NewBool(false), then, els))
	// Symbolic conditions evaluate consistently with either branch.
	mux := NewMux(NewCmp(LT, x, NewConst64(8, 10)), then, els)
	assert.Equal(t, uint64(1), mux.Eval(Assignment{"x": big.NewInt(5)}).Uint64())
	assert.Equal(t, uint64(2), mux.Eval(Assignment{"x": big.NewInt(50)}).Uint64())
}

func TestBitOperations(t *testing.T) {
	x := NewVar("x", 8)
	cond := NewCmp(EQ, x, NewConst64(8, 0))
	// Constant operands fold through the bit connectives.
	assert.Equal(t, NewBool(false), NewBitBin(BAND, NewBool(false), cond))
	assert.Equal(t, cond, NewBitBin(BAND, NewBool(true), cond))
	assert.Equal(t, NewBool(true), NewBitBin(BOR, NewBool(true), cond))
	assert.Equal(t, cond, NewBitBin(BOR, cond, NewBool(false)))
	assert.Equal(t, cond, NewBitBin(BXOR, cond, NewBool(false)))
	// Negation folds on constants, and cancels itself.
	assert.Equal(t, NewBool(false), NewBitNot(NewBool(true)))
	assert.Equal(t, cond, NewBitNot(NewBitNot(cond)))
	// Evaluation agrees with the connective.
	conj := NewBitBin(BAND, cond, NewCmp(LT, x, NewConst64(8, 10)))
	assert.True(t, conj.Eval(Assignment{"x": big.NewInt(0)}))
	assert.False(t, conj.Eval(Assignment{"x": big.NewInt(3)}))
}
