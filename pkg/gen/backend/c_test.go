package backend

import (
	"bytes"
	"math/big"
	"strings"
	"testing"

	"github.com/consensys/go-spindle/pkg/sym"
	"github.com/consensys/go-spindle/pkg/word"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// binop lifts a binary operation over the word family, for building output
// graphs directly.
func binop(op sym.Op) func(word.Word, word.Word) word.Word {
	return word.LiftBinary(func(l sym.Word, r sym.Word) sym.Word {
		return sym.NewBin(op, l, r)
	})
}

func shiftop(op sym.Op) func(word.Word, word.Word) word.Word {
	return word.LiftShift(func(l sym.Word, r sym.Word) sym.Word {
		return sym.NewBin(op, l, r)
	})
}

func emit(t *testing.T, c *C99) string {
	t.Helper()
	//
	var buf bytes.Buffer
	require.NoError(t, c.WriteTo(&buf))
	//
	return buf.String()
}

func TestC99Complement(t *testing.T) {
	var (
		c = NewC99()
		x = word.NewVariable("complement_x", 8)
	)
	//
	c.DeclareInput("complement_x", x)
	c.DeclareOutput("complement_result", word.LiftUnary(sym.NewNot)(x))
	//
	text := emit(t, c)
	assert.Contains(t, text, "#include <stdint.h>")
	assert.Contains(t, text, "uint8_t complement_result(uint8_t complement_x) {")
	assert.Contains(t, text, "return (uint8_t)(~complement_x);")
}

func TestC99Add(t *testing.T) {
	var (
		c = NewC99()
		x = word.NewVariable("add_x", 16)
		y = word.NewVariable("add_y", 16)
	)
	//
	c.DeclareInput("add_x", x)
	c.DeclareInput("add_y", y)
	c.DeclareOutput("add_result", binop(sym.ADD)(x, y))
	//
	text := emit(t, c)
	assert.Contains(t, text, "uint16_t add_result(uint16_t add_x, uint16_t add_y) {")
	assert.Contains(t, text, "return (uint16_t)(add_x + add_y);")
}

func TestC99SharedLocal(t *testing.T) {
	var (
		c = NewC99()
		x = word.NewVariable("f_x", 8)
	)
	//
	double := binop(sym.ADD)(x, x)
	quad := binop(sym.MUL)(double, double)
	//
	c.DeclareInput("f_x", x)
	c.DeclareOutput("f_result", quad)
	//
	text := emit(t, c)
	assert.Contains(t, text, "const uint8_t t0 = (uint8_t)(f_x + f_x);")
	assert.Contains(t, text, "return (uint8_t)(t0 * t0);")
	// The shared term is computed exactly once.
	assert.Equal(t, 1, strings.Count(text, "f_x + f_x"))
}

func TestC99ShiftGuard(t *testing.T) {
	var (
		c = NewC99()
		x = word.NewVariable("f_x", 8)
		y = word.NewVariable("f_y", 8)
	)
	//
	c.DeclareInput("f_x", x)
	c.DeclareInput("f_y", y)
	c.DeclareOutput("f_result", shiftop(sym.SHL)(x, y))
	//
	text := emit(t, c)
	assert.Contains(t, text, "return (uint8_t)(f_y < 8 ? (f_x << f_y) : 0);")
}

func TestC99SignedDivision(t *testing.T) {
	var (
		c = NewC99()
		x = word.NewVariable("f_x", 32)
		y = word.NewVariable("f_y", 32)
	)
	//
	c.DeclareInput("f_x", x)
	c.DeclareInput("f_y", y)
	c.DeclareOutput("f_result", binop(sym.DIV)(x, y))
	//
	text := emit(t, c)
	assert.Contains(t, text, "return (uint32_t)((int32_t)f_x / (int32_t)f_y);")
}

func TestC99Mux(t *testing.T) {
	var (
		c       = NewC99()
		x       = word.NewVariable("f_x", 8)
		sixteen = word.NewWord(8, big.NewInt(16))
	)
	//
	cond := word.LiftCompare(func(l sym.Word, r sym.Word) sym.Bit {
		return sym.NewCmp(sym.LT, l, r)
	})(x, sixteen)
	//
	c.DeclareInput("f_x", x)
	c.DeclareOutput("f_result", word.Mux(cond, x, sixteen))
	//
	text := emit(t, c)
	assert.Contains(t, text, "return ((f_x < 16) ? f_x : 16);")
}

func TestC99BitAssembly(t *testing.T) {
	var (
		c = NewC99()
		x = word.NewVariable("f_x", 8)
	)
	// Reverse the bits of the input.
	bits := word.Unpack(x)
	//
	for i, j := 0, len(bits)-1; i < j; i, j = i+1, j-1 {
		bits[i], bits[j] = bits[j], bits[i]
	}
	//
	c.DeclareInput("f_x", x)
	c.DeclareOutput("f_result", word.Pack(bits))
	//
	text := emit(t, c)
	assert.Contains(t, text, "((uint8_t)((f_x >> 0) & 1) << 7)")
	assert.Contains(t, text, "((f_x >> 7) & 1)")
}

func TestC99ConstantSuffixes(t *testing.T) {
	var (
		c64 = NewC99()
		c32 = NewC99()
	)
	//
	value := new(big.Int).Lsh(big.NewInt(1), 63)
	c64.DeclareOutput("k_result", word.NewWord(64, value))
	//
	text := emit(t, c64)
	assert.Contains(t, text, "uint64_t k_result(void) {")
	assert.Contains(t, text, "return 9223372036854775808ull;")
	//
	c32.DeclareOutput("k_result", word.NewWord(32, big.NewInt(4000000000)))
	text = emit(t, c32)
	assert.Contains(t, text, "return 4000000000u;")
}

func TestC99MultipleOutputs(t *testing.T) {
	var (
		c = NewC99()
		x = word.NewVariable("f_x", 8)
	)
	//
	c.DeclareInput("f_x", x)
	c.DeclareOutput("f_lo", x)
	c.DeclareOutput("f_hi", word.LiftUnary(sym.NewNot)(x))
	//
	text := emit(t, c)
	assert.Contains(t, text, "uint8_t f_lo(uint8_t f_x) {")
	assert.Contains(t, text, "uint8_t f_hi(uint8_t f_x) {")
	assert.Contains(t, text, "return f_x;")
}
