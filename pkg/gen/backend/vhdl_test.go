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

func emitVhdl(t *testing.T, v *VHDL) string {
	t.Helper()
	//
	var buf bytes.Buffer
	require.NoError(t, v.WriteTo(&buf))
	//
	return buf.String()
}

func TestVHDLAdd(t *testing.T) {
	var (
		v = NewVHDL("adder")
		x = word.NewVariable("add_x", 8)
		y = word.NewVariable("add_y", 8)
	)
	//
	v.DeclareInput("add_x", x)
	v.DeclareInput("add_y", y)
	v.DeclareOutput("add_result", binop(sym.ADD)(x, y))
	//
	text := emitVhdl(t, v)
	assert.Contains(t, text, "library ieee;")
	assert.Contains(t, text, "use ieee.numeric_std.all;")
	assert.Contains(t, text, "entity adder is")
	assert.Contains(t, text, "add_x : in std_logic_vector(7 downto 0);")
	assert.Contains(t, text, "add_y : in std_logic_vector(7 downto 0);")
	assert.Contains(t, text, "add_result : out std_logic_vector(7 downto 0)")
	assert.Contains(t, text, "architecture rtl of adder is")
	assert.Contains(t, text, "signal t0 : unsigned(7 downto 0);")
	assert.Contains(t, text, "t0 <= unsigned(add_x) + unsigned(add_y);")
	assert.Contains(t, text, "add_result <= std_logic_vector(t0);")
}

func TestVHDLPassThrough(t *testing.T) {
	var (
		v = NewVHDL("wire")
		x = word.NewVariable("id_x", 16)
	)
	//
	v.DeclareInput("id_x", x)
	v.DeclareOutput("id_result", x)
	//
	text := emitVhdl(t, v)
	// No intermediate signal for a straight wire.
	assert.NotContains(t, text, "signal")
	assert.Contains(t, text, "id_result <= std_logic_vector(unsigned(id_x));")
}

func TestVHDLSharedSignal(t *testing.T) {
	var (
		v = NewVHDL("quad")
		x = word.NewVariable("f_x", 8)
	)
	//
	double := binop(sym.ADD)(x, x)
	quad := binop(sym.MUL)(double, double)
	//
	v.DeclareInput("f_x", x)
	v.DeclareOutput("f_result", quad)
	//
	text := emitVhdl(t, v)
	assert.Contains(t, text, "t0 <= unsigned(f_x) + unsigned(f_x);")
	assert.Contains(t, text, "t1 <= resize(t0 * t0, 8);")
	// The shared term becomes one signal, assigned once.
	assert.Equal(t, 1, strings.Count(text, "t0 <="))
}

func TestVHDLMux(t *testing.T) {
	var (
		v       = NewVHDL("clamp")
		x       = word.NewVariable("f_x", 8)
		sixteen = word.NewWord(8, big.NewInt(16))
	)
	//
	cond := word.LiftCompare(func(l sym.Word, r sym.Word) sym.Bit {
		return sym.NewCmp(sym.LT, l, r)
	})(x, sixteen)
	//
	v.DeclareInput("f_x", x)
	v.DeclareOutput("f_result", word.Mux(cond, x, sixteen))
	//
	text := emitVhdl(t, v)
	assert.Contains(t, text, "signal t1 : std_logic;")
	assert.Contains(t, text, "t1 <= '1' when unsigned(f_x) < unsigned'(x\"10\") else '0';")
	assert.Contains(t, text, "t0 <= unsigned(f_x) when t1 = '1' else unsigned'(x\"10\");")
}

func TestVHDLShiftGuard(t *testing.T) {
	var (
		v = NewVHDL("shifter")
		x = word.NewVariable("f_x", 8)
		y = word.NewVariable("f_y", 8)
	)
	//
	v.DeclareInput("f_x", x)
	v.DeclareInput("f_y", y)
	v.DeclareOutput("f_result", shiftop(sym.SHL)(x, y))
	//
	text := emitVhdl(t, v)
	assert.Contains(t, text,
		"t0 <= shift_left(unsigned(f_x), to_integer(resize(unsigned(f_y), 7))) "+
			"when unsigned(f_y) < 8 else (others => '0');")
}

func TestVHDLBitAssembly(t *testing.T) {
	var (
		v = NewVHDL("reverse")
		x = word.NewVariable("f_x", 8)
	)
	// Reverse the bits of the input.
	bits := word.Unpack(x)
	//
	for i, j := 0, len(bits)-1; i < j; i, j = i+1, j-1 {
		bits[i], bits[j] = bits[j], bits[i]
	}
	//
	v.DeclareInput("f_x", x)
	v.DeclareOutput("f_result", word.Pack(bits))
	//
	text := emitVhdl(t, v)
	assert.Contains(t, text, "t0(7) <= f_x(0);")
	assert.Contains(t, text, "t0(0) <= f_x(7);")
	assert.Contains(t, text, "f_result <= std_logic_vector(t0);")
}

func TestVHDLWideConstant(t *testing.T) {
	v := NewVHDL("")
	//
	v.DeclareOutput("k_result", word.NewWord(16, big.NewInt(255)))
	//
	text := emitVhdl(t, v)
	// Falls back on the default entity name.
	assert.Contains(t, text, "entity spindle is")
	assert.Contains(t, text, "k_result <= std_logic_vector(unsigned'(x\"00FF\"));")
}
