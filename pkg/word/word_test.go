package word

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/consensys/go-spindle/pkg/sym"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackUnpackRoundTrip(t *testing.T) {
	patterns := []func(i uint) bool{
		func(i uint) bool { return false },
		func(i uint) bool { return true },
		func(i uint) bool { return i%2 == 0 },
		func(i uint) bool { return i%3 == 0 },
	}

	for _, width := range Supported {
		for pi, pattern := range patterns {
			t.Run(fmt.Sprintf("u%d/pattern%d", width, pi), func(t *testing.T) {
				bits := make([]sym.Bit, width)
				for i := range bits {
					bits[i] = sym.NewBool(pattern(uint(i)))
				}
				//
				w := Pack(bits)
				require.Equal(t, width, w.Width())
				assert.Equal(t, bits, Unpack(w))
			})
		}
	}
}

func TestWidthPreservation(t *testing.T) {
	for _, width := range Supported {
		x := NewVariable("x", width)
		assert.Equal(t, width, Pack(Unpack(x)).Width())
		// Reassembling the bits of a word yields that word back.
		assert.Equal(t, x, Pack(Unpack(x)))
	}
}

func TestLiftConsistency(t *testing.T) {
	ops := []sym.Op{sym.ADD, sym.SUB, sym.MUL, sym.AND, sym.OR, sym.XOR}

	for _, width := range Supported {
		x := NewVariable("x", width)
		y := NewVariable("y", width)
		//
		for _, op := range ops {
			fn := func(l sym.Word, r sym.Word) sym.Word { return sym.NewBin(op, l, r) }
			assert.Equal(t, width, LiftBinary(fn)(x, y).Width())
			assert.Equal(t, width, LiftBinaryPropagate(fn)(x, y).Width())
		}
	}
}

func TestLiftFatalOnMismatch(t *testing.T) {
	add := func(l sym.Word, r sym.Word) sym.Word { return sym.NewBin(sym.ADD, l, r) }
	lt := func(l sym.Word, r sym.Word) sym.Bit { return sym.NewCmp(sym.LT, l, r) }
	//
	x8 := NewVariable("x", 8)
	y16 := NewVariable("y", 16)
	u5 := NewWord(5, big.NewInt(0))
	v5 := NewWord(5, big.NewInt(1))
	u7 := NewWord(7, big.NewInt(0))
	// Differing widths always signal a size mismatch.
	assert.Panics(t, func() { LiftBinary(add)(x8, y16) })
	assert.Panics(t, func() { LiftBinaryPropagate(add)(x8, y16) })
	assert.Panics(t, func() { LiftCompare(lt)(x8, y16) })
	// A single unsupported operand is fatal everywhere.
	assert.Panics(t, func() { LiftBinary(add)(x8, u5) })
	assert.Panics(t, func() { LiftBinaryPropagate(add)(u5, x8) })
	assert.Panics(t, func() { LiftCompare(lt)(x8, u5) })
	// Equal unsupported widths are fatal except through the designated
	// propagating combinator.
	assert.Panics(t, func() { LiftBinary(add)(u5, v5) })
	assert.Panics(t, func() { LiftCompare(lt)(u5, v5) })
	assert.Equal(t, Word(Unsupported{5}), LiftBinaryPropagate(add)(u5, v5))
	// Unequal unsupported widths remain fatal even there.
	assert.Panics(t, func() { LiftBinaryPropagate(add)(u5, u7) })
}

func TestUnsupportedConstruction(t *testing.T) {
	u := NewWord(5, big.NewInt(42))
	require.IsType(t, Unsupported{}, u)
	assert.Equal(t, uint(5), u.Width())
	// Packing a bit sequence of unsupported length tags the length.
	bits := make([]sym.Bit, 12)
	for i := range bits {
		bits[i] = sym.NewBool(false)
	}
	//
	p := Pack(bits)
	require.IsType(t, Unsupported{}, p)
	assert.Equal(t, uint(12), p.Width())
	// The marker has no payload to decompose or operate on.
	assert.Panics(t, func() { Unpack(u) })
	assert.Panics(t, func() { u.Payload() })
	assert.Panics(t, func() { LiftUnary(func(w sym.Word) sym.Word { return w })(u) })
}

func TestNewWordTruncation(t *testing.T) {
	w := NewWord(8, big.NewInt(300))
	require.NotNil(t, w.Payload().AsConstant())
	assert.Equal(t, uint64(44), w.Payload().AsConstant().Uint64())
	//
	neg := NewWord(16, big.NewInt(-1))
	assert.Equal(t, uint64(65535), neg.Payload().AsConstant().Uint64())
}

func TestMuxMerging(t *testing.T) {
	x := NewVariable("x", 8)
	y := NewVariable("y", 8)
	cond := sym.NewCmp(sym.LT, x.Payload(), y.Payload())
	// Constant conditions select a branch outright.
	assert.Equal(t, x, Mux(sym.NewBool(true), x, y))
	assert.Equal(t, y, Mux(sym.NewBool(false), x, y))
	// Symbolic conditions build a single merged word.
	merged := Mux(cond, x, y)
	assert.Equal(t, uint(8), merged.Width())
	env := sym.Assignment{"x": big.NewInt(1), "y": big.NewInt(2)}
	assert.Equal(t, uint64(1), merged.Payload().Eval(env).Uint64())
	env = sym.Assignment{"x": big.NewInt(5), "y": big.NewInt(2)}
	assert.Equal(t, uint64(2), merged.Payload().Eval(env).Uint64())
	// Merging equal-width unsupported markers propagates the marker.
	assert.Equal(t, Word(Unsupported{5}), Mux(cond, Unsupported{5}, Unsupported{5}))
	// Mismatched widths are fatal as ever.
	assert.Panics(t, func() { Mux(cond, x, NewVariable("z", 16)) })
}

func TestWordRendering(t *testing.T) {
	assert.Equal(t, "42", NewWord(8, big.NewInt(42)).String())
	assert.Equal(t, "<[8]>", NewVariable("x", 8).String())
	assert.Equal(t, "<[5]>", NewWord(5, big.NewInt(42)).String())
	// Folding can make a symbolic-looking word concrete.
	zero := LiftBinary(func(l sym.Word, r sym.Word) sym.Word {
		return sym.NewBin(sym.XOR, l, r)
	})(NewWord(8, big.NewInt(7)), NewWord(8, big.NewInt(7)))
	assert.Equal(t, "0", zero.String())
}
