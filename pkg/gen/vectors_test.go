package gen

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vectors(t *testing.T, text string, root string, rows uint, seed uint64) string {
	t.Helper()
	//
	module, env := compile(t, text)
	//
	trace, err := Vectors(Config{Root: root, Module: module, Env: env}, rows, seed)
	require.NoError(t, err)
	//
	return trace
}

func parseTrace(t *testing.T, trace string) map[string][]uint64 {
	t.Helper()
	//
	var columns map[string][]uint64
	require.NoError(t, json.Unmarshal([]byte(trace), &columns))
	//
	return columns
}

func TestVectorsComplement(t *testing.T) {
	trace := vectors(t, "(defun (complement (x u8)) u8 (~ x))", "complement", 8, 0xdead)
	columns := parseTrace(t, trace)
	//
	require.Len(t, columns, 2)
	require.Len(t, columns["complement_x"], 8)
	require.Len(t, columns["complement_result"], 8)
	// Row for row, the output column complements the input column.
	for i, x := range columns["complement_x"] {
		assert.LessOrEqual(t, x, uint64(255))
		assert.Equal(t, 255-x, columns["complement_result"][i])
	}
}

func TestVectorsAdd(t *testing.T) {
	trace := vectors(t, "(defun (add (x u16) (y u16)) u16 (+ x y))", "add", 16, 7)
	columns := parseTrace(t, trace)
	//
	require.Len(t, columns, 3)
	//
	for i, x := range columns["add_x"] {
		y := columns["add_y"][i]
		assert.Equal(t, (x+y)&0xffff, columns["add_result"][i])
	}
}

func TestVectorsDeterministic(t *testing.T) {
	text := "(defun (add (x u8) (y u8)) u8 (+ x y))"
	// Equal seeds give equal traces; different seeds differ.
	first := vectors(t, text, "add", 4, 42)
	second := vectors(t, text, "add", 4, 42)
	third := vectors(t, text, "add", 4, 43)
	//
	assert.Equal(t, first, second)
	assert.NotEqual(t, first, third)
}

func TestVectorsConstantRoot(t *testing.T) {
	trace := vectors(t, "(defconst answer u8 42)", "answer", 3, 1)
	columns := parseTrace(t, trace)
	//
	require.Len(t, columns, 1)
	assert.Equal(t, []uint64{42, 42, 42}, columns["answer_result"])
}

func TestVectorsPolymorphicRootAborts(t *testing.T) {
	module, env := compile(t, "(defun (id (x a)) a x)")
	//
	trace, err := Vectors(Config{Root: "id", Module: module, Env: env}, 4, 1)
	require.Error(t, err)
	assert.Empty(t, trace)
	//
	var abort *Abort
	require.ErrorAs(t, err, &abort)
	assert.Equal(t, "defaulting", abort.Stage)
}
