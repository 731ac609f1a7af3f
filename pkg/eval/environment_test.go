package eval

import (
	"testing"

	"github.com/consensys/go-spindle/pkg/spindle/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvironmentBindLocal(t *testing.T) {
	root := NewEnvironment()
	x := NewBool(true)
	y := NewBool(false)
	//
	env1 := root.BindLocal("x", x)
	env2 := env1.BindLocal("y", y)
	// New binding visible
	value, ok := env2.LookupLocal("y")
	require.True(t, ok)
	assert.Same(t, y, value)
	// Parent bindings shared, not copied
	value, ok = env2.LookupLocal("x")
	require.True(t, ok)
	assert.Same(t, x, value)
	// Parent environments unaffected
	_, ok = env1.LookupLocal("y")
	assert.False(t, ok)
	_, ok = root.LookupLocal("x")
	assert.False(t, ok)
}

func TestEnvironmentShadowing(t *testing.T) {
	inner := NewBool(true)
	outer := NewBool(false)
	//
	env1 := NewEnvironment().BindLocal("x", outer)
	env2 := env1.BindLocal("x", inner)
	// Innermost binding wins
	value, ok := env2.LookupLocal("x")
	require.True(t, ok)
	assert.Same(t, inner, value)
	// Outer environment still sees its own binding
	value, ok = env1.LookupLocal("x")
	require.True(t, ok)
	assert.Same(t, outer, value)
}

func TestEnvironmentBindType(t *testing.T) {
	u8 := ast.NewWordType(8)
	env := NewEnvironment().BindType("a", u8)
	//
	typ, ok := env.LookupType("a")
	require.True(t, ok)
	assert.True(t, ast.Equals(u8, typ))
	// Type bindings are invisible to term lookup
	_, ok = env.LookupLocal("a")
	assert.False(t, ok)
	_, ok = env.LookupType("b")
	assert.False(t, ok)
}

func TestEnvironmentBindUninterpreted(t *testing.T) {
	scheme := ast.NewMonoScheme(ast.NewWordType(8))
	env := NewEnvironment().BindUninterpreted("rom", scheme, UninterpretedPlaceholder("rom"))
	// Scheme recorded
	found, ok := env.LookupUninterpreted("rom")
	require.True(t, ok)
	assert.True(t, ast.Equals(scheme.Body, found.Body))
	// Every uninterpreted name also resolves as a local
	placeholder, ok := env.LookupLocal("rom")
	require.True(t, ok)
	// Forcing the placeholder fails
	assert.PanicsWithValue(t, "uninterpreted term rom not supported yet", func() {
		placeholder.(*Func).Apply(NewBool(true))
	})
}
