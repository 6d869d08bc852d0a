package notation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gosolve/notation"
	"github.com/njchilds90/gosolve/symbolic"
)

func parseNormalized(t *testing.T, text string) symbolic.Expr {
	t.Helper()
	norm, err := notation.NewNormalizer(notation.Options{}).Normalize(text)
	require.NoError(t, err, text)
	e, err := symbolic.Parse(norm)
	require.NoError(t, err, norm)
	return e
}

// =============================================================================
// Render Tests
// =============================================================================

func TestRender_RootNotation(t *testing.T) {
	r := notation.NewRenderer()

	cases := []struct {
		in   string
		want string
	}{
		{"(2)#x", "(2)#x"},
		{"x**(1/2)", "(2)#x"},
		{"x**(1/3) + 1", "(3)#x + 1"},
		{"(2)#(x+1)", "(2)#(x + 1)"},
		{"(2)#8", "2*(2)#2"},
		{"(2)#(1/2)", "(2)#(1/2)"},
		{"x**(-1/2)", "1/(2)#x"},
		{"x**(2/3)", "x**(2/3)"},
		{"x**2 - 4", "x**2 - 4"},
		{"3/2", "3/2"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, r.Render(parseNormalized(t, c.in)), c.in)
	}
}

func TestRender_InvertsNormalize(t *testing.T) {
	r := notation.NewRenderer()

	for _, in := range []string{
		"(2)#x",
		"(3)#(x+1)",
		"2(2)#x + 1",
		"(2)#(1/2)",
		"x**(-1/2)",
		"(5)#(2x)",
		"-(2)#y",
	} {
		e := parseNormalized(t, in)
		again := parseNormalized(t, r.Render(e))
		assert.True(t, e.Equal(again), "%s rendered as %s parsed back as %s", in, r.Render(e), again)
	}
}

func TestRender_Bindings(t *testing.T) {
	r := notation.NewRenderer()
	x := symbolic.PowOf(symbolic.N(2), symbolic.F(1, 2))

	assert.Equal(t, "x = (2)#2", r.RenderBinding("x", x))
	assert.Equal(t, []string{"x = -2", "x = 2"}, r.RenderValues("x", []symbolic.Expr{symbolic.N(-2), symbolic.N(2)}))

	a := symbolic.Assignment{
		{Var: "x", Value: symbolic.N(3)},
		{Var: "y", Value: symbolic.N(2)},
	}
	assert.Equal(t, "x = 3, y = 2", r.RenderAssignment(a))

	eq := symbolic.Eq(symbolic.S("x"), x)
	assert.Equal(t, "x = (2)#2", r.RenderEquation(eq))
}
