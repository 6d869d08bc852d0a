package symbolic_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/njchilds90/gosolve/symbolic"
)

func mustParse(t *testing.T, s string) symbolic.Expr {
	t.Helper()
	e, err := symbolic.Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q): %v", s, err)
	}
	return e
}

func residual(t *testing.T, eq string) symbolic.Expr {
	t.Helper()
	parts := strings.SplitN(eq, "=", 2)
	return symbolic.Eq(mustParse(t, parts[0]), mustParse(t, parts[1])).Residual()
}

func joined(es []symbolic.Expr) string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.String()
	}
	return strings.Join(out, ", ")
}

// ============================================================
// Single variable
// ============================================================

func TestSolveFor(t *testing.T) {
	cases := []struct {
		eq   string
		want string
	}{
		{"x + 5 = 10", "5"},
		{"2*x = 3", "3/2"},
		{"x**2 - 4 = 0", "-2, 2"},
		{"x**2 + 1 = 0", ""},
		{"x**2 - 2 = 0", "-2**(1/2), 2**(1/2)"},
		{"x**2 - 2*x + 1 = 0", "1"},
		{"x**(1/2) = 3", "9"},
		{"x**(1/2) = -3", ""},
		{"(x+1)**(1/2) = 3", "8"},
		{"x**(1/3) = 2", "8"},
		{"1/x = 2", "1/2"},
		{"1/x = 0", ""},
		{"x + 1/x = 2", "1"},
		{"x + x**(1/2) = 6", "4"},
		{"x**3 - 6*x**2 + 11*x - 6 = 0", "1, 2, 3"},
		{"x**3 = 8", "2"},
		{"x**3 = -8", "-2"},
		{"x**4 = 16", "-2, 2"},
		{"x**3 - x**2 = 0", "0, 1"},
		{"(x**2)**(1/2) = 3", "-3, 3"},
		{"(x**2)**(1/2) + 3 = 0", ""},
		{"(x**(1/2))**2 = 4", "4"},
		{"(x**(1/2))**2 = -4", ""},
		{"1/x**(1/2) = 2", "1/4"},
	}
	for _, c := range cases {
		got, err := symbolic.SolveFor(residual(t, c.eq), "x")
		if err != nil {
			t.Errorf("%s: unexpected error %v", c.eq, err)
			continue
		}
		if joined(got) != c.want {
			t.Errorf("%s: want [%s], got [%s]", c.eq, c.want, joined(got))
		}
	}
}

func TestSolveFor_NewtonFallback(t *testing.T) {
	got, err := symbolic.SolveFor(residual(t, "x**3 - x - 1 = 0"), "x")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("want one real root, got [%s]", joined(got))
	}
	n, ok := got[0].Eval()
	if !ok || !n.Approx() {
		t.Fatalf("want an approximate root, got %s", got[0])
	}
	if f := n.Float64(); f < 1.3247 || f > 1.3248 {
		t.Errorf("want ~1.32472, got %v", f)
	}
}

func TestSolveFor_Symbolic(t *testing.T) {
	got, err := symbolic.SolveFor(residual(t, "a*x + b = 0"), "x")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if joined(got) != "-b/a" {
		t.Errorf("want -b/a, got %s", joined(got))
	}
}

func TestSolveFor_Unsupported(t *testing.T) {
	for _, eq := range []string{"2**x = 8", "(x**2)**(1/2) + x = 0"} {
		_, err := symbolic.SolveFor(residual(t, eq), "x")
		if !errors.Is(err, symbolic.ErrUnsupported) {
			t.Errorf("%s: want ErrUnsupported, got %v", eq, err)
		}
	}
}

// ============================================================
// Systems
// ============================================================

func assignment(a symbolic.Assignment) string {
	parts := make([]string, len(a))
	for i, b := range a {
		parts[i] = b.Var + " = " + b.Value.String()
	}
	return strings.Join(parts, ", ")
}

func TestSolveSystem_Linear(t *testing.T) {
	rs := []symbolic.Expr{residual(t, "x + y = 5"), residual(t, "x - y = 1")}
	got, err := symbolic.SolveSystem(rs, []string{"x", "y"})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(got) != 1 || assignment(got[0]) != "x = 3, y = 2" {
		t.Errorf("want x = 3, y = 2, got %v", got)
	}
}

func TestSolveSystem_Inconsistent(t *testing.T) {
	rs := []symbolic.Expr{residual(t, "x + y = 1"), residual(t, "x + y = 2")}
	got, err := symbolic.SolveSystem(rs, []string{"x", "y"})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(got) != 0 {
		t.Errorf("want no solution, got %v", got)
	}
}

func TestSolveSystem_Parametric(t *testing.T) {
	rs := []symbolic.Expr{residual(t, "x + y + z = 6"), residual(t, "x - y = 0")}
	got, err := symbolic.SolveSystem(rs, []string{"x", "y", "z"})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(got) != 1 || assignment(got[0]) != "x = -z/2 + 3, y = -z/2 + 3" {
		t.Errorf("want x and y in terms of z, got %v", got)
	}
}

func TestSolveSystem_Nonlinear(t *testing.T) {
	rs := []symbolic.Expr{residual(t, "x*y = 6"), residual(t, "x + y = 5")}
	got, err := symbolic.SolveSystem(rs, []string{"x", "y"})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	seen := map[string]bool{}
	for _, a := range got {
		seen[assignment(a)] = true
	}
	if len(got) != 2 || !seen["x = 3, y = 2"] || !seen["x = 2, y = 3"] {
		t.Errorf("want the two swaps of (2, 3), got %v", got)
	}
}

func TestSolveSystem_CircleAndLine(t *testing.T) {
	rs := []symbolic.Expr{residual(t, "x**2 + y**2 = 25"), residual(t, "x - y = 1")}
	got, err := symbolic.SolveSystem(rs, []string{"x", "y"})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	want := []string{"x = -3, y = -4", "x = 4, y = 3"}
	if len(got) != len(want) {
		t.Fatalf("want %v, got %v", want, got)
	}
	for i, w := range want {
		if assignment(got[i]) != w {
			t.Errorf("solution %d: want %s, got %s", i, w, assignment(got[i]))
		}
	}
}

// ============================================================
// Engine
// ============================================================

func TestEngine_EvaluateNumeric(t *testing.T) {
	en := symbolic.NewEngine()
	n, err := en.EvaluateNumeric(mustParse(t, "2+3*4"))
	if err != nil || n.String() != "14" {
		t.Errorf("want 14, got %v (%v)", n, err)
	}
	if _, err := en.EvaluateNumeric(mustParse(t, "1/0")); !errors.Is(err, symbolic.ErrDivisionByZero) {
		t.Errorf("want ErrDivisionByZero, got %v", err)
	}
	if _, err := en.EvaluateNumeric(mustParse(t, "(-1)**(1/2)")); !errors.Is(err, symbolic.ErrNotFinite) {
		t.Errorf("want ErrNotFinite, got %v", err)
	}
	_, err = en.EvaluateNumeric(mustParse(t, "2**100000"))
	if !errors.Is(err, symbolic.ErrUnsupported) || errors.Is(err, symbolic.ErrNotFinite) {
		t.Errorf("want ErrUnsupported for an oversized power, got %v", err)
	}
}

func TestEngine_EvaluateBoolean(t *testing.T) {
	en := symbolic.NewEngine()
	cases := []struct {
		lhs, rhs string
		want     symbolic.Truth
	}{
		{"2", "3", symbolic.False},
		{"4/2", "2", symbolic.True},
		{"x", "x", symbolic.True},
		{"x", "2", symbolic.Unresolved},
	}
	for _, c := range cases {
		eq := en.BuildEquation(mustParse(t, c.lhs), mustParse(t, c.rhs))
		if got := en.EvaluateBoolean(eq); got != c.want {
			t.Errorf("%s = %s: want %s, got %s", c.lhs, c.rhs, c.want, got)
		}
	}
}

func TestEngine_EquationVariables(t *testing.T) {
	en := symbolic.NewEngine()
	eq := en.BuildEquation(mustParse(t, "x + y"), mustParse(t, "y + 5"))
	if got := en.EquationVariables(eq); len(got) != 1 || got[0] != "x" {
		t.Errorf("want [x], got %v", got)
	}
}

func TestEngine_Simplify(t *testing.T) {
	en := symbolic.NewEngine()
	cases := map[string]string{
		"(x+1)**2 - x**2":   "2*x + 1",
		"x*(y+z)":           "x*(y + z)",
		"x + x + y":         "2*x + y",
		"(x**2)**(1/2)":     "(x**2)**(1/2)",
		"(x**(1/2))**2":     "(x**(1/2))**2",
		"(x**3)**2":         "x**6",
		"(x**4)**(1/2)":     "x**2",
		"(x**(1/3))**(1/2)": "x**(1/6)",
		"(4**x)**(1/2)":     "4**(x/2)",
	}
	for in, want := range cases {
		got, err := en.Simplify(mustParse(t, in))
		if err != nil {
			t.Errorf("%s: unexpected error %v", in, err)
			continue
		}
		if got.String() != want {
			t.Errorf("%s: want %s, got %s", in, want, got)
		}
	}
}

func TestEngine_SolveMultiVariable(t *testing.T) {
	en := symbolic.NewEngine()
	eq := en.BuildEquation(mustParse(t, "x + y"), mustParse(t, "5"))
	sols, err := en.Solve(eq, []string{"x", "y"})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(sols.Mappings) != 1 || assignment(sols.Mappings[0]) != "x = -y + 5" {
		t.Errorf("want x = -y + 5, got %v", sols.Mappings)
	}
}

func TestEngine_SolveEmpty(t *testing.T) {
	en := symbolic.NewEngine()
	eq := en.BuildEquation(mustParse(t, "x**2"), mustParse(t, "-1"))
	sols, err := en.Solve(eq, []string{"x"})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if !sols.Empty() {
		t.Errorf("want no real solutions, got %v", sols.Values)
	}
}
