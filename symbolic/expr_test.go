package symbolic_test

import (
	"errors"
	"testing"

	"github.com/njchilds90/gosolve/symbolic"
)

// ============================================================
// Num tests
// ============================================================

func TestNum_Integer(t *testing.T) {
	n := symbolic.N(42)
	if n.String() != "42" {
		t.Errorf("want 42, got %s", n.String())
	}
}

func TestNum_Rational(t *testing.T) {
	n := symbolic.F(2, 6)
	if n.String() != "1/3" {
		t.Errorf("want 1/3, got %s", n.String())
	}
}

func TestNum_FloatIsApprox(t *testing.T) {
	n := symbolic.NFloat(0.5)
	if !n.Approx() {
		t.Errorf("NFloat should be approximate")
	}
	if n.String() != "0.5" {
		t.Errorf("want 0.5, got %s", n.String())
	}
}

func TestNum_Eval(t *testing.T) {
	n, ok := symbolic.N(7).Eval()
	if !ok || n.String() != "7" {
		t.Errorf("Num.Eval() should succeed with same value")
	}
}

// ============================================================
// Sym tests
// ============================================================

func TestSym_Sub_Match(t *testing.T) {
	result := symbolic.S("x").Sub("x", symbolic.N(3))
	if symbolic.String(result) != "3" {
		t.Errorf("want 3, got %s", symbolic.String(result))
	}
}

func TestSym_Sub_NoMatch(t *testing.T) {
	result := symbolic.S("x").Sub("y", symbolic.N(3))
	if symbolic.String(result) != "x" {
		t.Errorf("want x, got %s", symbolic.String(result))
	}
}

// ============================================================
// Add / Mul / Pow tests
// ============================================================

func TestAdd_LikeTerms(t *testing.T) {
	x := symbolic.S("x")
	expr := symbolic.AddOf(x, x, x, symbolic.N(2))
	if got := symbolic.String(expr); got != "3*x + 2" {
		t.Errorf("want 3*x + 2, got %s", got)
	}
}

func TestAdd_CollapseToZero(t *testing.T) {
	x := symbolic.S("x")
	expr := symbolic.AddOf(x, symbolic.MulOf(symbolic.N(-1), x))
	if got := symbolic.String(expr); got != "0" {
		t.Errorf("want 0, got %s", got)
	}
}

func TestAdd_PrintsSubtraction(t *testing.T) {
	x := symbolic.S("x")
	expr := symbolic.AddOf(
		symbolic.N(4),
		symbolic.MulOf(symbolic.N(-4), x),
		symbolic.PowOf(x, symbolic.N(2)),
	)
	if got := symbolic.String(expr); got != "x**2 - 4*x + 4" {
		t.Errorf("want x**2 - 4*x + 4, got %s", got)
	}
}

func TestMul_ZeroCollapse(t *testing.T) {
	if got := symbolic.String(symbolic.MulOf(symbolic.N(0), symbolic.S("x"))); got != "0" {
		t.Errorf("want 0, got %s", got)
	}
}

func TestMul_MergesPowers(t *testing.T) {
	x := symbolic.S("x")
	expr := symbolic.MulOf(x, symbolic.PowOf(x, symbolic.N(2)))
	if got := symbolic.String(expr); got != "x**3" {
		t.Errorf("want x**3, got %s", got)
	}
}

func TestMul_Quotients(t *testing.T) {
	x, y := symbolic.S("x"), symbolic.S("y")
	cases := []struct {
		expr symbolic.Expr
		want string
	}{
		{symbolic.MulOf(x, symbolic.PowOf(symbolic.N(2), symbolic.N(-1))), "x/2"},
		{symbolic.MulOf(symbolic.F(3, 2), x), "3*x/2"},
		{symbolic.MulOf(x, symbolic.PowOf(y, symbolic.N(-1))), "x/y"},
		{symbolic.PowOf(x, symbolic.N(-1)), "1/x"},
	}
	for _, c := range cases {
		if got := symbolic.String(c.expr); got != c.want {
			t.Errorf("want %s, got %s", c.want, got)
		}
	}
}

func TestPow_ZeroAndOneExp(t *testing.T) {
	x := symbolic.S("x")
	if got := symbolic.String(symbolic.PowOf(x, symbolic.N(0))); got != "1" {
		t.Errorf("x**0: want 1, got %s", got)
	}
	if got := symbolic.String(symbolic.PowOf(x, symbolic.N(1))); got != "x" {
		t.Errorf("x**1: want x, got %s", got)
	}
}

func TestPow_ExactRoots(t *testing.T) {
	cases := []struct {
		base *symbolic.Num
		exp  *symbolic.Num
		want string
	}{
		{symbolic.N(2), symbolic.N(10), "1024"},
		{symbolic.N(4), symbolic.F(1, 2), "2"},
		{symbolic.F(1, 4), symbolic.F(1, 2), "1/2"},
		{symbolic.N(27), symbolic.F(2, 3), "9"},
		{symbolic.N(8), symbolic.F(1, 2), "2*2**(1/2)"},
		{symbolic.N(2), symbolic.F(1, 2), "2**(1/2)"},
	}
	for _, c := range cases {
		if got := symbolic.String(symbolic.PowOf(c.base, c.exp)); got != c.want {
			t.Errorf("%s**(%s): want %s, got %s", c.base, c.exp, c.want, got)
		}
	}
}

func TestPow_IrrationalEvalIsApprox(t *testing.T) {
	n, ok := symbolic.PowOf(symbolic.N(2), symbolic.F(1, 2)).Eval()
	if !ok {
		t.Fatal("2**(1/2) should evaluate")
	}
	if !n.Approx() || n.String() != "1.4142135623731" {
		t.Errorf("want approximate 1.4142135623731, got %s", n)
	}
}

func TestPow_ZeroDivisionStaysUnevaluated(t *testing.T) {
	p := symbolic.PowOf(symbolic.N(0), symbolic.N(-1))
	if _, ok := p.Eval(); ok {
		t.Errorf("0**-1 should not evaluate")
	}
	m := symbolic.MulOf(symbolic.N(0), p)
	if _, ok := m.Eval(); ok {
		t.Errorf("0*(1/0) should not evaluate, got %s", m)
	}
}

// ============================================================
// Expand / FreeSymbols / PolyCoeffs tests
// ============================================================

func TestExpand_Square(t *testing.T) {
	x := symbolic.S("x")
	sq := symbolic.PowOf(symbolic.AddOf(x, symbolic.N(1)), symbolic.N(2))
	if got := symbolic.String(symbolic.Expand(sq)); got != "x**2 + 2*x + 1" {
		t.Errorf("want x**2 + 2*x + 1, got %s", got)
	}
}

func TestExpand_Distribution(t *testing.T) {
	x, y, z := symbolic.S("x"), symbolic.S("y"), symbolic.S("z")
	expr := symbolic.MulOf(x, symbolic.AddOf(y, z))
	if got := symbolic.String(symbolic.Expand(expr)); got != "x*y + x*z" {
		t.Errorf("want x*y + x*z, got %s", got)
	}
}

func TestFreeSymbols(t *testing.T) {
	x, y := symbolic.S("x"), symbolic.S("y")
	expr := symbolic.AddOf(symbolic.MulOf(x, y), symbolic.PowOf(y, symbolic.N(2)), symbolic.N(3))
	got := symbolic.SortedSymbols(expr)
	if len(got) != 2 || got[0] != "x" || got[1] != "y" {
		t.Errorf("want [x y], got %v", got)
	}
	if len(symbolic.FreeSymbols(symbolic.N(5))) != 0 {
		t.Errorf("constant should have no free symbols")
	}
}

func TestPolyCoeffs(t *testing.T) {
	x := symbolic.S("x")
	// 3x^2 + 2x + 1
	expr := symbolic.AddOf(
		symbolic.MulOf(symbolic.N(3), symbolic.PowOf(x, symbolic.N(2))),
		symbolic.MulOf(symbolic.N(2), x),
		symbolic.N(1),
	)
	coeffs, deg, ok := symbolic.PolyCoeffs(expr, "x")
	if !ok || deg != 2 {
		t.Fatalf("want degree 2 polynomial, got deg=%d ok=%v", deg, ok)
	}
	for d, want := range map[int]string{2: "3", 1: "2", 0: "1"} {
		if got := coeffs.Coeff(d).String(); got != want {
			t.Errorf("coeff[%d]: want %s, got %s", d, want, got)
		}
	}
}

func TestPolyCoeffs_RejectsRoots(t *testing.T) {
	expr := symbolic.AddOf(symbolic.PowOf(symbolic.S("x"), symbolic.F(1, 2)), symbolic.N(1))
	if _, _, ok := symbolic.PolyCoeffs(expr, "x"); ok {
		t.Errorf("x**(1/2) + 1 is not a polynomial in x")
	}
}

func TestEquation_Residual(t *testing.T) {
	x := symbolic.S("x")
	eq := symbolic.Eq(symbolic.AddOf(x, symbolic.N(5)), symbolic.N(10))
	if got := symbolic.String(eq.Residual()); got != "x - 5" {
		t.Errorf("want x - 5, got %s", got)
	}
	if got := eq.String(); got != "x + 5 = 10" {
		t.Errorf("want x + 5 = 10, got %s", got)
	}
}

// ============================================================
// Parse tests
// ============================================================

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2+3*4", "14"},
		{"x**2 - 4", "x**2 - 4"},
		{"2^3", "8"},
		{"-x**2", "-x**2"},
		{"2**-1", "1/2"},
		{"2**3**2", "512"},
		{"1.5*x", "3*x/2"},
		{"x/(2*y)", "x/(2*y)"},
		{"(x+1)*(x-1)", "(x + 1)*(x - 1)"},
	}
	for _, c := range cases {
		e, err := symbolic.Parse(c.in)
		if err != nil {
			t.Errorf("Parse(%q): unexpected error %v", c.in, err)
			continue
		}
		if got := e.String(); got != c.want {
			t.Errorf("Parse(%q): want %s, got %s", c.in, c.want, got)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	for _, in := range []string{"", "2+", "(x", "x $ 2", "3 4", ")"} {
		_, err := symbolic.Parse(in)
		var perr *symbolic.ParseError
		if !errors.As(err, &perr) {
			t.Errorf("Parse(%q): want *ParseError, got %v", in, err)
		}
	}
}

func TestParse_PrintRoundTrip(t *testing.T) {
	for _, in := range []string{"x**2 - 4*x + 4", "3*x/2", "x/(2*y)", "-x**2 + 1", "x**(1/2)"} {
		e, err := symbolic.Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}
		again, err := symbolic.Parse(e.String())
		if err != nil {
			t.Fatalf("Parse(%q): %v", e.String(), err)
		}
		if !e.Equal(again) {
			t.Errorf("round trip of %q changed %s into %s", in, e, again)
		}
	}
}

// ============================================================
// Printer tests
// ============================================================

func TestPrinter_PowHook(t *testing.T) {
	pr := &symbolic.Printer{Pow: func(p *symbolic.Pow, print func(symbolic.Expr) string) (string, bool) {
		return "pow(" + print(p.Base()) + "," + print(p.ExpExpr()) + ")", true
	}}
	x := symbolic.S("x")
	expr := symbolic.AddOf(symbolic.PowOf(x, symbolic.N(2)), symbolic.N(1))
	if got := pr.Print(expr); got != "pow(x,2) + 1" {
		t.Errorf("want pow(x,2) + 1, got %s", got)
	}
}

// ============================================================
// Determinism
// ============================================================

func TestDeterminism(t *testing.T) {
	x, y := symbolic.S("x"), symbolic.S("y")
	build := func() string {
		return symbolic.String(symbolic.AddOf(y, x, symbolic.MulOf(symbolic.N(2), y, x), symbolic.N(1)))
	}
	first := build()
	for i := 0; i < 20; i++ {
		if got := build(); got != first {
			t.Fatalf("unstable output: %s vs %s", first, got)
		}
	}
}
