package notation

import (
	"strings"

	"github.com/njchilds90/gosolve/symbolic"
)

// Renderer prints engine expressions in user notation. Powers with an
// exponent of exactly 1/n, n > 1, print as "(n)#base"; everything else
// prints as the engine prints it.
type Renderer struct {
	printer *symbolic.Printer
}

func NewRenderer() *Renderer {
	return &Renderer{printer: &symbolic.Printer{Pow: rootNotation}}
}

func rootNotation(p *symbolic.Pow, print func(symbolic.Expr) string) (string, bool) {
	e, ok := p.ExpExpr().(*symbolic.Num)
	if !ok || e.Approx() {
		return "", false
	}
	r := e.Rat()
	if !r.Num().IsInt64() || r.Num().Int64() != 1 || r.IsInt() {
		return "", false
	}
	base := print(p.Base())
	if !bareBase(p.Base()) {
		base = "(" + base + ")"
	}
	return "(" + r.Denom().String() + ")#" + base, true
}

// bareBase reports whether e survives normalization as a root base
// without parentheses.
func bareBase(e symbolic.Expr) bool {
	switch v := e.(type) {
	case *symbolic.Sym:
		return true
	case *symbolic.Num:
		return !v.Approx() && v.IsInteger() && !v.IsNegative()
	}
	return false
}

// Render prints e in user notation.
func (r *Renderer) Render(e symbolic.Expr) string { return r.printer.Print(e) }

// RenderEquation prints "lhs = rhs".
func (r *Renderer) RenderEquation(eq *symbolic.Equation) string {
	return r.Render(eq.LHS) + " = " + r.Render(eq.RHS)
}

// RenderBinding prints "name = value".
func (r *Renderer) RenderBinding(name string, value symbolic.Expr) string {
	return name + " = " + r.Render(value)
}

// RenderAssignment prints an assignment as "x = 3, y = 2".
func (r *Renderer) RenderAssignment(a symbolic.Assignment) string {
	parts := make([]string, len(a))
	for i, b := range a {
		parts[i] = r.RenderBinding(b.Var, b.Value)
	}
	return strings.Join(parts, ", ")
}

// RenderValues prints one "v = value" line per value.
func (r *Renderer) RenderValues(v string, values []symbolic.Expr) []string {
	out := make([]string, len(values))
	for i, val := range values {
		out[i] = r.RenderBinding(v, val)
	}
	return out
}
