package symbolic

import (
	"errors"
	"fmt"
)

// ============================================================
// Engine
// ============================================================

var (
	ErrUnsupported    = errors.New("unsupported")
	ErrDivisionByZero = errors.New("division by zero")
	ErrNotFinite      = errors.New("result is not a finite real number")
)

// Truth is the constant truth value of an equation without free symbols.
type Truth int

const (
	Unresolved Truth = iota
	True
	False
)

func (t Truth) String() string {
	switch t {
	case True:
		return "True"
	case False:
		return "False"
	}
	return "Unresolved"
}

// Solutions holds either plain values (one variable) or assignments.
type Solutions struct {
	Values   []Expr
	Mappings []Assignment
}

func (s *Solutions) Empty() bool { return s == nil || len(s.Values) == 0 && len(s.Mappings) == 0 }

// Engine exposes the kernel as a text-in, tree-out service. It holds no
// state and is safe for concurrent use.
type Engine struct{}

func NewEngine() *Engine { return &Engine{} }

func (en *Engine) Parse(text string) (Expr, error) { return Parse(text) }

// FreeVariables returns the free symbols of e in lexical order.
func (en *Engine) FreeVariables(e Expr) []string {
	return SortedSymbols(e)
}

// EquationVariables returns the symbols that survive in lhs - rhs, so
// x = x has none and x + y = y + 5 only has x.
func (en *Engine) EquationVariables(eq *Equation) []string {
	return SortedSymbols(eq.Residual())
}

func (en *Engine) BuildEquation(lhs, rhs Expr) *Equation { return Eq(lhs, rhs) }

// EvaluateNumeric reduces a symbol-free expression to a number.
func (en *Engine) EvaluateNumeric(e Expr) (*Num, error) {
	s := e.Simplify()
	if len(FreeSymbols(s)) > 0 {
		return nil, fmt.Errorf("%w: expression has free symbols", ErrUnsupported)
	}
	if n, ok := s.Eval(); ok {
		return n, nil
	}
	if hasZeroDivision(s) {
		return nil, ErrDivisionByZero
	}
	if overflows(s) {
		return nil, fmt.Errorf("%w: result too large", ErrUnsupported)
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFinite, s)
}

// EvaluateBoolean decides lhs = rhs when neither side has free symbols.
func (en *Engine) EvaluateBoolean(eq *Equation) Truth {
	r := eq.Residual()
	if len(FreeSymbols(r)) > 0 {
		return Unresolved
	}
	n, ok := r.Eval()
	if !ok {
		return Unresolved
	}
	if n.IsZero() || (n.approx && nearZero(n)) {
		return True
	}
	return False
}

// Simplify rewrites e until its printed form is stable. The expanded form
// wins when it prints shorter, so (x+1)**2 - x**2 becomes 2*x + 1 while
// x*(y + z) is left alone.
func (en *Engine) Simplify(e Expr) (Expr, error) {
	cur := e.Simplify()
	if exp := Expand(e); len(exp.String()) < len(cur.String()) {
		cur = exp
	}
	for i := 0; i < 10; i++ {
		next := cur.Simplify()
		if next.String() == cur.String() {
			break
		}
		cur = next
	}
	if hasZeroDivision(cur) {
		return nil, ErrDivisionByZero
	}
	return cur, nil
}

// Solve solves eq for vars. With one variable the values are returned in
// ascending order. With several, the first variable (in the given order)
// that yields solutions is solved for in terms of the others.
func (en *Engine) Solve(eq *Equation, vars []string) (*Solutions, error) {
	r := eq.Residual()
	if hasZeroDivision(r) {
		return nil, ErrDivisionByZero
	}
	if len(vars) == 1 {
		values, err := SolveFor(r, vars[0])
		if err != nil {
			return nil, err
		}
		return &Solutions{Values: values}, nil
	}
	var lastErr error
	for _, v := range vars {
		values, err := SolveFor(r, v)
		if err != nil {
			lastErr = err
			continue
		}
		if len(values) == 0 {
			continue
		}
		sols := &Solutions{}
		for _, val := range values {
			sols.Mappings = append(sols.Mappings, Assignment{{Var: v, Value: val}})
		}
		return sols, nil
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return &Solutions{}, nil
}

// SolveSystem solves the equations jointly for vars.
func (en *Engine) SolveSystem(eqs []*Equation, vars []string) (*Solutions, error) {
	residuals := make([]Expr, len(eqs))
	for i, eq := range eqs {
		residuals[i] = eq.Residual()
		if hasZeroDivision(residuals[i]) {
			return nil, ErrDivisionByZero
		}
	}
	mappings, err := SolveSystem(residuals, vars)
	if err != nil {
		return nil, err
	}
	return &Solutions{Mappings: mappings}, nil
}

// Render prints e in the engine grammar.
func (en *Engine) Render(e Expr) string { return defaultPrinter.Print(e) }

func hasZeroDivision(e Expr) bool {
	if isZeroDivision(e) {
		return true
	}
	switch v := e.(type) {
	case *Add:
		for _, t := range v.terms {
			if hasZeroDivision(t) {
				return true
			}
		}
	case *Mul:
		for _, f := range v.factors {
			if hasZeroDivision(f) {
				return true
			}
		}
	case *Pow:
		return hasZeroDivision(v.base) || hasZeroDivision(v.exp)
	}
	return false
}
