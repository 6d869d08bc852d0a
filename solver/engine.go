package solver

import "github.com/njchilds90/gosolve/symbolic"

// Engine is the symbolic capability the orchestrator drives.
// *symbolic.Engine implements it.
type Engine interface {
	// Parse fails with a *symbolic.ParseError on malformed syntax.
	Parse(text string) (symbolic.Expr, error)
	FreeVariables(e symbolic.Expr) []string
	// EquationVariables returns the free symbols of lhs - rhs.
	EquationVariables(eq *symbolic.Equation) []string
	BuildEquation(lhs, rhs symbolic.Expr) *symbolic.Equation
	EvaluateNumeric(e symbolic.Expr) (*symbolic.Num, error)
	EvaluateBoolean(eq *symbolic.Equation) symbolic.Truth
	Simplify(e symbolic.Expr) (symbolic.Expr, error)
	Solve(eq *symbolic.Equation, vars []string) (*symbolic.Solutions, error)
	SolveSystem(eqs []*symbolic.Equation, vars []string) (*symbolic.Solutions, error)
	// Render prints e in the engine grammar.
	Render(e symbolic.Expr) string
}

var _ Engine = (*symbolic.Engine)(nil)
