// Package solver classifies user input and drives a symbolic engine to a
// result shape.
//
// An Orchestrator accepts raw text, normalizes it once, decides which path
// applies (a plain expression, a single equation or a system of equations)
// and calls the engine only through the Engine interface. Every outcome is
// one of the Shape variants below; every failure is an *InputError, a
// *ParseError or a *SolveError.
package solver

import "github.com/njchilds90/gosolve/symbolic"

// Shape is the closed set of solution shapes. The unexported marker keeps
// the set closed; consumers switch over the concrete types.
type Shape interface {
	// Name is the variant name reported to clients.
	Name() string
	shape()
}

// NumericValue is the value of an expression without free variables.
type NumericValue struct {
	Value *symbolic.Num
}

// SimplifiedExpression is the simplified form of an expression with free
// variables.
type SimplifiedExpression struct {
	Expr      symbolic.Expr
	Variables []string
}

// SingleVariableSolutions lists the values that solve an equation in one
// variable, in engine order.
type SingleVariableSolutions struct {
	Variable string
	Values   []symbolic.Expr
}

// MultiVariableSolutionSet lists assignments that solve an equation or a
// system in several variables.
type MultiVariableSolutionSet struct {
	Variables []string
	Mappings  []symbolic.Assignment
}

// Identity is an equation that holds for every value of its variables.
type Identity struct{}

// Contradiction is an equation without variables that never holds.
type Contradiction struct{}

// NoSolution is an equation or system the engine proved has no real
// solution.
type NoSolution struct {
	Variables []string
}

// Underdetermined is an equation or system with more unknowns than the
// engine could eliminate.
type Underdetermined struct {
	Variables []string
	Equations int
}

func (NumericValue) Name() string             { return "NumericValue" }
func (SimplifiedExpression) Name() string     { return "SimplifiedExpression" }
func (SingleVariableSolutions) Name() string  { return "SingleVariableSolutions" }
func (MultiVariableSolutionSet) Name() string { return "MultiVariableSolutionSet" }
func (Identity) Name() string                 { return "Identity" }
func (Contradiction) Name() string            { return "Contradiction" }
func (NoSolution) Name() string               { return "NoSolution" }
func (Underdetermined) Name() string          { return "Underdetermined" }

func (NumericValue) shape()             {}
func (SimplifiedExpression) shape()     {}
func (SingleVariableSolutions) shape()  {}
func (MultiVariableSolutionSet) shape() {}
func (Identity) shape()                 {}
func (Contradiction) shape()            {}
func (NoSolution) shape()               {}
func (Underdetermined) shape()          {}

// ShapeNames lists every variant name, for metrics pre-registration.
var ShapeNames = []string{
	NumericValue{}.Name(),
	SimplifiedExpression{}.Name(),
	SingleVariableSolutions{}.Name(),
	MultiVariableSolutionSet{}.Name(),
	Identity{}.Name(),
	Contradiction{}.Name(),
	NoSolution{}.Name(),
	Underdetermined{}.Name(),
}

// Result is the outcome of one Solve or SolveSystem call.
type Result struct {
	Shape Shape
	// Display is the one-line result in user notation.
	Display string
	// Lines holds one rendered line per solution; it is empty for shapes
	// without solutions.
	Lines []string
	// Canonical is the result in the engine grammar, so it can be sent
	// back as input. It is empty for shapes without values.
	Canonical   string
	Explanation string
	Inputs      []string
	Normalized  []string
}
