package solver

import (
	"context"
	"fmt"
	"io"
	"runtime/debug"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/njchilds90/gosolve/notation"
	"github.com/njchilds90/gosolve/symbolic"
)

// Orchestrator classifies input and drives an Engine. It holds only
// immutable dependencies and is safe for concurrent use.
type Orchestrator struct {
	engine     Engine
	normalizer *notation.Normalizer
	renderer   *notation.Renderer
	log        logrus.FieldLogger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger used for path and shape tracing.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *Orchestrator) { o.log = l }
}

// New returns an Orchestrator. A nil renderer selects notation.NewRenderer.
func New(engine Engine, normalizer *notation.Normalizer, renderer *notation.Renderer, opts ...Option) *Orchestrator {
	if renderer == nil {
		renderer = notation.NewRenderer()
	}
	o := &Orchestrator{engine: engine, normalizer: normalizer, renderer: renderer}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		o.log = l
	}
	return o
}

// Solve handles one expression or one equation.
func (o *Orchestrator) Solve(ctx context.Context, input string) (*Result, error) {
	if strings.TrimSpace(input) == "" {
		return nil, &InputError{Input: input, Index: -1, Err: ErrEmptyInput}
	}
	switch strings.Count(input, "=") {
	case 0:
		return o.guard(ctx, input, func() (*Result, error) { return o.expression(input) })
	case 1:
		return o.guard(ctx, input, func() (*Result, error) { return o.equation(input) })
	}
	return nil, &InputError{Input: input, Index: -1, Err: ErrMultipleEquals}
}

// SolveSystem solves every input jointly. Each input must be an equation.
func (o *Orchestrator) SolveSystem(ctx context.Context, inputs []string) (*Result, error) {
	if len(inputs) == 0 {
		return nil, &InputError{Index: -1, Err: ErrNoEquations}
	}
	for i, in := range inputs {
		switch {
		case strings.TrimSpace(in) == "":
			return nil, &InputError{Input: in, Index: i, Err: ErrEmptyInput}
		case strings.Count(in, "=") == 0:
			return nil, &InputError{Input: in, Index: i, Err: ErrMissingEquals}
		case strings.Count(in, "=") > 1:
			return nil, &InputError{Input: in, Index: i, Err: ErrMultipleEquals}
		}
	}
	label := strings.Join(inputs, "; ")
	return o.guard(ctx, label, func() (*Result, error) { return o.system(inputs) })
}

// guard runs fn on its own goroutine, turning a panic into an Internal
// error and an expired context into a Timeout. An abandoned fn runs to
// completion in the background.
func (o *Orchestrator) guard(ctx context.Context, input string, fn func() (*Result, error)) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, &SolveError{Kind: Timeout, Input: input, Err: err}
	}
	type outcome struct {
		res *Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				o.log.WithFields(logrus.Fields{
					"input": input,
					"panic": r,
					"stack": string(debug.Stack()),
				}).Error("engine panic")
				done <- outcome{err: &SolveError{Kind: Internal, Input: input, Err: fmt.Errorf("engine panic: %v", r)}}
			}
		}()
		res, err := fn()
		done <- outcome{res: res, err: err}
	}()
	select {
	case out := <-done:
		return out.res, out.err
	case <-ctx.Done():
		return nil, &SolveError{Kind: Timeout, Input: input, Err: ctx.Err()}
	}
}

func (o *Orchestrator) normalize(raw string, index int) (string, error) {
	norm, err := o.normalizer.Normalize(raw)
	if err != nil {
		return "", &InputError{Input: raw, Index: index, Err: err}
	}
	return norm, nil
}

func (o *Orchestrator) parse(raw, norm, text string) (symbolic.Expr, error) {
	e, err := o.engine.Parse(text)
	if err != nil {
		return nil, &ParseError{Input: raw, Normalized: norm, Err: err}
	}
	return e, nil
}

func (o *Orchestrator) expression(raw string) (*Result, error) {
	norm, err := o.normalize(raw, -1)
	if err != nil {
		return nil, err
	}
	e, err := o.parse(raw, norm, norm)
	if err != nil {
		return nil, err
	}
	vars := orderVariables([]string{norm}, o.engine.FreeVariables(e))
	log := o.log.WithFields(logrus.Fields{"path": "expression", "normalized": norm, "variables": vars})

	var shape Shape
	if len(vars) == 0 {
		n, err := o.engine.EvaluateNumeric(e)
		if err != nil {
			return nil, classify(raw, err)
		}
		shape = NumericValue{Value: n}
	} else {
		s, err := o.engine.Simplify(e)
		if err != nil {
			return nil, classify(raw, err)
		}
		shape = SimplifiedExpression{Expr: s, Variables: vars}
	}
	log.WithField("shape", shape.Name()).Debug("classified")
	return o.result(shape, []string{raw}, []string{norm}), nil
}

// build normalizes and parses one equation.
func (o *Orchestrator) build(raw string, index int) (*symbolic.Equation, string, error) {
	norm, err := o.normalize(raw, index)
	if err != nil {
		return nil, "", err
	}
	lhsText, rhsText, _ := strings.Cut(norm, "=")
	lhs, err := o.parse(raw, norm, lhsText)
	if err != nil {
		return nil, "", err
	}
	rhs, err := o.parse(raw, norm, rhsText)
	if err != nil {
		return nil, "", err
	}
	return o.engine.BuildEquation(lhs, rhs), norm, nil
}

func (o *Orchestrator) equation(raw string) (*Result, error) {
	eq, norm, err := o.build(raw, -1)
	if err != nil {
		return nil, err
	}
	vars := orderVariables([]string{norm}, o.engine.EquationVariables(eq))
	log := o.log.WithFields(logrus.Fields{"path": "equation", "normalized": norm, "variables": vars})

	var shape Shape
	switch len(vars) {
	case 0:
		switch o.engine.EvaluateBoolean(eq) {
		case symbolic.True:
			shape = Identity{}
		case symbolic.False:
			shape = Contradiction{}
		default:
			return nil, classify(raw, ErrUnresolved)
		}
	case 1:
		sols, err := o.engine.Solve(eq, vars)
		if err != nil {
			return nil, classify(raw, err)
		}
		values := valuesFor(sols, vars[0])
		if len(values) == 0 {
			shape = NoSolution{Variables: vars}
		} else {
			shape = SingleVariableSolutions{Variable: vars[0], Values: values}
		}
	default:
		sols, err := o.engine.Solve(eq, vars)
		if err != nil {
			return nil, classify(raw, err)
		}
		if mappings := mappingsFor(sols, vars); len(mappings) > 0 {
			shape = MultiVariableSolutionSet{Variables: vars, Mappings: mappings}
		} else {
			shape = Underdetermined{Variables: vars, Equations: 1}
		}
	}
	log.WithField("shape", shape.Name()).Debug("classified")
	return o.result(shape, []string{raw}, []string{norm}), nil
}

func (o *Orchestrator) system(inputs []string) (*Result, error) {
	eqs := make([]*symbolic.Equation, len(inputs))
	norms := make([]string, len(inputs))
	var found []string
	for i, raw := range inputs {
		eq, norm, err := o.build(raw, i)
		if err != nil {
			return nil, err
		}
		eqs[i], norms[i] = eq, norm
		found = append(found, o.engine.EquationVariables(eq)...)
	}
	vars := orderVariables(norms, found)
	label := strings.Join(inputs, "; ")
	log := o.log.WithFields(logrus.Fields{"path": "system", "equations": len(eqs), "variables": vars})

	var shape Shape
	if len(vars) == 0 {
		contradiction, unresolved := false, false
		for _, eq := range eqs {
			switch o.engine.EvaluateBoolean(eq) {
			case symbolic.False:
				contradiction = true
			case symbolic.Unresolved:
				unresolved = true
			}
		}
		switch {
		case contradiction:
			shape = Contradiction{}
		case unresolved:
			return nil, classify(label, ErrUnresolved)
		default:
			shape = Identity{}
		}
	} else {
		sols, err := o.engine.SolveSystem(eqs, vars)
		if err != nil {
			return nil, classify(label, err)
		}
		switch mappings := mappingsFor(sols, vars); {
		case len(mappings) > 0:
			shape = MultiVariableSolutionSet{Variables: vars, Mappings: mappings}
		case len(vars) > len(eqs):
			shape = Underdetermined{Variables: vars, Equations: len(eqs)}
		default:
			shape = NoSolution{Variables: vars}
		}
	}
	log.WithField("shape", shape.Name()).Debug("classified")
	return o.result(shape, inputs, norms), nil
}

func (o *Orchestrator) result(shape Shape, inputs, normalized []string) *Result {
	var display string
	var lines []string
	switch s := shape.(type) {
	case NumericValue:
		display = o.renderer.Render(s.Value)
	case SimplifiedExpression:
		display = o.renderer.Render(s.Expr)
	case SingleVariableSolutions:
		lines = o.renderer.RenderValues(s.Variable, s.Values)
		display = strings.Join(lines, ", ")
	case MultiVariableSolutionSet:
		for _, m := range s.Mappings {
			lines = append(lines, o.renderer.RenderAssignment(m))
		}
		display = strings.Join(lines, "; ")
	case Identity:
		display = "True"
	case Contradiction:
		display = "False"
	case NoSolution:
		display = "No solution"
	case Underdetermined:
		display = "No explicit solution"
	}
	return &Result{
		Shape:       shape,
		Display:     display,
		Lines:       lines,
		Canonical:   o.canonical(shape),
		Explanation: explain(shape, inputs, display, lines),
		Inputs:      inputs,
		Normalized:  normalized,
	}
}

// canonical prints the values of shape with the engine's own printer.
func (o *Orchestrator) canonical(shape Shape) string {
	binding := func(v string, e symbolic.Expr) string { return v + " = " + o.engine.Render(e) }
	switch s := shape.(type) {
	case NumericValue:
		return o.engine.Render(s.Value)
	case SimplifiedExpression:
		return o.engine.Render(s.Expr)
	case SingleVariableSolutions:
		parts := make([]string, len(s.Values))
		for i, v := range s.Values {
			parts[i] = binding(s.Variable, v)
		}
		return strings.Join(parts, ", ")
	case MultiVariableSolutionSet:
		sets := make([]string, len(s.Mappings))
		for i, m := range s.Mappings {
			parts := make([]string, len(m))
			for j, b := range m {
				parts[j] = binding(b.Var, b.Value)
			}
			sets[i] = strings.Join(parts, ", ")
		}
		return strings.Join(sets, "; ")
	}
	return ""
}

// orderVariables orders vars by first appearance in the normalized texts.
// Engine variables that never appear lexically keep their engine order at
// the end.
func orderVariables(normalized []string, vars []string) []string {
	want := make(map[string]bool, len(vars))
	for _, v := range vars {
		want[v] = true
	}
	out := make([]string, 0, len(want))
	for _, id := range notation.Identifiers(strings.Join(normalized, " ")) {
		if want[id] {
			out = append(out, id)
			delete(want, id)
		}
	}
	for _, v := range vars {
		if want[v] {
			out = append(out, v)
			delete(want, v)
		}
	}
	return out
}

// valuesFor reads the values of v from either solution form.
func valuesFor(sols *symbolic.Solutions, v string) []symbolic.Expr {
	if sols.Empty() {
		return nil
	}
	if len(sols.Values) > 0 {
		return sols.Values
	}
	var out []symbolic.Expr
	for _, m := range sols.Mappings {
		if val, ok := m.Lookup(v); ok {
			out = append(out, val)
		}
	}
	return out
}

// mappingsFor returns assignments, wrapping plain values as bindings of
// the first variable.
func mappingsFor(sols *symbolic.Solutions, vars []string) []symbolic.Assignment {
	if sols.Empty() {
		return nil
	}
	if len(sols.Mappings) > 0 {
		return sols.Mappings
	}
	out := make([]symbolic.Assignment, 0, len(sols.Values))
	for _, val := range sols.Values {
		out = append(out, symbolic.Assignment{{Var: vars[0], Value: val}})
	}
	return out
}
