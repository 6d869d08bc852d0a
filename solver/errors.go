package solver

import (
	"errors"
	"fmt"

	"github.com/njchilds90/gosolve/notation"
	"github.com/njchilds90/gosolve/symbolic"
)

// Guidance ends every error explanation.
const Guidance = "Please try entering basic arithmetic or an equation in the format 'x + 5 = 10' or 'x**2 - 4 = 0'."

var (
	ErrEmptyInput     = errors.New("no expression provided")
	ErrNoEquations    = errors.New("no equations provided")
	ErrMultipleEquals = errors.New("more than one '=' sign")
	ErrMissingEquals  = errors.New("equation has no '=' sign")
	ErrUnresolved     = errors.New("truth value could not be decided")
)

// InputError is a request the engine is never asked to handle.
type InputError struct {
	Input string
	// Index is the position of the offending element in a system, or -1.
	Index int
	Err   error
}

func (e *InputError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("invalid input: equation %d: %v", e.Index+1, e.Err)
	}
	return fmt.Sprintf("invalid input: %v", e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

func (e *InputError) Message() string {
	switch {
	case errors.Is(e.Err, ErrEmptyInput):
		return "No expression provided."
	case errors.Is(e.Err, ErrNoEquations):
		return "No equations provided."
	}
	return "Invalid input."
}

func (e *InputError) Explanation() string {
	switch {
	case errors.Is(e.Err, ErrEmptyInput):
		return "Please enter an expression to solve."
	case errors.Is(e.Err, ErrNoEquations):
		return "Please enter at least one equation."
	case errors.Is(e.Err, ErrMultipleEquals):
		return fmt.Sprintf("The input %q contains more than one '=' sign.\n%s", e.Input, Guidance)
	case errors.Is(e.Err, ErrMissingEquals):
		return fmt.Sprintf("Equation %d (%q) has no '=' sign. Every element of a system must be an equation.\n%s",
			e.Index+1, e.Input, Guidance)
	case errors.Is(e.Err, notation.ErrNestedRoot):
		return "Nested root notation such as (2)#((3)#x) is not supported. " +
			"Write the inner root as a power, for example (2)#(x**(1/3)).\n" + Guidance
	case errors.Is(e.Err, notation.ErrDecimalNotSupported):
		return "Decimal points are not supported. Write 3.5 as 7/2.\n" + Guidance
	}
	return fmt.Sprintf("Error details: %v\n%s", e.Err, Guidance)
}

// ParseError is normalized text the engine could not parse.
type ParseError struct {
	Input      string
	Normalized string
	Err        error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %v", e.Normalized, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Message() string { return "Could not solve this expression/equation." }

func (e *ParseError) Explanation() string {
	return fmt.Sprintf("Error parsing equation: %v\n%s", e.Err, Guidance)
}

// Kind classifies a SolveError.
type Kind int

const (
	// Unsupported is valid input the engine cannot handle.
	Unsupported Kind = iota
	// Undefined is a division by zero or a result that is not a finite real.
	Undefined
	// Timeout is a solve that outlived its context.
	Timeout
	// Internal is an engine panic or an unexpected engine failure.
	Internal
)

func (k Kind) String() string {
	switch k {
	case Unsupported:
		return "unsupported"
	case Undefined:
		return "undefined"
	case Timeout:
		return "timeout"
	}
	return "internal"
}

// Kinds lists every Kind, for metrics pre-registration.
var Kinds = []Kind{Unsupported, Undefined, Timeout, Internal}

// SolveError is an engine failure on input that parsed.
type SolveError struct {
	Kind  Kind
	Input string
	Err   error
}

func (e *SolveError) Error() string {
	return fmt.Sprintf("solve %q: %s: %v", e.Input, e.Kind, e.Err)
}

func (e *SolveError) Unwrap() error { return e.Err }

func (e *SolveError) Message() string {
	switch e.Kind {
	case Undefined:
		return "The expression is undefined."
	case Timeout:
		return "The solver timed out."
	case Internal:
		return "An unexpected error occurred."
	}
	return "Could not solve this expression/equation."
}

func (e *SolveError) Explanation() string {
	switch e.Kind {
	case Undefined:
		if errors.Is(e.Err, symbolic.ErrDivisionByZero) {
			return fmt.Sprintf("The input %q divides by zero.\n%s", e.Input, Guidance)
		}
		return fmt.Sprintf("The input %q has no finite real value.\n%s", e.Input, Guidance)
	case Timeout:
		return "Solving did not finish in time.\nIt might be due to a highly complex expression."
	case Internal:
		return fmt.Sprintf("Error details: %v\nIt might be due to incorrect syntax or a highly complex expression.", e.Err)
	}
	return fmt.Sprintf("Error solving: %v\n%s", e.Err, Guidance)
}

// classify maps an engine error to a SolveError.
func classify(input string, err error) *SolveError {
	kind := Internal
	switch {
	case errors.Is(err, symbolic.ErrDivisionByZero), errors.Is(err, symbolic.ErrNotFinite):
		kind = Undefined
	case errors.Is(err, symbolic.ErrUnsupported), errors.Is(err, ErrUnresolved):
		kind = Unsupported
	}
	return &SolveError{Kind: kind, Input: input, Err: err}
}
