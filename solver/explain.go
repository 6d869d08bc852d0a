package solver

import (
	"fmt"
	"strings"

	"github.com/njchilds90/gosolve/symbolic"
)

// explain builds the multi-line explanation for a result. lines are the
// rendered solutions.
func explain(shape Shape, inputs []string, display string, lines []string) string {
	var sb strings.Builder
	switch s := shape.(type) {
	case NumericValue:
		fmt.Fprintf(&sb, "Result of the calculation: %s = %s\n\n", inputs[0], display)
		sb.WriteString("This is a basic arithmetic operation performed.")
		if !s.Value.Approx() && !s.Value.IsInteger() {
			fmt.Fprintf(&sb, "\nDecimal approximation: %s", symbolic.NFloat(s.Value.Float64()))
		}
	case SimplifiedExpression:
		fmt.Fprintf(&sb, "Simplified form of the expression: %s = %s\n\n", inputs[0], display)
		fmt.Fprintf(&sb, "The expression depends on %s, so it was simplified instead of evaluated.",
			strings.Join(s.Variables, ", "))
	case SingleVariableSolutions:
		intro(&sb, inputs)
		sb.WriteString("The solutions for the equation are:\n")
		writeLines(&sb, lines)
	case MultiVariableSolutionSet:
		intro(&sb, inputs)
		if len(inputs) > 1 {
			sb.WriteString("The solutions for the system are:\n")
		} else {
			sb.WriteString("The solutions for the equation are:\n")
		}
		writeLines(&sb, lines)
	case Identity:
		intro(&sb, inputs)
		sb.WriteString("Both sides are always equal, so every value is a solution.")
	case Contradiction:
		intro(&sb, inputs)
		sb.WriteString("The two sides are never equal, so there is no solution.")
	case NoSolution:
		intro(&sb, inputs)
		sb.WriteString("No explicit solutions found or the equation has no solution.")
	case Underdetermined:
		intro(&sb, inputs)
		fmt.Fprintf(&sb, "No explicit solutions found for %s.", strings.Join(s.Variables, ", "))
		if len(s.Variables) > s.Equations {
			fmt.Fprintf(&sb, "\nThere are %d unknowns but only %d equation(s).", len(s.Variables), s.Equations)
		}
	default:
		panic(fmt.Sprintf("solver: unhandled shape %T", shape))
	}
	return sb.String()
}

func intro(sb *strings.Builder, inputs []string) {
	if len(inputs) == 1 {
		fmt.Fprintf(sb, "You entered the equation: %s\n\n", inputs[0])
		return
	}
	sb.WriteString("You entered the system:\n")
	writeLines(sb, inputs)
	sb.WriteString("\n")
}

func writeLines(sb *strings.Builder, lines []string) {
	for _, l := range lines {
		fmt.Fprintf(sb, "  %s\n", l)
	}
}
