package symbolic

import "strings"

// ============================================================
// Printing
// ============================================================

// Printer renders expressions in the engine grammar. The zero value prints
// the default form. Pow, when set, is offered every power node first and
// may claim it by returning true; print renders subterms with the same
// printer.
type Printer struct {
	Pow func(p *Pow, print func(Expr) string) (string, bool)
}

var defaultPrinter = &Printer{}

// Print renders e.
func (pr *Printer) Print(e Expr) string {
	switch v := e.(type) {
	case *Num:
		return v.String()
	case *Sym:
		return v.name
	case *Add:
		return pr.add(v)
	case *Mul:
		return pr.mul(v)
	case *Pow:
		return pr.pow(v)
	}
	return e.String()
}

func (pr *Printer) add(a *Add) string {
	if len(a.terms) == 0 {
		return "0"
	}
	var sb strings.Builder
	for i, t := range a.terms {
		neg, abs := splitSign(t)
		s := pr.Print(abs)
		switch {
		case i == 0 && neg:
			sb.WriteString("-" + s)
		case i == 0:
			sb.WriteString(s)
		case neg:
			sb.WriteString(" - " + s)
		default:
			sb.WriteString(" + " + s)
		}
	}
	return sb.String()
}

func (pr *Printer) mul(m *Mul) string {
	if len(m.factors) == 0 {
		return "1"
	}
	coeff := N(1)
	var num, den []Expr
	for _, f := range m.factors {
		switch v := f.(type) {
		case *Num:
			coeff = numMul(coeff, v)
		case *Pow:
			if en, ok := v.exp.(*Num); ok && en.IsNegative() {
				den = append(den, PowOf(v.base, numNeg(en)))
				continue
			}
			num = append(num, f)
		default:
			num = append(num, f)
		}
	}
	sign := ""
	if coeff.IsNegative() {
		sign = "-"
		coeff = numNeg(coeff)
	}
	var numParts, denParts []string
	if coeff.approx || coeff.IsInteger() {
		if !coeff.IsOne() || len(num) == 0 {
			numParts = append(numParts, coeff.String())
		}
	} else {
		p, q := coeff.val.Num(), coeff.val.Denom()
		if !p.IsInt64() || p.Int64() != 1 || len(num) == 0 {
			numParts = append(numParts, p.String())
		}
		denParts = append(denParts, q.String())
	}
	for _, f := range num {
		numParts = append(numParts, pr.factor(f))
	}
	for _, f := range den {
		denParts = append(denParts, pr.factor(f))
	}
	if len(numParts) == 0 {
		numParts = append(numParts, "1")
	}
	out := sign + strings.Join(numParts, "*")
	switch len(denParts) {
	case 0:
	case 1:
		out += "/" + denParts[0]
	default:
		out += "/(" + strings.Join(denParts, "*") + ")"
	}
	return out
}

func (pr *Printer) pow(p *Pow) string {
	if pr.Pow != nil {
		if s, ok := pr.Pow(p, pr.Print); ok {
			return s
		}
	}
	if en, ok := p.exp.(*Num); ok && en.IsNegative() {
		return "1/" + pr.factor(PowOf(p.base, numNeg(en)))
	}
	base := pr.Print(p.base)
	if needsBaseParens(p.base) {
		base = "(" + base + ")"
	}
	exp := pr.Print(p.exp)
	if !atomicExponent(p.exp) {
		exp = "(" + exp + ")"
	}
	return base + "**" + exp
}

// factor prints an operand of a product or quotient.
func (pr *Printer) factor(e Expr) string {
	s := pr.Print(e)
	switch v := e.(type) {
	case *Add, *Mul:
		return "(" + s + ")"
	case *Num:
		if v.IsNegative() || (!v.IsInteger() && !v.approx) {
			return "(" + s + ")"
		}
	}
	return s
}

func needsBaseParens(e Expr) bool {
	switch v := e.(type) {
	case *Add, *Mul, *Pow:
		return true
	case *Num:
		return v.IsNegative() || !v.IsInteger()
	}
	return false
}

func atomicExponent(e Expr) bool {
	switch v := e.(type) {
	case *Sym:
		return true
	case *Num:
		return !v.approx && v.IsInteger() && !v.IsNegative()
	}
	return false
}

// splitSign reports whether t prints with a leading minus and returns the
// term with that sign removed.
func splitSign(t Expr) (bool, Expr) {
	switch v := t.(type) {
	case *Num:
		if v.IsNegative() {
			return true, numNeg(v)
		}
	case *Mul:
		coeff, ok := v.factors[0].(*Num)
		if !ok || !coeff.IsNegative() {
			return false, t
		}
		pos := numNeg(coeff)
		rest := v.factors[1:]
		if pos.IsOne() {
			if len(rest) == 1 {
				return true, rest[0]
			}
			return true, &Mul{factors: rest}
		}
		return true, &Mul{factors: append([]Expr{pos}, rest...)}
	}
	return false, t
}
