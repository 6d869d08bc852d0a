package symbolic

import "sort"

// ============================================================
// Equation
// ============================================================

type Equation struct{ LHS, RHS Expr }

func Eq(lhs, rhs Expr) *Equation { return &Equation{LHS: lhs, RHS: rhs} }
func (e *Equation) String() string {
	return e.LHS.String() + " = " + e.RHS.String()
}

// Residual returns lhs - rhs in expanded form.
func (e *Equation) Residual() Expr {
	return Expand(AddOf(e.LHS, MulOf(N(-1), e.RHS)))
}

// ============================================================
// Expansion
// ============================================================

func Simplify(e Expr) Expr { return e.Simplify() }
func String(e Expr) string { return e.String() }

func Sub(expr Expr, varName string, value Expr) Expr {
	return expr.Sub(varName, value).Simplify()
}

// Expand distributes products over sums and small integer powers of sums.
func Expand(e Expr) Expr { return expandExpr(e).Simplify() }

func expandExpr(e Expr) Expr {
	switch v := e.(type) {
	case *Mul:
		acc := Expr(N(1))
		for _, f := range v.factors {
			acc = distribute(acc, expandExpr(f))
		}
		return acc
	case *Add:
		newTerms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			newTerms[i] = expandExpr(t)
		}
		return AddOf(newTerms...)
	case *Pow:
		base := expandExpr(v.base)
		if n, ok := v.exp.(*Num); ok && smallPower(n) {
			if _, isAdd := base.(*Add); isAdd {
				acc := Expr(N(1))
				for i := int64(0); i < n.val.Num().Int64(); i++ {
					acc = distribute(acc, base)
				}
				return acc
			}
		}
		return PowOf(base, expandExpr(v.exp))
	}
	return e
}

// distribute multiplies two expanded expressions term by term.
func distribute(a, b Expr) Expr {
	var terms []Expr
	for _, s := range termsOf(a) {
		for _, t := range termsOf(b) {
			p := MulOf(s, t)
			if expandable(p) {
				p = expandExpr(p)
			}
			terms = append(terms, p)
		}
	}
	return AddOf(terms...)
}

// expandable reports whether e still holds a sum that expansion would
// distribute.
func expandable(e Expr) bool {
	switch v := e.(type) {
	case *Add:
		return true
	case *Mul:
		for _, f := range v.factors {
			if expandable(f) {
				return true
			}
		}
	case *Pow:
		_, isAdd := v.base.(*Add)
		n, ok := v.exp.(*Num)
		return isAdd && ok && smallPower(n)
	}
	return false
}

func smallPower(n *Num) bool {
	if n.approx || !n.IsInteger() || !n.val.Num().IsInt64() {
		return false
	}
	k := n.val.Num().Int64()
	return k >= 2 && k <= 10
}

// ============================================================
// Free Symbols
// ============================================================

func FreeSymbols(e Expr) map[string]struct{} {
	result := map[string]struct{}{}
	collectSymbols(e, result)
	return result
}

// SortedSymbols returns the free symbols of e in lexical order.
func SortedSymbols(e Expr) []string {
	set := FreeSymbols(e)
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func collectSymbols(e Expr, out map[string]struct{}) {
	switch v := e.(type) {
	case *Sym:
		out[v.name] = struct{}{}
	case *Add:
		for _, t := range v.terms {
			collectSymbols(t, out)
		}
	case *Mul:
		for _, f := range v.factors {
			collectSymbols(f, out)
		}
	case *Pow:
		collectSymbols(v.base, out)
		collectSymbols(v.exp, out)
	}
}

// Contains reports whether the symbol name occurs in e.
func Contains(e Expr, name string) bool {
	switch v := e.(type) {
	case *Sym:
		return v.name == name
	case *Add:
		for _, t := range v.terms {
			if Contains(t, name) {
				return true
			}
		}
	case *Mul:
		for _, f := range v.factors {
			if Contains(f, name) {
				return true
			}
		}
	case *Pow:
		return Contains(v.base, name) || Contains(v.exp, name)
	}
	return false
}

// ============================================================
// Polynomial utilities
// ============================================================

type PolyCoeffsResult map[int]Expr

// PolyCoeffs returns the coefficients of expr viewed as a polynomial in
// varName. ok is false when expr is not a polynomial in varName, for
// instance when it contains a root or negative power of varName.
func PolyCoeffs(expr Expr, varName string) (coeffs PolyCoeffsResult, degree int, ok bool) {
	coeffs = PolyCoeffsResult{}
	e := Expand(expr)
	terms := []Expr{e}
	if a, isAdd := e.(*Add); isAdd {
		terms = a.terms
	}
	for _, t := range terms {
		coeff, deg, isMono := monomial(t, varName)
		if !isMono {
			return nil, 0, false
		}
		addCoeff(coeffs, deg, coeff)
	}
	for d, c := range coeffs {
		if cn, isNum := c.(*Num); isNum && cn.IsZero() {
			delete(coeffs, d)
			continue
		}
		if d > degree {
			degree = d
		}
	}
	return coeffs, degree, true
}

// Coeff returns the coefficient of degree d, or zero.
func (p PolyCoeffsResult) Coeff(d int) Expr {
	if c, ok := p[d]; ok {
		return c
	}
	return N(0)
}

func monomial(t Expr, v string) (Expr, int, bool) {
	if !Contains(t, v) {
		return t, 0, true
	}
	if d, ok := powerOf(t, v); ok {
		return N(1), d, true
	}
	m, isMul := t.(*Mul)
	if !isMul {
		return nil, 0, false
	}
	deg := 0
	coeffFactors := []Expr{}
	for _, f := range m.factors {
		if !Contains(f, v) {
			coeffFactors = append(coeffFactors, f)
			continue
		}
		d, ok := powerOf(f, v)
		if !ok {
			return nil, 0, false
		}
		deg += d
	}
	return MulOf(coeffFactors...), deg, true
}

// powerOf matches v or v**n for a positive integer n.
func powerOf(e Expr, v string) (int, bool) {
	switch t := e.(type) {
	case *Sym:
		return 1, t.name == v
	case *Pow:
		sym, ok := t.base.(*Sym)
		if !ok || sym.name != v {
			return 0, false
		}
		n, ok := t.exp.(*Num)
		if !ok || n.approx || !n.IsInteger() || !n.IsPositive() || !n.val.Num().IsInt64() {
			return 0, false
		}
		return int(n.val.Num().Int64()), true
	}
	return 0, false
}

func addCoeff(out PolyCoeffsResult, deg int, val Expr) {
	if existing, ok := out[deg]; ok {
		out[deg] = AddOf(existing, val)
	} else {
		out[deg] = val.Simplify()
	}
}
