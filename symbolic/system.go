package symbolic

import (
	"fmt"
	"math/big"
)

// ============================================================
// Systems
// ============================================================

const maxSystemSolutions = 64

// Binding is one variable's value within a solution.
type Binding struct {
	Var   string
	Value Expr
}

// Assignment is an ordered set of bindings; it need not bind every
// variable of the system (free parameters stay unbound).
type Assignment []Binding

// Lookup returns the value bound to name.
func (a Assignment) Lookup(name string) (Expr, bool) {
	for _, b := range a {
		if b.Var == name {
			return b.Value, true
		}
	}
	return nil, false
}

// SolveSystem solves the residuals (each = 0) jointly for vars. Linear
// systems are reduced exactly; anything else falls back to substitution,
// one equation and variable at a time.
func SolveSystem(residuals []Expr, vars []string) ([]Assignment, error) {
	expanded := make([]Expr, len(residuals))
	for i, r := range residuals {
		expanded[i] = Expand(r)
	}
	if rows, ok := linearRows(expanded, vars); ok {
		return solveLinear(rows, vars), nil
	}
	sols, err := substitute(expanded, vars, Assignment{}, 0)
	if err != nil {
		return nil, err
	}
	return finishAssignments(sols, vars), nil
}

// ============================================================
// Linear systems
// ============================================================

type linearRow struct {
	coeffs []*big.Rat
	rhs    *big.Rat
}

// linearRows reads every residual as sum(c_i*v_i) + k with rational c_i
// and k. ok is false as soon as a term is not of that form.
func linearRows(residuals []Expr, vars []string) ([]linearRow, bool) {
	index := map[string]int{}
	for i, v := range vars {
		index[v] = i
	}
	rows := make([]linearRow, 0, len(residuals))
	for _, r := range residuals {
		row := linearRow{coeffs: make([]*big.Rat, len(vars)), rhs: new(big.Rat)}
		for i := range row.coeffs {
			row.coeffs[i] = new(big.Rat)
		}
		for _, t := range termsOf(r) {
			coeff, rest := extractCoefficient(t)
			if n, ok := t.(*Num); ok {
				row.rhs.Sub(row.rhs, n.val)
				continue
			}
			sym, ok := rest.(*Sym)
			if !ok {
				return nil, false
			}
			col, ok := index[sym.name]
			if !ok {
				return nil, false
			}
			row.coeffs[col].Add(row.coeffs[col], coeff.val)
		}
		rows = append(rows, row)
	}
	return rows, true
}

// solveLinear runs Gauss-Jordan elimination over the rationals. An
// inconsistent system yields no assignment; a rank-deficient one binds the
// pivot variables in terms of the free ones.
func solveLinear(rows []linearRow, vars []string) []Assignment {
	n := len(vars)
	m := make([][]*big.Rat, len(rows))
	for i, r := range rows {
		m[i] = append(append([]*big.Rat(nil), r.coeffs...), r.rhs)
	}
	pivots := make([]int, 0, n)
	rank := 0
	for col := 0; col < n && rank < len(m); col++ {
		p := -1
		for i := rank; i < len(m); i++ {
			if m[i][col].Sign() != 0 {
				p = i
				break
			}
		}
		if p < 0 {
			continue
		}
		m[rank], m[p] = m[p], m[rank]
		inv := new(big.Rat).Inv(m[rank][col])
		for j := col; j <= n; j++ {
			m[rank][j] = new(big.Rat).Mul(m[rank][j], inv)
		}
		for i := range m {
			if i == rank || m[i][col].Sign() == 0 {
				continue
			}
			f := new(big.Rat).Set(m[i][col])
			for j := col; j <= n; j++ {
				m[i][j] = new(big.Rat).Sub(m[i][j], new(big.Rat).Mul(f, m[rank][j]))
			}
		}
		pivots = append(pivots, col)
		rank++
	}
	for i := rank; i < len(m); i++ {
		if m[i][n].Sign() != 0 {
			return nil
		}
	}
	free := map[int]bool{}
	for col := 0; col < n; col++ {
		free[col] = true
	}
	for _, col := range pivots {
		delete(free, col)
	}
	asg := make(Assignment, 0, rank)
	for i, col := range pivots {
		terms := []Expr{NRat(m[i][n])}
		for j := col + 1; j < n; j++ {
			if free[j] && m[i][j].Sign() != 0 {
				terms = append(terms, MulOf(NRat(new(big.Rat).Neg(m[i][j])), S(vars[j])))
			}
		}
		asg = append(asg, Binding{Var: vars[col], Value: AddOf(terms...)})
	}
	return []Assignment{asg}
}

// ============================================================
// Substitution
// ============================================================

// substitute solves one residual for one of the remaining variables,
// substitutes each solution into the rest and recurses. Pairs where the
// residual is linear in the variable are tried first, so x - y = 1 is
// used to eliminate x before x**2 + y**2 = 25 is touched.
func substitute(residuals []Expr, vars []string, acc Assignment, depth int) ([]Assignment, error) {
	if depth > len(vars)+1 {
		return nil, fmt.Errorf("%w: substitution did not converge", ErrUnsupported)
	}
	live := residuals[:0:0]
	for _, r := range residuals {
		if len(FreeSymbols(r)) > 0 {
			live = append(live, r)
			continue
		}
		n, ok := r.Eval()
		if !ok || !n.IsZero() && !(n.approx && nearZero(n)) {
			return nil, nil
		}
	}
	if len(live) == 0 {
		return []Assignment{acc}, nil
	}
	var lastErr error
	for _, p := range eliminationOrder(live, vars, acc) {
		values, err := SolveFor(live[p.eq], p.v)
		if err != nil {
			lastErr = err
			continue
		}
		rest := make([]Expr, 0, len(live)-1)
		rest = append(rest, live[:p.eq]...)
		rest = append(rest, live[p.eq+1:]...)
		var out []Assignment
		for _, val := range values {
			next := make([]Expr, len(rest))
			for k, o := range rest {
				next[k] = Expand(Sub(o, p.v, val))
			}
			bound := append(append(Assignment(nil), acc...), Binding{Var: p.v, Value: val})
			sub, err := substitute(next, vars, bound, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
			if len(out) > maxSystemSolutions {
				return nil, fmt.Errorf("%w: more than %d solutions", ErrUnsupported, maxSystemSolutions)
			}
		}
		return out, nil
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("%w: no equation can be solved for the remaining variables", ErrUnsupported)
}

type elimination struct {
	eq int
	v  string
}

// eliminationOrder lists every (residual, unbound variable) pair, linear
// pairs first and otherwise in residual then variable order.
func eliminationOrder(live []Expr, vars []string, acc Assignment) []elimination {
	var linear, rest []elimination
	for i, r := range live {
		for _, v := range vars {
			if _, bound := acc.Lookup(v); bound || !Contains(r, v) {
				continue
			}
			if _, deg, ok := PolyCoeffs(r, v); ok && deg == 1 {
				linear = append(linear, elimination{eq: i, v: v})
				continue
			}
			rest = append(rest, elimination{eq: i, v: v})
		}
	}
	return append(linear, rest...)
}

// finishAssignments resolves bindings made early against values found
// later (y = 5 - x, then x = 3) and orders each assignment by vars.
func finishAssignments(sols []Assignment, vars []string) []Assignment {
	out := make([]Assignment, 0, len(sols))
	seen := map[string]bool{}
	for _, s := range sols {
		resolved := make(Assignment, len(s))
		copy(resolved, s)
		for i := len(resolved) - 1; i >= 0; i-- {
			for j := i + 1; j < len(resolved); j++ {
				resolved[i].Value = Expand(Sub(resolved[i].Value, resolved[j].Var, resolved[j].Value))
			}
		}
		ordered := make(Assignment, 0, len(resolved))
		key := ""
		for _, v := range vars {
			if val, ok := resolved.Lookup(v); ok {
				ordered = append(ordered, Binding{Var: v, Value: val})
				key += v + "=" + val.String() + ";"
			}
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, ordered)
	}
	return out
}

func nearZero(n *Num) bool {
	f := n.Float64()
	return f < 1e-9 && f > -1e-9
}
