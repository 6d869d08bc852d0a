package symbolic

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"sort"
)

// ============================================================
// Solvers
// ============================================================

const (
	maxSolveDepth     = 8
	maxRationalCoeff  = 1_000_000 // rational root search is skipped beyond this
	newtonStarts      = 200
	newtonMaxIter     = 100
	newtonTol         = 1e-12
	verifyTol         = 1e-9
	substituteSymbol  = "_u"
	maxRootSubstitute = 12
)

// SolveFor returns the real solutions of residual = 0 for the variable v,
// with every candidate checked by substitution. Solutions that still
// contain other symbols are kept unverified.
func SolveFor(residual Expr, v string) ([]Expr, error) {
	r := Expand(residual)
	if !Contains(r, v) {
		return nil, nil
	}
	cands, err := solveExpr(r, v, 0)
	if err != nil {
		return nil, err
	}
	return verify(r, v, cands), nil
}

func solveExpr(r Expr, v string, depth int) ([]Expr, error) {
	if depth > maxSolveDepth {
		return nil, fmt.Errorf("%w: equation nests too deeply in %s", ErrUnsupported, v)
	}
	r = clearDenominators(Expand(r), v)
	if !Contains(r, v) {
		return nil, nil
	}
	if coeffs, deg, ok := PolyCoeffs(r, v); ok {
		return solvePolynomial(coeffs, deg)
	}
	if cands, ok, err := isolate(r, v, depth); ok || err != nil {
		return cands, err
	}
	if cands, ok, err := substituteRoots(r, v, depth); ok || err != nil {
		return cands, err
	}
	return nil, fmt.Errorf("%w: cannot isolate %s in %s", ErrUnsupported, v, r)
}

// clearDenominators multiplies r by every v-dependent denominator so
// 1/x + x = 2 becomes a polynomial. Candidates that zero a denominator are
// dropped later by verification against the original residual.
func clearDenominators(r Expr, v string) Expr {
	dens := map[string]Expr{}
	maxExp := map[string]int64{}
	order := []string{}
	visit := func(f Expr) {
		p, ok := f.(*Pow)
		if !ok || !Contains(p.base, v) {
			return
		}
		en, ok := p.exp.(*Num)
		if !ok || en.approx || !en.IsInteger() || !en.IsNegative() || !en.val.Num().IsInt64() {
			return
		}
		key := p.base.String()
		k := -en.val.Num().Int64()
		if _, seen := dens[key]; !seen {
			order = append(order, key)
			dens[key] = p.base
		}
		if k > maxExp[key] {
			maxExp[key] = k
		}
	}
	for _, t := range termsOf(r) {
		if m, ok := t.(*Mul); ok {
			for _, f := range m.factors {
				visit(f)
			}
			continue
		}
		visit(t)
	}
	if len(order) == 0 {
		return r
	}
	factors := []Expr{r}
	for _, key := range order {
		factors = append(factors, PowOf(dens[key], N(maxExp[key])))
	}
	return Expand(MulOf(factors...))
}

func termsOf(e Expr) []Expr {
	if a, ok := e.(*Add); ok {
		return a.terms
	}
	return []Expr{e}
}

// ============================================================
// Polynomials
// ============================================================

func solvePolynomial(c PolyCoeffsResult, deg int) ([]Expr, error) {
	switch deg {
	case 0:
		return nil, nil
	case 1:
		return []Expr{Expand(MulOf(N(-1), c.Coeff(0), PowOf(c.Coeff(1), N(-1))))}, nil
	case 2:
		return solveQuadratic(c.Coeff(2), c.Coeff(1), c.Coeff(0)), nil
	}
	nums := make([]*Num, deg+1)
	for d := 0; d <= deg; d++ {
		n, ok := c.Coeff(d).(*Num)
		if !ok {
			return nil, fmt.Errorf("%w: degree %d polynomial with symbolic coefficients", ErrUnsupported, deg)
		}
		nums[d] = n
	}
	return solveNumericPolynomial(nums), nil
}

// solveQuadratic solves a*x**2 + b*x + c = 0. Numeric coefficients give an
// exact radical form when the discriminant is exact and drop complex roots;
// symbolic coefficients use the general formula.
func solveQuadratic(a, b, c Expr) []Expr {
	an, aok := a.(*Num)
	bn, bok := b.(*Num)
	cn, cok := c.(*Num)
	if !aok || !bok || !cok {
		disc := Expand(AddOf(PowOf(b, N(2)), MulOf(N(-4), a, c)))
		denom := PowOf(MulOf(N(2), a), N(-1))
		if dn, ok := disc.(*Num); ok && dn.IsZero() {
			return []Expr{MulOf(N(-1), b, denom)}
		}
		sq := PowOf(disc, F(1, 2))
		return []Expr{
			Expand(MulOf(AddOf(MulOf(N(-1), b), MulOf(N(-1), sq)), denom)),
			Expand(MulOf(AddOf(MulOf(N(-1), b), sq), denom)),
		}
	}
	disc := numSub(numMul(bn, bn), numMul(N(4), numMul(an, cn)))
	twoA := numMul(N(2), an)
	if disc.IsNegative() {
		return nil
	}
	if disc.IsZero() {
		return []Expr{numDiv(numNeg(bn), twoA)}
	}
	sq := PowOf(disc, F(1, 2))
	inv := numRecip(twoA)
	return []Expr{
		Expand(MulOf(AddOf(numNeg(bn), MulOf(N(-1), sq)), inv)),
		Expand(MulOf(AddOf(numNeg(bn), sq), inv)),
	}
}

// solveNumericPolynomial finds the real roots of sum(c[i]*x**i). Binomials
// get exact radicals, rational roots are found exactly and deflated, and
// whatever remains is searched numerically.
func solveNumericPolynomial(c []*Num) []Expr {
	n := len(c) - 1
	if binomial(c) {
		return binomialRoots(numNeg(numDiv(c[0], c[n])), n)
	}
	approx := false
	rats := make([]*big.Rat, len(c))
	for i, x := range c {
		rats[i] = x.val
		approx = approx || x.approx
	}
	var roots []Expr
	rest := rats
	if !approx {
		var exact []*big.Rat
		exact, rest = rationalRoots(rats)
		for _, r := range exact {
			roots = append(roots, NRat(r))
		}
	}
	switch len(rest) - 1 {
	case 0:
	case 1:
		roots = append(roots, &Num{val: new(big.Rat).Neg(new(big.Rat).Quo(rest[0], rest[1])), approx: approx})
	case 2:
		roots = append(roots, solveQuadratic(
			&Num{val: rest[2], approx: approx},
			&Num{val: rest[1], approx: approx},
			&Num{val: rest[0], approx: approx})...)
	default:
		fs := make([]float64, len(rest))
		for i, r := range rest {
			fs[i], _ = r.Float64()
		}
		for _, r := range newtonRoots(fs) {
			roots = append(roots, NFloat(r))
		}
	}
	return roots
}

func binomial(c []*Num) bool {
	n := len(c) - 1
	if c[0].IsZero() {
		return false
	}
	for i := 1; i < n; i++ {
		if !c[i].IsZero() {
			return false
		}
	}
	return true
}

// binomialRoots solves x**n = t for real x.
func binomialRoots(t *Num, n int) []Expr {
	inv := F(1, int64(n))
	if t.IsZero() {
		return []Expr{N(0)}
	}
	if n%2 == 0 {
		if t.IsNegative() {
			return nil
		}
		r := PowOf(t, inv)
		return []Expr{MulOf(N(-1), r), r}
	}
	if t.IsNegative() {
		return []Expr{MulOf(N(-1), PowOf(numNeg(t), inv))}
	}
	return []Expr{PowOf(t, inv)}
}

// rationalRoots extracts the rational roots of an exact polynomial
// (coefficients in ascending degree) and returns the deflated remainder.
func rationalRoots(c []*big.Rat) (roots []*big.Rat, rest []*big.Rat) {
	rest = append([]*big.Rat(nil), c...)
	for len(rest) > 1 && rest[0].Sign() == 0 {
		roots = append(roots, new(big.Rat))
		rest = rest[1:]
	}
	if len(rest) <= 2 {
		return roots, rest
	}
	ints := integerCoeffs(rest)
	a0, an := ints[0], ints[len(ints)-1]
	if !a0.IsInt64() || !an.IsInt64() || abs64(a0.Int64()) > maxRationalCoeff || abs64(an.Int64()) > maxRationalCoeff {
		return roots, rest
	}
	for _, p := range divisors(abs64(a0.Int64())) {
		for _, q := range divisors(abs64(an.Int64())) {
			for _, sign := range []int64{1, -1} {
				cand := big.NewRat(sign*p, q)
				for len(rest) > 2 && hornerRat(rest, cand).Sign() == 0 {
					roots = append(roots, cand)
					rest = deflate(rest, cand)
				}
			}
		}
	}
	return roots, rest
}

func integerCoeffs(c []*big.Rat) []*big.Int {
	lcm := big.NewInt(1)
	for _, r := range c {
		d := r.Denom()
		g := new(big.Int).GCD(nil, nil, lcm, d)
		lcm.Mul(lcm, new(big.Int).Quo(d, g))
	}
	out := make([]*big.Int, len(c))
	for i, r := range c {
		v := new(big.Rat).Mul(r, new(big.Rat).SetInt(lcm))
		out[i] = new(big.Int).Set(v.Num())
	}
	return out
}

func divisors(n int64) []int64 {
	var small, large []int64
	for i := int64(1); i*i <= n; i++ {
		if n%i == 0 {
			small = append(small, i)
			if i != n/i {
				large = append(large, n/i)
			}
		}
	}
	for i := len(large) - 1; i >= 0; i-- {
		small = append(small, large[i])
	}
	return small
}

func abs64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

func hornerRat(c []*big.Rat, x *big.Rat) *big.Rat {
	acc := new(big.Rat)
	for i := len(c) - 1; i >= 0; i-- {
		acc.Mul(acc, x)
		acc.Add(acc, c[i])
	}
	return acc
}

// deflate divides the polynomial by (x - r) using synthetic division.
func deflate(c []*big.Rat, r *big.Rat) []*big.Rat {
	n := len(c) - 1
	out := make([]*big.Rat, n)
	carry := new(big.Rat)
	for i := n; i >= 1; i-- {
		carry = new(big.Rat).Add(c[i], new(big.Rat).Mul(carry, r))
		out[i-1] = carry
	}
	return out
}

// newtonRoots finds real roots of a float polynomial by Newton iteration
// from evenly spaced starting points inside the Cauchy bound.
func newtonRoots(c []float64) []float64 {
	n := len(c) - 1
	bound := 0.0
	for i := 0; i < n; i++ {
		bound = math.Max(bound, math.Abs(c[i]/c[n]))
	}
	bound++
	f := func(x float64) (fx, dfx float64) {
		for i := n; i >= 0; i-- {
			dfx = dfx*x + fx
			fx = fx*x + c[i]
		}
		return fx, dfx
	}
	var roots []float64
	for i := 0; i <= newtonStarts; i++ {
		x := -bound + 2*bound*float64(i)/newtonStarts
		for iter := 0; iter < newtonMaxIter; iter++ {
			fx, dfx := f(x)
			scale := 1 + math.Abs(x)
			if math.Abs(fx) < newtonTol*math.Pow(scale, float64(n)) {
				dup := false
				for _, r := range roots {
					if math.Abs(r-x) < 1e-7*scale {
						dup = true
						break
					}
				}
				if !dup {
					roots = append(roots, x)
				}
				break
			}
			if math.Abs(dfx) < 1e-15 {
				break
			}
			x -= fx / dfx
			if math.Abs(x) > bound*10 {
				break
			}
		}
	}
	sort.Float64s(roots)
	return roots
}

// ============================================================
// Isolation
// ============================================================

// isolate handles residuals with a single term depending on v, of the form
// coeff*g(v) + rest, by inverting g step by step. ok is false when the shape
// does not apply.
func isolate(r Expr, v string, depth int) ([]Expr, bool, error) {
	var dep Expr
	var indep []Expr
	for _, t := range termsOf(r) {
		if !Contains(t, v) {
			indep = append(indep, t)
			continue
		}
		if dep != nil {
			return nil, false, nil
		}
		dep = t
	}
	coeff := []Expr{}
	g := dep
	if m, ok := dep.(*Mul); ok {
		var inner []Expr
		for _, f := range m.factors {
			if Contains(f, v) {
				inner = append(inner, f)
			} else {
				coeff = append(coeff, f)
			}
		}
		if len(inner) != 1 {
			return nil, false, nil
		}
		g = inner[0]
	}
	target := MulOf(N(-1), AddOf(indep...), PowOf(MulOf(coeff...), N(-1)))
	if len(indep) == 0 {
		target = N(0)
	}

	p, ok := g.(*Pow)
	if !ok {
		return nil, false, nil
	}
	if Contains(p.exp, v) {
		return nil, true, fmt.Errorf("%w: %s appears in an exponent", ErrUnsupported, v)
	}
	e, ok := p.exp.(*Num)
	if !ok {
		return nil, true, fmt.Errorf("%w: symbolic exponent %s", ErrUnsupported, p.exp)
	}
	var out []Expr
	for _, h := range invertPower(target, e) {
		sols, err := solveExpr(AddOf(p.base, MulOf(N(-1), h)), v, depth+1)
		if err != nil {
			return nil, true, err
		}
		out = append(out, sols...)
	}
	return out, true, nil
}

// invertPower lists the candidates h with h**e = t. Numeric candidates are
// over-generated and the verification pass keeps the real ones.
func invertPower(t Expr, e *Num) []Expr {
	inv := numRecip(e)
	evenNum := !e.approx && e.val.Num().Bit(0) == 0
	tn, numeric := t.(*Num)
	if !numeric {
		h := PowOf(t, inv)
		if evenNum {
			return []Expr{MulOf(N(-1), h), h}
		}
		return []Expr{h}
	}
	if tn.IsZero() {
		if e.IsNegative() {
			return nil
		}
		return []Expr{N(0)}
	}
	var out []Expr
	for _, base := range []*Num{tn, numNeg(tn)} {
		h := PowOf(base, inv)
		if _, ok := h.Eval(); !ok {
			continue
		}
		out = append(out, h, MulOf(N(-1), h))
	}
	return out
}

// substituteRoots handles residuals where v only appears as rational powers,
// such as x + x**(1/2) - 6, by substituting v = u**l for the common
// denominator l and solving the resulting polynomial in u.
func substituteRoots(r Expr, v string, depth int) ([]Expr, bool, error) {
	l, ok := rootDenominator(r, v)
	if !ok || l <= 1 || l > maxRootSubstitute {
		return nil, false, nil
	}
	u := S(substituteSymbol + fmt.Sprint(depth))
	sub := Expand(rootSubstitute(r, v, u, l))
	us, err := solveExpr(sub, u.name, depth+1)
	if err != nil {
		if errors.Is(err, ErrUnsupported) {
			return nil, false, nil
		}
		return nil, true, err
	}
	out := make([]Expr, 0, len(us))
	for _, uv := range us {
		if un, ok := uv.Eval(); ok && l%2 == 0 && un.IsNegative() {
			continue
		}
		out = append(out, PowOf(uv, N(l)))
	}
	return out, true, nil
}

// rootSubstitute rewrites v**(p/l) as u**p, taking u >= 0. Only the
// shapes accepted by rootDenominator are visited.
func rootSubstitute(e Expr, v string, u *Sym, l int64) Expr {
	switch t := e.(type) {
	case *Sym:
		if t.name == v {
			return PowOf(u, N(l))
		}
	case *Pow:
		if sym, ok := t.base.(*Sym); ok && sym.name == v {
			return PowOf(u, numMul(t.exp.(*Num), N(l)))
		}
	case *Add:
		terms := make([]Expr, len(t.terms))
		for i, x := range t.terms {
			terms[i] = rootSubstitute(x, v, u, l)
		}
		return AddOf(terms...)
	case *Mul:
		factors := make([]Expr, len(t.factors))
		for i, x := range t.factors {
			factors[i] = rootSubstitute(x, v, u, l)
		}
		return MulOf(factors...)
	}
	return e
}

// rootDenominator returns the lcm of the exponent denominators of v in r.
// ok is false when v appears in anything but a rational power of itself.
func rootDenominator(e Expr, v string) (int64, bool) {
	switch t := e.(type) {
	case *Sym:
		return 1, true
	case *Num:
		return 1, true
	case *Pow:
		if sym, ok := t.base.(*Sym); ok && sym.name == v {
			en, ok := t.exp.(*Num)
			if !ok || en.approx || !en.val.Denom().IsInt64() {
				return 0, false
			}
			return en.val.Denom().Int64(), true
		}
		if Contains(t, v) {
			return 0, false
		}
		return 1, true
	case *Add, *Mul:
		var parts []Expr
		if a, ok := t.(*Add); ok {
			parts = a.terms
		} else {
			parts = t.(*Mul).factors
		}
		l := int64(1)
		for _, p := range parts {
			d, ok := rootDenominator(p, v)
			if !ok {
				return 0, false
			}
			l = lcm64(l, d)
		}
		return l, true
	}
	return 0, false
}

func lcm64(a, b int64) int64 {
	x, y := a, b
	for y != 0 {
		x, y = y, x%y
	}
	return a / x * b
}

// ============================================================
// Verification
// ============================================================

// verify drops candidates that are not real or do not satisfy r = 0,
// removes duplicates and orders numeric solutions ascending.
func verify(r Expr, v string, cands []Expr) []Expr {
	type entry struct {
		e       Expr
		numeric bool
		val     float64
		key     string
	}
	seen := map[string]bool{}
	var out []entry
	for _, c := range cands {
		c = c.Simplify()
		key := c.String()
		if seen[key] {
			continue
		}
		if len(FreeSymbols(c)) > 0 {
			seen[key] = true
			out = append(out, entry{e: c, key: key})
			continue
		}
		cv, ok := c.Eval()
		if !ok || !satisfies(r, v, c) {
			continue
		}
		seen[key] = true
		out = append(out, entry{e: c, numeric: true, val: cv.Float64(), key: key})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].numeric != out[j].numeric {
			return out[i].numeric
		}
		if out[i].numeric {
			return out[i].val < out[j].val
		}
		return out[i].key < out[j].key
	})
	sols := make([]Expr, len(out))
	for i, x := range out {
		sols[i] = x.e
	}
	return sols
}

// satisfies substitutes c and checks the residual vanishes, relative to
// the size of its terms. Residuals that keep other symbols cannot be
// decided and are accepted.
func satisfies(r Expr, v string, c Expr) bool {
	if len(FreeSymbols(Sub(r, v, c))) > 0 {
		return true
	}
	scale := 1.0
	total := N(0)
	for _, t := range termsOf(r) {
		tv, ok := t.Sub(v, c).Eval()
		if !ok {
			return false
		}
		scale += math.Abs(tv.Float64())
		total = numAdd(total, tv)
	}
	if !total.approx {
		return total.IsZero()
	}
	return math.Abs(total.Float64()) <= verifyTol*scale
}
