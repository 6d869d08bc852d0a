package symbolic

import (
	"math"
	"math/big"
)

const (
	maxExactExponent = 256     // integer powers are computed exactly up to this exponent
	maxExactBits     = 1 << 14 // and while the result stays under this many bits
	maxRootIndex     = 64
	maxTrialFactor   = 10000
)

// numPow folds b^e for numeric operands. It returns false when the power
// has no exact form worth keeping (the caller leaves it symbolic or falls
// back to floats). Radicals of integers come back as c*r^(1/k) with r free
// of k-th powers.
func numPow(b, e *Num) (Expr, bool) {
	if e.IsInteger() && !e.approx {
		return intPow(b, e.val.Num())
	}
	if b.approx || e.approx {
		return floatPow(b, e)
	}
	if b.IsNegative() {
		return nil, false
	}
	p, q := e.val.Num(), e.val.Denom()
	if !q.IsInt64() || q.Int64() > maxRootIndex {
		return nil, false
	}
	k := int(q.Int64())
	if num, ok := nthRoot(b.val.Num(), k); ok {
		if den, ok := nthRoot(b.val.Denom(), k); ok {
			return intPow(&Num{val: new(big.Rat).SetFrac(num, den)}, p)
		}
	}
	if !b.val.IsInt() || p.Sign() <= 0 || !p.IsInt64() || p.Int64() > maxRootIndex {
		return nil, false
	}
	bp := new(big.Int).Exp(b.val.Num(), p, nil)
	out, in := extractPower(bp, k)
	if out.Cmp(big.NewInt(1)) == 0 && p.Int64() == 1 {
		return nil, false
	}
	radical := &Pow{base: &Num{val: new(big.Rat).SetInt(in)}, exp: F(1, int64(k))}
	if in.Cmp(big.NewInt(1)) == 0 {
		return &Num{val: new(big.Rat).SetInt(out)}, true
	}
	return MulOf(&Num{val: new(big.Rat).SetInt(out)}, radical), true
}

func intPow(b *Num, e *big.Int) (Expr, bool) {
	if !e.IsInt64() {
		return nil, false
	}
	n := e.Int64()
	abs := n
	if abs < 0 {
		abs = -abs
	}
	if abs > maxExactExponent {
		return nil, false
	}
	if n < 0 && b.IsZero() {
		return nil, false
	}
	bits := b.val.Num().BitLen() + b.val.Denom().BitLen()
	if int64(bits)*abs > maxExactBits {
		return nil, false
	}
	k := big.NewInt(abs)
	num := new(big.Int).Exp(b.val.Num(), k, nil)
	den := new(big.Int).Exp(b.val.Denom(), k, nil)
	r := new(big.Rat).SetFrac(num, den)
	if n < 0 {
		r.Inv(r)
	}
	return &Num{val: r, approx: b.approx}, true
}

func floatPow(b, e *Num) (*Num, bool) {
	if b.IsNegative() && !e.IsInteger() {
		return nil, false
	}
	pf := math.Pow(b.Float64(), e.Float64())
	if math.IsNaN(pf) || math.IsInf(pf, 0) {
		return nil, false
	}
	return NFloat(pf), true
}

// overflows reports whether e holds a real power too large for both the
// exact and the float path, such as 2**100000.
func overflows(e Expr) bool {
	switch v := e.(type) {
	case *Add:
		for _, t := range v.terms {
			if overflows(t) {
				return true
			}
		}
	case *Mul:
		for _, f := range v.factors {
			if overflows(f) {
				return true
			}
		}
	case *Pow:
		if overflows(v.base) || overflows(v.exp) {
			return true
		}
		b, ok1 := v.base.Eval()
		x, ok2 := v.exp.Eval()
		if !ok1 || !ok2 || b.IsZero() || b.IsNegative() && !x.IsInteger() {
			return false
		}
		return math.IsInf(math.Pow(math.Abs(b.Float64()), x.Float64()), 0)
	}
	return false
}

// nthRoot returns the exact k-th root of n >= 0 when n is a perfect power.
func nthRoot(n *big.Int, k int) (*big.Int, bool) {
	if n.Sign() < 0 {
		return nil, false
	}
	if k == 1 || n.Sign() == 0 || n.Cmp(big.NewInt(1)) == 0 {
		return new(big.Int).Set(n), true
	}
	if k == 2 {
		r := new(big.Int).Sqrt(n)
		return r, new(big.Int).Mul(r, r).Cmp(n) == 0
	}
	if n.BitLen() > 1000 {
		return nil, false
	}
	f, _ := new(big.Float).SetInt(n).Float64()
	est := math.Round(math.Pow(f, 1/float64(k)))
	kk := big.NewInt(int64(k))
	for d := -1.0; d <= 1; d++ {
		c := est + d
		if c < 0 {
			continue
		}
		r, _ := new(big.Float).SetFloat64(c).Int(nil)
		if new(big.Int).Exp(r, kk, nil).Cmp(n) == 0 {
			return r, true
		}
	}
	return nil, false
}

// extractPower splits n into out^k * in by trial division with small
// factors. Large cofactors are left inside the radical.
func extractPower(n *big.Int, k int) (out, in *big.Int) {
	out = big.NewInt(1)
	in = new(big.Int).Set(n)
	if !n.IsInt64() {
		return out, in
	}
	kk := big.NewInt(int64(k))
	for i := int64(2); i <= maxTrialFactor; i++ {
		f := new(big.Int).Exp(big.NewInt(i), kk, nil)
		if f.Cmp(in) > 0 {
			break
		}
		for new(big.Int).Mod(in, f).Sign() == 0 {
			in.Quo(in, f)
			out.Mul(out, big.NewInt(i))
		}
	}
	return out, in
}
