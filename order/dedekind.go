// Copyright (c) 2026 Ben Lorenz

package order

import (
	"fmt"
	"math/big"

	"github.com/benlorenz/hecke/intmatrix"
)

// DedekindTest applies the Dedekind criterion to the equation order at a
// prime p. It reports whether the equation order is p-maximal and, when it
// is not, returns the enlarged order obtained by adjoining the criterion
// witness divided by p. The receiver must be the equation order.
func DedekindTest(o *Order, p *big.Int) (bool, *Order, error) {
	if !o.IsEquationOrder() {
		return false, nil, fmt.Errorf("DedekindTest: order is not the equation order")
	}
	f := o.fld.DefiningPolynomial()
	fBar := fpNorm(f, p)
	g := fpRadical(fBar, p)
	h, err := fpDivExact(fBar, g, p)
	if err != nil {
		return false, nil, fmt.Errorf("DedekindTest: %s", err.Error())
	}
	// T = (lift(g) * lift(h) - f) / p over the integers.
	gh := polyMulZ(g, h)
	t := polySubZ(gh, f)
	for i, c := range t {
		quo, rem := new(big.Int).QuoRem(c, p, new(big.Int))
		if rem.Sign() != 0 {
			return false, nil, fmt.Errorf(
				"criterion numerator coefficient %d = %v is not divisible by %v: %w",
				i, c, p, ErrInvariant,
			)
		}
		t[i] = quo
	}
	u := fpGCD(fpGCD(fpNorm(t, p), g, p), h, p)
	if len(u) == 1 {
		return true, nil, nil
	}
	// Not p-maximal: enlarge by (f / U)(theta) / p.
	m, err := fpDivExact(fBar, u, p)
	if err != nil {
		return false, nil, fmt.Errorf("DedekindTest: %s", err.Error())
	}
	enlarged, err := dedekindEnlarge(o, m, p)
	if err != nil {
		return false, nil, err
	}
	return false, enlarged, nil
}

// dedekindEnlarge returns the order generated by the equation order and
// (1/p) * m(theta) times the equation order.
func dedekindEnlarge(o *Order, m []*big.Int, p *big.Int) (*Order, error) {
	n := o.Degree()
	eta := o.fld.Zero()
	etaCoords := eta.Coords()
	for i, c := range m {
		if i >= n {
			break
		}
		etaCoords[i].SetInt(c)
	}
	etaElem, err := o.fld.ElemFromRat(etaCoords)
	if err != nil {
		return nil, fmt.Errorf("dedekindEnlarge: %s", err.Error())
	}
	rows, err := intmatrix.New(2*n, n)
	if err != nil {
		return nil, fmt.Errorf("dedekindEnlarge: %s", err.Error())
	}
	// First block: p times the power basis. Second block: theta^i * eta,
	// both over the common denominator p.
	for i := 0; i < n; i++ {
		if err := rows.Set(i, i, p); err != nil {
			return nil, err
		}
	}
	cur := etaElem
	gen := o.fld.Gen()
	for i := 0; i < n; i++ {
		coords, err := cur.IntegerCoords()
		if err != nil {
			return nil, fmt.Errorf(
				"power times witness has non-integral coordinates: %w", ErrInvariant,
			)
		}
		for j := 0; j < n; j++ {
			if err := rows.Set(n+i, j, coords[j]); err != nil {
				return nil, err
			}
		}
		if i+1 < n {
			cur, err = cur.Mul(gen)
			if err != nil {
				return nil, fmt.Errorf("dedekindEnlarge: %s", err.Error())
			}
		}
	}
	h, err := rows.HNF()
	if err != nil {
		return nil, fmt.Errorf("dedekindEnlarge: %s", err.Error())
	}
	return NewOrder(o.fld, h, p)
}

// Polynomials over F_p are slices of ascending coefficients reduced into
// {0, ..., p-1} with no trailing zeros; the zero polynomial is {0}.

// fpNorm reduces an integer polynomial modulo p and trims trailing zeros.
func fpNorm(c []*big.Int, p *big.Int) []*big.Int {
	out := make([]*big.Int, len(c))
	deg := 0
	for i, v := range c {
		out[i] = new(big.Int).Mod(v, p)
		if out[i].Sign() != 0 {
			deg = i
		}
	}
	return out[:deg+1]
}

func fpIsOne(a []*big.Int) bool {
	return len(a) == 1 && a[0].Cmp(bigOne) == 0
}

// fpDeriv returns the formal derivative of a modulo p.
func fpDeriv(a []*big.Int, p *big.Int) []*big.Int {
	if len(a) <= 1 {
		return []*big.Int{new(big.Int)}
	}
	d := make([]*big.Int, len(a)-1)
	for i := 1; i < len(a); i++ {
		d[i-1] = new(big.Int).Mul(a[i], big.NewInt(int64(i)))
	}
	return fpNorm(d, p)
}

// polyMulZ multiplies two integer polynomials over Z.
func polyMulZ(a, b []*big.Int) []*big.Int {
	out := make([]*big.Int, len(a)+len(b)-1)
	for i := range out {
		out[i] = new(big.Int)
	}
	t := new(big.Int)
	for i, x := range a {
		if x.Sign() == 0 {
			continue
		}
		for j, y := range b {
			out[i+j].Add(out[i+j], t.Mul(x, y))
		}
	}
	return out
}

// polySubZ subtracts two integer polynomials over Z.
func polySubZ(a, b []*big.Int) []*big.Int {
	size := len(a)
	if len(b) > size {
		size = len(b)
	}
	out := make([]*big.Int, size)
	for i := range out {
		out[i] = new(big.Int)
		if i < len(a) {
			out[i].Set(a[i])
		}
		if i < len(b) {
			out[i].Sub(out[i], b[i])
		}
	}
	return out
}

// fpMul multiplies two polynomials modulo p.
func fpMul(a, b []*big.Int, p *big.Int) []*big.Int {
	return fpNorm(polyMulZ(a, b), p)
}

// fpDivMod returns the quotient and remainder of a by b modulo p. The
// leading coefficient of b must be invertible, which holds for prime p.
func fpDivMod(a, b []*big.Int, p *big.Int) ([]*big.Int, []*big.Int, error) {
	if len(b) == 1 && b[0].Sign() == 0 {
		return nil, nil, fmt.Errorf("fpDivMod: division by zero polynomial")
	}
	lcInv := new(big.Int).ModInverse(b[len(b)-1], p)
	if lcInv == nil {
		return nil, nil, fmt.Errorf(
			"fpDivMod: leading coefficient %v is not invertible mod %v", b[len(b)-1], p,
		)
	}
	rem := make([]*big.Int, len(a))
	for i, v := range a {
		rem[i] = new(big.Int).Set(v)
	}
	if len(a) < len(b) {
		return []*big.Int{new(big.Int)}, fpNorm(rem, p), nil
	}
	quo := make([]*big.Int, len(a)-len(b)+1)
	for i := range quo {
		quo[i] = new(big.Int)
	}
	t := new(big.Int)
	for d := len(a) - 1; d >= len(b)-1; d-- {
		c := new(big.Int).Mod(rem[d], p)
		if c.Sign() == 0 {
			continue
		}
		c.Mod(c.Mul(c, lcInv), p)
		quo[d-len(b)+1].Set(c)
		for j := 0; j < len(b); j++ {
			rem[d-len(b)+1+j].Sub(rem[d-len(b)+1+j], t.Mul(c, b[j]))
		}
	}
	return fpNorm(quo, p), fpNorm(rem, p), nil
}

// fpDivExact divides a by b modulo p, returning an error on a nonzero
// remainder.
func fpDivExact(a, b []*big.Int, p *big.Int) ([]*big.Int, error) {
	quo, rem, err := fpDivMod(a, b, p)
	if err != nil {
		return nil, err
	}
	if !(len(rem) == 1 && rem[0].Sign() == 0) {
		return nil, fmt.Errorf("fpDivExact: nonzero remainder of degree %d", len(rem)-1)
	}
	return quo, nil
}

// fpGCD returns the monic gcd of a and b modulo p.
func fpGCD(a, b []*big.Int, p *big.Int) []*big.Int {
	x := fpNorm(a, p)
	y := fpNorm(b, p)
	for !(len(y) == 1 && y[0].Sign() == 0) {
		_, rem, err := fpDivMod(x, y, p)
		if err != nil {
			// Unreachable for prime p: the divisor is normalized nonzero.
			return []*big.Int{new(big.Int).SetInt64(1)}
		}
		x, y = y, rem
	}
	if len(x) == 1 && x[0].Sign() == 0 {
		return x
	}
	lcInv := new(big.Int).ModInverse(x[len(x)-1], p)
	out := make([]*big.Int, len(x))
	for i, v := range x {
		out[i] = new(big.Int).Mod(new(big.Int).Mul(v, lcInv), p)
	}
	return out
}

// fpRadical returns the product of the distinct irreducible factors of a
// modulo the prime p, using gcds and p-th root extraction only.
func fpRadical(a []*big.Int, p *big.Int) []*big.Int {
	if len(a) == 1 {
		return a
	}
	d := fpGCD(a, fpDeriv(a, p), p)
	if fpIsOne(d) {
		return fpMonic(a, p)
	}
	w, err := fpDivExact(a, d, p)
	if err != nil {
		return fpMonic(a, p)
	}
	// w carries the factors with multiplicity prime to p. Strip them from
	// d; what survives is a p-th power.
	for {
		g := fpGCD(d, w, p)
		if fpIsOne(g) {
			break
		}
		d2, err := fpDivExact(d, g, p)
		if err != nil {
			break
		}
		d = d2
	}
	if fpIsOne(d) {
		return fpMonic(w, p)
	}
	root := fpPthRoot(d, p)
	return fpMul(fpMonic(w, p), fpRadical(root, p), p)
}

// fpPthRoot extracts the p-th root of a polynomial of the form e(x^p) over
// F_p, where coefficients satisfy c^p = c.
func fpPthRoot(a []*big.Int, p *big.Int) []*big.Int {
	if !p.IsInt64() {
		// A p-th power of positive degree needs degree >= p, so for huge p
		// the argument is constant and its own root.
		return a
	}
	step := int(p.Int64())
	out := make([]*big.Int, (len(a)-1)/step+1)
	for i := range out {
		idx := i * step
		if idx < len(a) {
			out[i] = new(big.Int).Set(a[idx])
		} else {
			out[i] = new(big.Int)
		}
	}
	return out
}

// fpMonic scales a nonzero polynomial to have leading coefficient 1.
func fpMonic(a []*big.Int, p *big.Int) []*big.Int {
	lc := a[len(a)-1]
	if lc.Cmp(bigOne) == 0 {
		return a
	}
	inv := new(big.Int).ModInverse(lc, p)
	out := make([]*big.Int, len(a))
	for i, v := range a {
		out[i] = new(big.Int).Mod(new(big.Int).Mul(v, inv), p)
	}
	return out
}
