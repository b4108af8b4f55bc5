// Copyright (c) 2026 Ben Lorenz

// Package arith provides the integer arithmetic utilities shared by the
// order and maxord packages: a prime sieve, trial division, primality
// testing, perfect power detection, a coprime-base refinement and a full
// integer factorization fallback.
package arith

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/bits-and-blooms/bitset"
)

var (
	bigOne = big.NewInt(1)
	bigTwo = big.NewInt(2)
)

// SievePrimes returns all primes p <= bound in increasing order.
func SievePrimes(bound uint) []uint64 {
	if bound < 2 {
		return nil
	}
	composite := bitset.New(bound + 1)
	for i := uint(2); i*i <= bound; i++ {
		if composite.Test(i) {
			continue
		}
		for j := i * i; j <= bound; j += i {
			composite.Set(j)
		}
	}
	var primes []uint64
	for i := uint(2); i <= bound; i++ {
		if !composite.Test(i) {
			primes = append(primes, uint64(i))
		}
	}
	return primes
}

// TrialDivide strips all prime factors p <= bound from |q|. It returns the
// distinct primes found, in increasing order, and the remaining cofactor.
func TrialDivide(q *big.Int, bound uint) ([]*big.Int, *big.Int) {
	rem := new(big.Int).Abs(q)
	var found []*big.Int
	if rem.Sign() == 0 {
		return nil, rem
	}
	r := new(big.Int)
	for _, p := range SievePrimes(bound) {
		if rem.Cmp(bigOne) == 0 {
			break
		}
		bp := new(big.Int).SetUint64(p)
		divided := false
		for {
			quo, rr := new(big.Int).QuoRem(rem, bp, r)
			if rr.Sign() != 0 {
				break
			}
			rem.Set(quo)
			divided = true
		}
		if divided {
			found = append(found, bp)
		}
	}
	return found, rem
}

// IsPrime reports whether q is (provably or with negligible error
// probability) a prime. Values below 2 are not prime.
func IsPrime(q *big.Int) bool {
	if q.Cmp(bigTwo) < 0 {
		return false
	}
	return q.ProbablyPrime(20)
}

// KthRoot returns the exact k-th root of q >= 1 if q is a perfect k-th
// power, along with whether it is one.
func KthRoot(q *big.Int, k int) (*big.Int, bool) {
	if k < 1 || q.Sign() <= 0 {
		return nil, false
	}
	if k == 1 {
		return new(big.Int).Set(q), true
	}
	bigK := big.NewInt(int64(k))
	// Binary search on the root, bracketed by the bit length of q.
	lo := big.NewInt(1)
	hi := new(big.Int).Lsh(bigOne, uint(q.BitLen()/k)+1)
	for lo.Cmp(hi) <= 0 {
		mid := new(big.Int).Add(lo, hi)
		mid.Rsh(mid, 1)
		pow := new(big.Int).Exp(mid, bigK, nil)
		switch pow.Cmp(q) {
		case 0:
			return mid, true
		case -1:
			lo = new(big.Int).Add(mid, bigOne)
		case 1:
			hi = new(big.Int).Sub(mid, bigOne)
		}
	}
	return nil, false
}

// PerfectPower returns (r, k) with q = r^k for the maximal k >= 2, or
// ok = false if |q| is not a perfect power. q must be >= 2.
func PerfectPower(q *big.Int) (*big.Int, int, bool) {
	if q.Cmp(bigTwo) < 0 {
		return nil, 0, false
	}
	for k := 2; k <= q.BitLen(); k++ {
		r, ok := KthRoot(q, k)
		if !ok {
			continue
		}
		if rr, kk, deeper := PerfectPower(r); deeper {
			return rr, k * kk, true
		}
		return r, k, true
	}
	return nil, 0, false
}

// CoprimeBase refines a list of integers into a pairwise-coprime base with
// the same prime support. Inputs <= 1 (after taking absolute values) are
// dropped. The result is sorted in increasing order.
//
// Each interaction replaces a pair {m, b} with gcd g > 1 by {g, b/g, m/g},
// whose product is strictly smaller, so the refinement terminates.
func CoprimeBase(moduli []*big.Int) []*big.Int {
	pending := make([]*big.Int, 0, len(moduli))
	for _, m := range moduli {
		if m == nil {
			continue
		}
		a := new(big.Int).Abs(m)
		if a.Cmp(bigOne) > 0 {
			pending = append(pending, a)
		}
	}
	var base []*big.Int
	for len(pending) > 0 {
		m := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		if m.Cmp(bigOne) <= 0 {
			continue
		}
		interacted := false
		for i, b := range base {
			g := new(big.Int).GCD(nil, nil, m, b)
			if g.Cmp(bigOne) == 0 {
				continue
			}
			base = append(base[:i], base[i+1:]...)
			pending = append(pending,
				g,
				new(big.Int).Quo(b, g),
				new(big.Int).Quo(m, g),
			)
			interacted = true
			break
		}
		if !interacted {
			base = append(base, m)
		}
	}
	sort.Slice(base, func(i, j int) bool { return base[i].Cmp(base[j]) < 0 })
	return base
}

// Factor returns the distinct prime factors of |q| in increasing order.
// |q| must be at least 2.
func Factor(q *big.Int) ([]*big.Int, error) {
	n := new(big.Int).Abs(q)
	if n.Cmp(bigTwo) < 0 {
		return nil, fmt.Errorf("Factor: |%v| has no prime factors", q)
	}
	seen := make(map[string]*big.Int)
	stack := []*big.Int{n}
	for len(stack) > 0 {
		m := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if m.Cmp(bigOne) <= 0 {
			continue
		}
		if IsPrime(m) {
			seen[m.String()] = m
			continue
		}
		if r, _, ok := PerfectPower(m); ok {
			stack = append(stack, r)
			continue
		}
		small, rem := TrialDivide(m, 1<<14)
		if len(small) > 0 {
			stack = append(stack, small...)
			stack = append(stack, rem)
			continue
		}
		d, err := pollardRho(m)
		if err != nil {
			return nil, fmt.Errorf("Factor: could not split %v: %s", m, err.Error())
		}
		stack = append(stack, d, new(big.Int).Quo(m, d))
	}
	primes := make([]*big.Int, 0, len(seen))
	for _, p := range seen {
		primes = append(primes, p)
	}
	sort.Slice(primes, func(i, j int) bool { return primes[i].Cmp(primes[j]) < 0 })
	return primes, nil
}

// pollardRho returns a nontrivial divisor of an odd composite n using
// Floyd cycle detection with polynomial x^2 + c, retrying over c.
func pollardRho(n *big.Int) (*big.Int, error) {
	if n.Bit(0) == 0 {
		return new(big.Int).Set(bigTwo), nil
	}
	diff := new(big.Int)
	for c := int64(1); c < 64; c++ {
		bigC := big.NewInt(c)
		f := func(x *big.Int) *big.Int {
			y := new(big.Int).Mul(x, x)
			y.Add(y, bigC)
			return y.Mod(y, n)
		}
		x, y := big.NewInt(2), big.NewInt(2)
		for {
			x = f(x)
			y = f(f(y))
			diff.Sub(x, y)
			diff.Abs(diff)
			if diff.Sign() == 0 {
				break // cycle without a factor, retry with the next c
			}
			g := new(big.Int).GCD(nil, nil, diff, n)
			if g.Cmp(bigOne) > 0 {
				if g.Cmp(n) == 0 {
					break
				}
				return g, nil
			}
		}
	}
	return nil, fmt.Errorf("pollardRho: no divisor of %v found", n)
}
