// Copyright (c) 2026 Ben Lorenz

// Package maxord drives the maximal-order computation: the p-maximal
// enlargement loop at certified primes, the cycle engine that processes
// composite moduli without factoring them, the tame overorder pass that
// seeds and drains the modulus worklist, and a memoizing cache of maximal
// orders per field.
package maxord

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/benlorenz/hecke/arith"
	"github.com/benlorenz/hecke/intmatrix"
	"github.com/benlorenz/hecke/order"
)

// ErrNonTermination reports that the power-ideal escalation ran past the
// degree of the field without resolving, which the underlying theory rules
// out for any modulus the engine is given.
var ErrNonTermination = errors.New("maxord: power-ideal escalation exceeded the degree bound")

var (
	bigOne = big.NewInt(1)
	bigTwo = big.NewInt(2)
)

// cycleBL enlarges o at a modulus q that is not known to be prime. It
// returns the enlarged order together with a factor classifying the
// outcome: 1 when q has been fully handled, q itself when q resisted
// splitting and needs factorization, and a proper divisor of q when the
// linear algebra exposed one.
func cycleBL(o *order.Order, q *big.Int) (*order.Order, *big.Int, error) {
	for {
		rr, err := order.Radical(o, q)
		if err != nil {
			return nil, nil, fmt.Errorf("cycleBL: %s", err.Error())
		}
		if rr.Split != nil {
			return o, rr.Split, nil
		}
		ideal := rr.Ideal
		if ideal.IsScalar(q) {
			// Trivial radical: q does not divide the index of o.
			return o, bigOne, nil
		}
		enlarged, err := order.RingOfMultipliers(ideal)
		if err != nil {
			return nil, nil, fmt.Errorf("cycleBL: %s", err.Error())
		}
		if enlarged != o {
			disc, err := enlarged.Discriminant()
			if err != nil {
				return nil, nil, fmt.Errorf("cycleBL: %s", err.Error())
			}
			g := new(big.Int).GCD(nil, nil, new(big.Int).Abs(disc), q)
			if g.Cmp(bigOne) == 0 {
				return enlarged, bigOne, nil
			}
			o = enlarged
			continue
		}
		// Fixed point of the multiplier ring. Probe the colon module for a
		// factor of q before escalating to the power-ideal window.
		g, err := colonFactor(o, ideal, q)
		if err != nil {
			return nil, nil, fmt.Errorf("cycleBL: %s", err.Error())
		}
		if g.Cmp(bigOne) > 0 && g.Cmp(q) < 0 {
			return o, g, nil
		}
		return cycleBL2(o, ideal, q)
	}
}

// colonFactor inspects the normal form of the module spanned by the
// representation matrices of the radical generators: the gcd of q with its
// diagonal product is a divisor of q, proper when q is tamely composite.
func colonFactor(o *order.Order, ideal *order.Ideal, q *big.Int) (*big.Int, error) {
	gens, err := ideal.GeneratorElems()
	if err != nil {
		return nil, err
	}
	blocks := make([]*intmatrix.Matrix, len(gens))
	for k, g := range gens {
		rep, err := o.RepresentationMatrix(g)
		if err != nil {
			return nil, err
		}
		blocks[k] = rep.Transpose()
	}
	stacked, err := intmatrix.Stack(blocks...)
	if err != nil {
		return nil, err
	}
	min, err := ideal.Min()
	if err != nil {
		return nil, err
	}
	h, err := stacked.HNFModular(min)
	if err != nil {
		return nil, err
	}
	prod, err := h.DiagProductMod(q)
	if err != nil {
		return nil, err
	}
	if prod.Sign() == 0 {
		return new(big.Int).Set(q), nil
	}
	return new(big.Int).GCD(nil, nil, prod, q), nil
}

// cycleBL2 processes a modulus q at an order that is a fixed point of the
// multiplier ring. It walks the window (I^h, I^(h+1), I^(h+2)) of powers
// of the radical, comparing (I^(h+1) + qO)^2 against
// (I^h + qO)(I^(h+2) + qO): a defect sharing a proper factor with q splits
// q, a defect divisible by q advances the window, and a defect coprime to
// q resolves at depth h.
//
// The powers of the radical stabilize modulo qO within degree(o) steps, so
// exceeding that bound is a hard failure.
func cycleBL2(o *order.Order, ideal *order.Ideal, q *big.Int) (*order.Order, *big.Int, error) {
	qO, err := order.ScalarIdeal(o, q)
	if err != nil {
		return nil, nil, fmt.Errorf("cycleBL2: %s", err.Error())
	}
	i1 := ideal
	i2, err := i1.Mul(i1)
	if err != nil {
		return nil, nil, fmt.Errorf("cycleBL2: %s", err.Error())
	}
	i3, err := i2.Mul(i1)
	if err != nil {
		return nil, nil, fmt.Errorf("cycleBL2: %s", err.Error())
	}
	n := o.Degree()
	for h := 1; ; h++ {
		if h > n {
			disc, derr := o.Discriminant()
			if derr != nil {
				disc = nil
			}
			return nil, nil, fmt.Errorf(
				"modulus %v with discriminant %v at degree %d: %w",
				q, disc, n, ErrNonTermination,
			)
		}
		g, err := windowDefect(i1, i2, i3, qO, q)
		if err != nil {
			return nil, nil, fmt.Errorf("cycleBL2: %s", err.Error())
		}
		if g.Cmp(bigOne) == 0 {
			// Resolved at depth h: q is handled if it is the h-th power of
			// a single prime, and unsplittable otherwise.
			if h > 1 {
				if root, ok := arith.KthRoot(q, h); ok {
					return o, root, nil
				}
			}
			return o, new(big.Int).Set(q), nil
		}
		if g.Cmp(q) < 0 {
			return o, g, nil
		}
		i1, i2 = i2, i3
		i3, err = i3.Mul(ideal)
		if err != nil {
			return nil, nil, fmt.Errorf("cycleBL2: %s", err.Error())
		}
	}
}

// windowDefect returns the gcd of q with the index of (i2 + qO)^2 inside
// (i1 + qO)(i3 + qO).
func windowDefect(i1, i2, i3, qO *order.Ideal, q *big.Int) (*big.Int, error) {
	a, err := i2.Add(qO)
	if err != nil {
		return nil, err
	}
	a, err = a.Mul(a)
	if err != nil {
		return nil, err
	}
	left, err := i1.Add(qO)
	if err != nil {
		return nil, err
	}
	right, err := i3.Add(qO)
	if err != nil {
		return nil, err
	}
	b, err := left.Mul(right)
	if err != nil {
		return nil, err
	}
	invNum, invDen, err := b.BasisMatInv()
	if err != nil {
		return nil, err
	}
	prod, err := intmatrix.Mul(a.BasisMatrix(), invNum)
	if err != nil {
		return nil, err
	}
	// a is contained in b, so the index matrix is integral.
	idx, err := prod.DivExact(invDen)
	if err != nil {
		return nil, fmt.Errorf("power-ideal window is not nested: %w", order.ErrInvariant)
	}
	det, err := idx.Det()
	if err != nil {
		return nil, err
	}
	det.Abs(det)
	det.Mod(det, q)
	if det.Sign() == 0 {
		return new(big.Int).Set(q), nil
	}
	return new(big.Int).GCD(nil, nil, det, q), nil
}
