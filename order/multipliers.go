// Copyright (c) 2026 Ben Lorenz

package order

import (
	"fmt"
	"math/big"

	"github.com/benlorenz/hecke/intmatrix"
)

// RingOfMultipliers returns the ring (I : I) of elements of the field that
// multiply the ideal into itself. The result contains the order of I; when
// it equals it (up to index), the original order is returned unchanged so
// callers can detect the fixed point cheaply.
//
// The computation is dual: for each module generator g of I, the matrix
// of multiplication by g composed with the inverse of the ideal basis is
// integral, and the multiplier ring is the dual of the module spanned by
// the transposes of those matrices. The index of the order in the
// multiplier ring is the determinant of the resulting normal form.
func RingOfMultipliers(I *Ideal) (*Order, error) {
	o := I.ord
	gens, err := I.GeneratorElems()
	if err != nil {
		return nil, fmt.Errorf("RingOfMultipliers: %s", err.Error())
	}
	invNum, invDen, err := I.BasisMatInv()
	if err != nil {
		return nil, fmt.Errorf("RingOfMultipliers: %s", err.Error())
	}
	blocks := make([]*intmatrix.Matrix, len(gens))
	for k, g := range gens {
		rep, err := o.RepresentationMatrix(g)
		if err != nil {
			return nil, fmt.Errorf("RingOfMultipliers: %s", err.Error())
		}
		prod, err := intmatrix.Mul(rep, invNum)
		if err != nil {
			return nil, fmt.Errorf("RingOfMultipliers: %s", err.Error())
		}
		// g * I is contained in I, so the composite is integral.
		block, err := prod.DivExact(invDen)
		if err != nil {
			return nil, fmt.Errorf(
				"multiplication by a generator does not preserve the ideal: %w", ErrInvariant,
			)
		}
		blocks[k] = block.Transpose()
	}
	stacked, err := intmatrix.Stack(blocks...)
	if err != nil {
		return nil, fmt.Errorf("RingOfMultipliers: %s", err.Error())
	}
	// Min(I) * O multiplies I into itself, so Min(I) times the standard
	// lattice sits inside the stacked row span, a valid modulus.
	a, err := I.Min()
	if err != nil {
		return nil, fmt.Errorf("RingOfMultipliers: %s", err.Error())
	}
	h, err := stacked.HNFModular(a)
	if err != nil {
		return nil, fmt.Errorf("RingOfMultipliers: %s", err.Error())
	}
	s, err := h.DiagProduct()
	if err != nil {
		return nil, fmt.Errorf("RingOfMultipliers: %s", err.Error())
	}
	if s.Cmp(bigOne) == 0 {
		return o, nil
	}
	// The new basis over the power basis is the inverse transpose of the
	// normal form applied to the old basis.
	hInvNum, hInvDen, err := h.Transpose().InverseRat()
	if err != nil {
		return nil, fmt.Errorf("RingOfMultipliers: %s", err.Error())
	}
	newBasis, err := intmatrix.Mul(hInvNum, o.basis)
	if err != nil {
		return nil, fmt.Errorf("RingOfMultipliers: %s", err.Error())
	}
	newDen := new(big.Int).Mul(o.den, hInvDen)
	enlarged, err := NewOrder(o.fld, newBasis, newDen)
	if err != nil {
		return nil, fmt.Errorf("RingOfMultipliers: %s", err.Error())
	}
	enlarged.primesMax = o.primesMax
	// disc(O1) = disc(O) / s^2 and index(O1) = s * index(O) whenever the
	// old values are known.
	if o.disc != nil {
		s2 := new(big.Int).Mul(s, s)
		disc, rem := new(big.Int).QuoRem(o.disc, s2, new(big.Int))
		if rem.Sign() != 0 {
			return nil, fmt.Errorf(
				"discriminant %v is not divisible by the square of the index %v: %w",
				o.disc, s, ErrInvariant,
			)
		}
		enlarged.disc = disc
	}
	if o.index != nil {
		enlarged.index = new(big.Int).Mul(o.index, s)
	}
	return enlarged, nil
}
