// Copyright (c) 2026 Ben Lorenz

package order

import (
	"fmt"
	"math/big"

	"github.com/benlorenz/hecke/intmatrix"
)

// RadicalResult is the outcome of a radical computation: exactly one of
// the two fields is set. Ideal holds the radical when the computation
// succeeds; Split holds a proper divisor of the modulus when the linear
// algebra modulo a composite modulus stalls and exposes a factor.
type RadicalResult struct {
	Ideal *Ideal
	Split *big.Int
}

// Radical returns the radical of q * o in o: the elements whose image in
// o / q*o is nilpotent. The modulus must be at least 2 and is treated as a
// prime candidate; a composite q either yields a correct radical or
// surfaces a proper divisor in the Split field.
//
// For q larger than the degree the radical is the kernel of the trace
// pairing modulo q. For small q the trace degenerates and the kernel of
// the Frobenius power map is used instead.
func Radical(o *Order, q *big.Int) (RadicalResult, error) {
	if q.Cmp(bigTwo) < 0 {
		return RadicalResult{}, fmt.Errorf("Radical: modulus %v < 2", q)
	}
	n := o.Degree()
	var mat *intmatrix.Matrix
	var err error
	if q.Cmp(big.NewInt(int64(n))) > 0 {
		mat, err = o.TraceMatrix()
	} else {
		mat, err = frobeniusMatrix(o, q)
	}
	if err != nil {
		return RadicalResult{}, fmt.Errorf("Radical: %s", err.Error())
	}
	kernel, split, err := mat.KernelMod(q)
	if err != nil {
		return RadicalResult{}, fmt.Errorf("Radical: %s", err.Error())
	}
	if split != nil {
		return RadicalResult{Split: split}, nil
	}
	if kernel == nil {
		// Trivial kernel: the radical is q * o itself.
		ideal, err := ScalarIdeal(o, q)
		if err != nil {
			return RadicalResult{}, fmt.Errorf("Radical: %s", err.Error())
		}
		return RadicalResult{Ideal: ideal}, nil
	}
	scalar, err := intmatrix.NewScalar(n, q)
	if err != nil {
		return RadicalResult{}, fmt.Errorf("Radical: %s", err.Error())
	}
	stacked, err := intmatrix.Stack(kernel, scalar)
	if err != nil {
		return RadicalResult{}, fmt.Errorf("Radical: %s", err.Error())
	}
	basis, err := stacked.HNFModular(q)
	if err != nil {
		return RadicalResult{}, fmt.Errorf("Radical: %s", err.Error())
	}
	return RadicalResult{
		Ideal: &Ideal{ord: o, basis: basis, min: new(big.Int).Set(q)},
	}, nil
}

// frobeniusMatrix returns the matrix whose row i holds the coordinates of
// b_i^(q^j) modulo q, for the smallest j with q^j >= the degree. Modulo a
// prime q the Frobenius power map is linear, so its kernel is the radical.
func frobeniusMatrix(o *Order, q *big.Int) (*intmatrix.Matrix, error) {
	n := o.Degree()
	bigN := big.NewInt(int64(n))
	exp := new(big.Int).Set(q)
	for exp.Cmp(bigN) < 0 {
		exp.Mul(exp, q)
	}
	oneCoords, err := o.IntegerCoords(o.fld.One())
	if err != nil {
		return nil, err
	}
	mat, err := intmatrix.New(n, n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		row, err := o.basisIdentityRow(i)
		if err != nil {
			return nil, err
		}
		pow, err := o.powCoordsMod(row, exp, q, oneCoords)
		if err != nil {
			return nil, err
		}
		for j := 0; j < n; j++ {
			if err := mat.Set(i, j, pow[j]); err != nil {
				return nil, err
			}
		}
	}
	return mat, nil
}

// basisIdentityRow returns the order coordinates of the i-th basis
// element, the i-th standard vector.
func (o *Order) basisIdentityRow(i int) ([]*big.Int, error) {
	n := o.Degree()
	if i < 0 || i >= n {
		return nil, fmt.Errorf("Order.basisIdentityRow: index %d outside range {0, ... %d}", i, n-1)
	}
	row := make([]*big.Int, n)
	for j := 0; j < n; j++ {
		row[j] = new(big.Int)
	}
	row[i].SetInt64(1)
	return row, nil
}

// mulCoordsMod multiplies two elements given by order coordinates and
// reduces the result modulo q. The inputs are lifts of residues, so the
// product stays in the order and has integral coordinates.
func (o *Order) mulCoordsMod(u, v []*big.Int, q *big.Int) ([]*big.Int, error) {
	a, err := o.ElemFromCoords(u)
	if err != nil {
		return nil, err
	}
	b, err := o.ElemFromCoords(v)
	if err != nil {
		return nil, err
	}
	prod, err := a.Mul(b)
	if err != nil {
		return nil, err
	}
	coords, err := o.IntegerCoords(prod)
	if err != nil {
		return nil, fmt.Errorf(
			"product of order elements has non-integral coordinates: %w", ErrInvariant,
		)
	}
	for _, c := range coords {
		c.Mod(c, q)
	}
	return coords, nil
}

// powCoordsMod raises an element given by order coordinates to the exp-th
// power modulo q by binary exponentiation.
func (o *Order) powCoordsMod(base []*big.Int, exp, q *big.Int, oneCoords []*big.Int) ([]*big.Int, error) {
	result := make([]*big.Int, len(oneCoords))
	for i, c := range oneCoords {
		result[i] = new(big.Int).Mod(c, q)
	}
	cur := make([]*big.Int, len(base))
	for i, c := range base {
		cur[i] = new(big.Int).Mod(c, q)
	}
	var err error
	for bit := 0; bit < exp.BitLen(); bit++ {
		if exp.Bit(bit) == 1 {
			result, err = o.mulCoordsMod(result, cur, q)
			if err != nil {
				return nil, err
			}
		}
		if bit+1 < exp.BitLen() {
			cur, err = o.mulCoordsMod(cur, cur, q)
			if err != nil {
				return nil, err
			}
		}
	}
	return result, nil
}
