// Copyright (c) 2026 Ben Lorenz

package order

import (
	"fmt"
	"math/big"

	"github.com/benlorenz/hecke/intmatrix"
	"github.com/benlorenz/hecke/numfield"
)

// Ideal is an integral ideal of an order, represented by a basis matrix in
// HNF whose rows hold coordinates with respect to the order basis. A small
// generating set and a known positive integer member are carried along
// when available, since both shorten the downstream normal-form work.
type Ideal struct {
	ord   *Order
	basis *intmatrix.Matrix // n x n over Z, in HNF, full rank
	gens  []*numfield.Elem  // optional generating set as module over ord
	min   *big.Int          // a positive integer in the ideal, nil until known
}

// NewIdealFromBasis returns the ideal of o spanned by the rows of basis,
// given in coordinates with respect to the order basis. The rows must span
// a full-rank module.
func NewIdealFromBasis(o *Order, basis *intmatrix.Matrix) (*Ideal, error) {
	h, err := basis.HNF()
	if err != nil {
		return nil, fmt.Errorf("NewIdealFromBasis: %s", err.Error())
	}
	if h.NumCols() != o.Degree() {
		return nil, fmt.Errorf(
			"NewIdealFromBasis: basis has %d columns for a degree %d order",
			h.NumCols(), o.Degree(),
		)
	}
	return &Ideal{ord: o, basis: h}, nil
}

// ScalarIdeal returns the ideal q * o for a positive integer q.
func ScalarIdeal(o *Order, q *big.Int) (*Ideal, error) {
	if q.Sign() <= 0 {
		return nil, fmt.Errorf("ScalarIdeal: scalar %v is not positive", q)
	}
	basis, err := intmatrix.NewScalar(o.Degree(), q)
	if err != nil {
		return nil, fmt.Errorf("ScalarIdeal: %s", err.Error())
	}
	qElem, err := o.fld.ElemFromIntVec(scalarVec(o.Degree(), q), bigOne)
	if err != nil {
		return nil, fmt.Errorf("ScalarIdeal: %s", err.Error())
	}
	return &Ideal{
		ord:   o,
		basis: basis,
		gens:  []*numfield.Elem{qElem},
		min:   new(big.Int).Set(q),
	}, nil
}

func scalarVec(n int, q *big.Int) []*big.Int {
	v := make([]*big.Int, n)
	v[0] = new(big.Int).Set(q)
	for i := 1; i < n; i++ {
		v[i] = new(big.Int)
	}
	return v
}

// Order returns the order the ideal lives over.
func (I *Ideal) Order() *Order {
	return I.ord
}

// BasisMatrix returns the basis matrix in HNF, in coordinates with respect
// to the order basis. This is not a deep copy.
func (I *Ideal) BasisMatrix() *intmatrix.Matrix {
	return I.basis
}

// Min returns a positive integer contained in the ideal: the determinant
// of the basis matrix, or a smaller value recorded at construction. The
// value is cached.
func (I *Ideal) Min() (*big.Int, error) {
	if I.min != nil {
		return I.min, nil
	}
	d, err := I.basis.DiagProduct()
	if err != nil {
		return nil, fmt.Errorf("Ideal.Min: %s", err.Error())
	}
	if d.Sign() <= 0 {
		return nil, fmt.Errorf("determinant %v of an ideal basis is not positive: %w", d, ErrInvariant)
	}
	I.min = d
	return d, nil
}

// IsScalar reports whether the ideal equals q * O.
func (I *Ideal) IsScalar(q *big.Int) bool {
	s, err := intmatrix.NewScalar(I.ord.Degree(), q)
	if err != nil {
		return false
	}
	return I.basis.Equals(s)
}

// Equal reports whether two ideals over the same order coincide.
func (I *Ideal) Equal(J *Ideal) bool {
	return I.ord == J.ord && I.basis.Equals(J.basis)
}

// GeneratorElems returns a generating set of the ideal as a module over
// its order: the recorded generators when present, otherwise the basis
// rows as field elements.
func (I *Ideal) GeneratorElems() ([]*numfield.Elem, error) {
	if I.gens != nil {
		return I.gens, nil
	}
	return I.basisElems()
}

// basisElems returns the basis rows of the ideal as field elements.
func (I *Ideal) basisElems() ([]*numfield.Elem, error) {
	n := I.ord.Degree()
	elems := make([]*numfield.Elem, n)
	for i := 0; i < n; i++ {
		row, err := I.basis.Row(i)
		if err != nil {
			return nil, err
		}
		e, err := I.ord.ElemFromCoords(row)
		if err != nil {
			return nil, fmt.Errorf("Ideal.basisElems: %s", err.Error())
		}
		elems[i] = e
	}
	return elems, nil
}

// BasisMatInv returns the exact inverse of the basis matrix as a numerator
// and a positive denominator.
func (I *Ideal) BasisMatInv() (*intmatrix.Matrix, *big.Int, error) {
	num, den, err := I.basis.InverseRat()
	if err != nil {
		return nil, nil, fmt.Errorf("Ideal.BasisMatInv: %s", err.Error())
	}
	return num, den, nil
}

// Add returns the ideal I + J. Both ideals must live over the same order.
func (I *Ideal) Add(J *Ideal) (*Ideal, error) {
	if I.ord != J.ord {
		return nil, fmt.Errorf("Ideal.Add: ideals over different orders")
	}
	minI, err := I.Min()
	if err != nil {
		return nil, err
	}
	minJ, err := J.Min()
	if err != nil {
		return nil, err
	}
	// gcd(minI, minJ) is an integer combination of members, so it lies in
	// the sum and is a valid modulus for the normal form.
	g := new(big.Int).GCD(nil, nil, minI, minJ)
	stacked, err := intmatrix.Stack(I.basis, J.basis)
	if err != nil {
		return nil, fmt.Errorf("Ideal.Add: %s", err.Error())
	}
	h, err := stacked.HNFModular(g)
	if err != nil {
		return nil, fmt.Errorf("Ideal.Add: %s", err.Error())
	}
	return &Ideal{ord: I.ord, basis: h, min: g}, nil
}

// Mul returns the ideal product I * J. Both ideals must live over the same
// order.
//
// The left factor contributes a full basis: products of a basis of I with
// module generators of J span the product over Z, since any c * h with c
// in the order folds back into the basis of I before multiplying.
func (I *Ideal) Mul(J *Ideal) (*Ideal, error) {
	if I.ord != J.ord {
		return nil, fmt.Errorf("Ideal.Mul: ideals over different orders")
	}
	gI, err := I.basisElems()
	if err != nil {
		return nil, err
	}
	gJ, err := J.GeneratorElems()
	if err != nil {
		return nil, err
	}
	minI, err := I.Min()
	if err != nil {
		return nil, err
	}
	minJ, err := J.Min()
	if err != nil {
		return nil, err
	}
	n := I.ord.Degree()
	prod, err := intmatrix.New(len(gI)*len(gJ), n)
	if err != nil {
		return nil, fmt.Errorf("Ideal.Mul: %s", err.Error())
	}
	for i, a := range gI {
		for j, b := range gJ {
			c, err := a.Mul(b)
			if err != nil {
				return nil, fmt.Errorf("Ideal.Mul: %s", err.Error())
			}
			coords, err := I.ord.IntegerCoords(c)
			if err != nil {
				return nil, fmt.Errorf(
					"product of ideal generators %d and %d escapes the order: %w",
					i, j, ErrInvariant,
				)
			}
			for k := 0; k < n; k++ {
				if err := prod.Set(i*len(gJ)+j, k, coords[k]); err != nil {
					return nil, err
				}
			}
		}
	}
	m := new(big.Int).Mul(minI, minJ)
	h, err := prod.HNFModular(m)
	if err != nil {
		return nil, fmt.Errorf("Ideal.Mul: %s", err.Error())
	}
	return &Ideal{ord: I.ord, basis: h, min: m}, nil
}
