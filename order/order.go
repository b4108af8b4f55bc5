// Copyright (c) 2026 Ben Lorenz

// Package order implements the data model of the maximal-order engine:
// orders of a number field as full-rank modules with cached invariants,
// fractional ideals as modules over an order, the p-radical computation,
// the ring of multipliers, and the Dedekind criterion for equation
// orders.
//
// Orders are persistent values: every enlargement produces a new Order
// and never mutates a previous one, so the same Order may safely be
// referenced from multiple call sites. Lazily cached invariants
// (discriminant, basis inverse) are not synchronized; callers sharing an
// Order across goroutines should precompute them first.
package order

import (
	"errors"
	"fmt"
	"math/big"
	"sort"

	"github.com/benlorenz/hecke/intmatrix"
	"github.com/benlorenz/hecke/numfield"
)

// CheckRing enables ring-closure validation of every constructed order.
// The check is quadratic in the degree and is meant for debugging only.
var CheckRing = false

var (
	// ErrNotARing reports that a candidate basis failed the ring-closure
	// check. It detects programming bugs, not user errors.
	ErrNotARing = errors.New("order: basis does not define a ring")

	// ErrInvariant reports that an exact division guaranteed by the
	// algebra was not exact. It detects programming bugs upstream.
	ErrInvariant = errors.New("order: internal exact-arithmetic invariant violated")
)

var (
	bigOne = big.NewInt(1)
	bigTwo = big.NewInt(2)
)

// Order is an order of a number field: a full-rank subring represented by
// a basis matrix over the power basis, with a common positive denominator.
// The basis matrix is kept in Hermite normal form, making Equal a
// structural comparison.
type Order struct {
	fld   *numfield.NumberField
	basis *intmatrix.Matrix // n x n over Z, in HNF
	den   *big.Int          // positive

	disc  *big.Int // cached discriminant, nil until computed
	index *big.Int // cached index in the equation order, nil until computed

	primesMax []*big.Int // sorted primes at which the order is known maximal
	isMaximal bool

	invNum *intmatrix.Matrix // cached basis inverse numerator
	invDen *big.Int          // cached basis inverse denominator
}

// NewEquationOrder returns the order Z[x] / (f) with the power basis.
func NewEquationOrder(fld *numfield.NumberField) (*Order, error) {
	id, err := intmatrix.NewIdentity(fld.Degree())
	if err != nil {
		return nil, fmt.Errorf("NewEquationOrder: %s", err.Error())
	}
	return &Order{fld: fld, basis: id, den: big.NewInt(1)}, nil
}

// NewOrder returns the order with the provided basis matrix and positive
// denominator over the power basis. The basis is canonicalized to HNF with
// the content divided out. Under CheckRing, closure under multiplication
// and membership of 1 are verified.
func NewOrder(fld *numfield.NumberField, basis *intmatrix.Matrix, den *big.Int) (*Order, error) {
	o, err := newOrderNoCheck(fld, basis, den)
	if err != nil {
		return nil, err
	}
	if CheckRing {
		if err := o.checkRing(); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func newOrderNoCheck(fld *numfield.NumberField, basis *intmatrix.Matrix, den *big.Int) (*Order, error) {
	n := fld.Degree()
	if r, c := basis.Dimensions(); r != n || c != n {
		return nil, fmt.Errorf("NewOrder: basis is %d x %d for a degree %d field", r, c, n)
	}
	if den.Sign() <= 0 {
		return nil, fmt.Errorf("NewOrder: denominator %v is not positive", den)
	}
	h, err := basis.HNF()
	if err != nil {
		return nil, fmt.Errorf("NewOrder: could not normalize the basis: %s", err.Error())
	}
	d := new(big.Int).Set(den)
	g := new(big.Int).GCD(nil, nil, h.Content(), d)
	if g.Cmp(bigOne) > 0 {
		h, err = h.DivExact(g)
		if err != nil {
			return nil, fmt.Errorf("NewOrder: %s", err.Error())
		}
		d.Quo(d, g)
	}
	return &Order{fld: fld, basis: h, den: d}, nil
}

// checkRing verifies that the basis contains 1 and is closed under
// multiplication.
func (o *Order) checkRing() error {
	if _, err := o.IntegerCoords(o.fld.One()); err != nil {
		return fmt.Errorf("order %v does not contain 1: %w", o.basis, ErrNotARing)
	}
	elems, err := o.BasisElems()
	if err != nil {
		return err
	}
	for i := range elems {
		for j := i; j < len(elems); j++ {
			prod, err := elems[i].Mul(elems[j])
			if err != nil {
				return fmt.Errorf("Order.checkRing: %s", err.Error())
			}
			if _, err := o.IntegerCoords(prod); err != nil {
				return fmt.Errorf(
					"product of basis elements %d and %d escapes the module: %w",
					i, j, ErrNotARing,
				)
			}
		}
	}
	return nil
}

// Field returns the number field the order lives in.
func (o *Order) Field() *numfield.NumberField {
	return o.fld
}

// Degree returns the degree of the ambient field.
func (o *Order) Degree() int {
	return o.fld.Degree()
}

// BasisMatrix returns the basis matrix in HNF. This is not a deep copy.
func (o *Order) BasisMatrix() *intmatrix.Matrix {
	return o.basis
}

// Denominator returns the common denominator of the basis. This is not a
// deep copy.
func (o *Order) Denominator() *big.Int {
	return o.den
}

// IsEquationOrder reports whether the order is the equation order.
func (o *Order) IsEquationOrder() bool {
	if o.den.Cmp(bigOne) != 0 {
		return false
	}
	id, err := intmatrix.NewIdentity(o.fld.Degree())
	if err != nil {
		return false
	}
	return o.basis.Equals(id)
}

// Equal reports whether o and x are the same order of the same field.
// Fields are compared structurally, by defining polynomial.
func (o *Order) Equal(x *Order) bool {
	return o.fld.Equal(x.fld) && o.den.Cmp(x.den) == 0 && o.basis.Equals(x.basis)
}

// BasisElem returns the i-th basis element as a field element.
func (o *Order) BasisElem(i int) (*numfield.Elem, error) {
	row, err := o.basis.Row(i)
	if err != nil {
		return nil, fmt.Errorf("Order.BasisElem: %s", err.Error())
	}
	return o.fld.ElemFromIntVec(row, o.den)
}

// BasisElems returns all basis elements as field elements.
func (o *Order) BasisElems() ([]*numfield.Elem, error) {
	n := o.fld.Degree()
	elems := make([]*numfield.Elem, n)
	for i := 0; i < n; i++ {
		e, err := o.BasisElem(i)
		if err != nil {
			return nil, err
		}
		elems[i] = e
	}
	return elems, nil
}

// ElemFromCoords returns the field element with the provided integer
// coordinates with respect to the order basis.
func (o *Order) ElemFromCoords(coords []*big.Int) (*numfield.Elem, error) {
	n := o.fld.Degree()
	if len(coords) != n {
		return nil, fmt.Errorf(
			"Order.ElemFromCoords: %d coordinates for a degree %d field", len(coords), n,
		)
	}
	num := make([]*big.Int, n)
	t := new(big.Int)
	for j := 0; j < n; j++ {
		num[j] = new(big.Int)
		for i := 0; i < n; i++ {
			b, err := o.basis.Get(i, j)
			if err != nil {
				return nil, err
			}
			num[j].Add(num[j], t.Mul(coords[i], b))
		}
	}
	return o.fld.ElemFromIntVec(num, o.den)
}

// basisInv returns the cached exact inverse of the basis matrix.
func (o *Order) basisInv() (*intmatrix.Matrix, *big.Int, error) {
	if o.invNum == nil {
		num, den, err := o.basis.InverseRat()
		if err != nil {
			return nil, nil, fmt.Errorf("Order.basisInv: %s", err.Error())
		}
		o.invNum, o.invDen = num, den
	}
	return o.invNum, o.invDen, nil
}

// CoordsRat returns the rational coordinates of e with respect to the
// order basis.
func (o *Order) CoordsRat(e *numfield.Elem) ([]*big.Rat, error) {
	if !e.Field().Equal(o.fld) {
		return nil, fmt.Errorf("Order.CoordsRat: element of a different field")
	}
	invNum, invDen, err := o.basisInv()
	if err != nil {
		return nil, err
	}
	n := o.fld.Degree()
	pow := e.Coords()
	// coords = pow * basis^{-1} = pow * invNum * (den / invDen)
	scale := new(big.Rat).SetFrac(o.den, invDen)
	coords := make([]*big.Rat, n)
	t := new(big.Rat)
	for j := 0; j < n; j++ {
		c := new(big.Rat)
		for i := 0; i < n; i++ {
			m, err := invNum.Get(i, j)
			if err != nil {
				return nil, err
			}
			if pow[i].Sign() == 0 || m.Sign() == 0 {
				continue
			}
			c.Add(c, t.Mul(pow[i], new(big.Rat).SetInt(m)))
		}
		coords[j] = c.Mul(c, scale)
	}
	return coords, nil
}

// IntegerCoords returns the coordinates of e with respect to the order
// basis, or an error when e is not in the order.
func (o *Order) IntegerCoords(e *numfield.Elem) ([]*big.Int, error) {
	coords, err := o.CoordsRat(e)
	if err != nil {
		return nil, err
	}
	out := make([]*big.Int, len(coords))
	for i, c := range coords {
		if !c.IsInt() {
			return nil, fmt.Errorf(
				"Order.IntegerCoords: coordinate %d = %v is not integral", i, c,
			)
		}
		out[i] = new(big.Int).Set(c.Num())
	}
	return out, nil
}

// Contains reports whether e lies in the order.
func (o *Order) Contains(e *numfield.Elem) bool {
	_, err := o.IntegerCoords(e)
	return err == nil
}

// RepresentationMatrix returns the matrix of left multiplication by e with
// respect to the order basis: row i holds the coordinates of b_i * e. The
// entries must be integral, which holds whenever e * O is contained in O.
func (o *Order) RepresentationMatrix(e *numfield.Elem) (*intmatrix.Matrix, error) {
	n := o.fld.Degree()
	m, err := intmatrix.New(n, n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		bi, err := o.BasisElem(i)
		if err != nil {
			return nil, err
		}
		prod, err := bi.Mul(e)
		if err != nil {
			return nil, fmt.Errorf("Order.RepresentationMatrix: %s", err.Error())
		}
		coords, err := o.IntegerCoords(prod)
		if err != nil {
			return nil, fmt.Errorf(
				"Order.RepresentationMatrix: row %d is not integral: %s", i, err.Error(),
			)
		}
		for j := 0; j < n; j++ {
			if err := m.Set(i, j, coords[j]); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// TraceMatrix returns the matrix of traces of pairwise products of basis
// elements. Its entries are integers for any order.
func (o *Order) TraceMatrix() (*intmatrix.Matrix, error) {
	n := o.fld.Degree()
	elems, err := o.BasisElems()
	if err != nil {
		return nil, err
	}
	m, err := intmatrix.New(n, n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			prod, err := elems[i].Mul(elems[j])
			if err != nil {
				return nil, fmt.Errorf("Order.TraceMatrix: %s", err.Error())
			}
			tr, err := prod.Trace()
			if err != nil {
				return nil, fmt.Errorf("Order.TraceMatrix: %s", err.Error())
			}
			if !tr.IsInt() {
				return nil, fmt.Errorf(
					"trace of basis product (%d, %d) = %v is not integral: %w",
					i, j, tr, ErrInvariant,
				)
			}
			v := new(big.Int).Set(tr.Num())
			if err := m.Set(i, j, v); err != nil {
				return nil, err
			}
			if err := m.Set(j, i, v); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// Discriminant returns the discriminant of the order, the determinant of
// its trace matrix. The value is cached.
func (o *Order) Discriminant() (*big.Int, error) {
	if o.disc != nil {
		return o.disc, nil
	}
	t, err := o.TraceMatrix()
	if err != nil {
		return nil, err
	}
	d, err := t.Det()
	if err != nil {
		return nil, err
	}
	if d.Sign() == 0 {
		return nil, fmt.Errorf("discriminant of order %v is zero: %w", o.basis, ErrInvariant)
	}
	o.disc = d
	return d, nil
}

// Index returns the index of the equation order in o, which must contain
// the equation order. The value is cached.
func (o *Order) Index() (*big.Int, error) {
	if o.index != nil {
		return o.index, nil
	}
	det, err := o.basis.DiagProduct()
	if err != nil {
		return nil, err
	}
	denPow := new(big.Int).Exp(o.den, big.NewInt(int64(o.fld.Degree())), nil)
	idx, rem := new(big.Int).QuoRem(denPow, det, new(big.Int))
	if rem.Sign() != 0 {
		return nil, fmt.Errorf(
			"Order.Index: order does not contain the equation order (den^n = %v, det = %v)",
			denPow, det,
		)
	}
	o.index = idx
	return idx, nil
}

// Sum returns the smallest module containing both orders, which is an
// order whenever the two have coprime indices over a common suborder. The
// primes of maximality of both arguments are merged into the result.
func (o *Order) Sum(x *Order) (*Order, error) {
	if !o.fld.Equal(x.fld) {
		return nil, fmt.Errorf("Order.Sum: orders of different fields")
	}
	if o.Equal(x) {
		merged := mergePrimes(o.primesMax, x.primesMax)
		if len(merged) == len(o.primesMax) {
			return o, nil
		}
		c := o.shallowCopy()
		c.primesMax = merged
		return c, nil
	}
	l := lcm(o.den, x.den)
	a := o.basis.ScaleInt(new(big.Int).Quo(l, o.den))
	b := x.basis.ScaleInt(new(big.Int).Quo(l, x.den))
	stacked, err := intmatrix.Stack(a, b)
	if err != nil {
		return nil, fmt.Errorf("Order.Sum: %s", err.Error())
	}
	sum, err := NewOrder(o.fld, stacked2HNF(stacked), l)
	if err != nil {
		return nil, fmt.Errorf("Order.Sum: %s", err.Error())
	}
	sum.primesMax = mergePrimes(o.primesMax, x.primesMax)
	return sum, nil
}

// stacked2HNF reduces a stacked basis to a square block; errors are
// deferred to NewOrder, which re-normalizes.
func stacked2HNF(stacked *intmatrix.Matrix) *intmatrix.Matrix {
	h, err := stacked.HNF()
	if err != nil {
		return stacked
	}
	return h
}

// KnownPMaximal reports whether p is recorded as a prime of maximality.
func (o *Order) KnownPMaximal(p *big.Int) bool {
	i := sort.Search(len(o.primesMax), func(i int) bool {
		return o.primesMax[i].Cmp(p) >= 0
	})
	return i < len(o.primesMax) && o.primesMax[i].Cmp(p) == 0
}

// PrimesOfMaximality returns a copy of the recorded primes of maximality.
func (o *Order) PrimesOfMaximality() []*big.Int {
	out := make([]*big.Int, len(o.primesMax))
	for i, p := range o.primesMax {
		out[i] = new(big.Int).Set(p)
	}
	return out
}

// WithPrimeOfMaximality returns a copy of o with p recorded as a prime of
// maximality. The receiver is unchanged.
func (o *Order) WithPrimeOfMaximality(p *big.Int) *Order {
	if o.KnownPMaximal(p) {
		return o
	}
	c := o.shallowCopy()
	c.primesMax = mergePrimes(o.primesMax, []*big.Int{new(big.Int).Set(p)})
	return c
}

// MarkMaximal returns a copy of o flagged as the maximal order, with the
// discriminant, index and basis inverse precomputed so the shared cached
// value has no remaining lazy state.
func (o *Order) MarkMaximal() (*Order, error) {
	if _, err := o.Discriminant(); err != nil {
		return nil, err
	}
	if _, err := o.Index(); err != nil {
		return nil, err
	}
	if _, _, err := o.basisInv(); err != nil {
		return nil, err
	}
	c := o.shallowCopy()
	c.isMaximal = true
	return c, nil
}

// IsMaximal reports whether the order has been certified maximal. False
// means unknown, not non-maximal.
func (o *Order) IsMaximal() bool {
	return o.isMaximal
}

func (o *Order) shallowCopy() *Order {
	return &Order{
		fld:       o.fld,
		basis:     o.basis,
		den:       o.den,
		disc:      o.disc,
		index:     o.index,
		primesMax: o.primesMax,
		isMaximal: o.isMaximal,
		invNum:    o.invNum,
		invDen:    o.invDen,
	}
}

func (o *Order) String() string {
	return fmt.Sprintf("order of %v with basis (denominator %v)\n%v", o.fld, o.den, o.basis)
}

func mergePrimes(a, b []*big.Int) []*big.Int {
	merged := make([]*big.Int, 0, len(a)+len(b))
	merged = append(merged, a...)
	for _, p := range b {
		found := false
		for _, q := range a {
			if q.Cmp(p) == 0 {
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, p)
		}
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Cmp(merged[j]) < 0 })
	return merged
}

func lcm(a, b *big.Int) *big.Int {
	g := new(big.Int).GCD(nil, nil, a, b)
	l := new(big.Int).Quo(a, g)
	return l.Mul(l, b)
}
