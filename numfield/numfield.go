// Copyright (c) 2026 Ben Lorenz

// Package numfield models a number field Q[x]/(f) for a monic integral
// polynomial f, with elements represented by rational coordinate vectors
// over the power basis 1, x, ..., x^(n-1).
//
// Irreducibility of the defining polynomial is a caller contract and is
// not verified.
package numfield

import (
	"fmt"
	"math/big"
	"strings"
)

// NumberField is a number field of degree n, defined by a monic integral
// polynomial with coefficients stored in ascending order.
type NumberField struct {
	coeffs []*big.Int // length degree+1, coeffs[degree] == 1
	degree int
}

// New returns the number field defined by the monic polynomial with the
// provided ascending coefficients. The polynomial must have degree at
// least 1 and leading coefficient 1.
func New(coeffs []*big.Int) (*NumberField, error) {
	if len(coeffs) < 2 {
		return nil, fmt.Errorf("NumberField.New: defining polynomial must have degree >= 1")
	}
	if coeffs[len(coeffs)-1].Cmp(big.NewInt(1)) != 0 {
		return nil, fmt.Errorf(
			"NumberField.New: defining polynomial is not monic (leading coefficient %v)",
			coeffs[len(coeffs)-1],
		)
	}
	c := make([]*big.Int, len(coeffs))
	for i, v := range coeffs {
		c[i] = new(big.Int).Set(v)
	}
	return &NumberField{coeffs: c, degree: len(coeffs) - 1}, nil
}

// NewFromInt64 returns the number field defined by the monic polynomial
// with the provided ascending int64 coefficients.
func NewFromInt64(coeffs []int64) (*NumberField, error) {
	c := make([]*big.Int, len(coeffs))
	for i, v := range coeffs {
		c[i] = big.NewInt(v)
	}
	return New(c)
}

// Degree returns the degree of the field over the rationals.
func (k *NumberField) Degree() int {
	return k.degree
}

// Equal reports whether k and x are defined by the same polynomial.
// Structurally equal fields are interchangeable even when they are
// distinct values.
func (k *NumberField) Equal(x *NumberField) bool {
	if k == x {
		return true
	}
	if k.degree != x.degree {
		return false
	}
	for i, c := range k.coeffs {
		if c.Cmp(x.coeffs[i]) != 0 {
			return false
		}
	}
	return true
}

// DefiningPolynomial returns a deep copy of the ascending coefficients of
// the defining polynomial.
func (k *NumberField) DefiningPolynomial() []*big.Int {
	c := make([]*big.Int, len(k.coeffs))
	for i, v := range k.coeffs {
		c[i] = new(big.Int).Set(v)
	}
	return c
}

// String renders the defining polynomial with x as the variable.
func (k *NumberField) String() string {
	var sb strings.Builder
	sb.WriteString("Q[x]/(")
	first := true
	for d := k.degree; d >= 0; d-- {
		c := k.coeffs[d]
		if c.Sign() == 0 {
			continue
		}
		if !first && c.Sign() > 0 {
			sb.WriteString("+")
		}
		if d == 0 {
			sb.WriteString(c.String())
		} else if c.Cmp(big.NewInt(1)) == 0 {
			sb.WriteString(fmt.Sprintf("x^%d", d))
		} else if c.Cmp(big.NewInt(-1)) == 0 {
			sb.WriteString(fmt.Sprintf("-x^%d", d))
		} else {
			sb.WriteString(fmt.Sprintf("%v*x^%d", c, d))
		}
		first = false
	}
	sb.WriteString(")")
	return sb.String()
}

// Elem is an element of a number field, as rational coordinates over the
// power basis.
type Elem struct {
	fld    *NumberField
	coords []*big.Rat
}

// Zero returns the zero element of k.
func (k *NumberField) Zero() *Elem {
	coords := make([]*big.Rat, k.degree)
	for i := range coords {
		coords[i] = new(big.Rat)
	}
	return &Elem{fld: k, coords: coords}
}

// One returns the unit element of k.
func (k *NumberField) One() *Elem {
	e := k.Zero()
	e.coords[0].SetInt64(1)
	return e
}

// Gen returns the image of x in k.
func (k *NumberField) Gen() *Elem {
	e := k.Zero()
	if k.degree == 1 {
		// x is congruent to -coeffs[0] modulo a linear polynomial.
		e.coords[0].SetInt(new(big.Int).Neg(k.coeffs[0]))
		return e
	}
	e.coords[1].SetInt64(1)
	return e
}

// ElemFromRat returns the element of k with the provided power-basis
// coordinates. The coordinate count must equal the degree of k.
func (k *NumberField) ElemFromRat(coords []*big.Rat) (*Elem, error) {
	if len(coords) != k.degree {
		return nil, fmt.Errorf(
			"NumberField.ElemFromRat: %d coordinates for a degree %d field",
			len(coords), k.degree,
		)
	}
	e := k.Zero()
	for i, c := range coords {
		e.coords[i].Set(c)
	}
	return e, nil
}

// ElemFromIntVec returns the element with integer numerator coordinates
// over a common positive denominator.
func (k *NumberField) ElemFromIntVec(num []*big.Int, den *big.Int) (*Elem, error) {
	if len(num) != k.degree {
		return nil, fmt.Errorf(
			"NumberField.ElemFromIntVec: %d coordinates for a degree %d field",
			len(num), k.degree,
		)
	}
	if den.Sign() == 0 {
		return nil, fmt.Errorf("NumberField.ElemFromIntVec: zero denominator")
	}
	e := k.Zero()
	for i, c := range num {
		e.coords[i].SetFrac(c, den)
	}
	return e, nil
}

// Field returns the number field e belongs to.
func (e *Elem) Field() *NumberField {
	return e.fld
}

// Coords returns a deep copy of the power-basis coordinates of e.
func (e *Elem) Coords() []*big.Rat {
	c := make([]*big.Rat, len(e.coords))
	for i, v := range e.coords {
		c[i] = new(big.Rat).Set(v)
	}
	return c
}

// IntegerCoords returns the power-basis coordinates of e as integers. An
// error is returned if any coordinate is not integral.
func (e *Elem) IntegerCoords() ([]*big.Int, error) {
	c := make([]*big.Int, len(e.coords))
	for i, v := range e.coords {
		if !v.IsInt() {
			return nil, fmt.Errorf(
				"Elem.IntegerCoords: coordinate %d = %v is not an integer", i, v,
			)
		}
		c[i] = new(big.Int).Set(v.Num())
	}
	return c, nil
}

// IsZero reports whether e is the zero element.
func (e *Elem) IsZero() bool {
	for _, v := range e.coords {
		if v.Sign() != 0 {
			return false
		}
	}
	return true
}

// Equal reports whether e and x are the same element of the same field.
func (e *Elem) Equal(x *Elem) bool {
	if !e.fld.Equal(x.fld) {
		return false
	}
	for i, v := range e.coords {
		if v.Cmp(x.coords[i]) != 0 {
			return false
		}
	}
	return true
}

// Add returns e + x.
func (e *Elem) Add(x *Elem) (*Elem, error) {
	if !e.fld.Equal(x.fld) {
		return nil, fmt.Errorf("Elem.Add: mismatched fields")
	}
	r := e.fld.Zero()
	for i := range r.coords {
		r.coords[i].Add(e.coords[i], x.coords[i])
	}
	return r, nil
}

// Sub returns e - x.
func (e *Elem) Sub(x *Elem) (*Elem, error) {
	if !e.fld.Equal(x.fld) {
		return nil, fmt.Errorf("Elem.Sub: mismatched fields")
	}
	r := e.fld.Zero()
	for i := range r.coords {
		r.coords[i].Sub(e.coords[i], x.coords[i])
	}
	return r, nil
}

// ScaleRat returns c * e.
func (e *Elem) ScaleRat(c *big.Rat) *Elem {
	r := e.fld.Zero()
	for i := range r.coords {
		r.coords[i].Mul(e.coords[i], c)
	}
	return r
}

// Mul returns e * x, the polynomial product reduced modulo the defining
// polynomial.
func (e *Elem) Mul(x *Elem) (*Elem, error) {
	if !e.fld.Equal(x.fld) {
		return nil, fmt.Errorf("Elem.Mul: mismatched fields")
	}
	n := e.fld.degree
	prod := make([]*big.Rat, 2*n-1)
	for i := range prod {
		prod[i] = new(big.Rat)
	}
	t := new(big.Rat)
	for i := 0; i < n; i++ {
		if e.coords[i].Sign() == 0 {
			continue
		}
		for j := 0; j < n; j++ {
			if x.coords[j].Sign() == 0 {
				continue
			}
			prod[i+j].Add(prod[i+j], t.Mul(e.coords[i], x.coords[j]))
		}
	}
	// Reduce modulo the monic defining polynomial: x^n = -sum f_j x^j.
	fj := new(big.Rat)
	for d := 2*n - 2; d >= n; d-- {
		c := prod[d]
		if c.Sign() == 0 {
			continue
		}
		for j := 0; j < n; j++ {
			if e.fld.coeffs[j].Sign() == 0 {
				continue
			}
			fj.SetInt(e.fld.coeffs[j])
			prod[d-n+j].Sub(prod[d-n+j], t.Mul(c, fj))
		}
		c.SetInt64(0)
	}
	r := e.fld.Zero()
	for i := 0; i < n; i++ {
		r.coords[i].Set(prod[i])
	}
	return r, nil
}

// RepMatrix returns the n x n rational matrix of left multiplication by e
// over the power basis: row i holds the coordinates of x^i * e.
func (e *Elem) RepMatrix() ([][]*big.Rat, error) {
	n := e.fld.degree
	rows := make([][]*big.Rat, n)
	cur := e
	var err error
	gen := e.fld.Gen()
	for i := 0; i < n; i++ {
		rows[i] = cur.Coords()
		if i+1 < n {
			cur, err = cur.Mul(gen)
			if err != nil {
				return nil, fmt.Errorf("Elem.RepMatrix: could not multiply by the generator: %s", err.Error())
			}
		}
	}
	return rows, nil
}

// Trace returns the trace of e, the trace of its representation matrix.
func (e *Elem) Trace() (*big.Rat, error) {
	rows, err := e.RepMatrix()
	if err != nil {
		return nil, fmt.Errorf("Elem.Trace: %s", err.Error())
	}
	tr := new(big.Rat)
	for i := range rows {
		tr.Add(tr, rows[i][i])
	}
	return tr, nil
}

// String renders e as a polynomial in x.
func (e *Elem) String() string {
	var sb strings.Builder
	first := true
	for d := len(e.coords) - 1; d >= 0; d-- {
		c := e.coords[d]
		if c.Sign() == 0 {
			continue
		}
		if !first && c.Sign() > 0 {
			sb.WriteString("+")
		}
		if d == 0 {
			sb.WriteString(c.RatString())
		} else {
			sb.WriteString(fmt.Sprintf("%s*x^%d", c.RatString(), d))
		}
		first = false
	}
	if first {
		return "0"
	}
	return sb.String()
}
