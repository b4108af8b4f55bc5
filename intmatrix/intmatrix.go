// Copyright (c) 2026 Ben Lorenz

// Package intmatrix represents dense matrices with math/big integers in
// them, together with the exact normal-form computations (Hermite normal
// form, modular kernels, rational inverses) that the order arithmetic is
// built on.
package intmatrix

import (
	"fmt"
	"math/big"
	"strings"
)

type Matrix struct {
	values  []*big.Int
	numRows int
	numCols int
}

// New returns a numRows x numCols matrix with 0s in each value. If the
// number of rows or columns is not positive, an error is returned.
func New(numRows int, numCols int) (*Matrix, error) {
	if numRows <= 0 || numCols <= 0 {
		return nil, fmt.Errorf(
			"Matrix.New: illegal number of rows %d or columns %d", numRows, numCols,
		)
	}
	retVal := &Matrix{
		values:  make([]*big.Int, numRows*numCols),
		numRows: numRows,
		numCols: numCols,
	}
	for i := range retVal.values {
		retVal.values[i] = big.NewInt(0)
	}
	return retVal, nil
}

// NewFromInt64Array creates a matrix from input with dimensions
// numRowsIn x numColsIn. If the dimensions are not positive and/or do not
// match the length of the input, an error is returned.
func NewFromInt64Array(input []int64, numRowsIn int, numColsIn int) (*Matrix, error) {
	if len(input) != numRowsIn*numColsIn {
		return nil, fmt.Errorf("Matrix.NewFromInt64Array: length of input does not match dimensions")
	}
	retVal, err := New(numRowsIn, numColsIn)
	if err != nil {
		return nil, err
	}
	for index, value := range input {
		retVal.values[index] = big.NewInt(value)
	}
	return retVal, nil
}

// NewIdentity returns a dim x dim identity matrix. If dim < 1, an error
// is returned.
func NewIdentity(dim int) (*Matrix, error) {
	return NewScalar(dim, big.NewInt(1))
}

// NewScalar returns a dim x dim matrix with c on the diagonal. If dim < 1,
// an error is returned.
func NewScalar(dim int, c *big.Int) (*Matrix, error) {
	retVal, err := New(dim, dim)
	if err != nil {
		return nil, fmt.Errorf("Matrix.NewScalar: dimension %d < 1", dim)
	}
	for i := 0; i < dim; i++ {
		retVal.values[i*dim+i].Set(c)
	}
	return retVal, nil
}

// Stack returns the vertical concatenation of the provided matrices, which
// must all have the same number of columns.
func Stack(blocks ...*Matrix) (*Matrix, error) {
	if len(blocks) == 0 {
		return nil, fmt.Errorf("Matrix.Stack: no matrices to stack")
	}
	numCols := blocks[0].numCols
	numRows := 0
	for _, b := range blocks {
		if b.numCols != numCols {
			return nil, fmt.Errorf(
				"Matrix.Stack: mismatched column counts %d and %d", numCols, b.numCols,
			)
		}
		numRows += b.numRows
	}
	retVal, err := New(numRows, numCols)
	if err != nil {
		return nil, err
	}
	offset := 0
	for _, b := range blocks {
		for i, v := range b.values {
			retVal.values[offset+i].Set(v)
		}
		offset += len(b.values)
	}
	return retVal, nil
}

// Copy returns a deep copy of m.
func (m *Matrix) Copy() *Matrix {
	retVal := &Matrix{
		values:  make([]*big.Int, len(m.values)),
		numRows: m.numRows,
		numCols: m.numCols,
	}
	for i, v := range m.values {
		retVal.values[i] = new(big.Int).Set(v)
	}
	return retVal
}

// Set sets the value in row i, column j to x. This is a deep copy.
func (m *Matrix) Set(i int, j int, x *big.Int) error {
	if i < 0 || m.numRows <= i {
		return fmt.Errorf("Matrix.Set: index i = %d outside range {0, ... %d}", i, m.numRows-1)
	}
	if j < 0 || m.numCols <= j {
		return fmt.Errorf("Matrix.Set: index j = %d outside range {0, ... %d}", j, m.numCols-1)
	}
	m.values[i*m.numCols+j].Set(x)
	return nil
}

// Get returns the pointer to the value in row i, column j of m. This is
// not a deep copy.
func (m *Matrix) Get(i int, j int) (*big.Int, error) {
	if i < 0 || m.numRows <= i {
		return nil, fmt.Errorf("Matrix.Get: index i = %d outside range {0, ... %d}", i, m.numRows-1)
	}
	if j < 0 || m.numCols <= j {
		return nil, fmt.Errorf("Matrix.Get: index j = %d outside range {0, ... %d}", j, m.numCols-1)
	}
	return m.values[i*m.numCols+j], nil
}

// at returns the entry in row i, column j without bounds checking.
func (m *Matrix) at(i, j int) *big.Int {
	return m.values[i*m.numCols+j]
}

// Mul returns the matrix product xy. If the dimensions of x and y do not
// match, an error is returned.
func Mul(x *Matrix, y *Matrix) (*Matrix, error) {
	if x.numCols != y.numRows {
		return nil, fmt.Errorf(
			"Matrix.Mul: mismatched dimensions for operands x (%d x %d) and y (%d x %d)",
			x.numRows, x.numCols, y.numRows, y.numCols,
		)
	}
	retVal, err := New(x.numRows, y.numCols)
	if err != nil {
		return nil, err
	}
	t := new(big.Int)
	for i := 0; i < x.numRows; i++ {
		for j := 0; j < y.numCols; j++ {
			entry := retVal.values[i*y.numCols+j]
			for k := 0; k < x.numCols; k++ {
				entry.Add(entry, t.Mul(x.at(i, k), y.at(k, j)))
			}
		}
	}
	return retVal, nil
}

// Transpose returns the transpose of m.
func (m *Matrix) Transpose() *Matrix {
	retVal := &Matrix{
		values:  make([]*big.Int, len(m.values)),
		numRows: m.numCols,
		numCols: m.numRows,
	}
	for i := 0; i < m.numRows; i++ {
		for j := 0; j < m.numCols; j++ {
			retVal.values[j*m.numRows+i] = new(big.Int).Set(m.at(i, j))
		}
	}
	return retVal
}

// ScaleInt returns c*m.
func (m *Matrix) ScaleInt(c *big.Int) *Matrix {
	retVal := m.Copy()
	for _, v := range retVal.values {
		v.Mul(v, c)
	}
	return retVal
}

// DivExact divides every entry of m by d, returning an error if any entry
// is not divisible. d must be nonzero.
func (m *Matrix) DivExact(d *big.Int) (*Matrix, error) {
	if d.Sign() == 0 {
		return nil, fmt.Errorf("Matrix.DivExact: division by zero")
	}
	retVal := m.Copy()
	r := new(big.Int)
	for i, v := range retVal.values {
		quo, rem := v.QuoRem(v, d, r)
		if rem.Sign() != 0 {
			return nil, fmt.Errorf(
				"Matrix.DivExact: entry %d = %v is not divisible by %v",
				i, m.values[i], d,
			)
		}
		v.Set(quo)
	}
	return retVal, nil
}

// Mod returns a copy of m with every entry reduced into {0, ..., q-1}.
func (m *Matrix) Mod(q *big.Int) *Matrix {
	retVal := m.Copy()
	for _, v := range retVal.values {
		v.Mod(v, q)
	}
	return retVal
}

// Content returns the gcd of all entries of m, or zero for a zero matrix.
func (m *Matrix) Content() *big.Int {
	g := new(big.Int)
	for _, v := range m.values {
		g.GCD(nil, nil, g, new(big.Int).Abs(v))
	}
	return g
}

// IsZero reports whether every entry of m is zero.
func (m *Matrix) IsZero() bool {
	for _, v := range m.values {
		if v.Sign() != 0 {
			return false
		}
	}
	return true
}

// Equals returns whether m and x have the same dimensions and identical
// entries.
func (m *Matrix) Equals(x *Matrix) bool {
	if m.numRows != x.numRows || m.numCols != x.numCols {
		return false
	}
	for i, v := range m.values {
		if v.Cmp(x.values[i]) != 0 {
			return false
		}
	}
	return true
}

// Dimensions returns the number of rows and columns in m, in that order.
func (m *Matrix) Dimensions() (int, int) {
	return m.numRows, m.numCols
}

// NumRows returns the number of rows in m
func (m *Matrix) NumRows() int {
	return m.numRows
}

// NumCols returns the number of columns in m
func (m *Matrix) NumCols() int {
	return m.numCols
}

// Row returns a deep copy of row i of m.
func (m *Matrix) Row(i int) ([]*big.Int, error) {
	if i < 0 || m.numRows <= i {
		return nil, fmt.Errorf("Matrix.Row: index i = %d outside range {0, ... %d}", i, m.numRows-1)
	}
	retVal := make([]*big.Int, m.numCols)
	for j := 0; j < m.numCols; j++ {
		retVal[j] = new(big.Int).Set(m.at(i, j))
	}
	return retVal, nil
}

// String returns a string representing m with rows separated by newlines.
func (m *Matrix) String() string {
	var sb strings.Builder
	for i := 0; i < m.numRows; i++ {
		for j := 0; j < m.numCols; j++ {
			sb.WriteString(fmt.Sprintf("%v, ", m.at(i, j)))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
