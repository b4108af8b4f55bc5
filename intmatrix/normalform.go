// Copyright (c) 2026 Ben Lorenz

package intmatrix

import (
	"fmt"
	"math/big"
)

var (
	one = big.NewInt(1)
	two = big.NewInt(2)
)

// HNF returns the row-style Hermite normal form of m: the unique n x n
// upper-triangular basis of the row span of m with positive diagonal
// entries and entries above each pivot reduced into {0, ..., pivot-1}.
// m must have full column rank, or an error is returned.
func (m *Matrix) HNF() (*Matrix, error) {
	return m.hnf(nil, 0)
}

// HNFModular returns the Hermite normal form of the lattice spanned by the
// rows of m together with modulus * Z^n. It is valid as a normal form of
// the row span of m alone whenever modulus * Z^n is contained in it, and
// keeps intermediate entries reduced modulo the modulus.
func (m *Matrix) HNFModular(modulus *big.Int) (*Matrix, error) {
	if modulus.Sign() <= 0 {
		return nil, fmt.Errorf("Matrix.HNFModular: modulus %v is not positive", modulus)
	}
	scalar, err := NewScalar(m.numCols, modulus)
	if err != nil {
		return nil, fmt.Errorf("Matrix.HNFModular: %s", err.Error())
	}
	stacked, err := Stack(m, scalar)
	if err != nil {
		return nil, fmt.Errorf("Matrix.HNFModular: %s", err.Error())
	}
	return stacked.hnf(modulus, m.numRows)
}

// hnf runs the elimination. In modular mode, scalarStart is the index of
// the first row of the stacked modulus block: the row at scalarStart + k
// holds modulus * e_k and must stay untouched until column k is processed,
// since it is the only remaining witness that modulus * e_k lies in the
// lattice.
func (m *Matrix) hnf(modulus *big.Int, scalarStart int) (*Matrix, error) {
	n := m.numCols
	if m.numRows < n {
		return nil, fmt.Errorf(
			"Matrix.HNF: %d rows cannot have full column rank %d", m.numRows, n,
		)
	}
	w := m.Copy()
	g, u, v, t := new(big.Int), new(big.Int), new(big.Int), new(big.Int)
	for col := 0; col < n; col++ {
		// Eliminate the entries below row col in column col with
		// unimodular row combinations.
		for r := col + 1; r < w.numRows; r++ {
			b := w.at(r, col)
			if b.Sign() == 0 {
				continue
			}
			a := w.at(col, col)
			if a.Sign() == 0 {
				w.swapRows(col, r)
				continue
			}
			g.GCD(u, v, a, b)
			aOverG := new(big.Int).Quo(a, g)
			bOverG := new(big.Int).Quo(b, g)
			// The 2x2 block [[u, v], [-b/g, a/g]] has determinant 1 and
			// sends (a, b) to (g, 0).
			for k := col; k < n; k++ {
				top := w.at(col, k)
				bot := w.at(r, k)
				newTop := new(big.Int).Mul(u, top)
				newTop.Add(newTop, t.Mul(v, bot))
				newBot := new(big.Int).Mul(aOverG, bot)
				newBot.Sub(newBot, t.Mul(bOverG, top))
				top.Set(newTop)
				bot.Set(newBot)
			}
		}
		piv := w.at(col, col)
		if piv.Sign() == 0 {
			return nil, fmt.Errorf("Matrix.HNF: rank deficiency detected in column %d", col)
		}
		if piv.Sign() < 0 {
			for k := col; k < n; k++ {
				w.at(col, k).Neg(w.at(col, k))
			}
		}
		// Reduce the entries above the pivot into {0, ..., piv-1}.
		quo, rem := new(big.Int), new(big.Int)
		for r := 0; r < col; r++ {
			quo.DivMod(w.at(r, col), piv, rem)
			if quo.Sign() == 0 {
				continue
			}
			for k := col; k < n; k++ {
				w.at(r, k).Sub(w.at(r, k), t.Mul(quo, w.at(col, k)))
			}
		}
		// Adding multiples of modulus * e_k preserves the lattice, so the
		// unprocessed rows may be reduced to keep entries bounded. Scalar
		// rows for columns not yet processed are exempt: reducing them
		// would erase them outright.
		if modulus != nil {
			for r := col + 1; r < w.numRows; r++ {
				if r >= scalarStart && r-scalarStart > col {
					continue
				}
				for k := col; k < n; k++ {
					w.at(r, k).Mod(w.at(r, k), modulus)
				}
			}
		}
	}
	retVal, err := New(n, n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			retVal.at(i, j).Set(w.at(i, j))
		}
	}
	return retVal, nil
}

func (m *Matrix) swapRows(i, j int) {
	for k := 0; k < m.numCols; k++ {
		m.values[i*m.numCols+k], m.values[j*m.numCols+k] =
			m.values[j*m.numCols+k], m.values[i*m.numCols+k]
	}
}

// KernelMod returns a basis for the left kernel {v : v m = 0 mod q} of m
// modulo q, as the rows of the returned matrix (nil when the kernel is
// trivial). q need not be prime: when a column of the reduction has
// nonzero entries none of which is invertible mod q, elimination cannot
// proceed in Z/q and the gcd of such an entry with q, a proper divisor of
// q, is returned as the second value instead.
func (m *Matrix) KernelMod(q *big.Int) (*Matrix, *big.Int, error) {
	if q.Cmp(two) < 0 {
		return nil, nil, fmt.Errorf("Matrix.KernelMod: modulus %v < 2", q)
	}
	// The left kernel of m is the nullspace of its transpose.
	b := m.Transpose().Mod(q)
	rows, cols := b.numRows, b.numCols
	var pivotCols []int
	pivRow := 0
	g, t := new(big.Int), new(big.Int)
	for col := 0; col < cols && pivRow < rows; col++ {
		sel := -1
		var split *big.Int
		for r := pivRow; r < rows; r++ {
			e := b.at(r, col)
			if e.Sign() == 0 {
				continue
			}
			g.GCD(nil, nil, e, q)
			if g.Cmp(one) == 0 {
				sel = r
				break
			}
			if split == nil {
				// 1 < g <= e < q, so g is a proper divisor of q.
				split = new(big.Int).Set(g)
			}
		}
		if sel == -1 {
			if split != nil {
				return nil, split, nil
			}
			continue
		}
		b.swapRows(sel, pivRow)
		inv := new(big.Int).ModInverse(b.at(pivRow, col), q)
		for k := 0; k < cols; k++ {
			e := b.at(pivRow, k)
			e.Mod(e.Mul(e, inv), q)
		}
		for r := 0; r < rows; r++ {
			if r == pivRow {
				continue
			}
			e := new(big.Int).Set(b.at(r, col))
			if e.Sign() == 0 {
				continue
			}
			for k := 0; k < cols; k++ {
				v := b.at(r, k)
				v.Mod(v.Sub(v, t.Mul(e, b.at(pivRow, k))), q)
			}
		}
		pivotCols = append(pivotCols, col)
		pivRow++
	}
	isPivot := make([]bool, cols)
	for _, p := range pivotCols {
		isPivot[p] = true
	}
	numFree := cols - len(pivotCols)
	if numFree == 0 {
		return nil, nil, nil
	}
	kernel, err := New(numFree, cols)
	if err != nil {
		return nil, nil, err
	}
	idx := 0
	for f := 0; f < cols; f++ {
		if isPivot[f] {
			continue
		}
		kernel.at(idx, f).SetInt64(1)
		for i, p := range pivotCols {
			v := kernel.at(idx, p)
			v.Sub(q, b.at(i, f))
			v.Mod(v, q)
		}
		idx++
	}
	return kernel, nil, nil
}

// InverseRat returns the exact inverse of a nonsingular square integer
// matrix as a numerator matrix and a positive denominator, so that
// m * num = den * identity.
func (m *Matrix) InverseRat() (*Matrix, *big.Int, error) {
	n := m.numRows
	if n != m.numCols {
		return nil, nil, fmt.Errorf("Matrix.InverseRat: matrix is %d x %d, not square", m.numRows, m.numCols)
	}
	// Gauss-Jordan over the rationals on [m | identity].
	aug := make([][]*big.Rat, n)
	for i := 0; i < n; i++ {
		aug[i] = make([]*big.Rat, 2*n)
		for j := 0; j < n; j++ {
			aug[i][j] = new(big.Rat).SetInt(m.at(i, j))
			aug[i][n+j] = new(big.Rat)
		}
		aug[i][n+i] = new(big.Rat).SetInt64(1)
	}
	for col := 0; col < n; col++ {
		sel := -1
		for r := col; r < n; r++ {
			if aug[r][col].Sign() != 0 {
				sel = r
				break
			}
		}
		if sel == -1 {
			return nil, nil, fmt.Errorf("Matrix.InverseRat: matrix is singular")
		}
		aug[col], aug[sel] = aug[sel], aug[col]
		inv := new(big.Rat).Inv(aug[col][col])
		for k := 0; k < 2*n; k++ {
			aug[col][k].Mul(aug[col][k], inv)
		}
		for r := 0; r < n; r++ {
			if r == col || aug[r][col].Sign() == 0 {
				continue
			}
			factor := new(big.Rat).Set(aug[r][col])
			t := new(big.Rat)
			for k := 0; k < 2*n; k++ {
				aug[r][k].Sub(aug[r][k], t.Mul(factor, aug[col][k]))
			}
		}
	}
	den := big.NewInt(1)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			d := aug[i][n+j].Denom()
			g := new(big.Int).GCD(nil, nil, den, d)
			den.Mul(den, new(big.Int).Quo(d, g))
		}
	}
	num, err := New(n, n)
	if err != nil {
		return nil, nil, err
	}
	t := new(big.Int)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			e := num.at(i, j)
			e.Mul(aug[i][n+j].Num(), t.Quo(den, aug[i][n+j].Denom()))
		}
	}
	return num, den, nil
}

// Det returns the determinant of a square integer matrix, computed with
// the fraction-free Bareiss elimination.
func (m *Matrix) Det() (*big.Int, error) {
	n := m.numRows
	if n != m.numCols {
		return nil, fmt.Errorf("Matrix.Det: matrix is %d x %d, not square", m.numRows, m.numCols)
	}
	w := m.Copy()
	sign := 1
	prev := big.NewInt(1)
	t := new(big.Int)
	for k := 0; k < n-1; k++ {
		if w.at(k, k).Sign() == 0 {
			sel := -1
			for r := k + 1; r < n; r++ {
				if w.at(r, k).Sign() != 0 {
					sel = r
					break
				}
			}
			if sel == -1 {
				return big.NewInt(0), nil
			}
			w.swapRows(k, sel)
			sign = -sign
		}
		for i := k + 1; i < n; i++ {
			for j := k + 1; j < n; j++ {
				e := new(big.Int).Mul(w.at(i, j), w.at(k, k))
				e.Sub(e, t.Mul(w.at(i, k), w.at(k, j)))
				w.at(i, j).Quo(e, prev)
			}
			w.at(i, k).SetInt64(0)
		}
		prev = w.at(k, k)
	}
	det := new(big.Int).Set(w.at(n-1, n-1))
	if sign < 0 {
		det.Neg(det)
	}
	return det, nil
}

// DiagProductMod returns the product of the diagonal entries of a square
// matrix, reduced into {0, ..., q-1}.
func (m *Matrix) DiagProductMod(q *big.Int) (*big.Int, error) {
	if m.numRows != m.numCols {
		return nil, fmt.Errorf(
			"Matrix.DiagProductMod: matrix is %d x %d, not square", m.numRows, m.numCols,
		)
	}
	p := big.NewInt(1)
	for i := 0; i < m.numRows; i++ {
		p.Mul(p, m.at(i, i))
		p.Mod(p, q)
	}
	return p, nil
}

// DiagProduct returns the product of the diagonal entries of a square
// matrix.
func (m *Matrix) DiagProduct() (*big.Int, error) {
	if m.numRows != m.numCols {
		return nil, fmt.Errorf(
			"Matrix.DiagProduct: matrix is %d x %d, not square", m.numRows, m.numCols,
		)
	}
	p := big.NewInt(1)
	for i := 0; i < m.numRows; i++ {
		p.Mul(p, m.at(i, i))
	}
	return p, nil
}
