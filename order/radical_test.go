// Copyright (c) 2026 Ben Lorenz

package order

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benlorenz/hecke/intmatrix"
	"github.com/benlorenz/hecke/numfield"
)

func TestRadicalFrobeniusMethod(t *testing.T) {
	k := sqrt5Field(t)
	o, err := NewEquationOrder(k)
	require.NoError(t, err)

	// 2 <= degree, so the Frobenius kernel is used. The radical of 2*O in
	// Z[sqrt(5)] is the prime (2, 1 + sqrt(5)).
	rr, err := Radical(o, big.NewInt(2))
	require.NoError(t, err)
	require.Nil(t, rr.Split)
	require.NotNil(t, rr.Ideal)
	expected, err := intmatrix.NewFromInt64Array([]int64{1, 1, 0, 2}, 2, 2)
	require.NoError(t, err)
	assert.True(t, rr.Ideal.BasisMatrix().Equals(expected), "got\n%v", rr.Ideal.BasisMatrix())

	min, err := rr.Ideal.Min()
	require.NoError(t, err)
	assert.Equal(t, int64(2), min.Int64())
}

func TestRadicalTraceMethod(t *testing.T) {
	golden := goldenOrder(t)

	// 5 > degree, so the trace pairing is used. The radical of 5*O in the
	// maximal order of Q(sqrt(5)) is the ramified prime (sqrt(5)).
	rr, err := Radical(golden, big.NewInt(5))
	require.NoError(t, err)
	require.Nil(t, rr.Split)
	require.NotNil(t, rr.Ideal)
	assert.False(t, rr.Ideal.IsScalar(big.NewInt(5)))

	// The square of the radical is 5*O.
	sq, err := rr.Ideal.Mul(rr.Ideal)
	require.NoError(t, err)
	assert.True(t, sq.IsScalar(big.NewInt(5)))
}

func TestRadicalTrivial(t *testing.T) {
	golden := goldenOrder(t)

	// 3 is inert in Q(sqrt(5)): the radical of 3*O is 3*O itself.
	rr, err := Radical(golden, big.NewInt(3))
	require.NoError(t, err)
	require.Nil(t, rr.Split)
	require.NotNil(t, rr.Ideal)
	assert.True(t, rr.Ideal.IsScalar(big.NewInt(3)))

	_, err = Radical(golden, big.NewInt(1))
	assert.Error(t, err)
}

func TestRadicalSplitsComposite(t *testing.T) {
	// In Z + 8209*sqrt(2)*Z the prime 8209 divides the index. Modulo the
	// composite 8209 * 8219 the trace pairing cannot be diagonalized and
	// the shared factor surfaces.
	k, err := numfield.NewFromInt64([]int64{-2, 0, 1})
	require.NoError(t, err)
	basis, err := intmatrix.NewFromInt64Array([]int64{1, 0, 0, 8209}, 2, 2)
	require.NoError(t, err)
	o, err := NewOrder(k, basis, big.NewInt(1))
	require.NoError(t, err)

	q := big.NewInt(8209 * 8219)
	rr, err := Radical(o, q)
	require.NoError(t, err)
	require.NotNil(t, rr.Split)
	assert.Nil(t, rr.Ideal)
	assert.Equal(t, int64(8209), rr.Split.Int64())
	assert.Zero(t, new(big.Int).Rem(q, rr.Split).Sign())
}

func TestIdealArithmetic(t *testing.T) {
	golden := goldenOrder(t)
	five, err := ScalarIdeal(golden, big.NewInt(5))
	require.NoError(t, err)
	three, err := ScalarIdeal(golden, big.NewInt(3))
	require.NoError(t, err)

	// 5*O + 3*O = O.
	sum, err := five.Add(three)
	require.NoError(t, err)
	assert.True(t, sum.IsScalar(big.NewInt(1)))

	// 5*O * 3*O = 15*O.
	prod, err := five.Mul(three)
	require.NoError(t, err)
	assert.True(t, prod.IsScalar(big.NewInt(15)))

	_, err = ScalarIdeal(golden, big.NewInt(0))
	assert.Error(t, err)
}

func TestIdealFromBasis(t *testing.T) {
	golden := goldenOrder(t)
	rows, err := intmatrix.NewFromInt64Array([]int64{5, 0, 0, 1, 10, 0}, 3, 2)
	require.NoError(t, err)
	ideal, err := NewIdealFromBasis(golden, rows)
	require.NoError(t, err)
	expected, err := intmatrix.NewFromInt64Array([]int64{5, 0, 0, 1}, 2, 2)
	require.NoError(t, err)
	assert.True(t, ideal.BasisMatrix().Equals(expected))

	min, err := ideal.Min()
	require.NoError(t, err)
	assert.Equal(t, int64(5), min.Int64())
}
