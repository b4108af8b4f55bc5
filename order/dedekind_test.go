// Copyright (c) 2026 Ben Lorenz

package order

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benlorenz/hecke/numfield"
)

func TestDedekindNotMaximal(t *testing.T) {
	k := sqrt5Field(t)
	o, err := NewEquationOrder(k)
	require.NoError(t, err)

	// Z[sqrt(5)] is not 2-maximal; the criterion enlarges it straight to
	// the golden order.
	pMaximal, enlarged, err := DedekindTest(o, big.NewInt(2))
	require.NoError(t, err)
	assert.False(t, pMaximal)
	require.NotNil(t, enlarged)
	assert.True(t, enlarged.Equal(goldenOrder(t)))
}

func TestDedekindMaximal(t *testing.T) {
	k := sqrt5Field(t)
	o, err := NewEquationOrder(k)
	require.NoError(t, err)

	// 5 ramifies but Z[sqrt(5)] is 5-maximal.
	pMaximal, enlarged, err := DedekindTest(o, big.NewInt(5))
	require.NoError(t, err)
	assert.True(t, pMaximal)
	assert.Nil(t, enlarged)

	// 3 is unramified.
	pMaximal, _, err = DedekindTest(o, big.NewInt(3))
	require.NoError(t, err)
	assert.True(t, pMaximal)
}

func TestDedekindCubic(t *testing.T) {
	k := cubicField(t)
	o, err := NewEquationOrder(k)
	require.NoError(t, err)

	// disc(x^3 - x - 1) = -23 is squarefree, so the equation order is
	// p-maximal everywhere, including at the ramified prime 23.
	for _, p := range []int64{2, 3, 5, 23} {
		pMaximal, _, err := DedekindTest(o, big.NewInt(p))
		require.NoError(t, err)
		assert.True(t, pMaximal, "expected p-maximality at %d", p)
	}
}

func TestDedekindWildPrime(t *testing.T) {
	// x^3 - 2: disc = -108 = -2^2 * 3^3. Z[2^(1/3)] is maximal, so the
	// criterion must certify both wild primes.
	k, err := numfield.NewFromInt64([]int64{-2, 0, 0, 1})
	require.NoError(t, err)
	o, err := NewEquationOrder(k)
	require.NoError(t, err)

	for _, p := range []int64{2, 3} {
		pMaximal, _, err := DedekindTest(o, big.NewInt(p))
		require.NoError(t, err)
		assert.True(t, pMaximal, "expected p-maximality at %d", p)
	}
}

func TestDedekindRequiresEquationOrder(t *testing.T) {
	_, _, err := DedekindTest(goldenOrder(t), big.NewInt(2))
	assert.Error(t, err)
}

func TestDedekindNonMaximalCubic(t *testing.T) {
	// x^3 - x^2 - 2x - 8 has discriminant -4 * 503 and a 2-maximal
	// overorder strictly larger than the equation order: the classic
	// non-monogenic field of Dedekind.
	k, err := numfield.NewFromInt64([]int64{-8, -2, -1, 1})
	require.NoError(t, err)
	o, err := NewEquationOrder(k)
	require.NoError(t, err)

	pMaximal, enlarged, err := DedekindTest(o, big.NewInt(2))
	require.NoError(t, err)
	assert.False(t, pMaximal)
	require.NotNil(t, enlarged)

	idx, err := enlarged.Index()
	require.NoError(t, err)
	assert.Equal(t, int64(2), idx.Int64())

	disc, err := enlarged.Discriminant()
	require.NoError(t, err)
	assert.Equal(t, int64(-503), disc.Int64())
}
