// Copyright (c) 2026 Ben Lorenz

package arith

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSievePrimes(t *testing.T) {
	assert.Nil(t, SievePrimes(0))
	assert.Nil(t, SievePrimes(1))
	assert.Equal(t, []uint64{2}, SievePrimes(2))
	assert.Equal(t, []uint64{2, 3, 5, 7, 11, 13, 17, 19}, SievePrimes(20))
	primes := SievePrimes(1000)
	assert.Len(t, primes, 168)
	assert.Equal(t, uint64(997), primes[len(primes)-1])
}

func TestTrialDivide(t *testing.T) {
	// 2^3 * 3 * 101 with bound 10 leaves 101.
	found, rem := TrialDivide(big.NewInt(2424), 10)
	require.Len(t, found, 2)
	assert.Equal(t, int64(2), found[0].Int64())
	assert.Equal(t, int64(3), found[1].Int64())
	assert.Equal(t, int64(101), rem.Int64())

	// A prime above the bound is untouched.
	found, rem = TrialDivide(big.NewInt(101), 10)
	assert.Empty(t, found)
	assert.Equal(t, int64(101), rem.Int64())

	// Sign is dropped.
	found, rem = TrialDivide(big.NewInt(-12), 10)
	require.Len(t, found, 2)
	assert.Equal(t, int64(1), rem.Int64())
}

func TestIsPrime(t *testing.T) {
	assert.False(t, IsPrime(big.NewInt(0)))
	assert.False(t, IsPrime(big.NewInt(1)))
	assert.True(t, IsPrime(big.NewInt(2)))
	assert.True(t, IsPrime(big.NewInt(8209)))
	assert.True(t, IsPrime(big.NewInt(8219)))
	assert.False(t, IsPrime(big.NewInt(8209*8219)))
}

func TestKthRoot(t *testing.T) {
	r, ok := KthRoot(big.NewInt(243), 5)
	require.True(t, ok)
	assert.Equal(t, int64(3), r.Int64())

	_, ok = KthRoot(big.NewInt(244), 5)
	assert.False(t, ok)

	r, ok = KthRoot(big.NewInt(1), 7)
	require.True(t, ok)
	assert.Equal(t, int64(1), r.Int64())

	// Large exact square.
	base, _ := new(big.Int).SetString("123456789123456789", 10)
	square := new(big.Int).Mul(base, base)
	r, ok = KthRoot(square, 2)
	require.True(t, ok)
	assert.Zero(t, r.Cmp(base))
}

func TestPerfectPower(t *testing.T) {
	r, k, ok := PerfectPower(big.NewInt(64))
	require.True(t, ok)
	assert.Equal(t, int64(2), r.Int64())
	assert.Equal(t, 6, k)

	r, k, ok = PerfectPower(big.NewInt(6561)) // 3^8
	require.True(t, ok)
	assert.Equal(t, int64(3), r.Int64())
	assert.Equal(t, 8, k)

	_, _, ok = PerfectPower(big.NewInt(6562))
	assert.False(t, ok)

	_, _, ok = PerfectPower(big.NewInt(8209 * 8219))
	assert.False(t, ok)
}

func TestCoprimeBase(t *testing.T) {
	base := CoprimeBase([]*big.Int{big.NewInt(12), big.NewInt(18)})
	require.Len(t, base, 2)
	assert.Equal(t, int64(2), base[0].Int64())
	assert.Equal(t, int64(3), base[1].Int64())

	for i := 0; i < len(base); i++ {
		for j := i + 1; j < len(base); j++ {
			g := new(big.Int).GCD(nil, nil, base[i], base[j])
			assert.Zero(t, g.Cmp(big.NewInt(1)),
				"base elements %v and %v are not coprime", base[i], base[j])
		}
	}
}

func TestCoprimeBasePreservesSupport(t *testing.T) {
	inputs := []*big.Int{big.NewInt(20), big.NewInt(50), big.NewInt(14)}
	base := CoprimeBase(inputs)
	// Every input must factor over the base.
	for _, m := range inputs {
		rem := new(big.Int).Set(m)
		for _, b := range base {
			for {
				quo, r := new(big.Int).QuoRem(rem, b, new(big.Int))
				if r.Sign() != 0 {
					break
				}
				rem = quo
			}
		}
		assert.Zero(t, rem.Cmp(big.NewInt(1)), "input %v does not factor over the base", m)
	}
	// Dropped inputs and absolute values.
	assert.Empty(t, CoprimeBase([]*big.Int{big.NewInt(1), big.NewInt(0), big.NewInt(-1)}))
}

func TestFactor(t *testing.T) {
	primes, err := Factor(big.NewInt(2 * 2 * 3 * 49))
	require.NoError(t, err)
	require.Len(t, primes, 3)
	assert.Equal(t, int64(2), primes[0].Int64())
	assert.Equal(t, int64(3), primes[1].Int64())
	assert.Equal(t, int64(7), primes[2].Int64())

	// Semiprime above the trial-division bound exercises the rho fallback.
	primes, err = Factor(big.NewInt(1000003 * 1000033))
	require.NoError(t, err)
	require.Len(t, primes, 2)
	assert.Equal(t, int64(1000003), primes[0].Int64())
	assert.Equal(t, int64(1000033), primes[1].Int64())

	_, err = Factor(big.NewInt(1))
	assert.Error(t, err)
}
