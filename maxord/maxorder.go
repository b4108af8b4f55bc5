// Copyright (c) 2026 Ben Lorenz

package maxord

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/benlorenz/hecke/arith"
	"github.com/benlorenz/hecke/logger"
	"github.com/benlorenz/hecke/order"
)

// PMaximalOverorder returns the p-maximal overorder of o at a prime p by
// iterating the ring of multipliers of the p-radical until the
// discriminant stabilizes. The equation order takes the Dedekind criterion
// shortcut first. The resulting order records p as a prime of maximality.
func PMaximalOverorder(o *order.Order, p *big.Int) (*order.Order, error) {
	if o.KnownPMaximal(p) {
		return o, nil
	}
	cur := o
	if cur.IsEquationOrder() {
		pMaximal, enlarged, err := order.DedekindTest(cur, p)
		if err != nil {
			return nil, fmt.Errorf("PMaximalOverorder: %s", err.Error())
		}
		if pMaximal {
			return cur.WithPrimeOfMaximality(p), nil
		}
		cur = enlarged
	}
	for {
		rr, err := order.Radical(cur, p)
		if err != nil {
			return nil, fmt.Errorf("PMaximalOverorder: %s", err.Error())
		}
		if rr.Split != nil {
			return nil, fmt.Errorf(
				"PMaximalOverorder: modulus %v is not prime (found divisor %v)", p, rr.Split,
			)
		}
		enlarged, err := order.RingOfMultipliers(rr.Ideal)
		if err != nil {
			return nil, fmt.Errorf("PMaximalOverorder: %s", err.Error())
		}
		if enlarged == cur {
			break
		}
		cur = enlarged
	}
	// Maximality at previously recorded primes persists in any overorder.
	for _, known := range o.PrimesOfMaximality() {
		cur = cur.WithPrimeOfMaximality(known)
	}
	return cur.WithPrimeOfMaximality(p), nil
}

// MaximalOrderAt returns the maximal order of the field of o, assuming the
// provided primes cover every prime at which o can fail to be maximal. The
// p-maximal overorders are computed independently from o and summed, so
// their pairwise indices are coprime and the sum is an order.
func MaximalOrderAt(o *order.Order, primes []*big.Int) (*order.Order, error) {
	deduped := dedupePrimes(primes)
	result := o
	for _, p := range deduped {
		op, err := PMaximalOverorder(o, p)
		if err != nil {
			return nil, fmt.Errorf("MaximalOrderAt: %s", err.Error())
		}
		result, err = result.Sum(op)
		if err != nil {
			return nil, fmt.Errorf("MaximalOrderAt: %s", err.Error())
		}
	}
	return result, nil
}

// MaximalOrder returns the maximal order of the field of o. The tame pass
// handles everything it can without factoring; the moduli it leaves behind
// are then fully factored and finished off prime by prime.
func MaximalOrder(o *order.Order) (*order.Order, error) {
	log := logger.Logger()
	enlarged, unresolved, err := TameOverorder(o, nil)
	if err != nil {
		return nil, fmt.Errorf("MaximalOrder: %s", err.Error())
	}
	if len(unresolved) > 0 {
		log.Debug().Int("moduli", len(unresolved)).Msg("factoring unresolved moduli")
		var primes []*big.Int
		for _, q := range unresolved {
			ps, err := arith.Factor(q)
			if err != nil {
				return nil, fmt.Errorf("MaximalOrder: %s", err.Error())
			}
			primes = append(primes, ps...)
		}
		enlarged, err = MaximalOrderAt(enlarged, primes)
		if err != nil {
			return nil, fmt.Errorf("MaximalOrder: %s", err.Error())
		}
	}
	maximal, err := enlarged.MarkMaximal()
	if err != nil {
		return nil, fmt.Errorf("MaximalOrder: %s", err.Error())
	}
	return maximal, nil
}

func dedupePrimes(primes []*big.Int) []*big.Int {
	sorted := make([]*big.Int, len(primes))
	copy(sorted, primes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Cmp(sorted[j]) < 0 })
	var out []*big.Int
	for _, p := range sorted {
		if len(out) == 0 || out[len(out)-1].Cmp(p) != 0 {
			out = append(out, p)
		}
	}
	return out
}
