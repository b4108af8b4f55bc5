// Copyright (c) 2026 Ben Lorenz

package maxord

import (
	"fmt"
	"math/big"

	"github.com/benlorenz/hecke/arith"
	"github.com/benlorenz/hecke/logger"
	"github.com/benlorenz/hecke/order"
)

// trialDivisionBound is the sieve limit used to strip small prime factors
// from worklist moduli before handing them to the cycle engine.
const trialDivisionBound = 1 << 13

// TameOverorder enlarges o at every modulus it can certify or split
// cheaply, without ever factoring a hard composite. It returns the
// enlarged order together with the moduli that resisted splitting; the
// result is maximal once those are factored and handled prime by prime.
//
// The worklist is seeded with the diagonal of the normal form of the trace
// matrix, the primes up to the degree, the discriminant and any extra
// moduli the caller supplies, refined into a pairwise-coprime base.
func TameOverorder(o *order.Order, extra []*big.Int) (*order.Order, []*big.Int, error) {
	log := logger.Logger()
	seeds, err := seedModuli(o, extra)
	if err != nil {
		return nil, nil, fmt.Errorf("TameOverorder: %s", err.Error())
	}
	work := arith.CoprimeBase(seeds)
	log.Debug().Int("moduli", len(work)).Msg("tame overorder worklist seeded")
	var unresolved []*big.Int
	for len(work) > 0 {
		q := work[len(work)-1]
		work = work[:len(work)-1]
		small, rem := arith.TrialDivide(q, trialDivisionBound)
		for _, p := range small {
			o, err = PMaximalOverorder(o, p)
			if err != nil {
				return nil, nil, fmt.Errorf("TameOverorder: %s", err.Error())
			}
		}
		q = rem
		if q.Cmp(bigTwo) < 0 {
			continue
		}
		if root, exp, ok := arith.PerfectPower(q); ok {
			log.Debug().Int("exponent", exp).Msg("modulus reduced to a perfect-power root")
			q = root
		}
		if arith.IsPrime(q) {
			o, err = PMaximalOverorder(o, q)
			if err != nil {
				return nil, nil, fmt.Errorf("TameOverorder: %s", err.Error())
			}
			continue
		}
		enlarged, factor, err := cycleBL(o, q)
		if err != nil {
			return nil, nil, fmt.Errorf("TameOverorder: %s", err.Error())
		}
		o = enlarged
		switch {
		case factor.Cmp(bigOne) == 0:
			// Handled without splitting.
		case factor.Cmp(q) == 0:
			log.Debug().Str("modulus", q.String()).Msg("modulus resisted splitting")
			unresolved = append(unresolved, q)
		default:
			cofactor := new(big.Int).Quo(q, factor)
			log.Debug().
				Str("modulus", q.String()).
				Str("factor", factor.String()).
				Msg("modulus split")
			work = arith.CoprimeBase(append(work, factor, cofactor))
		}
	}
	return o, unresolved, nil
}

// seedModuli collects the starting moduli for the tame pass.
func seedModuli(o *order.Order, extra []*big.Int) ([]*big.Int, error) {
	t, err := o.TraceMatrix()
	if err != nil {
		return nil, err
	}
	h, err := t.HNF()
	if err != nil {
		return nil, err
	}
	n := o.Degree()
	seeds := make([]*big.Int, 0, 2*n+len(extra)+1)
	for i := 0; i < n; i++ {
		d, err := h.Get(i, i)
		if err != nil {
			return nil, err
		}
		seeds = append(seeds, d)
	}
	for _, p := range arith.SievePrimes(uint(n)) {
		seeds = append(seeds, new(big.Int).SetUint64(p))
	}
	disc, err := o.Discriminant()
	if err != nil {
		return nil, err
	}
	seeds = append(seeds, new(big.Int).Abs(disc))
	seeds = append(seeds, extra...)
	return seeds, nil
}
