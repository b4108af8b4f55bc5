// Copyright (c) 2026 Ben Lorenz

package maxord

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/benlorenz/hecke/numfield"
	"github.com/benlorenz/hecke/order"
)

// MaximalOrderCache memoizes maximal orders per number field, keyed by
// field identity. Concurrent requests for the same field share a single
// computation. The zero value is not usable; construct with
// NewMaximalOrderCache.
type MaximalOrderCache struct {
	mu     sync.RWMutex
	orders map[*numfield.NumberField]*order.Order
	group  singleflight.Group
}

// NewMaximalOrderCache returns an empty cache.
func NewMaximalOrderCache() *MaximalOrderCache {
	return &MaximalOrderCache{
		orders: make(map[*numfield.NumberField]*order.Order),
	}
}

// Lookup returns the cached maximal order for the field, if present.
func (c *MaximalOrderCache) Lookup(fld *numfield.NumberField) (*order.Order, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.orders[fld]
	return m, ok
}

// Forget drops the cached maximal order for the field.
func (c *MaximalOrderCache) Forget(fld *numfield.NumberField) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.orders, fld)
}

// MaximalOrder returns the maximal order of the field of o, computing and
// caching it on the first request. Cached orders are returned with their
// invariants precomputed, so sharing them across goroutines is safe.
func (c *MaximalOrderCache) MaximalOrder(o *order.Order) (*order.Order, error) {
	fld := o.Field()
	if m, ok := c.Lookup(fld); ok {
		return m, nil
	}
	v, err, _ := c.group.Do(cacheKey(fld), func() (interface{}, error) {
		if m, ok := c.Lookup(fld); ok {
			return m, nil
		}
		m, err := MaximalOrder(o)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.orders[fld] = m
		c.mu.Unlock()
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*order.Order), nil
}

func cacheKey(fld *numfield.NumberField) string {
	return fmt.Sprintf("%p", fld)
}
