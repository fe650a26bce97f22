// Package adapters wraps catalog backends with cross-cutting behaviour.
package adapters

import (
	"context"
	"time"

	"payslip/internal/cache"
	"payslip/internal/catalog"
	"payslip/internal/core"
)

const seedKey = "seed"

// CachedCatalog serves seeds and suggestions from a short-lived cache in
// front of a slower catalog. Recording a title drops the cached
// suggestions of its kind.
type CachedCatalog struct {
	next  catalog.Catalog
	seed  *cache.LRUCache[core.Seed]
	lists *cache.LRUCache[[]string]
}

func NewCachedCatalog(next catalog.Catalog, ttl time.Duration) *CachedCatalog {
	return &CachedCatalog{
		next:  next,
		seed:  cache.NewLRUCache[core.Seed](1, ttl),
		lists: cache.NewLRUCache[[]string](8, ttl),
	}
}

// Seed implements catalog.SeedReader
func (c *CachedCatalog) Seed(ctx context.Context) (core.Seed, error) {
	if s, ok := c.seed.Get(seedKey); ok {
		return copySeed(s), nil
	}
	s, err := c.next.Seed(ctx)
	if err != nil {
		return core.Seed{}, err
	}
	c.seed.Set(seedKey, copySeed(s))
	return s, nil
}

// Suggestions implements catalog.SuggestionReader
func (c *CachedCatalog) Suggestions(ctx context.Context, kind core.Kind) ([]string, error) {
	if titles, ok := c.lists.Get(string(kind)); ok {
		return append([]string(nil), titles...), nil
	}
	titles, err := c.next.Suggestions(ctx, kind)
	if err != nil {
		return nil, err
	}
	c.lists.Set(string(kind), append([]string(nil), titles...))
	return titles, nil
}

// Record implements catalog.TitleRecorder
func (c *CachedCatalog) Record(ctx context.Context, kind core.Kind, title string) error {
	err := c.next.Record(ctx, kind, title)
	c.lists.Delete(string(kind))
	return err
}

// CleanExpired drops expired entries so a cache.Manager can sweep them.
func (c *CachedCatalog) CleanExpired() int {
	return c.seed.CleanExpired() + c.lists.CleanExpired()
}

func copySeed(s core.Seed) core.Seed {
	return core.Seed{
		Earnings:   append([]string(nil), s.Earnings...),
		Deductions: append([]string(nil), s.Deductions...),
	}
}
