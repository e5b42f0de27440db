// Package cache decorates a catalog repository with a Redis cache-aside for
// single product lookups.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"storefront/pkg/catalog"
	"storefront/pkg/logger"
)

// KeyPrefix namespaces product entries in Redis.
const KeyPrefix = "product:"

// Repository serves Get from Redis when possible and invalidates the cached
// entry on every write that goes through it.
type Repository struct {
	catalog.Repository
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
	group  singleflight.Group

	// mu orders fills against invalidations. gen counts invalidations per
	// id; a fill is stored only if no invalidation ran since its load began.
	mu  sync.Mutex
	gen map[string]uint64
}

// New wraps next. Cache failures are logged and fall through to next.
func New(next catalog.Repository, client *redis.Client, ttl time.Duration, log *logger.Logger) *Repository {
	return &Repository{Repository: next, client: client, ttl: ttl, log: log, gen: make(map[string]uint64)}
}

func key(id string) string { return KeyPrefix + id }

// Get returns the cached product or loads it from the wrapped repository.
// Concurrent misses for one id share a single load.
func (r *Repository) Get(ctx context.Context, id string) (catalog.Product, error) {
	if p, ok := r.lookup(ctx, id); ok {
		return p, nil
	}

	// The shared load must not be cut short by whichever caller started it.
	fillCtx := context.WithoutCancel(ctx)
	v, err, _ := r.group.Do(id, func() (any, error) {
		if p, ok := r.lookup(fillCtx, id); ok {
			return p, nil
		}
		gen := r.generation(id)
		p, err := r.Repository.Get(fillCtx, id)
		if err != nil {
			return catalog.Product{}, err
		}
		r.store(fillCtx, p, gen)
		return p, nil
	})
	if err != nil {
		return catalog.Product{}, err
	}
	return v.(catalog.Product), nil
}

// Patch writes through and drops the cached entry.
func (r *Repository) Patch(ctx context.Context, id string, in catalog.Input) (catalog.Product, error) {
	defer r.invalidate(ctx, id)
	return r.Repository.Patch(ctx, id, in)
}

// Delete removes the product and drops the cached entry.
func (r *Repository) Delete(ctx context.Context, id string) error {
	defer r.invalidate(ctx, id)
	return r.Repository.Delete(ctx, id)
}

// DecrementStock changes stock and drops the cached entry.
func (r *Repository) DecrementStock(ctx context.Context, id string, qty int) error {
	defer r.invalidate(ctx, id)
	return r.Repository.DecrementStock(ctx, id, qty)
}

// IncrementStock changes stock and drops the cached entry.
func (r *Repository) IncrementStock(ctx context.Context, id string, qty int) error {
	defer r.invalidate(ctx, id)
	return r.Repository.IncrementStock(ctx, id, qty)
}

func (r *Repository) lookup(ctx context.Context, id string) (catalog.Product, bool) {
	raw, err := r.client.Get(ctx, key(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.Warn(ctx, "product cache read", "product", id, "error", err)
		}
		return catalog.Product{}, false
	}
	var p catalog.Product
	if err := json.Unmarshal(raw, &p); err != nil {
		r.log.Warn(ctx, "product cache decode", "product", id, "error", err)
		return catalog.Product{}, false
	}
	return p, true
}

func (r *Repository) generation(id string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gen[id]
}

// store caches p unless the entry was invalidated after gen was read.
func (r *Repository) store(ctx context.Context, p catalog.Product, gen uint64) {
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gen[p.ID] != gen {
		r.log.Debug(ctx, "product cache fill dropped", "product", p.ID)
		return
	}
	if err := r.client.Set(ctx, key(p.ID), raw, r.ttl).Err(); err != nil {
		r.log.Warn(ctx, "product cache write", "product", p.ID, "error", err)
	}
}

func (r *Repository) invalidate(ctx context.Context, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen[id]++
	if err := r.client.Del(ctx, key(id)).Err(); err != nil {
		r.log.Warn(ctx, "product cache invalidate", "product", id, "error", err)
	}
}
