// Package memory implements an in-memory order repository.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"storefront/pkg/order"
)

// Repository provides an in-memory implementation of order.Repository.
type Repository struct {
	mu     sync.RWMutex
	orders map[string]order.Order
}

// New creates a new in-memory repository.
func New() *Repository {
	return &Repository{orders: make(map[string]order.Order)}
}

// Create stores the order.
func (r *Repository) Create(ctx context.Context, o order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o.Items = slices.Clone(o.Items)
	r.orders[o.ID] = o
	return nil
}

// Get retrieves an order by ID.
func (r *Repository) Get(ctx context.Context, id string) (order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return order.Order{}, order.ErrNotFound
	}
	o.Items = slices.Clone(o.Items)
	return o, nil
}

// ListByUser returns the orders placed by userID, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	return r.list(func(o order.Order) bool { return o.UserID == userID }), nil
}

// List returns all orders, newest first.
func (r *Repository) List(ctx context.Context) ([]order.Order, error) {
	return r.list(func(order.Order) bool { return true }), nil
}

func (r *Repository) list(keep func(order.Order) bool) []order.Order {
	r.mu.RLock()
	out := make([]order.Order, 0, len(r.orders))
	for _, o := range r.orders {
		if keep(o) {
			o.Items = slices.Clone(o.Items)
			out = append(out, o)
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// Update replaces an existing order.
func (r *Repository) Update(ctx context.Context, o order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[o.ID]; !ok {
		return order.ErrNotFound
	}
	o.Items = slices.Clone(o.Items)
	r.orders[o.ID] = o
	return nil
}
