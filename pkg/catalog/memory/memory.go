// Package memory implements an in-memory product repository.
package memory

import (
	"context"
	"sync"

	"storefront/pkg/catalog"
)

// Repository provides an in-memory implementation of catalog.Repository.
type Repository struct {
	mu       sync.RWMutex
	products map[string]catalog.Product
}

// New creates a new in-memory repository.
func New() *Repository {
	return &Repository{products: make(map[string]catalog.Product)}
}

// Create stores the product.
func (r *Repository) Create(ctx context.Context, p catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = p
	return nil
}

// Get retrieves a product by ID.
func (r *Repository) Get(ctx context.Context, id string) (catalog.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, nil
}

// List returns the products matching q in q's order.
func (r *Repository) List(ctx context.Context, q catalog.Query) ([]catalog.Product, error) {
	r.mu.RLock()
	out := make([]catalog.Product, 0, len(r.products))
	for _, p := range r.products {
		if q.Match(p) {
			out = append(out, p)
		}
	}
	r.mu.RUnlock()
	q.SortProducts(out)
	return out, nil
}

// Patch applies the supplied fields under the write lock.
func (r *Repository) Patch(ctx context.Context, id string, in catalog.Input) (catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	in.Apply(&p)
	r.products[id] = p
	return p, nil
}

// Delete removes a product by ID.
func (r *Repository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return catalog.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

// DecrementStock removes qty units if that many are available.
func (r *Repository) DecrementStock(ctx context.Context, id string, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return catalog.ErrNotFound
	}
	if p.Stock < qty {
		return catalog.ErrInsufficientStock
	}
	p.Stock -= qty
	r.products[id] = p
	return nil
}

// IncrementStock adds qty units.
func (r *Repository) IncrementStock(ctx context.Context, id string, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return catalog.ErrNotFound
	}
	p.Stock += qty
	r.products[id] = p
	return nil
}
