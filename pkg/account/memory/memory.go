// Package memory implements an in-memory account repository.
package memory

import (
	"context"
	"slices"
	"sync"

	"storefront/pkg/account"
)

// Repository provides an in-memory implementation of account.Repository.
type Repository struct {
	mu       sync.RWMutex
	accounts map[string]account.Account
	byEmail  map[string]string
}

// New creates a new in-memory repository.
func New() *Repository {
	return &Repository{
		accounts: make(map[string]account.Account),
		byEmail:  make(map[string]string),
	}
}

// Create stores a new account. Emails are unique.
func (r *Repository) Create(ctx context.Context, a account.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	email := account.NormalizeEmail(a.Email)
	if _, ok := r.byEmail[email]; ok {
		return account.ErrEmailTaken
	}
	a.Email = email
	a.Cart = slices.Clone(a.Cart)
	r.accounts[a.ID] = a
	r.byEmail[email] = a.ID
	return nil
}

// Get retrieves an account by ID.
func (r *Repository) Get(ctx context.Context, id string) (account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[id]
	if !ok {
		return account.Account{}, account.ErrNotFound
	}
	a.Cart = slices.Clone(a.Cart)
	return a, nil
}

// GetByEmail retrieves an account by email address.
func (r *Repository) GetByEmail(ctx context.Context, email string) (account.Account, error) {
	r.mu.RLock()
	id, ok := r.byEmail[account.NormalizeEmail(email)]
	r.mu.RUnlock()
	if !ok {
		return account.Account{}, account.ErrNotFound
	}
	return r.Get(ctx, id)
}

// Save replaces an existing account.
func (r *Repository) Save(ctx context.Context, a account.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.accounts[a.ID]
	if !ok {
		return account.ErrNotFound
	}
	email := account.NormalizeEmail(a.Email)
	if owner, taken := r.byEmail[email]; taken && owner != a.ID {
		return account.ErrEmailTaken
	}
	delete(r.byEmail, old.Email)
	a.Email = email
	a.Cart = slices.Clone(a.Cart)
	r.accounts[a.ID] = a
	r.byEmail[email] = a.ID
	return nil
}

// ClearCart empties the account's cart.
func (r *Repository) ClearCart(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return account.ErrNotFound
	}
	a.Cart = []account.CartItem{}
	r.accounts[id] = a
	return nil
}
