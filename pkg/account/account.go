// Package account models shoppers and administrators together with the cart
// each of them owns.
package account

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Role gates administrative operations.
type Role string

// Roles.
const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   string `json:"accountId"`
	Role Role   `json:"role"`
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// CanAccess reports whether the actor may read or act on a resource owned by
// ownerID: owners and admins may.
func (a Actor) CanAccess(ownerID string) bool {
	return a.IsAdmin() || (a.ID != "" && a.ID == ownerID)
}

// CartItem is a pending line in an account's cart.
type CartItem struct {
	ID        string `json:"id"`
	ProductID string `json:"product"`
	Quantity  int    `json:"quantity"`
}

// Account is a registered user.
type Account struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	Cart         []CartItem `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// Actor returns the account as an Actor.
func (a Account) Actor() Actor { return Actor{ID: a.ID, Role: a.Role} }

// CartItem returns the index of the cart line with the given id, or -1.
func (a *Account) CartItem(itemID string) int {
	for i, it := range a.Cart {
		if it.ID == itemID {
			return i
		}
	}
	return -1
}

// CartLineFor returns the index of the cart line holding productID, or -1.
func (a *Account) CartLineFor(productID string) int {
	for i, it := range a.Cart {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

// RemoveCartItem drops the line with the given id and reports whether one was
// removed.
func (a *Account) RemoveCartItem(itemID string) bool {
	i := a.CartItem(itemID)
	if i < 0 {
		return false
	}
	a.Cart = append(a.Cart[:i], a.Cart[i+1:]...)
	return true
}

// NormalizeEmail lower-cases and trims an address so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Repository defines behavior for persisting accounts.
type Repository interface {
	Create(ctx context.Context, a Account) error
	Get(ctx context.Context, id string) (Account, error)
	GetByEmail(ctx context.Context, email string) (Account, error)
	// Save replaces the stored account, cart included.
	Save(ctx context.Context, a Account) error
	ClearCart(ctx context.Context, id string) error
}

var (
	// ErrNotFound indicates the requested account does not exist.
	ErrNotFound = errors.New("account not found")
	// ErrEmailTaken indicates another account already uses the email.
	ErrEmailTaken = errors.New("email already registered")
)
