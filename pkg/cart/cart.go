// Package cart manages the pending line items stored on each account.
package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"storefront/pkg/account"
	"storefront/pkg/catalog"
	"storefront/pkg/logger"
	"storefront/pkg/otel"
)

var (
	// ErrItemNotFound indicates the cart has no line with the given id.
	ErrItemNotFound = errors.New("cart item not found")
	// ErrInvalidQuantity indicates a quantity below one.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// Line is a cart item with its product attached. Product is nil when the
// product has been deleted since it was added.
type Line struct {
	ID       string           `json:"id"`
	Product  *catalog.Product `json:"product"`
	Quantity int              `json:"quantity"`
}

// Service reads and edits carts.
type Service struct {
	accounts account.Repository
	products catalog.Repository
	log      *logger.Logger
	newID    func() string
}

// NewService creates a Service.
func NewService(accounts account.Repository, products catalog.Repository, log *logger.Logger) *Service {
	return &Service{accounts: accounts, products: products, log: log, newID: uuid.NewString}
}

// List returns the actor's cart.
func (s *Service) List(ctx context.Context, actor account.Actor) ([]Line, error) {
	ctx, span := otel.AddSpan(ctx, "cart.List")
	defer span.End()

	a, err := s.accounts.Get(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return s.lines(ctx, a.Cart)
}

// Add puts qty units of productID in the cart, merging with an existing line
// for the same product. The merged quantity must be in stock.
func (s *Service) Add(ctx context.Context, actor account.Actor, productID string, qty int) ([]Line, error) {
	ctx, span := otel.AddSpan(ctx, "cart.Add",
		attribute.String("product", productID),
		attribute.Int("quantity", qty),
	)
	defer span.End()

	if qty < 1 {
		return nil, ErrInvalidQuantity
	}
	p, err := s.products.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	a, err := s.accounts.Get(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	if i := a.CartLineFor(productID); i >= 0 {
		if a.Cart[i].Quantity+qty > p.Stock {
			return nil, catalog.ErrInsufficientStock
		}
		a.Cart[i].Quantity += qty
	} else {
		if qty > p.Stock {
			return nil, catalog.ErrInsufficientStock
		}
		a.Cart = append(a.Cart, account.CartItem{ID: s.newID(), ProductID: productID, Quantity: qty})
	}
	return s.save(ctx, a)
}

// UpdateQuantity sets the quantity of one cart line.
func (s *Service) UpdateQuantity(ctx context.Context, actor account.Actor, itemID string, qty int) ([]Line, error) {
	ctx, span := otel.AddSpan(ctx, "cart.UpdateQuantity", attribute.String("item", itemID))
	defer span.End()

	if qty < 1 {
		return nil, ErrInvalidQuantity
	}
	a, err := s.accounts.Get(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	i := a.CartItem(itemID)
	if i < 0 {
		return nil, ErrItemNotFound
	}
	p, err := s.products.Get(ctx, a.Cart[i].ProductID)
	if err != nil {
		return nil, err
	}
	if qty > p.Stock {
		return nil, catalog.ErrInsufficientStock
	}
	a.Cart[i].Quantity = qty
	return s.save(ctx, a)
}

// Remove drops one cart line. Removing an unknown line leaves the cart as is.
func (s *Service) Remove(ctx context.Context, actor account.Actor, itemID string) ([]Line, error) {
	ctx, span := otel.AddSpan(ctx, "cart.Remove", attribute.String("item", itemID))
	defer span.End()

	a, err := s.accounts.Get(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if !a.RemoveCartItem(itemID) {
		return s.lines(ctx, a.Cart)
	}
	return s.save(ctx, a)
}

func (s *Service) save(ctx context.Context, a account.Account) ([]Line, error) {
	if err := s.accounts.Save(ctx, a); err != nil {
		return nil, fmt.Errorf("saving cart of %s: %w", a.ID, err)
	}
	return s.lines(ctx, a.Cart)
}

func (s *Service) lines(ctx context.Context, items []account.CartItem) ([]Line, error) {
	out := make([]Line, 0, len(items))
	for _, it := range items {
		l := Line{ID: it.ID, Quantity: it.Quantity}
		p, err := s.products.Get(ctx, it.ProductID)
		switch {
		case err == nil:
			l.Product = &p
		case !errors.Is(err, catalog.ErrNotFound):
			return nil, fmt.Errorf("loading product %s: %w", it.ProductID, err)
		}
		out = append(out, l)
	}
	return out, nil
}
