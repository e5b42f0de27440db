package order

import (
	"context"
	"errors"
	"fmt"

	"storefront/pkg/account"
	"storefront/pkg/catalog"
)

// Owner identifies the account that placed an order. Name and Email are only
// filled for admin-facing and single-order views.
type Owner struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// ItemView is a line item with the current catalog product attached. Product
// is nil once the product has been deleted.
type ItemView struct {
	LineItem
	Product *catalog.Product `json:"product"`
}

// View is an order as returned over the API.
type View struct {
	Order
	User  Owner      `json:"user"`
	Items []ItemView `json:"items"`
}

// Views attaches products to every line item and, when withOwner is set, the
// owner's name and email.
func (s *Service) Views(ctx context.Context, orders []Order, withOwner bool) ([]View, error) {
	products := make(map[string]*catalog.Product)
	owners := make(map[string]Owner)

	out := make([]View, 0, len(orders))
	for _, o := range orders {
		v := View{Order: o, User: Owner{ID: o.UserID}, Items: make([]ItemView, 0, len(o.Items))}

		for _, it := range o.Items {
			p, seen := products[it.ProductID]
			if !seen {
				got, err := s.products.Get(ctx, it.ProductID)
				switch {
				case err == nil:
					p = &got
				case !errors.Is(err, catalog.ErrNotFound):
					return nil, fmt.Errorf("loading product %s: %w", it.ProductID, err)
				}
				products[it.ProductID] = p
			}
			v.Items = append(v.Items, ItemView{LineItem: it, Product: p})
		}

		if withOwner {
			owner, seen := owners[o.UserID]
			if !seen {
				owner = Owner{ID: o.UserID}
				a, err := s.accounts.Get(ctx, o.UserID)
				switch {
				case err == nil:
					owner.Name, owner.Email = a.Name, a.Email
				case !errors.Is(err, account.ErrNotFound):
					return nil, fmt.Errorf("loading account %s: %w", o.UserID, err)
				}
				owners[o.UserID] = owner
			}
			v.User = owner
		}

		out = append(out, v)
	}
	return out, nil
}
