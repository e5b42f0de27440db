package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"storefront/pkg/account"
	"storefront/pkg/catalog"
	"storefront/pkg/logger"
	"storefront/pkg/otel"
)

// Service places orders and serves them back to their owners and to admins.
type Service struct {
	orders   Repository
	products catalog.Repository
	accounts account.Repository
	log      *logger.Logger

	now   func() time.Time
	newID func() string
}

// NewService wires a Service over the three stores it coordinates.
func NewService(orders Repository, products catalog.Repository, accounts account.Repository, log *logger.Logger) *Service {
	return &Service{
		orders:   orders,
		products: products,
		accounts: accounts,
		log:      log,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Place validates every submitted line against current stock, takes the
// units with guarded decrements, records the order as Pending and empties the
// actor's cart.
//
// Nothing is mutated until every line has passed validation. A decrement that
// loses a race with a concurrent order restores the units this call already
// took and fails with InsufficientStockError. The actor's account is checked
// up front. The store offers no multi-document transaction, so a failure while
// clearing the cart leaves the order and the decrements in place and is
// reported as an internal error.
func (s *Service) Place(ctx context.Context, actor account.Actor, req PlaceRequest) (_ Order, err error) {
	ctx, span := otel.AddSpan(ctx, "order.Place",
		attribute.String("actor", actor.ID),
		attribute.Int("items", len(req.Items)),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if err := req.Validate(); err != nil {
		return Order{}, err
	}
	if _, err := s.accounts.Get(ctx, actor.ID); err != nil {
		return Order{}, fmt.Errorf("loading account %s: %w", actor.ID, err)
	}

	items, err := s.snapshot(ctx, req.Items)
	if err != nil {
		s.log.Warn(ctx, "order rejected", "actor", actor.ID, "error", err)
		return Order{}, err
	}

	if err := s.take(ctx, items); err != nil {
		s.log.Warn(ctx, "order rejected at commit", "actor", actor.ID, "error", err)
		return Order{}, err
	}

	o := Order{
		ID:              s.newID(),
		UserID:          actor.ID,
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		TotalPrice:      Total(items),
		Status:          StatusPending,
		CreatedAt:       s.now().UTC(),
	}
	if err := s.orders.Create(ctx, o); err != nil {
		s.restock(ctx, items)
		return Order{}, fmt.Errorf("creating order: %w", err)
	}

	if err := s.accounts.ClearCart(ctx, actor.ID); err != nil {
		s.log.Error(ctx, "clear cart after order", "order", o.ID, "actor", actor.ID, "error", err)
		// Not wrapped: the order exists, so a lookup error here must not
		// surface as a missing resource.
		return Order{}, fmt.Errorf("clearing cart of %s after order %s: %v", actor.ID, o.ID, err)
	}

	s.log.Info(ctx, "order placed", "order", o.ID, "actor", actor.ID, "total", o.TotalPrice.StringFixed(2))
	return o, nil
}

// snapshot loads every referenced product in submission order and checks the
// requested quantity, summed per product, against its current stock.
func (s *Service) snapshot(ctx context.Context, reqs []ItemRequest) ([]LineItem, error) {
	var (
		loaded    = make(map[string]catalog.Product, len(reqs))
		requested = make(map[string]int, len(reqs))
		items     = make([]LineItem, 0, len(reqs))
	)
	for _, r := range reqs {
		p, ok := loaded[r.ProductID]
		if !ok {
			var err error
			p, err = s.products.Get(ctx, r.ProductID)
			if errors.Is(err, catalog.ErrNotFound) {
				return nil, &ProductNotFoundError{ProductID: r.ProductID}
			}
			if err != nil {
				return nil, fmt.Errorf("loading product %s: %w", r.ProductID, err)
			}
			loaded[r.ProductID] = p
		}

		requested[p.ID] += r.Quantity
		if requested[p.ID] > p.Stock {
			return nil, &InsufficientStockError{ProductID: p.ID, ProductName: p.Name}
		}

		items = append(items, LineItem{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  r.Quantity,
			Price:     p.Price,
		})
	}
	return items, nil
}

// take decrements stock line by line. On the first failure the lines already
// taken are put back.
func (s *Service) take(ctx context.Context, items []LineItem) error {
	for i, it := range items {
		err := s.products.DecrementStock(ctx, it.ProductID, it.Quantity)
		if err == nil {
			continue
		}
		s.restock(ctx, items[:i])
		switch {
		case errors.Is(err, catalog.ErrInsufficientStock):
			return &InsufficientStockError{ProductID: it.ProductID, ProductName: it.Name}
		case errors.Is(err, catalog.ErrNotFound):
			return &ProductNotFoundError{ProductID: it.ProductID}
		}
		return fmt.Errorf("decrementing stock of %s: %w", it.ProductID, err)
	}
	return nil
}

func (s *Service) restock(ctx context.Context, items []LineItem) {
	for _, it := range items {
		if err := s.products.IncrementStock(ctx, it.ProductID, it.Quantity); err != nil {
			s.log.Error(ctx, "restock", "product", it.ProductID, "quantity", it.Quantity, "error", err)
		}
	}
}

// Get returns the order if the actor owns it or is an admin.
func (s *Service) Get(ctx context.Context, actor account.Actor, id string) (Order, error) {
	ctx, span := otel.AddSpan(ctx, "order.Get", attribute.String("order", id))
	defer span.End()

	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if !actor.CanAccess(o.UserID) {
		return Order{}, ErrNotAuthorized
	}
	return o, nil
}

// ListMine returns the actor's own orders, newest first.
func (s *Service) ListMine(ctx context.Context, actor account.Actor) ([]Order, error) {
	ctx, span := otel.AddSpan(ctx, "order.ListMine")
	defer span.End()

	return s.orders.ListByUser(ctx, actor.ID)
}

// ListAll returns every order, newest first. Admin only.
func (s *Service) ListAll(ctx context.Context, actor account.Actor) ([]Order, error) {
	ctx, span := otel.AddSpan(ctx, "order.ListAll")
	defer span.End()

	if !actor.IsAdmin() {
		return nil, ErrNotAuthorized
	}
	return s.orders.List(ctx)
}

// UpdateStatus sets the status of an order. Admin only. Transitions are not
// restricted; moving to Delivered stamps DeliveredAt.
func (s *Service) UpdateStatus(ctx context.Context, actor account.Actor, id string, status Status) (Order, error) {
	ctx, span := otel.AddSpan(ctx, "order.UpdateStatus",
		attribute.String("order", id),
		attribute.String("status", string(status)),
	)
	defer span.End()

	if !actor.IsAdmin() {
		return Order{}, ErrNotAuthorized
	}
	if !status.Valid() {
		return Order{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	o.Status = status
	if status == StatusDelivered {
		now := s.now().UTC()
		o.DeliveredAt = &now
	}
	if err := s.orders.Update(ctx, o); err != nil {
		return Order{}, fmt.Errorf("updating order %s: %w", id, err)
	}

	s.log.Info(ctx, "order status changed", "order", id, "status", status, "actor", actor.ID)
	return o, nil
}
