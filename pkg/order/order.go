// Package order implements order placement and the order record lifecycle.
package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"storefront/pkg/catalog"
)

// Status is the fulfilment state of an order.
type Status string

// Order statuses. Any status may be set from any other.
const (
	StatusPending    Status = "Pending"
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
	StatusCancelled  Status = "Cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// PaymentMethod selects how the customer pays.
type PaymentMethod string

// Payment methods.
const (
	PaymentCreditCard     PaymentMethod = "Credit Card"
	PaymentPayPal         PaymentMethod = "PayPal"
	PaymentCashOnDelivery PaymentMethod = "Cash on Delivery"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCreditCard, PaymentPayPal, PaymentCashOnDelivery:
		return true
	}
	return false
}

// ShippingAddress is where an order is delivered. Every field is required.
type ShippingAddress struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

func (a ShippingAddress) validate() error {
	fields := []struct{ name, value string }{
		{"address", a.Address},
		{"city", a.City},
		{"postalCode", a.PostalCode},
		{"country", a.Country},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: shipping %s is required", ErrInvalidOrder, f.name)
		}
	}
	return nil
}

// LineItem is a product snapshot taken when the order was placed. Name and
// Price do not follow later catalog changes.
type LineItem struct {
	ProductID string          `json:"product"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Subtotal is Price times Quantity.
func (l LineItem) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order is an immutable purchase record; only Status and DeliveredAt change
// after creation.
type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user"`
	Items           []LineItem      `json:"items"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	Status          Status          `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty"`
}

// Total sums the line item subtotals.
func Total(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// ItemRequest is one submitted line: a product reference and a quantity.
type ItemRequest struct {
	ProductID string `json:"product"`
	Quantity  int    `json:"quantity"`
}

// PlaceRequest is a checkout submission.
type PlaceRequest struct {
	Items           []ItemRequest   `json:"items"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
}

// Validate checks the submission's shape without touching any store.
func (r PlaceRequest) Validate() error {
	if len(r.Items) == 0 {
		return ErrEmptyOrder
	}
	for i, it := range r.Items {
		if strings.TrimSpace(it.ProductID) == "" {
			return fmt.Errorf("%w: item %d has no product", ErrInvalidOrder, i)
		}
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: item %d quantity must be positive", ErrInvalidOrder, i)
		}
	}
	if err := r.ShippingAddress.validate(); err != nil {
		return err
	}
	if !r.PaymentMethod.Valid() {
		return fmt.Errorf("%w: unknown payment method %q", ErrInvalidOrder, r.PaymentMethod)
	}
	return nil
}

// Repository defines behavior for persisting orders. Listings are newest
// first.
type Repository interface {
	Create(ctx context.Context, o Order) error
	Get(ctx context.Context, id string) (Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	List(ctx context.Context) ([]Order, error)
	Update(ctx context.Context, o Order) error
}

var (
	// ErrNotFound indicates the requested order does not exist.
	ErrNotFound = errors.New("order not found")
	// ErrEmptyOrder indicates a submission without items.
	ErrEmptyOrder = errors.New("no order items")
	// ErrInvalidOrder indicates a malformed submission.
	ErrInvalidOrder = errors.New("invalid order")
	// ErrNotAuthorized indicates the actor may not access the order.
	ErrNotAuthorized = errors.New("not authorized")
	// ErrInvalidStatus indicates an unknown status value.
	ErrInvalidStatus = errors.New("invalid order status")
)

// ProductNotFoundError reports a line item referencing a missing product.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

func (e *ProductNotFoundError) Unwrap() error { return catalog.ErrNotFound }

// InsufficientStockError reports a line item asking for more units than the
// product has.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s", e.ProductName)
}

func (e *InsufficientStockError) Unwrap() error { return catalog.ErrInsufficientStock }
