// Package catalog holds the product model and the contract every product
// store implements.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Category is one of the fixed product categories.
type Category string

// Known categories.
const (
	CategoryElectronics Category = "Electronics"
	CategoryClothing    Category = "Clothing"
	CategoryHomeGarden  Category = "Home & Garden"
	CategorySports      Category = "Sports"
	CategoryBooks       Category = "Books"
	CategoryToys        Category = "Toys"
	CategoryOther       Category = "Other"
)

// Categories lists every valid category.
var Categories = []Category{
	CategoryElectronics, CategoryClothing, CategoryHomeGarden,
	CategorySports, CategoryBooks, CategoryToys, CategoryOther,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// DefaultImage is used when a product is created without an image.
const DefaultImage = "https://via.placeholder.com/300x300?text=Product+Image"

// MaxRating is the upper bound of Product.Rating.
const MaxRating = 5

// Product is a sellable catalog entry.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    Category        `json:"category"`
	Image       string          `json:"image"`
	Stock       int             `json:"stock"`
	Rating      float64         `json:"rating"`
	NumReviews  int             `json:"numReviews"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Validate checks the invariants every stored product satisfies.
func (p Product) Validate() error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalid)
	case strings.TrimSpace(p.Description) == "":
		return fmt.Errorf("%w: description is required", ErrInvalid)
	case p.Price.IsNegative():
		return fmt.Errorf("%w: price must not be negative", ErrInvalid)
	case !p.Category.Valid():
		return fmt.Errorf("%w: unknown category %q", ErrInvalid, p.Category)
	case p.Stock < 0:
		return fmt.Errorf("%w: stock must not be negative", ErrInvalid)
	case p.Rating < 0 || p.Rating > MaxRating:
		return fmt.Errorf("%w: rating must be between 0 and %d", ErrInvalid, MaxRating)
	case p.NumReviews < 0:
		return fmt.Errorf("%w: review count must not be negative", ErrInvalid)
	}
	return nil
}

// Sort orders accepted by Query.
const (
	SortNewest    = ""
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
	SortRating    = "rating"
)

// Query filters and orders a product listing. Zero value lists everything,
// newest first.
type Query struct {
	Category Category
	Search   string
	Sort     string
}

// Repository defines behavior for persisting products.
type Repository interface {
	Create(ctx context.Context, p Product) error
	Get(ctx context.Context, id string) (Product, error)
	List(ctx context.Context, q Query) ([]Product, error)
	// Patch writes only the non-nil fields of in and returns the stored
	// product. Stock moved by concurrent orders is kept unless in.Stock is set.
	Patch(ctx context.Context, id string, in Input) (Product, error)
	Delete(ctx context.Context, id string) error
	// DecrementStock lowers stock by qty only if at least qty units are
	// available, as a single store operation.
	DecrementStock(ctx context.Context, id string, qty int) error
	IncrementStock(ctx context.Context, id string, qty int) error
}

var (
	// ErrNotFound indicates the requested product does not exist.
	ErrNotFound = errors.New("product not found")
	// ErrInsufficientStock indicates a conditional decrement found too few units.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalid indicates a product failed validation.
	ErrInvalid = errors.New("invalid product")
)
