package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"storefront/pkg/logger"
	"storefront/pkg/otel"
)

// Input carries the admin-editable product fields. Nil fields are left
// unchanged by Update and take their zero value (or default) on Create.
type Input struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Category    *Category        `json:"category,omitempty"`
	Image       *string          `json:"image,omitempty"`
	Stock       *int             `json:"stock,omitempty"`
}

// Normalize trims the name and replaces an explicitly empty image with
// DefaultImage.
func (in Input) Normalize() Input {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		in.Name = &name
	}
	if in.Image != nil && *in.Image == "" {
		img := DefaultImage
		in.Image = &img
	}
	return in
}

// Empty reports whether in sets no field.
func (in Input) Empty() bool {
	return in == Input{}
}

// Apply copies the non-nil fields of in onto p.
func (in Input) Apply(p *Product) {
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if in.Image != nil {
		p.Image = *in.Image
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
}

// Service exposes the catalog to the HTTP layer.
type Service struct {
	repo  Repository
	log   *logger.Logger
	now   func() time.Time
	newID func() string
}

// NewService creates a Service over repo.
func NewService(repo Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log, now: time.Now, newID: uuid.NewString}
}

// List returns the products matching q.
func (s *Service) List(ctx context.Context, q Query) ([]Product, error) {
	ctx, span := otel.AddSpan(ctx, "catalog.List",
		attribute.String("category", string(q.Category)),
		attribute.String("sort", q.Sort),
	)
	defer span.End()

	return s.repo.List(ctx, q)
}

// Get returns one product.
func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	ctx, span := otel.AddSpan(ctx, "catalog.Get", attribute.String("product", id))
	defer span.End()

	return s.repo.Get(ctx, id)
}

// Create adds a product. Rating and review count start at zero.
func (s *Service) Create(ctx context.Context, in Input) (Product, error) {
	ctx, span := otel.AddSpan(ctx, "catalog.Create")
	defer span.End()

	p := Product{ID: s.newID(), CreatedAt: s.now().UTC()}
	in.Normalize().Apply(&p)
	if p.Image == "" {
		p.Image = DefaultImage
	}
	if err := p.Validate(); err != nil {
		return Product{}, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return Product{}, err
	}
	s.log.Info(ctx, "product created", "product", p.ID)
	return p, nil
}

// Update changes the supplied fields of a product. The merged product is
// validated first, then only the supplied fields are written so stock taken
// by orders in between is not overwritten.
func (s *Service) Update(ctx context.Context, id string, in Input) (Product, error) {
	ctx, span := otel.AddSpan(ctx, "catalog.Update", attribute.String("product", id))
	defer span.End()

	in = in.Normalize()
	merged, err := s.repo.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	in.Apply(&merged)
	if err := merged.Validate(); err != nil {
		return Product{}, err
	}
	return s.repo.Patch(ctx, id, in)
}

// Delete removes a product. Orders keep their snapshots.
func (s *Service) Delete(ctx context.Context, id string) error {
	ctx, span := otel.AddSpan(ctx, "catalog.Delete", attribute.String("product", id))
	defer span.End()

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info(ctx, "product deleted", "product", id)
	return nil
}
