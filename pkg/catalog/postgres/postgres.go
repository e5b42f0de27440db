package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"storefront/pkg/catalog"
)

// Schema creates the products table.
const Schema = `CREATE TABLE IF NOT EXISTS products (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL,
	price NUMERIC(12,2) NOT NULL CHECK (price >= 0),
	category TEXT NOT NULL,
	image TEXT NOT NULL,
	stock INT NOT NULL CHECK (stock >= 0),
	rating DOUBLE PRECISION NOT NULL DEFAULT 0,
	num_reviews INT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL
)`

const columns = "id,name,description,price,category,image,stock,rating,num_reviews,created_at"

// Repository persists products in PostgreSQL.
type Repository struct {
	db *sql.DB
}

// New creates a PostgreSQL repository.
func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates the products table when missing.
func (r *Repository) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, Schema)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(s scanner) (catalog.Product, error) {
	var p catalog.Product
	err := s.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.Image, &p.Stock, &p.Rating, &p.NumReviews, &p.CreatedAt)
	return p, err
}

// Create inserts a new product.
func (r *Repository) Create(ctx context.Context, p catalog.Product) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO products ("+columns+") VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)",
		p.ID, p.Name, p.Description, p.Price, p.Category, p.Image, p.Stock, p.Rating, p.NumReviews, p.CreatedAt)
	return err
}

// Get retrieves a product by ID.
func (r *Repository) Get(ctx context.Context, id string) (catalog.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, "SELECT "+columns+" FROM products WHERE id=$1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, err
}

// List fetches products matching q.
func (r *Repository) List(ctx context.Context, q catalog.Query) ([]catalog.Product, error) {
	query, args := listQuery(q)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var products []catalog.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func listQuery(q catalog.Query) (string, []any) {
	var (
		where []string
		args  []any
	)
	if q.Category != "" {
		args = append(args, q.Category)
		where = append(where, fmt.Sprintf("category=$%d", len(args)))
	}
	if q.Search != "" {
		args = append(args, "%"+likeEscaper.Replace(q.Search)+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%[1]d OR description ILIKE $%[1]d)", len(args)))
	}

	var b strings.Builder
	b.WriteString("SELECT " + columns + " FROM products")
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	switch q.Sort {
	case catalog.SortPriceAsc:
		b.WriteString(" ORDER BY price ASC")
	case catalog.SortPriceDesc:
		b.WriteString(" ORDER BY price DESC")
	case catalog.SortRating:
		b.WriteString(" ORDER BY rating DESC")
	default:
		b.WriteString(" ORDER BY created_at DESC")
	}
	return b.String(), args
}

// Patch updates the supplied columns only and returns the stored row.
func (r *Repository) Patch(ctx context.Context, id string, in catalog.Input) (catalog.Product, error) {
	query, args := patchQuery(id, in)
	if query == "" {
		return r.Get(ctx, id)
	}
	p, err := scanProduct(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, err
}

func patchQuery(id string, in catalog.Input) (string, []any) {
	var (
		set  []string
		args = []any{id}
	)
	add := func(column string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s=$%d", column, len(args)))
	}
	if in.Name != nil {
		add("name", *in.Name)
	}
	if in.Description != nil {
		add("description", *in.Description)
	}
	if in.Price != nil {
		add("price", *in.Price)
	}
	if in.Category != nil {
		add("category", *in.Category)
	}
	if in.Image != nil {
		add("image", *in.Image)
	}
	if in.Stock != nil {
		add("stock", *in.Stock)
	}
	if len(set) == 0 {
		return "", nil
	}
	return "UPDATE products SET " + strings.Join(set, ", ") + " WHERE id=$1 RETURNING " + columns, args
}

// Delete removes a product by ID.
func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id=$1", id)
	return affected(res, err)
}

// DecrementStock lowers stock in a single guarded UPDATE.
func (r *Repository) DecrementStock(ctx context.Context, id string, qty int) error {
	res, err := r.db.ExecContext(ctx, "UPDATE products SET stock = stock - $2 WHERE id=$1 AND stock >= $2", id, qty)
	if err := affected(res, err); !errors.Is(err, catalog.ErrNotFound) {
		return err
	}
	var exists bool
	if err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM products WHERE id=$1)", id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return catalog.ErrNotFound
	}
	return catalog.ErrInsufficientStock
}

// IncrementStock adds qty units.
func (r *Repository) IncrementStock(ctx context.Context, id string, qty int) error {
	res, err := r.db.ExecContext(ctx, "UPDATE products SET stock = stock + $2 WHERE id=$1", id, qty)
	return affected(res, err)
}

func affected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return catalog.ErrNotFound
	}
	return nil
}
