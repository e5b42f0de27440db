package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"storefront/pkg/order"
)

// Schema creates the orders table. Line items and the shipping address are
// stored as JSONB snapshots on the order row.
const Schema = `CREATE TABLE IF NOT EXISTS orders (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	items JSONB NOT NULL,
	shipping_address JSONB NOT NULL,
	payment_method TEXT NOT NULL,
	total_price NUMERIC(14,2) NOT NULL,
	status TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	delivered_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS orders_user_created_idx ON orders (user_id, created_at DESC)`

const columns = "id,user_id,items,shipping_address,payment_method,total_price,status,created_at,delivered_at"

// Repository persists orders in PostgreSQL.
type Repository struct {
	db *sql.DB
}

// New creates a PostgreSQL repository.
func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates the orders table when missing.
func (r *Repository) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, Schema)
	return err
}

// Create inserts a new order.
func (r *Repository) Create(ctx context.Context, o order.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("encoding items: %w", err)
	}
	addr, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return fmt.Errorf("encoding address: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		"INSERT INTO orders ("+columns+") VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)",
		o.ID, o.UserID, items, addr, o.PaymentMethod, o.TotalPrice, o.Status, o.CreatedAt, o.DeliveredAt)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(s scanner) (order.Order, error) {
	var (
		o           order.Order
		items, addr []byte
		delivered   sql.NullTime
	)
	if err := s.Scan(&o.ID, &o.UserID, &items, &addr, &o.PaymentMethod, &o.TotalPrice, &o.Status, &o.CreatedAt, &delivered); err != nil {
		return order.Order{}, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return order.Order{}, fmt.Errorf("decoding items of %s: %w", o.ID, err)
	}
	if err := json.Unmarshal(addr, &o.ShippingAddress); err != nil {
		return order.Order{}, fmt.Errorf("decoding address of %s: %w", o.ID, err)
	}
	if delivered.Valid {
		o.DeliveredAt = &delivered.Time
	}
	return o, nil
}

// Get retrieves an order by ID.
func (r *Repository) Get(ctx context.Context, id string) (order.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, "SELECT "+columns+" FROM orders WHERE id=$1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return order.Order{}, order.ErrNotFound
	}
	return o, err
}

// ListByUser fetches userID's orders, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	return r.query(ctx, "SELECT "+columns+" FROM orders WHERE user_id=$1 ORDER BY created_at DESC", userID)
}

// List fetches all orders, newest first.
func (r *Repository) List(ctx context.Context) ([]order.Order, error) {
	return r.query(ctx, "SELECT "+columns+" FROM orders ORDER BY created_at DESC")
}

func (r *Repository) query(ctx context.Context, query string, args ...any) ([]order.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var orders []order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// Update writes the status and delivery time of an existing order.
func (r *Repository) Update(ctx context.Context, o order.Order) error {
	res, err := r.db.ExecContext(ctx, "UPDATE orders SET status=$2, delivered_at=$3 WHERE id=$1", o.ID, o.Status, o.DeliveredAt)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return order.ErrNotFound
	}
	return nil
}
