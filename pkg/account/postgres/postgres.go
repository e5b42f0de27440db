package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"storefront/pkg/account"
)

// Schema creates the accounts table. The cart is stored as a JSONB array on
// the account row.
const Schema = `CREATE TABLE IF NOT EXISTS accounts (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role TEXT NOT NULL,
	cart JSONB NOT NULL DEFAULT '[]',
	created_at TIMESTAMPTZ NOT NULL
)`

const (
	columns         = "id,name,email,password_hash,role,cart,created_at"
	uniqueViolation = "23505"
)

// Repository persists accounts in PostgreSQL.
type Repository struct {
	db *sql.DB
}

// New creates a PostgreSQL repository.
func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates the accounts table when missing.
func (r *Repository) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, Schema)
	return err
}

func encodeCart(cart []account.CartItem) ([]byte, error) {
	if cart == nil {
		cart = []account.CartItem{}
	}
	b, err := json.Marshal(cart)
	if err != nil {
		return nil, fmt.Errorf("encoding cart: %w", err)
	}
	return b, nil
}

func mapErr(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return account.ErrEmailTaken
	}
	return err
}

// Create inserts a new account.
func (r *Repository) Create(ctx context.Context, a account.Account) error {
	cart, err := encodeCart(a.Cart)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		"INSERT INTO accounts ("+columns+") VALUES ($1,$2,$3,$4,$5,$6,$7)",
		a.ID, a.Name, account.NormalizeEmail(a.Email), a.PasswordHash, a.Role, cart, a.CreatedAt)
	return mapErr(err)
}

// Get retrieves an account by ID.
func (r *Repository) Get(ctx context.Context, id string) (account.Account, error) {
	return r.queryOne(ctx, "SELECT "+columns+" FROM accounts WHERE id=$1", id)
}

// GetByEmail retrieves an account by email address.
func (r *Repository) GetByEmail(ctx context.Context, email string) (account.Account, error) {
	return r.queryOne(ctx, "SELECT "+columns+" FROM accounts WHERE email=$1", account.NormalizeEmail(email))
}

func (r *Repository) queryOne(ctx context.Context, query string, arg any) (account.Account, error) {
	var (
		a    account.Account
		cart []byte
	)
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.Role, &cart, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return account.Account{}, account.ErrNotFound
	}
	if err != nil {
		return account.Account{}, err
	}
	if err := json.Unmarshal(cart, &a.Cart); err != nil {
		return account.Account{}, fmt.Errorf("decoding cart of %s: %w", a.ID, err)
	}
	return a, nil
}

// Save updates an existing account, cart included.
func (r *Repository) Save(ctx context.Context, a account.Account) error {
	cart, err := encodeCart(a.Cart)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE accounts SET name=$2, email=$3, password_hash=$4, role=$5, cart=$6 WHERE id=$1",
		a.ID, a.Name, account.NormalizeEmail(a.Email), a.PasswordHash, a.Role, cart)
	if err != nil {
		return mapErr(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return account.ErrNotFound
	}
	return nil
}

// ClearCart empties the account's cart.
func (r *Repository) ClearCart(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE accounts SET cart='[]' WHERE id=$1", id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return account.ErrNotFound
	}
	return nil
}
