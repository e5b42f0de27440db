package memory

import (
	"context"
	"errors"
	"testing"

	"storefront/pkg/account"
)

func TestRepository(t *testing.T) {
	ctx := context.Background()
	repo := New()
	a := account.Account{ID: "u1", Name: "Ada", Email: "Ada@Example.com", Role: account.RoleUser}
	if err := repo.Create(ctx, a); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Create(ctx, account.Account{ID: "u2", Email: "ada@example.com"}); !errors.Is(err, account.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	got, err := repo.GetByEmail(ctx, "ADA@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got.ID != "u1" {
		t.Fatalf("expected u1, got %s", got.ID)
	}

	got.Cart = append(got.Cart, account.CartItem{ID: "i1", ProductID: "p1", Quantity: 2})
	if err := repo.Save(ctx, got); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, _ = repo.Get(ctx, "u1")
	if len(got.Cart) != 1 {
		t.Fatalf("expected 1 cart line, got %d", len(got.Cart))
	}

	if err := repo.ClearCart(ctx, "u1"); err != nil {
		t.Fatalf("clear cart: %v", err)
	}
	got, _ = repo.Get(ctx, "u1")
	if len(got.Cart) != 0 {
		t.Fatalf("expected empty cart, got %v", got.Cart)
	}
	if err := repo.ClearCart(ctx, "missing"); !errors.Is(err, account.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReturnedCartIsACopy(t *testing.T) {
	ctx := context.Background()
	repo := New()
	repo.Create(ctx, account.Account{ID: "u1", Email: "u1@example.com", Cart: []account.CartItem{{ID: "i1", Quantity: 1}}})

	a, _ := repo.Get(ctx, "u1")
	a.Cart[0].Quantity = 9

	again, _ := repo.Get(ctx, "u1")
	if again.Cart[0].Quantity != 1 {
		t.Fatalf("stored cart was mutated through a returned copy")
	}
}
