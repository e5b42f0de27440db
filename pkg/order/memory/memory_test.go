package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/pkg/order"
)

func TestRepository(t *testing.T) {
	ctx := context.Background()
	repo := New()
	o := order.Order{ID: "1", UserID: "u1", Status: order.StatusPending, CreatedAt: time.Now()}
	if err := repo.Create(ctx, o); err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := repo.Get(ctx, "1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.UserID != "u1" {
		t.Fatalf("expected u1, got %s", got.UserID)
	}
	o.Status = order.StatusShipped
	if err := repo.Update(ctx, o); err != nil {
		t.Fatalf("update: %v", err)
	}
	list, err := repo.List(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v len=%d", err, len(list))
	}
	if list[0].Status != order.StatusShipped {
		t.Fatalf("expected Shipped, got %s", list[0].Status)
	}
	if err := repo.Update(ctx, order.Order{ID: "2"}); !errors.Is(err, order.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.Get(ctx, "2"); err == nil {
		t.Fatal("expected error for unknown order")
	}
}

func TestListByUserNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := New()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo.Create(ctx, order.Order{ID: "old", UserID: "u1", CreatedAt: base})
	repo.Create(ctx, order.Order{ID: "new", UserID: "u1", CreatedAt: base.Add(time.Hour)})
	repo.Create(ctx, order.Order{ID: "other", UserID: "u2", CreatedAt: base.Add(2 * time.Hour)})

	list, err := repo.ListByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != "new" || list[1].ID != "old" {
		t.Fatalf("unexpected order: %+v", list)
	}
}
