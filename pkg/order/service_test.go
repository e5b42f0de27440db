package order_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/pkg/account"
	accountmem "storefront/pkg/account/memory"
	"storefront/pkg/catalog"
	catalogmem "storefront/pkg/catalog/memory"
	"storefront/pkg/logger"
	"storefront/pkg/order"
	ordermem "storefront/pkg/order/memory"
)

var (
	customer = account.Actor{ID: "u1", Role: account.RoleUser}
	stranger = account.Actor{ID: "u2", Role: account.RoleUser}
	admin    = account.Actor{ID: "a1", Role: account.RoleAdmin}
)

type fixture struct {
	svc      *order.Service
	products *catalogmem.Repository
	accounts *accountmem.Repository
	orders   *ordermem.Repository
}

func newFixture(t *testing.T, wrap func(*catalogmem.Repository) catalog.Repository) fixture {
	t.Helper()
	ctx := context.Background()

	mem := catalogmem.New()
	for _, p := range []catalog.Product{
		{ID: "A", Name: "Product A", Price: decimal.RequireFromString("10.00"), Category: catalog.CategoryOther, Stock: 5},
		{ID: "B", Name: "Product B", Price: decimal.RequireFromString("4.50"), Category: catalog.CategoryOther, Stock: 3},
	} {
		require.NoError(t, mem.Create(ctx, p))
	}
	var products catalog.Repository = mem
	if wrap != nil {
		products = wrap(mem)
	}

	accounts := accountmem.New()
	require.NoError(t, accounts.Create(ctx, account.Account{
		ID: "u1", Name: "Ada", Email: "ada@example.com", Role: account.RoleUser,
		Cart: []account.CartItem{{ID: "i1", ProductID: "A", Quantity: 2}},
	}))
	require.NoError(t, accounts.Create(ctx, account.Account{ID: "u2", Name: "Bob", Email: "bob@example.com", Role: account.RoleUser}))

	orders := ordermem.New()
	return fixture{
		svc:      order.NewService(orders, products, accounts, logger.NewNop()),
		products: mem,
		accounts: accounts,
		orders:   orders,
	}
}

func request(items ...order.ItemRequest) order.PlaceRequest {
	return order.PlaceRequest{
		Items:           items,
		ShippingAddress: order.ShippingAddress{Address: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "US"},
		PaymentMethod:   order.PaymentCreditCard,
	}
}

func (f fixture) stock(t *testing.T, id string) int {
	t.Helper()
	p, err := f.products.Get(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func TestPlaceOrder(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	o, err := f.svc.Place(ctx, customer, request(order.ItemRequest{ProductID: "A", Quantity: 2}))
	require.NoError(t, err)

	assert.True(t, o.TotalPrice.Equal(decimal.RequireFromString("20.00")), "total %s", o.TotalPrice)
	assert.Equal(t, order.StatusPending, o.Status)
	assert.Equal(t, "u1", o.UserID)
	assert.Nil(t, o.DeliveredAt)
	assert.False(t, o.CreatedAt.IsZero())
	assert.Equal(t, 3, f.stock(t, "A"))

	a, err := f.accounts.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, a.Cart)

	stored, err := f.orders.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, stored.TotalPrice.Equal(o.TotalPrice))
}

func TestPlaceOrderSnapshotsLinesInSubmissionOrder(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	o, err := f.svc.Place(ctx, customer, request(
		order.ItemRequest{ProductID: "B", Quantity: 3},
		order.ItemRequest{ProductID: "A", Quantity: 1},
	))
	require.NoError(t, err)

	require.Len(t, o.Items, 2)
	assert.Equal(t, order.LineItem{ProductID: "B", Name: "Product B", Quantity: 3, Price: o.Items[0].Price}, o.Items[0])
	assert.True(t, o.Items[0].Price.Equal(decimal.RequireFromString("4.50")))
	assert.Equal(t, "A", o.Items[1].ProductID)
	assert.True(t, o.TotalPrice.Equal(decimal.RequireFromString("23.50")))
	assert.True(t, o.TotalPrice.Equal(order.Total(o.Items)))
	assert.Equal(t, 0, f.stock(t, "B"))
	assert.Equal(t, 4, f.stock(t, "A"))

	// later catalog changes do not touch the record
	price, name := decimal.NewFromInt(99), "Renamed"
	_, err = f.products.Patch(ctx, "A", catalog.Input{Price: &price, Name: &name})
	require.NoError(t, err)
	stored, err := f.orders.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "Product A", stored.Items[1].Name)
	assert.True(t, stored.TotalPrice.Equal(decimal.RequireFromString("23.50")))
}

func TestPlaceOrderEmpty(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.Place(ctx, customer, request())
	assert.ErrorIs(t, err, order.ErrEmptyOrder)

	all, _ := f.orders.List(ctx)
	assert.Empty(t, all)
	a, _ := f.accounts.Get(ctx, "u1")
	assert.Len(t, a.Cart, 1)
	assert.Equal(t, 5, f.stock(t, "A"))
}

func TestPlaceOrderInvalid(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	tests := map[string]func(r *order.PlaceRequest){
		"zero quantity":   func(r *order.PlaceRequest) { r.Items[0].Quantity = 0 },
		"missing product": func(r *order.PlaceRequest) { r.Items[0].ProductID = "" },
		"no city":         func(r *order.PlaceRequest) { r.ShippingAddress.City = " " },
		"bad payment":     func(r *order.PlaceRequest) { r.PaymentMethod = "Bitcoin" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			r := request(order.ItemRequest{ProductID: "A", Quantity: 1})
			mutate(&r)
			_, err := f.svc.Place(ctx, customer, r)
			assert.ErrorIs(t, err, order.ErrInvalidOrder)
		})
	}
	assert.Equal(t, 5, f.stock(t, "A"))
}

func TestPlaceOrderProductNotFound(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.Place(context.Background(), customer, request(
		order.ItemRequest{ProductID: "A", Quantity: 1},
		order.ItemRequest{ProductID: "ghost", Quantity: 1},
	))

	var nf *order.ProductNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "ghost", nf.ProductID)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	assert.Equal(t, 5, f.stock(t, "A"), "earlier lines must not be decremented")
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.Place(ctx, customer, request(order.ItemRequest{ProductID: "B", Quantity: 10}))

	var is *order.InsufficientStockError
	require.ErrorAs(t, err, &is)
	assert.Equal(t, "Product B", is.ProductName)
	assert.EqualError(t, err, "insufficient stock for Product B")
	assert.Equal(t, 3, f.stock(t, "B"))

	all, _ := f.orders.List(ctx)
	assert.Empty(t, all)
}

func TestPlaceOrderIsAllOrNothing(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.Place(context.Background(), customer, request(
		order.ItemRequest{ProductID: "A", Quantity: 2},
		order.ItemRequest{ProductID: "B", Quantity: 4},
	))

	assert.ErrorIs(t, err, catalog.ErrInsufficientStock)
	assert.Equal(t, 5, f.stock(t, "A"))
	assert.Equal(t, 3, f.stock(t, "B"))
}

func TestPlaceOrderSumsRepeatedProduct(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.Place(context.Background(), customer, request(
		order.ItemRequest{ProductID: "B", Quantity: 2},
		order.ItemRequest{ProductID: "B", Quantity: 2},
	))

	assert.ErrorIs(t, err, catalog.ErrInsufficientStock)
	assert.Equal(t, 3, f.stock(t, "B"))
}

// racingCatalog lets validation pass and then loses the decrement of one
// product, as if a concurrent order took the units in between.
type racingCatalog struct {
	*catalogmem.Repository
	lose string
}

func (r racingCatalog) DecrementStock(ctx context.Context, id string, qty int) error {
	if id == r.lose {
		return catalog.ErrInsufficientStock
	}
	return r.Repository.DecrementStock(ctx, id, qty)
}

func TestPlaceOrderLostRaceRestoresStock(t *testing.T) {
	f := newFixture(t, func(mem *catalogmem.Repository) catalog.Repository {
		return racingCatalog{Repository: mem, lose: "B"}
	})

	_, err := f.svc.Place(context.Background(), customer, request(
		order.ItemRequest{ProductID: "A", Quantity: 2},
		order.ItemRequest{ProductID: "B", Quantity: 1},
	))

	var is *order.InsufficientStockError
	require.ErrorAs(t, err, &is)
	assert.Equal(t, "Product B", is.ProductName)
	assert.Equal(t, 5, f.stock(t, "A"), "decrement of A must be restored")
	all, _ := f.orders.List(context.Background())
	assert.Empty(t, all)
}

type failingOrders struct{ order.Repository }

func (failingOrders) Create(context.Context, order.Order) error { return errors.New("disk full") }

func TestPlaceOrderPersistenceFailureRestoresStock(t *testing.T) {
	f := newFixture(t, nil)
	svc := order.NewService(failingOrders{f.orders}, f.products, f.accounts, logger.NewNop())

	_, err := svc.Place(context.Background(), customer, request(order.ItemRequest{ProductID: "A", Quantity: 2}))

	require.Error(t, err)
	assert.NotErrorIs(t, err, catalog.ErrInsufficientStock)
	assert.Equal(t, 5, f.stock(t, "A"))
}

func TestPlaceOrderWithoutAccount(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.Place(ctx, account.Actor{ID: "ghost", Role: account.RoleUser},
		request(order.ItemRequest{ProductID: "A", Quantity: 2}))

	assert.ErrorIs(t, err, account.ErrNotFound)
	assert.Equal(t, 5, f.stock(t, "A"))
	all, _ := f.orders.List(ctx)
	assert.Empty(t, all)
}

// accountVanishes removes the account between the order being recorded and
// the cart being cleared.
type accountVanishes struct{ *accountmem.Repository }

func (accountVanishes) ClearCart(context.Context, string) error { return account.ErrNotFound }

func TestPlaceOrderCartClearFailureIsInternal(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	svc := order.NewService(f.orders, f.products, accountVanishes{f.accounts}, logger.NewNop())

	_, err := svc.Place(ctx, customer, request(order.ItemRequest{ProductID: "A", Quantity: 2}))

	require.Error(t, err)
	assert.NotErrorIs(t, err, account.ErrNotFound)
	all, _ := f.orders.List(ctx)
	assert.Len(t, all, 1, "the order stays recorded")
	assert.Equal(t, 3, f.stock(t, "A"))
}

func TestGetOrderAuthorization(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	o, err := f.svc.Place(ctx, customer, request(order.ItemRequest{ProductID: "A", Quantity: 1}))
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, stranger, o.ID)
	assert.ErrorIs(t, err, order.ErrNotAuthorized)

	got, err := f.svc.Get(ctx, customer, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	_, err = f.svc.Get(ctx, admin, o.ID)
	assert.NoError(t, err)

	_, err = f.svc.Get(ctx, admin, "missing")
	assert.ErrorIs(t, err, order.ErrNotFound)
}

func TestListOrders(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	clock := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	f.svc.SetClock(func() time.Time { return clock })
	first, err := f.svc.Place(ctx, customer, request(order.ItemRequest{ProductID: "A", Quantity: 1}))
	require.NoError(t, err)
	clock = clock.Add(time.Minute)
	second, err := f.svc.Place(ctx, stranger, request(order.ItemRequest{ProductID: "B", Quantity: 1}))
	require.NoError(t, err)

	mine, err := f.svc.ListMine(ctx, customer)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, first.ID, mine[0].ID)

	_, err = f.svc.ListAll(ctx, customer)
	assert.ErrorIs(t, err, order.ErrNotAuthorized)

	all, err := f.svc.ListAll(ctx, admin)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID, "newest first")
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	o, err := f.svc.Place(ctx, customer, request(order.ItemRequest{ProductID: "A", Quantity: 1}))
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, customer, o.ID, order.StatusShipped)
	assert.ErrorIs(t, err, order.ErrNotAuthorized)

	_, err = f.svc.UpdateStatus(ctx, admin, o.ID, "Lost")
	assert.ErrorIs(t, err, order.ErrInvalidStatus)

	_, err = f.svc.UpdateStatus(ctx, admin, "missing", order.StatusShipped)
	assert.ErrorIs(t, err, order.ErrNotFound)

	shipped, err := f.svc.UpdateStatus(ctx, admin, o.ID, order.StatusShipped)
	require.NoError(t, err)
	assert.Equal(t, order.StatusShipped, shipped.Status)
	assert.Nil(t, shipped.DeliveredAt)

	at := time.Date(2025, 8, 2, 15, 4, 5, 0, time.UTC)
	f.svc.SetClock(func() time.Time { return at })
	delivered, err := f.svc.UpdateStatus(ctx, admin, o.ID, order.StatusDelivered)
	require.NoError(t, err)
	require.NotNil(t, delivered.DeliveredAt)
	assert.True(t, delivered.DeliveredAt.Equal(at))

	// transitions are unrestricted
	back, err := f.svc.UpdateStatus(ctx, admin, o.ID, order.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, back.Status)

	stored, _ := f.orders.Get(ctx, o.ID)
	assert.Equal(t, order.StatusPending, stored.Status)
}

func TestViews(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	o, err := f.svc.Place(ctx, customer, request(
		order.ItemRequest{ProductID: "A", Quantity: 1},
		order.ItemRequest{ProductID: "B", Quantity: 1},
	))
	require.NoError(t, err)
	require.NoError(t, f.products.Delete(ctx, "B"))

	views, err := f.svc.Views(ctx, []order.Order{o}, true)
	require.NoError(t, err)
	require.Len(t, views, 1)

	v := views[0]
	assert.Equal(t, order.Owner{ID: "u1", Name: "Ada", Email: "ada@example.com"}, v.User)
	require.Len(t, v.Items, 2)
	require.NotNil(t, v.Items[0].Product)
	assert.Equal(t, "Product A", v.Items[0].Product.Name)
	assert.Nil(t, v.Items[1].Product)
	assert.Equal(t, "Product B", v.Items[1].Name)

	plain, err := f.svc.Views(ctx, []order.Order{o}, false)
	require.NoError(t, err)
	assert.Equal(t, order.Owner{ID: "u1"}, plain[0].User)
}
