package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"storefront/pkg/account"
	accountmem "storefront/pkg/account/memory"
	"storefront/pkg/auth"
	"storefront/pkg/cart"
	"storefront/pkg/catalog"
	catalogmem "storefront/pkg/catalog/memory"
	"storefront/pkg/logger"
	"storefront/pkg/order"
	ordermem "storefront/pkg/order/memory"
)

func TestMain(m *testing.M) {
	decimal.MarshalJSONWithoutQuotes = true
	os.Exit(m.Run())
}

type sessions map[string]account.Actor

func (s sessions) Authenticate(_ context.Context, sid string) (account.Actor, error) {
	a, ok := s[sid]
	if !ok {
		return account.Actor{}, auth.ErrNoSession
	}
	return a, nil
}

type harness struct {
	handler  http.Handler
	products *catalogmem.Repository
	accounts *accountmem.Repository
	orders   *order.Service
	redis    redismock.ClientMock
}

func newHarness(t *testing.T) harness {
	t.Helper()
	ctx := context.Background()
	log := logger.NewNop()

	products := catalogmem.New()
	for _, p := range []catalog.Product{
		{ID: "p1", Name: "Product A", Description: "a", Price: decimal.RequireFromString("10.00"), Category: catalog.CategoryOther, Stock: 5, CreatedAt: time.Unix(100, 0)},
		{ID: "p2", Name: "Product B", Description: "b", Price: decimal.RequireFromString("4.50"), Category: catalog.CategoryBooks, Stock: 3, CreatedAt: time.Unix(200, 0)},
	} {
		require.NoError(t, products.Create(ctx, p))
	}

	accounts := accountmem.New()
	for _, a := range []account.Account{
		{ID: "u1", Name: "Ada", Email: "ada@example.com", Role: account.RoleUser, Cart: []account.CartItem{{ID: "i1", ProductID: "p1", Quantity: 2}}},
		{ID: "u2", Name: "Bob", Email: "bob@example.com", Role: account.RoleUser},
		{ID: "a1", Name: "Root", Email: "root@example.com", Role: account.RoleAdmin},
	} {
		require.NoError(t, accounts.Create(ctx, a))
	}

	db, mock := redismock.NewClientMock()
	orders := order.NewService(ordermem.New(), products, accounts, log)
	authSvc := auth.NewService(accounts, auth.NewSessionStore(db, time.Hour), log)
	s := &server{
		log:    log,
		tracer: noop.NewTracerProvider().Tracer("test"),
		auth:   authSvc,
		authn: sessions{
			"tok-u1":    {ID: "u1", Role: account.RoleUser},
			"tok-u2":    {ID: "u2", Role: account.RoleUser},
			"tok-admin": {ID: "a1", Role: account.RoleAdmin},
			"tok-gone":  {ID: "deleted", Role: account.RoleUser},
		},
		products: catalog.NewService(products, log),
		carts:    cart.NewService(accounts, products, log),
		orders:   orders,
	}
	return harness{handler: s.router(), products: products, accounts: accounts, orders: orders, redis: mock}
}

func (h harness) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	r := httptest.NewRequest(method, path, &buf)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, r)
	return w
}

func message(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var m messageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m), w.Body.String())
	return m.Message
}

func placeBody(items ...map[string]any) map[string]any {
	return map[string]any{
		"items": items,
		"shippingAddress": map[string]string{
			"address": "1 Main St", "city": "Springfield", "postalCode": "12345", "country": "US",
		},
		"paymentMethod": "Credit Card",
	}
}

func item(product string, qty int) map[string]any {
	return map[string]any{"product": product, "quantity": qty}
}

func TestPlaceOrder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	w := h.do(t, http.MethodPost, "/orders", "tok-u1", placeBody(item("p1", 2)))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var o order.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &o))
	assert.True(t, o.TotalPrice.Equal(decimal.NewFromInt(20)), "total %s", o.TotalPrice)
	assert.Equal(t, order.StatusPending, o.Status)
	assert.Equal(t, "u1", o.UserID)

	p, _ := h.products.Get(ctx, "p1")
	assert.Equal(t, 3, p.Stock)
	a, _ := h.accounts.Get(ctx, "u1")
	assert.Empty(t, a.Cart)
}

func TestPlaceOrderErrors(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		body   any
		status int
		msg    string
	}{
		{"unauthenticated", "", placeBody(item("p1", 1)), http.StatusUnauthorized, "Not authorized, no valid session"},
		{"malformed body", "tok-u1", "{", http.StatusBadRequest, ""},
		{"empty", "tok-u1", placeBody(), http.StatusBadRequest, "No order items"},
		{"insufficient stock", "tok-u1", placeBody(item("p2", 10)), http.StatusBadRequest, "Insufficient stock for Product B"},
		{"unknown product", "tok-u1", placeBody(item("ghost", 1)), http.StatusNotFound, "Product ghost not found"},
		{"account gone", "tok-gone", placeBody(item("p2", 1)), http.StatusNotFound, "User not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			w := h.do(t, http.MethodPost, "/orders", tt.token, tt.body)
			assert.Equal(t, tt.status, w.Code)
			if tt.msg != "" {
				assert.Equal(t, tt.msg, message(t, w))
			}
			p, _ := h.products.Get(context.Background(), "p2")
			assert.Equal(t, 3, p.Stock)
		})
	}
}

func placed(t *testing.T, h harness, owner account.Actor) order.Order {
	t.Helper()
	o, err := h.orders.Place(context.Background(), owner, order.PlaceRequest{
		Items:           []order.ItemRequest{{ProductID: "p1", Quantity: 1}},
		ShippingAddress: order.ShippingAddress{Address: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "US"},
		PaymentMethod:   order.PaymentPayPal,
	})
	require.NoError(t, err)
	return o
}

func TestGetOrder(t *testing.T) {
	h := newHarness(t)
	o := placed(t, h, account.Actor{ID: "u1", Role: account.RoleUser})

	w := h.do(t, http.MethodGet, "/orders/"+o.ID, "tok-u2", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Not authorized", message(t, w))

	w = h.do(t, http.MethodGet, "/orders/missing", "tok-u1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Order not found", message(t, w))

	w = h.do(t, http.MethodGet, "/orders/"+o.ID, "tok-admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var v struct {
		User  order.Owner `json:"user"`
		Items []struct {
			Name    string           `json:"name"`
			Product *catalog.Product `json:"product"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	assert.Equal(t, order.Owner{ID: "u1", Name: "Ada", Email: "ada@example.com"}, v.User)
	require.Len(t, v.Items, 1)
	require.NotNil(t, v.Items[0].Product)
	assert.Equal(t, "p1", v.Items[0].Product.ID)
}

func TestListOrders(t *testing.T) {
	h := newHarness(t)
	placed(t, h, account.Actor{ID: "u1", Role: account.RoleUser})
	placed(t, h, account.Actor{ID: "u2", Role: account.RoleUser})

	w := h.do(t, http.MethodGet, "/orders", "tok-u2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine []order.View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mine))
	assert.Len(t, mine, 1)

	w = h.do(t, http.MethodGet, "/orders/all", "tok-u2", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = h.do(t, http.MethodGet, "/orders/all", "tok-admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var all []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Len(t, all, 2)
}

func TestUpdateOrderStatus(t *testing.T) {
	h := newHarness(t)
	o := placed(t, h, account.Actor{ID: "u1", Role: account.RoleUser})
	path := "/orders/" + o.ID + "/status"

	w := h.do(t, http.MethodPut, path, "tok-u1", map[string]string{"status": "Shipped"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = h.do(t, http.MethodPut, path, "tok-admin", map[string]string{"status": "Lost"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(t, http.MethodPut, "/orders/missing/status", "tok-admin", map[string]string{"status": "Shipped"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = h.do(t, http.MethodPut, path, "tok-admin", map[string]string{"status": "Shipped"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "deliveredAt")

	w = h.do(t, http.MethodPut, path, "tok-admin", map[string]string{"status": "Delivered"})
	require.Equal(t, http.StatusOK, w.Code)
	var got order.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, order.StatusDelivered, got.Status)
	assert.NotNil(t, got.DeliveredAt)
}

func TestProducts(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodGet, "/products?sort=price-asc", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []catalog.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "p2", list[0].ID)

	w = h.do(t, http.MethodGet, "/products?category=Books&search=product", "", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "p2", list[0].ID)

	w = h.do(t, http.MethodGet, "/products/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Product not found", message(t, w))

	body := map[string]any{"name": "Chair", "description": "Wooden", "price": 35.5, "category": "Home & Garden", "stock": 4}
	w = h.do(t, http.MethodPost, "/products", "tok-u1", body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = h.do(t, http.MethodPost, "/products", "tok-admin", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created catalog.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, catalog.DefaultImage, created.Image)
	assert.True(t, created.Price.Equal(decimal.RequireFromString("35.5")))

	w = h.do(t, http.MethodPut, "/products/"+created.ID, "tok-admin", map[string]any{"stock": 7})
	require.Equal(t, http.StatusOK, w.Code)
	var updated catalog.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, 7, updated.Stock)
	assert.Equal(t, "Chair", updated.Name)

	w = h.do(t, http.MethodPost, "/products", "tok-admin", map[string]any{"name": "Bad", "description": "x", "price": 1, "category": "Food"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(t, http.MethodDelete, "/products/"+created.ID, "tok-admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Product removed", message(t, w))
}

func TestCart(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodGet, "/cart", "tok-u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var lines []cart.Line
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lines))
	require.Len(t, lines, 1)
	assert.Equal(t, "Product A", lines[0].Product.Name)

	w = h.do(t, http.MethodPost, "/cart", "tok-u1", map[string]any{"productId": "p2", "quantity": 1})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lines))
	assert.Len(t, lines, 2)

	w = h.do(t, http.MethodPost, "/cart", "tok-u1", map[string]any{"productId": "p1", "quantity": 4})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Insufficient stock", message(t, w))

	w = h.do(t, http.MethodPost, "/cart", "tok-u1", map[string]any{"productId": "ghost", "quantity": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = h.do(t, http.MethodPut, "/cart/i1", "tok-u1", map[string]any{"quantity": 9})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(t, http.MethodPut, "/cart/nope", "tok-u1", map[string]any{"quantity": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Cart item not found", message(t, w))

	w = h.do(t, http.MethodDelete, "/cart/i1", "tok-u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lines))
	require.Len(t, lines, 1)
	assert.Equal(t, "p2", lines[0].Product.ID)
}

func TestAccounts(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodPost, "/login", "", map[string]string{"email": "ada@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password", message(t, w))

	w = h.do(t, http.MethodPost, "/register", "", map[string]string{"name": "Ada", "email": "ada@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "User already exists", message(t, w))

	w = h.do(t, http.MethodPost, "/register", "", map[string]string{"name": "Eve", "email": "eve@example.com", "password": "123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, strings.HasPrefix(message(t, w), auth.ErrInvalidInput.Error()))

	w = h.do(t, http.MethodGet, "/me", "tok-u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, "Ada", me["name"])
	assert.NotContains(t, me, "passwordHash")

	h.redis.ExpectDel("session:tok-u1").SetVal(1)
	w = h.do(t, http.MethodPost, "/logout", "tok-u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), auth.CookieName+"=;")
	assert.NoError(t, h.redis.ExpectationsWereMet())
}
