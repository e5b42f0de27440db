package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/otel/trace"

	"storefront/pkg/account"
	"storefront/pkg/auth"
	"storefront/pkg/cart"
	"storefront/pkg/catalog"
	"storefront/pkg/logger"
	"storefront/pkg/order"
	"storefront/pkg/otel"
)

// server holds the services behind the HTTP handlers.
type server struct {
	log    *logger.Logger
	tracer trace.Tracer

	auth     *auth.Service
	authn    auth.Authenticator
	products *catalog.Service
	carts    *cart.Service
	orders   *order.Service
}

func (s *server) router() *mux.Router {
	protect := auth.Middleware(s.authn, s.log)
	admin := func(h http.HandlerFunc) http.Handler { return protect(auth.AdminOnly(h)) }
	authed := func(h http.HandlerFunc) http.Handler { return protect(h) }

	r := mux.NewRouter()
	r.Use(s.traceMiddleware)

	r.HandleFunc("/register", s.registerHandler).Methods(http.MethodPost)
	r.HandleFunc("/login", s.loginHandler).Methods(http.MethodPost)
	r.Handle("/logout", authed(s.logoutHandler)).Methods(http.MethodPost)
	r.Handle("/me", authed(s.meHandler)).Methods(http.MethodGet)

	r.HandleFunc("/products", s.listProductsHandler).Methods(http.MethodGet)
	r.HandleFunc("/products/{id}", s.getProductHandler).Methods(http.MethodGet)
	r.Handle("/products", admin(s.createProductHandler)).Methods(http.MethodPost)
	r.Handle("/products/{id}", admin(s.updateProductHandler)).Methods(http.MethodPut)
	r.Handle("/products/{id}", admin(s.deleteProductHandler)).Methods(http.MethodDelete)

	c := r.PathPrefix("/cart").Subrouter()
	c.Use(protect)
	c.HandleFunc("", s.getCartHandler).Methods(http.MethodGet)
	c.HandleFunc("", s.addToCartHandler).Methods(http.MethodPost)
	c.HandleFunc("/{itemId}", s.updateCartItemHandler).Methods(http.MethodPut)
	c.HandleFunc("/{itemId}", s.removeCartItemHandler).Methods(http.MethodDelete)

	o := r.PathPrefix("/orders").Subrouter()
	o.Use(protect)
	o.HandleFunc("", s.placeOrderHandler).Methods(http.MethodPost)
	o.HandleFunc("", s.listMyOrdersHandler).Methods(http.MethodGet)
	o.HandleFunc("/all", s.listAllOrdersHandler).Methods(http.MethodGet)
	o.HandleFunc("/{id}", s.getOrderHandler).Methods(http.MethodGet)
	o.HandleFunc("/{id}/status", s.updateOrderStatusHandler).Methods(http.MethodPut)

	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)
	return r
}

func (s *server) traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.InjectTracing(r.Context(), s.tracer)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// actor returns the caller placed in the context by auth.Middleware.
func actor(r *http.Request) account.Actor {
	a, _ := auth.ActorFrom(r.Context())
	return a
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// fail maps err to a status and message. Unexpected errors are logged under
// op and reported without detail.
func (s *server) fail(ctx context.Context, w http.ResponseWriter, op string, err error) {
	status, msg := classify(err)
	if status == http.StatusInternalServerError {
		s.log.Error(ctx, op, "error", err)
	}
	writeMessage(w, status, msg)
}

func classify(err error) (int, string) {
	var (
		short   *order.InsufficientStockError
		missing *order.ProductNotFoundError
	)
	switch {
	case errors.As(err, &short):
		return http.StatusBadRequest, "Insufficient stock for " + short.ProductName
	case errors.As(err, &missing):
		return http.StatusNotFound, "Product " + missing.ProductID + " not found"
	case errors.Is(err, order.ErrEmptyOrder):
		return http.StatusBadRequest, "No order items"
	case errors.Is(err, order.ErrInvalidOrder),
		errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, catalog.ErrInvalid),
		errors.Is(err, auth.ErrInvalidInput),
		errors.Is(err, cart.ErrInvalidQuantity):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, catalog.ErrInsufficientStock):
		return http.StatusBadRequest, "Insufficient stock"
	case errors.Is(err, order.ErrNotFound):
		return http.StatusNotFound, "Order not found"
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound, "Product not found"
	case errors.Is(err, cart.ErrItemNotFound):
		return http.StatusNotFound, "Cart item not found"
	case errors.Is(err, account.ErrNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, order.ErrNotAuthorized):
		return http.StatusForbidden, "Not authorized"
	case errors.Is(err, account.ErrEmailTaken):
		return http.StatusBadRequest, "User already exists"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password"
	}
	return http.StatusInternalServerError, "Server error"
}
