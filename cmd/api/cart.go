package main

import (
	"net/http"

	"github.com/gorilla/mux"

	"storefront/pkg/otel"
)

type addToCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

// getCartHandler returns the caller's cart.
// @Summary Get cart
// @Tags cart
// @Produce json
// @Success 200 {array} cart.Line
// @Security ApiKeyAuth
// @Router /cart [get]
func (s *server) getCartHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "getCartHandler")
	defer span.End()

	lines, err := s.carts.List(ctx, actor(r))
	if err != nil {
		s.fail(ctx, w, "get cart", err)
		return
	}
	writeJSON(w, http.StatusOK, lines)
}

// addToCartHandler adds a product to the cart.
// @Summary Add to cart
// @Tags cart
// @Accept json
// @Produce json
// @Param item body addToCartRequest true "Product and quantity"
// @Success 200 {array} cart.Line
// @Failure 400 {object} messageResponse
// @Failure 404 {object} messageResponse
// @Security ApiKeyAuth
// @Router /cart [post]
func (s *server) addToCartHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "addToCartHandler")
	defer span.End()

	var req addToCartRequest
	if err := decode(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	lines, err := s.carts.Add(ctx, actor(r), req.ProductID, req.Quantity)
	if err != nil {
		s.fail(ctx, w, "add to cart", err)
		return
	}
	writeJSON(w, http.StatusOK, lines)
}

// updateCartItemHandler changes the quantity of a cart line.
// @Summary Update cart item
// @Tags cart
// @Accept json
// @Produce json
// @Param itemId path string true "Cart item ID"
// @Param quantity body quantityRequest true "Quantity"
// @Success 200 {array} cart.Line
// @Failure 404 {object} messageResponse
// @Security ApiKeyAuth
// @Router /cart/{itemId} [put]
func (s *server) updateCartItemHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "updateCartItemHandler")
	defer span.End()

	var req quantityRequest
	if err := decode(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	lines, err := s.carts.UpdateQuantity(ctx, actor(r), mux.Vars(r)["itemId"], req.Quantity)
	if err != nil {
		s.fail(ctx, w, "update cart item", err)
		return
	}
	writeJSON(w, http.StatusOK, lines)
}

// removeCartItemHandler drops a cart line.
// @Summary Remove cart item
// @Tags cart
// @Produce json
// @Param itemId path string true "Cart item ID"
// @Success 200 {array} cart.Line
// @Security ApiKeyAuth
// @Router /cart/{itemId} [delete]
func (s *server) removeCartItemHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "removeCartItemHandler")
	defer span.End()

	lines, err := s.carts.Remove(ctx, actor(r), mux.Vars(r)["itemId"])
	if err != nil {
		s.fail(ctx, w, "remove cart item", err)
		return
	}
	writeJSON(w, http.StatusOK, lines)
}
