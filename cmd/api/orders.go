package main

import (
	"net/http"

	"github.com/gorilla/mux"

	"storefront/pkg/order"
	"storefront/pkg/otel"
)

type statusRequest struct {
	Status order.Status `json:"status"`
}

// placeOrderHandler creates an order from the submitted items and empties the
// caller's cart.
// @Summary Place order
// @Tags orders
// @Accept json
// @Produce json
// @Param order body order.PlaceRequest true "Items, shipping address and payment method"
// @Success 201 {object} order.Order
// @Failure 400 {object} messageResponse
// @Failure 404 {object} messageResponse
// @Security ApiKeyAuth
// @Router /orders [post]
func (s *server) placeOrderHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "placeOrderHandler")
	defer span.End()

	var req order.PlaceRequest
	if err := decode(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	o, err := s.orders.Place(ctx, actor(r), req)
	if err != nil {
		s.fail(ctx, w, "place order", err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

// listMyOrdersHandler lists the caller's orders.
// @Summary List my orders
// @Tags orders
// @Produce json
// @Success 200 {array} order.View
// @Security ApiKeyAuth
// @Router /orders [get]
func (s *server) listMyOrdersHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "listMyOrdersHandler")
	defer span.End()

	orders, err := s.orders.ListMine(ctx, actor(r))
	if err != nil {
		s.fail(ctx, w, "list orders", err)
		return
	}
	views, err := s.orders.Views(ctx, orders, false)
	if err != nil {
		s.fail(ctx, w, "list orders", err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// listAllOrdersHandler lists every order with its owner.
// @Summary List all orders
// @Tags orders
// @Produce json
// @Success 200 {array} order.View
// @Failure 403 {object} messageResponse
// @Security ApiKeyAuth
// @Router /orders/all [get]
func (s *server) listAllOrdersHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "listAllOrdersHandler")
	defer span.End()

	orders, err := s.orders.ListAll(ctx, actor(r))
	if err != nil {
		s.fail(ctx, w, "list all orders", err)
		return
	}
	views, err := s.orders.Views(ctx, orders, true)
	if err != nil {
		s.fail(ctx, w, "list all orders", err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// getOrderHandler retrieves an order by ID.
// @Summary Get order
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} order.View
// @Failure 403 {object} messageResponse
// @Failure 404 {object} messageResponse
// @Security ApiKeyAuth
// @Router /orders/{id} [get]
func (s *server) getOrderHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "getOrderHandler")
	defer span.End()

	o, err := s.orders.Get(ctx, actor(r), mux.Vars(r)["id"])
	if err != nil {
		s.fail(ctx, w, "get order", err)
		return
	}
	views, err := s.orders.Views(ctx, []order.Order{o}, true)
	if err != nil {
		s.fail(ctx, w, "get order", err)
		return
	}
	writeJSON(w, http.StatusOK, views[0])
}

// updateOrderStatusHandler sets the status of an order.
// @Summary Update order status
// @Tags orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param status body statusRequest true "New status"
// @Success 200 {object} order.Order
// @Failure 400 {object} messageResponse
// @Failure 403 {object} messageResponse
// @Failure 404 {object} messageResponse
// @Security ApiKeyAuth
// @Router /orders/{id}/status [put]
func (s *server) updateOrderStatusHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "updateOrderStatusHandler")
	defer span.End()

	var req statusRequest
	if err := decode(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	o, err := s.orders.UpdateStatus(ctx, actor(r), mux.Vars(r)["id"], req.Status)
	if err != nil {
		s.fail(ctx, w, "update order status", err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
