package main

import (
	"net/http"

	"github.com/gorilla/mux"

	"storefront/pkg/catalog"
	"storefront/pkg/otel"
)

// listProductsHandler lists the catalog.
// @Summary List products
// @Description Filters by category, searches name and description, sorts by price-asc, price-desc or rating (newest first by default)
// @Tags products
// @Produce json
// @Param category query string false "Category"
// @Param search query string false "Case-insensitive search term"
// @Param sort query string false "price-asc | price-desc | rating"
// @Success 200 {array} catalog.Product
// @Router /products [get]
func (s *server) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "listProductsHandler")
	defer span.End()

	q := r.URL.Query()
	products, err := s.products.List(ctx, catalog.Query{
		Category: catalog.Category(q.Get("category")),
		Search:   q.Get("search"),
		Sort:     q.Get("sort"),
	})
	if err != nil {
		s.fail(ctx, w, "list products", err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// getProductHandler returns one product.
// @Summary Get product
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} catalog.Product
// @Failure 404 {object} messageResponse
// @Router /products/{id} [get]
func (s *server) getProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "getProductHandler")
	defer span.End()

	p, err := s.products.Get(ctx, mux.Vars(r)["id"])
	if err != nil {
		s.fail(ctx, w, "get product", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// createProductHandler adds a product.
// @Summary Create product
// @Tags products
// @Accept json
// @Produce json
// @Param product body catalog.Input true "Product"
// @Success 201 {object} catalog.Product
// @Failure 400 {object} messageResponse
// @Security ApiKeyAuth
// @Router /products [post]
func (s *server) createProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "createProductHandler")
	defer span.End()

	var in catalog.Input
	if err := decode(r, &in); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := s.products.Create(ctx, in)
	if err != nil {
		s.fail(ctx, w, "create product", err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// updateProductHandler changes the supplied fields of a product.
// @Summary Update product
// @Tags products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param product body catalog.Input true "Fields to change"
// @Success 200 {object} catalog.Product
// @Failure 404 {object} messageResponse
// @Security ApiKeyAuth
// @Router /products/{id} [put]
func (s *server) updateProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "updateProductHandler")
	defer span.End()

	var in catalog.Input
	if err := decode(r, &in); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := s.products.Update(ctx, mux.Vars(r)["id"], in)
	if err != nil {
		s.fail(ctx, w, "update product", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// deleteProductHandler removes a product.
// @Summary Delete product
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} messageResponse
// @Failure 404 {object} messageResponse
// @Security ApiKeyAuth
// @Router /products/{id} [delete]
func (s *server) deleteProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "deleteProductHandler")
	defer span.End()

	if err := s.products.Delete(ctx, mux.Vars(r)["id"]); err != nil {
		s.fail(ctx, w, "delete product", err)
		return
	}
	writeMessage(w, http.StatusOK, "Product removed")
}
