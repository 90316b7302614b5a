package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mitaxdev/litescripts/api/responses"
	"github.com/mitaxdev/litescripts/internal/products"
	pkgerrors "github.com/mitaxdev/litescripts/pkg/errors"
	"github.com/mitaxdev/litescripts/pkg/logger"
)

// ProductsList returns the purchasable package catalog.
func ProductsList(catalog products.Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if catalog == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}
		responses.WriteSuccess(w, map[string]any{"products": catalog.List(r.Context())})
	}
}

// ProductDetail returns one catalog entry by id.
func ProductDetail(catalog products.Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if catalog == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		product, err := catalog.Get(r.Context(), chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}
