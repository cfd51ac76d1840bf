package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/syed-hamad/Retail-POS-sub001/api/responses"
	"github.com/syed-hamad/Retail-POS-sub001/api/validators"
	"github.com/syed-hamad/Retail-POS-sub001/internal/catalog"
	pkgerrors "github.com/syed-hamad/Retail-POS-sub001/pkg/errors"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/logger"
)

const maxProductListLimit = 1000

type createProductRequest struct {
	Title     string  `json:"title" validate:"required"`
	Thumbnail string  `json:"thumbnail"`
	Category  string  `json:"category"`
	Price     float64 `json:"price" validate:"min=0"`
	MRP       float64 `json:"mrp" validate:"min=0"`
	StockQty  int     `json:"stockQty" validate:"min=0"`
}

type productPayload struct {
	ID string `json:"id"`
	catalog.Product
}

func productToPayload(product catalog.Product) productPayload {
	return productPayload{ID: product.ID, Product: product}
}

// ProductsCreate adds a catalog entry.
func ProductsCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionOrFail(w, r, logg)
		if !ok {
			return
		}
		var body createProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Create(r.Context(), sess, catalog.CreateProductInput{
			Title:     validators.SanitizeString(body.Title, 200),
			Thumbnail: validators.SanitizeString(body.Thumbnail, 500),
			Category:  validators.SanitizeString(body.Category, 100),
			Price:     body.Price,
			MRP:       body.MRP,
			StockQty:  body.StockQty,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, productToPayload(product))
	}
}

// ProductsList serves the seller's catalog, optionally by category.
func ProductsList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionOrFail(w, r, logg)
		if !ok {
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, maxProductListLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		category := validators.SanitizeString(r.URL.Query().Get("category"), 100)
		list, err := svc.List(r.Context(), sess, category, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payload := make([]productPayload, 0, len(list))
		for _, product := range list {
			payload = append(payload, productToPayload(product))
		}
		responses.WriteSuccess(w, map[string]any{"products": payload})
	}
}

// ProductsGet serves one catalog entry.
func ProductsGet(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionOrFail(w, r, logg)
		if !ok {
			return
		}
		product, err := svc.Get(r.Context(), sess, chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, productToPayload(product))
	}
}

// ProductsUpdate merges the supplied fields into the product.
func ProductsUpdate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionOrFail(w, r, logg)
		if !ok {
			return
		}
		var fields map[string]any
		if err := validators.DecodeJSONBody(r, &fields); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Update(r.Context(), sess, chi.URLParam(r, "productId"), fields)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, productToPayload(product))
	}
}

// ProductsDelete removes a catalog entry.
func ProductsDelete(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionOrFail(w, r, logg)
		if !ok {
			return
		}
		if err := svc.Delete(r.Context(), sess, chi.URLParam(r, "productId")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"deleted": true})
	}
}

type adjustStockRequest struct {
	Delta int `json:"delta"`
}

// ProductsAdjustStock moves the stock quantity by a signed delta.
func ProductsAdjustStock(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionOrFail(w, r, logg)
		if !ok {
			return
		}
		var body adjustStockRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if body.Delta == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "delta cannot be zero"))
			return
		}
		product, err := svc.AdjustStock(r.Context(), sess, chi.URLParam(r, "productId"), body.Delta)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, productToPayload(product))
	}
}
