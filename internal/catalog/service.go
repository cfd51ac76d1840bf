package catalog

import (
	"context"

	"github.com/syed-hamad/Retail-POS-sub001/pkg/auth/session"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/enums"
	pkgerrors "github.com/syed-hamad/Retail-POS-sub001/pkg/errors"
)

// CreateProductInput is a new catalog entry.
type CreateProductInput struct {
	Title     string
	Thumbnail string
	Category  string
	Price     float64
	MRP       float64
	StockQty  int
}

// Service exposes catalog management to the HTTP surface.
type Service interface {
	Create(ctx context.Context, sess session.Session, input CreateProductInput) (Product, error)
	Get(ctx context.Context, sess session.Session, id string) (Product, error)
	List(ctx context.Context, sess session.Session, category string, limit int) ([]Product, error)
	Update(ctx context.Context, sess session.Session, id string, fields map[string]any) (Product, error)
	Delete(ctx context.Context, sess session.Session, id string) error
	AdjustStock(ctx context.Context, sess session.Session, id string, delta int) (Product, error)
}

type service struct {
	repo *Repository
}

// NewService builds the catalog service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog repo is required")
	}
	return &service{repo: repo}, nil
}

// Create validates and stores a new product.
func (s *service) Create(ctx context.Context, sess session.Session, input CreateProductInput) (Product, error) {
	if !sess.Can(enums.PermissionCatalogWrite) {
		return Product{}, pkgerrors.New(pkgerrors.CodeForbidden, "catalog changes require catalog permission")
	}
	if input.Title == "" {
		return Product{}, pkgerrors.New(pkgerrors.CodeValidation, "product title is required")
	}
	if input.Price < 0 || input.MRP < 0 {
		return Product{}, pkgerrors.New(pkgerrors.CodeValidation, "prices cannot be negative")
	}
	if input.StockQty < 0 {
		return Product{}, pkgerrors.New(pkgerrors.CodeValidation, "stock quantity cannot be negative")
	}

	product := Product{
		SellerID:  sess.SellerID,
		Title:     input.Title,
		Thumbnail: input.Thumbnail,
		Category:  input.Category,
		Price:     input.Price,
		MRP:       input.MRP,
		InStock:   input.StockQty > 0,
		StockQty:  input.StockQty,
	}
	id, err := s.repo.Create(ctx, product)
	if err != nil {
		return Product{}, err
	}
	return s.repo.Fetch(ctx, id)
}

// Get returns one product scoped to the caller's seller.
func (s *service) Get(ctx context.Context, sess session.Session, id string) (Product, error) {
	return s.fetchOwned(ctx, sess, id)
}

// List returns the seller's products, optionally by category.
func (s *service) List(ctx context.Context, sess session.Session, category string, limit int) ([]Product, error) {
	return s.repo.List(ctx, sess.SellerID, category, limit)
}

// Update merges the allowed fields into the product.
func (s *service) Update(ctx context.Context, sess session.Session, id string, fields map[string]any) (Product, error) {
	if !sess.Can(enums.PermissionCatalogWrite) {
		return Product{}, pkgerrors.New(pkgerrors.CodeForbidden, "catalog changes require catalog permission")
	}
	if _, err := s.fetchOwned(ctx, sess, id); err != nil {
		return Product{}, err
	}
	allowed := map[string]bool{
		"title": true, "thumbnail": true, "category": true,
		"price": true, "mrp": true, "inStock": true, "stockQty": true,
	}
	clean := map[string]any{}
	for key, value := range fields {
		if allowed[key] {
			clean[key] = value
		}
	}
	if len(clean) == 0 {
		return Product{}, pkgerrors.New(pkgerrors.CodeValidation, "no updatable fields supplied")
	}
	if err := s.repo.Update(ctx, id, clean); err != nil {
		return Product{}, err
	}
	return s.repo.Fetch(ctx, id)
}

// Delete removes a product from the catalog.
func (s *service) Delete(ctx context.Context, sess session.Session, id string) error {
	if !sess.Can(enums.PermissionCatalogWrite) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "catalog changes require catalog permission")
	}
	if _, err := s.fetchOwned(ctx, sess, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// AdjustStock moves the stock quantity by delta, clamping at zero, and keeps
// the inStock flag consistent.
func (s *service) AdjustStock(ctx context.Context, sess session.Session, id string, delta int) (Product, error) {
	if !sess.Can(enums.PermissionCatalogWrite) {
		return Product{}, pkgerrors.New(pkgerrors.CodeForbidden, "catalog changes require catalog permission")
	}
	product, err := s.fetchOwned(ctx, sess, id)
	if err != nil {
		return Product{}, err
	}
	qty := product.StockQty + delta
	if qty < 0 {
		qty = 0
	}
	err = s.repo.Update(ctx, id, map[string]any{
		"stockQty": qty,
		"inStock":  qty > 0,
	})
	if err != nil {
		return Product{}, err
	}
	return s.repo.Fetch(ctx, id)
}

func (s *service) fetchOwned(ctx context.Context, sess session.Session, id string) (Product, error) {
	product, err := s.repo.Fetch(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if product.SellerID != sess.SellerID {
		return Product{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}
