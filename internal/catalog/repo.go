package catalog

import (
	"context"
	"errors"

	"github.com/syed-hamad/Retail-POS-sub001/pkg/docstore"
	pkgerrors "github.com/syed-hamad/Retail-POS-sub001/pkg/errors"
)

// Repository encapsulates product persistence against the document store.
type Repository struct {
	store *docstore.Store
}

// NewRepository binds a repository to the document store.
func NewRepository(store *docstore.Store) *Repository {
	return &Repository{store: store}
}

func (r *Repository) collection() *docstore.Collection {
	return r.store.Collection(Collection)
}

// Create stores a new product and returns its generated id.
func (r *Repository) Create(ctx context.Context, product Product) (string, error) {
	id, err := r.collection().Add(ctx, product)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return id, nil
}

// Fetch reads and decodes one product.
func (r *Repository) Fetch(ctx context.Context, id string) (Product, error) {
	raw, err := r.collection().Doc(id).Snapshot(ctx)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return Product{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return Product{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return decodeProduct(raw)
}

// Update merges the given fields into the stored product document.
func (r *Repository) Update(ctx context.Context, id string, fields map[string]any) error {
	if err := r.collection().Doc(id).Update(ctx, fields); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return nil
}

// Delete removes the product document.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.collection().Doc(id).Delete(ctx); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

// List returns the seller's products, optionally scoped to one category.
func (r *Repository) List(ctx context.Context, sellerID, category string, limit int) ([]Product, error) {
	q := r.collection().Query().Where("sellerId", sellerID)
	if category != "" {
		q = q.Where("category", category)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	raws, err := q.GetOnce(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	out := make([]Product, 0, len(raws))
	for _, raw := range raws {
		product, err := decodeProduct(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, product)
	}
	return out, nil
}
