package customers

import (
	"context"
	"errors"

	"github.com/syed-hamad/Retail-POS-sub001/pkg/docstore"
	pkgerrors "github.com/syed-hamad/Retail-POS-sub001/pkg/errors"
)

// Repository encapsulates customer persistence against the document store.
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

// Create stores a new customer and returns its generated id.
func (r *Repository) Create(ctx context.Context, customer Customer) (string, error) {
	id, err := r.collection().Add(ctx, customer)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create customer")
	}
	return id, nil
}

// Fetch reads and decodes one customer.
func (r *Repository) Fetch(ctx context.Context, id string) (Customer, error) {
	raw, err := r.collection().Doc(id).Snapshot(ctx)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return Customer{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "customer not found")
		}
		return Customer{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	return decodeCustomer(raw)
}

// Update merges the given fields into the stored customer document.
func (r *Repository) Update(ctx context.Context, id string, fields map[string]any) error {
	if err := r.collection().Doc(id).Update(ctx, fields); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "customer not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update customer")
	}
	return nil
}

// Delete removes the customer document.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.collection().Doc(id).Delete(ctx); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete customer")
	}
	return nil
}

// List returns the seller's customers.
func (r *Repository) List(ctx context.Context, sellerID string, limit int) ([]Customer, error) {
	q := r.collection().Query().Where("sellerId", sellerID)
	if limit > 0 {
		q = q.Limit(limit)
	}
	return r.runQuery(ctx, q)
}

// FindByPhone looks one customer up by exact phone number.
func (r *Repository) FindByPhone(ctx context.Context, sellerID, phone string) (Customer, error) {
	list, err := r.runQuery(ctx, r.collection().Query().
		Where("sellerId", sellerID).
		Where("phone", phone).
		Limit(1))
	if err != nil {
		return Customer{}, err
	}
	if len(list) == 0 {
		return Customer{}, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}
	return list[0], nil
}

func (r *Repository) runQuery(ctx context.Context, q *docstore.Query) ([]Customer, error) {
	raws, err := q.GetOnce(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query customers")
	}
	out := make([]Customer, 0, len(raws))
	for _, raw := range raws {
		customer, err := decodeCustomer(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, customer)
	}
	return out, nil
}
