package profile

import (
	"context"
	"errors"

	"github.com/syed-hamad/Retail-POS-sub001/pkg/docstore"
	pkgerrors "github.com/syed-hamad/Retail-POS-sub001/pkg/errors"
)

// Repository encapsulates seller profile persistence against the document store.
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

// Create stores a new profile and returns its generated document id.
func (r *Repository) Create(ctx context.Context, seller Seller) (string, error) {
	id, err := r.collection().Add(ctx, seller)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create seller profile")
	}
	return id, nil
}

// FindBySeller loads the profile document for one seller.
func (r *Repository) FindBySeller(ctx context.Context, sellerID string) (Seller, error) {
	raws, err := r.collection().Query().Where("sellerId", sellerID).Limit(1).GetOnce(ctx)
	if err != nil {
		return Seller{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller profile")
	}
	if len(raws) == 0 {
		return Seller{}, pkgerrors.New(pkgerrors.CodeNotFound, "seller profile not found")
	}
	return decodeSeller(raws[0])
}

// Update merges the given fields into the stored profile document.
func (r *Repository) Update(ctx context.Context, id string, fields map[string]any) error {
	if err := r.collection().Doc(id).Update(ctx, fields); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "seller profile not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update seller profile")
	}
	return nil
}
