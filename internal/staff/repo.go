package staff

import (
	"context"
	"errors"

	"github.com/syed-hamad/Retail-POS-sub001/pkg/docstore"
	pkgerrors "github.com/syed-hamad/Retail-POS-sub001/pkg/errors"
)

// Repository encapsulates staff persistence against the document store.
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

// Create stores a new staff account and returns its generated id.
func (r *Repository) Create(ctx context.Context, member Staff) (string, error) {
	id, err := r.collection().Add(ctx, member)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create staff account")
	}
	return id, nil
}

// Fetch reads and decodes one staff account.
func (r *Repository) Fetch(ctx context.Context, id string) (Staff, error) {
	raw, err := r.collection().Doc(id).Snapshot(ctx)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return Staff{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "staff account not found")
		}
		return Staff{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load staff account")
	}
	return decodeStaff(raw)
}

// FindByName resolves a staff account by its seller-scoped login name.
func (r *Repository) FindByName(ctx context.Context, sellerID, name string) (Staff, error) {
	raws, err := r.collection().Query().
		Where("sellerId", sellerID).
		Where("name", name).
		Limit(1).
		GetOnce(ctx)
	if err != nil {
		return Staff{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find staff account")
	}
	if len(raws) == 0 {
		return Staff{}, pkgerrors.New(pkgerrors.CodeNotFound, "staff account not found")
	}
	return decodeStaff(raws[0])
}

// List returns all staff accounts for a seller.
func (r *Repository) List(ctx context.Context, sellerID string) ([]Staff, error) {
	raws, err := r.collection().Query().Where("sellerId", sellerID).GetOnce(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list staff accounts")
	}
	out := make([]Staff, 0, len(raws))
	for _, raw := range raws {
		member, err := decodeStaff(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, member)
	}
	return out, nil
}

// Update merges the given fields into the stored staff document.
func (r *Repository) Update(ctx context.Context, id string, fields map[string]any) error {
	if err := r.collection().Doc(id).Update(ctx, fields); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "staff account not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update staff account")
	}
	return nil
}
