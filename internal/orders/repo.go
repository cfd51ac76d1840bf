package orders

import (
	"context"
	"errors"

	"github.com/syed-hamad/Retail-POS-sub001/pkg/docstore"
	pkgerrors "github.com/syed-hamad/Retail-POS-sub001/pkg/errors"
)

// Collection is the docstore collection holding order documents.
const Collection = "orders"

// CollectionSpec declares the queryable surface of the orders collection.
// The (sellerId, status.label, priceVariant) combination is deliberately not
// registered: channel-scoped feeds take the coarse fallback path instead.
func CollectionSpec() docstore.CollectionSpec {
	return docstore.CollectionSpec{
		Name: Collection,
		IndexedFields: []string{
			"sellerId",
			"status.label",
			"tableId",
			"priceVariant",
		},
		CompositeIndexes: [][]string{
			{"sellerId", "status.label"},
			{"sellerId", "status.label", "tableId"},
		},
	}
}

// Repository encapsulates order persistence against the document store.
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

// Create stores a new order document and returns its generated id.
func (r *Repository) Create(ctx context.Context, order Order) (string, error) {
	id, err := r.collection().Add(ctx, order)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}
	return id, nil
}

// Fetch reads and decodes one order.
func (r *Repository) Fetch(ctx context.Context, id string) (Order, error) {
	raw, err := r.collection().Doc(id).Snapshot(ctx)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return Order{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
		}
		return Order{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return decodeOrder(raw)
}

// Update merges the given fields into the stored order document.
func (r *Repository) Update(ctx context.Context, id string, fields map[string]any) error {
	err := r.collection().Doc(id).Update(ctx, fields)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
	}
	return nil
}

// Delete removes the order document entirely.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.collection().Doc(id).Delete(ctx); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
	}
	return nil
}
