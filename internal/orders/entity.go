package orders

import (
	"context"
	"time"

	"github.com/syed-hamad/Retail-POS-sub001/pkg/auth/session"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/enums"
	pkgerrors "github.com/syed-hamad/Retail-POS-sub001/pkg/errors"
)

// Entity wraps a single order's mutable state and the only sanctioned
// mutation operations. Every mutation is an independent read-modify-write
// against the store followed by a reload; last-write-wins is the contract, so
// a concurrent writer can be silently overwritten. Optimistic local state is
// never rolled back on failure — the trailing reload or the next snapshot
// reconciles it.
type Entity struct {
	repo    *Repository
	sess    session.Session
	order   Order
	deleted bool
	lastErr error

	now func() time.Time
}

// NewEntity loads the order and wraps it. The session gates destructive
// operations.
func NewEntity(ctx context.Context, repo *Repository, sess session.Session, id string) (*Entity, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order repo is required")
	}
	order, err := repo.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Entity{repo: repo, sess: sess, order: order, now: time.Now}, nil
}

// Order returns the entity's current local view. It can lag other views of
// the same order until the next reload or snapshot.
func (e *Entity) Order() Order {
	return e.order
}

// Deleted reports whether RemoveItem deleted the whole order.
func (e *Entity) Deleted() bool {
	return e.deleted
}

// LastError returns the most recent mutation failure, if any.
func (e *Entity) LastError() error {
	return e.lastErr
}

// UpdateStatus appends one history entry per label not already present,
// makes the last appended entry current, and persists the full history.
// A call where every label is already present is a no-op.
func (e *Entity) UpdateStatus(ctx context.Context, labels ...enums.OrderStatus) error {
	for _, label := range labels {
		if !label.IsValid() {
			return e.fail(pkgerrors.New(pkgerrors.CodeValidation, "invalid order status"))
		}
	}

	now := e.now().UTC()
	history := append([]StatusEntry{}, e.order.StatusHistory...)
	var appended []StatusEntry
	for _, label := range labels {
		if e.order.HasStatus(label) {
			continue
		}
		entry := StatusEntry{Label: label, At: now}
		history = append(history, entry)
		appended = append(appended, entry)
	}
	if len(appended) == 0 {
		return nil
	}

	current := appended[len(appended)-1]
	err := e.repo.Update(ctx, e.order.ID, map[string]any{
		"status":        current,
		"statusHistory": history,
	})
	if err != nil {
		return e.fail(err)
	}
	return e.Reload(ctx)
}

// ServeItem flips one line's served flag. The local flag flips immediately;
// the write is preceded by a fresh read so a line removed by another client
// fails the operation instead of resurrecting the item.
func (e *Entity) ServeItem(ctx context.Context, productID string, served bool) error {
	idx := e.order.itemIndex(productID)
	if idx < 0 {
		return e.fail(pkgerrors.New(pkgerrors.CodeNotFound, "item is not part of this order"))
	}
	e.order.Items[idx].Served = served

	fresh, err := e.repo.Fetch(ctx, e.order.ID)
	if err != nil {
		return e.fail(err)
	}
	freshIdx := fresh.itemIndex(productID)
	if freshIdx < 0 {
		return e.fail(pkgerrors.New(pkgerrors.CodeConflict, "item no longer exists on the order"))
	}
	fresh.Items[freshIdx].Served = served

	if err := e.repo.Update(ctx, e.order.ID, map[string]any{"items": fresh.Items}); err != nil {
		return e.fail(err)
	}
	return e.Reload(ctx)
}

// AddItem increments the quantity of an existing line by one. Inserting a new
// product is not supported here; that goes through order placement.
func (e *Entity) AddItem(ctx context.Context, productID string) error {
	idx := e.order.itemIndex(productID)
	if idx < 0 {
		return e.fail(pkgerrors.New(pkgerrors.CodeValidation, "item is not part of this order"))
	}
	items := cloneItems(e.order.Items)
	items[idx].Quantity++

	if err := e.repo.Update(ctx, e.order.ID, map[string]any{"items": items}); err != nil {
		return e.fail(err)
	}
	return e.Reload(ctx)
}

// RemoveItem decrements the matching line, dropping the line when its
// quantity reaches zero. When the order holds exactly one item in total the
// whole order is deleted instead, gated on the delete permission; an order is
// never left with an empty items array.
func (e *Entity) RemoveItem(ctx context.Context, productID string) error {
	idx := e.order.itemIndex(productID)
	if idx < 0 {
		return e.fail(pkgerrors.New(pkgerrors.CodeNotFound, "item is not part of this order"))
	}

	if e.order.TotalItems() <= 1 {
		if !e.sess.Can(enums.PermissionOrdersDelete) {
			return e.fail(pkgerrors.New(pkgerrors.CodeForbidden, "deleting an order requires delete permission"))
		}
		if err := e.repo.Delete(ctx, e.order.ID); err != nil {
			return e.fail(err)
		}
		e.deleted = true
		return nil
	}

	items := cloneItems(e.order.Items)
	if items[idx].Quantity > 1 {
		items[idx].Quantity--
	} else {
		items = append(items[:idx], items[idx+1:]...)
	}

	if err := e.repo.Update(ctx, e.order.ID, map[string]any{"items": items}); err != nil {
		return e.fail(err)
	}
	return e.Reload(ctx)
}

// SetDiscount persists the discount amount. Bounding the amount against the
// subtotal is the caller's responsibility; the service layer rejects amounts
// above the subtotal before they reach this entity.
func (e *Entity) SetDiscount(ctx context.Context, amount float64) error {
	if amount < 0 {
		return e.fail(pkgerrors.New(pkgerrors.CodeValidation, "discount cannot be negative"))
	}
	e.order.Discount = amount
	if err := e.repo.Update(ctx, e.order.ID, map[string]any{"discount": amount}); err != nil {
		return e.fail(err)
	}
	return e.Reload(ctx)
}

// Reload replaces local state with the stored document.
func (e *Entity) Reload(ctx context.Context) error {
	order, err := e.repo.Fetch(ctx, e.order.ID)
	if err != nil {
		return e.fail(err)
	}
	e.order = order
	e.lastErr = nil
	return nil
}

func (e *Entity) fail(err error) error {
	e.lastErr = err
	return err
}

func cloneItems(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	return out
}
