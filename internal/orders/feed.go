package orders

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/syed-hamad/Retail-POS-sub001/pkg/docstore"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/enums"
	pkgerrors "github.com/syed-hamad/Retail-POS-sub001/pkg/errors"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/metrics"
)

// FeedFilter scopes a live order feed. Statuses is required; TableID and
// Channel are optional and mutually exclusive.
type FeedFilter struct {
	SellerID string
	Statuses []enums.OrderStatus
	TableID  string
	Channel  string
	Limit    int
}

func (f FeedFilter) validate() error {
	if f.SellerID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "seller id is required")
	}
	if len(f.Statuses) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one status filter is required")
	}
	for _, status := range f.Statuses {
		if !status.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
		}
	}
	if f.TableID != "" && f.Channel != "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "table and channel filters are mutually exclusive")
	}
	return nil
}

func (f FeedFilter) statusLabels() []string {
	labels := make([]string, 0, len(f.Statuses))
	for _, status := range f.Statuses {
		labels = append(labels, status.String())
	}
	return labels
}

// matches applies the residual predicates that the coarse fallback query
// could not push into the store.
func (f FeedFilter) matches(order Order) bool {
	if f.TableID != "" && order.TableID != f.TableID {
		return false
	}
	if f.Channel != "" {
		table, channel := routeOf(order)
		if table != "" || channel != f.Channel {
			return false
		}
	}
	return true
}

// Feed is the live synchronization layer: it turns a filter into a store
// subscription and re-delivers the full matching result set on every change.
// Each consuming view opens its own feed; there is no shared cache.
type Feed struct {
	repo    *Repository
	metrics *metrics.FeedMetrics
}

// NewFeed builds the feed layer. Metrics may be nil.
func NewFeed(repo *Repository, m *metrics.FeedMetrics) (*Feed, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order repo is required")
	}
	return &Feed{repo: repo, metrics: m}, nil
}

// Snapshot runs the filter once. The precise compound query is attempted
// first; when the store has no composite index for the combination the feed
// falls back to the status-only query and applies the remaining predicates
// client-side. Orders with an empty items list are dropped either way.
func (f *Feed) Snapshot(ctx context.Context, filter FeedFilter) ([]Order, error) {
	if err := filter.validate(); err != nil {
		return nil, err
	}

	started := time.Now()
	raws, err := f.preciseQuery(filter).GetOnce(ctx)
	fellBack := false
	if errors.Is(err, docstore.ErrIndexNotFound) {
		f.metrics.FallbackQuery(Collection)
		fellBack = true
		raws, err = f.coarseQuery(filter).GetOnce(ctx)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query orders")
	}
	f.metrics.ObserveSnapshotLatency(time.Since(started))

	return f.project(filter, raws, fellBack)
}

// Subscribe opens a live feed. The current result set is delivered first,
// then re-delivered on every change, always to the single onNext callback.
// A snapshot error goes to onErr and ends the feed; there is no automatic
// retry — the consumer must open a new feed. The returned unsubscribe is
// idempotent and must be called exactly once on teardown; a forgotten
// unsubscribe leaks a live listener for the life of the process.
func (f *Feed) Subscribe(ctx context.Context, filter FeedFilter, onNext func([]Order), onErr func(error)) (docstore.UnsubscribeFunc, error) {
	if err := filter.validate(); err != nil {
		return nil, err
	}
	if onNext == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "onNext callback is required")
	}

	fellBack := false
	var stopped bool
	deliver := func(raws []docstore.RawDoc) {
		if stopped {
			return
		}
		list, err := f.project(filter, raws, fellBack)
		if err != nil {
			stopped = true
			if onErr != nil {
				onErr(err)
			}
			return
		}
		f.metrics.SnapshotDelivered(Collection)
		onNext(list)
	}

	unsubscribe, err := f.preciseQuery(filter).Subscribe(ctx, deliver, onErr)
	if errors.Is(err, docstore.ErrIndexNotFound) {
		f.metrics.FallbackQuery(Collection)
		fellBack = true
		unsubscribe, err = f.coarseQuery(filter).Subscribe(ctx, deliver, onErr)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "subscribe to orders")
	}

	f.metrics.FeedOpened()
	var once sync.Once
	return func() {
		once.Do(func() {
			unsubscribe()
			f.metrics.FeedClosed()
		})
	}, nil
}

// preciseQuery pushes every filter field into the store. Combinations with
// no registered composite index surface ErrIndexNotFound on execution.
func (f *Feed) preciseQuery(filter FeedFilter) *docstore.Query {
	q := f.repo.collection().Query().
		Where("sellerId", filter.SellerID).
		WhereIn("status.label", filter.statusLabels())
	if filter.TableID != "" {
		q = q.Where("tableId", filter.TableID)
	}
	if filter.Channel != "" {
		// "priceVariant is null or Default" is inexpressible as an equality
		// filter, so any channel filter ends up on the fallback path.
		q = q.Where("priceVariant", filter.Channel)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	return q
}

// coarseQuery keeps only the seller and status filters; the rest is applied
// client-side per snapshot. The limit moves client-side with them.
func (f *Feed) coarseQuery(filter FeedFilter) *docstore.Query {
	return f.repo.collection().Query().
		Where("sellerId", filter.SellerID).
		WhereIn("status.label", filter.statusLabels())
}

func (f *Feed) project(filter FeedFilter, raws []docstore.RawDoc, fellBack bool) ([]Order, error) {
	list, err := decodeOrders(raws)
	if err != nil {
		return nil, err
	}
	out := make([]Order, 0, len(list))
	for _, order := range list {
		if len(order.Items) == 0 {
			continue
		}
		if fellBack && !filter.matches(order) {
			continue
		}
		out = append(out, order)
		if fellBack && filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}
