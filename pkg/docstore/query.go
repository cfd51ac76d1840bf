package docstore

import (
	"context"
	"fmt"
	"sync"
)

// Query is an equality query over one collection, newest documents first.
type Query struct {
	collection *Collection
	filters    []Filter
	limit      int
}

// Where adds an equality predicate on an indexed field.
func (q *Query) Where(field, value string) *Query {
	q.filters = append(q.filters, Filter{Field: field, Values: []string{value}})
	return q
}

// WhereIn adds a membership predicate on an indexed field.
func (q *Query) WhereIn(field string, values []string) *Query {
	q.filters = append(q.filters, Filter{Field: field, Values: values})
	return q
}

// Limit caps the number of returned documents.
func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

func (q *Query) validate() error {
	if !q.collection.known {
		return ErrUnknownCollection
	}
	spec := q.collection.spec
	fields := make([]string, 0, len(q.filters))
	for _, f := range q.filters {
		if !spec.indexed(f.Field) {
			return fmt.Errorf("%w: %s", ErrUnindexedField, f.Field)
		}
		fields = append(fields, f.Field)
	}
	if len(fields) > 1 && !spec.hasComposite(fields) {
		return fmt.Errorf("%w: %v", ErrIndexNotFound, fields)
	}
	return nil
}

// GetOnce runs the query once and returns the matching documents ordered by
// creation time descending.
func (q *Query) GetOnce(ctx context.Context) ([]RawDoc, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}

	tx := q.collection.store.db.WithContext(ctx).
		Table("documents AS d").
		Select("d.*").
		Where("d.collection = ?", q.collection.spec.Name)

	for i, filter := range q.filters {
		alias := fmt.Sprintf("f%d", i)
		join := fmt.Sprintf(
			"JOIN document_fields AS %s ON %s.collection = d.collection AND %s.doc_id = d.doc_id AND %s.field = ? AND %s.value IN (?)",
			alias, alias, alias, alias, alias,
		)
		tx = tx.Joins(join, filter.Field, filter.Values)
	}

	tx = tx.Order("d.created_at DESC")
	if q.limit > 0 {
		tx = tx.Limit(q.limit)
	}

	var rows []documentRow
	if err := tx.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("docstore: query %s: %w", q.collection.spec.Name, err)
	}
	docs := make([]RawDoc, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, rawDocFromRow(row))
	}
	return docs, nil
}

// Subscribe opens a live query: the current result set is delivered
// immediately, then re-delivered after every collection change. All snapshots
// go to onNext on a dedicated goroutine; the first error goes to onErr and
// ends the subscription. The returned unsubscribe is idempotent and
// guarantees no further callbacks once it has returned.
func (q *Query) Subscribe(ctx context.Context, onNext func([]RawDoc), onErr func(error)) (UnsubscribeFunc, error) {
	if onNext == nil {
		return nil, fmt.Errorf("docstore: subscribe requires an onNext callback")
	}
	if err := q.validate(); err != nil {
		return nil, err
	}

	subCtx, cancel := context.WithCancel(ctx)
	signals, cancelSignals, err := q.collection.store.notifier.Subscribe(subCtx, q.collection.spec.Name)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("docstore: subscribe %s: %w", q.collection.spec.Name, err)
	}

	sub := &subscription{cancel: cancel, cancelSignals: cancelSignals}

	go func() {
		defer cancelSignals()

		deliver := func() bool {
			docs, err := q.GetOnce(subCtx)
			if err != nil {
				if subCtx.Err() != nil {
					return false
				}
				sub.fail(onErr, err)
				return false
			}
			return sub.next(onNext, docs)
		}

		if !deliver() {
			return
		}
		for {
			select {
			case <-subCtx.Done():
				return
			case _, ok := <-signals:
				if !ok {
					return
				}
				if !deliver() {
					return
				}
			}
		}
	}()

	return sub.unsubscribe, nil
}

// subscription serializes snapshot delivery against teardown so a consumer
// never observes a callback after its unsubscribe returned.
type subscription struct {
	mu            sync.Mutex
	stopped       bool
	once          sync.Once
	cancel        context.CancelFunc
	cancelSignals func()
}

func (s *subscription) next(onNext func([]RawDoc), docs []RawDoc) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	onNext(docs)
	return true
}

func (s *subscription) fail(onErr func(error), err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	if onErr != nil {
		onErr(err)
	}
}

func (s *subscription) unsubscribe() {
	s.once.Do(func() {
		s.mu.Lock()
		s.stopped = true
		s.mu.Unlock()
		s.cancel()
	})
}
