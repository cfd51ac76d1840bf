package docstore

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupStore(t *testing.T) *Store {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	store, err := New(db, NewMemNotifier(), CollectionSpec{
		Name:          "orders",
		IndexedFields: []string{"status.label", "tableId", "priceVariant"},
		CompositeIndexes: [][]string{
			{"status.label", "tableId"},
		},
	})
	require.NoError(t, err)
	return store
}

type testOrderDoc struct {
	Status       map[string]string `json:"status"`
	TableID      string            `json:"tableId,omitempty"`
	PriceVariant string            `json:"priceVariant,omitempty"`
	Note         string            `json:"note,omitempty"`
}

func addOrderDoc(t *testing.T, store *Store, doc testOrderDoc) string {
	t.Helper()
	id, err := store.Collection("orders").Add(context.Background(), doc)
	require.NoError(t, err)
	return id
}

func TestAddGetRoundTrip(t *testing.T) {
	store := setupStore(t)
	id := addOrderDoc(t, store, testOrderDoc{
		Status:  map[string]string{"label": "KITCHEN"},
		TableID: "5",
	})

	var got testOrderDoc
	require.NoError(t, store.Collection("orders").Doc(id).Get(context.Background(), &got))
	assert.Equal(t, "KITCHEN", got.Status["label"])
	assert.Equal(t, "5", got.TableID)
}

func TestGetMissingDocument(t *testing.T) {
	store := setupStore(t)
	var got testOrderDoc
	err := store.Collection("orders").Doc("nope").Get(context.Background(), &got)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateMergesAndReindexes(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	id := addOrderDoc(t, store, testOrderDoc{
		Status: map[string]string{"label": "PLACED"},
		Note:   "extra spicy",
	})

	require.NoError(t, store.Collection("orders").Doc(id).Update(ctx, map[string]any{
		"status": map[string]string{"label": "KITCHEN"},
	}))

	var got testOrderDoc
	require.NoError(t, store.Collection("orders").Doc(id).Get(ctx, &got))
	assert.Equal(t, "KITCHEN", got.Status["label"], "named field replaced")
	assert.Equal(t, "extra spicy", got.Note, "unnamed fields preserved")

	docs, err := store.Collection("orders").Query().Where("status.label", "KITCHEN").GetOnce(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, id, docs[0].ID)

	docs, err = store.Collection("orders").Query().Where("status.label", "PLACED").GetOnce(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs, "stale index entries must be replaced")
}

func TestUpdateMissingDocument(t *testing.T) {
	store := setupStore(t)
	err := store.Collection("orders").Doc("nope").Update(context.Background(), map[string]any{"note": "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteRemovesDocumentAndIndex(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	id := addOrderDoc(t, store, testOrderDoc{Status: map[string]string{"label": "KITCHEN"}})

	require.NoError(t, store.Collection("orders").Doc(id).Delete(ctx))

	var got testOrderDoc
	assert.ErrorIs(t, store.Collection("orders").Doc(id).Get(ctx, &got), ErrNotFound)

	docs, err := store.Collection("orders").Query().Where("status.label", "KITCHEN").GetOnce(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)

	// Idempotent: a second delete is a no-op.
	require.NoError(t, store.Collection("orders").Doc(id).Delete(ctx))
}

func TestQueryFiltersAndOrder(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	first := addOrderDoc(t, store, testOrderDoc{Status: map[string]string{"label": "KITCHEN"}, TableID: "5"})
	time.Sleep(5 * time.Millisecond)
	second := addOrderDoc(t, store, testOrderDoc{Status: map[string]string{"label": "KITCHEN"}, TableID: "5"})
	addOrderDoc(t, store, testOrderDoc{Status: map[string]string{"label": "PLACED"}, TableID: "5"})

	docs, err := store.Collection("orders").Query().
		Where("status.label", "KITCHEN").
		Where("tableId", "5").
		GetOnce(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, second, docs[0].ID, "newest first")
	assert.Equal(t, first, docs[1].ID)

	docs, err = store.Collection("orders").Query().
		WhereIn("status.label", []string{"KITCHEN", "PLACED"}).
		GetOnce(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 3)

	docs, err = store.Collection("orders").Query().
		Where("status.label", "KITCHEN").
		Limit(1).
		GetOnce(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, second, docs[0].ID)
}

func TestQueryIndexSurface(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	_, err := store.Collection("orders").Query().
		Where("status.label", "KITCHEN").
		Where("priceVariant", "Zomato").
		GetOnce(ctx)
	assert.ErrorIs(t, err, ErrIndexNotFound, "unregistered composite must be refused")

	_, err = store.Collection("orders").Query().Where("discount", "0").GetOnce(ctx)
	assert.ErrorIs(t, err, ErrUnindexedField)

	_, err = store.Collection("unknown").Query().GetOnce(ctx)
	assert.ErrorIs(t, err, ErrUnknownCollection)
}

func TestSubscribeDeliversInitialAndChangedSnapshots(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	id := addOrderDoc(t, store, testOrderDoc{Status: map[string]string{"label": "KITCHEN"}})

	snapshots := make(chan []RawDoc, 4)
	unsubscribe, err := store.Collection("orders").Query().
		Where("status.label", "KITCHEN").
		Subscribe(ctx, func(docs []RawDoc) { snapshots <- docs }, nil)
	require.NoError(t, err)
	defer unsubscribe()

	select {
	case docs := <-snapshots:
		require.Len(t, docs, 1)
		assert.Equal(t, id, docs[0].ID)
	case <-time.After(2 * time.Second):
		t.Fatal("initial snapshot never arrived")
	}

	require.NoError(t, store.Collection("orders").Doc(id).Update(ctx, map[string]any{
		"status": map[string]string{"label": "COMPLETED"},
	}))

	select {
	case docs := <-snapshots:
		assert.Empty(t, docs, "completed order left the KITCHEN slice")
	case <-time.After(2 * time.Second):
		t.Fatal("change snapshot never arrived")
	}
}

func TestUnsubscribeBeforeFirstSnapshot(t *testing.T) {
	store := setupStore(t)
	addOrderDoc(t, store, testOrderDoc{Status: map[string]string{"label": "KITCHEN"}})

	var mu sync.Mutex
	tornDown := false
	lateDelivery := false
	unsubscribe, err := store.Collection("orders").Query().
		Where("status.label", "KITCHEN").
		Subscribe(context.Background(), func([]RawDoc) {
			mu.Lock()
			if tornDown {
				lateDelivery = true
			}
			mu.Unlock()
		}, nil)
	require.NoError(t, err)

	// Tear down immediately; the loop goroutine may not have queried yet. A
	// snapshot that raced in before teardown is fine, one after it is not.
	unsubscribe()
	mu.Lock()
	tornDown = true
	mu.Unlock()
	unsubscribe() // idempotent

	time.Sleep(200 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.False(t, lateDelivery, "callback invoked after unsubscribe returned")
}

func TestSubscribeValidatesQuery(t *testing.T) {
	store := setupStore(t)
	_, err := store.Collection("orders").Query().
		Where("status.label", "KITCHEN").
		Where("priceVariant", "Zomato").
		Subscribe(context.Background(), func([]RawDoc) {}, nil)
	assert.ErrorIs(t, err, ErrIndexNotFound)

	_, err = store.Collection("orders").Query().Subscribe(context.Background(), nil, nil)
	assert.Error(t, err)
}

func TestSubscribeSurfacesQueryError(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	errs := make(chan error, 1)
	sqlDB, err := store.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	unsubscribe, err := store.Collection("orders").Query().
		Where("status.label", "KITCHEN").
		Subscribe(ctx, func([]RawDoc) {}, func(err error) { errs <- err })
	require.NoError(t, err)
	defer unsubscribe()

	select {
	case err := <-errs:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("listener error never surfaced")
	}
}

func TestMemNotifierCoalesces(t *testing.T) {
	notifier := NewMemNotifier()
	ctx := context.Background()

	signals, cancel, err := notifier.Subscribe(ctx, "orders")
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, notifier.Publish(ctx, "orders"))
	require.NoError(t, notifier.Publish(ctx, "orders"))
	require.NoError(t, notifier.Publish(ctx, "orders"))

	<-signals
	select {
	case <-signals:
		t.Fatal("signals should coalesce while undrained")
	default:
	}
}

func TestMemNotifierCancelStopsDelivery(t *testing.T) {
	notifier := NewMemNotifier()
	ctx := context.Background()

	signals, cancel, err := notifier.Subscribe(ctx, "orders")
	require.NoError(t, err)
	cancel()

	require.NoError(t, notifier.Publish(ctx, "orders"))
	select {
	case <-signals:
		t.Fatal("cancelled subscriber should not receive signals")
	default:
	}
}

func TestFieldValuePaths(t *testing.T) {
	doc := map[string]any{
		"status":  map[string]any{"label": "KITCHEN"},
		"qnt":     float64(3),
		"served":  true,
		"nothing": nil,
	}

	tests := []struct {
		path  string
		want  string
		found bool
	}{
		{"status.label", "KITCHEN", true},
		{"qnt", "3", true},
		{"served", "true", true},
		{"nothing", "", false},
		{"status.missing", "", false},
		{"status.label.deeper", "", false},
	}
	for _, tt := range tests {
		got, ok := fieldValue(doc, tt.path)
		if ok != tt.found || got != tt.want {
			t.Fatalf("fieldValue(%q) = %q,%v want %q,%v", tt.path, got, ok, tt.want, tt.found)
		}
	}
}

func TestNewValidations(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	if _, err := New(nil, NewMemNotifier()); err == nil {
		t.Fatal("expected error for nil db")
	}
	if _, err := New(db, nil); err == nil {
		t.Fatal("expected error for nil notifier")
	}
	if _, err := New(db, NewMemNotifier(), CollectionSpec{}); err == nil {
		t.Fatal("expected error for unnamed collection spec")
	}
}
