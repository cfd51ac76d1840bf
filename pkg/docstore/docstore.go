// Package docstore is a small collection/query/snapshot document store on top
// of a relational database. Documents are stored as JSON blobs; equality
// queries are served from an inverted field index that must be declared up
// front per collection, mirroring how hosted document databases require
// composite indexes for compound filters. Live queries re-run on change
// notifications fanned out through a Notifier.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a document id has no row.
	ErrNotFound = errors.New("docstore: document not found")
	// ErrIndexNotFound is returned when a compound equality query has no
	// registered composite index. Callers are expected to fall back to a
	// coarser query and filter client-side.
	ErrIndexNotFound = errors.New("docstore: no composite index for filter combination")
	// ErrUnknownCollection is returned for collections never registered.
	ErrUnknownCollection = errors.New("docstore: unknown collection")
	// ErrUnindexedField is returned when filtering on a field that is not
	// part of the collection's indexed field set.
	ErrUnindexedField = errors.New("docstore: field is not indexed")
)

// CollectionSpec declares a collection and its queryable surface.
type CollectionSpec struct {
	Name string
	// IndexedFields lists the dotted document paths that single-field
	// equality filters may target.
	IndexedFields []string
	// CompositeIndexes lists the exact field combinations compound queries
	// may use. Order inside a combination does not matter.
	CompositeIndexes [][]string
}

func (s CollectionSpec) indexed(field string) bool {
	for _, f := range s.IndexedFields {
		if f == field {
			return true
		}
	}
	return false
}

func (s CollectionSpec) hasComposite(fields []string) bool {
	want := map[string]bool{}
	for _, f := range fields {
		want[f] = true
	}
	for _, combo := range s.CompositeIndexes {
		if len(combo) != len(want) {
			continue
		}
		match := true
		for _, f := range combo {
			if !want[f] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// RawDoc is one document as delivered by a snapshot or point read.
type RawDoc struct {
	ID        string
	Data      json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Decode unmarshals the document body into dest.
func (d RawDoc) Decode(dest any) error {
	if err := json.Unmarshal(d.Data, dest); err != nil {
		return fmt.Errorf("decode document %s: %w", d.ID, err)
	}
	return nil
}

// Filter is a single equality (or membership) predicate on an indexed field.
type Filter struct {
	Field  string
	Values []string
}

// UnsubscribeFunc tears down a live query. It is idempotent; it must not be
// invoked from inside the subscription's own callback.
type UnsubscribeFunc func()

// Notifier fans out collection-level change signals to live queries.
type Notifier interface {
	// Publish signals that some document in the collection changed.
	Publish(ctx context.Context, collection string) error
	// Subscribe returns a coalescing signal channel plus its cancel func.
	Subscribe(ctx context.Context, collection string) (<-chan struct{}, func(), error)
}

// fieldValue walks a dotted path through a decoded document.
func fieldValue(doc map[string]any, path string) (string, bool) {
	parts := strings.Split(path, ".")
	var current any = doc
	for _, part := range parts {
		m, ok := current.(map[string]any)
		if !ok {
			return "", false
		}
		current, ok = m[part]
		if !ok {
			return "", false
		}
	}
	switch v := current.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case float64:
		// JSON numbers decode as float64; keep integral values compact.
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v)), true
		}
		return fmt.Sprintf("%v", v), true
	case bool:
		return fmt.Sprintf("%t", v), true
	default:
		return fmt.Sprintf("%v", v), true
	}
}
