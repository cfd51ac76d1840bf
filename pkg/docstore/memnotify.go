package docstore

import (
	"context"
	"sync"
)

// MemNotifier fans change signals out in-process. It backs single-node
// deployments and every test.
type MemNotifier struct {
	mu   sync.Mutex
	next int
	subs map[string]map[int]chan struct{}
}

// NewMemNotifier builds an in-process notifier.
func NewMemNotifier() *MemNotifier {
	return &MemNotifier{subs: make(map[string]map[int]chan struct{})}
}

// Publish signals every subscriber of the collection. Signals coalesce: a
// subscriber that has not drained its pending signal receives no duplicate.
func (n *MemNotifier) Publish(_ context.Context, collection string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs[collection] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return nil
}

// Subscribe registers a signal channel for the collection.
func (n *MemNotifier) Subscribe(_ context.Context, collection string) (<-chan struct{}, func(), error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.next
	n.next++
	ch := make(chan struct{}, 1)
	if n.subs[collection] == nil {
		n.subs[collection] = make(map[int]chan struct{})
	}
	n.subs[collection][id] = ch

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if subs, ok := n.subs[collection]; ok {
			delete(subs, id)
		}
	}
	return ch, cancel, nil
}
