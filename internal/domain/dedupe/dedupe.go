// Package dedupe remembers recently submitted videos so duplicates are
// turned away before they are queued. It is a bounded fast path: once a key
// is evicted, the owner of the results decides.
package dedupe

import (
	"container/list"
	"context"
	"sync"
)

// Deduper records recently seen keys.
type Deduper interface {
	// SeenAndRecord reports whether key was already recorded, recording it
	// when it was not. It is atomic.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets key, allowing it to be submitted again. Use it when a
	// recorded key could not be processed.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// inMemoryDeduper keeps keys in insertion order. When bounded, the oldest
// key is forgotten first.
type inMemoryDeduper struct {
	mu      sync.Mutex
	maxSize int // <= 0 means unbounded
	order   *list.List
	seen    map[string]*list.Element
}

// NewInMemoryDeduper creates an in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: 100_000,
		order:   list.New(),
		seen:    make(map[string]*list.Element),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}
	if d.maxSize > 0 && d.order.Len() >= d.maxSize {
		oldest := d.order.Front()
		delete(d.seen, oldest.Value.(string))
		d.order.Remove(oldest)
	}
	d.seen[key] = d.order.PushBack(key)
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if e, ok := d.seen[key]; ok {
		d.order.Remove(e)
		delete(d.seen, key)
	}
}

func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(d.order.Len())
}
