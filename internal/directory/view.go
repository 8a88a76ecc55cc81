// Package directory holds the fetch-once, filter-locally views behind the
// venue, supplier, planner and event listings.
package directory

import (
	"context"
	"sync"

	"github.com/google/go-cmp/cmp"
)

// Fetcher reads the whole collection from the store.
type Fetcher[T any] func(ctx context.Context) ([]T, error)

// FilterFunc derives the visible subset of a collection.
type FilterFunc[T, C any] func(items []T, criteria C) []T

// State is a snapshot of a view.
type State[T any] struct {
	Items   []T
	Loading bool
	Err     error
}

// View keeps the unfiltered collection next to its filtered projection.
// Only the most recently started fetch may update it.
type View[T, C any] struct {
	fetch Fetcher[T]
	apply FilterFunc[T, C]

	mu       sync.Mutex
	all      []T
	filtered []T
	criteria C
	started  bool
	loaded   bool
	loading  bool
	err      error
	gen      uint64
	closed   bool
}

func New[T, C any](fetch Fetcher[T], apply FilterFunc[T, C]) *View[T, C] {
	return &View[T, C]{
		fetch:    fetch,
		apply:    apply,
		filtered: []T{},
	}
}

// Load fetches the collection the first time it is called. Later calls,
// including after a failed fetch, do nothing; use Refresh to retry.
func (v *View[T, C]) Load(ctx context.Context) error {
	v.mu.Lock()
	if v.started || v.closed {
		v.mu.Unlock()
		return nil
	}
	v.started = true
	v.mu.Unlock()

	return v.run(ctx)
}

// Refresh re-fetches the collection, typically after a successful mutation.
func (v *View[T, C]) Refresh(ctx context.Context) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil
	}
	v.started = true
	v.mu.Unlock()

	return v.run(ctx)
}

func (v *View[T, C]) run(ctx context.Context) error {
	v.mu.Lock()
	v.gen++
	gen := v.gen
	v.loading = true
	v.mu.Unlock()

	items, err := v.fetch(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()

	// superseded by a newer fetch or the view went away
	if v.closed || gen != v.gen {
		return nil
	}
	v.loading = false

	if err != nil {
		v.err = err
		v.all = nil
		v.filtered = []T{}
		v.loaded = false
		return err
	}

	v.err = nil
	if v.loaded && cmp.Equal(v.all, items) {
		return nil
	}
	v.all = items
	v.loaded = true
	v.recompute()
	return nil
}

// SetCriteria re-derives the filtered list when the criteria differ
// structurally from the current ones.
func (v *View[T, C]) SetCriteria(c C) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if cmp.Equal(v.criteria, c) {
		return
	}
	v.criteria = c
	if v.loaded {
		v.recompute()
	}
}

func (v *View[T, C]) recompute() {
	out := v.apply(v.all, v.criteria)
	if out == nil {
		out = []T{}
	}
	v.filtered = out
}

// State returns a copy of the filtered items with the loading and error flags.
func (v *View[T, C]) State() State[T] {
	v.mu.Lock()
	defer v.mu.Unlock()

	items := make([]T, len(v.filtered))
	copy(items, v.filtered)
	return State[T]{Items: items, Loading: v.loading, Err: v.err}
}

// Total is the size of the unfiltered collection.
func (v *View[T, C]) Total() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.all)
}

// Close discards any fetch still in flight.
func (v *View[T, C]) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	v.loading = false
}
