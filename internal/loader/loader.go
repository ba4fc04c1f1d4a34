// Package loader coalesces the record lookups made while resolving one
// response into bulk fetches against the store.
package loader

import (
	"context"
	"sync"

	"github.com/loomview/loom/internal/store"
)

// FetchFunc bulk-fetches records by URI. URIs with no record are simply
// absent from the result map; an error means the whole fetch failed.
type FetchFunc func(ctx context.Context, uris []string) (map[string]*store.Record, error)

// BatchFetchByURI deduplicates uris and issues exactly one underlying
// fetch. A fetch-level failure fails the whole batch and is returned
// as-is, never retried; missing URIs are not an error.
func BatchFetchByURI(ctx context.Context, uris []string, fetch FetchFunc) (map[string]*store.Record, error) {
	if len(uris) == 0 {
		return make(map[string]*store.Record), nil
	}
	seen := make(map[string]struct{}, len(uris))
	unique := make([]string, 0, len(uris))
	for _, uri := range uris {
		if _, ok := seen[uri]; ok {
			continue
		}
		seen[uri] = struct{}{}
		unique = append(unique, uri)
	}
	return fetch(ctx, unique)
}

// Thunk defers one record lookup. Forcing any thunk dispatches every
// lookup queued on its loader up to that point in a single batch.
type Thunk func() (*store.Record, error)

// Loader is the per-request batching layer. Each response owns its own
// Loader; nothing is shared across requests and nothing persists after
// the response is sent.
type Loader struct {
	fetch FetchFunc

	mu       sync.Mutex
	pending  []string
	queued   map[string]struct{}
	resolved map[string]struct{}
	results  map[string]*store.Record
	errs     map[string]error
}

// New creates a Loader over a bulk fetch function.
func New(fetch FetchFunc) *Loader {
	return &Loader{
		fetch:    fetch,
		queued:   make(map[string]struct{}),
		resolved: make(map[string]struct{}),
		results:  make(map[string]*store.Record),
		errs:     make(map[string]error),
	}
}

// Enqueue registers uris for the next dispatch without creating thunks.
// List resolvers call this with every reference discovered in a page so
// the first forced join field fetches them all at once.
func (l *Loader) Enqueue(uris []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, uri := range uris {
		l.enqueueLocked(uri)
	}
}

// Prime seeds already-fetched records so join fields pointing back into
// the current page never hit the store again.
func (l *Loader) Prime(recs map[string]*store.Record) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for uri, rec := range recs {
		if _, ok := l.resolved[uri]; ok {
			continue
		}
		l.resolved[uri] = struct{}{}
		l.results[uri] = rec
	}
}

// Load queues uri and returns a thunk for its record. A missing record
// yields (nil, nil).
func (l *Loader) Load(ctx context.Context, uri string) Thunk {
	l.mu.Lock()
	l.enqueueLocked(uri)
	l.mu.Unlock()

	return func() (*store.Record, error) {
		return l.resolve(ctx, uri)
	}
}

func (l *Loader) enqueueLocked(uri string) {
	if _, ok := l.resolved[uri]; ok {
		return
	}
	if _, ok := l.queued[uri]; ok {
		return
	}
	l.queued[uri] = struct{}{}
	l.pending = append(l.pending, uri)
}

func (l *Loader) resolve(ctx context.Context, uri string) (*store.Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.resolved[uri]; !ok {
		l.dispatchLocked(ctx)
	}
	if err, ok := l.errs[uri]; ok {
		return nil, err
	}
	return l.results[uri], nil
}

// dispatchLocked fetches everything pending in one batch. On failure
// every URI of the batch carries the error; later loads start a fresh
// batch rather than retrying this one.
func (l *Loader) dispatchLocked(ctx context.Context) {
	batch := l.pending
	l.pending = nil
	if len(batch) == 0 {
		return
	}
	for _, uri := range batch {
		delete(l.queued, uri)
		l.resolved[uri] = struct{}{}
	}
	fetched, err := BatchFetchByURI(ctx, batch, l.fetch)
	if err != nil {
		for _, uri := range batch {
			l.errs[uri] = err
		}
		return
	}
	for uri, rec := range fetched {
		l.results[uri] = rec
	}
}
