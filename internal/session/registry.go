package session

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultRegistrySize bounds the number of live stores when no size is given.
const DefaultRegistrySize = 4096

// SourceFactory builds the Source for a given API access token.
type SourceFactory func(token string) Source

type registryEntry struct {
	token string
	store *Store
}

// Registry keeps one Store per browser session. Stores evicted from the LRU
// are rebuilt and re-booted on the next request.
type Registry struct {
	mu      sync.Mutex
	cache   *lru.Cache[string, registryEntry]
	factory SourceFactory
	opts    []Option
}

// NewRegistry constructs a Registry holding at most size stores.
func NewRegistry(size int, factory SourceFactory, opts ...Option) (*Registry, error) {
	if factory == nil {
		return nil, fmt.Errorf("session: registry requires a source factory")
	}
	if size <= 0 {
		size = DefaultRegistrySize
	}
	cache, err := lru.New[string, registryEntry](size)
	if err != nil {
		return nil, fmt.Errorf("session: build registry: %w", err)
	}
	return &Registry{cache: cache, factory: factory, opts: opts}, nil
}

// Get returns the store for a browser session. A changed token (new login)
// replaces the previous store.
func (r *Registry) Get(id, token string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.cache.Get(id); ok && entry.token == token {
		return entry.store
	}
	store := NewStore(r.factory(token), r.opts...)
	r.cache.Add(id, registryEntry{token: token, store: store})
	return store
}

// Peek returns the store for id without creating one.
func (r *Registry) Peek(id string) (*Store, bool) {
	entry, ok := r.cache.Peek(id)
	if !ok {
		return nil, false
	}
	return entry.store, true
}

// Forget drops the store for a browser session, resetting it first so any
// holder of the old pointer sees the anonymous state.
func (r *Registry) Forget(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.cache.Peek(id); ok {
		entry.store.Reset()
	}
	r.cache.Remove(id)
}

// Len reports the number of live stores.
func (r *Registry) Len() int {
	return r.cache.Len()
}
