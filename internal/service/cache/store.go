package cache

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Observer receives cache traffic events. Implementations must be cheap and
// safe for concurrent use.
type Observer interface {
	RecordCacheHit(category string)
	RecordCacheMiss(category string)
	RecordCoalesced(category string)
}

// Entry is an immutable cached value. Entries are superseded by a fresh
// Put, never mutated in place.
type Entry struct {
	Data      any
	CreatedAt time.Time
	ExpiresAt time.Time
	seq       uint64
}

func (e Entry) expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// Store is a keyed TTL cache that collapses concurrent identical fetches
// into one upstream call per key. It is the single shared cache instance of
// the service; every fetch path goes through it.
type Store struct {
	mu         sync.Mutex
	entries    map[string]Entry
	maxEntries int
	seq        uint64

	flight singleflight.Group
	obs    Observer
}

// Option configures a Store.
type Option func(*Store)

// WithMaxEntries sets the capacity before eviction kicks in.
func WithMaxEntries(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxEntries = n
		}
	}
}

// WithObserver attaches a traffic observer.
func WithObserver(obs Observer) Option {
	return func(s *Store) { s.obs = obs }
}

// New creates a Store.
func New(opts ...Option) *Store {
	s := &Store{
		entries:    make(map[string]Entry),
		maxEntries: 1000,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the live value for key. Expired entries are dropped lazily.
func (s *Store) Get(key string) (any, bool) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if e.expired(now) {
		delete(s.entries, key)
		return nil, false
	}
	return e.Data, true
}

// Put stores v under key with the category's fixed TTL, evicting under
// capacity pressure: expired entries first, then the oldest-inserted 20%.
func (s *Store) Put(key string, cat Category, v any) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[key]; !exists && len(s.entries) >= s.maxEntries {
		s.purgeExpiredLocked(now)
		if len(s.entries) >= s.maxEntries {
			n := s.maxEntries / 5
			if n < 1 {
				n = 1
			}
			s.evictOldestLocked(n)
		}
	}

	s.seq++
	s.entries[key] = Entry{
		Data:      v,
		CreatedAt: now,
		ExpiresAt: now.Add(TTLFor(cat)),
		seq:       s.seq,
	}
}

// Delete removes an entry explicitly.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// Len returns the current number of entries, expired included.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// GetOrFetch returns the live cached value for key, or joins the in-flight
// fetch for that key, or starts one. At most one fetch per key is
// outstanding at any instant; every waiter observes the same result. A
// failed fetch is propagated to all waiters and never cached, and its
// pending slot is released so the next call retries.
func (s *Store) GetOrFetch(ctx context.Context, key string, cat Category, fetch func(context.Context) (any, error)) (any, error) {
	if v, ok := s.Get(key); ok {
		if s.obs != nil {
			s.obs.RecordCacheHit(string(cat))
		}
		return v, nil
	}
	if s.obs != nil {
		s.obs.RecordCacheMiss(string(cat))
	}

	// An abandoning caller must not cancel the shared fetch; the result
	// still populates the cache for the other waiters. Bounded timeouts
	// are the fetcher's responsibility.
	fetchCtx := context.WithoutCancel(ctx)

	v, err, shared := s.flight.Do(key, func() (any, error) {
		// Re-check after winning the flight: another caller may have
		// populated the entry between our miss and the flight start.
		if v, ok := s.Get(key); ok {
			return v, nil
		}
		v, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		s.Put(key, cat, v)
		return v, nil
	})
	if shared && s.obs != nil {
		s.obs.RecordCoalesced(string(cat))
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// GetOrFetchTyped is the typed wrapper over Store.GetOrFetch.
func GetOrFetchTyped[T any](ctx context.Context, s *Store, key string, cat Category, fetch func(context.Context) (T, error)) (T, error) {
	v, err := s.GetOrFetch(ctx, key, cat, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("cache: entry for key %q holds %T, want %T", key, v, zero)
	}
	return typed, nil
}

func (s *Store) purgeExpiredLocked(now time.Time) {
	for k, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, k)
		}
	}
}

func (s *Store) evictOldestLocked(n int) {
	type aged struct {
		key string
		seq uint64
	}
	all := make([]aged, 0, len(s.entries))
	for k, e := range s.entries {
		all = append(all, aged{key: k, seq: e.seq})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].seq < all[j].seq })
	if n > len(all) {
		n = len(all)
	}
	for _, a := range all[:n] {
		delete(s.entries, a.key)
	}
}
