// Package session holds the per-login client state: who is signed in and
// which group and entity they are working in.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/odyssey-erp/ledgerdesk/internal/authz"
)

// ErrNoSource is reported when a Store was built without a Source.
var ErrNoSource = errors.New("session: no source configured")

// Fetch outcomes reported to observers.
const (
	OutcomeOK              = "ok"
	OutcomeUnauthenticated = "unauthenticated"
	OutcomeFailed          = "failed"
	OutcomeStale           = "stale"
)

// Source loads the session payload from the API.
type Source interface {
	FetchSession(ctx context.Context) (Payload, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (Payload, error)

// FetchSession implements Source.
func (f SourceFunc) FetchSession(ctx context.Context) (Payload, error) {
	return f(ctx)
}

// Option customises a Store.
type Option func(*Store)

// WithLogger sets the logger used for fetch failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver registers a callback receiving the outcome of every fetch.
func WithObserver(fn func(outcome string)) Option {
	return func(s *Store) {
		if fn != nil {
			s.observe = fn
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store is the single source of truth for one browser session. Reads are
// lock free; writers serialise on mu and bump seq so that only the most
// recently issued fetch may publish its result.
type Store struct {
	source  Source
	logger  *slog.Logger
	observe func(string)
	now     func() time.Time

	current atomic.Pointer[Snapshot]

	mu      sync.Mutex
	seq     uint64
	subs    map[int]chan Snapshot
	nextSub int
}

// NewStore builds a Store in the initial loading state.
func NewStore(source Source, opts ...Option) *Store {
	s := &Store{
		source:  source,
		logger:  slog.Default(),
		observe: func(string) {},
		now:     time.Now,
		subs:    make(map[int]chan Snapshot),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.current.Store(&Snapshot{Loading: true})
	return s
}

// Fetch reloads the session from the source. The loading snapshot is
// published before the call suspends. Failures settle into the anonymous
// snapshot. If another Fetch or Reset started meanwhile, this result is
// dropped and the current snapshot is returned instead.
func (s *Store) Fetch(ctx context.Context) Snapshot {
	s.mu.Lock()
	seq := s.beginLocked()
	s.mu.Unlock()
	return s.complete(ctx, seq)
}

// Refresh claims a fetch when the store never booted or its settled
// snapshot is older than maxAge, and no fetch is in flight. The loading
// snapshot is published before Refresh returns, so concurrent callers see
// the claim and get ok == false. The caller runs the returned func, usually
// on its own goroutine, to complete the fetch.
func (s *Store) Refresh(maxAge time.Duration) (run func(ctx context.Context) Snapshot, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.current.Load()
	if snap.Seq > 0 && (snap.Loading || !s.staleAt(snap, maxAge)) {
		return nil, false
	}
	seq := s.beginLocked()
	return func(ctx context.Context) Snapshot { return s.complete(ctx, seq) }, true
}

func (s *Store) beginLocked() uint64 {
	s.seq++
	pending := *s.current.Load()
	pending.Loading = true
	pending.Seq = s.seq
	s.publishLocked(&pending)
	return s.seq
}

func (s *Store) complete(ctx context.Context, seq uint64) Snapshot {
	payload, err := s.load(ctx)

	next := snapshotFromPayload(payload)
	outcome := OutcomeOK
	switch {
	case err != nil:
		next = Snapshot{}
		outcome = OutcomeFailed
		s.logger.Warn("session fetch failed", slog.Any("error", err))
	case next.User == nil:
		outcome = OutcomeUnauthenticated
	}
	next.Seq = seq
	next.FetchedAt = s.now()

	s.mu.Lock()
	if seq != s.seq {
		current := *s.current.Load()
		s.mu.Unlock()
		s.observe(OutcomeStale)
		return current
	}
	s.publishLocked(&next)
	s.mu.Unlock()
	s.observe(outcome)
	return next
}

func (s *Store) load(ctx context.Context) (payload Payload, err error) {
	if s.source == nil {
		return Payload{}, ErrNoSource
	}
	defer func() {
		if r := recover(); r != nil {
			payload, err = Payload{}, fmt.Errorf("session: source panicked: %v", r)
		}
	}()
	return s.source.FetchSession(ctx)
}

// Reset settles the store into the anonymous state and invalidates any
// fetch still in flight.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.publishLocked(&Snapshot{Seq: s.seq, FetchedAt: s.now()})
}

// Snapshot returns the current session state.
func (s *Store) Snapshot() Snapshot {
	return *s.current.Load()
}

// User returns the signed-in user or nil.
func (s *Store) User() *User { return s.current.Load().User }

// Group returns the selected group or nil.
func (s *Store) Group() *Group { return s.current.Load().Group }

// Entity returns the selected entity or nil.
func (s *Store) Entity() *Entity { return s.current.Load().Entity }

// Loading reports whether a fetch is in flight or the store never booted.
func (s *Store) Loading() bool { return s.current.Load().Loading }

// HasPermission checks the current snapshot's grants.
func (s *Store) HasPermission(p authz.Permission) bool {
	if s == nil {
		return false
	}
	return s.current.Load().HasPermission(p)
}

// Booted reports whether a fetch or reset has ever been issued.
func (s *Store) Booted() bool {
	return s.current.Load().Seq > 0
}

// Stale reports whether the settled snapshot is older than maxAge.
func (s *Store) Stale(maxAge time.Duration) bool {
	return s.staleAt(s.current.Load(), maxAge)
}

func (s *Store) staleAt(snap *Snapshot, maxAge time.Duration) bool {
	if snap.Loading || maxAge <= 0 || snap.FetchedAt.IsZero() {
		return false
	}
	return s.now().Sub(snap.FetchedAt) > maxAge
}

// Subscribe returns a channel that always holds the most recent snapshot
// published after the call. The returned func releases the subscription.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan Snapshot, 1)
	s.subs[id] = ch
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

// Wait blocks until the store settles or ctx is done.
func (s *Store) Wait(ctx context.Context) (Snapshot, error) {
	ch, cancel := s.Subscribe()
	defer cancel()
	if snap := s.Snapshot(); !snap.Loading {
		return snap, nil
	}
	for {
		select {
		case <-ctx.Done():
			return s.Snapshot(), ctx.Err()
		case snap, ok := <-ch:
			if !ok {
				return s.Snapshot(), nil
			}
			if !snap.Loading {
				return snap, nil
			}
		}
	}
}

func (s *Store) publishLocked(snap *Snapshot) {
	s.current.Store(snap)
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- *snap:
		default:
		}
	}
}
