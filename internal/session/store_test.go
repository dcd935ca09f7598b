package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/ledgerdesk/internal/authz"
)

type gatedSource struct {
	mu      sync.Mutex
	calls   int
	started chan int
	release []chan struct{}
	results []Payload
}

func newGatedSource(results ...Payload) *gatedSource {
	src := &gatedSource{started: make(chan int, len(results)), results: results}
	for range results {
		src.release = append(src.release, make(chan struct{}))
	}
	return src
}

func (g *gatedSource) FetchSession(ctx context.Context) (Payload, error) {
	g.mu.Lock()
	n := g.calls
	g.calls++
	g.mu.Unlock()
	g.started <- n
	select {
	case <-g.release[n]:
	case <-ctx.Done():
		return Payload{}, ctx.Err()
	}
	return g.results[n], nil
}

func payloadFor(id string, role Role, perms ...string) Payload {
	return Payload{User: &User{ID: id, SystemRole: role, Permissions: perms}}
}

func TestNewStoreStartsLoading(t *testing.T) {
	store := NewStore(nil)
	snap := store.Snapshot()
	assert.True(t, snap.Loading)
	assert.False(t, store.Booted())
	assert.Nil(t, store.User())
	assert.False(t, store.HasPermission(authz.MustLookup(authz.SalesCustomersView)))
}

func TestFetchPublishesPayload(t *testing.T) {
	src := SourceFunc(func(ctx context.Context) (Payload, error) {
		return Payload{
			User:   &User{ID: "7", SystemRole: RoleAdmin, Permissions: []string{"Sales:Customers:View"}},
			Group:  &Group{ID: "g1", Name: "Acme Group"},
			Entity: &Entity{ID: "e1", Name: "Acme Ltd"},
		}, nil
	})
	var outcomes []string
	store := NewStore(src, WithObserver(func(o string) { outcomes = append(outcomes, o) }))

	snap := store.Fetch(context.Background())
	require.False(t, snap.Loading)
	require.NotNil(t, snap.User)
	assert.Equal(t, "7", store.User().ID)
	assert.Equal(t, "g1", store.Group().ID)
	assert.Equal(t, "e1", store.Entity().ID)
	assert.False(t, store.Loading())
	assert.True(t, store.Booted())
	assert.True(t, store.HasPermission("sales:customers:view"))
	assert.False(t, store.HasPermission("sales:customers:delete"))
	assert.Equal(t, []string{OutcomeOK}, outcomes)
}

func TestFetchFailureSettlesAnonymous(t *testing.T) {
	store := NewStore(SourceFunc(func(ctx context.Context) (Payload, error) {
		return Payload{}, errors.New("connection refused")
	}))
	snap := store.Fetch(context.Background())
	assert.False(t, snap.Loading)
	assert.Nil(t, snap.User)
	assert.False(t, store.HasPermission("sales:customers:view"))
}

func TestFetchRecoversFromPanickingSource(t *testing.T) {
	store := NewStore(SourceFunc(func(ctx context.Context) (Payload, error) {
		panic("decoder exploded")
	}))
	assert.NotPanics(t, func() {
		snap := store.Fetch(context.Background())
		assert.False(t, snap.Loading)
		assert.Nil(t, snap.User)
	})
}

func TestFetchWithoutSource(t *testing.T) {
	snap := NewStore(nil).Fetch(context.Background())
	assert.False(t, snap.Loading)
	assert.Nil(t, snap.User)
}

func TestFetchMarksLoadingWhileInFlight(t *testing.T) {
	src := newGatedSource(payloadFor("1", RoleUser))
	store := NewStore(src)

	done := make(chan Snapshot)
	go func() { done <- store.Fetch(context.Background()) }()
	<-src.started
	assert.True(t, store.Loading())

	close(src.release[0])
	snap := <-done
	assert.False(t, snap.Loading)
	assert.Equal(t, "1", snap.User.ID)
}

func TestLaterFetchWinsOverEarlierCompletion(t *testing.T) {
	src := newGatedSource(payloadFor("first", RoleAdmin), payloadFor("second", RoleUser))
	var mu sync.Mutex
	var outcomes []string
	store := NewStore(src, WithObserver(func(o string) {
		mu.Lock()
		outcomes = append(outcomes, o)
		mu.Unlock()
	}))

	first := make(chan Snapshot)
	second := make(chan Snapshot)
	go func() { first <- store.Fetch(context.Background()) }()
	require.Equal(t, 0, <-src.started)
	go func() { second <- store.Fetch(context.Background()) }()
	require.Equal(t, 1, <-src.started)

	close(src.release[1])
	got := <-second
	assert.Equal(t, "second", got.User.ID)

	close(src.release[0])
	stale := <-first
	assert.Equal(t, "second", stale.User.ID)
	assert.Equal(t, "second", store.User().ID)
	assert.Equal(t, RoleUser, store.User().SystemRole)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{OutcomeOK, OutcomeStale}, outcomes)
}

func TestResetInvalidatesInFlightFetch(t *testing.T) {
	src := newGatedSource(payloadFor("1", RoleSuperAdmin, "*"))
	store := NewStore(src)

	done := make(chan Snapshot)
	go func() { done <- store.Fetch(context.Background()) }()
	<-src.started
	store.Reset()
	close(src.release[0])
	<-done

	snap := store.Snapshot()
	assert.False(t, snap.Loading)
	assert.Nil(t, snap.User)
}

func TestWildcardGrantsEverything(t *testing.T) {
	store := NewStore(SourceFunc(func(ctx context.Context) (Payload, error) {
		return payloadFor("root", RoleSuperAdmin, "*"), nil
	}))
	store.Fetch(context.Background())
	for _, p := range authz.All() {
		assert.True(t, store.HasPermission(p), p)
	}
	assert.False(t, store.HasPermission(""))
}

func TestSnapshotIsDetachedFromPayload(t *testing.T) {
	perms := []string{"sales:customers:view"}
	user := &User{ID: "1", SystemRole: RoleUser, Permissions: perms}
	store := NewStore(SourceFunc(func(ctx context.Context) (Payload, error) {
		return Payload{User: user}, nil
	}))
	store.Fetch(context.Background())
	perms[0] = "sales:customers:delete"
	user.ID = "changed"

	assert.Equal(t, "1", store.User().ID)
	assert.True(t, store.HasPermission("sales:customers:view"))
}

func TestSubscribeAndWait(t *testing.T) {
	src := newGatedSource(payloadFor("9", RoleUser))
	store := NewStore(src)
	ch, cancel := store.Subscribe()
	defer cancel()

	go store.Fetch(context.Background())
	<-src.started
	loading := <-ch
	assert.True(t, loading.Loading)

	waited := make(chan Snapshot)
	go func() {
		snap, err := store.Wait(context.Background())
		assert.NoError(t, err)
		waited <- snap
	}()
	close(src.release[0])

	select {
	case snap := <-waited:
		assert.Equal(t, "9", snap.User.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("wait did not return")
	}
}

func TestWaitHonoursContext(t *testing.T) {
	store := NewStore(nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	snap, err := store.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, snap.Loading)
}

func TestStale(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	store := NewStore(SourceFunc(func(ctx context.Context) (Payload, error) {
		return payloadFor("1", RoleUser), nil
	}), WithClock(func() time.Time { return now }))
	assert.False(t, store.Stale(time.Minute))
	store.Fetch(context.Background())
	assert.False(t, store.Stale(time.Minute))
	now = now.Add(2 * time.Minute)
	assert.True(t, store.Stale(time.Minute))
	assert.False(t, store.Stale(0))
}

func TestRefreshClaimsOnlyOneFetch(t *testing.T) {
	src := newGatedSource(payloadFor("1", RoleUser))
	store := NewStore(src)

	run, ok := store.Refresh(time.Minute)
	require.True(t, ok)
	assert.True(t, store.Booted())
	assert.True(t, store.Loading())

	_, again := store.Refresh(time.Minute)
	assert.False(t, again, "a claimed fetch must block further claims")

	done := make(chan Snapshot)
	go func() { done <- run(context.Background()) }()
	<-src.started
	close(src.release[0])
	snap := <-done
	assert.Equal(t, "1", snap.User.ID)

	_, fresh := store.Refresh(time.Minute)
	assert.False(t, fresh)
}

func TestRefreshReclaimsStaleSnapshot(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	var calls int
	store := NewStore(SourceFunc(func(ctx context.Context) (Payload, error) {
		calls++
		return payloadFor("1", RoleUser), nil
	}), WithClock(func() time.Time { return now }))

	run, ok := store.Refresh(time.Minute)
	require.True(t, ok)
	run(context.Background())

	now = now.Add(2 * time.Minute)
	run, ok = store.Refresh(time.Minute)
	require.True(t, ok)
	snap := run(context.Background())
	assert.False(t, snap.Loading)
	assert.Equal(t, 2, calls)

	_, ok = store.Refresh(0)
	assert.False(t, ok, "a booted store never goes stale without a max age")
}
