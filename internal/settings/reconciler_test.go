package settings

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"okkstats/internal/calendar"
	"okkstats/internal/settings/store"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestReconciler(t *testing.T, clock *fakeClock, opts ...Option) (*Reconciler, *store.MemoryRemote) {
	t.Helper()
	remote := store.NewMemoryRemote()
	opts = append([]Option{
		WithClock(clock.Now),
		WithLockWindow(time.Second),
	}, opts...)
	r, err := New(remote, store.NewMemoryCache(), opts...)
	require.NoError(t, err)
	return r, remote
}

func encode(t *testing.T, g Global) []byte {
	t.Helper()
	raw, err := EncodeGlobal(g)
	require.NoError(t, err)
	return raw
}

func TestEchoSuppression(t *testing.T) {
	clock := newFakeClock()
	r, _ := newTestReconciler(t, clock)
	ctx := context.Background()

	require.NoError(t, r.Mutate(ctx, func(g *Global) {
		g.Years = []int{2024}
	}))
	require.NoError(t, r.Close())
	echo := encode(t, r.Document().Global)

	t.Run("inside the window any notification is ignored", func(t *testing.T) {
		clock.Advance(100 * time.Millisecond)
		r.handleRemote(ctx, echo)
		require.NotNil(t, r.guard, "guard survives a time-suppressed echo")
		require.Equal(t, []int{2024}, r.Document().Global.Years)
	})

	t.Run("outside the window a matching hash is still ignored", func(t *testing.T) {
		clock.Advance(2 * time.Second)
		r.handleRemote(ctx, echo)
		require.Nil(t, r.guard, "hash-suppressed echo releases the guard")
		require.Equal(t, []int{2024}, r.Document().Global.Years)
	})

	t.Run("a different hash outside the window merges", func(t *testing.T) {
		require.NoError(t, r.Mutate(ctx, func(g *Global) {
			g.Years = []int{2024, 2025}
		}))
		require.NoError(t, r.Close())
		clock.Advance(2 * time.Second)

		peer := r.Document().Global
		peer.Years = []int{2023}
		r.handleRemote(ctx, encode(t, peer))

		require.Nil(t, r.guard)
		require.Equal(t, []int{2023}, r.Document().Global.Years)
	})
}

func TestFailedWriteKeepsGuardAndDocument(t *testing.T) {
	clock := newFakeClock()
	r, remote := newTestReconciler(t, clock)
	ctx := context.Background()
	remote.FailWrites(errors.New("store down"))

	require.NoError(t, r.Mutate(ctx, func(g *Global) {
		g.Grade.Current = "senior"
	}))
	require.NoError(t, r.Close())

	require.Equal(t, "senior", r.Document().Global.Grade.Current)
	require.NotNil(t, r.guard)

	// A stale echo of the failed write is still suppressed.
	clock.Advance(100 * time.Millisecond)
	r.handleRemote(ctx, encode(t, r.Document().Global))
	require.Equal(t, "senior", r.Document().Global.Grade.Current)

	// The next mutation retries with the current in-memory state.
	remote.FailWrites(nil)
	require.NoError(t, r.Mutate(ctx, func(g *Global) {
		g.Grade.Next = "lead"
	}))
	require.NoError(t, r.Close())
	stored, _, err := DecodeGlobal(remote.Current(), clock.Now())
	require.NoError(t, err)
	require.Equal(t, "senior", stored.Grade.Current)
	require.Equal(t, "lead", stored.Grade.Next)
}

func TestLegacyMigration(t *testing.T) {
	now := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

	t.Run("flat lists key to the current year", func(t *testing.T) {
		g, migrated, err := DecodeGlobal([]byte(`{"holidays":["01.01","08.03"],"shortDays":["07.03"]}`), now)
		require.NoError(t, err)
		require.True(t, migrated)
		require.Equal(t, []string{"01.01", "08.03"}, g.Exceptions[2024].Holidays)
		require.Equal(t, []string{"07.03"}, g.Exceptions[2024].ShortDays)

		// Lookups behave as if the map had been authored per-year.
		require.Equal(t, calendar.Holiday, g.Exceptions.Kind(time.Date(2024, time.March, 8, 0, 0, 0, 0, time.Local)))
		require.Equal(t, calendar.ShortDay, g.Exceptions.Kind(time.Date(2024, time.March, 7, 0, 0, 0, 0, time.Local)))
	})

	t.Run("unified entries win over the legacy location", func(t *testing.T) {
		raw := []byte(`{"entries":[{"id":"new"}],"contributions":[{"id":"old"}]}`)
		g, migrated, err := DecodeGlobal(raw, now)
		require.NoError(t, err)
		require.False(t, migrated)
		require.Len(t, g.Entries, 1)
		require.Equal(t, "new", g.Entries[0].ID)
	})

	t.Run("legacy entries move when unified absent", func(t *testing.T) {
		g, migrated, err := DecodeGlobal([]byte(`{"contributions":[{"id":"old"}]}`), now)
		require.NoError(t, err)
		require.True(t, migrated)
		require.Equal(t, "old", g.Entries[0].ID)
	})

	t.Run("modern payload round-trips unmigrated", func(t *testing.T) {
		g := Global{Exceptions: calendar.ExceptionSet{2024: {Holidays: []string{"01.01"}}}, Profiles: map[string]Personal{}}
		raw, err := EncodeGlobal(g)
		require.NoError(t, err)
		back, migrated, err := DecodeGlobal(raw, now)
		require.NoError(t, err)
		require.False(t, migrated)
		require.Equal(t, g.Exceptions, back.Exceptions)
	})
}

func TestHashGlobal(t *testing.T) {
	a := Global{Years: []int{2024}}
	b := Global{Years: []int{2024}}
	require.Equal(t, HashGlobal(a), HashGlobal(b))

	b.Years = []int{2025}
	require.NotEqual(t, HashGlobal(a), HashGlobal(b))

	t.Run("profiles never shift the hash", func(t *testing.T) {
		withProfile := Global{Years: []int{2024}, Profiles: map[string]Personal{"u1": {Theme: "dark"}}}
		require.Equal(t, HashGlobal(a), HashGlobal(withProfile))
	})
}

func TestMutatePersonal(t *testing.T) {
	ctx := context.Background()

	t.Run("without identity nothing touches the guard", func(t *testing.T) {
		clock := newFakeClock()
		r, remote := newTestReconciler(t, clock)
		require.NoError(t, r.MutatePersonal(ctx, Personal{Theme: "dark"}))
		require.Nil(t, r.guard)
		require.Nil(t, remote.Current())
		require.Equal(t, "dark", r.Document().Personal.Theme)
	})

	t.Run("with identity the profile is mirrored", func(t *testing.T) {
		clock := newFakeClock()
		r, remote := newTestReconciler(t, clock, WithIdentity("u1"))
		require.NoError(t, r.MutatePersonal(ctx, Personal{Theme: "dark", Accent: "teal"}))
		require.NoError(t, r.Close())

		stored, _, err := DecodeGlobal(remote.Current(), clock.Now())
		require.NoError(t, err)
		require.Equal(t, Personal{Theme: "dark", Accent: "teal"}, stored.Profiles["u1"])

		// The mirror write's echo hash-matches the guard because profiles
		// stay out of the canonical subset.
		clock.Advance(2 * time.Second)
		r.handleRemote(ctx, remote.Current())
		require.Nil(t, r.guard)
	})
}

func TestStartMergesTiers(t *testing.T) {
	clock := newFakeClock()
	remote := store.NewMemoryRemote()
	cache := store.NewMemoryCache()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, cache.Save([]byte(`{"theme":"dark","displayName":"Cached"}`)))
	seed := Global{
		Years:    []int{2024},
		Profiles: map[string]Personal{"u1": {Accent: "teal", DisplayName: "Profiled"}},
	}
	require.NoError(t, remote.Write(ctx, encode(t, seed)))

	r, err := New(remote, cache, WithClock(clock.Now), WithIdentity("u1"))
	require.NoError(t, err)
	require.NoError(t, r.Start(ctx))

	doc := r.Document()
	require.Equal(t, []int{2024}, doc.Global.Years)
	// dark survives from the local cache, accent and name come from the
	// identity profile above it.
	require.Equal(t, "dark", doc.Personal.Theme)
	require.Equal(t, "teal", doc.Personal.Accent)
	require.Equal(t, "Profiled", doc.Personal.DisplayName)
}

func TestStartWithMalformedDocument(t *testing.T) {
	clock := newFakeClock()
	remote := store.NewMemoryRemote()
	cache := store.NewMemoryCache()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, cache.Save([]byte(`{"theme":"dark"}`)))
	require.NoError(t, remote.Write(ctx, []byte(`{not json`)))

	r, err := New(remote, cache, WithClock(clock.Now), WithLockWindow(time.Second))
	require.NoError(t, err)
	// An undecodable document is treated as absent, not fatal.
	require.NoError(t, r.Start(ctx))

	doc := r.Document()
	require.Empty(t, doc.Global.Years)
	require.Equal(t, "dark", doc.Personal.Theme)

	// A well-formed collaborator write still merges afterwards.
	peer := Global{Years: []int{2024}, Exceptions: calendar.ExceptionSet{}, Profiles: map[string]Personal{}}
	r.handleRemote(ctx, encode(t, peer))
	require.Equal(t, []int{2024}, r.Document().Global.Years)
}

func TestRemoteMergeNotifiesSubscribers(t *testing.T) {
	clock := newFakeClock()
	r, _ := newTestReconciler(t, clock)
	ctx := context.Background()

	var got []Document
	r.Subscribe(func(d Document) { got = append(got, d) })

	peer := Global{Years: []int{2030}, Exceptions: calendar.ExceptionSet{}, Profiles: map[string]Personal{}}
	r.handleRemote(ctx, encode(t, peer))

	require.Len(t, got, 1)
	require.Equal(t, []int{2030}, got[0].Global.Years)
}

func TestMalformedRemotePayloadIgnored(t *testing.T) {
	clock := newFakeClock()
	r, _ := newTestReconciler(t, clock)
	require.NoError(t, r.Mutate(context.Background(), func(g *Global) { g.Years = []int{2024} }))
	require.NoError(t, r.Close())
	clock.Advance(2 * time.Second)

	r.handleRemote(context.Background(), []byte(`{not json`))
	require.Equal(t, []int{2024}, r.Document().Global.Years)
}
