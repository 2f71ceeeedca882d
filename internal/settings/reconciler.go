package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"okkstats/internal/settings/metrics"
	"okkstats/internal/settings/store"
	"okkstats/pkg/platform/audit"
	"okkstats/pkg/platform/sentinel"
)

// DefaultLockWindow suppresses remote notifications arriving shortly after a
// local write. It must exceed the slowest observed round trip of the remote
// store; 1.5x the typical sync latency works well in practice.
const DefaultLockWindow = 5 * time.Second

// writeGuard remembers the last local write so the store's own change
// notification can be told apart from a genuine collaborator edit.
type writeGuard struct {
	at   time.Time
	hash string
}

// Reconciler owns the settings document. It merges the tiers at startup,
// applies local mutations optimistically, persists them asynchronously and
// arbitrates incoming remote notifications against the write guard.
type Reconciler struct {
	remote store.Remote
	cache  store.Cache

	identity   string
	lockWindow time.Duration
	clock      func() time.Time
	log        *slog.Logger
	metrics    *metrics.Metrics
	audit      audit.Publisher

	mu    sync.Mutex
	doc   Document
	guard *writeGuard
	subs  []func(Document)

	writes sync.WaitGroup
}

// Option configures the Reconciler.
type Option func(*Reconciler)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(r *Reconciler) { r.log = log }
}

// WithMetrics sets the Prometheus collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Reconciler) { r.metrics = m }
}

// WithIdentity sets the user identity whose cloud profile overrides the
// personal tier and receives mirrored personal edits.
func WithIdentity(id string) Option {
	return func(r *Reconciler) { r.identity = id }
}

// WithLockWindow overrides the echo-suppression window.
func WithLockWindow(d time.Duration) Option {
	return func(r *Reconciler) { r.lockWindow = d }
}

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(r *Reconciler) { r.clock = clock }
}

// WithAudit sets the audit event publisher.
func WithAudit(p audit.Publisher) Option {
	return func(r *Reconciler) { r.audit = p }
}

// New creates a Reconciler over the given stores. The document starts at
// defaults until Start merges the persisted tiers.
func New(remote store.Remote, cache store.Cache, opts ...Option) (*Reconciler, error) {
	if remote == nil {
		return nil, errors.New("settings: remote store is required")
	}
	r := &Reconciler{
		remote:     remote,
		cache:      cache,
		lockWindow: DefaultLockWindow,
		clock:      time.Now,
		log:        slog.Default(),
		audit:      audit.Nop{},
		doc:        Defaults(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Start loads and merges the tiers, then begins consuming remote change
// notifications until ctx is canceled.
func (r *Reconciler) Start(ctx context.Context) error {
	doc := Defaults()

	if r.cache != nil {
		raw, err := r.cache.Load()
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
		case err != nil:
			r.log.Warn("personal settings cache unreadable", "error", err)
		default:
			var p Personal
			if err := json.Unmarshal(raw, &p); err != nil {
				r.log.Warn("personal settings cache malformed", "error", err)
			} else {
				doc.Personal = overlayPersonal(doc.Personal, p)
			}
		}
	}

	raw, err := r.remote.Load(ctx)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		r.log.Info("no settings document yet, starting from defaults")
	case err != nil:
		return fmt.Errorf("load settings: %w", err)
	default:
		g, migrated, err := DecodeGlobal(raw, r.clock())
		if err != nil {
			// A document nobody can decode is as good as no document; the
			// defaults tier carries the process until a collaborator writes
			// a well-formed one.
			r.log.Warn("settings document malformed, starting from defaults", "error", err)
			if r.metrics != nil {
				r.metrics.Malformed.Inc()
			}
			break
		}
		doc.Global = g
		if p, ok := g.Profiles[r.identity]; ok && r.identity != "" {
			doc.Personal = overlayPersonal(doc.Personal, p)
		}
		if migrated {
			r.migrated(ctx, g)
		}
	}

	r.mu.Lock()
	r.doc = doc
	r.mu.Unlock()

	ch, err := r.remote.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch settings: %w", err)
	}
	go func() {
		for raw := range ch {
			r.handleRemote(ctx, raw)
		}
	}()
	return nil
}

// Document returns a copy of the current merged document.
func (r *Reconciler) Document() Document {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.doc.Clone()
}

// Subscribe registers a callback invoked with a document copy after every
// applied change, local or remote.
func (r *Reconciler) Subscribe(fn func(Document)) {
	r.mu.Lock()
	r.subs = append(r.subs, fn)
	r.mu.Unlock()
}

// Mutate applies patch to the shared portion of the document, arms the write
// guard and persists the result asynchronously. The in-memory document keeps
// the new state even when the write later fails; the next mutation retries
// with whatever the document holds then.
func (r *Reconciler) Mutate(ctx context.Context, patch func(*Global)) error {
	r.mu.Lock()
	g := r.doc.Global.clone()
	patch(&g)
	r.doc.Global = g
	r.guard = &writeGuard{at: r.clock(), hash: HashGlobal(g)}
	r.mu.Unlock()

	payload, err := EncodeGlobal(g)
	if err != nil {
		return err
	}
	if r.metrics != nil {
		r.metrics.Mutations.Inc()
	}
	r.audit.Publish(ctx, audit.Event{
		Type:     "settings_mutated",
		At:       r.clock(),
		Identity: r.identity,
	})
	r.notify()
	r.persist(ctx, payload)
	return nil
}

// MutatePersonal updates the personal tier. The local cache write bypasses
// the guard; when an identity is known the preferences are also mirrored
// into that identity's profile inside the shared document, so switching
// identity elsewhere restores them.
func (r *Reconciler) MutatePersonal(ctx context.Context, p Personal) error {
	r.mu.Lock()
	r.doc.Personal = p
	r.mu.Unlock()

	if r.cache != nil {
		raw, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("encode personal settings: %w", err)
		}
		if err := r.cache.Save(raw); err != nil {
			return err
		}
	}

	if r.identity != "" {
		return r.Mutate(ctx, func(g *Global) {
			if g.Profiles == nil {
				g.Profiles = map[string]Personal{}
			}
			g.Profiles[r.identity] = p
		})
	}
	r.notify()
	return nil
}

// Close waits for in-flight document writes to settle.
func (r *Reconciler) Close() error {
	r.writes.Wait()
	return nil
}

// handleRemote arbitrates one incoming notification. Within the lock window
// of a local write everything is treated as the echo of that write; outside
// it a payload hashing to the guarded value is an idempotent echo; anything
// else is a collaborator edit and triggers a full tier merge.
func (r *Reconciler) handleRemote(ctx context.Context, raw []byte) {
	now := r.clock()

	r.mu.Lock()
	if r.guard != nil && now.Sub(r.guard.at) < r.lockWindow {
		r.mu.Unlock()
		r.suppressed("time")
		return
	}
	r.mu.Unlock()

	g, migrated, err := DecodeGlobal(raw, now)
	if err != nil {
		r.log.Warn("remote settings payload malformed", "error", err)
		if r.metrics != nil {
			r.metrics.Malformed.Inc()
		}
		return
	}
	hash := HashGlobal(g)

	r.mu.Lock()
	if r.guard != nil && hash == r.guard.hash {
		// Profiles are outside the hash; adopt peers' entries so our next
		// write does not clobber them.
		for id, p := range g.Profiles {
			if id != r.identity {
				r.doc.Global.Profiles[id] = p
			}
		}
		r.guard = nil
		r.mu.Unlock()
		r.suppressed("hash")
		return
	}
	r.guard = nil
	r.doc.Global = g
	if p, ok := g.Profiles[r.identity]; ok && r.identity != "" {
		r.doc.Personal = overlayPersonal(r.doc.Personal, p)
	}
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.RemoteApplied.Inc()
	}
	r.log.Debug("remote settings merged", "hash", hash)
	if migrated {
		r.migrated(ctx, g)
	}
	r.notify()
}

// migrated records a legacy upgrade and writes the modern shape back, guarded
// like any local write.
func (r *Reconciler) migrated(ctx context.Context, g Global) {
	r.log.Info("migrated legacy settings payload")
	if r.metrics != nil {
		r.metrics.LegacyMigrations.Inc()
	}
	r.audit.Publish(ctx, audit.Event{
		Type:     "legacy_migrated",
		At:       r.clock(),
		Identity: r.identity,
	})

	payload, err := EncodeGlobal(g)
	if err != nil {
		r.log.Error("encode migrated settings", "error", err)
		return
	}
	r.mu.Lock()
	r.guard = &writeGuard{at: r.clock(), hash: HashGlobal(g)}
	r.mu.Unlock()
	r.persist(ctx, payload)
}

// persist issues the asynchronous document write. Failure keeps both the
// in-memory state and the guard.
func (r *Reconciler) persist(ctx context.Context, payload []byte) {
	r.writes.Add(1)
	go func() {
		defer r.writes.Done()
		if err := r.remote.Write(ctx, payload); err != nil {
			r.log.Error("settings write failed", "error", err)
			if r.metrics != nil {
				r.metrics.WritesFailed.Inc()
			}
			r.audit.Publish(ctx, audit.Event{
				Type:     "remote_write_failed",
				At:       r.clock(),
				Identity: r.identity,
				Detail:   map[string]any{"error": err.Error()},
			})
		}
	}()
}

func (r *Reconciler) suppressed(guard string) {
	r.log.Debug("remote notification suppressed", "guard", guard)
	if r.metrics != nil {
		r.metrics.EchoesSuppressed.WithLabelValues(guard).Inc()
	}
}

func (r *Reconciler) notify() {
	r.mu.Lock()
	subs := slices.Clone(r.subs)
	doc := r.doc.Clone()
	r.mu.Unlock()
	for _, fn := range subs {
		fn(doc)
	}
}

// overlayPersonal merges tier p over base, field by field; empty fields keep
// the lower tier's value.
func overlayPersonal(base, p Personal) Personal {
	if p.Theme != "" {
		base.Theme = p.Theme
	}
	if p.Accent != "" {
		base.Accent = p.Accent
	}
	if p.DisplayName != "" {
		base.DisplayName = p.DisplayName
	}
	return base
}
