package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/lib/pq"

	"okkstats/internal/ingest"
)

// NotifyChannel is the Postgres channel writers signal after changing rows.
const NotifyChannel = "okkstats_rows_changed"

// PostgresSource serves raw rows from a JSONB table and reloads the full
// list whenever a notification arrives on NotifyChannel. Keeping the
// notification empty and re-reading everything sidesteps ordering races
// between concurrent writers.
type PostgresSource struct {
	db       *sql.DB
	listener *pq.Listener
	log      *slog.Logger

	mu   sync.Mutex
	subs []func([]ingest.RawRecord)
}

// PostgresOption configures a PostgresSource.
type PostgresOption func(*PostgresSource)

// WithPostgresLogger sets the logger.
func WithPostgresLogger(log *slog.Logger) PostgresOption {
	return func(s *PostgresSource) { s.log = log }
}

// NewPostgresSource connects to the database and prepares the listener.
func NewPostgresSource(connStr string, opts ...PostgresOption) (*PostgresSource, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &PostgresSource{
		db:  db,
		log: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.listener = pq.NewListener(connStr, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			s.log.Warn("postgres listener event", "event", ev, "error", err)
		}
	})
	return s, nil
}

func (s *PostgresSource) Subscribe(fn func([]ingest.RawRecord)) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

// Start delivers the current dataset once, then again on every notification.
func (s *PostgresSource) Start(ctx context.Context) error {
	if err := s.listener.Listen(NotifyChannel); err != nil {
		return fmt.Errorf("listen %s: %w", NotifyChannel, err)
	}
	if err := s.reload(ctx); err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				s.listener.Close()
				return
			case <-s.listener.Notify:
				if err := s.reload(ctx); err != nil {
					s.log.Error("reload rows", "error", err)
				}
			case <-time.After(90 * time.Second):
				// Keepalive; a dead connection resurfaces as a listener event.
				go s.listener.Ping()
			}
		}
	}()
	return nil
}

// Close releases the database connection.
func (s *PostgresSource) Close() error {
	return s.db.Close()
}

func (s *PostgresSource) reload(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM timesheet_rows ORDER BY id`)
	if err != nil {
		return fmt.Errorf("query rows: %w", err)
	}
	defer rows.Close()

	var out []ingest.RawRecord
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return fmt.Errorf("scan row: %w", err)
		}
		var rec ingest.RawRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			s.log.Warn("skipping malformed row payload", "error", err)
			continue
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate rows: %w", err)
	}

	s.mu.Lock()
	subs := slices.Clone(s.subs)
	s.mu.Unlock()
	for _, fn := range subs {
		fn(out)
	}
	s.log.Debug("rows reloaded", "count", len(out))
	return nil
}
