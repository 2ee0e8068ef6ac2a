// Package store persists journal entries, users and the per-day emotion
// rollup. SQLite is the default backend; PostgreSQL is available for
// shared deployments.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/blackwell-systems/mindlens/internal/journal"
)

// Default limits for list and search queries.
const (
	DefaultListLimit   = 50
	DefaultSearchLimit = 20
)

// Store is the entry store contract shared by every backend.
type Store interface {
	// Insert writes an entry and returns its id. The timestamp and word
	// count are assigned by the store.
	Insert(ctx context.Context, e journal.NewEntry) (int64, error)

	// List returns the user's most recent entries, newest first.
	List(ctx context.Context, userID string, limit int) ([]journal.Entry, error)

	// Get returns a single entry owned by userID, or nil if none exists.
	Get(ctx context.Context, id int64, userID string) (*journal.Entry, error)

	// Search matches content case-insensitively, optionally restricted to
	// one emotion label.
	Search(ctx context.Context, userID, query, emotion string, limit int) ([]journal.Entry, error)

	// QueryRange returns entries with timestamp >= since in ascending order.
	// A zero since returns the full history.
	QueryRange(ctx context.Context, userID string, since time.Time) ([]journal.Point, error)

	// Delete removes an entry owned by userID and reports whether a row
	// was removed.
	Delete(ctx context.Context, id int64, userID string) (bool, error)

	EnsureUser(ctx context.Context, userID string) error
	UserSettings(ctx context.Context, userID string) (map[string]any, error)
	UpdateUserSettings(ctx context.Context, userID string, settings map[string]any) error

	// Users returns the ids of users with at least one entry.
	Users(ctx context.Context) ([]string, error)

	EmotionHistory(ctx context.Context, userID string, since time.Time) ([]journal.DailyEmotion, error)

	// RebuildHistory recomputes the rollup for one user from the entry
	// table and returns the number of rows written.
	RebuildHistory(ctx context.Context, userID string) (int, error)

	Ping(ctx context.Context) error
	Close() error
}

// Option configures a store backend.
type Option func(*options)

type options struct {
	now func() time.Time
	loc *time.Location
}

// WithClock sets the clock used to stamp new entries.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLocation sets the location used to assign rollup dates.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.loc = loc
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, loc: time.UTC}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// stamper hands out strictly increasing timestamps at microsecond precision.
type stamper struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

func (s *stamper) next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.now().UTC().Truncate(time.Microsecond)
	if !t.After(s.last) {
		t = s.last.Add(time.Microsecond)
	}
	s.last = t
	return t
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &journal.StorageError{Op: op, Err: err}
}

func checkUser(userID string) error {
	if userID == "" {
		return &journal.ValidationError{Field: "user_id", Reason: "user id is required"}
	}
	return nil
}
