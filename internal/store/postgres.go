package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/blackwell-systems/mindlens/internal/journal"
)

// PGStore is the PostgreSQL entry store.
type PGStore struct {
	pool  *pgxpool.Pool
	loc   *time.Location
	clock *stamper
}

// OpenPostgres connects to PostgreSQL and runs migrations.
func OpenPostgres(ctx context.Context, dsn string, opts ...Option) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	o := buildOptions(opts)
	s := &PGStore{pool: pool, loc: o.loc, clock: &stamper{now: o.now}}
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

var pgMigrations = [][]string{
	{
		`CREATE TABLE IF NOT EXISTS users (
			id         TEXT PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			settings   JSONB NOT NULL DEFAULT '{}'::jsonb
		)`,
		`CREATE TABLE IF NOT EXISTS journal_entries (
			id            BIGSERIAL PRIMARY KEY,
			user_id       TEXT NOT NULL REFERENCES users(id),
			content       TEXT NOT NULL,
			emotion       TEXT NOT NULL,
			emotion_score DOUBLE PRECISION NOT NULL,
			reflection    TEXT,
			timestamp     TIMESTAMPTZ NOT NULL,
			word_count    INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_user_time ON journal_entries(user_id, timestamp)`,
	},
	{
		`CREATE TABLE IF NOT EXISTS emotion_history (
			user_id     TEXT NOT NULL REFERENCES users(id),
			emotion     TEXT NOT NULL,
			date        DATE NOT NULL,
			score       DOUBLE PRECISION NOT NULL,
			entry_count INTEGER NOT NULL DEFAULT 1,
			PRIMARY KEY (user_id, emotion, date)
		)`,
	},
}

// Migrate runs forward migrations to bring the schema up to date.
func (s *PGStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	version := 0
	err := s.pool.QueryRow(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for i := version; i < len(pgMigrations); i++ {
		if err := s.applyMigration(ctx, i+1, pgMigrations[i]); err != nil {
			return fmt.Errorf("migration v%d: %w", i+1, err)
		}
	}
	return nil
}

func (s *PGStore) applyMigration(ctx context.Context, version int, statements []string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, stmt := range statements {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(ctx, "DELETE FROM schema_version"); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, "INSERT INTO schema_version (version) VALUES ($1)", version); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Close releases the connection pool.
func (s *PGStore) Close() error {
	s.pool.Close()
	return nil
}

// Ping verifies the database is reachable.
func (s *PGStore) Ping(ctx context.Context) error {
	return wrap("ping", s.pool.Ping(ctx))
}

const pgEntryColumns = `id, user_id, content, emotion, emotion_score,
	COALESCE(reflection, ''), timestamp, COALESCE(word_count, 0)`

// Insert writes a new journal entry in one transaction.
func (s *PGStore) Insert(ctx context.Context, e journal.NewEntry) (int64, error) {
	if err := checkUser(e.UserID); err != nil {
		return 0, err
	}

	content := strings.TrimSpace(e.Content)
	emotion := journal.NormalizeEmotion(e.Emotion)
	ts := s.clock.next()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, wrap("insert", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		"INSERT INTO users (id, created_at) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING",
		e.UserID, ts,
	); err != nil {
		return 0, wrap("insert", err)
	}

	var reflection *string
	if e.Reflection != "" {
		reflection = &e.Reflection
	}

	var id int64
	if err := tx.QueryRow(ctx,
		`INSERT INTO journal_entries
		(user_id, content, emotion, emotion_score, reflection, timestamp, word_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		e.UserID, content, emotion, e.EmotionScore, reflection, ts, journal.WordCount(content),
	).Scan(&id); err != nil {
		return 0, wrap("insert", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO emotion_history (user_id, emotion, date, score, entry_count)
		VALUES ($1, $2, $3::date, $4, 1)
		ON CONFLICT (user_id, emotion, date) DO UPDATE SET
			score = (emotion_history.score * emotion_history.entry_count + EXCLUDED.score)
				/ (emotion_history.entry_count + 1),
			entry_count = emotion_history.entry_count + 1`,
		e.UserID, emotion, ts.In(s.loc).Format(dateLayout), e.EmotionScore,
	); err != nil {
		return 0, wrap("insert", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, wrap("insert", err)
	}
	return id, nil
}

// List returns the user's most recent entries, newest first.
func (s *PGStore) List(ctx context.Context, userID string, limit int) ([]journal.Entry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.pool.Query(ctx,
		"SELECT "+pgEntryColumns+` FROM journal_entries
		WHERE user_id = $1
		ORDER BY timestamp DESC, id DESC
		LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, wrap("list", err)
	}
	entries, err := collectEntries(rows)
	return entries, wrap("list", err)
}

// Get returns the entry with the given id if it belongs to userID, or nil.
func (s *PGStore) Get(ctx context.Context, id int64, userID string) (*journal.Entry, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT "+pgEntryColumns+" FROM journal_entries WHERE id = $1 AND user_id = $2",
		id, userID,
	)
	e, err := scanPGEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("get", err)
	}
	return e, nil
}

// Search returns entries whose content contains query, newest first.
func (s *PGStore) Search(ctx context.Context, userID, query, emotion string, limit int) ([]journal.Entry, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	q := "SELECT " + pgEntryColumns + ` FROM journal_entries
		WHERE user_id = $1 AND content ILIKE $2`
	args := []any{userID, likePattern(query)}
	if emotion = journal.NormalizeEmotion(emotion); emotion != "" {
		args = append(args, emotion)
		q += fmt.Sprintf(" AND emotion = $%d", len(args))
	}
	args = append(args, limit)
	q += fmt.Sprintf(" ORDER BY timestamp DESC, id DESC LIMIT $%d", len(args))

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, wrap("search", err)
	}
	entries, err := collectEntries(rows)
	return entries, wrap("search", err)
}

// QueryRange returns the analytics projection of entries at or after since.
func (s *PGStore) QueryRange(ctx context.Context, userID string, since time.Time) ([]journal.Point, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT timestamp, emotion, emotion_score, COALESCE(word_count, 0)
		FROM journal_entries
		WHERE user_id = $1 AND timestamp >= $2
		ORDER BY timestamp ASC, id ASC`,
		userID, since.UTC(),
	)
	if err != nil {
		return nil, wrap("query range", err)
	}
	defer rows.Close()

	var points []journal.Point
	for rows.Next() {
		var p journal.Point
		if err := rows.Scan(&p.Timestamp, &p.Emotion, &p.EmotionScore, &p.WordCount); err != nil {
			return nil, wrap("query range", err)
		}
		p.Timestamp = p.Timestamp.UTC()
		points = append(points, p)
	}
	return points, wrap("query range", rows.Err())
}

// Delete removes the entry if it belongs to userID.
func (s *PGStore) Delete(ctx context.Context, id int64, userID string) (bool, error) {
	tag, err := s.pool.Exec(ctx, "DELETE FROM journal_entries WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return false, wrap("delete", err)
	}
	return tag.RowsAffected() > 0, nil
}

// EnsureUser creates the user row if it does not already exist.
func (s *PGStore) EnsureUser(ctx context.Context, userID string) error {
	if err := checkUser(userID); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, "INSERT INTO users (id) VALUES ($1) ON CONFLICT (id) DO NOTHING", userID)
	return wrap("ensure user", err)
}

// UserSettings returns the user's settings. Unknown users have none.
func (s *PGStore) UserSettings(ctx context.Context, userID string) (map[string]any, error) {
	var raw string
	err := s.pool.QueryRow(ctx, "SELECT settings::text FROM users WHERE id = $1", userID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, wrap("user settings", err)
	}
	return decodeSettings(raw)
}

// UpdateUserSettings replaces the user's settings, creating the user if needed.
func (s *PGStore) UpdateUserSettings(ctx context.Context, userID string, settings map[string]any) error {
	if err := checkUser(userID); err != nil {
		return err
	}
	data, err := json.Marshal(settings)
	if err != nil {
		return &journal.ValidationError{Field: "settings", Reason: err.Error()}
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO users (id, settings) VALUES ($1, $2::jsonb)
		ON CONFLICT (id) DO UPDATE SET settings = EXCLUDED.settings`,
		userID, string(data),
	)
	return wrap("update settings", err)
}

// Users returns the ids of users with at least one entry.
func (s *PGStore) Users(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, "SELECT DISTINCT user_id FROM journal_entries ORDER BY user_id")
	if err != nil {
		return nil, wrap("users", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	return ids, wrap("users", err)
}

// EmotionHistory returns rollup rows dated on or after since.
func (s *PGStore) EmotionHistory(ctx context.Context, userID string, since time.Time) ([]journal.DailyEmotion, error) {
	from := sinceDate(since, s.loc)
	if from == "" {
		from = "0001-01-01"
	}
	rows, err := s.pool.Query(ctx,
		`SELECT user_id, emotion, to_char(date, 'YYYY-MM-DD'), score, entry_count
		FROM emotion_history
		WHERE user_id = $1 AND date >= $2::date
		ORDER BY date ASC, emotion ASC`,
		userID, from,
	)
	if err != nil {
		return nil, wrap("emotion history", err)
	}
	defer rows.Close()

	var out []journal.DailyEmotion
	for rows.Next() {
		var d journal.DailyEmotion
		if err := rows.Scan(&d.UserID, &d.Emotion, &d.Date, &d.Score, &d.EntryCount); err != nil {
			return nil, wrap("emotion history", err)
		}
		out = append(out, d)
	}
	return out, wrap("emotion history", rows.Err())
}

// RebuildHistory replaces the user's rollup rows with recomputed ones.
func (s *PGStore) RebuildHistory(ctx context.Context, userID string) (int, error) {
	points, err := s.QueryRange(ctx, userID, time.Time{})
	if err != nil {
		return 0, err
	}
	rows := aggregateHistory(userID, points, s.loc)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, wrap("rebuild history", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "DELETE FROM emotion_history WHERE user_id = $1", userID); err != nil {
		return 0, wrap("rebuild history", err)
	}

	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(
			`INSERT INTO emotion_history (user_id, emotion, date, score, entry_count)
			VALUES ($1, $2, $3::date, $4, $5)`,
			r.UserID, r.Emotion, r.Date, r.Score, r.EntryCount,
		)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return 0, wrap("rebuild history", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, wrap("rebuild history", err)
	}
	return len(rows), nil
}

func scanPGEntry(row pgx.Row) (*journal.Entry, error) {
	var e journal.Entry
	if err := row.Scan(&e.ID, &e.UserID, &e.Content, &e.Emotion, &e.EmotionScore,
		&e.Reflection, &e.Timestamp, &e.WordCount); err != nil {
		return nil, err
	}
	e.Timestamp = e.Timestamp.UTC()
	return &e, nil
}

func collectEntries(rows pgx.Rows) ([]journal.Entry, error) {
	defer rows.Close()
	var entries []journal.Entry
	for rows.Next() {
		e, err := scanPGEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

var _ Store = (*PGStore)(nil)
