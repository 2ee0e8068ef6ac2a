package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/blackwell-systems/mindlens/internal/journal"
)

// timeLayout is fixed width so text timestamps sort chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const entryColumns = `id, user_id, content, emotion, emotion_score,
	COALESCE(reflection, ''), timestamp, COALESCE(word_count, 0)`

// Insert writes a new journal entry, creating the user row if needed and
// bumping the emotion rollup in the same transaction.
func (db *DB) Insert(ctx context.Context, e journal.NewEntry) (int64, error) {
	if err := checkUser(e.UserID); err != nil {
		return 0, err
	}

	content := strings.TrimSpace(e.Content)
	emotion := journal.NormalizeEmotion(e.Emotion)
	ts := db.clock.next()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, wrap("insert", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO users (id, created_at, settings) VALUES (?, ?, '{}')",
		e.UserID, ts.Format(timeLayout),
	); err != nil {
		return 0, wrap("insert", err)
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO journal_entries
		(user_id, content, emotion, emotion_score, reflection, timestamp, word_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.UserID, content, emotion, e.EmotionScore, nullString(e.Reflection),
		ts.Format(timeLayout), journal.WordCount(content),
	)
	if err != nil {
		return 0, wrap("insert", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, wrap("insert", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO emotion_history (user_id, emotion, date, score, entry_count)
		VALUES (?, ?, ?, ?, 1)
		ON CONFLICT (user_id, emotion, date) DO UPDATE SET
			score = (score * entry_count + excluded.score) / (entry_count + 1),
			entry_count = entry_count + 1`,
		e.UserID, emotion, ts.In(db.loc).Format(dateLayout), e.EmotionScore,
	); err != nil {
		return 0, wrap("insert", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, wrap("insert", err)
	}
	return id, nil
}

// List returns the user's most recent entries, newest first.
func (db *DB) List(ctx context.Context, userID string, limit int) ([]journal.Entry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := db.conn.QueryContext(ctx,
		"SELECT "+entryColumns+` FROM journal_entries
		WHERE user_id = ?
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, wrap("list", err)
	}
	defer func() { _ = rows.Close() }()

	entries, err := scanEntries(rows)
	return entries, wrap("list", err)
}

// Get returns the entry with the given id if it belongs to userID, or nil.
func (db *DB) Get(ctx context.Context, id int64, userID string) (*journal.Entry, error) {
	row := db.conn.QueryRowContext(ctx,
		"SELECT "+entryColumns+" FROM journal_entries WHERE id = ? AND user_id = ?",
		id, userID,
	)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("get", err)
	}
	return e, nil
}

// Search returns entries whose content contains query, newest first.
// An empty emotion matches every label.
func (db *DB) Search(ctx context.Context, userID, query, emotion string, limit int) ([]journal.Entry, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	q := "SELECT " + entryColumns + ` FROM journal_entries
		WHERE user_id = ? AND content LIKE ? ESCAPE '\'`
	args := []any{userID, likePattern(query)}
	if emotion = journal.NormalizeEmotion(emotion); emotion != "" {
		q += " AND emotion = ?"
		args = append(args, emotion)
	}
	q += " ORDER BY timestamp DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, wrap("search", err)
	}
	defer func() { _ = rows.Close() }()

	entries, err := scanEntries(rows)
	return entries, wrap("search", err)
}

// QueryRange returns the analytics projection of entries at or after since.
func (db *DB) QueryRange(ctx context.Context, userID string, since time.Time) ([]journal.Point, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT timestamp, emotion, emotion_score, COALESCE(word_count, 0)
		FROM journal_entries
		WHERE user_id = ? AND timestamp >= ?
		ORDER BY timestamp ASC, id ASC`,
		userID, since.UTC().Format(timeLayout),
	)
	if err != nil {
		return nil, wrap("query range", err)
	}
	defer func() { _ = rows.Close() }()

	var points []journal.Point
	for rows.Next() {
		var p journal.Point
		var ts string
		if err := rows.Scan(&ts, &p.Emotion, &p.EmotionScore, &p.WordCount); err != nil {
			return nil, wrap("query range", err)
		}
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, wrap("query range", err)
		}
		p.Timestamp = t
		points = append(points, p)
	}
	return points, wrap("query range", rows.Err())
}

// Delete removes the entry if it belongs to userID. Deleting a missing or
// foreign entry reports false without error.
func (db *DB) Delete(ctx context.Context, id int64, userID string) (bool, error) {
	result, err := db.conn.ExecContext(ctx,
		"DELETE FROM journal_entries WHERE id = ? AND user_id = ?",
		id, userID,
	)
	if err != nil {
		return false, wrap("delete", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, wrap("delete", err)
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*journal.Entry, error) {
	var e journal.Entry
	var ts string
	if err := row.Scan(&e.ID, &e.UserID, &e.Content, &e.Emotion, &e.EmotionScore,
		&e.Reflection, &ts, &e.WordCount); err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return nil, err
	}
	e.Timestamp = t
	return &e, nil
}

func scanEntries(rows *sql.Rows) ([]journal.Entry, error) {
	var entries []journal.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// likePattern escapes LIKE wildcards in query and wraps it in %...%.
func likePattern(query string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(query) + "%"
}
