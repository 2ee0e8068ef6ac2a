package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/blackwell-systems/mindlens/internal/journal"
)

// EnsureUser creates the user row if it does not already exist.
func (db *DB) EnsureUser(ctx context.Context, userID string) error {
	if err := checkUser(userID); err != nil {
		return err
	}
	_, err := db.conn.ExecContext(ctx,
		"INSERT OR IGNORE INTO users (id, created_at, settings) VALUES (?, ?, '{}')",
		userID, time.Now().UTC().Format(timeLayout),
	)
	return wrap("ensure user", err)
}

// UserSettings returns the user's settings. Unknown users have none.
func (db *DB) UserSettings(ctx context.Context, userID string) (map[string]any, error) {
	var raw string
	err := db.conn.QueryRowContext(ctx, "SELECT settings FROM users WHERE id = ?", userID).Scan(&raw)
	if err == sql.ErrNoRows {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, wrap("user settings", err)
	}
	return decodeSettings(raw)
}

// UpdateUserSettings replaces the user's settings, creating the user if needed.
func (db *DB) UpdateUserSettings(ctx context.Context, userID string, settings map[string]any) error {
	if err := checkUser(userID); err != nil {
		return err
	}
	data, err := json.Marshal(settings)
	if err != nil {
		return &journal.ValidationError{Field: "settings", Reason: err.Error()}
	}
	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO users (id, created_at, settings) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET settings = excluded.settings`,
		userID, time.Now().UTC().Format(timeLayout), string(data),
	)
	return wrap("update settings", err)
}

// Users returns the ids of users with at least one entry.
func (db *DB) Users(ctx context.Context) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, "SELECT DISTINCT user_id FROM journal_entries ORDER BY user_id")
	if err != nil {
		return nil, wrap("users", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, wrap("users", err)
		}
		ids = append(ids, id)
	}
	return ids, wrap("users", rows.Err())
}

// EmotionHistory returns rollup rows dated on or after since.
func (db *DB) EmotionHistory(ctx context.Context, userID string, since time.Time) ([]journal.DailyEmotion, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT user_id, emotion, date, score, entry_count
		FROM emotion_history
		WHERE user_id = ? AND date >= ?
		ORDER BY date ASC, emotion ASC`,
		userID, sinceDate(since, db.loc),
	)
	if err != nil {
		return nil, wrap("emotion history", err)
	}
	defer func() { _ = rows.Close() }()

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

// RebuildHistory replaces the user's rollup rows with ones recomputed from
// journal_entries.
func (db *DB) RebuildHistory(ctx context.Context, userID string) (int, error) {
	points, err := db.QueryRange(ctx, userID, time.Time{})
	if err != nil {
		return 0, err
	}
	rows := aggregateHistory(userID, points, db.loc)

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, wrap("rebuild history", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM emotion_history WHERE user_id = ?", userID); err != nil {
		return 0, wrap("rebuild history", err)
	}
	for _, r := range rows {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO emotion_history (user_id, emotion, date, score, entry_count)
			VALUES (?, ?, ?, ?, ?)`,
			r.UserID, r.Emotion, r.Date, r.Score, r.EntryCount,
		); err != nil {
			return 0, wrap("rebuild history", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, wrap("rebuild history", err)
	}
	return len(rows), nil
}

func decodeSettings(raw string) (map[string]any, error) {
	settings := map[string]any{}
	if raw == "" {
		return settings, nil
	}
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return nil, wrap("decode settings", err)
	}
	return settings, nil
}
