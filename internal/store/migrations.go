package store

import "fmt"

// currentSchemaVersion is the latest schema version.
const currentSchemaVersion = 2

// Migrate runs forward migrations to bring the database schema up to date.
func (db *DB) Migrate() error {
	// Create the schema_version table if it does not exist.
	if _, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	version := 0
	row := db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1")
	if err := row.Scan(&version); err != nil {
		// No rows means version 0 (fresh database).
		version = 0
	}

	if version < 1 {
		if err := db.migrateV1(); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}
	if version < 2 {
		if err := db.migrateV2(); err != nil {
			return fmt.Errorf("migration v2: %w", err)
		}
	}

	return nil
}

// migrateV1 creates the user and entry tables.
func (db *DB) migrateV1() error {
	return db.applyMigration(1, []string{
		`CREATE TABLE IF NOT EXISTS users (
			id         TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			settings   TEXT NOT NULL DEFAULT '{}'
		)`,

		`CREATE TABLE IF NOT EXISTS journal_entries (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id       TEXT NOT NULL REFERENCES users(id),
			content       TEXT NOT NULL,
			emotion       TEXT NOT NULL,
			emotion_score REAL NOT NULL,
			reflection    TEXT,
			timestamp     TEXT NOT NULL,
			word_count    INTEGER
		)`,

		`CREATE INDEX IF NOT EXISTS idx_entries_user_time ON journal_entries(user_id, timestamp)`,
	})
}

// migrateV2 adds the per-day emotion rollup.
func (db *DB) migrateV2() error {
	return db.applyMigration(2, []string{
		`CREATE TABLE IF NOT EXISTS emotion_history (
			user_id     TEXT NOT NULL REFERENCES users(id),
			emotion     TEXT NOT NULL,
			date        TEXT NOT NULL,
			score       REAL NOT NULL,
			entry_count INTEGER NOT NULL DEFAULT 1,
			UNIQUE (user_id, emotion, date)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_history_user_date ON emotion_history(user_id, date)`,
	})
}

func (db *DB) applyMigration(version int, statements []string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}

	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
		return err
	}

	return tx.Commit()
}
