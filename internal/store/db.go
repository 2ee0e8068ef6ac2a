package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// connPragmas is applied by the driver to every pooled connection. Writers
// wait on locks held by the scheduler or a second CLI process.
const connPragmas = "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=journal_mode(WAL)"

// DB wraps a sql.DB connection to the mindlens SQLite database.
type DB struct {
	conn  *sql.DB
	loc   *time.Location
	clock *stamper
}

// Open opens or creates the SQLite database at the given path.
// It creates the parent directory if it does not exist.
func Open(dbPath string, opts ...Option) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", "file:"+dbPath+connPragmas)
	if err != nil {
		return nil, err
	}

	return newDB(conn, opts)
}

// OpenInMemory opens an in-memory SQLite database, useful for testing.
func OpenInMemory(opts ...Option) (*DB, error) {
	conn, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, err
	}

	// Every pooled connection would otherwise get its own empty database.
	conn.SetMaxOpenConns(1)

	return newDB(conn, opts)
}

func newDB(conn *sql.DB, opts []Option) (*DB, error) {
	o := buildOptions(opts)
	db := &DB{
		conn:  conn,
		loc:   o.loc,
		clock: &stamper{now: o.now},
	}

	// Run migrations on open.
	if err := db.Migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying sql.DB for advanced queries.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Ping verifies the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return wrap("ping", db.conn.PingContext(ctx))
}

var _ Store = (*DB)(nil)
