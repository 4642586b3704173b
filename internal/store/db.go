package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection to the engram SQLite database.
// It is the single writer for memories and graph edges.
type DB struct {
	*sql.DB
	Path string

	now func() time.Time
}

// Open opens (or creates) the SQLite database at the given path,
// configures pragmas, and runs migrations.
func Open(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return setup(sqlDB, path)
}

// OpenMemory opens an in-memory SQLite database for testing.
func OpenMemory() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	// Every new connection would get its own empty :memory: database.
	sqlDB.SetMaxOpenConns(1)
	return setup(sqlDB, ":memory:")
}

func setup(sqlDB *sql.DB, path string) (*DB, error) {
	db := &DB{DB: sqlDB, Path: path, now: time.Now}
	if err := db.configurePragmas(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// SetClock replaces the time source used for timestamps and decay cutoffs.
func (db *DB) SetClock(now func() time.Time) {
	db.now = now
}

func (db *DB) nowMilli() int64 {
	return db.now().UnixMilli()
}

func (db *DB) configurePragmas() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("pragma %q: %w", p, err)
		}
	}
	return nil
}

// Stats summarizes the store contents.
type Stats struct {
	Memories int `json:"memories"`
	Enforced int `json:"enforced"`
	Edges    int `json:"edges"`
}

// Stats returns row counts for both entity sets.
func (db *DB) Stats() (Stats, error) {
	var s Stats
	err := db.QueryRow(`
		SELECT
			(SELECT COUNT(*) FROM memories),
			(SELECT COUNT(*) FROM memories WHERE enforced = 1),
			(SELECT COUNT(*) FROM graph_edges)
	`).Scan(&s.Memories, &s.Enforced, &s.Edges)
	if err != nil {
		return s, fmt.Errorf("stats: %w", err)
	}
	return s, nil
}
