// Package sqlite is the SQLite persistence adapter. Besides whole-snapshot
// flushes it applies single changes as one statement each, so a mark costs
// one insert instead of a rewrite of the ledger.
package sqlite

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/zjrosen/evencheck/internal/fileutil"
	"github.com/zjrosen/evencheck/internal/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB wraps the SQLite connection.
type DB struct {
	conn *sql.DB
	path string
}

// NewDB opens (creating if needed) the database at path, backs up an
// existing file to path+".bak" and applies pending migrations.
func NewDB(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		if err := fileutil.CopyFile(path, path+".bak", 0600); err != nil {
			return nil, fmt.Errorf("backing up database: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection serializes writers inside the process.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	db := &DB{conn: conn, path: path}
	if err := db.migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return db, nil
}

func dsn(path string) string {
	q := url.Values{}
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "journal_mode(wal)")
	q.Add("_pragma", "foreign_keys(1)")
	u := url.URL{Scheme: "file", OmitHost: true, Path: filepath.ToSlash(path), RawQuery: q.Encode()}
	return u.String()
}

// Close closes the connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// AttendanceRepository returns the repository over this database.
func (db *DB) AttendanceRepository() *Repository {
	return newRepository(db)
}

// migrate applies every embedded up migration newer than the recorded
// version. Each migration runs in its own transaction together with its
// version row.
func (db *DB) migrate() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}
	defer func() { _ = src.Close() }()

	if _, err := db.conn.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		dirty   INTEGER NOT NULL DEFAULT 0
	)`); err != nil {
		return fmt.Errorf("creating schema_migrations: %w", err)
	}

	var current uint
	if err := db.conn.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	version, err := src.First()
	for ; err == nil; version, err = src.Next(version) {
		if version <= current {
			continue
		}
		if err := db.applyMigration(src, version); err != nil {
			return err
		}
		log.Info(log.CatStore, "applied migration", "version", version, "db", db.path)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("walking migrations: %w", err)
	}
	return nil
}

func (db *DB) applyMigration(src source.Driver, version uint) error {
	r, identifier, err := src.ReadUp(version)
	if err != nil {
		return fmt.Errorf("reading migration %d: %w", version, err)
	}
	body, err := io.ReadAll(r)
	_ = r.Close()
	if err != nil {
		return fmt.Errorf("reading migration %d: %w", version, err)
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning migration %d: %w", version, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(string(body)); err != nil {
		return fmt.Errorf("migration %d (%s): %w", version, identifier, err)
	}
	if _, err := tx.Exec(`INSERT INTO schema_migrations (version, dirty) VALUES (?, 0)`, version); err != nil {
		return fmt.Errorf("recording migration %d: %w", version, err)
	}
	return tx.Commit()
}
