// Package database opens the durable store and keeps its schema up to date.
// Two backends are supported:
//  1. SQLite (default): a single file, usually on a shared folder so two scoring desks can
//     point at the same tournament. Writers block on the file lock for BusyTimeout and then
//     fail instead of waiting forever.
//  2. Postgres: selected with DATABASE_URL when the venue has a real server.
package database

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	// Blank imports register the migrate database drivers for both dialects.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/trentd187/domino-tournament/internal/config"
	"github.com/trentd187/domino-tournament/internal/logging"
)

//go:embed migrations
var migrationsFS embed.FS

// Dialect names the backend in use.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Target describes where the store lives, derived from configuration.
type Target struct {
	Dialect     Dialect
	Path        string // SQLite file path
	URL         string // Postgres DSN
	BusyTimeout time.Duration
}

// TargetFromConfig picks the backend: DATABASE_URL wins over TORNEO_DB_PATH.
func TargetFromConfig(cfg *config.Config) Target {
	if cfg.UsesPostgres() {
		return Target{Dialect: DialectPostgres, URL: cfg.DatabaseURL, BusyTimeout: cfg.BusyTimeout}
	}
	return Target{Dialect: DialectSQLite, Path: cfg.DBPath, BusyTimeout: cfg.BusyTimeout}
}

// Connect opens the store and returns the GORM handle used by every repository.
// Unique-constraint violations are translated to gorm.ErrDuplicatedKey.
func Connect(t Target) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		Logger:         logging.NewGormLogger(),
		TranslateError: true,
	}

	switch t.Dialect {
	case DialectSQLite:
		db, err := gorm.Open(sqlite.Open(SQLiteDSN(t.Path, t.BusyTimeout)), gcfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store %q: %w", t.Path, err)
		}
		return db, nil
	case DialectPostgres:
		dsn, err := postgresDSN(t.URL, t.BusyTimeout)
		if err != nil {
			return nil, err
		}
		db, err := gorm.Open(postgres.Open(dsn), gcfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres store: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown store dialect %q", t.Dialect)
	}
}

// SQLiteDSN builds the go-sqlite3 connection string: foreign keys on, WAL journal,
// NORMAL sync, a bounded busy wait, and write transactions that take the lock at BEGIN.
func SQLiteDSN(path string, busy time.Duration) string {
	q := url.Values{}
	q.Set("_foreign_keys", "on")
	q.Set("_journal_mode", "WAL")
	q.Set("_synchronous", "NORMAL")
	q.Set("_busy_timeout", fmt.Sprint(busy.Milliseconds()))
	q.Set("_txlock", "immediate")
	return "file:" + path + "?" + q.Encode()
}

// postgresDSN adds lock_timeout as a runtime parameter so a blocked write fails after the
// configured wait.
func postgresDSN(raw string, busy time.Duration) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid DATABASE_URL: %w", err)
	}
	if busy > 0 {
		q := u.Query()
		if q.Get("lock_timeout") == "" {
			q.Set("lock_timeout", fmt.Sprint(busy.Milliseconds()))
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// sqliteMigrateURL points golang-migrate at the file. Plain query parameters reach the
// sqlite3 driver, so the migrator waits on a locked file like every other writer.
func sqliteMigrateURL(path string, busy time.Duration) string {
	u := "sqlite3://" + path
	if busy > 0 {
		u += fmt.Sprintf("?_busy_timeout=%d", busy.Milliseconds())
	}
	return u
}

// RunMigrations applies any pending "up" migrations for the target's dialect.
// The SQL files are embedded in the binary, so a scoring desk needs nothing but the
// executable and the store location.
func RunMigrations(t Target) error {
	sub, err := fs.Sub(migrationsFS, "migrations/"+string(t.Dialect))
	if err != nil {
		return fmt.Errorf("no migrations for dialect %q: %w", t.Dialect, err)
	}
	src, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("failed to read embedded migrations: %w", err)
	}

	var dbURL string
	switch t.Dialect {
	case DialectSQLite:
		dbURL = sqliteMigrateURL(t.Path, t.BusyTimeout)
	case DialectPostgres:
		dbURL = t.URL
	default:
		return fmt.Errorf("unknown store dialect %q", t.Dialect)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, dbURL)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer m.Close()

	// migrate.ErrNoChange just means the schema is already current.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Open connects to the target and migrates it; the usual startup sequence.
func Open(t Target) (*gorm.DB, error) {
	if err := RunMigrations(t); err != nil {
		return nil, err
	}
	return Connect(t)
}

// Close releases the pool behind a GORM handle.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Describe renders the target for logs without leaking Postgres credentials.
func (t Target) Describe() string {
	if t.Dialect == DialectSQLite {
		return "sqlite:" + t.Path
	}
	u, err := url.Parse(t.URL)
	if err != nil {
		return "postgres"
	}
	return "postgres://" + u.Host + "/" + strings.TrimPrefix(u.Path, "/")
}
