// Package sqlstore implements the identity, project and task repositories on
// top of database/sql. SQLite (modernc.org/sqlite) is the default backend;
// Postgres is reached through the pgx stdlib driver.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const defaultTimeout = 5 * time.Second

// Supported values for Config.Driver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config captures the settings required to open the SQL store.
type Config struct {
	Driver  string
	DSN     string
	Timeout time.Duration
}

// Store owns the database handle shared by every repository in this package.
type Store struct {
	db      *sql.DB
	driver  string
	timeout time.Duration
}

// Open connects to the configured database, verifies connectivity with a
// ping and makes sure the tables exist.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverSQLite
	}

	var (
		db  *sql.DB
		err error
	)
	switch driver {
	case DriverSQLite:
		if strings.TrimSpace(cfg.DSN) == "" {
			return nil, fmt.Errorf("sqlstore: sqlite path is required")
		}
		db, err = sql.Open("sqlite", sqliteDSN(cfg.DSN))
		if err == nil {
			// SQLite serialises writers; a single connection avoids SQLITE_BUSY
			// and keeps ":memory:" databases alive for the life of the pool.
			db.SetMaxOpenConns(1)
		}
	case DriverPostgres:
		db, err = sql.Open("pgx", cfg.DSN)
	default:
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlstore open: %w", err)
	}

	s := New(db, driver, cfg.Timeout)
	if err := s.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlstore ping: %w", err)
	}
	if err := s.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an already opened handle. Open is the usual entry point; New
// exists for callers that manage the *sql.DB themselves.
func New(db *sql.DB, driver string, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Store{db: db, driver: driver, timeout: timeout}
}

func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// DB exposes the underlying handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Driver reports the backend in use.
func (s *Store) Driver() string {
	return s.driver
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	return s.db.PingContext(ctx)
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// EnsureSchema creates the tables and indexes when they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	for _, stmt := range schema(s.driver) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlstore schema: %w", err)
		}
	}
	return nil
}

func schema(driver string) []string {
	ts := "INTEGER"
	if driver == DriverPostgres {
		ts = "BIGINT"
	}
	return []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id    TEXT PRIMARY KEY,
			first_name TEXT NOT NULL,
			last_name  TEXT NOT NULL,
			role       TEXT NOT NULL,
			email_id   TEXT NOT NULL UNIQUE,
			password   TEXT NOT NULL,
			created_at ` + ts + ` NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS projects (
			project_id          TEXT PRIMARY KEY,
			project_title       TEXT NOT NULL UNIQUE,
			project_description TEXT NOT NULL,
			user_id             TEXT NOT NULL REFERENCES users(user_id),
			created_at          ` + ts + ` NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			task_id          TEXT PRIMARY KEY,
			task_title       TEXT NOT NULL,
			task_description TEXT NOT NULL,
			task_status      TEXT NOT NULL,
			project_id       TEXT NOT NULL REFERENCES projects(project_id) ON DELETE CASCADE,
			user_id          TEXT NOT NULL REFERENCES users(user_id),
			created_at       ` + ts + ` NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_project_id ON tasks (project_id)`,
	}
}

// opContext bounds a single store operation by the configured timeout.
func (s *Store) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// rebind rewrites "?" placeholders to "$n" for Postgres. Queries in this
// package never contain a literal question mark.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
