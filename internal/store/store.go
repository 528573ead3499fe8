package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	// Postgres driver, registered as "pgx", for shared bot deployments.
	_ "github.com/jackc/pgx/v5/stdlib"
	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store owns the database handle and provides access to repositories.
type Store struct {
	drv     *entsql.Driver
	dialect string
}

// sqlitePragmas are applied by the driver on every new connection.
var sqlitePragmas = []string{
	"busy_timeout(5000)",
	"journal_mode(WAL)",
	"foreign_keys(1)",
	"synchronous(NORMAL)",
}

// Open connects to dsn and creates the schema if needed. A postgres:// or
// postgresql:// URL selects Postgres; anything else is a SQLite path or
// file: URI.
func Open(dsn string) (*Store, error) {
	driverName, dialectName, source := "sqlite", dialect.SQLite, sqliteDSN(dsn)
	if IsPostgresDSN(dsn) {
		driverName, dialectName, source = "pgx", dialect.Postgres, dsn
	}

	db, err := sql.Open(driverName, source)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dialectName == dialect.SQLite {
		// One writer at a time; also keeps in-memory databases alive.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
	}

	s := &Store{drv: entsql.OpenDB(dialectName, db), dialect: dialectName}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// IsPostgresDSN reports whether dsn names a Postgres database.
func IsPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// sqliteDSN appends the connection pragmas to a path or file: URI.
func sqliteDSN(dsn string) string {
	q := url.Values{}
	for _, p := range sqlitePragmas {
		q.Add("_pragma", p)
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + q.Encode()
}

// Dialect returns the ent dialect name in use.
func (s *Store) Dialect() string {
	return s.dialect
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.drv.DB()
}

// Ping checks the connection. Used by health endpoints.
func (s *Store) Ping(ctx context.Context) error {
	return s.drv.DB().PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.drv.Close()
}

// EventRepo returns an EventRepo backed by this store.
func (s *Store) EventRepo() EventRepo {
	return newEventRepo(s.drv, s.dialect)
}

const llmEventsTable = "llm_request_events"

func (s *Store) migrate(ctx context.Context) error {
	idCol, tsCol, boolCol := "INTEGER PRIMARY KEY AUTOINCREMENT", "INTEGER", "BOOLEAN NOT NULL DEFAULT 0"
	if s.dialect == dialect.Postgres {
		idCol, tsCol, boolCol = "BIGSERIAL PRIMARY KEY", "BIGINT", "BOOLEAN NOT NULL DEFAULT FALSE"
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ` + llmEventsTable + ` (
	id ` + idCol + `,
	created_at ` + tsCol + ` NOT NULL,
	session_id TEXT NOT NULL DEFAULT '',
	provider TEXT NOT NULL DEFAULT '',
	model TEXT NOT NULL DEFAULT '',
	purpose TEXT NOT NULL DEFAULT '',
	input_tokens INTEGER NOT NULL DEFAULT 0,
	output_tokens INTEGER NOT NULL DEFAULT 0,
	latency_ms ` + tsCol + ` NOT NULL DEFAULT 0,
	success ` + boolCol + `,
	error_message TEXT NOT NULL DEFAULT '',
	request_body TEXT NOT NULL DEFAULT '',
	response_body TEXT NOT NULL DEFAULT ''
)`,
		`CREATE INDEX IF NOT EXISTS llm_request_events_created_at ON ` + llmEventsTable + ` (created_at)`,
		`CREATE INDEX IF NOT EXISTS llm_request_events_session_id ON ` + llmEventsTable + ` (session_id)`,
	}
	for _, stmt := range stmts {
		if err := s.drv.Exec(ctx, stmt, []any{}, nil); err != nil {
			return err
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. MATHSTEP_DB environment variable
// 2. $XDG_DATA_HOME/mathstep/mathstep.db
// 3. ~/.local/share/mathstep/mathstep.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("MATHSTEP_DB"); p != "" {
		if IsPostgresDSN(p) {
			return p, nil
		}
		return p, EnsureDir(p)
	}

	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	p := filepath.Join(dir, "mathstep.db")
	return p, EnsureDir(p)
}

// DataDir returns $XDG_DATA_HOME/mathstep, falling back to
// ~/.local/share/mathstep.
func DataDir() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "mathstep"), nil
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
