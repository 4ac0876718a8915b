package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"

	// PostgreSQL driver for shared deployments.
	_ "github.com/lib/pq"
	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config selects the database backing the store.
type Config struct {
	// Driver is "sqlite" (default) or "postgres".
	Driver string
	// DSN is a file path or sqlite DSN for sqlite, a connection string
	// for postgres.
	DSN string
}

// ConfigFromEnv reads LINGO_DB_DRIVER and LINGO_DB_DSN. An empty sqlite
// DSN resolves to DefaultDBPath.
func ConfigFromEnv() (Config, error) {
	cfg := Config{Driver: DriverSQLite}
	if d := os.Getenv("LINGO_DB_DRIVER"); d != "" {
		cfg.Driver = d
	}
	cfg.DSN = os.Getenv("LINGO_DB_DSN")
	if cfg.DSN == "" && cfg.Driver == DriverSQLite {
		p, err := DefaultDBPath()
		if err != nil {
			return cfg, err
		}
		cfg.DSN = p
	}
	return cfg, cfg.Validate()
}

// Validate checks the driver name and that a DSN is set.
func (c Config) Validate() error {
	switch c.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unknown database driver: %q", c.Driver)
	}
	if c.DSN == "" {
		return fmt.Errorf("LINGO_DB_DSN is required for the %s driver", c.Driver)
	}
	return nil
}

// Store holds the database handle and provides access to repositories.
type Store struct {
	db      *sql.DB
	drv     *entsql.Driver
	dialect string
	seq     *sequenceCounter
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and runs auto-migration.
func Open(dsn string) (*Store, error) {
	return OpenConfig(Config{Driver: DriverSQLite, DSN: dsn})
}

// OpenConfig opens the database described by cfg and runs auto-migration.
func OpenConfig(cfg Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		db   *sql.DB
		err  error
		name = dialect.SQLite
	)
	switch cfg.Driver {
	case DriverPostgres:
		name = dialect.Postgres
		db, err = sql.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, fmt.Errorf("connect database: %w", err)
		}
	default:
		db, err = sql.Open("sqlite", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		// Pragmas are per connection; a single connection keeps them in
		// force for every statement.
		db.SetMaxOpenConns(1)
		if err := applyPragmas(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragmas: %w", err)
		}
	}

	drv := entsql.OpenDB(name, db)
	if err := migrate(context.Background(), drv); err != nil {
		drv.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	seq, err := newSequenceCounter(db)
	if err != nil {
		drv.Close()
		return nil, err
	}

	return &Store{db: db, drv: drv, dialect: name, seq: seq}, nil
}

// migrate creates or updates every table the store owns.
func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return err
	}
	return m.Create(ctx, Tables...)
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the SQL dialect name of the connected database.
func (s *Store) Dialect() string {
	return s.dialect
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.drv.Close()
}

// EventRepo returns an EventRepo backed by this store.
func (s *Store) EventRepo() EventRepo {
	return &eventRepo{db: s.db, b: entsql.Dialect(s.dialect), seq: s.seq}
}

// SnapshotRepo returns a SnapshotRepo backed by this store.
func (s *Store) SnapshotRepo() SnapshotRepo {
	return &snapshotRepo{db: s.db, b: entsql.Dialect(s.dialect)}
}

// applyPragmas configures SQLite for optimal single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. LINGO_DB environment variable
// 2. $XDG_DATA_HOME/lingo/lingo.db
// 3. ~/.local/share/lingo/lingo.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("LINGO_DB"); p != "" {
		return p, ensureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "lingo", "lingo.db")
	return p, ensureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	return ensureDir(path)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
