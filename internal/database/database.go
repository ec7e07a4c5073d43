// Package database stores the visit journal: which levels a session entered, with what seed
// and what geometry fingerprint. Level geometry itself is never stored.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// Database wraps the journal connection pool.
type Database struct {
	db      *sql.DB
	dialect Dialect
	qb      *QueryBuilder
}

// Open opens or creates a SQLite journal at the given path.
func Open(path string) (*Database, error) {
	return OpenWithConfig(DefaultConfig(path))
}

// OpenWithConfig opens the journal described by cfg and runs migrations.
func OpenWithConfig(cfg Config) (*Database, error) {
	dialect := NewDialect(DialectType(cfg.Driver))

	var dsn string
	switch DialectType(cfg.Driver) {
	case DialectPostgres:
		dsn = cfg.Postgres.ConnString()
	case DialectSQLite, "":
		dir := filepath.Dir(cfg.SQLitePath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		// Pooled connections opened later get the same pragmas through the DSN
		dsn = cfg.SQLitePath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if DialectType(cfg.Driver) == DialectPostgres {
		db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.Postgres.ConnMaxLifetime)
	} else {
		// PRAGMAs are per connection
		db.SetMaxOpenConns(1)
	}

	for _, stmt := range dialect.InitStatements() {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run %q: %w", stmt, err)
		}
	}

	d := &Database{db: db, dialect: dialect, qb: NewQueryBuilder(dialect)}

	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return d, nil
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// Dialect returns the SQL dialect in use.
func (d *Database) Dialect() Dialect {
	return d.dialect
}

// migrate creates the schema if it doesn't exist.
func (d *Database) migrate() error {
	pk := d.dialect.SerialPrimaryKey()

	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id {{PK}},
			base_seed BIGINT NOT NULL,
			created_at BIGINT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS level_visits (
			id {{PK}},
			session_id BIGINT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			level INTEGER NOT NULL,
			seed BIGINT NOT NULL,
			style TEXT NOT NULL,
			layout TEXT NOT NULL,
			fingerprint TEXT NOT NULL,
			return_x DOUBLE PRECISION NOT NULL DEFAULT 0,
			return_y DOUBLE PRECISION NOT NULL DEFAULT 0,
			entered_at BIGINT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_level_visits_session ON level_visits(session_id, id)`,
		`CREATE INDEX IF NOT EXISTS idx_level_visits_fingerprint ON level_visits(level, seed)`,
	}

	for _, m := range migrations {
		m = strings.ReplaceAll(m, "{{PK}}", pk)
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}

	return nil
}

// DB returns the underlying sql.DB for advanced operations.
func (d *Database) DB() *sql.DB {
	return d.db
}
