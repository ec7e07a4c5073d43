package database

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/lib/pq"
)

func TestNewDialect(t *testing.T) {
	tests := []struct {
		input      DialectType
		wantDriver string
	}{
		{DialectSQLite, "sqlite"},
		{DialectPostgres, "postgres"},
		{"", "sqlite"},
		{"unknown", "sqlite"},
	}

	for _, tt := range tests {
		t.Run(string(tt.input), func(t *testing.T) {
			d := NewDialect(tt.input)
			if d.DriverName() != tt.wantDriver {
				t.Errorf("NewDialect(%q).DriverName() = %q, want %q", tt.input, d.DriverName(), tt.wantDriver)
			}
		})
	}
}

func TestPlaceholders(t *testing.T) {
	sqlite := &SQLiteDialect{}
	pg := &PostgresDialect{}

	for i := 1; i <= 3; i++ {
		if sqlite.Placeholder(i) != "?" {
			t.Errorf("SQLite Placeholder(%d) = %q, want ?", i, sqlite.Placeholder(i))
		}
		if want := fmt.Sprintf("$%d", i); pg.Placeholder(i) != want {
			t.Errorf("Postgres Placeholder(%d) = %q, want %q", i, pg.Placeholder(i), want)
		}
	}
}

func TestSerialPrimaryKey(t *testing.T) {
	if got := (&SQLiteDialect{}).SerialPrimaryKey(); !strings.Contains(got, "AUTOINCREMENT") {
		t.Errorf("SQLite SerialPrimaryKey = %q", got)
	}
	if got := (&PostgresDialect{}).SerialPrimaryKey(); !strings.HasPrefix(got, "BIGSERIAL") {
		t.Errorf("Postgres SerialPrimaryKey = %q", got)
	}
}

func TestSQLiteDialect_InitStatements(t *testing.T) {
	stmts := (&SQLiteDialect{}).InitStatements()
	joined := strings.Join(stmts, "\n")

	for _, want := range []string{"foreign_keys", "journal_mode", "busy_timeout"} {
		if !strings.Contains(joined, want) {
			t.Errorf("InitStatements missing %s", want)
		}
	}
}

func TestIsDuplicateKeyError(t *testing.T) {
	sqlite := &SQLiteDialect{}
	pg := &PostgresDialect{}

	if sqlite.IsDuplicateKeyError(nil) || pg.IsDuplicateKeyError(nil) {
		t.Error("nil should never be a duplicate key error")
	}
	if !sqlite.IsDuplicateKeyError(errors.New("UNIQUE constraint failed: sessions.id")) {
		t.Error("SQLite unique failure not detected")
	}

	wrapped := fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})
	if !pg.IsDuplicateKeyError(wrapped) {
		t.Error("wrapped pq unique_violation not detected")
	}
	if pg.IsDuplicateKeyError(&pq.Error{Code: "23503"}) {
		t.Error("foreign key violation reported as duplicate key")
	}
}

func TestReturningClause(t *testing.T) {
	if got := (&SQLiteDialect{}).ReturningClause("id"); got != "" {
		t.Errorf("SQLite ReturningClause = %q, want empty", got)
	}
	if got := (&PostgresDialect{}).ReturningClause("id"); got != " RETURNING id" {
		t.Errorf("Postgres ReturningClause = %q", got)
	}
}

func TestQueryBuilder_Build(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		input   string
		want    string
	}{
		{"sqlite unchanged", &SQLiteDialect{}, "SELECT * FROM level_visits WHERE session_id = ? AND level = ?", "SELECT * FROM level_visits WHERE session_id = ? AND level = ?"},
		{"postgres numbered", &PostgresDialect{}, "SELECT * FROM level_visits WHERE session_id = ? AND level = ?", "SELECT * FROM level_visits WHERE session_id = $1 AND level = $2"},
		{"postgres empty", &PostgresDialect{}, "", ""},
		{"postgres no placeholders", &PostgresDialect{}, "SELECT 1", "SELECT 1"},
		{"postgres quoted question mark", &PostgresDialect{}, "SELECT '?', ? FROM sessions", "SELECT '?', $1 FROM sessions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewQueryBuilder(tt.dialect).Build(tt.input)
			if got != tt.want {
				t.Errorf("Build(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestQueryBuilder_ManyPlaceholders(t *testing.T) {
	qb := NewQueryBuilder(&PostgresDialect{})
	got := qb.Build("VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")

	if !strings.Contains(got, "$11") || strings.Contains(got, "?") {
		t.Errorf("Build = %q", got)
	}
}

func TestQueryBuilder_BuildWithReturning(t *testing.T) {
	query := "INSERT INTO sessions (base_seed) VALUES (?)"

	if got := NewQueryBuilder(&SQLiteDialect{}).BuildWithReturning(query, "id"); got != query {
		t.Errorf("SQLite BuildWithReturning = %q", got)
	}

	want := "INSERT INTO sessions (base_seed) VALUES ($1) RETURNING id"
	if got := NewQueryBuilder(&PostgresDialect{}).BuildWithReturning(query, "id"); got != want {
		t.Errorf("Postgres BuildWithReturning = %q, want %q", got, want)
	}
}

func TestPostgresConnString(t *testing.T) {
	cfg := DefaultPostgresConfig()
	cfg.Password = "secret"
	s := cfg.ConnString()

	for _, want := range []string{"host=localhost", "port=5432", "dbname=dungeon_journal", "sslmode=disable", "user=dungeon", "password=secret"} {
		if !strings.Contains(s, want) {
			t.Errorf("ConnString %q missing %q", s, want)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/tmp/journal.db")

	if cfg.Driver != "sqlite" {
		t.Errorf("Driver = %q, want sqlite", cfg.Driver)
	}
	if cfg.SQLitePath != "/tmp/journal.db" {
		t.Errorf("SQLitePath = %q", cfg.SQLitePath)
	}
	if cfg.Postgres.Port != 5432 {
		t.Errorf("Postgres.Port = %d, want 5432", cfg.Postgres.Port)
	}
}

func TestDialect_InterfaceCompliance(t *testing.T) {
	var _ Dialect = &SQLiteDialect{}
	var _ Dialect = &PostgresDialect{}
}
