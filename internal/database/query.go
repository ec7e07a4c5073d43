package database

import (
	"strings"
)

// QueryBuilder rewrites ? placeholders into the dialect's form.
type QueryBuilder struct {
	dialect Dialect
}

// NewQueryBuilder creates a new QueryBuilder for the given dialect.
func NewQueryBuilder(dialect Dialect) *QueryBuilder {
	return &QueryBuilder{dialect: dialect}
}

// Build converts ? placeholders to dialect-specific placeholders.
//
//	input:    "SELECT * FROM level_visits WHERE session_id = ? AND level = ?"
//	SQLite:   unchanged
//	Postgres: "SELECT * FROM level_visits WHERE session_id = $1 AND level = $2"
func (qb *QueryBuilder) Build(query string) string {
	if qb.dialect.Placeholder(1) == "?" {
		return query
	}

	var result strings.Builder
	result.Grow(len(query) + 8)
	position := 1
	inQuote := false

	for i := 0; i < len(query); i++ {
		ch := query[i]
		switch {
		case ch == '\'':
			inQuote = !inQuote
			result.WriteByte(ch)
		case ch == '?' && !inQuote:
			result.WriteString(qb.dialect.Placeholder(position))
			position++
		default:
			result.WriteByte(ch)
		}
	}

	return result.String()
}

// BuildWithReturning appends a RETURNING clause when the dialect cannot report inserted ids.
//
//	input:    "INSERT INTO sessions (base_seed) VALUES (?)", "id"
//	SQLite:   "INSERT INTO sessions (base_seed) VALUES (?)"
//	Postgres: "INSERT INTO sessions (base_seed) VALUES ($1) RETURNING id"
func (qb *QueryBuilder) BuildWithReturning(query string, column string) string {
	converted := qb.Build(query)
	if !qb.dialect.SupportsLastInsertID() {
		converted += qb.dialect.ReturningClause(column)
	}
	return converted
}
