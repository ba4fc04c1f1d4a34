// Package store provides the JSON-in-SQL record store shared by the
// graph resolvers and the pagination engine. It speaks two dialects,
// SQLite and PostgreSQL, behind a single executor interface.
package store

import (
	"fmt"
	"strconv"
)

// Dialect identifies the SQL backend a statement is rendered for.
type Dialect int

const (
	DialectSQLite Dialect = iota
	DialectPostgres
)

// String returns the config-file name of the dialect.
func (d Dialect) String() string {
	switch d {
	case DialectPostgres:
		return "postgres"
	default:
		return "sqlite"
	}
}

// ParseDialect parses a dialect name from config.
func ParseDialect(s string) (Dialect, error) {
	switch s {
	case "", "sqlite", "sqlite3":
		return DialectSQLite, nil
	case "postgres", "postgresql", "pgx":
		return DialectPostgres, nil
	}
	return DialectSQLite, fmt.Errorf("unknown storage dialect %q", s)
}

// Placeholder renders the n-th statement placeholder for the dialect:
// "?" for SQLite, "$n" for PostgreSQL. n is 1-based and counts across
// the whole enclosing statement, not per clause; the caller owns the
// running index.
func Placeholder(d Dialect, n int) string {
	if d == DialectPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}
