package db

import (
	"strconv"
	"strings"
)

// ─────────────────────────────────────────────────────────────────────────────
// Dialect: SQL differences between the supported engines
// ─────────────────────────────────────────────────────────────────────────────

// Dialect abstracts the few places where the store's SQL differs between
// engines. Queries are written with "?" placeholders and rebound per dialect
// right before they reach the driver.
type Dialect interface {
	// Name identifies the dialect; it doubles as the embedded migrations
	// directory ("postgres", "mysql", "sqlite3").
	Name() string

	// Placeholder returns the bind parameter for the given 1-based index.
	Placeholder(index int) string

	// UseReturning reports whether INSERT can append "RETURNING id" to
	// retrieve the surrogate key. MySQL relies on LastInsertId instead.
	UseReturning() bool

	// Upsert returns the clause appended to an INSERT so that a row whose
	// conflict column already exists is updated in place.
	Upsert(conflict string, updates []string) string
}

// Postgres is the Dialect for PostgreSQL (lib/pq and pgx).
var Postgres Dialect = postgresDialect{}

// MySQL is the Dialect for MySQL / MariaDB.
var MySQL Dialect = mysqlDialect{}

// SQLite is the Dialect for SQLite 3.35+ (RETURNING support).
var SQLite Dialect = sqliteDialect{}

// DialectFor resolves the dialect for a database/sql driver name.
// Unknown names fall back to Postgres, the production target.
func DialectFor(driverName string) Dialect {
	switch driverName {
	case "mysql":
		return MySQL
	case "sqlite3", "sqlite":
		return SQLite
	default:
		return Postgres
	}
}

type postgresDialect struct{}

func (postgresDialect) Name() string                 { return "postgres" }
func (postgresDialect) Placeholder(index int) string { return "$" + strconv.Itoa(index) }
func (postgresDialect) UseReturning() bool           { return true }
func (postgresDialect) Upsert(conflict string, updates []string) string {
	return onConflict(conflict, updates, "EXCLUDED")
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string             { return "sqlite3" }
func (sqliteDialect) Placeholder(_ int) string { return "?" }
func (sqliteDialect) UseReturning() bool       { return true }
func (sqliteDialect) Upsert(conflict string, updates []string) string {
	return onConflict(conflict, updates, "excluded")
}

type mysqlDialect struct{}

func (mysqlDialect) Name() string             { return "mysql" }
func (mysqlDialect) Placeholder(_ int) string { return "?" }
func (mysqlDialect) UseReturning() bool       { return false }

// Upsert re-seeds LAST_INSERT_ID with the existing key so that LastInsertId
// reports the surrogate id of an updated row as well as of an inserted one.
func (mysqlDialect) Upsert(_ string, updates []string) string {
	sets := make([]string, 0, len(updates)+1)
	sets = append(sets, "id = LAST_INSERT_ID(id)")
	for _, col := range updates {
		sets = append(sets, col+" = VALUES("+col+")")
	}
	return " ON DUPLICATE KEY UPDATE " + strings.Join(sets, ", ")
}

func onConflict(conflict string, updates []string, excluded string) string {
	if len(updates) == 0 {
		return " ON CONFLICT (" + conflict + ") DO NOTHING"
	}
	sets := make([]string, len(updates))
	for i, col := range updates {
		sets[i] = col + " = " + excluded + "." + col
	}
	return " ON CONFLICT (" + conflict + ") DO UPDATE SET " + strings.Join(sets, ", ")
}

// Rebind rewrites "?" placeholders into the dialect's native form.
// Question marks inside single-quoted literals are left alone.
func Rebind(d Dialect, query string) string {
	if d.Placeholder(1) == "?" || strings.IndexByte(query, '?') < 0 {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '?' && !inQuote:
			n++
			b.WriteString(d.Placeholder(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
