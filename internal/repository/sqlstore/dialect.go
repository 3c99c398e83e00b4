package sqlstore

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	dialectSQLite   = "sqlite"
	dialectPostgres = "pgx"
)

// dialect holds what differs between the two backends.
type dialect struct {
	name     string
	driver   string // database/sql driver name
	numbered bool   // $1, $2, ... placeholders
	contains string // case-sensitive "name contains ?" predicate
	schema   []string
}

var dialects = map[string]*dialect{
	dialectSQLite: {
		name:     dialectSQLite,
		driver:   "sqlite",
		contains: "instr(name, ?) > 0",
		schema:   sqliteSchema,
	},
	dialectPostgres: {
		name:     dialectPostgres,
		driver:   "pgx",
		numbered: true,
		contains: "strpos(name, ?) > 0",
		schema:   postgresSchema,
	},
}

func dialectFor(driver string) (*dialect, error) {
	if driver == "" {
		driver = dialectSQLite
	}
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}
	return d, nil
}

// rebind rewrites ? placeholders to $n for PostgreSQL. Queries in this
// package never carry a literal '?'.
func (d *dialect) rebind(query string) string {
	if !d.numbered || !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// pgUniqueViolation is SQLSTATE unique_violation.
const pgUniqueViolation = "23505"

// uniqueConstraintFields maps named UNIQUE constraints to the column they
// guard. PostgreSQL reports the constraint name, SQLite the column.
var uniqueConstraintFields = map[string]string{
	"accounts_name_key":      "name",
	"accounts_email_key":     "email",
	"avatars_account_id_key": "account_id",
}

// uniqueViolation reports whether err is a UNIQUE constraint failure and,
// if so, which column caused it.
func uniqueViolation(err error) (field string, ok bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgUniqueViolation {
			return "", false
		}
		return uniqueConstraintFields[pgErr.ConstraintName], true
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		if liteErr.Code()&0xff != sqlite3.SQLITE_CONSTRAINT {
			return "", false
		}
		// "... UNIQUE constraint failed: accounts.name (2067)"
		_, rest, found := strings.Cut(liteErr.Error(), "UNIQUE constraint failed: ")
		if !found {
			return "", false
		}
		column, _, _ := strings.Cut(rest, " ")
		column = strings.TrimRight(column, ",)")
		if _, col, dotted := strings.Cut(column, "."); dotted {
			column = col
		}
		return column, true
	}

	return "", false
}
