package repo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Insert renders INSERT INTO table (fields) VALUES ($1..$n) [RETURNING ...].
func Insert(table string, fields []string, returning ...string) string {
	ph := make([]string, len(fields))
	for i := range fields {
		ph[i] = fmt.Sprintf("$%d", i+1)
	}
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(fields, ", "), strings.Join(ph, ", "))
	if len(returning) > 0 {
		q += " RETURNING " + strings.Join(returning, ", ")
	}
	return q
}

// Update renders UPDATE table SET f1 = $1, ... followed by the where
// conditions, which continue the placeholder numbering after the fields.
func Update(table string, fields []string, where ...string) string {
	sets := make([]string, len(fields))
	for i, f := range fields {
		sets[i] = fmt.Sprintf("%s = $%d", f, i+1)
	}
	return Join(" ", fmt.Sprintf("UPDATE %s SET %s", table, strings.Join(sets, ", ")), JoinWhere(where...))
}

// Exists wraps a query in SELECT EXISTS(...).
func Exists(query string) string {
	return fmt.Sprintf("SELECT EXISTS (%s)", query)
}

const (
	sqlStateUniqueViolation     = "23505"
	sqlStateForeignKeyViolation = "23503"
	sqlStateCheckViolation      = "23514"
)

func pgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// IsUniqueViolation reports a unique constraint failure. When constraint is
// not empty the constraint name must match too.
func IsUniqueViolation(err error, constraint string) bool {
	return isViolation(err, sqlStateUniqueViolation, constraint)
}

// IsForeignKeyViolation reports a foreign key failure, optionally for one
// constraint.
func IsForeignKeyViolation(err error, constraint string) bool {
	return isViolation(err, sqlStateForeignKeyViolation, constraint)
}

func IsCheckViolation(err error, constraint string) bool {
	return isViolation(err, sqlStateCheckViolation, constraint)
}

func isViolation(err error, code, constraint string) bool {
	pgErr, ok := pgError(err)
	if !ok || pgErr.Code != code {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
