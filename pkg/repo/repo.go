// Package repo holds the small SQL-building helpers shared by the pgx repositories.
package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Tx is satisfied by *pgxpool.Pool, *pgxpool.Conn and pgx.Tx.
type Tx interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SortDirection is ASC or DESC.
type SortDirection string

const (
	Asc  SortDirection = "ASC"
	Desc SortDirection = "DESC"
)

// Join joins non-empty expressions with sep.
func Join(sep string, expressions ...string) string {
	parts := make([]string, 0, len(expressions))
	for _, e := range expressions {
		if strings.TrimSpace(e) != "" {
			parts = append(parts, e)
		}
	}
	return strings.Join(parts, sep)
}

// JoinWhere renders a WHERE clause, or an empty string when there are no conditions.
func JoinWhere(conditions ...string) string {
	joined := Join(" AND ", conditions...)
	if joined == "" {
		return ""
	}
	return "WHERE " + joined
}

// FormatLimitOffset renders LIMIT/OFFSET; non-positive values are omitted.
func FormatLimitOffset(limit, offset int) string {
	var b strings.Builder
	if limit > 0 {
		fmt.Fprintf(&b, "LIMIT %d", limit)
	}
	if offset > 0 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "OFFSET %d", offset)
	}
	return b.String()
}

// OrderBy renders ORDER BY for the given columns.
func OrderBy(direction SortDirection, columns ...string) string {
	if len(columns) == 0 {
		return ""
	}
	if direction != Desc {
		direction = Asc
	}
	return fmt.Sprintf("ORDER BY %s %s", strings.Join(columns, ", "), direction)
}

// Where accumulates positional conditions for a query.
type Where struct {
	conditions []string
	args       []any
}

// NewWhere starts a condition list. args are values already bound to the
// leading placeholders of the query.
func NewWhere(args ...any) *Where {
	return &Where{args: append([]any(nil), args...)}
}

func (w *Where) next(v any) string {
	w.args = append(w.args, v)
	return fmt.Sprintf("$%d", len(w.args))
}

// Eq adds column = value.
func (w *Where) Eq(column string, v any) *Where {
	w.conditions = append(w.conditions, fmt.Sprintf("%s = %s", column, w.next(v)))
	return w
}

// Any adds column = ANY(values) when values is not empty.
func Any[T any](w *Where, column string, values []T) *Where {
	if len(values) == 0 {
		return w
	}
	w.conditions = append(w.conditions, fmt.Sprintf("%s = ANY(%s)", column, w.next(values)))
	return w
}

// Strings converts named string values, such as enum types, for ANY filters.
func Strings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

// Gte adds column >= value.
func (w *Where) Gte(column string, v any) *Where {
	w.conditions = append(w.conditions, fmt.Sprintf("%s >= %s", column, w.next(v)))
	return w
}

// Lt adds column < value.
func (w *Where) Lt(column string, v any) *Where {
	w.conditions = append(w.conditions, fmt.Sprintf("%s < %s", column, w.next(v)))
	return w
}

// ILike adds an OR of case-insensitive substring matches over columns.
func (w *Where) ILike(q string, columns ...string) *Where {
	q = strings.TrimSpace(q)
	if q == "" || len(columns) == 0 {
		return w
	}
	ph := w.next("%" + q + "%")
	parts := make([]string, len(columns))
	for i, c := range columns {
		parts[i] = fmt.Sprintf("%s ILIKE %s", c, ph)
	}
	w.conditions = append(w.conditions, "("+strings.Join(parts, " OR ")+")")
	return w
}

// Raw adds a literal condition.
func (w *Where) Raw(condition string) *Where {
	w.conditions = append(w.conditions, condition)
	return w
}

func (w *Where) String() string { return JoinWhere(w.conditions...) }
func (w *Where) Args() []any    { return w.args }

// Placeholder reserves the next positional parameter for v.
func (w *Where) Placeholder(v any) string { return w.next(v) }
