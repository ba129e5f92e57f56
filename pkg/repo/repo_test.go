package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinWhere(t *testing.T) {
	assert.Equal(t, "", JoinWhere())
	assert.Equal(t, "", JoinWhere("", "  "))
	assert.Equal(t, "WHERE a = 1 AND b = 2", JoinWhere("a = 1", "", "b = 2"))
}

func TestFormatLimitOffset(t *testing.T) {
	assert.Equal(t, "", FormatLimitOffset(0, 0))
	assert.Equal(t, "LIMIT 10", FormatLimitOffset(10, 0))
	assert.Equal(t, "OFFSET 5", FormatLimitOffset(0, 5))
	assert.Equal(t, "LIMIT 10 OFFSET 20", FormatLimitOffset(10, 20))
}

func TestOrderBy(t *testing.T) {
	assert.Equal(t, "", OrderBy(Asc))
	assert.Equal(t, "ORDER BY created_at DESC", OrderBy(Desc, "created_at"))
	assert.Equal(t, "ORDER BY a, b ASC", OrderBy("sideways", "a", "b"))
}

func TestWhere(t *testing.T) {
	w := NewWhere()
	w.Eq("driver_id", "d1")
	Any(w, "status", []string{"pending", "assigned"})
	Any(w, "priority", []string(nil))
	w.ILike("chicago", "origin", "destination")

	assert.Equal(t,
		"WHERE driver_id = $1 AND status = ANY($2) AND (origin ILIKE $3 OR destination ILIKE $3)",
		w.String(),
	)
	assert.Equal(t, []any{"d1", []string{"pending", "assigned"}, "%chicago%"}, w.Args())
}

func TestWhere_ContinuesExistingArgs(t *testing.T) {
	w := NewWhere("user-1")
	w.Gte("created_at", "2024-01-01").Lt("created_at", "2024-02-01")
	assert.Equal(t, "WHERE created_at >= $2 AND created_at < $3", w.String())
	assert.Len(t, w.Args(), 3)
	assert.Equal(t, "$4", w.Placeholder(10))
}

type colour string

func TestStrings(t *testing.T) {
	assert.Equal(t, []string{"red", "blue"}, Strings([]colour{"red", "blue"}))
	assert.Empty(t, Strings[colour](nil))
}
