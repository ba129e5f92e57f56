package repo

import (
	"fmt"
	"testing"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestInsert(t *testing.T) {
	assert.Equal(t,
		"INSERT INTO trucks (id, unit_number) VALUES ($1, $2) RETURNING created_at, updated_at",
		Insert("trucks", []string{"id", "unit_number"}, "created_at", "updated_at"),
	)
	assert.Equal(t, "INSERT INTO sessions (token) VALUES ($1)", Insert("sessions", []string{"token"}))
}

func TestUpdate(t *testing.T) {
	assert.Equal(t,
		"UPDATE trucks SET status = $1, notes = $2 WHERE id = $3",
		Update("trucks", []string{"status", "notes"}, "id = $3"),
	)
}

func TestExists(t *testing.T) {
	assert.Equal(t, "SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)", Exists("SELECT 1 FROM users WHERE email = $1"))
}

func TestViolations(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", ConstraintName: "trucks_unit_number_key"}
	wrapped := errors.Wrap(unique, "insert truck")

	assert.True(t, IsUniqueViolation(wrapped, ""))
	assert.True(t, IsUniqueViolation(wrapped, "trucks_unit_number_key"))
	assert.False(t, IsUniqueViolation(wrapped, "trucks_driver_id_key"))
	assert.False(t, IsForeignKeyViolation(wrapped, ""))

	fk := fmt.Errorf("delete: %w", &pgconn.PgError{Code: "23503"})
	assert.True(t, IsForeignKeyViolation(fk, ""))
	assert.False(t, IsUniqueViolation(fmt.Errorf("plain"), ""))
}
