package composables

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePagination(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/trucks?offset=40&limit=500", nil)
	p := ParsePagination(r, 25, 100)
	assert.Equal(t, PaginationParams{Offset: 40, Limit: 100}, p)

	r = httptest.NewRequest("GET", "/api/trucks?offset=-3&limit=abc", nil)
	p = ParsePagination(r, 25, 100)
	assert.Equal(t, PaginationParams{Offset: 0, Limit: 25}, p)
}

func TestUseQuery(t *testing.T) {
	type filter struct {
		Q        string   `query:"q"`
		Statuses []string `query:"status"`
		Active   *bool    `query:"active"`
	}
	r := httptest.NewRequest("GET", "/api/trucks?q=volvo&status=available&status=maintenance&active=true", nil)
	f, err := UseQuery(&filter{}, r)
	require.NoError(t, err)
	assert.Equal(t, "volvo", f.Q)
	assert.Equal(t, []string{"available", "maintenance"}, f.Statuses)
	require.NotNil(t, f.Active)
	assert.True(t, *f.Active)
}

func TestUseLogger_FallsBack(t *testing.T) {
	assert.NotNil(t, UseLogger(context.Background()))
}

func TestUseTx_NoPool(t *testing.T) {
	_, err := UseTx(context.Background())
	require.ErrorIs(t, err, ErrNoPool)
	err = InTx(context.Background(), func(context.Context) error { return nil })
	require.ErrorIs(t, err, ErrNoPool)
}
