package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLCheck(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectPing()
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"one"}).AddRow(1))

	resp := NewChecker().WithDatabase(db).Run(context.Background())
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Equal(t, StatusHealthy, resp.Checks["database"].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLCheck_PingFailure(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	resp := NewChecker().WithDatabase(db).Run(context.Background())
	assert.Equal(t, StatusDown, resp.Status)
	assert.Contains(t, resp.Checks["database"].Error, "connection refused")
}

func TestChecker_MergesStatuses(t *testing.T) {
	c := NewChecker().
		Add("fast", func(ctx context.Context) error { return nil }).
		Add("slow", func(ctx context.Context) error {
			time.Sleep(degradedLatency + 20*time.Millisecond)
			return nil
		})
	resp := c.Run(context.Background())
	assert.Equal(t, StatusDegraded, resp.Status)
	assert.Equal(t, StatusHealthy, resp.Checks["fast"].Status)

	c.Add("broken", func(ctx context.Context) error { return errors.New("nope") })
	assert.Equal(t, StatusDown, c.Run(context.Background()).Status)
}

func TestChecker_WithRedisNilIsSkipped(t *testing.T) {
	resp := NewChecker().WithRedis(nil).Run(context.Background())
	assert.Empty(t, resp.Checks)
	assert.Equal(t, StatusHealthy, resp.Status)
}

func TestController(t *testing.T) {
	down := NewChecker().Add("database", func(ctx context.Context) error { return errors.New("down") })
	r := mux.NewRouter()
	NewController(down).Register(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var env struct {
		Data Response `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.Equal(t, StatusDown, env.Data.Status)
	assert.Equal(t, "down", env.Data.Checks["database"].Error)
}
