package docstore

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type truckFilter struct {
	Statuses []string `json:"statuses"`
	Q        string   `json:"q"`
}

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	key := uuid.NewString()

	var got truckFilter
	require.ErrorIs(t, s.GetField(ctx, "saved_filters", key, "trucks", &got), ErrNotFound)
	_, err := s.Get(ctx, "saved_filters", key)
	require.ErrorIs(t, err, ErrNotFound)

	want := truckFilter{Statuses: []string{"available"}, Q: "volvo"}
	require.NoError(t, s.SetField(ctx, "saved_filters", key, "trucks", want))
	require.NoError(t, s.SetField(ctx, "saved_filters", key, "dispatches", map[string]any{"priority": "high"}))

	require.NoError(t, s.GetField(ctx, "saved_filters", key, "trucks", &got))
	assert.Equal(t, want, got)

	doc, err := s.Get(ctx, "saved_filters", key)
	require.NoError(t, err)
	assert.Len(t, doc, 2)
	assert.JSONEq(t, `{"priority":"high"}`, string(doc["dispatches"]))

	require.NoError(t, s.DeleteField(ctx, "saved_filters", key, "trucks"))
	require.ErrorIs(t, s.GetField(ctx, "saved_filters", key, "trucks", &got), ErrNotFound)

	require.NoError(t, s.Delete(ctx, "saved_filters", key))
	_, err = s.Get(ctx, "saved_filters", key)
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, s.Ping(ctx))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStore_IsolatesCollections(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.SetField(ctx, "a", "k", "f", 1))

	var v int
	require.ErrorIs(t, s.GetField(ctx, "b", "k", "f", &v), ErrNotFound)

	doc, err := s.Get(ctx, "a", "k")
	require.NoError(t, err)
	doc["f"] = []byte("2")
	require.NoError(t, s.GetField(ctx, "a", "k", "f", &v))
	assert.Equal(t, 1, v, "Get returns a copy")
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("FLEETDESK_TEST_REDIS_URL")
	if url == "" {
		t.Skip("FLEETDESK_TEST_REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	exerciseStore(t, NewRedisStore(client, "fleetdesk:test"))
}
