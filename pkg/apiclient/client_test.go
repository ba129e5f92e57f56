package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdesk/fleetdesk/pkg/httpapi"
)

type truck struct {
	ID         string `json:"id"`
	UnitNumber string `json:"unitNumber"`
}

func newServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, WithToken("tok"))
	require.NoError(t, err)
	return c
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	_, err := New("/api")
	require.Error(t, err)
}

func TestResource_List(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/trucks", r.URL.Path)
		assert.Equal(t, []string{"available", "maintenance"}, r.URL.Query()["status"])
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		httpapi.WriteList(w, []truck{{ID: "1", UnitNumber: "T-1"}}, httpapi.ListMeta{Total: 7, Offset: 0, Limit: 1})
	})

	items, meta, err := NewResource[truck](c, "/api/trucks").List(context.Background(), url.Values{"status": {"available", "maintenance"}})
	require.NoError(t, err)
	assert.Equal(t, []truck{{ID: "1", UnitNumber: "T-1"}}, items)
	assert.Equal(t, int64(7), meta.Total)
}

func TestResource_CreateValidationError(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		httpapi.WriteError(w, r, http.StatusUnprocessableEntity, "VALIDATION_FAILED", "validation failed", map[string]string{"unitNumber": "is required"})
	})

	_, err := NewResource[truck](c, "/api/trucks").Create(context.Background(), map[string]string{})
	require.Error(t, err)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Equal(t, "is required", apiErr.Fields["unitNumber"])
	assert.NotEmpty(t, apiErr.RequestID)
	assert.True(t, IsStatus(err, http.StatusUnprocessableEntity))
}

func TestResource_PatchAndDelete(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPatch:
			assert.Equal(t, "/api/trucks/a%2Fb", r.URL.EscapedPath())
			assert.Equal(t, "application/merge-patch+json", r.Header.Get("Content-Type"))
			httpapi.WriteData(w, http.StatusOK, truck{ID: "a/b", UnitNumber: "T-9"})
		case http.MethodDelete:
			httpapi.WriteNoContent(w)
		}
	})
	res := NewResource[truck](c, "/api/trucks")

	got, err := res.Patch(context.Background(), "a/b", map[string]any{"unitNumber": "T-9"})
	require.NoError(t, err)
	assert.Equal(t, "T-9", got.UnitNumber)
	require.NoError(t, res.Delete(context.Background(), "a/b"))
}

func TestClient_CredentialsReloginOn401(t *testing.T) {
	var logins, calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/auth/login" {
			n := logins.Add(1)
			var body loginRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "admin@fleetdesk.test", body.Email)
			httpapi.WriteData(w, http.StatusOK, map[string]string{"token": "tok-" + string(rune('0'+n))})
			return
		}
		calls.Add(1)
		if r.Header.Get("Authorization") != "Bearer tok-2" {
			httpapi.WriteError(w, r, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required", nil)
			return
		}
		httpapi.WriteData(w, http.StatusOK, truck{ID: "1"})
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, WithCredentials("admin@fleetdesk.test", "secret123"))
	require.NoError(t, err)

	got, err := NewResource[truck](c, "/api/trucks").Get(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "1", got.ID)
	assert.Equal(t, int32(2), logins.Load())
	assert.Equal(t, int32(2), calls.Load())
}

func TestTokenRefresher_DoesNotRetryRejectedCredentials(t *testing.T) {
	var logins atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logins.Add(1)
		httpapi.WriteError(w, r, http.StatusUnauthorized, "AUTH_INVALID_CREDENTIALS", "invalid email or password", nil)
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL)
	require.NoError(t, err)
	r := &tokenRefresher{client: c, email: "x@y.z", password: "bad", delay: time.Millisecond}

	_, err = r.RefreshToken(context.Background())
	require.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.Equal(t, int32(1), logins.Load())
}

func TestTokenRefresher_RetriesServerErrors(t *testing.T) {
	var logins atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if logins.Add(1) < 3 {
			httpapi.WriteError(w, r, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
			return
		}
		httpapi.WriteData(w, http.StatusOK, map[string]string{"token": "fresh"})
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL)
	require.NoError(t, err)
	r := &tokenRefresher{client: c, email: "x@y.z", password: "pw", delay: time.Millisecond}

	tok, err := r.RefreshToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", tok)
	assert.Equal(t, "fresh", r.CurrentToken())
}
