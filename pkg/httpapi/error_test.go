package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdesk/fleetdesk/pkg/serrors"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var env ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Error
}

func TestWriteServiceError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", serrors.ValidationErrors{"year": "must be at least 1980"}, http.StatusUnprocessableEntity, serrors.CodeValidation},
		{"not found", fmt.Errorf("load: %w", serrors.NotFound("TRUCK_NOT_FOUND", "truck not found")), http.StatusNotFound, "TRUCK_NOT_FOUND"},
		{"conflict", serrors.Conflict("TRUCK_UNIT_TAKEN", "taken"), http.StatusConflict, "TRUCK_UNIT_TAKEN"},
		{"forbidden", serrors.Forbidden("AUTHZ_FORBIDDEN", "denied"), http.StatusForbidden, "AUTHZ_FORBIDDEN"},
		{"unauthenticated", serrors.Unauthenticated("AUTH", "login"), http.StatusUnauthorized, "AUTH"},
		{"bad request", serrors.BadRequest(CodeInvalidJSON, "bad"), http.StatusBadRequest, CodeInvalidJSON},
		{"internal", errors.New("pg down"), http.StatusInternalServerError, CodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/trucks", nil)
			req.Header.Set("X-Request-ID", "req-1")

			WriteServiceError(rec, req, tc.err)

			assert.Equal(t, tc.status, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tc.code, body.Code)
			assert.Equal(t, "req-1", body.Meta["request_id"])
		})
	}
}

func TestWriteServiceError_Fields(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteServiceError(rec, httptest.NewRequest(http.MethodPost, "/", nil), serrors.ValidationErrors{"vin": "must be exactly 17 characters"})
	body := decodeError(t, rec)
	assert.Equal(t, "must be exactly 17 characters", body.Fields["vin"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestWriteList_EmptyIsArray(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteList[string](rec, nil, ListMeta{Total: 0, Limit: 25})
	assert.JSONEq(t, `{"data":[],"meta":{"total":0,"offset":0,"limit":25}}`, rec.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","extra":1}`))
	err := DecodeJSON(r, &v)
	assert.Equal(t, serrors.KindBadRequest, serrors.KindOf(err))

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
	require.Error(t, DecodeJSON(r, &v))

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"ok"}`))
	require.NoError(t, DecodeJSON(r, &v))
	assert.Equal(t, "ok", v.Name)
}

func TestReadBody_Limit(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789"))
	_, err := ReadBody(r, 5)
	require.Error(t, err)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("01234"))
	b, err := ReadBody(r, 5)
	require.NoError(t, err)
	assert.Equal(t, "01234", string(b))
}

func TestQueryList(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/dispatches?status=pending&status=assigned,in_transit&status=", nil)
	assert.Equal(t, []string{"pending", "assigned", "in_transit"}, QueryList(r, "status"))
	assert.Nil(t, QueryList(r, "priority"))
}

func TestQueryUUID(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/trucks?driverId=nope", nil)
	_, err := QueryUUID(r, "driverId")
	assert.Equal(t, serrors.KindBadRequest, serrors.KindOf(err))

	r = httptest.NewRequest(http.MethodGet, "/api/trucks", nil)
	id, err := QueryUUID(r, "driverId")
	require.NoError(t, err)
	assert.Nil(t, id)
}

func TestQueryTime(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/dispatches?from=2026-05-01&to=2026-05-02T15:04:05%2B02:00&bad=yesterday", nil)

	from, err := QueryTime(r, "from")
	require.NoError(t, err)
	assert.True(t, from.Equal(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)))

	to, err := QueryTime(r, "to")
	require.NoError(t, err)
	assert.True(t, to.Equal(time.Date(2026, 5, 2, 13, 4, 5, 0, time.UTC)))

	_, err = QueryTime(r, "bad")
	assert.Equal(t, serrors.KindBadRequest, serrors.KindOf(err))

	missing, err := QueryTime(r, "since")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
