package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/fleetdesk/fleetdesk/pkg/serrors"
)

const (
	CodeInvalidID   = "INVALID_ID"
	CodeInvalidTime = "INVALID_TIME"
)

// PathUUID parses the named route variable as a uuid.
func PathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(mux.Vars(r)[name])
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, serrors.BadRequest(CodeInvalidID, "invalid "+name+": "+raw)
	}
	return id, nil
}

// QueryUUID parses an optional uuid query parameter. A missing value
// yields nil.
func QueryUUID(r *http.Request, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, serrors.BadRequest(CodeInvalidID, "invalid "+name+": "+raw)
	}
	return &id, nil
}

// QueryList collects a multi value parameter. Both repeated keys
// (status=a&status=b) and comma separated values are accepted; blanks are
// dropped.
func QueryList(r *http.Request, name string) []string {
	var out []string
	for _, v := range r.URL.Query()[name] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// QueryTime parses an optional RFC 3339 timestamp or YYYY-MM-DD date
// (midnight UTC). A missing value yields nil.
func QueryTime(r *http.Request, name string) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, serrors.BadRequest(CodeInvalidTime, "invalid "+name+": "+raw)
}
