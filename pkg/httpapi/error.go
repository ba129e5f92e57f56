package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk/pkg/composables"
	"github.com/fleetdesk/fleetdesk/pkg/serrors"
)

const (
	CodeInvalidJSON = "INVALID_JSON"
	CodeInternal    = "INTERNAL"
	CodeNotFound    = "NOT_FOUND"
)

// ErrorBody is the payload under "error".
type ErrorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Meta    map[string]string `json:"meta,omitempty"`
}

// ErrorEnvelope standardizes JSON error responses for API namespaces.
type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}

type DataEnvelope struct {
	Data any `json:"data"`
}

type ListMeta struct {
	Total  int64 `json:"total"`
	Offset int   `json:"offset"`
	Limit  int   `json:"limit"`
}

type ListEnvelope struct {
	Data any      `json:"data"`
	Meta ListMeta `json:"meta"`
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	if w == nil {
		return nil
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(payload)
}

func WriteData(w http.ResponseWriter, status int, data any) {
	_ = WriteJSON(w, status, DataEnvelope{Data: data})
}

// WriteList writes a window of items; a nil slice is rendered as [].
func WriteList[T any](w http.ResponseWriter, items []T, meta ListMeta) {
	if items == nil {
		items = []T{}
	}
	_ = WriteJSON(w, http.StatusOK, ListEnvelope{Data: items, Meta: meta})
}

func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// RequestID returns the id assigned by the logging middleware, or the
// inbound header, or a fresh uuid echoed back on the response.
func RequestID(w http.ResponseWriter, r *http.Request, header string) string {
	if r == nil {
		return ""
	}
	if id := composables.UseRequestID(r.Context()); id != "" {
		return id
	}
	if header == "" {
		header = "X-Request-ID"
	}
	if id := strings.TrimSpace(r.Header.Get(header)); id != "" {
		return id
	}
	id := uuid.NewString()
	w.Header().Set(header, id)
	return id
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string, fields map[string]string) {
	_ = WriteJSON(w, status, ErrorEnvelope{Error: ErrorBody{
		Code:    code,
		Message: message,
		Fields:  fields,
		Meta:    map[string]string{"request_id": RequestID(w, r, "")},
	}})
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind serrors.Kind) int {
	switch kind {
	case serrors.KindInvalid:
		return http.StatusUnprocessableEntity
	case serrors.KindNotFound:
		return http.StatusNotFound
	case serrors.KindConflict:
		return http.StatusConflict
	case serrors.KindForbidden:
		return http.StatusForbidden
	case serrors.KindUnauthenticated:
		return http.StatusUnauthorized
	case serrors.KindBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// WriteServiceError renders err with the status of its kind. Unclassified
// errors are logged and hidden behind a generic message.
func WriteServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs serrors.ValidationErrors
	if errors.As(err, &verrs) {
		WriteError(w, r, http.StatusUnprocessableEntity, serrors.CodeValidation, "validation failed", verrs)
		return
	}
	var base *serrors.BaseError
	if errors.As(err, &base) && base.Kind != serrors.KindInternal {
		WriteError(w, r, StatusFor(base.Kind), base.Code, base.Message, nil)
		return
	}
	composables.UseLogger(r.Context()).WithError(err).Error("request failed")
	WriteError(w, r, http.StatusInternalServerError, CodeInternal, "internal error", nil)
}

// DecodeJSON reads a JSON body into v, rejecting unknown fields.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return serrors.BadRequest(CodeInvalidJSON, "request body is empty")
		}
		return serrors.BadRequest(CodeInvalidJSON, "invalid json: "+err.Error())
	}
	return nil
}

// ReadBody reads at most limit bytes of the body.
func ReadBody(r *http.Request, limit int64) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		return nil, serrors.BadRequest(CodeInvalidJSON, "failed to read body")
	}
	if int64(len(b)) > limit {
		return nil, serrors.BadRequest("BODY_TOO_LARGE", "request body too large")
	}
	return b, nil
}
