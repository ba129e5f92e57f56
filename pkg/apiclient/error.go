package apiclient

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/fleetdesk/fleetdesk/pkg/httpapi"
)

// Error is a decoded {"error": …} response.
type Error struct {
	Status    int
	Code      string
	Message   string
	Fields    map[string]string
	RequestID string
}

func newError(status int, body *httpapi.ErrorBody) *Error {
	e := &Error{Status: status}
	if body == nil {
		e.Code = "HTTP_ERROR"
		e.Message = http.StatusText(status)
		return e
	}
	e.Code = body.Code
	e.Message = body.Message
	e.Fields = body.Fields
	if body.Meta != nil {
		e.RequestID = body.Meta["request_id"]
	}
	return e
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

// IsStatus reports whether err is an *Error with the given HTTP status.
func IsStatus(err error, status int) bool {
	var e *Error
	return errors.As(err, &e) && e.Status == status
}
