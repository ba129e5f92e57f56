package serrors

import "errors"

// Kind classifies an error for transport mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalid
	KindNotFound
	KindConflict
	KindForbidden
	KindUnauthenticated
	KindBadRequest
)

func newKind(kind Kind, code, message string) *BaseError {
	e := NewError(code, message, "")
	e.Kind = kind
	return e
}

func NotFound(code, message string) *BaseError   { return newKind(KindNotFound, code, message) }
func Conflict(code, message string) *BaseError   { return newKind(KindConflict, code, message) }
func Forbidden(code, message string) *BaseError  { return newKind(KindForbidden, code, message) }
func Invalid(code, message string) *BaseError    { return newKind(KindInvalid, code, message) }
func BadRequest(code, message string) *BaseError { return newKind(KindBadRequest, code, message) }
func Unauthenticated(code, message string) *BaseError {
	return newKind(KindUnauthenticated, code, message)
}

// KindOf walks the chain and returns the kind of the first classified
// error. Validation errors are KindInvalid.
func KindOf(err error) Kind {
	var v ValidationErrors
	if errors.As(err, &v) {
		return KindInvalid
	}
	var base *BaseError
	if errors.As(err, &base) {
		return base.Kind
	}
	return KindInternal
}
