package user

import "github.com/fleetdesk/fleetdesk/pkg/serrors"

const MinPasswordLength = 8

var (
	ErrNotFound           = serrors.NotFound("USER_NOT_FOUND", "user not found")
	ErrEmailTaken         = serrors.Conflict("USER_EMAIL_TAKEN", "email already in use")
	ErrInvalidRole        = serrors.Invalid("USER_INVALID_ROLE", "unknown role")
	ErrPasswordTooShort   = serrors.Invalid("USER_PASSWORD_TOO_SHORT", "password must be at least 8 characters")
	ErrSelfDelete         = serrors.Conflict("USER_SELF_DELETE", "you cannot delete your own account")
	ErrInvalidCredentials = serrors.Unauthenticated("AUTH_INVALID_CREDENTIALS", "invalid email or password")
	ErrInactive           = serrors.Forbidden("AUTH_USER_INACTIVE", "account is disabled")
	ErrInUse              = serrors.Conflict("USER_IN_USE", "user is referenced by other records")
)
