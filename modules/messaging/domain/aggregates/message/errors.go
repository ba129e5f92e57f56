package message

import (
	"errors"

	"github.com/fleetdesk/fleetdesk/pkg/serrors"
)

var (
	ErrNotFound          = serrors.NotFound("MESSAGE_NOT_FOUND", "message not found")
	ErrNotRecipient      = serrors.Forbidden("MESSAGE_NOT_RECIPIENT", "only the recipient can mark a message read")
	ErrSelfMessage       = serrors.Invalid("MESSAGE_TO_SELF", "cannot send a message to yourself")
	ErrUnknownRecipient  = serrors.Invalid("MESSAGE_UNKNOWN_RECIPIENT", "recipient does not exist")
	ErrInactiveRecipient = serrors.Invalid("MESSAGE_INACTIVE_RECIPIENT", "recipient is not active")
	ErrUnknownDispatch   = serrors.Invalid("MESSAGE_UNKNOWN_DISPATCH", "referenced dispatch does not exist")

	ErrBadNotification = errors.New("message: notification payload has an unknown kind or is missing ids")
)
