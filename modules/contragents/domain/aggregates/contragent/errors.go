package contragent

import "github.com/fleetdesk/fleetdesk/pkg/serrors"

var (
	ErrNotFound = serrors.NotFound("CONTRAGENT_NOT_FOUND", "contragent not found")
	ErrInUse    = serrors.Conflict("CONTRAGENT_IN_USE", "contragent is referenced by dispatches")
)
