package authz

import (
	"fmt"

	"github.com/fleetdesk/fleetdesk/pkg/serrors"
)

// ErrForbidden is the sentinel matched by errors.Is for every denial.
var ErrForbidden = serrors.Forbidden("AUTHZ_FORBIDDEN", "permission denied")

func forbiddenError(req Request) *serrors.BaseError {
	return ErrForbidden.WithTemplateData(map[string]string{
		"object":  req.Object,
		"action":  req.Action,
		"subject": req.Subject,
	})
}

func configError(msg string, args ...any) error {
	return fmt.Errorf("authz: "+msg, args...)
}
