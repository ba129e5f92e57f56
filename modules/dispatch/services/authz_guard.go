package services

import (
	"context"

	"github.com/fleetdesk/fleetdesk/modules/core/authzutil"
	"github.com/fleetdesk/fleetdesk/modules/dispatch/permissions"
)

var authorizeDispatchFn = authzutil.Authorize

func authorizeDispatches(ctx context.Context, action string) error {
	return authorizeDispatchFn(ctx, permissions.Dispatches, action)
}
