package services

import (
	"context"

	"github.com/fleetdesk/fleetdesk/modules/core/authzutil"
	"github.com/fleetdesk/fleetdesk/modules/fleet/permissions"
)

var authorizeFleetFn = authzutil.Authorize

func authorizeTrucks(ctx context.Context, action string) error {
	return authorizeFleetFn(ctx, permissions.Trucks, action)
}
