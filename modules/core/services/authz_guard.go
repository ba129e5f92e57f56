package services

import (
	"context"

	"github.com/fleetdesk/fleetdesk/modules/core/authzutil"
	"github.com/fleetdesk/fleetdesk/modules/core/permissions"
)

var (
	usersAuthzObject     = permissions.Users
	uploadsAuthzObject   = permissions.Uploads
	dashboardAuthzObject = permissions.Dashboard
	filtersAuthzObject   = permissions.Filters
)

var authorizeCoreFn = authzutil.Authorize

func authorizeCore(ctx context.Context, object, action string) error {
	return authorizeCoreFn(ctx, object, action)
}
