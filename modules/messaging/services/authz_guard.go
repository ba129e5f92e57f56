package services

import (
	"context"

	"github.com/fleetdesk/fleetdesk/modules/core/authzutil"
	"github.com/fleetdesk/fleetdesk/modules/messaging/permissions"
)

var authorizeMessagesFn = authzutil.Authorize

func authorizeMessages(ctx context.Context, action string) error {
	return authorizeMessagesFn(ctx, permissions.Messages, action)
}
