package services

import (
	"context"

	"github.com/fleetdesk/fleetdesk/modules/core/domain/aggregates/user"
	coreservices "github.com/fleetdesk/fleetdesk/modules/core/services"
)

// Dashboard adds the unread message total for every role.
func Dashboard(messages *MessageService) coreservices.DashboardContributor {
	return coreservices.DashboardContributorFunc(func(ctx context.Context, u user.User) (map[string]any, error) {
		total, err := messages.UnreadTotal(ctx, u.ID())
		if err != nil {
			return nil, err
		}
		return map[string]any{"unreadMessages": total}, nil
	})
}
