package messaging

import (
	"github.com/fleetdesk/fleetdesk/modules/messaging/permissions"
	"github.com/fleetdesk/fleetdesk/pkg/authz"
	"github.com/fleetdesk/fleetdesk/pkg/types"
)

var MessagesLink = types.NavigationItem{
	Name:        "NavigationLinks.Messages",
	Href:        "/messages",
	AuthzObject: permissions.Messages,
	AuthzAction: authz.ActionList,
}

var NavItems = []types.NavigationItem{MessagesLink}
