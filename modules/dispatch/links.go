package dispatch

import (
	"github.com/fleetdesk/fleetdesk/modules/dispatch/permissions"
	"github.com/fleetdesk/fleetdesk/pkg/authz"
	"github.com/fleetdesk/fleetdesk/pkg/types"
)

var DispatchesLink = types.NavigationItem{
	Name:        "NavigationLinks.Dispatches",
	Href:        "/dispatches",
	AuthzObject: permissions.Dispatches,
	AuthzAction: authz.ActionList,
}

var NavItems = []types.NavigationItem{DispatchesLink}
