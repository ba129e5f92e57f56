package fleet

import (
	"github.com/fleetdesk/fleetdesk/modules/fleet/permissions"
	"github.com/fleetdesk/fleetdesk/pkg/authz"
	"github.com/fleetdesk/fleetdesk/pkg/types"
)

var TrucksLink = types.NavigationItem{
	Name:        "NavigationLinks.Trucks",
	Href:        "/trucks",
	AuthzObject: permissions.Trucks,
	AuthzAction: authz.ActionList,
}

var NavItems = []types.NavigationItem{TrucksLink}
