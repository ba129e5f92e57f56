package core

import (
	"github.com/fleetdesk/fleetdesk/modules/core/permissions"
	"github.com/fleetdesk/fleetdesk/pkg/authz"
	"github.com/fleetdesk/fleetdesk/pkg/types"
)

var DashboardLink = types.NavigationItem{
	Name:        "NavigationLinks.Dashboard",
	Href:        "/",
	AuthzObject: permissions.Dashboard,
	AuthzAction: authz.ActionView,
}

// UsersLink is the user management page. Every role may list users to
// pick message recipients, so visibility follows the create right.
var UsersLink = types.NavigationItem{
	Name:        "NavigationLinks.Users",
	Href:        "/users",
	AuthzObject: permissions.Users,
	AuthzAction: authz.ActionCreate,
}

var AdministrationLink = types.NavigationItem{
	Name: "NavigationLinks.Administration",
	Href: "#",
	Children: []types.NavigationItem{
		UsersLink,
	},
}

var NavItems = []types.NavigationItem{
	DashboardLink,
	AdministrationLink,
}
