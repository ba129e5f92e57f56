package contragents

import (
	"github.com/fleetdesk/fleetdesk/modules/contragents/permissions"
	"github.com/fleetdesk/fleetdesk/pkg/authz"
	"github.com/fleetdesk/fleetdesk/pkg/types"
)

var ContragentsLink = types.NavigationItem{
	Name:        "NavigationLinks.Contragents",
	Href:        "/contragents",
	AuthzObject: permissions.Contragents,
	AuthzAction: authz.ActionList,
}

var NavItems = []types.NavigationItem{ContragentsLink}
