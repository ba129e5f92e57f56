package permissions

import "github.com/fleetdesk/fleetdesk/pkg/authz"

const Module = "fleet"

var Trucks = authz.ObjectName(Module, "trucks")
