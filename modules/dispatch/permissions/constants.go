package permissions

import "github.com/fleetdesk/fleetdesk/pkg/authz"

const Module = "dispatch"

var Dispatches = authz.ObjectName(Module, "dispatches")
