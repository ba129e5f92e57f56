// Package permissions names the authz objects owned by the core module.
package permissions

import "github.com/fleetdesk/fleetdesk/pkg/authz"

const Module = "core"

var (
	Users     = authz.ObjectName(Module, "users")
	Uploads   = authz.ObjectName(Module, "uploads")
	Dashboard = authz.ObjectName(Module, "dashboard")
	Filters   = authz.ObjectName(Module, "filters")
)
