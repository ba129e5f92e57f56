package permissions

import "github.com/fleetdesk/fleetdesk/pkg/authz"

const Module = "messaging"

var Messages = authz.ObjectName(Module, "messages")
