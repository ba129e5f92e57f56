package permissions

import "github.com/fleetdesk/fleetdesk/pkg/authz"

const Module = "contragents"

var Contragents = authz.ObjectName(Module, "contragents")
