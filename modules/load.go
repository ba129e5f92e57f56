package modules

import (
	"github.com/fleetdesk/fleetdesk/modules/contragents"
	"github.com/fleetdesk/fleetdesk/modules/core"
	"github.com/fleetdesk/fleetdesk/modules/dispatch"
	"github.com/fleetdesk/fleetdesk/modules/fleet"
	"github.com/fleetdesk/fleetdesk/modules/messaging"
	"github.com/fleetdesk/fleetdesk/pkg/application"
)

// BuiltInModules in registration order: later modules look up services
// registered by earlier ones.
func BuiltInModules() []application.Module {
	return []application.Module{
		core.NewModule(nil),
		fleet.NewModule(),
		contragents.NewModule(),
		dispatch.NewModule(),
		messaging.NewModule(),
	}
}

func Load(app application.Application, externalModules ...application.Module) error {
	for _, module := range externalModules {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}
