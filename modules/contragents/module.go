package contragents

import (
	"github.com/fleetdesk/fleetdesk/modules/contragents/infrastructure/persistence"
	"github.com/fleetdesk/fleetdesk/modules/contragents/presentation/controllers"
	"github.com/fleetdesk/fleetdesk/modules/contragents/seed"
	"github.com/fleetdesk/fleetdesk/modules/contragents/services"
	"github.com/fleetdesk/fleetdesk/pkg/application"
)

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Register(app application.Application) error {
	app.RegisterServices(services.NewContragentService(persistence.NewContragentRepository(), app.EventPublisher()))
	app.RegisterControllers(controllers.NewContragentsController(app))
	app.RegisterNavItems(NavItems...)
	app.Seeder().Register(seed.ContragentSeedFunc(seed.DemoContragents...))
	return nil
}

func (m *Module) Name() string {
	return "contragents"
}
