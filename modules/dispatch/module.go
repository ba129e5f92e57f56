package dispatch

import (
	contragentservices "github.com/fleetdesk/fleetdesk/modules/contragents/services"
	corepersistence "github.com/fleetdesk/fleetdesk/modules/core/infrastructure/persistence"
	coreservices "github.com/fleetdesk/fleetdesk/modules/core/services"
	"github.com/fleetdesk/fleetdesk/modules/dispatch/infrastructure/persistence"
	"github.com/fleetdesk/fleetdesk/modules/dispatch/presentation/controllers"
	"github.com/fleetdesk/fleetdesk/modules/dispatch/seed"
	"github.com/fleetdesk/fleetdesk/modules/dispatch/services"
	fleetservices "github.com/fleetdesk/fleetdesk/modules/fleet/services"
	"github.com/fleetdesk/fleetdesk/pkg/application"
)

func NewModule() application.Module {
	return &Module{}
}

// Module needs the fleet and contragents modules registered first.
type Module struct{}

func (m *Module) Register(app application.Application) error {
	dispatchService := services.NewDispatchService(
		persistence.NewDispatchRepository(),
		app.Service(fleetservices.TruckService{}).(*fleetservices.TruckService),
		corepersistence.NewUserRepository(),
		app.Service(contragentservices.ContragentService{}).(*contragentservices.ContragentService),
		app.EventPublisher(),
	)
	app.RegisterServices(dispatchService)
	app.Service(contragentservices.ContragentService{}).(*contragentservices.ContragentService).OnTypeChange(dispatchService.EnsureContragentUnused)
	app.Service(coreservices.UserService{}).(*coreservices.UserService).OnDriverRetired(dispatchService.EnsureDriverIdle)
	app.Service(coreservices.DashboardService{}).(*coreservices.DashboardService).Register(services.Dashboard(dispatchService))

	app.RegisterControllers(controllers.NewDispatchesController(app))
	app.RegisterNavItems(NavItems...)
	app.Seeder().Register(seed.DispatchSeedFunc(seed.DemoDispatches...))
	return nil
}

func (m *Module) Name() string {
	return "dispatch"
}
