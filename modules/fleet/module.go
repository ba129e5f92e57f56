package fleet

import (
	corepersistence "github.com/fleetdesk/fleetdesk/modules/core/infrastructure/persistence"
	coreservices "github.com/fleetdesk/fleetdesk/modules/core/services"
	"github.com/fleetdesk/fleetdesk/modules/fleet/infrastructure/persistence"
	"github.com/fleetdesk/fleetdesk/modules/fleet/presentation/controllers"
	"github.com/fleetdesk/fleetdesk/modules/fleet/seed"
	"github.com/fleetdesk/fleetdesk/modules/fleet/services"
	"github.com/fleetdesk/fleetdesk/pkg/application"
)

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Register(app application.Application) error {
	truckService := services.NewTruckService(
		persistence.NewTruckRepository(),
		corepersistence.NewUserRepository(),
		app.Service(coreservices.UploadService{}).(*coreservices.UploadService),
		app.EventPublisher(),
	)
	app.RegisterServices(truckService)
	app.Service(coreservices.UserService{}).(*coreservices.UserService).OnDriverRetired(truckService.ReleaseDriver)
	app.Service(coreservices.DashboardService{}).(*coreservices.DashboardService).Register(services.Dashboard(truckService))

	app.RegisterControllers(controllers.NewTrucksController(app))
	app.RegisterNavItems(NavItems...)
	app.Seeder().Register(seed.TruckSeedFunc(seed.DemoTrucks...))
	return nil
}

func (m *Module) Name() string {
	return "fleet"
}
