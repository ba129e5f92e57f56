package core

import (
	"github.com/fleetdesk/fleetdesk/modules/core/handlers"
	"github.com/fleetdesk/fleetdesk/modules/core/infrastructure/persistence"
	"github.com/fleetdesk/fleetdesk/modules/core/presentation/controllers"
	"github.com/fleetdesk/fleetdesk/modules/core/seed"
	"github.com/fleetdesk/fleetdesk/modules/core/services"
	"github.com/fleetdesk/fleetdesk/pkg/application"
	"github.com/fleetdesk/fleetdesk/pkg/configuration"
)

type ModuleOptions struct {
	// SeedDemoUsers registers the demo accounts with the seeder.
	SeedDemoUsers bool
}

func NewModule(opts *ModuleOptions) application.Module {
	if opts == nil {
		opts = &ModuleOptions{SeedDemoUsers: true}
	}
	return &Module{
		options: opts,
	}
}

type Module struct {
	options *ModuleOptions
}

func (m *Module) Register(app application.Application) error {
	conf := configuration.Use()
	fsStorage, err := persistence.NewFSStorage(conf.UploadsPath)
	if err != nil {
		return err
	}

	userService := services.NewUserService(persistence.NewUserRepository(), app.EventPublisher())
	sessionService := services.NewSessionService(persistence.NewSessionRepository())
	dashboardService := services.NewDashboardService(app.NavItems)
	dashboardService.Register(services.UsersDashboard(userService))

	app.RegisterServices(
		userService,
		sessionService,
		services.NewAuthService(userService, sessionService, app.EventPublisher(), conf.SessionDuration),
		services.NewUploadService(persistence.NewUploadRepository(), fsStorage, app.EventPublisher(), conf.MaxUploadSize),
		services.NewSavedFilterService(app.Docstore()),
		dashboardService,
	)

	app.RegisterControllers(
		controllers.NewAuthController(app),
		controllers.NewUsersController(app),
		controllers.NewUploadController(app),
		controllers.NewDashboardController(app),
		controllers.NewSavedFilterController(app),
		controllers.NewWebSocketController(app),
	)
	app.RegisterNavItems(NavItems...)

	handlers.RegisterAuditHandler(app.EventPublisher(), app.Logger())

	if m.options.SeedDemoUsers {
		app.Seeder().Register(seed.UserSeedFunc(seed.DemoPassword, seed.DemoUsers...))
	}
	return nil
}

func (m *Module) Name() string {
	return "core"
}
