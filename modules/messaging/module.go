package messaging

import (
	corepersistence "github.com/fleetdesk/fleetdesk/modules/core/infrastructure/persistence"
	coreservices "github.com/fleetdesk/fleetdesk/modules/core/services"
	"github.com/fleetdesk/fleetdesk/modules/messaging/handlers"
	"github.com/fleetdesk/fleetdesk/modules/messaging/infrastructure/persistence"
	"github.com/fleetdesk/fleetdesk/modules/messaging/presentation/controllers"
	"github.com/fleetdesk/fleetdesk/modules/messaging/seed"
	"github.com/fleetdesk/fleetdesk/modules/messaging/services"
	"github.com/fleetdesk/fleetdesk/pkg/application"
	"github.com/fleetdesk/fleetdesk/pkg/configuration"
)

func NewModule() application.Module {
	return &Module{}
}

// Module registers the message service and its realtime handler. The
// serve command feeds the handler from a realtime.Listener on the
// configured channel.
type Module struct{}

func (m *Module) Register(app application.Application) error {
	conf := configuration.Use()
	messageService := services.NewMessageService(
		persistence.NewMessageRepository(),
		corepersistence.NewUserRepository(),
		persistence.NewNotifier(conf.Realtime.Channel),
		app.EventPublisher(),
	)
	realtimeOpts := handlers.RealtimeOptions{
		Messages: messageService,
		Pusher:   app.Websocket(),
		Logger:   app.Logger(),
	}
	if pool := app.DB(); pool != nil {
		realtimeOpts.Pool = pool
	}
	realtimeHandler := handlers.NewRealtimeHandler(realtimeOpts)
	handlers.RegisterMetricsHandler(app.EventPublisher())

	app.RegisterServices(messageService, realtimeHandler)
	app.Service(coreservices.DashboardService{}).(*coreservices.DashboardService).Register(services.Dashboard(messageService))

	app.RegisterControllers(controllers.NewMessagesController(app))
	app.RegisterNavItems(NavItems...)
	app.Seeder().Register(seed.MessageSeedFunc(seed.DemoMessages...))
	return nil
}

func (m *Module) Name() string {
	return "messaging"
}
