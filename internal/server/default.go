package server

import (
	"net/http"
	"slices"

	"github.com/go-faster/errors"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"

	"github.com/fleetdesk/fleetdesk/modules"
	coreservices "github.com/fleetdesk/fleetdesk/modules/core/services"
	"github.com/fleetdesk/fleetdesk/pkg/application"
	"github.com/fleetdesk/fleetdesk/pkg/configuration"
	"github.com/fleetdesk/fleetdesk/pkg/constants"
	"github.com/fleetdesk/fleetdesk/pkg/docstore"
	"github.com/fleetdesk/fleetdesk/pkg/eventbus"
	"github.com/fleetdesk/fleetdesk/pkg/middleware"
	"github.com/fleetdesk/fleetdesk/pkg/server"
	"github.com/fleetdesk/fleetdesk/pkg/ws"
)

type ApplicationOptions struct {
	Configuration *configuration.Configuration
	Pool          *pgxpool.Pool
	// Redis backs the docstore when DOCSTORE_BACKEND=redis. Optional otherwise.
	Redis *redis.Client
}

// NewApplication builds the application with every built-in module loaded.
func NewApplication(opts *ApplicationOptions) (application.Application, error) {
	conf := opts.Configuration
	logger := conf.Logger()

	var store docstore.Store
	switch conf.Docstore.Backend {
	case "redis":
		if opts.Redis == nil {
			return nil, errors.New("docstore: redis backend selected without a redis client")
		}
		store = docstore.NewRedisStore(opts.Redis, conf.Docstore.Prefix)
	default:
		store = docstore.NewMemoryStore()
	}

	app := application.New(&application.ApplicationOptions{
		Pool:     opts.Pool,
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
		Docstore: store,
		Huber: application.NewHub(&application.HuberOptions{
			Logger:      logger,
			CheckOrigin: allowedOrigin(conf),
			HubOptions: ws.HubOptions{
				PingPeriod: conf.Realtime.PingPeriod,
				PongWait:   conf.Realtime.PongTimeout,
			},
		}),
	})
	if err := modules.Load(app, modules.BuiltInModules()...); err != nil {
		return nil, errors.Wrap(err, "load modules")
	}
	return app, nil
}

// allowedOrigin accepts upgrades without an Origin header (non-browser
// clients) and browser upgrades from the configured origins.
func allowedOrigin(conf *configuration.Configuration) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || origin == conf.Origin {
			return true
		}
		return slices.Contains(conf.CORSOrigins, origin)
	}
}

type DefaultOptions struct {
	Logger        *logrus.Logger
	Configuration *configuration.Configuration
	Application   application.Application
	Pool          *pgxpool.Pool
}

func Default(options *DefaultOptions) (*server.HTTPServer, error) {
	app := options.Application
	conf := options.Configuration

	authService, ok := app.Service(coreservices.AuthService{}).(*coreservices.AuthService)
	if !ok {
		return nil, errors.New("auth service is not registered")
	}

	middlewares := []mux.MiddlewareFunc{
		middleware.WithLogger(options.Logger, middleware.DefaultLoggerOptions()),

		middleware.TracedMiddleware("database"),
		middleware.Provide(constants.AppKey, app),
		middleware.Provide(constants.PoolKey, options.Pool),

		middleware.TracedMiddleware("cors"),
		middleware.Cors(conf.CORSOrigins...),
	}

	if conf.RateLimit.Enabled {
		var store limiter.Store
		var err error

		switch conf.RateLimit.Storage {
		case "redis":
			store, err = middleware.NewRedisStore(conf.RateLimit.RedisURL)
			if err != nil {
				options.Logger.WithError(err).Warn("Failed to create Redis store for rate limiting, falling back to memory")
				store = middleware.NewMemoryStore()
			}
		default:
			store = middleware.NewMemoryStore()
		}

		middlewares = append(middlewares,
			middleware.TracedMiddleware("rateLimit"),
			middleware.RateLimit(middleware.RateLimitConfig{
				RequestsPerPeriod: conf.RateLimit.GlobalRPS,
				Store:             store,
			}),
		)
	}

	if conf.Prometheus.Enabled {
		middlewares = append(middlewares, middleware.Metrics())
	}

	middlewares = append(middlewares,
		middleware.TracedMiddleware("authorize"),
		middleware.Authorize(authService, conf.SidCookieKey),
	)

	app.RegisterMiddleware(middlewares...)

	return server.NewHTTPServer(app, nil, nil), nil
}

// Shutdown releases what NewApplication and the caller opened.
func Shutdown(app application.Application) {
	if hub := app.Websocket(); hub != nil {
		hub.Close()
	}
	if pool := app.DB(); pool != nil {
		pool.Close()
	}
}
