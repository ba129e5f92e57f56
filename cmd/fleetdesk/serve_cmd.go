package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fleetdesk/fleetdesk/internal/server"
	"github.com/fleetdesk/fleetdesk/migrations"
	coreservices "github.com/fleetdesk/fleetdesk/modules/core/services"
	messaginghandlers "github.com/fleetdesk/fleetdesk/modules/messaging/handlers"
	"github.com/fleetdesk/fleetdesk/pkg/application"
	"github.com/fleetdesk/fleetdesk/pkg/composables"
	"github.com/fleetdesk/fleetdesk/pkg/configuration"
	"github.com/fleetdesk/fleetdesk/pkg/health"
	"github.com/fleetdesk/fleetdesk/pkg/logging"
	"github.com/fleetdesk/fleetdesk/pkg/metrics"
	"github.com/fleetdesk/fleetdesk/pkg/middleware"
	"github.com/fleetdesk/fleetdesk/pkg/realtime"
)

type serveOptions struct {
	Migrate bool
	Addr    string
}

func newServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the realtime listener",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.Migrate, "migrate", false, "apply pending migrations before serving")
	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (defaults to PORT from the environment)")
	return cmd
}

func serve(ctx context.Context, opts serveOptions) error {
	conf := configuration.Use()
	defer conf.Unload()
	logger := conf.Logger()

	if conf.OpenTelemetry.Enabled {
		cleanup := logging.SetupTracing(ctx, conf.OpenTelemetry.ServiceName, conf.OpenTelemetry.TempoURL)
		defer cleanup()
		logger.Info("OpenTelemetry tracing enabled, exporting to " + conf.OpenTelemetry.TempoURL)
	}

	pool, err := openPool(ctx, conf)
	if err != nil {
		return err
	}
	if opts.Migrate {
		if err := migrations.Up(ctx, pool); err != nil {
			pool.Close()
			return errors.Wrap(err, "apply migrations")
		}
	}
	rdb, err := openRedis(conf)
	if err != nil {
		pool.Close()
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}

	app, err := server.NewApplication(&server.ApplicationOptions{
		Configuration: conf,
		Pool:          pool,
		Redis:         rdb,
	})
	if err != nil {
		pool.Close()
		return err
	}
	defer server.Shutdown(app)

	checker := health.NewChecker().WithDatabase(stdlib.OpenDBFromPool(pool))
	if rdb != nil {
		checker = checker.WithRedis(rdb)
	}
	app.RegisterControllers(health.NewController(checker))
	if conf.Prometheus.Enabled {
		app.RegisterControllers(metrics.NewPrometheusController(
			conf.Prometheus.Path,
			metrics.WithGuard(middleware.OpsGuard(conf, conf.Prometheus.Path)),
		))
	}

	srv, err := server.Default(&server.DefaultOptions{
		Logger:        logger,
		Configuration: conf,
		Application:   app,
		Pool:          pool,
	})
	if err != nil {
		return err
	}

	if conf.Realtime.Enabled {
		listener, err := newRealtimeListener(app, pool, conf, logger)
		if err != nil {
			return err
		}
		go func() {
			if err := listener.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.WithError(err).Error("realtime listener stopped")
			}
		}()
	}

	sessions := app.Service(coreservices.SessionService{}).(*coreservices.SessionService)
	go sessions.RunCleaner(
		composables.WithPool(ctx, pool),
		conf.SessionCleanupInterval,
		logger.WithField("component", "sessions"),
	)

	addr := opts.Addr
	if addr == "" {
		addr = conf.SocketAddress
	}
	logger.Infof("Listening on: %s (%s)", addr, conf.Origin)
	return srv.Start(ctx, addr)
}

func newRealtimeListener(
	app application.Application,
	pool *pgxpool.Pool,
	conf *configuration.Configuration,
	logger *logrus.Logger,
) (*realtime.Listener, error) {
	handler, ok := app.Service(messaginghandlers.RealtimeHandler{}).(*messaginghandlers.RealtimeHandler)
	if !ok {
		return nil, errors.New("realtime handler is not registered")
	}
	return realtime.NewListener(realtime.Options{
		Channel:    conf.Realtime.Channel,
		Connect:    realtime.PoolConnector(pool),
		Handler:    handler.HandleNotification,
		Logger:     logger,
		MaxBackoff: conf.Realtime.MaxBackoff,
	})
}
