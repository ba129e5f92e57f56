package main

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/fleetdesk/fleetdesk/internal/server"
	"github.com/fleetdesk/fleetdesk/migrations"
	"github.com/fleetdesk/fleetdesk/pkg/composables"
	"github.com/fleetdesk/fleetdesk/pkg/configuration"
)

type seedOptions struct {
	Migrate bool
}

func newSeedCmd() *cobra.Command {
	var opts seedOptions

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the demo users, trucks, contragents, dispatches and messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withPool(cmd.Context(), func(ctx context.Context, pool *pgxpool.Pool) error {
				if opts.Migrate {
					if err := migrations.Up(ctx, pool); err != nil {
						return errors.Wrap(err, "apply migrations")
					}
				}
				return seed(ctx, pool)
			})
		},
	}
	cmd.Flags().BoolVar(&opts.Migrate, "migrate", false, "apply pending migrations first")
	return cmd
}

// seed runs every registered seed func in one transaction.
func seed(ctx context.Context, pool *pgxpool.Pool) error {
	conf := configuration.Use()
	rdb, err := openRedis(conf)
	if err != nil {
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
		return err
	}
	defer app.Websocket().Close()

	ctx = composables.WithPool(ctx, pool)
	if err := composables.InTx(ctx, func(txCtx context.Context) error {
		return app.Seeder().Seed(txCtx, app)
	}); err != nil {
		return errors.Wrap(err, "seed")
	}
	conf.Logger().Info("demo data seeded")
	return nil
}
