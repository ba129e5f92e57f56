package main

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/fleetdesk/fleetdesk/pkg/configuration"
)

const connectTimeout = 5 * time.Second

func openPool(ctx context.Context, conf *configuration.Configuration) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		return nil, errors.Wrap(err, "connect to database")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "ping database")
	}
	return pool, nil
}

// openRedis returns nil when no REDIS_URL is configured.
func openRedis(conf *configuration.Configuration) (*redis.Client, error) {
	if conf.RedisURL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(conf.RedisURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse REDIS_URL")
	}
	return redis.NewClient(opts), nil
}
