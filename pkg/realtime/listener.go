// Package realtime turns Postgres NOTIFY payloads into in-process callbacks.
// One Listener holds a dedicated connection, re-LISTENs after every
// reconnect and backs off exponentially while the database is unreachable.
package realtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

const (
	defaultMinBackoff = 500 * time.Millisecond
	defaultMaxBackoff = 30 * time.Second
)

// Conn is the subset of *pgx.Conn the listener needs.
type Conn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
	Close(ctx context.Context) error
}

type Connector func(ctx context.Context) (Conn, error)

// PoolConnector takes a connection out of the pool for good so the LISTEN
// session never leaks back to other users.
func PoolConnector(pool *pgxpool.Pool) Connector {
	return func(ctx context.Context) (Conn, error) {
		c, err := pool.Acquire(ctx)
		if err != nil {
			return nil, err
		}
		return c.Hijack(), nil
	}
}

// DSNConnector opens a fresh connection for every attempt.
func DSNConnector(dsn string) Connector {
	return func(ctx context.Context) (Conn, error) {
		return pgx.Connect(ctx, dsn)
	}
}

type Handler func(ctx context.Context, payload string)

type Options struct {
	Channel    string
	Connect    Connector
	Handler    Handler
	Logger     *logrus.Logger
	MinBackoff time.Duration
	MaxBackoff time.Duration
}

type Listener struct {
	opts   Options
	logger *logrus.Entry
	sleep  func(ctx context.Context, d time.Duration) bool
}

func NewListener(opts Options) (*Listener, error) {
	if opts.Channel == "" {
		return nil, errors.New("realtime: channel is required")
	}
	if opts.Connect == nil || opts.Handler == nil {
		return nil, errors.New("realtime: connector and handler are required")
	}
	if opts.MinBackoff <= 0 {
		opts.MinBackoff = defaultMinBackoff
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = defaultMaxBackoff
	}
	if opts.MaxBackoff < opts.MinBackoff {
		opts.MaxBackoff = opts.MinBackoff
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Listener{
		opts:   opts,
		logger: logger.WithFields(logrus.Fields{"component": "realtime", "channel": opts.Channel}),
		sleep:  sleepCtx,
	}, nil
}

// Run blocks until ctx is cancelled.
func (l *Listener) Run(ctx context.Context) error {
	backoff := l.opts.MinBackoff
	for {
		err := l.session(ctx, func() { backoff = l.opts.MinBackoff })
		if ctx.Err() != nil {
			return nil
		}
		reconnects.Inc()
		l.logger.WithError(err).WithField("backoff", backoff).Warn("listener connection lost, reconnecting")
		if !l.sleep(ctx, backoff) {
			return nil
		}
		backoff = NextBackoff(backoff, l.opts.MaxBackoff)
	}
}

// session connects, listens and dispatches until the connection fails.
// onListening runs once LISTEN succeeded.
func (l *Listener) session(ctx context.Context, onListening func()) error {
	conn, err := l.opts.Connect(ctx)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = conn.Close(closeCtx)
	}()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.opts.Channel}.Sanitize()); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	onListening()
	l.logger.Info("listening for notifications")

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait: %w", err)
		}
		if n.Channel != l.opts.Channel {
			continue
		}
		notifications.Inc()
		l.dispatch(ctx, n.Payload)
	}
}

func (l *Listener) dispatch(ctx context.Context, payload string) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.WithField("panic", r).Error("notification handler panicked")
		}
	}()
	l.opts.Handler(ctx, payload)
}

// NextBackoff doubles d, capped at max.
func NextBackoff(d, max time.Duration) time.Duration {
	d *= 2
	if d > max {
		return max
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
