package realtime

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeConn struct {
	notes  chan *pgconn.Notification
	fail   chan error
	mu     sync.Mutex
	execs  []string
	closed bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{notes: make(chan *pgconn.Notification, 8), fail: make(chan error, 1)}
}

func (c *fakeConn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	c.mu.Lock()
	c.execs = append(c.execs, sql)
	c.mu.Unlock()
	return pgconn.NewCommandTag("LISTEN"), nil
}

func (c *fakeConn) WaitForNotification(ctx context.Context) (*pgconn.Notification, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case err := <-c.fail:
		return nil, err
	case n := <-c.notes:
		return n, nil
	}
}

func (c *fakeConn) Close(ctx context.Context) error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}

func silent() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestNewListener_Validates(t *testing.T) {
	_, err := NewListener(Options{})
	require.Error(t, err)
	_, err = NewListener(Options{Channel: "c"})
	require.Error(t, err)
}

func TestListener_DeliversAndReconnects(t *testing.T) {
	conns := make(chan *fakeConn, 4)
	var attempts int
	var mu sync.Mutex
	connect := func(ctx context.Context) (Conn, error) {
		mu.Lock()
		attempts++
		n := attempts
		mu.Unlock()
		if n == 2 {
			return nil, errors.New("db down")
		}
		c := newFakeConn()
		conns <- c
		return c, nil
	}

	got := make(chan string, 4)
	l, err := NewListener(Options{
		Channel:    "fleetdesk_messages",
		Connect:    connect,
		Handler:    func(ctx context.Context, payload string) { got <- payload },
		Logger:     silent(),
		MinBackoff: time.Millisecond,
		MaxBackoff: 4 * time.Millisecond,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	first := <-conns
	first.notes <- &pgconn.Notification{Channel: "other", Payload: "ignored"}
	first.notes <- &pgconn.Notification{Channel: "fleetdesk_messages", Payload: "one"}
	assert.Equal(t, "one", <-got)

	first.fail <- errors.New("connection reset")
	second := <-conns
	second.notes <- &pgconn.Notification{Channel: "fleetdesk_messages", Payload: "two"}
	assert.Equal(t, "two", <-got)

	cancel()
	require.NoError(t, <-done)

	first.mu.Lock()
	assert.True(t, first.closed)
	assert.Equal(t, []string{`LISTEN "fleetdesk_messages"`}, first.execs)
	first.mu.Unlock()

	mu.Lock()
	assert.Equal(t, 3, attempts)
	mu.Unlock()
}

func TestListener_HandlerPanicDoesNotStopLoop(t *testing.T) {
	conn := newFakeConn()
	got := make(chan string, 2)
	l, err := NewListener(Options{
		Channel: "c",
		Connect: func(ctx context.Context) (Conn, error) { return conn, nil },
		Handler: func(ctx context.Context, payload string) {
			if payload == "bad" {
				panic("bad payload")
			}
			got <- payload
		},
		Logger: silent(),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	conn.notes <- &pgconn.Notification{Channel: "c", Payload: "bad"}
	conn.notes <- &pgconn.Notification{Channel: "c", Payload: "good"}
	assert.Equal(t, "good", <-got)

	cancel()
	require.NoError(t, <-done)
}

func TestNextBackoff(t *testing.T) {
	assert.Equal(t, 2*time.Second, NextBackoff(time.Second, 30*time.Second))
	assert.Equal(t, 30*time.Second, NextBackoff(20*time.Second, 30*time.Second))
}
