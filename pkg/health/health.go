// Package health aggregates component checks into the /health response.
package health

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"

	"github.com/fleetdesk/fleetdesk/pkg/httpapi"
)

type Status string

const (
	StatusHealthy  Status = "healthy"
	StatusDegraded Status = "degraded"
	StatusDown     Status = "down"
)

const (
	checkTimeout    = 5 * time.Second
	degradedLatency = 100 * time.Millisecond
	DefaultPath     = "/health"
	databaseCheck   = "database"
	redisCheck      = "redis"
)

type Component struct {
	Status       Status `json:"status"`
	ResponseTime string `json:"responseTime,omitempty"`
	Error        string `json:"error,omitempty"`
}

type Response struct {
	Status    Status               `json:"status"`
	Timestamp string               `json:"timestamp"`
	Checks    map[string]Component `json:"checks"`
}

// CheckFunc probes one component. Returning an error marks it down; a slow
// success marks it degraded.
type CheckFunc func(ctx context.Context) error

type Checker struct {
	names  []string
	checks map[string]CheckFunc
	now    func() time.Time
}

func NewChecker() *Checker {
	return &Checker{checks: make(map[string]CheckFunc), now: time.Now}
}

func (c *Checker) Add(name string, fn CheckFunc) *Checker {
	if _, ok := c.checks[name]; !ok {
		c.names = append(c.names, name)
		sort.Strings(c.names)
	}
	c.checks[name] = fn
	return c
}

// WithDatabase checks the pool through a database/sql handle.
func (c *Checker) WithDatabase(db *sql.DB) *Checker {
	return c.Add(databaseCheck, SQLCheck(db))
}

// WithRedis adds the redis check when a client is configured.
func (c *Checker) WithRedis(client *redis.Client) *Checker {
	if client == nil {
		return c
	}
	return c.Add(redisCheck, RedisCheck(client))
}

func SQLCheck(db *sql.DB) CheckFunc {
	return func(ctx context.Context) error {
		if db == nil {
			return fmt.Errorf("database connection pool not available")
		}
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("database ping failed: %w", err)
		}
		var one int
		if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
			return fmt.Errorf("database query failed: %w", err)
		}
		return nil
	}
}

func RedisCheck(client *redis.Client) CheckFunc {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}

func (c *Checker) Run(ctx context.Context) Response {
	resp := Response{
		Status:    StatusHealthy,
		Timestamp: c.now().UTC().Format(time.RFC3339),
		Checks:    make(map[string]Component, len(c.names)),
	}
	for _, name := range c.names {
		comp := c.runOne(ctx, c.checks[name])
		resp.Checks[name] = comp
		resp.Status = merge(resp.Status, comp.Status)
	}
	return resp
}

func (c *Checker) runOne(ctx context.Context, fn CheckFunc) Component {
	timeoutCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	start := time.Now()
	err := fn(timeoutCtx)
	elapsed := time.Since(start)
	comp := Component{Status: StatusHealthy, ResponseTime: elapsed.String()}
	switch {
	case err != nil:
		comp.Status = StatusDown
		comp.Error = err.Error()
	case elapsed > degradedLatency:
		comp.Status = StatusDegraded
	}
	return comp
}

func merge(current, next Status) Status {
	if next == StatusDown {
		return StatusDown
	}
	if next == StatusDegraded && current == StatusHealthy {
		return StatusDegraded
	}
	return current
}

// Controller serves the checker at /health without authentication.
type Controller struct {
	checker *Checker
}

func NewController(checker *Checker) *Controller {
	return &Controller{checker: checker}
}

func (c *Controller) Key() string {
	return DefaultPath
}

func (c *Controller) Register(r *mux.Router) {
	r.HandleFunc(DefaultPath, c.Get).Methods(http.MethodGet)
}

func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	resp := c.checker.Run(r.Context())
	status := http.StatusOK
	if resp.Status == StatusDown {
		status = http.StatusServiceUnavailable
	}
	httpapi.WriteData(w, status, resp)
}
