// Package metrics exposes the process wide prometheus registry over HTTP.
package metrics

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fleetdesk/fleetdesk/pkg/application"
)

const DefaultPath = "/debug/prometheus"

type Option func(c *PrometheusController)

// WithGatherer replaces the default registry, mostly for tests.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(c *PrometheusController) { c.gatherer = g }
}

// WithGuard wraps the endpoint, typically with middleware.OpsGuard.
func WithGuard(mw ...mux.MiddlewareFunc) Option {
	return func(c *PrometheusController) { c.guards = append(c.guards, mw...) }
}

type PrometheusController struct {
	path     string
	gatherer prometheus.Gatherer
	guards   []mux.MiddlewareFunc
}

func NewPrometheusController(path string, opts ...Option) application.Controller {
	if path == "" {
		path = DefaultPath
	}
	c := &PrometheusController{path: path, gatherer: prometheus.DefaultGatherer}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *PrometheusController) Key() string {
	return c.path
}

func (c *PrometheusController) Register(r *mux.Router) {
	var h http.Handler = promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{EnableOpenMetrics: true})
	for i := len(c.guards) - 1; i >= 0; i-- {
		h = c.guards[i](h)
	}
	r.Handle(c.path, h).Methods(http.MethodGet)
}
