package realtime

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	notifications = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fleetdesk",
		Subsystem: "realtime",
		Name:      "notifications_total",
		Help:      "Postgres notifications received by the listener.",
	})
	reconnects = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fleetdesk",
		Subsystem: "realtime",
		Name:      "reconnects_total",
		Help:      "Listener reconnect attempts after a lost connection.",
	})
)
