package ws

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	connections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "fleetdesk",
		Subsystem: "ws",
		Name:      "connections",
		Help:      "Open websocket connections.",
	})
	messagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fleetdesk",
		Subsystem: "ws",
		Name:      "messages_sent_total",
		Help:      "Messages written to websocket clients.",
	})
)
