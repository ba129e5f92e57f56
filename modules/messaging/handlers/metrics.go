package handlers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/fleetdesk/fleetdesk/modules/messaging/domain/aggregates/message"
	"github.com/fleetdesk/fleetdesk/pkg/eventbus"
)

var (
	messagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fleetdesk",
		Subsystem: "messaging",
		Name:      "messages_sent_total",
		Help:      "Messages stored by this instance.",
	})
	messagesRead = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fleetdesk",
		Subsystem: "messaging",
		Name:      "messages_read_total",
		Help:      "Messages marked read by their recipient.",
	})
	eventsPushed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fleetdesk",
		Subsystem: "realtime",
		Name:      "events_pushed_total",
		Help:      "Realtime events queued on websocket connections, by event type.",
	}, []string{"type"})
)

// RegisterMetricsHandler counts message events.
func RegisterMetricsHandler(publisher eventbus.EventBus) {
	publisher.Subscribe(func(e *message.SentEvent) {
		messagesSent.Inc()
	})
	publisher.Subscribe(func(e *message.ReadEvent) {
		messagesRead.Add(float64(e.Marked))
	})
}
