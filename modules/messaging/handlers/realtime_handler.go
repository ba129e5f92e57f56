// Package handlers connects message events to prometheus and to the
// websocket hub.
package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fleetdesk/fleetdesk/modules/messaging/domain/aggregates/message"
	"github.com/fleetdesk/fleetdesk/modules/messaging/presentation/mappers"
	"github.com/fleetdesk/fleetdesk/pkg/composables"
)

// Pusher delivers a payload to every connection of a user.
type Pusher interface {
	SendToUser(id uuid.UUID, payload any) (int, error)
}

type MessageReader interface {
	Lookup(ctx context.Context, id uuid.UUID) (*message.Message, error)
	UnreadTotal(ctx context.Context, userID uuid.UUID) (int64, error)
}

type RealtimeOptions struct {
	Messages MessageReader
	Pusher   Pusher
	// Pool is put in the context of notification handling. Nil leaves the
	// context as the listener passed it.
	Pool   composables.TxBeginner
	Logger *logrus.Logger
}

// RealtimeHandler turns database notifications for new messages into
// websocket pushes, and read markings into unread count updates.
type RealtimeHandler struct {
	messages MessageReader
	pusher   Pusher
	pool     composables.TxBeginner
	logger   *logrus.Entry
}

func NewRealtimeHandler(opts RealtimeOptions) *RealtimeHandler {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &RealtimeHandler{
		messages: opts.Messages,
		pusher:   opts.Pusher,
		pool:     opts.Pool,
		logger:   logger.WithField("component", "messaging.realtime"),
	}
}

// HandleNotification is the realtime listener callback for the message
// channel.
func (h *RealtimeHandler) HandleNotification(ctx context.Context, payload string) {
	n, err := message.ParseNotification(payload)
	if err != nil {
		h.logger.WithError(err).WithField("payload", payload).Warn("ignoring malformed notification")
		return
	}
	if h.pool != nil {
		ctx = composables.WithPool(ctx, h.pool)
	}
	if n.Kind == message.NotifyRead {
		h.pushRead(ctx, n.ReaderID)
		return
	}
	log := h.logger.WithField("message_id", n.ID)

	m, err := h.messages.Lookup(ctx, n.ID)
	if err != nil {
		log.WithError(err).Warn("notified message not found")
		return
	}
	unread, err := h.messages.UnreadTotal(ctx, m.RecipientID)
	if err != nil {
		log.WithError(err).Error("failed to count unread messages")
		return
	}
	h.push(m.RecipientID, mappers.EventMessageCreated, mappers.MessageCreated(m, unread))
	h.push(m.SenderID, mappers.EventMessageSent, mappers.MessageSent(m))
}

func (h *RealtimeHandler) pushRead(ctx context.Context, readerID uuid.UUID) {
	unread, err := h.messages.UnreadTotal(ctx, readerID)
	if err != nil {
		h.logger.WithError(err).WithField("reader_id", readerID).Error("failed to count unread messages")
		return
	}
	h.push(readerID, mappers.EventMessagesRead, mappers.MessagesRead(unread))
}

func (h *RealtimeHandler) push(userID uuid.UUID, eventType string, payload any) {
	if h.pusher == nil {
		return
	}
	n, err := h.pusher.SendToUser(userID, payload)
	if err != nil {
		h.logger.WithError(err).WithField("type", eventType).Error("failed to push event")
		return
	}
	eventsPushed.WithLabelValues(eventType).Add(float64(n))
}
