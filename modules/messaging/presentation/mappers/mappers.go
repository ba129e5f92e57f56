package mappers

import (
	coremappers "github.com/fleetdesk/fleetdesk/modules/core/presentation/mappers"
	"github.com/fleetdesk/fleetdesk/modules/messaging/domain/aggregates/message"
	"github.com/fleetdesk/fleetdesk/modules/messaging/presentation/viewmodels"
	"github.com/fleetdesk/fleetdesk/modules/messaging/services"
)

const (
	EventMessageCreated = "message.created"
	EventMessageSent    = "message.sent"
	EventMessagesRead   = "messages.read"
)

func MessageToViewModel(m *message.Message) *viewmodels.Message {
	vm := &viewmodels.Message{
		ID:            m.ID.String(),
		SenderID:      m.SenderID.String(),
		SenderName:    m.SenderName,
		RecipientID:   m.RecipientID.String(),
		RecipientName: m.RecipientName,
		Body:          m.Body,
		Read:          m.IsRead(),
		ReadAt:        coremappers.OptionalTimestamp(m.ReadAt),
		CreatedAt:     coremappers.Timestamp(m.CreatedAt),
	}
	if m.DispatchID != nil {
		s := m.DispatchID.String()
		vm.DispatchID = &s
	}
	return vm
}

func MessagesToViewModels(list []*message.Message) []*viewmodels.Message {
	out := make([]*viewmodels.Message, len(list))
	for i, m := range list {
		out[i] = MessageToViewModel(m)
	}
	return out
}

func InboxToViewModels(entries []*message.InboxEntry) []*viewmodels.InboxEntry {
	out := make([]*viewmodels.InboxEntry, len(entries))
	for i, e := range entries {
		out[i] = &viewmodels.InboxEntry{
			CounterpartID:   e.CounterpartID.String(),
			CounterpartName: e.CounterpartName,
			LastMessage:     MessageToViewModel(e.LastMessage),
			UnreadCount:     e.Unread,
		}
	}
	return out
}

func UnreadToViewModel(c *message.UnreadCounts) *viewmodels.Unread {
	out := &viewmodels.Unread{Total: c.Total, BySender: make(map[string]int64, len(c.BySender))}
	for id, n := range c.BySender {
		out.BySender[id.String()] = n
	}
	return out
}

func ReadResultToViewModel(r *services.ReadResult) *viewmodels.ReadResult {
	return &viewmodels.ReadResult{Marked: r.Marked, UnreadCount: r.Unread}
}

func MessageCreated(m *message.Message, unread int64) *viewmodels.MessageCreatedEvent {
	return &viewmodels.MessageCreatedEvent{Type: EventMessageCreated, Message: MessageToViewModel(m), UnreadCount: unread}
}

func MessageSent(m *message.Message) *viewmodels.MessageSentEvent {
	return &viewmodels.MessageSentEvent{Type: EventMessageSent, Message: MessageToViewModel(m)}
}

func MessagesRead(unread int64) *viewmodels.MessagesReadEvent {
	return &viewmodels.MessagesReadEvent{Type: EventMessagesRead, UnreadCount: unread}
}
