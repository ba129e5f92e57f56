// Package testhelpers holds in-memory messaging fakes for service,
// handler and controller tests.
package testhelpers

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk/modules/core/domain/aggregates/user"
	"github.com/fleetdesk/fleetdesk/modules/messaging/domain/aggregates/message"
)

type stored struct {
	seq int
	msg message.Message
}

type MessageRepository struct {
	mu       sync.Mutex
	names    map[uuid.UUID]string
	messages []stored
}

// NewMessageRepository resolves sender and recipient names from users.
func NewMessageRepository(users ...user.User) *MessageRepository {
	r := &MessageRepository{names: map[uuid.UUID]string{}}
	for _, u := range users {
		r.names[u.ID()] = u.FullName()
	}
	return r
}

func (r *MessageRepository) withNames(m message.Message) *message.Message {
	m.SenderName = r.names[m.SenderID]
	m.RecipientName = r.names[m.RecipientID]
	return &m
}

// newestFirst returns the matching messages ordered like the database
// does: created_at descending, then insertion order descending.
func (r *MessageRepository) newestFirst(match func(m *message.Message) bool) []*message.Message {
	list := make([]stored, 0, len(r.messages))
	for _, s := range r.messages {
		s := s
		if match(&s.msg) {
			list = append(list, s)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].msg.CreatedAt.Equal(list[j].msg.CreatedAt) {
			return list[i].msg.CreatedAt.After(list[j].msg.CreatedAt)
		}
		return list[i].seq > list[j].seq
	})
	out := make([]*message.Message, len(list))
	for i, s := range list {
		out[i] = r.withNames(s.msg)
	}
	return out
}

func (r *MessageRepository) Inbox(ctx context.Context, userID uuid.UUID) ([]*message.InboxEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.newestFirst(func(m *message.Message) bool { return m.Involves(userID) })
	seen := map[uuid.UUID]*message.InboxEntry{}
	var out []*message.InboxEntry
	for _, m := range all {
		other := m.Counterpart(userID)
		entry, ok := seen[other]
		if !ok {
			entry = &message.InboxEntry{
				CounterpartID:   other,
				CounterpartName: m.CounterpartName(userID),
				LastMessage:     m,
			}
			seen[other] = entry
			out = append(out, entry)
		}
		if m.RecipientID == userID && !m.IsRead() {
			entry.Unread++
		}
	}
	return out, nil
}

func pair(a, b uuid.UUID) func(m *message.Message) bool {
	return func(m *message.Message) bool {
		return (m.SenderID == a && m.RecipientID == b) || (m.SenderID == b && m.RecipientID == a)
	}
}

func (r *MessageRepository) Conversation(ctx context.Context, params *message.ConversationParams) ([]*message.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.newestFirst(pair(params.UserID, params.CounterpartID))
	start := params.Offset
	if start > len(all) {
		start = len(all)
	}
	end := len(all)
	if params.Limit > 0 && start+params.Limit < end {
		end = start + params.Limit
	}
	window := append([]*message.Message(nil), all[start:end]...)
	for i, j := 0, len(window)-1; i < j; i, j = i+1, j-1 {
		window[i], window[j] = window[j], window[i]
	}
	return window, nil
}

func (r *MessageRepository) CountConversation(ctx context.Context, userID, counterpartID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.newestFirst(pair(userID, counterpartID)))), nil
}

func (r *MessageRepository) GetByID(ctx context.Context, id uuid.UUID) (*message.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.messages {
		if s.msg.ID == id {
			return r.withNames(s.msg), nil
		}
	}
	return nil, fmt.Errorf("id: %s: %w", id, message.ErrNotFound)
}

func (r *MessageRepository) Create(ctx context.Context, m *message.Message) (*message.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.names[m.RecipientID]; !ok && len(r.names) > 0 {
		return nil, message.ErrUnknownRecipient
	}
	r.messages = append(r.messages, stored{seq: len(r.messages), msg: *m})
	return r.withNames(*m), nil
}

func (r *MessageRepository) MarkRead(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.messages {
		m := &r.messages[i].msg
		if m.ID == id && m.ReadAt == nil {
			t := at
			m.ReadAt = &t
			return true, nil
		}
	}
	return false, nil
}

func (r *MessageRepository) MarkConversationRead(ctx context.Context, readerID, senderID uuid.UUID, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for i := range r.messages {
		m := &r.messages[i].msg
		if m.RecipientID == readerID && m.SenderID == senderID && m.ReadAt == nil {
			t := at
			m.ReadAt = &t
			n++
		}
	}
	return n, nil
}

func (r *MessageRepository) UnreadCounts(ctx context.Context, userID uuid.UUID) (*message.UnreadCounts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := &message.UnreadCounts{BySender: map[uuid.UUID]int64{}}
	for _, s := range r.messages {
		if s.msg.RecipientID == userID && s.msg.ReadAt == nil {
			out.BySender[s.msg.SenderID]++
			out.Total++
		}
	}
	return out, nil
}

// Notifier records notifications instead of sending them.
type Notifier struct {
	mu   sync.Mutex
	sent []message.Notification
	Err  error
}

func (n *Notifier) Notify(ctx context.Context, note message.Notification) error {
	if n.Err != nil {
		return n.Err
	}
	n.mu.Lock()
	n.sent = append(n.sent, note)
	n.mu.Unlock()
	return nil
}

func (n *Notifier) Sent() []message.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]message.Notification(nil), n.sent...)
}

// Pusher records websocket pushes per user.
type Pusher struct {
	mu     sync.Mutex
	pushes map[uuid.UUID][]any
}

func (p *Pusher) SendToUser(id uuid.UUID, payload any) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pushes == nil {
		p.pushes = map[uuid.UUID][]any{}
	}
	p.pushes[id] = append(p.pushes[id], payload)
	return 1, nil
}

func (p *Pusher) To(id uuid.UUID) []any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]any(nil), p.pushes[id]...)
}
