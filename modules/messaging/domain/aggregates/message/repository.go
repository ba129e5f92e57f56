package message

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ConversationParams struct {
	UserID        uuid.UUID
	CounterpartID uuid.UUID
	Limit         int
	Offset        int
}

type Repository interface {
	// Inbox returns one entry per counterpart, newest conversation first.
	Inbox(ctx context.Context, userID uuid.UUID) ([]*InboxEntry, error)
	// Conversation windows the conversation from the newest message and
	// returns the window oldest first.
	Conversation(ctx context.Context, params *ConversationParams) ([]*Message, error)
	CountConversation(ctx context.Context, userID, counterpartID uuid.UUID) (int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Message, error)
	Create(ctx context.Context, m *Message) (*Message, error)
	// MarkRead sets read_at when still unset and reports whether it did.
	MarkRead(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	MarkConversationRead(ctx context.Context, readerID, senderID uuid.UUID, at time.Time) (int64, error)
	UnreadCounts(ctx context.Context, userID uuid.UUID) (*UnreadCounts, error)
}

// Notifier announces committed messages and read markings to every
// server instance.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
