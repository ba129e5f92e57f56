package message

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// MaxBodyLength is counted in characters, not bytes.
const MaxBodyLength = 4096

type Message struct {
	ID          uuid.UUID
	SenderID    uuid.UUID
	RecipientID uuid.UUID
	Body        string
	DispatchID  *uuid.UUID
	ReadAt      *time.Time
	CreatedAt   time.Time

	// Read only, filled by the repository.
	SenderName    string
	RecipientName string
}

func New(senderID, recipientID uuid.UUID, body string, dispatchID *uuid.UUID) *Message {
	return &Message{
		ID:          uuid.New(),
		SenderID:    senderID,
		RecipientID: recipientID,
		Body:        body,
		DispatchID:  dispatchID,
		CreatedAt:   time.Now().UTC(),
	}
}

func (m *Message) IsRead() bool {
	return m.ReadAt != nil
}

func (m *Message) Involves(userID uuid.UUID) bool {
	return m.SenderID == userID || m.RecipientID == userID
}

// Counterpart returns the other side of the conversation as seen by userID.
func (m *Message) Counterpart(userID uuid.UUID) uuid.UUID {
	if m.SenderID == userID {
		return m.RecipientID
	}
	return m.SenderID
}

// CounterpartName is the display name of Counterpart(userID).
func (m *Message) CounterpartName(userID uuid.UUID) string {
	if m.SenderID == userID {
		return m.RecipientName
	}
	return m.SenderName
}

// InboxEntry is one conversation in a user's inbox.
type InboxEntry struct {
	CounterpartID   uuid.UUID
	CounterpartName string
	LastMessage     *Message
	Unread          int64
}

type UnreadCounts struct {
	Total    int64
	BySender map[uuid.UUID]int64
}

const (
	NotifyCreated = "created"
	NotifyRead    = "read"
)

// Notification is the payload sent on the database channel for every
// inserted message and for every read marking. A payload without a kind
// announces a new message.
type Notification struct {
	Kind        string    `json:"kind,omitempty"`
	ID          uuid.UUID `json:"id"`
	SenderID    uuid.UUID `json:"senderId"`
	RecipientID uuid.UUID `json:"recipientId"`
	ReaderID    uuid.UUID `json:"readerId"`
}

func NotificationFor(m *Message) Notification {
	return Notification{Kind: NotifyCreated, ID: m.ID, SenderID: m.SenderID, RecipientID: m.RecipientID}
}

// ReadNotification announces that readerID marked messages read.
func ReadNotification(readerID uuid.UUID) Notification {
	return Notification{Kind: NotifyRead, ReaderID: readerID}
}

func ParseNotification(payload string) (Notification, error) {
	var n Notification
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		return Notification{}, err
	}
	switch n.Kind {
	case "", NotifyCreated:
		n.Kind = NotifyCreated
		if n.ID == uuid.Nil || n.SenderID == uuid.Nil || n.RecipientID == uuid.Nil {
			return Notification{}, ErrBadNotification
		}
	case NotifyRead:
		if n.ReaderID == uuid.Nil {
			return Notification{}, ErrBadNotification
		}
	default:
		return Notification{}, ErrBadNotification
	}
	return n, nil
}
