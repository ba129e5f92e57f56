package viewmodels

type Message struct {
	ID            string  `json:"id"`
	SenderID      string  `json:"senderId"`
	SenderName    string  `json:"senderName"`
	RecipientID   string  `json:"recipientId"`
	RecipientName string  `json:"recipientName"`
	Body          string  `json:"body"`
	DispatchID    *string `json:"dispatchId"`
	Read          bool    `json:"read"`
	ReadAt        *string `json:"readAt"`
	CreatedAt     string  `json:"createdAt"`
}

type InboxEntry struct {
	CounterpartID   string   `json:"counterpartId"`
	CounterpartName string   `json:"counterpartName"`
	LastMessage     *Message `json:"lastMessage"`
	UnreadCount     int64    `json:"unreadCount"`
}

type Unread struct {
	Total    int64            `json:"total"`
	BySender map[string]int64 `json:"bySender"`
}

type ReadResult struct {
	Marked      int64 `json:"marked"`
	UnreadCount int64 `json:"unreadCount"`
}

// Realtime events pushed to user channels.

type MessageCreatedEvent struct {
	Type        string   `json:"type"`
	Message     *Message `json:"message"`
	UnreadCount int64    `json:"unreadCount"`
}

type MessageSentEvent struct {
	Type    string   `json:"type"`
	Message *Message `json:"message"`
}

type MessagesReadEvent struct {
	Type        string `json:"type"`
	UnreadCount int64  `json:"unreadCount"`
}
