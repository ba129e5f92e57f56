package message

import (
	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk/modules/core/domain/aggregates/user"
)

type SentEvent struct {
	Sender user.User
	Result *Message
}

// ReadEvent is published after messages were marked read. Unread is the
// reader's remaining unread total. Websocket pushes for read markings go
// through the database channel instead.
type ReadEvent struct {
	Sender   user.User
	ReaderID uuid.UUID
	Marked   int64
	Unread   int64
}
