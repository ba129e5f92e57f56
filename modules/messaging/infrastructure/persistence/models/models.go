package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Message struct {
	ID            uuid.UUID
	SenderID      uuid.UUID
	RecipientID   uuid.UUID
	Body          string
	DispatchID    uuid.NullUUID
	ReadAt        sql.NullTime
	CreatedAt     time.Time
	SenderName    string
	RecipientName string
}
