package persistence

import (
	"database/sql"

	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk/modules/messaging/domain/aggregates/message"
	"github.com/fleetdesk/fleetdesk/modules/messaging/infrastructure/persistence/models"
)

func ToDomainMessage(m *models.Message) *message.Message {
	out := &message.Message{
		ID:            m.ID,
		SenderID:      m.SenderID,
		RecipientID:   m.RecipientID,
		Body:          m.Body,
		CreatedAt:     m.CreatedAt.UTC(),
		SenderName:    m.SenderName,
		RecipientName: m.RecipientName,
	}
	if m.DispatchID.Valid {
		id := m.DispatchID.UUID
		out.DispatchID = &id
	}
	if m.ReadAt.Valid {
		at := m.ReadAt.Time.UTC()
		out.ReadAt = &at
	}
	return out
}

func ToDBMessage(m *message.Message) *models.Message {
	out := &models.Message{
		ID:          m.ID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Body:        m.Body,
		CreatedAt:   m.CreatedAt,
	}
	if m.DispatchID != nil {
		out.DispatchID = uuid.NullUUID{UUID: *m.DispatchID, Valid: true}
	}
	if m.ReadAt != nil {
		out.ReadAt = sql.NullTime{Time: *m.ReadAt, Valid: true}
	}
	return out
}
