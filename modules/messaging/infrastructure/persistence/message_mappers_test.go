package persistence

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdesk/fleetdesk/modules/messaging/domain/aggregates/message"
)

func TestMessageMappers(t *testing.T) {
	dispatchID := uuid.New()
	readAt := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	m := message.New(uuid.New(), uuid.New(), "Dock 4 is open", &dispatchID)
	m.ReadAt = &readAt

	db := ToDBMessage(m)
	assert.True(t, db.DispatchID.Valid)
	assert.True(t, db.ReadAt.Valid)

	back := ToDomainMessage(db)
	require.NotNil(t, back.DispatchID)
	assert.Equal(t, dispatchID, *back.DispatchID)
	require.NotNil(t, back.ReadAt)
	assert.True(t, readAt.Equal(*back.ReadAt))
	assert.Equal(t, m.Body, back.Body)

	unread := ToDomainMessage(ToDBMessage(message.New(uuid.New(), uuid.New(), "hi", nil)))
	assert.Nil(t, unread.DispatchID)
	assert.Nil(t, unread.ReadAt)
}
