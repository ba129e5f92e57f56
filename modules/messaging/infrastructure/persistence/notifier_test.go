package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdesk/fleetdesk/modules/messaging/domain/aggregates/message"
	"github.com/fleetdesk/fleetdesk/pkg/composables"
	"github.com/fleetdesk/fleetdesk/pkg/itf"
)

func TestPgNotifier_UsesCallerTransaction(t *testing.T) {
	ctx, db := itf.Ctx(nil)
	n := NewNotifier("fleetdesk_messages")

	err := composables.InTx(ctx, func(txCtx context.Context) error {
		return n.Notify(txCtx, message.Notification{ID: uuid.New(), SenderID: uuid.New(), RecipientID: uuid.New()})
	})
	require.NoError(t, err)

	tx := db.LastTx()
	require.NotNil(t, tx)
	assert.True(t, tx.Committed())
	assert.Equal(t, []string{notifyQuery}, tx.Execs())
}

func TestPgNotifier_NoDatabase(t *testing.T) {
	err := NewNotifier("fleetdesk_messages").Notify(context.Background(), message.Notification{})
	require.Error(t, err)
}
