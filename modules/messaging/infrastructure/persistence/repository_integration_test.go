//go:build integration

package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdesk/fleetdesk/modules/core/domain/aggregates/user"
	corepersistence "github.com/fleetdesk/fleetdesk/modules/core/infrastructure/persistence"
	"github.com/fleetdesk/fleetdesk/modules/messaging/domain/aggregates/message"
	"github.com/fleetdesk/fleetdesk/modules/messaging/infrastructure/persistence"
	"github.com/fleetdesk/fleetdesk/pkg/itf"
)

func TestPgMessageRepository(t *testing.T) {
	env := itf.Setup(t, nil)
	users := corepersistence.NewUserRepository()
	repo := persistence.NewMessageRepository()

	ann, err := users.Create(env.Ctx, user.New("ann@fleet.test", "Ann", "Lee", user.RoleDispatcher))
	require.NoError(t, err)
	bob, err := users.Create(env.Ctx, user.New("bob@fleet.test", "Bob", "Ray", user.RoleDriver))
	require.NoError(t, err)
	cid, err := users.Create(env.Ctx, user.New("cid@fleet.test", "Cid", "Moe", user.RoleManager))
	require.NoError(t, err)

	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	send := func(from, to user.User, body string, offset time.Duration) *message.Message {
		m := message.New(from.ID(), to.ID(), body, nil)
		m.CreatedAt = base.Add(offset)
		created, err := repo.Create(env.Ctx, m)
		require.NoError(t, err)
		return created
	}

	first := send(ann, bob, "pickup at 9", 0)
	send(bob, ann, "copy", time.Minute)
	third := send(ann, bob, "gate code 4411", 2*time.Minute)
	send(cid, ann, "call me", 3*time.Minute)

	assert.Equal(t, "Ann Lee", first.SenderName)
	assert.Equal(t, "Bob Ray", first.RecipientName)

	t.Run("Inbox", func(t *testing.T) {
		inbox, err := repo.Inbox(env.Ctx, ann.ID())
		require.NoError(t, err)
		require.Len(t, inbox, 2)
		assert.Equal(t, cid.ID(), inbox[0].CounterpartID)
		assert.Equal(t, "Cid Moe", inbox[0].CounterpartName)
		assert.Equal(t, int64(1), inbox[0].Unread)
		assert.Equal(t, bob.ID(), inbox[1].CounterpartID)
		assert.Equal(t, third.ID, inbox[1].LastMessage.ID)
		assert.Equal(t, int64(1), inbox[1].Unread)

		bobInbox, err := repo.Inbox(env.Ctx, bob.ID())
		require.NoError(t, err)
		require.Len(t, bobInbox, 1)
		assert.Equal(t, int64(2), bobInbox[0].Unread)
	})

	t.Run("Conversation windows from the newest", func(t *testing.T) {
		page, err := repo.Conversation(env.Ctx, &message.ConversationParams{UserID: bob.ID(), CounterpartID: ann.ID(), Limit: 2})
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, "copy", page[0].Body)
		assert.Equal(t, "gate code 4411", page[1].Body)

		older, err := repo.Conversation(env.Ctx, &message.ConversationParams{UserID: bob.ID(), CounterpartID: ann.ID(), Limit: 2, Offset: 2})
		require.NoError(t, err)
		require.Len(t, older, 1)
		assert.Equal(t, first.ID, older[0].ID)

		total, err := repo.CountConversation(env.Ctx, ann.ID(), bob.ID())
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
	})

	t.Run("MarkRead", func(t *testing.T) {
		ok, err := repo.MarkRead(env.Ctx, first.ID, base.Add(time.Hour))
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = repo.MarkRead(env.Ctx, first.ID, base.Add(2*time.Hour))
		require.NoError(t, err)
		assert.False(t, ok)

		got, err := repo.GetByID(env.Ctx, first.ID)
		require.NoError(t, err)
		require.NotNil(t, got.ReadAt)
		assert.True(t, base.Add(time.Hour).Equal(*got.ReadAt))
	})

	t.Run("Unread counts and conversation read", func(t *testing.T) {
		counts, err := repo.UnreadCounts(env.Ctx, bob.ID())
		require.NoError(t, err)
		assert.Equal(t, int64(1), counts.Total)
		assert.Equal(t, int64(1), counts.BySender[ann.ID()])

		n, err := repo.MarkConversationRead(env.Ctx, bob.ID(), ann.ID(), base.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		counts, err = repo.UnreadCounts(env.Ctx, bob.ID())
		require.NoError(t, err)
		assert.Zero(t, counts.Total)
		assert.Empty(t, counts.BySender)
	})

	t.Run("Unknown dispatch", func(t *testing.T) {
		missing := uuid.New()
		err := env.Savepoint(func(ctx context.Context) error {
			_, err := repo.Create(ctx, message.New(ann.ID(), bob.ID(), "load?", &missing))
			return err
		})
		require.ErrorIs(t, err, message.ErrUnknownDispatch)
	})

	t.Run("Not found", func(t *testing.T) {
		_, err := repo.GetByID(env.Ctx, uuid.New())
		require.ErrorIs(t, err, message.ErrNotFound)
	})

	t.Run("Notify inside the transaction", func(t *testing.T) {
		err := persistence.NewNotifier("fleetdesk_messages").Notify(env.Ctx, message.NotificationFor(first))
		require.NoError(t, err)
	})
}
