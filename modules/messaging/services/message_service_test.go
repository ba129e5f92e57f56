package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdesk/fleetdesk/modules/core/domain/aggregates/user"
	coretesthelpers "github.com/fleetdesk/fleetdesk/modules/core/testhelpers"
	"github.com/fleetdesk/fleetdesk/modules/messaging/domain/aggregates/message"
	"github.com/fleetdesk/fleetdesk/modules/messaging/testhelpers"
	"github.com/fleetdesk/fleetdesk/pkg/itf"
	"github.com/fleetdesk/fleetdesk/pkg/serrors"
)

type fixture struct {
	svc        *MessageService
	repo       *testhelpers.MessageRepository
	notifier   *testhelpers.Notifier
	pub        *coretesthelpers.Publisher
	dispatcher user.User
	driver     user.User
	manager    user.User
	retired    user.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		notifier:   &testhelpers.Notifier{},
		pub:        &coretesthelpers.Publisher{},
		dispatcher: user.New("dana@fleet.test", "Dana", "Reyes", user.RoleDispatcher),
		driver:     user.New("luis@fleet.test", "Luis", "Gonzalez", user.RoleDriver),
		manager:    user.New("mia@fleet.test", "Mia", "Park", user.RoleManager),
		retired:    user.New("old@fleet.test", "Old", "Timer", user.RoleDriver).SetActive(false),
	}
	all := []user.User{f.dispatcher, f.driver, f.manager, f.retired}
	f.repo = testhelpers.NewMessageRepository(all...)
	f.svc = NewMessageService(f.repo, coretesthelpers.NewUserRepository(all...), f.notifier, f.pub)
	return f
}

func (f *fixture) send(t *testing.T, from, to user.User, body string) *message.Message {
	t.Helper()
	ctx, _ := itf.Ctx(from)
	m, err := f.svc.Send(ctx, &message.SendDTO{RecipientID: to.ID(), Body: body})
	require.NoError(t, err)
	return m
}

func TestMessageService_Send(t *testing.T) {
	f := newFixture(t)
	ctx, db := itf.Ctx(f.dispatcher)
	dispatchID := uuid.New()

	m, err := f.svc.Send(ctx, &message.SendDTO{RecipientID: f.driver.ID(), Body: " Load DSP-000004 is yours ", DispatchID: &dispatchID})
	require.NoError(t, err)
	assert.Equal(t, "Load DSP-000004 is yours", m.Body)
	assert.Equal(t, f.dispatcher.ID(), m.SenderID)
	assert.Equal(t, "Luis Gonzalez", m.RecipientName)
	assert.Equal(t, &dispatchID, m.DispatchID)
	assert.True(t, db.LastTx().Committed())

	require.Equal(t, []message.Notification{message.NotificationFor(m)}, f.notifier.Sent())
	require.Len(t, f.pub.Events(), 1)
	sent, ok := f.pub.Events()[0].(*message.SentEvent)
	require.True(t, ok)
	assert.Equal(t, m.ID, sent.Result.ID)
}

func TestMessageService_SendRejects(t *testing.T) {
	f := newFixture(t)
	ctx, _ := itf.Ctx(f.dispatcher)

	cases := []struct {
		name string
		dto  *message.SendDTO
		want error
	}{
		{name: "self", dto: &message.SendDTO{RecipientID: f.dispatcher.ID(), Body: "note to self"}, want: message.ErrSelfMessage},
		{name: "unknown", dto: &message.SendDTO{RecipientID: uuid.New(), Body: "hello?"}, want: message.ErrUnknownRecipient},
		{name: "inactive", dto: &message.SendDTO{RecipientID: f.retired.ID(), Body: "still there?"}, want: message.ErrInactiveRecipient},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Send(ctx, tc.dto)
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, serrors.KindInvalid, serrors.KindOf(err))
		})
	}

	_, err := f.svc.Send(ctx, &message.SendDTO{RecipientID: f.driver.ID(), Body: strings.Repeat("a", message.MaxBodyLength+1)})
	var verrs serrors.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "body")

	assert.Empty(t, f.notifier.Sent())
	assert.Empty(t, f.pub.Events())
}

func TestMessageService_SendRollsBackWhenNotifyFails(t *testing.T) {
	f := newFixture(t)
	f.notifier.Err = errors.New("connection reset")
	ctx, db := itf.Ctx(f.dispatcher)

	_, err := f.svc.Send(ctx, &message.SendDTO{RecipientID: f.driver.ID(), Body: "hi"})
	require.Error(t, err)
	assert.True(t, db.LastTx().RolledBack())
	assert.Empty(t, f.pub.Events())
}

func TestMessageService_RequiresUser(t *testing.T) {
	f := newFixture(t)
	ctx, _ := itf.Ctx(nil)
	_, err := f.svc.Inbox(ctx)
	assert.ErrorIs(t, err, ErrNoUser)
	assert.Equal(t, serrors.KindUnauthenticated, serrors.KindOf(err))
}

func TestMessageService_InboxAndConversation(t *testing.T) {
	f := newFixture(t)
	first := f.send(t, f.dispatcher, f.driver, "pickup at 9")
	f.send(t, f.driver, f.dispatcher, "copy")
	last := f.send(t, f.dispatcher, f.driver, "gate code 4411")
	f.send(t, f.manager, f.driver, "drive safe")

	ctx, _ := itf.Ctx(f.driver)
	inbox, err := f.svc.Inbox(ctx)
	require.NoError(t, err)
	require.Len(t, inbox, 2)
	assert.Equal(t, f.manager.ID(), inbox[0].CounterpartID)
	assert.Equal(t, f.dispatcher.ID(), inbox[1].CounterpartID)
	assert.Equal(t, "Dana Reyes", inbox[1].CounterpartName)
	assert.Equal(t, last.ID, inbox[1].LastMessage.ID)
	assert.Equal(t, int64(2), inbox[1].Unread)

	page, total, err := f.svc.Conversation(ctx, f.dispatcher.ID(), 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 2)
	assert.Equal(t, "copy", page[0].Body)
	assert.Equal(t, "gate code 4411", page[1].Body)

	older, _, err := f.svc.Conversation(ctx, f.dispatcher.ID(), 2, 2)
	require.NoError(t, err)
	require.Len(t, older, 1)
	assert.Equal(t, first.ID, older[0].ID)

	_, _, err = f.svc.Conversation(ctx, uuid.New(), 0, 10)
	assert.Equal(t, serrors.KindNotFound, serrors.KindOf(err))
}

func TestMessageService_MarkRead(t *testing.T) {
	f := newFixture(t)
	m := f.send(t, f.dispatcher, f.driver, "pickup at 9")
	f.send(t, f.dispatcher, f.driver, "call when loaded")
	f.pub = &coretesthelpers.Publisher{}
	f.svc.publisher = f.pub

	senderCtx, _ := itf.Ctx(f.dispatcher)
	_, err := f.svc.MarkRead(senderCtx, m.ID)
	assert.ErrorIs(t, err, message.ErrNotRecipient)

	outsiderCtx, _ := itf.Ctx(f.manager)
	_, err = f.svc.MarkRead(outsiderCtx, m.ID)
	assert.ErrorIs(t, err, message.ErrNotFound)

	ctx, _ := itf.Ctx(f.driver)
	read, err := f.svc.MarkRead(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead())
	require.Len(t, f.pub.Events(), 1)
	ev := f.pub.Events()[0].(*message.ReadEvent)
	assert.Equal(t, f.driver.ID(), ev.ReaderID)
	assert.Equal(t, int64(1), ev.Marked)
	assert.Equal(t, int64(1), ev.Unread)

	sent := f.notifier.Sent()
	require.Len(t, sent, 3)
	assert.Equal(t, message.ReadNotification(f.driver.ID()), sent[2])

	again, err := f.svc.MarkRead(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, read.ReadAt, again.ReadAt)
	assert.Len(t, f.pub.Events(), 1)
	assert.Len(t, f.notifier.Sent(), 3)
}

func TestMessageService_MarkReadRollsBackWhenNotifyFails(t *testing.T) {
	f := newFixture(t)
	m := f.send(t, f.dispatcher, f.driver, "pickup at 9")
	f.send(t, f.dispatcher, f.driver, "call when loaded")
	f.notifier.Err = errors.New("connection reset")

	ctx, db := itf.Ctx(f.driver)
	_, err := f.svc.MarkRead(ctx, m.ID)
	require.Error(t, err)
	assert.True(t, db.LastTx().RolledBack())

	_, err = f.svc.MarkConversationRead(ctx, f.dispatcher.ID())
	require.Error(t, err)
	assert.True(t, db.LastTx().RolledBack())
	assert.Empty(t, f.pub.Events())
}

func TestMessageService_MarkConversationReadAndCounts(t *testing.T) {
	f := newFixture(t)
	f.send(t, f.dispatcher, f.driver, "one")
	f.send(t, f.dispatcher, f.driver, "two")
	f.send(t, f.manager, f.driver, "three")
	f.send(t, f.driver, f.dispatcher, "reply")

	ctx, _ := itf.Ctx(f.driver)
	counts, err := f.svc.UnreadCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts.Total)
	assert.Equal(t, int64(2), counts.BySender[f.dispatcher.ID()])
	assert.Equal(t, int64(1), counts.BySender[f.manager.ID()])

	res, err := f.svc.MarkConversationRead(ctx, f.dispatcher.ID())
	require.NoError(t, err)
	assert.Equal(t, &ReadResult{Marked: 2, Unread: 1}, res)

	before := len(f.notifier.Sent())
	res, err = f.svc.MarkConversationRead(ctx, f.dispatcher.ID())
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Marked)
	assert.Len(t, f.notifier.Sent(), before, "an empty marking is not announced")

	total, err := f.svc.UnreadTotal(context.Background(), f.dispatcher.ID())
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestMessageService_Dashboard(t *testing.T) {
	f := newFixture(t)
	f.send(t, f.dispatcher, f.driver, "one")

	ctx, _ := itf.Ctx(f.driver)
	widgets, err := Dashboard(f.svc).DashboardWidgets(ctx, f.driver)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"unreadMessages": int64(1)}, widgets)
}

func TestMessageService_ConversationWindowStable(t *testing.T) {
	f := newFixture(t)
	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		m := message.New(f.dispatcher.ID(), f.driver.ID(), string(rune('a'+i)), nil)
		m.CreatedAt = base
		_, err := f.repo.Create(context.Background(), m)
		require.NoError(t, err)
	}
	ctx, _ := itf.Ctx(f.driver)
	page, _, err := f.svc.Conversation(ctx, f.dispatcher.ID(), 0, 3)
	require.NoError(t, err)
	bodies := make([]string, len(page))
	for i, m := range page {
		bodies[i] = m.Body
	}
	assert.Equal(t, []string{"c", "d", "e"}, bodies)
}
