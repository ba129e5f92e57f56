package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdesk/fleetdesk/modules/core/domain/aggregates/user"
	coretesthelpers "github.com/fleetdesk/fleetdesk/modules/core/testhelpers"
	"github.com/fleetdesk/fleetdesk/modules/messaging/domain/aggregates/message"
	"github.com/fleetdesk/fleetdesk/modules/messaging/handlers"
	"github.com/fleetdesk/fleetdesk/modules/messaging/presentation/viewmodels"
	"github.com/fleetdesk/fleetdesk/modules/messaging/services"
	"github.com/fleetdesk/fleetdesk/modules/messaging/testhelpers"
	"github.com/fleetdesk/fleetdesk/pkg/eventbus"
	"github.com/fleetdesk/fleetdesk/pkg/itf"
)

type fixture struct {
	handler  *handlers.RealtimeHandler
	svc      *services.MessageService
	pusher   *testhelpers.Pusher
	notifier *testhelpers.Notifier
	bus      eventbus.EventBus
	alice    user.User
	bob      user.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	bus := eventbus.NewEventPublisher(logger)

	f := &fixture{
		pusher:   &testhelpers.Pusher{},
		notifier: &testhelpers.Notifier{},
		bus:      bus,
		alice:    user.New("alice@fleet.test", "Alice", "Kim", user.RoleDispatcher),
		bob:      user.New("bob@fleet.test", "Bob", "Ray", user.RoleDriver),
	}
	f.svc = services.NewMessageService(
		testhelpers.NewMessageRepository(f.alice, f.bob),
		coretesthelpers.NewUserRepository(f.alice, f.bob),
		f.notifier,
		bus,
	)
	f.handler = handlers.NewRealtimeHandler(handlers.RealtimeOptions{
		Messages: f.svc,
		Pusher:   f.pusher,
		Logger:   logger,
	})
	handlers.RegisterMetricsHandler(bus)
	return f
}

func payload(t *testing.T, m *message.Message) string {
	t.Helper()
	return encode(t, message.NotificationFor(m))
}

func encode(t *testing.T, n message.Notification) string {
	t.Helper()
	b, err := json.Marshal(n)
	require.NoError(t, err)
	return string(b)
}

func TestRealtimeHandler_PushesCreatedAndSent(t *testing.T) {
	f := newFixture(t)
	ctx, _ := itf.Ctx(f.alice)
	m, err := f.svc.Send(ctx, &message.SendDTO{RecipientID: f.bob.ID(), Body: "gate code 4411"})
	require.NoError(t, err)

	f.handler.HandleNotification(context.Background(), payload(t, m))

	toBob := f.pusher.To(f.bob.ID())
	require.Len(t, toBob, 1)
	created, ok := toBob[0].(*viewmodels.MessageCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, "message.created", created.Type)
	assert.Equal(t, m.ID.String(), created.Message.ID)
	assert.Equal(t, int64(1), created.UnreadCount)

	toAlice := f.pusher.To(f.alice.ID())
	require.Len(t, toAlice, 1)
	sent, ok := toAlice[0].(*viewmodels.MessageSentEvent)
	require.True(t, ok)
	assert.Equal(t, "message.sent", sent.Type)
	assert.Equal(t, "Bob Ray", sent.Message.RecipientName)
}

func TestRealtimeHandler_PushesReadCount(t *testing.T) {
	f := newFixture(t)
	aliceCtx, _ := itf.Ctx(f.alice)
	first, err := f.svc.Send(aliceCtx, &message.SendDTO{RecipientID: f.bob.ID(), Body: "one"})
	require.NoError(t, err)
	_, err = f.svc.Send(aliceCtx, &message.SendDTO{RecipientID: f.bob.ID(), Body: "two"})
	require.NoError(t, err)

	bobCtx, _ := itf.Ctx(f.bob)
	_, err = f.svc.MarkRead(bobCtx, first.ID)
	require.NoError(t, err)
	assert.Empty(t, f.pusher.To(f.bob.ID()), "nothing is pushed before the notification arrives")

	sent := f.notifier.Sent()
	require.Len(t, sent, 3)
	read := sent[2]
	assert.Equal(t, message.NotifyRead, read.Kind)
	f.handler.HandleNotification(context.Background(), encode(t, read))

	pushes := f.pusher.To(f.bob.ID())
	require.Len(t, pushes, 1)
	event, ok := pushes[0].(*viewmodels.MessagesReadEvent)
	require.True(t, ok)
	assert.Equal(t, "messages.read", event.Type)
	assert.Equal(t, int64(1), event.UnreadCount)
	assert.Empty(t, f.pusher.To(f.alice.ID()))
}

func TestRealtimeHandler_ReadOnAnotherInstance(t *testing.T) {
	writer := newFixture(t)
	aliceCtx, _ := itf.Ctx(writer.alice)
	m, err := writer.svc.Send(aliceCtx, &message.SendDTO{RecipientID: writer.bob.ID(), Body: "dock 4"})
	require.NoError(t, err)
	bobCtx, _ := itf.Ctx(writer.bob)
	_, err = writer.svc.MarkRead(bobCtx, m.ID)
	require.NoError(t, err)

	// A second instance shares the store but holds its own connections.
	pusher := &testhelpers.Pusher{}
	other := handlers.NewRealtimeHandler(handlers.RealtimeOptions{Messages: writer.svc, Pusher: pusher})
	for _, n := range writer.notifier.Sent() {
		other.HandleNotification(context.Background(), encode(t, n))
	}

	toBob := pusher.To(writer.bob.ID())
	require.Len(t, toBob, 2)
	assert.IsType(t, &viewmodels.MessageCreatedEvent{}, toBob[0])
	read, ok := toBob[1].(*viewmodels.MessagesReadEvent)
	require.True(t, ok)
	assert.Equal(t, int64(0), read.UnreadCount)
	assert.Empty(t, writer.pusher.To(writer.bob.ID()))
}

func TestRealtimeHandler_IgnoresBadPayloads(t *testing.T) {
	f := newFixture(t)
	f.handler.HandleNotification(context.Background(), "garbage")
	f.handler.HandleNotification(context.Background(), payload(t, message.New(f.alice.ID(), f.bob.ID(), "lost", nil)))
	assert.Empty(t, f.pusher.To(f.alice.ID()))
	assert.Empty(t, f.pusher.To(f.bob.ID()))
}

func TestRealtimeHandler_NilPusher(t *testing.T) {
	h := handlers.NewRealtimeHandler(handlers.RealtimeOptions{Messages: newFixture(t).svc})
	assert.NotPanics(t, func() {
		h.HandleNotification(context.Background(), `{"id":"`+uuid.NewString()+`","senderId":"`+uuid.NewString()+`","recipientId":"`+uuid.NewString()+`"}`)
	})
}
