package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk/modules/core/domain/aggregates/user"
	"github.com/fleetdesk/fleetdesk/modules/messaging/domain/aggregates/message"
	"github.com/fleetdesk/fleetdesk/pkg/authz"
	"github.com/fleetdesk/fleetdesk/pkg/composables"
	"github.com/fleetdesk/fleetdesk/pkg/eventbus"
	"github.com/fleetdesk/fleetdesk/pkg/serrors"
)

var ErrNoUser = serrors.Unauthenticated("UNAUTHENTICATED", "authentication required")

type UserReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (user.User, error)
}

// ReadResult is what a read marking changed for the reader.
type ReadResult struct {
	Marked int64
	Unread int64
}

type MessageService struct {
	repo      message.Repository
	users     UserReader
	notifier  message.Notifier
	publisher eventbus.EventBus
}

func NewMessageService(
	repo message.Repository,
	users UserReader,
	notifier message.Notifier,
	publisher eventbus.EventBus,
) *MessageService {
	return &MessageService{
		repo:      repo,
		users:     users,
		notifier:  notifier,
		publisher: publisher,
	}
}

// current authorizes action and returns the acting user. Every messaging
// operation is scoped to that user.
func current(ctx context.Context, action string) (user.User, error) {
	if err := authorizeMessages(ctx, action); err != nil {
		return nil, err
	}
	u, err := composables.UseUser(ctx)
	if err != nil {
		return nil, ErrNoUser
	}
	return u, nil
}

func (s *MessageService) Inbox(ctx context.Context) ([]*message.InboxEntry, error) {
	u, err := current(ctx, authz.ActionList)
	if err != nil {
		return nil, err
	}
	return s.repo.Inbox(ctx, u.ID())
}

// Conversation returns one window of the conversation with counterpartID,
// counted from the newest message and ordered oldest first, plus the
// conversation's total size.
func (s *MessageService) Conversation(ctx context.Context, counterpartID uuid.UUID, offset, limit int) ([]*message.Message, int64, error) {
	u, err := current(ctx, authz.ActionList)
	if err != nil {
		return nil, 0, err
	}
	if _, err := s.users.GetByID(ctx, counterpartID); err != nil {
		return nil, 0, err
	}
	items, err := s.repo.Conversation(ctx, &message.ConversationParams{
		UserID:        u.ID(),
		CounterpartID: counterpartID,
		Limit:         limit,
		Offset:        offset,
	})
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountConversation(ctx, u.ID(), counterpartID)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *MessageService) GetByID(ctx context.Context, id uuid.UUID) (*message.Message, error) {
	u, err := current(ctx, authz.ActionView)
	if err != nil {
		return nil, err
	}
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !m.Involves(u.ID()) {
		return nil, message.ErrNotFound
	}
	return m, nil
}

// Lookup reads a message without authorization, for the realtime push.
func (s *MessageService) Lookup(ctx context.Context, id uuid.UUID) (*message.Message, error) {
	return s.repo.GetByID(ctx, id)
}

// UnreadTotal is not authorized; it feeds realtime pushes and the
// dashboard.
func (s *MessageService) UnreadTotal(ctx context.Context, userID uuid.UUID) (int64, error) {
	counts, err := s.repo.UnreadCounts(ctx, userID)
	if err != nil {
		return 0, err
	}
	return counts.Total, nil
}

func (s *MessageService) UnreadCounts(ctx context.Context) (*message.UnreadCounts, error) {
	u, err := current(ctx, authz.ActionView)
	if err != nil {
		return nil, err
	}
	return s.repo.UnreadCounts(ctx, u.ID())
}

// Send stores the message and notifies listeners in the same transaction.
func (s *MessageService) Send(ctx context.Context, dto *message.SendDTO) (*message.Message, error) {
	sender, err := current(ctx, authz.ActionCreate)
	if err != nil {
		return nil, err
	}
	if err := dto.Ok(); err != nil {
		return nil, err
	}
	if dto.RecipientID == sender.ID() {
		return nil, message.ErrSelfMessage
	}
	created, err := composables.InTxResult(ctx, func(txCtx context.Context) (*message.Message, error) {
		if err := s.checkRecipient(txCtx, dto.RecipientID); err != nil {
			return nil, err
		}
		created, err := s.repo.Create(txCtx, dto.ToEntity(sender.ID()))
		if err != nil {
			return nil, err
		}
		if err := s.notifier.Notify(txCtx, message.NotificationFor(created)); err != nil {
			return nil, err
		}
		return created, nil
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(&message.SentEvent{Sender: sender, Result: created})
	return created, nil
}

func (s *MessageService) checkRecipient(ctx context.Context, id uuid.UUID) error {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if serrors.KindOf(err) == serrors.KindNotFound {
			return message.ErrUnknownRecipient
		}
		return err
	}
	if !u.Active() {
		return message.ErrInactiveRecipient
	}
	return nil
}

// MarkRead marks one message read. Only its recipient may do so; marking
// an already read message is a no-op.
func (s *MessageService) MarkRead(ctx context.Context, id uuid.UUID) (*message.Message, error) {
	reader, err := current(ctx, authz.ActionUpdate)
	if err != nil {
		return nil, err
	}
	var result ReadResult
	updated, err := composables.InTxResult(ctx, func(txCtx context.Context) (*message.Message, error) {
		m, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		if !m.Involves(reader.ID()) {
			return nil, message.ErrNotFound
		}
		if m.RecipientID != reader.ID() {
			return nil, message.ErrNotRecipient
		}
		if m.IsRead() {
			return m, nil
		}
		ok, err := s.repo.MarkRead(txCtx, id, time.Now().UTC())
		if err != nil {
			return nil, err
		}
		if ok {
			result.Marked = 1
			if err := s.notifyRead(txCtx, reader.ID()); err != nil {
				return nil, err
			}
		}
		if result.Unread, err = s.UnreadTotal(txCtx, reader.ID()); err != nil {
			return nil, err
		}
		return s.repo.GetByID(txCtx, id)
	})
	if err != nil {
		return nil, err
	}
	s.publishRead(reader, result)
	return updated, nil
}

// MarkConversationRead marks every unread message from counterpartID to
// the current user read.
func (s *MessageService) MarkConversationRead(ctx context.Context, counterpartID uuid.UUID) (*ReadResult, error) {
	reader, err := current(ctx, authz.ActionUpdate)
	if err != nil {
		return nil, err
	}
	result, err := composables.InTxResult(ctx, func(txCtx context.Context) (*ReadResult, error) {
		if _, err := s.users.GetByID(txCtx, counterpartID); err != nil {
			return nil, err
		}
		marked, err := s.repo.MarkConversationRead(txCtx, reader.ID(), counterpartID, time.Now().UTC())
		if err != nil {
			return nil, err
		}
		if marked > 0 {
			if err := s.notifyRead(txCtx, reader.ID()); err != nil {
				return nil, err
			}
		}
		unread, err := s.UnreadTotal(txCtx, reader.ID())
		if err != nil {
			return nil, err
		}
		return &ReadResult{Marked: marked, Unread: unread}, nil
	})
	if err != nil {
		return nil, err
	}
	s.publishRead(reader, *result)
	return result, nil
}

// notifyRead tells every instance to refresh the reader's unread count
// once the marking commits.
func (s *MessageService) notifyRead(ctx context.Context, readerID uuid.UUID) error {
	return s.notifier.Notify(ctx, message.ReadNotification(readerID))
}

func (s *MessageService) publishRead(reader user.User, r ReadResult) {
	if r.Marked == 0 {
		return
	}
	s.publisher.Publish(&message.ReadEvent{
		Sender:   reader,
		ReaderID: reader.ID(),
		Marked:   r.Marked,
		Unread:   r.Unread,
	})
}
