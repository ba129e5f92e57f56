package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk/modules/messaging/domain/aggregates/message"
	"github.com/fleetdesk/fleetdesk/modules/messaging/infrastructure/persistence/models"
	"github.com/fleetdesk/fleetdesk/pkg/composables"
	"github.com/fleetdesk/fleetdesk/pkg/repo"
)

const (
	messageDispatchFKConstraint  = "messages_dispatch_id_fkey"
	messageRecipientFKConstraint = "messages_recipient_id_fkey"

	messageColumns = `
            m.id,
            m.sender_id,
            m.recipient_id,
            m.body,
            m.dispatch_id,
            m.read_at,
            m.created_at,
            TRIM(CONCAT(s.first_name, ' ', s.last_name)),
            TRIM(CONCAT(r.first_name, ' ', r.last_name))`

	messageFindQuery = `
        SELECT` + messageColumns + `
        FROM messages m
        JOIN users s ON s.id = m.sender_id
        JOIN users r ON r.id = m.recipient_id`

	messagePairCondition = `((m.sender_id = $1 AND m.recipient_id = $2) OR (m.sender_id = $2 AND m.recipient_id = $1))`

	messageConversationCountQuery = `SELECT COUNT(*) FROM messages m WHERE ` + messagePairCondition

	// One row per counterpart holding the latest message in that
	// conversation and the unread count addressed to $1.
	messageInboxQuery = `
        WITH latest AS (
            SELECT DISTINCT ON (counterpart_id)
                m.id,
                CASE WHEN m.sender_id = $1 THEN m.recipient_id ELSE m.sender_id END AS counterpart_id
            FROM messages m
            WHERE m.sender_id = $1 OR m.recipient_id = $1
            ORDER BY counterpart_id, m.created_at DESC, m.id DESC
        )
        SELECT` + messageColumns + `,
            (
                SELECT COUNT(*)
                FROM messages u
                WHERE u.recipient_id = $1
                  AND u.sender_id = latest.counterpart_id
                  AND u.read_at IS NULL
            )
        FROM latest
        JOIN messages m ON m.id = latest.id
        JOIN users s ON s.id = m.sender_id
        JOIN users r ON r.id = m.recipient_id
        ORDER BY m.created_at DESC, m.id DESC`

	messageMarkReadQuery = `UPDATE messages SET read_at = $2 WHERE id = $1 AND read_at IS NULL`

	messageMarkConversationReadQuery = `
        UPDATE messages SET read_at = $3
        WHERE recipient_id = $1 AND sender_id = $2 AND read_at IS NULL`

	messageUnreadQuery = `
        SELECT sender_id, COUNT(*)
        FROM messages
        WHERE recipient_id = $1 AND read_at IS NULL
        GROUP BY sender_id`
)

type PgMessageRepository struct{}

func NewMessageRepository() message.Repository {
	return &PgMessageRepository{}
}

func (g *PgMessageRepository) Inbox(ctx context.Context, userID uuid.UUID) ([]*message.InboxEntry, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}
	rows, err := tx.Query(ctx, messageInboxQuery, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query inbox")
	}
	defer rows.Close()

	var out []*message.InboxEntry
	for rows.Next() {
		var m models.Message
		var unread int64
		if err := rows.Scan(
			&m.ID,
			&m.SenderID,
			&m.RecipientID,
			&m.Body,
			&m.DispatchID,
			&m.ReadAt,
			&m.CreatedAt,
			&m.SenderName,
			&m.RecipientName,
			&unread,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan inbox row")
		}
		last := ToDomainMessage(&m)
		out = append(out, &message.InboxEntry{
			CounterpartID:   last.Counterpart(userID),
			CounterpartName: last.CounterpartName(userID),
			LastMessage:     last,
			Unread:          unread,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}
	return out, nil
}

func (g *PgMessageRepository) Conversation(ctx context.Context, params *message.ConversationParams) ([]*message.Message, error) {
	query := repo.Join(" ",
		messageFindQuery,
		"WHERE", messagePairCondition,
		"ORDER BY m.created_at DESC, m.id DESC",
		repo.FormatLimitOffset(params.Limit, params.Offset),
	)
	items, err := g.queryMessages(ctx, query, params.UserID, params.CounterpartID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get conversation")
	}
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items, nil
}

func (g *PgMessageRepository) CountConversation(ctx context.Context, userID, counterpartID uuid.UUID) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get transaction")
	}
	var count int64
	if err := tx.QueryRow(ctx, messageConversationCountQuery, userID, counterpartID).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count conversation")
	}
	return count, nil
}

func (g *PgMessageRepository) GetByID(ctx context.Context, id uuid.UUID) (*message.Message, error) {
	items, err := g.queryMessages(ctx, messageFindQuery+" WHERE m.id = $1", id)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("failed to query message with id: %s", id))
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("id: %s: %w", id, message.ErrNotFound)
	}
	return items[0], nil
}

func (g *PgMessageRepository) Create(ctx context.Context, data *message.Message) (*message.Message, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}
	m := ToDBMessage(data)
	fields := []string{
		"id",
		"sender_id",
		"recipient_id",
		"body",
		"dispatch_id",
		"read_at",
		"created_at",
	}
	values := []interface{}{
		m.ID,
		m.SenderID,
		m.RecipientID,
		m.Body,
		m.DispatchID,
		m.ReadAt,
		m.CreatedAt,
	}
	if _, err := tx.Exec(ctx, repo.Insert("messages", fields), values...); err != nil {
		switch {
		case repo.IsForeignKeyViolation(err, messageDispatchFKConstraint):
			return nil, message.ErrUnknownDispatch
		case repo.IsForeignKeyViolation(err, messageRecipientFKConstraint):
			return nil, message.ErrUnknownRecipient
		}
		return nil, errors.Wrap(err, "failed to insert message")
	}
	return g.GetByID(ctx, m.ID)
}

func (g *PgMessageRepository) MarkRead(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, errors.Wrap(err, "failed to get transaction")
	}
	tag, err := tx.Exec(ctx, messageMarkReadQuery, id, at)
	if err != nil {
		return false, errors.Wrap(err, "failed to mark message read")
	}
	return tag.RowsAffected() > 0, nil
}

func (g *PgMessageRepository) MarkConversationRead(ctx context.Context, readerID, senderID uuid.UUID, at time.Time) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get transaction")
	}
	tag, err := tx.Exec(ctx, messageMarkConversationReadQuery, readerID, senderID, at)
	if err != nil {
		return 0, errors.Wrap(err, "failed to mark conversation read")
	}
	return tag.RowsAffected(), nil
}

func (g *PgMessageRepository) UnreadCounts(ctx context.Context, userID uuid.UUID) (*message.UnreadCounts, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}
	rows, err := tx.Query(ctx, messageUnreadQuery, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query unread counts")
	}
	defer rows.Close()

	out := &message.UnreadCounts{BySender: map[uuid.UUID]int64{}}
	for rows.Next() {
		var sender uuid.UUID
		var n int64
		if err := rows.Scan(&sender, &n); err != nil {
			return nil, errors.Wrap(err, "failed to scan unread count")
		}
		out.BySender[sender] = n
		out.Total += n
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}
	return out, nil
}

func (g *PgMessageRepository) queryMessages(ctx context.Context, query string, args ...interface{}) ([]*message.Message, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute query")
	}
	defer rows.Close()

	var out []*message.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(
			&m.ID,
			&m.SenderID,
			&m.RecipientID,
			&m.Body,
			&m.DispatchID,
			&m.ReadAt,
			&m.CreatedAt,
			&m.SenderName,
			&m.RecipientName,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan message row")
		}
		out = append(out, ToDomainMessage(&m))
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}
	return out, nil
}
