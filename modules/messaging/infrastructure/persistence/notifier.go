package persistence

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"

	"github.com/fleetdesk/fleetdesk/modules/messaging/domain/aggregates/message"
	"github.com/fleetdesk/fleetdesk/pkg/composables"
)

const notifyQuery = `SELECT pg_notify($1, $2)`

// PgNotifier issues pg_notify on the caller's transaction, so listeners
// only hear about messages that were committed.
type PgNotifier struct {
	channel string
}

func NewNotifier(channel string) *PgNotifier {
	return &PgNotifier{channel: channel}
}

func (n *PgNotifier) Notify(ctx context.Context, note message.Notification) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}
	payload, err := json.Marshal(note)
	if err != nil {
		return errors.Wrap(err, "failed to encode notification")
	}
	if _, err := tx.Exec(ctx, notifyQuery, n.channel, string(payload)); err != nil {
		return errors.Wrap(err, "failed to notify")
	}
	return nil
}
