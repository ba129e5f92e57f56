// Package seed inserts demo conversations between the seeded users.
package seed

import (
	"context"
	"time"

	"github.com/google/uuid"

	corepersistence "github.com/fleetdesk/fleetdesk/modules/core/infrastructure/persistence"
	"github.com/fleetdesk/fleetdesk/modules/messaging/domain/aggregates/message"
	"github.com/fleetdesk/fleetdesk/modules/messaging/infrastructure/persistence"
	"github.com/fleetdesk/fleetdesk/pkg/application"
	"github.com/fleetdesk/fleetdesk/pkg/composables"
)

// DemoMessage is sent At before seeding time. Read messages get a read
// timestamp a minute after they were sent.
type DemoMessage struct {
	From string
	To   string
	Body string
	At   time.Duration
	Read bool
}

var DemoMessages = []DemoMessage{
	{From: "dispatch@fleetdesk.local", To: "driver@fleetdesk.local", Body: "Memphis load is yours, pickup dock 7.", At: 31 * time.Hour, Read: true},
	{From: "driver@fleetdesk.local", To: "dispatch@fleetdesk.local", Body: "Loaded and rolling.", At: 29 * time.Hour, Read: true},
	{From: "dispatch@fleetdesk.local", To: "driver@fleetdesk.local", Body: "Receiver asks for an ETA update at the state line.", At: 3 * time.Hour},
	{From: "dispatch2@fleetdesk.local", To: "driver2@fleetdesk.local", Body: "New Orleans pickup moved to 14:00.", At: 2 * time.Hour},
	{From: "manager@fleetdesk.local", To: "dispatch@fleetdesk.local", Body: "Please review the CAD invoice for Toronto.", At: 90 * time.Minute},
	{From: "driver3@fleetdesk.local", To: "dispatch2@fleetdesk.local", Body: "Available from Thursday.", At: 45 * time.Minute},
}

// MessageSeedFunc creates the demo messages unless the first sender
// already has conversations. Unknown emails are skipped.
func MessageSeedFunc(demos ...DemoMessage) application.SeedFunc {
	return func(ctx context.Context, app application.Application) error {
		if len(demos) == 0 {
			return nil
		}
		users := corepersistence.NewUserRepository()
		repo := persistence.NewMessageRepository()
		logger := app.Logger().WithField("component", "seed")

		return composables.InTx(ctx, func(txCtx context.Context) error {
			ids := map[string]uuid.UUID{}
			resolve := func(email string) (uuid.UUID, bool) {
				if id, ok := ids[email]; ok {
					return id, true
				}
				u, err := users.GetByEmail(txCtx, email)
				if err != nil {
					return uuid.Nil, false
				}
				ids[email] = u.ID()
				return u.ID(), true
			}

			first, ok := resolve(demos[0].From)
			if !ok {
				logger.Infof("demo user %s missing, skipping messages", demos[0].From)
				return nil
			}
			inbox, err := repo.Inbox(txCtx, first)
			if err != nil {
				return err
			}
			if len(inbox) > 0 {
				logger.Infof("%d conversations already exist", len(inbox))
				return nil
			}

			now := time.Now().UTC().Truncate(time.Minute)
			for _, demo := range demos {
				from, okFrom := resolve(demo.From)
				to, okTo := resolve(demo.To)
				if !okFrom || !okTo {
					logger.Infof("skipping message %s -> %s", demo.From, demo.To)
					continue
				}
				m := message.New(from, to, demo.Body, nil)
				m.CreatedAt = now.Add(-demo.At)
				if demo.Read {
					readAt := m.CreatedAt.Add(time.Minute)
					m.ReadAt = &readAt
				}
				if _, err := repo.Create(txCtx, m); err != nil {
					return err
				}
			}
			logger.Infof("Created %d demo messages", len(demos))
			return nil
		})
	}
}
