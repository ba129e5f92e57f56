package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/fleetdesk/fleetdesk/modules/core/domain/entities/session"
	"github.com/fleetdesk/fleetdesk/modules/core/infrastructure/persistence/models"
	"github.com/fleetdesk/fleetdesk/pkg/composables"
	"github.com/fleetdesk/fleetdesk/pkg/repo"
)

const (
	sessionFindQuery = `
        SELECT token, user_id, ip, user_agent, expires_at, created_at
        FROM sessions
        WHERE token = $1`

	sessionDeleteQuery        = `DELETE FROM sessions WHERE token = $1`
	sessionDeleteExpiredQuery = `DELETE FROM sessions WHERE expires_at <= NOW()`
)

type PgSessionRepository struct{}

func NewSessionRepository() session.Repository {
	return &PgSessionRepository{}
}

func (g *PgSessionRepository) GetByToken(ctx context.Context, token string) (*session.Session, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}
	var s models.Session
	err = tx.QueryRow(ctx, sessionFindQuery, token).Scan(
		&s.Token,
		&s.UserID,
		&s.IP,
		&s.UserAgent,
		&s.ExpiresAt,
		&s.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to query session")
	}
	return ToDomainSession(&s), nil
}

func (g *PgSessionRepository) Create(ctx context.Context, data *session.Session) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}
	s := ToDBSession(data)
	q := repo.Insert("sessions", []string{"token", "user_id", "ip", "user_agent", "expires_at", "created_at"})
	if _, err := tx.Exec(ctx, q, s.Token, s.UserID, s.IP, s.UserAgent, s.ExpiresAt, s.CreatedAt); err != nil {
		return errors.Wrap(err, "failed to insert session")
	}
	return nil
}

func (g *PgSessionRepository) Delete(ctx context.Context, token string) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}
	if _, err := tx.Exec(ctx, sessionDeleteQuery, token); err != nil {
		return errors.Wrap(err, "failed to delete session")
	}
	return nil
}

func (g *PgSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get transaction")
	}
	tag, err := tx.Exec(ctx, sessionDeleteExpiredQuery)
	if err != nil {
		return 0, errors.Wrap(err, "failed to delete expired sessions")
	}
	return tag.RowsAffected(), nil
}
