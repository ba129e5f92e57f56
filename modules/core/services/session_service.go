package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fleetdesk/fleetdesk/modules/core/domain/entities/session"
)

type SessionService struct {
	repo session.Repository
}

func NewSessionService(repo session.Repository) *SessionService {
	return &SessionService{repo: repo}
}

func (s *SessionService) GetByToken(ctx context.Context, token string) (*session.Session, error) {
	return s.repo.GetByToken(ctx, token)
}

func (s *SessionService) Create(ctx context.Context, sess *session.Session) error {
	return s.repo.Create(ctx, sess)
}

func (s *SessionService) Delete(ctx context.Context, token string) error {
	return s.repo.Delete(ctx, token)
}

func (s *SessionService) DeleteExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx)
}

// RunCleaner deletes expired sessions once immediately and then every
// interval until ctx is cancelled. ctx must carry the pool.
func (s *SessionService) RunCleaner(ctx context.Context, interval time.Duration, logger *logrus.Entry) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		n, err := s.DeleteExpired(ctx)
		switch {
		case err != nil && ctx.Err() == nil:
			logger.WithError(err).Warn("failed to delete expired sessions")
		case n > 0:
			logger.WithField("deleted", n).Info("expired sessions deleted")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
