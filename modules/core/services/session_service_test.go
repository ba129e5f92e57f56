package services

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdesk/fleetdesk/modules/core/domain/entities/session"
	"github.com/fleetdesk/fleetdesk/modules/core/testhelpers"
)

func TestSessionService_RunCleaner(t *testing.T) {
	repo := testhelpers.NewSessionRepository()
	live, err := session.New(uuid.New(), "127.0.0.1", "test", time.Hour)
	require.NoError(t, err)
	stale, err := session.New(uuid.New(), "127.0.0.1", "test", -time.Minute)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), live))
	require.NoError(t, repo.Create(context.Background(), stale))

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewSessionService(repo).RunCleaner(ctx, time.Hour, logrus.NewEntry(logger))
		close(done)
	}()

	assert.Eventually(t, func() bool {
		_, err := repo.GetByToken(context.Background(), stale.Token)
		return err != nil
	}, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	_, err = repo.GetByToken(context.Background(), live.Token)
	assert.NoError(t, err)
}

func TestSessionService_RunCleanerDisabled(t *testing.T) {
	// A non-positive interval returns at once without touching the repository.
	NewSessionService(nil).RunCleaner(context.Background(), 0, nil)
}
