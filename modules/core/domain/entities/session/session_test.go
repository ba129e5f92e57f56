package session

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	uid := uuid.New()
	s, err := New(uid, "10.0.0.1", "curl", time.Hour)
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(s.Token)
	require.NoError(t, err)
	assert.Len(t, raw, 24)
	assert.Equal(t, uid, s.UserID)
	assert.False(t, s.IsExpired())

	other, err := New(uid, "", "", time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, s.Token, other.Token)
}

func TestIsExpired(t *testing.T) {
	s := &Session{ExpiresAt: time.Now().Add(-time.Second)}
	assert.True(t, s.IsExpired())
}
