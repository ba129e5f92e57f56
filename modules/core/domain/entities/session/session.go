package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk/pkg/serrors"
)

const tokenBytes = 24

var (
	ErrNotFound = serrors.Unauthenticated("SESSION_NOT_FOUND", "session not found")
	ErrExpired  = serrors.Unauthenticated("SESSION_EXPIRED", "session expired")
)

type Session struct {
	Token     string
	UserID    uuid.UUID
	IP        string
	UserAgent string
	ExpiresAt time.Time
	CreatedAt time.Time
}

func New(userID uuid.UUID, ip, userAgent string, ttl time.Duration) (*Session, error) {
	token, err := NewToken()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Session{
		Token:     token,
		UserID:    userID,
		IP:        ip,
		UserAgent: userAgent,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}, nil
}

// NewToken returns 24 random bytes encoded as unpadded base64url.
func NewToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func (s *Session) IsExpired() bool {
	return !s.ExpiresAt.After(time.Now())
}

type Repository interface {
	GetByToken(ctx context.Context, token string) (*Session, error)
	Create(ctx context.Context, s *Session) error
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) (int64, error)
}
