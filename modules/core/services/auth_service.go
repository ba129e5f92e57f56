package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fleetdesk/fleetdesk/modules/core/domain/aggregates/user"
	"github.com/fleetdesk/fleetdesk/modules/core/domain/entities/session"
	"github.com/fleetdesk/fleetdesk/pkg/composables"
	"github.com/fleetdesk/fleetdesk/pkg/configuration"
	"github.com/fleetdesk/fleetdesk/pkg/eventbus"
)

type AuthService struct {
	usersService   *UserService
	sessionService *SessionService
	publisher      eventbus.EventBus
	sessionTTL     time.Duration
}

func NewAuthService(usersService *UserService, sessionService *SessionService, publisher eventbus.EventBus, sessionTTL time.Duration) *AuthService {
	return &AuthService{
		usersService:   usersService,
		sessionService: sessionService,
		publisher:      publisher,
		sessionTTL:     sessionTTL,
	}
}

// Login checks the credentials and opens a session. An unknown email and
// a wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (user.User, *session.Session, error) {
	logger := composables.UseLogger(ctx).WithField("component", "auth")

	u, err := s.usersService.GetByEmail(ctx, email)
	if errors.Is(err, user.ErrNotFound) {
		logger.Info("login with unknown email")
		return nil, nil, user.ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, err
	}
	if !u.CheckPassword(password) {
		logger.WithField("user_id", u.ID()).Info("login with wrong password")
		return nil, nil, user.ErrInvalidCredentials
	}
	if !u.Active() {
		return nil, nil, user.ErrInactive
	}

	sess, err := s.authenticate(ctx, u)
	if err != nil {
		return nil, nil, err
	}
	ip, _ := composables.UseIP(ctx)
	s.publisher.Publish(&user.LoggedInEvent{Result: u, IP: ip})
	logger.WithFields(logrus.Fields{"user_id": u.ID(), "role": u.Role()}).Info("user logged in")
	return u, sess, nil
}

func (s *AuthService) authenticate(ctx context.Context, u user.User) (*session.Session, error) {
	ip, ok := composables.UseIP(ctx)
	if !ok {
		ip = "0.0.0.0"
	}
	userAgent, ok := composables.UseUserAgent(ctx)
	if !ok {
		userAgent = "Unknown"
	}
	sess, err := session.New(u.ID(), ip, userAgent, s.sessionTTL)
	if err != nil {
		return nil, err
	}
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		if err := s.usersService.UpdateLastLogin(txCtx, u.ID()); err != nil {
			return err
		}
		return s.sessionService.Create(txCtx, sess)
	})
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// Authenticate resolves a session token to its user. Expired sessions are
// removed.
func (s *AuthService) Authenticate(ctx context.Context, token string) (user.User, *session.Session, error) {
	sess, err := s.sessionService.GetByToken(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	if sess.IsExpired() {
		if err := s.sessionService.Delete(ctx, token); err != nil {
			composables.UseLogger(ctx).WithError(err).Warn("failed to delete expired session")
		}
		return nil, nil, session.ErrExpired
	}
	u, err := s.usersService.repo.GetByID(ctx, sess.UserID)
	if errors.Is(err, user.ErrNotFound) {
		return nil, nil, session.ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	if !u.Active() {
		return nil, nil, user.ErrInactive
	}
	return u, sess, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessionService.Delete(ctx, token)
}

// Cookie carries the session token. It is HttpOnly and only Secure in
// production.
func (s *AuthService) Cookie(sess *session.Session) *http.Cookie {
	conf := configuration.Use()
	domain := ""
	if conf.GoAppEnvironment == configuration.Production {
		domain = conf.Domain
	}
	return &http.Cookie{
		Name:     conf.SidCookieKey,
		Value:    sess.Token,
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   conf.GoAppEnvironment == configuration.Production,
		Domain:   domain,
		Path:     "/",
	}
}

// ExpiredCookie clears the session cookie.
func (s *AuthService) ExpiredCookie() *http.Cookie {
	conf := configuration.Use()
	return &http.Cookie{
		Name:     conf.SidCookieKey,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
