package middleware

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gorilla/mux"

	"github.com/fleetdesk/fleetdesk/modules/core/domain/aggregates/user"
	"github.com/fleetdesk/fleetdesk/modules/core/domain/entities/session"
	"github.com/fleetdesk/fleetdesk/pkg/composables"
	"github.com/fleetdesk/fleetdesk/pkg/httpapi"
	"github.com/fleetdesk/fleetdesk/pkg/serrors"
)

const CodeUnauthenticated = "UNAUTHENTICATED"

// SessionAuthenticator resolves a session token to its user.
type SessionAuthenticator interface {
	Authenticate(ctx context.Context, token string) (user.User, *session.Session, error)
}

// Authorize resolves the session token carried by the request and stores
// the user and session in the context. Requests without a valid token pass
// through anonymous; RequireUser rejects them where needed.
//
// Tokens are tried in order: the cookie, the Authorization bearer header,
// and for websocket upgrades the token query parameter. The first one that
// resolves wins, so a stale cookie does not mask a valid bearer token.
func Authorize(auth SessionAuthenticator, cookieKey string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, token := range TokensFromRequest(r, cookieKey) {
				u, sess, err := auth.Authenticate(r.Context(), token)
				if err != nil {
					if serrors.KindOf(err) != serrors.KindUnauthenticated && serrors.KindOf(err) != serrors.KindForbidden {
						composables.UseLogger(r.Context()).WithError(err).Error("failed to resolve session")
					}
					continue
				}
				ctx := composables.WithUser(r.Context(), u)
				ctx = composables.WithSession(ctx, sess)
				if params, ok := composables.UseParams(ctx); ok {
					params.Authenticated = true
				}
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireUser answers 401 when no user is present in the context.
func RequireUser() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := composables.UseUser(r.Context()); err != nil {
				if !errors.Is(err, composables.ErrNoUserFound) {
					composables.UseLogger(r.Context()).WithError(err).Warn("unexpected user lookup error")
				}
				httpapi.WriteError(w, r, http.StatusUnauthorized, CodeUnauthenticated, "authentication required", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// TokensFromRequest lists the distinct non-empty session tokens carried by
// r in lookup order.
func TokensFromRequest(r *http.Request, cookieKey string) []string {
	var out []string
	add := func(t string) {
		if t = strings.TrimSpace(t); t != "" && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	if cookieKey != "" {
		if c, err := r.Cookie(cookieKey); err == nil {
			add(c.Value)
		}
	}
	add(bearerToken(r))
	if isWebsocketUpgrade(r) {
		add(r.URL.Query().Get("token"))
	}
	return out
}

func bearerToken(r *http.Request) string {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(auth) > len("bearer ") && strings.EqualFold(auth[:len("bearer ")], "bearer ") {
		return strings.TrimSpace(auth[len("bearer "):])
	}
	return ""
}

func isWebsocketUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}
