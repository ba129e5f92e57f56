package testhelpers

import (
	"context"

	"github.com/fleetdesk/fleetdesk/modules/core/domain/aggregates/user"
	"github.com/fleetdesk/fleetdesk/modules/core/domain/entities/session"
	"github.com/fleetdesk/fleetdesk/pkg/itf"
)

// TokenAuth authenticates a bearer token by looking it up as a key.
type TokenAuth map[string]user.User

func (a TokenAuth) Authenticate(ctx context.Context, token string) (user.User, *session.Session, error) {
	u, ok := a[token]
	if !ok {
		return nil, nil, session.ErrNotFound
	}
	return u, &session.Session{Token: token, UserID: u.ID()}, nil
}

// RoleTokens maps every role name to a fresh user of that role, so tests
// can authenticate with "Bearer driver".
func RoleTokens() TokenAuth {
	auth := TokenAuth{}
	for _, role := range user.Roles {
		auth[string(role)] = itf.User(role)
	}
	return auth
}
