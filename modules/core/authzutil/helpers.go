// Package authzutil binds the casbin service to the authenticated user.
package authzutil

import (
	"context"
	"strings"

	"github.com/fleetdesk/fleetdesk/modules/core/domain/aggregates/user"
	"github.com/fleetdesk/fleetdesk/pkg/authz"
	"github.com/fleetdesk/fleetdesk/pkg/composables"
)

type systemActorKey struct{}

// WithSystemActor marks ctx as acting on behalf of an internal job such as
// the seeder or the realtime listener. Checks are skipped for it.
func WithSystemActor(ctx context.Context, actor string) context.Context {
	actor = strings.ToLower(strings.TrimSpace(actor))
	if actor == "" {
		return ctx
	}
	return context.WithValue(ctx, systemActorKey{}, "system:"+actor)
}

// SystemActor returns the internal actor stored in ctx.
func SystemActor(ctx context.Context) (string, bool) {
	actor, ok := ctx.Value(systemActorKey{}).(string)
	return actor, ok && actor != ""
}

// SubjectForUser returns the casbin subject of the user's role.
func SubjectForUser(u user.User) string {
	return authz.SubjectForRole(string(u.Role()))
}

// CapabilityKey normalizes object/action into "object.action".
func CapabilityKey(object, action string) string {
	return strings.ToLower(object) + "." + authz.NormalizeAction(action)
}

// Authorize checks object/action for the user in ctx. Calls without a user
// come from internal code paths and are allowed.
func Authorize(ctx context.Context, object, action string) error {
	if _, ok := SystemActor(ctx); ok {
		return nil
	}
	u, err := composables.UseUser(ctx)
	if err != nil || u == nil {
		return nil
	}
	return authz.Use().Authorize(ctx, authz.NewRequest(SubjectForUser(u), object, action))
}

// Can reports whether the user may perform action on object without
// producing an error. Shadow mode reports the real decision.
func Can(ctx context.Context, u user.User, object, action string) bool {
	if u == nil {
		return false
	}
	svc := authz.Use()
	if svc.Mode() == authz.ModeDisabled {
		return true
	}
	allowed, err := svc.Check(ctx, authz.NewRequest(SubjectForUser(u), object, action))
	if err != nil {
		composables.UseLogger(ctx).WithError(err).Warn("capability check failed")
		return false
	}
	return allowed
}

// Capabilities evaluates every object/action pair for the user.
func Capabilities(ctx context.Context, u user.User, objects map[string][]string) map[string]bool {
	if u == nil {
		return map[string]bool{}
	}
	return authz.Use().Capabilities(ctx, SubjectForUser(u), objects)
}
