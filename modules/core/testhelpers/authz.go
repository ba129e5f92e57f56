// Package testhelpers holds in-memory core repositories and authz helpers
// shared by service and controller tests across modules.
package testhelpers

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fleetdesk/fleetdesk/pkg/authz"
)

// MustEnforce installs an enforcing authz service with the embedded
// policy. Use it from TestMain.
func MustEnforce() {
	svc, err := authz.NewService(authz.Config{FlagMode: authz.ModeEnforce})
	if err != nil {
		panic(err)
	}
	authz.SetDefault(svc)
}

// WithAuthzMode swaps the default authz service for one in mode until the
// test ends.
func WithAuthzMode(t *testing.T, mode authz.Mode) {
	t.Helper()
	previous := authz.Use()
	svc, err := authz.NewService(authz.Config{FlagMode: mode})
	require.NoError(t, err)
	authz.SetDefault(svc)
	t.Cleanup(func() { authz.SetDefault(previous) })
}
