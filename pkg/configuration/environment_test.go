package configuration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv_FallsBackToGoModRoot(t *testing.T) {
	tmp := t.TempDir()

	requireWriteFile(t, filepath.Join(tmp, "go.mod"), "module example.com/test\n\ngo 1.22\n")
	requireWriteFile(t, filepath.Join(tmp, ".env.local"), "FLEETDESK_TEST_ENV_LOAD=ok\n")

	sub := filepath.Join(tmp, "pkg", "crud")
	requireMkdirAll(t, sub)

	origWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	if err := os.Chdir(sub); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	_ = os.Unsetenv("FLEETDESK_TEST_ENV_LOAD")
	t.Cleanup(func() { _ = os.Unsetenv("FLEETDESK_TEST_ENV_LOAD") })

	n, err := LoadEnv([]string{".env", ".env.local"})
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 env file loaded, got %d", n)
	}
	if got := os.Getenv("FLEETDESK_TEST_ENV_LOAD"); got != "ok" {
		t.Fatalf("expected env var loaded from repo root, got %q", got)
	}
}

func TestRateLimitOptions_Validate(t *testing.T) {
	cases := []struct {
		name    string
		opts    RateLimitOptions
		wantErr bool
	}{
		{name: "memory ok", opts: RateLimitOptions{GlobalRPS: 10, Storage: "memory"}},
		{name: "negative", opts: RateLimitOptions{GlobalRPS: -1, Storage: "memory"}, wantErr: true},
		{name: "unknown storage", opts: RateLimitOptions{GlobalRPS: 1, Storage: "disk"}, wantErr: true},
		{name: "redis without url", opts: RateLimitOptions{GlobalRPS: 1, Storage: "redis"}, wantErr: true},
		{name: "redis with url", opts: RateLimitOptions{GlobalRPS: 1, Storage: "redis", RedisURL: "redis://localhost:6379"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.opts.Validate()
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestConfiguration_Validate(t *testing.T) {
	base := func() *Configuration {
		return &Configuration{
			RateLimit:   RateLimitOptions{GlobalRPS: 1, Storage: "memory"},
			Docstore:    DocstoreOptions{Backend: "memory"},
			Authz:       AuthzOptions{Mode: "Enforce"},
			Realtime:    RealtimeOptions{Enabled: true, Channel: "fleetdesk_messages"},
			PageSize:    25,
			MaxPageSize: 100,
		}
	}

	c := base()
	require.NoError(t, c.validate())
	assert.Equal(t, "enforce", c.Authz.Mode)

	c = base()
	c.Docstore.Backend = "redis"
	require.Error(t, c.validate())

	c = base()
	c.Authz.Mode = "audit"
	require.Error(t, c.validate())

	c = base()
	c.MaxPageSize = 10
	require.Error(t, c.validate())
}

func requireWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func requireMkdirAll(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
}
