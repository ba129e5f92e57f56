package authz

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileFlagProvider(t *testing.T) {
	p := NewFileFlagProvider(filepath.Join("testdata", "flags.yaml"), ModeEnforce)
	assert.Equal(t, ModeShadow, p.Mode())
}

func TestFileFlagProvider_MissingFileUsesFallback(t *testing.T) {
	p := NewFileFlagProvider(filepath.Join(t.TempDir(), "absent.yaml"), ModeEnforce)
	assert.Equal(t, ModeEnforce, p.Mode())
}

func TestFileFlagProvider_KeepsLastModeWhenFileDisappears(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flags.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mode: disabled\n"), 0o644))

	p := NewFileFlagProvider(path, ModeEnforce)
	assert.Equal(t, ModeDisabled, p.Mode())

	require.NoError(t, os.Remove(path))
	assert.Equal(t, ModeDisabled, p.Mode())
}

func TestSanitizeMode(t *testing.T) {
	assert.Equal(t, ModeEnforce, sanitizeMode("ENFORCE"))
	assert.Equal(t, ModeShadow, sanitizeMode("bogus"))
}

func TestFileFlagProvider_PicksUpChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flags.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mode: enforce\n"), 0o644))

	p := NewFileFlagProvider(path, ModeDisabled)
	assert.Equal(t, ModeEnforce, p.Mode())

	require.NoError(t, os.WriteFile(path, []byte("mode: shadow\n"), 0o644))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))
	assert.Equal(t, ModeShadow, p.Mode())

	require.NoError(t, os.WriteFile(path, []byte("mode: \"\"\n"), 0o644))
	later = later.Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))
	assert.Equal(t, ModeShadow, p.Mode())
}
