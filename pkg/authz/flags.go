package authz

import (
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Mode is the enforcement mode applied to every check.
type Mode string

const (
	ModeDisabled Mode = "disabled"
	ModeShadow   Mode = "shadow"
	ModeEnforce  Mode = "enforce"
)

type FlagProvider interface {
	Mode() Mode
}

type staticFlagProvider Mode

// NewStaticFlagProvider always reports mode.
func NewStaticFlagProvider(mode Mode) FlagProvider {
	return staticFlagProvider(sanitizeMode(mode))
}

func (s staticFlagProvider) Mode() Mode {
	return Mode(s)
}

// flagFile is the YAML document behind AUTHZ_FLAG_CONFIG.
type flagFile struct {
	Mode string `yaml:"mode"`
}

// FileFlagProvider re-reads the flag file whenever its modification time
// changes, so the mode can be flipped on a running server. Until the file has
// been read successfully the fallback applies; afterwards an unreadable or
// empty file keeps the last good mode.
type FileFlagProvider struct {
	path     string
	fallback Mode

	mu      sync.Mutex
	modTime time.Time
	current Mode
}

func NewFileFlagProvider(path string, fallback Mode) FlagProvider {
	return &FileFlagProvider{
		path:     path,
		fallback: sanitizeMode(fallback),
	}
}

func (p *FileFlagProvider) Mode() Mode {
	p.mu.Lock()
	defer p.mu.Unlock()

	if mode, ok := p.reload(); ok {
		p.current = mode
	}
	if p.current == "" {
		return p.fallback
	}
	return p.current
}

// reload reports false when the file is missing, unchanged or unusable.
func (p *FileFlagProvider) reload() (Mode, bool) {
	info, err := os.Stat(p.path)
	if err != nil || (p.current != "" && info.ModTime().Equal(p.modTime)) {
		return "", false
	}
	data, err := os.ReadFile(p.path)
	if err != nil {
		return "", false
	}
	var doc flagFile
	if err := yaml.Unmarshal(data, &doc); err != nil || strings.TrimSpace(doc.Mode) == "" {
		return "", false
	}
	p.modTime = info.ModTime()
	return sanitizeMode(Mode(doc.Mode)), true
}

// sanitizeMode maps unknown values to shadow: checks are logged but allowed.
func sanitizeMode(mode Mode) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(string(mode)))) {
	case ModeDisabled:
		return ModeDisabled
	case ModeEnforce:
		return ModeEnforce
	default:
		return ModeShadow
	}
}
