package authz

import (
	"embed"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/fleetdesk/fleetdesk/pkg/configuration"
)

//go:embed defaults/model.conf defaults/policy.csv
var defaultFiles embed.FS

// Config captures all inputs necessary to initialize the Casbin enforcer.
// Empty paths select the embedded default model and policy.
type Config struct {
	ModelPath    string
	PolicyPath   string
	FlagPath     string
	FlagMode     Mode
	Logger       *logrus.Logger
	FlagProvider FlagProvider
}

func (c Config) validate() error {
	if c.FlagPath == "" && c.FlagProvider == nil && c.FlagMode == "" {
		return configError("missing flag configuration")
	}
	return nil
}

func (c Config) normalized() Config {
	if c.ModelPath != "" {
		c.ModelPath = filepath.Clean(c.ModelPath)
	}
	if c.PolicyPath != "" {
		c.PolicyPath = filepath.Clean(c.PolicyPath)
	}
	if c.FlagPath != "" {
		c.FlagPath = filepath.Clean(c.FlagPath)
	}
	return c
}

func (c Config) modelText() (string, error) {
	return readOrDefault(c.ModelPath, "defaults/model.conf")
}

func (c Config) policyText() (string, error) {
	return readOrDefault(c.PolicyPath, "defaults/policy.csv")
}

func readOrDefault(path, embedded string) (string, error) {
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return "", configError("read %s: %v", path, err)
		}
		return string(b), nil
	}
	b, err := defaultFiles.ReadFile(embedded)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DefaultConfig reads AUTHZ_* from the configuration. AUTHZ_MODE is the
// fallback while the flag file is absent.
func DefaultConfig() Config {
	cfg := configuration.Use()
	return Config{
		ModelPath:  cfg.Authz.ModelPath,
		PolicyPath: cfg.Authz.PolicyPath,
		FlagPath:   cfg.Authz.FlagConfigPath,
		FlagMode:   sanitizeMode(Mode(cfg.Authz.Mode)),
		Logger:     cfg.Logger(),
	}
}
