package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-faster/errors"
	"github.com/roblaszczak/go-cleanarch/cleanarch"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// archConfig tunes the layering check. Every field is optional.
type archConfig struct {
	Root              string   `yaml:"root"`
	IgnoreTests       bool     `yaml:"ignore_tests"`
	IgnorePackages    []string `yaml:"ignore_packages"`
	SharedModules     []string `yaml:"shared_modules"`
	AllowedViolations []string `yaml:"allow_violations"`
	Aliases           struct {
		Domain         []string `yaml:"domain"`
		Application    []string `yaml:"application"`
		Interfaces     []string `yaml:"interfaces"`
		Infrastructure []string `yaml:"infrastructure"`
	} `yaml:"aliases"`
}

// Modules the others build on: importing their domain is expected.
var defaultSharedModules = []string{"core", "fleet", "contragents"}

var (
	defaultDomainAliases         = []string{"domain", "entities", "aggregates"}
	defaultApplicationAliases    = []string{"services"}
	defaultInterfacesAliases     = []string{"presentation", "controllers", "handlers"}
	defaultInfrastructureAliases = []string{"infrastructure", "persistence"}
)

type archOptions struct {
	ConfigPath string
	Debug      bool
}

func newArchCheckCmd() *cobra.Command {
	var opts archOptions

	cmd := &cobra.Command{
		Use:   "archcheck",
		Short: "Check that module layers only import inwards (domain <- services <- presentation <- infrastructure)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadArchConfig(opts.ConfigPath)
			if err != nil {
				return err
			}
			root, err := filepath.Abs(cfg.Root)
			if err != nil {
				return errors.Wrap(err, "resolve root")
			}

			aliases := map[string]cleanarch.Layer{}
			applyAliases(aliases, cfg.Aliases.Domain, defaultDomainAliases, cleanarch.LayerDomain)
			applyAliases(aliases, cfg.Aliases.Application, defaultApplicationAliases, cleanarch.LayerApplication)
			applyAliases(aliases, cfg.Aliases.Interfaces, defaultInterfacesAliases, cleanarch.LayerInterfaces)
			applyAliases(aliases, cfg.Aliases.Infrastructure, defaultInfrastructureAliases, cleanarch.LayerInfrastructure)

			if opts.Debug {
				cleanarch.Log.SetOutput(cmd.ErrOrStderr())
			}

			ok, errs, err := cleanarch.NewValidator(aliases).Validate(root, cfg.IgnoreTests, cfg.IgnorePackages)
			if err != nil {
				return errors.Wrap(err, "run layering check")
			}
			violations := filterViolations(errs, cfg)
			if !ok && len(violations) > 0 {
				for _, v := range violations {
					fmt.Fprintln(cmd.ErrOrStderr(), v.Error())
				}
				return fmt.Errorf("layering check failed with %d violation(s)", len(violations))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "layering check passed")
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.ConfigPath, "config", ".gocleanarch.yml", "optional YAML config")
	cmd.Flags().BoolVar(&opts.Debug, "debug", false, "print go-cleanarch debug output")
	return cmd
}

// loadArchConfig falls back to the defaults when the file does not exist.
func loadArchConfig(path string) (*archConfig, error) {
	cfg := &archConfig{IgnoreTests: true}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, errors.Wrap(err, "read config")
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(err, "parse config")
		}
	}
	if cfg.Root == "" {
		cfg.Root = "modules"
	}
	if len(cfg.SharedModules) == 0 {
		cfg.SharedModules = defaultSharedModules
	}
	return cfg, nil
}

func applyAliases(dst map[string]cleanarch.Layer, custom, defaults []string, layer cleanarch.Layer) {
	candidates := defaults
	if len(custom) > 0 {
		candidates = custom
	}
	for _, alias := range candidates {
		if alias != "" {
			dst[alias] = layer
		}
	}
}

var crossModulePattern = regexp.MustCompile(`between ([\w-]+) and ([\w-]+) modules`)

func filterViolations(errs []cleanarch.ValidationError, cfg *archConfig) []cleanarch.ValidationError {
	shared := make(map[string]struct{}, len(cfg.SharedModules))
	for _, m := range cfg.SharedModules {
		if m = strings.TrimSpace(m); m != "" {
			shared[m] = struct{}{}
		}
	}

	out := make([]cleanarch.ValidationError, 0, len(errs))
	for _, e := range errs {
		msg := e.Error()
		if touchesShared(msg, shared) || allowed(msg, cfg.AllowedViolations) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func touchesShared(msg string, shared map[string]struct{}) bool {
	m := crossModulePattern.FindStringSubmatch(msg)
	if len(m) != 3 {
		return false
	}
	_, a := shared[m[1]]
	_, b := shared[m[2]]
	return a || b
}

func allowed(msg string, patterns []string) bool {
	for _, p := range patterns {
		if p != "" && strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
