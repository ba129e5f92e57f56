package authz

import (
	"context"
	"fmt"
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	stringadapter "github.com/casbin/casbin/v2/persist/string-adapter"
	"github.com/sirupsen/logrus"
)

// Service provides helpers for enforcing authorization decisions.
type Service struct {
	cfg          Config
	enforcer     *casbin.Enforcer
	logger       *logrus.Entry
	flagProvider FlagProvider
	mu           sync.RWMutex
}

// NewService constructs a Service with the provided config.
func NewService(cfg Config) (*Service, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg = cfg.normalized()

	var logger *logrus.Entry
	if cfg.Logger != nil {
		logger = cfg.Logger.WithField("component", "authz")
	} else {
		logger = logrus.WithField("component", "authz")
	}

	enf, err := newEnforcer(cfg)
	if err != nil {
		return nil, err
	}

	provider := cfg.FlagProvider
	if provider == nil {
		if cfg.FlagPath != "" {
			provider = NewFileFlagProvider(cfg.FlagPath, cfg.FlagMode)
		} else {
			provider = NewStaticFlagProvider(cfg.FlagMode)
		}
	}

	return &Service{
		cfg:          cfg,
		enforcer:     enf,
		logger:       logger,
		flagProvider: provider,
	}, nil
}

func newEnforcer(cfg Config) (*casbin.Enforcer, error) {
	modelText, err := cfg.modelText()
	if err != nil {
		return nil, err
	}
	policyText, err := cfg.policyText()
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("authz: failed to parse model: %w", err)
	}
	enf, err := casbin.NewEnforcer(m, stringadapter.NewAdapter(policyText))
	if err != nil {
		return nil, fmt.Errorf("authz: failed to initialize enforcer: %w", err)
	}
	if err := enf.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("authz: failed to load policies: %w", err)
	}
	return enf, nil
}

// Mode returns the current enforcement mode.
func (s *Service) Mode() Mode {
	return s.flagProvider.Mode()
}

// Authorize returns an error if the request is denied. In shadow mode
// denials are logged and the request is allowed.
func (s *Service) Authorize(ctx context.Context, req Request) error {
	mode := s.flagProvider.Mode()
	if mode == ModeDisabled {
		return nil
	}

	allowed, err := s.Check(ctx, req)
	if err != nil {
		return err
	}
	recordDecision(mode, req.Object, allowed)
	if allowed {
		return nil
	}

	entry := s.logger.WithContext(ctx).WithFields(logrus.Fields{
		"subject": req.Subject,
		"object":  req.Object,
		"action":  req.Action,
		"mode":    mode,
	})
	if mode == ModeEnforce {
		entry.Warn("authz denied request")
		return forbiddenError(req)
	}
	entry.Warn("authz shadow deny")
	return nil
}

// Check evaluates a request without returning an authorization error.
func (s *Service) Check(ctx context.Context, req Request) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res, err := s.enforcer.Enforce(req.Subject, req.Object, req.Action)
	if err != nil {
		return false, fmt.Errorf("authz: enforce failed: %w", err)
	}
	return res, nil
}

// Capabilities evaluates every object/action pair for subject and returns
// a map keyed by "object.action". Disabled mode grants everything.
func (s *Service) Capabilities(ctx context.Context, subject string, objects map[string][]string) map[string]bool {
	out := make(map[string]bool)
	disabled := s.Mode() == ModeDisabled
	for object, actions := range objects {
		for _, action := range actions {
			key := object + objectSeparator + NormalizeAction(action)
			if disabled {
				out[key] = true
				continue
			}
			allowed, err := s.Check(ctx, NewRequest(subject, object, action))
			if err != nil {
				s.logger.WithError(err).WithField("capability", key).Warn("failed to evaluate capability")
			}
			out[key] = allowed
		}
	}
	return out
}

// ReloadPolicy rebuilds the enforcer from the configured sources.
func (s *Service) ReloadPolicy(ctx context.Context) error {
	enf, err := newEnforcer(s.cfg)
	if err != nil {
		return fmt.Errorf("authz: reload policy failed: %w", err)
	}
	s.mu.Lock()
	s.enforcer = enf
	s.mu.Unlock()
	s.logger.WithContext(ctx).Info("authz policy reloaded")
	return nil
}

var (
	defaultMu      sync.Mutex
	defaultService *Service
)

// Use returns a singleton Service configured via environment variables.
func Use() *Service {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultService == nil {
		svc, err := NewService(DefaultConfig())
		if err != nil {
			panic(err)
		}
		defaultService = svc
	}
	return defaultService
}

// SetDefault replaces the singleton returned by Use.
func SetDefault(svc *Service) {
	defaultMu.Lock()
	defaultService = svc
	defaultMu.Unlock()
}
