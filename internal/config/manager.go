package config

import (
	"sync"
	"time"

	"github.com/eshaffer321/cmsclient-go/internal/types"
	"github.com/google/uuid"
)

const (
	// MockBaseURL is the fixed base URL served by the in-process mock backend
	MockBaseURL = "http://mock.local/mock-api"

	// DefaultRealBaseURL is used when no real backend URL is configured
	DefaultRealBaseURL = "http://localhost:8000"

	contentType = "application/json"
)

// Configuration is the effective client configuration derived from mode and environment
type Configuration struct {
	Mode           Mode
	Environment    Environment
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	RetryWaitMin   time.Duration
	RetryWaitMax   time.Duration
	MockingEnabled bool
	DefaultHeaders map[string]string
}

func (c Configuration) clone() Configuration {
	headers := make(map[string]string, len(c.DefaultHeaders))
	for k, v := range c.DefaultHeaders {
		headers[k] = v
	}
	c.DefaultHeaders = headers
	return c
}

// ConfigUpdate holds optional overrides for UpdateConfig. Nil fields are left alone.
type ConfigUpdate struct {
	BaseURL        *string
	Timeout        *time.Duration
	MaxRetries     *int
	RetryWaitMin   *time.Duration
	RetryWaitMax   *time.Duration
	MockingEnabled *bool
	DefaultHeaders map[string]string
}

// Manager owns the current Configuration
type Manager struct {
	mu      sync.RWMutex
	cfg     Configuration
	realURL string
	logger  types.Logger
}

// NewManager derives the initial configuration for mode in env. realURL is
// the real backend base URL; empty falls back to DefaultRealBaseURL.
func NewManager(env Environment, mode Mode, realURL string, logger types.Logger) *Manager {
	if logger == nil {
		logger = types.NopLogger{}
	}
	if !mode.IsValid() {
		mode = ModeAuto
	}

	m := &Manager{
		realURL: realURL,
		logger:  logger,
		cfg: Configuration{
			Environment:  env,
			Timeout:      types.DefaultTimeout,
			MaxRetries:   types.DefaultMaxRetries,
			RetryWaitMin: types.DefaultRetryWait,
			RetryWaitMax: types.DefaultMaxRetryWait,
			DefaultHeaders: map[string]string{
				"Accept":       contentType,
				"Content-Type": contentType,
				"User-Agent":   types.UserAgent,
				"X-Device-ID":  uuid.New().String(),
			},
		},
	}
	m.applyMode(mode)
	return m
}

// NewManagerFromSettings builds a Manager from loaded settings
func NewManagerFromSettings(s *Settings, logger types.Logger) *Manager {
	m := NewManager(s.Environment, s.Mode, s.APIURL, logger)
	if s.Timeout > 0 {
		m.cfg.Timeout = s.Timeout
	}
	if s.MaxRetries >= 0 {
		m.cfg.MaxRetries = s.MaxRetries
	}
	return m
}

// GetConfig returns a copy of the current configuration
func (m *Manager) GetConfig() Configuration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg.clone()
}

// SetMode switches mode, recomputing the base URL and mocking flag together
func (m *Manager) SetMode(mode Mode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applyMode(mode)
}

// UpdateConfig shallow-merges overrides over the current configuration.
// Nothing is re-derived until the mode changes again.
func (m *Manager) UpdateConfig(u ConfigUpdate) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if u.BaseURL != nil {
		m.cfg.BaseURL = *u.BaseURL
	}
	if u.Timeout != nil {
		m.cfg.Timeout = *u.Timeout
	}
	if u.MaxRetries != nil {
		m.cfg.MaxRetries = *u.MaxRetries
	}
	if u.RetryWaitMin != nil {
		m.cfg.RetryWaitMin = *u.RetryWaitMin
	}
	if u.RetryWaitMax != nil {
		m.cfg.RetryWaitMax = *u.RetryWaitMax
	}
	if u.MockingEnabled != nil {
		m.cfg.MockingEnabled = *u.MockingEnabled
	}
	if u.DefaultHeaders != nil {
		m.cfg.DefaultHeaders = make(map[string]string, len(u.DefaultHeaders))
		for k, v := range u.DefaultHeaders {
			m.cfg.DefaultHeaders[k] = v
		}
	}
}

// applyMode must be called with mu held
func (m *Manager) applyMode(mode Mode) {
	env := m.cfg.Environment
	m.cfg.Mode = mode
	m.cfg.MockingEnabled = MockingEnabled(mode, env)

	if mode.Resolve(env) == ModeMock {
		m.cfg.BaseURL = MockBaseURL
		return
	}

	if m.realURL == "" {
		m.logger.Warn("No API URL configured, falling back to local default",
			"mode", string(mode), "baseURL", DefaultRealBaseURL)
		m.cfg.BaseURL = DefaultRealBaseURL
		return
	}
	m.cfg.BaseURL = m.realURL
}
