// Package file provides the TOML-backed configuration store for the
// identity CLI, with environment-variable overrides and hot reload.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
)

// Config holds the client-side configuration for the identity core.
// File values are overridden by environment variables.
type Config struct {
	Backend BackendConfig `toml:"backend"`
	OAuth   OAuthConfig   `toml:"oauth"`
	Consent ConsentConfig `toml:"consent"`
}

// BackendConfig locates the Catalyst backend API.
type BackendConfig struct {
	// BaseURL is the API root including the /api prefix.
	BaseURL string `toml:"base_url" env:"CATALYST_BACKEND_URL"`
	// TimeoutSeconds is the per-request timeout.
	TimeoutSeconds int `toml:"timeout_seconds" env:"CATALYST_BACKEND_TIMEOUT"`
}

// OAuthConfig holds the sign-in OAuth client settings. The redirect URI must
// exactly match the URI registered with the provider.
type OAuthConfig struct {
	Provider    string   `toml:"provider" env:"CATALYST_OAUTH_PROVIDER"`
	ClientID    string   `toml:"client_id" env:"CATALYST_OAUTH_CLIENT_ID"`
	RedirectURI string   `toml:"redirect_uri" env:"CATALYST_OAUTH_REDIRECT_URI"`
	Scopes      []string `toml:"scopes" env:"CATALYST_OAUTH_SCOPES" envSeparator:","`
	AccessType  string   `toml:"access_type" env:"CATALYST_OAUTH_ACCESS_TYPE"`
}

// ConsentConfig tunes the consent window flow for connector linking.
type ConsentConfig struct {
	// PortStart and PortEnd bound the local callback listener port range.
	PortStart int `toml:"port_start" env:"CATALYST_CONSENT_PORT_START"`
	// PortEnd is the inclusive upper bound.
	PortEnd int `toml:"port_end" env:"CATALYST_CONSENT_PORT_END"`
	// TimeoutSeconds caps how long a consent window may stay open.
	TimeoutSeconds int `toml:"timeout_seconds" env:"CATALYST_CONSENT_TIMEOUT"`
}

// DefaultConfig returns the built-in configuration values.
func DefaultConfig() Config {
	return Config{
		Backend: BackendConfig{
			BaseURL:        "http://localhost:5003/api",
			TimeoutSeconds: 30,
		},
		OAuth: OAuthConfig{
			Provider:    "google.com",
			RedirectURI: "http://localhost:53682/callback",
			Scopes:      []string{"openid", "email", "profile"},
			AccessType:  "offline",
		},
		Consent: ConsentConfig{
			PortStart:      53690,
			PortEnd:        53790,
			TimeoutSeconds: 300,
		},
	}
}

// ConfigStore loads configuration from a TOML file and applies environment
// overrides on every load.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	config   Config
}

// NewConfigStore creates a TOML-based config store.
// If configDir is empty, defaults to ~/.catalyst/config.toml.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".catalyst")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	s := &ConfigStore{
		filePath: filepath.Join(configDir, "config.toml"),
		config:   DefaultConfig(),
	}

	if err := s.Load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	return s, nil
}

// Config returns the current configuration snapshot.
func (s *ConfigStore) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// Path returns the config file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}

// Load reads the file and reapplies environment overrides. A missing file
// leaves the defaults (plus env) in place and reports os.ErrNotExist.
func (s *ConfigStore) Load() error {
	cfg := DefaultConfig()

	data, readErr := os.ReadFile(s.filePath)
	if readErr == nil {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("parsing %s: %w", s.filePath, err)
		}
	}

	// Environment wins over the file.
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("applying environment overrides: %w", err)
	}

	s.mu.Lock()
	s.config = cfg
	s.mu.Unlock()

	return readErr
}

// Save writes the current configuration to the file.
func (s *ConfigStore) Save() error {
	s.mu.RLock()
	data, err := toml.Marshal(s.config)
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(s.filePath, data, 0600)
}
