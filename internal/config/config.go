// Package config loads batch run configuration from a TOML, YAML or JSON
// file, with OASTEST_ prefixed environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/moamenhredeen/oastest/internal/tester"
)

// EnvPrefix prefixes environment overrides, e.g. OASTEST_CONCURRENCY.
const EnvPrefix = "OASTEST"

// Config is a batch run.
type Config struct {
	Concurrency int           `mapstructure:"concurrency"`
	Timeout     time.Duration `mapstructure:"timeout"`
	// RateLimit is in requests per second; 0 disables throttling.
	RateLimit float64  `mapstructure:"rate_limit"`
	LogLevel  string   `mapstructure:"log_level"`
	Targets   []Target `mapstructure:"targets"`
}

// Target is one document and the server and credentials to test it with.
type Target struct {
	Name        string `mapstructure:"name"`
	Path        string `mapstructure:"path"`
	Server      string `mapstructure:"server"`
	APIKey      string `mapstructure:"api_key"`
	BearerToken string `mapstructure:"bearer_token"`
	OAuthToken  string `mapstructure:"oauth_token"`
	BasicAuth   string `mapstructure:"basic_auth"`
}

// Load reads the configuration file at path. The format follows the file
// extension.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("concurrency", tester.DefaultConcurrency)
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("rate_limit", 0)
	// no default: an unset level defers to the command line
	_ = v.BindEnv("log_level")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}
	cfg.expandEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// expandEnv resolves ${VAR} references in target locations and credentials.
func (c *Config) expandEnv() {
	for i := range c.Targets {
		t := &c.Targets[i]
		t.Path = os.ExpandEnv(t.Path)
		t.Server = os.ExpandEnv(t.Server)
		t.APIKey = os.ExpandEnv(t.APIKey)
		t.BearerToken = os.ExpandEnv(t.BearerToken)
		t.OAuthToken = os.ExpandEnv(t.OAuthToken)
		t.BasicAuth = os.ExpandEnv(t.BasicAuth)
	}
}

// Validate reports every problem of the configuration at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("concurrency must not be negative, got %d", c.Concurrency))
	}
	if c.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("rate_limit must not be negative, got %g", c.RateLimit))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must not be negative, got %s", c.Timeout))
	}
	if len(c.Targets) == 0 {
		errs = append(errs, errors.New("no targets configured"))
	}

	seen := make(map[string]bool)
	for i, t := range c.Targets {
		if t.Name == "" {
			errs = append(errs, fmt.Errorf("target %d: name is required", i))
		} else if seen[t.Name] {
			errs = append(errs, fmt.Errorf("target %d: duplicate name %q", i, t.Name))
		}
		seen[t.Name] = true
		if t.Path == "" {
			errs = append(errs, fmt.Errorf("target %d: path is required", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// TesterTargets converts the configured targets for the tester.
func (c *Config) TesterTargets() []tester.Target {
	targets := make([]tester.Target, len(c.Targets))
	for i, t := range c.Targets {
		targets[i] = tester.Target{
			Name:   t.Name,
			Path:   t.Path,
			Server: t.Server,
			Credentials: tester.Credentials{
				APIKey:      t.APIKey,
				BearerToken: t.BearerToken,
				OAuthToken:  t.OAuthToken,
				BasicAuth:   t.BasicAuth,
			},
		}
	}
	return targets
}
