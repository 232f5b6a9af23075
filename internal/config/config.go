// File: internal/config/config.go
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Platform PlatformConfig `mapstructure:"platform" yaml:"platform"`
	Training TrainingConfig `mapstructure:"training" yaml:"training"`
	Network  NetworkConfig  `mapstructure:"network" yaml:"network"`
	Sync     SyncConfig     `mapstructure:"sync" yaml:"sync"`
	Logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
}

// PlatformConfig holds the connection details for the source platform
// (a Contrast TeamServer compatible deployment, hosted or on-premise).
type PlatformConfig struct {
	BaseURL    string `mapstructure:"base_url" yaml:"base_url"`
	OrgID      string `mapstructure:"org_id" yaml:"org_id"`
	APIKey     string `mapstructure:"api_key" yaml:"-"`
	AuthHeader string `mapstructure:"auth_header" yaml:"-"`
	Username   string `mapstructure:"username" yaml:"username"`
	ServiceKey string `mapstructure:"service_key" yaml:"-"`
}

// TrainingConfig holds the connection details for the Secure Code Warrior
// integration API.
type TrainingConfig struct {
	BaseURL       string  `mapstructure:"base_url" yaml:"base_url"`
	IntegrationID string  `mapstructure:"integration_id" yaml:"integration_id"`
	RateLimit     float64 `mapstructure:"rate_limit" yaml:"rate_limit"`
}

// NetworkConfig tunes the outbound HTTP behavior shared by both clients.
type NetworkConfig struct {
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// SyncConfig controls the behavior of a synchronization pass.
type SyncConfig struct {
	// ContinueOnError keeps the pass going after a per-rule failure and
	// reports the failures at the end. When false the first failure aborts.
	ContinueOnError bool `mapstructure:"continue_on_error" yaml:"continue_on_error"`
	// UsageAnalytics enables the best-effort diagnostics event sent to the
	// platform after a pass.
	UsageAnalytics bool `mapstructure:"usage_analytics" yaml:"usage_analytics"`
	VerboseErrors  bool `mapstructure:"verbose_errors" yaml:"verbose_errors"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Platform --
	v.SetDefault("platform.base_url", "")
	v.SetDefault("platform.org_id", "")

	// -- Training --
	v.SetDefault("training.base_url", "https://integration-api.securecodewarrior.com/api/v1")
	v.SetDefault("training.integration_id", "contrast")
	v.SetDefault("training.rate_limit", 4.0)

	// -- Network --
	v.SetDefault("network.timeout", "30s")

	// -- Sync --
	v.SetDefault("sync.continue_on_error", true)
	v.SetDefault("sync.usage_analytics", false)
	v.SetDefault("sync.verbose_errors", false)

	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "rulelink")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
}

// NewFromViper creates a validated configuration instance from a viper object.
func NewFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// Bind environment variables for sensitive data.
	v.BindEnv("platform.api_key", "RULELINK_PLATFORM_API_KEY")
	v.BindEnv("platform.service_key", "RULELINK_PLATFORM_SERVICE_KEY")
	v.BindEnv("platform.auth_header", "RULELINK_PLATFORM_AUTH_HEADER")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Manually load the secrets if Unmarshal didn't pick them up.
	if cfg.Platform.APIKey == "" {
		cfg.Platform.APIKey = os.Getenv("RULELINK_PLATFORM_API_KEY")
	}
	if cfg.Platform.ServiceKey == "" {
		cfg.Platform.ServiceKey = os.Getenv("RULELINK_PLATFORM_SERVICE_KEY")
	}

	cfg.Platform.ResolveAuthHeader()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// ResolveAuthHeader derives the Authorization header value from the username
// and service key when it was not supplied directly. The platform expects
// base64(username:serviceKey).
func (p *PlatformConfig) ResolveAuthHeader() {
	if p.AuthHeader != "" || p.Username == "" || p.ServiceKey == "" {
		return
	}
	raw := p.Username + ":" + p.ServiceKey
	p.AuthHeader = base64.StdEncoding.EncodeToString([]byte(raw))
}

// Validate checks the configuration for required fields and sane values.
// Credential problems must surface here, before any network call is made.
func (c *Config) Validate() error {
	if err := c.Platform.Validate(); err != nil {
		return err
	}
	if c.Training.BaseURL == "" {
		return fmt.Errorf("training.base_url is a required configuration field")
	}
	if c.Training.IntegrationID == "" {
		return fmt.Errorf("training.integration_id is a required configuration field")
	}
	if c.Training.RateLimit <= 0 {
		return fmt.Errorf("training.rate_limit must be a positive number of requests per second")
	}
	if c.Network.Timeout <= 0 {
		return fmt.Errorf("network.timeout must be a positive duration")
	}
	return nil
}

// Validate checks the platform connection settings.
func (p *PlatformConfig) Validate() error {
	if strings.TrimSpace(p.BaseURL) == "" {
		return fmt.Errorf("platform.base_url is a required configuration field")
	}
	if p.OrgID == "" {
		return fmt.Errorf("platform.org_id is a required configuration field")
	}
	if p.APIKey == "" {
		return fmt.Errorf("platform.api_key is required but not found. Set it in the config file or via RULELINK_PLATFORM_API_KEY")
	}
	if p.AuthHeader == "" {
		return fmt.Errorf("platform credentials are incomplete: provide auth_header, or username together with service_key")
	}
	return nil
}
