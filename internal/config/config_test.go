// File: internal/config/config_test.go
package config

import (
	"bytes"
	"encoding/base64"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViper(t *testing.T, yaml string) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBufferString(yaml)))
	return v
}

const validYAML = `
platform:
  base_url: https://teamserver.example.com/Contrast
  org_id: 11111111-2222-3333-4444-555555555555
  api_key: test-api-key
  auth_header: dGVzdDp0ZXN0
`

// -- Defaults --

func TestSetDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))

	assert.Equal(t, "https://integration-api.securecodewarrior.com/api/v1", cfg.Training.BaseURL)
	assert.Equal(t, "contrast", cfg.Training.IntegrationID)
	assert.Equal(t, 4.0, cfg.Training.RateLimit)
	assert.Equal(t, 30*time.Second, cfg.Network.Timeout)
	assert.True(t, cfg.Sync.ContinueOnError)
	assert.False(t, cfg.Sync.UsageAnalytics)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "rulelink", cfg.Logger.ServiceName)
}

// -- Loading --

func TestNewFromViper(t *testing.T) {
	v := newTestViper(t, validYAML)

	cfg, err := NewFromViper(v)
	require.NoError(t, err)

	assert.Equal(t, "https://teamserver.example.com/Contrast", cfg.Platform.BaseURL)
	assert.Equal(t, "test-api-key", cfg.Platform.APIKey)
	assert.Equal(t, "dGVzdDp0ZXN0", cfg.Platform.AuthHeader)
	// Defaults survive a partial file.
	assert.Equal(t, "contrast", cfg.Training.IntegrationID)
}

func TestNewFromViper_DerivesAuthHeader(t *testing.T) {
	v := newTestViper(t, `
platform:
  base_url: https://teamserver.example.com/Contrast
  org_id: some-org
  api_key: test-api-key
  username: user@example.com
  service_key: SVCKEY
`)

	cfg, err := NewFromViper(v)
	require.NoError(t, err)

	want := base64.StdEncoding.EncodeToString([]byte("user@example.com:SVCKEY"))
	assert.Equal(t, want, cfg.Platform.AuthHeader)
}

// -- Validation --

func TestValidate_MissingRequiredFields(t *testing.T) {
	base := func() *Config {
		v := newTestViper(t, validYAML)
		cfg, err := NewFromViper(v)
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing base url",
			mutate:  func(c *Config) { c.Platform.BaseURL = "  " },
			wantErr: "platform.base_url",
		},
		{
			name:    "missing org id",
			mutate:  func(c *Config) { c.Platform.OrgID = "" },
			wantErr: "platform.org_id",
		},
		{
			name:    "missing api key",
			mutate:  func(c *Config) { c.Platform.APIKey = "" },
			wantErr: "platform.api_key",
		},
		{
			name:    "missing auth header",
			mutate:  func(c *Config) { c.Platform.AuthHeader = "" },
			wantErr: "credentials are incomplete",
		},
		{
			name:    "zero rate limit",
			mutate:  func(c *Config) { c.Training.RateLimit = 0 },
			wantErr: "training.rate_limit",
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.Network.Timeout = 0 },
			wantErr: "network.timeout",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestResolveAuthHeader_ExplicitWins(t *testing.T) {
	p := PlatformConfig{
		AuthHeader: "explicit",
		Username:   "user",
		ServiceKey: "key",
	}
	p.ResolveAuthHeader()
	assert.Equal(t, "explicit", p.AuthHeader)
}
