package config

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTokenSecret = "s3cret-s3cret-s3cret-s3cret-s3cret"

// setRequired sets the env vars without which parsing fails.
func setRequired(t *testing.T) {
	t.Setenv("AUTH_API_TOKEN_SECRET", testTokenSecret)
	t.Setenv("CONFIG_SVC_URL", "https://config.example")
}

func TestParseDefaults(t *testing.T) {
	setRequired(t)

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	require.NoError(t, cfg.Sanitize())

	assert.False(t, cfg.IsDev)
	assert.Equal(t, testTokenSecret, cfg.Auth.APITokenSecret)
	assert.Equal(t, "admin-gateway", cfg.Auth.AdminClientID)
	assert.Equal(t, "admin-gateway", cfg.Auth.APITokenIssuer)
	assert.Equal(t, "ims", cfg.Auth.DefaultBearerIDP)
	assert.True(t, cfg.Auth.CSRF.Enabled)
	assert.Equal(t, "https://config.example", cfg.ConfigService.URL)

	assert.Equal(t, "localhost", cfg.Postgres.Host)
	assert.Equal(t, 5432, cfg.Postgres.Port)
	assert.Equal(t, "disable", cfg.Postgres.SSLMode)
	assert.Equal(t, "localhost:6379", cfg.Redis.URI)
	assert.Equal(t, 60*time.Second, cfg.Cache.ConfigTTL)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "http://localhost:8080", cfg.HTTP.BaseURL)
	assert.Empty(t, cfg.HTTP.CookieDomain)
}

func TestParseRequiresTokenSecret(t *testing.T) {
	t.Setenv("CONFIG_SVC_URL", "https://config.example")

	var cfg AppConfig
	assert.Error(t, env.Parse(&cfg))
}

func TestParseRequiresConfigServiceURL(t *testing.T) {
	t.Setenv("AUTH_API_TOKEN_SECRET", "s3cret")

	var cfg AppConfig
	assert.Error(t, env.Parse(&cfg))
}

func TestSanitizeTrimsLists(t *testing.T) {
	setRequired(t)
	t.Setenv("AUTH_GLOBAL_API_KEY_IDS", " key-1 , ,key-2")
	t.Setenv("CSRF_EXCEPTIONS", "acme, acme/www ,")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	require.NoError(t, cfg.Sanitize())

	assert.Equal(t, []string{"key-1", "key-2"}, cfg.Auth.GlobalAPIKeyIDs)
	assert.Equal(t, []string{"acme", "acme/www"}, cfg.Auth.CSRF.Exceptions)
}

func TestSanitizeRejectsShortTokenSecret(t *testing.T) {
	setRequired(t)
	t.Setenv("AUTH_API_TOKEN_SECRET", "too-short")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	err := cfg.Sanitize()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_API_TOKEN_SECRET")
}

func TestCSRFDisabled(t *testing.T) {
	setRequired(t)
	t.Setenv("CSRF_ENABLED", "false")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	assert.False(t, cfg.Auth.CSRF.Enabled)
}

func TestDetectDevMode(t *testing.T) {
	tests := []struct {
		name    string
		dev     string
		nodeEnv string
		want    bool
	}{
		{name: "explicit", dev: "true", want: true},
		{name: "node env development", nodeEnv: "development", want: true},
		{name: "node env dev", nodeEnv: "DEV", want: true},
		{name: "node env production", nodeEnv: "production", want: false},
		{name: "unset", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			if tt.dev != "" {
				t.Setenv("DEV", tt.dev)
			}
			if tt.nodeEnv != "" {
				t.Setenv("NODE_ENV", tt.nodeEnv)
			}

			var cfg AppConfig
			require.NoError(t, env.Parse(&cfg))
			require.NoError(t, cfg.Sanitize())
			assert.Equal(t, tt.want, cfg.IsDev)
		})
	}
}

func TestIDPCredentialsConfigured(t *testing.T) {
	assert.False(t, IDPCredentials{}.Configured())
	assert.True(t, IDPCredentials{ClientID: "client-1"}.Configured())
}
