package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENV", EnvDev)
	t.Setenv("POSTGRES_HOST", "localhost")
	t.Setenv("POSTGRES_USERNAME", "postgres")
	t.Setenv("POSTGRES_PASSWORD", "postgres")
	t.Setenv("POSTGRES_DATABASE", "sprintsync")
	t.Setenv("JWT_SIGNING_KEY", "secret")
}

func TestEnvReader_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := NewEnvReader().Read()
	require.NoError(t, err)

	assert.Equal(t, EnvDev, cfg.Env)
	assert.Equal(t, "free", cfg.TransitionPolicy)
	assert.Equal(t, "8000", cfg.HTTP.Port)
	assert.Equal(t, 5*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:8000"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, 5432, cfg.Postgres.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWT.AccessTokenTTL)
	assert.Equal(t, "gpt-4", cfg.OpenAI.Model)
	assert.Empty(t, cfg.OpenAI.APIKey)
	assert.False(t, cfg.Seed.Enabled)
	assert.Equal(t, "demo@sprintsync.com", cfg.Seed.DemoEmail)
}

func TestEnvReader_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TRANSITION_POLICY", "no-reopen")
	t.Setenv("HTTP_ALLOWED_ORIGINS", "https://app.example.com")
	t.Setenv("SEED_DEMO_DATA", "true")
	t.Setenv("OPENAI_TEMPERATURE", "0.2")

	cfg, err := NewEnvReader().Read()
	require.NoError(t, err)

	assert.Equal(t, "no-reopen", cfg.TransitionPolicy)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.HTTP.AllowedOrigins)
	assert.True(t, cfg.Seed.Enabled)
	assert.InDelta(t, 0.2, cfg.OpenAI.Temperature, 1e-6)
}

func TestEnvReader_MissingRequired(t *testing.T) {
	setRequiredEnv(t)
	require.NoError(t, os.Unsetenv("JWT_SIGNING_KEY"))

	_, err := NewEnvReader().Read()
	assert.Error(t, err)
}

func TestEnvReader_Rejects(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"unknown env", "ENV", "staging"},
		{"unknown policy", "TRANSITION_POLICY", "strict"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := NewEnvReader().Read()
			assert.Error(t, err)
		})
	}
}
