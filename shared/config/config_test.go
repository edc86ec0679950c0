package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"BACKEND_URL", "BACKEND_AUTH_TOKEN", "GEMINI_API_KEY", "OPENAI_API_KEY",
		"YOUTUBE_API_KEY", "EMAIL_USERNAME", "EMAIL_PASSWORD",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFileMissingUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000", cfg.Backend.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Backend.HealthTimeout)
	assert.Equal(t, 60*time.Second, cfg.Backend.RequestTimeout)
	assert.Equal(t, "gemini-1.5-flash", cfg.Backend.Model)
	assert.Equal(t, RetryConfig{MaxRetries: 3, BaseDelay: 2 * time.Second, MaxDelay: 10 * time.Second, Multiplier: 2}, cfg.Retry)
	assert.Equal(t, 100, cfg.Cache.MaxEntries)
	assert.Zero(t, cfg.Cache.TTL)
	assert.Equal(t, "template", cfg.Chat.Responder)
	assert.Equal(t, time.Hour, cfg.Chat.SessionTTL)
	assert.Equal(t, 8080, cfg.Monitoring.HealthPort)
	assert.Equal(t, "reports", cfg.OutputDir)
	assert.False(t, cfg.Email.Enabled())
}

func TestLoadFileYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
backend:
  base_url: https://summaries.example.com/
  request_timeout: 30s
retry:
  max_retries: 5
  base_delay: 1s
  max_delay: 4s
  multiplier: 3
cache:
  max_entries: 10
  ttl: 1h
chat:
  responder: backend
email:
  smtp_server: smtp.example.com
  username: bot@example.com
  to_email: me@example.com
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "https://summaries.example.com", cfg.Backend.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Backend.RequestTimeout)
	assert.Equal(t, 5*time.Second, cfg.Backend.HealthTimeout)
	assert.Equal(t, RetryConfig{MaxRetries: 5, BaseDelay: time.Second, MaxDelay: 4 * time.Second, Multiplier: 3}, cfg.Retry)
	assert.Equal(t, 10, cfg.Cache.MaxEntries)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "backend", cfg.Chat.Responder)
	assert.Equal(t, 587, cfg.Email.SMTPPort)
	assert.True(t, cfg.Email.Enabled())
}

func TestLoadFileEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("BACKEND_URL", "http://backend:9000")
	t.Setenv("GEMINI_API_KEY", "gem-key")
	path := writeConfig(t, "backend:\n  base_url: http://ignored:1\nchat:\n  responder: gemini\n")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "http://backend:9000", cfg.Backend.BaseURL)
	assert.Equal(t, "gem-key", cfg.AI.GeminiAPIKey)
}

func TestLoadFileEnvFillsBlankSecrets(t *testing.T) {
	clearEnv(t)
	t.Setenv("BACKEND_AUTH_TOKEN", "bearer-token")
	t.Setenv("OPENAI_API_KEY", "oa-key")
	t.Setenv("YOUTUBE_API_KEY", "yt-key")
	t.Setenv("EMAIL_USERNAME", "env@example.com")
	t.Setenv("EMAIL_PASSWORD", "env-secret")
	path := writeConfig(t, "email:\n  password: file-secret\n")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "bearer-token", cfg.Backend.AuthToken)
	assert.Equal(t, "oa-key", cfg.AI.OpenAIAPIKey)
	assert.Equal(t, "yt-key", cfg.YouTube.APIKey)
	assert.Equal(t, "env@example.com", cfg.Email.Username)
	assert.Equal(t, "file-secret", cfg.Email.Password)
}

func TestLoadFileValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad url", "backend:\n  base_url: not a url\n", "BaseURL"},
		{"unknown responder", "chat:\n  responder: telepathy\n", "Responder"},
		{"gemini without key", "chat:\n  responder: gemini\n", "Gemini API key is required"},
		{"openai without key", "chat:\n  responder: openai\n", "OpenAI API key is required"},
		{"delays inverted", "retry:\n  base_delay: 20s\n  max_delay: 5s\n", "retry.base_delay"},
		{"bad email", "email:\n  to_email: nope\n", "ToEmail"},
		{"malformed yaml", "backend: [\n", "failed to parse config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := LoadFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDefault(t *testing.T) {
	clearEnv(t)
	t.Setenv("YOUTUBE_API_KEY", "yt-key")

	cfg := Default()
	assert.Equal(t, "yt-key", cfg.YouTube.APIKey)
	assert.Equal(t, "0 */5 * * * *", cfg.Monitoring.Schedule)
}
