package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("API_URL", "http://backend.local")
	t.Setenv("SITE_URL", "http://site.local")
	t.Setenv("GOOGLE_CLIENT_ID", "client-id")
	t.Setenv("GOOGLE_REDIRECT_URL", "http://backend.local/auth/google/callback")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "syllabye.session", cfg.SessionCookieName)
	assert.Equal(t, "syllabye", cfg.StateIssuer)
	assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout())
	assert.Equal(t, 700*time.Millisecond, cfg.NicknameDebounce())
	assert.Equal(t, int64(20<<20), cfg.MaxUploadBytes())
	assert.False(t, cfg.IsDevelopment())
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("API_URL", "")
	t.Setenv("SITE_URL", "")
	t.Setenv("GOOGLE_CLIENT_ID", "")
	t.Setenv("GOOGLE_REDIRECT_URL", "")

	_, err := Load()
	assert.Error(t, err)
}
