package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENV" default:"production"`

	// Backend API and public site
	APIURL  string `envconfig:"API_URL" required:"true"`
	SiteURL string `envconfig:"SITE_URL" required:"true"`

	SessionCookieName string `envconfig:"SESSION_COOKIE_NAME" default:"syllabye.session"`

	// Identity provider
	GoogleClientID    string `envconfig:"GOOGLE_CLIENT_ID" required:"true"`
	GoogleRedirectURL string `envconfig:"GOOGLE_REDIRECT_URL" required:"true"`
	StateSecret       string `envconfig:"STATE_SECRET"`
	StateIssuer       string `envconfig:"STATE_ISSUER" default:"syllabye"`

	// Google Cloud (optional)
	GCPProjectID      string `envconfig:"GCP_PROJECT_ID"`
	StateSecretName   string `envconfig:"STATE_SECRET_NAME"`
	UploadEventsTopic string `envconfig:"UPLOAD_EVENTS_TOPIC"`

	// Timeouts and limits
	UpstreamTimeoutSec int `envconfig:"UPSTREAM_TIMEOUT_SEC" default:"10"`
	StorageTimeoutSec  int `envconfig:"STORAGE_TIMEOUT_SEC" default:"120"`
	CacheTTLSec        int `envconfig:"CACHE_TTL_SEC" default:"60"`
	CacheCleanupSec    int `envconfig:"CACHE_CLEANUP_SEC" default:"600"`
	NicknameDebounceMS int `envconfig:"NICKNAME_DEBOUNCE_MS" default:"700"`
	MaxUploadMB        int `envconfig:"MAX_UPLOAD_MB" default:"20"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsDevelopment reports whether the tier runs against local services.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.UpstreamTimeoutSec) * time.Second
}

func (c *Config) StorageTimeout() time.Duration {
	return time.Duration(c.StorageTimeoutSec) * time.Second
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSec) * time.Second
}

func (c *Config) CacheCleanup() time.Duration {
	return time.Duration(c.CacheCleanupSec) * time.Second
}

func (c *Config) NicknameDebounce() time.Duration {
	return time.Duration(c.NicknameDebounceMS) * time.Millisecond
}

// MaxUploadBytes caps multipart upload bodies.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}
