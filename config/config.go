// Package config loads runtime settings from the environment, with an
// optional .env file for local development.
package config

import (
	"os"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
	"github.com/joho/godotenv"
)

const (
	defaultHTTPAddr   = ":8000"
	defaultIssuer     = "guilteater"
	defaultSigningKey = "change-me"

	// Tokens slide forward on every authenticated request; a token only
	// dies after this long without activity.
	defaultIdleWindow = 2 * 24 * time.Hour
)

type Config struct {
	HTTPAddr    string
	DatabaseURL string

	SigningKey      string
	TokenIdleWindow time.Duration
	Issuer          string
	Audience        []string

	GoogleClientID string
	GoogleJWKSURL  string

	CORSAllowOrigins string
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first when present.
func Load() (*Config, error) {
	// best effort, env vars win
	_ = godotenv.Load()

	cfg := &Config{
		HTTPAddr:         envOr("HTTP_ADDR", defaultHTTPAddr),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		SigningKey:       envOr("JWT_SECRET", defaultSigningKey),
		TokenIdleWindow:  idleWindow(),
		Issuer:           envOr("JWT_ISSUER", defaultIssuer),
		GoogleClientID:   os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleJWKSURL:    os.Getenv("GOOGLE_JWKS_URL"),
		CORSAllowOrigins: envOr("CORS_ALLOW_ORIGINS", "*"),
	}

	if aud := os.Getenv("JWT_AUDIENCE"); aud != "" {
		cfg.Audience = []string{aud}
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "invalid configuration")
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.HTTPAddr, validation.Required),
		validation.Field(&c.DatabaseURL, validation.Required, is.URL),
		validation.Field(&c.SigningKey, validation.Required, validation.Length(8, 0)),
		validation.Field(&c.TokenIdleWindow, validation.Required),
		validation.Field(&c.GoogleClientID, validation.Required),
	)
}

// GetSigningKey implements auth.Config
func (c *Config) GetSigningKey() string { return c.SigningKey }

// GetIssuer implements auth.Config
func (c *Config) GetIssuer() string { return c.Issuer }

// GetAudience implements auth.Config
func (c *Config) GetAudience() []string { return c.Audience }

// GetTokenIdleWindow implements auth.Config
func (c *Config) GetTokenIdleWindow() time.Duration { return c.TokenIdleWindow }

func idleWindow() time.Duration {
	raw := os.Getenv("JWT_IDLE_SECONDS")
	if raw == "" {
		return defaultIdleWindow
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return defaultIdleWindow
	}
	return time.Duration(seconds) * time.Second
}

func envOr(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
