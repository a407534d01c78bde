// Package google verifies Google-issued ID tokens against Google's published
// JWK set. It is the concrete identity verifier behind session establishment:
// the Android client signs in with Google and posts the resulting ID token to
// the backend, which trusts only what this package extracts from it.
package google

import (
	"context"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/guilteater/backend/auth"
)

const (
	// DefaultJWKSURL is Google's OAuth2 v3 certificate endpoint.
	DefaultJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"

	issuerHTTPS  = "https://accounts.google.com"
	issuerLegacy = "accounts.google.com"
)

// Config holds Google verifier configuration.
type Config struct {
	// ClientID is the OAuth client the ID token must be issued for.
	ClientID string
	// JWKSURL overrides the Google certificate endpoint.
	JWKSURL string
	// RefreshInterval overrides the JWKS background refresh cadence.
	RefreshInterval time.Duration

	Logger auth.Logger
}

// Verifier implements auth.IdentityVerifier for Google ID tokens.
type Verifier struct {
	clientID string
	keyFunc  jwt.Keyfunc
	jwks     *keyfunc.JWKS
	logger   auth.Logger
}

var _ auth.IdentityVerifier = (*Verifier)(nil)

// NewVerifier creates a verifier backed by Google's JWKS endpoint. The key
// set refreshes in the background with bounded timeouts so verification
// never blocks on a slow upstream.
func NewVerifier(cfg Config) (*Verifier, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("google: client id is required", errors.CategoryBadInput)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	jwksURL := cfg.JWKSURL
	if jwksURL == "" {
		jwksURL = DefaultJWKSURL
	}

	refreshInterval := cfg.RefreshInterval
	if refreshInterval == 0 {
		refreshInterval = time.Hour
	}

	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		RefreshInterval:   refreshInterval,
		RefreshRateLimit:  time.Minute * 5,
		RefreshTimeout:    time.Second * 10,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			logger.Warn("google JWKS background refresh failed", "error", err)
		},
	})
	if err != nil {
		return nil, err
	}

	return &Verifier{
		clientID: cfg.ClientID,
		keyFunc:  jwks.Keyfunc,
		jwks:     jwks,
		logger:   logger,
	}, nil
}

// NewVerifierWithKeyfunc creates a verifier with a caller-supplied key
// function instead of the live JWKS endpoint. Test seam.
func NewVerifierWithKeyfunc(clientID string, keyFunc jwt.Keyfunc) *Verifier {
	return &Verifier{
		clientID: clientID,
		keyFunc:  keyFunc,
		logger:   noopLogger{},
	}
}

// Close stops the background JWKS refresh
func (v *Verifier) Close() {
	if v.jwks != nil {
		v.jwks.EndBackground()
	}
}

// VerifyCredential validates a Google ID token and extracts identity claims.
// It fails closed: every verification problem collapses to
// auth.ErrInvalidCredential.
func (v *Verifier) VerifyCredential(ctx context.Context, credential string) (*auth.VerifiedIdentity, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if credential == "" {
		return nil, auth.ErrInvalidCredential
	}

	claims := &idTokenClaims{}
	token, err := jwt.ParseWithClaims(credential, claims, v.keyFunc,
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithAudience(v.clientID),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		v.logger.Debug("google ID token rejected", "error", err)
		return nil, auth.ErrInvalidCredential
	}

	if iss := claims.RegisteredClaims.Issuer; iss != issuerHTTPS && iss != issuerLegacy {
		v.logger.Debug("google ID token rejected", "issuer", iss)
		return nil, auth.ErrInvalidCredential
	}

	return mapIdentity(claims), nil
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
