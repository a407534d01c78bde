package auth

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// VerifiedIdentity holds the claims extracted from an external identity
// credential after successful verification.
type VerifiedIdentity struct {
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// IdentityVerifier validates an external identity credential and extracts
// claims. Implementations must fail closed: any verification problem
// collapses to ErrInvalidCredential, never partially trusted claims.
type IdentityVerifier interface {
	VerifyCredential(ctx context.Context, credential string) (*VerifiedIdentity, error)
}

// TokenService issues and validates session tokens
type TokenService interface {
	// Issue creates a signed token for the given account. The expiry is
	// now + the configured idle window; sessionMarker may be empty.
	Issue(accountID, sessionMarker string) (string, error)
	// Validate checks signature and expiry and returns the embedded claims
	Validate(tokenString string) (AuthClaims, error)
}

// Authenticator turns an external identity credential into a session token
type Authenticator interface {
	ExchangeCredential(ctx context.Context, credential string, role Role) (string, *Account, error)
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetIssuer() string
	GetAudience() []string
	GetTokenIdleWindow() time.Duration
}

type defLogger struct{}

func (d defLogger) Error(msg string, args ...any) { logLine("[ERR]", msg, args...) }
func (d defLogger) Warn(msg string, args ...any)  { logLine("[WRN]", msg, args...) }
func (d defLogger) Info(msg string, args ...any)  { logLine("[INF]", msg, args...) }
func (d defLogger) Debug(msg string, args ...any) { logLine("[DBG]", msg, args...) }

func logLine(level, msg string, args ...any) {
	line := make([]any, 0, len(args)+1)
	line = append(line, level+" AUTH "+msg)
	line = append(line, args...)
	fmt.Println(line...)
}
