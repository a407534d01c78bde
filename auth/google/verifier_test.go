package google_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guilteater/backend/auth"
	"github.com/guilteater/backend/auth/google"
)

const testClientID = "test-client-id.apps.googleusercontent.com"

type tokenOpt func(*jwt.RegisteredClaims, map[string]any)

func withIssuer(iss string) tokenOpt {
	return func(rc *jwt.RegisteredClaims, _ map[string]any) { rc.Issuer = iss }
}

func withAudience(aud string) tokenOpt {
	return func(rc *jwt.RegisteredClaims, _ map[string]any) { rc.Audience = jwt.ClaimStrings{aud} }
}

func withExpiry(exp time.Time) tokenOpt {
	return func(rc *jwt.RegisteredClaims, _ map[string]any) { rc.ExpiresAt = jwt.NewNumericDate(exp) }
}

func withoutExpiry() tokenOpt {
	return func(rc *jwt.RegisteredClaims, _ map[string]any) { rc.ExpiresAt = nil }
}

func signedIDToken(t *testing.T, key *rsa.PrivateKey, opts ...tokenOpt) string {
	t.Helper()

	registered := jwt.RegisteredClaims{
		Issuer:    "https://accounts.google.com",
		Subject:   "google-subject-1",
		Audience:  jwt.ClaimStrings{testClientID},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	extra := map[string]any{
		"email":          "person@example.com",
		"email_verified": true,
		"name":           "Test Person",
		"picture":        "https://example.com/photo.jpg",
	}
	for _, opt := range opts {
		opt(&registered, extra)
	}

	claims := jwt.MapClaims{
		"iss": registered.Issuer,
		"sub": registered.Subject,
		"aud": registered.Audience,
		"iat": registered.IssuedAt.Unix(),
	}
	if registered.ExpiresAt != nil {
		claims["exp"] = registered.ExpiresAt.Unix()
	}
	for k, v := range extra {
		claims[k] = v
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func newTestVerifier(t *testing.T) (*google.Verifier, *rsa.PrivateKey) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	keyFunc := func(token *jwt.Token) (any, error) {
		return &key.PublicKey, nil
	}
	return google.NewVerifierWithKeyfunc(testClientID, keyFunc), key
}

func TestVerifyCredential_ValidToken(t *testing.T) {
	verifier, key := newTestVerifier(t)

	identity, err := verifier.VerifyCredential(context.Background(), signedIDToken(t, key))
	require.NoError(t, err)

	assert.Equal(t, "person@example.com", identity.Email)
	assert.True(t, identity.EmailVerified)
	assert.Equal(t, "Test Person", identity.Name)
	assert.Equal(t, "https://example.com/photo.jpg", identity.Picture)
}

func TestVerifyCredential_AcceptsLegacyIssuer(t *testing.T) {
	verifier, key := newTestVerifier(t)

	_, err := verifier.VerifyCredential(context.Background(),
		signedIDToken(t, key, withIssuer("accounts.google.com")))
	assert.NoError(t, err)
}

func TestVerifyCredential_RejectsForeignIssuer(t *testing.T) {
	verifier, key := newTestVerifier(t)

	_, err := verifier.VerifyCredential(context.Background(),
		signedIDToken(t, key, withIssuer("https://evil.example.com")))
	assert.ErrorIs(t, err, auth.ErrInvalidCredential)
}

func TestVerifyCredential_RejectsWrongAudience(t *testing.T) {
	verifier, key := newTestVerifier(t)

	_, err := verifier.VerifyCredential(context.Background(),
		signedIDToken(t, key, withAudience("another-client")))
	assert.ErrorIs(t, err, auth.ErrInvalidCredential)
}

func TestVerifyCredential_RejectsExpired(t *testing.T) {
	verifier, key := newTestVerifier(t)

	_, err := verifier.VerifyCredential(context.Background(),
		signedIDToken(t, key, withExpiry(time.Now().Add(-time.Hour))))
	assert.ErrorIs(t, err, auth.ErrInvalidCredential)
}

func TestVerifyCredential_RejectsMissingExpiry(t *testing.T) {
	verifier, key := newTestVerifier(t)

	_, err := verifier.VerifyCredential(context.Background(),
		signedIDToken(t, key, withoutExpiry()))
	assert.ErrorIs(t, err, auth.ErrInvalidCredential)
}

func TestVerifyCredential_RejectsWrongKey(t *testing.T) {
	verifier, _ := newTestVerifier(t)

	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	_, err = verifier.VerifyCredential(context.Background(), signedIDToken(t, otherKey))
	assert.ErrorIs(t, err, auth.ErrInvalidCredential)
}

func TestVerifyCredential_RejectsHMACToken(t *testing.T) {
	verifier, _ := newTestVerifier(t)

	hmacToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": "https://accounts.google.com",
		"aud": testClientID,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := hmacToken.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = verifier.VerifyCredential(context.Background(), signed)
	assert.ErrorIs(t, err, auth.ErrInvalidCredential)
}

func TestVerifyCredential_RejectsEmptyCredential(t *testing.T) {
	verifier, _ := newTestVerifier(t)

	_, err := verifier.VerifyCredential(context.Background(), "")
	assert.ErrorIs(t, err, auth.ErrInvalidCredential)
}

func TestNewVerifier_RequiresClientID(t *testing.T) {
	_, err := google.NewVerifier(google.Config{})
	assert.Error(t, err)
}

func TestVerifyCredential_HonorsContextCancellation(t *testing.T) {
	verifier, key := newTestVerifier(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := verifier.VerifyCredential(ctx, signedIDToken(t, key))
	assert.ErrorIs(t, err, context.Canceled)
}
