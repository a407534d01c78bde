package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guilteater/backend/auth"
)

var testSigningKey = []byte("test-signing-key-0123456789")

func newTokenService() *auth.TokenServiceImpl {
	return auth.NewTokenService(testSigningKey, 48*time.Hour, "guilteater", nil, nil)
}

func TestTokenService_IssueAndValidate(t *testing.T) {
	ts := newTokenService()

	token, err := ts.Issue("account-123", "marker-abc")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ts.Validate(token)
	require.NoError(t, err)

	assert.Equal(t, "account-123", claims.AccountID())
	assert.Equal(t, "account-123", claims.Subject())
	assert.Equal(t, "marker-abc", claims.SessionMarker())
	assert.WithinDuration(t, time.Now().Add(48*time.Hour), claims.Expires(), 5*time.Second)
}

func TestTokenService_IssueWithoutMarker(t *testing.T) {
	ts := newTokenService()

	token, err := ts.Issue("account-123", "")
	require.NoError(t, err)

	claims, err := ts.Validate(token)
	require.NoError(t, err)
	assert.Empty(t, claims.SessionMarker())
}

func TestTokenService_IssueRequiresAccountID(t *testing.T) {
	ts := newTokenService()

	_, err := ts.Issue("", "marker")
	assert.Error(t, err)
}

func TestTokenService_ValidateRejectsExpired(t *testing.T) {
	past := time.Now().Add(-72 * time.Hour)
	ts := newTokenService().WithClock(func() time.Time { return past })

	token, err := ts.Issue("account-123", "")
	require.NoError(t, err)

	ts2 := newTokenService()
	_, err = ts2.Validate(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrTokenExpired)
}

func TestTokenService_ValidateRejectsWrongKey(t *testing.T) {
	other := auth.NewTokenService([]byte("a-completely-different-key"), 48*time.Hour, "guilteater", nil, nil)

	token, err := other.Issue("account-123", "")
	require.NoError(t, err)

	_, err = newTokenService().Validate(token)
	assert.Error(t, err)
}

func TestTokenService_ValidateRejectsWrongIssuer(t *testing.T) {
	other := auth.NewTokenService(testSigningKey, 48*time.Hour, "someone-else", nil, nil)

	token, err := other.Issue("account-123", "")
	require.NoError(t, err)

	_, err = newTokenService().Validate(token)
	assert.Error(t, err)
}

func TestTokenService_ValidateRejectsGarbage(t *testing.T) {
	ts := newTokenService()

	_, err := ts.Validate("not-a-jwt")
	assert.Error(t, err)
}

func TestTokenService_ValidateRejectsWrongAlgorithm(t *testing.T) {
	claims := &auth.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "guilteater",
			Subject:   "account-123",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newTokenService().Validate(token)
	assert.Error(t, err)
}

func TestTokenService_SlidingWindowMovesForward(t *testing.T) {
	base := time.Now()
	ts := newTokenService().WithClock(func() time.Time { return base })

	first, err := ts.Issue("account-123", "")
	require.NoError(t, err)
	firstClaims, err := ts.Validate(first)
	require.NoError(t, err)

	later := base.Add(30 * time.Minute)
	ts.WithClock(func() time.Time { return later })

	second, err := ts.Issue("account-123", "")
	require.NoError(t, err)
	secondClaims, err := ts.Validate(second)
	require.NoError(t, err)

	assert.True(t, secondClaims.Expires().After(firstClaims.Expires()),
		"re-issued token must expire strictly later")
}
