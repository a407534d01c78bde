package google

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/guilteater/backend/auth"
)

type idTokenClaims struct {
	jwt.RegisteredClaims
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
	Locale        string `json:"locale"`
}

func mapIdentity(claims *idTokenClaims) *auth.VerifiedIdentity {
	if claims == nil {
		return nil
	}

	return &auth.VerifiedIdentity{
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
		Picture:       claims.Picture,
	}
}
