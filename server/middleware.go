package server

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"

	"github.com/guilteater/backend/auth"
)

const accountLocalKey = "account"

// HeaderRefreshedToken carries the re-issued token on every authenticated
// response. Clients replace their stored token with it to keep the session
// sliding forward.
const HeaderRefreshedToken = "X-Access-Token"

// Protected validates the bearer token, loads the caller's account, rejects
// superseded parent sessions and re-issues a fresh token with a full idle
// window.
func (s *Server) Protected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c)
		if tokenString == "" {
			return auth.ErrUnauthenticated
		}

		claims, err := s.deps.Tokens.Validate(tokenString)
		if err != nil {
			return err
		}

		accountID, err := uuid.Parse(claims.AccountID())
		if err != nil {
			return auth.ErrTokenMalformed
		}

		account, err := s.deps.Accounts.FetchByID(c.UserContext(), accountID)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return auth.ErrAccountNotFound
			}
			return err
		}

		if !account.MatchesMarker(claims.SessionMarker()) {
			return auth.ErrTokenRevoked
		}

		fresh, err := s.deps.Tokens.Issue(account.ID.String(), claims.SessionMarker())
		if err != nil {
			return err
		}
		c.Set(HeaderRefreshedToken, fresh)

		c.Locals(accountLocalKey, account)
		return c.Next()
	}
}

// RequireRole gates a route to the given roles. Runs after Protected.
func (s *Server) RequireRole(roles ...auth.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		account := AccountFromCtx(c)
		if account == nil {
			return auth.ErrUnauthenticated
		}
		for _, role := range roles {
			if account.Role == role {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "insufficient role")
	}
}

// AccountFromCtx returns the account Protected stored on the request, or nil.
func AccountFromCtx(c *fiber.Ctx) *auth.Account {
	account, _ := c.Locals(accountLocalKey).(*auth.Account)
	return account
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
