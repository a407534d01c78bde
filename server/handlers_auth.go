package server

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"

	"github.com/guilteater/backend/auth"
)

type tokenRequest struct {
	Credential string `json:"credential"`
	Role       string `json:"role"`
}

func (r tokenRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Credential, validation.Required),
		validation.Field(&r.Role, validation.In(
			string(auth.RoleIndividual),
			string(auth.RoleParent),
			string(auth.RoleChild),
		)),
	)
}

// exchangeToken swaps a Google ID token for a session token, creating the
// account on first sight.
func (s *Server) exchangeToken(c *fiber.Ctx) error {
	var req tokenRequest
	if err := c.BodyParser(&req); err != nil {
		return auth.ErrMissingCredential
	}
	if req.Credential == "" {
		return auth.ErrMissingCredential
	}
	if err := req.Validate(); err != nil {
		return auth.ErrInvalidRole
	}

	role := auth.RoleIndividual
	if req.Role != "" {
		parsed, ok := auth.ParseRole(req.Role)
		if !ok {
			return auth.ErrInvalidRole
		}
		role = parsed
	}

	token, _, err := s.deps.Authenticator.ExchangeCredential(c.UserContext(), req.Credential, role)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"access_token": token})
}

type profileResponse struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Name      string  `json:"name"`
	Picture   string  `json:"picture,omitempty"`
	Role      string  `json:"role"`
	ParentID  *string `json:"parent_id,omitempty"`
	CreatedAt string  `json:"created_at,omitempty"`
}

func (s *Server) me(c *fiber.Ctx) error {
	account := AccountFromCtx(c)
	if account == nil {
		return auth.ErrUnauthenticated
	}

	resp := profileResponse{
		ID:      account.ID.String(),
		Email:   account.Email,
		Name:    account.Name,
		Picture: account.Picture,
		Role:    string(account.Role),
	}
	if account.ParentID != nil {
		pid := account.ParentID.String()
		resp.ParentID = &pid
	}
	if account.CreatedAt != nil {
		resp.CreatedAt = account.CreatedAt.UTC().Format(time.RFC3339)
	}

	return c.JSON(resp)
}
