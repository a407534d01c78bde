package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	repository "github.com/goliatone/go-repository-bun"

	"github.com/guilteater/backend/linking"
)

func (s *Server) generateLinkingCode(c *fiber.Ctx) error {
	account := AccountFromCtx(c)

	result, err := s.deps.Linking.Generate(c.UserContext(), account)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

func (s *Server) verifyLinkingCode(c *fiber.Ctx) error {
	account := AccountFromCtx(c)

	var input linking.RedeemInput
	if err := c.BodyParser(&input); err != nil {
		return linking.ErrMissingCode
	}

	result, err := s.deps.Linking.Redeem(c.UserContext(), account, input)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"parent_name":  result.ParentName,
		"parent_email": result.ParentEmail,
		"child_name":   result.ChildName,
		"child_email":  result.ChildEmail,
		"linked_at":    result.LinkedAt.UTC().Format(time.RFC3339),
	})
}

type childSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at,omitempty"`
}

func (s *Server) myChildren(c *fiber.Ctx) error {
	account := AccountFromCtx(c)

	children, err := s.deps.Accounts.ChildrenOf(c.UserContext(), account.ID)
	if err != nil {
		return err
	}

	out := make([]childSummary, 0, len(children))
	for _, child := range children {
		summary := childSummary{
			ID:    child.ID.String(),
			Name:  child.Name,
			Email: child.Email,
		}
		if child.CreatedAt != nil {
			summary.CreatedAt = child.CreatedAt.UTC().Format(time.RFC3339)
		}
		out = append(out, summary)
	}

	return c.JSON(out)
}

func (s *Server) myParent(c *fiber.Ctx) error {
	account := AccountFromCtx(c)

	if !account.IsLinked() {
		return linking.ErrNotLinked
	}

	parent, err := s.deps.Accounts.FetchByID(c.UserContext(), *account.ParentID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return linking.ErrParentNotFound
		}
		return err
	}

	return c.JSON(fiber.Map{
		"id":    parent.ID.String(),
		"name":  parent.Name,
		"email": parent.Email,
	})
}
