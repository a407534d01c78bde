package server

import (
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"

	"github.com/guilteater/backend/auth"
	"github.com/guilteater/backend/ledger"
	"github.com/guilteater/backend/linking"
)

// statusByTextCode pins statuses that the category mapping alone would get
// wrong, mainly the 403 family.
var statusByTextCode = map[string]int{
	auth.TextCodeRoleConflict:          fiber.StatusForbidden,
	auth.TextCodeInvalidCredential:     fiber.StatusBadRequest,
	linking.TextCodeGenerateForbidden:  fiber.StatusForbidden,
	linking.TextCodeRedeemForbidden:    fiber.StatusForbidden,
	ledger.TextCodeWrongGoalOwner:      fiber.StatusForbidden,
}

func statusByCategory(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryAuth:
		return fiber.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return fiber.StatusForbidden
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return fiber.StatusBadRequest
	case goerrors.CategoryNotFound:
		return fiber.StatusNotFound
	case goerrors.CategoryConflict:
		return fiber.StatusConflict
	case goerrors.CategoryRateLimit:
		return fiber.StatusTooManyRequests
	default:
		return fiber.StatusInternalServerError
	}
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok {
		return c.Status(fe.Code).JSON(fiber.Map{
			"error": fiber.Map{"message": fe.Message},
		})
	}

	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		status := statusByCategory(rich.Category)
		if pinned, ok := statusByTextCode[rich.TextCode]; ok {
			status = pinned
		}

		message := rich.Message
		if status >= fiber.StatusInternalServerError {
			s.deps.Logger.Error("request failed", "error", err, "path", c.Path())
			message = "internal server error"
		}

		body := fiber.Map{"message": message}
		if rich.TextCode != "" {
			body["text_code"] = rich.TextCode
		}
		return c.Status(status).JSON(fiber.Map{"error": body})
	}

	s.deps.Logger.Error("unhandled error", "error", err, "path", c.Path())
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": fiber.Map{"message": "internal server error"},
	})
}
