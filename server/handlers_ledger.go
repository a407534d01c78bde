package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/guilteater/backend/ledger"
)

func (s *Server) createGoal(c *fiber.Ctx) error {
	account := AccountFromCtx(c)

	var input ledger.GoalInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}

	goal, err := s.deps.Ledger.CreateGoal(c.UserContext(), account, input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(goal)
}

func (s *Server) listGoals(c *fiber.Ctx) error {
	account := AccountFromCtx(c)

	goals, err := s.deps.Ledger.ListGoals(c.UserContext(), account.ID)
	if err != nil {
		return err
	}
	return c.JSON(goals)
}

func (s *Server) deposit(c *fiber.Ctx) error {
	account := AccountFromCtx(c)

	var input ledger.DepositInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}

	wallet, err := s.deps.Ledger.Deposit(c.UserContext(), account, input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(wallet)
}

func (s *Server) listWallets(c *fiber.Ctx) error {
	account := AccountFromCtx(c)

	wallets, err := s.deps.Ledger.ListWallets(c.UserContext(), account.ID)
	if err != nil {
		return err
	}
	return c.JSON(wallets)
}

func (s *Server) recordViolation(c *fiber.Ctx) error {
	account := AccountFromCtx(c)

	var input ledger.ViolationInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}

	violation, err := s.deps.Ledger.RecordViolation(c.UserContext(), account, input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(violation)
}

func (s *Server) listViolations(c *fiber.Ctx) error {
	account := AccountFromCtx(c)

	goalID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid goal id")
	}

	violations, err := s.deps.Ledger.ListViolations(c.UserContext(), account, goalID)
	if err != nil {
		return err
	}
	return c.JSON(violations)
}

func (s *Server) listTransactions(c *fiber.Ctx) error {
	account := AccountFromCtx(c)

	transactions, err := s.deps.Ledger.ListTransactions(c.UserContext(), account.ID)
	if err != nil {
		return err
	}
	return c.JSON(transactions)
}
