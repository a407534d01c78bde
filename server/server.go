package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/guilteater/backend/auth"
	"github.com/guilteater/backend/ledger"
	"github.com/guilteater/backend/linking"
)

// Deps carries everything the HTTP layer needs. All fields are required
// unless noted.
type Deps struct {
	Logger        auth.Logger
	Authenticator *auth.Auther
	Tokens        auth.TokenService
	Accounts      auth.Accounts
	Linking       *linking.Registry
	Ledger        *ledger.Service

	// CORSAllowOrigins defaults to "*" when empty
	CORSAllowOrigins string
}

type Server struct {
	app  *fiber.App
	deps Deps
}

func New(deps Deps) *Server {
	s := &Server{deps: deps}

	s.app = fiber.New(fiber.Config{
		AppName:      "guilteater",
		ErrorHandler: s.errorHandler,
	})

	s.app.Use(recover.New())
	s.app.Use(requestid.New())

	origins := deps.CORSAllowOrigins
	if origins == "" {
		origins = "*"
	}
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/health", s.health)
	s.app.Post("/auth/token", s.exchangeToken)

	protected := s.Protected()

	s.app.Get("/me", protected, s.me)

	s.app.Post("/generate-linking-code", protected, s.RequireRole(auth.RoleParent), s.generateLinkingCode)
	s.app.Post("/verify-linking-code", protected, s.verifyLinkingCode)
	s.app.Get("/my-children", protected, s.RequireRole(auth.RoleParent), s.myChildren)
	s.app.Get("/my-parent", protected, s.RequireRole(auth.RoleChild), s.myParent)

	api := s.app.Group("/api", protected)
	api.Post("/goals", s.createGoal)
	api.Get("/goals", s.listGoals)
	api.Get("/goals/:id/violations", s.listViolations)
	api.Post("/violations", s.recordViolation)
	api.Post("/wallets", s.deposit)
	api.Get("/wallets", s.listWallets)
	api.Get("/transactions", s.listTransactions)
}

// App exposes the underlying fiber app, used by tests and the process
// entrypoint.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
