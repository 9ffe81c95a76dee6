package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/code-arena/internal/api/http/handlers"
	"github.com/spec-kit/code-arena/internal/auth"
	"github.com/spec-kit/code-arena/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Problems       *handlers.ProblemsHandler
	Rankings       *handlers.RankingsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/signup", cfg.Users.Signup)
	authGroup.Post("/login", cfg.Users.Login)

	api := app.Group("/api")
	api.Get("/rankings", cfg.Rankings.Top)

	protected := api.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	protected.Get("/user", cfg.Users.Me)
	protected.Get("/user/stats", cfg.Users.Stats)
	protected.Get("/problems", cfg.Problems.ListProblems)
	protected.Get("/problems/:id", cfg.Problems.GetProblem)
	protected.Patch("/problems/:problemId/solve", cfg.Problems.SolveProblem)
	protected.Post("/problems", auth.RequireRole(domain.UserRoleAdmin), cfg.Problems.CreateProblem)
}
