package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/issue-tracker/internal/api/http/handlers"
	"github.com/spec-kit/issue-tracker/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Metrics        *handlers.MetricsHandler
	Auth           *handlers.AuthHandler
	Issues         *handlers.IssuesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Metrics.Snapshot)

	app.Post("/register", cfg.Auth.Register)
	app.Post("/login", cfg.Auth.Login)
	app.Post("/logout", cfg.Auth.Logout)
	app.Get("/session", cfg.Auth.Session)
	app.Get("/user", cfg.AuthMiddleware.Handle, cfg.Auth.Profile)

	issues := app.Group("/issues", cfg.AuthMiddleware.Handle)
	issues.Get("/", cfg.Issues.ListAll)
	issues.Post("/", cfg.Issues.Create)
	issues.Get("/stats", cfg.Issues.Stats)
	issues.Get("/recent", cfg.Issues.Recent)
	issues.Get("/user", cfg.Issues.ListMine)
	issues.Put("/user", cfg.Issues.Update)
	issues.Delete("/user", cfg.Issues.Delete)
}
