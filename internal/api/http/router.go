package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/user-scoring-service/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health *handlers.HealthHandler
	Users  *handlers.UsersHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/users", cfg.Users.CreateUser)
	app.Get("/users", cfg.Users.ListUsers)
	app.Get("/users/:username", cfg.Users.GetUser)
	app.Put("/users/:username/score", cfg.Users.UpdateScore)
	app.Get("/users/:username/ranking", cfg.Users.Ranking)
	app.Get("/users/:username/premium-access", cfg.Users.PremiumAccess)

	app.Get("/statistics", cfg.Users.Statistics)

	tools := app.Group("/tools")
	tools.Post("/user-id", cfg.Users.GenerateUserID)
	tools.Post("/username-validation", cfg.Users.ValidateUsername)
}
