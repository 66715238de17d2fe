package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/mentorship-service/internal/api/http/handlers"
	"github.com/spec-kit/mentorship-service/internal/auth"
	"github.com/spec-kit/mentorship-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Matches        *handlers.MatchHandler
	Overrides      *handlers.OverridesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/password/reset/request", cfg.Users.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Users.ConfirmPasswordReset)

	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	protected.Post("/auth/password/change", cfg.Users.ChangePassword)
	protected.Get("/me", cfg.Users.Me)

	mentee := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleMentee))
	mentee.Get("/mentors/ranked", cfg.Matches.RankMentors)
	mentee.Post("/bookings/attempts", cfg.Overrides.AttemptBooking)

	coordinator := app.Group("/overrides", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleCoordinator))
	coordinator.Get("/queue", cfg.Overrides.PendingQueue)
	coordinator.Post("/bulk/approve", cfg.Overrides.BulkApprove)
	coordinator.Post("/bulk/decline", cfg.Overrides.BulkDecline)
	coordinator.Get("/:id", cfg.Overrides.GetRequest)
	coordinator.Post("/:id/approve", cfg.Overrides.Approve)
	coordinator.Post("/:id/decline", cfg.Overrides.Decline)
}
