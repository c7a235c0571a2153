package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/staff-service/internal/api/http/handlers"
	"github.com/spec-kit/staff-service/internal/auth"
)

// StaffBasePath is where the staff and auth routes are mounted.
const StaffBasePath = "/api/staff"

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Staff          *handlers.StaffHandler
	AuthMiddleware *auth.AuthMiddleware
	// Gatherer backs /metrics; nil leaves the endpoint unregistered.
	Gatherer prometheus.Gatherer
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	if cfg.Health != nil {
		app.Get("/health/live", cfg.Health.Live)
		app.Get("/health/ready", cfg.Health.Ready)
	}
	if cfg.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group(StaffBasePath)

	api.Post("/requestlogin", cfg.Auth.RequestLogin)
	api.Post("/login", cfg.Auth.Login)
	api.Post("/refresh", cfg.Auth.Refresh)
	api.Post("/requestPasswordReset", cfg.Auth.RequestPasswordReset)
	api.Post("/resetPassword", cfg.Auth.ResetPassword)

	authenticate := cfg.AuthMiddleware.Handle
	api.Get("/getCurrentUser", authenticate, cfg.Auth.CurrentUser)

	admin := []fiber.Handler{authenticate, auth.RequireAdmin()}
	api.Post("/createStaff", append(admin, cfg.Staff.CreateStaff)...)
	api.Get("/getAllStaff", append(admin, cfg.Staff.ListStaff)...)
	api.Get("/getStaffById/:id", append(admin, cfg.Staff.GetStaff)...)
	api.Put("/updateStaff/:id", append(admin, cfg.Staff.UpdateStaff)...)
	api.Delete("/deleteStaff/:id", append(admin, cfg.Staff.DeleteStaff)...)
}
