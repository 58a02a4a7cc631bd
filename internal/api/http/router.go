package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nikobathrooms/niko-auth-gateway/internal/api/http/handlers"
	"github.com/nikobathrooms/niko-auth-gateway/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Metrics        *handlers.MetricsHandler
	Auth           *handlers.AuthHandler
	Session        *handlers.SessionHandler
	Gating         *handlers.GatingHandler
	Wishlist       *handlers.WishlistHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Metrics.Counters)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/signup", cfg.Auth.Signup)
	authGroup.Post("/password/recover", cfg.Auth.RecoverPassword)
	authGroup.Post("/logout", cfg.AuthMiddleware.Optional, cfg.Auth.Logout)

	app.Post("/hooks/auth", cfg.Auth.AuthEvent)

	sessionGroup := app.Group("/api/session", cfg.AuthMiddleware.Optional)
	sessionGroup.Get("/", cfg.Session.Current)
	sessionGroup.Get("/role", cfg.Session.Role)
	sessionGroup.Get("/authenticated", cfg.Session.Authenticated)

	gatingGroup := app.Group("/gating", cfg.AuthMiddleware.Optional)
	gatingGroup.Get("/state", cfg.Gating.State)
	gatingGroup.Get("/css", cfg.Gating.CSS)

	wishlistGroup := app.Group("/api/wishlist", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	wishlistGroup.Get("/", cfg.Wishlist.Get)
	wishlistGroup.Post("/add", cfg.Wishlist.Add)
	wishlistGroup.Post("/remove", cfg.Wishlist.Remove)

	app.Delete("/admin/profiles/:externalAuthID", cfg.Admin.DeleteProfile)
}
