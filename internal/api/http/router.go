package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/auth-gateway/internal/api/http/handlers"
	"github.com/spec-kit/auth-gateway/internal/auth"
	"github.com/spec-kit/auth-gateway/internal/domain"
	"github.com/spec-kit/auth-gateway/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health        *handlers.HealthHandler
	Auth          *handlers.AuthHandler
	Users         *handlers.UsersHandler
	Authenticator *auth.Authenticator
	Gate          *auth.Gate
	Policy        *auth.Policy
	Metrics       *observability.Metrics
}

// DefaultPolicy declares who may call each endpoint. Anything not listed
// requires USER or ADMIN.
func DefaultPolicy() *auth.Policy {
	admin := auth.RequiresAnyOf(domain.RoleAdmin)
	return auth.NewPolicy(auth.RequiresAnyOf(domain.RoleUser, domain.RoleAdmin)).
		Set(fiber.MethodGet, "/health/live", auth.Public()).
		Set(fiber.MethodGet, "/health/ready", auth.Public()).
		Set(fiber.MethodGet, "/metrics", auth.Public()).
		Set(fiber.MethodPost, "/auth/register", auth.Public()).
		Set(fiber.MethodPost, "/auth/login", auth.Public()).
		Set(fiber.MethodGet, "/auth/logout", auth.Public()).
		Set(fiber.MethodGet, "/user/findUser/:userName", admin).
		Set(fiber.MethodGet, "/user/findAllUsers", admin)
}

// RegisterRoutes wires HTTP routes. Each route first runs the authenticator,
// then the gate for the requirement the policy assigns to it.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	policy := cfg.Policy
	if policy == nil {
		policy = DefaultPolicy()
	}

	route := func(method, path string, handler fiber.Handler) {
		app.Add(method, path, cfg.Authenticator.Handle, cfg.Gate.Require(policy.For(method, path)), handler)
	}

	route(fiber.MethodGet, "/health/live", cfg.Health.Live)
	route(fiber.MethodGet, "/health/ready", cfg.Health.Ready)
	route(fiber.MethodGet, "/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))

	route(fiber.MethodPost, "/auth/register", cfg.Auth.Register)
	route(fiber.MethodPost, "/auth/login", cfg.Auth.Login)
	route(fiber.MethodGet, "/auth/logout", cfg.Auth.Logout)

	route(fiber.MethodGet, "/user/myInfo", cfg.Users.MyInfo)
	route(fiber.MethodGet, "/user/findUser/:userName", cfg.Users.FindUser)
	route(fiber.MethodGet, "/user/findAllUsers", cfg.Users.FindAllUsers)
}
