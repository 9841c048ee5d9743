package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/cardigital/user-service/docs"
	"github.com/cardigital/user-service/internal/api/handler"
	"github.com/cardigital/user-service/internal/api/middleware"
	"github.com/cardigital/user-service/internal/core/domain"
	"github.com/cardigital/user-service/internal/core/ports"
	"github.com/cardigital/user-service/internal/infrastructure/http/handlers"
)

const logoutPath = "/auth/logout"

// Dependencies is everything the HTTP layer needs from the composition root.
type Dependencies struct {
	Logger        zerolog.Logger
	AuthService   ports.AuthService
	Authenticator ports.Authenticator
	UserService   ports.UserService
	HealthChecks  []handlers.Check
	// Registry collects HTTP metrics; nil uses the Prometheus default registry.
	Registry *prometheus.Registry
	// LoginRate and LoginBurst throttle POST /auth/login per client IP.
	// A zero rate disables throttling.
	LoginRate  float64
	LoginBurst int
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	promMiddleware := echoprometheus.MiddlewareConfig{Namespace: "usersvc", Subsystem: "http"}
	promHandler := echoprometheus.HandlerConfig{}
	if deps.Registry != nil {
		promMiddleware.Registerer = deps.Registry
		promHandler.Gatherer = deps.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(promMiddleware))
	e.Use(middleware.Authenticate(deps.Authenticator, deps.Logger, logoutPath))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(deps.AuthService)
	userHandler := handler.NewUserHandler(deps.UserService)
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.HealthChecks...)

	// --- Auth routes ---
	var loginGuards []echo.MiddlewareFunc
	if deps.LoginRate > 0 {
		loginGuards = append(loginGuards, middleware.RateLimit(deps.LoginRate, deps.LoginBurst))
	}
	e.POST("/auth/login", authHandler.Login, loginGuards...)
	e.POST(logoutPath, authHandler.Logout)

	// --- User routes ---
	users := e.Group("/users")
	users.POST("", userHandler.Create)
	users.GET("", userHandler.List, middleware.RequireAuth())
	users.PATCH("", userHandler.EditSelf, middleware.RequireAuth())
	users.PUT("/change-password", userHandler.ChangePassword, middleware.RequireAuth())
	users.GET("/:id", userHandler.Get, middleware.SelfOrRole("id", domain.RoleAdmin))
	users.PATCH("/:id", userHandler.EditByID, middleware.RBAC(domain.RoleAdmin))
	users.DELETE("/:id", userHandler.Delete, middleware.RBAC(domain.RoleAdmin))

	// --- Health probes and tooling (no auth required) ---
	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(promHandler))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
