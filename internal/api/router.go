package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/time/rate"

	"github.com/brokerhub/admin-gateway/internal/api/handler"
	"github.com/brokerhub/admin-gateway/internal/api/middleware"
	"github.com/brokerhub/admin-gateway/internal/audit"
	"github.com/brokerhub/admin-gateway/internal/guard"
	"github.com/brokerhub/admin-gateway/internal/session"
	"github.com/brokerhub/admin-gateway/internal/transport"
)

// Deps carries the wired collaborators the router mounts.
type Deps struct {
	Store      *session.Store
	Guard      *guard.Guard
	Client     *transport.Client
	AuthAPI    *transport.AuthAPI
	Dispatcher *audit.Dispatcher
	Mongo      *mongo.Database
	Redis      *redis.Client
	Log        zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("gateway"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Store, deps.AuthAPI)
	proxyHandler := handler.NewProxyHandler(deps.Client)
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Mongo, deps.Redis)

	// --- Auth endpoints (rate limited, never guarded) ---
	authLimit := middleware.AuthRateLimit(rate.Limit(1), 5)
	e.POST("/auth/login", authHandler.Login, authLimit)
	e.POST("/auth/register", authHandler.Register, authLimit)
	e.POST("/auth/logout", authHandler.Logout)
	e.GET("/auth/session", authHandler.Session)
	e.DELETE("/auth/error", authHandler.ClearError)

	// --- Health probes and metrics (no auth required) ---
	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- Guarded navigation: everything else flows through the route
	// guard and, when rendered, is proxied to the backend. ---
	guarded := e.Group("", middleware.Guard(deps.Guard, deps.Store, deps.Dispatcher))
	guarded.Any("/*", proxyHandler.Forward)

	return e
}
