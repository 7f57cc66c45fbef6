package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/listshare/todo-share/docs"
	"github.com/listshare/todo-share/internal/api/handler"
	"github.com/listshare/todo-share/internal/api/middleware"
	"github.com/listshare/todo-share/internal/core/ports"
)

// Deps is everything the HTTP layer needs from the composition root.
type Deps struct {
	Auth    ports.AuthService
	Sharing ports.SharingService
	Tokens  ports.TokenParser
	Revoker ports.TokenRevoker

	// HealthChecks are pinged by /health/ready, keyed by dependency name.
	HealthChecks map[string]handler.HealthCheck
	SecureCookie bool

	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	if d.Registerer == nil {
		d.Registerer = prometheus.DefaultRegisterer
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "todoshare",
		Registerer: d.Registerer,
	}))

	// --- Dependencies ---
	authn := middleware.NewAuthenticator(d.Tokens, d.Revoker, d.Log)
	authHandler := handler.NewAuthHandler(d.Auth, d.SecureCookie)
	listHandler := handler.NewListHandler(d.Sharing)
	healthHandler := handler.NewHealthHandler(d.HealthChecks)

	// --- API routes ---
	g := e.Group("/api")
	g.POST("/register", authHandler.Register)
	g.POST("/login", authHandler.Login)
	g.POST("/logout", authHandler.Logout, authn.Required())

	g.POST("/share", listHandler.Share, authn.Optional())
	g.GET("/get/:id", listHandler.Get)
	g.POST("/send-to-user", listHandler.SendToUser, authn.Required())
	g.GET("/my-lists", listHandler.MyLists, authn.Required())
	g.DELETE("/delete-cloud-list/:id", listHandler.Delete, authn.Required())
	g.GET("/search-users", listHandler.SearchUsers, authn.Required())

	// --- Operational endpoints (no auth required) ---
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogRoutePath: true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil {
				evt = log.Warn().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("route", v.RoutePath).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
