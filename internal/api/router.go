package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/taskmanager/task-api/docs"
	"github.com/taskmanager/task-api/internal/api/handler"
	"github.com/taskmanager/task-api/internal/api/middleware"
	"github.com/taskmanager/task-api/internal/core/ports"
)

const (
	metricsSubsystem = "taskmanager"
	uploadBodyLimit  = "2M"
)

// Dependencies are the services the HTTP layer is built on.
type Dependencies struct {
	Auth     ports.AuthService
	Sessions ports.SessionVerifier
	Profiles ports.ProfileService
	Accounts ports.AccountDeleter
	Avatars  ports.AvatarService
	Tasks    ports.TaskService

	// Readiness is optional; without it /health/ready is not registered.
	Readiness *handler.ReadinessHandler

	// Registry receives the HTTP metrics. Nil means the prometheus defaults.
	Registry *prometheus.Registry

	Logger zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	// Outside the request logger, which renders errors, so the recorded
	// status is the one the client received.
	e.Use(prometheusMiddleware(deps.Registry))
	e.Use(middleware.RequestLogger(deps.Logger))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	userHandler := handler.NewUserHandler(deps.Profiles, deps.Accounts)
	avatarHandler := handler.NewAvatarHandler(deps.Avatars)
	taskHandler := handler.NewTaskHandler(deps.Tasks)
	requireAuth := middleware.Auth(deps.Sessions, deps.Logger)

	// --- User routes ---
	e.POST("/users", authHandler.Register)
	e.POST("/users/login", authHandler.Login)
	e.GET("/users/:id/avatar", avatarHandler.Get)

	users := e.Group("/users", requireAuth)
	users.POST("/logout", authHandler.Logout)
	users.POST("/logoutAll", authHandler.LogoutAll)
	users.GET("/me", userHandler.Me)
	users.PATCH("/me", userHandler.UpdateMe)
	users.DELETE("/me", userHandler.DeleteMe)
	users.POST("/me/avatar", avatarHandler.Upload, middleware.UploadLimit(uploadBodyLimit))
	users.DELETE("/me/avatar", avatarHandler.Remove)

	// --- Task routes ---
	tasks := e.Group("/tasks", requireAuth)
	tasks.POST("", taskHandler.Create)
	tasks.GET("", taskHandler.List)
	tasks.GET("/:id", taskHandler.Get)
	tasks.PATCH("/:id", taskHandler.Update)
	tasks.DELETE("/:id", taskHandler.Delete)

	// --- Health probes, metrics and docs (no auth required) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	if deps.Readiness != nil {
		e.GET("/health/ready", deps.Readiness.Readiness)
	}
	e.GET("/metrics", metricsHandler(deps.Registry))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func prometheusMiddleware(reg *prometheus.Registry) echo.MiddlewareFunc {
	cfg := echoprometheus.MiddlewareConfig{
		Subsystem: metricsSubsystem,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}
	if reg != nil {
		cfg.Registerer = reg
	}
	return echoprometheus.NewMiddlewareWithConfig(cfg)
}

func metricsHandler(reg *prometheus.Registry) echo.HandlerFunc {
	if reg == nil {
		return echoprometheus.NewHandler()
	}
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg})
}
