package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/sirpyerre/task-manager/docs"
	"github.com/sirpyerre/task-manager/internal/api/handler"
	"github.com/sirpyerre/task-manager/internal/api/middleware"
	"github.com/sirpyerre/task-manager/internal/core/ports"
	"github.com/sirpyerre/task-manager/internal/pkg/metrics"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	Auth     ports.AuthService
	Projects ports.ProjectService
	Tasks    ports.TaskService
	Tokens   ports.TokenVerifier
	// Health lists the readiness checks, keyed by dependency name.
	Health map[string]handler.DependencyCheck
	Log    zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
// Each router owns its Prometheus registry, so several routers can coexist in
// one process (tests build one per case).
func NewRouter(deps Dependencies) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if err := metrics.Register(reg); err != nil {
		return nil, err
	}

	// --- Global middleware ---
	e.Pre(echomiddleware.RemoveTrailingSlash())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Log))
	e.Use(echomiddleware.CORS())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "taskmanager_http",
		Registerer: reg,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
		DoNotUseRequestPathFor404: true,
	}))

	authHandler := handler.NewAuthHandler(deps.Auth)
	projectHandler := handler.NewProjectHandler(deps.Projects)
	taskHandler := handler.NewTaskHandler(deps.Tasks)
	gate := middleware.Auth(deps.Tokens)

	// --- Public routes ---
	e.POST("/signup", authHandler.Signup)
	e.POST("/login", authHandler.Login)

	// --- Protected routes ---
	e.GET("/profile", authHandler.Profile, gate)

	projects := e.Group("/projects", gate)
	projects.POST("", projectHandler.Create)
	projects.GET("", projectHandler.List)
	projects.PUT("/:projectId", projectHandler.Update)
	projects.DELETE("/:projectId", projectHandler.Delete)

	tasks := e.Group("/tasks", gate)
	tasks.POST("", taskHandler.Create)
	tasks.GET("", taskHandler.List)
	tasks.PUT("/:taskId", taskHandler.Update)
	tasks.DELETE("/:taskId", taskHandler.Delete)

	// --- Operations (no auth required) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewHealthDependenciesHandler(deps.Health, deps.Log).Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e, nil
}
