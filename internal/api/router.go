package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/partlens/recognition-api/docs"
	"github.com/partlens/recognition-api/internal/api/handler"
	"github.com/partlens/recognition-api/internal/api/middleware"
	"github.com/partlens/recognition-api/internal/core/domain"
	"github.com/partlens/recognition-api/internal/core/ports"
)

// Deps carries everything the HTTP layer needs.
type Deps struct {
	Auth     ports.AuthService
	Admin    ports.AdminService
	Feedback ports.FeedbackService
	Catalog  ports.CatalogService
	Search   ports.SearchService
	Upload   ports.UploadService

	// Checks are the readiness checks, keyed by dependency name.
	Checks map[string]handler.Check

	JWTSecret       string
	CORSOrigins     []string
	LoginRatePerMin int

	// Registerer and Gatherer default to the prometheus default registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	if d.Registerer == nil {
		d.Registerer = prometheus.DefaultRegisterer
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: d.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echomiddleware.BodyLimitWithConfig(echomiddleware.BodyLimitConfig{
		Limit:   "12M",
		Skipper: skipFeedbackSubmit,
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "partlens",
		Subsystem:  "http",
		Registerer: d.Registerer,
		Skipper:    skipInfraPaths,
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth)
	adminHandler := handler.NewAdminHandler(d.Admin)
	feedbackHandler := handler.NewFeedbackHandler(d.Feedback, d.Log)
	catalogHandler := handler.NewCatalogHandler(d.Catalog)
	searchHandler := handler.NewSearchHandler(d.Search)
	uploadHandler := handler.NewUploadHandler(d.Upload)
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Checks)

	// --- Public routes ---
	e.POST("/api/login", authHandler.Login, middleware.LoginRateLimit(d.LoginRatePerMin))
	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Authenticated routes ---
	api := e.Group("/api", middleware.Auth(d.JWTSecret))
	freshRole := middleware.FreshRole(d.Auth)
	reviewers := []echo.MiddlewareFunc{freshRole, middleware.RBAC(domain.ReviewerRoles()...)}
	admins := []echo.MiddlewareFunc{freshRole, middleware.RBAC(domain.RoleAdmin)}

	api.GET("/permissions", authHandler.Permissions)

	api.POST("/search", searchHandler.Search)
	api.POST("/upload", uploadHandler.Upload)

	api.GET("/codes", catalogHandler.Codes)
	api.GET("/stats", catalogHandler.Stats)
	api.POST("/validate", catalogHandler.Validate)

	api.POST("/feedback", feedbackHandler.Submit, echomiddleware.BodyLimit(feedbackBodyLimit))
	api.GET("/feedback/pending", feedbackHandler.ListPending, reviewers...)
	api.GET("/admin/feedback/pending", feedbackHandler.ListPending, reviewers...)
	api.GET("/admin/feedback/:id", feedbackHandler.Get, reviewers...)
	api.POST("/admin/feedback/approve", feedbackHandler.Approve, reviewers...)

	api.POST("/admin/user", adminHandler.CreateUser, admins...)
	api.PUT("/admin/user/:id", adminHandler.UpdateUser, admins...)
	api.DELETE("/admin/user/:id", adminHandler.DeleteUser, admins...)
	api.GET("/admin/users", adminHandler.ListUsers, admins...)
	api.POST("/admin/change-password", adminHandler.ChangePassword, freshRole)

	return e
}

// feedbackBodyLimit admits a base64-encoded image of domain.MaxImageSize
// plus the JSON envelope around it.
const feedbackBodyLimit = "14M"

func skipFeedbackSubmit(c echo.Context) bool {
	return c.Request().Method == http.MethodPost && c.Request().URL.Path == "/api/feedback"
}

func skipInfraPaths(c echo.Context) bool {
	p := c.Request().URL.Path
	return p == "/metrics" || strings.HasPrefix(p, "/health") || strings.HasPrefix(p, "/swagger")
}

// requestLogger writes one zerolog entry per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		Skipper:      skipInfraPaths,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			switch {
			case v.Status >= http.StatusInternalServerError:
				evt = log.Error()
			case v.Status >= http.StatusBadRequest:
				evt = log.Warn()
			}
			if v.Error != nil {
				evt = evt.Err(v.Error)
			}
			evt.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Str("remote_ip", v.RemoteIP).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}
