package router

import (
	"time"

	"sentiment-analyzer/backend/internal/api"
	"sentiment-analyzer/backend/pkg/config"
	"sentiment-analyzer/backend/pkg/di"
	"sentiment-analyzer/backend/pkg/errors"
	"sentiment-analyzer/backend/pkg/health"
	"sentiment-analyzer/backend/pkg/logger"
	"sentiment-analyzer/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Router is the main router for the application
type Router struct {
	Engine    *gin.Engine
	Container *di.Container
	Logger    *logger.Logger
	Config    *config.Config
	Checker   *health.Checker
}

// New creates a new router with the given container
func New(container *di.Container) *Router {
	logger.SetGlobal(container.Logger)

	cfg := config.Get()

	// Configure Gin mode based on environment
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Use the logger middleware first to capture all requests
	engine.Use(logger.Middleware(container.Logger))

	// Add custom error handler middleware
	engine.Use(errors.ErrorHandler())

	// Add custom recovery middleware with structured logging instead of default
	engine.Use(errors.RecoveryWithLogger())

	// Periodic readiness checks for storage
	checker := health.NewChecker(container.Logger, time.Minute)
	checker.RegisterDatabaseCheck(func() error {
		sqlDB, err := container.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Ping()
	})
	checker.Start()

	return &Router{
		Engine:    engine,
		Container: container,
		Logger:    container.Logger,
		Config:    cfg,
		Checker:   checker,
	}
}

// SetupRoutes registers all application routes
func (r *Router) SetupRoutes() {
	// Add CORS middleware
	r.Engine.Use(corsMiddleware(r.Config.Security.AllowedOrigins))

	// The burst limiter guards the analyze endpoint only
	burstLimiter := middleware.NewRateLimiter(r.Logger, middleware.RateLimiterOptions{
		Limit:          rate.Limit(r.Config.Limits.RateLimit),
		Burst:          r.Config.Limits.RateLimitBurst,
		ExpiryDuration: time.Hour,
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	})

	controller := api.NewAnalysisController(r.Container.AnalysisService)

	apiGroup := r.Engine.Group("/api")
	controller.RegisterRoutes(apiGroup, burstLimiter.Middleware())

	// Readiness with per-component detail; the plain /api/health body
	// stays fixed for external monitors
	apiGroup.GET("/health/components", gin.WrapF(r.Checker.HTTPHandler()))
}

// corsMiddleware allows browser calls from the configured frontend
// origins; pre-flight requests short-circuit with 204
func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowAll := false
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = true
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		switch {
		case allowAll:
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && allowed[origin]:
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Vary", "Origin")
		}

		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept, Accept-Encoding, Origin, X-Session-ID, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
