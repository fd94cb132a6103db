package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"medisafe-backend/internal/account"
	googleauth "medisafe-backend/internal/auth"
	"medisafe-backend/internal/documents"
	"medisafe-backend/internal/insights"
	"medisafe-backend/internal/intake"
	"medisafe-backend/internal/reminders"
	"medisafe-backend/internal/services/health"
	"medisafe-backend/internal/shared/config"
	"medisafe-backend/internal/shared/metrics"
	"medisafe-backend/internal/shared/server/middleware"
	"medisafe-backend/internal/shared/server/respond"
)

// RouterDeps carries the handlers the router mounts.
type RouterDeps struct {
	Config           config.Config
	Health           *health.Service
	IntakeHandler    *intake.Handler
	DocumentHandler  *documents.Handler
	InsightsHandler  *insights.Handler
	RemindersHandler *reminders.Handler
	AccountHandler   *account.Handler
	GoogleAuth       *googleauth.GoogleService
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		metrics.HTTPMiddleware(),
	)

	// Scrapers carry no identity; mount before the auth middleware.
	r.GET("/metrics", metrics.Handler())

	r.Use(
		middleware.Auth(deps.Config.Env),
		middleware.RateLimit(aiRateLimits()),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		if deps.Health == nil {
			respond.JSON(c, http.StatusOK, gin.H{"ok": true})
			return
		}
		respond.JSON(c, http.StatusOK, deps.Health.Status(c.Request.Context()))
	})

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	registerMeRoutes(api)
	if deps.IntakeHandler != nil {
		deps.IntakeHandler.RegisterRoutes(api)
	}
	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(api)
	}
	if deps.InsightsHandler != nil {
		deps.InsightsHandler.RegisterRoutes(api)
	}
	if deps.RemindersHandler != nil {
		deps.RemindersHandler.RegisterRoutes(api)
	}
	if deps.AccountHandler != nil {
		deps.AccountHandler.RegisterRoutes(api)
	}

	return r
}

// aiRateLimits throttles the endpoints that fan out to the language model.
// Other routes pass through unlimited.
func aiRateLimits() middleware.RateLimitConfig {
	return middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			"AI": {Rate: 0.5, Burst: 5},
		},
		GroupFor: func(c *gin.Context) string {
			path := c.FullPath()
			if path == "/api/v1/documents/process" || strings.HasPrefix(path, "/api/v1/insights/") {
				return "AI"
			}
			return ""
		},
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
