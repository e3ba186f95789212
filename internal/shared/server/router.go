package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"holiday-backend/internal/exports"
	"holiday-backend/internal/holidays"
	"holiday-backend/internal/services/health"
	"holiday-backend/internal/shared/config"
	"holiday-backend/internal/shared/metrics"
	"holiday-backend/internal/shared/server/middleware"
	"holiday-backend/internal/shared/server/respond"
	"holiday-backend/internal/uploads"
)

// Rate limit groups.
const (
	groupUpload  = "UPLOAD"
	groupExport  = "EXPORT"
	groupDefault = "DEFAULT"
)

// RouterDeps carries the handlers the router mounts.
type RouterDeps struct {
	Config   config.Config
	Uploads  *uploads.Handler
	Exports  *exports.Handler
	Holidays *holidays.Handler
	Health   *health.Service
	Limiter  *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	cfg := deps.Config

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules:        rateLimitRules(cfg),
			DefaultGroup: groupDefault,
			GroupFor:     rateLimitGroup,
			Limiter:      deps.Limiter,
		}),
	)

	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService(nil)
	}
	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		report := healthSvc.Status(c.Request.Context())
		status := http.StatusOK
		if !report.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, report)
	})
	r.GET("/metrics", metrics.Handler())

	if deps.Uploads != nil {
		deps.Uploads.RegisterRoutes(r)
	}
	if deps.Exports != nil {
		deps.Exports.RegisterRoutes(r)
	}
	if deps.Holidays != nil {
		deps.Holidays.RegisterRoutes(r)
	}
	return r
}

// Uploads and exports are the expensive routes; they get their own buckets.
func rateLimitRules(cfg config.Config) map[string]middleware.RateLimitRule {
	if cfg.RateLimitRPS <= 0 || cfg.RateLimitBurst <= 0 {
		return nil
	}
	heavy := middleware.RateLimitRule{Rate: cfg.RateLimitRPS / 5, Burst: max(cfg.RateLimitBurst/4, 1)}
	return map[string]middleware.RateLimitRule{
		groupDefault: {Rate: cfg.RateLimitRPS, Burst: cfg.RateLimitBurst},
		groupUpload:  heavy,
		groupExport:  heavy,
	}
}

func rateLimitGroup(c *gin.Context) string {
	switch c.FullPath() {
	case "/upload":
		return groupUpload
	case "/export":
		return groupExport
	default:
		return groupDefault
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
