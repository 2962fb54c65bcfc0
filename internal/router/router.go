package router

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/academic-dashboard/internal/config"
	"github.com/stemsi/academic-dashboard/internal/handler"
	"github.com/stemsi/academic-dashboard/internal/middleware"
	"github.com/stemsi/academic-dashboard/internal/response"
	"github.com/stemsi/academic-dashboard/internal/web"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Page      *handler.PageHandler
	Dashboard *handler.DashboardHandler
	System    *handler.SystemHandler
}

// SetupRouter configures the Gin engine: global middleware, the HTML page and the API.
// ctx bounds background work owned by middleware (rate limiter sweeps).
func SetupRouter(
	ctx context.Context,
	handlers *Handlers,
	cfg *config.Config,
	log zerolog.Logger,
) (*gin.Engine, error) {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "HEAD", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware(log))

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	if cfg.RateLimitPerMinute > 0 {
		limiter := middleware.NewRateLimiter(ctx, cfg.RateLimitPerMinute, time.Minute)
		router.Use(limiter.Middleware())
	}

	router.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	})

	// Health check.
	router.GET("/health", middleware.NoStore(), handlers.System.Health)

	// ─── Page ──────────────────────────────────────────────────────────
	router.GET("/", middleware.NoStore(), handlers.Page.ShowDashboard)

	// ─── API ───────────────────────────────────────────────────────────
	// Responses depend only on the query string and the embedded dataset.
	api := router.Group("/api/v1")
	api.Use(middleware.CacheControl(60))
	{
		api.GET("/schools", handlers.Dashboard.GetSchools)
		api.GET("/dashboard", handlers.Dashboard.GetDashboard)
		api.GET("/dashboard/chart.png", handlers.Dashboard.GetChartPNG)
		api.GET("/dashboard/export.xlsx", handlers.Dashboard.ExportXLSX)
		api.GET("/dashboard/export.csv", handlers.Dashboard.ExportCSV)
	}

	return router, nil
}
