package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/academic-dashboard/internal/config"
	"github.com/stemsi/academic-dashboard/internal/database"
	"github.com/stemsi/academic-dashboard/internal/handler"
	"github.com/stemsi/academic-dashboard/internal/logger"
	"github.com/stemsi/academic-dashboard/internal/repository"
	"github.com/stemsi/academic-dashboard/internal/router"
	"github.com/stemsi/academic-dashboard/internal/service"
	"github.com/stemsi/academic-dashboard/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Bool("render_cache", cfg.CacheEnabled()).
		Msg("Starting academic performance dashboard")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to Redis (optional render cache) ──────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	var viewCache service.ViewCache
	if rdb != nil {
		defer rdb.Close()
		viewCache = repository.NewViewCacheRepository(rdb)
	}

	// ─── Initialize Repositories & Services ────────────────────────────
	schoolRepo := repository.NewSchoolRepository()
	dashboardService := service.NewDashboardService(schoolRepo, viewCache, cfg, log)

	// The dataset is compiled in, so views cached by a previous build may be stale.
	if removed, err := dashboardService.FlushCache(ctx); err != nil {
		log.Warn().Err(err).Msg("Render cache flush failed")
	} else if removed > 0 {
		log.Info().Int64("removed", removed).Msg("Flushed cached dashboard views")
	}
	dashboardService.PrewarmCache(ctx)

	log.Info().Int("schools", schoolRepo.Len()).Msg("Dataset loaded")

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Page:      handler.NewPageHandler(dashboardService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		System:    handler.NewSystemHandler(dashboardService),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r, err := router.SetupRouter(ctx, handlers, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up router")
	}

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
