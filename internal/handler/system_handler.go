package handler

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/academic-dashboard/internal/response"
)

// SystemHandler reports process health and Go runtime metrics.
type SystemHandler struct {
	dashboardService DashboardService
	startTime        time.Time
}

func NewSystemHandler(dashboardService DashboardService) *SystemHandler {
	return &SystemHandler{
		dashboardService: dashboardService,
		startTime:        time.Now(),
	}
}

type systemHealth struct {
	Status      string `json:"status"`
	Uptime      string `json:"uptime"`
	RenderCache string `json:"render_cache"`
	Schools     int    `json:"schools"`

	// Go Application
	Goroutines int    `json:"goroutines"`
	HeapAlloc  uint64 `json:"heap_alloc"`
	HeapSys    uint64 `json:"heap_sys"`
	NumGC      uint32 `json:"num_gc"`
	GoVersion  string `json:"go_version"`
	NumCPU     int    `json:"num_cpu"`
}

// Health godoc
// GET /health
// The render cache is optional, so an unreachable Redis degrades the status
// without failing the check.
func (h *SystemHandler) Health(c *gin.Context) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	health := systemHealth{
		Status:      "ok",
		Uptime:      formatDuration(time.Since(h.startTime)),
		RenderCache: h.dashboardService.CacheStatus(c.Request.Context()),
		Schools:     len(h.dashboardService.Schools(c.Request.Context()).Schools),
		Goroutines:  runtime.NumGoroutine(),
		HeapAlloc:   ms.HeapAlloc,
		HeapSys:     ms.Sys,
		NumGC:       ms.NumGC,
		GoVersion:   runtime.Version(),
		NumCPU:      runtime.NumCPU(),
	}
	if health.RenderCache == "unavailable" {
		health.Status = "degraded"
	}

	response.Success(c, http.StatusOK, health)
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
