package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/academic-dashboard/internal/chart"
	"github.com/stemsi/academic-dashboard/internal/dashboard"
	"github.com/stemsi/academic-dashboard/internal/model"
	"github.com/stemsi/academic-dashboard/internal/response"
	"github.com/stemsi/academic-dashboard/internal/service"
	"github.com/stemsi/academic-dashboard/internal/validator"
)

const (
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeCSV  = "text/csv; charset=utf-8"
	mimePNG  = "image/png"
)

// DashboardService is what the handlers need from service.DashboardService.
type DashboardService interface {
	Schools(ctx context.Context) service.SchoolsData
	Render(ctx context.Context, state model.ViewState) (*dashboard.View, error)
	ChartPNG(ctx context.Context, state model.ViewState, w io.Writer) error
	ExportXLSX(ctx context.Context, state model.ViewState, w io.Writer) error
	ExportCSV(ctx context.Context, state model.ViewState, w io.Writer) error
	CacheStatus(ctx context.Context) string
}

// DashboardHandler serves the dashboard JSON view and downloads.
type DashboardHandler struct {
	dashboardService DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// dashboardQuery is the view state as it arrives in the query string.
// "school" repeats once per selected school; none selected means all.
type dashboardQuery struct {
	Schools []string `form:"school" binding:"omitempty,max=50,dive,required,max=120"`
	Sort    string   `form:"sort" binding:"omitempty,oneof=enrolled passed failed pctPassed pctFailed"`
	Table   bool     `form:"table"`
}

func (q dashboardQuery) state() model.ViewState {
	return model.ViewState{
		Selected:  q.Schools,
		SortKey:   model.SortKey(q.Sort),
		ShowTable: q.Table,
	}
}

// bindState reads the view state from the query string.
func bindState(c *gin.Context) (model.ViewState, map[string]string) {
	var q dashboardQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		return model.DefaultViewState(), fields
	}
	return q.state(), nil
}

// failState maps a service validation error onto the API envelope.
// It reports false when err is not a validation error.
func failState(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, service.ErrUnknownSchool):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrUnknownSchool, map[string]string{"school": err.Error()})
	case errors.Is(err, service.ErrInvalidSortKey):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidSort, map[string]string{"sort": err.Error()})
	default:
		return false
	}
	return true
}

// GetDashboard godoc
// GET /api/v1/dashboard?school=...&school=...&sort=...&table=...
// Returns the filtered and sorted rows, KPI totals, chart figure and, when asked, table rows.
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	state, fields := bindState(c)
	if fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	view, err := h.dashboardService.Render(c.Request.Context(), state)
	if err != nil {
		if failState(c, err) {
			return
		}
		response.Logger(c).Error().Err(err).Msg("render dashboard")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, view)
}

// GetSchools godoc
// GET /api/v1/schools
func (h *DashboardHandler) GetSchools(c *gin.Context) {
	response.Success(c, http.StatusOK, h.dashboardService.Schools(c.Request.Context()))
}

// GetChartPNG godoc
// GET /api/v1/dashboard/chart.png
func (h *DashboardHandler) GetChartPNG(c *gin.Context) {
	h.download(c, mimePNG, "", func(buf *bytes.Buffer, state model.ViewState) error {
		return h.dashboardService.ChartPNG(c.Request.Context(), state, buf)
	})
}

// ExportXLSX godoc
// GET /api/v1/dashboard/export.xlsx
func (h *DashboardHandler) ExportXLSX(c *gin.Context) {
	h.download(c, mimeXLSX, "rendimiento-escuelas.xlsx", func(buf *bytes.Buffer, state model.ViewState) error {
		return h.dashboardService.ExportXLSX(c.Request.Context(), state, buf)
	})
}

// ExportCSV godoc
// GET /api/v1/dashboard/export.csv
func (h *DashboardHandler) ExportCSV(c *gin.Context) {
	h.download(c, mimeCSV, "rendimiento-escuelas.csv", func(buf *bytes.Buffer, state model.ViewState) error {
		return h.dashboardService.ExportCSV(c.Request.Context(), state, buf)
	})
}

// download renders into a buffer first so failures still produce a JSON error.
func (h *DashboardHandler) download(c *gin.Context, mime, filename string, write func(*bytes.Buffer, model.ViewState) error) {
	state, fields := bindState(c)
	if fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	var buf bytes.Buffer
	if err := write(&buf, state); err != nil {
		if failState(c, err) {
			return
		}
		if errors.Is(err, chart.ErrNoData) {
			c.Status(http.StatusNoContent)
			return
		}
		response.Logger(c).Error().Err(err).Str("mime", mime).Msg("render download")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if filename != "" {
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	}
	c.Data(http.StatusOK, mime, buf.Bytes())
}
