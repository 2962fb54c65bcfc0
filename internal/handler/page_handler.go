package handler

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/academic-dashboard/internal/chart"
	"github.com/stemsi/academic-dashboard/internal/dashboard"
	"github.com/stemsi/academic-dashboard/internal/model"
	"github.com/stemsi/academic-dashboard/internal/response"
	"github.com/stemsi/academic-dashboard/internal/service"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PageHandler renders the HTML dashboard. Every control change resubmits the form,
// so each request recomputes the whole page from its query string.
type PageHandler struct {
	dashboardService DashboardService
	numbers          *message.Printer
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(dashboardService DashboardService) *PageHandler {
	return &PageHandler{
		dashboardService: dashboardService,
		numbers:          message.NewPrinter(language.English),
	}
}

type schoolOption struct {
	Name     string
	Selected bool
}

type sortOption struct {
	Key      model.SortKey
	Label    string
	Selected bool
}

type kpi struct {
	Label string
	Value string
	Hint  string
}

type tableRow struct {
	Name      string
	Enrolled  string
	Failed    string
	Passed    string
	PctPassed string
	PctFailed string
}

// pageData is everything dashboard.tmpl reads.
type pageData struct {
	Title       string
	Error       string
	Schools     []schoolOption
	SortOptions []sortOption
	SortLabel   string
	ShowTable   bool
	KPIs        []kpi
	Figure      chart.Figure
	Columns     []string
	Table       []tableRow
	Query       template.URL
	RequestID   string
}

// ShowDashboard godoc
// GET /
func (h *PageHandler) ShowDashboard(c *gin.Context) {
	ctx := c.Request.Context()
	status := http.StatusOK
	var problem string

	state, fields := bindState(c)
	if fields != nil {
		status = http.StatusBadRequest
		problem = response.GetMessage(response.ErrValidation)
	}

	view, err := h.dashboardService.Render(ctx, state)
	if err != nil {
		status = http.StatusBadRequest
		switch {
		case errors.Is(err, service.ErrUnknownSchool):
			problem = response.GetMessage(response.ErrUnknownSchool)
		case errors.Is(err, service.ErrInvalidSortKey):
			problem = response.GetMessage(response.ErrInvalidSort)
		default:
			response.Logger(c).Error().Err(err).Msg("render dashboard page")
			problem = response.GetMessage(response.ErrInternal)
			status = http.StatusInternalServerError
		}
		state = model.DefaultViewState()
		if view, err = h.dashboardService.Render(ctx, state); err != nil {
			response.Logger(c).Error().Err(err).Msg("render default dashboard page")
			c.String(http.StatusInternalServerError, response.GetMessage(response.ErrInternal))
			return
		}
	}

	data := h.buildPage(ctx, view)
	data.Error = problem
	data.RequestID = response.BuildMetadata(c).RequestID
	c.HTML(status, "dashboard.tmpl", data)
}

func (h *PageHandler) buildPage(ctx context.Context, v *dashboard.View) pageData {
	selected := make(map[string]bool, len(v.State.Selected))
	for _, name := range v.State.Selected {
		selected[name] = true
	}
	names := h.dashboardService.Schools(ctx).Schools
	schools := make([]schoolOption, len(names))
	for i, name := range names {
		// The multi-select shows every school selected when nothing narrows it.
		schools[i] = schoolOption{Name: name, Selected: len(selected) == 0 || selected[name]}
	}

	sorts := make([]sortOption, len(model.SortKeys))
	for i, k := range model.SortKeys {
		sorts[i] = sortOption{Key: k, Label: k.Label(), Selected: k == v.State.SortKey}
	}

	t := v.Totals
	data := pageData{
		Title:       "Dashboard de Rendimiento Estudiantil",
		Schools:     schools,
		SortOptions: sorts,
		SortLabel:   v.State.SortKey.Label(),
		ShowTable:   v.State.ShowTable,
		KPIs: []kpi{
			{Label: "Total Matriculados", Value: h.count(t.Enrolled)},
			{Label: "Total Invictos", Value: h.count(t.Passed), Hint: chart.PercentLabel(t.PctPassed)},
			{Label: "Total Desaprobados", Value: h.count(t.Failed), Hint: chart.PercentLabel(t.PctFailed)},
		},
		Figure:  v.Figure,
		Columns: []string{"Escuela", "Matriculados", "Desaprobados", "Invictos", "% Invictos", "% Desaprobados"},
		Query:   template.URL(stateQuery(v.State)),
	}

	for _, r := range v.Table {
		data.Table = append(data.Table, tableRow{
			Name:      r.Name,
			Enrolled:  h.count(r.Enrolled),
			Failed:    h.count(r.Failed),
			Passed:    h.count(r.Passed),
			PctPassed: strconv.FormatFloat(r.PctPassed, 'f', 1, 64),
			PctFailed: strconv.FormatFloat(r.PctFailed, 'f', 1, 64),
		})
	}
	return data
}

// count formats n with thousands separators, e.g. 2,245.
func (h *PageHandler) count(n int) string {
	return h.numbers.Sprintf("%d", n)
}

// stateQuery re-encodes a view state for the download links.
func stateQuery(state model.ViewState) string {
	q := url.Values{}
	for _, name := range state.Selected {
		q.Add("school", name)
	}
	q.Set("sort", string(state.SortKey))
	return q.Encode()
}
