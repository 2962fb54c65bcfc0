package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/stemsi/academic-dashboard/internal/model"
)

var scenario = model.ViewState{
	Selected: []string{"Medicina", "Derecho y Ciencia Política"},
	SortKey:  model.SortByPassed,
}

func TestExportCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newTestService(nil).ExportCSV(context.Background(), scenario, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"Escuela", "Matriculados", "Desaprobados", "Invictos", "% Invictos", "% Desaprobados"},
		{"Derecho y Ciencia Política", "1923", "580", "1343", "69.8", "30.2"},
		{"Medicina", "1461", "559", "902", "61.7", "38.3"},
		{"Total", "3384", "1139", "2245", "66.3", "33.7"},
	}, records)
}

func TestExportXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newTestService(nil).ExportXLSX(context.Background(), scenario, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(ExportSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, "Escuela", rows[0][0])
	assert.Equal(t, "% Desaprobados", rows[0][5])
	assert.Equal(t, "Derecho y Ciencia Política", rows[1][0])
	assert.Equal(t, "1343", rows[1][3])
	assert.Equal(t, "Medicina", rows[2][0])
	assert.Equal(t, "Total", rows[3][0])
	assert.Equal(t, "2245", rows[3][3])
}

func TestExport_RejectsUnknownSchool(t *testing.T) {
	svc := newTestService(nil)
	state := model.ViewState{Selected: []string{"Arquitectura"}}

	var buf bytes.Buffer
	assert.ErrorIs(t, svc.ExportCSV(context.Background(), state, &buf), ErrUnknownSchool)
	assert.ErrorIs(t, svc.ExportXLSX(context.Background(), state, &buf), ErrUnknownSchool)
	assert.ErrorIs(t, svc.ChartPNG(context.Background(), state, &buf), ErrUnknownSchool)
	assert.Zero(t, buf.Len())
}

func TestChartPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newTestService(nil).ChartPNG(context.Background(), scenario, &buf))

	cfg, err := png.DecodeConfig(&buf)
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.Width)
	assert.Equal(t, 500, cfg.Height)
}

func TestChartPNG_AllAndSingleSchool(t *testing.T) {
	svc := newTestService(nil)

	for name, state := range map[string]model.ViewState{
		"all schools": model.DefaultViewState(),
		"one school":  {Selected: []string{"Medicina"}},
	} {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, svc.ChartPNG(context.Background(), state, &buf))

			_, err := png.DecodeConfig(&buf)
			assert.NoError(t, err)
		})
	}
}
