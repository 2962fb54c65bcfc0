package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/stemsi/academic-dashboard/internal/chart"
	"github.com/stemsi/academic-dashboard/internal/dashboard"
	"github.com/stemsi/academic-dashboard/internal/model"
	"github.com/xuri/excelize/v2"
)

// ExportSheetName is the worksheet holding the exported table.
const ExportSheetName = "Escuelas"

// exportHeader follows the column order of the on-page table.
var exportHeader = []string{
	"Escuela",
	model.SortByEnrolled.Label(),
	model.SortByFailed.Label(),
	model.SortByPassed.Label(),
	model.SortByPctPassed.Label(),
	model.SortByPctFailed.Label(),
}

// ChartPNG draws the view's chart for state into w.
func (s *DashboardService) ChartPNG(ctx context.Context, state model.ViewState, w io.Writer) error {
	v, err := s.Render(ctx, state)
	if err != nil {
		return err
	}
	return chart.RenderPNG(v.Rows, w, s.chartOpts)
}

// ExportXLSX writes the filtered and sorted table for state as a spreadsheet,
// followed by a totals row.
func (s *DashboardService) ExportXLSX(ctx context.Context, state model.ViewState, w io.Writer) error {
	v, err := s.Render(ctx, state)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ExportSheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for row, values := range exportRows(v) {
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+1)
			if err != nil {
				return fmt.Errorf("cell name: %w", err)
			}
			if err := f.SetCellValue(ExportSheetName, cell, value); err != nil {
				return fmt.Errorf("set %s: %w", cell, err)
			}
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(exportHeader))
	if err := f.SetCellStyle(ExportSheetName, "A1", lastCol+"1", bold); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}
	totalRow := strconv.Itoa(len(v.Rows) + 2)
	if err := f.SetCellStyle(ExportSheetName, "A"+totalRow, lastCol+totalRow, bold); err != nil {
		return fmt.Errorf("apply totals style: %w", err)
	}
	if err := f.SetColWidth(ExportSheetName, "A", "A", 52); err != nil {
		return fmt.Errorf("column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

// ExportCSV writes the same table as ExportXLSX in CSV form.
func (s *DashboardService) ExportCSV(ctx context.Context, state model.ViewState, w io.Writer) error {
	v, err := s.Render(ctx, state)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	for _, values := range exportRows(v) {
		record := make([]string, len(values))
		for i, value := range values {
			record[i] = formatCell(value)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// exportRows returns header, one row per school and a totals row.
func exportRows(v *dashboard.View) [][]interface{} {
	rows := make([][]interface{}, 0, len(v.Rows)+2)

	header := make([]interface{}, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = h
	}
	rows = append(rows, header)

	for _, r := range v.Rows {
		rows = append(rows, []interface{}{r.Name, r.Enrolled, r.Failed, r.Passed, r.PctPassed, r.PctFailed})
	}

	t := v.Totals
	rows = append(rows, []interface{}{"Total", t.Enrolled, t.Failed, t.Passed, t.PctPassed, t.PctFailed})
	return rows
}

func formatCell(value interface{}) string {
	switch x := value.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', 1, 64)
	default:
		return fmt.Sprint(x)
	}
}
