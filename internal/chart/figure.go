// Package chart composes the grouped-bar and dual-line figure shown on the dashboard.
//
// Figure is built from go-plotly's generated graph objects and marshals to the exact
// document Plotly.js accepts for newPlot. RenderPNG draws the same data server side.
package chart

import (
	"encoding/json"
	"fmt"
	"strconv"

	grob "github.com/MetalBlueberry/go-plotly/graph_objects"

	"github.com/stemsi/academic-dashboard/internal/model"
)

// Colours shared by the browser figure and the PNG renderer.
const (
	ColorEnrolled  = "blue"
	ColorFailed    = "red"
	ColorPassed    = "green"
	ColorPctPassed = "orange"
	ColorPctFailed = "purple"
)

const (
	// DefaultHeight is the figure height in pixels.
	DefaultHeight = 700
	// TickAngle rotates the school names on the x axis.
	TickAngle = -45
	// PercentAxis is the axis id the percentage lines are drawn against.
	PercentAxis = "y2"
)

// Figure is the data + layout pair rendered by the page.
type Figure struct {
	Data   grob.Traces `json:"data"`
	Layout *Layout     `json:"layout"`
}

// Layout is the Plotly layout plus the percentage axis overlaid on the right.
type Layout struct {
	grob.Layout
	Yaxis2 *grob.LayoutYaxis `json:"yaxis2,omitempty"`
}

// UnmarshalJSON restores the concrete trace types, so cached views decode back
// into a Figure.
func (f *Figure) UnmarshalJSON(data []byte) error {
	var raw struct {
		Data   []json.RawMessage `json:"data"`
		Layout *Layout           `json:"layout"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	traces := make(grob.Traces, 0, len(raw.Data))
	for i, td := range raw.Data {
		var head struct {
			Type grob.TraceType `json:"type"`
		}
		if err := json.Unmarshal(td, &head); err != nil {
			return fmt.Errorf("trace %d: %w", i, err)
		}

		var tr grob.Trace
		switch head.Type {
		case grob.TraceTypeBar:
			tr = &grob.Bar{}
		case grob.TraceTypeScatter:
			tr = &grob.Scatter{}
		default:
			return fmt.Errorf("trace %d: unsupported type %q", i, head.Type)
		}
		if err := json.Unmarshal(td, tr); err != nil {
			return fmt.Errorf("trace %d: %w", i, err)
		}
		traces = append(traces, tr)
	}

	f.Data = traces
	f.Layout = raw.Layout
	return nil
}

// Compose builds the dashboard figure for records in the given order.
// An empty slice produces five empty traces.
func Compose(records []model.SchoolRecord) Figure {
	n := len(records)
	names := make([]string, n)
	enrolledText := make([]string, n)
	pctPassedText := make([]string, n)
	pctFailedText := make([]string, n)

	for i, r := range records {
		names[i] = r.Name
		enrolledText[i] = strconv.Itoa(r.Enrolled)
		pctPassedText[i] = PercentLabel(r.PctPassed)
		pctFailedText[i] = PercentLabel(r.PctFailed)
	}

	bar := func(key model.SortKey, color string) *grob.Bar {
		return &grob.Bar{
			Type:   grob.TraceTypeBar,
			Name:   key.Label(),
			X:      names,
			Y:      column(records, key),
			Marker: &grob.BarMarker{Color: color},
		}
	}
	line := func(key model.SortKey, color, dash, position string, text []string) *grob.Scatter {
		return &grob.Scatter{
			Type:         grob.TraceTypeScatter,
			Name:         key.Label(),
			X:            names,
			Y:            column(records, key),
			Yaxis:        PercentAxis,
			Mode:         grob.ScatterMode("lines+markers+text"),
			Text:         text,
			Textposition: grob.ScatterTextposition(position),
			Line:         &grob.ScatterLine{Color: color, Width: 1.5, Dash: dash},
		}
	}

	enrolled := bar(model.SortByEnrolled, ColorEnrolled)
	enrolled.Text = enrolledText
	enrolled.Textposition = grob.BarTextposition("outside")

	return Figure{
		Data: grob.Traces{
			enrolled,
			bar(model.SortByFailed, ColorFailed),
			bar(model.SortByPassed, ColorPassed),
			line(model.SortByPctPassed, ColorPctPassed, "solid", "top center", pctPassedText),
			line(model.SortByPctFailed, ColorPctFailed, "dash", "bottom center", pctFailedText),
		},
		Layout: &Layout{
			Layout: grob.Layout{
				Barmode: grob.LayoutBarmode("group"),
				Height:  DefaultHeight,
				Legend: &grob.LayoutLegend{
					Orientation: grob.LayoutLegendOrientation("h"),
					Yanchor:     grob.LayoutLegendYanchor("bottom"),
					Y:           1.02,
					Xanchor:     grob.LayoutLegendXanchor("right"),
					X:           1,
				},
				Xaxis: &grob.LayoutXaxis{Tickangle: TickAngle},
				Yaxis: &grob.LayoutYaxis{Title: &grob.LayoutYaxisTitle{Text: "Estudiantes"}},
			},
			Yaxis2: &grob.LayoutYaxis{
				Title:      &grob.LayoutYaxisTitle{Text: "%Porcentajes"},
				Range:      []float64{0, 100},
				Overlaying: grob.LayoutYaxisOverlaying("y"),
				Side:       grob.LayoutYaxisSide("right"),
			},
		},
	}
}

// PercentLabel formats a percentage the way point annotations show it, e.g. "68.0%".
func PercentLabel(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}
