package chart

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/stemsi/academic-dashboard/internal/model"
)

// ErrNoData is returned by RenderPNG when there is nothing to draw.
var ErrNoData = errors.New("chart: no records to draw")

// Options controls the PNG canvas.
type Options struct {
	Width  int
	Height int
}

// DefaultOptions matches the browser figure's proportions.
var DefaultOptions = Options{Width: 1600, Height: DefaultHeight}

var pngColors = map[string]drawing.Color{
	ColorEnrolled:  drawing.ColorFromHex("0000ff"),
	ColorFailed:    drawing.ColorFromHex("ff0000"),
	ColorPassed:    drawing.ColorFromHex("008000"),
	ColorPctPassed: drawing.ColorFromHex("ffa500"),
	ColorPctFailed: drawing.ColorFromHex("800080"),
}

// RenderPNG draws records as a static chart: counts on the primary axis,
// percentages on a secondary axis fixed to [0,100], school names as rotated x ticks.
func RenderPNG(records []model.SchoolRecord, w io.Writer, opts Options) error {
	if len(records) == 0 {
		return ErrNoData
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts = DefaultOptions
	}

	n := len(records)
	xs := make([]float64, n)
	// go-chart takes the x range from the tick extremes, so blank ticks half a slot
	// outside the data keep a single school from collapsing the axis.
	ticks := make([]gochart.Tick, 0, n+2)
	ticks = append(ticks, gochart.Tick{Value: -0.5})
	maxCount := 0
	for i, r := range records {
		xs[i] = float64(i)
		ticks = append(ticks, gochart.Tick{Value: float64(i), Label: r.Name})
		if r.Enrolled > maxCount {
			maxCount = r.Enrolled
		}
	}
	ticks = append(ticks, gochart.Tick{Value: float64(n) - 0.5})
	if maxCount == 0 {
		maxCount = 1
	}

	countSeries := func(key model.SortKey, color string) gochart.Series {
		return gochart.ContinuousSeries{
			Name:    key.Label(),
			XValues: xs,
			YValues: column(records, key),
			Style: gochart.Style{
				StrokeColor: pngColors[color],
				StrokeWidth: 2,
				DotColor:    pngColors[color],
				DotWidth:    4,
			},
		}
	}
	pctSeries := func(key model.SortKey, color string, dash []float64) gochart.Series {
		return gochart.ContinuousSeries{
			Name:    key.Label(),
			YAxis:   gochart.YAxisSecondary,
			XValues: xs,
			YValues: column(records, key),
			Style: gochart.Style{
				StrokeColor:     pngColors[color],
				StrokeWidth:     1.5,
				StrokeDashArray: dash,
				DotColor:        pngColors[color],
				DotWidth:        3,
			},
		}
	}

	ch := gochart.Chart{
		Width:  opts.Width,
		Height: opts.Height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40, Left: 20, Right: 20, Bottom: 220},
		},
		XAxis: gochart.XAxis{
			Range:     &gochart.ContinuousRange{Min: -0.5, Max: float64(n) - 0.5},
			Ticks:     ticks,
			TickStyle: gochart.Style{TextRotationDegrees: 45, FontSize: 9},
		},
		YAxis: gochart.YAxis{
			Name:  "Estudiantes",
			Range: &gochart.ContinuousRange{Min: 0, Max: float64(maxCount) * 1.15},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		YAxisSecondary: gochart.YAxis{
			Name:  "%Porcentajes",
			// No explicit ticks: v2.1.1 sizes the secondary axis from the primary
			// axis ticks whenever secondary ticks are set.
			Range: &gochart.ContinuousRange{Min: 0, Max: 100},
		},
		Series: []gochart.Series{
			countSeries(model.SortByEnrolled, ColorEnrolled),
			countSeries(model.SortByFailed, ColorFailed),
			countSeries(model.SortByPassed, ColorPassed),
			pctSeries(model.SortByPctPassed, ColorPctPassed, nil),
			pctSeries(model.SortByPctFailed, ColorPctFailed, []float64{5, 5}),
		},
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}

	// A failed render still flushes a partial image, so nothing reaches w until it succeeds.
	var buf bytes.Buffer
	if err := ch.Render(gochart.PNG, &buf); err != nil {
		return fmt.Errorf("render chart png: %w", err)
	}
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("write chart png: %w", err)
	}
	return nil
}

func column(records []model.SchoolRecord, key model.SortKey) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = r.Value(key)
	}
	return out
}
