package render

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"math"
	"strings"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"tienda-dashboard/internal/format"
	"tienda-dashboard/internal/models"
)

const (
	DefaultWidth  = 640
	DefaultHeight = 400

	barSpacing = 8
)

var fallbackColor = drawing.Color{R: 161, G: 52, B: 60, A: 255}

// SVG writes spec as an SVG document. Specs without points, or whose values
// cannot be drawn, produce a placeholder so the page always gets a chart.
func SVG(w io.Writer, spec models.ChartSpec) error {
	if spec.Empty() {
		return placeholder(w, spec)
	}

	switch spec.Kind {
	case models.ChartBar:
		return barChart(spec).Render(escapedSVG, w)
	case models.ChartPie:
		pie, ok := pieChart(spec)
		if !ok {
			return placeholder(w, spec)
		}
		return pie.Render(escapedSVG, w)
	case models.ChartScatter, models.ChartLine:
		return seriesChart(spec).Render(escapedSVG, w)
	default:
		return fmt.Errorf("unsupported chart kind %q", spec.Kind)
	}
}

// SVGString renders spec into a string for inline embedding.
func SVGString(spec models.ChartSpec) (string, error) {
	var buf bytes.Buffer
	if err := SVG(&buf, spec); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// escapedSVG is chart.SVG with text bodies escaped on write. go-chart measures
// and wraps labels as given and then emits them verbatim.
func escapedSVG(width, height int) (chart.Renderer, error) {
	r, err := chart.SVG(width, height)
	if err != nil {
		return nil, err
	}
	return escapingRenderer{r}, nil
}

type escapingRenderer struct {
	chart.Renderer
}

func (r escapingRenderer) Text(body string, x, y int) {
	r.Renderer.Text(html.EscapeString(body), x, y)
}

func barChart(spec models.ChartSpec) chart.BarChart {
	color := colorAt(spec.Colors, 0)
	bars := make([]chart.Value, 0, len(spec.Points))
	values := []float64{0}
	for _, p := range spec.Points {
		values = append(values, p.Y)
		bars = append(bars, chart.Value{
			Label: p.Label,
			Value: p.Y,
			Style: chart.Style{FillColor: color, StrokeColor: color},
		})
	}

	return chart.BarChart{
		Title:        spec.Title,
		Width:        DefaultWidth,
		Height:       DefaultHeight,
		BarWidth:     max(4, 560/len(bars)-barSpacing),
		BarSpacing:   barSpacing,
		UseBaseValue: true,
		BaseValue:    0,
		Background:   chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		YAxis:        chart.YAxis{Range: paddedRange(values), ValueFormatter: abbreviated},
		Bars:         bars,
	}
}

// pieChart drops non-positive slices; ok is false when nothing is left.
func pieChart(spec models.ChartSpec) (chart.PieChart, bool) {
	values := make([]chart.Value, 0, len(spec.Points))
	for i, p := range spec.Points {
		if p.Y <= 0 {
			continue
		}
		color := colorAt(spec.Colors, i)
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s (%s)", p.Label, format.Abbreviate(p.Y)),
			Value: p.Y,
			Style: chart.Style{FillColor: color},
		})
	}
	if len(values) == 0 {
		return chart.PieChart{}, false
	}

	return chart.PieChart{
		Title:  spec.Title,
		Width:  DefaultWidth,
		Height: DefaultHeight,
		Values: values,
	}, true
}

func seriesChart(spec models.ChartSpec) chart.Chart {
	color := colorAt(spec.Colors, 0)
	xs := make([]float64, len(spec.Points))
	ys := make([]float64, len(spec.Points))
	for i, p := range spec.Points {
		xs[i] = p.X
		ys[i] = p.Y
	}

	style := chart.Style{StrokeColor: color, StrokeWidth: 2}
	if spec.Kind == models.ChartScatter {
		style = chart.Style{StrokeWidth: chart.Disabled, DotWidth: 4, DotColor: color}
	}

	xAxis := chart.XAxis{Range: paddedRange(xs)}
	switch spec.XField {
	case "date":
		xAxis.ValueFormatter = unixDate
	case "cost":
		xAxis.ValueFormatter = abbreviated
	default:
		xAxis.Ticks = make([]chart.Tick, 0, len(spec.Points))
		for _, p := range spec.Points {
			xAxis.Ticks = append(xAxis.Ticks, chart.Tick{Value: p.X, Label: p.Label})
		}
	}

	return chart.Chart{
		Title:      spec.Title,
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 24, Bottom: 16}},
		XAxis:      xAxis,
		YAxis:      chart.YAxis{Range: paddedRange(ys), ValueFormatter: abbreviated},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    spec.YField,
				XValues: xs,
				YValues: ys,
				Style:   style,
			},
		},
	}
}

// paddedRange widens degenerate ranges, which go-chart refuses to draw.
func paddedRange(values []float64) *chart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		pad := math.Max(math.Abs(lo)*0.1, 1)
		lo, hi = lo-pad, hi+pad
	}
	return &chart.ContinuousRange{Min: lo, Max: hi}
}

func abbreviated(v any) string {
	if f, ok := v.(float64); ok {
		return format.Abbreviate(f)
	}
	return fmt.Sprint(v)
}

func unixDate(v any) string {
	if f, ok := v.(float64); ok {
		return time.Unix(int64(f), 0).UTC().Format(time.DateOnly)
	}
	return fmt.Sprint(v)
}

func colorAt(colors []string, i int) drawing.Color {
	if len(colors) == 0 {
		return fallbackColor
	}
	return parseHex(colors[i%len(colors)])
}

func parseHex(hex string) drawing.Color {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return fallbackColor
	}
	return drawing.ColorFromHex(hex)
}

func placeholder(w io.Writer, spec models.ChartSpec) error {
	_, err := fmt.Fprintf(w,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d"><text x="50%%" y="30" text-anchor="middle" font-family="sans-serif" font-size="16">%s</text><text x="50%%" y="50%%" text-anchor="middle" font-family="sans-serif" font-size="14" fill="#888888">Sin datos</text></svg>`,
		DefaultWidth, DefaultHeight, DefaultWidth, DefaultHeight, html.EscapeString(spec.Title))
	return err
}
