package plot

import "slices"

// Axis titles used when a builder gets none.
const defaultTimeAxis = "Time"

// SeriesOptions configures TimeSeries.
type SeriesOptions struct {
	Name            string
	Color           string
	HideRangeSlider bool
	XAxisTitle      string
	YAxisTitle      string
	Annotations     []Annotation
}

// Series is one line of a multi-series plot.
type Series struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
	Color  string    `json:"color,omitempty"`
}

// MultiSeriesOptions configures MultiSeries.
type MultiSeriesOptions struct {
	Scheme          string
	HideRangeSlider bool
	XAxisTitle      string
	YAxisTitle      string
	Annotations     []Annotation
}

// BarOptions configures Bar.
type BarOptions struct {
	Name        string
	Color       string
	Horizontal  bool
	XAxisTitle  string
	YAxisTitle  string
	Annotations []Annotation
}

// ScatterOptions configures Scatter.
type ScatterOptions struct {
	Name       string
	Color      string
	Size       float64
	Trendline  bool
	XAxisTitle string
	YAxisTitle string
}

// TimeSeries builds a single line plot over timestamps.
func TimeSeries(timestamps []any, values []float64, opts SeriesOptions) *Spec {
	name := orDefault(opts.Name, "Data")
	trace := map[string]any{
		"x":             timestamps,
		"y":             values,
		"type":          "scatter",
		"mode":          "lines",
		"name":          name,
		"line":          map[string]any{"color": orDefault(opts.Color, NeonCyan), "width": 2},
		"hovertemplate": "%{x}<br>%{y:.2f}<extra></extra>",
	}

	layout := timeLayout(opts.XAxisTitle, opts.YAxisTitle, !opts.HideRangeSlider)
	return &Spec{
		Data:   []map[string]any{trace},
		Layout: ApplyToLayout(layout, opts.Annotations),
	}
}

// MultiSeries builds one line per series over shared timestamps. Series
// without a color take the next color of the scheme.
func MultiSeries(timestamps []any, series []Series, opts MultiSeriesOptions) *Spec {
	colors := scheme(opts.Scheme)

	data := make([]map[string]any, 0, len(series))
	for i, s := range series {
		data = append(data, map[string]any{
			"x":             timestamps,
			"y":             s.Values,
			"type":          "scatter",
			"mode":          "lines",
			"name":          s.Name,
			"line":          map[string]any{"color": orDefault(s.Color, colors[i%len(colors)]), "width": 2},
			"hovertemplate": s.Name + "<br>%{x}<br>%{y:.2f}<extra></extra>",
		})
	}

	layout := timeLayout(opts.XAxisTitle, opts.YAxisTitle, !opts.HideRangeSlider)
	layout["showlegend"] = true
	layout["legend"] = map[string]any{
		"x":           0,
		"y":           1,
		"bgcolor":     "rgba(38, 20, 71, 0.8)",
		"bordercolor": NeonCyan,
		"borderwidth": 1,
	}

	return &Spec{Data: data, Layout: ApplyToLayout(layout, opts.Annotations)}
}

// Bar builds a bar chart, vertical unless opts.Horizontal is set.
func Bar(labels []string, values []float64, opts BarOptions) *Spec {
	orientation := "v"
	var x, y any = labels, values
	hover := "%{x}<br>%{y:.2f}<extra></extra>"
	if opts.Horizontal {
		orientation = "h"
		x, y = values, labels
		hover = "%{y}<br>%{x:.2f}<extra></extra>"
	}

	trace := map[string]any{
		"x":           x,
		"y":           y,
		"type":        "bar",
		"name":        orDefault(opts.Name, "Data"),
		"orientation": orientation,
		"marker": map[string]any{
			"color": orDefault(opts.Color, NeonOrange),
			"line":  map[string]any{"color": NeonCyan, "width": 1},
		},
		"hovertemplate": hover,
	}

	layout := map[string]any{
		"xaxis": axis(opts.XAxisTitle),
		"yaxis": axis(opts.YAxisTitle),
	}
	return &Spec{Data: []map[string]any{trace}, Layout: ApplyToLayout(layout, opts.Annotations)}
}

// Scatter builds a marker plot with an optional least-squares trend line.
func Scatter(xs, ys []float64, opts ScatterOptions) *Spec {
	size := opts.Size
	if size <= 0 {
		size = 8
	}

	data := []map[string]any{{
		"x":    xs,
		"y":    ys,
		"type": "scatter",
		"mode": "markers",
		"name": orDefault(opts.Name, "Data"),
		"marker": map[string]any{
			"color": orDefault(opts.Color, NeonCyan),
			"size":  size,
			"line":  map[string]any{"color": NeonOrange, "width": 1},
		},
		"hovertemplate": "(%{x:.2f}, %{y:.2f})<extra></extra>",
	}}

	if opts.Trendline && len(xs) > 1 {
		slope, intercept := linearRegression(xs, ys)
		trendX := []float64{slices.Min(xs), slices.Max(xs)}
		data = append(data, map[string]any{
			"x":         trendX,
			"y":         []float64{slope*trendX[0] + intercept, slope*trendX[1] + intercept},
			"type":      "scatter",
			"mode":      "lines",
			"name":      "Trend",
			"line":      map[string]any{"color": NeonGreen, "width": 2, "dash": "dash"},
			"hoverinfo": "skip",
		})
	}

	return &Spec{
		Data: data,
		Layout: map[string]any{
			"xaxis":      axis(opts.XAxisTitle),
			"yaxis":      axis(opts.YAxisTitle),
			"showlegend": opts.Trendline,
		},
	}
}

// linearRegression fits y = slope*x + intercept by least squares over the
// pairs both slices cover. A vertical point cloud yields a flat line.
func linearRegression(xs, ys []float64) (slope, intercept float64) {
	n := min(len(xs), len(ys))
	if n == 0 {
		return 0, 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for i := 0; i < n; i++ {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumXX += xs[i] * xs[i]
	}

	nf := float64(n)
	denom := nf*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / nf
	}
	slope = (nf*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / nf
	return slope, intercept
}

func timeLayout(xTitle, yTitle string, rangeSlider bool) map[string]any {
	x := axis(orDefault(xTitle, defaultTimeAxis))
	x["rangeslider"] = map[string]any{"visible": rangeSlider}
	return map[string]any{
		"xaxis": x,
		"yaxis": axis(yTitle),
	}
}

func axis(title string) map[string]any {
	return map[string]any{"title": map[string]any{"text": title}}
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
