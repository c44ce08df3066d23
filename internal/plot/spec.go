package plot

import (
	"encoding/json"
	"fmt"
	"maps"
	"strings"
)

// Chart shorthand names accepted by ParseSpec.
const (
	ChartTimeSeries  = "timeseries"
	ChartMultiSeries = "multiseries"
	ChartBar         = "bar"
	ChartScatter     = "scatter"
)

// DefaultHeight is the plot height in pixels when the layout sets none.
const DefaultHeight = 600

// Spec is a Plotly figure document.
type Spec struct {
	Data   []map[string]any `json:"data"`
	Layout map[string]any   `json:"layout"`
	Config map[string]any   `json:"config,omitempty"`

	// XRange holds the first and last x values across traces. The page
	// script clamps panning to it.
	XRange []any `json:"xRange,omitempty"`
}

// chartShorthand is the compact form of a plot built by the builders.
type chartShorthand struct {
	Chart       string         `json:"chart"`
	X           []any          `json:"x"`
	Y           []float64      `json:"y"`
	Labels      []string       `json:"labels"`
	Values      []float64      `json:"values"`
	Series      []Series       `json:"series"`
	Name        string         `json:"name"`
	Color       string         `json:"color"`
	Scheme      string         `json:"scheme"`
	XTitle      string         `json:"xTitle"`
	YTitle      string         `json:"yTitle"`
	RangeSlider *bool          `json:"rangeSlider"`
	Orientation string         `json:"orientation"`
	Size        float64        `json:"size"`
	Trendline   bool           `json:"trendline"`
	Annotations []Annotation   `json:"annotations"`
	Layout      map[string]any `json:"layout"`
	Config      map[string]any `json:"config"`
}

// ParseSpec decodes a Plotly document or a chart shorthand. A Plotly
// document must carry a "data" array; its layout defaults to {}.
func ParseSpec(raw []byte) (*Spec, error) {
	var probe map[string]any
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}

	if _, ok := probe["chart"]; ok {
		return parseShorthand(raw)
	}

	if _, ok := probe["data"].([]any); !ok {
		return nil, ErrMissingData
	}

	var s Spec
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}
	if s.Layout == nil {
		s.Layout = make(map[string]any)
	}
	return &s, nil
}

func parseShorthand(raw []byte) (*Spec, error) {
	var c chartShorthand
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}

	hideSlider := c.RangeSlider != nil && !*c.RangeSlider

	var s *Spec
	switch strings.ToLower(c.Chart) {
	case ChartTimeSeries:
		if len(c.X) != len(c.Y) {
			return nil, fmt.Errorf("%w: %d x values, %d y values", ErrShortSeries, len(c.X), len(c.Y))
		}
		s = TimeSeries(c.X, c.Y, SeriesOptions{
			Name: c.Name, Color: c.Color, HideRangeSlider: hideSlider,
			XAxisTitle: c.XTitle, YAxisTitle: c.YTitle, Annotations: c.Annotations,
		})
	case ChartMultiSeries:
		for _, series := range c.Series {
			if len(series.Values) != len(c.X) {
				return nil, fmt.Errorf("%w: series %q has %d values for %d timestamps",
					ErrShortSeries, series.Name, len(series.Values), len(c.X))
			}
		}
		s = MultiSeries(c.X, c.Series, MultiSeriesOptions{
			Scheme: c.Scheme, HideRangeSlider: hideSlider,
			XAxisTitle: c.XTitle, YAxisTitle: c.YTitle, Annotations: c.Annotations,
		})
	case ChartBar:
		if len(c.Labels) != len(c.Values) {
			return nil, fmt.Errorf("%w: %d labels, %d values", ErrShortSeries, len(c.Labels), len(c.Values))
		}
		s = Bar(c.Labels, c.Values, BarOptions{
			Name: c.Name, Color: c.Color, Horizontal: c.Orientation == "h",
			XAxisTitle: c.XTitle, YAxisTitle: c.YTitle, Annotations: c.Annotations,
		})
	case ChartScatter:
		xs, err := toFloats(c.X)
		if err != nil {
			return nil, err
		}
		if len(xs) != len(c.Y) {
			return nil, fmt.Errorf("%w: %d x values, %d y values", ErrShortSeries, len(xs), len(c.Y))
		}
		s = Scatter(xs, c.Y, ScatterOptions{
			Name: c.Name, Color: c.Color, Size: c.Size, Trendline: c.Trendline,
			XAxisTitle: c.XTitle, YAxisTitle: c.YTitle,
		})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownChart, c.Chart)
	}

	s.Layout = mergeMaps(s.Layout, c.Layout)
	s.Config = c.Config
	return s, nil
}

// DefaultLayout returns the dark synthwave theme layout.
func DefaultLayout() map[string]any {
	return map[string]any{
		"paper_bgcolor": "rgba(38, 20, 71, 0.7)",
		"plot_bgcolor":  "rgba(0, 2, 33, 0.5)",
		"font": map[string]any{
			"family": "var(--font-inter), sans-serif",
			"color":  Peach,
			"size":   12,
		},
		"xaxis": map[string]any{
			"gridcolor": "rgba(255, 108, 17, 0.2)",
			"linecolor": NeonCyan,
			"tickfont":  map[string]any{"color": NeonCyan},
			"rangeslider": map[string]any{
				"visible":     true,
				"bgcolor":     "rgba(0, 2, 33, 0.8)",
				"bordercolor": NeonCyan,
				"borderwidth": 1,
			},
		},
		"yaxis": map[string]any{
			"gridcolor": "rgba(255, 108, 17, 0.2)",
			"linecolor": NeonCyan,
			"tickfont":  map[string]any{"color": NeonCyan},
		},
		"hovermode": "x unified",
		"hoverlabel": map[string]any{
			"bgcolor":     "rgba(38, 20, 71, 0.95)",
			"bordercolor": NeonCyan,
			"font":        map[string]any{"color": Peach},
		},
		"margin": map[string]any{"l": 60, "r": 40, "t": 40, "b": 80},
		"height": DefaultHeight,
	}
}

// DefaultConfig returns the Plotly config for a plot element id.
func DefaultConfig(id string) map[string]any {
	return map[string]any{
		"responsive":             true,
		"displayModeBar":         true,
		"displaylogo":            false,
		"modeBarButtonsToRemove": []any{"lasso2d", "select2d"},
		"toImageButtonOptions": map[string]any{
			"format":   "png",
			"filename": orDefault(id, "plot"),
			"height":   800,
			"width":    1200,
			"scale":    2,
		},
	}
}

// Themed returns a copy of s with the theme layout and config merged in.
// Keys set by the plot win, nested objects are merged key by key.
func Themed(s *Spec, id string) *Spec {
	out := &Spec{
		Data:   s.Data,
		Layout: mergeMaps(DefaultLayout(), s.Layout),
		Config: mergeMaps(DefaultConfig(id), s.Config),
	}
	if lo, hi, ok := xRange(s.Data); ok {
		out.XRange = []any{lo, hi}
	}
	return out
}

// SetHeight overrides the layout height.
func (s *Spec) SetHeight(px int) {
	if s.Layout == nil {
		s.Layout = make(map[string]any)
	}
	s.Layout["height"] = px
}

// JSON encodes the plot for a data attribute.
func (s *Spec) JSON() (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encoding plot: %w", err)
	}
	return string(b), nil
}

// mergeMaps returns base overlaid with override. Nested maps present in
// both are merged recursively; any other override value replaces the base.
func mergeMaps(base, override map[string]any) map[string]any {
	out := maps.Clone(base)
	if out == nil {
		out = make(map[string]any, len(override))
	}
	for k, v := range override {
		bm, bok := out[k].(map[string]any)
		om, ook := v.(map[string]any)
		if bok && ook {
			out[k] = mergeMaps(bm, om)
			continue
		}
		out[k] = v
	}
	return out
}

// xRange finds the smallest first x value and the largest last x value
// across traces. Traces with mixed or non-comparable x values are skipped.
func xRange(data []map[string]any) (lo, hi any, ok bool) {
	for _, trace := range data {
		first, last, found := endpoints(trace["x"])
		if !found {
			continue
		}
		if !ok {
			lo, hi, ok = first, last, true
			continue
		}
		if less(first, lo) {
			lo = first
		}
		if less(hi, last) {
			hi = last
		}
	}
	return lo, hi, ok
}

func endpoints(v any) (first, last any, ok bool) {
	switch xs := v.(type) {
	case []any:
		if len(xs) > 0 {
			return xs[0], xs[len(xs)-1], true
		}
	case []float64:
		if len(xs) > 0 {
			return xs[0], xs[len(xs)-1], true
		}
	case []string:
		if len(xs) > 0 {
			return xs[0], xs[len(xs)-1], true
		}
	}
	return nil, nil, false
}

// less compares two numbers or two strings. Other pairs are unordered.
func less(a, b any) bool {
	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		return ok && av < bv
	case string:
		bv, ok := b.(string)
		return ok && av < bv
	}
	return false
}

func toFloats(values []any) ([]float64, error) {
	out := make([]float64, len(values))
	for i, v := range values {
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("%w: scatter x value %v is not a number", ErrInvalidSpec, v)
		}
		out[i] = f
	}
	return out, nil
}
