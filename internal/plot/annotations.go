package plot

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/alnah/go-mdsite/internal/dateutil"
)

// Label positions for annotations.
const (
	PositionTop    = "top"
	PositionBottom = "bottom"
	PositionAuto   = "auto"
)

// labelBackground is the card color behind annotation labels.
const labelBackground = "rgba(38, 20, 71, 0.9)"

// Annotation is a vertical timeline marker such as a protocol upgrade.
type Annotation struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Label       string `json:"label"`
	Color       string `json:"color,omitempty"`
	Description string `json:"description,omitempty"`
	Position    string `json:"position,omitempty"`
}

// CollectionMetadata describes an annotation file.
type CollectionMetadata struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Version     string `json:"version,omitempty"`
}

// Collection is the on-disk shape of an annotation file.
type Collection struct {
	Annotations []Annotation        `json:"annotations"`
	Metadata    *CollectionMetadata `json:"metadata,omitempty"`
}

// ToShape returns the dashed vertical line for a.
func (a Annotation) ToShape() map[string]any {
	return map[string]any{
		"type": "line",
		"xref": "x",
		"yref": "paper",
		"x0":   a.Date,
		"x1":   a.Date,
		"y0":   0,
		"y1":   1,
		"line": map[string]any{
			"color": annotationColor(a.Color),
			"width": 2,
			"dash":  "dash",
		},
	}
}

// ToLabel returns the text label for a. Labels without an explicit position
// alternate between two heights by index so neighbours do not overlap.
func (a Annotation) ToLabel(index int) map[string]any {
	color := annotationColor(a.Color)

	y, anchor := 1.0, "bottom"
	switch a.Position {
	case PositionTop:
	case PositionBottom:
		y, anchor = 0, "top"
	default:
		if index%2 != 0 {
			y = 0.95
		}
	}

	label := map[string]any{
		"x":           a.Date,
		"y":           y,
		"text":        a.Label,
		"showarrow":   false,
		"yref":        "paper",
		"xanchor":     "center",
		"yanchor":     anchor,
		"font":        map[string]any{"color": color, "size": 10},
		"bgcolor":     labelBackground,
		"bordercolor": color,
		"borderwidth": 1,
	}
	if a.Description != "" {
		label["hovertext"] = a.Description
	}
	return label
}

// ParseIDs splits a comma separated id list, dropping blanks.
func ParseIDs(raw string) []string {
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// Filter keeps annotations whose id is listed. An empty list keeps all.
func Filter(annotations []Annotation, ids []string) []Annotation {
	if len(ids) == 0 {
		return annotations
	}
	var kept []Annotation
	for _, a := range annotations {
		if slices.Contains(ids, a.ID) {
			kept = append(kept, a)
		}
	}
	return kept
}

// FilterByDateRange keeps annotations dated within [start, end]. A zero
// bound is open. Annotations with unparseable dates are dropped once any
// bound is set.
func FilterByDateRange(annotations []Annotation, start, end time.Time) []Annotation {
	if start.IsZero() && end.IsZero() {
		return annotations
	}
	var kept []Annotation
	for _, a := range annotations {
		d, err := dateutil.ParseDate(a.Date)
		if err != nil {
			continue
		}
		if !start.IsZero() && d.Before(start) {
			continue
		}
		if !end.IsZero() && d.After(end) {
			continue
		}
		kept = append(kept, a)
	}
	return kept
}

// ApplyToLayout appends annotation shapes and labels to a layout, after any
// shapes and annotations it already has.
func ApplyToLayout(layout map[string]any, annotations []Annotation) map[string]any {
	if len(annotations) == 0 {
		return layout
	}
	if layout == nil {
		layout = make(map[string]any)
	}

	shapes := asSlice(layout["shapes"])
	labels := asSlice(layout["annotations"])
	for i, a := range annotations {
		shapes = append(shapes, a.ToShape())
		labels = append(labels, a.ToLabel(i))
	}

	layout["shapes"] = shapes
	layout["annotations"] = labels
	return layout
}

// LoadAnnotations reads an annotation collection. A missing or malformed
// file yields no annotations and a warning.
func LoadAnnotations(path string, logger *slog.Logger) []Annotation {
	annotations, err := ReadAnnotations(path)
	if err != nil {
		if logger != nil {
			logger.Warn("annotations unavailable", "path", path, "error", err)
		}
		return nil
	}
	return annotations
}

// ReadAnnotations reads an annotation collection and reports failures.
func ReadAnnotations(path string) ([]Annotation, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path resolved under the public dir by the caller
	if err != nil {
		return nil, fmt.Errorf("reading annotations: %w", err)
	}

	var c Collection
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}
	return c.Annotations, nil
}

// asSlice returns v as a slice, or nil when it is not one.
func asSlice(v any) []any {
	switch s := v.(type) {
	case []any:
		return s
	case []map[string]any:
		out := make([]any, len(s))
		for i := range s {
			out[i] = s[i]
		}
		return out
	}
	return nil
}
