package mdsite

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/alnah/go-mdsite/internal/plot"
)

const annotationsJSON = `{
  "annotations": [
    {"id": "halving", "date": "2024-04-20", "label": "Halving"},
    {"id": "taproot", "date": "2021-11-14", "label": "Taproot"},
    {"id": "segwit", "date": "2017-08-24", "label": "SegWit"}
  ],
  "metadata": {"name": "bitcoin"}
}`

func newTestResolver(t *testing.T) *plotResolver {
	t.Helper()
	public := t.TempDir()
	writePublic(t, public, "data/fees.json", feesJSON)
	writePublic(t, public, "data/annotations.json", annotationsJSON)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return newPlotResolver(public, "/data/annotations.json", logger)
}

// decodeSpec decodes a resolved plot for assertions.
func decodeSpec(t *testing.T, raw string) plot.Spec {
	t.Helper()
	var s plot.Spec
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.Fatalf("resolved plot is not JSON: %v\n%s", err, raw)
	}
	return s
}

func labelCount(layout map[string]any) int {
	labels, _ := layout["annotations"].([]any)
	return len(labels)
}

// ---------------------------------------------------------------------------
// TestPlotResolver_ResolvePlot - Plot Sources and Attributes
// ---------------------------------------------------------------------------

func TestPlotResolver_ResolvePlot(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		attrs      map[string]string
		body       string
		wantLabels int
		wantHeight float64
		wantErr    error
	}{
		{
			name:       "src file",
			attrs:      map[string]string{"src": "/data/fees.json"},
			wantHeight: plot.DefaultHeight,
		},
		{
			name:       "inline body",
			attrs:      map[string]string{},
			body:       `{"data":[{"x":[1,2],"y":[3,4]}]}`,
			wantHeight: plot.DefaultHeight,
		},
		{
			name:       "height attribute",
			attrs:      map[string]string{"src": "/data/fees.json", "height": "450px"},
			wantHeight: 450,
		},
		{
			name:       "annotations by id from default file",
			attrs:      map[string]string{"src": "/data/fees.json", "ids": "halving, taproot"},
			wantLabels: 2,
			wantHeight: plot.DefaultHeight,
		},
		{
			name: "annotations file with date range",
			attrs: map[string]string{
				"src":         "/data/fees.json",
				"annotations": "/data/annotations.json",
				"start":       "2020-01-01",
			},
			wantLabels: 2,
			wantHeight: plot.DefaultHeight,
		},
		{
			name:    "no data",
			attrs:   map[string]string{},
			body:    "  \n",
			wantErr: ErrPlotSource,
		},
		{
			name:    "missing file",
			attrs:   map[string]string{"src": "/data/missing.json"},
			wantErr: ErrPlotSource,
		},
		{
			name:    "invalid JSON",
			attrs:   map[string]string{},
			body:    "{not json",
			wantErr: plot.ErrInvalidSpec,
		},
		{
			name:    "missing data array",
			attrs:   map[string]string{},
			body:    `{"layout":{}}`,
			wantErr: plot.ErrMissingData,
		},
		{
			name:    "bad height",
			attrs:   map[string]string{"src": "/data/fees.json", "height": "tall"},
			wantErr: ErrPlotAttribute,
		},
		{
			name:    "bad start date",
			attrs:   map[string]string{"src": "/data/fees.json", "ids": "halving", "start": "soon"},
			wantErr: ErrPlotAttribute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := newTestResolver(t)
			got, err := r.ResolvePlot(context.Background(), tt.attrs, tt.body)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ResolvePlot() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolvePlot() error = %v", err)
			}

			s := decodeSpec(t, got)
			if len(s.Data) == 0 {
				t.Error("resolved plot has no data")
			}
			if h, _ := s.Layout["height"].(float64); h != tt.wantHeight {
				t.Errorf("layout height = %v, want %v", s.Layout["height"], tt.wantHeight)
			}
			if n := labelCount(s.Layout); n != tt.wantLabels {
				t.Errorf("annotation labels = %d, want %d", n, tt.wantLabels)
			}
		})
	}
}

func TestPlotResolver_PathEscape(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t)
	_, err := r.ResolvePlot(context.Background(), map[string]string{"src": "../../etc/passwd"}, "")

	// The path is clamped to the public dir, so the file is simply missing.
	if !errors.Is(err, ErrPlotSource) {
		t.Errorf("ResolvePlot() error = %v, want ErrPlotSource", err)
	}
}

func TestPlotResolver_NoPublicDir(t *testing.T) {
	t.Parallel()

	r := newPlotResolver("", "", slog.New(slog.NewTextHandler(io.Discard, nil)))
	_, err := r.ResolvePlot(context.Background(), map[string]string{"src": "/data/fees.json"}, "")
	if !errors.Is(err, ErrPlotSource) {
		t.Errorf("ResolvePlot() error = %v, want ErrPlotSource", err)
	}
}
