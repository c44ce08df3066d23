package mdsite

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-mdsite/internal/dateutil"
	"github.com/alnah/go-mdsite/internal/fileutil"
	"github.com/alnah/go-mdsite/internal/plot"
)

// Plot directive attributes.
const (
	plotAttrSrc         = "src"         // site path of a JSON spec under the public dir
	plotAttrAnnotations = "annotations" // site path of an annotation file
	plotAttrIDs         = "ids"         // comma separated annotation ids
	plotAttrStart       = "start"       // earliest annotation date
	plotAttrEnd         = "end"         // latest annotation date
	plotAttrHeight      = "height"      // layout height in pixels
	plotAttrID          = "id"          // element id, also the export file name
)

// maxPlotHeight bounds the height attribute.
const maxPlotHeight = 4000

// plotResolver builds themed Plotly documents for plot directives from
// files under the public directory or inline JSON.
type plotResolver struct {
	publicDir   string
	annotations string
	logger      *slog.Logger
}

func newPlotResolver(publicDir, annotations string, logger *slog.Logger) *plotResolver {
	return &plotResolver{publicDir: publicDir, annotations: annotations, logger: logger}
}

// ResolvePlot returns the JSON document of one plot directive.
func (p *plotResolver) ResolvePlot(ctx context.Context, attrs map[string]string, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	raw, err := p.source(attrs, body)
	if err != nil {
		return "", err
	}

	spec, err := plot.ParseSpec(raw)
	if err != nil {
		return "", err
	}

	annotations, err := p.selectAnnotations(attrs)
	if err != nil {
		return "", err
	}
	spec.Layout = plot.ApplyToLayout(spec.Layout, annotations)

	themed := plot.Themed(spec, attrs[plotAttrID])
	if h := attrs[plotAttrHeight]; h != "" {
		px, err := strconv.Atoi(strings.TrimSuffix(h, "px"))
		if err != nil || px <= 0 || px > maxPlotHeight {
			return "", fmt.Errorf("%w: height %q", ErrPlotAttribute, h)
		}
		themed.SetHeight(px)
	}

	return themed.JSON()
}

// source returns the plot JSON from the src attribute or the inline body.
func (p *plotResolver) source(attrs map[string]string, body string) ([]byte, error) {
	src := attrs[plotAttrSrc]
	if src == "" {
		if strings.TrimSpace(body) == "" {
			return nil, ErrPlotSource
		}
		return []byte(body), nil
	}

	path, err := p.resolve(src)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path) // #nosec G304 -- path resolved under the public dir
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPlotSource, err)
	}
	return data, nil
}

// selectAnnotations loads the annotation file named by the directive, or the
// default file when only ids or dates are given, and filters it.
func (p *plotResolver) selectAnnotations(attrs map[string]string) ([]plot.Annotation, error) {
	file := attrs[plotAttrAnnotations]
	ids := plot.ParseIDs(attrs[plotAttrIDs])
	start, end := attrs[plotAttrStart], attrs[plotAttrEnd]

	if file == "" {
		if len(ids) == 0 && start == "" && end == "" {
			return nil, nil
		}
		file = p.annotations
	}
	if file == "" {
		p.logger.Warn("plot selects annotations but no annotation file is configured")
		return nil, nil
	}

	path, err := p.resolve(file)
	if err != nil {
		return nil, err
	}

	from, err := parseBound(plotAttrStart, start)
	if err != nil {
		return nil, err
	}
	to, err := parseBound(plotAttrEnd, end)
	if err != nil {
		return nil, err
	}

	annotations := plot.LoadAnnotations(path, p.logger)
	annotations = plot.Filter(annotations, ids)
	return plot.FilterByDateRange(annotations, from, to), nil
}

func (p *plotResolver) resolve(sitePath string) (string, error) {
	if p.publicDir == "" {
		return "", fmt.Errorf("%w: %s: no public directory configured", ErrPlotSource, sitePath)
	}
	path, err := fileutil.ResolveUnder(p.publicDir, sitePath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPlotAttribute, err)
	}
	return path, nil
}

// parseBound parses an optional date attribute; an empty value is open.
func parseBound(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := dateutil.ParseDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %v", ErrPlotAttribute, name, err)
	}
	return t, nil
}
