package pipeline

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
)

// Block directive names.
const (
	directivePlot     = "plot"
	directiveAlert    = "alert"
	directiveCollapse = "collapse"
)

// feedPlotNotice replaces interactive plots in feeds; readers cannot run Plotly.
const feedPlotNotice = "**[Interactive plot - view on website]**"

var (
	// :::name{attributes} with optional trailing text or a closing ::: on the same line
	directiveOpenPattern  = regexp.MustCompile(`^[ \t]*:::([A-Za-z][\w-]*)\{([^}]*)\}[ \t]*(.*?)[ \t]*$`)
	directiveClosePattern = regexp.MustCompile(`^[ \t]*:::[ \t]*$`)

	// key="value", key='value', key=value or a bare key
	attributePattern = regexp.MustCompile(`([A-Za-z_][\w-]*)(?:[ \t]*=[ \t]*(?:"([^"]*)"|'([^']*)'|([^\s"']+)))?`)

	unsafeClassChars = regexp.MustCompile(`[^a-z0-9-]+`)
	unsafeIDChars    = regexp.MustCompile(`[^A-Za-z0-9_-]+`)
)

// PlotResolver turns a plot directive into a Plotly JSON document.
// attrs are the directive attributes and body is the raw text between the
// opening and closing markers.
type PlotResolver interface {
	ResolvePlot(ctx context.Context, attrs map[string]string, body string) (string, error)
}

type directiveOpen struct {
	name       string
	attrs      string
	rest       string
	singleLine bool
}

func isKnownDirective(name string) bool {
	switch name {
	case directivePlot, directiveAlert, directiveCollapse:
		return true
	}
	return false
}

// parseDirectiveOpen recognizes the opening line of a known directive.
func parseDirectiveOpen(line string) (directiveOpen, bool) {
	m := directiveOpenPattern.FindStringSubmatch(line)
	if m == nil || !isKnownDirective(m[1]) {
		return directiveOpen{}, false
	}

	d := directiveOpen{name: m[1], attrs: strings.TrimSpace(m[2]), rest: m[3]}
	if strings.HasSuffix(d.rest, ":::") {
		d.singleLine = true
		d.rest = strings.TrimSpace(strings.TrimSuffix(d.rest, ":::"))
	}
	return d, true
}

// findDirectiveClose returns the index of the ::: line closing a directive
// opened just before start, honoring nested directives and code fences.
func findDirectiveClose(lines []string, start int) int {
	var fence fenceTracker
	depth := 0
	for j := start; j < len(lines); j++ {
		if fence.step(lines[j]) {
			continue
		}
		if d, ok := parseDirectiveOpen(lines[j]); ok {
			if !d.singleLine {
				depth++
			}
			continue
		}
		if directiveClosePattern.MatchString(lines[j]) {
			if depth == 0 {
				return j
			}
			depth--
		}
	}
	return -1
}

// ParseAttributes parses directive attributes such as
// `src="/data/fees.json" height=500 ids='a,b'`. Bare words map to "".
func ParseAttributes(raw string) map[string]string {
	attrs := make(map[string]string)
	for _, m := range attributePattern.FindAllStringSubmatch(raw, -1) {
		attrs[m[1]] = m[2] + m[3] + m[4]
	}
	return attrs
}

// alertType returns the alert kind from `{warning}` or `{type="warning"}`.
func alertType(raw string) string {
	kind := ParseAttributes(raw)["type"]
	if kind == "" {
		if fields := strings.Fields(raw); len(fields) > 0 {
			kind = fields[0]
		}
	}
	kind = unsafeClassChars.ReplaceAllString(strings.ToLower(kind), "")
	if kind == "" {
		return "note"
	}
	return kind
}

// collapseTitle returns the summary text of a collapsible section.
func collapseTitle(raw string) string {
	title := strings.Trim(strings.TrimSpace(raw), `"'`)
	if title == "" {
		return "Details"
	}
	return title
}

// directiveExpander rewrites block directives for one document.
type directiveExpander struct {
	ctx      context.Context
	profile  Profile
	frags    *fragments
	refs     *RefIndex
	plots    PlotResolver
	plotSeq  int
	warnings []string
}

// expand rewrites every known directive in lines. Unclosed or unknown
// directives are kept verbatim.
func (e *directiveExpander) expand(lines []string) []string {
	out := make([]string, 0, len(lines))
	var fence fenceTracker

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if fence.step(line) {
			out = append(out, line)
			continue
		}

		d, ok := parseDirectiveOpen(line)
		if !ok {
			out = append(out, line)
			continue
		}

		if d.singleLine {
			out = append(out, e.render(d, []string{d.rest}, "", "")...)
			continue
		}

		end := findDirectiveClose(lines, i+1)
		if end < 0 {
			out = append(out, line)
			continue
		}

		body := make([]string, 0, end-i)
		if d.rest != "" {
			body = append(body, d.rest)
		}
		body = append(body, lines[i+1:end]...)
		i = end

		var caption, captionID string
		if d.name == directivePlot {
			if c, id, at := plotCaption(lines, end+1); at >= 0 {
				caption, captionID = c, id
				i = at
			}
		}

		out = append(out, e.render(d, body, caption, captionID)...)
	}

	return out
}

func (e *directiveExpander) render(d directiveOpen, body []string, caption, captionID string) []string {
	switch d.name {
	case directiveAlert:
		return e.renderAlert(d, body)
	case directiveCollapse:
		return e.renderCollapse(d, body)
	default:
		return e.renderPlot(d, body, caption, captionID)
	}
}

func (e *directiveExpander) renderAlert(d directiveOpen, body []string) []string {
	inner := trimBlankLines(e.expand(body))

	if e.profile == ProfileFeed {
		out := []string{""}
		for _, line := range inner {
			if strings.TrimSpace(line) == "" {
				out = append(out, ">")
				continue
			}
			out = append(out, "> "+line)
		}
		return append(out, "")
	}

	out := []string{e.frags.block(`<div class="alert alert-` + alertType(d.attrs) + `" role="note">`)}
	out = append(out, inner...)
	return append(out, e.frags.block(`</div>`))
}

func (e *directiveExpander) renderCollapse(d directiveOpen, body []string) []string {
	title := collapseTitle(d.attrs)
	inner := trimBlankLines(e.expand(body))

	if e.profile == ProfileFeed {
		out := []string{"", "**" + title + "**", ""}
		out = append(out, inner...)
		return append(out, "")
	}

	open := `<details class="collapse"><summary>` + html.EscapeString(title) + `</summary>`
	out := []string{e.frags.block(open)}
	out = append(out, inner...)
	return append(out, e.frags.block(`</details>`))
}

func (e *directiveExpander) renderPlot(d directiveOpen, body []string, caption, captionID string) []string {
	e.plotSeq++
	figNum, hasFigure := 0, false
	if captionID != "" {
		figNum, hasFigure = e.refs.Figure(captionID)
	}

	if e.profile == ProfileFeed {
		out := []string{"", feedPlotNotice, ""}
		if hasFigure {
			out = append(out, fmt.Sprintf("**Figure %d:** %s", figNum, caption), "")
		}
		return out
	}

	attrs := ParseAttributes(d.attrs)
	plotHTML := e.plotHTML(attrs, strings.Join(body, "\n"))

	if !hasFigure {
		return []string{e.frags.block(plotHTML)}
	}

	var b strings.Builder
	b.WriteString(`<figure class="figure-container plot-figure" id="fig-` + html.EscapeString(captionID) + `">`)
	b.WriteString("\n" + plotHTML + "\n")
	b.WriteString(`<figcaption><strong>Figure ` + strconv.Itoa(figNum) + `:</strong> ` + html.EscapeString(caption) + `</figcaption>`)
	b.WriteString("\n</figure>")
	return []string{e.frags.block(b.String())}
}

// plotHTML resolves a plot and renders its container, or a visible error box
// when the plot cannot be built.
func (e *directiveExpander) plotHTML(attrs map[string]string, body string) string {
	id := unsafeIDChars.ReplaceAllString(attrs["id"], "")
	if id == "" {
		id = "plot-" + strconv.Itoa(e.plotSeq)
	}

	if e.plots == nil {
		return e.plotError(id, attrs["src"], fmt.Errorf("%w: no plot resolver configured", ErrPlotUnavailable))
	}

	spec, err := e.plots.ResolvePlot(e.ctx, attrs, body)
	if err != nil {
		return e.plotError(id, attrs["src"], err)
	}

	return `<div class="interactive-plot" id="` + id + `" data-plot="` + html.EscapeString(spec) + `"></div>`
}

// plotError records err as a warning and returns the published error box,
// which names the plot source but never the error: it can hold build paths.
func (e *directiveExpander) plotError(id, src string, err error) string {
	e.warnings = append(e.warnings, fmt.Sprintf("plot %s: %v", id, err))
	msg := "Plot could not be rendered."
	if src != "" {
		msg = "Plot could not be rendered: " + html.EscapeString(src)
	}
	return `<div class="plot-error" id="` + id + `" role="alert">` + msg + `</div>`
}

// trimBlankLines drops leading and trailing blank lines.
func trimBlankLines(lines []string) []string {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return lines[start:end]
}
