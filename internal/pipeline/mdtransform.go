package pipeline

import (
	"context"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Highlight placeholders use Unicode Private Use Area characters.
// These are guaranteed to not conflict with any standard characters
// and will pass through Goldmark unchanged (no WithUnsafe needed).
// Post-processing converts these to <mark> tags after HTML generation.
const (
	MarkStartPlaceholder = "\uE000" // U+E000: Private Use Area start
	MarkEndPlaceholder   = "\uE001" // U+E001: Private Use Area end
)

// ErrPlotUnavailable indicates a plot directive could not be resolved.
var ErrPlotUnavailable = errors.New("plot unavailable")

// Profile selects how extensions are rendered.
type Profile int

const (
	// ProfilePage renders extensions as rich HTML for the site.
	ProfilePage Profile = iota
	// ProfileFeed degrades extensions to plain markdown that feed readers display.
	ProfileFeed
)

// String returns the profile name.
func (p Profile) String() string {
	if p == ProfileFeed {
		return "feed"
	}
	return "page"
}

// colorMap holds the named colors accepted by {{color:text}}.
var colorMap = map[string]string{
	"magenta":   "#FF00FF",
	"pink":      "#FF006E",
	"cyan":      "#00D9FF",
	"purple":    "#8B5CF6",
	"orange":    "#FFA500",
	"lightblue": "#42D4F4",
	"green":     "#10B981",
	"yellow":    "#EAB308",
	"red":       "#E6194B",
	"blue":      "#3B82F6",
	"teal":      "#14B8A6",
	"lime":      "#84CC16",
	"indigo":    "#6366F1",
}

// Precompiled regex patterns for performance.
var (
	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// Compress multiple blank lines to max 2
	multipleBlankLines = regexp.MustCompile(`\n{3,}`)

	// Highlight syntax ==text==
	highlightPattern = regexp.MustCompile(`==([^=\n]+?)==`)

	// Math delimiters \[...\] and \(...\)
	displayMathPattern = regexp.MustCompile(`\\\[([\s\S]+?)\\\]`)
	inlineMathPattern  = regexp.MustCompile(`\\\(([^\n]+?)\\\)`)

	figurePattern       = regexp.MustCompile(`(?m)^[ \t]*!\[([^\]]*)\]\(([^)\s]+)(?:[ \t]+"[^"]*")?\)[ \t]*\{#fig:([^}\s]+)\}[ \t]*$`)
	figureMarkerPattern = regexp.MustCompile(`[ \t]*\{#fig:[^}\s]+\}`)
	figureRefPattern    = regexp.MustCompile(`\{@fig:([^}\s]+)\}`)
	figurePrefix        = regexp.MustCompile(`(?i)^figure:\s*`)

	tableCaptionPattern = regexp.MustCompile(`(?m)^([^\n|{]+?)[ \t]*\{#tab:([^}\s]+)\}[ \t]*$`)
	tableMarkerPattern  = regexp.MustCompile(`[ \t]*\{#tab:[^}\s]+\}`)
	tableRefPattern     = regexp.MustCompile(`\{@tab:([^}\s]+)\}`)

	annotationPattern  = regexp.MustCompile(`\[\[([^|\]\n]+)\|\|([^\]\n]+)\]\]`)
	colorPattern       = regexp.MustCompile(`\{\{([^:{}\n]+):([^}\n]+)\}\}`)
	superscriptPattern = regexp.MustCompile(`\^([^\^\[\]\s][^\^\[\]\n]*?)\^`)
)

// tooltipEscaper escapes annotation tooltips for a double-quoted attribute.
var tooltipEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// Options configures a preprocessing run.
type Options struct {
	Profile Profile
	Plots   PlotResolver
}

// Prepared holds preprocessed markdown and the state needed to finish its HTML.
type Prepared struct {
	Markdown    string
	Profile     Profile
	Refs        *RefIndex
	Annotations int
	Plots       int
	Warnings    []string

	frags *fragments
}

// MarkdownPreprocessor defines the contract for markdown preprocessing.
type MarkdownPreprocessor interface {
	PreprocessMarkdown(ctx context.Context, content string, opts Options) (*Prepared, error)
}

// ExtensionPreprocessor rewrites the custom markup extensions into plain
// markdown plus fragment placeholders before CommonMark conversion.
type ExtensionPreprocessor struct{}

// PreprocessMarkdown applies all transformations to prepare Markdown for conversion.
func (p *ExtensionPreprocessor) PreprocessMarkdown(ctx context.Context, content string, opts Options) (*Prepared, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content = normalizeLineEndings(content)

	t := &transform{
		profile: opts.Profile,
		refs:    BuildRefIndex(content),
		frags:   &fragments{},
	}

	expander := &directiveExpander{
		ctx:     ctx,
		profile: opts.Profile,
		frags:   t.frags,
		refs:    t.refs,
		plots:   opts.Plots,
	}
	content = strings.Join(expander.expand(strings.Split(content, "\n")), "\n")
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content = t.stashMath(content)
	content = t.convertFigures(content)
	content = t.convertTableCaptions(content)
	content = t.convertReferences(content)
	content = t.convertAnnotations(content)
	content = t.convertColors(content)
	content = t.convertSuperscript(content)
	content = convertHighlights(content)
	content = compressBlankLines(content)

	return &Prepared{
		Markdown:    content,
		Profile:     opts.Profile,
		Refs:        t.refs,
		Annotations: t.annotations,
		Plots:       expander.plotSeq,
		Warnings:    expander.warnings,
		frags:       t.frags,
	}, nil
}

// transform holds per-document state for the inline extensions.
type transform struct {
	profile     Profile
	refs        *RefIndex
	frags       *fragments
	annotations int
}

// stashMath protects math from markdown processing. The delimiters are kept
// so MathJax can typeset them in the browser; feeds get the bare delimiters.
func (t *transform) stashMath(content string) string {
	content = replaceOutsideCode(content, displayMathPattern, func(m []string) string {
		math := `\[` + html.EscapeString(m[1]) + `\]`
		if t.profile == ProfileFeed {
			return t.frags.inline(math)
		}
		return t.frags.inline(`<div class="math-display">` + math + `</div>`)
	})
	return replaceOutsideCode(content, inlineMathPattern, func(m []string) string {
		math := `\(` + html.EscapeString(m[1]) + `\)`
		if t.profile == ProfileFeed {
			return t.frags.inline(math)
		}
		return t.frags.inline(`<span class="math-inline">` + math + `</span>`)
	})
}

// convertFigures turns captioned images into numbered figures.
func (t *transform) convertFigures(content string) string {
	content = replaceOutsideCode(content, figurePattern, func(m []string) string {
		alt, src, id := m[1], m[2], m[3]
		num, _ := t.refs.Figure(id)
		alt = inlineText(alt)
		caption := strings.TrimSpace(figurePrefix.ReplaceAllString(alt, ""))

		if t.profile == ProfileFeed {
			return fmt.Sprintf("![Figure %d: %s](%s)", num, caption, src)
		}

		return t.frags.block(fmt.Sprintf(
			"<figure class=\"figure-container\" id=\"fig-%s\">\n<img src=\"%s\" alt=\"%s\" />\n<figcaption><strong>Figure %d:</strong> %s</figcaption>\n</figure>",
			html.EscapeString(id), html.EscapeString(src), html.EscapeString(alt), num, html.EscapeString(caption),
		))
	})

	if t.profile == ProfileFeed {
		content = replaceOutsideCode(content, figureMarkerPattern, func([]string) string { return "" })
	}
	return content
}

// convertTableCaptions turns "Caption {#tab:id}" lines into numbered captions.
func (t *transform) convertTableCaptions(content string) string {
	content = replaceOutsideCode(content, tableCaptionPattern, func(m []string) string {
		caption, id := strings.TrimSpace(m[1]), m[2]
		num, _ := t.refs.Table(id)

		if t.profile == ProfileFeed {
			return "\n**Table " + strconv.Itoa(num) + ":** " + caption + "\n"
		}

		return t.frags.block(fmt.Sprintf(
			`<p class="table-caption" id="tab-%s"><strong>Table %d:</strong> %s</p>`,
			html.EscapeString(id), num, html.EscapeString(caption),
		))
	})

	if t.profile == ProfileFeed {
		content = replaceOutsideCode(content, tableMarkerPattern, func([]string) string { return "" })
	}
	return content
}

// convertReferences resolves {@fig:id} and {@tab:id} cross-references.
// Unknown ids are kept verbatim on pages and become generic words in feeds.
func (t *transform) convertReferences(content string) string {
	content = replaceOutsideCode(content, figureRefPattern, func(m []string) string {
		num, ok := t.refs.Figure(m[1])
		return t.reference(m[0], "fig", "figure", m[1], num, ok)
	})
	return replaceOutsideCode(content, tableRefPattern, func(m []string) string {
		num, ok := t.refs.Table(m[1])
		return t.reference(m[0], "tab", "table", m[1], num, ok)
	})
}

func (t *transform) reference(original, prefix, noun, id string, num int, ok bool) string {
	label := strings.ToUpper(noun[:1]) + noun[1:] + " " + strconv.Itoa(num)
	if t.profile == ProfileFeed {
		if !ok {
			return noun
		}
		return label
	}
	if !ok {
		return original
	}
	return t.frags.inline(`<a href="#` + prefix + `-` + html.EscapeString(id) + `" class="` + noun + `-ref">` + label + `</a>`)
}

// convertAnnotations turns [[text||tooltip]] into accessible tooltip spans,
// numbered from 1 in document order.
func (t *transform) convertAnnotations(content string) string {
	return replaceOutsideCode(content, annotationPattern, func(m []string) string {
		text, tooltip := m[1], m[2]
		if t.profile == ProfileFeed {
			return text
		}

		t.annotations++
		id := "annotation-" + strconv.Itoa(t.annotations)
		open := fmt.Sprintf(
			`<span class="annotation" data-tooltip="%s" id="%s" tabindex="0" role="button" aria-describedby="tooltip-%s">`,
			tooltipEscaper.Replace(tooltip), id, id,
		)
		return t.frags.inline(open) + text + t.frags.inline(`</span>`)
	})
}

// convertColors turns {{color:text}} into bold colored text.
// Unknown color names are left untouched.
func (t *transform) convertColors(content string) string {
	return replaceOutsideCode(content, colorPattern, func(m []string) string {
		hex, ok := colorMap[strings.ToLower(strings.TrimSpace(m[1]))]
		if !ok {
			return m[0]
		}
		if t.profile == ProfileFeed {
			return m[2]
		}
		open := `<span style="color: ` + hex + `; font-weight: bold;">`
		return t.frags.inline(open) + m[2] + t.frags.inline(`</span>`)
	})
}

// convertSuperscript turns ^text^ into superscript. Math has already been
// stashed, so exponents inside formulas are never touched.
func (t *transform) convertSuperscript(content string) string {
	return replaceOutsideCode(content, superscriptPattern, func(m []string) string {
		return t.frags.inline(`<sup>`) + m[1] + t.frags.inline(`</sup>`)
	})
}

// normalizeLineEndings converts \r\n and \r to \n.
func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// compressBlankLines limits consecutive blank lines to 2 maximum.
func compressBlankLines(content string) string {
	return multipleBlankLines.ReplaceAllString(content, "\n\n")
}

// convertHighlights transforms ==text== to placeholder markers.
// The placeholders are converted to <mark> tags after Goldmark processing
// via ConvertMarkPlaceholders.
func convertHighlights(content string) string {
	return replaceOutsideCode(content, highlightPattern, func(m []string) string {
		return MarkStartPlaceholder + m[1] + MarkEndPlaceholder
	})
}

// ConvertMarkPlaceholders converts placeholder markers to <mark> tags.
func ConvertMarkPlaceholders(content string) string {
	return strings.ReplaceAll(
		strings.ReplaceAll(content, MarkStartPlaceholder, "<mark>"),
		MarkEndPlaceholder, "</mark>",
	)
}

// Finish restores fragments and highlight markers in the converted HTML.
func (p *Prepared) Finish(htmlContent string) string {
	if p.frags != nil {
		htmlContent = p.frags.restore(htmlContent)
	}
	return ConvertMarkPlaceholders(htmlContent)
}

// inlineText returns the text of inline markdown without its markup, the
// way image alt text is rendered.
func inlineText(markdown string) string {
	if !strings.ContainsAny(markdown, "*_`[<") {
		return markdown
	}
	source := []byte(markdown)
	doc := goldmark.DefaultParser().Parse(text.NewReader(source))

	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Text:
			b.Write(n.Segment.Value(source))
			if n.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(n.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
