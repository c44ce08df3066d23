package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// ErrHTMLConversion indicates HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// HTMLConverter abstracts Markdown to HTML conversion.
type HTMLConverter interface {
	ToHTML(ctx context.Context, content string, opts ...ConvertOption) (string, error)
}

// ConvertOption configures a single conversion.
type ConvertOption func(*convertSettings)

type convertSettings struct {
	headingText func(string) string
}

// WithHeadingText maps a raw heading line to its visible text before the
// heading id is generated from it.
func WithHeadingText(fn func(string) string) ConvertOption {
	return func(s *convertSettings) {
		s.headingText = fn
	}
}

// GoldmarkConverter converts Markdown to an HTML fragment using goldmark.
type GoldmarkConverter struct {
	md goldmark.Markdown
}

// NewGoldmarkConverter creates a GoldmarkConverter with GFM extensions and syntax highlighting.
func NewGoldmarkConverter() *GoldmarkConverter {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,      // Tables, strikethrough, autolinks, task lists
			extension.Footnote, // [^1] footnotes
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true), // classes keep markup small; the site stylesheet colors them
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(), // heading ids feed the table of contents
		),
		goldmark.WithRendererOptions(
			html.WithXHTML(),
			// WithUnsafe is not used: every extension reaches the output
			// through fragment placeholders restored after conversion.
		),
	)
	return &GoldmarkConverter{md: md}
}

// ToHTML converts Markdown content to an HTML fragment.
// Supports context cancellation via goroutine + select pattern since
// Goldmark doesn't natively support context.
func (c *GoldmarkConverter) ToHTML(ctx context.Context, content string, opts ...ConvertOption) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var settings convertSettings
	for _, opt := range opts {
		opt(&settings)
	}
	pc := parser.NewContext(parser.WithIDs(newHeadingIDs(settings.headingText)))

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := c.md.Convert([]byte(content), &buf, parser.WithContext(pc)); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		done <- result{html: buf.String()}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}
