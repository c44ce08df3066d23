package mdsite

import (
	"context"
	"fmt"

	"github.com/alnah/go-mdsite/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.MarkdownPreprocessor = (*pipeline.ExtensionPreprocessor)(nil)
	_ pipeline.HTMLConverter        = (*pipeline.GoldmarkConverter)(nil)
	_ pipeline.PlotResolver         = (*plotResolver)(nil)
)

// Renderer turns post markdown into HTML for pages and feeds.
// It is safe for concurrent use.
type Renderer struct {
	cfg           *settings
	preprocessor  pipeline.MarkdownPreprocessor
	htmlConverter pipeline.HTMLConverter
	plots         pipeline.PlotResolver
}

// NewRenderer creates a Renderer. Returns an error for an invalid TOC.
func NewRenderer(opts ...Option) (*Renderer, error) {
	return newRenderer(newSettings(opts))
}

func newRenderer(cfg *settings) (*Renderer, error) {
	if err := cfg.toc.Validate(); err != nil {
		return nil, err
	}

	r := &Renderer{
		cfg:           cfg,
		preprocessor:  &pipeline.ExtensionPreprocessor{},
		htmlConverter: pipeline.NewGoldmarkConverter(),
		plots:         cfg.plots,
	}
	if r.plots == nil {
		r.plots = newPlotResolver(cfg.publicDir, cfg.annotations, cfg.logger)
	}
	return r, nil
}

// Render converts markdown with the given profile. Page renders also return
// the headings and the table of contents. Feed renders resolve root-relative
// links against the site URL.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (r *Renderer) Render(ctx context.Context, markdown string, profile Profile) (result *RenderResult, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("internal error: %v", rec)
		}
	}()

	prep, err := r.preprocessor.PreprocessMarkdown(ctx, markdown, pipeline.Options{
		Profile: profile,
		Plots:   r.plots,
	})
	if err != nil {
		return nil, fmt.Errorf("preprocessing markdown: %w", err)
	}
	for _, w := range prep.Warnings {
		r.cfg.logger.Warn("plot fallback", "profile", profile.String(), "detail", w)
	}

	htmlContent, err := r.htmlConverter.ToHTML(ctx, prep.Markdown, pipeline.WithHeadingText(prep.HeadingText))
	if err != nil {
		return nil, fmt.Errorf("converting to HTML: %w", err)
	}

	// Restore the extension markup held back from goldmark.
	htmlContent = prep.Finish(htmlContent)

	result = &RenderResult{Warnings: prep.Warnings}

	if profile == ProfileFeed {
		htmlContent, err = pipeline.AbsolutizeURLs(htmlContent, r.cfg.siteURL)
		if err != nil {
			return nil, fmt.Errorf("absolutizing URLs: %w", err)
		}
		result.HTML = htmlContent
		return result, nil
	}

	htmlContent, result.Headings, err = pipeline.ExtractHeadings(htmlContent)
	if err != nil {
		return nil, fmt.Errorf("extracting headings: %w", err)
	}
	if r.cfg.toc != nil {
		result.TOC = pipeline.RenderTOC(result.Headings, r.cfg.toc.options())
	}
	result.HTML = htmlContent
	return result, nil
}

// FeedHTML renders markdown for feed readers.
func (r *Renderer) FeedHTML(ctx context.Context, markdown string) (string, error) {
	result, err := r.Render(ctx, markdown, ProfileFeed)
	if err != nil {
		return "", err
	}
	return result.HTML, nil
}
