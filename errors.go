package mdsite

import (
	"errors"

	"github.com/alnah/go-mdsite/internal/pipeline"
)

// Sentinel errors for library operations.
var (
	ErrHTMLConversion = pipeline.ErrHTMLConversion
	ErrTemplateRender = errors.New("template rendering failed")

	// Post loading errors.
	ErrEmptySlug      = errors.New("post slug cannot be empty")
	ErrInvalidSlug    = errors.New("invalid post slug")
	ErrPostNotFound   = errors.New("post not found")
	ErrPostRead       = errors.New("reading post failed")
	ErrFrontmatter    = errors.New("invalid frontmatter")
	ErrInvalidPost    = errors.New("invalid post")
	ErrPostsDirectory = errors.New("posts directory unreadable")

	// Plot errors.
	ErrPlotSource    = errors.New("plot has no data")
	ErrPlotAttribute = errors.New("invalid plot attribute")

	// Output errors.
	ErrWriteOutput = errors.New("writing output failed")

	// Configuration errors.
	ErrInvalidTOCDepth  = errors.New("invalid TOC depth")
	ErrInvalidAssetPath = errors.New("invalid asset path")
	ErrInvalidSiteURL   = errors.New("invalid site URL")
)
