package mdsite

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/alnah/go-mdsite/internal/gitmeta"
	"github.com/alnah/go-mdsite/internal/pipeline"
)

// PostType classifies a post for the section listings.
type PostType string

// Post types.
const (
	PostTypeResearch PostType = "research"
	PostTypeBlog     PostType = "blog"
)

// Field length limits for post frontmatter.
const (
	MaxTitleLength   = 200
	MaxExcerptLength = 1000
	MaxSlugLength    = 200
	MaxImageLength   = 2048
)

// TOC depth bounds.
const (
	MinTOCDepth = 1
	MaxTOCDepth = 6
)

// slugPattern allows nested slugs such as "2024/fees" but no dot segments.
var slugPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*(/[A-Za-z0-9][A-Za-z0-9._-]*)*$`)

// Author identifies the writer of a post.
type Author struct {
	Name    string `yaml:"name" toml:"name"`
	Picture string `yaml:"picture" toml:"picture"`
}

// OGImage is the Open Graph image of a post.
type OGImage struct {
	URL string `yaml:"url" toml:"url"`
}

// Post is a markdown post with its frontmatter.
type Post struct {
	Slug       string
	Title      string
	Date       time.Time // zero when the frontmatter has no date
	Type       PostType
	CoverImage string
	Author     Author
	Excerpt    string
	OGImage    OGImage
	Content    string // markdown body without frontmatter
	Hidden     bool
	Git        *gitmeta.Metadata // nil when history is unavailable
	SourcePath string
}

// URLPath returns the site path of the post page.
func (p *Post) URLPath() string {
	return "/posts/" + p.Slug
}

// Validate checks the frontmatter fields of a post.
func (p *Post) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: nil post", ErrInvalidPost)
	}
	err := validation.ValidateStruct(p,
		validation.Field(&p.Slug,
			validation.Required,
			validation.Length(1, MaxSlugLength),
			validation.Match(slugPattern).Error("must be a relative path without dot segments"),
		),
		validation.Field(&p.Title, validation.Required, validation.Length(1, MaxTitleLength)),
		validation.Field(&p.Type, validation.In(PostTypeResearch, PostTypeBlog)),
		validation.Field(&p.Excerpt, validation.Length(0, MaxExcerptLength)),
		validation.Field(&p.CoverImage, validation.Length(0, MaxImageLength)),
	)
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidPost, p.Slug, err)
	}
	return nil
}

// SiteInfo describes the site as a whole.
type SiteInfo struct {
	URL         string // absolute, without trailing slash
	Title       string
	Description string
	Language    string
	Author      string
	Email       string
}

// Validate checks that the site URL is absolute.
func (s SiteInfo) Validate() error {
	u, err := url.Parse(s.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidSiteURL, s.URL)
	}
	return nil
}

// BaseURL returns the site URL without a trailing slash.
func (s SiteInfo) BaseURL() string {
	return strings.TrimRight(s.URL, "/")
}

// TOC configures the table of contents on post pages.
type TOC struct {
	Title    string // Heading above the list, empty for none
	MinDepth int    // Minimum heading level (0 means 2)
	MaxDepth int    // Maximum heading level (0 means 3)
	Numbered bool
}

// Validate checks the depth bounds. A nil TOC is valid and disables it.
func (t *TOC) Validate() error {
	if t == nil {
		return nil
	}
	if t.MinDepth != 0 && (t.MinDepth < MinTOCDepth || t.MinDepth > MaxTOCDepth) {
		return fmt.Errorf("%w: minDepth %d (must be %d-%d)", ErrInvalidTOCDepth, t.MinDepth, MinTOCDepth, MaxTOCDepth)
	}
	if t.MaxDepth != 0 && (t.MaxDepth < MinTOCDepth || t.MaxDepth > MaxTOCDepth) {
		return fmt.Errorf("%w: maxDepth %d (must be %d-%d)", ErrInvalidTOCDepth, t.MaxDepth, MinTOCDepth, MaxTOCDepth)
	}
	if t.MinDepth != 0 && t.MaxDepth != 0 && t.MinDepth > t.MaxDepth {
		return fmt.Errorf("%w: minDepth %d > maxDepth %d", ErrInvalidTOCDepth, t.MinDepth, t.MaxDepth)
	}
	return nil
}

func (t *TOC) options() pipeline.TOCOptions {
	return pipeline.TOCOptions{
		Title:    t.Title,
		MinDepth: t.MinDepth,
		MaxDepth: t.MaxDepth,
		Numbered: t.Numbered,
	}
}

// Profile selects how extensions render. See pipeline.Profile.
type Profile = pipeline.Profile

// Render profiles.
const (
	ProfilePage = pipeline.ProfilePage
	ProfileFeed = pipeline.ProfileFeed
)

// Heading is a heading extracted from rendered HTML.
type Heading = pipeline.Heading

// RenderResult is the output of one render.
type RenderResult struct {
	HTML     string
	Headings []Heading // page profile only
	TOC      string    // page profile only, empty below two headings
	Warnings []string  // plots that fell back to an error box
}
