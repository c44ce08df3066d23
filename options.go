package mdsite

import (
	"io"
	"log/slog"
	"time"

	"github.com/alnah/go-mdsite/internal/gitmeta"
	"github.com/alnah/go-mdsite/internal/pipeline"
)

// Option configures a Renderer or a Site.
type Option func(*settings)

// settings holds the configuration shared by Renderer and Site.
type settings struct {
	logger      *slog.Logger
	siteURL     string
	publicDir   string
	annotations string // site path of the default annotation file
	toc         *TOC
	assetPath   string
	templateSet string
	dateFormat  string
	git         *gitmeta.Client
	feedFiles   FeedFiles
	plots       pipeline.PlotResolver
	now         func() time.Time
}

// defaultDateFormat renders dates like "April 20, 2024".
const defaultDateFormat = "long"

func newSettings(opts []Option) *settings {
	s := &settings{
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		toc:        &TOC{Title: "Contents"},
		dateFormat: defaultDateFormat,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithLogger sets the logger for warnings such as unavailable plots or git
// metadata. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSiteURL sets the absolute site URL that root-relative links in feed
// content are resolved against.
func WithSiteURL(u string) Option {
	return func(s *settings) {
		s.siteURL = u
	}
}

// WithPublicDir sets the directory that site paths such as plot sources and
// annotation files are read from.
func WithPublicDir(dir string) Option {
	return func(s *settings) {
		s.publicDir = dir
	}
}

// WithAnnotations sets the annotation file used by plots that select
// annotations by id without naming a file.
func WithAnnotations(sitePath string) Option {
	return func(s *settings) {
		s.annotations = sitePath
	}
}

// WithTOC configures the table of contents. Nil disables it.
func WithTOC(toc *TOC) Option {
	return func(s *settings) {
		s.toc = toc
	}
}

// WithAssetPath sets a directory of custom styles, scripts and templates.
func WithAssetPath(path string) Option {
	return func(s *settings) {
		s.assetPath = path
	}
}

// WithTemplateSet selects a template set by name.
func WithTemplateSet(name string) Option {
	return func(s *settings) {
		s.templateSet = name
	}
}

// WithDateFormat sets the date format of pages, a preset name or tokens
// such as "MMMM D, YYYY".
func WithDateFormat(format string) Option {
	return func(s *settings) {
		s.dateFormat = format
	}
}

// WithGitClient attaches a commit history client for post pages.
func WithGitClient(c *gitmeta.Client) Option {
	return func(s *settings) {
		s.git = c
	}
}

// WithFeedFiles sets the feed file names linked from every page.
func WithFeedFiles(files FeedFiles) Option {
	return func(s *settings) {
		s.feedFiles = files
	}
}

// WithNow sets the clock used for the footer year, the sitemap dates of
// undated posts and the feed build time.
func WithNow(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}
