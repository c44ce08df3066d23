package mdsite

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/feeds"

	"github.com/alnah/go-mdsite/internal/assets"
	"github.com/alnah/go-mdsite/internal/dateutil"
	"github.com/alnah/go-mdsite/internal/fileutil"
)

// Site paths of generated files.
const (
	StylesheetPath = "/assets/site.css"
	ScriptPath     = "/assets/site.js"
	NotFoundFile   = "404.html"
	indexFile      = "index.html"
)

// Section describes a listing page of one post type.
type Section struct {
	Type    PostType
	Path    string // site path, e.g. "/blog/"
	Heading string
}

// Sections lists the per-type listing pages.
var Sections = []Section{
	{Type: PostTypeBlog, Path: "/blog/", Heading: "Blog"},
	{Type: PostTypeResearch, Path: "/research/", Heading: "Research"},
}

// homeHeading is the heading of the post list on the home page.
const homeHeading = "Recent Posts"

// Site renders posts and listing pages through a template set.
// It is safe for concurrent use once created.
type Site struct {
	info      SiteInfo
	cfg       *settings
	renderer  *Renderer
	templates map[string]*template.Template
	style     string
	script    string
}

// NewSite creates a Site for info, loading templates, style and script from
// the embedded assets or the directory set with WithAssetPath.
func NewSite(info SiteInfo, opts ...Option) (*Site, error) {
	if err := info.Validate(); err != nil {
		return nil, err
	}
	info.URL = info.BaseURL()
	if info.Language == "" {
		info.Language = "en"
	}

	cfg := newSettings(opts)
	if cfg.siteURL == "" {
		cfg.siteURL = info.URL
	}
	if _, err := dateutil.ResolveFormat(cfg.dateFormat); err != nil {
		return nil, err
	}

	renderer, err := newRenderer(cfg)
	if err != nil {
		return nil, err
	}

	loader, err := assets.NewAssetResolver(cfg.assetPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
	}

	setName := cfg.templateSet
	if setName == "" {
		setName = assets.DefaultTemplateSetName
	}
	ts, err := loader.LoadTemplateSet(setName)
	if err != nil {
		return nil, fmt.Errorf("loading template set: %w", err)
	}
	templates, err := parseTemplateSet(ts)
	if err != nil {
		return nil, err
	}

	style, err := loader.LoadStyle(assets.DefaultStyleName)
	if err != nil {
		return nil, fmt.Errorf("loading style: %w", err)
	}
	script, err := loader.LoadScript(assets.DefaultScriptName)
	if err != nil {
		return nil, fmt.Errorf("loading script: %w", err)
	}

	return &Site{
		info:      info,
		cfg:       cfg,
		renderer:  renderer,
		templates: templates,
		style:     style,
		script:    script,
	}, nil
}

// parseTemplateSet parses each page template on its own copy of the layout.
func parseTemplateSet(ts *assets.TemplateSet) (map[string]*template.Template, error) {
	layout, err := template.New("layout").Parse(ts.Layout)
	if err != nil {
		return nil, fmt.Errorf("%w: %s layout: %v", ErrTemplateRender, ts.Name, err)
	}

	templates := make(map[string]*template.Template, len(ts.Pages()))
	for name, page := range ts.Pages() {
		t, err := layout.Clone()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTemplateRender, err)
		}
		if _, err := t.Parse(page); err != nil {
			return nil, fmt.Errorf("%w: %s %s: %v", ErrTemplateRender, ts.Name, name, err)
		}
		templates[name] = t
	}
	return templates, nil
}

// Info returns the site description.
func (s *Site) Info() SiteInfo {
	return s.info
}

// Renderer returns the markdown renderer of the site.
func (s *Site) Renderer() *Renderer {
	return s.renderer
}

// pageData is the root object of every template.
type pageData struct {
	Site        SiteInfo
	Title       string
	Description string
	Canonical   string
	OGImage     string
	FeedURL     string
	AtomURL     string
	Stylesheet  string
	Script      string
	Year        int
	Heading     string
	Posts       []postCard
	Post        *postView
}

// postCard is one entry of a post listing.
type postCard struct {
	URL        string
	CoverImage string
	Title      string
	Date       string
	DateISO    string
	Excerpt    string
}

// postView is the post of a post page.
type postView struct {
	Title   string
	Date    string
	DateISO string
	Git     *gitView
	TOC     template.HTML
	Body    template.HTML
}

// gitView is the commit history shown under a post title.
type gitView struct {
	Published    string
	PublishedISO string
	Updated      string
	UpdatedISO   string
	UpdateCount  int
	Revisions    string
	SHA          string
}

func (s *Site) newPage(title, description, sitePath string) *pageData {
	files := s.feedFiles()
	return &pageData{
		Site:        s.info,
		Title:       title,
		Description: description,
		Canonical:   s.info.URL + sitePath,
		FeedURL:     "/" + files.RSS,
		AtomURL:     "/" + files.Atom,
		Stylesheet:  StylesheetPath,
		Script:      ScriptPath,
		Year:        s.cfg.now().Year(),
	}
}

func (s *Site) feedFiles() FeedFiles {
	files := s.cfg.feedFiles
	if files.RSS == "" {
		files.RSS = DefaultRSSFile
	}
	if files.Atom == "" {
		files.Atom = DefaultAtomFile
	}
	return files
}

func (s *Site) formatDate(t time.Time) (display, iso string) {
	if t.IsZero() {
		return "", ""
	}
	// The format was validated by NewSite.
	display, _ = dateutil.FormatDate(t, s.cfg.dateFormat)
	return display, t.Format(time.RFC3339)
}

// absolute resolves a root-relative path against the site URL.
func (s *Site) absolute(u string) string {
	if strings.HasPrefix(u, "/") && !strings.HasPrefix(u, "//") {
		return s.info.URL + u
	}
	return u
}

// RenderPost renders the page of one post. When a git client is attached
// and the post has no history yet, it is fetched first; failures leave the
// frontmatter date in place.
func (s *Site) RenderPost(ctx context.Context, post *Post) ([]byte, error) {
	if post.Git == nil && s.cfg.git.Enabled() {
		post.Git = s.cfg.git.ForPost(ctx, post.Slug)
	}

	result, err := s.renderer.Render(ctx, post.Content, ProfilePage)
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", post.Slug, err)
	}

	page := s.newPage(post.Title, post.Excerpt, post.URLPath())
	page.OGImage = s.absolute(post.OGImage.URL)

	view := &postView{
		Title: post.Title,
		TOC:   template.HTML(result.TOC),  // #nosec G203 -- generated with escaped heading text
		Body:  template.HTML(result.HTML), // #nosec G203 -- goldmark output without raw HTML
	}
	view.Date, view.DateISO = s.formatDate(post.Date)
	if post.Git != nil {
		g := &gitView{UpdateCount: post.Git.UpdateCount, SHA: post.Git.LastCommitSHA}
		g.Published, g.PublishedISO = s.formatDate(post.Git.PublishedAt)
		g.Updated, g.UpdatedISO = s.formatDate(post.Git.UpdatedAt)
		g.Revisions = revisions(post.Git.UpdateCount)
		view.Git = g
	}
	page.Post = view

	return s.execute("post", page)
}

func revisions(n int) string {
	if n == 1 {
		return "1 revision"
	}
	return strconv.Itoa(n) + " revisions"
}

// WritePost renders a post to <outDir>/posts/<slug>/index.html and returns
// the written path.
func (s *Site) WritePost(ctx context.Context, outDir string, post *Post) (string, error) {
	content, err := s.RenderPost(ctx, post)
	if err != nil {
		return "", err
	}
	return s.write(outDir, post.URLPath()+"/", content)
}

// RenderList renders a listing page. The home page uses the index template,
// every other path the list template.
func (s *Site) RenderList(sitePath, heading string, posts []*Post) ([]byte, error) {
	tmpl, title := "list", heading
	if sitePath == "/" {
		tmpl, title = "index", ""
	}

	page := s.newPage(title, s.info.Description, sitePath)
	page.Heading = heading
	page.Posts = make([]postCard, 0, len(posts))
	for _, p := range posts {
		card := postCard{
			URL:        p.URLPath(),
			CoverImage: p.CoverImage,
			Title:      p.Title,
			Excerpt:    p.Excerpt,
		}
		card.Date, card.DateISO = s.formatDate(p.Date)
		page.Posts = append(page.Posts, card)
	}
	return s.execute(tmpl, page)
}

// RenderNotFound renders the 404 page.
func (s *Site) RenderNotFound() ([]byte, error) {
	return s.execute("notfound", s.newPage("Not Found", "", "/"+NotFoundFile))
}

// WriteIndexes writes the home page, the section listings and the 404
// page, and returns the written paths.
func (s *Site) WriteIndexes(outDir string, posts []*Post) ([]string, error) {
	var written []string

	home, err := s.RenderList("/", homeHeading, posts)
	if err != nil {
		return nil, err
	}
	path, err := s.write(outDir, "/", home)
	if err != nil {
		return nil, err
	}
	written = append(written, path)

	for _, sec := range Sections {
		content, err := s.RenderList(sec.Path, sec.Heading, PostsByType(posts, sec.Type))
		if err != nil {
			return written, err
		}
		path, err := s.write(outDir, sec.Path, content)
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}

	notFound, err := s.RenderNotFound()
	if err != nil {
		return written, err
	}
	path, err = s.write(outDir, "/"+NotFoundFile, notFound)
	if err != nil {
		return written, err
	}
	return append(written, path), nil
}

// WriteAssets writes the stylesheet and the browser script.
func (s *Site) WriteAssets(outDir string) ([]string, error) {
	outputs := []struct{ sitePath, content string }{
		{StylesheetPath, s.style},
		{ScriptPath, s.script},
	}
	var written []string
	for _, out := range outputs {
		path, err := s.write(outDir, out.sitePath, []byte(out.content))
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

// BuildFeed assembles the feed of posts with the feed rendering of each post.
func (s *Site) BuildFeed(ctx context.Context, posts []*Post, opts FeedOptions) (*feeds.Feed, error) {
	if opts.Now.IsZero() {
		opts.Now = s.cfg.now()
	}
	return BuildFeed(ctx, s.info, posts, s.renderer.FeedHTML, opts)
}

// WriteFeeds builds the feed of posts and writes it into dir.
func (s *Site) WriteFeeds(ctx context.Context, dir string, posts []*Post, opts FeedOptions) ([]string, error) {
	feed, err := s.BuildFeed(ctx, posts, opts)
	if err != nil {
		return nil, err
	}
	return WriteFeeds(dir, feed, s.info.Language, s.feedFiles())
}

func (s *Site) execute(name string, page *pageData) ([]byte, error) {
	tmpl, ok := s.templates[name]
	if !ok {
		return nil, fmt.Errorf("%w: no %s template", ErrTemplateRender, name)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", page); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateRender, name, err)
	}
	return buf.Bytes(), nil
}

// write stores content at a site path under outDir. Paths ending in "/"
// get an index.html.
func (s *Site) write(outDir, sitePath string, content []byte) (string, error) {
	if strings.HasSuffix(sitePath, "/") {
		sitePath += indexFile
	}
	path, err := fileutil.ResolveUnder(outDir, sitePath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	if err := fileutil.WriteFile(path, content); err != nil {
		return "", fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return filepath.Clean(path), nil
}
