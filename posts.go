package mdsite

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/pelletier/go-toml/v2"

	"github.com/alnah/go-mdsite/internal/dateutil"
	"github.com/alnah/go-mdsite/internal/yamlutil"
)

// PostExt is the file extension of posts.
const PostExt = ".md"

// DefaultIncludePattern selects the posts of a directory.
const DefaultIncludePattern = "*" + PostExt

// MaxPostSize bounds the size of one post file (10MB).
const MaxPostSize = 10 * 1024 * 1024

// postFormats are the frontmatter formats accepted in posts.
var postFormats = []*frontmatter.Format{
	yamlutil.FrontmatterFormat(),
	frontmatter.NewFormat("+++", "+++", toml.Unmarshal),
}

// postFrontmatter mirrors the frontmatter keys of a post.
type postFrontmatter struct {
	Title      string  `yaml:"title" toml:"title"`
	Date       any     `yaml:"date" toml:"date"`
	Type       string  `yaml:"type" toml:"type"`
	CoverImage string  `yaml:"coverImage" toml:"coverImage"`
	Author     Author  `yaml:"author" toml:"author"`
	Excerpt    string  `yaml:"excerpt" toml:"excerpt"`
	OGImage    OGImage `yaml:"ogImage" toml:"ogImage"`
	Hidden     bool    `yaml:"hidden" toml:"hidden"`
}

// LoadOptions selects the posts read by LoadPosts.
type LoadOptions struct {
	Include []string // doublestar patterns relative to the directory, default "*.md"
	Exclude []string // doublestar patterns removed from the selection
	Hidden  bool     // keep posts marked hidden
}

// LoadPost reads <dir>/<slug>.md. The slug may carry the .md extension.
func LoadPost(dir, slug string) (*Post, error) {
	slug = strings.TrimSuffix(filepath.ToSlash(slug), PostExt)
	if slug == "" {
		return nil, ErrEmptySlug
	}
	if !slugPattern.MatchString(slug) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSlug, slug)
	}

	fullPath := filepath.Join(dir, filepath.FromSlash(slug)+PostExt)
	info, err := os.Stat(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrPostNotFound, slug)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrPostRead, slug, err)
	}
	if info.Size() > MaxPostSize {
		return nil, fmt.Errorf("%w: %s: %d bytes (max %d)", ErrPostRead, slug, info.Size(), MaxPostSize)
	}

	data, err := os.ReadFile(fullPath) // #nosec G304 -- slug validated above
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrPostRead, slug, err)
	}

	post, err := ParsePost(slug, data)
	if err != nil {
		return nil, err
	}
	post.SourcePath = fullPath
	return post, nil
}

// ParsePost splits frontmatter from content and builds a Post. The title
// defaults to the slug.
func ParsePost(slug string, data []byte) (*Post, error) {
	var fm postFrontmatter
	body, err := frontmatter.Parse(bytes.NewReader(data), &fm, postFormats...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFrontmatter, slug, err)
	}

	date, err := frontmatterDate(fm.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFrontmatter, slug, err)
	}

	post := &Post{
		Slug:       slug,
		Title:      strings.TrimSpace(fm.Title),
		Date:       date,
		Type:       PostType(strings.ToLower(strings.TrimSpace(fm.Type))),
		CoverImage: fm.CoverImage,
		Author:     fm.Author,
		Excerpt:    strings.TrimSpace(fm.Excerpt),
		OGImage:    fm.OGImage,
		Content:    string(body),
		Hidden:     fm.Hidden,
	}
	if post.Title == "" {
		post.Title = slug
	}

	if err := post.Validate(); err != nil {
		return nil, err
	}
	return post, nil
}

// frontmatterDate accepts the date shapes YAML and TOML decoders produce.
func frontmatterDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case nil:
		return time.Time{}, nil
	case string:
		if strings.TrimSpace(d) == "" {
			return time.Time{}, nil
		}
		return dateutil.ParseDate(d)
	case time.Time:
		return d, nil
	case toml.LocalDate:
		return d.AsTime(time.UTC), nil
	case toml.LocalDateTime:
		return d.AsTime(time.UTC), nil
	case fmt.Stringer:
		return dateutil.ParseDate(d.String())
	default:
		return time.Time{}, fmt.Errorf("%w: %v", dateutil.ErrInvalidDate, v)
	}
}

// LoadPosts reads every selected post of dir, drops hidden posts and sorts
// the rest newest first.
func LoadPosts(dir string, opts LoadOptions) ([]*Post, error) {
	slugs, err := ListPostSlugs(dir, opts)
	if err != nil {
		return nil, err
	}

	posts := make([]*Post, 0, len(slugs))
	for _, slug := range slugs {
		post, err := LoadPost(dir, slug)
		if err != nil {
			return nil, err
		}
		if post.Hidden && !opts.Hidden {
			continue
		}
		posts = append(posts, post)
	}

	SortPosts(posts)
	return posts, nil
}

// ListPostSlugs returns the slugs selected by the include and exclude
// patterns, sorted.
func ListPostSlugs(dir string, opts LoadOptions) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPostsDirectory, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: not a directory: %s", ErrPostsDirectory, dir)
	}

	include := opts.Include
	if len(include) == 0 {
		include = []string{DefaultIncludePattern}
	}

	fsys := os.DirFS(dir)
	seen := make(map[string]bool)
	var slugs []string

	for _, pattern := range include {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("%w: pattern %q: %v", ErrPostsDirectory, pattern, err)
		}
		for _, match := range matches {
			if path.Ext(match) != PostExt || excluded(match, opts.Exclude) {
				continue
			}
			slug := strings.TrimSuffix(match, PostExt)
			if !seen[slug] {
				seen[slug] = true
				slugs = append(slugs, slug)
			}
		}
	}

	slices.Sort(slugs)
	return slugs, nil
}

func excluded(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// SortPosts orders posts newest first. Undated posts sort last and ties are
// broken by slug.
func SortPosts(posts []*Post) {
	slices.SortStableFunc(posts, func(a, b *Post) int {
		switch {
		case a.Date.IsZero() != b.Date.IsZero():
			if a.Date.IsZero() {
				return 1
			}
			return -1
		case !a.Date.Equal(b.Date):
			return b.Date.Compare(a.Date)
		default:
			return strings.Compare(a.Slug, b.Slug)
		}
	})
}

// PostsByType returns the posts of one type, keeping their order.
func PostsByType(posts []*Post, t PostType) []*Post {
	var out []*Post
	for _, p := range posts {
		if p.Type == t {
			out = append(out, p)
		}
	}
	return out
}
