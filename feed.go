package mdsite

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/gorilla/feeds"

	"github.com/alnah/go-mdsite/internal/fileutil"
)

// Default feed file names.
const (
	DefaultRSSFile  = "feed.xml"
	DefaultAtomFile = "atom.xml"
)

// feedImagePath is the site path of the feed image.
const feedImagePath = "/favicon/apple-touch-icon.png"

// ContentRenderer renders post markdown for feed readers.
type ContentRenderer func(ctx context.Context, markdown string) (string, error)

// FeedOptions configures BuildFeed.
type FeedOptions struct {
	Limit int       // maximum number of items, 0 for all
	Now   time.Time // build time, the date of undated posts; zero means time.Now
}

// FeedFiles names the files written by WriteFeeds.
type FeedFiles struct {
	RSS  string
	Atom string
}

// feedEntry is a post with the date it carries in the feed.
type feedEntry struct {
	post *Post
	date time.Time
}

// BuildFeed assembles the feed of posts, newest first. Undated posts take
// the build time, so they lead the feed. Each item carries the full feed
// rendering of its post.
func BuildFeed(ctx context.Context, site SiteInfo, posts []*Post, render ContentRenderer, opts FeedOptions) (*feeds.Feed, error) {
	if err := site.Validate(); err != nil {
		return nil, err
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	base := site.BaseURL()

	entries := make([]feedEntry, len(posts))
	for i, post := range posts {
		entries[i] = feedEntry{post: post, date: post.Date}
		if post.Date.IsZero() {
			entries[i].date = now
		}
	}
	slices.SortStableFunc(entries, func(a, b feedEntry) int {
		return b.date.Compare(a.date)
	})
	if opts.Limit > 0 && len(entries) > opts.Limit {
		entries = entries[:opts.Limit]
	}

	updated := now
	if len(entries) > 0 {
		updated = entries[0].date
	}

	author := &feeds.Author{Name: site.Author, Email: site.Email}

	feed := &feeds.Feed{
		Title:       site.Title,
		Link:        &feeds.Link{Href: base},
		Description: site.Description,
		Author:      author,
		Id:          base,
		Updated:     updated,
		Copyright:   "© " + strconv.Itoa(now.Year()) + " " + site.Author,
		Image: &feeds.Image{
			Url:   base + feedImagePath,
			Title: site.Title,
			Link:  base,
		},
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		post := entry.post
		content, err := render(ctx, post.Content)
		if err != nil {
			return nil, fmt.Errorf("rendering %s for feed: %w", post.Slug, err)
		}

		link := base + post.URLPath()
		feed.Add(&feeds.Item{
			Title:       post.Title,
			Link:        &feeds.Link{Href: link},
			Id:          link,
			Author:      author,
			Description: post.Excerpt,
			Content:     content,
			Created:     entry.date,
			Updated:     entry.date,
		})
	}

	return feed, nil
}

// EncodeRSS returns the RSS 2.0 document of feed.
func EncodeRSS(feed *feeds.Feed, language string) (string, error) {
	rss := (&feeds.Rss{Feed: feed}).RssFeed()
	rss.Language = language
	// managingEditor must be an email address.
	if feed.Author == nil || feed.Author.Email == "" {
		rss.ManagingEditor = ""
	}
	return feeds.ToXML(rss)
}

// EncodeAtom returns the Atom 1.0 document of feed.
func EncodeAtom(feed *feeds.Feed) (string, error) {
	return feed.ToAtom()
}

// WriteFeeds writes the RSS and Atom documents into dir and returns the
// written paths.
func WriteFeeds(dir string, feed *feeds.Feed, language string, files FeedFiles) ([]string, error) {
	if files.RSS == "" {
		files.RSS = DefaultRSSFile
	}
	if files.Atom == "" {
		files.Atom = DefaultAtomFile
	}

	rss, err := EncodeRSS(feed, language)
	if err != nil {
		return nil, fmt.Errorf("encoding RSS: %w", err)
	}
	atom, err := EncodeAtom(feed)
	if err != nil {
		return nil, fmt.Errorf("encoding Atom: %w", err)
	}

	var written []string
	outputs := []struct{ name, content string }{
		{files.RSS, rss},
		{files.Atom, atom},
	}
	for _, out := range outputs {
		path := filepath.Join(dir, out.name)
		if err := fileutil.WriteFile(path, []byte(out.content)); err != nil {
			return written, fmt.Errorf("%w: %v", ErrWriteOutput, err)
		}
		written = append(written, path)
	}
	return written, nil
}
