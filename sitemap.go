package mdsite

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Sitemap file names.
const (
	SitemapFile = "sitemap.xml"
	RobotsFile  = "robots.txt"
)

type sitemapEntry struct {
	Location string
	LastMod  time.Time
}

// BuildSitemap returns the sitemap of the home page, the section listings
// and every post. Posts use their last git update, then their date; listing
// pages use the newest post date, then fallback.
func BuildSitemap(baseURL string, posts []*Post, fallback time.Time) string {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")

	newest := fallback
	if len(posts) > 0 && !posts[0].Date.IsZero() {
		newest = posts[0].Date
	}

	entries := []sitemapEntry{{Location: base + "/", LastMod: newest}}
	for _, sec := range Sections {
		entries = append(entries, sitemapEntry{Location: base + sec.Path, LastMod: newest})
	}

	seen := make(map[string]struct{}, len(posts))
	for _, post := range posts {
		location := base + post.URLPath()
		if _, ok := seen[location]; ok {
			continue
		}
		seen[location] = struct{}{}

		lastMod := post.Date
		if post.Git != nil && !post.Git.UpdatedAt.IsZero() {
			lastMod = post.Git.UpdatedAt
		}
		if lastMod.IsZero() {
			lastMod = fallback
		}
		entries = append(entries, sitemapEntry{Location: location, LastMod: lastMod})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Location < entries[j].Location
	})

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	for _, entry := range entries {
		builder.WriteString("  <url>\n")
		builder.WriteString(fmt.Sprintf("    <loc>%s</loc>\n", xmlEscaper.Replace(entry.Location)))
		if !entry.LastMod.IsZero() {
			builder.WriteString(fmt.Sprintf("    <lastmod>%s</lastmod>\n", entry.LastMod.UTC().Format(time.RFC3339)))
		}
		builder.WriteString("  </url>\n")
	}
	builder.WriteString(`</urlset>` + "\n")
	return builder.String()
}

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&apos;")

// BuildRobots returns a robots.txt allowing everything and pointing to the
// sitemap.
func BuildRobots(baseURL string) string {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	var builder strings.Builder
	builder.WriteString("User-agent: *\n")
	builder.WriteString("Allow: /\n")
	builder.WriteString("\n")
	builder.WriteString(fmt.Sprintf("Sitemap: %s/%s\n", base, SitemapFile))
	return builder.String()
}

// WriteSitemap writes sitemap.xml and robots.txt into outDir.
func (s *Site) WriteSitemap(outDir string, posts []*Post) ([]string, error) {
	sitemap, err := s.write(outDir, "/"+SitemapFile, []byte(BuildSitemap(s.info.URL, posts, s.cfg.now())))
	if err != nil {
		return nil, err
	}
	robots, err := s.write(outDir, "/"+RobotsFile, []byte(BuildRobots(s.info.URL)))
	if err != nil {
		return []string{sitemap}, err
	}
	return []string{sitemap, robots}, nil
}
