package main

// Notes:
// - runMain: exit codes for dispatch errors and a full build against
//   temporary directories with git metadata disabled. The GitHub client is
//   covered in internal/gitmeta.
// - isCommand: command name matching.

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// testEnv returns an environment writing to buffers with vars as the
// process environment.
func testEnv(vars map[string]string) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	env := &Environment{
		Now:    func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) },
		Stdout: &stdout,
		Stderr: &stderr,
		Getenv: func(key string) string { return vars[key] },
		Environ: func() []string {
			var out []string
			for k, v := range vars {
				out = append(out, k+"="+v)
			}
			return out
		},
		BuildID: func() string { return "test-build" },
	}
	return env, &stdout, &stderr
}

// writeFile writes content under dir, creating parents.
func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}
}

// newContent creates a posts dir with two posts and a public dir.
func newContent(t *testing.T) (posts, public string) {
	t.Helper()
	root := t.TempDir()
	posts = filepath.Join(root, "_posts")
	public = filepath.Join(root, "public")
	writeFile(t, posts, "fees.md", "---\ntitle: Fees\ndate: 2024-04-20\ntype: research\n---\n## One\n\nx\n\n## Two\n\ny\n")
	writeFile(t, posts, "hello.md", "---\ntitle: Hello\ndate: 2024-01-02\ntype: blog\n---\nHi.\n")
	writeFile(t, public, "favicon.ico", "icon")
	return posts, public
}

// ---------------------------------------------------------------------------
// TestVersion - Version command
// ---------------------------------------------------------------------------

func TestVersion(t *testing.T) {
	t.Parallel()

	env, stdout, _ := testEnv(nil)
	if code := runMain([]string{"mdsite", "version"}, env); code != ExitSuccess {
		t.Fatalf("runMain(version) = %d, want %d", code, ExitSuccess)
	}
	if !strings.Contains(stdout.String(), "mdsite "+Version) {
		t.Errorf("stdout = %q, want version", stdout.String())
	}
}

// ---------------------------------------------------------------------------
// TestIsCommand - Command name matching
// ---------------------------------------------------------------------------

func TestIsCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"build", true},
		{"feed", true},
		{"watch", true},
		{"version", true},
		{"help", true},
		{"convert", false},
		{"", false},
		{"BUILD", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := isCommand(tt.input); got != tt.want {
				t.Errorf("isCommand(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_ExitCodes - Dispatch errors
// ---------------------------------------------------------------------------

func TestRunMain_ExitCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		args     []string
		wantCode int
	}{
		{"no command", []string{"mdsite"}, ExitUsage},
		{"unknown command", []string{"mdsite", "deploy"}, ExitUsage},
		{"help", []string{"mdsite", "help"}, ExitSuccess},
		{"help build", []string{"mdsite", "help", "build"}, ExitSuccess},
		{"help unknown", []string{"mdsite", "help", "deploy"}, ExitUsage},
		{"build --help", []string{"mdsite", "build", "--help"}, ExitSuccess},
		{"bad flag", []string{"mdsite", "build", "--nope"}, ExitUsage},
		{"negative workers", []string{"mdsite", "build", "--workers", "-1"}, ExitUsage},
		{"missing config", []string{"mdsite", "build", "--config", "./missing/site.yaml"}, ExitUsage},
		{"missing posts dir", []string{"mdsite", "build", "--no-git", "--posts", "/nonexistent/_posts"}, ExitIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, _, stderr := testEnv(nil)
			args := tt.args
			if tt.name == "missing posts dir" {
				args = append(args, "--out", t.TempDir())
			}
			if code := runMain(args, env); code != tt.wantCode {
				t.Errorf("runMain(%v) = %d, want %d\nstderr: %s", args, code, tt.wantCode, stderr.String())
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_Build - Full build
// ---------------------------------------------------------------------------

func TestRunMain_Build(t *testing.T) {
	t.Parallel()

	posts, public := newContent(t)
	out := filepath.Join(t.TempDir(), "out")

	env, stdout, stderr := testEnv(map[string]string{"MDSITE_SITE_URL": "https://example.org"})
	code := runMain([]string{"mdsite", "build", "--no-git", "--posts", posts, "--public", public, "--out", out, "--color", "never"}, env)
	if code != ExitSuccess {
		t.Fatalf("runMain(build) = %d, want %d\nstderr: %s", code, ExitSuccess, stderr.String())
	}

	for _, rel := range []string{
		"index.html",
		"blog/index.html",
		"research/index.html",
		"404.html",
		"posts/fees/index.html",
		"posts/hello/index.html",
		"assets/site.css",
		"assets/site.js",
		"sitemap.xml",
		"robots.txt",
		"feed.xml",
		"atom.xml",
		"favicon.ico",
	} {
		if _, err := os.Stat(filepath.Join(out, filepath.FromSlash(rel))); err != nil {
			t.Errorf("missing output %s: %v", rel, err)
		}
	}

	page, err := os.ReadFile(filepath.Join(out, "posts", "fees", "index.html"))
	if err != nil {
		t.Fatalf("reading post: %v", err)
	}
	if !strings.Contains(string(page), `href="https://example.org/posts/fees"`) {
		t.Error("post page should use the site URL from MDSITE_SITE_URL")
	}

	if !strings.Contains(stdout.String(), "Created") {
		t.Errorf("stdout = %q, want created files", stdout.String())
	}
	if strings.Contains(stdout.String(), "\x1b[") {
		t.Error("--color never should produce no ANSI codes")
	}
}

func TestRunMain_BuildNoFeed(t *testing.T) {
	t.Parallel()

	posts, public := newContent(t)
	out := t.TempDir()

	env, _, stderr := testEnv(nil)
	code := runMain([]string{"mdsite", "build", "-q", "--no-git", "--no-feed", "-p", posts, "--public", public, "-o", out}, env)
	if code != ExitSuccess {
		t.Fatalf("runMain(build) = %d\nstderr: %s", code, stderr.String())
	}
	if _, err := os.Stat(filepath.Join(out, "feed.xml")); !os.IsNotExist(err) {
		t.Error("feed.xml should not be written with --no-feed")
	}
}

func TestRunMain_BuildInvalidPost(t *testing.T) {
	t.Parallel()

	posts, public := newContent(t)
	writeFile(t, posts, "bad.md", "---\ndate: someday\n---\nx\n")

	env, _, stderr := testEnv(nil)
	code := runMain([]string{"mdsite", "build", "--no-git", "-p", posts, "--public", public, "-o", t.TempDir()}, env)
	if code != ExitUsage {
		t.Errorf("runMain(build) = %d, want %d for invalid frontmatter\nstderr: %s", code, ExitUsage, stderr.String())
	}
}

func TestRunMain_BuildUsesClock(t *testing.T) {
	t.Parallel()

	posts, public := newContent(t)
	writeFile(t, posts, "draft.md", "---\ntitle: Draft\n---\nSoon.\n")
	out := t.TempDir()

	env, _, stderr := testEnv(nil)
	code := runMain([]string{"mdsite", "build", "-q", "--no-git", "-p", posts, "--public", public, "-o", out}, env)
	if code != ExitSuccess {
		t.Fatalf("runMain(build) = %d\nstderr: %s", code, stderr.String())
	}

	read := func(rel string) string {
		t.Helper()
		data, err := os.ReadFile(filepath.Join(out, filepath.FromSlash(rel)))
		if err != nil {
			t.Fatalf("reading %s: %v", rel, err)
		}
		return string(data)
	}

	if page := read("posts/fees/index.html"); !strings.Contains(page, "&copy; 2025") {
		t.Error("footer year should come from the injected clock")
	}
	if sitemap := read("sitemap.xml"); !strings.Contains(sitemap, "<lastmod>2025-03-01T00:00:00Z</lastmod>") {
		t.Errorf("sitemap should date the undated post with the injected clock\n%s", sitemap)
	}
	rss := read("feed.xml")
	if draft, fees := strings.Index(rss, "<title>Draft</title>"), strings.Index(rss, "<title>Fees</title>"); draft < 0 || draft > fees {
		t.Errorf("undated post should lead the feed\n%s", rss)
	}
	if !strings.Contains(rss, "<lastBuildDate>Sat, 01 Mar 2025") {
		t.Errorf("lastBuildDate should be the build time\n%s", rss)
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_Feed - Feed command
// ---------------------------------------------------------------------------

func TestRunMain_Feed(t *testing.T) {
	t.Parallel()

	posts, public := newContent(t)

	env, _, stderr := testEnv(nil)
	code := runMain([]string{"mdsite", "feed", "-p", posts, "--public", public, "--limit", "1"}, env)
	if code != ExitSuccess {
		t.Fatalf("runMain(feed) = %d\nstderr: %s", code, stderr.String())
	}

	rss, err := os.ReadFile(filepath.Join(public, "feed.xml"))
	if err != nil {
		t.Fatalf("reading feed: %v", err)
	}
	if got := strings.Count(string(rss), "<item>"); got != 1 {
		t.Errorf("feed items = %d, want 1", got)
	}
	if !strings.Contains(string(rss), "deadmanoz.xyz/posts/fees") {
		t.Error("feed should hold the newest post")
	}
}
