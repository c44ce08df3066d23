package gitmeta

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	gh "github.com/google/go-github/v80/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

const commitsPath = "/repos/deadmanoz/deadmanoz.xyz/commits"

func commitJSON(sha, date, message string) string {
	return fmt.Sprintf(`{"sha":%q,"commit":{"author":{"date":%q},"message":%q}}`, sha, date, message)
}

// newTestClient points a client at srv with throttling disabled.
func newTestClient(t *testing.T, srv *httptest.Server, cfg Config) *Client {
	t.Helper()

	cfg.BaseURL = srv.URL
	c, err := NewClient(context.Background(), cfg, WithRateLimit(rate.Inf), WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	mk := func(sha, date, msg string) *gh.RepositoryCommit {
		d, err := time.Parse(time.RFC3339, date)
		require.NoError(t, err)
		return &gh.RepositoryCommit{
			SHA: gh.Ptr(sha),
			Commit: &gh.Commit{
				Message: gh.Ptr(msg),
				Author:  &gh.CommitAuthor{Date: &gh.Timestamp{Time: d}},
			},
		}
	}

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, Summarize(nil))
	})

	t.Run("single commit", func(t *testing.T) {
		t.Parallel()

		md := Summarize([]*gh.RepositoryCommit{mk("0123456789abcdef", "2024-01-02T03:04:05Z", "Add post")})
		require.NotNil(t, md)
		assert.Equal(t, 0, md.UpdateCount)
		assert.Equal(t, "0123456", md.LastCommitSHA)
		assert.True(t, md.PublishedAt.Equal(md.UpdatedAt))
	})

	t.Run("newest first", func(t *testing.T) {
		t.Parallel()

		md := Summarize([]*gh.RepositoryCommit{
			mk("ccccccccc", "2024-03-01T00:00:00Z", "Fix typo\r\n\nLonger body"),
			mk("bbbbbbbbb", "2024-02-01T00:00:00Z", "Expand section"),
			mk("aaaaaaaaa", "2024-01-01T00:00:00Z", "Add post"),
		})
		require.NotNil(t, md)
		assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), md.PublishedAt.UTC())
		assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), md.UpdatedAt.UTC())
		assert.Equal(t, 2, md.UpdateCount)
		assert.Equal(t, "Fix typo", md.LastCommitMessage)
		assert.Equal(t, "ccccccc", md.LastCommitSHA)
	})
}

func TestClient_Fetch_Paginates(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != commitsPath {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, "_posts/halving.md", r.URL.Query().Get("path"))
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		assert.Equal(t, "deadmanoz-xyz-blog", r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprintf(w, "[%s]", commitJSON("aaaaaaaaaa", "2024-01-01T00:00:00Z", "Add post"))
			return
		}
		w.Header().Set("Link", fmt.Sprintf(`<%s%s?page=2&per_page=100>; rel="next"`, srv.URL, commitsPath))
		fmt.Fprintf(w, "[%s,%s]",
			commitJSON("cccccccccc", "2024-03-01T00:00:00Z", "Latest edit\nbody"),
			commitJSON("bbbbbbbbbb", "2024-02-01T00:00:00Z", "Middle edit"))
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv, DefaultConfig())
	md, err := c.Fetch(context.Background(), "_posts/halving.md")
	require.NoError(t, err)
	require.NotNil(t, md)

	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 2, md.UpdateCount)
	assert.Equal(t, "Latest edit", md.LastCommitMessage)
	assert.Equal(t, "ccccccc", md.LastCommitSHA)
	assert.Equal(t, 2024, md.PublishedAt.Year())
	assert.Equal(t, time.January, md.PublishedAt.Month())
}

func TestClient_Fetch_Errors(t *testing.T) {
	t.Parallel()

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message":"Not Found"}`)
		}))
		t.Cleanup(srv.Close)

		_, err := newTestClient(t, srv, DefaultConfig()).Fetch(context.Background(), "_posts/x.md")
		require.Error(t, err)
		assert.True(t, IsNotFound(err), "want not found, got %v", err)
	})

	t.Run("rate limited", func(t *testing.T) {
		t.Parallel()

		reset := time.Now().Add(time.Hour).Unix()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-RateLimit-Limit", "60")
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(reset, 10))
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"message":"API rate limit exceeded"}`)
		}))
		t.Cleanup(srv.Close)

		_, err := newTestClient(t, srv, DefaultConfig()).Fetch(context.Background(), "_posts/x.md")
		require.Error(t, err)
		assert.True(t, IsRateLimited(err), "want rate limit error, got %v", err)
	})

	t.Run("no commits", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `[]`)
		}))
		t.Cleanup(srv.Close)

		md, err := newTestClient(t, srv, DefaultConfig()).Fetch(context.Background(), "_posts/x.md")
		require.NoError(t, err)
		assert.Nil(t, md)
	})

	t.Run("disabled", func(t *testing.T) {
		t.Parallel()

		cfg := DefaultConfig()
		cfg.Disabled = true
		c, err := NewClient(context.Background(), cfg)
		require.NoError(t, err)

		_, err = c.Fetch(context.Background(), "_posts/x.md")
		assert.ErrorIs(t, err, ErrDisabled)
		assert.Nil(t, c.ForPost(context.Background(), "x"))
	})
}

func TestClient_ForPost_Caches(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("path") == "_posts/missing.md" {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"message":"boom"}`)
			return
		}
		fmt.Fprintf(w, "[%s]", commitJSON("abcdef0123", "2024-04-20T00:00:00Z", "Add post"))
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv, DefaultConfig())
	ctx := context.Background()

	first := c.ForPost(ctx, "halving.md")
	second := c.ForPost(ctx, "halving")
	require.NotNil(t, first)
	assert.Same(t, first, second)

	assert.Nil(t, c.ForPost(ctx, "missing"))
	assert.Nil(t, c.ForPost(ctx, "missing"))

	assert.Equal(t, int32(2), calls.Load())
}

func TestConfigFromEnv(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		EnvOwner:    "alice",
		EnvRepo:     "notes",
		EnvToken:    " secret ",
		EnvDisabled: "true",
	}
	cfg := ConfigFromEnv(DefaultConfig(), func(k string) string { return env[k] })

	assert.Equal(t, "alice", cfg.Owner)
	assert.Equal(t, "notes", cfg.Repo)
	assert.Equal(t, "secret", cfg.Token)
	assert.True(t, cfg.Disabled)

	cfg = ConfigFromEnv(DefaultConfig(), func(k string) string {
		if k == EnvDisabled {
			return "1"
		}
		return ""
	})
	assert.Equal(t, DefaultOwner, cfg.Owner)
	assert.False(t, cfg.Disabled, "only the literal \"true\" disables fetching")
}

func TestConfig_PostPath(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	assert.Equal(t, "_posts/halving.md", cfg.PostPath("halving"))
	assert.Equal(t, "_posts/halving.md", cfg.PostPath("halving.md"))

	cfg.PostsDir = "/content/posts/"
	assert.Equal(t, "content/posts/a.md", cfg.PostPath("a"))

	cfg.PostsDir = ""
	assert.Equal(t, "a.md", cfg.PostPath("a"))
}

func TestRateLimiter(t *testing.T) {
	t.Parallel()

	r := NewRateLimiter(rate.Inf)
	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set("X-RateLimit-Limit", "5000")
	resp.Header.Set("X-RateLimit-Remaining", "1")
	resp.Header.Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10))
	r.UpdateFromResponse(resp)

	assert.Equal(t, 5000, r.Limit())
	assert.Equal(t, 1, r.Remaining())

	err := r.Wait(context.Background())
	assert.True(t, IsRateLimited(err), "want rate limit error below the buffer, got %v", err)

	resp.Header.Set("X-RateLimit-Remaining", "4000")
	r.UpdateFromResponse(resp)
	assert.NoError(t, r.Wait(context.Background()))
}
