package gitmeta

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/alnah/go-mdsite/internal/hints"
)

// shortSHALength is the number of SHA characters shown on pages.
const shortSHALength = 7

// Metadata is the publication history of one post.
type Metadata struct {
	PublishedAt       time.Time
	UpdatedAt         time.Time
	UpdateCount       int
	LastCommitMessage string
	LastCommitSHA     string
}

// Client fetches commit history for post files.
type Client struct {
	cfg     Config
	gh      *gh.Client
	limiter *RateLimiter
	logger  *slog.Logger

	mu    sync.Mutex
	cache map[string]*Metadata
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRateLimit overrides the proactive request rate.
func WithRateLimit(perSecond rate.Limit) Option {
	return func(c *Client) {
		c.limiter = NewRateLimiter(perSecond)
	}
}

// WithHTTPClient sets the HTTP client used when no token is configured.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil && c.cfg.Token == "" {
			c.gh = gh.NewClient(hc)
		}
	}
}

// NewClient creates a client for cfg. With a token, requests are
// authenticated through an oauth2 static token source.
func NewClient(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	var hc *http.Client
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		hc = oauth2.NewClient(ctx, ts)
	} else {
		hc = &http.Client{}
	}
	hc.Timeout = cfg.Timeout

	c := &Client{
		cfg:     cfg,
		gh:      gh.NewClient(hc),
		limiter: NewRateLimiter(ProactiveRate),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		cache:   make(map[string]*Metadata),
	}
	for _, opt := range opts {
		opt(c)
	}

	if cfg.UserAgent != "" {
		c.gh.UserAgent = cfg.UserAgent
	}
	if cfg.BaseURL != "" {
		base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parsing GitHub base URL: %w", err)
		}
		c.gh.BaseURL = base
	}

	return c, nil
}

// Enabled reports whether metadata should be fetched.
func (c *Client) Enabled() bool {
	return c != nil && !c.cfg.Disabled
}

// Fetch lists every commit touching path and summarizes them. It returns
// nil without error when the path has no commits.
func (c *Client) Fetch(ctx context.Context, path string) (*Metadata, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}

	opts := &gh.CommitsListOptions{
		Path:        path,
		ListOptions: gh.ListOptions{PerPage: 100},
	}

	var commits []*gh.RepositoryCommit
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		page, resp, err := c.gh.Repositories.ListCommits(ctx, c.cfg.Owner, c.cfg.Repo, opts)
		if resp != nil {
			c.limiter.UpdateFromResponse(resp.Response)
		}
		if err != nil {
			return nil, c.wrapError(err, "list commits")
		}

		commits = append(commits, page...)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return Summarize(commits), nil
}

// ForPost returns the metadata of a post, or nil when it is unavailable.
// Results, including misses, are cached for the lifetime of the client.
func (c *Client) ForPost(ctx context.Context, slug string) *Metadata {
	if !c.Enabled() {
		return nil
	}

	path := c.cfg.PostPath(slug)

	c.mu.Lock()
	if md, ok := c.cache[path]; ok {
		c.mu.Unlock()
		return md
	}
	c.mu.Unlock()

	md, err := c.Fetch(ctx, path)
	switch {
	case err != nil && ctx.Err() != nil:
		return nil
	case err != nil:
		c.logger.Warn("git metadata unavailable", "path", path, "error", err.Error()+c.hint(err))
	case md == nil:
		c.logger.Warn("no commits found", "path", path)
	}

	c.mu.Lock()
	c.cache[path] = md
	c.mu.Unlock()
	return md
}

// hint returns remediation advice for err, or "".
func (c *Client) hint(err error) string {
	switch {
	case IsRateLimited(err):
		return hints.ForGitRateLimit()
	case IsNotFound(err):
		return hints.ForGitNotFound(c.cfg.Owner, c.cfg.Repo)
	}
	return ""
}

// Summarize derives Metadata from commits listed newest first. It returns
// nil for an empty list.
func Summarize(commits []*gh.RepositoryCommit) *Metadata {
	if len(commits) == 0 {
		return nil
	}

	newest := commits[0]
	oldest := commits[len(commits)-1]

	message, _, _ := strings.Cut(newest.GetCommit().GetMessage(), "\n")
	sha := newest.GetSHA()
	if len(sha) > shortSHALength {
		sha = sha[:shortSHALength]
	}

	return &Metadata{
		PublishedAt:       oldest.GetCommit().GetAuthor().GetDate().Time,
		UpdatedAt:         newest.GetCommit().GetAuthor().GetDate().Time,
		UpdateCount:       max(0, len(commits)-1),
		LastCommitMessage: strings.TrimRight(message, "\r"),
		LastCommitSHA:     sha,
	}
}

// wrapError converts go-github errors to package error types.
func (c *Client) wrapError(err error, operation string) error {
	var rateLimitErr *gh.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return &RateLimitError{
			ResetAt:   rateLimitErr.Rate.Reset.Time,
			Remaining: rateLimitErr.Rate.Remaining,
			Limit:     rateLimitErr.Rate.Limit,
		}
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		apiErr := &APIError{
			StatusCode: ghErr.Response.StatusCode,
			Message:    ghErr.Message,
		}
		if ghErr.Response.Request != nil {
			apiErr.URL = ghErr.Response.Request.URL.String()
		}
		return apiErr
	}

	return fmt.Errorf("%s: %w", operation, err)
}
