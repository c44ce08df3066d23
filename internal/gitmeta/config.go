package gitmeta

import (
	"os"
	"strings"
	"time"
)

// Defaults for the repository that hosts the posts.
const (
	DefaultOwner     = "deadmanoz"
	DefaultRepo      = "deadmanoz.xyz"
	DefaultPostsDir  = "_posts"
	DefaultUserAgent = "deadmanoz-xyz-blog"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second
)

// Environment variables read by ConfigFromEnv.
const (
	EnvOwner    = "GITHUB_OWNER"
	EnvRepo     = "GITHUB_REPO"
	EnvToken    = "GITHUB_TOKEN"
	EnvDisabled = "DISABLE_GIT_METADATA"
)

// Config locates the repository and controls fetching.
type Config struct {
	Owner     string
	Repo      string
	Token     string // optional; raises the limit from 60 to 5000 requests/hour
	PostsDir  string // repository path of the posts directory
	UserAgent string
	Disabled  bool
	Timeout   time.Duration

	// BaseURL overrides the API endpoint, e.g. for GitHub Enterprise.
	BaseURL string
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Owner:     DefaultOwner,
		Repo:      DefaultRepo,
		PostsDir:  DefaultPostsDir,
		UserAgent: DefaultUserAgent,
		Timeout:   DefaultTimeout,
	}
}

// ConfigFromEnv overlays the GITHUB_* variables and DISABLE_GIT_METADATA on
// base. A nil getenv reads the process environment.
func ConfigFromEnv(base Config, getenv func(string) string) Config {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := strings.TrimSpace(getenv(EnvOwner)); v != "" {
		base.Owner = v
	}
	if v := strings.TrimSpace(getenv(EnvRepo)); v != "" {
		base.Repo = v
	}
	if v := strings.TrimSpace(getenv(EnvToken)); v != "" {
		base.Token = v
	}
	if getenv(EnvDisabled) == "true" {
		base.Disabled = true
	}
	return base
}

// PostPath returns the repository path of a post's markdown file.
func (c Config) PostPath(slug string) string {
	slug = strings.TrimSuffix(slug, ".md")
	dir := strings.Trim(c.PostsDir, "/")
	if dir == "" {
		return slug + ".md"
	}
	return dir + "/" + slug + ".md"
}
