package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	flag "github.com/spf13/pflag"

	mdsite "github.com/alnah/go-mdsite"
	"github.com/alnah/go-mdsite/internal/assets"
	"github.com/alnah/go-mdsite/internal/config"
	"github.com/alnah/go-mdsite/internal/gitmeta"
	"github.com/alnah/go-mdsite/internal/hints"
)

// Sentinel errors for CLI operations.
var (
	ErrUsage              = errors.New("invalid usage")
	ErrUnknownCommand     = errors.New("unknown command")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrPostsFailed        = errors.New("posts failed to render")
)

// builder holds the resolved configuration of a build and the state kept
// between rebuilds in watch mode.
type builder struct {
	cfg      *config.Config
	hidden   bool
	workers  int
	logger   *slog.Logger
	printer  *Printer
	git      *gitmeta.Client
	now      func() time.Time
	newBuild func() string
}

// buildSummary describes one completed build.
type buildSummary struct {
	ID       string
	Posts    int
	Failed   int
	Files    int
	Public   int
	Duration time.Duration
}

// runBuild builds the site once.
func runBuild(ctx context.Context, args []string, env *Environment) error {
	flags, _, err := parseBuildFlags(args, env.Stderr)
	if err != nil {
		return flagError(err)
	}

	b, err := newBuilder(ctx, flags, env)
	if err != nil {
		return err
	}

	_, err = b.build(ctx)
	return err
}

// flagError wraps a flag parsing failure. Help requests pass through.
func flagError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUsage, err)
}

// loadConfig reads the config file named by the flag or MDSITE_CONFIG and
// applies the environment. Without a file the built-in defaults are used.
func loadConfig(flagPath string, env *Environment) (*config.Config, error) {
	envCfg := loadEnvConfig(env.Getenv)
	warnUnknownEnvVars(env.Stderr, env.Environ())

	path := flagPath
	if path == "" {
		path = envCfg.ConfigPath
	}

	cfg := config.DefaultConfig()
	if path != "" {
		var err error
		cfg, err = config.LoadConfig(path)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) {
				return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(userConfigPaths()))
			}
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}

	applyEnvConfig(envCfg, cfg)
	return cfg, nil
}

// userConfigPaths returns the per-user config location suggested in hints.
func userConfigPaths() []string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil
	}
	return []string{filepath.Join(dir, "mdsite", "site.yaml")}
}

// mergeContentFlags merges content flags into config. CLI values override config values.
func mergeContentFlags(f contentFlags, cfg *config.Config) {
	if f.posts != "" {
		cfg.Content.PostsDir = f.posts
	}
	if f.public != "" {
		cfg.Content.PublicDir = f.public
	}
}

// mergeBuildFlags merges build flags into config. CLI values override config values.
func mergeBuildFlags(f *buildFlags, cfg *config.Config) {
	mergeContentFlags(f.content, cfg)
	if f.output != "" {
		cfg.Output.Dir = f.output
	}
	if f.workers > 0 {
		cfg.Build.Workers = f.workers
	}
	if f.noGit {
		cfg.Git.Enabled = false
	}
	if f.noFeed {
		cfg.Feed.Enabled = false
	}
	if f.assets.assetPath != "" {
		cfg.Assets.BasePath = f.assets.assetPath
	}
	if f.assets.template != "" {
		cfg.Assets.Template = f.assets.template
	}
}

// validateWorkers checks that the worker count is within the allowed range.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: must be non-negative, got %d", ErrInvalidWorkerCount, n)
	}
	if n > config.MaxWorkers {
		return fmt.Errorf("%w: maximum is %d, got %d", ErrInvalidWorkerCount, config.MaxWorkers, n)
	}
	return nil
}

// newBuilder resolves flags, environment and config file into a builder.
func newBuilder(ctx context.Context, flags *buildFlags, env *Environment) (*builder, error) {
	if err := validateWorkers(flags.workers); err != nil {
		return nil, err
	}

	cfg, err := loadConfig(flags.common.config, env)
	if err != nil {
		return nil, err
	}
	mergeBuildFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := newLogger(env.Stderr, flags.common.verbose, flags.common.quiet)
	printer := NewPrinter(env.Stdout, env.Stderr, resolveColor(flags.common.color, env.Stdout), flags.common.quiet)

	git, err := newGitClient(ctx, cfg, env.Getenv, logger)
	if err != nil {
		return nil, err
	}

	return &builder{
		cfg:      cfg,
		hidden:   flags.content.hidden,
		workers:  resolvePoolSize(cfg.Build.Workers),
		logger:   logger,
		printer:  printer,
		git:      git,
		now:      env.Now,
		newBuild: env.BuildID,
	}, nil
}

// newGitClient returns a commit history client, or nil when git metadata
// is disabled by config, flag or DISABLE_GIT_METADATA.
func newGitClient(ctx context.Context, cfg *config.Config, getenv func(string) string, logger *slog.Logger) (*gitmeta.Client, error) {
	gitCfg := gitmeta.DefaultConfig()
	gitCfg.Owner = cfg.Git.Owner
	gitCfg.Repo = cfg.Git.Repo
	if cfg.Git.PostsDir != "" {
		gitCfg.PostsDir = cfg.Git.PostsDir
	}
	gitCfg = gitmeta.ConfigFromEnv(gitCfg, getenv)
	if !cfg.Git.Enabled || gitCfg.Disabled {
		logger.Debug("git metadata disabled")
		return nil, nil
	}

	client, err := gitmeta.NewClient(ctx, gitCfg, gitmeta.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	logger.Debug("git metadata enabled", "owner", gitCfg.Owner, "repo", gitCfg.Repo, "authenticated", gitCfg.Token != "")
	return client, nil
}

// siteInfo converts the site section of the config.
func siteInfo(cfg *config.Config) mdsite.SiteInfo {
	return mdsite.SiteInfo{
		URL:         cfg.Site.URL,
		Title:       cfg.Site.Title,
		Description: cfg.Site.Description,
		Language:    cfg.Site.Language,
		Author:      cfg.Site.Author,
		Email:       cfg.Site.Email,
	}
}

// siteOptions translates the config into site options.
func siteOptions(cfg *config.Config, logger *slog.Logger, git *gitmeta.Client, now func() time.Time) []mdsite.Option {
	opts := []mdsite.Option{
		mdsite.WithLogger(logger),
		mdsite.WithNow(now),
		mdsite.WithPublicDir(cfg.Content.PublicDir),
		mdsite.WithAnnotations(cfg.Content.Annotations),
		mdsite.WithDateFormat(cfg.Site.DateFormat),
		mdsite.WithAssetPath(cfg.Assets.BasePath),
		mdsite.WithTemplateSet(cfg.Assets.Template),
		mdsite.WithFeedFiles(mdsite.FeedFiles{RSS: cfg.Feed.RSSFile, Atom: cfg.Feed.AtomFile}),
	}

	if cfg.TOC.Enabled {
		opts = append(opts, mdsite.WithTOC(&mdsite.TOC{
			Title:    cfg.TOC.Title,
			MinDepth: cfg.TOC.MinDepth,
			MaxDepth: cfg.TOC.MaxDepth,
			Numbered: cfg.TOC.Numbered,
		}))
	} else {
		opts = append(opts, mdsite.WithTOC(nil))
	}

	if git != nil {
		opts = append(opts, mdsite.WithGitClient(git))
	}
	return opts
}

// newSite creates the site renderer. Templates and styles are reloaded on
// every call so watch mode picks up asset changes.
func (b *builder) newSite() (*mdsite.Site, error) {
	site, err := mdsite.NewSite(siteInfo(b.cfg), siteOptions(b.cfg, b.logger, b.git, b.now)...)
	if err != nil {
		if errors.Is(err, assets.ErrTemplateSetNotFound) {
			return nil, fmt.Errorf("%w%s", err, hints.ForTemplateNotFound([]string{assets.DefaultTemplateSetName}))
		}
		return nil, err
	}
	return site, nil
}

// loadPosts reads every post of the configured directory.
func (b *builder) loadPosts() ([]*mdsite.Post, error) {
	posts, err := mdsite.LoadPosts(b.cfg.Content.PostsDir, mdsite.LoadOptions{
		Include: b.cfg.Content.Include,
		Exclude: b.cfg.Content.Exclude,
		Hidden:  b.hidden,
	})
	if err != nil {
		if errors.Is(err, mdsite.ErrPostsDirectory) {
			return nil, fmt.Errorf("%w%s", err, hints.ForPostsDirectory(b.cfg.Content.PostsDir))
		}
		return nil, err
	}
	return posts, nil
}

// build renders the whole site into the output directory. Static files are
// copied first so generated files win on conflicts. A post that fails to
// render is reported and the rest of the site is still written.
func (b *builder) build(ctx context.Context) (*buildSummary, error) {
	start := time.Now()
	summary := &buildSummary{ID: b.newBuild()}
	logger := b.logger.With("build", summary.ID)
	outDir := b.cfg.Output.Dir

	site, err := b.newSite()
	if err != nil {
		return nil, err
	}

	posts, err := b.loadPosts()
	if err != nil {
		return nil, err
	}
	summary.Posts = len(posts)
	if len(posts) == 0 {
		b.printer.Warn("no posts found in %s", b.cfg.Content.PostsDir)
	}
	logger.Debug("posts loaded", "count", len(posts), "workers", b.workers)

	summary.Public, err = mdsite.CopyPublic(ctx, b.cfg.Content.PublicDir, outDir)
	if err != nil {
		return nil, fmt.Errorf("%w%s", err, hints.ForOutputDirectory())
	}
	logger.Debug("public files copied", "count", summary.Public)

	results := writePosts(ctx, site, b.workers, outDir, posts)
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
			b.printer.Error(fmt.Errorf("%s: %w", r.Slug, r.Err))
			continue
		}
		summary.Files++
		logger.Debug("post written", "slug", r.Slug, "duration", r.Duration.Round(time.Millisecond))
		b.printer.Created(r.OutputPath)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var written []string
	steps := []func() ([]string, error){
		func() ([]string, error) { return site.WriteIndexes(outDir, posts) },
		func() ([]string, error) { return site.WriteAssets(outDir) },
		func() ([]string, error) { return site.WriteSitemap(outDir, posts) },
	}
	if b.cfg.Feed.Enabled {
		steps = append(steps, func() ([]string, error) {
			return site.WriteFeeds(ctx, outDir, posts, mdsite.FeedOptions{Limit: b.cfg.Feed.Limit, Now: b.now()})
		})
	}
	for _, step := range steps {
		paths, err := step()
		written = append(written, paths...)
		if err != nil {
			return nil, err
		}
	}
	for _, path := range written {
		b.printer.Created(path)
	}
	summary.Files += len(written)
	summary.Duration = time.Since(start)

	logger.Info("site built",
		"posts", summary.Posts,
		"failed", summary.Failed,
		"files", summary.Files,
		"public", summary.Public,
		"duration", summary.Duration.Round(time.Millisecond),
	)
	b.printer.Summary("\n%d posts, %d files written to %s", summary.Posts-summary.Failed, summary.Files, outDir)

	if summary.Failed > 0 {
		return summary, fmt.Errorf("%w: %d of %d", ErrPostsFailed, summary.Failed, summary.Posts)
	}
	return summary, nil
}
