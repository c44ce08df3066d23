package main

import (
	"context"

	mdsite "github.com/alnah/go-mdsite"
)

// runFeed writes the RSS and Atom feeds without building pages. By default
// the feeds go into the public directory so a separately deployed site
// serves them as static files.
func runFeed(ctx context.Context, args []string, env *Environment) error {
	flags, _, err := parseFeedFlags(args, env.Stderr)
	if err != nil {
		return flagError(err)
	}

	cfg, err := loadConfig(flags.common.config, env)
	if err != nil {
		return err
	}
	mergeContentFlags(flags.content, cfg)
	if flags.limit >= 0 {
		cfg.Feed.Limit = flags.limit
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(env.Stderr, flags.common.verbose, flags.common.quiet)
	printer := NewPrinter(env.Stdout, env.Stderr, resolveColor(flags.common.color, env.Stdout), flags.common.quiet)

	b := &builder{
		cfg:     cfg,
		hidden:  flags.content.hidden,
		logger:  logger,
		printer: printer,
		now:     env.Now,
	}
	site, err := b.newSite()
	if err != nil {
		return err
	}
	posts, err := b.loadPosts()
	if err != nil {
		return err
	}

	dir := flags.output
	if dir == "" {
		dir = cfg.Content.PublicDir
	}
	written, err := site.WriteFeeds(ctx, dir, posts, mdsite.FeedOptions{Limit: cfg.Feed.Limit, Now: env.Now()})
	if err != nil {
		return err
	}
	for _, path := range written {
		printer.Created(path)
	}
	logger.Debug("feeds written", "posts", len(posts), "dir", dir)
	return nil
}
