package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// runWatch builds the site, then rebuilds whenever posts, static files or
// custom assets change. Build errors are reported and watching continues.
func runWatch(ctx context.Context, args []string, env *Environment) error {
	flags, _, err := parseWatchFlags(args, env.Stderr)
	if err != nil {
		return flagError(err)
	}
	if flags.debounce <= 0 {
		return fmt.Errorf("%w: --debounce must be positive, got %v", ErrUsage, flags.debounce)
	}

	b, err := newBuilder(ctx, flags, env)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	for _, dir := range b.watchDirs() {
		if err := addRecursive(watcher, dir); err != nil {
			return err
		}
	}

	rebuild := func() {
		if _, err := b.build(ctx); err != nil && ctx.Err() == nil {
			b.printer.Error(err)
		}
	}

	rebuild()
	b.logger.Info("watching for changes", "dirs", b.watchDirs(), "debounce", flags.debounce)

	return watchLoop(ctx, watcher.Events, watcher.Errors, flags.debounce, b.logger, func(ev fsnotify.Event) {
		if ev.Has(fsnotify.Create) {
			if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
				if err := addRecursive(watcher, ev.Name); err != nil {
					b.logger.Warn("watching new directory failed", "path", ev.Name, "error", err)
				}
			}
		}
	}, rebuild)
}

// watchDirs lists the existing directories whose changes trigger a rebuild.
func (b *builder) watchDirs() []string {
	var dirs []string
	for _, dir := range []string{b.cfg.Content.PostsDir, b.cfg.Content.PublicDir, b.cfg.Assets.BasePath} {
		if dir == "" {
			continue
		}
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// addRecursive watches dir and every directory below it, skipping hidden
// directories.
func addRecursive(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

// ignoreEvent reports whether an event cannot change the built site:
// attribute-only changes, hidden files and editor backups.
func ignoreEvent(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return true
	}
	name := filepath.Base(ev.Name)
	return strings.HasPrefix(name, ".") ||
		strings.HasSuffix(name, "~") ||
		strings.HasSuffix(name, ".swp") ||
		strings.HasSuffix(name, ".tmp")
}

// watchLoop calls rebuild once events have been quiet for debounce. Each
// relevant event is passed to observe first. It returns when ctx is done
// or the event channel closes.
func watchLoop(
	ctx context.Context,
	events <-chan fsnotify.Event,
	errs <-chan error,
	debounce time.Duration,
	logger *slog.Logger,
	observe func(fsnotify.Event),
	rebuild func(),
) error {
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if ignoreEvent(ev) {
				continue
			}
			logger.Debug("change detected", "path", ev.Name, "op", ev.Op.String())
			observe(ev)
			timer.Reset(debounce)

		case err, ok := <-errs:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				logger.Warn("watcher overflow, rebuilding")
				timer.Reset(debounce)
				continue
			}
			logger.Error("watcher error", "error", err)

		case <-timer.C:
			rebuild()
		}
	}
}
