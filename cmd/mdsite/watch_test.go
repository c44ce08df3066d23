package main

// Notes:
// - ignoreEvent: attribute-only changes, hidden files, editor backups.
// - watchLoop: driven through fake channels; a burst of events yields a
//   single rebuild once the debounce period passes.
// - addRecursive: uses a real fsnotify watcher on a temp tree.

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ---------------------------------------------------------------------------
// TestIgnoreEvent - Event filtering
// ---------------------------------------------------------------------------

func TestIgnoreEvent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ev   fsnotify.Event
		want bool
	}{
		{"write post", fsnotify.Event{Name: "_posts/fees.md", Op: fsnotify.Write}, false},
		{"create file", fsnotify.Event{Name: "public/data/fees.json", Op: fsnotify.Create}, false},
		{"remove", fsnotify.Event{Name: "_posts/old.md", Op: fsnotify.Remove}, false},
		{"chmod only", fsnotify.Event{Name: "_posts/fees.md", Op: fsnotify.Chmod}, true},
		{"write with chmod", fsnotify.Event{Name: "_posts/fees.md", Op: fsnotify.Write | fsnotify.Chmod}, false},
		{"hidden file", fsnotify.Event{Name: "_posts/.DS_Store", Op: fsnotify.Create}, true},
		{"vim swap", fsnotify.Event{Name: "_posts/fees.md.swp", Op: fsnotify.Write}, true},
		{"backup", fsnotify.Event{Name: "_posts/fees.md~", Op: fsnotify.Create}, true},
		{"temp file", fsnotify.Event{Name: "_posts/fees.tmp", Op: fsnotify.Write}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ignoreEvent(tt.ev); got != tt.want {
				t.Errorf("ignoreEvent(%v) = %v, want %v", tt.ev, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestWatchLoop - Debounced rebuilds
// ---------------------------------------------------------------------------

func TestWatchLoop(t *testing.T) {
	t.Parallel()

	t.Run("burst triggers one rebuild", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		events := make(chan fsnotify.Event)
		errs := make(chan error)
		var rebuilds, observed atomic.Int32
		rebuilt := make(chan struct{}, 4)

		done := make(chan error, 1)
		go func() {
			done <- watchLoop(ctx, events, errs, 50*time.Millisecond, discardLogger(),
				func(fsnotify.Event) { observed.Add(1) },
				func() {
					rebuilds.Add(1)
					rebuilt <- struct{}{}
				})
		}()

		for _, name := range []string{"a.md", "b.md", ".hidden", "c.md"} {
			events <- fsnotify.Event{Name: name, Op: fsnotify.Write}
		}

		select {
		case <-rebuilt:
		case <-time.After(2 * time.Second):
			t.Fatal("rebuild was not triggered")
		}
		time.Sleep(100 * time.Millisecond)

		if got := rebuilds.Load(); got != 1 {
			t.Errorf("rebuilds = %d, want 1", got)
		}
		if got := observed.Load(); got != 3 {
			t.Errorf("observed = %d, want 3 (hidden file ignored)", got)
		}

		cancel()
		if err := <-done; err != nil {
			t.Errorf("watchLoop() error = %v", err)
		}
	})

	t.Run("overflow triggers rebuild", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		errs := make(chan error, 1)
		rebuilt := make(chan struct{}, 1)
		errs <- fsnotify.ErrEventOverflow

		go func() {
			_ = watchLoop(ctx, make(chan fsnotify.Event), errs, 10*time.Millisecond, discardLogger(),
				func(fsnotify.Event) {}, func() { rebuilt <- struct{}{} })
		}()

		select {
		case <-rebuilt:
		case <-time.After(2 * time.Second):
			t.Fatal("overflow did not trigger a rebuild")
		}
	})

	t.Run("closed events channel returns", func(t *testing.T) {
		t.Parallel()

		events := make(chan fsnotify.Event)
		close(events)

		err := watchLoop(context.Background(), events, make(chan error), time.Second, discardLogger(),
			func(fsnotify.Event) {}, func() { t.Error("unexpected rebuild") })
		if err != nil {
			t.Errorf("watchLoop() error = %v", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestAddRecursive - Directory registration
// ---------------------------------------------------------------------------

func TestAddRecursive(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, dir := range []string{"2024/drafts", ".git/objects", "data"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o750); err != nil {
			t.Fatalf("setup: %v", err)
		}
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer func() { _ = w.Close() }()

	if err := addRecursive(w, root); err != nil {
		t.Fatalf("addRecursive() error = %v", err)
	}

	list := w.WatchList()
	for _, want := range []string{root, filepath.Join(root, "2024"), filepath.Join(root, "2024", "drafts"), filepath.Join(root, "data")} {
		if !slices.Contains(list, want) {
			t.Errorf("WatchList() missing %q: %v", want, list)
		}
	}
	for _, path := range list {
		if filepath.Base(path) == ".git" || filepath.Base(path) == "objects" {
			t.Errorf("hidden directory %q should not be watched", path)
		}
	}
}

func TestAddRecursive_MissingDir(t *testing.T) {
	t.Parallel()

	w, err := fsnotify.NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer func() { _ = w.Close() }()

	if err := addRecursive(w, filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("addRecursive() error = nil, want error for missing dir")
	}
}
