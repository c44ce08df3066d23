package main

import (
	"context"
	"runtime"
	"sync"
	"time"

	mdsite "github.com/alnah/go-mdsite"
)

// PostWriter renders and writes one post page.
type PostWriter interface {
	WritePost(ctx context.Context, outDir string, post *mdsite.Post) (string, error)
}

// Compile-time interface implementation check.
var _ PostWriter = (*mdsite.Site)(nil)

// PostResult holds the outcome of a single post.
type PostResult struct {
	Slug       string
	OutputPath string
	Err        error
	Duration   time.Duration
}

// writePosts renders posts concurrently with at most workers goroutines.
// Results keep the order of posts.
func writePosts(ctx context.Context, w PostWriter, workers int, outDir string, posts []*mdsite.Post) []PostResult {
	if len(posts) == 0 {
		return nil
	}

	concurrency := min(max(workers, 1), len(posts))

	results := make([]PostResult, len(posts))
	var wg sync.WaitGroup
	jobs := make(chan int, len(posts))

	for range concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				post := posts[idx]
				if err := ctx.Err(); err != nil {
					results[idx] = PostResult{Slug: post.Slug, Err: err}
					continue
				}
				start := time.Now()
				path, err := w.WritePost(ctx, outDir, post)
				results[idx] = PostResult{
					Slug:       post.Slug,
					OutputPath: path,
					Err:        err,
					Duration:   time.Since(start),
				}
			}
		}()
	}

	for i := range posts {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// resolvePoolSize determines the number of render workers.
// Priority: explicit value > GOMAXPROCS-based calculation.
func resolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS is adjusted by automaxprocs for containers.
	n := runtime.GOMAXPROCS(0)
	if n < 1 {
		return 1
	}
	if n > 8 {
		return 8
	}
	return n
}
