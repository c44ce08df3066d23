// Package gitmeta derives per-post publication history from the GitHub
// commits API.
//
// For a post file it lists every commit touching the path and reports when
// the post was first published, when it was last updated, how many updates
// it received, and the last commit's subject and short SHA.
//
// Failures never fail a build: ForPost logs a warning and returns nil, and
// pages fall back to the frontmatter date.
//
// Requests are throttled proactively with a token bucket and reactively
// from the X-RateLimit-* response headers.
package gitmeta
