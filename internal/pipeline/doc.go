// Package pipeline implements the markdown extension pipeline shared by the
// page renderer and the feed generator.
//
// A document goes through three stages:
//   - Preprocessing rewrites the custom syntax (figures, table captions,
//     cross-references, plot/alert/collapse directives, annotations,
//     colors, superscript, math, highlights) into CommonMark plus
//     fragment placeholders
//   - Goldmark converts the result to an HTML fragment
//   - Finishing restores the placeholders
//
// Each extension has two renderings selected by Profile: rich HTML for site
// pages and plain markdown for feed readers.
//
// Fenced code blocks and inline code spans are never rewritten.
package pipeline
