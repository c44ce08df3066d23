package pipeline

import (
	"html"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
)

var htmlTag = regexp.MustCompile(`<[^>]*>`)

// headingIDs generates goldmark heading ids from the visible heading text.
// Raw heading lines still hold fragment tokens at parse time; text maps them
// back to what the reader sees before slugging.
type headingIDs struct {
	text   func(string) string
	values map[string]bool
}

var _ parser.IDs = (*headingIDs)(nil)

func newHeadingIDs(text func(string) string) *headingIDs {
	return &headingIDs{text: text, values: make(map[string]bool)}
}

// Generate slugs value the way goldmark does: ASCII alphanumerics are kept
// lowercased, spaces, hyphens and underscores become hyphens, everything
// else is dropped. Duplicates get a -N suffix.
func (ids *headingIDs) Generate(value []byte, kind ast.NodeKind) []byte {
	raw := string(value)
	if ids.text != nil {
		raw = ids.text(raw)
	}
	raw = fragmentToken.ReplaceAllString(raw, "")

	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case r >= utf8.RuneSelf:
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + 'a' - 'A')
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-', r == '_', strings.ContainsRune(" \t\n\r\f\v", r):
			b.WriteByte('-')
		}
	}

	id := b.String()
	if id == "" {
		id = "id"
		if kind == ast.KindHeading {
			id = "heading"
		}
	}
	if !ids.values[id] {
		ids.values[id] = true
		return []byte(id)
	}
	for i := 1; ; i++ {
		candidate := id + "-" + strconv.Itoa(i)
		if !ids.values[candidate] {
			ids.values[candidate] = true
			return []byte(candidate)
		}
	}
}

// Put reserves an explicit id.
func (ids *headingIDs) Put(value []byte) {
	ids.values[string(value)] = true
}

// HeadingText returns the visible text of a raw heading line, with fragment
// tokens replaced by the text of the markup they stand for.
func (p *Prepared) HeadingText(raw string) string {
	if p.frags == nil || !strings.Contains(raw, fragmentStart) {
		return raw
	}
	return html.UnescapeString(htmlTag.ReplaceAllString(p.frags.restore(raw), ""))
}
