package pipeline

import (
	"fmt"
	"html"
	"strconv"
	"strings"
)

// MinTOCHeadings is the number of headings a page needs before it gets a
// table of contents.
const MinTOCHeadings = 2

// TOCOptions configures table of contents rendering.
type TOCOptions struct {
	Title    string
	MinDepth int  // Minimum heading level (0 means 2, skips H1)
	MaxDepth int  // Maximum heading level (0 means 3)
	Numbered bool // Prefix entries with "1.2." style numbers
}

// numberingState tracks hierarchical numbering for TOC entries.
// Supports normalization (first heading becomes level 1) and gap skipping.
type numberingState struct {
	counters     [6]int // counters[0] = level 1 count, etc.
	minLevelSeen int    // for normalization (0 = not set)
	lastLevel    int    // for tracking parent relationships
}

// next returns the number string and effective depth for the given heading level.
func (n *numberingState) next(level int) (numStr string, effectiveDepth int) {
	if n.minLevelSeen == 0 {
		n.minLevelSeen = level
	}

	effectiveDepth = level - n.minLevelSeen + 1
	if effectiveDepth < 1 {
		effectiveDepth = 1
	}

	// H2 -> H4 becomes depth 1 -> depth 2 (not depth 3)
	if n.lastLevel > 0 && effectiveDepth > n.lastLevel+1 {
		effectiveDepth = n.lastLevel + 1
	}

	for i := effectiveDepth; i < 6; i++ {
		n.counters[i] = 0
	}
	n.counters[effectiveDepth-1]++
	n.lastLevel = effectiveDepth

	parts := make([]string, 0, effectiveDepth)
	for i := 0; i < effectiveDepth; i++ {
		parts = append(parts, strconv.Itoa(n.counters[i]))
	}
	return strings.Join(parts, ".") + ".", effectiveDepth
}

// RenderTOC returns the table of contents for headings, or "" when fewer
// than MinTOCHeadings fall inside the configured depth range.
func RenderTOC(headings []Heading, opts TOCOptions) string {
	minDepth, maxDepth := opts.MinDepth, opts.MaxDepth
	if minDepth == 0 {
		minDepth = 2
	}
	if maxDepth == 0 {
		maxDepth = 3
	}

	var selected []Heading
	for _, h := range headings {
		if h.Level >= minDepth && h.Level <= maxDepth && h.ID != "" {
			selected = append(selected, h)
		}
	}
	if len(selected) < MinTOCHeadings {
		return ""
	}

	var buf strings.Builder
	buf.WriteString(`<nav class="toc" aria-label="Table of contents">`)

	if opts.Title != "" {
		buf.WriteString(`<h2 class="toc-title">`)
		buf.WriteString(html.EscapeString(opts.Title))
		buf.WriteString(`</h2>`)
	}

	buf.WriteString(`<div class="toc-list">`)

	numbering := &numberingState{}
	for _, h := range selected {
		num, depth := numbering.next(h.Level)

		buf.WriteString(fmt.Sprintf(`<div class="toc-item toc-depth-%d"><a href="#`, depth))
		buf.WriteString(html.EscapeString(h.ID))
		buf.WriteString(`">`)
		if opts.Numbered {
			buf.WriteString(num + " ")
		}
		buf.WriteString(html.EscapeString(h.Text))
		buf.WriteString(`</a></div>`)
	}

	buf.WriteString(`</div></nav>`)
	return buf.String()
}
