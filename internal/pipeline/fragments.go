package pipeline

import (
	"regexp"
	"strconv"
	"strings"
)

// Fragment tokens carry pre-rendered HTML through Goldmark. A token is the
// fragment index wrapped in two Private Use Area characters, so Goldmark
// treats it as plain text and never needs WithUnsafe.
const (
	fragmentStart = "\uE002" // U+E002: fragment token start
	fragmentEnd   = "\uE003" // U+E003: fragment token end
)

// maxFragmentDepth bounds recursive restoration of fragments that embed tokens.
const maxFragmentDepth = 8

var (
	fragmentToken = regexp.MustCompile(fragmentStart + `(\d+)` + fragmentEnd)

	// A block fragment alone in its paragraph replaces the whole paragraph.
	blockFragmentToken = regexp.MustCompile(`<p>` + fragmentStart + `(\d+)` + fragmentEnd + `</p>\n?`)
)

type fragment struct {
	html  string
	block bool
}

// fragments stores HTML produced during preprocessing.
type fragments struct {
	items []fragment
}

// inline stores html and returns the token that stands in for it.
func (f *fragments) inline(html string) string {
	f.items = append(f.items, fragment{html: html})
	return fragmentStart + strconv.Itoa(len(f.items)-1) + fragmentEnd
}

// block stores block-level html and returns its token on a line of its own.
func (f *fragments) block(html string) string {
	f.items = append(f.items, fragment{html: html, block: true})
	return "\n\n" + fragmentStart + strconv.Itoa(len(f.items)-1) + fragmentEnd + "\n\n"
}

// restore replaces every token in htmlContent with its stored HTML.
func (f *fragments) restore(htmlContent string) string {
	return f.restoreDepth(htmlContent, 0)
}

func (f *fragments) restoreDepth(htmlContent string, depth int) string {
	if depth > maxFragmentDepth || !strings.Contains(htmlContent, fragmentStart) {
		return htmlContent
	}

	htmlContent = blockFragmentToken.ReplaceAllStringFunc(htmlContent, func(m string) string {
		item, ok := f.lookup(blockFragmentToken.FindStringSubmatch(m)[1])
		if !ok {
			return m
		}
		restored := f.restoreDepth(item.html, depth+1)
		if !item.block && !strings.HasPrefix(restored, "<div") {
			return "<p>" + restored + "</p>\n"
		}
		return restored + "\n"
	})

	return fragmentToken.ReplaceAllStringFunc(htmlContent, func(m string) string {
		item, ok := f.lookup(fragmentToken.FindStringSubmatch(m)[1])
		if !ok {
			return m
		}
		return f.restoreDepth(item.html, depth+1)
	})
}

func (f *fragments) lookup(index string) (fragment, bool) {
	i, err := strconv.Atoi(index)
	if err != nil || i < 0 || i >= len(f.items) {
		return fragment{}, false
	}
	return f.items[i], true
}
