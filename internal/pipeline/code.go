package pipeline

import (
	"regexp"
	"strings"
)

// fencePattern matches the opening or closing line of a fenced code block.
// Leading blockquote markers are allowed so fences inside quotes are still
// recognized.
var fencePattern = regexp.MustCompile("^[ \t]{0,3}(?:(?:>[ \t]?)+[ \t]{0,3})?(`{3,}|~{3,})")

// fenceTracker follows fenced code blocks line by line.
type fenceTracker struct {
	marker string
}

// step reports whether line belongs to a fenced code block, including the
// opening and closing fence lines.
func (f *fenceTracker) step(line string) bool {
	m := fencePattern.FindStringSubmatch(line)
	if f.marker == "" {
		if m == nil {
			return false
		}
		f.marker = m[1]
		return true
	}

	if m != nil && m[1][0] == f.marker[0] && len(m[1]) >= len(f.marker) &&
		strings.TrimSpace(line[len(m[0]):]) == "" {
		f.marker = ""
	}
	return true
}

// codeRanges returns the byte ranges of content covered by fenced code blocks
// and inline code spans. Extensions never rewrite text inside these ranges.
func codeRanges(content string) [][2]int {
	var ranges [][2]int
	var fence fenceTracker

	textStart := -1
	offset := 0
	flushText := func(end int) {
		if textStart >= 0 {
			ranges = append(ranges, inlineCodeRanges(content, textStart, end)...)
			textStart = -1
		}
	}

	for _, line := range strings.SplitAfter(content, "\n") {
		if line == "" {
			continue
		}
		end := offset + len(line)
		if fence.step(strings.TrimRight(line, "\n")) {
			flushText(offset)
			ranges = append(ranges, [2]int{offset, end})
		} else if textStart < 0 {
			textStart = offset
		}
		offset = end
	}
	flushText(offset)

	return ranges
}

// inlineCodeRanges scans content[start:end] for backtick code spans.
// A span opens with a run of N backticks and closes with the next run of
// exactly N backticks.
func inlineCodeRanges(content string, start, end int) [][2]int {
	var ranges [][2]int
	i := start
	for i < end {
		switch content[i] {
		case '\\':
			i += 2
			continue
		case '`':
		default:
			i++
			continue
		}

		n := runLength(content, i, end, '`')
		closeAt := findBacktickRun(content, i+n, end, n)
		if closeAt < 0 {
			i += n
			continue
		}
		ranges = append(ranges, [2]int{i, closeAt + n})
		i = closeAt + n
	}
	return ranges
}

// runLength counts consecutive occurrences of c starting at i.
func runLength(s string, i, end int, c byte) int {
	n := 0
	for i+n < end && s[i+n] == c {
		n++
	}
	return n
}

// findBacktickRun returns the index of the next run of exactly n backticks.
func findBacktickRun(s string, from, end, n int) int {
	for j := from; j < end; {
		if s[j] != '`' {
			j++
			continue
		}
		run := runLength(s, j, end, '`')
		if run == n {
			return j
		}
		j += run
	}
	return -1
}

// overlapsAny reports whether [start, end) intersects any range.
func overlapsAny(ranges [][2]int, start, end int) bool {
	for _, r := range ranges {
		if start < r[1] && end > r[0] {
			return true
		}
	}
	return false
}

// replaceOutsideCode replaces every match of re that does not touch a code
// block or code span. repl receives the full match followed by its groups.
func replaceOutsideCode(content string, re *regexp.Regexp, repl func(groups []string) string) string {
	matches := re.FindAllStringSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return content
	}

	ranges := codeRanges(content)
	var b strings.Builder
	b.Grow(len(content))
	last := 0

	for _, loc := range matches {
		if overlapsAny(ranges, loc[0], loc[1]) {
			continue
		}
		b.WriteString(content[last:loc[0]])
		b.WriteString(repl(submatches(content, loc)))
		last = loc[1]
	}
	b.WriteString(content[last:])

	return b.String()
}

// findOutsideCode returns every match of re that does not touch code.
func findOutsideCode(content string, re *regexp.Regexp) [][]string {
	matches := re.FindAllStringSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return nil
	}

	ranges := codeRanges(content)
	found := make([][]string, 0, len(matches))
	for _, loc := range matches {
		if overlapsAny(ranges, loc[0], loc[1]) {
			continue
		}
		found = append(found, submatches(content, loc))
	}
	return found
}

func submatches(content string, loc []int) []string {
	groups := make([]string, len(loc)/2)
	for i := range groups {
		if loc[2*i] >= 0 {
			groups[i] = content[loc[2*i]:loc[2*i+1]]
		}
	}
	return groups
}
