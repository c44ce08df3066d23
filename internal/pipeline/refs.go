package pipeline

import (
	"regexp"
	"strings"
)

var (
	// ![caption](src){#fig:id} alone on a line
	figureLinePattern = regexp.MustCompile(`^[ \t]*!\[([^\]]*)\]\(([^)\s]+)(?:[ \t]+"[^"]*")?\)[ \t]*\{#fig:([^}\s]+)\}[ \t]*$`)

	// Caption text {#fig:id} following a plot block
	plotCaptionPattern = regexp.MustCompile(`^[ \t]*(.*?)[ \t]*\{#fig:([^}\s]+)\}[ \t]*$`)

	// {#tab:id} anywhere outside code
	tableDefPattern = regexp.MustCompile(`\{#tab:([^}\s]+)\}`)
)

// RefIndex numbers figures and tables in order of first definition.
// Figures come from captioned images and captioned plot blocks and share
// one counter.
type RefIndex struct {
	Figures map[string]int
	Tables  map[string]int
}

// Figure returns the number assigned to a figure id.
func (r *RefIndex) Figure(id string) (int, bool) {
	n, ok := r.Figures[id]
	return n, ok
}

// Table returns the number assigned to a table id.
func (r *RefIndex) Table(id string) (int, bool) {
	n, ok := r.Tables[id]
	return n, ok
}

func (r *RefIndex) addFigure(id string) {
	if _, ok := r.Figures[id]; !ok {
		r.Figures[id] = len(r.Figures) + 1
	}
}

func (r *RefIndex) addTable(id string) {
	if _, ok := r.Tables[id]; !ok {
		r.Tables[id] = len(r.Tables) + 1
	}
}

// BuildRefIndex scans markdown once and numbers every figure and table
// definition. Definitions inside code blocks are ignored.
func BuildRefIndex(content string) *RefIndex {
	idx := &RefIndex{
		Figures: make(map[string]int),
		Tables:  make(map[string]int),
	}

	lines := strings.Split(normalizeLineEndings(content), "\n")
	var fence fenceTracker

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if fence.step(line) {
			continue
		}

		if m := figureLinePattern.FindStringSubmatch(line); m != nil {
			idx.addFigure(m[3])
			continue
		}

		if d, ok := parseDirectiveOpen(line); ok && d.name == directivePlot && !d.singleLine {
			end := findDirectiveClose(lines, i+1)
			if end < 0 {
				continue
			}
			i = end
			if _, id, at := plotCaption(lines, end+1); at >= 0 {
				idx.addFigure(id)
				i = at
			}
			continue
		}
	}

	for _, m := range findOutsideCode(content, tableDefPattern) {
		idx.addTable(m[1])
	}

	return idx
}

// plotCaption looks for a "Caption {#fig:id}" line after a plot block that
// ends just before start. It returns the caption, the id and the line index,
// or -1 when the plot is uncaptioned.
func plotCaption(lines []string, start int) (caption, id string, at int) {
	j := nextNonBlank(lines, start)
	if j < 0 || figureLinePattern.MatchString(lines[j]) {
		return "", "", -1
	}
	if _, ok := parseDirectiveOpen(lines[j]); ok {
		return "", "", -1
	}
	m := plotCaptionPattern.FindStringSubmatch(lines[j])
	if m == nil {
		return "", "", -1
	}
	return m[1], m[2], j
}

// nextNonBlank returns the index of the first non-blank line at or after
// start, or -1.
func nextNonBlank(lines []string, start int) int {
	for j := start; j < len(lines); j++ {
		if strings.TrimSpace(lines[j]) != "" {
			return j
		}
	}
	return -1
}
