package pipeline

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Heading is an entry of a page's table of contents.
type Heading struct {
	Level int    // 1-6
	ID    string // anchor ID
	Text  string // plain heading text
}

var (
	slugUnsafe = regexp.MustCompile(`[^a-z0-9]+`)
	headingTag = regexp.MustCompile(`^h([1-6])$`)
)

// ExtractHeadings walks an HTML fragment and returns its headings in
// document order. Headings without an id get "heading-INDEX-slug", with
// INDEX counting every heading from 0, and the returned HTML carries the
// assigned ids.
func ExtractHeadings(htmlContent string) (string, []Heading, error) {
	doc, isFragment, err := parseHTML(htmlContent)
	if err != nil {
		return "", nil, err
	}

	var headings []Heading
	changed := false

	walkElements(doc, func(n *html.Node) {
		m := headingTag.FindStringSubmatch(n.Data)
		if m == nil {
			return
		}
		level, _ := strconv.Atoi(m[1])
		text := strings.Join(strings.Fields(nodeText(n)), " ")

		id := attrValue(n, "id")
		if id == "" {
			id = "heading-" + strconv.Itoa(len(headings)) + "-" + Slugify(text)
			n.Attr = append(n.Attr, html.Attribute{Key: "id", Val: id})
			changed = true
		}

		headings = append(headings, Heading{Level: level, ID: id, Text: text})
	})

	if !changed {
		return htmlContent, headings, nil
	}

	out, err := renderHTML(doc, isFragment)
	if err != nil {
		return "", nil, err
	}
	return out, headings, nil
}

// Slugify lowercases s and joins its alphanumeric runs with hyphens.
func Slugify(s string) string {
	return strings.Trim(slugUnsafe.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// nodeText concatenates the text nodes under n.
func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(nodeText(c))
	}
	return b.String()
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
