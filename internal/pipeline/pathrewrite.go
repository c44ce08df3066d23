package pipeline

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// urlAttributes lists the attributes that may carry a root-relative URL.
var urlAttributes = map[string]bool{
	"src":    true,
	"href":   true,
	"poster": true,
}

// AbsolutizeURLs rewrites root-relative URLs ("/images/x.png") to absolute
// URLs under siteURL. Feed readers resolve links against the feed location,
// not the site, so feed content must not carry root-relative paths.
// If siteURL is empty, returns the HTML unchanged.
//
// Left unchanged:
//   - protocol-relative URLs ("//cdn.example.com")
//   - relative paths ("img.png"), anchors and absolute URLs
func AbsolutizeURLs(htmlContent, siteURL string) (string, error) {
	if siteURL == "" {
		return htmlContent, nil
	}

	base, err := url.Parse(strings.TrimRight(siteURL, "/"))
	if err != nil {
		return "", err
	}

	doc, isFragment, err := parseHTML(htmlContent)
	if err != nil {
		return "", err
	}

	walkElements(doc, func(n *html.Node) {
		for i, attr := range n.Attr {
			if !urlAttributes[attr.Key] || !isRootRelative(attr.Val) {
				continue
			}
			n.Attr[i].Val = base.String() + attr.Val
		}
	})

	return renderHTML(doc, isFragment)
}

// isRootRelative returns true for paths like "/posts/x" but not "//host/x".
func isRootRelative(path string) bool {
	return strings.HasPrefix(path, "/") && !strings.HasPrefix(path, "//")
}

// walkElements calls fn for every element node under n in document order.
func walkElements(n *html.Node, fn func(*html.Node)) {
	if n.Type == html.ElementNode {
		fn(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkElements(c, fn)
	}
}

// parseHTML parses HTML content, handling both full documents and fragments.
// Returns the parsed node, whether it was a fragment, and any error.
func parseHTML(content string) (*html.Node, bool, error) {
	trimmed := strings.ToLower(strings.TrimSpace(content))

	if strings.HasPrefix(trimmed, "<!doctype") || strings.HasPrefix(trimmed, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	// Fragment: parse with body context to avoid wrapping
	context := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), context)
	if err != nil {
		return nil, true, err
	}

	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}

	return container, true, nil
}

// renderHTML renders the document back to string.
// For fragments, only renders the children (avoids adding <html><body> wrapper).
func renderHTML(doc *html.Node, isFragment bool) (string, error) {
	var buf strings.Builder

	if isFragment {
		for c := doc.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&buf, c); err != nil {
				return "", err
			}
		}
		return buf.String(), nil
	}

	if err := html.Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}
