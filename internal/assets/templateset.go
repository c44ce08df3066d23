package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// TemplateSet holds the HTML templates of one theme. Layout defines the
// "layout" template; every page template defines "content".
type TemplateSet struct {
	Name     string // Identifier (name or directory path)
	Layout   string
	Index    string
	List     string
	Post     string
	NotFound string
}

// DefaultTemplateSetName is the name of the built-in template set.
const DefaultTemplateSetName = "default"

// DefaultStyleName is the name of the built-in stylesheet.
const DefaultStyleName = "site"

// DefaultScriptName is the name of the built-in browser script.
const DefaultScriptName = "site"

// RequiredTemplates lists the files of a template set, without extension.
var RequiredTemplates = []string{"layout", "index", "list", "post", "notfound"}

// Pages returns the page templates keyed by name, excluding the layout.
func (ts *TemplateSet) Pages() map[string]string {
	return map[string]string{
		"index":    ts.Index,
		"list":     ts.List,
		"post":     ts.Post,
		"notfound": ts.NotFound,
	}
}

// readTemplateSet assembles a set from read, which returns the content of
// one template file. Missing files are detected with fs.ErrNotExist.
func readTemplateSet(name string, read func(file string) ([]byte, error)) (*TemplateSet, error) {
	contents := make(map[string]string, len(RequiredTemplates))
	var missing []string

	for _, tmpl := range RequiredTemplates {
		data, err := read(tmpl + ".html")
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				missing = append(missing, tmpl)
				continue
			}
			return nil, fmt.Errorf("%w: reading %s.html: %v", ErrAssetRead, tmpl, err)
		}
		contents[tmpl] = string(data)
	}

	if len(missing) == len(RequiredTemplates) {
		return nil, fmt.Errorf("%w: %q", ErrTemplateSetNotFound, name)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %q missing %s", ErrIncompleteTemplateSet, name, strings.Join(missing, ", "))
	}

	return &TemplateSet{
		Name:     name,
		Layout:   contents["layout"],
		Index:    contents["index"],
		List:     contents["list"],
		Post:     contents["post"],
		NotFound: contents["notfound"],
	}, nil
}
