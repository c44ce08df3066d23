// Package assets provides the page templates, stylesheet and browser script
// of a built site, from the embedded default theme or a theme directory.
//
//	AssetLoader
//	    ├── EmbeddedLoader    go:embed default theme
//	    ├── FilesystemLoader  theme directory on disk
//	    └── AssetResolver     directory first, embedded on "not found"
//
// A stylesheet or script missing from the theme directory falls back to the
// embedded one. Template sets are resolved whole: a set present on disk must
// hold every template, otherwise loading fails with ErrIncompleteTemplateSet.
//
// Theme directory layout:
//
//	{basePath}/
//	├── styles/{name}.css
//	├── scripts/{name}.js
//	└── templates/{name}/
//	    ├── layout.html      page shell, defines "layout"
//	    ├── index.html       home page
//	    ├── list.html        blog and research listings
//	    ├── post.html        post page
//	    └── notfound.html    404 page
//
// Page templates define "content", rendered inside the layout.
//
// Names are restricted to letters, digits, '-' and '_', and every path
// read from disk must resolve, symlinks included, inside basePath.
package assets
