// Package mdsite builds a static blog from a directory of markdown posts.
//
// # Quick Start
//
// Load the posts, create a site, and write it out:
//
//	posts, err := mdsite.LoadPosts("_posts", mdsite.LoadOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	site, err := mdsite.NewSite(mdsite.SiteInfo{
//	    URL:   "https://example.com",
//	    Title: "example.com",
//	}, mdsite.WithPublicDir("public"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, post := range posts {
//	    if err := site.WritePost(ctx, "out", post); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//	err = site.WriteIndexes("out", posts)
//
// # Markdown Extensions
//
// Posts are CommonMark with GFM tables, footnotes and the following
// additions:
//
//	![Caption](/img/a.png){#fig:a}     numbered figure
//	Fees by day {#tab:fees}           numbered table caption
//	{@fig:a} {@tab:fees}              cross-references
//	:::plot{src="/data/fees.json"}    interactive Plotly chart
//	:::alert{warning}                 callout box
//	:::collapse{Details}              collapsible section
//	[[text||tooltip]]                 annotation
//	{{cyan:text}}                     colored text
//	^sup^ ==mark==                    superscript and highlight
//	\( x \) \[ x \]                   MathJax math
//
// Each post renders twice: once for its page and once, with plain
// fallbacks for the interactive parts, for the RSS and Atom feeds.
//
// # Git Metadata
//
// When a gitmeta client is attached with WithGitClient, post pages show the
// publish date, last update and revision count from the repository history.
// Failures are logged and the frontmatter date is shown instead.
//
// # Custom Assets
//
// Override the built-in stylesheet, script and templates with WithAssetPath:
//
//	assets/
//	  styles/site.css
//	  scripts/site.js
//	  templates/default/{layout,index,list,post,notfound}.html
//
// Missing files fall back to the embedded defaults. A template set is used
// whole or not at all.
package mdsite
