// Package plot builds Plotly figure documents for interactive plots.
//
// A Spec is plain Plotly JSON (data, layout, config). Specs come from JSON
// files or inline directive bodies, either as raw Plotly documents or as a
// chart shorthand expanded by the builders. Themed applies the site's dark
// synthwave theme before the figure is embedded in a page.
package plot
