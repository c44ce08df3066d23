package plot

// Synthwave palette shared by plots and annotations.
const (
	NeonOrange = "#FF6C11"
	NeonCyan   = "#00A0D0"
	NeonGreen  = "#20E516"
	NeonBlue   = "#006DD0"
	Peach      = "#FF8664"
	Purple     = "#261447"
	Teal       = "#025F88"
	NeonPink   = "#FF006E"
	Magenta    = "#FF00FF"
)

// Schemes holds the color cycles for multi-series plots.
var Schemes = map[string][]string{
	"neon": {NeonCyan, NeonOrange, NeonGreen, NeonPink, NeonBlue},
	"warm": {NeonOrange, Peach, NeonPink},
	"cool": {NeonCyan, NeonBlue, Teal},
}

// DefaultScheme is used when a plot names no scheme or an unknown one.
const DefaultScheme = "neon"

// AnnotationColors maps annotation categories to palette colors.
var AnnotationColors = map[string]string{
	"protocol":  NeonCyan,
	"upgrade":   NeonGreen,
	"event":     NeonOrange,
	"milestone": NeonPink,
	"fork":      Magenta,
	"default":   NeonCyan,
}

// scheme returns the named color cycle, falling back to DefaultScheme.
func scheme(name string) []string {
	if colors, ok := Schemes[name]; ok {
		return colors
	}
	return Schemes[DefaultScheme]
}

// annotationColor resolves a category name or literal color.
func annotationColor(c string) string {
	if c == "" {
		return AnnotationColors["default"]
	}
	if named, ok := AnnotationColors[c]; ok {
		return named
	}
	return c
}
