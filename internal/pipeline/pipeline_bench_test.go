//go:build bench

package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

// BenchmarkRenderDocument benchmarks preprocessing, conversion and
// finishing for documents using every extension.
func BenchmarkRenderDocument(b *testing.B) {
	converter := NewGoldmarkConverter()
	pre := &ExtensionPreprocessor{}
	ctx := context.Background()

	for _, sections := range []int{1, 10, 50, 200} {
		content := generateExtendedMarkdown(sections)
		for _, profile := range []Profile{ProfilePage, ProfileFeed} {
			b.Run(fmt.Sprintf("%s_sections_%d", profile, sections), func(b *testing.B) {
				b.ReportAllocs()
				b.ResetTimer()

				for i := 0; i < b.N; i++ {
					prepared, err := pre.PreprocessMarkdown(ctx, content, Options{Profile: profile})
					if err != nil {
						b.Fatal(err)
					}
					out, err := converter.ToHTML(ctx, prepared.Markdown)
					if err != nil {
						b.Fatal(err)
					}
					_ = prepared.Finish(out)
				}
			})
		}
	}
}

// BenchmarkExtractHeadings benchmarks heading collection on converted HTML.
func BenchmarkExtractHeadings(b *testing.B) {
	converter := NewGoldmarkConverter()
	out, err := converter.ToHTML(context.Background(), generateExtendedMarkdown(50))
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, _, err := ExtractHeadings(out); err != nil {
			b.Fatal(err)
		}
	}
}

func generateExtendedMarkdown(sections int) string {
	var sb strings.Builder
	sb.WriteString("# Fee Market Notes\n\n")

	for i := 0; i < sections; i++ {
		sb.WriteString(fmt.Sprintf("## Section %d\n\n", i+1))
		sb.WriteString(fmt.Sprintf("![Fees over time](/images/fees-%d.png){#fig:fees-%d}\n\n", i, i))
		sb.WriteString(fmt.Sprintf("As {@fig:fees-%d} shows, [[mempool||unconfirmed transactions]] ", i))
		sb.WriteString("grew {{orange:sharply}} and x^2^ ==matters== with \\(a^2 + b^2\\).\n\n")
		sb.WriteString(":::alert{warning}\nFees are **volatile**.\n:::\n\n")

		if i%3 == 0 {
			sb.WriteString("```go\nfunc fee(vbytes int) int { return vbytes * 2 }\n```\n\n")
		}
		if i%5 == 0 {
			sb.WriteString(fmt.Sprintf("Block sizes {#tab:sizes-%d}\n\n", i))
			sb.WriteString("| Height | Size |\n|---|---|\n| 1 | 285 |\n\n")
		}
	}

	return sb.String()
}
