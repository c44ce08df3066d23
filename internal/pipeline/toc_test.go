package pipeline

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestNumberingState_Next - Hierarchical numbering
// ---------------------------------------------------------------------------

func TestNumberingState_Next(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		levels    []int
		wantNums  []string
		wantDepth []int
	}{
		{"flat", []int{2, 2, 2}, []string{"1.", "2.", "3."}, []int{1, 1, 1}},
		{"nested", []int{2, 3, 3, 2, 3}, []string{"1.", "1.1.", "1.2.", "2.", "2.1."}, []int{1, 2, 2, 1, 2}},
		{"gap skipped", []int{2, 4}, []string{"1.", "1.1."}, []int{1, 2}},
		{"shallower than first", []int{3, 2}, []string{"1.", "2."}, []int{1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			n := &numberingState{}
			for i, level := range tt.levels {
				num, depth := n.next(level)
				if num != tt.wantNums[i] || depth != tt.wantDepth[i] {
					t.Errorf("next(%d) = (%q, %d), want (%q, %d)", level, num, depth, tt.wantNums[i], tt.wantDepth[i])
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRenderTOC
// ---------------------------------------------------------------------------

func TestRenderTOC(t *testing.T) {
	t.Parallel()

	headings := []Heading{
		{Level: 1, ID: "title", Text: "Title"},
		{Level: 2, ID: "intro", Text: "Intro & Goals"},
		{Level: 3, ID: "detail", Text: "Detail"},
		{Level: 2, ID: "end", Text: "End"},
	}

	t.Run("default depth range", func(t *testing.T) {
		t.Parallel()

		got := RenderTOC(headings, TOCOptions{Title: "Contents"})
		for _, want := range []string{
			`<h2 class="toc-title">Contents</h2>`,
			`<div class="toc-item toc-depth-1"><a href="#intro">Intro &amp; Goals</a></div>`,
			`<div class="toc-item toc-depth-2"><a href="#detail">Detail</a></div>`,
		} {
			if !strings.Contains(got, want) {
				t.Errorf("RenderTOC() missing %q\ngot: %s", want, got)
			}
		}
		if strings.Contains(got, "#title") {
			t.Errorf("RenderTOC() should skip H1\ngot: %s", got)
		}
	})

	t.Run("numbered", func(t *testing.T) {
		t.Parallel()

		got := RenderTOC(headings, TOCOptions{Numbered: true})
		if !strings.Contains(got, `<a href="#detail">1.1. Detail</a>`) {
			t.Errorf("RenderTOC() missing numbered entry\ngot: %s", got)
		}
	})

	t.Run("fewer than two headings", func(t *testing.T) {
		t.Parallel()

		got := RenderTOC(headings[:2], TOCOptions{})
		if got != "" {
			t.Errorf("RenderTOC() = %q, want empty", got)
		}
	})
}
