package pipeline

import (
	"regexp"
	"testing"
)

// ---------------------------------------------------------------------------
// TestFenceTracker - Fenced code block detection
// ---------------------------------------------------------------------------

func TestFenceTracker(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		lines []string
		want  []bool
	}{
		{
			name:  "backtick fence",
			lines: []string{"text", "```go", "code", "```", "after"},
			want:  []bool{false, true, true, true, false},
		},
		{
			name:  "tilde fence not closed by backticks",
			lines: []string{"~~~", "```", "~~~", "after"},
			want:  []bool{true, true, true, false},
		},
		{
			name:  "longer closing fence",
			lines: []string{"```", "x", "`````", "after"},
			want:  []bool{true, true, true, false},
		},
		{
			name:  "shorter fence does not close",
			lines: []string{"````", "```", "````", "after"},
			want:  []bool{true, true, true, false},
		},
		{
			name:  "fence inside blockquote",
			lines: []string{"> ```", "> code", "> ```", "> quote"},
			want:  []bool{true, true, true, false},
		},
		{
			name:  "four space indent is not a fence",
			lines: []string{"    ```", "text"},
			want:  []bool{false, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var f fenceTracker
			for i, line := range tt.lines {
				if got := f.step(line); got != tt.want[i] {
					t.Errorf("step(%q) at line %d = %v, want %v", line, i, got, tt.want[i])
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestReplaceOutsideCode - Rewrites skip code spans and blocks
// ---------------------------------------------------------------------------

func TestReplaceOutsideCode(t *testing.T) {
	t.Parallel()

	word := regexp.MustCompile(`X`)
	repl := func([]string) string { return "Y" }

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain text", "X and X", "Y and Y"},
		{"inline code skipped", "X `X` X", "Y `X` Y"},
		{"double backtick span", "``a ` X`` X", "``a ` X`` Y"},
		{"unclosed backtick is text", "`X", "`Y"},
		{"escaped backtick is text", "\\`X\\`", "\\`Y\\`"},
		{"fenced block skipped", "X\n```\nX\n```\nX", "Y\n```\nX\n```\nY"},
		{"unclosed fence runs to end", "X\n```\nX\nX", "Y\n```\nX\nX"},
		{"no match", "nothing", "nothing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := replaceOutsideCode(tt.input, word, repl)
			if got != tt.expected {
				t.Errorf("replaceOutsideCode(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestFindOutsideCode
// ---------------------------------------------------------------------------

func TestFindOutsideCode(t *testing.T) {
	t.Parallel()

	re := regexp.MustCompile(`\{#tab:(\w+)\}`)
	got := findOutsideCode("{#tab:a} `{#tab:b}`\n```\n{#tab:c}\n```\n{#tab:d}", re)

	if len(got) != 2 {
		t.Fatalf("findOutsideCode() returned %d matches, want 2: %v", len(got), got)
	}
	if got[0][1] != "a" || got[1][1] != "d" {
		t.Errorf("findOutsideCode() ids = %q, %q, want a, d", got[0][1], got[1][1])
	}
}
