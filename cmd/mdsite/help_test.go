package main

// Notes:
// - printUsage and the per-command usages: required strings only, not
//   exact formatting.
// - runHelp: routing to the right topic and unknown topics.

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestPrintUsage - Main usage output
// ---------------------------------------------------------------------------

func TestPrintUsage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printUsage(&buf)
	output := buf.String()

	for _, s := range []string{"Usage: mdsite", "Commands:", "build", "feed", "watch", "version", "help"} {
		if !strings.Contains(output, s) {
			t.Errorf("printUsage output should contain %q", s)
		}
	}
}

// ---------------------------------------------------------------------------
// TestCommandUsage - Per-command usage output
// ---------------------------------------------------------------------------

func TestCommandUsage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		print func(w *bytes.Buffer)
		wants []string
	}{
		{
			name:  "build",
			print: func(w *bytes.Buffer) { printBuildUsage(w) },
			wants: []string{"Usage: mdsite build", "--out", "--workers", "--no-git", "--no-feed", "--config", "MDSITE_SITE_URL", "GITHUB_TOKEN"},
		},
		{
			name:  "watch",
			print: func(w *bytes.Buffer) { printWatchUsage(w) },
			wants: []string{"Usage: mdsite watch", "--debounce", "--out", "--posts"},
		},
		{
			name:  "feed",
			print: func(w *bytes.Buffer) { printFeedUsage(w) },
			wants: []string{"Usage: mdsite feed", "--limit", "--out"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			tt.print(&buf)
			for _, want := range tt.wants {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("%s usage should contain %q", tt.name, want)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunHelp - Topic routing
// ---------------------------------------------------------------------------

func TestRunHelp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no topic", nil, "Commands:"},
		{"build", []string{"build"}, "Usage: mdsite build"},
		{"watch", []string{"watch"}, "Usage: mdsite watch"},
		{"feed", []string{"feed"}, "Usage: mdsite feed"},
		{"version", []string{"version"}, "Usage: mdsite version"},
		{"help", []string{"help"}, "Usage: mdsite help"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, stdout, _ := testEnv(nil)
			if err := runHelp(tt.args, env); err != nil {
				t.Fatalf("runHelp(%v) error = %v", tt.args, err)
			}
			if !strings.Contains(stdout.String(), tt.want) {
				t.Errorf("runHelp(%v) output = %q, want %q", tt.args, stdout.String(), tt.want)
			}
		})
	}

	t.Run("unknown topic", func(t *testing.T) {
		t.Parallel()

		env, stdout, stderr := testEnv(nil)
		err := runHelp([]string{"deploy"}, env)
		if !errors.Is(err, ErrUnknownCommand) {
			t.Errorf("runHelp(deploy) error = %v, want ErrUnknownCommand", err)
		}
		if stdout.Len() != 0 || !strings.Contains(stderr.String(), "Commands:") {
			t.Error("unknown topic should print usage to stderr")
		}
	})
}
