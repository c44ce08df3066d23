package fileutil_test

// Notes:
// - WriteFile's Write, Close and Chmod error branches are not tested because
//   triggering disk failures is platform-specific.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alnah/go-mdsite/internal/fileutil"
)

// ---------------------------------------------------------------------------
// TestWriteFile - Atomic output file writes
// ---------------------------------------------------------------------------

func TestWriteFile(t *testing.T) {
	t.Parallel()

	t.Run("creates parent directories", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "posts", "halving", "index.html")
		if err := fileutil.WriteFile(path, []byte("<h1>Halving</h1>")); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("reading file: %v", err)
		}
		if string(data) != "<h1>Halving</h1>" {
			t.Errorf("content = %q, want %q", data, "<h1>Halving</h1>")
		}
	})

	t.Run("overwrites and leaves no temp files", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "feed.xml")
		for _, content := range []string{"first", "second"} {
			if err := fileutil.WriteFile(path, []byte(content)); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}
		}

		data, _ := os.ReadFile(path)
		if string(data) != "second" {
			t.Errorf("content = %q, want %q", data, "second")
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("ReadDir: %v", err)
		}
		if len(entries) != 1 {
			t.Errorf("directory has %d entries, want 1", len(entries))
		}
	})

	t.Run("empty path", func(t *testing.T) {
		t.Parallel()

		if err := fileutil.WriteFile("", nil); !errors.Is(err, fileutil.ErrPathEmpty) {
			t.Errorf("WriteFile(\"\") error = %v, want ErrPathEmpty", err)
		}
	})

	t.Run("parent is a file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		blocker := filepath.Join(dir, "blocker")
		if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
			t.Fatalf("setup: %v", err)
		}
		if err := fileutil.WriteFile(filepath.Join(blocker, "out.html"), []byte("x")); err == nil {
			t.Error("WriteFile() error = nil, want error")
		}
	})
}

// ---------------------------------------------------------------------------
// TestResolveUnder - Site paths stay inside their root
// ---------------------------------------------------------------------------

func TestResolveUnder(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "public")

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr error
	}{
		{name: "root relative", path: "/data/fees.json", want: filepath.Join(root, "data", "fees.json")},
		{name: "no leading slash", path: "data/fees.json", want: filepath.Join(root, "data", "fees.json")},
		{name: "dot segments inside root", path: "/data/../data/./fees.json", want: filepath.Join(root, "data", "fees.json")},
		{name: "traversal clamped to root", path: "/../../etc/passwd", want: filepath.Join(root, "etc", "passwd")},
		{name: "empty", path: "", wantErr: fileutil.ErrPathEmpty},
		{name: "null byte", path: "/data\x00.json", wantErr: fileutil.ErrPathInvalidBytes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := fileutil.ResolveUnder(root, tt.path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ResolveUnder(%q) error = %v, want %v", tt.path, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveUnder(%q) unexpected error: %v", tt.path, err)
			}
			if got != tt.want {
				t.Errorf("ResolveUnder(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestFileExists - File existence check
// ---------------------------------------------------------------------------

func TestFileExists(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()

	testFile := filepath.Join(tempDir, "test.md")
	if err := os.WriteFile(testFile, []byte("content"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	testDir := filepath.Join(tempDir, "testdir")
	if err := os.Mkdir(testDir, 0755); err != nil {
		t.Fatalf("failed to create test dir: %v", err)
	}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"existing file returns true", testFile, true},
		{"directory returns false", testDir, false},
		{"nonexistent path returns false", filepath.Join(tempDir, "nonexistent"), false},
		{"empty path returns false", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := fileutil.FileExists(tt.path)
			if got != tt.want {
				t.Errorf("FileExists(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}
