package mdsite

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-mdsite/internal/fileutil"
)

// CopyPublic copies the files of the public directory into outDir, keeping
// their relative paths, and returns the number of files copied. Hidden
// files and directories are skipped. A missing public directory copies
// nothing.
func CopyPublic(ctx context.Context, publicDir, outDir string) (int, error) {
	if publicDir == "" {
		return 0, nil
	}
	if _, err := os.Stat(publicDir); os.IsNotExist(err) {
		return 0, nil
	}

	copied := 0
	err := filepath.WalkDir(publicDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		rel, err := filepath.Rel(publicDir, path)
		if err != nil {
			return err
		}
		if rel != "." && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		data, err := os.ReadFile(path) // #nosec G304 -- walking the public dir
		if err != nil {
			return err
		}
		if err := fileutil.WriteFile(filepath.Join(outDir, rel), data); err != nil {
			return err
		}
		copied++
		return nil
	})
	if err != nil {
		return copied, fmt.Errorf("%w: copying public files: %w", ErrWriteOutput, err)
	}
	return copied, nil
}
