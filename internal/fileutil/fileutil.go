// Package fileutil provides file and path utility functions.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors for file utility operations.
var (
	ErrPathEmpty        = errors.New("path cannot be empty")
	ErrPathEscapesRoot  = errors.New("path escapes root directory")
	ErrPathInvalidBytes = errors.New("path contains null byte")
)

// DirPerm and FilePerm are the permissions of created output.
const (
	DirPerm  = 0o755
	FilePerm = 0o644
)

// WriteFile writes content to path, creating parent directories.
// The content goes to a temporary file in the same directory first and is
// renamed into place, so readers never see a partial file.
func WriteFile(path string, content []byte) error {
	if path == "" {
		return ErrPathEmpty
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DirPerm); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".mdsite-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	tmpPath := tmpFile.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, writeErr := tmpFile.Write(content); writeErr != nil {
		_ = tmpFile.Close()
		cleanup()
		return fmt.Errorf("writing temp file: %w", writeErr)
	}

	if closeErr := tmpFile.Close(); closeErr != nil {
		cleanup()
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Chmod(tmpPath, FilePerm); err != nil {
		cleanup()
		return fmt.Errorf("setting permissions: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// ResolveUnder joins a site path such as "/data/fees.json" onto root and
// rejects results that leave root.
func ResolveUnder(root, sitePath string) (string, error) {
	if sitePath == "" {
		return "", ErrPathEmpty
	}
	if strings.ContainsRune(sitePath, 0) {
		return "", ErrPathInvalidBytes
	}

	cleaned := filepath.Clean("/" + filepath.FromSlash(strings.TrimLeft(sitePath, "/\\")))
	full := filepath.Join(root, cleaned)

	rel, err := filepath.Rel(root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrPathEscapesRoot, sitePath)
	}
	return full, nil
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
