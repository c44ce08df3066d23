package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FilesystemLoader reads assets below a theme directory on disk.
type FilesystemLoader struct {
	root string // absolute, symlinks resolved
}

// NewFilesystemLoader returns a loader rooted at basePath, which must be a
// readable directory. It fails with ErrInvalidBasePath otherwise.
func NewFilesystemLoader(basePath string) (*FilesystemLoader, error) {
	if basePath == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}
	root, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	info, err := os.Stat(root)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: directory does not exist: %s", ErrInvalidBasePath, root)
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	case !info.IsDir():
		return nil, fmt.Errorf("%w: not a directory: %s", ErrInvalidBasePath, root)
	}
	if _, err := os.ReadDir(root); err != nil {
		return nil, fmt.Errorf("%w: cannot read directory: %v", ErrInvalidBasePath, err)
	}

	return &FilesystemLoader{root: root}, nil
}

func (f *FilesystemLoader) Load(kind Kind, name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}
	data, err := f.read(kind.file(name))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("%w: %q", kind.notFound(), name)
	case errors.Is(err, ErrPathTraversal):
		return "", err
	case err != nil:
		return "", fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	return string(data), nil
}

// LoadTemplateSet reads {root}/templates/{name}/*.html.
func (f *FilesystemLoader) LoadTemplateSet(name string) (*TemplateSet, error) {
	if err := ValidateAssetName(name); err != nil {
		return nil, err
	}
	dir := "templates/" + name
	if _, err := f.contain(dir + "/"); err != nil {
		return nil, err
	}
	return readTemplateSet(name, func(file string) ([]byte, error) {
		return f.read(dir + "/" + file)
	})
}

// read returns the content of rel, a slash-separated path under the root.
func (f *FilesystemLoader) read(rel string) ([]byte, error) {
	path, err := f.contain(rel)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path) // #nosec G304 -- contained in root
}

// contain resolves rel against the root, following symlinks, and rejects
// any result outside it.
func (f *FilesystemLoader) contain(rel string) (string, error) {
	path := filepath.Join(f.root, filepath.FromSlash(rel))
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}
	if !strings.HasPrefix(path, f.root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s escapes %s", ErrPathTraversal, rel, f.root)
	}
	return path, nil
}

var _ AssetLoader = (*FilesystemLoader)(nil)
