package assets

import (
	"embed"
	"fmt"
	"path"
)

//go:embed styles scripts templates
var embedded embed.FS

// EmbeddedLoader serves the default theme compiled into the binary.
type EmbeddedLoader struct{}

func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

func (*EmbeddedLoader) Load(kind Kind, name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}
	content, err := embedded.ReadFile(kind.file(name))
	if err != nil {
		return "", fmt.Errorf("%w: %q", kind.notFound(), name)
	}
	return string(content), nil
}

func (*EmbeddedLoader) LoadTemplateSet(name string) (*TemplateSet, error) {
	if err := ValidateAssetName(name); err != nil {
		return nil, err
	}
	return readTemplateSet(name, func(file string) ([]byte, error) {
		return embedded.ReadFile(path.Join("templates", name, file))
	})
}

var _ AssetLoader = (*EmbeddedLoader)(nil)
