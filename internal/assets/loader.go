package assets

import "fmt"

// Kind selects a single-file asset category.
type Kind int

const (
	KindStyle  Kind = iota // {base}/styles/{name}.css
	KindScript             // {base}/scripts/{name}.js
)

func (k Kind) String() string {
	switch k {
	case KindStyle:
		return "style"
	case KindScript:
		return "script"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) dir() string {
	if k == KindScript {
		return "scripts"
	}
	return "styles"
}

func (k Kind) ext() string {
	if k == KindScript {
		return ".js"
	}
	return ".css"
}

// notFound is the sentinel returned when no file of this kind matches.
func (k Kind) notFound() error {
	if k == KindScript {
		return ErrScriptNotFound
	}
	return ErrStyleNotFound
}

// file returns the slash-separated path of an asset relative to a base.
func (k Kind) file(name string) string {
	return k.dir() + "/" + name + k.ext()
}

// AssetLoader loads site assets from one source.
type AssetLoader interface {
	// Load returns the content of the named asset. Missing assets yield
	// ErrStyleNotFound or ErrScriptNotFound; bad names ErrInvalidAssetName.
	Load(kind Kind, name string) (string, error)

	// LoadTemplateSet returns the page templates of a theme. It fails with
	// ErrTemplateSetNotFound when no template exists and
	// ErrIncompleteTemplateSet when only some do.
	LoadTemplateSet(name string) (*TemplateSet, error)
}
