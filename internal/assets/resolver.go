package assets

import "errors"

// AssetResolver layers an optional custom directory over the embedded
// theme. A custom asset wins; a missing one falls back to the embedded copy.
// Validation and read errors from the custom directory are returned as is.
type AssetResolver struct {
	custom   AssetLoader // nil without a custom path
	embedded AssetLoader
}

// NewAssetResolver returns a resolver for customBasePath, or for the
// embedded theme alone when the path is empty.
func NewAssetResolver(customBasePath string) (*AssetResolver, error) {
	r := &AssetResolver{embedded: NewEmbeddedLoader()}
	if customBasePath == "" {
		return r, nil
	}
	custom, err := NewFilesystemLoader(customBasePath)
	if err != nil {
		return nil, err
	}
	r.custom = custom
	return r, nil
}

func (r *AssetResolver) Load(kind Kind, name string) (string, error) {
	return resolve(r, func(l AssetLoader) (string, error) { return l.Load(kind, name) })
}

// LoadStyle returns the stylesheet with the given name.
func (r *AssetResolver) LoadStyle(name string) (string, error) {
	return r.Load(KindStyle, name)
}

// LoadScript returns the browser script with the given name.
func (r *AssetResolver) LoadScript(name string) (string, error) {
	return r.Load(KindScript, name)
}

// LoadTemplateSet returns a whole set from one source. A custom set that
// exists but is incomplete is an error, never patched with embedded files.
func (r *AssetResolver) LoadTemplateSet(name string) (*TemplateSet, error) {
	return resolve(r, func(l AssetLoader) (*TemplateSet, error) { return l.LoadTemplateSet(name) })
}

func resolve[T any](r *AssetResolver, load func(AssetLoader) (T, error)) (T, error) {
	if r.custom != nil {
		v, err := load(r.custom)
		if err == nil || !isNotFound(err) {
			return v, err
		}
	}
	return load(r.embedded)
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrStyleNotFound) ||
		errors.Is(err, ErrScriptNotFound) ||
		errors.Is(err, ErrTemplateSetNotFound)
}

var _ AssetLoader = (*AssetResolver)(nil)
