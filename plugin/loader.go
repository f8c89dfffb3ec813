package plugin

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Loader opens plugin files of one kind.
type Loader interface {
	Open(path string) (Module, error)
}

// extensionOf returns the lower-cased extension used to select a loader.
func extensionOf(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// loaderFor returns the loader for path, creating it from the registered
// factory on first use.
func (r *registry) loaderFor(path string) (Loader, error) {
	ext := extensionOf(path)
	if loader, ok := r.loaders[ext]; ok {
		return loader, nil
	}

	factory, err := GetLoaderFactory(ext)
	if err != nil {
		return nil, err
	}
	loader, err := factory(r.log)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s loader: %w", ext, err)
	}
	r.loaders[ext] = loader
	return loader, nil
}

// extensions returns every extension the registry can open.
func (r *registry) extensions() []string {
	seen := make(map[string]bool)
	var exts []string
	for ext := range r.loaders {
		seen[ext] = true
		exts = append(exts, ext)
	}
	for _, ext := range ListRegisteredExtensions() {
		if !seen[ext] {
			exts = append(exts, ext)
		}
	}
	return exts
}
