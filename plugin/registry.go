package plugin

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// LoaderFactory is a function that creates a new Loader instance.
//
// Factory functions are registered with RegisterLoader and are called the
// first time a Manager meets a file with that extension, with the Manager's
// logger.
type LoaderFactory func(log zerolog.Logger) (Loader, error)

var (
	// loaderRegistry stores loader factories by file extension
	loaderRegistry = make(map[string]LoaderFactory)
	// loaderRegistryMu protects concurrent access to the registry
	loaderRegistryMu sync.RWMutex
)

// RegisterLoader registers a loader factory for a file extension.
//
// This should be called from init() functions in loader implementations.
// The extension includes the leading dot and is matched case-insensitively,
// e.g. ".so" or ".wasm".
//
// Example:
//
//	func init() {
//	    RegisterLoader(".wasm", func(log zerolog.Logger) (Loader, error) {
//	        return NewWASMLoader(log)
//	    })
//	}
func RegisterLoader(extension string, factory LoaderFactory) {
	loaderRegistryMu.Lock()
	defer loaderRegistryMu.Unlock()
	loaderRegistry[strings.ToLower(extension)] = factory
}

// GetLoaderFactory retrieves the loader factory for a file extension.
//
// Returns an error if no factory is registered for the extension.
func GetLoaderFactory(extension string) (LoaderFactory, error) {
	loaderRegistryMu.RLock()
	defer loaderRegistryMu.RUnlock()
	factory, ok := loaderRegistry[strings.ToLower(extension)]
	if !ok {
		return nil, fmt.Errorf("no loader registered for extension %q", extension)
	}
	return factory, nil
}

// ListRegisteredExtensions returns all registered file extensions, sorted.
func ListRegisteredExtensions() []string {
	loaderRegistryMu.RLock()
	defer loaderRegistryMu.RUnlock()
	extensions := make([]string, 0, len(loaderRegistry))
	for extension := range loaderRegistry {
		extensions = append(extensions, extension)
	}
	sort.Strings(extensions)
	return extensions
}
