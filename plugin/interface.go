// Package plugin discovers, loads and invokes bat plugins.
//
// A plugin is a module on disk that implements the plugin contract (see
// include/bat_plugin.h). Loaders turn a file into a Module, one per file
// extension: shared libraries are opened with the platform's dynamic loader,
// .wasm files are instantiated with Extism. The Manager owns every loaded
// Module together with the Plugin record built from its metadata, and is the
// only way to call into a module.
package plugin

// Module is an opened plugin file. Each method calls the matching contract
// entry point.
//
// Buffers returned by Arguments and Run are copies owned by the caller; the
// module has already released its own memory by the time they are returned.
// A nil or empty buffer from Run is the "no result" sentinel.
//
// A Module is not safe for concurrent use. Close releases the underlying
// library or instance; no method may be called afterwards.
type Module interface {
	// Name returns the human-readable display name.
	Name() (string, error)

	// Command returns the dispatch key.
	Command() (string, error)

	// Version returns the free-form version string.
	Version() (string, error)

	// Arguments returns the encoded argument descriptors.
	Arguments() ([]byte, error)

	// Run passes encoded parameters to the plugin and returns its encoded result.
	Run(input []byte) ([]byte, error)

	// OnLoad runs the plugin's load hook.
	OnLoad() error

	// OnUnload runs the plugin's unload hook.
	OnUnload() error

	// Close releases the module.
	Close() error
}
