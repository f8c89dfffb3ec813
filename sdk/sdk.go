// Package sdk lets plugin authors implement the bat plugin contract by
// describing a plugin instead of writing its entry points.
//
// A plugin registers one Definition from an init function:
//
//	func init() {
//	    sdk.Register(sdk.Definition{
//	        Name:      "Generate features from an OpenAPI document",
//	        Command:   "mobile",
//	        Version:   "0.2.0",
//	        Arguments: []wire.Argument{{Name: "INPUT", Usage: "<INPUT> 'Input file to use'"}},
//	        Handler:   run,
//	    })
//	}
//
// and links one of the export shims, sdk/native for shared libraries built
// with -buildmode=c-shared or sdk/wasm for GOOS=wasip1 modules. The shims
// export the contract symbols and forward every call to the Adapter built
// from the registered Definition, which does all encoding and decoding.
package sdk

import (
	"fmt"
	"sync"

	"github.com/joncooperworks/bat/wire"
)

// Handler produces a result from the parameters of a run. Returning a nil
// result or an error makes the run report "no result" to the host.
type Handler func(params wire.Parameters) (*wire.Result, error)

// Definition describes a plugin.
type Definition struct {
	// Name is the human-readable display name.
	Name string
	// Command is the dispatch key. It must be a single CLI-safe token.
	Command string
	// Version is a free-form version string.
	Version string
	// Arguments lists, in order, the named inputs the plugin accepts.
	Arguments []wire.Argument
	// Handler runs the plugin.
	Handler Handler
	// OnLoad is called once after the host opened the plugin. Optional.
	OnLoad func()
	// OnUnload is called once before the host closes the plugin. Optional.
	OnUnload func()
	// Logf receives diagnostics from the adapter, such as handler errors. Optional.
	Logf func(format string, args ...interface{})
}

var (
	registered   *Adapter
	registeredMu sync.RWMutex
)

// Register installs the plugin definition served by the export shims. It
// panics if def is invalid or a definition is already registered, since
// either is a build mistake in the plugin.
func Register(def Definition) {
	adapter, err := NewAdapter(def)
	if err != nil {
		panic(fmt.Sprintf("sdk: %v", err))
	}

	registeredMu.Lock()
	defer registeredMu.Unlock()
	if registered != nil {
		panic(fmt.Sprintf("sdk: plugin %q already registered", registered.Command()))
	}
	registered = adapter
}

// Registered returns the adapter installed by Register, or nil.
func Registered() *Adapter {
	registeredMu.RLock()
	defer registeredMu.RUnlock()
	return registered
}
