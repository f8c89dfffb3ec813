//go:build wasip1

// Package wasm exports the plugin contract from a WebAssembly module run by
// Extism.
//
// Import it for its side effects in the plugin's main package and build with
//
//	GOOS=wasip1 GOARCH=wasm go build -buildmode=c-shared -o plugin.wasm .
//
// Every entry point reads its input from and writes its output to the Extism
// kernel memory, so host and plugin share one allocator. An empty output
// from plugin_run is the "no result" sentinel.
package wasm

import (
	"fmt"

	"github.com/extism/go-pdk"

	"github.com/joncooperworks/bat/sdk"
)

func adapter() *sdk.Adapter {
	a := sdk.Registered()
	if a == nil {
		pdk.SetErrorString("bat plugin: no sdk.Definition registered")
	}
	return a
}

//go:wasmexport plugin_name
func pluginName() int32 {
	return outputString(func(a *sdk.Adapter) string { return a.Name() })
}

//go:wasmexport plugin_command
func pluginCommand() int32 {
	return outputString(func(a *sdk.Adapter) string { return a.Command() })
}

//go:wasmexport plugin_version
func pluginVersion() int32 {
	return outputString(func(a *sdk.Adapter) string { return a.Version() })
}

//go:wasmexport plugin_arguments
func pluginArguments() int32 {
	a := adapter()
	if a == nil {
		return 1
	}
	pdk.Output(a.Arguments())
	return 0
}

//go:wasmexport plugin_run
func pluginRun() int32 {
	a := adapter()
	if a == nil {
		return 1
	}
	if out := a.Run(pdk.Input()); len(out) > 0 {
		pdk.Output(out)
	}
	return 0
}

//go:wasmexport plugin_on_load
func pluginOnLoad() int32 {
	a := adapter()
	if a == nil {
		return 1
	}
	a.OnLoad()
	return 0
}

//go:wasmexport plugin_on_unload
func pluginOnUnload() int32 {
	a := adapter()
	if a == nil {
		return 1
	}
	a.OnUnload()
	return 0
}

func outputString(field func(*sdk.Adapter) string) int32 {
	a := adapter()
	if a == nil {
		return 1
	}
	pdk.OutputString(field(a))
	return 0
}

// Logf forwards plugin diagnostics to the host logger. Plugins built for
// WebAssembly pass it as sdk.Definition.Logf.
func Logf(format string, args ...interface{}) {
	pdk.Log(pdk.LogInfo, fmt.Sprintf(format, args...))
}
