package plugin

import (
	"bytes"
	"context"
	"fmt"
	"os"

	extism "github.com/extism/go-sdk"
	"github.com/rs/zerolog"
)

func init() {
	RegisterLoader(".wasm", func(log zerolog.Logger) (Loader, error) {
		return NewWASMLoader(log)
	})
}

// wasmSymbols lists every function a WASM plugin must export.
var wasmSymbols = []string{
	"plugin_name",
	"plugin_command",
	"plugin_version",
	"plugin_arguments",
	"plugin_run",
	"plugin_on_load",
	"plugin_on_unload",
}

// WASMLoader loads WASM plugins using Extism SDK.
type WASMLoader struct {
	log zerolog.Logger
	dir string
}

// NewWASMLoader creates a new WASM loader. Plugins see the current working
// directory as their filesystem root.
func NewWASMLoader(log zerolog.Logger) (*WASMLoader, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return &WASMLoader{log: log, dir: dir}, nil
}

// Open compiles and instantiates the WASM plugin at path.
func (wl *WASMLoader) Open(path string) (Module, error) {
	manifest := extism.Manifest{
		Wasm: []extism.Wasm{
			extism.WasmFile{Path: path},
		},
		AllowedHosts: []string{"*"},
		AllowedPaths: map[string]string{wl.dir: "/"},
	}

	ctx := context.Background()
	config := extism.PluginConfig{
		EnableWasi:                true,
		EnableHttpResponseHeaders: true,
	}

	plugin, err := extism.NewPlugin(ctx, manifest, config, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Extism plugin: %w", err)
	}

	for _, name := range wasmSymbols {
		if !plugin.FunctionExists(name) {
			_ = plugin.Close(ctx)
			return nil, &SymbolError{Symbol: name}
		}
	}

	log := wl.log.With().Str("path", path).Logger()
	plugin.SetLogger(func(level extism.LogLevel, message string) {
		log.WithLevel(wasmLogLevel(level)).Msg(message)
	})

	return &WASMModule{plugin: plugin, ctx: ctx}, nil
}

func wasmLogLevel(level extism.LogLevel) zerolog.Level {
	switch level {
	case extism.LogLevelTrace:
		return zerolog.TraceLevel
	case extism.LogLevelDebug:
		return zerolog.DebugLevel
	case extism.LogLevelWarn:
		return zerolog.WarnLevel
	case extism.LogLevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// wasmInstance is the part of *extism.Plugin a module uses.
type wasmInstance interface {
	Call(name string, data []byte) (uint32, []byte, error)
	Close(ctx context.Context) error
}

// WASMModule implements Module for an Extism plugin instance.
type WASMModule struct {
	plugin wasmInstance
	ctx    context.Context
}

// Name calls plugin_name.
func (wm *WASMModule) Name() (string, error) {
	out, err := wm.call("plugin_name", nil)
	return string(out), err
}

// Command calls plugin_command.
func (wm *WASMModule) Command() (string, error) {
	out, err := wm.call("plugin_command", nil)
	return string(out), err
}

// Version calls plugin_version.
func (wm *WASMModule) Version() (string, error) {
	out, err := wm.call("plugin_version", nil)
	return string(out), err
}

// Arguments calls plugin_arguments.
func (wm *WASMModule) Arguments() ([]byte, error) {
	return wm.call("plugin_arguments", nil)
}

// Run calls plugin_run with input.
func (wm *WASMModule) Run(input []byte) ([]byte, error) {
	return wm.call("plugin_run", input)
}

// OnLoad calls plugin_on_load.
func (wm *WASMModule) OnLoad() error {
	_, err := wm.call("plugin_on_load", nil)
	return err
}

// OnUnload calls plugin_on_unload.
func (wm *WASMModule) OnUnload() error {
	_, err := wm.call("plugin_on_unload", nil)
	return err
}

// Close shuts down the plugin instance and releases resources.
func (wm *WASMModule) Close() error {
	if wm.plugin == nil {
		return nil
	}
	err := wm.plugin.Close(wm.ctx)
	wm.plugin = nil
	return err
}

// call runs an exported function. The output lives in plugin memory and is
// only valid until the next call, so it is copied.
func (wm *WASMModule) call(function string, input []byte) ([]byte, error) {
	if wm.plugin == nil {
		return nil, fmt.Errorf("function %s called on closed plugin", function)
	}
	exitCode, out, err := wm.plugin.Call(function, input)
	if err != nil {
		return nil, fmt.Errorf("failed to call function %s: %w", function, err)
	}
	if exitCode != 0 {
		return nil, fmt.Errorf("function %s returned non-zero exit code: %d", function, exitCode)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return bytes.Clone(out), nil
}
