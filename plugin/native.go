//go:build darwin || linux || freebsd || windows

package plugin

import (
	"bytes"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/rs/zerolog"
)

func init() {
	RegisterLoader(NativeExtension(), func(zerolog.Logger) (Loader, error) {
		return NewNativeLoader(), nil
	})
}

// NativeExtension returns the shared library extension of the platform.
func NativeExtension() string {
	switch runtime.GOOS {
	case "darwin":
		return ".dylib"
	case "windows":
		return ".dll"
	default:
		return ".so"
	}
}

// library is an opened shared library.
type library interface {
	Symbol(name string) (uintptr, error)
	Close() error
}

// contractSymbols lists every entry point a shared library must export.
var contractSymbols = []string{
	"plugin_name",
	"plugin_command",
	"plugin_version",
	"plugin_arguments",
	"plugin_run",
	"plugin_on_load",
	"plugin_on_unload",
	"plugin_alloc",
	"plugin_free",
}

// resolveSymbols looks up every contract symbol, failing on the first one
// the library does not export.
func resolveSymbols(lib library) (map[string]uintptr, error) {
	addrs := make(map[string]uintptr, len(contractSymbols))
	for _, name := range contractSymbols {
		addr, err := lib.Symbol(name)
		if err != nil {
			return nil, &SymbolError{Symbol: name, Err: err}
		}
		if addr == 0 {
			return nil, &SymbolError{Symbol: name}
		}
		addrs[name] = addr
	}
	return addrs, nil
}

// NativeLoader opens shared libraries with the platform's dynamic loader.
type NativeLoader struct {
	open func(path string) (library, error)
}

// NewNativeLoader creates a loader for shared libraries.
func NewNativeLoader() *NativeLoader {
	return &NativeLoader{open: openLibrary}
}

// Open loads the library at path and binds the contract entry points.
func (nl *NativeLoader) Open(path string) (Module, error) {
	lib, err := nl.open(path)
	if err != nil {
		return nil, err
	}

	addrs, err := resolveSymbols(lib)
	if err != nil {
		_ = lib.Close()
		return nil, err
	}

	nm := &NativeModule{path: path, lib: lib}
	purego.RegisterFunc(&nm.name, addrs["plugin_name"])
	purego.RegisterFunc(&nm.command, addrs["plugin_command"])
	purego.RegisterFunc(&nm.version, addrs["plugin_version"])
	purego.RegisterFunc(&nm.arguments, addrs["plugin_arguments"])
	purego.RegisterFunc(&nm.run, addrs["plugin_run"])
	purego.RegisterFunc(&nm.onLoad, addrs["plugin_on_load"])
	purego.RegisterFunc(&nm.onUnload, addrs["plugin_on_unload"])
	purego.RegisterFunc(&nm.alloc, addrs["plugin_alloc"])
	purego.RegisterFunc(&nm.free, addrs["plugin_free"])
	return nm, nil
}

// NativeModule is a shared library implementing the plugin contract.
//
// The bound functions are only valid while lib is open. Every buffer the
// library hands out is copied into Go memory and returned to plugin_free
// before the copy is used, and the input of plugin_run is allocated with
// plugin_alloc, so both directions use the library's allocator.
type NativeModule struct {
	path string
	lib  library

	name      func() string
	command   func() string
	version   func() string
	arguments func(out *uintptr) uintptr
	run       func(in uintptr, inLen uintptr, out *uintptr) uintptr
	onLoad    func()
	onUnload  func()
	alloc     func(size uintptr) uintptr
	free      func(data uintptr, size uintptr)
}

func (nm *NativeModule) checkOpen() error {
	if nm.lib == nil {
		return fmt.Errorf("library %s is closed", nm.path)
	}
	return nil
}

// Name calls plugin_name and copies the string.
func (nm *NativeModule) Name() (string, error) {
	if err := nm.checkOpen(); err != nil {
		return "", err
	}
	return strings.Clone(nm.name()), nil
}

// Command calls plugin_command and copies the string.
func (nm *NativeModule) Command() (string, error) {
	if err := nm.checkOpen(); err != nil {
		return "", err
	}
	return strings.Clone(nm.command()), nil
}

// Version calls plugin_version and copies the string.
func (nm *NativeModule) Version() (string, error) {
	if err := nm.checkOpen(); err != nil {
		return "", err
	}
	return strings.Clone(nm.version()), nil
}

// Arguments calls plugin_arguments and takes ownership of the buffer.
func (nm *NativeModule) Arguments() ([]byte, error) {
	if err := nm.checkOpen(); err != nil {
		return nil, err
	}
	var out uintptr
	n := nm.arguments(&out)
	return nm.take(out, n), nil
}

// Run hands input to plugin_run and takes ownership of the result buffer.
// Ownership of the input passes to the library.
func (nm *NativeModule) Run(input []byte) ([]byte, error) {
	if err := nm.checkOpen(); err != nil {
		return nil, err
	}
	if len(input) == 0 {
		return nil, errors.New("empty input buffer")
	}

	in := nm.alloc(uintptr(len(input)))
	if in == 0 {
		return nil, fmt.Errorf("plugin_alloc(%d) returned null", len(input))
	}
	copy(unsafe.Slice((*byte)(unsafe.Pointer(in)), len(input)), input)

	var out uintptr
	n := nm.run(in, uintptr(len(input)), &out)
	return nm.take(out, n), nil
}

// OnLoad calls plugin_on_load.
func (nm *NativeModule) OnLoad() error {
	if err := nm.checkOpen(); err != nil {
		return err
	}
	nm.onLoad()
	return nil
}

// OnUnload calls plugin_on_unload.
func (nm *NativeModule) OnUnload() error {
	if err := nm.checkOpen(); err != nil {
		return err
	}
	nm.onUnload()
	return nil
}

// Close unloads the library. The bound functions must not be called afterwards.
func (nm *NativeModule) Close() error {
	if nm.lib == nil {
		return nil
	}
	err := nm.lib.Close()
	nm.lib = nil
	return err
}

// take copies a library-owned buffer and releases it with plugin_free.
// A zero length is the "no result" sentinel.
func (nm *NativeModule) take(data, n uintptr) []byte {
	if n == 0 || data == 0 {
		return nil
	}
	buf := bytes.Clone(unsafe.Slice((*byte)(unsafe.Pointer(data)), n))
	nm.free(data, n)
	return buf
}
