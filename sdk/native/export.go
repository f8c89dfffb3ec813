//go:build cgo

// Package native exports the plugin contract from a Go shared library.
//
// Import it for its side effects in the plugin's main package and build with
// -buildmode=c-shared:
//
//	import _ "github.com/joncooperworks/bat/sdk/native"
//
// Buffers are allocated with C malloc and released with C free, which is the
// allocator plugin_alloc and plugin_free expose to the host.
package native

/*
#include <stdint.h>
#include <stdlib.h>
*/
import "C"

import (
	"sync"
	"unsafe"

	"github.com/joncooperworks/bat/sdk"
)

// metadata holds the C copies of the static strings. They are allocated once
// and never freed, so they stay valid until the library is unloaded.
var metadata struct {
	once    sync.Once
	name    *C.char
	command *C.char
	version *C.char
}

func adapter() *sdk.Adapter {
	a := sdk.Registered()
	if a == nil {
		panic("bat plugin: no sdk.Definition registered")
	}
	return a
}

func loadMetadata() {
	metadata.once.Do(func() {
		a := adapter()
		metadata.name = C.CString(a.Name())
		metadata.command = C.CString(a.Command())
		metadata.version = C.CString(a.Version())
	})
}

//export plugin_name
func plugin_name() *C.char {
	loadMetadata()
	return metadata.name
}

//export plugin_command
func plugin_command() *C.char {
	loadMetadata()
	return metadata.command
}

//export plugin_version
func plugin_version() *C.char {
	loadMetadata()
	return metadata.version
}

//export plugin_arguments
func plugin_arguments(out **C.uint8_t) C.size_t {
	return transfer(adapter().Arguments(), out)
}

//export plugin_run
func plugin_run(in *C.uint8_t, inLen C.size_t, out **C.uint8_t) C.size_t {
	input, ok := copyInput(unsafe.Pointer(in), uint64(inLen))
	if in != nil {
		C.free(unsafe.Pointer(in))
	}
	if !ok {
		return transfer(nil, out)
	}
	return transfer(adapter().Run(input), out)
}

//export plugin_on_load
func plugin_on_load() {
	adapter().OnLoad()
}

//export plugin_on_unload
func plugin_on_unload() {
	adapter().OnUnload()
}

//export plugin_alloc
func plugin_alloc(size C.size_t) *C.uint8_t {
	return (*C.uint8_t)(C.malloc(size))
}

//export plugin_free
func plugin_free(data *C.uint8_t, size C.size_t) {
	C.free(unsafe.Pointer(data))
}

// transfer copies data into C memory and hands it to the host through out.
func transfer(data []byte, out **C.uint8_t) C.size_t {
	if out == nil {
		return 0
	}
	if len(data) == 0 {
		*out = nil
		return 0
	}
	buf := C.malloc(C.size_t(len(data)))
	if buf == nil {
		*out = nil
		return 0
	}
	copy(unsafe.Slice((*byte)(buf), len(data)), data)
	*out = (*C.uint8_t)(buf)
	return C.size_t(len(data))
}
