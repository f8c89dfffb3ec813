//go:build darwin || linux || freebsd || windows

package plugin

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
	"unsafe"
)

type fakeLibrary struct {
	symbols map[string]uintptr
	closed  bool
}

func completeLibrary() *fakeLibrary {
	lib := &fakeLibrary{symbols: make(map[string]uintptr)}
	for i, name := range contractSymbols {
		lib.symbols[name] = uintptr(0x1000 + i)
	}
	return lib
}

func (l *fakeLibrary) Symbol(name string) (uintptr, error) {
	addr, ok := l.symbols[name]
	if !ok {
		return 0, errors.New("undefined symbol: " + name)
	}
	return addr, nil
}

func (l *fakeLibrary) Close() error {
	l.closed = true
	return nil
}

func TestResolveSymbols(t *testing.T) {
	addrs, err := resolveSymbols(completeLibrary())
	if err != nil {
		t.Fatalf("resolveSymbols() error = %v", err)
	}
	if len(addrs) != len(contractSymbols) {
		t.Errorf("resolveSymbols() resolved %d symbols, want %d", len(addrs), len(contractSymbols))
	}
}

func TestResolveSymbols_Missing(t *testing.T) {
	for _, missing := range contractSymbols {
		t.Run(missing, func(t *testing.T) {
			lib := completeLibrary()
			delete(lib.symbols, missing)

			_, err := resolveSymbols(lib)
			var symErr *SymbolError
			if !errors.As(err, &symErr) {
				t.Fatalf("resolveSymbols() error = %v, want *SymbolError", err)
			}
			if symErr.Symbol != missing {
				t.Errorf("SymbolError.Symbol = %q, want %q", symErr.Symbol, missing)
			}
			if !errors.Is(err, ErrMissingSymbol) {
				t.Error("error does not wrap ErrMissingSymbol")
			}
		})
	}
}

func TestResolveSymbols_NullAddress(t *testing.T) {
	lib := completeLibrary()
	lib.symbols["plugin_run"] = 0

	_, err := resolveSymbols(lib)
	var symErr *SymbolError
	if !errors.As(err, &symErr) || symErr.Symbol != "plugin_run" {
		t.Errorf("resolveSymbols() error = %v, want missing plugin_run", err)
	}
}

func TestNativeLoader_ClosesLibraryOnMissingSymbol(t *testing.T) {
	lib := completeLibrary()
	delete(lib.symbols, "plugin_free")
	nl := &NativeLoader{open: func(string) (library, error) { return lib, nil }}

	if _, err := nl.Open("libbroken.so"); err == nil {
		t.Fatal("Open() error = nil, want error")
	}
	if !lib.closed {
		t.Error("library left open after failed Open()")
	}
}

func TestNativeLoader_OpenError(t *testing.T) {
	nl := &NativeLoader{open: func(string) (library, error) { return nil, errors.New("cannot open shared object file") }}
	if _, err := nl.Open("missing.so"); err == nil {
		t.Error("Open() error = nil, want error")
	}
}

func TestNativeModule_ClosedModule(t *testing.T) {
	nm := &NativeModule{path: "libclosed.so"}
	if _, err := nm.Name(); err == nil {
		t.Error("Name() on closed module error = nil, want error")
	}
	if _, err := nm.Run([]byte{0x80}); err == nil {
		t.Error("Run() on closed module error = nil, want error")
	}
	if err := nm.Close(); err != nil {
		t.Errorf("Close() on closed module error = %v", err)
	}
}

func TestNativeExtensionRegistered(t *testing.T) {
	if _, err := GetLoaderFactory(NativeExtension()); err != nil {
		t.Errorf("no loader for %s: %v", NativeExtension(), err)
	}
}

// heap stands in for a library allocator. Blocks are cleared when freed so
// a read after free shows up as corrupted output.
type heap struct {
	blocks   map[uintptr][]byte
	allocs   int
	frees    int
	badFrees []string
}

func newHeap() *heap {
	return &heap{blocks: make(map[uintptr][]byte)}
}

func (h *heap) alloc(size uintptr) uintptr {
	buf := make([]byte, size)
	p := uintptr(unsafe.Pointer(&buf[0]))
	h.blocks[p] = buf
	h.allocs++
	return p
}

func (h *heap) free(p, size uintptr) {
	buf, ok := h.blocks[p]
	switch {
	case !ok:
		h.badFrees = append(h.badFrees, fmt.Sprintf("unknown block %#x", p))
		return
	case uintptr(len(buf)) != size:
		h.badFrees = append(h.badFrees, fmt.Sprintf("block %#x freed with size %d, allocated %d", p, size, len(buf)))
	}
	clear(buf)
	delete(h.blocks, p)
	h.frees++
}

// hand allocates a copy of data the way a library returns a buffer.
func (h *heap) hand(data []byte, out *uintptr) uintptr {
	if len(data) == 0 {
		return 0
	}
	p := h.alloc(uintptr(len(data)))
	copy(h.blocks[p], data)
	*out = p
	return uintptr(len(data))
}

// heapModule binds a module to h. handler receives a copy of the run input,
// which the module frees as the library would.
func heapModule(h *heap, handler func(input []byte) []byte) *NativeModule {
	return &NativeModule{
		path: "libheap.so",
		lib:  &fakeLibrary{},
		arguments: func(out *uintptr) uintptr {
			return h.hand([]byte{0x90}, out)
		},
		run: func(in, inLen uintptr, out *uintptr) uintptr {
			input := bytes.Clone(h.blocks[in][:inLen])
			h.free(in, inLen)
			return h.hand(handler(input), out)
		},
		alloc: h.alloc,
		free:  h.free,
	}
}

func TestNativeModule_RunOwnership(t *testing.T) {
	h := newHeap()
	var received []byte
	nm := heapModule(h, func(input []byte) []byte {
		received = input
		return []byte("result")
	})

	out, err := nm.Run([]byte{0x81, 0xa1, 'k', 0xa1, 'v'})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if string(out) != "result" {
		t.Errorf("Run() = %q, want %q (copied before free)", out, "result")
	}
	if !bytes.Equal(received, []byte{0x81, 0xa1, 'k', 0xa1, 'v'}) {
		t.Errorf("plugin received %x", received)
	}
	if h.allocs != 2 || h.frees != 2 {
		t.Errorf("allocs = %d, frees = %d, want 2 and 2", h.allocs, h.frees)
	}
	if len(h.blocks) != 0 || len(h.badFrees) != 0 {
		t.Errorf("leaked %d blocks, bad frees %v", len(h.blocks), h.badFrees)
	}
}

func TestNativeModule_RunSentinelIsNotFreed(t *testing.T) {
	h := newHeap()
	nm := heapModule(h, func([]byte) []byte { return nil })

	out, err := nm.Run([]byte{0x80})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out != nil {
		t.Errorf("Run() = %x, want nil", out)
	}
	// Only the input block: allocated by the host, freed by the library.
	if h.allocs != 1 || h.frees != 1 || len(h.badFrees) != 0 {
		t.Errorf("allocs = %d, frees = %d, bad frees %v", h.allocs, h.frees, h.badFrees)
	}
}

func TestNativeModule_RunAllocFailure(t *testing.T) {
	h := newHeap()
	ran := false
	nm := heapModule(h, func([]byte) []byte {
		ran = true
		return nil
	})
	nm.alloc = func(uintptr) uintptr { return 0 }

	if _, err := nm.Run([]byte{0x80}); err == nil {
		t.Error("Run() with null plugin_alloc error = nil, want error")
	}
	if ran {
		t.Error("plugin_run called without an input buffer")
	}
}

func TestNativeModule_RunEmptyInput(t *testing.T) {
	h := newHeap()
	nm := heapModule(h, func([]byte) []byte { return nil })
	if _, err := nm.Run(nil); err == nil {
		t.Error("Run(nil) error = nil, want error")
	}
	if h.allocs != 0 {
		t.Errorf("allocs = %d, want 0", h.allocs)
	}
}

func TestNativeModule_ArgumentsOwnership(t *testing.T) {
	h := newHeap()
	nm := heapModule(h, nil)

	out, err := nm.Arguments()
	if err != nil {
		t.Fatalf("Arguments() error = %v", err)
	}
	if !bytes.Equal(out, []byte{0x90}) {
		t.Errorf("Arguments() = %x, want 90", out)
	}
	if h.frees != 1 || len(h.blocks) != 0 || len(h.badFrees) != 0 {
		t.Errorf("frees = %d, leaked %d, bad frees %v", h.frees, len(h.blocks), h.badFrees)
	}
}
