package native

import (
	"bytes"
	"math"
	"unsafe"
)

// copyInput copies n bytes at p into Go memory. It reports false when the
// length cannot be addressed as a Go slice.
func copyInput(p unsafe.Pointer, n uint64) ([]byte, bool) {
	if p == nil || n == 0 {
		return nil, true
	}
	if n > math.MaxInt {
		return nil, false
	}
	return bytes.Clone(unsafe.Slice((*byte)(p), int(n))), true
}
