//go:build cgo

// Package cmem provides an abi.Allocator backed by the C heap. Records handed
// to a foreign runtime outlive the cgo call that produced them, so they cannot
// live on the Go heap.
package cmem

/*
#include <stdlib.h>
*/
import "C"

import (
	"sync/atomic"
	"unsafe"

	domainerrors "github.com/Ndymario/dsd-ghidra/domain/errors"
)

// Allocator allocates with malloc and frees with free. The zero value is
// ready to use. malloc's alignment covers every layout the abi package
// produces.
type Allocator struct {
	live atomic.Int64
}

// Alloc implements abi.Allocator.
func (a *Allocator) Alloc(size, _ uintptr) (unsafe.Pointer, error) {
	if size == 0 {
		return nil, nil
	}
	ptr := C.malloc(C.size_t(size))
	if ptr == nil {
		return nil, &domainerrors.MemoryError{Requested: int(size)}
	}
	a.live.Add(1)
	return ptr, nil
}

// Free implements abi.Allocator.
func (a *Allocator) Free(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}
	C.free(ptr)
	a.live.Add(-1)
}

// Live returns the number of blocks allocated and not yet freed.
func (a *Allocator) Live() int64 {
	return a.live.Load()
}
