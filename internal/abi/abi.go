// Package abi converts owned Go values into fixed-layout records a foreign
// caller can read, and takes them back afterwards.
//
// Externalize hands ownership of every allocation it makes to the caller.
// Internalize takes that ownership back and frees the memory. Each
// externalized value must be internalized exactly once; internalizing a value
// twice, or one that Externalize did not produce, is undefined and is not
// detected.
package abi

import (
	"fmt"
	"sync"
	"unsafe"

	domainerrors "github.com/Ndymario/dsd-ghidra/domain/errors"
)

// Allocator provides memory the foreign caller can read directly.
type Allocator interface {
	// Alloc returns size bytes aligned to align. size is never zero.
	Alloc(size, align uintptr) (unsafe.Pointer, error)
	// Free releases a pointer returned by Alloc. Free(nil) is a no-op.
	Free(ptr unsafe.Pointer)
}

// DefaultMaxTotalAllocations is the default limit on live bytes held by a Memory.
const DefaultMaxTotalAllocations = 100 * 1024 * 1024 // 100 MB

// maxAlign is the largest alignment Memory can honor; blocks are backed by
// []uint64.
const maxAlign = 8

// Memory is an Allocator backed by the Go heap. It keeps a reference to every
// live block so the GC cannot collect memory the foreign side still owns, and
// accounts for every allocation so tests can prove nothing leaked.
type Memory struct {
	mu             sync.Mutex
	ptrs           map[uintptr][]uint64 // ptr -> backing block
	sizes          map[uintptr]int      // ptr -> requested size
	totalAllocated int
	maxTotal       int
	allocs         int
	frees          int
	unknownFrees   int
}

// MemoryOption configures a Memory.
type MemoryOption func(*Memory)

// WithMaxTotalAllocations limits the number of live bytes. Zero or negative
// limits are ignored.
func WithMaxTotalAllocations(limit int) MemoryOption {
	return func(m *Memory) {
		if limit > 0 {
			m.maxTotal = limit
		}
	}
}

// NewMemory creates an empty Memory.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		ptrs:     make(map[uintptr][]uint64),
		sizes:    make(map[uintptr]int),
		maxTotal: DefaultMaxTotalAllocations,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Alloc implements Allocator.
func (m *Memory) Alloc(size, align uintptr) (unsafe.Pointer, error) {
	if size == 0 {
		return nil, nil
	}
	if align == 0 || align > maxAlign || align&(align-1) != 0 {
		return nil, fmt.Errorf("abi: unsupported alignment %d", align)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if size > uintptr(m.maxTotal) || m.totalAllocated+int(size) > m.maxTotal {
		return nil, &domainerrors.MemoryError{
			Requested: int(size),
			Current:   m.totalAllocated,
			Limit:     m.maxTotal,
		}
	}

	buf := make([]uint64, (size+maxAlign-1)/maxAlign)
	ptr := unsafe.Pointer(&buf[0])

	m.ptrs[uintptr(ptr)] = buf // pin until Free
	m.sizes[uintptr(ptr)] = int(size)
	m.totalAllocated += int(size)
	m.allocs++

	return ptr, nil
}

// Free implements Allocator. Untracked pointers are counted and otherwise
// ignored, so a double free shows up in Stats instead of corrupting the heap.
func (m *Memory) Free(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := uintptr(ptr)
	if _, ok := m.ptrs[key]; !ok {
		m.unknownFrees++
		return
	}
	m.totalAllocated -= m.sizes[key]
	delete(m.ptrs, key)
	delete(m.sizes, key)
	m.frees++
}

// MemoryStats is a snapshot of a Memory's bookkeeping.
type MemoryStats struct {
	Live         int // blocks currently allocated
	Bytes        int // bytes currently allocated
	Allocs       int // total successful Alloc calls
	Frees        int // total Free calls that released a block
	UnknownFrees int // Free calls with a pointer that was not live
}

// Stats returns the current allocation counters.
func (m *Memory) Stats() MemoryStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	return MemoryStats{
		Live:         len(m.ptrs),
		Bytes:        m.totalAllocated,
		Allocs:       m.allocs,
		Frees:        m.frees,
		UnknownFrees: m.unknownFrees,
	}
}
