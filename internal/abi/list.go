package abi

import (
	"errors"
	"fmt"
	"math"
	"unsafe"

	domainerrors "github.com/Ndymario/dsd-ghidra/domain/errors"
)

// MaxListLength is the largest element count a List can describe.
const MaxListLength = math.MaxUint32

// List is the foreign layout of an ordered sequence:
//
//	struct { T *ptr; uint32_t len; }
//
// Ptr is nil exactly when Len is zero. JNA reads through any non-null pointer
// it is handed, so an empty list must never carry a dangling one.
type List[T any] struct {
	Ptr *T
	Len uint32
}

// IsNull reports whether the list has no backing block.
func (l List[T]) IsNull() bool {
	return l.Ptr == nil
}

// View returns the elements the foreign side would read, without taking
// ownership. It returns nil for a null list.
func (l List[T]) View() []T {
	if l.Ptr == nil {
		return nil
	}
	return unsafe.Slice(l.Ptr, l.Len)
}

func checkLength(n uint64, max uint64) error {
	if n > max {
		return &domainerrors.LengthOverflowError{Len: n, Max: max}
	}
	return nil
}

// allocArray allocates a contiguous block for n values of F.
func allocArray[F any](a Allocator, n int) ([]F, error) {
	if err := checkLength(uint64(n), MaxListLength); err != nil {
		return nil, err
	}
	var zero F
	size, align := unsafe.Sizeof(zero), unsafe.Alignof(zero)
	if size == 0 {
		size = 1
	}
	if uintptr(n) > ^uintptr(0)/size {
		return nil, &domainerrors.LengthOverflowError{Len: uint64(n), Max: uint64(^uintptr(0) / size)}
	}
	ptr, err := a.Alloc(size*uintptr(n), align)
	if err != nil {
		return nil, err
	}
	return unsafe.Slice((*F)(ptr), n), nil
}

type listCodec[S, F any] struct {
	elem Codec[S, F]
}

// ListOf returns a codec for slices whose elements convert with elem.
// Element order is preserved in both directions.
func ListOf[S, F any](elem Codec[S, F]) Codec[[]S, List[F]] {
	return listCodec[S, F]{elem: elem}
}

func (c listCodec[S, F]) Externalize(a Allocator, items []S) (List[F], error) {
	if len(items) == 0 {
		return List[F]{}, nil
	}
	block, err := allocArray[F](a, len(items))
	if err != nil {
		return List[F]{}, err
	}
	for i, item := range items {
		f, err := c.elem.Externalize(a, item)
		if err != nil {
			for j := 0; j < i; j++ {
				c.elem.Release(a, block[j])
			}
			a.Free(unsafe.Pointer(&block[0]))
			return List[F]{}, fmt.Errorf("element %d: %w", i, err)
		}
		block[i] = f
	}
	return List[F]{Ptr: &block[0], Len: uint32(len(items))}, nil
}

func (c listCodec[S, F]) Internalize(a Allocator, l List[F]) ([]S, error) {
	if l.Ptr == nil {
		return nil, nil
	}
	block := unsafe.Slice(l.Ptr, l.Len)
	items := make([]S, len(block))
	var errs []error
	for i, f := range block {
		s, err := c.elem.Internalize(a, f)
		if err != nil {
			errs = append(errs, fmt.Errorf("element %d: %w", i, err))
			continue
		}
		items[i] = s
	}
	a.Free(unsafe.Pointer(l.Ptr))
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return items, nil
}

func (c listCodec[S, F]) Release(a Allocator, l List[F]) {
	if l.Ptr == nil {
		return
	}
	for _, f := range unsafe.Slice(l.Ptr, l.Len) {
		c.elem.Release(a, f)
	}
	a.Free(unsafe.Pointer(l.Ptr))
}

type bytesCodec struct{}

// Bytes returns the codec for byte slices. It behaves like
// ListOf(Scalar[uint8]()) but copies the data in one go.
func Bytes() Codec[[]byte, List[byte]] {
	return bytesCodec{}
}

func (bytesCodec) Externalize(a Allocator, b []byte) (List[byte], error) {
	if len(b) == 0 {
		return List[byte]{}, nil
	}
	block, err := allocArray[byte](a, len(b))
	if err != nil {
		return List[byte]{}, err
	}
	copy(block, b)
	return List[byte]{Ptr: &block[0], Len: uint32(len(b))}, nil
}

func (bytesCodec) Internalize(a Allocator, l List[byte]) ([]byte, error) {
	if l.Ptr == nil {
		return nil, nil
	}
	b := make([]byte, l.Len)
	copy(b, unsafe.Slice(l.Ptr, l.Len))
	a.Free(unsafe.Pointer(l.Ptr))
	return b, nil
}

func (bytesCodec) Release(a Allocator, l List[byte]) {
	if l.Ptr != nil {
		a.Free(unsafe.Pointer(l.Ptr))
	}
}
