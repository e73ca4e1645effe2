package abi

import (
	"errors"
)

// Codec converts between an owned value S and its foreign layout F.
//
// Externalize consumes v and returns a value whose allocations now belong to
// the caller. On error nothing is left allocated.
//
// Internalize takes ownership of f back, frees its memory and rebuilds S.
// The memory is released even when an error is returned.
//
// Release frees f without rebuilding anything. It unwinds values that were
// externalized as part of a larger value that failed.
type Codec[S, F any] interface {
	Externalize(a Allocator, v S) (F, error)
	Internalize(a Allocator, f F) (S, error)
	Release(a Allocator, f F)
}

// ScalarType is the set of types whose foreign layout equals their Go layout.
type ScalarType interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~int8 | ~int16 | ~int32 | ~int64 |
		~float32 | ~float64
}

type scalarCodec[T ScalarType] struct{}

// Scalar returns the pass-through codec for T. It never allocates.
func Scalar[T ScalarType]() Codec[T, T] {
	return scalarCodec[T]{}
}

func (scalarCodec[T]) Externalize(_ Allocator, v T) (T, error) { return v, nil }
func (scalarCodec[T]) Internalize(_ Allocator, f T) (T, error) { return f, nil }
func (scalarCodec[T]) Release(Allocator, T) {}

// Rollback records the fields of a record as they are externalized so they
// can be released if a later field fails.
type Rollback struct {
	a    Allocator
	undo []func()
}

// NewRollback starts an empty Rollback over a.
func NewRollback(a Allocator) *Rollback {
	return &Rollback{a: a}
}

// Fail releases everything recorded so far, newest first, and returns err.
func (r *Rollback) Fail(err error) error {
	for i := len(r.undo) - 1; i >= 0; i-- {
		r.undo[i]()
	}
	r.undo = nil
	return err
}

// Put externalizes v with c into *dst and records how to release it.
func Put[S, F any](r *Rollback, c Codec[S, F], v S, dst *F) error {
	f, err := c.Externalize(r.a, v)
	if err != nil {
		return err
	}
	*dst = f
	r.undo = append(r.undo, func() { c.Release(r.a, f) })
	return nil
}

// Reclaim internalizes the fields of a record. Every field is taken back even
// after one fails, so no field's memory is stranded; the errors are joined.
type Reclaim struct {
	a    Allocator
	errs []error
}

// NewReclaim starts a Reclaim over a.
func NewReclaim(a Allocator) *Reclaim {
	return &Reclaim{a: a}
}

// Err returns the joined field errors, or nil.
func (r *Reclaim) Err() error {
	return errors.Join(r.errs...)
}

// Take internalizes f with c. On error it records the failure and returns
// the zero S.
func Take[S, F any](r *Reclaim, c Codec[S, F], f F) S {
	s, err := c.Internalize(r.a, f)
	if err != nil {
		r.errs = append(r.errs, err)
	}
	return s
}
