package abi

import (
	"errors"
	"strings"
	"unicode/utf8"
	"unsafe"

	domainerrors "github.com/Ndymario/dsd-ghidra/domain/errors"
)

var (
	// ErrNulByte is reported for text containing a NUL byte; the foreign side
	// would read it as a shorter string.
	ErrNulByte = errors.New("embedded NUL byte")
	// ErrInvalidUTF8 is reported for text that is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("invalid UTF-8")
)

// String is the foreign layout of text: a char* to NUL-terminated UTF-8.
type String struct {
	Ptr *byte
}

// IsNull reports whether the string pointer is null.
func (s String) IsNull() bool {
	return s.Ptr == nil
}

// View reads the text the foreign side would see, without taking ownership.
func (s String) View() string {
	if s.Ptr == nil {
		return ""
	}
	return string(unsafe.Slice(s.Ptr, cstrlen(s.Ptr)))
}

func cstrlen(p *byte) int {
	n := 0
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}
	return n
}

func checkText(op, v string) error {
	if strings.IndexByte(v, 0) >= 0 {
		return &domainerrors.EncodingError{Op: op, Value: v, Err: ErrNulByte}
	}
	if !utf8.ValidString(v) {
		return &domainerrors.EncodingError{Op: op, Value: v, Err: ErrInvalidUTF8}
	}
	return nil
}

func externalizeText(a Allocator, v string) (String, error) {
	if err := checkText("externalize", v); err != nil {
		return String{}, err
	}
	buf, err := allocArray[byte](a, len(v)+1)
	if err != nil {
		return String{}, err
	}
	copy(buf, v)
	buf[len(v)] = 0
	return String{Ptr: &buf[0]}, nil
}

func internalizeText(a Allocator, s String) (string, error) {
	v := s.View()
	a.Free(unsafe.Pointer(s.Ptr))
	if !utf8.ValidString(v) {
		return "", &domainerrors.EncodingError{Op: "internalize", Value: v, Err: ErrInvalidUTF8}
	}
	return v, nil
}

type strCodec struct{}

// Str returns the codec for text. The empty string still gets a non-null
// pointer to a lone NUL.
func Str() Codec[string, String] {
	return strCodec{}
}

func (strCodec) Externalize(a Allocator, v string) (String, error) {
	return externalizeText(a, v)
}

func (strCodec) Internalize(a Allocator, s String) (string, error) {
	if s.Ptr == nil {
		return "", nil
	}
	return internalizeText(a, s)
}

func (strCodec) Release(a Allocator, s String) {
	if s.Ptr != nil {
		a.Free(unsafe.Pointer(s.Ptr))
	}
}

type optStrCodec struct{}

// OptStr returns the codec for optional text: nil maps to a null pointer.
func OptStr() Codec[*string, String] {
	return optStrCodec{}
}

func (optStrCodec) Externalize(a Allocator, v *string) (String, error) {
	if v == nil {
		return String{}, nil
	}
	return externalizeText(a, *v)
}

func (optStrCodec) Internalize(a Allocator, s String) (*string, error) {
	if s.Ptr == nil {
		return nil, nil
	}
	v, err := internalizeText(a, s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (optStrCodec) Release(a Allocator, s String) {
	if s.Ptr != nil {
		a.Free(unsafe.Pointer(s.Ptr))
	}
}

// ErrNullString is reported by Borrow for a null pointer.
var ErrNullString = errors.New("null string pointer")

// Borrow reads a caller-owned C string without taking ownership. The memory
// is neither freed nor retained.
func Borrow(s String) (string, error) {
	if s.Ptr == nil {
		return "", &domainerrors.EncodingError{Op: "borrow", Err: ErrNullString}
	}
	v := s.View()
	if !utf8.ValidString(v) {
		return "", &domainerrors.EncodingError{Op: "borrow", Value: v, Err: ErrInvalidUTF8}
	}
	return v, nil
}
