// Package errors provides domain-specific error types for the bridge.
// All error types support error unwrapping via errors.As() and errors.Is().
package errors

import (
	stdErrors "errors"
	"fmt"
	"io/fs"

	"github.com/Ndymario/dsd-ghidra/domain/entities"
)

// ErrorDetail is an alias to entities.ErrorDetail for convenience.
type ErrorDetail = entities.ErrorDetail

// DetailedError is an interface for custom error types that can convert themselves
// to a structured ErrorDetail.
type DetailedError interface {
	error
	ToErrorDetail() *entities.ErrorDetail
}

// ToErrorDetail converts a Go error to our structured ErrorDetail.
// This function recognizes custom error types and categorizes them appropriately.
func ToErrorDetail(err error) *entities.ErrorDetail {
	if err == nil {
		return nil
	}

	var e *entities.ErrorDetail
	if stdErrors.As(err, &e) {
		return e
	}

	var de DetailedError
	if stdErrors.As(err, &de) {
		detail := de.ToErrorDetail()
		// Keep the outer context ("load sync data: ...") in the message.
		detail.Message = err.Error()
		return detail
	}

	return &entities.ErrorDetail{
		Message: err.Error(),
		Type:    "internal",
	}
}

// RomError represents a ROM image that does not parse.
type RomError struct {
	Err     error
	Section string // e.g. "header", "arm9", "overlay table"
	Offset  uint32
}

func (e *RomError) Error() string {
	if e.Offset != 0 {
		return fmt.Sprintf("malformed rom %s at 0x%x: %v", e.Section, e.Offset, e.Err)
	}
	return fmt.Sprintf("malformed rom %s: %v", e.Section, e.Err)
}

func (e *RomError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *RomError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "rom", Code: e.Section}
}

// EncodingError represents text that cannot cross the boundary: an embedded
// NUL byte when externalizing, or bytes that are not UTF-8 either way.
type EncodingError struct {
	Err   error
	Op    string // "externalize" or "internalize"
	Value string
}

func (e *EncodingError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("%s %q: %v", e.Op, e.Value, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *EncodingError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "encoding", Code: e.Op}
}

// ConfigError represents a dsd config that cannot be loaded or validated.
type ConfigError struct {
	Err   error
	Path  string
	Field string
}

func (e *ConfigError) Error() string {
	switch {
	case e.Field != "" && e.Path != "":
		return fmt.Sprintf("config %s: field '%s': %v", e.Path, e.Field, e.Err)
	case e.Field != "":
		return fmt.Sprintf("config validation failed for field '%s': %v", e.Field, e.Err)
	case e.Path != "":
		return fmt.Sprintf("config %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("config validation failed: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ConfigError) ToErrorDetail() *entities.ErrorDetail {
	detail := &entities.ErrorDetail{Message: e.Error(), Type: "config", Code: e.Field}
	detail.IsNotFound = stdErrors.Is(e.Err, fs.ErrNotExist)
	return detail
}

// ParseError represents a malformed line in a dsd text file
// (symbols.txt, delinks.txt).
type ParseError struct {
	Err  error
	File string
	Line int
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ParseError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "parse", Code: fmt.Sprintf("line_%d", e.Line)}
}

// LengthOverflowError represents a sequence too long for the uint32 count
// field of a foreign list.
type LengthOverflowError struct {
	Len uint64
	Max uint64
}

func (e *LengthOverflowError) Error() string {
	return fmt.Sprintf("sequence length %d exceeds maximum %d", e.Len, e.Max)
}

// ToErrorDetail implements DetailedError.
func (e *LengthOverflowError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "overflow", Code: "list_length"}
}

// SchemaError represents a schema generation or validation error.
type SchemaError struct {
	Err  error
	Type string
}

func (e *SchemaError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("schema error for type %s: %v", e.Type, e.Err)
	}
	return fmt.Sprintf("schema error: %v", e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *SchemaError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "validation", Code: "schema"}
}

// MemoryError represents a memory allocation failure.
type MemoryError struct {
	Requested int // Requested allocation size
	Current   int // Current total allocated
	Limit     int // Maximum allowed
}

func (e *MemoryError) Error() string {
	if e.Limit == 0 {
		return fmt.Sprintf("memory allocation failed: requested %d bytes", e.Requested)
	}
	return fmt.Sprintf("memory allocation failed: requested %d bytes, current %d bytes, limit %d bytes",
		e.Requested, e.Current, e.Limit)
}

// ToErrorDetail implements DetailedError.
func (e *MemoryError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "memory", Code: "memory_limit"}
}
