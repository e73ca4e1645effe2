// Package dsdghidra is the native side of the dsd-ghidra plugin. It parses
// DS ROMs and dsd projects and hands the results to the JVM as C records
// (see package ffi), then takes them back when the plugin is done with them.
//
// Every Get method either fills its out slot and returns true, or returns
// false, logs why, and leaves the slot untouched. Each successful Get must be
// matched by exactly one Free of the same slot.
package dsdghidra

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/Ndymario/dsd-ghidra/application/loader"
	"github.com/Ndymario/dsd-ghidra/application/project"
	domainerrors "github.com/Ndymario/dsd-ghidra/domain/errors"
	"github.com/Ndymario/dsd-ghidra/domain/ports"
	"github.com/Ndymario/dsd-ghidra/ffi"
	"github.com/Ndymario/dsd-ghidra/infrastructure/rom"
	"github.com/Ndymario/dsd-ghidra/internal/abi"
)

var errNilSlot = errors.New("output slot is null")

// IsValidRom reports whether data parses as a DS ROM. It allocates nothing
// the caller has to free.
func IsValidRom(data []byte) bool {
	return rom.IsValid(data)
}

// Bridge converts between domain values and the C records the plugin reads.
type Bridge struct {
	alloc  abi.Allocator
	rom    ports.RomParser
	logger *slog.Logger

	projectOnce sync.Once
	project     *project.Loader
	projectErr  error
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the logger failures are reported to. Defaults to
// slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithRomParser replaces the ROM parser.
func WithRomParser(p ports.RomParser) Option {
	return func(b *Bridge) {
		b.rom = p
	}
}

// WithProjectLoader replaces the dsd project loader.
func WithProjectLoader(l *project.Loader) Option {
	return func(b *Bridge) {
		if l != nil {
			b.projectOnce.Do(func() { b.project = l })
		}
	}
}

// NewBridge creates a Bridge that places every record it hands out in
// memory from alloc.
func NewBridge(alloc abi.Allocator, opts ...Option) *Bridge {
	b := &Bridge{
		alloc:  alloc,
		rom:    rom.NewParser(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Bridge) projectLoader() (*project.Loader, error) {
	b.projectOnce.Do(func() {
		b.project, b.projectErr = project.NewLoader(project.WithLogger(b.logger))
	})
	return b.project, b.projectErr
}

// fail logs err for op and returns false.
func (b *Bridge) fail(op string, err error) bool {
	detail := domainerrors.ToErrorDetail(err)
	b.logger.Error(op+" failed",
		slog.String("kind", detail.Type),
		slog.String("error", detail.Message),
	)
	return false
}

// GetLoaderData parses data as a DS ROM and writes its loader data to out.
func (b *Bridge) GetLoaderData(data []byte, out *ffi.LoaderData) bool {
	const op = "get_loader_data"
	if out == nil {
		return b.fail(op, errNilSlot)
	}

	ld, err := loader.Load(b.rom, data)
	if err != nil {
		return b.fail(op, err)
	}
	raw, err := ffi.LoaderDataCodec().Externalize(b.alloc, *ld)
	if err != nil {
		return b.fail(op, err)
	}

	*out = raw
	b.logger.Debug(op,
		slog.String("title", ld.Title),
		slog.Int("autoloads", len(ld.Autoloads)),
		slog.Int("arm9_overlays", len(ld.Arm9Overlays)),
		slog.Int("arm7_overlays", len(ld.Arm7Overlays)),
	)
	return true
}

// FreeLoaderData takes back a slot filled by GetLoaderData and releases it.
// The slot is zeroed. A nil slot is ignored.
func (b *Bridge) FreeLoaderData(data *ffi.LoaderData) {
	if data == nil {
		return
	}
	if _, err := ffi.LoaderDataCodec().Internalize(b.alloc, *data); err != nil {
		// The memory is released regardless.
		b.logger.Warn("free_loader_data", slog.Any("error", err))
	}
	*data = ffi.LoaderData{}
}

// GetSyncData loads the dsd project whose config.yaml is at the
// NUL-terminated path configPath and writes its sync data to out.
// configPath stays owned by the caller.
func (b *Bridge) GetSyncData(configPath *byte, out *ffi.SyncData) bool {
	const op = "get_dsd_sync_data"
	if out == nil {
		return b.fail(op, errNilSlot)
	}

	path, err := abi.Borrow(abi.String{Ptr: configPath})
	if err != nil {
		return b.fail(op, err)
	}
	l, err := b.projectLoader()
	if err != nil {
		return b.fail(op, err)
	}
	data, err := l.Load(path)
	if err != nil {
		return b.fail(op, err)
	}
	raw, err := ffi.SyncDataCodec().Externalize(b.alloc, *data)
	if err != nil {
		return b.fail(op, err)
	}

	*out = raw
	b.logger.Debug(op, slog.String("config", path))
	return true
}

// FreeSyncData takes back a slot filled by GetSyncData and releases it.
// The slot is zeroed. A nil slot is ignored.
func (b *Bridge) FreeSyncData(data *ffi.SyncData) {
	if data == nil {
		return
	}
	if _, err := ffi.SyncDataCodec().Internalize(b.alloc, *data); err != nil {
		b.logger.Warn("free_dsd_sync_data", slog.Any("error", err))
	}
	*data = ffi.SyncData{}
}
