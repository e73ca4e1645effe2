package ffi

import (
	"fmt"

	"github.com/Ndymario/dsd-ghidra/domain/entities"
	"github.com/Ndymario/dsd-ghidra/internal/abi"
)

// Module is the foreign layout of entities.Module.
type Module struct {
	BaseAddress uint32
	BssSize     uint32
	Code        abi.List[byte]
}

// Overlay is the foreign layout of entities.Overlay.
type Overlay struct {
	ID         uint16
	Compressed uint8
	FileID     uint32
	Module     Module
}

// Autoload is the foreign layout of entities.Autoload.
type Autoload struct {
	Kind   uint8
	Index  uint32
	Module Module
}

// LoaderData is the foreign layout of entities.LoaderData.
type LoaderData struct {
	Title    abi.String
	GameCode abi.String

	Arm9         Module
	Arm9Entry    uint32
	Autoloads    abi.List[Autoload]
	Arm9Overlays abi.List[Overlay]

	Arm7         Module
	Arm7Entry    uint32
	Arm7Overlays abi.List[Overlay]
}

func boolToU8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

type moduleCodec struct{}

func (moduleCodec) Externalize(a abi.Allocator, m entities.Module) (Module, error) {
	code, err := abi.Bytes().Externalize(a, m.Code)
	if err != nil {
		return Module{}, fmt.Errorf("code: %w", err)
	}
	return Module{BaseAddress: m.BaseAddress, BssSize: m.BssSize, Code: code}, nil
}

func (moduleCodec) Internalize(a abi.Allocator, raw Module) (entities.Module, error) {
	code, err := abi.Bytes().Internalize(a, raw.Code)
	return entities.Module{BaseAddress: raw.BaseAddress, BssSize: raw.BssSize, Code: code}, err
}

func (moduleCodec) Release(a abi.Allocator, raw Module) {
	abi.Bytes().Release(a, raw.Code)
}

type overlayCodec struct{}

func (overlayCodec) Externalize(a abi.Allocator, o entities.Overlay) (Overlay, error) {
	module, err := moduleCodec{}.Externalize(a, o.Module)
	if err != nil {
		return Overlay{}, fmt.Errorf("overlay %d: %w", o.ID, err)
	}
	return Overlay{ID: o.ID, Compressed: boolToU8(o.Compressed), FileID: o.FileID, Module: module}, nil
}

func (overlayCodec) Internalize(a abi.Allocator, raw Overlay) (entities.Overlay, error) {
	module, err := moduleCodec{}.Internalize(a, raw.Module)
	return entities.Overlay{ID: raw.ID, Compressed: raw.Compressed != 0, FileID: raw.FileID, Module: module}, err
}

func (overlayCodec) Release(a abi.Allocator, raw Overlay) {
	moduleCodec{}.Release(a, raw.Module)
}

type autoloadCodec struct{}

func (autoloadCodec) Externalize(a abi.Allocator, al entities.Autoload) (Autoload, error) {
	module, err := moduleCodec{}.Externalize(a, al.Module)
	if err != nil {
		return Autoload{}, fmt.Errorf("autoload %s: %w", al.Kind, err)
	}
	return Autoload{Kind: uint8(al.Kind), Index: al.Index, Module: module}, nil
}

func (autoloadCodec) Internalize(a abi.Allocator, raw Autoload) (entities.Autoload, error) {
	module, err := moduleCodec{}.Internalize(a, raw.Module)
	return entities.Autoload{Kind: entities.AutoloadKind(raw.Kind), Index: raw.Index, Module: module}, err
}

func (autoloadCodec) Release(a abi.Allocator, raw Autoload) {
	moduleCodec{}.Release(a, raw.Module)
}

type loaderDataCodec struct{}

// LoaderDataCodec returns the codec for the data behind get_loader_data.
func LoaderDataCodec() abi.Codec[entities.LoaderData, LoaderData] {
	return loaderDataCodec{}
}

var (
	autoloads = abi.ListOf[entities.Autoload, Autoload](autoloadCodec{})
	overlays  = abi.ListOf[entities.Overlay, Overlay](overlayCodec{})
)

func (loaderDataCodec) Externalize(a abi.Allocator, ld entities.LoaderData) (LoaderData, error) {
	raw := LoaderData{Arm9Entry: ld.Arm9Entry, Arm7Entry: ld.Arm7Entry}
	rb := abi.NewRollback(a)

	steps := []struct {
		field string
		put   func() error
	}{
		{"title", func() error { return abi.Put(rb, abi.Str(), ld.Title, &raw.Title) }},
		{"game code", func() error { return abi.Put(rb, abi.Str(), ld.GameCode, &raw.GameCode) }},
		{"arm9", func() error { return abi.Put[entities.Module, Module](rb, moduleCodec{}, ld.Arm9, &raw.Arm9) }},
		{"autoloads", func() error { return abi.Put(rb, autoloads, ld.Autoloads, &raw.Autoloads) }},
		{"arm9 overlays", func() error { return abi.Put(rb, overlays, ld.Arm9Overlays, &raw.Arm9Overlays) }},
		{"arm7", func() error { return abi.Put[entities.Module, Module](rb, moduleCodec{}, ld.Arm7, &raw.Arm7) }},
		{"arm7 overlays", func() error { return abi.Put(rb, overlays, ld.Arm7Overlays, &raw.Arm7Overlays) }},
	}
	for _, step := range steps {
		if err := step.put(); err != nil {
			return LoaderData{}, rb.Fail(fmt.Errorf("%s: %w", step.field, err))
		}
	}
	return raw, nil
}

func (loaderDataCodec) Internalize(a abi.Allocator, raw LoaderData) (entities.LoaderData, error) {
	rc := abi.NewReclaim(a)
	ld := entities.LoaderData{
		Title:        abi.Take(rc, abi.Str(), raw.Title),
		GameCode:     abi.Take(rc, abi.Str(), raw.GameCode),
		Arm9:         abi.Take[entities.Module, Module](rc, moduleCodec{}, raw.Arm9),
		Arm9Entry:    raw.Arm9Entry,
		Autoloads:    abi.Take(rc, autoloads, raw.Autoloads),
		Arm9Overlays: abi.Take(rc, overlays, raw.Arm9Overlays),
		Arm7:         abi.Take[entities.Module, Module](rc, moduleCodec{}, raw.Arm7),
		Arm7Entry:    raw.Arm7Entry,
		Arm7Overlays: abi.Take(rc, overlays, raw.Arm7Overlays),
	}
	return ld, rc.Err()
}

func (loaderDataCodec) Release(a abi.Allocator, raw LoaderData) {
	abi.Str().Release(a, raw.Title)
	abi.Str().Release(a, raw.GameCode)
	moduleCodec{}.Release(a, raw.Arm9)
	autoloads.Release(a, raw.Autoloads)
	overlays.Release(a, raw.Arm9Overlays)
	moduleCodec{}.Release(a, raw.Arm7)
	overlays.Release(a, raw.Arm7Overlays)
}
