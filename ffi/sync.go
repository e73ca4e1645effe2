package ffi

import (
	"fmt"

	"github.com/Ndymario/dsd-ghidra/domain/entities"
	"github.com/Ndymario/dsd-ghidra/internal/abi"
)

// Section is the foreign layout of entities.Section.
type Section struct {
	Name      abi.String
	Start     uint32
	End       uint32
	Kind      uint8
	Alignment uint32
}

// Symbol is the foreign layout of entities.Symbol.
type Symbol struct {
	Name    abi.String
	Address uint32
	Kind    uint8
	Mode    uint8
	Size    uint32
}

// SyncModule is the foreign layout of entities.SyncModule. A module without
// a configured hash has a null Hash.
type SyncModule struct {
	Name        abi.String
	Hash        abi.String
	BaseAddress uint32
	Sections    abi.List[Section]
	Symbols     abi.List[Symbol]
}

// SyncAutoload is the foreign layout of entities.SyncAutoload.
type SyncAutoload struct {
	Kind   uint8
	Index  uint32
	Module SyncModule
}

// SyncOverlay is the foreign layout of entities.SyncOverlay.
type SyncOverlay struct {
	ID     uint16
	Module SyncModule
}

// SyncData is the foreign layout of entities.SyncData.
type SyncData struct {
	Arm9         SyncModule
	Autoloads    abi.List[SyncAutoload]
	Arm9Overlays abi.List[SyncOverlay]
}

type sectionCodec struct{}

func (sectionCodec) Externalize(a abi.Allocator, s entities.Section) (Section, error) {
	name, err := abi.Str().Externalize(a, s.Name)
	if err != nil {
		return Section{}, err
	}
	return Section{Name: name, Start: s.Start, End: s.End, Kind: uint8(s.Kind), Alignment: s.Alignment}, nil
}

func (sectionCodec) Internalize(a abi.Allocator, raw Section) (entities.Section, error) {
	name, err := abi.Str().Internalize(a, raw.Name)
	return entities.Section{
		Name:      name,
		Start:     raw.Start,
		End:       raw.End,
		Kind:      entities.SectionKind(raw.Kind),
		Alignment: raw.Alignment,
	}, err
}

func (sectionCodec) Release(a abi.Allocator, raw Section) {
	abi.Str().Release(a, raw.Name)
}

type symbolCodec struct{}

func (symbolCodec) Externalize(a abi.Allocator, s entities.Symbol) (Symbol, error) {
	name, err := abi.Str().Externalize(a, s.Name)
	if err != nil {
		return Symbol{}, err
	}
	return Symbol{Name: name, Address: s.Address, Kind: uint8(s.Kind), Mode: uint8(s.Mode), Size: s.Size}, nil
}

func (symbolCodec) Internalize(a abi.Allocator, raw Symbol) (entities.Symbol, error) {
	name, err := abi.Str().Internalize(a, raw.Name)
	return entities.Symbol{
		Name:    name,
		Address: raw.Address,
		Kind:    entities.SymbolKind(raw.Kind),
		Mode:    entities.InstructionMode(raw.Mode),
		Size:    raw.Size,
	}, err
}

func (symbolCodec) Release(a abi.Allocator, raw Symbol) {
	abi.Str().Release(a, raw.Name)
}

var (
	sections      = abi.ListOf[entities.Section, Section](sectionCodec{})
	symbols       = abi.ListOf[entities.Symbol, Symbol](symbolCodec{})
	syncAutoloads = abi.ListOf[entities.SyncAutoload, SyncAutoload](syncAutoloadCodec{})
	syncOverlays  = abi.ListOf[entities.SyncOverlay, SyncOverlay](syncOverlayCodec{})
)

type syncModuleCodec struct{}

func (syncModuleCodec) Externalize(a abi.Allocator, m entities.SyncModule) (SyncModule, error) {
	raw := SyncModule{BaseAddress: m.BaseAddress}
	rb := abi.NewRollback(a)
	if err := abi.Put(rb, abi.Str(), m.Name, &raw.Name); err != nil {
		return SyncModule{}, rb.Fail(fmt.Errorf("name: %w", err))
	}
	if err := abi.Put(rb, abi.OptStr(), m.Hash, &raw.Hash); err != nil {
		return SyncModule{}, rb.Fail(fmt.Errorf("module %s: hash: %w", m.Name, err))
	}
	if err := abi.Put(rb, sections, m.Sections, &raw.Sections); err != nil {
		return SyncModule{}, rb.Fail(fmt.Errorf("module %s: sections: %w", m.Name, err))
	}
	if err := abi.Put(rb, symbols, m.Symbols, &raw.Symbols); err != nil {
		return SyncModule{}, rb.Fail(fmt.Errorf("module %s: symbols: %w", m.Name, err))
	}
	return raw, nil
}

func (syncModuleCodec) Internalize(a abi.Allocator, raw SyncModule) (entities.SyncModule, error) {
	rc := abi.NewReclaim(a)
	m := entities.SyncModule{
		Name:        abi.Take(rc, abi.Str(), raw.Name),
		Hash:        abi.Take(rc, abi.OptStr(), raw.Hash),
		BaseAddress: raw.BaseAddress,
		Sections:    abi.Take(rc, sections, raw.Sections),
		Symbols:     abi.Take(rc, symbols, raw.Symbols),
	}
	return m, rc.Err()
}

func (syncModuleCodec) Release(a abi.Allocator, raw SyncModule) {
	abi.Str().Release(a, raw.Name)
	abi.OptStr().Release(a, raw.Hash)
	sections.Release(a, raw.Sections)
	symbols.Release(a, raw.Symbols)
}

type syncAutoloadCodec struct{}

func (syncAutoloadCodec) Externalize(a abi.Allocator, al entities.SyncAutoload) (SyncAutoload, error) {
	module, err := syncModuleCodec{}.Externalize(a, al.Module)
	if err != nil {
		return SyncAutoload{}, err
	}
	return SyncAutoload{Kind: uint8(al.Kind), Index: al.Index, Module: module}, nil
}

func (syncAutoloadCodec) Internalize(a abi.Allocator, raw SyncAutoload) (entities.SyncAutoload, error) {
	module, err := syncModuleCodec{}.Internalize(a, raw.Module)
	return entities.SyncAutoload{Kind: entities.AutoloadKind(raw.Kind), Index: raw.Index, Module: module}, err
}

func (syncAutoloadCodec) Release(a abi.Allocator, raw SyncAutoload) {
	syncModuleCodec{}.Release(a, raw.Module)
}

type syncOverlayCodec struct{}

func (syncOverlayCodec) Externalize(a abi.Allocator, o entities.SyncOverlay) (SyncOverlay, error) {
	module, err := syncModuleCodec{}.Externalize(a, o.Module)
	if err != nil {
		return SyncOverlay{}, err
	}
	return SyncOverlay{ID: o.ID, Module: module}, nil
}

func (syncOverlayCodec) Internalize(a abi.Allocator, raw SyncOverlay) (entities.SyncOverlay, error) {
	module, err := syncModuleCodec{}.Internalize(a, raw.Module)
	return entities.SyncOverlay{ID: raw.ID, Module: module}, err
}

func (syncOverlayCodec) Release(a abi.Allocator, raw SyncOverlay) {
	syncModuleCodec{}.Release(a, raw.Module)
}

type syncDataCodec struct{}

// SyncDataCodec returns the codec for the data behind get_dsd_sync_data.
func SyncDataCodec() abi.Codec[entities.SyncData, SyncData] {
	return syncDataCodec{}
}

func (syncDataCodec) Externalize(a abi.Allocator, d entities.SyncData) (SyncData, error) {
	var raw SyncData
	rb := abi.NewRollback(a)
	if err := abi.Put[entities.SyncModule, SyncModule](rb, syncModuleCodec{}, d.Arm9, &raw.Arm9); err != nil {
		return SyncData{}, rb.Fail(fmt.Errorf("arm9: %w", err))
	}
	if err := abi.Put(rb, syncAutoloads, d.Autoloads, &raw.Autoloads); err != nil {
		return SyncData{}, rb.Fail(fmt.Errorf("autoloads: %w", err))
	}
	if err := abi.Put(rb, syncOverlays, d.Arm9Overlays, &raw.Arm9Overlays); err != nil {
		return SyncData{}, rb.Fail(fmt.Errorf("arm9 overlays: %w", err))
	}
	return raw, nil
}

func (syncDataCodec) Internalize(a abi.Allocator, raw SyncData) (entities.SyncData, error) {
	rc := abi.NewReclaim(a)
	d := entities.SyncData{
		Arm9:         abi.Take[entities.SyncModule, SyncModule](rc, syncModuleCodec{}, raw.Arm9),
		Autoloads:    abi.Take(rc, syncAutoloads, raw.Autoloads),
		Arm9Overlays: abi.Take(rc, syncOverlays, raw.Arm9Overlays),
	}
	return d, rc.Err()
}

func (syncDataCodec) Release(a abi.Allocator, raw SyncData) {
	syncModuleCodec{}.Release(a, raw.Arm9)
	syncAutoloads.Release(a, raw.Autoloads)
	syncOverlays.Release(a, raw.Arm9Overlays)
}
