package main

import (
	"fmt"

	"github.com/Ndymario/dsd-ghidra/domain/entities"
	"github.com/Ndymario/dsd-ghidra/ffi"
)

// Summaries are read through the foreign records, so they show exactly what
// the plugin sees.

type moduleSummary struct {
	BaseAddress uint32 `json:"base_address"`
	CodeSize    int    `json:"code_size"`
	BssSize     uint32 `json:"bss_size"`
}

type autoloadSummary struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Index uint32 `json:"index"`
	moduleSummary
}

type overlaySummary struct {
	Name       string `json:"name"`
	ID         uint16 `json:"id"`
	FileID     uint32 `json:"file_id"`
	Compressed bool   `json:"compressed"`
	moduleSummary
}

type loaderSummary struct {
	Title        string            `json:"title"`
	GameCode     string            `json:"game_code"`
	Arm9         moduleSummary     `json:"arm9"`
	Arm9Entry    uint32            `json:"arm9_entry"`
	Autoloads    []autoloadSummary `json:"autoloads"`
	Arm9Overlays []overlaySummary  `json:"arm9_overlays"`
	Arm7         moduleSummary     `json:"arm7"`
	Arm7Entry    uint32            `json:"arm7_entry"`
	Arm7Overlays []overlaySummary  `json:"arm7_overlays"`
}

func summarizeModule(m ffi.Module) moduleSummary {
	return moduleSummary{BaseAddress: m.BaseAddress, CodeSize: int(m.Code.Len), BssSize: m.BssSize}
}

func summarizeOverlays(l []ffi.Overlay) []overlaySummary {
	out := make([]overlaySummary, 0, len(l))
	for _, ov := range l {
		out = append(out, overlaySummary{
			Name:          fmt.Sprintf("ov%03d", ov.ID),
			ID:            ov.ID,
			FileID:        ov.FileID,
			Compressed:    ov.Compressed != 0,
			moduleSummary: summarizeModule(ov.Module),
		})
	}
	return out
}

func summarizeLoaderData(d *ffi.LoaderData) loaderSummary {
	s := loaderSummary{
		Title:        d.Title.View(),
		GameCode:     d.GameCode.View(),
		Arm9:         summarizeModule(d.Arm9),
		Arm9Entry:    d.Arm9Entry,
		Autoloads:    []autoloadSummary{},
		Arm9Overlays: summarizeOverlays(d.Arm9Overlays.View()),
		Arm7:         summarizeModule(d.Arm7),
		Arm7Entry:    d.Arm7Entry,
		Arm7Overlays: summarizeOverlays(d.Arm7Overlays.View()),
	}
	for _, a := range d.Autoloads.View() {
		kind := entities.AutoloadKind(a.Kind).String()
		name := kind
		if a.Kind == uint8(entities.AutoloadUnknown) {
			name = fmt.Sprintf("autoload_%d", a.Index)
		}
		s.Autoloads = append(s.Autoloads, autoloadSummary{
			Name:          name,
			Kind:          kind,
			Index:         a.Index,
			moduleSummary: summarizeModule(a.Module),
		})
	}
	return s
}

type syncModuleSummary struct {
	Name        string  `json:"name"`
	Hash        *string `json:"hash,omitempty"`
	BaseAddress uint32  `json:"base_address"`
	Sections    int     `json:"sections"`
	Symbols     int     `json:"symbols"`
}

type syncAutoloadSummary struct {
	Kind string `json:"kind"`
	syncModuleSummary
}

type syncOverlaySummary struct {
	ID uint16 `json:"id"`
	syncModuleSummary
}

type syncSummary struct {
	Arm9         syncModuleSummary     `json:"arm9"`
	Autoloads    []syncAutoloadSummary `json:"autoloads"`
	Arm9Overlays []syncOverlaySummary  `json:"arm9_overlays"`
}

func summarizeSyncModule(m ffi.SyncModule) syncModuleSummary {
	s := syncModuleSummary{
		Name:        m.Name.View(),
		BaseAddress: m.BaseAddress,
		Sections:    int(m.Sections.Len),
		Symbols:     int(m.Symbols.Len),
	}
	if !m.Hash.IsNull() {
		h := m.Hash.View()
		s.Hash = &h
	}
	return s
}

func summarizeSyncData(d *ffi.SyncData) syncSummary {
	s := syncSummary{Arm9: summarizeSyncModule(d.Arm9)}
	for _, a := range d.Autoloads.View() {
		s.Autoloads = append(s.Autoloads, syncAutoloadSummary{
			Kind:              entities.AutoloadKind(a.Kind).String(),
			syncModuleSummary: summarizeSyncModule(a.Module),
		})
	}
	for _, ov := range d.Arm9Overlays.View() {
		s.Arm9Overlays = append(s.Arm9Overlays, syncOverlaySummary{
			ID:                ov.ID,
			syncModuleSummary: summarizeSyncModule(ov.Module),
		})
	}
	return s
}
