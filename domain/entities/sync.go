package entities

// SectionKind is the content type of a module section.
type SectionKind uint8

const (
	SectionCode SectionKind = iota
	SectionData
	SectionRodata
	SectionBss
)

// ParseSectionKind maps the delinks.txt kind keyword to a SectionKind.
func ParseSectionKind(s string) (SectionKind, bool) {
	switch s {
	case "code":
		return SectionCode, true
	case "data":
		return SectionData, true
	case "rodata":
		return SectionRodata, true
	case "bss":
		return SectionBss, true
	default:
		return 0, false
	}
}

// SymbolKind is the kind of a dsd symbol.
type SymbolKind uint8

const (
	SymbolFunction SymbolKind = iota
	SymbolLabel
	SymbolData
	SymbolBss
	SymbolPoolConstant
	SymbolJumpTable
	SymbolUnknown
)

// InstructionMode is the ARM instruction set a code symbol is written in.
type InstructionMode uint8

const (
	ModeNone InstructionMode = iota
	ModeArm
	ModeThumb
)

// Section is one entry of a module's section table.
type Section struct {
	Name      string
	Start     uint32
	End       uint32
	Kind      SectionKind
	Alignment uint32
}

// Symbol is one line of a dsd symbols.txt file.
type Symbol struct {
	Name    string
	Address uint32
	Kind    SymbolKind
	Mode    InstructionMode
	Size    uint32
}

// SyncModule is the dsd view of one module: where it lives and what it
// contains.
type SyncModule struct {
	Name        string
	Hash        *string
	BaseAddress uint32
	Sections    []Section
	Symbols     []Symbol
}

// SyncAutoload is the dsd view of an autoload module.
type SyncAutoload struct {
	Kind   AutoloadKind
	Index  uint32
	Module SyncModule
}

// SyncOverlay is the dsd view of an ARM9 overlay.
type SyncOverlay struct {
	ID     uint16
	Module SyncModule
}

// SyncData is the full dsd project state synced into a disassembler.
type SyncData struct {
	Arm9         SyncModule
	Autoloads    []SyncAutoload
	Arm9Overlays []SyncOverlay
}
