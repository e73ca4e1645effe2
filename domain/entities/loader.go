package entities

// AutoloadKind tells which memory region an autoload block is copied to.
type AutoloadKind uint8

const (
	AutoloadItcm AutoloadKind = iota
	AutoloadDtcm
	AutoloadUnknown
)

// Known autoload base addresses.
const (
	ItcmBaseAddress = 0x01ff8000
	DtcmBaseAddress = 0x027e0000
)

// AutoloadKindFor classifies an autoload by its base address.
func AutoloadKindFor(baseAddress uint32) AutoloadKind {
	switch baseAddress {
	case ItcmBaseAddress:
		return AutoloadItcm
	case DtcmBaseAddress:
		return AutoloadDtcm
	default:
		return AutoloadUnknown
	}
}

func (k AutoloadKind) String() string {
	switch k {
	case AutoloadItcm:
		return "itcm"
	case AutoloadDtcm:
		return "dtcm"
	default:
		return "unknown"
	}
}

// Module is a block of code loaded at a fixed address, followed by BssSize
// zeroed bytes.
type Module struct {
	BaseAddress uint32
	BssSize     uint32
	Code        []byte
}

// Overlay is an overlay module together with its table entry data.
type Overlay struct {
	ID         uint16
	FileID     uint32
	Compressed bool
	Module     Module
}

// Autoload is a block the ARM9 copies out of its static image at boot.
type Autoload struct {
	Kind   AutoloadKind
	Index  uint32
	Module Module
}

// LoaderData is everything a disassembler needs to map a DS ROM into memory.
type LoaderData struct {
	Title    string
	GameCode string

	Arm9         Module
	Arm9Entry    uint32
	Autoloads    []Autoload
	Arm9Overlays []Overlay

	Arm7         Module
	Arm7Entry    uint32
	Arm7Overlays []Overlay
}
