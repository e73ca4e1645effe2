package entities

// Header holds the fields of the DS cartridge header the bridge cares about.
type Header struct {
	Title     string
	GameCode  string
	MakerCode string
	UnitCode  uint8

	Arm9   ProgramInfo
	Arm7   ProgramInfo
	Fnt    Range
	Fat    Range
	Arm9Ov Range
	Arm7Ov Range

	HeaderCRC uint16
}

// ProgramInfo locates an ARM binary in the ROM and in RAM.
type ProgramInfo struct {
	RomOffset  uint32
	Entry      uint32
	RAMAddress uint32
	Size       uint32
}

// Range is an (offset, size) pair inside the ROM image.
type Range struct {
	Offset uint32
	Size   uint32
}

// End returns the exclusive end offset of the range.
func (r Range) End() uint64 {
	return uint64(r.Offset) + uint64(r.Size)
}

// BuildInfo is the block the ARM9 binary carries in front of its
// NITROCODE marker.
type BuildInfo struct {
	AutoloadInfosStart  uint32
	AutoloadInfosEnd    uint32
	AutoloadBlocks      uint32
	BssStart            uint32
	BssEnd              uint32
	CompressedStaticEnd uint32
	SdkVersion          uint32
}

// OverlayEntry is one 32-byte row of an overlay table.
type OverlayEntry struct {
	ID          uint32
	BaseAddress uint32
	CodeSize    uint32
	BssSize     uint32
	SinitStart  uint32
	SinitEnd    uint32
	FileID      uint32
	Flags       uint32
}

// Compressed reports whether the overlay file is BLZ compressed.
func (e OverlayEntry) Compressed() bool {
	return e.Flags&(1<<24) != 0
}

// CompressedSize returns the size of the compressed overlay file.
func (e OverlayEntry) CompressedSize() uint32 {
	return e.Flags & 0x00ffffff
}

// Rom is a parsed DS ROM with every program decompressed.
type Rom struct {
	Header       Header
	BuildInfo    BuildInfo
	Arm9         []byte
	Arm7         []byte
	Autoloads    []Autoload
	Arm9Overlays []Overlay
	Arm7Overlays []Overlay
}
