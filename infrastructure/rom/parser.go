// Package rom reads Nintendo DS ROM images: the cartridge header, the ARM9
// and ARM7 programs, the ARM9 autoload blocks and both overlay tables.
package rom

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/Ndymario/dsd-ghidra/domain/entities"
	domainerrors "github.com/Ndymario/dsd-ghidra/domain/errors"
	"github.com/Ndymario/dsd-ghidra/domain/ports"
)

const (
	headerSize       = 0x180
	headerCRCOffset  = 0x15e
	overlayEntrySize = 32
	fatEntrySize     = 8
	autoloadInfoSize = 12
	buildInfoSize    = 0x1c
)

// nitroCode marks the end of the ARM9 build info: 0x2106c0de then 0xdec00621.
var nitroCode = []byte{0xde, 0xc0, 0x06, 0x21, 0x21, 0x06, 0xc0, 0xde}

var (
	errOutOfBounds = errors.New("range lies outside the image")
	errNoBuildInfo = errors.New("NITROCODE marker not found")
	errBadCRC      = errors.New("header checksum mismatch")
)

var le = binary.LittleEndian

// Parser implements ports.RomParser.
type Parser struct{}

// NewParser creates a new ROM parser.
func NewParser() ports.RomParser {
	return &Parser{}
}

// IsValid reports whether data parses as a DS ROM.
func IsValid(data []byte) bool {
	_, err := (&Parser{}).Parse(data)
	return err == nil
}

// Parse extracts the header, binaries, autoloads and overlays from data.
func (p *Parser) Parse(data []byte) (*entities.Rom, error) {
	header, err := parseHeader(data)
	if err != nil {
		return nil, err
	}

	rom := &entities.Rom{Header: *header}

	arm9, err := slice(data, "arm9", header.Arm9.RomOffset, header.Arm9.Size)
	if err != nil {
		return nil, err
	}
	rom.BuildInfo, err = parseBuildInfo(arm9)
	if err != nil {
		return nil, err
	}
	rom.Arm9, err = decompressArm9(arm9, header.Arm9.RAMAddress, rom.BuildInfo)
	if err != nil {
		return nil, err
	}

	arm7, err := slice(data, "arm7", header.Arm7.RomOffset, header.Arm7.Size)
	if err != nil {
		return nil, err
	}
	rom.Arm7 = append([]byte(nil), arm7...)

	rom.Autoloads, err = parseAutoloads(rom.Arm9, header.Arm9.RAMAddress, rom.BuildInfo)
	if err != nil {
		return nil, err
	}

	fat, err := slice(data, "fat", header.Fat.Offset, header.Fat.Size)
	if err != nil {
		return nil, err
	}
	rom.Arm9Overlays, err = parseOverlays(data, fat, "arm9 overlay table", header.Arm9Ov)
	if err != nil {
		return nil, err
	}
	rom.Arm7Overlays, err = parseOverlays(data, fat, "arm7 overlay table", header.Arm7Ov)
	if err != nil {
		return nil, err
	}

	return rom, nil
}

func parseHeader(data []byte) (*entities.Header, error) {
	if len(data) < headerSize {
		return nil, &domainerrors.RomError{
			Section: "header",
			Err:     fmt.Errorf("image is %d bytes, need at least %d", len(data), headerSize),
		}
	}

	want := le.Uint16(data[headerCRCOffset:])
	if got := CRC16(data[:headerCRCOffset]); got != want {
		return nil, &domainerrors.RomError{
			Section: "header",
			Offset:  headerCRCOffset,
			Err:     fmt.Errorf("%w: stored 0x%04x, computed 0x%04x", errBadCRC, want, got),
		}
	}

	return &entities.Header{
		Title:     cString(data[0x00:0x0c]),
		GameCode:  cString(data[0x0c:0x10]),
		MakerCode: cString(data[0x10:0x12]),
		UnitCode:  data[0x12],
		Arm9:      programInfo(data[0x20:]),
		Arm7:      programInfo(data[0x30:]),
		Fnt:       rangeAt(data[0x40:]),
		Fat:       rangeAt(data[0x48:]),
		Arm9Ov:    rangeAt(data[0x50:]),
		Arm7Ov:    rangeAt(data[0x58:]),
		HeaderCRC: want,
	}, nil
}

func programInfo(b []byte) entities.ProgramInfo {
	return entities.ProgramInfo{
		RomOffset:  le.Uint32(b[0:]),
		Entry:      le.Uint32(b[4:]),
		RAMAddress: le.Uint32(b[8:]),
		Size:       le.Uint32(b[12:]),
	}
}

func rangeAt(b []byte) entities.Range {
	return entities.Range{Offset: le.Uint32(b[0:]), Size: le.Uint32(b[4:])}
}

func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

func slice(data []byte, section string, offset, size uint32) ([]byte, error) {
	end := uint64(offset) + uint64(size)
	if end > uint64(len(data)) {
		return nil, &domainerrors.RomError{
			Section: section,
			Offset:  offset,
			Err:     fmt.Errorf("%w: 0x%x bytes, image is 0x%x", errOutOfBounds, size, len(data)),
		}
	}
	return data[offset:end], nil
}

func parseBuildInfo(arm9 []byte) (entities.BuildInfo, error) {
	i := bytes.Index(arm9, nitroCode)
	if i < buildInfoSize {
		return entities.BuildInfo{}, &domainerrors.RomError{Section: "arm9 build info", Err: errNoBuildInfo}
	}
	b := arm9[i-buildInfoSize:]
	return entities.BuildInfo{
		AutoloadInfosStart:  le.Uint32(b[0x00:]),
		AutoloadInfosEnd:    le.Uint32(b[0x04:]),
		AutoloadBlocks:      le.Uint32(b[0x08:]),
		BssStart:            le.Uint32(b[0x0c:]),
		BssEnd:              le.Uint32(b[0x10:]),
		CompressedStaticEnd: le.Uint32(b[0x14:]),
		SdkVersion:          le.Uint32(b[0x18:]),
	}, nil
}

func decompressArm9(arm9 []byte, base uint32, info entities.BuildInfo) ([]byte, error) {
	if info.CompressedStaticEnd == 0 {
		return append([]byte(nil), arm9...), nil
	}
	end := uint64(info.CompressedStaticEnd) - uint64(base)
	if info.CompressedStaticEnd < base || end > uint64(len(arm9)) {
		return nil, &domainerrors.RomError{
			Section: "arm9",
			Offset:  info.CompressedStaticEnd,
			Err:     fmt.Errorf("compressed static end: %w", errOutOfBounds),
		}
	}
	out, err := DecompressBLZ(arm9[:end])
	if err != nil {
		return nil, &domainerrors.RomError{Section: "arm9", Err: err}
	}
	return append(out, arm9[end:]...), nil
}

// parseAutoloads reads the autoload infos out of the decompressed ARM9 and
// cuts each block's code from the region starting at AutoloadBlocks.
func parseAutoloads(arm9 []byte, base uint32, info entities.BuildInfo) ([]entities.Autoload, error) {
	if info.AutoloadInfosEnd <= info.AutoloadInfosStart {
		return nil, nil
	}
	infos, err := ramSlice(arm9, base, "autoload infos", info.AutoloadInfosStart, info.AutoloadInfosEnd-info.AutoloadInfosStart)
	if err != nil {
		return nil, err
	}
	if len(infos)%autoloadInfoSize != 0 {
		return nil, &domainerrors.RomError{
			Section: "autoload infos",
			Offset:  info.AutoloadInfosStart,
			Err:     fmt.Errorf("size 0x%x is not a multiple of %d", len(infos), autoloadInfoSize),
		}
	}

	autoloads := make([]entities.Autoload, 0, len(infos)/autoloadInfoSize)
	cursor := info.AutoloadBlocks
	for i := 0; i < len(infos); i += autoloadInfoSize {
		baseAddress := le.Uint32(infos[i:])
		codeSize := le.Uint32(infos[i+4:])
		bssSize := le.Uint32(infos[i+8:])

		code, err := ramSlice(arm9, base, "autoload block", cursor, codeSize)
		if err != nil {
			return nil, err
		}
		cursor += codeSize

		autoloads = append(autoloads, entities.Autoload{
			Kind:  entities.AutoloadKindFor(baseAddress),
			Index: uint32(len(autoloads)),
			Module: entities.Module{
				BaseAddress: baseAddress,
				BssSize:     bssSize,
				Code:        append([]byte(nil), code...),
			},
		})
	}
	return autoloads, nil
}

func ramSlice(arm9 []byte, base uint32, section string, addr, size uint32) ([]byte, error) {
	if addr < base {
		return nil, &domainerrors.RomError{Section: section, Offset: addr, Err: errOutOfBounds}
	}
	return slice(arm9, section, addr-base, size)
}

func parseOverlays(data, fat []byte, section string, table entities.Range) ([]entities.Overlay, error) {
	raw, err := slice(data, section, table.Offset, table.Size)
	if err != nil {
		return nil, err
	}
	if len(raw)%overlayEntrySize != 0 {
		return nil, &domainerrors.RomError{
			Section: section,
			Offset:  table.Offset,
			Err:     fmt.Errorf("size 0x%x is not a multiple of %d", len(raw), overlayEntrySize),
		}
	}

	var overlays []entities.Overlay
	for i := 0; i < len(raw); i += overlayEntrySize {
		e := overlayEntry(raw[i:])
		if e.ID > 0xffff {
			return nil, &domainerrors.RomError{
				Section: section,
				Offset:  table.Offset + uint32(i),
				Err:     fmt.Errorf("overlay id %d does not fit in 16 bits", e.ID),
			}
		}
		code, err := overlayCode(data, fat, e)
		if err != nil {
			return nil, err
		}
		overlays = append(overlays, entities.Overlay{
			ID:         uint16(e.ID),
			FileID:     e.FileID,
			Compressed: e.Compressed(),
			Module: entities.Module{
				BaseAddress: e.BaseAddress,
				BssSize:     e.BssSize,
				Code:        code,
			},
		})
	}
	return overlays, nil
}

func overlayEntry(b []byte) entities.OverlayEntry {
	return entities.OverlayEntry{
		ID:          le.Uint32(b[0x00:]),
		BaseAddress: le.Uint32(b[0x04:]),
		CodeSize:    le.Uint32(b[0x08:]),
		BssSize:     le.Uint32(b[0x0c:]),
		SinitStart:  le.Uint32(b[0x10:]),
		SinitEnd:    le.Uint32(b[0x14:]),
		FileID:      le.Uint32(b[0x18:]),
		Flags:       le.Uint32(b[0x1c:]),
	}
}

func overlayCode(data, fat []byte, e entities.OverlayEntry) ([]byte, error) {
	section := fmt.Sprintf("overlay %d", e.ID)
	at := uint64(e.FileID) * fatEntrySize
	if at+fatEntrySize > uint64(len(fat)) {
		return nil, &domainerrors.RomError{
			Section: section,
			Err:     fmt.Errorf("file id %d: %w", e.FileID, errOutOfBounds),
		}
	}
	start, end := le.Uint32(fat[at:]), le.Uint32(fat[at+4:])
	if end < start {
		return nil, &domainerrors.RomError{
			Section: section,
			Offset:  start,
			Err:     fmt.Errorf("file ends at 0x%x before it starts", end),
		}
	}
	file, err := slice(data, section, start, end-start)
	if err != nil {
		return nil, err
	}

	if !e.Compressed() {
		return append([]byte(nil), file...), nil
	}
	if size := e.CompressedSize(); size != 0 && int(size) <= len(file) {
		file = file[:size]
	}
	code, err := DecompressBLZ(file)
	if err != nil {
		return nil, &domainerrors.RomError{Section: section, Offset: start, Err: err}
	}
	return code, nil
}
