// Package loader turns a parsed ROM into the data a disassembler needs to
// map it into memory.
package loader

import (
	"github.com/Ndymario/dsd-ghidra/domain/entities"
	"github.com/Ndymario/dsd-ghidra/domain/ports"
)

// Load parses data with parser and builds its loader data.
func Load(parser ports.RomParser, data []byte) (*entities.LoaderData, error) {
	rom, err := parser.Parse(data)
	if err != nil {
		return nil, err
	}
	ld := Build(rom)
	return &ld, nil
}

// Build assembles loader data from a parsed ROM. The ARM9 main module ends
// where the autoload blocks begin; its bss comes from the build info.
func Build(rom *entities.Rom) entities.LoaderData {
	return entities.LoaderData{
		Title:    rom.Header.Title,
		GameCode: rom.Header.GameCode,

		Arm9:         arm9Main(rom),
		Arm9Entry:    rom.Header.Arm9.Entry,
		Autoloads:    rom.Autoloads,
		Arm9Overlays: rom.Arm9Overlays,

		Arm7: entities.Module{
			BaseAddress: rom.Header.Arm7.RAMAddress,
			Code:        rom.Arm7,
		},
		Arm7Entry:    rom.Header.Arm7.Entry,
		Arm7Overlays: rom.Arm7Overlays,
	}
}

func arm9Main(rom *entities.Rom) entities.Module {
	base := rom.Header.Arm9.RAMAddress
	info := rom.BuildInfo

	code := rom.Arm9
	if len(rom.Autoloads) > 0 && info.AutoloadBlocks >= base && uint64(info.AutoloadBlocks-base) <= uint64(len(code)) {
		code = code[:info.AutoloadBlocks-base]
	}

	var bss uint32
	if info.BssEnd > info.BssStart {
		bss = info.BssEnd - info.BssStart
	}
	return entities.Module{BaseAddress: base, BssSize: bss, Code: code}
}
