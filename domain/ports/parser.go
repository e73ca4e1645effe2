package ports

import "github.com/Ndymario/dsd-ghidra/domain/entities"

// ConfigParser parses raw YAML bytes into a dsd project config.
type ConfigParser interface {
	// Parse unmarshals YAML bytes into a DsdConfig struct.
	Parse(data []byte) (*entities.DsdConfig, error)
}

// RomParser parses a DS ROM image.
type RomParser interface {
	// Parse extracts the header, binaries, autoloads and overlays. The
	// returned Rom does not alias data.
	Parse(data []byte) (*entities.Rom, error)
}

// SymbolsParser parses a dsd symbols.txt file.
type SymbolsParser interface {
	Parse(name string, data []byte) ([]entities.Symbol, error)
}

// DelinksParser parses the section table at the top of a dsd delinks.txt file.
type DelinksParser interface {
	Parse(name string, data []byte) ([]entities.Section, error)
}
