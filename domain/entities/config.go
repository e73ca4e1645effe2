package entities

// DsdConfig is the top-level config.yaml of a dsd project.
// Paths are relative to the directory containing the config file.
type DsdConfig struct {
	RomConfig   string           `yaml:"rom_config" json:"rom_config" validate:"required"`
	BuildPath   string           `yaml:"build_path" json:"build_path" validate:"required"`
	DelinksPath string           `yaml:"delinks_path" json:"delinks_path" validate:"required"`
	MainModule  ModuleConfig     `yaml:"main_module" json:"main_module"`
	Autoloads   []AutoloadConfig `yaml:"autoloads" json:"autoloads,omitempty" validate:"dive"`
	Overlays    []OverlayConfig  `yaml:"overlays" json:"overlays,omitempty" validate:"dive"`
}

// ModuleConfig points at the files describing one module.
type ModuleConfig struct {
	Name      string `yaml:"name" json:"name" validate:"required" jsonschema:"minLength=1"`
	Object    string `yaml:"object" json:"object,omitempty"`
	Hash      string `yaml:"hash" json:"hash,omitempty" validate:"omitempty,hexadecimal,len=40" jsonschema:"description=SHA-1 of the module binary"`
	Delinks   string `yaml:"delinks" json:"delinks" validate:"required"`
	Symbols   string `yaml:"symbols" json:"symbols" validate:"required"`
	Overrides string `yaml:"overrides" json:"overrides,omitempty"`
}

// AutoloadConfig is a ModuleConfig for an autoload block.
type AutoloadConfig struct {
	ModuleConfig `yaml:",inline"`
	Kind         string `yaml:"kind" json:"kind" validate:"required,oneof=itcm dtcm unknown" jsonschema:"enum=itcm,enum=dtcm,enum=unknown"`
	Index        uint32 `yaml:"index" json:"index,omitempty"`
}

// OverlayConfig is a ModuleConfig for an ARM9 overlay.
type OverlayConfig struct {
	ModuleConfig `yaml:",inline"`
	ID           uint16 `yaml:"id" json:"id" validate:"lte=4095"`
}

// AutoloadKind returns the parsed kind of the autoload.
func (c AutoloadConfig) AutoloadKind() AutoloadKind {
	switch c.Kind {
	case "itcm":
		return AutoloadItcm
	case "dtcm":
		return AutoloadDtcm
	default:
		return AutoloadUnknown
	}
}
