// Package parser reads the files of a dsd project: config.yaml,
// symbols.txt and delinks.txt.
package parser

import (
	"gopkg.in/yaml.v3"

	"github.com/Ndymario/dsd-ghidra/domain/entities"
	domainerrors "github.com/Ndymario/dsd-ghidra/domain/errors"
	"github.com/Ndymario/dsd-ghidra/domain/ports"
)

// YamlConfigParser implements ConfigParser for YAML.
type YamlConfigParser struct{}

// NewYamlConfigParser creates a new YamlConfigParser.
func NewYamlConfigParser() ports.ConfigParser {
	return &YamlConfigParser{}
}

// Parse unmarshals YAML bytes into a DsdConfig struct.
func (p *YamlConfigParser) Parse(data []byte) (*entities.DsdConfig, error) {
	var config entities.DsdConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, &domainerrors.ConfigError{Err: err}
	}
	return &config, nil
}
