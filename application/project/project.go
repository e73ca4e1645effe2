// Package project loads the state of a dsd project (module layout, sections
// and symbols) from its config.yaml.
package project

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Ndymario/dsd-ghidra/application/validation"
	"github.com/Ndymario/dsd-ghidra/domain/entities"
	domainerrors "github.com/Ndymario/dsd-ghidra/domain/errors"
	"github.com/Ndymario/dsd-ghidra/domain/ports"
	"github.com/Ndymario/dsd-ghidra/infrastructure/parser"
)

// Loader reads dsd projects.
type Loader struct {
	config    ports.ConfigParser
	validator ports.ConfigValidator
	symbols   ports.SymbolsParser
	delinks   ports.DelinksParser
	logger    *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger for load progress. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithConfigValidator replaces the schema validator run on the raw config.
func WithConfigValidator(v ports.ConfigValidator) Option {
	return func(l *Loader) {
		l.validator = v
	}
}

// NewLoader creates a Loader with the YAML, symbols.txt and delinks.txt
// parsers.
func NewLoader(opts ...Option) (*Loader, error) {
	l := &Loader{
		config:  parser.NewYamlConfigParser(),
		symbols: parser.NewSymbolsParser(),
		delinks: parser.NewDelinksParser(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.validator == nil {
		v, err := validation.NewConfigValidator()
		if err != nil {
			return nil, err
		}
		l.validator = v
	}
	return l, nil
}

// Load reads the config at configPath and every module it lists. Module
// file paths are relative to the directory holding the config.
func (l *Loader) Load(configPath string) (*entities.SyncData, error) {
	config, err := l.readConfig(configPath)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(configPath)

	data := &entities.SyncData{}
	if data.Arm9, err = l.readModule(dir, config.MainModule); err != nil {
		return nil, err
	}
	for _, ac := range config.Autoloads {
		module, err := l.readModule(dir, ac.ModuleConfig)
		if err != nil {
			return nil, err
		}
		data.Autoloads = append(data.Autoloads, entities.SyncAutoload{
			Kind:   ac.AutoloadKind(),
			Index:  ac.Index,
			Module: module,
		})
	}
	for _, oc := range config.Overlays {
		module, err := l.readModule(dir, oc.ModuleConfig)
		if err != nil {
			return nil, err
		}
		data.Arm9Overlays = append(data.Arm9Overlays, entities.SyncOverlay{ID: oc.ID, Module: module})
	}

	l.logger.Debug("loaded dsd project",
		slog.String("config", configPath),
		slog.Int("autoloads", len(data.Autoloads)),
		slog.Int("overlays", len(data.Arm9Overlays)),
	)
	return data, nil
}

func (l *Loader) readConfig(path string) (*entities.DsdConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &domainerrors.ConfigError{Path: path, Err: err}
	}

	var doc interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, &domainerrors.ConfigError{Path: path, Err: err}
	}
	result, err := l.validator.Validate(doc)
	if err != nil {
		return nil, &domainerrors.ConfigError{Path: path, Err: err}
	}
	if !result.Valid {
		msgs := make([]string, 0, len(result.Errors))
		for _, e := range result.Errors {
			msgs = append(msgs, e.Message)
		}
		var field string
		if len(result.Errors) > 0 {
			field = result.Errors[0].Field
		}
		return nil, &domainerrors.ConfigError{Path: path, Field: field, Err: errors.New(strings.Join(msgs, "; "))}
	}

	config, err := l.config.Parse(raw)
	if err != nil {
		return nil, withPath(err, path)
	}
	if err := validation.ValidateStruct(config); err != nil {
		return nil, withPath(err, path)
	}
	return config, nil
}

func withPath(err error, path string) error {
	var configErr *domainerrors.ConfigError
	if errors.As(err, &configErr) && configErr.Path == "" {
		configErr.Path = path
		return configErr
	}
	return &domainerrors.ConfigError{Path: path, Err: err}
}

func (l *Loader) readModule(dir string, mc entities.ModuleConfig) (entities.SyncModule, error) {
	module := entities.SyncModule{Name: mc.Name}
	if mc.Hash != "" {
		hash := mc.Hash
		module.Hash = &hash
	}

	delinksPath := filepath.Join(dir, mc.Delinks)
	raw, err := os.ReadFile(delinksPath)
	if err != nil {
		return module, fmt.Errorf("module %s: %w", mc.Name, err)
	}
	if module.Sections, err = l.delinks.Parse(delinksPath, raw); err != nil {
		return module, fmt.Errorf("module %s: %w", mc.Name, err)
	}

	symbolsPath := filepath.Join(dir, mc.Symbols)
	raw, err = os.ReadFile(symbolsPath)
	if err != nil {
		return module, fmt.Errorf("module %s: %w", mc.Name, err)
	}
	if module.Symbols, err = l.symbols.Parse(symbolsPath, raw); err != nil {
		return module, fmt.Errorf("module %s: %w", mc.Name, err)
	}

	module.BaseAddress = baseAddress(module.Sections)
	return module, nil
}

// baseAddress is the lowest section start, or 0 for a module without
// sections.
func baseAddress(sections []entities.Section) uint32 {
	if len(sections) == 0 {
		return 0
	}
	base := sections[0].Start
	for _, s := range sections[1:] {
		base = min(base, s.Start)
	}
	return base
}
