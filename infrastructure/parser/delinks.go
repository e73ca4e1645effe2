package parser

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/Ndymario/dsd-ghidra/domain/entities"
	domainerrors "github.com/Ndymario/dsd-ghidra/domain/errors"
	"github.com/Ndymario/dsd-ghidra/domain/ports"
)

// DelinksParser reads the module section table from a delinks.txt file.
//
//	    .text       start:0x02000000 end:0x02000800 kind:code align:32
//	    .bss        start:0x02000800 end:0x02000900 kind:bss align:4
//
//	src/main.c:
//	    ...
//
// The table ends at the first blank line after it. The per-file blocks that
// follow describe delinked objects and are not read.
type DelinksParser struct{}

// NewDelinksParser creates a new DelinksParser.
func NewDelinksParser() ports.DelinksParser {
	return &DelinksParser{}
}

// Parse returns the sections in file order.
func (p *DelinksParser) Parse(name string, data []byte) ([]entities.Section, error) {
	var sections []entities.Section

	scanner := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			if len(sections) > 0 {
				break
			}
			continue
		}
		if strings.HasSuffix(text, ":") {
			// First file block without a blank line before it.
			break
		}

		section, err := parseSection(text)
		if err != nil {
			return nil, &domainerrors.ParseError{File: name, Line: line, Err: err}
		}
		sections = append(sections, section)
	}
	if err := scanner.Err(); err != nil {
		return nil, &domainerrors.ParseError{File: name, Err: err}
	}
	return sections, nil
}

func parseSection(text string) (entities.Section, error) {
	words := strings.Fields(text)
	m := attrs(words[1:])
	section := entities.Section{Name: words[0]}

	for _, field := range []struct {
		key string
		dst *uint32
	}{
		{"start", &section.Start},
		{"end", &section.End},
		{"align", &section.Alignment},
	} {
		v, err := requireAttr(m, field.key)
		if err != nil {
			return section, err
		}
		if *field.dst, err = parseUint32(field.key, v); err != nil {
			return section, err
		}
	}
	if section.End < section.Start {
		return section, fmt.Errorf("section %s ends at 0x%08x before it starts at 0x%08x", section.Name, section.End, section.Start)
	}

	kind, err := requireAttr(m, "kind")
	if err != nil {
		return section, err
	}
	var ok bool
	if section.Kind, ok = entities.ParseSectionKind(kind); !ok {
		return section, fmt.Errorf("unknown section kind %q", kind)
	}
	return section, nil
}
