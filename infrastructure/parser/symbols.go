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

// SymbolsParser reads a dsd symbols.txt file, one symbol per line:
//
//	func_02000800 kind:function(arm,size=0x40) addr:0x02000800
//	data_02001000 kind:data(any) addr:0x02001000 local
//
// Attributes after addr are accepted and ignored.
type SymbolsParser struct{}

// NewSymbolsParser creates a new SymbolsParser.
func NewSymbolsParser() ports.SymbolsParser {
	return &SymbolsParser{}
}

// Parse returns the symbols in file order.
func (p *SymbolsParser) Parse(name string, data []byte) ([]entities.Symbol, error) {
	var symbols []entities.Symbol

	scanner := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		symbol, err := parseSymbol(text)
		if err != nil {
			return nil, &domainerrors.ParseError{File: name, Line: line, Err: err}
		}
		symbols = append(symbols, symbol)
	}
	if err := scanner.Err(); err != nil {
		return nil, &domainerrors.ParseError{File: name, Err: err}
	}
	return symbols, nil
}

func parseSymbol(text string) (entities.Symbol, error) {
	words := strings.Fields(text)
	m := attrs(words[1:])
	symbol := entities.Symbol{Name: words[0]}

	addr, err := requireAttr(m, "addr")
	if err != nil {
		return symbol, err
	}
	if symbol.Address, err = parseUint32("addr", addr); err != nil {
		return symbol, err
	}

	kind, err := requireAttr(m, "kind")
	if err != nil {
		return symbol, err
	}
	err = parseSymbolKind(kind, &symbol)
	return symbol, err
}

// parseSymbolKind fills in Kind, Mode and Size from a kind attribute such as
// "function(thumb,size=0x20)".
func parseSymbolKind(kind string, symbol *entities.Symbol) error {
	name, args, hasArgs := strings.Cut(kind, "(")
	if hasArgs {
		var ok bool
		if args, ok = strings.CutSuffix(args, ")"); !ok {
			return fmt.Errorf("unterminated kind %q", kind)
		}
	}

	switch name {
	case "function":
		symbol.Kind = entities.SymbolFunction
	case "label":
		symbol.Kind = entities.SymbolLabel
	case "data":
		symbol.Kind = entities.SymbolData
	case "bss":
		symbol.Kind = entities.SymbolBss
	case "pool":
		symbol.Kind = entities.SymbolPoolConstant
	case "jump_table":
		symbol.Kind = entities.SymbolJumpTable
	default:
		symbol.Kind = entities.SymbolUnknown
		return nil
	}

	if !hasArgs || args == "" {
		return nil
	}
	for _, arg := range strings.Split(args, ",") {
		switch k, v, _ := strings.Cut(arg, "="); k {
		case "arm":
			symbol.Mode = entities.ModeArm
		case "thumb":
			symbol.Mode = entities.ModeThumb
		case "size":
			size, err := parseUint32("size", v)
			if err != nil {
				return fmt.Errorf("kind %q: %w", kind, err)
			}
			symbol.Size = size
		}
	}
	return nil
}
