package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ndymario/dsd-ghidra/domain/entities"
	domainerrors "github.com/Ndymario/dsd-ghidra/domain/errors"
)

func TestSymbolsParser_Parse(t *testing.T) {
	data := `Entry kind:function(arm,size=0x40) addr:0x02000800
func_02000840 kind:function(thumb,size=0x1c) addr:0x02000840 local

.L_02000850 kind:label(thumb) addr:0x02000850
data_02001000 kind:data(any) addr:0x02001000
data_02001004 kind:bss(size=0x10) addr:0x02001004 ambiguous
_02000880 kind:pool addr:0x02000880
jt_02000884 kind:jump_table(size=0x8,code) addr:0x02000884
weird kind:section addr:0x02000900
`

	symbols, err := NewSymbolsParser().Parse("symbols.txt", []byte(data))
	require.NoError(t, err)

	assert.Equal(t, []entities.Symbol{
		{Name: "Entry", Address: 0x02000800, Kind: entities.SymbolFunction, Mode: entities.ModeArm, Size: 0x40},
		{Name: "func_02000840", Address: 0x02000840, Kind: entities.SymbolFunction, Mode: entities.ModeThumb, Size: 0x1c},
		{Name: ".L_02000850", Address: 0x02000850, Kind: entities.SymbolLabel, Mode: entities.ModeThumb},
		{Name: "data_02001000", Address: 0x02001000, Kind: entities.SymbolData},
		{Name: "data_02001004", Address: 0x02001004, Kind: entities.SymbolBss, Size: 0x10},
		{Name: "_02000880", Address: 0x02000880, Kind: entities.SymbolPoolConstant},
		{Name: "jt_02000884", Address: 0x02000884, Kind: entities.SymbolJumpTable, Size: 0x8},
		{Name: "weird", Address: 0x02000900, Kind: entities.SymbolUnknown},
	}, symbols)
}

func TestSymbolsParser_Empty(t *testing.T) {
	symbols, err := NewSymbolsParser().Parse("symbols.txt", []byte("\n  \n"))
	require.NoError(t, err)
	assert.Nil(t, symbols)
}

func TestSymbolsParser_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "missing addr", data: "func kind:function(arm,size=0x4)"},
		{name: "missing kind", data: "func addr:0x02000000"},
		{name: "bad addr", data: "func kind:pool addr:0x1_0000_0000_0"},
		{name: "bad size", data: "func kind:function(arm,size=big) addr:0x0"},
		{name: "unterminated kind", data: "func kind:function(arm addr:0x0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSymbolsParser().Parse("ov000/symbols.txt", []byte("ok kind:pool addr:0x0\n"+tt.data))

			var parseErr *domainerrors.ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, 2, parseErr.Line)
			assert.Equal(t, "ov000/symbols.txt", parseErr.File)
		})
	}
}
