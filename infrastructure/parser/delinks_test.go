package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ndymario/dsd-ghidra/domain/entities"
	domainerrors "github.com/Ndymario/dsd-ghidra/domain/errors"
)

const delinksFile = `    .text       start:0x02000000 end:0x02000800 kind:code align:32
    .rodata     start:0x02000800 end:0x02000880 kind:rodata align:4
    .data       start:0x02000880 end:0x02000900 kind:data align:4
    .bss        start:0x02000900 end:0x02000a00 kind:bss align:0x20

src/main.c:
    complete
    .text start:0x02000000 end:0x02000100
`

func TestDelinksParser_Parse(t *testing.T) {
	sections, err := NewDelinksParser().Parse("delinks.txt", []byte(delinksFile))
	require.NoError(t, err)

	assert.Equal(t, []entities.Section{
		{Name: ".text", Start: 0x02000000, End: 0x02000800, Kind: entities.SectionCode, Alignment: 32},
		{Name: ".rodata", Start: 0x02000800, End: 0x02000880, Kind: entities.SectionRodata, Alignment: 4},
		{Name: ".data", Start: 0x02000880, End: 0x02000900, Kind: entities.SectionData, Alignment: 4},
		{Name: ".bss", Start: 0x02000900, End: 0x02000a00, Kind: entities.SectionBss, Alignment: 0x20},
	}, sections)
}

func TestDelinksParser_StopsAtFileBlock(t *testing.T) {
	data := "    .text start:0x0 end:0x10 kind:code align:4\nsrc/a.c:\n    .text start:0x0 end:0x10\n"

	sections, err := NewDelinksParser().Parse("delinks.txt", []byte(data))
	require.NoError(t, err)
	require.Len(t, sections, 1)
}

func TestDelinksParser_Empty(t *testing.T) {
	for _, data := range []string{"", "\n\n", "\nsrc/a.c:\n"} {
		sections, err := NewDelinksParser().Parse("delinks.txt", []byte(data))
		require.NoError(t, err)
		assert.Empty(t, sections)
	}
}

func TestDelinksParser_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
		line int
	}{
		{name: "missing end", data: ".text start:0x0 kind:code align:4", line: 1},
		{name: "bad number", data: ".text start:0x0 end:zz kind:code align:4", line: 1},
		{name: "unknown kind", data: ".text start:0x0 end:0x4 kind:text align:4", line: 1},
		{name: "end before start", data: ".text start:0x10 end:0x4 kind:code align:4", line: 1},
		{name: "second line", data: "\n.text start:0x0 end:0x4 kind:code align:4\n.bss start:0x4 end:0x8 align:4", line: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDelinksParser().Parse("main/delinks.txt", []byte(tt.data))

			var parseErr *domainerrors.ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, "main/delinks.txt", parseErr.File)
			assert.Equal(t, tt.line, parseErr.Line)
		})
	}
}
