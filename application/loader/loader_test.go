package loader_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ndymario/dsd-ghidra/application/loader"
	"github.com/Ndymario/dsd-ghidra/domain/entities"
	domainerrors "github.com/Ndymario/dsd-ghidra/domain/errors"
	"github.com/Ndymario/dsd-ghidra/infrastructure/rom"
	"github.com/Ndymario/dsd-ghidra/internal/testutil"
)

func TestLoad(t *testing.T) {
	fixture := testutil.NewRomFixture()

	ld, err := loader.Load(rom.NewParser(), fixture.Build())
	require.NoError(t, err)

	assert.Equal(t, "DSDGHIDRA", ld.Title)
	assert.Equal(t, "ADSE", ld.GameCode)

	assert.Equal(t, uint32(testutil.DefaultArm9Base), ld.Arm9.BaseAddress)
	assert.Equal(t, uint32(testutil.DefaultArm9Entry), ld.Arm9Entry)
	assert.Equal(t, uint32(0x40), ld.Arm9.BssSize)
	require.Len(t, ld.Arm9.Code, testutil.BuildInfoLen+len(fixture.Arm9Code), "main module stops at the autoload blocks")
	assert.Equal(t, fixture.Arm9Code, ld.Arm9.Code[testutil.BuildInfoLen:])

	require.Len(t, ld.Autoloads, 2)
	assert.Equal(t, entities.AutoloadItcm, ld.Autoloads[0].Kind)
	assert.Equal(t, entities.AutoloadDtcm, ld.Autoloads[1].Kind)
	require.Len(t, ld.Arm9Overlays, 2)

	assert.Equal(t, uint32(testutil.DefaultArm7Base), ld.Arm7.BaseAddress)
	assert.Equal(t, uint32(testutil.DefaultArm7Entry), ld.Arm7Entry)
	assert.Equal(t, fixture.Arm7Code, ld.Arm7.Code)
	assert.Zero(t, ld.Arm7.BssSize)
	assert.Empty(t, ld.Arm7Overlays)
}

func TestLoad_InvalidRom(t *testing.T) {
	_, err := loader.Load(rom.NewParser(), []byte("not a rom"))

	var romErr *domainerrors.RomError
	require.ErrorAs(t, err, &romErr)
}

func TestBuild_WithoutAutoloads(t *testing.T) {
	r := &entities.Rom{
		Header: entities.Header{Arm9: entities.ProgramInfo{RAMAddress: 0x02000000, Entry: 0x02000000}},
		BuildInfo: entities.BuildInfo{
			AutoloadBlocks: 0x02000004,
			BssStart:       0x02000010,
			BssEnd:         0x02000008,
		},
		Arm9: []byte{1, 2, 3, 4, 5, 6, 7, 8},
	}

	ld := loader.Build(r)
	assert.Equal(t, r.Arm9, ld.Arm9.Code, "the whole static image is the main module")
	assert.Zero(t, ld.Arm9.BssSize, "inverted bss range")
	assert.Nil(t, ld.Autoloads)
}
