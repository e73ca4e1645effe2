package project_test

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ndymario/dsd-ghidra/application/project"
	"github.com/Ndymario/dsd-ghidra/domain/entities"
	domainerrors "github.com/Ndymario/dsd-ghidra/domain/errors"
	"github.com/Ndymario/dsd-ghidra/internal/testutil"
)

func newLoader(t *testing.T) *project.Loader {
	t.Helper()
	l, err := project.NewLoader()
	require.NoError(t, err)
	return l
}

func TestLoader_Load(t *testing.T) {
	path := testutil.WriteProject(t, t.TempDir(), testutil.ProjectFiles())

	data, err := newLoader(t).Load(path)
	require.NoError(t, err)

	t.Run("main module", func(t *testing.T) {
		assert.Equal(t, "main", data.Arm9.Name)
		require.NotNil(t, data.Arm9.Hash)
		assert.Equal(t, testutil.ProjectHash, *data.Arm9.Hash)
		assert.Equal(t, uint32(0x02000000), data.Arm9.BaseAddress)
		require.Len(t, data.Arm9.Sections, 2)
		assert.Equal(t, entities.SectionBss, data.Arm9.Sections[1].Kind)
		require.Len(t, data.Arm9.Symbols, 3)
		assert.Equal(t, entities.ModeThumb, data.Arm9.Symbols[1].Mode)
	})

	t.Run("autoloads", func(t *testing.T) {
		require.Len(t, data.Autoloads, 1)
		itcm := data.Autoloads[0]
		assert.Equal(t, entities.AutoloadItcm, itcm.Kind)
		assert.Equal(t, "itcm", itcm.Module.Name)
		assert.Nil(t, itcm.Module.Hash)
		assert.Equal(t, uint32(entities.ItcmBaseAddress), itcm.Module.BaseAddress)
	})

	t.Run("overlays", func(t *testing.T) {
		require.Len(t, data.Arm9Overlays, 1)
		ov := data.Arm9Overlays[0]
		assert.Equal(t, uint16(0), ov.ID)
		assert.Equal(t, uint32(0x020c0000), ov.Module.BaseAddress, "lowest section start, not the first")
		assert.Empty(t, ov.Module.Symbols)
	})
}

func TestLoader_Errors(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(files map[string]string)
		check func(t *testing.T, err error)
	}{
		{
			name: "missing config",
			edit: func(files map[string]string) { delete(files, "config.yaml") },
			check: func(t *testing.T, err error) {
				var configErr *domainerrors.ConfigError
				require.ErrorAs(t, err, &configErr)
				assert.ErrorIs(t, err, fs.ErrNotExist)
				assert.True(t, domainerrors.ToErrorDetail(err).IsNotFound)
			},
		},
		{
			name: "not yaml",
			edit: func(files map[string]string) { files["config.yaml"] = "main_module: [" },
			check: func(t *testing.T, err error) {
				var configErr *domainerrors.ConfigError
				require.ErrorAs(t, err, &configErr)
			},
		},
		{
			name: "schema violation",
			edit: func(files map[string]string) {
				files["config.yaml"] = "rom_config: a\nbuild_path: b\nmain_module:\n  name: main\n  delinks: d\n  symbols: s\n"
			},
			check: func(t *testing.T, err error) {
				var configErr *domainerrors.ConfigError
				require.ErrorAs(t, err, &configErr)
				assert.Contains(t, err.Error(), "delinks_path")
			},
		},
		{
			name: "tag violation",
			edit: func(files map[string]string) {
				files["config.yaml"] = "rom_config: a\nbuild_path: b\ndelinks_path: c\nmain_module:\n  name: main\n  hash: nothex\n  delinks: d\n  symbols: s\n"
			},
			check: func(t *testing.T, err error) {
				var configErr *domainerrors.ConfigError
				require.ErrorAs(t, err, &configErr)
				assert.Equal(t, "DsdConfig.main_module.hash", configErr.Field)
				assert.NotEmpty(t, configErr.Path)
			},
		},
		{
			name: "missing symbols file",
			edit: func(files map[string]string) { delete(files, "itcm/symbols.txt") },
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, fs.ErrNotExist)
				assert.Contains(t, err.Error(), "module itcm")
			},
		},
		{
			name: "malformed symbols",
			edit: func(files map[string]string) { files["main/symbols.txt"] += "broken kind:pool\n" },
			check: func(t *testing.T, err error) {
				var parseErr *domainerrors.ParseError
				require.ErrorAs(t, err, &parseErr)
				assert.Equal(t, 4, parseErr.Line)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := testutil.ProjectFiles()
			tt.edit(files)
			path := testutil.WriteProject(t, t.TempDir(), files)

			_, err := newLoader(t).Load(path)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}
