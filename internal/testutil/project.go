package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// ProjectHash is the hash the fixture project gives its main module.
const ProjectHash = "2f1c0d7c1a2b3c4d5e6f708192a3b4c5d6e7f809"

// ProjectFiles is a small dsd project: a main module, an ITCM autoload and
// one overlay. Keys are paths relative to the project directory.
func ProjectFiles() map[string]string {
	return map[string]string{
		"config.yaml": `rom_config: ../extract/arm9.yaml
build_path: ../build
delinks_path: ../build/delinks
main_module:
  name: main
  object: main.o
  hash: ` + ProjectHash + `
  delinks: main/delinks.txt
  symbols: main/symbols.txt
autoloads:
  - name: itcm
    kind: itcm
    delinks: itcm/delinks.txt
    symbols: itcm/symbols.txt
overlays:
  - name: ov000
    id: 0
    delinks: ov000/delinks.txt
    symbols: ov000/symbols.txt
`,
		"main/delinks.txt": `    .text       start:0x02000000 end:0x02000100 kind:code align:32
    .bss        start:0x02000100 end:0x02000140 kind:bss align:4

src/main.c:
    .text start:0x02000000 end:0x02000100
`,
		"main/symbols.txt": `Entry kind:function(arm,size=0x40) addr:0x02000800
func_02000840 kind:function(thumb,size=0x1c) addr:0x02000840
data_02000100 kind:bss(size=0x40) addr:0x02000100
`,
		"itcm/delinks.txt": `    .text       start:0x01ff8000 end:0x01ff8040 kind:code align:4
`,
		"itcm/symbols.txt": `func_01ff8000 kind:function(arm,size=0x40) addr:0x01ff8000
`,
		"ov000/delinks.txt": `    .data       start:0x020c0040 end:0x020c0080 kind:data align:4
    .text       start:0x020c0000 end:0x020c0040 kind:code align:4
`,
		"ov000/symbols.txt": "",
	}
}

// WriteProject writes files under dir and returns the config.yaml path.
func WriteProject(t *testing.T, dir string, files map[string]string) string {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return filepath.Join(dir, "config.yaml")
}
