// Command dsdinspect runs the plugin's native entry points against a ROM or a
// dsd project and prints what the plugin would receive.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	dsdghidra "github.com/Ndymario/dsd-ghidra"
	"github.com/Ndymario/dsd-ghidra/application/schema"
	"github.com/Ndymario/dsd-ghidra/ffi"
	"github.com/Ndymario/dsd-ghidra/internal/abi"
	"github.com/Ndymario/dsd-ghidra/log"
)

const usage = `Usage: dsdinspect [-limit bytes] [-only glob] <command> [args]

Commands:
  rom <file.nds>       print the loader data read from a ROM
  sync <config.yaml>   print the sync data read from a dsd project
  schema               print the JSON Schema for config.yaml
`

var errFailed = errors.New("call failed, see log above")

type options struct {
	limit int
	only  string
}

func main() {
	var opts options
	flag.IntVar(&opts.limit, "limit", 0, "Fail allocations past this many bytes (0 means no limit)")
	flag.StringVar(&opts.only, "only", "", "Only print autoloads and overlays whose name matches this glob")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	log.Setup(os.Stderr)
	if err := run(os.Stdout, flag.Args(), opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(w io.Writer, args []string, opts options) error {
	cmd, args := args[0], args[1:]

	if cmd == "schema" {
		s, err := schema.ConfigSchema()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(s))
		return err
	}

	if len(args) != 1 {
		return fmt.Errorf("%s takes exactly one path", cmd)
	}
	only, err := newModuleFilter(opts.only)
	if err != nil {
		return err
	}

	mem := abi.NewMemory(abi.WithMaxTotalAllocations(opts.limit))
	bridge := dsdghidra.NewBridge(mem)

	var summary interface{}
	switch cmd {
	case "rom":
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read rom: %w", err)
		}
		if !dsdghidra.IsValidRom(data) {
			return fmt.Errorf("%s is not a DS ROM", args[0])
		}
		var out ffi.LoaderData
		if !bridge.GetLoaderData(data, &out) {
			return errFailed
		}
		summary = only.loader(summarizeLoaderData(&out))
		bridge.FreeLoaderData(&out)
	case "sync":
		path := append([]byte(args[0]), 0)
		var out ffi.SyncData
		if !bridge.GetSyncData(&path[0], &out) {
			return errFailed
		}
		summary = only.sync(summarizeSyncData(&out))
		bridge.FreeSyncData(&out)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}

	if stats := mem.Stats(); stats.Live != 0 || stats.UnknownFrees != 0 {
		return fmt.Errorf("leak: %d blocks (%d bytes) still live, %d unknown frees",
			stats.Live, stats.Bytes, stats.UnknownFrees)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
