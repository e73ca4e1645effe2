// Command libdsdghidra builds the shared library the Ghidra plugin loads
// through JNA:
//
//	go build -buildmode=c-shared -o libdsd_ghidra.so ./cmd/libdsdghidra
//
// Records handed out by the get functions live on the C heap until the
// matching free function is called.
package main

/*
#include <stdbool.h>
#include <stdint.h>
*/
import "C"

import (
	"os"
	"unsafe"

	dsdghidra "github.com/Ndymario/dsd-ghidra"
	"github.com/Ndymario/dsd-ghidra/internal/abi/cmem"
	"github.com/Ndymario/dsd-ghidra/log"
)

var (
	heap   = &cmem.Allocator{}
	bridge = dsdghidra.NewBridge(heap, dsdghidra.WithLogger(log.Setup(os.Stderr)))
)

//export is_valid_ds_rom
func is_valid_ds_rom(bytes *C.uint8_t, length C.uint32_t) C.bool {
	return C.bool(isValidRom(unsafe.Pointer(bytes), uint32(length)))
}

//export get_loader_data
func get_loader_data(bytes *C.uint8_t, length C.uint32_t, out unsafe.Pointer) C.bool {
	return C.bool(getLoaderData(bridge, unsafe.Pointer(bytes), uint32(length), out))
}

//export free_loader_data
func free_loader_data(data unsafe.Pointer) {
	freeLoaderData(bridge, data)
}

//export get_dsd_sync_data
func get_dsd_sync_data(configPath *C.char, out unsafe.Pointer) C.bool {
	return C.bool(getSyncData(bridge, unsafe.Pointer(configPath), out))
}

//export free_dsd_sync_data
func free_dsd_sync_data(data unsafe.Pointer) {
	freeSyncData(bridge, data)
}

func main() {}
