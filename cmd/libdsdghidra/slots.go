package main

import (
	"unsafe"

	dsdghidra "github.com/Ndymario/dsd-ghidra"
	"github.com/Ndymario/dsd-ghidra/ffi"
)

// romView views the caller's buffer without copying. It is only valid for
// the duration of the call.
func romView(bytes unsafe.Pointer, length uint32) []byte {
	if bytes == nil || length == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(bytes), int(length))
}

func loaderSlot(p unsafe.Pointer) *ffi.LoaderData {
	return (*ffi.LoaderData)(p)
}

func syncSlot(p unsafe.Pointer) *ffi.SyncData {
	return (*ffi.SyncData)(p)
}

func isValidRom(bytes unsafe.Pointer, length uint32) bool {
	return dsdghidra.IsValidRom(romView(bytes, length))
}

func getLoaderData(b *dsdghidra.Bridge, bytes unsafe.Pointer, length uint32, out unsafe.Pointer) bool {
	return b.GetLoaderData(romView(bytes, length), loaderSlot(out))
}

func freeLoaderData(b *dsdghidra.Bridge, data unsafe.Pointer) {
	b.FreeLoaderData(loaderSlot(data))
}

func getSyncData(b *dsdghidra.Bridge, configPath, out unsafe.Pointer) bool {
	return b.GetSyncData((*byte)(configPath), syncSlot(out))
}

func freeSyncData(b *dsdghidra.Bridge, data unsafe.Pointer) {
	b.FreeSyncData(syncSlot(data))
}
