package main

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ndymario/dsd-ghidra/ffi"
	"github.com/Ndymario/dsd-ghidra/internal/testutil"
)

// rawSlot stands in for the uninitialised struct memory JNA passes in.
func rawSlot[T any]() (unsafe.Pointer, []byte) {
	var zero T
	words := make([]uint64, (unsafe.Sizeof(zero)+7)/8)
	p := unsafe.Pointer(&words[0])
	return p, unsafe.Slice((*byte)(p), unsafe.Sizeof(zero))
}

func TestRomView(t *testing.T) {
	img := []byte{1, 2, 3, 4}

	assert.Nil(t, romView(nil, 4))
	assert.Nil(t, romView(unsafe.Pointer(&img[0]), 0))

	view := romView(unsafe.Pointer(&img[0]), 3)
	assert.Equal(t, []byte{1, 2, 3}, view)
	assert.Same(t, &img[0], &view[0], "the buffer is viewed, not copied")
}

func TestSlots_AliasCallerMemory(t *testing.T) {
	p, _ := rawSlot[ffi.LoaderData]()
	assert.Equal(t, p, unsafe.Pointer(loaderSlot(p)))
	assert.Nil(t, loaderSlot(nil))

	p, _ = rawSlot[ffi.SyncData]()
	assert.Equal(t, p, unsafe.Pointer(syncSlot(p)))
	assert.Nil(t, syncSlot(nil))
}

func TestIsValidRom(t *testing.T) {
	img := testutil.NewRomFixture().Build()

	assert.True(t, isValidRom(unsafe.Pointer(&img[0]), uint32(len(img))))
	assert.False(t, isValidRom(unsafe.Pointer(&img[0]), 0x100))
	assert.False(t, isValidRom(nil, 0))
}

func TestLoaderData_ThroughRawSlot(t *testing.T) {
	fixture := testutil.NewRomFixture()
	img := fixture.Build()
	slot, raw := rawSlot[ffi.LoaderData]()

	require.True(t, getLoaderData(bridge, unsafe.Pointer(&img[0]), uint32(len(img)), slot))
	assert.Positive(t, heap.Live())

	ld := loaderSlot(slot)
	assert.Equal(t, fixture.Title, ld.Title.View())
	assert.Equal(t, fixture.GameCode, ld.GameCode.View())
	assert.Equal(t, uint32(testutil.DefaultArm7Entry), ld.Arm7Entry)
	assert.Equal(t, fixture.Arm7Code, ld.Arm7.Code.View())
	require.Equal(t, uint32(len(fixture.Arm9Overlays)), ld.Arm9Overlays.Len)

	freeLoaderData(bridge, slot)
	assert.Zero(t, heap.Live())
	assert.Equal(t, make([]byte, len(raw)), raw, "free zeroes the slot")
}

func TestLoaderData_FailureLeavesRawSlotUntouched(t *testing.T) {
	slot, raw := rawSlot[ffi.LoaderData]()
	for i := range raw {
		raw[i] = 0xaa
	}
	junk := []byte("not a rom")

	assert.False(t, getLoaderData(bridge, unsafe.Pointer(&junk[0]), uint32(len(junk)), slot))
	assert.False(t, getLoaderData(bridge, unsafe.Pointer(&junk[0]), uint32(len(junk)), nil))
	for _, b := range raw {
		require.Equal(t, byte(0xaa), b)
	}
	assert.Zero(t, heap.Live())
}

func TestSyncData_ThroughRawSlot(t *testing.T) {
	path := append([]byte(testutil.WriteProject(t, t.TempDir(), testutil.ProjectFiles())), 0)
	slot, raw := rawSlot[ffi.SyncData]()

	require.True(t, getSyncData(bridge, unsafe.Pointer(&path[0]), slot))

	data := syncSlot(slot)
	assert.Equal(t, "main", data.Arm9.Name.View())
	assert.Equal(t, testutil.ProjectHash, data.Arm9.Hash.View())
	assert.Equal(t, uint32(1), data.Autoloads.Len)
	assert.Equal(t, uint32(1), data.Arm9Overlays.Len)

	freeSyncData(bridge, slot)
	assert.Zero(t, heap.Live())
	assert.Equal(t, make([]byte, len(raw)), raw)
}

func TestSyncData_NullPath(t *testing.T) {
	slot, _ := rawSlot[ffi.SyncData]()

	assert.False(t, getSyncData(bridge, nil, slot))
	assert.Zero(t, heap.Live())
}

func TestFree_NilSlotIgnored(t *testing.T) {
	assert.NotPanics(t, func() {
		freeLoaderData(bridge, nil)
		freeSyncData(bridge, nil)
	})
}
