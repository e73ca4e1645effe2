package testutil

import (
	"encoding/binary"
	"fmt"

	"github.com/Ndymario/dsd-ghidra/infrastructure/rom"
)

// BuildInfoLen is the size of the build info plus NITROCODE marker that
// RomFixture places at the start of every ARM9 static image.
const BuildInfoLen = 0x24

// Fixture defaults.
const (
	DefaultArm9Base  = 0x02000000
	DefaultArm9Entry = 0x02000800
	DefaultArm7Base  = 0x02380000
	DefaultArm7Entry = 0x02380000
	DefaultSdk       = 0x04027531
)

// FixtureModule describes an autoload block.
type FixtureModule struct {
	BaseAddress uint32
	Code        []byte
	BssSize     uint32
}

// FixtureOverlay describes one overlay table row and its file.
type FixtureOverlay struct {
	ID          uint16
	BaseAddress uint32
	Code        []byte
	BssSize     uint32
	Compressed  bool
}

// RomFixture assembles a minimal but well-formed DS ROM image.
type RomFixture struct {
	Title    string
	GameCode string

	Arm9Code     []byte
	Arm9Bss      uint32
	CompressArm9 bool
	Autoloads    []FixtureModule
	Arm9Overlays []FixtureOverlay

	Arm7Code     []byte
	Arm7Overlays []FixtureOverlay
}

// NewRomFixture returns a fixture with an ITCM and a DTCM autoload, one
// compressed and one plain ARM9 overlay, and a plain ARM7.
func NewRomFixture() *RomFixture {
	return &RomFixture{
		Title:    "DSDGHIDRA",
		GameCode: "ADSE",
		Arm9Code: Pattern(0x100, 0x10),
		Arm9Bss:  0x40,
		Autoloads: []FixtureModule{
			{BaseAddress: 0x01ff8000, Code: Pattern(0x40, 0x20), BssSize: 0x20},
			{BaseAddress: 0x027e0000, Code: Pattern(0x20, 0x30), BssSize: 0x100},
		},
		Arm9Overlays: []FixtureOverlay{
			{ID: 0, BaseAddress: 0x020c0000, Code: Pattern(0x80, 0x40), BssSize: 0x10, Compressed: true},
			{ID: 1, BaseAddress: 0x020c0000, Code: Pattern(0x30, 0x50)},
		},
		Arm7Code: Pattern(0x60, 0x70),
	}
}

// Pattern returns n bytes of a short repeating sequence starting at seed.
// The repetition makes it compress well.
func Pattern(n int, seed byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = seed + byte(i%8)
	}
	return b
}

// Arm9Static returns the uncompressed ARM9 static image the fixture builds,
// with CompressedStaticEnd left zero.
func (f *RomFixture) Arm9Static() []byte {
	return f.arm9(DefaultArm9Base)
}

func (f *RomFixture) arm9(base uint32) []byte {
	mainLen := BuildInfoLen + len(f.Arm9Code)
	var blocks []byte
	var infos []byte
	for _, a := range f.Autoloads {
		blocks = append(blocks, a.Code...)
		infos = binary.LittleEndian.AppendUint32(infos, a.BaseAddress)
		infos = binary.LittleEndian.AppendUint32(infos, uint32(len(a.Code)))
		infos = binary.LittleEndian.AppendUint32(infos, a.BssSize)
	}

	blocksAt := base + uint32(mainLen)
	infosAt := blocksAt + uint32(len(blocks))
	bssAt := infosAt + uint32(len(infos))

	var static []byte
	for _, v := range []uint32{infosAt, infosAt + uint32(len(infos)), blocksAt, bssAt, bssAt + f.Arm9Bss, 0, DefaultSdk} {
		static = binary.LittleEndian.AppendUint32(static, v)
	}
	static = binary.LittleEndian.AppendUint32(static, 0x2106c0de)
	static = binary.LittleEndian.AppendUint32(static, 0xdec00621)
	static = append(static, f.Arm9Code...)
	static = append(static, blocks...)
	static = append(static, infos...)
	return static
}

// Build lays the fixture out as a ROM image with a valid header checksum.
func (f *RomFixture) Build() []byte {
	arm9 := f.arm9(DefaultArm9Base)
	if f.CompressArm9 {
		arm9 = CompressBLZ(arm9, BuildInfoLen)
		binary.LittleEndian.PutUint32(arm9[0x14:], DefaultArm9Base+uint32(len(arm9)))
	}

	img := make([]byte, 0x200)
	arm9At := len(img)
	img = append(img, arm9...)
	img = align4(img)
	arm7At := len(img)
	img = append(img, f.Arm7Code...)
	img = align4(img)

	var files [][]byte
	ov9Table, files := overlayTable(f.Arm9Overlays, files)
	ov7Table, files := overlayTable(f.Arm7Overlays, files)

	ov9At := len(img)
	img = append(img, ov9Table...)
	ov7At := len(img)
	img = append(img, ov7Table...)

	fatAt := len(img)
	img = append(img, make([]byte, len(files)*8)...)
	for i, file := range files {
		start := len(img)
		img = append(img, file...)
		binary.LittleEndian.PutUint32(img[fatAt+i*8:], uint32(start))
		binary.LittleEndian.PutUint32(img[fatAt+i*8+4:], uint32(len(img)))
		img = align4(img)
	}

	copy(img[0x00:0x0c], f.Title)
	copy(img[0x0c:0x10], f.GameCode)
	copy(img[0x10:0x12], "01")
	putProgram(img[0x20:], uint32(arm9At), DefaultArm9Entry, DefaultArm9Base, uint32(len(arm9)))
	putProgram(img[0x30:], uint32(arm7At), DefaultArm7Entry, DefaultArm7Base, uint32(len(f.Arm7Code)))
	putRange(img[0x48:], uint32(fatAt), uint32(len(files)*8))
	putRange(img[0x50:], uint32(ov9At), uint32(len(ov9Table)))
	putRange(img[0x58:], uint32(ov7At), uint32(len(ov7Table)))
	FixHeaderCRC(img)
	return img
}

// FixHeaderCRC recomputes the header checksum after img was edited.
func FixHeaderCRC(img []byte) {
	binary.LittleEndian.PutUint16(img[0x15e:], rom.CRC16(img[:0x15e]))
}

func overlayTable(overlays []FixtureOverlay, files [][]byte) ([]byte, [][]byte) {
	var table []byte
	for _, ov := range overlays {
		file := ov.Code
		var flags uint32
		if ov.Compressed {
			file = CompressBLZ(ov.Code, 0)
			flags = 1<<24 | uint32(len(file))
		}
		for _, v := range []uint32{uint32(ov.ID), ov.BaseAddress, uint32(len(ov.Code)), ov.BssSize, 0, 0, uint32(len(files)), flags} {
			table = binary.LittleEndian.AppendUint32(table, v)
		}
		files = append(files, file)
	}
	return table, files
}

func putProgram(b []byte, romOffset, entry, ram, size uint32) {
	binary.LittleEndian.PutUint32(b[0:], romOffset)
	binary.LittleEndian.PutUint32(b[4:], entry)
	binary.LittleEndian.PutUint32(b[8:], ram)
	binary.LittleEndian.PutUint32(b[12:], size)
}

func putRange(b []byte, offset, size uint32) {
	binary.LittleEndian.PutUint32(b[0:], offset)
	binary.LittleEndian.PutUint32(b[4:], size)
}

func align4(b []byte) []byte {
	for len(b)%4 != 0 {
		b = append(b, 0)
	}
	return b
}

// CompressBLZ backwards-LZ compresses data, leaving the first keep bytes
// stored as is. It is a plain greedy encoder and panics when the result
// would not be smaller than the input.
func CompressBLZ(data []byte, keep int) []byte {
	tail := data[keep:]
	r := make([]byte, len(tail))
	for i := range tail {
		r[i] = tail[len(tail)-1-i]
	}

	var s []byte
	var flagAt int
	var mask byte
	for i := 0; i < len(r); {
		if mask == 0 {
			flagAt = len(s)
			s = append(s, 0)
			mask = 0x80
		}
		if n, disp := longestMatch(r, i); n >= 3 {
			s[flagAt] |= mask
			pos := (n-3)<<12 | (disp - 3)
			s = append(s, byte(pos>>8), byte(pos))
			i += n
		} else {
			s = append(s, r[i])
			i++
		}
		mask >>= 1
	}

	pad := (4 - (keep+len(s))%4) % 4
	hdrLen := 8 + pad
	encLen := len(s) + hdrLen
	incLen := len(tail) - encLen
	if incLen <= 0 {
		panic(fmt.Sprintf("testutil: %d bytes do not compress (encoded %d)", len(tail), encLen))
	}

	out := append([]byte(nil), data[:keep]...)
	for i := len(s) - 1; i >= 0; i-- {
		out = append(out, s[i])
	}
	for i := 0; i < pad; i++ {
		out = append(out, 0xff)
	}
	out = binary.LittleEndian.AppendUint32(out, uint32(encLen)|uint32(hdrLen)<<24)
	out = binary.LittleEndian.AppendUint32(out, uint32(incLen))
	return out
}

func longestMatch(r []byte, i int) (n, disp int) {
	for d := 3; d <= 0x1002 && d <= i; d++ {
		j := i - d
		k := 0
		for k < 18 && i+k < len(r) && r[j+k] == r[i+k] {
			k++
		}
		if k > n {
			n, disp = k, d
		}
	}
	return n, disp
}
