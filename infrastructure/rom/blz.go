package rom

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var errBlzTruncated = errors.New("blz: compressed data ends early")

// MaxDecompressedSize caps the output of DecompressBLZ. Nothing larger than
// DSi main RAM can be loaded.
const MaxDecompressedSize = 16 << 20

// maxBLZRatio bounds how much one encoded byte can expand: a flag byte and
// eight 2-byte references decode to at most 144 bytes.
const maxBLZRatio = 9

// DecompressBLZ expands a backwards-LZ compressed binary, the format the DS
// SDK uses for the ARM9 static image and for overlays.
//
// The last 8 bytes are a footer: a 24-bit length of the encoded tail
// (footer included), the footer length, and how much the tail grows when
// decoded. Everything in front of the encoded tail is stored as is. The tail
// is decoded back to front.
func DecompressBLZ(data []byte) ([]byte, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("blz: %d bytes is too short for a footer", len(data))
	}
	incLen := uint64(binary.LittleEndian.Uint32(data[len(data)-4:]))
	if incLen == 0 {
		// Stored uncompressed.
		return append([]byte(nil), data[:len(data)-4]...), nil
	}
	hdrLen := int(data[len(data)-5])
	if hdrLen < 8 || hdrLen > 0xb || len(data) <= hdrLen {
		return nil, fmt.Errorf("blz: invalid footer length %d", hdrLen)
	}
	encLen := int(binary.LittleEndian.Uint32(data[len(data)-8:]) & 0x00ffffff)
	if encLen < hdrLen || encLen > len(data) {
		return nil, fmt.Errorf("blz: invalid encoded length %d", encLen)
	}

	decLen := len(data) - encLen
	pakLen := encLen - hdrLen
	tailLen := uint64(encLen) + incLen
	if total := uint64(decLen) + tailLen; total > MaxDecompressedSize {
		return nil, fmt.Errorf("blz: decoded length %d exceeds %d", total, MaxDecompressedSize)
	}
	if tailLen > maxBLZRatio*uint64(pakLen) {
		return nil, fmt.Errorf("blz: decoded length %d exceeds what %d encoded bytes can produce", tailLen, pakLen)
	}
	rawLen := decLen + int(tailLen)

	raw := make([]byte, rawLen)
	copy(raw, data[:decLen])

	pak := make([]byte, pakLen)
	for i := range pak {
		pak[i] = data[decLen+pakLen-1-i]
	}

	out, p := decLen, 0
	var flags, mask byte
	for out < rawLen {
		if mask >>= 1; mask == 0 {
			if p == len(pak) {
				break
			}
			flags = pak[p]
			p++
			mask = 0x80
		}
		if flags&mask == 0 {
			if p == len(pak) {
				break
			}
			raw[out] = pak[p]
			out++
			p++
			continue
		}
		if p+1 >= len(pak) {
			break
		}
		pos := int(pak[p])<<8 | int(pak[p+1])
		p += 2
		n := pos>>12 + 3
		disp := pos&0xfff + 3
		if disp > out-decLen {
			return nil, fmt.Errorf("blz: back-reference %d before start of data at %d", disp, out-decLen)
		}
		if out+n > rawLen {
			n = rawLen - out
		}
		for ; n > 0; n-- {
			raw[out] = raw[out-disp]
			out++
		}
	}
	if out != rawLen {
		return nil, errBlzTruncated
	}

	tail := raw[decLen:]
	for i, j := 0, len(tail)-1; i < j; i, j = i+1, j-1 {
		tail[i], tail[j] = tail[j], tail[i]
	}
	return raw, nil
}
