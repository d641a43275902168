package encoding

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	xencoding "golang.org/x/text/encoding"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// Sentinel is returned by the integer decoders when the region does not have the exact width of the
// requested type. Every legal value of a 1, 2 or 4 byte field is non-negative, so it can never collide.
const Sentinel int64 = -9999

// Region is a read-only view over a contiguous range of an image.
type Region []byte

// Slice returns the sub-region [start:end]. Out of range bounds are clamped to the region, so reading
// past the end of a truncated image yields a short (or empty) region instead of panicking.
func (r Region) Slice(start, end int) Region {
	if start < 0 {
		start = 0
	}
	if end > len(r) {
		end = len(r)
	}
	if start >= end {
		return Region{}
	}
	return r[start:end:end]
}

// At returns length bytes starting at offset, clamped like Slice.
func (r Region) At(offset, length int) Region {
	return r.Slice(offset, offset+length)
}

// Len returns the length of the region in bytes.
func (r Region) Len() int {
	return len(r)
}

// Uint8 decodes a 1-byte unsigned integer.
func Uint8(r Region) int64 {
	if len(r) != 1 {
		return Sentinel
	}
	return int64(r[0])
}

// Int8 decodes a 1-byte signed integer.
func Int8(r Region) int64 {
	if len(r) != 1 {
		return Sentinel
	}
	return int64(int8(r[0]))
}

// Uint16BE decodes a big-endian 16-bit unsigned integer.
func Uint16BE(r Region) int64 {
	return uint16With(r, binary.BigEndian)
}

// Uint16LE decodes a little-endian 16-bit unsigned integer.
func Uint16LE(r Region) int64 {
	return uint16With(r, binary.LittleEndian)
}

// Uint32BE decodes a big-endian 32-bit unsigned integer.
func Uint32BE(r Region) int64 {
	return uint32With(r, binary.BigEndian)
}

// Uint32LE decodes a little-endian 32-bit unsigned integer.
func Uint32LE(r Region) int64 {
	return uint32With(r, binary.LittleEndian)
}

// Uint64BE decodes a big-endian 64-bit unsigned integer. The full uint64 domain is legal, so failure is
// reported through ok rather than a sentinel.
func Uint64BE(r Region) (v uint64, ok bool) {
	return uint64With(r, binary.BigEndian)
}

// Uint64LE decodes a little-endian 64-bit unsigned integer.
func Uint64LE(r Region) (v uint64, ok bool) {
	return uint64With(r, binary.LittleEndian)
}

func uint16With(r Region, order binary.ByteOrder) int64 {
	if len(r) != 2 {
		return Sentinel
	}
	return int64(order.Uint16(r))
}

func uint32With(r Region, order binary.ByteOrder) int64 {
	if len(r) != 4 {
		return Sentinel
	}
	return int64(order.Uint32(r))
}

func uint64With(r Region, order binary.ByteOrder) (uint64, bool) {
	if len(r) != 8 {
		return 0, false
	}
	return order.Uint64(r), true
}

// Swap32 byte-swaps a 4-byte value. Fields stored little-endian only (the type-L path table locations)
// are read with the big-endian decoder like their neighbours and swapped back here.
func Swap32(v int64) int64 {
	if v == Sentinel || v < 0 || v > 0xFFFFFFFF {
		return v
	}
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(v))
	return int64(binary.LittleEndian.Uint32(buf[:]))
}

// isControl reports whether r belongs to Unicode category C. Tab, newline and carriage return are kept.
func isControl(r rune) bool {
	if r == '\t' || r == '\n' || r == '\r' {
		return false
	}
	return unicode.Is(unicode.C, r)
}

// Text decodes a padded text field: trailing NUL bytes are dropped, the rest must be valid UTF-8, and
// control characters are removed. Undecodable input yields an empty string.
func Text(r Region) string {
	b := bytes.TrimRight(r, "\x00")
	if len(b) == 0 {
		return ""
	}
	// Transform chains are stateful and must not be shared between goroutines.
	t := transform.Chain(xencoding.UTF8Validator, runes.Remove(runes.Predicate(isControl)))
	out, _, err := transform.Bytes(t, b)
	if err != nil {
		return ""
	}
	return string(out)
}

// DecDateTime converts a decimal date-time field (ISO9660 8.4.26.1, High Sierra 11.4) to a
// "YYYY/MM/DD, hh:mm:ss" string. Unparseable fields and the all-zero "not specified" placeholder
// return an empty string.
// The GMT offset that may follow the digits is not applied; see GMTOffset.
func DecDateTime(r Region) string {
	if r.Len() < 16 {
		return ""
	}
	digits := Text(r.Slice(0, 16))
	if strings.Trim(digits, "0 ") == "" {
		return ""
	}

	parts := [7]int{}
	bounds := [8]int{0, 4, 6, 8, 10, 12, 14, 16}
	for i := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(Text(r.Slice(bounds[i], bounds[i+1]))))
		if err != nil {
			return ""
		}
		parts[i] = n
	}
	return fmt.Sprintf("%d/%02d/%02d, %02d:%02d:%02d", parts[0], parts[1], parts[2], parts[3], parts[4], parts[5])
}

// GMTOffset decodes the signed offset from GMT, in 15 minute intervals, stored in the 17th byte of an
// ISO9660 date-time field. Fields without that byte yield Sentinel.
func GMTOffset(r Region) int64 {
	return Int8(r.Slice(16, 17))
}
