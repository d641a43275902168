package encoding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegionSlice(t *testing.T) {
	r := Region("0123456789")

	assert.Equal(t, Region("234"), r.Slice(2, 5))
	assert.Equal(t, Region("89"), r.Slice(8, 20))
	assert.Equal(t, Region("01"), r.Slice(-3, 2))
	assert.Empty(t, r.Slice(12, 20))
	assert.Empty(t, r.Slice(5, 5))
	assert.Empty(t, r.Slice(6, 2))
	assert.Equal(t, Region("567"), r.At(5, 3))
	assert.Equal(t, 2, r.At(8, 100).Len())
	assert.Empty(t, Region(nil).At(0, 4))

	t.Run("sub-regions do not share spare capacity", func(t *testing.T) {
		s := r.Slice(2, 4)
		assert.Equal(t, 2, cap(s))
	})
}

func TestIntegerDecoders(t *testing.T) {
	b := Region{0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc, 0xde, 0xf0}

	assert.Equal(t, int64(0x12), Uint8(b.Slice(0, 1)))
	assert.Equal(t, int64(-1), Int8(Region{0xff}))
	assert.Equal(t, int64(0x1234), Uint16BE(b.Slice(0, 2)))
	assert.Equal(t, int64(0x3412), Uint16LE(b.Slice(0, 2)))
	assert.Equal(t, int64(0x12345678), Uint32BE(b.Slice(0, 4)))
	assert.Equal(t, int64(0x78563412), Uint32LE(b.Slice(0, 4)))
	assert.Equal(t, int64(0xffffffff), Uint32BE(Region{0xff, 0xff, 0xff, 0xff}))

	v, ok := Uint64BE(b)
	require.True(t, ok)
	assert.Equal(t, uint64(0x123456789abcdef0), v)
	v, ok = Uint64LE(b)
	require.True(t, ok)
	assert.Equal(t, uint64(0xf0debc9a78563412), v)
}

func TestSentinel(t *testing.T) {
	tests := []struct {
		name   string
		decode func(Region) int64
		width  int
	}{
		{"uint8", Uint8, 1},
		{"int8", Int8, 1},
		{"uint16 big endian", Uint16BE, 2},
		{"uint16 little endian", Uint16LE, 2},
		{"uint32 big endian", Uint32BE, 4},
		{"uint32 little endian", Uint32LE, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, Sentinel, tt.decode(nil))
			assert.Equal(t, Sentinel, tt.decode(make(Region, tt.width-1)))
			assert.Equal(t, Sentinel, tt.decode(make(Region, tt.width+1)))
			assert.NotEqual(t, Sentinel, tt.decode(make(Region, tt.width)))
		})
	}

	t.Run("uint64", func(t *testing.T) {
		_, ok := Uint64BE(make(Region, 7))
		assert.False(t, ok)
		_, ok = Uint64LE(make(Region, 9))
		assert.False(t, ok)
	})

	t.Run("no legal value collides", func(t *testing.T) {
		// -9999 as a 16 and 32 bit two's complement pattern decodes to a positive number.
		assert.Equal(t, int64(0xd8f1), Uint16BE(Region{0xd8, 0xf1}))
		assert.Equal(t, int64(0xffffd8f1), Uint32BE(Region{0xff, 0xff, 0xd8, 0xf1}))
		for i := 0; i < 256; i++ {
			assert.NotEqual(t, Sentinel, Int8(Region{byte(i)}))
		}
	})
}

func TestSwap32(t *testing.T) {
	assert.Equal(t, int64(0x78563412), Swap32(0x12345678))
	assert.Equal(t, int64(19), Swap32(Swap32(19)))
	assert.Equal(t, int64(0x13000000), Swap32(0x13))
	assert.Equal(t, Sentinel, Swap32(Sentinel))
}

func TestText(t *testing.T) {
	tests := []struct {
		name string
		in   Region
		want string
	}{
		{"plain", Region("CD001"), "CD001"},
		{"trailing nul", Region("HFS\x00\x00\x00"), "HFS"},
		{"padding is kept", Region("VOLUME  "), "VOLUME  "},
		{"all nul", make(Region, 8), ""},
		{"empty", nil, ""},
		{"control characters removed", Region("A\x01B\x7fC\x00D"), "ABCD"},
		{"tab newline and carriage return kept", Region("a\tb\nc\rd"), "a\tb\nc\rd"},
		{"utf-8", Region("Disque été"), "Disque été"},
		{"invalid utf-8", Region{'A', 0xd2, 0xd7}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Text(tt.in)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("leading flags byte of an identifier", func(t *testing.T) {
		assert.Equal(t, "*OSTA UDF Compliant", Text(Region("\x00*OSTA UDF Compliant\x00\x00")))
	})
}

func TestDecDateTime(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"iso9660", "2024010212304500\x00", "2024/01/02, 12:30:45"},
		{"gmt offset is not applied", "1999123123595900\x24", "1999/12/31, 23:59:59"},
		{"high sierra without offset", "1988063015000000", "1988/06/30, 15:00:00"},
		{"not specified", "0000000000000000\x00", ""},
		{"spaces", "                \x00", ""},
		{"not digits", "20240102ab304500\x00", ""},
		{"too short", "202401021230", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecDateTime(Region(tt.in)))
		})
	}
}

func TestGMTOffset(t *testing.T) {
	assert.Equal(t, int64(36), GMTOffset(Region("1999123123595900\x24")))
	assert.Equal(t, int64(-20), GMTOffset(Region("1999123123595900\xec")))
	assert.Equal(t, int64(0), GMTOffset(Region("0000000000000000\x00")))
	assert.Equal(t, Sentinel, GMTOffset(Region("1988063015000000")))
}
