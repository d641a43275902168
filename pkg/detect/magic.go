package detect

import "bytes"

// Magic is a signature value expected at a fixed byte offset.
type Magic struct {
	Value  []byte
	Offset int
}

// Matches reports whether buf holds the magic value at its offset. A buffer too short to hold the
// value does not match.
func (m Magic) Matches(buf []byte) bool {
	end := m.Offset + len(m.Value)
	if m.Offset < 0 || len(buf) < end {
		return false
	}
	return bytes.Equal(buf[m.Offset:end], m.Value)
}

// Size is the number of bytes that must be available to test the magic.
func (m Magic) Size() int {
	return m.Offset + len(m.Value)
}

func uint16Magic(v uint16, offset int) Magic {
	return Magic{Value: []byte{byte(v >> 8), byte(v)}, Offset: offset}
}
