package helpers

import "github.com/rstms/isolyzer/pkg/consts"

// PadString returns s as a fixed length byte field padded with the ISO9660 filler character.
func PadString(s string, length int) []byte {
	b := make([]byte, length)
	copy(b, s)
	for i := len(s); i < length; i++ {
		b[i] = consts.ISO9660_FILLER
	}
	return b
}
