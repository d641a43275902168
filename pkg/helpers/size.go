package helpers

import (
	"math"
	"math/bits"
)

// MulSize multiplies two non-negative sizes. A product that does not fit an int64 saturates at
// math.MaxInt64 so that an absurd declared size still compares as larger than any real file.
// Negative operands yield 0.
func MulSize(a, b int64) int64 {
	if a <= 0 || b <= 0 {
		return 0
	}
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi != 0 || lo > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(lo)
}
