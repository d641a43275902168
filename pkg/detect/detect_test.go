package detect

import (
	"testing"

	fixture "github.com/rstms/isolyzer/internal/testing"
	"github.com/rstms/isolyzer/pkg/consts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMagic(t *testing.T) {
	m := Magic{Value: []byte("CD001"), Offset: 1}

	assert.True(t, m.Matches([]byte("\x01CD001\x01")))
	assert.True(t, m.Matches([]byte("\x01CD001")))
	assert.False(t, m.Matches([]byte("\x01CD00")))
	assert.False(t, m.Matches(nil))
	assert.False(t, m.Matches([]byte("CD001\x01")))
	assert.Equal(t, 6, m.Size())

	assert.Equal(t, Magic{Value: []byte{'E', 'R'}, Offset: 0}, uint16Magic(consts.APPLE_ZERO_BLOCK_SIGNATURE, 0))
}

func TestDetectISO9660(t *testing.T) {
	img := fixture.ISO9660(40)

	f := Detect(img.Bytes())
	assert.True(t, f.ISO9660)
	assert.False(t, f.HighSierra)
	assert.False(t, f.Apple())

	t.Run("both descriptors are required", func(t *testing.T) {
		// Wipe the terminator so only the first CD001 remains.
		img.Put(17*2048, make([]byte, 2048))
		assert.False(t, Detect(img.Bytes()).ISO9660)
	})

	t.Run("short buffer", func(t *testing.T) {
		full := fixture.ISO9660(40).Bytes()
		assert.False(t, Detect(full[:17*2048+5]).ISO9660)
		assert.True(t, Detect(full[:17*2048+6]).ISO9660)
	})
}

func TestDetectHighSierra(t *testing.T) {
	f := Detect(fixture.HighSierra(64).Bytes())
	assert.True(t, f.HighSierra)
	assert.False(t, f.ISO9660)
}

func TestDetectApple(t *testing.T) {
	t.Run("partition map at the declared block size", func(t *testing.T) {
		f := Detect(fixture.AppleHybrid(400).Bytes())
		assert.True(t, f.ISO9660)
		assert.True(t, f.AppleZeroBlock)
		assert.Equal(t, 2048, f.ZeroBlockSize)
		assert.True(t, f.ApplePartitionMap)
		assert.Equal(t, AppleLayout{BlockSize: 2048, PartitionMapOffset: 2048}, f.AppleLayout)
		assert.True(t, f.Apple())
		assert.False(t, f.MasterDirectoryBlock())
	})

	t.Run("lowest matching offset wins", func(t *testing.T) {
		img := fixture.NewImage(16 * 2048)
		img.WriteZeroBlock(2048, 64)
		img.WritePartitionMap(1024, "Apple_partition_map", "Apple_HFS")
		f := Detect(img.Bytes())
		require.True(t, f.ApplePartitionMap)
		assert.Equal(t, 1024, f.AppleLayout.BlockSize)
	})

	t.Run("unusual block size from the zero block", func(t *testing.T) {
		img := fixture.NewImage(16 * 4096)
		img.WriteZeroBlock(4096, 16)
		img.WritePartitionMap(4096, "Apple_partition_map")
		f := Detect(img.Bytes())
		require.True(t, f.ApplePartitionMap)
		assert.Equal(t, AppleLayout{BlockSize: 4096, PartitionMapOffset: 4096}, f.AppleLayout)
	})

	t.Run("zero block alone", func(t *testing.T) {
		img := fixture.NewImage(8 * 2048)
		img.WriteZeroBlock(2048, 8)
		f := Detect(img.Bytes())
		assert.True(t, f.AppleZeroBlock)
		assert.False(t, f.Apple())
	})

	t.Run("volume header signatures", func(t *testing.T) {
		tests := []struct {
			signature uint16
			check     func(Flags) bool
		}{
			{consts.APPLE_HFS_SIGNATURE, func(f Flags) bool { return f.HFS && f.MasterDirectoryBlock() }},
			{consts.APPLE_MFS_SIGNATURE, func(f Flags) bool { return f.MFS && f.MasterDirectoryBlock() }},
			{consts.APPLE_HFS_PLUS_SIGNATURE, func(f Flags) bool { return f.HFSPlus && f.HFSPlusVolumeHeader() }},
			{consts.APPLE_HFSX_SIGNATURE, func(f Flags) bool { return f.HFSX && f.HFSPlusVolumeHeader() }},
		}
		for _, tt := range tests {
			img := fixture.NewImage(4 * 1024)
			img.Put(consts.APPLE_VOLUME_HEADER_OFFSET, []byte{byte(tt.signature >> 8), byte(tt.signature)})
			f := Detect(img.Bytes())
			assert.True(t, tt.check(f), "signature %#04x", tt.signature)
			assert.True(t, f.Apple())
		}
	})
}

func TestDetectNothing(t *testing.T) {
	for _, n := range []int{0, 1, 1025, 64 * 2048} {
		assert.Equal(t, Flags{}, Detect(make([]byte, n)))
	}
}

func TestSignatureOffsets(t *testing.T) {
	assert.Equal(t, []int{512, 1024, 1536, 2048}, signatureOffsets(0))
	assert.Equal(t, []int{512, 1024, 1536, 2048}, signatureOffsets(2048))
	assert.Equal(t, []int{256, 512, 1024, 1536, 2048}, signatureOffsets(256))
	assert.Equal(t, []int{512, 1024, 1536, 2048, 4096}, signatureOffsets(4096))
	// The package level list must not be modified.
	assert.Equal(t, []int{512, 1024, 1536, 2048}, partitionMapOffsets)
}
