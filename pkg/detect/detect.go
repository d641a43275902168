package detect

import (
	"sort"

	"github.com/rstms/isolyzer/pkg/consts"
	"github.com/rstms/isolyzer/pkg/encoding"
)

var (
	iso9660Primary   = Magic{Value: []byte(consts.ISO9660_STD_IDENTIFIER), Offset: consts.ISO9660_DESCRIPTOR_START + 1}
	iso9660Secondary = Magic{Value: []byte(consts.ISO9660_STD_IDENTIFIER), Offset: consts.ISO9660_DESCRIPTOR_START + consts.ISO9660_SECTOR_SIZE + 1}
	highSierra       = Magic{Value: []byte(consts.HSF_STD_IDENTIFIER), Offset: consts.ISO9660_DESCRIPTOR_START + 9}

	appleZeroBlock = uint16Magic(consts.APPLE_ZERO_BLOCK_SIGNATURE, 0)
	appleHFS       = uint16Magic(consts.APPLE_HFS_SIGNATURE, consts.APPLE_VOLUME_HEADER_OFFSET)
	appleMFS       = uint16Magic(consts.APPLE_MFS_SIGNATURE, consts.APPLE_VOLUME_HEADER_OFFSET)
	appleHFSPlus   = uint16Magic(consts.APPLE_HFS_PLUS_SIGNATURE, consts.APPLE_VOLUME_HEADER_OFFSET)
	appleHFSX      = uint16Magic(consts.APPLE_HFSX_SIGNATURE, consts.APPLE_VOLUME_HEADER_OFFSET)
)

// Block sizes tried when looking for the Apple partition map. The size declared by the zero block is
// added to these since it cannot be trusted on its own on hybrid media.
var partitionMapOffsets = []int{512, 1024, 1536, 2048}

// AppleLayout locates the Apple partition map. The map starts in block 1, so both values are the same
// number: the offset at which the map signature was found.
type AppleLayout struct {
	BlockSize          int
	PartitionMapOffset int
}

// Flags records which filesystem signatures were found. It is computed once per image and passed by value.
type Flags struct {
	ISO9660    bool
	HighSierra bool

	AppleZeroBlock bool
	// Block size declared by the zero block, 0 when there is no zero block.
	ZeroBlockSize     int
	ApplePartitionMap bool
	AppleLayout       AppleLayout

	// Magic found at offset 1024.
	HFS     bool
	MFS     bool
	HFSPlus bool
	HFSX    bool
}

// Apple reports whether any Apple structure beyond a bare zero block was found.
func (f Flags) Apple() bool {
	return f.ApplePartitionMap || f.MasterDirectoryBlock() || f.HFSPlusVolumeHeader()
}

// MasterDirectoryBlock reports whether an HFS or MFS master directory block sits at offset 1024.
func (f Flags) MasterDirectoryBlock() bool {
	return f.HFS || f.MFS
}

// HFSPlusVolumeHeader reports whether an HFS+ or HFS X volume header sits at offset 1024.
func (f Flags) HFSPlusVolumeHeader() bool {
	return f.HFSPlus || f.HFSX
}

// Detect checks buf for every supported signature. Each check is independent.
func Detect(buf encoding.Region) Flags {
	f := Flags{
		ISO9660:        iso9660Primary.Matches(buf) && iso9660Secondary.Matches(buf),
		HighSierra:     highSierra.Matches(buf),
		AppleZeroBlock: appleZeroBlock.Matches(buf),
		HFS:            appleHFS.Matches(buf),
		MFS:            appleMFS.Matches(buf),
		HFSPlus:        appleHFSPlus.Matches(buf),
		HFSX:           appleHFSX.Matches(buf),
	}

	if f.AppleZeroBlock {
		if size := encoding.Uint16BE(buf.Slice(2, 4)); size > 0 {
			f.ZeroBlockSize = int(size)
		}
	}

	for _, offset := range signatureOffsets(f.ZeroBlockSize) {
		if uint16Magic(consts.APPLE_PARTITION_MAP_SIGNATURE, offset).Matches(buf) {
			f.ApplePartitionMap = true
			f.AppleLayout = AppleLayout{BlockSize: offset, PartitionMapOffset: offset}
			break
		}
	}

	return f
}

// signatureOffsets returns the ascending, de-duplicated partition map offsets to check.
func signatureOffsets(zeroBlockSize int) []int {
	offsets := append([]int{}, partitionMapOffsets...)
	if zeroBlockSize > 0 {
		offsets = append(offsets, zeroBlockSize)
	}
	sort.Ints(offsets)

	out := make([]int, 0, len(offsets))
	for _, o := range offsets {
		if len(out) > 0 && out[len(out)-1] == o {
			continue
		}
		out = append(out, o)
	}
	return out
}
