package apple

import (
	"github.com/rstms/isolyzer/pkg/consts"
	"github.com/rstms/isolyzer/pkg/descriptor"
	"github.com/rstms/isolyzer/pkg/encoding"
	"github.com/rstms/isolyzer/pkg/helpers"
)

// Every Apple record decoded here fits in one 512 byte block; the length checks below use the end of the
// last field read, so a block cut short after that point still decodes.
const (
	zeroBlockLength            = 90
	partitionMapEntryLength    = 136
	masterDirectoryBlockLength = 63
	hfsPlusVolumeHeaderLength  = 80
)

// ParseZeroBlock decodes the driver descriptor map stored in block 0 (IOApplePartitionScheme.h, Block0).
func ParseZeroBlock(data encoding.Region) (descriptor.Descriptor, error) {
	b, err := descriptor.NewBuilder(data, zeroBlockLength)
	if err != nil {
		return descriptor.Descriptor{}, err
	}

	b.Text("signature", 0, 2).
		Uint16BE("blockSize", 2).
		Uint32BE("blockCount", 4).
		Uint16BE("deviceType", 8).
		Uint16BE("deviceID", 10).
		Uint32BE("driverData", 12).
		Uint16BE("driverDescriptorCount", 80).
		Uint32BE("driverDescriptorBlockStart", 82).
		Uint16BE("driverDescriptorBlockCount", 86).
		Uint16BE("driverDescriptorSystemType", 88)

	return b.Build(descriptor.KIND_APPLE_ZERO_BLOCK, 0), nil
}

// ParsePartitionMapEntry decodes one entry of the Apple partition map.
func ParsePartitionMapEntry(data encoding.Region) (descriptor.Descriptor, error) {
	b, err := descriptor.NewBuilder(data, partitionMapEntryLength)
	if err != nil {
		return descriptor.Descriptor{}, err
	}

	b.Text("signature", 0, 2).
		Uint32BE("numberOfPartitionEntries", 4).
		Uint32BE("partitionBlockStart", 8).
		Uint32BE("partitionBlockCount", 12).
		Text("partitionName", 16, 48).
		Text("partitionType", 48, 80).
		Uint32BE("partitionLogicalBlockStart", 80).
		Uint32BE("partitionLogicalBlockCount", 84).
		Uint32BE("partitionFlags", 88).
		Uint32BE("bootCodeBlockStart", 92).
		Uint32BE("bootCodeSizeInBytes", 96).
		Uint32BE("bootCodeLoadAddress", 100).
		Uint32BE("bootCodeJumpAddress", 108).
		Uint32BE("bootCodeChecksum", 116).
		Text("processorType", 120, 136)

	return b.Build(descriptor.KIND_APPLE_PARTITION_MAP, 0), nil
}

// ParseMasterDirectoryBlock decodes an HFS or MFS master directory block. Only the fields needed for
// the volume size and the volume name are read.
func ParseMasterDirectoryBlock(data encoding.Region) (descriptor.Descriptor, error) {
	b, err := descriptor.NewBuilder(data, masterDirectoryBlockLength)
	if err != nil {
		return descriptor.Descriptor{}, err
	}

	b.Text("signature", 0, 2).
		Uint16BE("blockCount", 18).
		Uint32BE("blockSize", 20).
		Text("volumeName", 37, 63)

	return b.Build(descriptor.KIND_MASTER_DIRECTORY_BLOCK, 0), nil
}

// ParseHFSPlusVolumeHeader decodes the start of an HFS+ or HFS X volume header (hfs_format.h).
func ParseHFSPlusVolumeHeader(data encoding.Region) (descriptor.Descriptor, error) {
	b, err := descriptor.NewBuilder(data, hfsPlusVolumeHeaderLength)
	if err != nil {
		return descriptor.Descriptor{}, err
	}

	b.Text("signature", 0, 2).
		Uint16BE("version", 2).
		Uint32BE("fileCount", 32).
		Uint32BE("folderCount", 36).
		Uint32BE("blockSize", 40).
		Uint32BE("blockCount", 44).
		Uint32BE("freeBlocks", 48).
		Uint64BE("encodingsBitmap", 72)

	return b.Build(descriptor.KIND_HFS_PLUS_VOLUME_HEADER, 0), nil
}

// BlockProductSize returns blockCount × blockSize for a zero block, master directory block or HFS+
// volume header. Products too large for an int64 saturate at math.MaxInt64.
func BlockProductSize(d descriptor.Descriptor) (size int64, ok bool) {
	if !d.Parsed {
		return 0, false
	}
	count, ok := d.Int("blockCount")
	if !ok {
		return 0, false
	}
	blockSize, ok := d.Int("blockSize")
	if !ok {
		return 0, false
	}
	return helpers.MulSize(count, blockSize), true
}

// ResolveFilesystem summarises the partition types found in the map. The order of the checks is a
// precedence, not the order of appearance.
func ResolveFilesystem(types []string) descriptor.Family {
	has := func(want string) bool {
		for _, t := range types {
			if t == want {
				return true
			}
		}
		return false
	}

	switch {
	case has(consts.APPLE_PARTITION_TYPE_MFS):
		return descriptor.FAMILY_MFS
	case has(consts.APPLE_PARTITION_TYPE_HFS):
		return descriptor.FAMILY_HFS
	case has(consts.APPLE_PARTITION_TYPE_HFSX):
		return descriptor.FAMILY_HFS_PLUS
	}
	return descriptor.FAMILY_UNKNOWN
}
