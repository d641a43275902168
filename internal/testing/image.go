package testing

import (
	"encoding/binary"

	"github.com/rstms/isolyzer/pkg/consts"
	"github.com/rstms/isolyzer/pkg/helpers"
)

const sector = consts.ISO9660_SECTOR_SIZE

// Image is a synthetic disc image assembled in memory. Writes past the end grow the buffer.
type Image struct {
	buf []byte
}

// NewImage returns a zero filled image of size bytes.
func NewImage(size int) *Image {
	return &Image{buf: make([]byte, size)}
}

// Bytes returns the image contents.
func (img *Image) Bytes() []byte {
	return img.buf
}

// Len returns the current image size.
func (img *Image) Len() int {
	return len(img.buf)
}

// Resize truncates or zero extends the image to size bytes.
func (img *Image) Resize(size int) *Image {
	if size <= len(img.buf) {
		img.buf = img.buf[:size]
		return img
	}
	img.grow(size)
	return img
}

func (img *Image) grow(end int) {
	if end <= len(img.buf) {
		return
	}
	next := make([]byte, end)
	copy(next, img.buf)
	img.buf = next
}

// Put copies b into the image at offset.
func (img *Image) Put(offset int, b []byte) *Image {
	img.grow(offset + len(b))
	copy(img.buf[offset:], b)
	return img
}

func (img *Image) putText(offset int, s string, length int) {
	img.Put(offset, helpers.PadString(s, length))
}

func (img *Image) putUint16BE(offset int, v uint16) {
	img.grow(offset + 2)
	binary.BigEndian.PutUint16(img.buf[offset:], v)
}

func (img *Image) putUint32BE(offset int, v uint32) {
	img.grow(offset + 4)
	binary.BigEndian.PutUint32(img.buf[offset:], v)
}

func (img *Image) putUint16LE(offset int, v uint16) {
	img.grow(offset + 2)
	binary.LittleEndian.PutUint16(img.buf[offset:], v)
}

func (img *Image) putUint32LE(offset int, v uint32) {
	img.grow(offset + 4)
	binary.LittleEndian.PutUint32(img.buf[offset:], v)
}

// putBoth writes a both-endian 32-bit field: little-endian first, big-endian second.
func (img *Image) putBoth32(offset int, v uint32) {
	img.putUint32LE(offset, v)
	img.putUint32BE(offset+4, v)
}

func (img *Image) putBoth16(offset int, v uint16) {
	img.putUint16LE(offset, v)
	img.putUint16BE(offset+2, v)
}

// Volume describes the fields of a primary (or standard file structure) volume descriptor that tests
// care about.
type Volume struct {
	SystemIdentifier string
	VolumeIdentifier string
	VolumeSpaceSize  uint32
	LogicalBlockSize uint16
	PathTableSize    uint32
	PathTableL       uint32
	PathTableM       uint32
	// 16 decimal digits, e.g. "2024010212304500".
	CreationDate string
}

// WritePrimaryVolumeDescriptor writes an ISO9660 primary volume descriptor at the given sector.
func (img *Image) WritePrimaryVolumeDescriptor(at int, v Volume) *Image {
	base := at * sector
	img.grow(base + sector)
	img.buf[base] = consts.VD_TYPE_PRIMARY
	img.Put(base+1, []byte(consts.ISO9660_STD_IDENTIFIER))
	img.buf[base+6] = 1
	img.putText(base+8, v.SystemIdentifier, 32)
	img.putText(base+40, v.VolumeIdentifier, 32)
	img.putBoth32(base+80, v.VolumeSpaceSize)
	img.putBoth16(base+120, 1)
	img.putBoth16(base+124, 1)
	img.putBoth16(base+128, v.LogicalBlockSize)
	img.putBoth32(base+132, v.PathTableSize)
	img.putUint32LE(base+140, v.PathTableL)
	img.putUint32BE(base+148, v.PathTableM)
	img.putText(base+190, "", 128)
	img.putText(base+318, "PUBLISHER", 128)
	img.putText(base+446, "", 128)
	img.putText(base+574, "APPLICATION", 128)
	img.putDate(base+813, v.CreationDate)
	img.putDate(base+830, v.CreationDate)
	img.putDate(base+847, "")
	img.putDate(base+864, "")
	img.buf[base+881] = 1
	return img
}

// WriteVolumeDescriptor writes a bare ISO9660 descriptor of the given type, e.g. a boot record.
func (img *Image) WriteVolumeDescriptor(at int, typeCode byte) *Image {
	base := at * sector
	img.grow(base + sector)
	img.buf[base] = typeCode
	img.Put(base+1, []byte(consts.ISO9660_STD_IDENTIFIER))
	img.buf[base+6] = 1
	return img
}

// WriteTerminator writes an ISO9660 volume descriptor set terminator.
func (img *Image) WriteTerminator(at int) *Image {
	return img.WriteVolumeDescriptor(at, consts.VD_TYPE_TERMINATOR)
}

func (img *Image) putDate(offset int, digits string) {
	if digits == "" {
		digits = "0000000000000000"
	}
	img.Put(offset, []byte(digits))
	img.buf[offset+16] = 0
}

// WriteStandardFileStructureVolumeDescriptor writes a High Sierra descriptor at the given sector.
func (img *Image) WriteStandardFileStructureVolumeDescriptor(at int, v Volume) *Image {
	base := at * sector
	img.grow(base + sector)
	img.putBoth32(base, uint32(at))
	img.buf[base+8] = consts.VD_TYPE_PRIMARY
	img.Put(base+9, []byte(consts.HSF_STD_IDENTIFIER))
	img.buf[base+14] = 1
	img.putText(base+16, v.SystemIdentifier, 32)
	img.putText(base+48, v.VolumeIdentifier, 32)
	img.putBoth32(base+88, v.VolumeSpaceSize)
	img.putBoth16(base+128, 1)
	img.putBoth16(base+132, 1)
	img.putBoth16(base+136, v.LogicalBlockSize)
	img.putBoth32(base+140, v.PathTableSize)
	img.putUint32LE(base+148, v.PathTableL)
	img.putUint32BE(base+164, v.PathTableM)
	img.putText(base+342, "PUBLISHER", 128)
	img.putDate(base+790, v.CreationDate)
	img.putDate(base+806, v.CreationDate)
	img.buf[base+854] = 1
	return img
}

// WriteHighSierraTerminator writes a High Sierra volume descriptor set terminator.
func (img *Image) WriteHighSierraTerminator(at int) *Image {
	base := at * sector
	img.grow(base + sector)
	img.putBoth32(base, uint32(at))
	img.buf[base+8] = consts.VD_TYPE_TERMINATOR
	img.Put(base+9, []byte(consts.HSF_STD_IDENTIFIER))
	img.buf[base+14] = 1
	return img
}

// WriteExtendedDescriptor writes a UDF volume recognition sequence member (BEA01, NSR02, TEA01...).
func (img *Image) WriteExtendedDescriptor(at int, identifier string) *Image {
	base := at * sector
	img.grow(base + sector)
	img.Put(base+1, []byte(identifier))
	img.buf[base+6] = 1
	return img
}

func (img *Image) putTag(base int, identifier uint16, location uint32) {
	img.putUint16LE(base, identifier)
	img.putUint16LE(base+2, 2)
	img.putUint16LE(base+6, 1)
	img.putUint32LE(base+12, location)
}

// WriteAnchor writes the anchor volume descriptor pointer at sector 256.
func (img *Image) WriteAnchor(mainLocation, mainLength uint32) *Image {
	base := consts.UDF_ANCHOR_SECTOR * sector
	img.grow(base + sector)
	img.putTag(base, consts.UDF_TAG_ANCHOR_VOLUME_PTR, consts.UDF_ANCHOR_SECTOR)
	img.putUint32LE(base+16, mainLength)
	img.putUint32LE(base+20, mainLocation)
	return img
}

// WritePartitionDescriptor writes a UDF partition descriptor.
func (img *Image) WritePartitionDescriptor(at int, start, length uint32) *Image {
	base := at * sector
	img.grow(base + sector)
	img.putTag(base, consts.UDF_TAG_PARTITION, uint32(at))
	img.putUint32LE(base+16, 1)
	img.putUint16LE(base+22, 0)
	img.putUint32LE(base+184, 1)
	img.putUint32LE(base+188, start)
	img.putUint32LE(base+192, length)
	return img
}

// WriteLogicalVolumeDescriptor writes a UDF logical volume descriptor pointing at an integrity
// sequence at integrityLocation.
func (img *Image) WriteLogicalVolumeDescriptor(at int, name string, blockSize, integrityLocation uint32) *Image {
	base := at * sector
	img.grow(base + sector)
	img.putTag(base, consts.UDF_TAG_LOGICAL_VOLUME, uint32(at))
	img.putUint32LE(base+16, 2)
	img.Put(base+85, []byte(name))
	img.putUint32LE(base+212, blockSize)
	img.Put(base+217, []byte("*OSTA UDF Compliant"))
	img.putUint32LE(base+264, 6)
	img.putUint32LE(base+268, 1)
	img.putUint32LE(base+432, sector)
	img.putUint32LE(base+436, integrityLocation)
	return img
}

// WriteLogicalVolumeIntegrityDescriptor writes a UDF logical volume integrity descriptor.
func (img *Image) WriteLogicalVolumeIntegrityDescriptor(at int) *Image {
	base := at * sector
	img.grow(base + sector)
	img.putTag(base, consts.UDF_TAG_INTEGRITY, uint32(at))
	img.putUint16LE(base+16, 0x1000|1)
	img.putUint16LE(base+18, 2024)
	img.buf[base+20] = 1
	img.buf[base+21] = 2
	img.buf[base+22] = 12
	img.buf[base+23] = 30
	img.buf[base+24] = 45
	img.putUint32LE(base+28, 1)
	img.putUint32LE(base+72, 1)
	img.putUint32LE(base+76, 46)
	return img
}

// WriteUDFTerminator writes a UDF terminating descriptor.
func (img *Image) WriteUDFTerminator(at int) *Image {
	base := at * sector
	img.grow(base + sector)
	img.putTag(base, consts.UDF_TAG_TERMINATING, uint32(at))
	return img
}

// WriteZeroBlock writes an Apple driver descriptor map (zero block) at offset 0.
func (img *Image) WriteZeroBlock(blockSize uint16, blockCount uint32) *Image {
	img.putUint16BE(0, consts.APPLE_ZERO_BLOCK_SIGNATURE)
	img.putUint16BE(2, blockSize)
	img.putUint32BE(4, blockCount)
	img.putUint16BE(8, 1)
	img.putUint16BE(10, 1)
	img.putUint16BE(80, 1)
	img.putUint32BE(82, 64)
	img.putUint16BE(86, 20)
	img.putUint16BE(88, 1)
	return img
}

// PartitionEntry describes one Apple partition map entry.
type PartitionEntry struct {
	Entries    uint32
	BlockStart uint32
	BlockCount uint32
	Name       string
	Type       string
}

// WritePartitionMapEntry writes an Apple partition map entry at the given byte offset.
func (img *Image) WritePartitionMapEntry(offset int, e PartitionEntry) *Image {
	img.grow(offset + consts.APPLE_RECORD_SIZE)
	img.putUint16BE(offset, consts.APPLE_PARTITION_MAP_SIGNATURE)
	img.putUint32BE(offset+4, e.Entries)
	img.putUint32BE(offset+8, e.BlockStart)
	img.putUint32BE(offset+12, e.BlockCount)
	img.Put(offset+16, []byte(e.Name))
	img.Put(offset+48, []byte(e.Type))
	img.putUint32BE(offset+84, e.BlockCount)
	img.putUint32BE(offset+88, 0x37)
	return img
}

// WritePartitionMap writes consecutive partition map entries starting at block 1.
func (img *Image) WritePartitionMap(blockSize int, types ...string) *Image {
	for i, t := range types {
		img.WritePartitionMapEntry(blockSize*(i+1), PartitionEntry{
			Entries:    uint32(len(types)),
			BlockStart: uint32(i + 1),
			BlockCount: 1,
			Name:       t,
			Type:       t,
		})
	}
	return img
}

// WriteMasterDirectoryBlock writes an HFS (or MFS, depending on signature) master directory block.
func (img *Image) WriteMasterDirectoryBlock(offset int, signature uint16, blockCount uint16, blockSize uint32, name string) *Image {
	img.grow(offset + consts.APPLE_RECORD_SIZE)
	img.putUint16BE(offset, signature)
	img.putUint16BE(offset+18, blockCount)
	img.putUint32BE(offset+20, blockSize)
	img.buf[offset+36] = byte(len(name))
	img.Put(offset+37, []byte(name))
	return img
}

// WriteHFSPlusVolumeHeader writes an HFS+ (or HFS X) volume header at the given byte offset.
func (img *Image) WriteHFSPlusVolumeHeader(offset int, signature uint16, blockSize, blockCount uint32) *Image {
	img.grow(offset + consts.APPLE_RECORD_SIZE)
	img.putUint16BE(offset, signature)
	img.putUint16BE(offset+2, 4)
	img.putUint32BE(offset+40, blockSize)
	img.putUint32BE(offset+44, blockCount)
	img.putUint32BE(offset+76, 1)
	return img
}

// ISO9660 returns an image holding a primary volume descriptor and a terminator. The image is exactly
// as large as the volume it declares.
func ISO9660(volumeSpaceSize uint32) *Image {
	img := NewImage(int(volumeSpaceSize) * sector)
	img.WritePrimaryVolumeDescriptor(16, Volume{
		SystemIdentifier: "LINUX",
		VolumeIdentifier: "TEST_VOLUME",
		VolumeSpaceSize:  volumeSpaceSize,
		LogicalBlockSize: sector,
		PathTableSize:    10,
		PathTableL:       19,
		PathTableM:       21,
		CreationDate:     "2024010212304500",
	})
	img.WriteTerminator(17)
	return img
}

// Hybrid returns an ISO9660 image that also carries a UDF bridge: a volume recognition sequence after
// the ISO9660 terminator, an anchor at sector 256 and a main descriptor sequence at sector 32.
func Hybrid(volumeSpaceSize uint32) *Image {
	return ISO9660(volumeSpaceSize).WriteUDFBridge(volumeSpaceSize)
}

// WriteUDFBridge writes the UDF structures of a bridge disc behind a volume descriptor set that ends at
// sector 17: the recognition sequence at sectors 18 to 20, the main descriptor sequence at sector 32 and
// the anchor at sector 256. The partition ends one sector before volumeSpaceSize.
func (img *Image) WriteUDFBridge(volumeSpaceSize uint32) *Image {
	img.WriteExtendedDescriptor(18, "BEA01")
	img.WriteExtendedDescriptor(19, "NSR02")
	img.WriteExtendedDescriptor(20, "TEA01")
	img.WritePartitionDescriptor(32, 257, volumeSpaceSize-257-1)
	img.WriteLogicalVolumeDescriptor(33, "TEST_VOLUME", sector, 64)
	img.WriteUDFTerminator(34)
	img.WriteLogicalVolumeIntegrityDescriptor(64)
	img.WriteAnchor(32, 16*sector)
	return img
}

// AppleHybrid returns an ISO9660 image that also carries an Apple partition map in its system area. The
// Apple_HFS partition (the third entry) holds a master directory block covering the whole image.
func AppleHybrid(volumeSpaceSize uint32) *Image {
	img := ISO9660(volumeSpaceSize)
	img.WriteZeroBlock(sector, volumeSpaceSize)
	img.WritePartitionMap(sector, "Apple_partition_map", "Apple_Driver", "Apple_HFS", "Apple_HFSX")
	img.WriteMasterDirectoryBlock(3*sector+consts.APPLE_VOLUME_HEADER_OFFSET, consts.APPLE_HFS_SIGNATURE,
		uint16(volumeSpaceSize/2), 2*sector, "Hybrid Disc")
	return img
}

// HighSierra returns an image holding a standard file structure volume descriptor and a terminator.
func HighSierra(volumeSpaceSize uint32) *Image {
	img := NewImage(int(volumeSpaceSize) * sector)
	img.WriteStandardFileStructureVolumeDescriptor(16, Volume{
		SystemIdentifier: "HSF",
		VolumeIdentifier: "OLD_DISC",
		VolumeSpaceSize:  volumeSpaceSize,
		LogicalBlockSize: sector,
		PathTableL:       20,
		PathTableM:       22,
		CreationDate:     "1988063015000000",
	})
	img.WriteHighSierraTerminator(17)
	return img
}
