package consts

const (
	// Number of system area sectors.
	ISO9660_SYSTEM_AREA_SECTORS = 16

	// ISO9660 default sector size. Descriptor records are always this size regardless of the
	// logical block size declared by the volume.
	ISO9660_SECTOR_SIZE = 2048

	// Byte offset of the first volume descriptor (sector 16).
	ISO9660_DESCRIPTOR_START = ISO9660_SYSTEM_AREA_SECTORS * ISO9660_SECTOR_SIZE

	// Standard ISO9660 identifier.
	ISO9660_STD_IDENTIFIER = "CD001"

	// Padding byte for fixed length text fields.
	ISO9660_FILLER = 0x20

	// Standard High Sierra identifier.
	HSF_STD_IDENTIFIER = "CDROM"

	// Volume descriptor type codes shared by ISO9660 and High Sierra.
	VD_TYPE_PRIMARY    = 1
	VD_TYPE_TERMINATOR = 255

	// Default number of sectors read from the head of an image.
	DEFAULT_SECTORS_TO_READ = 1000

	// Apple signatures (big-endian 16-bit values).
	APPLE_ZERO_BLOCK_SIGNATURE    = 0x4552 // "ER"
	APPLE_PARTITION_MAP_SIGNATURE = 0x504D // "PM"
	APPLE_HFS_SIGNATURE           = 0x4244 // "BD"
	APPLE_MFS_SIGNATURE           = 0xD2D7
	APPLE_HFS_PLUS_SIGNATURE      = 0x482B // "H+"
	APPLE_HFSX_SIGNATURE          = 0x4858 // "HX"

	// Apple record sizes and the fixed location of MDB / HFS+ volume header.
	APPLE_RECORD_SIZE          = 512
	APPLE_VOLUME_HEADER_OFFSET = 1024
	APPLE_PARTITION_TYPE_HFS   = "Apple_HFS"
	APPLE_PARTITION_TYPE_MFS   = "Apple_MFS"
	APPLE_PARTITION_TYPE_HFSX  = "Apple_HFSX"

	// UDF default sector size.
	UDF_SECTOR_SIZE = 2048

	// Sector holding the UDF Anchor Volume Descriptor Pointer.
	UDF_ANCHOR_SECTOR = 256

	// Standard UDF Identifier
	UDF_STD_IDENTIFIER = "BEA01"

	// UDF descriptor tag identifiers.
	UDF_TAG_PARTITION         = 5
	UDF_TAG_LOGICAL_VOLUME    = 6
	UDF_TAG_TERMINATING       = 8
	UDF_TAG_INTEGRITY         = 9
	UDF_TAG_ANCHOR_VOLUME_PTR = 2
)
