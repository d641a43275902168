package iso9660

import (
	"github.com/rstms/isolyzer/pkg/descriptor"
	"github.com/rstms/isolyzer/pkg/encoding"
)

// Last byte used by the primary volume descriptor fields (file structure version).
const primaryVolumeDescriptorLength = 882

// ParsePrimaryVolumeDescriptor decodes an ISO9660 primary volume descriptor (ECMA-119 8.4). Both-endian
// fields are read from their big-endian half. The type L path table locations are stored little-endian
// only and go through Swap32.
func ParsePrimaryVolumeDescriptor(data encoding.Region) (descriptor.Descriptor, error) {
	b, err := descriptor.NewBuilder(data, primaryVolumeDescriptorLength)
	if err != nil {
		return descriptor.Descriptor{}, err
	}

	b.Uint8("typeCode", 0).
		Text("standardIdentifier", 1, 6).
		Uint8("version", 6).
		Text("systemIdentifier", 8, 40).
		Text("volumeIdentifier", 40, 72).
		Uint32BE("volumeSpaceSize", 84).
		Uint16BE("volumeSetSize", 122).
		Uint16BE("volumeSequenceNumber", 126).
		Uint16BE("logicalBlockSize", 130).
		Uint32BE("pathTableSize", 136).
		Uint32Swapped("typeLPathTableLocation", 140).
		Uint32Swapped("optionalTypeLPathTableLocation", 144).
		Uint32BE("typeMPathTableLocation", 148).
		Uint32BE("optionalTypeMPathTableLocation", 152).
		Text("volumeSetIdentifier", 190, 318).
		Text("publisherIdentifier", 318, 446).
		Text("dataPreparerIdentifier", 446, 574).
		Text("applicationIdentifier", 574, 702).
		Text("copyrightFileIdentifier", 702, 740).
		Text("abstractFileIdentifier", 740, 776).
		Text("bibliographicFileIdentifier", 776, 813).
		DateTime("volumeCreationDateAndTime", 813, 830).
		DateTime("volumeModificationDateAndTime", 830, 847).
		DateTime("volumeExpirationDateAndTime", 847, 864).
		DateTime("volumeEffectiveDateAndTime", 864, 881).
		Uint8("fileStructureVersion", 881)

	return b.Build(descriptor.KIND_PRIMARY_VOLUME_DESCRIPTOR, 0), nil
}
