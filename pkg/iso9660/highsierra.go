package iso9660

import (
	"github.com/rstms/isolyzer/pkg/descriptor"
	"github.com/rstms/isolyzer/pkg/encoding"
)

const standardFileStructureVolumeDescriptorLength = 855

// ParseStandardFileStructureVolumeDescriptor decodes the High Sierra counterpart of the primary volume
// descriptor. The layout is shifted by the leading logical block number, and there are two mandatory
// path tables of each type.
func ParseStandardFileStructureVolumeDescriptor(data encoding.Region) (descriptor.Descriptor, error) {
	b, err := descriptor.NewBuilder(data, standardFileStructureVolumeDescriptorLength)
	if err != nil {
		return descriptor.Descriptor{}, err
	}

	b.Uint32BE("volumeDescriptorLBN", 4).
		Uint8("volumeDescriptorType", 8).
		Text("volumeStructureStandardIdentifier", 9, 14).
		Uint8("volumeStructureStandardVersion", 14).
		Text("systemIdentifier", 16, 48).
		Text("volumeIdentifier", 48, 80).
		Uint32BE("volumeSpaceSize", 92).
		Uint16BE("volumeSetSize", 130).
		Uint16BE("volumeSetSequenceNumber", 134).
		Uint16BE("logicalBlockSize", 138).
		Uint32BE("pathTableSize", 144).
		Uint32Swapped("firstMandatoryPathTableLocationL", 148).
		Uint32Swapped("firstOptionalPathTableLocationL", 152).
		Uint32Swapped("secondOptionalPathTableLocationL", 156).
		Uint32Swapped("thirdOptionalPathTableLocationL", 160).
		Uint32BE("firstMandatoryPathTableLocationM", 164).
		Uint32BE("firstOptionalPathTableLocationM", 168).
		Uint32BE("secondOptionalPathTableLocationM", 172).
		Uint32BE("thirdOptionalPathTableLocationM", 176).
		Text("volumeSetIdentifier", 214, 342).
		Text("publisherIdentifier", 342, 470).
		Text("dataPreparerIdentifier", 470, 598).
		Text("applicationIdentifier", 598, 726).
		Text("copyrightFileIdentifier", 726, 758).
		Text("abstractFileIdentifier", 758, 790).
		DateTime("volumeCreationDateAndTime", 790, 806).
		DateTime("volumeModificationDateAndTime", 806, 822).
		DateTime("volumeExpirationDateAndTime", 822, 838).
		DateTime("volumeEffectiveDateAndTime", 838, 854).
		Uint8("fileStructureStandardVersion", 854)

	return b.Build(descriptor.KIND_STANDARD_FILE_STRUCTURE_VD, 0), nil
}
