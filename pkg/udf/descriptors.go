package udf

import (
	"fmt"

	"github.com/rstms/isolyzer/pkg/descriptor"
	"github.com/rstms/isolyzer/pkg/encoding"
)

const (
	logicalVolumeDescriptorLength          = 440
	logicalVolumeIntegrityDescriptorLength = 88
	partitionDescriptorLength              = 196
)

// addTag decodes the descriptor tag fields shared by every UDF descriptor (ECMA-167 3/7.2).
func addTag(b *descriptor.Builder) *descriptor.Builder {
	return b.Uint16LE("tagIdentifier", 0).
		Uint16LE("descriptorVersion", 2).
		Uint16LE("tagSerialNumber", 6)
}

// ParseLogicalVolumeDescriptor decodes a logical volume descriptor (ECMA-167 3/10.6). The identifier is
// read as plain text after the compression byte.
func ParseLogicalVolumeDescriptor(data encoding.Region) (descriptor.Descriptor, error) {
	b, err := descriptor.NewBuilder(data, logicalVolumeDescriptorLength)
	if err != nil {
		return descriptor.Descriptor{}, err
	}

	addTag(b).
		Uint32LE("volumeSequenceNumber", 16).
		Text("logicalVolumeIdentifier", 85, 212).
		Uint32LE("logicalBlockSize", 212).
		Text("domainIdentifier", 216, 248).
		Uint32LE("mapTableLength", 264).
		Uint32LE("numberOfPartitionMaps", 268).
		Text("implementationIdentifier", 272, 304).
		Uint32LE("integritySequenceExtentLength", 432).
		Uint32LE("integritySequenceExtentLocation", 436)

	return b.Build(descriptor.KIND_UDF_LOGICAL_VOLUME_DESCRIPTOR, 0), nil
}

// ParseLogicalVolumeIntegrityDescriptor decodes a logical volume integrity descriptor (ECMA-167 3/10.10).
// The free space and size tables are assumed to describe a single partition.
func ParseLogicalVolumeIntegrityDescriptor(data encoding.Region) (descriptor.Descriptor, error) {
	b, err := descriptor.NewBuilder(data, logicalVolumeIntegrityDescriptorLength)
	if err != nil {
		return descriptor.Descriptor{}, err
	}

	addTag(b).
		Add("timeStamp", timestamp(b.Region(16, 28))).
		Uint32LE("integrityType", 28).
		Uint32LE("numberOfPartitions", 72).
		Uint32LE("lengthOfImplementationUse", 76).
		Uint32LE("freeSpaceTable", 80).
		Uint32LE("sizeTable", 84)

	return b.Build(descriptor.KIND_UDF_LOGICAL_VOLUME_INTEGRITY, 0), nil
}

// ParsePartitionDescriptor decodes a partition descriptor (ECMA-167 3/10.5).
func ParsePartitionDescriptor(data encoding.Region) (descriptor.Descriptor, error) {
	b, err := descriptor.NewBuilder(data, partitionDescriptorLength)
	if err != nil {
		return descriptor.Descriptor{}, err
	}

	addTag(b).
		Uint32LE("volumeDescriptorSequenceNumber", 16).
		Uint16LE("partitionNumber", 22).
		Uint32LE("accessType", 184).
		Uint32LE("partitionStartingLocation", 188).
		Uint32LE("partitionLength", 192)

	return b.Build(descriptor.KIND_UDF_PARTITION_DESCRIPTOR, 0), nil
}

// timestamp formats a 12 byte UDF timestamp, ignoring the time zone and everything below seconds.
func timestamp(r encoding.Region) string {
	parts := []int64{
		encoding.Uint16LE(r.Slice(2, 4)),
		encoding.Uint8(r.Slice(4, 5)),
		encoding.Uint8(r.Slice(5, 6)),
		encoding.Uint8(r.Slice(6, 7)),
		encoding.Uint8(r.Slice(7, 8)),
		encoding.Uint8(r.Slice(8, 9)),
	}
	for _, p := range parts {
		if p == encoding.Sentinel {
			return ""
		}
	}
	return fmt.Sprintf("%d/%02d/%02d, %02d:%02d:%02d", parts[0], parts[1], parts[2], parts[3], parts[4], parts[5])
}
