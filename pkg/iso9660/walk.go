package iso9660

import (
	"github.com/rstms/isolyzer/pkg/consts"
	"github.com/rstms/isolyzer/pkg/descriptor"
	"github.com/rstms/isolyzer/pkg/encoding"
	"github.com/rstms/isolyzer/pkg/helpers"
	"github.com/rstms/isolyzer/pkg/logging"
)

// Variant selects the volume descriptor layout.
type Variant int

const (
	ISO9660 Variant = iota
	HighSierra
)

func (v Variant) String() string {
	if v == HighSierra {
		return "High Sierra"
	}
	return "ISO 9660"
}

// Family returns the report tag for the variant.
func (v Variant) Family() descriptor.Family {
	if v == HighSierra {
		return descriptor.FAMILY_HIGH_SIERRA
	}
	return descriptor.FAMILY_ISO9660
}

// typeCodeOffset is the in-record position of the volume descriptor type.
func (v Variant) typeCodeOffset() int {
	if v == HighSierra {
		return 8
	}
	return 0
}

func (v Variant) kind() descriptor.Kind {
	if v == HighSierra {
		return descriptor.KIND_STANDARD_FILE_STRUCTURE_VD
	}
	return descriptor.KIND_PRIMARY_VOLUME_DESCRIPTOR
}

func (v Variant) parse(data encoding.Region) (descriptor.Descriptor, error) {
	if v == HighSierra {
		return ParseStandardFileStructureVolumeDescriptor(data)
	}
	return ParsePrimaryVolumeDescriptor(data)
}

// Walk reads the volume descriptor set that starts at sector 16. Every record is counted; records of
// type 1 are decoded. The walk ends at the set terminator, when the type code can no longer be read,
// or when the buffer is exhausted.
func Walk(buf encoding.Region, variant Variant, logger *logging.Logger) descriptor.Result {
	if logger == nil {
		logger = logging.DefaultLogger()
	}

	result := descriptor.Result{Family: variant.Family()}
	offset := consts.ISO9660_DESCRIPTOR_START
	maxRecords := buf.Len()/consts.ISO9660_SECTOR_SIZE + 1
	trace := logger.TraceEnabled()

	for i := 0; i < maxRecords; i++ {
		record := buf.At(offset, consts.ISO9660_SECTOR_SIZE)
		typeCode := encoding.Uint8(record.At(variant.typeCodeOffset(), 1))
		result.DescriptorCount++
		offset += consts.ISO9660_SECTOR_SIZE

		if trace {
			logger.Trace("Walking volume descriptor", "variant", variant.String(), "offset", offset-consts.ISO9660_SECTOR_SIZE, "type", typeCode)
		}

		if typeCode == encoding.Sentinel {
			logger.Debug("Volume descriptor set truncated", "variant", variant.String(), "descriptors", result.DescriptorCount)
			break
		}
		if typeCode == consts.VD_TYPE_PRIMARY {
			start := int64(offset - consts.ISO9660_SECTOR_SIZE)
			d, err := variant.parse(record)
			if err != nil {
				logger.Debug("Failed to parse volume descriptor", "variant", variant.String(), "offset", start, "error", err)
				d = descriptor.Failed(variant.kind(), start, err)
			} else {
				d.Offset = start
			}
			result.Descriptors = append(result.Descriptors, d)
		}
		if typeCode == consts.VD_TYPE_TERMINATOR {
			break
		}
	}

	result.End = offset
	logger.Debug("Walked volume descriptor set", "variant", variant.String(), "descriptors", result.DescriptorCount, "end", result.End)
	return result
}

// ExpectedSize returns the image size declared by a primary or standard file structure volume
// descriptor, less sectorOffset blocks for a non-first multisession image. ok is false when the
// descriptor lacks a usable size.
func ExpectedSize(d descriptor.Descriptor, sectorOffset int64) (size int64, ok bool) {
	if !d.Parsed {
		return 0, false
	}
	blocks, ok := d.Int("volumeSpaceSize")
	if !ok {
		return 0, false
	}
	blockSize, ok := d.Int("logicalBlockSize")
	if !ok {
		return 0, false
	}
	return helpers.MulSize(blocks-sectorOffset, blockSize), true
}
