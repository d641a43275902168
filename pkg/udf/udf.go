package udf

import (
	"github.com/rstms/isolyzer/pkg/consts"
	"github.com/rstms/isolyzer/pkg/descriptor"
	"github.com/rstms/isolyzer/pkg/encoding"
	"github.com/rstms/isolyzer/pkg/helpers"
	"github.com/rstms/isolyzer/pkg/logging"
)

// Identifiers that may appear in the volume recognition sequence. Everything but CD001 counts as an
// extended descriptor.
var recognitionIdentifiers = map[string]bool{
	"CD001": false,
	"BEA01": true,
	"NSR02": true,
	"NSR03": true,
	"BOOT2": true,
	"TEA01": true,
}

// ScanExtended walks the volume recognition sequence from start and returns the number of extended
// descriptors found and the offset where the scan stopped.
func ScanExtended(buf encoding.Region, start int) (count int, end int) {
	offset := start
	maxRecords := buf.Len()/consts.UDF_SECTOR_SIZE + 1
	for i := 0; i < maxRecords; i++ {
		identifier := encoding.Text(buf.At(offset+1, 5))
		extended, known := recognitionIdentifiers[identifier]
		if !known {
			break
		}
		if extended {
			count++
		}
		offset += consts.UDF_SECTOR_SIZE
	}
	return count, offset
}

// Parse looks for a UDF volume recognition sequence starting at start (the end of the ISO9660 volume
// descriptor set) and, when one is found, walks the main volume descriptor sequence. ok is false when
// the image holds no UDF structures.
func Parse(buf encoding.Region, start int, logger *logging.Logger) (result descriptor.Result, ok bool) {
	if logger == nil {
		logger = logging.DefaultLogger()
	}

	count, end := ScanExtended(buf, start)
	logger.Debug("Scanned volume recognition sequence", "start", start, "end", end, "extended", count)
	if count == 0 {
		return descriptor.Result{}, false
	}

	result = Walk(buf, logger)
	result.ExtendedDescriptorCount = count
	return result, true
}

// Walk reads the anchor volume descriptor pointer at sector 256 and the main volume descriptor sequence
// it points to. The walk ends at a terminating descriptor, when a tag can no longer be read, or when the
// buffer is exhausted.
func Walk(buf encoding.Region, logger *logging.Logger) descriptor.Result {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	result := descriptor.Result{Family: descriptor.FAMILY_UDF}

	anchor := buf.At(consts.UDF_ANCHOR_SECTOR*consts.UDF_SECTOR_SIZE, consts.UDF_SECTOR_SIZE)
	tag := encoding.Uint16LE(anchor.Slice(0, 2))
	if tag != consts.UDF_TAG_ANCHOR_VOLUME_PTR {
		logger.Debug("No anchor volume descriptor pointer", "tag", tag)
		return result
	}
	extentLength := encoding.Uint32LE(anchor.Slice(16, 20))
	extentLocation := encoding.Uint32LE(anchor.Slice(20, 24))
	if extentLocation == encoding.Sentinel {
		logger.Debug("Anchor volume descriptor pointer truncated")
		return result
	}
	logger.Trace("Found anchor volume descriptor pointer", "location", extentLocation, "length", extentLength)

	offset := consts.UDF_SECTOR_SIZE * int(extentLocation)
	maxRecords := buf.Len()/consts.UDF_SECTOR_SIZE + 1
	trace := logger.TraceEnabled()
	for i := 0; i < maxRecords; i++ {
		record := buf.At(offset, consts.UDF_SECTOR_SIZE)
		tag := encoding.Uint16LE(record.Slice(0, 2))
		if trace {
			logger.Trace("Walking volume descriptor sequence", "offset", offset, "tag", tag)
		}

		if tag == encoding.Sentinel || tag == consts.UDF_TAG_TERMINATING {
			break
		}

		switch tag {
		case consts.UDF_TAG_LOGICAL_VOLUME:
			lvd := decode(&result, descriptor.KIND_UDF_LOGICAL_VOLUME_DESCRIPTOR, record, offset, ParseLogicalVolumeDescriptor, logger)
			if location, ok := lvd.Int("integritySequenceExtentLocation"); ok {
				at := int(location) * consts.UDF_SECTOR_SIZE
				decode(&result, descriptor.KIND_UDF_LOGICAL_VOLUME_INTEGRITY, buf.At(at, consts.UDF_SECTOR_SIZE), at, ParseLogicalVolumeIntegrityDescriptor, logger)
			}
		case consts.UDF_TAG_PARTITION:
			decode(&result, descriptor.KIND_UDF_PARTITION_DESCRIPTOR, record, offset, ParsePartitionDescriptor, logger)
		}
		offset += consts.UDF_SECTOR_SIZE
	}

	result.End = offset
	logger.Debug("Walked volume descriptor sequence", "descriptors", len(result.Descriptors), "end", offset)
	return result
}

func decode(result *descriptor.Result, kind descriptor.Kind, record encoding.Region, offset int, parse func(encoding.Region) (descriptor.Descriptor, error), logger *logging.Logger) descriptor.Descriptor {
	d, err := parse(record)
	if err != nil {
		logger.Debug("Failed to parse UDF descriptor", "kind", kind, "offset", offset, "error", err)
		d = descriptor.Failed(kind, int64(offset), err)
	} else {
		d.Offset = int64(offset)
	}
	result.Descriptors = append(result.Descriptors, d)
	return d
}

// ExpectedSize returns (partitionLength + partitionStartingLocation) × logicalBlockSize. This counts the
// sectors up to the end of the partition only, so anything stored after it (at least the closing anchor)
// is missing and the figure is an underestimate. Products too large for an int64 saturate.
func ExpectedSize(pd, lvd descriptor.Descriptor) (size int64, ok bool) {
	if !pd.Parsed || !lvd.Parsed {
		return 0, false
	}
	length, ok := pd.Int("partitionLength")
	if !ok {
		return 0, false
	}
	start, ok := pd.Int("partitionStartingLocation")
	if !ok {
		return 0, false
	}
	blockSize, ok := lvd.Int("logicalBlockSize")
	if !ok {
		return 0, false
	}
	return helpers.MulSize(length+start, blockSize), true
}

// ResultSize applies ExpectedSize to the first partition and logical volume descriptors of a result.
func ResultSize(r descriptor.Result) (size int64, ok bool) {
	pd, ok := r.First(descriptor.KIND_UDF_PARTITION_DESCRIPTOR)
	if !ok {
		return 0, false
	}
	lvd, ok := r.First(descriptor.KIND_UDF_LOGICAL_VOLUME_DESCRIPTOR)
	if !ok {
		return 0, false
	}
	return ExpectedSize(pd, lvd)
}
