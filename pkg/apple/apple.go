package apple

import (
	"strings"

	"github.com/rstms/isolyzer/pkg/consts"
	"github.com/rstms/isolyzer/pkg/descriptor"
	"github.com/rstms/isolyzer/pkg/detect"
	"github.com/rstms/isolyzer/pkg/encoding"
	"github.com/rstms/isolyzer/pkg/logging"
)

type parseFunc func(encoding.Region) (descriptor.Descriptor, error)

// parser accumulates the descriptors of one Apple result. Every record is attempted on its own; a
// failure is recorded and the next step still runs.
type parser struct {
	buf    encoding.Region
	logger *logging.Logger
	result descriptor.Result
	// Offsets of the master directory blocks already decoded.
	mdbOffsets map[int]bool
}

func (p *parser) decode(kind descriptor.Kind, offset, length int, parse parseFunc) (descriptor.Descriptor, bool) {
	d, err := parse(p.buf.At(offset, length))
	if err != nil {
		p.logger.Debug("Failed to parse Apple record", "kind", kind, "offset", offset, "error", err)
		d = descriptor.Failed(kind, int64(offset), err)
	} else {
		d.Offset = int64(offset)
		p.logger.Trace("Parsed Apple record", "kind", kind, "offset", offset)
	}
	p.result.Descriptors = append(p.result.Descriptors, d)
	return d, d.Parsed
}

func (p *parser) masterDirectoryBlock(offset int) {
	if p.mdbOffsets[offset] {
		return
	}
	p.mdbOffsets[offset] = true
	p.decode(descriptor.KIND_MASTER_DIRECTORY_BLOCK, offset, consts.APPLE_RECORD_SIZE, ParseMasterDirectoryBlock)
}

// partitionMap walks the partition map chain. The first entry declares how many entries follow; the walk
// is also bounded by the end of the buffer.
func (p *parser) partitionMap(layout detect.AppleLayout) {
	blockSize := layout.BlockSize
	first, ok := p.decode(descriptor.KIND_APPLE_PARTITION_MAP, layout.PartitionMapOffset, consts.APPLE_RECORD_SIZE, ParsePartitionMapEntry)
	if !ok {
		return
	}
	entries, ok := first.Int("numberOfPartitionEntries")
	if !ok || entries < 1 {
		entries = 1
	}
	if limit := int64(p.buf.Len()/blockSize) + 1; entries > limit {
		p.logger.Debug("Partition map entry count exceeds image", "entries", entries, "limit", limit)
		entries = limit
	}

	p.partitionEntry(first, blockSize)
	for n := int64(1); n < entries; n++ {
		offset := layout.PartitionMapOffset + int(n)*blockSize
		if offset >= p.buf.Len() {
			break
		}
		if d, ok := p.decode(descriptor.KIND_APPLE_PARTITION_MAP, offset, consts.APPLE_RECORD_SIZE, ParsePartitionMapEntry); ok {
			p.partitionEntry(d, blockSize)
		}
	}
}

func (p *parser) partitionEntry(d descriptor.Descriptor, blockSize int) {
	partitionType := strings.TrimSpace(d.String("partitionType"))
	p.result.PartitionTypes = append(p.result.PartitionTypes, partitionType)

	if partitionType != consts.APPLE_PARTITION_TYPE_HFS {
		return
	}
	start, ok := d.Int("partitionBlockStart")
	if !ok {
		return
	}
	offset := int64(blockSize)*start + consts.APPLE_VOLUME_HEADER_OFFSET
	if offset >= int64(p.buf.Len()) {
		p.logger.Debug("HFS partition lies beyond the image prefix", "offset", offset)
		p.result.Descriptors = append(p.result.Descriptors, descriptor.Failed(descriptor.KIND_MASTER_DIRECTORY_BLOCK, offset, descriptor.ErrShortRecord))
		return
	}
	p.masterDirectoryBlock(int(offset))
}

// Parse decodes the Apple structures flagged by Detect. ok is false when no Apple structure was found.
func Parse(buf encoding.Region, flags detect.Flags, logger *logging.Logger) (result descriptor.Result, ok bool) {
	if !flags.Apple() {
		return descriptor.Result{}, false
	}
	if logger == nil {
		logger = logging.DefaultLogger()
	}

	p := &parser{
		buf:        buf,
		logger:     logger,
		mdbOffsets: map[int]bool{},
	}

	if flags.AppleZeroBlock {
		p.decode(descriptor.KIND_APPLE_ZERO_BLOCK, 0, consts.APPLE_RECORD_SIZE, ParseZeroBlock)
	}

	if flags.ApplePartitionMap {
		p.partitionMap(flags.AppleLayout)
	}

	if flags.HFSPlusVolumeHeader() {
		p.decode(descriptor.KIND_HFS_PLUS_VOLUME_HEADER, consts.APPLE_VOLUME_HEADER_OFFSET, consts.APPLE_RECORD_SIZE, ParseHFSPlusVolumeHeader)
	}

	if flags.MasterDirectoryBlock() {
		p.masterDirectoryBlock(consts.APPLE_VOLUME_HEADER_OFFSET)
	}

	p.result.Family = family(flags, p.result.PartitionTypes)
	logger.Debug("Parsed Apple structures", "family", p.result.Family, "descriptors", len(p.result.Descriptors), "partitionTypes", p.result.PartitionTypes)
	return p.result, true
}

func family(flags detect.Flags, partitionTypes []string) descriptor.Family {
	switch {
	case flags.ApplePartitionMap && len(partitionTypes) > 0:
		return ResolveFilesystem(partitionTypes)
	case flags.HFSPlusVolumeHeader():
		return descriptor.FAMILY_HFS_PLUS
	case flags.MFS:
		return descriptor.FAMILY_MFS
	case flags.HFS:
		return descriptor.FAMILY_HFS
	}
	return descriptor.FAMILY_UNKNOWN
}
