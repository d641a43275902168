package descriptor

import (
	"errors"
	"fmt"

	"github.com/rstms/isolyzer/pkg/encoding"
)

// Kind identifies the on-disk structure a Descriptor was decoded from.
type Kind string

const (
	KIND_PRIMARY_VOLUME_DESCRIPTOR     Kind = "primaryVolumeDescriptor"
	KIND_STANDARD_FILE_STRUCTURE_VD    Kind = "standardFileStructureVolumeDescriptor"
	KIND_APPLE_ZERO_BLOCK              Kind = "appleZeroBlock"
	KIND_APPLE_PARTITION_MAP           Kind = "applePartitionMap"
	KIND_MASTER_DIRECTORY_BLOCK        Kind = "masterDirectoryBlock"
	KIND_HFS_PLUS_VOLUME_HEADER        Kind = "hfsPlusVolumeHeader"
	KIND_UDF_LOGICAL_VOLUME_DESCRIPTOR Kind = "logicalVolumeDescriptor"
	KIND_UDF_LOGICAL_VOLUME_INTEGRITY  Kind = "logicalVolumeIntegrityDescriptor"
	KIND_UDF_PARTITION_DESCRIPTOR      Kind = "partitionDescriptor"
)

// ErrShortRecord is returned when a region is too short to hold every field of a record.
var ErrShortRecord = errors.New("record truncated")

// Field is a single decoded value. Value holds an int64 (integers up to 4 bytes and signed bytes),
// a uint64 (8-byte integers) or a string (text and date-time fields).
type Field struct {
	Name  string `json:"name" yaml:"name"`
	Value any    `json:"value" yaml:"value"`
}

// Descriptor is an immutable, ordered set of fields decoded from one structural record.
type Descriptor struct {
	Kind Kind `json:"kind" yaml:"kind"`
	// Byte offset of the record within the image.
	Offset int64 `json:"offset" yaml:"offset"`
	// Parsed is false when the record could not be decoded; Fields is then empty and Failure says why.
	Parsed  bool    `json:"parsed" yaml:"parsed"`
	Failure string  `json:"failure,omitempty" yaml:"failure,omitempty"`
	Fields  []Field `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Get returns the value of the named field.
func (d Descriptor) Get(name string) (any, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Int returns the named integer field. ok is false when the field is missing, is not an integer or
// holds the decode sentinel.
func (d Descriptor) Int(name string) (v int64, ok bool) {
	raw, found := d.Get(name)
	if !found {
		return 0, false
	}
	switch n := raw.(type) {
	case int64:
		if n == encoding.Sentinel {
			return 0, false
		}
		return n, true
	case uint64:
		if n > 1<<63-1 {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

// String returns the named text field, or "" when absent.
func (d Descriptor) String(name string) string {
	raw, _ := d.Get(name)
	s, _ := raw.(string)
	return s
}

// Failed builds the placeholder recorded for a record that could not be decoded.
func Failed(kind Kind, offset int64, err error) Descriptor {
	return Descriptor{
		Kind:    kind,
		Offset:  offset,
		Parsed:  false,
		Failure: err.Error(),
	}
}

// Builder accumulates fields for one record. Each Add* call decodes its own byte range, so a bad
// field never affects its siblings.
type Builder struct {
	data   encoding.Region
	fields []Field
}

// NewBuilder checks that data holds at least minLength bytes and returns a Builder over it.
func NewBuilder(data encoding.Region, minLength int) (*Builder, error) {
	if data.Len() < minLength {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrShortRecord, minLength, data.Len())
	}
	return &Builder{data: data}, nil
}

// Region returns the bytes [start:end] of the record.
func (b *Builder) Region(start, end int) encoding.Region {
	return b.data.Slice(start, end)
}

// Add records an already decoded value.
func (b *Builder) Add(name string, value any) *Builder {
	b.fields = append(b.fields, Field{Name: name, Value: value})
	return b
}

// Uint8 decodes bytes [start:start+1].
func (b *Builder) Uint8(name string, start int) *Builder {
	return b.Add(name, encoding.Uint8(b.Region(start, start+1)))
}

// Uint16BE decodes the big-endian value in bytes [start:start+2].
func (b *Builder) Uint16BE(name string, start int) *Builder {
	return b.Add(name, encoding.Uint16BE(b.Region(start, start+2)))
}

// Uint16LE decodes the little-endian value in bytes [start:start+2].
func (b *Builder) Uint16LE(name string, start int) *Builder {
	return b.Add(name, encoding.Uint16LE(b.Region(start, start+2)))
}

// Uint32BE decodes the big-endian value in bytes [start:start+4].
func (b *Builder) Uint32BE(name string, start int) *Builder {
	return b.Add(name, encoding.Uint32BE(b.Region(start, start+4)))
}

// Uint32LE decodes the little-endian value in bytes [start:start+4].
func (b *Builder) Uint32LE(name string, start int) *Builder {
	return b.Add(name, encoding.Uint32LE(b.Region(start, start+4)))
}

// Uint32Swapped decodes a little-endian-only field through the big-endian reader and Swap32.
func (b *Builder) Uint32Swapped(name string, start int) *Builder {
	return b.Add(name, encoding.Swap32(encoding.Uint32BE(b.Region(start, start+4))))
}

// Uint64BE decodes the big-endian value in bytes [start:start+8]. Undecodable values are skipped.
func (b *Builder) Uint64BE(name string, start int) *Builder {
	if v, ok := encoding.Uint64BE(b.Region(start, start+8)); ok {
		b.Add(name, v)
	}
	return b
}

// Text decodes bytes [start:end] as text.
func (b *Builder) Text(name string, start, end int) *Builder {
	return b.Add(name, encoding.Text(b.Region(start, end)))
}

// DateTime decodes bytes [start:end] as a decimal date-time. A 17 byte field also carries its GMT offset,
// which is recorded as a separate "<name>GMTOffset" field.
func (b *Builder) DateTime(name string, start, end int) *Builder {
	r := b.Region(start, end)
	b.Add(name, encoding.DecDateTime(r))
	if end-start > 16 {
		b.Add(name+"GMTOffset", encoding.GMTOffset(r))
	}
	return b
}

// Build returns the finished descriptor.
func (b *Builder) Build(kind Kind, offset int64) Descriptor {
	fields := make([]Field, len(b.fields))
	copy(fields, b.fields)
	return Descriptor{
		Kind:   kind,
		Offset: offset,
		Parsed: true,
		Fields: fields,
	}
}
