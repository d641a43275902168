package descriptor

// Family names a detected filesystem type as it appears in reports.
type Family string

const (
	FAMILY_ISO9660     Family = "ISO 9660"
	FAMILY_HIGH_SIERRA Family = "High Sierra"
	FAMILY_UDF         Family = "UDF"
	FAMILY_MFS         Family = "MFS"
	FAMILY_HFS         Family = "HFS"
	FAMILY_HFS_PLUS    Family = "HFS+"
	FAMILY_UNKNOWN     Family = "Unknown"
)

// Result is everything one parser found for one filesystem family.
type Result struct {
	Family Family `json:"type" yaml:"type"`
	// Every attempted descriptor in discovery order, failed attempts included.
	Descriptors []Descriptor `json:"descriptors" yaml:"descriptors"`
	// Number of volume descriptors walked (ISO 9660 and High Sierra), terminator included.
	DescriptorCount int `json:"descriptorCount,omitempty" yaml:"descriptorCount,omitempty"`
	// Number of non-CD001 members of the UDF extended area.
	ExtendedDescriptorCount int `json:"extendedDescriptorCount,omitempty" yaml:"extendedDescriptorCount,omitempty"`
	// Apple partition types in partition map order.
	PartitionTypes []string `json:"partitionTypes,omitempty" yaml:"partitionTypes,omitempty"`
	// Byte offset just past the last record walked. Not serialized.
	End int `json:"-" yaml:"-"`
}

// First returns the first successfully parsed descriptor of the given kind.
func (r Result) First(kind Kind) (Descriptor, bool) {
	for _, d := range r.Descriptors {
		if d.Kind == kind && d.Parsed {
			return d, true
		}
	}
	return Descriptor{}, false
}

// All returns every successfully parsed descriptor of the given kind.
func (r Result) All(kind Kind) []Descriptor {
	var out []Descriptor
	for _, d := range r.Descriptors {
		if d.Kind == kind && d.Parsed {
			out = append(out, d)
		}
	}
	return out
}
