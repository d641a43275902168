package reconcile

import (
	"github.com/rstms/isolyzer/pkg/consts"
)

// Source names where a candidate expected size came from.
type Source string

const (
	SOURCE_PRIMARY_VOLUME_DESCRIPTOR Source = "PVD"
	SOURCE_STANDARD_FILE_STRUCTURE   Source = "SFSVD"
	SOURCE_ZERO_BLOCK                Source = "ZeroBlock"
	SOURCE_MASTER_DIRECTORY_BLOCK    Source = "MDB"
	SOURCE_HFS_PLUS_VOLUME_HEADER    Source = "HFSPlus"
	SOURCE_UDF                       Source = "UDF"
)

// Candidate is one independent estimate of the image size in bytes.
type Candidate struct {
	Source Source `json:"source" yaml:"source"`
	Size   int64  `json:"size" yaml:"size"`
}

// Verdict compares the actual image size against the reconciled expected size. DifferenceSectors is
// the difference in 2048 byte sectors and is fractional when the sizes are not sector multiples.
// Indeterminate is set when no candidate was usable, so Expected is 0 and means nothing.
type Verdict struct {
	Expected            int64       `json:"sizeExpected" yaml:"sizeExpected"`
	Actual              int64       `json:"sizeActual" yaml:"sizeActual"`
	Difference          int64       `json:"sizeDifference" yaml:"sizeDifference"`
	DifferenceSectors   float64     `json:"sizeDifferenceSectors" yaml:"sizeDifferenceSectors"`
	AsExpected          bool        `json:"sizeAsExpected" yaml:"sizeAsExpected"`
	SmallerThanExpected bool        `json:"smallerThanExpected" yaml:"smallerThanExpected"`
	LargerThanExpected  bool        `json:"largerThanExpected" yaml:"largerThanExpected"`
	Indeterminate       bool        `json:"indeterminate" yaml:"indeterminate"`
	Candidates          []Candidate `json:"candidates,omitempty" yaml:"candidates,omitempty"`
}

// Expected returns the largest positive candidate, or 0 when there is none. Every filesystem present
// occupies at least the extent it declares, so the image can be no smaller than the largest claim.
func Expected(candidates []Candidate) int64 {
	var expected int64
	for _, c := range candidates {
		if c.Size > expected {
			expected = c.Size
		}
	}
	return expected
}

// Reconcile folds the candidates into a verdict for an image of actual bytes.
func Reconcile(actual int64, candidates []Candidate) Verdict {
	expected := Expected(candidates)
	difference := actual - expected

	kept := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Size > 0 {
			kept = append(kept, c)
		}
	}

	return Verdict{
		Expected:            expected,
		Actual:              actual,
		Difference:          difference,
		DifferenceSectors:   float64(difference) / consts.ISO9660_SECTOR_SIZE,
		AsExpected:          difference == 0 && expected != 0,
		SmallerThanExpected: difference < 0,
		LargerThanExpected:  difference > 0,
		Indeterminate:       expected == 0,
		Candidates:          kept,
	}
}
