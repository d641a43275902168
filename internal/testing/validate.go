package testing

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/rstms/isolyzer/pkg/descriptor"
	"github.com/rstms/isolyzer/pkg/report"
	"go.uber.org/multierr"
)

// ContainsNonASCIIPrintable returns true if the string has any
// characters outside ASCII [32..126], i.e., not a standard printable.
func ContainsNonASCIIPrintable(s string) bool {
	for _, r := range s {
		// If it's outside the ASCII printable range, return true.
		if r < 32 || r > 126 {
			return true
		}
	}
	return false
}

// GroundTruthEntry is the verdict recorded for one reference image.
type GroundTruthEntry struct {
	Name                string   `json:"name"`
	Families            []string `json:"families"`
	SizeExpected        int64    `json:"sizeExpected"`
	SizeActual          int64    `json:"sizeActual"`
	SizeAsExpected      bool     `json:"sizeAsExpected"`
	SmallerThanExpected bool     `json:"smallerThanExpected"`
}

// LoadGroundTruth reads the JSON from a file and unmarshals it into a slice.
func LoadGroundTruth(filePath string) ([]GroundTruthEntry, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var entries []GroundTruthEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	return entries, nil
}

// Validate compares a report against its ground truth entry. Every mismatch is returned, combined into
// one error. Decoded text fields of the synthetic images must be printable ASCII.
func Validate(r *report.ImageReport, gt GroundTruthEntry) error {
	var err error
	if !r.Status.Success {
		err = multierr.Append(err, fmt.Errorf("%s: analysis failed: %s", gt.Name, r.Status.FailureMessage))
	}

	families := make([]string, 0, len(r.FileSystems))
	for _, f := range r.Families() {
		families = append(families, string(f))
	}
	if !slices.Equal(families, gt.Families) {
		err = multierr.Append(err, fmt.Errorf("%s: families %v, want %v", gt.Name, families, gt.Families))
	}

	v := r.Tests.Verdict
	if v.Expected != gt.SizeExpected {
		err = multierr.Append(err, fmt.Errorf("%s: sizeExpected %d, want %d", gt.Name, v.Expected, gt.SizeExpected))
	}
	if v.Actual != gt.SizeActual {
		err = multierr.Append(err, fmt.Errorf("%s: sizeActual %d, want %d", gt.Name, v.Actual, gt.SizeActual))
	}
	if v.AsExpected != gt.SizeAsExpected {
		err = multierr.Append(err, fmt.Errorf("%s: sizeAsExpected %t, want %t", gt.Name, v.AsExpected, gt.SizeAsExpected))
	}
	if v.SmallerThanExpected != gt.SmallerThanExpected {
		err = multierr.Append(err, fmt.Errorf("%s: smallerThanExpected %t, want %t", gt.Name, v.SmallerThanExpected, gt.SmallerThanExpected))
	}

	for _, fs := range r.FileSystems {
		for _, d := range fs.Descriptors {
			err = multierr.Append(err, printable(gt.Name, d))
		}
	}
	return err
}

func printable(name string, d descriptor.Descriptor) error {
	var err error
	for _, f := range d.Fields {
		if s, ok := f.Value.(string); ok && ContainsNonASCIIPrintable(s) {
			err = multierr.Append(err, fmt.Errorf("%s: %s.%s has non-printable characters: %q", name, d.Kind, f.Name, s))
		}
	}
	return err
}
