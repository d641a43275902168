package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

// Format selects a report serialization.
type Format string

const (
	FormatXML  Format = "xml"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatText Format = "text"
)

// ParseFormat validates a format name given on the command line.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatXML, FormatJSON, FormatYAML, FormatText:
		return f, nil
	}
	return "", fmt.Errorf("unsupported output format %q", s)
}

// Write serializes doc in the given format.
func Write(w io.Writer, format Format, doc Document) error {
	switch format {
	case FormatXML:
		return WriteXML(w, doc)
	case FormatJSON:
		return WriteJSON(w, doc)
	case FormatYAML:
		return WriteYAML(w, doc)
	case FormatText:
		return WriteText(w, doc)
	}
	return fmt.Errorf("unsupported output format %q", format)
}

// WriteJSON writes doc as indented JSON.
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode json report: %w", err)
	}
	return nil
}

// WriteYAML writes doc as YAML.
func WriteYAML(w io.Writer, doc Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode yaml report: %w", err)
	}
	return enc.Close()
}

var (
	okColor      = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	failColor    = color.New(color.FgRed, color.Bold)
	headingColor = color.New(color.FgCyan, color.Bold)
)

// WriteText writes a short human readable summary, one block per image. Colors follow the
// fatih/color global settings, so they are dropped automatically when w is not a terminal.
func WriteText(w io.Writer, doc Document) error {
	for _, img := range doc.Images {
		if _, err := headingColor.Fprintf(w, "%s\n", img.FileInfo.FilePath); err != nil {
			return err
		}
		if !img.Status.Success {
			failColor.Fprintf(w, "  failed: %s\n", img.Status.FailureMessage)
			continue
		}

		families := make([]string, 0, len(img.FileSystems))
		for _, f := range img.Families() {
			families = append(families, string(f))
		}
		if len(families) == 0 {
			families = append(families, "none")
		}
		fmt.Fprintf(w, "  file systems: %s\n", strings.Join(families, ", "))

		for _, fs := range img.FileSystems {
			for _, d := range fs.Descriptors {
				if !d.Parsed {
					warnColor.Fprintf(w, "  %s at %d: %s\n", d.Kind, d.Offset, d.Failure)
				}
			}
		}

		t := img.Tests
		fmt.Fprintf(w, "  size expected: %d, actual: %d, difference: %d (%g sectors)\n",
			t.Expected, t.Actual, t.Difference, t.DifferenceSectors)

		switch {
		case t.Indeterminate:
			warnColor.Fprintln(w, "  verdict: indeterminate (no usable size information)")
		case t.AsExpected:
			okColor.Fprintln(w, "  verdict: size as expected")
		case t.SmallerThanExpected:
			failColor.Fprintln(w, "  verdict: smaller than expected")
		default:
			warnColor.Fprintln(w, "  verdict: larger than expected")
		}
	}
	return nil
}
