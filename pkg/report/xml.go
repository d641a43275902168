package report

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rstms/isolyzer/pkg/descriptor"
)

type xmlDocument struct {
	XMLName  xml.Name   `xml:"isolyzer"`
	ToolInfo ToolInfo   `xml:"toolInfo"`
	Images   []xmlImage `xml:"image"`
}

type xmlImage struct {
	FileInfo    FileInfo       `xml:"fileInfo"`
	StatusInfo  Status         `xml:"statusInfo"`
	Tests       *xmlTests      `xml:"tests"`
	FileSystems xmlFileSystems `xml:"fileSystems"`
}

type xmlTests struct {
	ContainsKnownFileSystem bool   `xml:"containsKnownFileSystem"`
	SizeExpected            int64  `xml:"sizeExpected"`
	SizeActual              int64  `xml:"sizeActual"`
	SizeDifference          int64  `xml:"sizeDifference"`
	SizeDifferenceSectors   string `xml:"sizeDifferenceSectors"`
	SizeAsExpected          bool   `xml:"sizeAsExpected"`
	SmallerThanExpected     bool   `xml:"smallerThanExpected"`
}

type xmlFileSystems struct {
	FileSystems []xmlFileSystem `xml:"fileSystem"`
}

type xmlFileSystem struct {
	Type                    string          `xml:"TYPE,attr"`
	DescriptorCount         int             `xml:"descriptorCount,omitempty"`
	ExtendedDescriptorCount int             `xml:"extendedDescriptorCount,omitempty"`
	PartitionTypes          []string        `xml:"partitionTypes>partitionType,omitempty"`
	Descriptors             []xmlDescriptor `xml:"descriptor"`
}

// xmlDescriptor writes a descriptor as an element named after its kind with one child per field.
type xmlDescriptor descriptor.Descriptor

func (d xmlDescriptor) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	start := xml.StartElement{Name: xml.Name{Local: string(d.Kind)}}
	if !d.Parsed {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "parsed"}, Value: "false"})
	}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for _, f := range d.Fields {
		if err := e.EncodeElement(displayValue(f.Value), xml.StartElement{Name: xml.Name{Local: f.Name}}); err != nil {
			return fmt.Errorf("failed to encode field %s: %w", f.Name, err)
		}
	}
	return e.EncodeToken(start.End())
}

// displayValue renders a field value for human consumption. Text is trimmed of its padding.
func displayValue(v any) string {
	switch value := v.(type) {
	case string:
		return strings.TrimSpace(value)
	case int64:
		return strconv.FormatInt(value, 10)
	case uint64:
		return strconv.FormatUint(value, 10)
	}
	return fmt.Sprint(v)
}

func toXML(doc Document) xmlDocument {
	out := xmlDocument{ToolInfo: doc.ToolInfo}
	for _, img := range doc.Images {
		x := xmlImage{
			FileInfo:   img.FileInfo,
			StatusInfo: img.Status,
		}
		if img.Status.Success {
			x.Tests = &xmlTests{
				ContainsKnownFileSystem: img.Tests.ContainsKnownFileSystem,
				SizeExpected:            img.Tests.Expected,
				SizeActual:              img.Tests.Actual,
				SizeDifference:          img.Tests.Difference,
				SizeDifferenceSectors:   strconv.FormatFloat(img.Tests.DifferenceSectors, 'f', -1, 64),
				SizeAsExpected:          img.Tests.AsExpected,
				SmallerThanExpected:     img.Tests.SmallerThanExpected,
			}
		}
		for _, fs := range img.FileSystems {
			xfs := xmlFileSystem{
				Type:                    string(fs.Family),
				DescriptorCount:         fs.DescriptorCount,
				ExtendedDescriptorCount: fs.ExtendedDescriptorCount,
				PartitionTypes:          fs.PartitionTypes,
			}
			for _, d := range fs.Descriptors {
				xfs.Descriptors = append(xfs.Descriptors, xmlDescriptor(d))
			}
			x.FileSystems.FileSystems = append(x.FileSystems.FileSystems, xfs)
		}
		out.Images = append(out.Images, x)
	}
	return out
}

// WriteXML writes the document as an isolyzer element holding toolInfo and one image element per report,
// each with fileInfo, statusInfo, tests and fileSystems children.
func WriteXML(w io.Writer, doc Document) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "    ")
	if err := enc.Encode(toXML(doc)); err != nil {
		return fmt.Errorf("failed to encode xml report: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
