package report

import (
	"github.com/rstms/isolyzer/pkg/descriptor"
	"github.com/rstms/isolyzer/pkg/reconcile"
)

// Failure is the short, categorized reason recorded when an image could not be analyzed.
type Failure string

const (
	FailureNone    Failure = ""
	FailureMemory  Failure = "memory error (file size too large)"
	FailureIO      Failure = "I/O error (cannot open file)"
	FailureRuntime Failure = "runtime error (please report to developers)"
	FailureUnknown Failure = "unknown error (please report to developers)"
)

// ToolInfo identifies the program that produced a report.
type ToolInfo struct {
	ToolName    string `json:"toolName" yaml:"toolName" xml:"toolName"`
	ToolVersion string `json:"toolVersion" yaml:"toolVersion" xml:"toolVersion"`
}

// FileInfo describes the analyzed file. FileLastModified uses the ANSI C asctime layout.
type FileInfo struct {
	FileName         string `json:"fileName" yaml:"fileName" xml:"fileName"`
	FilePath         string `json:"filePath" yaml:"filePath" xml:"filePath"`
	FileSizeInBytes  int64  `json:"fileSizeInBytes" yaml:"fileSizeInBytes" xml:"fileSizeInBytes"`
	FileLastModified string `json:"fileLastModified,omitempty" yaml:"fileLastModified,omitempty" xml:"fileLastModified"`
}

// Status tells whether the analysis of an image ran to completion.
type Status struct {
	Success        bool    `json:"success" yaml:"success" xml:"success"`
	FailureMessage Failure `json:"failureMessage,omitempty" yaml:"failureMessage,omitempty" xml:"failureMessage,omitempty"`
}

// Tests holds the size verdict.
type Tests struct {
	ContainsKnownFileSystem bool `json:"containsKnownFileSystem" yaml:"containsKnownFileSystem"`
	reconcile.Verdict       `yaml:",inline"`
}

// ImageReport is the complete analysis of one image.
type ImageReport struct {
	FileInfo    FileInfo            `json:"fileInfo" yaml:"fileInfo"`
	Status      Status              `json:"statusInfo" yaml:"statusInfo"`
	Tests       Tests               `json:"tests" yaml:"tests"`
	FileSystems []descriptor.Result `json:"fileSystems" yaml:"fileSystems"`
}

// Failed returns a report for an image whose analysis was aborted.
func Failed(info FileInfo, failure Failure) *ImageReport {
	return &ImageReport{
		FileInfo: info,
		Status:   Status{Success: false, FailureMessage: failure},
	}
}

// Families lists the filesystem families found, in report order.
func (r *ImageReport) Families() []descriptor.Family {
	families := make([]descriptor.Family, 0, len(r.FileSystems))
	for _, fs := range r.FileSystems {
		families = append(families, fs.Family)
	}
	return families
}

// Document is the top level of a serialized batch.
type Document struct {
	ToolInfo ToolInfo       `json:"toolInfo" yaml:"toolInfo"`
	Images   []*ImageReport `json:"images" yaml:"images"`
}
