package imageio

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/rstms/isolyzer/pkg/consts"
	"github.com/rstms/isolyzer/pkg/report"
	"golang.org/x/exp/mmap"
)

var (
	// ErrOutOfMemory marks an allocation that could not be satisfied.
	ErrOutOfMemory = errors.New("out of memory")
	// ErrShortRead is returned when the mapped file yields fewer bytes than it reported.
	ErrShortRead = errors.New("short read")
)

// Image is the analyzed prefix of an image file together with its metadata.
type Image struct {
	Info report.FileInfo
	// Data holds the first sectors of the file, never more than the file itself.
	Data []byte
}

// Stat collects the metadata reported for path.
func Stat(path string) (report.FileInfo, error) {
	info := report.FileInfo{
		FileName: filepath.Base(path),
		FilePath: path,
	}
	if abs, err := filepath.Abs(path); err == nil {
		info.FilePath = abs
	}

	st, err := os.Stat(path)
	if err != nil {
		return info, err
	}
	if st.IsDir() {
		return info, &fs.PathError{Op: "open", Path: path, Err: fmt.Errorf("is a directory")}
	}
	info.FileSizeInBytes = st.Size()
	info.FileLastModified = st.ModTime().Format(time.ANSIC)
	return info, nil
}

// Load maps path and copies its first sectors (2048 bytes each) into memory. A sectors value of 0 or
// less selects the default.
func Load(path string, sectors int) (*Image, error) {
	info, err := Stat(path)
	if err != nil {
		return &Image{Info: info}, err
	}
	if sectors <= 0 {
		sectors = consts.DEFAULT_SECTORS_TO_READ
	}

	r, err := mmap.Open(path)
	if err != nil {
		return &Image{Info: info}, fmt.Errorf("failed to map %s: %w", path, err)
	}
	defer r.Close()

	n := int64(sectors) * consts.ISO9660_SECTOR_SIZE
	if size := int64(r.Len()); size < n {
		n = size
	}
	data := make([]byte, n)
	if n == 0 {
		return &Image{Info: info, Data: data}, nil
	}
	read, err := r.ReadAt(data, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return &Image{Info: info}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if int64(read) != n {
		return &Image{Info: info}, fmt.Errorf("%w: %s: got %d of %d bytes", ErrShortRead, path, read, n)
	}
	return &Image{Info: info, Data: data}, nil
}

// Recovered turns a value obtained from recover into an error. Slice allocations that exceed what the
// runtime can provide are reported as ErrOutOfMemory.
func Recovered(v any) error {
	switch e := v.(type) {
	case nil:
		return nil
	case runtime.Error:
		msg := e.Error()
		if strings.Contains(msg, "makeslice") || strings.Contains(msg, "out of memory") {
			return fmt.Errorf("%w: %v", ErrOutOfMemory, e)
		}
		return e
	case error:
		return e
	}
	return fmt.Errorf("panic: %v", v)
}

// Classify maps an error that aborted an image to its report category.
func Classify(err error) report.Failure {
	if err == nil {
		return report.FailureNone
	}

	var pathErr *fs.PathError
	var rtErr runtime.Error
	switch {
	case errors.Is(err, ErrOutOfMemory):
		return report.FailureMemory
	case errors.As(err, &pathErr),
		errors.Is(err, fs.ErrNotExist),
		errors.Is(err, fs.ErrPermission),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, ErrShortRead):
		return report.FailureIO
	case errors.As(err, &rtErr):
		return report.FailureRuntime
	}
	return report.FailureUnknown
}
