package option

import (
	"github.com/rstms/isolyzer/pkg/consts"
	"github.com/rstms/isolyzer/pkg/logging"
)

type ProgressCallback func(
	currentPath string,
	currentImageNumber int,
	totalImageCount int,
)

type AnalyzeOptions struct {
	SectorOffset  int64
	ActualSize    int64
	SectorsToRead int
	Concurrency   int
	Progress      ProgressCallback
	Logger        *logging.Logger
}

type AnalyzeOption func(*AnalyzeOptions)

// DefaultAnalyzeOptions returns the options used when none are given. ActualSize of -1 means the size is
// taken from the file, or from the buffer length when analyzing bytes directly.
func DefaultAnalyzeOptions() *AnalyzeOptions {
	return &AnalyzeOptions{
		ActualSize:    -1,
		SectorsToRead: consts.DEFAULT_SECTORS_TO_READ,
		Concurrency:   1,
		Progress:      func(string, int, int) {},
		Logger:        logging.DefaultLogger(),
	}
}

// Apply returns the defaults with opts applied in order.
func Apply(opts ...AnalyzeOption) *AnalyzeOptions {
	o := DefaultAnalyzeOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithSectorOffset sets the number of sectors subtracted from the ISO9660 volume space size. Use it for
// an image of the second or later session of a multisession disc (the -N value reported by cdinfo).
func WithSectorOffset(sectors int64) AnalyzeOption {
	return func(o *AnalyzeOptions) {
		o.SectorOffset = sectors
	}
}

// WithActualSize overrides the actual image size compared against the expected size.
func WithActualSize(size int64) AnalyzeOption {
	return func(o *AnalyzeOptions) {
		o.ActualSize = size
	}
}

func WithSectorsToRead(sectors int) AnalyzeOption {
	return func(o *AnalyzeOptions) {
		if sectors > 0 {
			o.SectorsToRead = sectors
		}
	}
}

// WithConcurrency sets how many images a batch analyzes at once.
func WithConcurrency(n int) AnalyzeOption {
	return func(o *AnalyzeOptions) {
		if n > 0 {
			o.Concurrency = n
		}
	}
}

// WithProgress sets a callback invoked as each image of a batch completes.
// Parameters:
// - currentPath: The image that was just analyzed.
// - currentImageNumber: How many images have completed, including this one.
// - totalImageCount: The number of images in the batch.
func WithProgress(callback ProgressCallback) AnalyzeOption {
	return func(o *AnalyzeOptions) {
		if callback != nil {
			o.Progress = callback
		}
	}
}

func WithLogger(logger *logging.Logger) AnalyzeOption {
	return func(o *AnalyzeOptions) {
		if logger != nil {
			o.Logger = logger
		}
	}
}
