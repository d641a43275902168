package isolyzer

import (
	"context"
	"sync/atomic"

	"github.com/rstms/isolyzer/pkg/apple"
	"github.com/rstms/isolyzer/pkg/consts"
	"github.com/rstms/isolyzer/pkg/descriptor"
	"github.com/rstms/isolyzer/pkg/detect"
	"github.com/rstms/isolyzer/pkg/imageio"
	"github.com/rstms/isolyzer/pkg/iso9660"
	"github.com/rstms/isolyzer/pkg/logging"
	"github.com/rstms/isolyzer/pkg/option"
	"github.com/rstms/isolyzer/pkg/reconcile"
	"github.com/rstms/isolyzer/pkg/report"
	"github.com/rstms/isolyzer/pkg/udf"
	"golang.org/x/sync/errgroup"
)

const ToolName = "isolyzer"

// Version is set at build time.
var Version = "dev"

// Tool returns the tool information written at the top of every report document.
func Tool() report.ToolInfo {
	return report.ToolInfo{ToolName: ToolName, ToolVersion: Version}
}

// Analyze inspects an in-memory image prefix. Unless WithActualSize is given, the actual size is the
// length of data, so data should hold the complete image.
func Analyze(data []byte, opts ...option.AnalyzeOption) (rep *report.ImageReport) {
	o := option.Apply(opts...)
	actual := o.ActualSize
	if actual < 0 {
		actual = int64(len(data))
	}
	info := report.FileInfo{FileSizeInBytes: actual}

	defer func() {
		if v := recover(); v != nil {
			err := imageio.Recovered(v)
			o.Logger.Error(err, "Analysis aborted")
			rep = report.Failed(info, imageio.Classify(err))
		}
	}()

	rep = analyze(data, actual, o.SectorOffset, o.Logger)
	rep.FileInfo = info
	return rep
}

// ProcessImage loads the first sectors of the file at path and analyzes them. Failures are reported in
// the returned report's status, never as a panic or an error.
func ProcessImage(path string, opts ...option.AnalyzeOption) (rep *report.ImageReport) {
	o := option.Apply(opts...)
	logger := o.Logger.WithValues("image", path)
	info := report.FileInfo{FilePath: path}

	defer func() {
		if v := recover(); v != nil {
			err := imageio.Recovered(v)
			logger.Error(err, "Analysis aborted")
			rep = report.Failed(info, imageio.Classify(err))
		}
	}()

	img, err := imageio.Load(path, o.SectorsToRead)
	info = img.Info
	if err != nil {
		logger.Error(err, "Failed to load image")
		return report.Failed(info, imageio.Classify(err))
	}
	logger.Debug("Loaded image", "size", info.FileSizeInBytes, "loaded", len(img.Data))

	actual := o.ActualSize
	if actual < 0 {
		actual = info.FileSizeInBytes
	}
	rep = analyze(img.Data, actual, o.SectorOffset, logger)
	rep.FileInfo = info
	return rep
}

// ProcessBatch analyzes every path, up to the configured concurrency at a time. Reports are returned in
// the order of paths. A failing image only affects its own report; the error is non-nil only when ctx
// is done before the batch completes, in which case images that were never started have nil reports.
// The progress callback may be called from several goroutines at once.
func ProcessBatch(ctx context.Context, paths []string, opts ...option.AnalyzeOption) ([]*report.ImageReport, error) {
	o := option.Apply(opts...)
	reports := make([]*report.ImageReport, len(paths))
	var completed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.Concurrency)
	for i, path := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			reports[i] = ProcessImage(path, opts...)
			o.Progress(path, int(completed.Add(1)), len(paths))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return reports, err
	}
	if int(completed.Load()) < len(paths) {
		return reports, ctx.Err()
	}
	return reports, nil
}

func analyze(buf []byte, actual, sectorOffset int64, logger *logging.Logger) *report.ImageReport {
	flags := detect.Detect(buf)
	logger.Debug("Detected signatures", "iso9660", flags.ISO9660, "highSierra", flags.HighSierra,
		"applePartitionMap", flags.ApplePartitionMap, "hfs", flags.HFS, "mfs", flags.MFS,
		"hfsPlus", flags.HFSPlus, "hfsx", flags.HFSX)

	var (
		systems    []descriptor.Result
		candidates []reconcile.Candidate
	)
	addCandidate := func(source reconcile.Source, size int64, ok bool) {
		if ok {
			candidates = append(candidates, reconcile.Candidate{Source: source, Size: size})
		}
	}

	udfStart := consts.ISO9660_DESCRIPTOR_START
	if flags.ISO9660 {
		result := iso9660.Walk(buf, iso9660.ISO9660, logger.WithName("iso9660"))
		systems = append(systems, result)
		udfStart = result.End
		if pvd, ok := result.First(descriptor.KIND_PRIMARY_VOLUME_DESCRIPTOR); ok {
			size, ok := iso9660.ExpectedSize(pvd, sectorOffset)
			addCandidate(reconcile.SOURCE_PRIMARY_VOLUME_DESCRIPTOR, size, ok)
		}
	}

	if flags.HighSierra {
		result := iso9660.Walk(buf, iso9660.HighSierra, logger.WithName("highsierra"))
		systems = append(systems, result)
		if !flags.ISO9660 {
			udfStart = result.End
		}
		if sfsvd, ok := result.First(descriptor.KIND_STANDARD_FILE_STRUCTURE_VD); ok {
			size, ok := iso9660.ExpectedSize(sfsvd, sectorOffset)
			addCandidate(reconcile.SOURCE_STANDARD_FILE_STRUCTURE, size, ok)
		}
	}

	if result, ok := apple.Parse(buf, flags, logger.WithName("apple")); ok {
		systems = append(systems, result)
		if zb, ok := result.First(descriptor.KIND_APPLE_ZERO_BLOCK); ok {
			size, ok := apple.BlockProductSize(zb)
			addCandidate(reconcile.SOURCE_ZERO_BLOCK, size, ok)
		}
		var mdbSize int64
		for _, mdb := range result.All(descriptor.KIND_MASTER_DIRECTORY_BLOCK) {
			if size, ok := apple.BlockProductSize(mdb); ok && size > mdbSize {
				mdbSize = size
			}
		}
		addCandidate(reconcile.SOURCE_MASTER_DIRECTORY_BLOCK, mdbSize, mdbSize > 0)
		if header, ok := result.First(descriptor.KIND_HFS_PLUS_VOLUME_HEADER); ok {
			size, ok := apple.BlockProductSize(header)
			addCandidate(reconcile.SOURCE_HFS_PLUS_VOLUME_HEADER, size, ok)
		}
	}

	if result, ok := udf.Parse(buf, udfStart, logger.WithName("udf")); ok {
		systems = append(systems, result)
		size, ok := udf.ResultSize(result)
		addCandidate(reconcile.SOURCE_UDF, size, ok)
	}

	verdict := reconcile.Reconcile(actual, candidates)
	logger.Debug("Reconciled sizes", "expected", verdict.Expected, "actual", verdict.Actual, "candidates", len(verdict.Candidates))

	return &report.ImageReport{
		Status: report.Status{Success: true},
		Tests: report.Tests{
			ContainsKnownFileSystem: len(systems) > 0,
			Verdict:                 verdict,
		},
		FileSystems: systems,
	}
}
