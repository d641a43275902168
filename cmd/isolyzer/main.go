package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/bgrewell/usage"
	"github.com/rstms/isolyzer"
	"github.com/rstms/isolyzer/pkg/logging"
	"github.com/rstms/isolyzer/pkg/option"
	"github.com/rstms/isolyzer/pkg/report"
	"github.com/theckman/yacspin"
	"go.uber.org/multierr"
	"golang.org/x/term"
)

// truncateString truncates the input string to the specified max length.
// If truncation occurs, it prepends "..." to indicate the string has been shortened.
func truncateString(input string, maxLength int) string {
	if len(input) <= maxLength {
		return input
	}
	if maxLength <= 3 {
		return input[len(input)-maxLength:]
	}
	return "..." + input[len(input)-(maxLength-3):]
}

// CreateProgressCallback returns a ProgressCallback that updates the spinner's message.
func CreateProgressCallback(spinner *yacspin.Spinner) option.ProgressCallback {
	return func(currentPath string, currentImageNumber int, totalImageCount int) {
		width, _, err := term.GetSize(int(os.Stderr.Fd()))
		if err != nil {
			width = 80
		}

		fixedPart := fmt.Sprintf(" [%d/%d] ", currentImageNumber, totalImageCount)
		availableSpace := width - len(fixedPart) - 6
		if availableSpace < 10 {
			availableSpace = 10
		}

		spinner.Message(fixedPart + truncateString(currentPath, availableSpace))
	}
}

// InitializeSpinner sets up and starts the yacspin spinner on stderr, keeping stdout for the report.
func InitializeSpinner() (*yacspin.Spinner, error) {
	settings := yacspin.Config{
		Writer:            os.Stderr,
		Frequency:         100 * time.Millisecond,
		ShowCursor:        false,
		SpinnerAtEnd:      false,
		CharSet:           yacspin.CharSets[14],
		Colors:            []string{"fgHiCyan"},
		StopColors:        []string{"fgHiGreen"},
		StopFailColors:    []string{"fgHiRed"},
		StopFailCharacter: "✗",
		StopCharacter:     "✓",
	}

	spinner, err := yacspin.New(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create spinner: %w", err)
	}
	if err := spinner.Start(); err != nil {
		return nil, fmt.Errorf("failed to start spinner: %w", err)
	}
	return spinner, nil
}

// expandImages resolves the image argument. A pattern that matches nothing is kept as a literal path so
// that the image is reported as unreadable instead of silently skipped.
func expandImages(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid image pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return []string{pattern}, nil
	}
	return matches, nil
}

func main() {
	u := usage.NewUsage(
		usage.WithApplicationName("isolyzer"),
		usage.WithApplicationDescription("isolyzer verifies the size of optical disc images against the sizes declared by the ISO 9660, High Sierra, Apple and UDF structures they contain."),
	)
	help := u.AddBooleanOption("h", "help", false, "Show this help message", "optional", nil)
	verbose := u.AddBooleanOption("v", "verbose", false, "Enable verbose (debug) logging", "optional", nil)
	trace := u.AddBooleanOption("vv", "trace", false, "Enable trace logging", "optional", nil)
	offset := u.AddIntegerOption("o", "offset", 0, "Sector offset of the image (second or later session of a multisession disc)", "optional", nil)
	format := u.AddStringOption("f", "format", string(report.FormatXML), "Output format: xml, json, yaml or text", "optional", nil)
	jobs := u.AddIntegerOption("j", "jobs", 1, "Number of images analyzed in parallel", "optional", nil)
	images := u.AddArgument(1, "images", "Image file, or a wildcard pattern matching several images", "")
	parsed := u.Parse()

	if !parsed {
		u.PrintError(fmt.Errorf("failed to parse arguments"))
		os.Exit(1)
	}

	if *help {
		u.PrintUsage()
		os.Exit(0)
	}

	if images == nil || *images == "" {
		u.PrintError(fmt.Errorf("the image <images> to analyze must be provided"))
		os.Exit(1)
	}

	outputFormat, err := report.ParseFormat(*format)
	if err != nil {
		u.PrintError(err)
		os.Exit(1)
	}

	paths, err := expandImages(*images)
	if err != nil {
		u.PrintError(err)
		os.Exit(1)
	}

	level := logging.LEVEL_INFO
	switch {
	case *trace:
		level = logging.LEVEL_TRACE
	case *verbose:
		level = logging.LEVEL_DEBUG
	}
	useColor := term.IsTerminal(int(os.Stderr.Fd()))
	logger := logging.NewLogger(logging.NewSimpleLogger(os.Stderr, level, useColor))

	opts := []option.AnalyzeOption{
		option.WithSectorOffset(int64(*offset)),
		option.WithConcurrency(*jobs),
		option.WithLogger(logger),
	}

	// The spinner would be interleaved with log output, so it only runs in quiet mode.
	var spinner *yacspin.Spinner
	if useColor && level == logging.LEVEL_INFO {
		spinner, err = InitializeSpinner()
		if err != nil {
			logger.Error(err, "Progress updates will be disabled")
		} else {
			opts = append(opts, option.WithProgress(CreateProgressCallback(spinner)))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	reports, err := isolyzer.ProcessBatch(ctx, paths, opts...)
	if spinner != nil {
		if err != nil {
			spinner.StopFailMessage(fmt.Sprintf(" Interrupted: %v", err))
			_ = spinner.StopFail()
		} else {
			spinner.StopMessage(fmt.Sprintf(" Analyzed %d images", len(paths)))
			_ = spinner.Stop()
		}
	}
	if err != nil {
		logger.Error(err, "Batch interrupted")
		os.Exit(1)
	}

	var failures error
	for i, r := range reports {
		if !r.Status.Success {
			failures = multierr.Append(failures, fmt.Errorf("%s: %s", paths[i], r.Status.FailureMessage))
		}
	}

	doc := report.Document{ToolInfo: isolyzer.Tool(), Images: reports}
	if err := report.Write(os.Stdout, outputFormat, doc); err != nil {
		logger.Error(err, "Failed to write report")
		os.Exit(1)
	}

	if failures != nil {
		for _, e := range multierr.Errors(failures) {
			logger.Error(e, "Image could not be analyzed")
		}
		os.Exit(2)
	}
}
