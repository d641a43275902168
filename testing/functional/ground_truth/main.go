package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bgrewell/usage"
	"github.com/rstms/isolyzer"
	fixture "github.com/rstms/isolyzer/internal/testing"
	"github.com/rstms/isolyzer/pkg/logging"
	"github.com/rstms/isolyzer/pkg/option"
	"go.uber.org/multierr"
)

func main() {

	u := usage.NewUsage(
		usage.WithApplicationName("ground_truth"),
		usage.WithApplicationDescription("ground_truth is a functional testing application that is part of isolyzer and is designed to verify the verdicts for a directory of reference images against a ground truth file."),
	)
	help := u.AddBooleanOption("h", "help", false, "Display this help message", "", nil)
	verbose := u.AddBooleanOption("v", "verbose", false, "Enable debug logging", "", nil)
	input := u.AddArgument(1, "input", "Directory holding the reference images and ground_truth.json", "")
	parsed := u.Parse()

	if !parsed {
		u.PrintError(fmt.Errorf("failed to parse arguments"))
		os.Exit(1)
	}

	if *help {
		u.PrintUsage()
		os.Exit(0)
	}

	if input == nil || *input == "" {
		u.PrintError(fmt.Errorf("location of the reference directory <input> must be provided"))
		os.Exit(1)
	}

	entries, err := fixture.LoadGroundTruth(filepath.Join(*input, "ground_truth.json"))
	if err != nil {
		fmt.Printf("Failed to load ground truth: %s\n", err)
		os.Exit(1)
	}

	level := logging.LEVEL_INFO
	if *verbose {
		level = logging.LEVEL_DEBUG
	}
	logger := logging.NewLogger(logging.NewSimpleLogger(os.Stderr, level, true))

	paths := make([]string, len(entries))
	for i, gt := range entries {
		paths[i] = filepath.Join(*input, gt.Name)
	}

	reports, err := isolyzer.ProcessBatch(context.Background(), paths, option.WithLogger(logger))
	if err != nil {
		fmt.Printf("Failed to analyze images: %s\n", err)
		os.Exit(1)
	}

	var failures error
	for i, gt := range entries {
		failures = multierr.Append(failures, fixture.Validate(reports[i], gt))
	}

	if failures != nil {
		for _, e := range multierr.Errors(failures) {
			fmt.Printf("  - %s\n", e)
		}
		fmt.Printf("%d mismatches in %d images\n", len(multierr.Errors(failures)), len(entries))
		os.Exit(1)
	}
	fmt.Printf("All %d images match the ground truth!\n", len(entries))
}
