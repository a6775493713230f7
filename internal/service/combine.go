package service

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/UnknownOlympus/kmlforge/internal/kml"
)

// Combine merges the KML documents at paths into output. Each source keeps a distinct
// palette style chosen by its position in paths. Sources that fail are reported and skipped.
func (bs *BatchService) Combine(ctx context.Context, paths []string, output string) (Report, error) {
	defer bs.observe(OperationCombine, time.Now())

	report := Report{Operation: OperationCombine, Inputs: len(paths)}

	bs.log.InfoContext(ctx, "Combining KML files", "files", len(paths), "output", output)

	result, err := kml.CombineFile(paths, output)
	if err != nil {
		return report, fmt.Errorf("failed to write %s: %w", output, err)
	}

	for _, failure := range result.Failures {
		bs.failed(ctx, &report, failure.Path, failure.Err)
	}
	for range result.Documents {
		bs.processed(&report)
	}
	bs.succeeded(&report, output, result.Placemarks)

	if len(paths) > 0 && result.Documents == 0 {
		return report, fmt.Errorf("%w: every KML source failed", ErrNoOutput)
	}

	bs.log.InfoContext(ctx, "Combined KML generated", "output", output,
		"documents", result.Documents, "placemarks", result.Placemarks)

	return report, nil
}

// CombineDirectory merges every KML file of dir into output, or into dir/MergedMarkupName
// when output is empty. A previous MergedMarkupName and the output itself are never inputs.
func (bs *BatchService) CombineDirectory(ctx context.Context, dir, output string) (Report, error) {
	if output == "" {
		output = filepath.Join(dir, MergedMarkupName)
	}
	target, err := filepath.Abs(output)
	if err != nil {
		return Report{Operation: OperationCombine}, fmt.Errorf("failed to resolve %s: %w", output, err)
	}

	files, err := listFiles(dir, func(name string) bool {
		return hasExtension(name, markupExtension) && !strings.EqualFold(name, MergedMarkupName)
	})
	if err != nil {
		return Report{Operation: OperationCombine}, err
	}
	files = slices.DeleteFunc(files, func(path string) bool {
		abs, absErr := filepath.Abs(path)
		return absErr == nil && abs == target
	})
	if len(files) == 0 {
		return Report{Operation: OperationCombine}, fmt.Errorf("%w: no KML files to combine in %s",
			ErrNoInputFiles, dir)
	}

	return bs.Combine(ctx, files, output)
}
