package service

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/UnknownOlympus/kmlforge/internal/archive"
	"github.com/UnknownOlympus/kmlforge/internal/kml"
	"github.com/UnknownOlympus/kmlforge/internal/models"
	"github.com/UnknownOlympus/kmlforge/internal/spreadsheet"
)

// ExtractTables writes one spreadsheet per KML or KMZ file in opts.Dir, named after the
// source and using opts.TableFormat (xlsx when empty).
func (bs *BatchService) ExtractTables(ctx context.Context, opts Options) (Report, error) {
	defer bs.observe(OperationExtract, time.Now())

	report := Report{Operation: OperationExtract}

	format := opts.TableFormat
	if format == "" {
		format = spreadsheet.FormatXLSX
	}

	files, err := listFiles(opts.Dir, func(name string) bool {
		return hasExtension(name, markupExtension, archiveExtension)
	})
	if err != nil {
		return report, err
	}
	report.Inputs = len(files)
	if len(files) == 0 {
		return report, fmt.Errorf("%w: no KML or KMZ files in %s", ErrNoInputFiles, opts.Dir)
	}

	bs.log.InfoContext(ctx, "Extracting spreadsheets from KML", "dir", opts.Dir, "files", len(files),
		"format", format)

	produced := make(map[string]string, len(files))
	for _, path := range files {
		output := replaceExtension(path, format.Extension())
		if err = checkOutput(produced, output); err != nil {
			bs.failed(ctx, &report, path, err)
			continue
		}

		records, err := bs.readMarkup(ctx, path)
		if err != nil {
			bs.failed(ctx, &report, path, err)
			continue
		}

		if err = bs.writer.Write(output, records); err != nil {
			bs.failed(ctx, &report, path, err)
			continue
		}

		produced[output] = path
		bs.processed(&report)
		bs.succeeded(&report, output, len(records))
		bs.log.InfoContext(ctx, "Spreadsheet generated", "file", path, "output", output, "rows", len(records))
	}

	if len(report.Outputs) == 0 {
		return report, fmt.Errorf("%w: every KML source failed", ErrNoOutput)
	}

	return report, nil
}

// readMarkup reads a KML file, unpacking it first when path is a KMZ archive.
func (bs *BatchService) readMarkup(ctx context.Context, path string) (models.RecordSet, error) {
	if !hasExtension(path, archiveExtension) {
		return kml.ReadFile(path)
	}

	scratch, err := os.MkdirTemp("", "kmlforge-kmz-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(scratch); rmErr != nil {
			bs.log.WarnContext(ctx, "Failed to remove scratch directory", "dir", scratch, "error", rmErr)
		}
	}()

	document, found, err := archive.Unpack(path, scratch)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, models.ErrNotFound
	}

	bs.log.DebugContext(ctx, "KML extracted from archive", "file", path, "document", document)

	return kml.ReadFile(document)
}
