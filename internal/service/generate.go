package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/UnknownOlympus/kmlforge/internal/kml"
	"github.com/UnknownOlympus/kmlforge/internal/models"
	"github.com/UnknownOlympus/kmlforge/internal/spreadsheet"
)

// GenerateMarkup builds KML documents from every spreadsheet in opts.Dir.
//
// With opts.Combine the records of all spreadsheets are gathered, in file order, into
// CombinedMarkupName. When no spreadsheet contributes a record, nothing is written and
// ErrNoOutput is returned. Without opts.Combine each spreadsheet gets its own document
// named after it.
func (bs *BatchService) GenerateMarkup(ctx context.Context, opts Options) (Report, error) {
	defer bs.observe(OperationGenerate, time.Now())

	report := Report{Operation: OperationGenerate}

	files, err := listFiles(opts.Dir, spreadsheet.IsSpreadsheet)
	if err != nil {
		return report, err
	}
	report.Inputs = len(files)
	if len(files) == 0 {
		return report, fmt.Errorf("%w: no spreadsheets in %s", ErrNoInputFiles, opts.Dir)
	}

	bs.log.InfoContext(ctx, "Generating KML from spreadsheets", "dir", opts.Dir, "files", len(files),
		"combine", opts.Combine)

	if opts.Combine {
		return bs.generateCombined(ctx, opts.Dir, files, report)
	}

	produced := make(map[string]string, len(files))
	for _, path := range files {
		output := replaceExtension(path, markupExtension)
		if err = checkOutput(produced, output); err != nil {
			bs.failed(ctx, &report, path, err)
			continue
		}

		records, err := bs.reader.Read(path)
		if err != nil {
			bs.failed(ctx, &report, path, err)
			continue
		}

		title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if err = kml.WriteFile(output, models.NewDocument(title, records)); err != nil {
			bs.failed(ctx, &report, path, err)
			continue
		}

		produced[output] = path
		bs.processed(&report)
		bs.succeeded(&report, output, len(records))
		bs.log.InfoContext(ctx, "KML generated", "file", path, "output", output, "placemarks", len(records))
	}

	if len(report.Outputs) == 0 {
		return report, fmt.Errorf("%w: every spreadsheet failed", ErrNoOutput)
	}

	return report, nil
}

func (bs *BatchService) generateCombined(
	ctx context.Context,
	dir string,
	files []string,
	report Report,
) (Report, error) {
	all := models.RecordSet{}
	for _, path := range files {
		all = bs.accumulate(ctx, &report, all, path)
	}

	if len(all) == 0 {
		bs.log.WarnContext(ctx, "No valid coordinates found in any spreadsheet", "dir", dir)
		return report, fmt.Errorf("%w: no valid coordinates found in any spreadsheet", ErrNoOutput)
	}

	output := filepath.Join(dir, CombinedMarkupName)
	if err := kml.WriteFile(output, models.NewDocument(CombinedMarkupTitle, all)); err != nil {
		return report, fmt.Errorf("failed to write %s: %w", output, err)
	}

	bs.succeeded(&report, output, len(all))
	bs.log.InfoContext(ctx, "Combined KML generated", "output", output, "placemarks", len(all))

	return report, nil
}

// accumulate reads one spreadsheet and returns acc extended with its records.
// On failure acc is returned unchanged and the failure is recorded.
func (bs *BatchService) accumulate(
	ctx context.Context,
	report *Report,
	acc models.RecordSet,
	path string,
) models.RecordSet {
	records, err := bs.reader.Read(path)
	if err != nil {
		bs.failed(ctx, report, path, err)
		return acc
	}

	bs.processed(report)
	bs.log.DebugContext(ctx, "Spreadsheet accumulated", "file", path, "records", len(records))

	return append(acc, records...)
}
