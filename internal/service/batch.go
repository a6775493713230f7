package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/UnknownOlympus/kmlforge/internal/metrics"
	"github.com/UnknownOlympus/kmlforge/internal/models"
	"github.com/UnknownOlympus/kmlforge/internal/spreadsheet"
)

// Operation names used in reports, logs and metric labels.
const (
	OperationGenerate = "generate"
	OperationExtract  = "extract"
	OperationCombine  = "combine"
)

// Fixed output names written into the batch directory.
const (
	CombinedMarkupName  = "all_data.kml" // CombinedMarkupName is the single document built from all spreadsheets.
	CombinedMarkupTitle = "All Data"     // CombinedMarkupTitle is the title of that document.
	MergedMarkupName    = "all_kml.kml"  // MergedMarkupName is the document built by combining KML files.
)

const (
	markupExtension  = ".kml"
	archiveExtension = ".kmz"
)

// Batch level errors. Per-file problems are reported through Report.Failures instead.
var (
	ErrNoInputFiles = errors.New("no matching input files found")
	ErrNoOutput     = errors.New("no output was produced")
	ErrOutputClash  = errors.New("output already written by another source")
)

// TableReader reads geo records from a spreadsheet file.
type TableReader interface {
	Read(path string) (models.RecordSet, error)
}

// TableWriter writes geo records to a spreadsheet file.
type TableWriter interface {
	Write(path string, records models.RecordSet) error
}

// Options configures a directory batch.
type Options struct {
	Dir         string             // Dir is the directory scanned for inputs and receiving outputs.
	Combine     bool               // Combine writes a single KML instead of one per spreadsheet.
	TableFormat spreadsheet.Format // TableFormat is the spreadsheet format written by ExtractTables.
}

// BatchService converts every matching file of a directory, one file at a time.
// A failing file is logged and recorded in the report without stopping the batch.
type BatchService struct {
	log     *slog.Logger     // Logger for logging batch progress
	reader  TableReader      // Reader for spreadsheet sources
	writer  TableWriter      // Writer for spreadsheet outputs
	metrics *metrics.Metrics // Metrics for tracking processed files
}

// NewBatchService creates a new instance of BatchService.
func NewBatchService(
	log *slog.Logger,
	reader TableReader,
	writer TableWriter,
	metrics *metrics.Metrics,
) *BatchService {
	return &BatchService{
		log:     log,
		reader:  reader,
		writer:  writer,
		metrics: metrics,
	}
}

// listFiles returns the regular files of dir accepted by match, sorted by name.
func listFiles(dir string, match func(name string) bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !match(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}

	return files, nil
}

func hasExtension(name string, extensions ...string) bool {
	ext := filepath.Ext(name)
	for _, want := range extensions {
		if strings.EqualFold(ext, want) {
			return true
		}
	}

	return false
}

// replaceExtension swaps the extension of path for ext.
func replaceExtension(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// checkOutput fails with ErrOutputClash when an earlier source of the batch already
// produced output. produced maps each written output to its source.
func checkOutput(produced map[string]string, output string) error {
	if earlier, taken := produced[output]; taken {
		return fmt.Errorf("%w: %s was written from %s", ErrOutputClash, filepath.Base(output), filepath.Base(earlier))
	}

	return nil
}

func (bs *BatchService) observe(operation string, start time.Time) {
	bs.metrics.BatchSeconds.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (bs *BatchService) succeeded(report *Report, output string, written int) {
	report.Outputs = append(report.Outputs, output)
	report.Records += written
	bs.metrics.PlacemarksWritten.WithLabelValues(report.Operation).Add(float64(written))
}

func (bs *BatchService) failed(ctx context.Context, report *Report, path string, err error) {
	bs.log.ErrorContext(ctx, "Failed to process file", "operation", report.Operation, "file", path, "error", err)
	report.Failures = append(report.Failures, models.FileError{Path: path, Err: err})
	bs.metrics.FilesProcessed.WithLabelValues(report.Operation, metrics.StatusFailure).Inc()
}

func (bs *BatchService) processed(report *Report) {
	bs.metrics.FilesProcessed.WithLabelValues(report.Operation, metrics.StatusSuccess).Inc()
}
