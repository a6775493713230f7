package spreadsheet

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/UnknownOlympus/kmlforge/internal/models"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Writer writes records as a spreadsheet with the columns
// Longitude, Latitude, label column, note column.
type Writer struct {
	labelColumn string
	noteColumn  string
}

// NewWriter creates a Writer. Empty column names fall back to the defaults.
func NewWriter(labelColumn, noteColumn string) *Writer {
	if strings.TrimSpace(labelColumn) == "" {
		labelColumn = DefaultLabelColumn
	}
	if strings.TrimSpace(noteColumn) == "" {
		noteColumn = DefaultNoteColumn
	}

	return &Writer{labelColumn: labelColumn, noteColumn: noteColumn}
}

// Write stores records at path. The format follows the extension of path.
func (w *Writer) Write(path string, records models.RecordSet) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}

	switch format {
	case FormatXLSX:
		return w.writeWorkbook(path, records)
	case FormatCSV:
		return w.writeCSV(path, records)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func (w *Writer) header() []string {
	return []string{LongitudeColumn, LatitudeColumn, w.labelColumn, w.noteColumn}
}

func row(rec models.GeoRecord) []string {
	return []string{rec.Longitude, rec.Latitude, rec.Label, rec.Note}
}

func (w *Writer) writeWorkbook(path string, records models.RecordSet) error {
	book := excelize.NewFile()
	defer book.Close()

	sheet := book.GetSheetName(0)

	header := w.header()
	if err := book.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	for idx, rec := range records {
		cellName, err := excelize.CoordinatesToCellName(1, idx+2)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", idx+2, err)
		}

		values := row(rec)
		if err = book.SetSheetRow(sheet, cellName, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", idx+2, err)
		}
	}

	if err := book.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	return nil
}

func (w *Writer) writeCSV(path string, records models.RecordSet) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}

	enc := transform.NewWriter(file, unicode.UTF8BOM.NewEncoder())
	out := csv.NewWriter(enc)

	if err = out.Write(w.header()); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write header row: %w", err)
	}
	for _, rec := range records {
		if err = out.Write(row(rec)); err != nil {
			_ = file.Close()
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	out.Flush()
	if err = out.Error(); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to flush csv rows: %w", err)
	}

	if err = enc.Close(); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to flush csv file: %w", err)
	}

	if err = file.Close(); err != nil {
		return fmt.Errorf("failed to close csv file: %w", err)
	}

	return nil
}
