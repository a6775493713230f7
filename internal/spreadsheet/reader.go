package spreadsheet

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/UnknownOlympus/kmlforge/internal/models"
)

// Column names recognized by the reader.
const (
	LongitudeColumn    = "Longitude"
	LatitudeColumn     = "Latitude"
	DefaultLabelColumn = "Label"
	DefaultNoteColumn  = "Description"
)

// headerSearchRows is how many leading rows may hold the header.
const headerSearchRows = 2

// headerIndex maps a lower-cased column name to its position in the header row.
type headerIndex map[string]int

func makeHeaderIndex(header []string) headerIndex {
	idx := make(headerIndex, len(header))
	for pos, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, seen := idx[key]; !seen {
			idx[key] = pos
		}
	}

	return idx
}

func (h headerIndex) lookup(column string) (int, bool) {
	pos, ok := h[strings.ToLower(strings.TrimSpace(column))]
	return pos, ok
}

func (h headerIndex) hasMarkers() bool {
	_, lon := h.lookup(LongitudeColumn)
	_, lat := h.lookup(LatitudeColumn)

	return lon && lat
}

// Reader turns spreadsheet rows into geo records.
type Reader struct {
	labelColumn string       // labelColumn names the column used as placemark name
	noteColumn  string       // noteColumn names the optional column used as placemark description
	log         *slog.Logger // log is the logger for reader warnings
}

// NewReader creates a Reader. Empty column names fall back to DefaultLabelColumn and DefaultNoteColumn.
func NewReader(labelColumn, noteColumn string, log *slog.Logger) *Reader {
	if strings.TrimSpace(labelColumn) == "" {
		labelColumn = DefaultLabelColumn
	}
	if strings.TrimSpace(noteColumn) == "" {
		noteColumn = DefaultNoteColumn
	}

	return &Reader{labelColumn: labelColumn, noteColumn: noteColumn, log: log}
}

// LabelColumn returns the name of the column used for placemark names.
func (r *Reader) LabelColumn() string {
	return r.labelColumn
}

// NoteColumn returns the name of the column used for placemark descriptions.
func (r *Reader) NoteColumn() string {
	return r.noteColumn
}

// Read loads the spreadsheet at path and returns one record per row that has both coordinates.
//
// The header is the first of the two leading rows holding both a Longitude and a Latitude
// cell. When neither holds them, Read fails with models.ErrSchema. Rows with an empty
// longitude or latitude are dropped. Missing or blank label and note cells become "".
func (r *Reader) Read(path string) (models.RecordSet, error) {
	rows, err := loadRows(path)
	if err != nil {
		return nil, err
	}

	headerRow, err := findHeaderRow(rows)
	if err != nil {
		return nil, err
	}

	index := makeHeaderIndex(rows[headerRow])
	lonPos, hasLon := index.lookup(LongitudeColumn)
	latPos, hasLat := index.lookup(LatitudeColumn)
	if !hasLon || !hasLat {
		return nil, models.ErrSchema
	}

	labelPos, hasLabel := index.lookup(r.labelColumn)
	if !hasLabel {
		r.log.Warn("Label column not found, placemarks will be unnamed", "file", path, "column", r.labelColumn)
	}
	notePos, hasNote := index.lookup(r.noteColumn)

	records := models.RecordSet{}
	for _, row := range rows[headerRow+1:] {
		lon := cell(row, lonPos)
		lat := cell(row, latPos)
		if lon == "" || lat == "" {
			continue
		}

		rec := models.GeoRecord{Longitude: lon, Latitude: lat}
		if hasLabel {
			rec.Label = cell(row, labelPos)
		}
		if hasNote {
			rec.Note = cell(row, notePos)
		}
		records = append(records, rec)
	}

	r.log.Debug("Spreadsheet read", "file", path, "header_row", headerRow, "records", len(records))

	return records, nil
}

// findHeaderRow returns the index of the first leading row holding both coordinate markers.
func findHeaderRow(rows [][]string) (int, error) {
	for idx := 0; idx < headerSearchRows && idx < len(rows); idx++ {
		if makeHeaderIndex(rows[idx]).hasMarkers() {
			return idx, nil
		}
	}

	return 0, fmt.Errorf("%w in the first %d rows", models.ErrSchema, headerSearchRows)
}

// cell returns the trimmed value at pos, or "" when the row is shorter.
func cell(row []string, pos int) string {
	if pos >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[pos])
}
