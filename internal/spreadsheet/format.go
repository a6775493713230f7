// Package spreadsheet reads geo records from spreadsheets and writes them back out.
package spreadsheet

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Format represents a supported spreadsheet file format.
type Format string

const (
	// FormatXLSX represents an Office Open XML workbook.
	FormatXLSX Format = "xlsx"
	// FormatCSV represents a comma (or semicolon) separated text file.
	FormatCSV Format = "csv"
)

// ErrUnsupportedFormat is returned for files or names that match no supported format.
var ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")

// Formats lists the supported formats in the order they are documented.
func Formats() []Format {
	return []Format{FormatXLSX, FormatCSV}
}

// Extension returns the file extension, with the leading dot, used for the format.
func (f Format) Extension() string {
	return "." + string(f)
}

// ParseFormat converts a format name such as "xlsx" or ".CSV" into a Format.
func ParseFormat(name string) (Format, error) {
	normalized := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), ".")))
	for _, format := range Formats() {
		if normalized == format {
			return format, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// FormatOf returns the format matching the extension of path.
func FormatOf(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", fmt.Errorf("%w: %s has no extension", ErrUnsupportedFormat, filepath.Base(path))
	}

	return ParseFormat(ext)
}

// IsSpreadsheet reports whether path has the extension of a supported format.
func IsSpreadsheet(path string) bool {
	_, err := FormatOf(path)
	return err == nil
}
