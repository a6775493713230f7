package models

import (
	"errors"
	"fmt"
)

// Errors shared by the readers, the combiner and the batch service.
var (
	// ErrSchema is returned when a spreadsheet lacks the Longitude and Latitude columns.
	ErrSchema = errors.New("columns 'Longitude' and 'Latitude' were not found")
	// ErrFormat is returned when a KML document is not well-formed.
	ErrFormat = errors.New("malformed KML document")
	// ErrNotFound is returned when an archive holds no KML document.
	ErrNotFound = errors.New("no KML document found in archive")
)

// FileError ties a failure to the file that caused it.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e FileError) Unwrap() error {
	return e.Err
}
