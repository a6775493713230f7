package kml

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/UnknownOlympus/kmlforge/internal/models"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Namespace is the KML 2.2 namespace declared on every generated document.
const Namespace = "http://www.opengis.net/kml/2.2"

const header = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="` + Namespace + `">
<Document>
`

const footer = `</Document>
</kml>
`

// Write serializes the document as KML. Every record becomes one placemark, in order.
// The description element of a placemark is omitted when its note is empty.
func Write(w io.Writer, doc models.Document) error {
	var buf strings.Builder

	buf.WriteString(header)
	fmt.Fprintf(&buf, "<name>%s</name>\n", Escape(doc.Title))
	fmt.Fprintf(&buf, "<description>%s</description>\n", Escape(doc.Description))

	for _, rec := range doc.Placemarks {
		buf.WriteString("<Placemark>\n")
		fmt.Fprintf(&buf, "    <name>%s</name>\n", Escape(rec.Label))
		if rec.Note != "" {
			fmt.Fprintf(&buf, "    <description>%s</description>\n", Escape(rec.Note))
		}
		buf.WriteString("    <Point>\n")
		fmt.Fprintf(&buf, "        <coordinates>%s</coordinates>\n", rec.Coordinates())
		buf.WriteString("    </Point>\n")
		buf.WriteString("</Placemark>\n")
	}

	buf.WriteString(footer)

	return writeWithBOM(w, buf.String())
}

// WriteFile writes the document to path, replacing any existing file.
func WriteFile(path string, doc models.Document) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create KML file: %w", err)
	}

	if err = Write(file, doc); err != nil {
		_ = file.Close()
		return err
	}

	if err = file.Close(); err != nil {
		return fmt.Errorf("failed to close KML file: %w", err)
	}

	return nil
}

// writeWithBOM writes content as UTF-8 preceded by a byte-order mark.
// Map viewers consuming these files expect the mark.
func writeWithBOM(w io.Writer, content string) error {
	enc := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
	if _, err := io.WriteString(enc, content); err != nil {
		return fmt.Errorf("failed to write KML content: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to flush KML content: %w", err)
	}

	return nil
}
