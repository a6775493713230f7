package kml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/UnknownOlympus/kmlforge/internal/models"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// placemark holds the children of a Placemark element that the reader cares about.
// Pointers distinguish a missing element from an empty one.
type placemark struct {
	Name        *string `xml:"name"`
	Description *string `xml:"description"`
	Coordinates *string `xml:"Point>coordinates"`
}

// record converts the placemark into a GeoRecord. It reports false when the placemark
// has no name or no usable coordinates.
func (p placemark) record() (models.GeoRecord, bool) {
	const coordsListLength = 2

	if p.Name == nil || p.Coordinates == nil {
		return models.GeoRecord{}, false
	}

	parts := strings.Split(strings.TrimSpace(*p.Coordinates), ",")
	if len(parts) < coordsListLength {
		return models.GeoRecord{}, false
	}

	lon := strings.TrimSpace(parts[0])
	lat := strings.TrimSpace(parts[1])
	if lon == "" || lat == "" {
		return models.GeoRecord{}, false
	}

	rec := models.GeoRecord{
		Longitude: lon,
		Latitude:  lat,
		Label:     strings.TrimSpace(*p.Name),
	}
	if p.Description != nil {
		rec.Note = strings.TrimSpace(*p.Description)
	}

	return rec, true
}

// newDecoder returns an XML decoder that drops a leading byte-order mark and
// understands documents declaring a non UTF-8 encoding.
func newDecoder(r io.Reader) *xml.Decoder {
	dec := xml.NewDecoder(transform.NewReader(r, unicode.BOMOverride(transform.Nop)))
	dec.CharsetReader = charset.NewReaderLabel

	return dec
}

// Read parses a KML document and returns its placemarks in document order.
// Only Placemark elements in the namespace of the root element are considered.
// Placemarks without a name or without point coordinates are skipped.
func Read(r io.Reader) (models.RecordSet, error) {
	dec := newDecoder(r)
	records := models.RecordSet{}

	var (
		namespace string
		rootSeen  bool
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", models.ErrFormat, err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		if !rootSeen {
			rootSeen = true
			namespace = start.Name.Space
			continue
		}

		if start.Name.Local != "Placemark" || start.Name.Space != namespace {
			continue
		}

		var pm placemark
		if err = dec.DecodeElement(&pm, &start); err != nil {
			return nil, fmt.Errorf("%w: %w", models.ErrFormat, err)
		}

		if rec, valid := pm.record(); valid {
			records = append(records, rec)
		}
	}

	if !rootSeen {
		return nil, fmt.Errorf("%w: document has no root element", models.ErrFormat)
	}

	return records, nil
}

// ReadFile parses the KML document stored at path.
func ReadFile(path string) (models.RecordSet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open KML file: %w", err)
	}
	defer file.Close()

	return Read(file)
}

// checkWellFormed reports whether content parses as a complete XML document.
func checkWellFormed(content string) error {
	dec := newDecoder(strings.NewReader(content))

	var rootSeen bool
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: %w", models.ErrFormat, err)
		}
		if _, ok := tok.(xml.StartElement); ok {
			rootSeen = true
		}
	}

	if !rootSeen {
		return fmt.Errorf("%w: document has no root element", models.ErrFormat)
	}

	return nil
}
