package kml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/UnknownOlympus/kmlforge/internal/models"
	"golang.org/x/net/html/charset"
)

const (
	combinedTitle       = "Combined KML"
	combinedDescription = "All KML files combined with different marker colors"
	placemarkTag        = "Placemark"
	originPrefix        = "Origin: "
)

// ErrUnbalanced is returned when Placemark opening and closing markers do not pair up.
var ErrUnbalanced = errors.New("unbalanced Placemark markers")

// styleURLPattern matches a styleUrl element already present in a placemark body.
var styleURLPattern = regexp.MustCompile(`(?s)<styleUrl\b[^>]*>.*?</styleUrl>\s*`)

// encodingPattern captures the encoding named by a leading XML declaration.
var encodingPattern = regexp.MustCompile(`^\s*<\?xml[^>]*\bencoding\s*=\s*["']([^"']+)["']`)

// CombineResult summarizes a combination run.
type CombineResult struct {
	Documents  int                // Documents is the number of source documents merged.
	Placemarks int                // Placemarks is the number of placemarks written.
	Failures   []models.FileError // Failures lists the skipped source documents.
}

// Combine merges the KML documents at paths into one document written to w.
// Source document i gets the palette style i mod 7, including when earlier documents
// were skipped. Placemarks without a description get one naming their source file.
// A source that cannot be read or is malformed is recorded in the result and skipped.
func Combine(paths []string, w io.Writer) (CombineResult, error) {
	var (
		buf    strings.Builder
		result CombineResult
	)

	buf.WriteString(header)
	fmt.Fprintf(&buf, "<name>%s</name>\n", combinedTitle)
	fmt.Fprintf(&buf, "<description>%s</description>\n", combinedDescription)
	writeStyles(&buf)

	for position, path := range paths {
		bodies, err := readPlacemarkBodies(path)
		if err != nil {
			result.Failures = append(result.Failures, models.FileError{Path: path, Err: err})
			continue
		}

		origin := Escape(baseName(path))
		for _, body := range bodies {
			writeCombinedPlacemark(&buf, StyleID(position), body, origin)
		}

		result.Documents++
		result.Placemarks += len(bodies)
	}

	buf.WriteString(footer)

	if err := writeWithBOM(w, buf.String()); err != nil {
		return result, err
	}

	return result, nil
}

// CombineFile merges the KML documents at paths into the file at output.
// Every source is read before output is touched, so output may be one of paths.
func CombineFile(paths []string, output string) (CombineResult, error) {
	var buf bytes.Buffer

	result, err := Combine(paths, &buf)
	if err != nil {
		return result, err
	}

	if err = os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
		return result, fmt.Errorf("failed to write combined KML file: %w", err)
	}

	return result, nil
}

func writeCombinedPlacemark(buf *strings.Builder, styleID, body, origin string) {
	buf.WriteString("<Placemark>\n")
	fmt.Fprintf(buf, "    <styleUrl>#%s</styleUrl>\n", styleID)
	if body != "" {
		fmt.Fprintf(buf, "    %s\n", body)
	}
	if indexOpenTag(body, "description") < 0 {
		fmt.Fprintf(buf, "    <description>%s%s</description>\n", originPrefix, origin)
	}
	buf.WriteString("</Placemark>\n")
}

// readPlacemarkBodies loads a source document and returns the inner text of each placemark.
func readPlacemarkBodies(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read KML file: %w", err)
	}

	content := strings.TrimPrefix(string(raw), "\ufeff")
	if err = checkWellFormed(content); err != nil {
		return nil, err
	}

	content, err = decodeContent(content)
	if err != nil {
		return nil, err
	}

	return placemarkBodies(content)
}

// decodeContent converts content to UTF-8 when its XML declaration names another encoding.
func decodeContent(content string) (string, error) {
	match := encodingPattern.FindStringSubmatch(content)
	if match == nil || strings.EqualFold(match[1], "utf-8") {
		return content, nil
	}

	reader, err := charset.NewReaderLabel(match[1], strings.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("%w: %w", models.ErrFormat, err)
	}

	decoded, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s content: %w", match[1], err)
	}

	return string(decoded), nil
}

// placemarkBodies returns the text between each Placemark opening and closing marker.
// Anything before the first placemark, such as the document header, is excluded.
// Markers that do not pair up, including nested placemarks, yield ErrUnbalanced.
func placemarkBodies(content string) ([]string, error) {
	var bodies []string

	rest := content
	for {
		open := indexOpenTag(rest, placemarkTag)
		if open < 0 {
			if closeIdx, _ := indexCloseTag(rest, placemarkTag); closeIdx >= 0 {
				return nil, fmt.Errorf("%w: closing marker without opening marker", ErrUnbalanced)
			}
			return bodies, nil
		}

		if closeIdx, _ := indexCloseTag(rest[:open], placemarkTag); closeIdx >= 0 {
			return nil, fmt.Errorf("%w: closing marker without opening marker", ErrUnbalanced)
		}

		tagEnd := strings.IndexByte(rest[open:], '>')
		if tagEnd < 0 {
			return nil, fmt.Errorf("%w: unterminated opening marker", ErrUnbalanced)
		}
		bodyStart := open + tagEnd + 1

		if rest[bodyStart-2] == '/' {
			rest = rest[bodyStart:]
			continue
		}

		closeIdx, closeLen := indexCloseTag(rest[bodyStart:], placemarkTag)
		if closeIdx < 0 {
			return nil, fmt.Errorf("%w: opening marker without closing marker", ErrUnbalanced)
		}

		body := rest[bodyStart : bodyStart+closeIdx]
		if indexOpenTag(body, placemarkTag) >= 0 {
			return nil, fmt.Errorf("%w: nested placemark", ErrUnbalanced)
		}

		body = styleURLPattern.ReplaceAllString(body, "")
		bodies = append(bodies, strings.TrimSpace(body))
		rest = rest[bodyStart+closeIdx+closeLen:]
	}
}

// indexOpenTag returns the index of the first opening tag named name in text, or -1.
// A match must be followed by '>', '/' or white space, so "<nameX" is not "<name".
func indexOpenTag(text, name string) int {
	marker := "<" + name
	offset := 0

	for {
		idx := strings.Index(text[offset:], marker)
		if idx < 0 {
			return -1
		}

		pos := offset + idx
		next := pos + len(marker)
		if next < len(text) {
			switch text[next] {
			case '>', '/', ' ', '\t', '\n', '\r':
				return pos
			}
		}

		offset = next
	}
}

// indexCloseTag returns the index and length of the first closing tag named name in
// text, allowing white space before '>', or -1 and 0.
func indexCloseTag(text, name string) (int, int) {
	marker := "</" + name
	offset := 0

	for {
		idx := strings.Index(text[offset:], marker)
		if idx < 0 {
			return -1, 0
		}

		pos := offset + idx
		end := pos + len(marker)
		for end < len(text) && isSpace(text[end]) {
			end++
		}
		if end < len(text) && text[end] == '>' {
			return pos, end + 1 - pos
		}

		offset = pos + len(marker)
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// baseName returns the file name of path without directory and extension.
func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
