// Package archive extracts KML documents from KMZ archives.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// MarkupExtension is the extension identifying a KML entry inside an archive.
const MarkupExtension = ".kml"

// ErrUnsafePath is returned for archive entries that would be written outside the scratch directory.
var ErrUnsafePath = errors.New("archive entry escapes the extraction directory")

// Unpack extracts every entry of the archive at archivePath into scratchDir and returns the
// path of the first entry, in archive order, with a .kml extension. It reports found=false
// with a nil error when the archive holds no KML entry.
//
// The caller owns scratchDir and must remove it once the extracted document is consumed.
func Unpack(archivePath, scratchDir string) (string, bool, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", false, fmt.Errorf("failed to open archive: %w", err)
	}
	defer reader.Close()

	var markupPath string
	for _, entry := range reader.File {
		target, err := extract(entry, scratchDir)
		if err != nil {
			return "", false, fmt.Errorf("failed to extract %q: %w", entry.Name, err)
		}

		if markupPath == "" && !entry.FileInfo().IsDir() &&
			strings.EqualFold(filepath.Ext(entry.Name), MarkupExtension) {
			markupPath = target
		}
	}

	return markupPath, markupPath != "", nil
}

// extract writes one archive entry below dir and returns its path.
func extract(entry *zip.File, dir string) (string, error) {
	target := filepath.Join(dir, filepath.FromSlash(entry.Name))
	rel, err := filepath.Rel(dir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrUnsafePath
	}

	const dirPerm = 0o755
	if entry.FileInfo().IsDir() {
		return target, os.MkdirAll(target, dirPerm)
	}

	if err = os.MkdirAll(filepath.Dir(target), dirPerm); err != nil {
		return "", err
	}

	src, err := entry.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(target)
	if err != nil {
		return "", err
	}

	if _, err = io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return "", err
	}

	return target, dst.Close()
}
