package archive_test

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/Flaque/filet"
	"github.com/UnknownOlympus/kmlforge/internal/archive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeArchive builds a zip archive at path holding the given name/content entries in order.
func writeArchive(t *testing.T, path string, entries ...[2]string) {
	t.Helper()

	file, err := os.Create(path)
	require.NoError(t, err)

	zw := zip.NewWriter(file)
	for _, entry := range entries {
		w, err := zw.Create(entry[0])
		require.NoError(t, err)
		_, err = w.Write([]byte(entry[1]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, file.Close())
}

func TestUnpack(t *testing.T) {
	defer filet.CleanUp(t)
	dir := filet.TmpDir(t, "")

	t.Run("document at the root", func(t *testing.T) {
		path := filepath.Join(dir, "root.kmz")
		writeArchive(t, path, [2]string{"doc.kml", "<kml/>"}, [2]string{"files/icon.png", "png"})
		scratch := filet.TmpDir(t, "")

		found, ok, err := archive.Unpack(path, scratch)

		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, filepath.Join(scratch, "doc.kml"), found)
		assert.True(t, filet.Exists(t, filepath.Join(scratch, "files", "icon.png")))
		assert.True(t, filet.FileSays(t, found, []byte("<kml/>")))
	})

	t.Run("nested document and first match wins", func(t *testing.T) {
		path := filepath.Join(dir, "nested.kmz")
		writeArchive(t, path,
			[2]string{"readme.txt", "hi"},
			[2]string{"layers/first.KML", "<kml>1</kml>"},
			[2]string{"second.kml", "<kml>2</kml>"},
		)
		scratch := filet.TmpDir(t, "")

		found, ok, err := archive.Unpack(path, scratch)

		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, filepath.Join(scratch, "layers", "first.KML"), found)
	})

	t.Run("no document inside", func(t *testing.T) {
		path := filepath.Join(dir, "empty.kmz")
		writeArchive(t, path, [2]string{"image.png", "png"})

		found, ok, err := archive.Unpack(path, filet.TmpDir(t, ""))

		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, found)
	})

	t.Run("not an archive", func(t *testing.T) {
		path := filepath.Join(dir, "plain.kmz")
		filet.File(t, path, "<kml/>")

		_, ok, err := archive.Unpack(path, filet.TmpDir(t, ""))

		require.Error(t, err)
		assert.False(t, ok)
		assert.Contains(t, err.Error(), "failed to open archive")
	})

	t.Run("entry escaping the scratch directory", func(t *testing.T) {
		path := filepath.Join(dir, "evil.kmz")
		writeArchive(t, path, [2]string{"../evil.kml", "<kml/>"})
		scratch := filet.TmpDir(t, "")

		_, ok, err := archive.Unpack(path, scratch)

		require.Error(t, err)
		assert.False(t, ok)
		assert.NoFileExists(t, filepath.Join(filepath.Dir(scratch), "evil.kml"))
	})
}
