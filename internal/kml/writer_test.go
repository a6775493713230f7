package kml_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Flaque/filet"
	"github.com/UnknownOlympus/kmlforge/internal/kml"
	"github.com/UnknownOlympus/kmlforge/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bom = "\ufeff"

func TestWrite(t *testing.T) {
	t.Run("single placemark without note", func(t *testing.T) {
		var buf bytes.Buffer
		records := models.RecordSet{{Longitude: "10.5", Latitude: "-23.1", Label: "Pump A"}}

		err := kml.Write(&buf, models.NewDocument("Wells", records))

		require.NoError(t, err)
		out := buf.String()
		assert.True(t, strings.HasPrefix(out, bom+`<?xml version="1.0" encoding="UTF-8"?>`))
		assert.Contains(t, out, `<kml xmlns="http://www.opengis.net/kml/2.2">`)
		assert.Contains(t, out, "<name>Wells</name>")
		assert.Contains(t, out, "<description>Generated KML from Wells</description>")
		assert.Contains(t, out, "<name>Pump A</name>")
		assert.Contains(t, out, "<coordinates>10.5,-23.1,0</coordinates>")
		assert.Equal(t, 1, strings.Count(out, "<Placemark>"))
		assert.Equal(t, 1, strings.Count(out, "<description>"), "only the document description is expected")
	})

	t.Run("note and label are escaped", func(t *testing.T) {
		var buf bytes.Buffer
		records := models.RecordSet{{Longitude: "1", Latitude: "2", Label: "A & B", Note: "<deep>"}}

		err := kml.Write(&buf, models.NewDocument("T's", records))

		require.NoError(t, err)
		out := buf.String()
		assert.Contains(t, out, "<name>T&apos;s</name>")
		assert.Contains(t, out, "<name>A &amp; B</name>")
		assert.Contains(t, out, "<description>&lt;deep&gt;</description>")
	})

	t.Run("zero records still produce a document", func(t *testing.T) {
		var buf bytes.Buffer

		err := kml.Write(&buf, models.NewDocument("Empty", nil))

		require.NoError(t, err)
		out := buf.String()
		assert.Contains(t, out, "<Document>")
		assert.Contains(t, out, "</kml>")
		assert.NotContains(t, out, "<Placemark>")

		records, err := kml.Read(strings.NewReader(out))
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("placemarks keep record order", func(t *testing.T) {
		var buf bytes.Buffer
		records := models.RecordSet{
			{Longitude: "1", Latitude: "1", Label: "first"},
			{Longitude: "2", Latitude: "2", Label: "second"},
			{Longitude: "3", Latitude: "3", Label: "third"},
		}

		require.NoError(t, kml.Write(&buf, models.NewDocument("Order", records)))

		out := buf.String()
		first := strings.Index(out, "first")
		second := strings.Index(out, "second")
		third := strings.Index(out, "third")
		assert.Less(t, first, second)
		assert.Less(t, second, third)
	})
}

func TestWriteFile(t *testing.T) {
	defer filet.CleanUp(t)
	dir := filet.TmpDir(t, "")
	path := filepath.Join(dir, "out.kml")

	err := kml.WriteFile(path, models.NewDocument("File", models.RecordSet{{Longitude: "1", Latitude: "2"}}))

	require.NoError(t, err)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}))
}

func TestWriteFile_MissingDirectory(t *testing.T) {
	defer filet.CleanUp(t)
	dir := filet.TmpDir(t, "")

	err := kml.WriteFile(filepath.Join(dir, "missing", "out.kml"), models.NewDocument("x", nil))

	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
