package spreadsheet_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// writeWorkbook saves rows into the first sheet of a new workbook at dir/name.
func writeWorkbook(t *testing.T, dir, name string, rows [][]any) string {
	t.Helper()

	book := excelize.NewFile()
	defer book.Close()

	sheet := book.GetSheetName(0)
	for idx, values := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, idx+1)
		require.NoError(t, err)
		require.NoError(t, book.SetSheetRow(sheet, cellName, &values))
	}

	path := filepath.Join(dir, name)
	require.NoError(t, book.SaveAs(path))

	return path
}
