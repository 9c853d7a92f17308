package dataset

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func fakeTable(rows int) *Table {
	tb := New([]string{"nome", "cidade", "cnpj"})
	for i := 0; i < rows; i++ {
		tb.AppendRow([]string{gofakeit.Company(), gofakeit.City(), gofakeit.Numerify("##############")})
	}
	return tb
}

func TestFormatForPath(t *testing.T) {
	assert.Equal(t, FormatCSV, FormatForPath("out.csv"))
	assert.Equal(t, FormatExcel, FormatForPath("out.XLSX"))
	assert.Equal(t, FormatJSON, FormatForPath("out.json"))
	assert.Equal(t, FormatCSV, FormatForPath("out.unknown"))
	assert.Equal(t, FormatCSV, FormatForPath("out"))
}

func TestExportJSON(t *testing.T) {
	tb := fakeTable(3)
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, Export(path, tb))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var payload struct {
		Total int                 `json:"total"`
		Rows  []map[string]string `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.Equal(t, 3, payload.Total)
	require.Len(t, payload.Rows, 3)
	assert.Equal(t, tb.Get(0, "nome"), payload.Rows[0]["nome"])
}

func TestExportExcel(t *testing.T) {
	tb := fakeTable(2)
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, Export(path, tb))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetCellValue("Sheet1", "A1")
	require.NoError(t, err)
	assert.Equal(t, "nome", got)

	got, err = f.GetCellValue("Sheet1", "B3")
	require.NoError(t, err)
	assert.Equal(t, tb.Get(1, "cidade"), got)
}

func TestExportCSVDefault(t *testing.T) {
	tb := fakeTable(1)
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, Export(path, tb))

	back, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, tb.Rows, back.Rows)
}
