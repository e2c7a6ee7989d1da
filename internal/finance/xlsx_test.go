package finance

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/agrisight/agrisight/internal/model"
)

func TestWriteXLSX(t *testing.T) {
	t.Parallel()

	calc := NewCalculator(DefaultPriceTable())
	rec := &model.Recommendation{
		Watering: &model.Watering{Schedule: "Water weekly"},
		Fertilization: []model.FertilizerPlan{
			{Type: "NPK 10-20-10", Schedule: "Apply 150 kg/ha at planting"},
		},
		Predictions: &model.Predictions{YieldEstimate: "2.5 tons per hectare"},
	}
	report := calc.Analyze(rec, 100)

	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, WriteXLSX(report, path))

	file, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, file.Sheets, 3)
	assert.Equal(t, "Costs", file.Sheets[0].Name)
	assert.Equal(t, "Revenue", file.Sheets[1].Name)
	assert.Equal(t, "Profitability", file.Sheets[2].Name)

	costs := file.Sheets[0]
	// Header + fertilizer + watering + labor + seeds + total.
	require.Len(t, costs.Rows, 6)
	assert.Equal(t, "NPK 10-20-10", costs.Rows[1].Cells[0].String())
	assert.Equal(t, "38000.00", costs.Rows[5].Cells[2].String())

	profit := file.Sheets[2]
	assert.Equal(t, "74500.00", profit.Rows[0].Cells[1].String())
	assert.Equal(t, "196.1", profit.Rows[1].Cells[1].String())
}

func TestWriteXLSXNilReport(t *testing.T) {
	t.Parallel()

	err := WriteXLSX(nil, filepath.Join(t.TempDir(), "report.xlsx"))
	assert.Error(t, err)
}

func TestWriteXLSXOptionalFieldsUndefined(t *testing.T) {
	t.Parallel()

	// farmSize 0 leaves the per-hectare profitability figures undefined.
	report := NewCalculator(DefaultPriceTable()).Analyze(nil, 0)

	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, WriteXLSX(report, path))

	file, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	profit := file.Sheets[2]
	assert.Equal(t, "undefined", profit.Rows[3].Cells[1].String())
	assert.Equal(t, "undefined", profit.Rows[4].Cells[1].String())
}
