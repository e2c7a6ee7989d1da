package finance

import (
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/agrisight/agrisight/internal/model"
)

// WriteXLSX writes a financial report as an XLSX workbook with Costs,
// Revenue and Profitability sheets.
func WriteXLSX(report *model.FinancialReport, path string) error {
	if report == nil {
		return eris.New("xlsx: nil report")
	}

	file := xlsx.NewFile()

	costs, err := file.AddSheet("Costs")
	if err != nil {
		return eris.Wrap(err, "xlsx: add costs sheet")
	}
	addRow(costs, "Item", "Cost per ha (USD)", "Total (USD)", "Notes")
	for _, f := range report.Costs.Breakdown.FertilizerDetails {
		addRow(costs, f.Type,
			strconv.FormatFloat(f.CostPerHa, 'f', 2, 64),
			strconv.FormatFloat(f.TotalCost, 'f', 2, 64),
			f.Schedule)
	}
	for _, w := range report.Costs.Breakdown.WateringDetails {
		addRow(costs, w.Description,
			strconv.FormatFloat(w.CostPerHa, 'f', 2, 64),
			strconv.FormatFloat(w.TotalCost, 'f', 2, 64),
			strconv.Itoa(w.Events)+" watering events")
	}
	labor := report.Costs.Breakdown.Labor
	addRow(costs, "Labor",
		strconv.FormatFloat(labor.CostPerHa, 'f', 2, 64),
		strconv.FormatFloat(labor.TotalCost, 'f', 2, 64),
		labor.Description)
	seeds := report.Costs.Breakdown.Seeds
	addRow(costs, "Seeds",
		strconv.FormatFloat(seeds.CostPerHa, 'f', 2, 64),
		strconv.FormatFloat(seeds.TotalCost, 'f', 2, 64),
		seeds.Description)
	addRow(costs, "Total", "",
		strconv.FormatFloat(report.Costs.Total, 'f', 2, 64), "")

	revenue, err := file.AddSheet("Revenue")
	if err != nil {
		return eris.Wrap(err, "xlsx: add revenue sheet")
	}
	addRow(revenue, "Yield per ha (t)", strconv.FormatFloat(report.Revenue.YieldPerHa, 'f', 2, 64))
	addRow(revenue, "Total yield (t)", strconv.FormatFloat(report.Revenue.TotalYield, 'f', 2, 64))
	addRow(revenue, "Price per ton (USD)", strconv.FormatFloat(report.Revenue.PricePerTon, 'f', 2, 64))
	addRow(revenue, "Total revenue (USD)", strconv.FormatFloat(report.Revenue.TotalRevenue, 'f', 2, 64))

	profit, err := file.AddSheet("Profitability")
	if err != nil {
		return eris.Wrap(err, "xlsx: add profitability sheet")
	}
	addRow(profit, "Gross profit (USD)", strconv.FormatFloat(report.Profitability.GrossProfit, 'f', 2, 64))
	addRow(profit, "ROI (%)", formatOptional(report.Profitability.ROI, 1))
	addRow(profit, "Break-even yield (t)", strconv.FormatFloat(report.Profitability.BreakEvenYield, 'f', 2, 64))
	addRow(profit, "Break-even per ha (t/ha)", formatOptional(report.Profitability.BreakEvenPerHa, 2))
	addRow(profit, "Profit per ha (USD)", formatOptional(report.Profitability.ProfitPerHa, 2))

	if err := file.Save(path); err != nil {
		return eris.Wrapf(err, "xlsx: save %s", path)
	}
	return nil
}

func addRow(sheet *xlsx.Sheet, cells ...string) {
	row := sheet.AddRow()
	for _, c := range cells {
		row.AddCell().SetString(c)
	}
}

func formatOptional(v *float64, prec int) string {
	if v == nil {
		return "undefined"
	}
	return strconv.FormatFloat(*v, 'f', prec, 64)
}
