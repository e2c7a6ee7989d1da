package finance

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrisight/agrisight/internal/model"
)

func scenarioRecommendation() *model.Recommendation {
	return &model.Recommendation{
		Watering: &model.Watering{
			Schedule: "Week 1-2: Daily irrigation (25mm/day), Week 3-8: Every 2-3 days (20mm), Week 9-12: Reduce to 15mm every 3 days",
		},
		Fertilization: []model.FertilizerPlan{
			{Type: "NPK 10-20-10", Schedule: "Apply 150 kg/ha at planting"},
		},
		Predictions: &model.Predictions{
			YieldEstimate: "2.5-3.0 tons/hectare",
		},
	}
}

func TestAnalyzeFullScenario(t *testing.T) {
	t.Parallel()

	calc := NewCalculator(DefaultPriceTable())
	report := calc.Analyze(scenarioRecommendation(), 100)

	// Fertilizer: (150/1000) * 600 * 100 = 9000.
	assert.Equal(t, 9000.0, report.Costs.Fertilizers)
	require.Len(t, report.Costs.Breakdown.FertilizerDetails, 1)
	line := report.Costs.Breakdown.FertilizerDetails[0]
	assert.Equal(t, "NPK 10-20-10", line.Type)
	assert.Equal(t, 150.0, line.AmountPerHa)
	assert.Equal(t, 15000.0, line.TotalAmountKg)
	assert.Equal(t, 90.0, line.CostPerHa)
	assert.Equal(t, 9000.0, line.TotalCost)

	assert.Equal(t, 15000.0, report.Costs.Irrigation)
	assert.Equal(t, 8000.0, report.Costs.Labor)
	assert.Equal(t, 6000.0, report.Costs.Seeds)
	assert.Equal(t, 38000.0, report.Costs.Total)

	// Yield parses the first number of the range.
	assert.Equal(t, 2.5, report.Revenue.YieldPerHa)
	assert.Equal(t, 250.0, report.Revenue.TotalYield)
	assert.Equal(t, 450.0, report.Revenue.PricePerTon)
	assert.Equal(t, 112500.0, report.Revenue.TotalRevenue)

	assert.Equal(t, 74500.0, report.Profitability.GrossProfit)
	require.NotNil(t, report.Profitability.ROI)
	assert.Equal(t, 196.1, *report.Profitability.ROI)
	assert.Equal(t, 84.44, report.Profitability.BreakEvenYield)
	require.NotNil(t, report.Profitability.BreakEvenPerHa)
	assert.Equal(t, 0.84, *report.Profitability.BreakEvenPerHa)
	require.NotNil(t, report.Profitability.ProfitPerHa)
	assert.Equal(t, 745.0, *report.Profitability.ProfitPerHa)

	assert.Equal(t, "USD", report.Currency)
	assert.Equal(t, "$450/ton", report.MarketPrices.Soybeans)
	assert.Equal(t, "$600/ton", report.MarketPrices.NPK)
}

func TestAnalyzeEmptyRecommendation(t *testing.T) {
	t.Parallel()

	calc := NewCalculator(DefaultPriceTable())
	report := calc.Analyze(&model.Recommendation{}, 10)

	// No fertilization, no watering: only labor and seeds are charged.
	assert.Equal(t, 0.0, report.Costs.Fertilizers)
	assert.Equal(t, 0.0, report.Costs.Irrigation)
	assert.Equal(t, 800.0, report.Costs.Labor)
	assert.Equal(t, 600.0, report.Costs.Seeds)
	assert.Equal(t, 1400.0, report.Costs.Total)
	assert.Empty(t, report.Costs.Breakdown.FertilizerDetails)
	assert.Empty(t, report.Costs.Breakdown.WateringDetails)

	// Default yield 2.5 t/ha.
	assert.Equal(t, 2.5, report.Revenue.YieldPerHa)
	assert.Equal(t, 25.0, report.Revenue.TotalYield)
	assert.Equal(t, 11250.0, report.Revenue.TotalRevenue)
	assert.Equal(t, 9850.0, report.Profitability.GrossProfit)
}

func TestAnalyzeNilRecommendation(t *testing.T) {
	t.Parallel()

	calc := NewCalculator(DefaultPriceTable())
	report := calc.Analyze(nil, 10)
	assert.Equal(t, 1400.0, report.Costs.Total)
	assert.Equal(t, 2.5, report.Revenue.YieldPerHa)
}

func TestAnalyzeSkipsUnparseableFertilizer(t *testing.T) {
	t.Parallel()

	rec := &model.Recommendation{
		Fertilization: []model.FertilizerPlan{
			{Type: "Rhizobium Inoculant", Schedule: "Seed treatment before planting"},
			{Type: "Urea", Schedule: "Apply 100 kg/ha at V4"},
		},
	}
	calc := NewCalculator(DefaultPriceTable())
	report := calc.Analyze(rec, 10)

	// Only urea contributes: (100/1000) * 450 * 10 = 450.
	assert.Equal(t, 450.0, report.Costs.Fertilizers)
	require.Len(t, report.Costs.Breakdown.FertilizerDetails, 1)
	assert.Equal(t, "Urea", report.Costs.Breakdown.FertilizerDetails[0].Type)
}

func TestAnalyzeIdempotent(t *testing.T) {
	t.Parallel()

	calc := NewCalculator(DefaultPriceTable())
	rec := scenarioRecommendation()

	first, err := json.Marshal(calc.Analyze(rec, 100))
	require.NoError(t, err)
	second, err := json.Marshal(calc.Analyze(rec, 100))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAnalyzeScalesLinearlyWithFarmSize(t *testing.T) {
	t.Parallel()

	calc := NewCalculator(DefaultPriceTable())
	rec := scenarioRecommendation()

	small := calc.Analyze(rec, 50)
	large := calc.Analyze(rec, 200)

	assert.Equal(t, small.Costs.Total*4, large.Costs.Total)
	assert.Equal(t, small.Revenue.TotalRevenue*4, large.Revenue.TotalRevenue)
	assert.Equal(t, small.Profitability.GrossProfit*4, large.Profitability.GrossProfit)

	// Per-hectare figures are invariant under farm size scaling.
	require.NotNil(t, small.Profitability.ROI)
	require.NotNil(t, large.Profitability.ROI)
	assert.Equal(t, *small.Profitability.ROI, *large.Profitability.ROI)
	require.NotNil(t, small.Profitability.ProfitPerHa)
	require.NotNil(t, large.Profitability.ProfitPerHa)
	assert.Equal(t, *small.Profitability.ProfitPerHa, *large.Profitability.ProfitPerHa)
}

func TestAnalyzeZeroTotalCosts(t *testing.T) {
	t.Parallel()

	// All-zero price table: ROI is undefined and must serialize as null,
	// never NaN or Inf.
	calc := NewCalculator(PriceTable{Soybeans: 450})
	report := calc.Analyze(&model.Recommendation{}, 100)

	assert.Equal(t, 0.0, report.Costs.Total)
	assert.Nil(t, report.Profitability.ROI)
	assert.Equal(t, 0.0, report.Profitability.BreakEvenYield)

	data, err := json.Marshal(report)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"roi":null`)
}

func TestAnalyzeNonPositiveFarmSize(t *testing.T) {
	t.Parallel()

	calc := NewCalculator(DefaultPriceTable())
	report := calc.Analyze(scenarioRecommendation(), 0)

	// Every scaled figure collapses to zero and per-hectare figures are
	// null rather than a division by zero.
	assert.Equal(t, 0.0, report.Costs.Total)
	assert.Nil(t, report.Profitability.ROI)
	assert.Nil(t, report.Profitability.BreakEvenPerHa)
	assert.Nil(t, report.Profitability.ProfitPerHa)
}

func TestAnalyzeDoesNotMutateInputs(t *testing.T) {
	t.Parallel()

	rec := scenarioRecommendation()
	before, err := json.Marshal(rec)
	require.NoError(t, err)

	calc := NewCalculator(DefaultPriceTable())
	_ = calc.Analyze(rec, 100)

	after, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestWateringEvents(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		schedule string
		want     int
	}{
		{"commas", "week 1, week 3, week 6", 3},
		{"semicolons", "week 1; week 3", 2},
		{"commas win over semicolons", "a, b; c", 2},
		{"no separators", "daily irrigation", 4},
		{"empty", "", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, wateringEvents(tt.schedule))
		})
	}
}
