package finance

import (
	"math"
	"strconv"
	"strings"

	"github.com/agrisight/agrisight/internal/model"
)

// defaultWateringEvents is reported when the watering schedule text cannot
// be split into discrete events.
const defaultWateringEvents = 4

// Calculator derives financial reports from recommendations. It holds only
// the immutable price table; Analyze is deterministic and side-effect-free.
type Calculator struct {
	prices PriceTable
}

// NewCalculator creates a Calculator with the given price table.
func NewCalculator(prices PriceTable) *Calculator {
	return &Calculator{prices: prices}
}

// Prices returns the price table the calculator was built with.
func (c *Calculator) Prices() PriceTable {
	return c.prices
}

// Analyze computes the full cost/revenue/profitability projection for a
// recommendation and farm size (hectares). Missing recommendation sections
// contribute zero cost or documented defaults; Analyze never fails.
//
// Farm size is not validated here: the request boundary owns validation, and
// a non-positive size yields null per-hectare profitability figures rather
// than a division by zero.
func (c *Calculator) Analyze(rec *model.Recommendation, farmSize float64) *model.FinancialReport {
	if rec == nil {
		rec = &model.Recommendation{}
	}

	// Fertilizers: classify each entry and parse its application rate.
	// Entries without a parseable rate are skipped entirely.
	var fertilizerCosts float64
	fertilizerDetails := []model.FertilizerLine{}
	for _, fert := range rec.Fertilization {
		kgPerHa, ok := ParseApplicationRate(fert.Schedule)
		if !ok {
			continue
		}
		costPerHa := (kgPerHa / 1000) * c.prices.PricePerTon(Classify(fert.Type))
		totalCost := costPerHa * farmSize
		fertilizerCosts += totalCost

		fertilizerDetails = append(fertilizerDetails, model.FertilizerLine{
			Type:          fert.Type,
			AmountPerHa:   kgPerHa,
			TotalAmountKg: round2(kgPerHa * farmSize),
			CostPerHa:     round2(costPerHa),
			TotalCost:     round2(totalCost),
			Schedule:      fert.Schedule,
		})
	}

	// Irrigation: charged flat per hectare whenever a watering section is
	// present. The event count is descriptive only.
	var irrigationCosts float64
	wateringDetails := []model.WateringLine{}
	if rec.Watering != nil {
		irrigationCosts = c.prices.IrrigationPerHa * farmSize
		wateringDetails = append(wateringDetails, model.WateringLine{
			Description: "Irrigation system operation",
			Events:      wateringEvents(rec.Watering.Schedule),
			CostPerHa:   round2(c.prices.IrrigationPerHa),
			TotalCost:   round2(irrigationCosts),
		})
	}

	// Labor and seeds are always charged.
	laborCosts := c.prices.LaborPerHa * farmSize
	seedCosts := c.prices.SeedsPerHa * farmSize
	totalCosts := fertilizerCosts + irrigationCosts + laborCosts + seedCosts

	// Revenue from the yield estimate, defaulting to 2.5 t/ha.
	yieldPerHa := DefaultYieldPerHa
	if rec.Predictions != nil {
		if tons, ok := ParseYieldEstimate(rec.Predictions.YieldEstimate); ok {
			yieldPerHa = tons
		}
	}
	totalYield := yieldPerHa * farmSize
	revenue := totalYield * c.prices.Soybeans

	profit := revenue - totalCosts

	var roi *float64
	if totalCosts != 0 {
		roi = ptr(round1(profit / totalCosts * 100))
	}

	var breakEvenYield float64
	if c.prices.Soybeans > 0 {
		breakEvenYield = totalCosts / c.prices.Soybeans
	}

	var breakEvenPerHa, profitPerHa *float64
	if farmSize > 0 {
		breakEvenPerHa = ptr(round2(breakEvenYield / farmSize))
		profitPerHa = ptr(round2(profit / farmSize))
	}

	return &model.FinancialReport{
		FarmSize: farmSize,
		Currency: "USD",
		Costs: model.CostSummary{
			Fertilizers: round2(fertilizerCosts),
			Irrigation:  round2(irrigationCosts),
			Labor:       round2(laborCosts),
			Seeds:       round2(seedCosts),
			Total:       round2(totalCosts),
			Breakdown: model.CostBreakdown{
				FertilizerDetails: fertilizerDetails,
				WateringDetails:   wateringDetails,
				Labor: model.FixedCostLine{
					Description: "Field preparation, planting, maintenance, harvesting",
					CostPerHa:   round2(c.prices.LaborPerHa),
					TotalCost:   round2(laborCosts),
				},
				Seeds: model.FixedCostLine{
					Description: "Certified soybean seeds",
					CostPerHa:   round2(c.prices.SeedsPerHa),
					TotalCost:   round2(seedCosts),
				},
			},
		},
		Revenue: model.RevenueSummary{
			YieldPerHa:   round2(yieldPerHa),
			TotalYield:   round2(totalYield),
			PricePerTon:  c.prices.Soybeans,
			TotalRevenue: round2(revenue),
		},
		Profitability: model.Profitability{
			GrossProfit:    round2(profit),
			ROI:            roi,
			BreakEvenYield: round2(breakEvenYield),
			BreakEvenPerHa: breakEvenPerHa,
			ProfitPerHa:    profitPerHa,
		},
		MarketPrices: model.MarketPrices{
			Soybeans:    dollarsPerTon(c.prices.Soybeans),
			NPK:         dollarsPerTon(c.prices.NPK),
			LastUpdated: c.prices.LastUpdated,
		},
	}
}

// wateringEvents counts discrete watering events in a schedule by splitting
// on commas, then semicolons, then falling back to a constant.
func wateringEvents(schedule string) int {
	if parts := strings.Split(schedule, ","); len(parts) > 1 {
		return len(parts)
	}
	if parts := strings.Split(schedule, ";"); len(parts) > 1 {
		return len(parts)
	}
	return defaultWateringEvents
}

func dollarsPerTon(price float64) string {
	return "$" + strconv.FormatFloat(price, 'f', -1, 64) + "/ton"
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func ptr(v float64) *float64 {
	return &v
}
