package model

// FinancialReport is the fully structured cost/revenue/profitability
// projection derived from a Recommendation. All monetary figures are rounded
// to 2 decimal places when the report is built; ROI to 1 decimal place.
type FinancialReport struct {
	FarmSize      float64        `json:"farmSize"`
	Currency      string         `json:"currency"`
	Costs         CostSummary    `json:"costs"`
	Revenue       RevenueSummary `json:"revenue"`
	Profitability Profitability  `json:"profitability"`
	MarketPrices  MarketPrices   `json:"marketPrices"`
}

// CostSummary aggregates all projected costs in USD.
type CostSummary struct {
	Fertilizers float64       `json:"fertilizers"`
	Irrigation  float64       `json:"irrigation"`
	Labor       float64       `json:"labor"`
	Seeds       float64       `json:"seeds"`
	Total       float64       `json:"total"`
	Breakdown   CostBreakdown `json:"breakdown"`
}

// CostBreakdown itemizes the cost summary.
type CostBreakdown struct {
	FertilizerDetails []FertilizerLine `json:"fertilizerDetails"`
	WateringDetails   []WateringLine   `json:"wateringDetails"`
	Labor             FixedCostLine    `json:"labor"`
	Seeds             FixedCostLine    `json:"seeds"`
}

// FertilizerLine is one itemized fertilizer cost row. Entries whose schedule
// carried no parseable application rate are omitted entirely.
type FertilizerLine struct {
	Type          string  `json:"type"`
	AmountPerHa   float64 `json:"amountPerHa"`   // kg/ha
	TotalAmountKg float64 `json:"totalAmountKg"` // kg across the whole farm
	CostPerHa     float64 `json:"costPerHa"`
	TotalCost     float64 `json:"totalCost"`
	Schedule      string  `json:"schedule"`
}

// WateringLine describes irrigation system operation. Events is descriptive
// only; it never affects the charged cost.
type WateringLine struct {
	Description string  `json:"description"`
	Events      int     `json:"events"`
	CostPerHa   float64 `json:"costPerHa"`
	TotalCost   float64 `json:"totalCost"`
}

// FixedCostLine is a flat per-hectare charge (labor, seeds).
type FixedCostLine struct {
	Description string  `json:"description"`
	CostPerHa   float64 `json:"costPerHa"`
	TotalCost   float64 `json:"totalCost"`
}

// RevenueSummary projects sales revenue from the estimated yield.
type RevenueSummary struct {
	YieldPerHa   float64 `json:"yieldPerHa"` // tons/ha
	TotalYield   float64 `json:"totalYield"` // tons
	PricePerTon  float64 `json:"pricePerTon"`
	TotalRevenue float64 `json:"totalRevenue"`
}

// Profitability holds profit, ROI and break-even figures. ROI, ProfitPerHa
// and BreakEvenPerHa are pointers so degenerate inputs (zero total cost,
// non-positive farm size) serialize as JSON null instead of NaN or Inf.
type Profitability struct {
	GrossProfit    float64  `json:"grossProfit"`
	ROI            *float64 `json:"roi"` // percent
	BreakEvenYield float64  `json:"breakEvenYield"`
	BreakEvenPerHa *float64 `json:"breakEvenPerHa"`
	ProfitPerHa    *float64 `json:"profitPerHa"`
}

// MarketPrices echoes the headline prices the projection was computed with.
type MarketPrices struct {
	Soybeans    string `json:"soybeans"`
	NPK         string `json:"npk"`
	LastUpdated string `json:"lastUpdated"`
}
