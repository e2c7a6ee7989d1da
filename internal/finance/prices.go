// Package finance derives a structured cost/revenue/profitability report
// from an LLM-produced cultivation recommendation and a static market-price
// table. The calculator never touches raw text itself: extraction rules in
// parse.go turn free-form fields into numbers first, and every missing or
// unparseable field degrades to a documented default instead of an error.
package finance

// PriceTable holds the market prices a projection is computed against.
// Fertilizer and soybean prices are USD per metric ton; the remaining rates
// are USD per hectare. The table is immutable for the duration of one
// calculation.
type PriceTable struct {
	NPK           float64 `yaml:"npk" mapstructure:"npk"`
	Urea          float64 `yaml:"urea" mapstructure:"urea"`
	DAP           float64 `yaml:"dap" mapstructure:"dap"`
	Potassium     float64 `yaml:"potassium" mapstructure:"potassium"`
	Micronutrient float64 `yaml:"micronutrient" mapstructure:"micronutrient"`

	Soybeans float64 `yaml:"soybeans" mapstructure:"soybeans"`

	IrrigationPerHa float64 `yaml:"irrigation_per_ha" mapstructure:"irrigation_per_ha"`
	LaborPerHa      float64 `yaml:"labor_per_ha" mapstructure:"labor_per_ha"`
	SeedsPerHa      float64 `yaml:"seeds_per_ha" mapstructure:"seeds_per_ha"`

	LastUpdated string `yaml:"last_updated" mapstructure:"last_updated"`
}

// PricePerTon returns the $/ton price for a fertilizer category.
func (p PriceTable) PricePerTon(c Category) float64 {
	switch c {
	case CategoryUrea:
		return p.Urea
	case CategoryDAP:
		return p.DAP
	case CategoryPotassium:
		return p.Potassium
	case CategoryMicronutrient:
		return p.Micronutrient
	default:
		return p.NPK
	}
}

// DefaultPriceTable returns 2024-average prices for Tanzania/East Africa
// (World Bank and FAO market data).
func DefaultPriceTable() PriceTable {
	return PriceTable{
		NPK:           600,
		Urea:          450,
		DAP:           650,
		Potassium:     550,
		Micronutrient: 800,

		Soybeans: 450,

		IrrigationPerHa: 150,
		LaborPerHa:      80,
		SeedsPerHa:      60,

		LastUpdated: "2024 Market Average",
	}
}
