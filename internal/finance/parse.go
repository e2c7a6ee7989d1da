package finance

import (
	"regexp"
	"strconv"
)

// DefaultYieldPerHa is assumed (tons/hectare) when the recommendation
// carries no parseable yield estimate.
const DefaultYieldPerHa = 2.5

var (
	applicationRateRe = regexp.MustCompile(`(?i)(\d+)\s*kg/ha`)
	yieldEstimateRe   = regexp.MustCompile(`(\d+\.?\d*)`)
)

// ParseApplicationRate extracts the first "<n> kg/ha" application rate from
// a fertilization schedule. It reports false when the text carries no rate;
// callers skip such entries entirely rather than charging zero.
func ParseApplicationRate(schedule string) (float64, bool) {
	m := applicationRateRe.FindStringSubmatch(schedule)
	if m == nil {
		return 0, false
	}
	kg, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return kg, true
}

// ParseYieldEstimate extracts the first decimal number from a free-text
// yield estimate such as "2.5-3.0 tons/hectare". It reports false when no
// number is present; callers fall back to DefaultYieldPerHa.
func ParseYieldEstimate(text string) (float64, bool) {
	m := yieldEstimateRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	tons, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return tons, true
}
