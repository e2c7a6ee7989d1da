// Package weather reduces daily weather history into the compact yearly
// summary fed to the LLM prompt.
package weather

import (
	"fmt"
	"strings"

	"github.com/agrisight/agrisight/pkg/openmeteo"
)

// NoDataSummary is returned when no daily series is available at all.
const NoDataSummary = "Weather data not available"

// Summarize reduces a daily series to one line per calendar year:
// average temperature, total precipitation, average reference
// evapotranspiration. Years appear in the order first encountered while
// scanning the (date-sorted) series. When the series carries no ET0 data,
// every year renders "N/A". Pure function.
func Summarize(daily *openmeteo.DailySeries) string {
	if daily == nil || len(daily.Time) == 0 {
		return NoDataSummary
	}

	type yearStats struct {
		tempSum   float64
		tempCount int
		precipSum float64
		et0Sum    float64
		et0Count  int
	}

	var years []string
	stats := make(map[string]*yearStats)

	for i, date := range daily.Time {
		if len(date) < 4 {
			continue
		}
		year := date[:4]
		ys, ok := stats[year]
		if !ok {
			ys = &yearStats{}
			stats[year] = ys
			years = append(years, year)
		}
		if i < len(daily.Temperature2mMean) {
			ys.tempSum += daily.Temperature2mMean[i]
			ys.tempCount++
		}
		if i < len(daily.PrecipitationSum) {
			ys.precipSum += daily.PrecipitationSum[i]
		}
		if i < len(daily.ET0FAOEvapotranspiration) {
			ys.et0Sum += daily.ET0FAOEvapotranspiration[i]
			ys.et0Count++
		}
	}

	lines := make([]string, 0, len(years))
	for _, year := range years {
		ys := stats[year]

		var avgTemp float64
		if ys.tempCount > 0 {
			avgTemp = ys.tempSum / float64(ys.tempCount)
		}

		et0 := "N/A"
		if ys.et0Count > 0 {
			et0 = fmt.Sprintf("%.2f", ys.et0Sum/float64(ys.et0Count))
		}

		lines = append(lines, fmt.Sprintf("%s: Avg Temp %.1f°C, Total Rainfall %.0fmm, Avg ET0 %smm/day",
			year, avgTemp, ys.precipSum, et0))
	}

	return strings.Join(lines, "\n")
}
