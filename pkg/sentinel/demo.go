package sentinel

import (
	"fmt"
	"math/rand/v2"
)

// YearNDVI summarizes vegetation density for one growing season.
type YearNDVI struct {
	Year          int           `json:"year"`
	GrowingSeason GrowingSeason `json:"growingSeason"`
	AverageNDVI   float64       `json:"averageNDVI"`
	PeakNDVI      float64       `json:"peakNDVI"`
	PeakDate      string        `json:"peakDate"`
}

// GrowingSeason holds early/mid/late season NDVI.
type GrowingSeason struct {
	Early float64 `json:"early"`
	Mid   float64 `json:"mid"`
	Late  float64 `json:"late"`
}

// GenerateDemoNDVI returns plausible demo NDVI statistics for 2019-2023,
// used when Sentinel Hub is not configured or unreachable.
func GenerateDemoNDVI() []YearNDVI {
	years := []int{2019, 2020, 2021, 2022, 2023}
	out := make([]YearNDVI, 0, len(years))
	for _, year := range years {
		out = append(out, YearNDVI{
			Year: year,
			GrowingSeason: GrowingSeason{
				Early: 0.35 + rand.Float64()*0.1,
				Mid:   0.65 + rand.Float64()*0.15,
				Late:  0.45 + rand.Float64()*0.1,
			},
			AverageNDVI: 0.55 + rand.Float64()*0.1,
			PeakNDVI:    0.75 + rand.Float64()*0.1,
			PeakDate:    fmt.Sprintf("%d-%02d-15", year, 3+rand.IntN(2)),
		})
	}
	return out
}
