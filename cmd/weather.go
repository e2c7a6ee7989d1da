package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/agrisight/agrisight/internal/weather"
	"github.com/agrisight/agrisight/pkg/openmeteo"
)

var (
	weatherLat       float64
	weatherLon       float64
	weatherStartYear int
	weatherEndYear   int
)

var weatherCmd = &cobra.Command{
	Use:   "weather",
	Short: "Fetch and summarize the historical weather for the farm location",
	RunE: func(cmd *cobra.Command, args []string) error {
		lat := weatherLat
		lon := weatherLon
		if lat == 0 && lon == 0 {
			lat = cfg.Weather.Latitude
			lon = cfg.Weather.Longitude
		}
		startYear := weatherStartYear
		if startYear == 0 {
			startYear = cfg.Weather.StartYear
		}
		endYear := weatherEndYear
		if endYear == 0 {
			endYear = cfg.Weather.EndYear
		}

		client := openmeteo.NewClient(
			openmeteo.WithBaseURL(cfg.Weather.BaseURL),
			openmeteo.WithRateLimit(cfg.Weather.RateLimitRPS),
		)
		resp, err := client.Archive(cmd.Context(), openmeteo.ArchiveRequest{
			Latitude:  lat,
			Longitude: lon,
			StartDate: fmt.Sprintf("%d-01-01", startYear),
			EndDate:   fmt.Sprintf("%d-12-31", endYear),
			Timezone:  cfg.Weather.Timezone,
		})
		if err != nil {
			return eris.Wrap(err, "fetch weather history")
		}

		fmt.Printf("Weather history for %.6f, %.6f (%d-%d)\n\n", lat, lon, startYear, endYear)
		fmt.Println(weather.Summarize(resp.Daily))
		return nil
	},
}

func init() {
	weatherCmd.Flags().Float64Var(&weatherLat, "lat", 0, "latitude (default from config)")
	weatherCmd.Flags().Float64Var(&weatherLon, "lon", 0, "longitude (default from config)")
	weatherCmd.Flags().IntVar(&weatherStartYear, "start-year", 0, "first year of history")
	weatherCmd.Flags().IntVar(&weatherEndYear, "end-year", 0, "last year of history")
	rootCmd.AddCommand(weatherCmd)
}
