package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/agrisight/agrisight/internal/advisor"
	"github.com/agrisight/agrisight/internal/finance"
	"github.com/agrisight/agrisight/internal/weather"
	"github.com/agrisight/agrisight/pkg/openmeteo"
	"github.com/agrisight/agrisight/pkg/sentinel"
)

var (
	analyzeKnowledgeBase string
	analyzeFarmSize      float64
	analyzeOutput        string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run a full advisory analysis and print the result",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		var knowledgeBase string
		if analyzeKnowledgeBase != "" {
			data, err := os.ReadFile(analyzeKnowledgeBase)
			if err != nil {
				return eris.Wrapf(err, "read knowledge base %s", analyzeKnowledgeBase)
			}
			knowledgeBase = string(data)
		} else {
			docs, err := env.Store.ListDocuments(ctx)
			if err != nil {
				return eris.Wrap(err, "list documents")
			}
			for _, d := range docs {
				knowledgeBase += d.Content + "\n"
			}
		}

		farmSize := analyzeFarmSize
		if farmSize <= 0 {
			farmSize = cfg.Analysis.DefaultFarmSizeHa
		}

		// Weather summary and NDVI context are independent fetches.
		var weatherSummary, ndviSummary string
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			resp, err := env.Weather.Archive(gctx, openmeteo.ArchiveRequest{
				Latitude:  cfg.Weather.Latitude,
				Longitude: cfg.Weather.Longitude,
				StartDate: fmt.Sprintf("%d-01-01", cfg.Weather.StartYear),
				EndDate:   fmt.Sprintf("%d-12-31", cfg.Weather.EndYear),
				Timezone:  cfg.Weather.Timezone,
			})
			if err != nil {
				zap.L().Warn("weather fetch failed", zap.Error(err))
				weatherSummary = weather.NoDataSummary
				return nil
			}
			weatherSummary = weather.Summarize(resp.Daily)
			return nil
		})
		g.Go(func() error {
			ndviSummary = advisor.SummarizeNDVI(sentinel.GenerateDemoNDVI())
			return nil
		})
		_ = g.Wait()

		run, err := env.Store.CreateRun(ctx, farmSize)
		if err != nil {
			return eris.Wrap(err, "create run")
		}

		result := env.Advisor.Analyze(ctx, knowledgeBase, weatherSummary, ndviSummary)
		report := finance.NewCalculator(cfg.Pricing).Analyze(result.Recommendation, farmSize)

		recJSON, err := json.Marshal(result.Recommendation)
		if err != nil {
			return eris.Wrap(err, "marshal recommendation")
		}
		reportJSON, err := json.Marshal(report)
		if err != nil {
			return eris.Wrap(err, "marshal report")
		}
		run.WeatherSummary = weatherSummary
		run.Demo = result.Demo
		run.Recommendation = recJSON
		run.Report = reportJSON
		if err := env.Store.CompleteRun(ctx, run); err != nil {
			return eris.Wrap(err, "complete run")
		}

		out := map[string]any{
			"runId":          run.ID,
			"demo":           result.Demo,
			"recommendation": result.Recommendation,
			"financial":      report,
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return eris.Wrap(err, "marshal output")
		}

		if analyzeOutput != "" {
			if err := os.WriteFile(analyzeOutput, data, 0o644); err != nil {
				return eris.Wrapf(err, "write output %s", analyzeOutput)
			}
			fmt.Printf("Analysis written to %s (run %s)\n", analyzeOutput, run.ID)
			return nil
		}

		fmt.Println(string(data))
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeKnowledgeBase, "knowledge-base", "", "path to a cultivation records file (defaults to stored documents)")
	analyzeCmd.Flags().Float64Var(&analyzeFarmSize, "farm-size", 0, "farm size in hectares (default from config)")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "write the analysis JSON to a file")
	rootCmd.AddCommand(analyzeCmd)
}
