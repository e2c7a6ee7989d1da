package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/agrisight/agrisight/internal/finance"
	"github.com/agrisight/agrisight/internal/model"
)

var (
	reportInput    string
	reportFarmSize float64
	reportXLSX     string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build a financial report from a recommendation JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(reportInput)
		if err != nil {
			return eris.Wrapf(err, "read recommendation %s", reportInput)
		}

		var rec model.Recommendation
		if err := json.Unmarshal(data, &rec); err != nil {
			return eris.Wrap(err, "decode recommendation")
		}

		farmSize := reportFarmSize
		if farmSize <= 0 {
			farmSize = cfg.Analysis.DefaultFarmSizeHa
		}

		report := finance.NewCalculator(cfg.Pricing).Analyze(&rec, farmSize)
		printReport(report)

		if reportXLSX != "" {
			if err := finance.WriteXLSX(report, reportXLSX); err != nil {
				return err
			}
			fmt.Printf("\nWorkbook written to %s\n", reportXLSX)
		}
		return nil
	},
}

func printReport(r *model.FinancialReport) {
	p := message.NewPrinter(language.English)

	p.Printf("Financial projection for %.0f ha (all figures %s)\n\n", r.FarmSize, r.Currency)

	p.Println("Costs")
	for _, f := range r.Costs.Breakdown.FertilizerDetails {
		p.Printf("  %-24s %10.2f  (%.0f kg/ha)\n", f.Type, f.TotalCost, f.AmountPerHa)
	}
	for _, wl := range r.Costs.Breakdown.WateringDetails {
		p.Printf("  %-24s %10.2f  (%d events)\n", wl.Description, wl.TotalCost, wl.Events)
	}
	p.Printf("  %-24s %10.2f\n", "Labor", r.Costs.Labor)
	p.Printf("  %-24s %10.2f\n", "Seeds", r.Costs.Seeds)
	p.Printf("  %-24s %10.2f\n\n", "Total", r.Costs.Total)

	p.Println("Revenue")
	p.Printf("  Yield %.2f t/ha x %.0f ha at %.2f/ton = %.2f\n\n",
		r.Revenue.YieldPerHa, r.FarmSize, r.Revenue.PricePerTon, r.Revenue.TotalRevenue)

	p.Println("Profitability")
	p.Printf("  Gross profit     %.2f\n", r.Profitability.GrossProfit)
	if r.Profitability.ROI != nil {
		p.Printf("  ROI              %.1f%%\n", *r.Profitability.ROI)
	}
	p.Printf("  Break-even yield %.2f tons\n", r.Profitability.BreakEvenYield)
	if r.Profitability.ProfitPerHa != nil {
		p.Printf("  Profit per ha    %.2f\n", *r.Profitability.ProfitPerHa)
	}
}

func init() {
	reportCmd.Flags().StringVarP(&reportInput, "input", "i", "recommendation.json", "recommendation JSON file")
	reportCmd.Flags().Float64Var(&reportFarmSize, "farm-size", 0, "farm size in hectares (default from config)")
	reportCmd.Flags().StringVar(&reportXLSX, "xlsx", "", "also write an XLSX workbook to this path")
	rootCmd.AddCommand(reportCmd)
}
