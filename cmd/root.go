package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agrisight/agrisight/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "agrisight",
	Short: "Farm advisory pipeline for soybean cultivation",
	Long:  "Fetches weather history and NDVI data, asks Claude for an agronomic recommendation, and derives a financial report from it.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
