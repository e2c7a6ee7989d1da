package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agrisight/agrisight/internal/parcel"
)

var parcelsCmd = &cobra.Command{
	Use:   "parcels",
	Short: "Manage imported field boundaries",
}

var parcelsImportCmd = &cobra.Command{
	Use:   "import <shapefile>",
	Short: "Import field boundaries from a shapefile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return eris.Wrap(err, "init store")
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		parcels, err := parcel.LoadShapefile(args[0])
		if err != nil {
			return err
		}
		if len(parcels) == 0 {
			fmt.Println("No polygon records found")
			return nil
		}

		if err := st.SaveParcels(ctx, parcels); err != nil {
			return eris.Wrap(err, "save parcels")
		}

		var totalHa float64
		for _, p := range parcels {
			totalHa += p.AreaHa
		}
		zap.L().Info("parcels imported",
			zap.Int("count", len(parcels)),
			zap.Float64("total_ha", totalHa))
		fmt.Printf("Imported %d parcels, %.2f ha total\n", len(parcels), totalHa)
		return nil
	},
}

var parcelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List imported parcels",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return eris.Wrap(err, "init store")
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		parcels, err := st.ListParcels(ctx)
		if err != nil {
			return err
		}
		if len(parcels) == 0 {
			fmt.Println("No parcels imported")
			return nil
		}

		for _, p := range parcels {
			fmt.Printf("%-30s %10.2f ha  (%.5f, %.5f)\n", p.Name, p.AreaHa, p.CentroidLat, p.CentroidLon)
		}
		return nil
	},
}

func init() {
	parcelsCmd.AddCommand(parcelsImportCmd)
	parcelsCmd.AddCommand(parcelsListCmd)
	rootCmd.AddCommand(parcelsCmd)
}
