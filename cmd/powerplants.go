package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/energy-tools/regiomap/internal/assign"
	"github.com/energy-tools/regiomap/internal/dataset"
	"github.com/energy-tools/regiomap/internal/regionalize"
)

var powerplantsCmd = &cobra.Command{
	Use:   "powerplants",
	Short: "Aggregate power plant capacity per region",
	Long: `Reads a power plant register (.xlsx or .csv), assigns each plant to a
region and sums installed capacity per region and fuel. Plants without
coordinates fall back to the centroid of their federal state when a
centroid file is given.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		input, _ := cmd.Flags().GetString("input")
		sheet, _ := cmd.Flags().GetString("sheet")
		skipRows, _ := cmd.Flags().GetInt("skip-rows")
		latin1, _ := cmd.Flags().GetBool("latin1")

		rows, err := dataset.ReadTable(input, dataset.TableOptions{
			SheetName: sheet,
			SkipRows:  skipRows,
			Latin1:    latin1,
		})
		if err != nil {
			return eris.Wrap(err, "powerplants: read register")
		}

		plants, err := dataset.ParsePowerPlants(rows)
		if err != nil {
			return eris.Wrap(err, "powerplants: parse register")
		}

		if centroidsPath, _ := cmd.Flags().GetString("centroids"); centroidsPath != "" {
			centroids, err := dataset.LoadStateCentroids(centroidsPath)
			if err != nil {
				return eris.Wrap(err, "powerplants: load state centroids")
			}
			fixed := dataset.ApplyCentroidFallback(plants, centroids)
			zap.L().Info("powerplants: coordinates filled from state centroids",
				zap.Int("plants", fixed))
		}

		regionsPath, _ := cmd.Flags().GetString("regions")
		regions, err := loadRegions(regionsPath, cmd)
		if err != nil {
			return eris.Wrap(err, "powerplants: load regions")
		}

		opts, err := assignOptions(cmd)
		if err != nil {
			return err
		}
		subregion, _ := cmd.Flags().GetBool("subregion")

		res, err := regionalize.AddModelRegion(plants, regions, opts.Column, subregion)
		if err != nil {
			return err
		}

		if inflow, _ := cmd.Flags().GetBool("inflow"); inflow {
			if _, err := regionalize.AddInflowCapacity(plants); err != nil {
				return err
			}
		}

		byRegion := regionalize.CapacityByRegion(plants, opts.Column)
		printCapacityTable(byRegion)

		if save, _ := cmd.Flags().GetBool("save"); save {
			totals := make(map[string]float64, len(byRegion))
			for region, fuels := range byRegion {
				for _, mw := range fuels {
					totals[region] += mw
				}
			}
			if err := saveRunWithAggregates(ctx, input, opts, res, "capacity_mw", totals); err != nil {
				return err
			}
		}

		printSummary(res)
		return nil
	},
}

func init() {
	powerplantsCmd.Flags().String("input", "", "power plant register (.xlsx or .csv)")
	powerplantsCmd.Flags().String("regions", "", "region input file (.csv or .shp)")
	_ = powerplantsCmd.MarkFlagRequired("input")
	_ = powerplantsCmd.MarkFlagRequired("regions")
	powerplantsCmd.Flags().String("sheet", "", "XLSX sheet name (default: first sheet)")
	powerplantsCmd.Flags().Int("skip-rows", 0, "header rows to skip before the column header")
	powerplantsCmd.Flags().String("centroids", "", "CSV with state name and WKT centroid for plants without coordinates")
	powerplantsCmd.Flags().Bool("subregion", false, "treat the region set as a subregion: no buffering, outside plants stay unknown")
	powerplantsCmd.Flags().Bool("inflow", false, "add the inflow capacity column (capacity / efficiency)")
	powerplantsCmd.Flags().Bool("save", false, "record the run and capacity aggregates in the database")
	addInputFlags(powerplantsCmd)
	addLadderFlags(powerplantsCmd)
	rootCmd.AddCommand(powerplantsCmd)
}

// printCapacityTable writes capacity per region and fuel, regions and
// fuels in sorted order with the unknown bucket last.
func printCapacityTable(byRegion map[string]map[string]float64) {
	regions := make([]string, 0, len(byRegion))
	for region := range byRegion {
		if region != assign.Unknown {
			regions = append(regions, region)
		}
	}
	sort.Strings(regions)
	if _, ok := byRegion[assign.Unknown]; ok {
		regions = append(regions, assign.Unknown)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "REGION\tFUEL\tCAPACITY_MW")
	for _, region := range regions {
		fuels := make([]string, 0, len(byRegion[region]))
		for fuel := range byRegion[region] {
			fuels = append(fuels, fuel)
		}
		sort.Strings(fuels)
		for _, fuel := range fuels {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%.1f\n", region, fuel, byRegion[region][fuel])
		}
	}
	_ = w.Flush()
}
