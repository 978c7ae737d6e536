package main

import (
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/energy-tools/regiomap/internal/dataset"
	"github.com/energy-tools/regiomap/internal/regionalize"
)

var demandCmd = &cobra.Command{
	Use:   "demand",
	Short: "Sum electricity demand per region",
	Long: `Reads load-area centroids with their annual consumption, assigns each
area to a region and sums the consumption per region. With --total the
regional values are rescaled proportionally so they sum to the given
national total.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		input, _ := cmd.Flags().GetString("input")
		valueCol, _ := cmd.Flags().GetString("value-column")
		latin1, _ := cmd.Flags().GetBool("latin1")

		rows, err := dataset.ReadTable(input, dataset.TableOptions{Latin1: latin1})
		if err != nil {
			return eris.Wrap(err, "demand: read load areas")
		}

		areas, err := parseLoadAreas(rows, valueCol)
		if err != nil {
			return eris.Wrap(err, "demand: parse load areas")
		}

		regionsPath, _ := cmd.Flags().GetString("regions")
		regions, err := loadRegions(regionsPath, cmd)
		if err != nil {
			return eris.Wrap(err, "demand: load regions")
		}

		column, _ := cmd.Flags().GetString("column")
		byRegion, err := regionalize.ConsumptionByRegion(areas, regions, column)
		if err != nil {
			return err
		}

		if total, _ := cmd.Flags().GetFloat64("total"); total > 0 {
			byRegion, err = regionalize.ScaleToTotal(byRegion, total)
			if err != nil {
				return err
			}
		}

		out, _ := cmd.Flags().GetString("out")
		return reportRegionValues(byRegion, "CONSUMPTION", out)
	},
}

func init() {
	demandCmd.Flags().String("input", "", "load areas with consumption (.csv or .xlsx)")
	demandCmd.Flags().String("regions", "", "region input file (.csv or .shp)")
	_ = demandCmd.MarkFlagRequired("input")
	_ = demandCmd.MarkFlagRequired("regions")
	demandCmd.Flags().String("column", "region", "attribute column to write the region id to")
	demandCmd.Flags().String("value-column", "consumption", "column holding the annual consumption")
	demandCmd.Flags().Float64("total", 0, "rescale regional sums to this national total")
	demandCmd.Flags().String("out", "", "write per-region sums to this CSV file")
	addInputFlags(demandCmd)
	rootCmd.AddCommand(demandCmd)
}

// parseLoadAreas maps table rows to load areas. The first column is the
// identifier.
func parseLoadAreas(rows [][]string, valueCol string) ([]regionalize.LoadArea, error) {
	idx, err := headerIndex(rows, valueCol, "lon", "lat")
	if err != nil {
		return nil, err
	}

	areas := make([]regionalize.LoadArea, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		lon, err1 := strconv.ParseFloat(field(row, idx["lon"]), 64)
		lat, err2 := strconv.ParseFloat(field(row, idx["lat"]), 64)
		value, err3 := strconv.ParseFloat(field(row, idx[valueCol]), 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, eris.Errorf("row %q: malformed number", row[0])
		}
		areas = append(areas, regionalize.LoadArea{
			ID:          row[0],
			Consumption: value,
			Lon:         lon,
			Lat:         lat,
		})
	}
	return areas, nil
}
