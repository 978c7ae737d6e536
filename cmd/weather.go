package main

import (
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/energy-tools/regiomap/internal/dataset"
	"github.com/energy-tools/regiomap/internal/geometry"
	"github.com/energy-tools/regiomap/internal/regionalize"
)

var weatherCmd = &cobra.Command{
	Use:   "weather",
	Short: "Average weather values per region",
	Long: `Maps weather grid cells to regions by cell centroid and reduces a
per-cell value table to the mean value per region. Every region is
guaranteed at least one cell: regions too small to contain a centroid
get the cell covering their representative point.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cellsPath, _ := cmd.Flags().GetString("cells")
		cellSet, err := loadRegions(cellsPath, cmd)
		if err != nil {
			return eris.Wrap(err, "weather: load cells")
		}

		cells := make([]regionalize.WeatherCell, len(cellSet.Regions))
		for i, c := range cellSet.Regions {
			cells[i] = regionalize.WeatherCell{
				ID:       c.ID,
				Centroid: geometry.RepresentativePoint(c.Geom),
				Cell:     c.Geom,
			}
		}

		regionsPath, _ := cmd.Flags().GetString("regions")
		regions, err := loadRegions(regionsPath, cmd)
		if err != nil {
			return eris.Wrap(err, "weather: load regions")
		}

		column, _ := cmd.Flags().GetString("column")
		byRegion, err := regionalize.CellsByRegion(cells, regions, column)
		if err != nil {
			return err
		}

		valuesPath, _ := cmd.Flags().GetString("values")
		valueCol, _ := cmd.Flags().GetString("value-column")
		latin1, _ := cmd.Flags().GetBool("latin1")

		values, err := loadCellValues(valuesPath, valueCol, latin1)
		if err != nil {
			return eris.Wrap(err, "weather: load values")
		}

		averages := regionalize.AverageByRegion(values, byRegion)

		out, _ := cmd.Flags().GetString("out")
		return reportRegionValues(averages, "VALUE", out)
	},
}

func init() {
	weatherCmd.Flags().String("cells", "", "weather cell polygons (.csv or .shp)")
	weatherCmd.Flags().String("regions", "", "region input file (.csv or .shp)")
	weatherCmd.Flags().String("values", "", "per-cell value table (.csv or .xlsx)")
	_ = weatherCmd.MarkFlagRequired("cells")
	_ = weatherCmd.MarkFlagRequired("regions")
	_ = weatherCmd.MarkFlagRequired("values")
	weatherCmd.Flags().String("column", "region", "attribute column to write the region id to")
	weatherCmd.Flags().String("value-column", "value", "column holding the per-cell value")
	weatherCmd.Flags().String("out", "", "write per-region averages to this CSV file")
	addInputFlags(weatherCmd)
	rootCmd.AddCommand(weatherCmd)
}

// loadCellValues reads a cell id to value map. The first column is the
// cell identifier.
func loadCellValues(path, valueCol string, latin1 bool) (map[string]float64, error) {
	rows, err := dataset.ReadTable(path, dataset.TableOptions{Latin1: latin1})
	if err != nil {
		return nil, err
	}
	idx, err := headerIndex(rows, valueCol)
	if err != nil {
		return nil, err
	}

	values := make(map[string]float64, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		v, err := strconv.ParseFloat(field(row, idx[valueCol]), 64)
		if err != nil {
			return nil, eris.Errorf("cell %q: malformed value", row[0])
		}
		values[row[0]] = v
	}
	return values, nil
}
