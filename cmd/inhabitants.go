package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/energy-tools/regiomap/internal/assign"
	"github.com/energy-tools/regiomap/internal/dataset"
	"github.com/energy-tools/regiomap/internal/regionalize"
)

var inhabitantsCmd = &cobra.Command{
	Use:   "inhabitants",
	Short: "Sum inhabitants per region",
	Long: `Reads a population grid (.csv or .xlsx with id, lon, lat and an
inhabitants column), assigns every grid centroid to a region and sums
the inhabitants per region.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		input, _ := cmd.Flags().GetString("input")
		valueCol, _ := cmd.Flags().GetString("value-column")
		latin1, _ := cmd.Flags().GetBool("latin1")

		rows, err := dataset.ReadTable(input, dataset.TableOptions{Latin1: latin1})
		if err != nil {
			return eris.Wrap(err, "inhabitants: read grid")
		}

		cells, err := parsePopulationCells(rows, valueCol)
		if err != nil {
			return eris.Wrap(err, "inhabitants: parse grid")
		}

		regionsPath, _ := cmd.Flags().GetString("regions")
		regions, err := loadRegions(regionsPath, cmd)
		if err != nil {
			return eris.Wrap(err, "inhabitants: load regions")
		}

		column, _ := cmd.Flags().GetString("column")
		byRegion, err := regionalize.InhabitantsByRegion(cells, regions, column)
		if err != nil {
			return err
		}

		out, _ := cmd.Flags().GetString("out")
		return reportRegionValues(byRegion, "INHABITANTS", out)
	},
}

func init() {
	inhabitantsCmd.Flags().String("input", "", "population grid (.csv or .xlsx)")
	inhabitantsCmd.Flags().String("regions", "", "region input file (.csv or .shp)")
	_ = inhabitantsCmd.MarkFlagRequired("input")
	_ = inhabitantsCmd.MarkFlagRequired("regions")
	inhabitantsCmd.Flags().String("column", "region", "attribute column to write the region id to")
	inhabitantsCmd.Flags().String("value-column", "inhabitants", "column holding the inhabitant count")
	inhabitantsCmd.Flags().String("out", "", "write per-region sums to this CSV file")
	addInputFlags(inhabitantsCmd)
	rootCmd.AddCommand(inhabitantsCmd)
}

// parsePopulationCells maps table rows to population cells. The first
// column is the identifier.
func parsePopulationCells(rows [][]string, valueCol string) ([]regionalize.PopulationCell, error) {
	idx, err := headerIndex(rows, valueCol, "lon", "lat")
	if err != nil {
		return nil, err
	}

	cells := make([]regionalize.PopulationCell, 0, len(rows)-1)
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
		cells = append(cells, regionalize.PopulationCell{
			ID:          row[0],
			Inhabitants: value,
			Lon:         lon,
			Lat:         lat,
		})
	}
	return cells, nil
}

// field returns the i-th cell of a row, or "" when the row is shorter
// than the header. Ragged rows are legal CSV and common in spreadsheet
// exports.
func field(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// headerIndex maps required column names to their positions in the
// header row.
func headerIndex(rows [][]string, cols ...string) (map[string]int, error) {
	if len(rows) == 0 {
		return nil, eris.New("empty table")
	}
	idx := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range cols {
		if _, ok := idx[col]; !ok {
			return nil, eris.Errorf("missing column %q", col)
		}
	}
	return idx, nil
}

// reportRegionValues prints a region/value table and optionally writes
// it as CSV, the unknown bucket last.
func reportRegionValues(byRegion map[string]float64, label, out string) error {
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
	_, _ = fmt.Fprintf(w, "REGION\t%s\n", label)
	for _, region := range regions {
		_, _ = fmt.Fprintf(w, "%s\t%.1f\n", region, byRegion[region])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if out == "" {
		return nil
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"region", strings.ToLower(label)}); err != nil {
		return err
	}
	for _, region := range regions {
		row := []string{region, strconv.FormatFloat(byRegion[region], 'f', -1, 64)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
