package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/energy-tools/regiomap/internal/assign"
	"github.com/energy-tools/regiomap/internal/geometry"
)

var assignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Assign points to regions",
	Long: `Assigns every point in the input to exactly one region. Points not
strictly contained in any region are retried with growing buffers until
the limit is reached; leftovers get the id "unknown".

Points and regions are read from .csv (WKT geometry or lon/lat columns)
or .shp files.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		pointsPath, _ := cmd.Flags().GetString("points")
		regionsPath, _ := cmd.Flags().GetString("regions")

		points, err := loadPoints(pointsPath, cmd)
		if err != nil {
			return eris.Wrap(err, "assign: load points")
		}
		regions, err := loadRegions(regionsPath, cmd)
		if err != nil {
			return eris.Wrap(err, "assign: load regions")
		}

		opts, err := assignOptions(cmd)
		if err != nil {
			return err
		}

		res, err := assign.Assign(points, regions, opts)
		if err != nil {
			return eris.Wrap(err, "assign")
		}

		if save, _ := cmd.Flags().GetBool("save"); save {
			if err := saveRun(ctx, points.Name, opts, res); err != nil {
				return err
			}
		}

		out, _ := cmd.Flags().GetString("out")
		if out != "" {
			if err := writeAssignments(out, res); err != nil {
				return eris.Wrap(err, "assign: write output")
			}
			zap.L().Info("assignments written", zap.String("path", out))
		}

		printSummary(res)
		return nil
	},
}

func init() {
	assignCmd.Flags().String("points", "", "point input file (.csv or .shp)")
	assignCmd.Flags().String("regions", "", "region input file (.csv or .shp)")
	_ = assignCmd.MarkFlagRequired("points")
	_ = assignCmd.MarkFlagRequired("regions")
	addInputFlags(assignCmd)
	addLadderFlags(assignCmd)
	assignCmd.Flags().String("out", "", "write per-point assignments to this CSV file")
	assignCmd.Flags().Bool("save", false, "record the run in the database")
	rootCmd.AddCommand(assignCmd)
}

// addInputFlags registers the column mapping flags shared by commands
// that read point or region files.
func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().String("id-column", "", "identifier column (default: first column, or record number for .shp)")
	cmd.Flags().String("name-column", "", "display name column")
	cmd.Flags().String("wkt-column", "", "WKT geometry column (default: geometry, then geom)")
	cmd.Flags().String("lon-column", "", "longitude column for point CSVs (default: lon)")
	cmd.Flags().String("lat-column", "", "latitude column for point CSVs (default: lat)")
	cmd.Flags().Bool("latin1", false, "decode CSV input as ISO 8859-1")
}

// addLadderFlags registers the buffer ladder flags. Zero values fall
// back to the configured defaults.
func addLadderFlags(cmd *cobra.Command) {
	cmd.Flags().String("column", "region", "attribute column to write the region id to")
	cmd.Flags().Float64("step", 0, "buffer increment per rung (default: from config)")
	cmd.Flags().Float64("limit", -1, "largest buffer radius, 0 disables buffering (default: from config)")
	cmd.Flags().Int("workers", 0, "parallel workers per rung (default: from config, 0 = all CPUs)")
}

// assignOptions builds the ladder options from config defaults and flag
// overrides.
func assignOptions(cmd *cobra.Command) (assign.Options, error) {
	column, _ := cmd.Flags().GetString("column")
	opts := assign.DefaultOptions(column)
	opts.Step = cfg.Assign.Step
	opts.Limit = cfg.Assign.Limit
	opts.Workers = cfg.Assign.Workers

	if step, _ := cmd.Flags().GetFloat64("step"); step > 0 {
		opts.Step = step
	}
	if limit, _ := cmd.Flags().GetFloat64("limit"); limit >= 0 {
		opts.Limit = limit
	}
	if workers, _ := cmd.Flags().GetInt("workers"); workers > 0 {
		opts.Workers = workers
	}

	if err := opts.Validate(); err != nil {
		return assign.Options{}, err
	}
	return opts, nil
}

func csvOptions(cmd *cobra.Command) geometry.CSVOptions {
	id, _ := cmd.Flags().GetString("id-column")
	name, _ := cmd.Flags().GetString("name-column")
	wkt, _ := cmd.Flags().GetString("wkt-column")
	lon, _ := cmd.Flags().GetString("lon-column")
	lat, _ := cmd.Flags().GetString("lat-column")
	latin1, _ := cmd.Flags().GetBool("latin1")
	return geometry.CSVOptions{
		IDColumn:   id,
		NameColumn: name,
		WKTColumn:  wkt,
		LonColumn:  lon,
		LatColumn:  lat,
		Latin1:     latin1,
	}
}

func shapefileOptions(cmd *cobra.Command) geometry.ShapefileOptions {
	id, _ := cmd.Flags().GetString("id-column")
	name, _ := cmd.Flags().GetString("name-column")
	return geometry.ShapefileOptions{IDField: id, NameField: name}
}

// loadPoints reads a point file, dispatching on the file extension.
func loadPoints(path string, cmd *cobra.Command) (*geometry.PointSet, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".shp":
		return geometry.LoadPointsShapefile(path, shapefileOptions(cmd))
	case ".csv":
		return geometry.LoadPointsCSV(path, csvOptions(cmd))
	default:
		return nil, eris.Errorf("unsupported point file %q: want .csv or .shp", path)
	}
}

// loadRegions reads a region file, dispatching on the file extension.
func loadRegions(path string, cmd *cobra.Command) (*geometry.RegionSet, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".shp":
		return geometry.LoadRegionsShapefile(path, shapefileOptions(cmd))
	case ".csv":
		return geometry.LoadRegionsCSV(path, csvOptions(cmd))
	default:
		return nil, eris.Errorf("unsupported region file %q: want .csv or .shp", path)
	}
}

// writeAssignments writes one row per point with the assigned region.
func writeAssignments(path string, res *assign.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write([]string{"point_id", res.Column, "buffer", "ambiguous"}); err != nil {
		return err
	}

	ids := make([]string, 0, len(res.ByPoint))
	for id := range res.ByPoint {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		m := res.ByPoint[id]
		row := []string{
			id,
			m.RegionID,
			strconv.FormatFloat(m.Radius, 'f', -1, 64),
			strconv.FormatBool(m.Ambiguous),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// printSummary writes a compact run summary to stdout.
func printSummary(res *assign.Result) {
	s := res.Summary
	fmt.Printf("assigned %d points: %d strict, %d buffered, %d unknown", s.Total, s.Strict, s.Buffered, s.Unknown)
	if s.Ambiguous > 0 {
		fmt.Printf(", %d ambiguous", s.Ambiguous)
	}
	if s.Rungs > 0 {
		fmt.Printf(" (%d rungs, max buffer %g)", s.Rungs, s.MaxRadius)
	}
	fmt.Println()
}
