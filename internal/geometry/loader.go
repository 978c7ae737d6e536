package geometry

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkt"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
)

// CSVOptions configures the CSV loaders.
type CSVOptions struct {
	IDColumn   string // default: first column
	NameColumn string // optional region display name
	WKTColumn  string // default: "geometry", falling back to "geom"
	LonColumn  string // default: "lon"
	LatColumn  string // default: "lat"
	Latin1     bool   // decode ISO 8859-1 input
}

// LoadPointsCSV reads a CSV file into a PointSet. The geometry is taken
// from a WKT point column when present, otherwise from the lon/lat
// column pair. Rows without usable geometry are dropped with a warning
// that reports the capacity lost, when a capacity column exists.
func LoadPointsCSV(path string, opts CSVOptions) (*PointSet, error) {
	header, rows, err := readCSV(path, opts.Latin1)
	if err != nil {
		return nil, err
	}
	cols := columnIndex(header)

	idCol := opts.IDColumn
	if idCol == "" {
		idCol = header[0]
	}
	lonCol := defaultColumn(opts.LonColumn, "lon")
	latCol := defaultColumn(opts.LatColumn, "lat")
	wktCol := geometryColumn(cols, opts.WKTColumn)

	var points []Point
	var dropped int
	var droppedCapacity float64
	for _, row := range rows {
		get := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		coord, ok := pointCoord(get, wktCol, lonCol, latCol)
		if !ok {
			dropped++
			if cap, err := strconv.ParseFloat(get("capacity"), 64); err == nil {
				droppedCapacity += cap
			}
			continue
		}

		attrs := make(map[string]string, len(header))
		for name, i := range cols {
			if name == wktCol || i >= len(row) {
				continue
			}
			attrs[name] = strings.TrimSpace(row[i])
		}
		points = append(points, Point{ID: get(idCol), Coord: coord, Attrs: attrs})
	}

	if dropped > 0 {
		zap.L().Warn("geometry: rows without usable geometry removed",
			zap.String("file", path),
			zap.Int("rows", dropped),
			zap.Float64("capacity", droppedCapacity),
		)
	}

	return NewPointSet(strings.TrimSuffix(filepath.Base(path), ".csv"), points), nil
}

// LoadRegionsCSV reads a CSV file with a WKT polygon column into a
// RegionSet, preserving row order as the canonical region order.
func LoadRegionsCSV(path string, opts CSVOptions) (*RegionSet, error) {
	header, rows, err := readCSV(path, opts.Latin1)
	if err != nil {
		return nil, err
	}
	cols := columnIndex(header)

	idCol := opts.IDColumn
	if idCol == "" {
		idCol = header[0]
	}
	wktCol := geometryColumn(cols, opts.WKTColumn)
	if wktCol == "" {
		return nil, eris.Errorf("geometry: %s has no geometry column", path)
	}

	var regions []Region
	for _, row := range rows {
		get := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		g, err := wkt.Unmarshal(get(wktCol))
		if err != nil {
			return nil, eris.Wrapf(err, "geometry: parse WKT for region %q", get(idCol))
		}
		regions = append(regions, Region{ID: get(idCol), Name: get(opts.NameColumn), Geom: g})
	}

	return NewRegionSet(strings.TrimSuffix(filepath.Base(path), ".csv"), regions)
}

func readCSV(path string, latin1 bool) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "geometry: open %s", path)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if latin1 {
		r = charmap.ISO8859_1.NewDecoder().Reader(f)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, eris.Wrapf(err, "geometry: read %s", path)
	}
	if len(records) == 0 {
		return nil, nil, eris.Errorf("geometry: %s is empty", path)
	}
	return records[0], records[1:], nil
}

func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	return cols
}

func defaultColumn(name, fallback string) string {
	if name != "" {
		return name
	}
	return fallback
}

// geometryColumn picks the WKT column: the configured one, else
// "geometry", else the legacy "geom".
func geometryColumn(cols map[string]int, configured string) string {
	if configured != "" {
		return configured
	}
	if _, ok := cols["geometry"]; ok {
		return "geometry"
	}
	if _, ok := cols["geom"]; ok {
		return "geom"
	}
	return ""
}

func pointCoord(get func(string) string, wktCol, lonCol, latCol string) (geom.Coord, bool) {
	if wktCol != "" {
		if s := get(wktCol); s != "" {
			g, err := wkt.Unmarshal(s)
			if err != nil {
				return nil, false
			}
			pt, ok := g.(*geom.Point)
			if !ok {
				return nil, false
			}
			return geom.Coord{pt.X(), pt.Y()}, true
		}
	}

	lon, errLon := strconv.ParseFloat(get(lonCol), 64)
	lat, errLat := strconv.ParseFloat(get(latCol), 64)
	if errLon != nil || errLat != nil {
		return nil, false
	}
	return geom.Coord{lon, lat}, true
}

