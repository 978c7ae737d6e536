package regionalize

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/energy-tools/regiomap/internal/assign"
	"github.com/energy-tools/regiomap/internal/geometry"
)

// WeatherCell is one weather grid cell: the centroid used for the join
// and the cell polygon used to fix regions too small to contain any
// centroid.
type WeatherCell struct {
	ID       string
	Centroid geom.Coord
	Cell     geom.T
}

// CellsByRegion maps each region to the weather cell identifiers whose
// centroids fall strictly inside it. The join runs without buffering:
// a centroid in the wrong region would corrupt the regional average
// more than a missing one. Regions too small to catch any centroid are
// fixed afterwards by probing which cell covers the region's
// representative point, so every region ends up with at least one cell.
func CellsByRegion(cells []WeatherCell, regions *geometry.RegionSet, column string) (map[string][]string, error) {
	points := make([]geometry.Point, len(cells))
	for i, c := range cells {
		points[i] = geometry.Point{ID: c.ID, Coord: c.Centroid}
	}

	opts := assign.DefaultOptions(column)
	opts.Limit = 0

	res, err := assign.Assign(geometry.NewPointSet("weather_cells", points), regions, opts)
	if err != nil {
		return nil, eris.Wrap(err, "regionalize: assign weather cells")
	}

	out := make(map[string][]string, regions.Len())
	for _, c := range cells {
		region := res.Value(c.ID)
		if region == assign.Unknown {
			continue
		}
		out[region] = append(out[region], c.ID)
	}

	// Regions with no cell: probe the representative point.
	for _, r := range regions.Regions {
		if len(out[r.ID]) > 0 {
			continue
		}
		rp := geometry.RepresentativePoint(r.Geom)
		cell, ok := cellCovering(cells, rp)
		if !ok {
			zap.L().Warn("regionalize: region not covered by any weather cell",
				zap.String("region", r.ID),
			)
			continue
		}
		out[r.ID] = []string{cell}
		zap.L().Info("regionalize: fixed region without weather cell",
			zap.String("region", r.ID),
			zap.String("cell", cell),
		)
	}

	return out, nil
}

// AverageByRegion reduces per-cell values to the mean value per region.
// Regions whose cells all lack a value are omitted.
func AverageByRegion(values map[string]float64, byRegion map[string][]string) map[string]float64 {
	out := make(map[string]float64, len(byRegion))
	for region, ids := range byRegion {
		var sum float64
		var n int
		for _, id := range ids {
			v, ok := values[id]
			if !ok {
				continue
			}
			sum += v
			n++
		}
		if n > 0 {
			out[region] = sum / float64(n)
		}
	}
	return out
}

func cellCovering(cells []WeatherCell, c geom.Coord) (string, bool) {
	for _, cell := range cells {
		if cell.Cell != nil && geometry.Covers(c, cell.Cell) {
			return cell.ID, true
		}
	}
	return "", false
}
