package regionalize

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/energy-tools/regiomap/internal/assign"
	"github.com/energy-tools/regiomap/internal/geometry"
)

// LoadArea is one demand load-area centroid with its annual consumption.
type LoadArea struct {
	ID          string
	Consumption float64
	Lon, Lat    float64
}

// ConsumptionByRegion assigns each load area to a region and sums the
// consumption per region, unmatched areas under the unknown sentinel.
func ConsumptionByRegion(areas []LoadArea, regions *geometry.RegionSet, column string) (map[string]float64, error) {
	points := make([]geometry.Point, len(areas))
	for i, a := range areas {
		points[i] = geometry.Point{ID: a.ID, Coord: geom.Coord{a.Lon, a.Lat}}
	}

	res, err := assign.Assign(geometry.NewPointSet("load_areas", points), regions, assign.DefaultOptions(column))
	if err != nil {
		return nil, eris.Wrap(err, "regionalize: assign load areas")
	}

	out := make(map[string]float64, regions.Len())
	for _, a := range areas {
		out[res.Value(a.ID)] += a.Consumption
	}
	return out, nil
}

// ScaleToTotal rescales regional values proportionally so their sum
// matches a target total, e.g. the published national annual demand.
func ScaleToTotal(byRegion map[string]float64, target float64) (map[string]float64, error) {
	var sum float64
	for _, v := range byRegion {
		sum += v
	}
	if sum == 0 {
		return nil, eris.New("regionalize: cannot scale, regional sum is zero")
	}

	factor := target / sum
	out := make(map[string]float64, len(byRegion))
	for region, v := range byRegion {
		out[region] = v * factor
	}

	zap.L().Info("regionalize: scaled regional demand to target total",
		zap.Float64("target", target),
		zap.Float64("factor", factor),
	)
	return out, nil
}
