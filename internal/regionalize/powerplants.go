// Package regionalize contains the dataset-specific consumers of the
// assignment core: power plants, inhabitants, weather cells and demand
// load areas, each reduced to per-region aggregates for energy models.
package regionalize

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/energy-tools/regiomap/internal/assign"
	"github.com/energy-tools/regiomap/internal/geometry"
)

// PowerPlant is one generation unit with its location and the region
// columns assigned so far.
type PowerPlant struct {
	ID         string
	Fuel       string
	Capacity   float64
	Efficiency float64 // 0 when unknown
	CapacityIn float64
	Lon, Lat   float64
	Regions    map[string]string
}

// AddModelRegion assigns every power plant to a model region and stores
// the region identifier under the given column. Subregion sets disable
// buffering so plants outside the subregion stay unknown instead of
// being pulled across its border.
func AddModelRegion(plants []PowerPlant, regions *geometry.RegionSet, column string, subregion bool) (*assign.Result, error) {
	opts := assign.DefaultOptions(column)
	if subregion {
		opts.Limit = 0
	}

	res, err := assign.Assign(plantPoints(plants), regions, opts)
	if err != nil {
		return nil, eris.Wrapf(err, "regionalize: assign power plants to %s", column)
	}

	for i := range plants {
		if plants[i].Regions == nil {
			plants[i].Regions = make(map[string]string, 1)
		}
		plants[i].Regions[column] = res.Value(plants[i].ID)
	}

	zap.L().Info("regionalize: region column added to power plant table",
		zap.String("column", column),
		zap.Int("plants", len(plants)),
		zap.Int("unknown", res.Summary.Unknown),
	)
	return res, nil
}

// AddInflowCapacity fills the CapacityIn column (capacity divided by
// efficiency). Plants without an efficiency value get the
// capacity-weighted average efficiency of the plants that have one, so
// grouped sums can still derive a meaningful average efficiency.
// Returns the average efficiency used for the fill.
func AddInflowCapacity(plants []PowerPlant) (float64, error) {
	var capValid, capIn float64
	var withEfficiency int
	for _, p := range plants {
		if p.Efficiency > 0 {
			withEfficiency++
			capValid += p.Capacity
			capIn += p.Capacity / p.Efficiency
		}
	}
	if withEfficiency == 0 {
		return 0, eris.New("regionalize: no plant has an efficiency value")
	}
	if capIn == 0 {
		return 0, eris.New("regionalize: plants with an efficiency value have zero total capacity")
	}
	avg := capValid / capIn

	for i := range plants {
		if plants[i].Efficiency <= 0 {
			plants[i].Efficiency = avg
		}
		plants[i].CapacityIn = plants[i].Capacity / plants[i].Efficiency
	}

	zap.L().Info("regionalize: inflow capacity column added",
		zap.Float64("avg_efficiency", avg),
	)
	return avg, nil
}

// CapacityByRegion sums plant capacity per region and fuel for the given
// region column. Plants whose column is empty count under the unknown
// sentinel.
func CapacityByRegion(plants []PowerPlant, column string) map[string]map[string]float64 {
	out := make(map[string]map[string]float64)
	for _, p := range plants {
		region := p.Regions[column]
		if region == "" {
			region = assign.Unknown
		}
		if out[region] == nil {
			out[region] = make(map[string]float64)
		}
		out[region][p.Fuel] += p.Capacity
	}
	return out
}

func plantPoints(plants []PowerPlant) *geometry.PointSet {
	points := make([]geometry.Point, len(plants))
	for i, p := range plants {
		points[i] = geometry.Point{ID: p.ID, Coord: geom.Coord{p.Lon, p.Lat}}
	}
	return geometry.NewPointSet("power_plants", points)
}
