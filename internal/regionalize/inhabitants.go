package regionalize

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"github.com/energy-tools/regiomap/internal/assign"
	"github.com/energy-tools/regiomap/internal/geometry"
)

// PopulationCell is one population grid centroid with its inhabitant
// count.
type PopulationCell struct {
	ID          string
	Inhabitants float64
	Lon, Lat    float64
}

// inhabitantsStep is the buffer increment for population cells. The
// grid is dense, so a much finer ladder than the default avoids pulling
// cells across state borders.
const inhabitantsStep = 0.005

// InhabitantsByRegion assigns each population cell to a region and sums
// the inhabitants per region. Cells that match no region are summed
// under the unknown sentinel.
func InhabitantsByRegion(cells []PopulationCell, regions *geometry.RegionSet, column string) (map[string]float64, error) {
	points := make([]geometry.Point, len(cells))
	for i, c := range cells {
		points[i] = geometry.Point{ID: c.ID, Coord: geom.Coord{c.Lon, c.Lat}}
	}

	opts := assign.DefaultOptions(column)
	opts.Step = inhabitantsStep

	res, err := assign.Assign(geometry.NewPointSet("population_cells", points), regions, opts)
	if err != nil {
		return nil, eris.Wrap(err, "regionalize: assign population cells")
	}

	out := make(map[string]float64, regions.Len())
	for _, c := range cells {
		out[res.Value(c.ID)] += c.Inhabitants
	}
	return out, nil
}
