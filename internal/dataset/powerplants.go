package dataset

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkt"
	"go.uber.org/zap"

	"github.com/energy-tools/regiomap/internal/regionalize"
)

// Power plant table column names, as used by the OPSD-style exports.
const (
	colID         = "id"
	colFuel       = "energy_source"
	colCapacity   = "capacity"
	colEfficiency = "efficiency"
	colLon        = "lon"
	colLat        = "lat"
	colState      = "federal_state"
)

// ParsePowerPlants converts table rows (header first) into power plant
// records. Rows without coordinates are kept; their federal-state name
// is carried so a centroid fallback can place them later.
func ParsePowerPlants(rows [][]string) ([]regionalize.PowerPlant, error) {
	if len(rows) == 0 {
		return nil, eris.New("dataset: power plant table is empty")
	}

	cols := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := cols[colCapacity]; !ok {
		return nil, eris.Errorf("dataset: power plant table has no %q column", colCapacity)
	}

	get := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	plants := make([]regionalize.PowerPlant, 0, len(rows)-1)
	for n, row := range rows[1:] {
		id := get(row, colID)
		if id == "" {
			id = strconv.Itoa(n)
		}

		capacity, _ := strconv.ParseFloat(get(row, colCapacity), 64)
		efficiency, _ := strconv.ParseFloat(get(row, colEfficiency), 64)
		lon, lonErr := strconv.ParseFloat(get(row, colLon), 64)
		lat, latErr := strconv.ParseFloat(get(row, colLat), 64)
		if lonErr != nil || latErr != nil {
			lon, lat = 0, 0
		}

		p := regionalize.PowerPlant{
			ID:         id,
			Fuel:       get(row, colFuel),
			Capacity:   capacity,
			Efficiency: efficiency,
			Lon:        lon,
			Lat:        lat,
		}
		if state := get(row, colState); state != "" {
			p.Regions = map[string]string{colState: state}
		}
		plants = append(plants, p)
	}
	return plants, nil
}

// LoadStateCentroids reads a name → WKT point table mapping each
// federal state to its centroid.
func LoadStateCentroids(path string) (map[string]geom.Coord, error) {
	rows, err := ReadTable(path, TableOptions{})
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, eris.Errorf("dataset: centroid table %s is empty", path)
	}

	out := make(map[string]geom.Coord, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) < 2 {
			continue
		}
		g, err := wkt.Unmarshal(strings.TrimSpace(row[1]))
		if err != nil {
			return nil, eris.Wrapf(err, "dataset: parse centroid for %q", row[0])
		}
		pt, ok := g.(*geom.Point)
		if !ok {
			return nil, eris.Errorf("dataset: centroid for %q is not a point", row[0])
		}
		out[strings.TrimSpace(row[0])] = geom.Coord{pt.X(), pt.Y()}
	}
	return out, nil
}

// ApplyCentroidFallback places plants without coordinates on the
// centroid of their federal state. This is imprecise and only meant for
// a small fraction of the capacity; the share it affects is logged.
func ApplyCentroidFallback(plants []regionalize.PowerPlant, centroids map[string]geom.Coord) int {
	var totalCap, guessedCap float64
	var fixed int

	for i := range plants {
		totalCap += plants[i].Capacity
		if plants[i].Lon != 0 || plants[i].Lat != 0 {
			continue
		}
		state := plants[i].Regions[colState]
		c, ok := centroids[state]
		if !ok {
			zap.L().Debug("dataset: no centroid for federal state",
				zap.String("plant", plants[i].ID),
				zap.String("state", state),
			)
			continue
		}
		plants[i].Lon, plants[i].Lat = c[0], c[1]
		guessedCap += plants[i].Capacity
		fixed++
	}

	if fixed > 0 {
		share := 0.0
		if totalCap > 0 {
			share = guessedCap / totalCap * 100
		}
		zap.L().Warn("dataset: coordinates guessed from federal-state centroids",
			zap.Int("plants", fixed),
			zap.Float64("capacity_share_pct", share),
		)
	}
	return fixed
}
