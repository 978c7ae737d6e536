package regionalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/energy-tools/regiomap/internal/assign"
	"github.com/energy-tools/regiomap/internal/geometry"
)

func TestInhabitantsByRegion(t *testing.T) {
	cells := []PopulationCell{
		{ID: "c1", Inhabitants: 1000, Lon: 0.2, Lat: 0.2},
		{ID: "c2", Inhabitants: 2500, Lon: 0.8, Lat: 0.8},
		{ID: "c3", Inhabitants: 300, Lon: 1.5, Lat: 0.5},
		{ID: "c4", Inhabitants: 70, Lon: 9.0, Lat: 9.0}, // far outside
	}

	got, err := InhabitantsByRegion(cells, twoStates(t), "fs")
	require.NoError(t, err)

	assert.InDelta(t, 3500, got["SH"], 1e-9)
	assert.InDelta(t, 300, got["NI"], 1e-9)
	assert.InDelta(t, 70, got[assign.Unknown], 1e-9)
}

func TestCellsByRegion(t *testing.T) {
	// 1×1 weather cells covering [0,2]×[0,1].
	cells := []WeatherCell{
		{ID: "w1", Centroid: geom.Coord{0.5, 0.5}, Cell: square(0, 0, 1)},
		{ID: "w2", Centroid: geom.Coord{1.5, 0.5}, Cell: square(1, 0, 1)},
	}

	got, err := CellsByRegion(cells, twoStates(t), "fs")
	require.NoError(t, err)

	assert.Equal(t, []string{"w1"}, got["SH"])
	assert.Equal(t, []string{"w2"}, got["NI"])
}

func TestCellsByRegionFixesSmallRegion(t *testing.T) {
	// The city state is too small to contain any cell centroid; the
	// representative-point probe must still give it one cell.
	rs, err := geometry.NewRegionSet("states", []geometry.Region{
		{ID: "big", Geom: square(0, 0, 1)},
		{ID: "city", Geom: square(1.2, 0.4, 0.1)},
	})
	require.NoError(t, err)

	cells := []WeatherCell{
		{ID: "w1", Centroid: geom.Coord{0.5, 0.5}, Cell: square(0, 0, 1)},
		{ID: "w2", Centroid: geom.Coord{1.5, 0.5}, Cell: square(1, 0, 1)},
	}

	got, err := CellsByRegion(cells, rs, "fs")
	require.NoError(t, err)

	assert.Equal(t, []string{"w1"}, got["big"])
	assert.Equal(t, []string{"w2"}, got["city"], "fixed via representative point")
}

func TestAverageByRegion(t *testing.T) {
	byRegion := map[string][]string{
		"SH": {"w1", "w2"},
		"NI": {"w3"},
		"HB": {"w9"}, // no value for w9
	}
	values := map[string]float64{"w1": 4, "w2": 8, "w3": 5}

	got := AverageByRegion(values, byRegion)
	assert.InDelta(t, 6, got["SH"], 1e-9)
	assert.InDelta(t, 5, got["NI"], 1e-9)
	_, ok := got["HB"]
	assert.False(t, ok)
}

func TestConsumptionByRegion(t *testing.T) {
	areas := []LoadArea{
		{ID: "l1", Consumption: 120, Lon: 0.3, Lat: 0.3},
		{ID: "l2", Consumption: 80, Lon: 1.7, Lat: 0.7},
		// In the gap right at the shared border; buffering matches it
		// and the first region in input order wins.
		{ID: "l3", Consumption: 10, Lon: 1.0, Lat: 0.5},
	}

	got, err := ConsumptionByRegion(areas, twoStates(t), "fs")
	require.NoError(t, err)

	assert.InDelta(t, 130, got["SH"], 1e-9)
	assert.InDelta(t, 80, got["NI"], 1e-9)
}

func TestScaleToTotal(t *testing.T) {
	byRegion := map[string]float64{"SH": 100, "NI": 300}

	got, err := ScaleToTotal(byRegion, 800)
	require.NoError(t, err)
	assert.InDelta(t, 200, got["SH"], 1e-9)
	assert.InDelta(t, 600, got["NI"], 1e-9)

	_, err = ScaleToTotal(map[string]float64{}, 800)
	require.Error(t, err)
}
