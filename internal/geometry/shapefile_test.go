package geometry

import (
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

func shpPoints(coords ...[2]float64) []shp.Point {
	pts := make([]shp.Point, len(coords))
	for i, c := range coords {
		pts[i] = shp.Point{X: c[0], Y: c[1]}
	}
	return pts
}

// Shapefile winding: shells clockwise, holes counter-clockwise.
var (
	shellCW = [][2]float64{{0, 0}, {0, 4}, {4, 4}, {4, 0}, {0, 0}}
	holeCCW = [][2]float64{{1, 1}, {3, 1}, {3, 3}, {1, 3}, {1, 1}}
)

func TestPolygonToMultiPolygonHole(t *testing.T) {
	poly := &shp.Polygon{
		NumParts:  2,
		NumPoints: 10,
		Parts:     []int32{0, 5},
		Points:    shpPoints(append(append([][2]float64{}, shellCW...), holeCCW...)...),
	}

	g := polygonToMultiPolygon(poly)
	require.NotNil(t, g)

	mp, ok := g.(*geom.MultiPolygon)
	require.True(t, ok)
	require.Equal(t, 1, mp.NumPolygons())
	assert.Equal(t, 2, mp.Polygon(0).NumLinearRings())

	// Inside the shell, outside the hole.
	assert.True(t, Within(geom.Coord{0.5, 0.5}, g))
	// The hole interior is not part of the region.
	assert.False(t, Within(geom.Coord{2, 2}, g))
	assert.False(t, Covers(geom.Coord{2, 2}, g))
	assert.InDelta(t, 1.0, DistanceTo(geom.Coord{2, 2}, g), 1e-9)
}

func TestPolygonToMultiPolygonTwoShells(t *testing.T) {
	second := [][2]float64{{10, 0}, {10, 1}, {11, 1}, {11, 0}, {10, 0}}
	poly := &shp.Polygon{
		NumParts:  2,
		NumPoints: 10,
		Parts:     []int32{0, 5},
		Points:    shpPoints(append(append([][2]float64{}, shellCW...), second...)...),
	}

	g := polygonToMultiPolygon(poly)
	require.NotNil(t, g)

	mp, ok := g.(*geom.MultiPolygon)
	require.True(t, ok)
	assert.Equal(t, 2, mp.NumPolygons())
	assert.True(t, Within(geom.Coord{10.5, 0.5}, g))
}

func TestPolygonToMultiPolygonHoleWithoutShell(t *testing.T) {
	poly := &shp.Polygon{
		NumParts:  1,
		NumPoints: 5,
		Parts:     []int32{0},
		Points:    shpPoints(holeCCW...),
	}

	// A lone counter-clockwise part has no shell to punch into.
	assert.Nil(t, polygonToMultiPolygon(poly))
}

func TestRingArea(t *testing.T) {
	cw := []float64{0, 0, 0, 4, 4, 4, 4, 0, 0, 0}
	ccw := []float64{1, 1, 3, 1, 3, 3, 1, 3, 1, 1}

	assert.Less(t, ringArea(cw), 0.0)
	assert.Greater(t, ringArea(ccw), 0.0)
}
