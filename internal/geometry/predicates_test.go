package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

// unitSquare returns a polygon [x0,x0+1]×[0,1].
func unitSquare(x0 float64) *geom.Polygon {
	return geom.NewPolygonFlat(geom.XY, []float64{
		x0, 0, x0 + 1, 0, x0 + 1, 1, x0, 1, x0, 0,
	}, []int{10})
}

// squareWithHole returns [0,4]×[0,4] with a hole [1,3]×[1,3].
func squareWithHole() *geom.Polygon {
	return geom.NewPolygonFlat(geom.XY, []float64{
		0, 0, 4, 0, 4, 4, 0, 4, 0, 0,
		1, 1, 3, 1, 3, 3, 1, 3, 1, 1,
	}, []int{10, 20})
}

func TestWithin(t *testing.T) {
	tests := []struct {
		name  string
		coord geom.Coord
		g     geom.T
		want  bool
	}{
		{"inside square", geom.Coord{0.5, 0.5}, unitSquare(0), true},
		{"outside square", geom.Coord{1.5, 0.5}, unitSquare(0), false},
		{"on boundary is not strict", geom.Coord{1, 0.5}, unitSquare(0), false},
		{"on corner is not strict", geom.Coord{0, 0}, unitSquare(0), false},
		{"inside hole is outside", geom.Coord{2, 2}, squareWithHole(), false},
		{"between shell and hole", geom.Coord{0.5, 2}, squareWithHole(), true},
		{"on hole ring is boundary", geom.Coord{1, 2}, squareWithHole(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Within(tt.coord, tt.g))
		})
	}
}

func TestWithinMultiPolygon(t *testing.T) {
	mp := geom.NewMultiPolygon(geom.XY)
	require.NoError(t, mp.Push(unitSquare(0)))
	require.NoError(t, mp.Push(unitSquare(5)))

	assert.True(t, Within(geom.Coord{0.5, 0.5}, mp))
	assert.True(t, Within(geom.Coord{5.5, 0.5}, mp))
	assert.False(t, Within(geom.Coord{2.5, 0.5}, mp))
}

func TestCovers(t *testing.T) {
	sq := unitSquare(0)
	assert.True(t, Covers(geom.Coord{0.5, 0.5}, sq))
	assert.True(t, Covers(geom.Coord{1, 0.5}, sq))
	assert.False(t, Covers(geom.Coord{1.5, 0.5}, sq))
}

func TestDistanceTo(t *testing.T) {
	sq := unitSquare(0)

	assert.Equal(t, 0.0, DistanceTo(geom.Coord{0.5, 0.5}, sq), "inside")
	assert.Equal(t, 0.0, DistanceTo(geom.Coord{1, 0.5}, sq), "boundary")
	assert.InDelta(t, 0.5, DistanceTo(geom.Coord{1.5, 0.5}, sq), 1e-9, "east of square")
	assert.InDelta(t, math.Sqrt2, DistanceTo(geom.Coord{2, 2}, sq), 1e-9, "diagonal")
}

func TestIntersectsBuffer(t *testing.T) {
	sq := unitSquare(0)

	assert.True(t, IntersectsBuffer(geom.Coord{1.01, 0.5}, sq, 0.05))
	assert.False(t, IntersectsBuffer(geom.Coord{1.2, 0.5}, sq, 0.05))
	// Zero radius still covers points sitting exactly on the boundary.
	assert.True(t, IntersectsBuffer(geom.Coord{1, 0.5}, sq, 0))
}

func TestRepresentativePoint(t *testing.T) {
	t.Run("convex polygon uses centroid", func(t *testing.T) {
		rp := RepresentativePoint(unitSquare(0))
		assert.InDelta(t, 0.5, rp[0], 1e-9)
		assert.InDelta(t, 0.5, rp[1], 1e-9)
	})

	t.Run("result always lies on the geometry", func(t *testing.T) {
		// U-shaped polygon whose centroid may fall in the notch.
		u := geom.NewPolygonFlat(geom.XY, []float64{
			0, 0, 3, 0, 3, 3, 2, 3, 2, 1, 1, 1, 1, 3, 0, 3, 0, 0,
		}, []int{18})
		rp := RepresentativePoint(u)
		assert.True(t, Covers(rp, u))
	})
}

func TestRegionSetCandidates(t *testing.T) {
	regions := []Region{
		{ID: "A", Geom: unitSquare(0)},
		{ID: "B", Geom: unitSquare(2)},
		{ID: "C", Geom: unitSquare(4)},
	}
	rs, err := NewRegionSet("squares", regions)
	require.NoError(t, err)

	t.Run("zero radius hits only the containing box", func(t *testing.T) {
		assert.Equal(t, []int{0}, rs.Candidates(geom.Coord{0.5, 0.5}, 0))
	})

	t.Run("radius widens the candidate window", func(t *testing.T) {
		idxs := rs.Candidates(geom.Coord{1.5, 0.5}, 0.6)
		assert.Equal(t, []int{0, 1}, idxs, "candidates stay in canonical order")
	})

	t.Run("far point has no candidates", func(t *testing.T) {
		assert.Empty(t, rs.Candidates(geom.Coord{100, 100}, 0.5))
	})
}

func TestNewRegionSetRejectsNonPolygon(t *testing.T) {
	_, err := NewRegionSet("bad", []Region{
		{ID: "p", Geom: geom.NewPointFlat(geom.XY, []float64{1, 2})},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported geometry type")
}
