package geometry

import (
	"math"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"github.com/twpayne/go-geom/xy/location"
)

// Within reports whether the coordinate lies strictly inside the
// geometry: interior of the shell, outside every hole, never on a
// boundary. Unsupported geometry types are never within.
func Within(c geom.Coord, g geom.T) bool {
	switch t := g.(type) {
	case *geom.Polygon:
		return polygonLocation(c, t) == location.Interior
	case *geom.MultiPolygon:
		for i := 0; i < t.NumPolygons(); i++ {
			if polygonLocation(c, t.Polygon(i)) == location.Interior {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Covers reports whether the coordinate lies inside or on the boundary
// of the geometry. This is the non-strict counterpart of Within.
func Covers(c geom.Coord, g geom.T) bool {
	switch t := g.(type) {
	case *geom.Polygon:
		return polygonLocation(c, t) != location.Exterior
	case *geom.MultiPolygon:
		for i := 0; i < t.NumPolygons(); i++ {
			if polygonLocation(c, t.Polygon(i)) != location.Exterior {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// DistanceTo returns the planar distance from the coordinate to the
// geometry: 0 when the point is inside or on the boundary, otherwise the
// minimum distance to any ring. Unsupported types are infinitely far.
func DistanceTo(c geom.Coord, g geom.T) float64 {
	switch t := g.(type) {
	case *geom.Polygon:
		return polygonDistance(c, t)
	case *geom.MultiPolygon:
		d := math.Inf(1)
		for i := 0; i < t.NumPolygons(); i++ {
			if pd := polygonDistance(c, t.Polygon(i)); pd < d {
				d = pd
			}
			if d == 0 {
				return 0
			}
		}
		return d
	default:
		return math.Inf(1)
	}
}

// IntersectsBuffer reports whether a disk of the given radius around the
// coordinate overlaps the geometry's boundary or interior.
func IntersectsBuffer(c geom.Coord, g geom.T, radius float64) bool {
	return DistanceTo(c, g) <= radius
}

// polygonLocation locates a coordinate relative to a single polygon,
// holes included. A point inside a hole is exterior; a point on a hole's
// ring is on the polygon boundary.
func polygonLocation(c geom.Coord, p *geom.Polygon) location.Type {
	if p.NumLinearRings() == 0 {
		return location.Exterior
	}
	layout := p.Layout()

	shell := xy.LocatePointInRing(layout, c, p.LinearRing(0).FlatCoords())
	if shell != location.Interior {
		return shell
	}
	for i := 1; i < p.NumLinearRings(); i++ {
		switch xy.LocatePointInRing(layout, c, p.LinearRing(i).FlatCoords()) {
		case location.Interior:
			return location.Exterior
		case location.Boundary:
			return location.Boundary
		}
	}
	return location.Interior
}

func polygonDistance(c geom.Coord, p *geom.Polygon) float64 {
	if polygonLocation(c, p) != location.Exterior {
		return 0
	}
	layout := p.Layout()
	d := math.Inf(1)
	for i := 0; i < p.NumLinearRings(); i++ {
		if rd := xy.DistanceFromPointToLineString(layout, c, p.LinearRing(i).FlatCoords()); rd < d {
			d = rd
		}
	}
	return d
}

// RepresentativePoint returns a deterministic coordinate that lies on
// the geometry. The centroid of the first shell is used when it falls
// inside; otherwise midpoints between the centroid and the shell
// vertices are probed in ring order, falling back to the first vertex.
func RepresentativePoint(g geom.T) geom.Coord {
	shell := firstShell(g)
	if shell == nil || len(shell.FlatCoords()) == 0 {
		return geom.Coord{0, 0}
	}

	centroid := ringCentroid(shell)
	if Covers(centroid, g) {
		return centroid
	}

	coords := shell.Coords()
	for _, v := range coords {
		mid := geom.Coord{(centroid[0] + v[0]) / 2, (centroid[1] + v[1]) / 2}
		if Covers(mid, g) {
			return mid
		}
	}
	return geom.Coord{coords[0][0], coords[0][1]}
}

func firstShell(g geom.T) *geom.LinearRing {
	switch t := g.(type) {
	case *geom.Polygon:
		if t.NumLinearRings() > 0 {
			return t.LinearRing(0)
		}
	case *geom.MultiPolygon:
		if t.NumPolygons() > 0 && t.Polygon(0).NumLinearRings() > 0 {
			return t.Polygon(0).LinearRing(0)
		}
	}
	return nil
}

// ringCentroid computes the area-weighted centroid of a closed ring,
// falling back to the vertex mean for degenerate (zero-area) rings.
func ringCentroid(ring *geom.LinearRing) geom.Coord {
	coords := ring.Coords()
	var area, cx, cy float64
	for i := 0; i < len(coords)-1; i++ {
		cross := coords[i][0]*coords[i+1][1] - coords[i+1][0]*coords[i][1]
		area += cross
		cx += (coords[i][0] + coords[i+1][0]) * cross
		cy += (coords[i][1] + coords[i+1][1]) * cross
	}
	if math.Abs(area) < 1e-12 {
		var sx, sy float64
		for _, c := range coords {
			sx += c[0]
			sy += c[1]
		}
		n := float64(len(coords))
		return geom.Coord{sx / n, sy / n}
	}
	area /= 2
	return geom.Coord{cx / (6 * area), cy / (6 * area)}
}
