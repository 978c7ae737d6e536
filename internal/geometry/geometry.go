// Package geometry holds the planar point and region model that the
// assignment algorithm operates on, together with the predicates and the
// spatial index it needs. All geometries are assumed to share one planar
// coordinate reference system; nothing here reprojects, dissolves or
// repairs geometry.
package geometry

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// Point is one assignable entity: an identifier, a planar coordinate and
// the attribute bag it was loaded with. Points are immutable during
// assignment; new columns are written through PointSet.SetAttr.
type Point struct {
	ID    string
	Coord geom.Coord
	Attrs map[string]string
}

// Attr returns the named attribute or "" when absent.
func (p Point) Attr(name string) string {
	return p.Attrs[name]
}

// PointSet is an ordered collection of points.
type PointSet struct {
	Name   string
	Points []Point
}

// NewPointSet creates a point set with the given name.
func NewPointSet(name string, points []Point) *PointSet {
	return &PointSet{Name: name, Points: points}
}

// Len returns the number of points.
func (ps *PointSet) Len() int {
	if ps == nil {
		return 0
	}
	return len(ps.Points)
}

// SetAttr writes an attribute on the i-th point, allocating the bag on
// first use.
func (ps *PointSet) SetAttr(i int, name, value string) {
	if ps.Points[i].Attrs == nil {
		ps.Points[i].Attrs = make(map[string]string, 1)
	}
	ps.Points[i].Attrs[name] = value
}

// Region is a polygon or multi-polygon with an identifier and an
// optional display name.
type Region struct {
	ID   string
	Name string
	Geom geom.T
}

// RegionSet is an ordered collection of regions. The input order is
// canonical: it decides which region wins when a point matches more than
// one. Regions are read-only once the set is built.
type RegionSet struct {
	Name    string
	Regions []Region

	index *regionIndex
}

// NewRegionSet builds a region set and its spatial index. Only Polygon
// and MultiPolygon geometries are accepted.
func NewRegionSet(name string, regions []Region) (*RegionSet, error) {
	for _, r := range regions {
		switch r.Geom.(type) {
		case *geom.Polygon, *geom.MultiPolygon:
		default:
			return nil, eris.Errorf("geometry: region %q has unsupported geometry type %T", r.ID, r.Geom)
		}
	}
	rs := &RegionSet{Name: name, Regions: regions}
	idx, err := newRegionIndex(regions)
	if err != nil {
		return nil, err
	}
	rs.index = idx
	return rs, nil
}

// Len returns the number of regions.
func (rs *RegionSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.Regions)
}

// Candidates returns the indices of regions whose bounding box comes
// within radius of the coordinate, in canonical order. It is a superset
// of the true matches; callers still run the exact predicates.
func (rs *RegionSet) Candidates(c geom.Coord, radius float64) []int {
	return rs.index.search(c, radius)
}
