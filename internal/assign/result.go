package assign

import (
	"sort"

	"github.com/energy-tools/regiomap/internal/geometry"
)

// Match is the resolved assignment for one point. A point that could not
// be matched carries the Unknown region identifier; there is no nil
// state.
type Match struct {
	RegionID string
	// Radius is the buffer radius at which the match was found; 0 for
	// strict containment and for unresolved points.
	Radius float64
	// Ambiguous marks matches where more than one region qualified and
	// the first in canonical order was taken.
	Ambiguous bool
	// Discarded lists the region identifiers dropped by conflict
	// resolution, in canonical order.
	Discarded []string
}

// Unresolved reports whether the point could not be matched to any
// region within the buffer limit.
func (m Match) Unresolved() bool {
	return m.RegionID == Unknown
}

// Summary counts the outcomes of one assignment run.
type Summary struct {
	Total     int
	Strict    int
	Buffered  int
	Unknown   int
	Ambiguous int
	// Rungs is the number of ladder steps that actually ran.
	Rungs int
	// MaxRadius is the largest buffer radius that produced a match.
	MaxRadius float64
}

// Result is the total mapping from point identifier to Match produced by
// one assignment run. Every input point is present exactly once.
type Result struct {
	Column  string
	ByPoint map[string]Match
	Summary Summary
}

// Value returns the assigned region identifier for a point, or Unknown
// for identifiers that were not part of the run.
func (r *Result) Value(pointID string) string {
	if m, ok := r.ByPoint[pointID]; ok {
		return m.RegionID
	}
	return Unknown
}

// Unresolved returns the sorted identifiers of all points assigned the
// Unknown sentinel.
func (r *Result) Unresolved() []string {
	var ids []string
	for id, m := range r.ByPoint {
		if m.Unresolved() {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Apply writes the assignment column into the point set, one value per
// point. The region set is never touched.
func (r *Result) Apply(ps *geometry.PointSet) {
	for i := range ps.Points {
		ps.SetAttr(i, r.Column, r.Value(ps.Points[i].ID))
	}
}
