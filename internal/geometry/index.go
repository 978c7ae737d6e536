package geometry

import (
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// rectEpsilon pads degenerate bounding boxes; rtreego rejects rects with
// non-positive side lengths.
const rectEpsilon = 1e-9

// regionEntry wraps a region index for R-tree storage.
type regionEntry struct {
	idx  int
	bbox rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (e *regionEntry) Bounds() rtreego.Rect {
	return e.bbox
}

// regionIndex is an R-tree over region bounding boxes used to prune the
// candidate set before the exact predicates run.
type regionIndex struct {
	tree *rtreego.Rtree
}

func newRegionIndex(regions []Region) (*regionIndex, error) {
	tree := rtreego.NewTree(2, 25, 50)
	for i, r := range regions {
		rect, err := boundsRect(r.Geom.Bounds())
		if err != nil {
			return nil, eris.Wrapf(err, "geometry: index region %q", r.ID)
		}
		tree.Insert(&regionEntry{idx: i, bbox: rect})
	}
	return &regionIndex{tree: tree}, nil
}

// search returns candidate region indices for a disk of the given radius
// around c, sorted into canonical order.
func (ri *regionIndex) search(c geom.Coord, radius float64) []int {
	r := radius
	if r < rectEpsilon {
		r = rectEpsilon
	}
	rect, err := rtreego.NewRect(
		rtreego.Point{c[0] - r, c[1] - r},
		[]float64{2 * r, 2 * r},
	)
	if err != nil {
		return nil
	}

	results := ri.tree.SearchIntersect(rect)
	idxs := make([]int, 0, len(results))
	for _, item := range results {
		idxs = append(idxs, item.(*regionEntry).idx)
	}
	sort.Ints(idxs)
	return idxs
}

func boundsRect(b *geom.Bounds) (rtreego.Rect, error) {
	lengths := []float64{
		b.Max(0) - b.Min(0),
		b.Max(1) - b.Min(1),
	}
	for i, l := range lengths {
		if l < rectEpsilon {
			lengths[i] = rectEpsilon
		}
	}
	return rtreego.NewRect(rtreego.Point{b.Min(0), b.Min(1)}, lengths)
}
