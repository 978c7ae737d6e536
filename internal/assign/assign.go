package assign

import (
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/energy-tools/regiomap/internal/geometry"
)

// Assign maps every point in the set onto exactly one region identifier.
// It runs a strict containment pass first, then grows search buffers
// along the ladder for whatever is left, and fills the Unknown sentinel
// for points that never match. The returned result is total: one value
// per input point, no nulls. The inputs are never mutated.
func Assign(points *geometry.PointSet, regions *geometry.RegionSet, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	n := points.Len()
	res := &Result{
		Column:  opts.Column,
		ByPoint: make(map[string]Match, n),
		Summary: Summary{Total: n},
	}

	log := zap.L().With(
		zap.String("column", opts.Column),
		zap.String("points", points.Name),
	)

	if n == 0 {
		log.Info("assign: no points, nothing to do")
		return res, nil
	}

	if regions.Len() == 0 {
		for _, p := range points.Points {
			res.ByPoint[p.ID] = Match{RegionID: Unknown}
		}
		res.Summary.Unknown = n
		log.Warn("assign: empty region set, all points unknown", zap.Int("points", n))
		return res, nil
	}

	log.Info("assign: joining points to regions",
		zap.Int("points", n),
		zap.Int("regions", regions.Len()),
	)

	matches := make([]Match, n)
	done := make([]bool, n)
	workers := opts.workers()

	// Strict containment pass over all points.
	all := make([]int, n)
	for i := range all {
		all[i] = i
	}
	applyHits(points, regions, res, matches, done, all, evaluate(points, regions, all, 0, workers), 0)

	unmatched := remaining(done, all)
	res.Summary.Strict = n - len(unmatched)

	switch {
	case len(unmatched) == 0:
		log.Info("assign: buffering not necessary")
	case opts.Limit == 0:
		log.Info("assign: buffering disabled, limit is 0", zap.Int("unmatched", len(unmatched)))
	default:
		log.Info("assign: buffering points without strict match",
			zap.Int("unmatched", len(unmatched)),
			zap.Float64("share_pct", pct(len(unmatched), n)),
		)
	}
	if len(unmatched)*5 > n && opts.Limit > 0 {
		log.Warn("assign: share of points without strict match seems too high",
			zap.Float64("share_pct", pct(len(unmatched), n)),
		)
	}

	for _, radius := range (Ladder{Step: opts.Step, Limit: opts.Limit}).Radii() {
		if len(unmatched) == 0 {
			break
		}
		res.Summary.Rungs++

		applyHits(points, regions, res, matches, done, unmatched,
			evaluate(points, regions, unmatched, radius, workers), radius)
		unmatched = remaining(done, unmatched)

		log.Info("assign: buffer rung complete",
			zap.Float64("radius", radius),
			zap.Int("remaining", len(unmatched)),
		)
		if len(unmatched) == 0 {
			log.Info("assign: all points matched after buffering")
		}
	}

	for _, i := range unmatched {
		matches[i] = Match{RegionID: Unknown}
		done[i] = true
		log.Warn("assign: no region found within buffer limit",
			zap.String("point", points.Points[i].ID),
			zap.Float64("limit", opts.Limit),
		)
	}
	res.Summary.Unknown = len(unmatched)

	for i, p := range points.Points {
		res.ByPoint[p.ID] = matches[i]
	}
	res.Summary.Buffered = n - res.Summary.Strict - res.Summary.Unknown

	log.Info("assign: complete",
		zap.Int("total", res.Summary.Total),
		zap.Int("strict", res.Summary.Strict),
		zap.Int("buffered", res.Summary.Buffered),
		zap.Int("unknown", res.Summary.Unknown),
		zap.Int("rungs", res.Summary.Rungs),
	)
	return res, nil
}

// evaluate tests each listed point against its candidate regions and
// returns the matching region indices per point, in canonical order.
// Radius 0 means strict containment; larger radii use the buffered
// intersects predicate. Points are independent within a rung, so the
// work fans out across workers; the result layout does not depend on
// scheduling.
func evaluate(points *geometry.PointSet, regions *geometry.RegionSet, idxs []int, radius float64, workers int) [][]int {
	hits := make([][]int, len(idxs))

	var g errgroup.Group
	g.SetLimit(workers)

	chunk := (len(idxs) + workers - 1) / workers
	if chunk < 1 {
		chunk = 1
	}
	for start := 0; start < len(idxs); start += chunk {
		start := start
		end := min(start+chunk, len(idxs))
		g.Go(func() error {
			for k := start; k < end; k++ {
				p := points.Points[idxs[k]]
				for _, ri := range regions.Candidates(p.Coord, radius) {
					rg := regions.Regions[ri].Geom
					var match bool
					if radius == 0 {
						match = geometry.Within(p.Coord, rg)
					} else {
						match = geometry.IntersectsBuffer(p.Coord, rg, radius)
					}
					if match {
						hits[k] = append(hits[k], ri)
					}
				}
			}
			return nil
		})
	}
	_ = g.Wait()
	return hits
}

// applyHits merges one pass's hits into the match state in point order.
func applyHits(points *geometry.PointSet, regions *geometry.RegionSet, res *Result, matches []Match, done []bool, idxs []int, hits [][]int, radius float64) {
	for k, regionIdxs := range hits {
		i := idxs[k]
		switch len(regionIdxs) {
		case 0:
		case 1:
			matches[i] = Match{RegionID: regions.Regions[regionIdxs[0]].ID, Radius: radius}
			done[i] = true
		default:
			matches[i] = resolveConflict(points.Points[i], regionIdxs, regions, radius)
			done[i] = true
			res.Summary.Ambiguous++
		}
		if done[i] && radius > res.Summary.MaxRadius {
			res.Summary.MaxRadius = radius
		}
	}
}

// resolveConflict keeps the first region in canonical order and records
// the discarded alternatives. The policy is stable across runs; it is
// not a nearest-region guarantee.
func resolveConflict(p geometry.Point, regionIdxs []int, regions *geometry.RegionSet, radius float64) Match {
	kept := regions.Regions[regionIdxs[0]]
	discarded := make([]string, 0, len(regionIdxs)-1)
	for _, ri := range regionIdxs[1:] {
		discarded = append(discarded, regions.Regions[ri].ID)
	}

	zap.L().Warn("assign: multiple regions matched, first taken",
		zap.String("point", p.ID),
		zap.String("kept", kept.ID),
		zap.Strings("discarded", discarded),
		zap.Float64("radius", radius),
	)
	if radius > 0 {
		zap.L().Warn("assign: use a smaller step to avoid ambiguous buffer matches")
	}

	return Match{RegionID: kept.ID, Radius: radius, Ambiguous: true, Discarded: discarded}
}

// remaining filters idxs down to the ones still unmatched, preserving
// order.
func remaining(done []bool, idxs []int) []int {
	var out []int
	for _, i := range idxs {
		if !done[i] {
			out = append(out, i)
		}
	}
	return out
}

func pct(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
