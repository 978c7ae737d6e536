package store

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/energy-tools/regiomap/internal/assign"
)

// RunFromResult converts an assignment result into a Run record with a
// fresh identifier and its per-point assignment rows, sorted by point id
// for stable storage order.
func RunFromResult(dataset string, opts assign.Options, res *assign.Result) (Run, []PointAssignment) {
	run := Run{
		ID:        uuid.New().String(),
		Dataset:   dataset,
		Column:    res.Column,
		Step:      opts.Step,
		Limit:     opts.Limit,
		Total:     res.Summary.Total,
		Strict:    res.Summary.Strict,
		Buffered:  res.Summary.Buffered,
		Unknown:   res.Summary.Unknown,
		CreatedAt: time.Now().UTC(),
	}

	assignments := make([]PointAssignment, 0, len(res.ByPoint))
	for pointID, m := range res.ByPoint {
		assignments = append(assignments, PointAssignment{
			RunID:     run.ID,
			PointID:   pointID,
			RegionID:  m.RegionID,
			Radius:    m.Radius,
			Ambiguous: m.Ambiguous,
		})
	}
	sort.Slice(assignments, func(i, j int) bool {
		return assignments[i].PointID < assignments[j].PointID
	})

	return run, assignments
}

// AggregatesFromMap flattens a region → value map into aggregate rows.
func AggregatesFromMap(runID, metric string, byRegion map[string]float64) []Aggregate {
	out := make([]Aggregate, 0, len(byRegion))
	for region, value := range byRegion {
		out = append(out, Aggregate{RunID: runID, RegionID: region, Metric: metric, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RegionID < out[j].RegionID })
	return out
}
