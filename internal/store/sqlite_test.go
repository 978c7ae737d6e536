package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/energy-tools/regiomap/internal/assign"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func testRun(id string) (Run, []PointAssignment) {
	run := Run{
		ID: id, Dataset: "power_plants", Column: "federal_states",
		Step: 0.05, Limit: 1.0, Total: 3, Strict: 2, Buffered: 1, Unknown: 0,
	}
	assignments := []PointAssignment{
		{RunID: id, PointID: "p1", RegionID: "SH", Radius: 0},
		{RunID: id, PointID: "p2", RegionID: "NI", Radius: 0},
		{RunID: id, PointID: "p3", RegionID: "SH", Radius: 0.05, Ambiguous: true},
	}
	return run, assignments
}

func TestSaveAndGetRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, assignments := testRun("run-1")
	require.NoError(t, s.SaveRun(ctx, run, assignments))

	got, err := s.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "power_plants", got.Dataset)
	assert.Equal(t, "federal_states", got.Column)
	assert.Equal(t, 0.05, got.Step)
	assert.Equal(t, 1, got.Buffered)
	assert.False(t, got.CreatedAt.IsZero())

	stored, err := s.ListAssignments(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, stored, 3)
	assert.Equal(t, "p3", stored[2].PointID)
	assert.True(t, stored[2].Ambiguous)
}

func TestGetRunNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetRun(context.Background(), "nope")
	require.Error(t, err)
	assert.ErrorContains(t, err, "not found")
}

func TestListRunsFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run1, a1 := testRun("run-1")
	require.NoError(t, s.SaveRun(ctx, run1, a1))

	run2, a2 := testRun("run-2")
	run2.Dataset = "weather_cells"
	for i := range a2 {
		a2[i].RunID = "run-2"
	}
	require.NoError(t, s.SaveRun(ctx, run2, a2))

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	weather, err := s.ListRuns(ctx, RunFilter{Dataset: "weather_cells"})
	require.NoError(t, err)
	require.Len(t, weather, 1)
	assert.Equal(t, "run-2", weather[0].ID)
}

func TestDeleteRunCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, assignments := testRun("run-1")
	require.NoError(t, s.SaveRun(ctx, run, assignments))
	require.NoError(t, s.SaveAggregates(ctx, []Aggregate{
		{RunID: "run-1", RegionID: "SH", Metric: "capacity", Value: 12.5},
	}))

	require.NoError(t, s.DeleteRun(ctx, "run-1"))

	_, err := s.GetRun(ctx, "run-1")
	require.Error(t, err)

	stored, err := s.ListAssignments(ctx, "run-1")
	require.NoError(t, err)
	assert.Empty(t, stored)

	assert.Error(t, s.DeleteRun(ctx, "run-1"), "second delete reports missing run")
}

func TestRunFromResult(t *testing.T) {
	res := &assign.Result{
		Column: "federal_states",
		ByPoint: map[string]assign.Match{
			"b": {RegionID: "NI"},
			"a": {RegionID: "SH", Radius: 0.05, Ambiguous: true, Discarded: []string{"NI"}},
			"c": {RegionID: assign.Unknown},
		},
		Summary: assign.Summary{Total: 3, Strict: 1, Buffered: 1, Unknown: 1},
	}

	run, assignments := RunFromResult("power_plants", assign.DefaultOptions("federal_states"), res)

	assert.NotEmpty(t, run.ID)
	assert.Equal(t, 3, run.Total)
	require.Len(t, assignments, 3)
	assert.Equal(t, "a", assignments[0].PointID, "sorted by point id")
	assert.True(t, assignments[0].Ambiguous)
	assert.Equal(t, assign.Unknown, assignments[2].RegionID)
}
