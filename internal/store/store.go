// Package store persists assignment runs and their regional aggregates
// so downstream models can reuse them without re-running the join.
package store

import (
	"context"
	"time"
)

// Run is one recorded assignment invocation.
type Run struct {
	ID        string
	Dataset   string
	Column    string
	Step      float64
	Limit     float64
	Total     int
	Strict    int
	Buffered  int
	Unknown   int
	CreatedAt time.Time
}

// PointAssignment is the persisted outcome for a single point.
type PointAssignment struct {
	RunID     string
	PointID   string
	RegionID  string
	Radius    float64
	Ambiguous bool
}

// Aggregate is one regional metric derived from a run, e.g. capacity or
// inhabitants per region.
type Aggregate struct {
	RunID    string
	RegionID string
	Metric   string
	Value    float64
}

// RunFilter narrows ListRuns.
type RunFilter struct {
	Dataset string
	Limit   int
}

// Store is the persistence interface for assignment runs.
type Store interface {
	Migrate(ctx context.Context) error
	SaveRun(ctx context.Context, run Run, assignments []PointAssignment) error
	SaveAggregates(ctx context.Context, aggregates []Aggregate) error
	GetRun(ctx context.Context, runID string) (*Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]Run, error)
	ListAssignments(ctx context.Context, runID string) ([]PointAssignment, error)
	DeleteRun(ctx context.Context, runID string) error
	Close() error
}
