// Package assign maps every point of a point set onto exactly one region
// of a region set. A strict containment pass handles the common case;
// points that fall through (gaps between region polygons, boundary
// coordinates, offshore sites) are retried with progressively larger
// search buffers until they match or the buffer limit is reached. Points
// that never match are assigned the "unknown" sentinel, never dropped.
package assign

import (
	"math"
	"runtime"

	"github.com/rotisserie/eris"
)

// Unknown is the sentinel region identifier for points that could not be
// matched within the buffer limit.
const Unknown = "unknown"

// Default buffer ladder parameters, in the linear units of the input
// CRS. For the German datasets this module was built around these are
// degrees.
const (
	DefaultStep  = 0.05
	DefaultLimit = 1.0
)

// Options configures one assignment run.
type Options struct {
	// Column names the attribute written into the point set.
	Column string
	// Step is the additive buffer increment per ladder rung.
	Step float64
	// Limit caps the buffer radius. Limit 0 disables buffering and
	// performs a strict-containment join only.
	Limit float64
	// Workers bounds the parallel predicate evaluation per rung.
	// Zero means GOMAXPROCS.
	Workers int
}

// DefaultOptions returns options with the default buffer ladder.
func DefaultOptions(column string) Options {
	return Options{Column: column, Step: DefaultStep, Limit: DefaultLimit}
}

// Validate checks the options before the loop starts. A non-positive
// step with a positive limit would never terminate and is rejected here
// rather than looping forever.
func (o Options) Validate() error {
	if o.Column == "" {
		return eris.New("assign: output column name is required")
	}
	if o.Limit < 0 {
		return eris.Errorf("assign: buffer limit must not be negative, got %v", o.Limit)
	}
	if o.Limit > 0 && o.Step <= 0 {
		return eris.Errorf("assign: buffer step must be positive when limit is %v, got %v", o.Limit, o.Step)
	}
	if math.IsNaN(o.Step) || math.IsNaN(o.Limit) || math.IsInf(o.Step, 0) || math.IsInf(o.Limit, 0) {
		return eris.New("assign: step and limit must be finite")
	}
	return nil
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.GOMAXPROCS(0)
}
