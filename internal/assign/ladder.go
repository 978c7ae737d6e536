package assign

// Ladder is the monotonically increasing sequence of buffer radii used
// to grow the search window around unmatched points. Radii start at
// Step and grow additively; the final rung is clamped to Limit so the
// search never exceeds the configured ceiling.
type Ladder struct {
	Step  float64
	Limit float64
}

// Radii materializes the ladder: {step, 2·step, …, limit}. The result is
// empty when buffering is disabled (limit 0) or the step is not
// positive.
func (l Ladder) Radii() []float64 {
	if l.Limit <= 0 || l.Step <= 0 {
		return nil
	}

	// Radii are computed by multiplication, not accumulation, so a long
	// ladder does not drift.
	var radii []float64
	for i := 1; ; i++ {
		r := l.Step * float64(i)
		if r >= l.Limit {
			radii = append(radii, l.Limit)
			return radii
		}
		radii = append(radii, r)
	}
}
