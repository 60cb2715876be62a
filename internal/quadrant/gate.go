package quadrant

// Thresholds are the minimum quadrant scores for a run to be healthy.
type Thresholds struct {
	Requirement float64 `json:"requirement" yaml:"requirement"`
	Temporal    float64 `json:"temporal" yaml:"temporal"`
}

// DefaultThresholds returns the stock gate: 85% requirement, 35% temporal.
func DefaultThresholds() Thresholds {
	return Thresholds{Requirement: 0.85, Temporal: 0.35}
}

// Gate reports whether coverage meets both thresholds.
func Gate(q Quadrants, th Thresholds) bool {
	return q.Requirement >= th.Requirement && q.Temporal >= th.Temporal
}

// TestsPassed is true when every test in the report passed. An empty report
// did not pass.
func (c Coverage) TestsPassed() bool {
	return c.Total > 0 && c.Passed == c.Total
}
