package logic

// EdgeDetector raises once per excursion above a threshold.
// It re-arms only after a reading at or below the threshold is seen,
// so a sustained excursion produces a single edge.
type EdgeDetector struct {
	threshold int
	above     bool
}

// NewEdgeDetector creates a detector that starts below the threshold.
func NewEdgeDetector(threshold int) *EdgeDetector {
	return &EdgeDetector{threshold: threshold}
}

// Observe feeds one reading and reports whether it is a rising edge
// (previous state at or below threshold, this reading above it).
func (d *EdgeDetector) Observe(reading int) bool {
	if reading > d.threshold {
		if d.above {
			return false
		}
		d.above = true
		return true
	}
	d.above = false
	return false
}

// Above reports whether the last observed reading was above the threshold.
func (d *EdgeDetector) Above() bool {
	return d.above
}

// Threshold returns the configured threshold.
func (d *EdgeDetector) Threshold() int {
	return d.threshold
}
