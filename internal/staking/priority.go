package staking

// Priority ranks a stake suggestion for the analyst
type Priority string

const (
	PriorityCritical Priority = "CRITICAL"
	PriorityHigh     Priority = "HIGH"
	PriorityMedium   Priority = "MEDIUM"
	PriorityLow      Priority = "LOW"
)

// Composite blends edge, engine confidence and calibration strength
func Composite(edge, confidence, calibrationFactor float64) float64 {
	if edge <= 0 || confidence <= 0 || calibrationFactor <= 0 {
		return 0
	}
	return edge * confidence * calibrationFactor
}

// PriorityFor buckets a composite score
func PriorityFor(composite float64) Priority {
	switch {
	case composite > 0.15:
		return PriorityCritical
	case composite > 0.08:
		return PriorityHigh
	case composite > 0.04:
		return PriorityMedium
	default:
		return PriorityLow
	}
}
