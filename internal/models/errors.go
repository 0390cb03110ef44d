package models

import "errors"

// Error taxonomy shared by every engine. Call sites wrap these with context,
// callers test with errors.Is.
var (
	// ErrInvalidConfig indicates caller misuse of a run configuration
	ErrInvalidConfig = errors.New("invalid config")

	// ErrInvalidScoreline indicates a malformed historical record
	ErrInvalidScoreline = errors.New("invalid scoreline")

	// ErrInvalidOdds indicates decimal odds at or below 1.0
	ErrInvalidOdds = errors.New("invalid odds")

	// ErrInsufficientHistory indicates the pattern matcher had no usable input
	ErrInsufficientHistory = errors.New("insufficient history")
)

// Warning is a non-fatal condition attached to a result
type Warning string

const (
	// WarningCalibrationSkipped is raised when the sample is too small to calibrate safely
	WarningCalibrationSkipped Warning = "calibration_skipped"
	// WarningPatternUnavailable is raised when a comparison ran on the simulator alone
	WarningPatternUnavailable Warning = "pattern_unavailable"
	// WarningRecordsSkipped is raised when malformed historical records were dropped
	WarningRecordsSkipped Warning = "records_skipped"
)
