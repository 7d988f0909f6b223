package driven

import "time"

// Request outcome labels.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// MetricsRecorder records request metrics.
// This is an optional service - when nil, nothing is recorded.
type MetricsRecorder interface {
	// RecordRequest records the duration and outcome of one request.
	RecordRequest(operation, status string, duration time.Duration)
}
