// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Prediction metrics
	IncPredictionCreated()
	IncPredictionDeleted()
	ObserveScoringDuration(duration time.Duration)

	// Prediction list cache
	IncListCacheHit()
	IncListCacheMiss()

	// Account metrics
	IncUserRegistered()
	IncLogin(status string) // status: "success" or "failed"
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
