package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncPredictionCreated is a no-op.
func (n *NoopRecorder) IncPredictionCreated() {}

// IncPredictionDeleted is a no-op.
func (n *NoopRecorder) IncPredictionDeleted() {}

// ObserveScoringDuration is a no-op.
func (n *NoopRecorder) ObserveScoringDuration(duration time.Duration) {}

// IncListCacheHit is a no-op.
func (n *NoopRecorder) IncListCacheHit() {}

// IncListCacheMiss is a no-op.
func (n *NoopRecorder) IncListCacheMiss() {}

// IncUserRegistered is a no-op.
func (n *NoopRecorder) IncUserRegistered() {}

// IncLogin is a no-op.
func (n *NoopRecorder) IncLogin(status string) {}
