package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	PredictionsCreated     uint64
	PredictionsDeleted     uint64
	ScoringDurationCount   uint64
	ScoringDurationTotalNs int64
	ListCacheHits          uint64
	ListCacheMisses        uint64
	UsersRegistered        uint64
	LoginsSucceeded        uint64
	LoginsFailed           uint64
}

// InMemoryRecorder keeps counters in process memory.
// It backs the /metrics endpoint and is used by tests.
type InMemoryRecorder struct {
	predictionsCreated     uint64
	predictionsDeleted     uint64
	scoringDurationCount   uint64
	scoringDurationTotalNs int64
	listCacheHits          uint64
	listCacheMisses        uint64
	usersRegistered        uint64
	loginsSucceeded        uint64
	loginsFailed           uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		PredictionsCreated:     atomic.LoadUint64(&m.predictionsCreated),
		PredictionsDeleted:     atomic.LoadUint64(&m.predictionsDeleted),
		ScoringDurationCount:   atomic.LoadUint64(&m.scoringDurationCount),
		ScoringDurationTotalNs: atomic.LoadInt64(&m.scoringDurationTotalNs),
		ListCacheHits:          atomic.LoadUint64(&m.listCacheHits),
		ListCacheMisses:        atomic.LoadUint64(&m.listCacheMisses),
		UsersRegistered:        atomic.LoadUint64(&m.usersRegistered),
		LoginsSucceeded:        atomic.LoadUint64(&m.loginsSucceeded),
		LoginsFailed:           atomic.LoadUint64(&m.loginsFailed),
	}
}

// IncPredictionCreated increments the created counter.
func (m *InMemoryRecorder) IncPredictionCreated() {
	atomic.AddUint64(&m.predictionsCreated, 1)
}

// IncPredictionDeleted increments the deleted counter.
func (m *InMemoryRecorder) IncPredictionDeleted() {
	atomic.AddUint64(&m.predictionsDeleted, 1)
}

// ObserveScoringDuration records one scorer invocation.
func (m *InMemoryRecorder) ObserveScoringDuration(duration time.Duration) {
	atomic.AddUint64(&m.scoringDurationCount, 1)
	atomic.AddInt64(&m.scoringDurationTotalNs, duration.Nanoseconds())
}

// IncListCacheHit increments the list cache hit counter.
func (m *InMemoryRecorder) IncListCacheHit() {
	atomic.AddUint64(&m.listCacheHits, 1)
}

// IncListCacheMiss increments the list cache miss counter.
func (m *InMemoryRecorder) IncListCacheMiss() {
	atomic.AddUint64(&m.listCacheMisses, 1)
}

// IncUserRegistered increments the registration counter.
func (m *InMemoryRecorder) IncUserRegistered() {
	atomic.AddUint64(&m.usersRegistered, 1)
}

// IncLogin counts a login attempt by outcome.
func (m *InMemoryRecorder) IncLogin(status string) {
	if status == "success" {
		atomic.AddUint64(&m.loginsSucceeded, 1)
		return
	}
	atomic.AddUint64(&m.loginsFailed, 1)
}
