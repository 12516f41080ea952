package handler

import (
	"fmt"
	"net/http"

	"github.com/cardiopredict/cardiopredict/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "cardiopredict_predictions_created_total %d\n", snap.PredictionsCreated)
	writeMetric(w, "cardiopredict_predictions_deleted_total %d\n", snap.PredictionsDeleted)
	writeMetric(w, "cardiopredict_scoring_duration_seconds_count %d\n", snap.ScoringDurationCount)
	writeMetric(w, "cardiopredict_scoring_duration_seconds_sum %.6f\n", float64(snap.ScoringDurationTotalNs)/1e9)

	writeMetric(w, "cardiopredict_prediction_list_cache_hits_total %d\n", snap.ListCacheHits)
	writeMetric(w, "cardiopredict_prediction_list_cache_misses_total %d\n", snap.ListCacheMisses)

	writeMetric(w, "cardiopredict_users_registered_total %d\n", snap.UsersRegistered)
	writeMetric(w, "cardiopredict_logins_total{status=\"success\"} %d\n", snap.LoginsSucceeded)
	writeMetric(w, "cardiopredict_logins_total{status=\"failed\"} %d\n", snap.LoginsFailed)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
