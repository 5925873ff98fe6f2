package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics tracks reconciliation passes over the merged ledger.
type LedgerMetrics struct {
	computeDuration *prometheus.HistogramVec
	degradedViews   *prometheus.CounterVec
	staleDiscards   prometheus.Counter
	pendingCleared  prometheus.Counter
}

// NewLedgerMetrics registers the reconciliation metrics on the provided registerer.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	computeDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledger_compute_duration_seconds",
		Help:    "Duration of merge+balance passes in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"view"})
	degradedViews := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_degraded_views",
		Help: "Views served from cached/local data because the remote ledger was unreachable.",
	}, []string{"view"})
	staleDiscards := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ledger_stale_results_discarded",
		Help: "Fetch results discarded because a newer request superseded them.",
	})
	pendingCleared := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ledger_pending_entries_cleared",
		Help: "Pending entries promoted out of the local queue after remote confirmation.",
	})
	reg.MustRegister(computeDuration, degradedViews, staleDiscards, pendingCleared)
	return &LedgerMetrics{
		computeDuration: computeDuration,
		degradedViews:   degradedViews,
		staleDiscards:   staleDiscards,
		pendingCleared:  pendingCleared,
	}
}

// ObserveCompute records the duration of one merge+balance pass.
func (m *LedgerMetrics) ObserveCompute(view string, duration time.Duration) {
	if m == nil || m.computeDuration == nil {
		return
	}
	m.computeDuration.WithLabelValues(normalizeLabel(view)).Observe(duration.Seconds())
}

// IncDegraded increments the degraded-view counter.
func (m *LedgerMetrics) IncDegraded(view string) {
	if m == nil || m.degradedViews == nil {
		return
	}
	m.degradedViews.WithLabelValues(normalizeLabel(view)).Inc()
}

// IncStaleDiscard increments the stale-result counter.
func (m *LedgerMetrics) IncStaleDiscard() {
	if m == nil || m.staleDiscards == nil {
		return
	}
	m.staleDiscards.Inc()
}

// IncPendingCleared increments the promoted-pending counter.
func (m *LedgerMetrics) IncPendingCleared() {
	if m == nil || m.pendingCleared == nil {
		return
	}
	m.pendingCleared.Inc()
}
