package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func findFamily(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, fam := range families {
		if fam.GetName() == name {
			return fam
		}
	}
	t.Fatalf("metric %s not found", name)
	return nil
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	var total float64
	for _, m := range findFamily(t, reg, name).GetMetric() {
		if c := m.GetCounter(); c != nil {
			total += c.GetValue()
		}
	}
	return total
}

func TestCronJobMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCronJobMetrics(reg)

	m.ObserveDuration("pending-retry", 120*time.Millisecond)
	m.IncSuccess("pending-retry")
	m.IncFailure("pending-retry")
	m.IncSuccess("")

	if got := counterValue(t, reg, "sync_job_success"); got != 2 {
		t.Fatalf("sync_job_success = %v, want 2", got)
	}
	if got := counterValue(t, reg, "sync_job_failure"); got != 1 {
		t.Fatalf("sync_job_failure = %v, want 1", got)
	}
}

func TestLedgerMetricsNilSafe(t *testing.T) {
	var m *LedgerMetrics
	m.ObserveCompute("account", time.Second)
	m.IncDegraded("account")
	m.IncStaleDiscard()
	m.IncPendingCleared()
}

func TestLedgerMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLedgerMetrics(reg)

	m.IncDegraded("all")
	m.IncStaleDiscard()
	m.IncStaleDiscard()

	if got := counterValue(t, reg, "ledger_degraded_views"); got != 1 {
		t.Fatalf("ledger_degraded_views = %v", got)
	}
	if got := counterValue(t, reg, "ledger_stale_results_discarded"); got != 2 {
		t.Fatalf("ledger_stale_results_discarded = %v", got)
	}
}
