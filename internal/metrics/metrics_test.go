package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/models"
)

func TestObservePlan(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	plan := calculator.SettlementPlan{
		Settlements: []calculator.SettlementTransaction{
			{From: models.Member{UserID: "b"}, To: models.Member{UserID: "a"}, Amount: "30.00", Cents: 3000},
			{From: models.Member{UserID: "c"}, To: models.Member{UserID: "a"}, Amount: "12.34", Cents: 1234},
		},
		TransactionCount: 2,
	}
	m.ObservePlan("g1", plan, 5*time.Millisecond)
	m.ObserveFailure()

	if got := testutil.ToFloat64(m.PlansTotal.WithLabelValues(OutcomeOK)); got != 1 {
		t.Errorf("ok plans = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.PlansTotal.WithLabelValues(OutcomeError)); got != 1 {
		t.Errorf("failed plans = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Outstanding.WithLabelValues("g1")); got != 42.34 {
		t.Errorf("outstanding = %v, want 42.34", got)
	}
	if got := testutil.CollectAndCount(m.Transactions); got != 1 {
		t.Errorf("transactions histogram series = %d, want 1", got)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObservePlan("g1", calculator.SettlementPlan{}, time.Second)
	m.ObserveFailure()
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveFailure()

	path := filepath.Join(t.TempDir(), "settleup.prom")
	if err := WriteTextfile(path, reg); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read textfile: %v", err)
	}
	if !strings.Contains(string(data), `settleup_plans_total{outcome="error"} 1`) {
		t.Errorf("textfile missing failure counter:\n%s", data)
	}
}
