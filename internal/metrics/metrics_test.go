package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func delta(t *testing.T, collector prometheus.Collector, observe func()) float64 {
	t.Helper()

	before := testutil.ToFloat64(collector)
	observe()
	after := testutil.ToFloat64(collector)
	return after - before
}

func TestEngineRecords(t *testing.T) {
	m := NewEngine()
	start := time.Now().Add(-time.Second)

	if inc := delta(t, engineOperationsTotal.WithLabelValues("contribute", "success"), func() {
		m.Observe("contribute", nil, start)
	}); inc != 1 {
		t.Fatalf("expected engine success counter increment, got %v", inc)
	}

	if inc := delta(t, engineOperationsTotal.WithLabelValues("contribute", "error"), func() {
		m.Observe("contribute", errors.New("boom"), start)
	}); inc != 1 {
		t.Fatalf("expected engine error counter increment, got %v", inc)
	}
}

func TestStateRepositoryRecords(t *testing.T) {
	m := NewStateRepository()
	start := time.Now().Add(-time.Millisecond)

	if inc := delta(t, stateRepositoryOperationsTotal.WithLabelValues("save_position", "success"), func() {
		m.Observe("save_position", nil, start)
	}); inc != 1 {
		t.Fatalf("expected state repository counter increment, got %v", inc)
	}

	m.Observe("load_state", errors.New("corrupt"), start)
}

func TestJournalRepositoryRecords(t *testing.T) {
	m := NewJournalRepository()
	start := time.Now().Add(-100 * time.Millisecond)

	if inc := delta(t, journalRepositoryOperationsTotal.WithLabelValues("insert_events", "error"), func() {
		m.Observe("insert_events", errors.New("unreachable"), start)
	}); inc != 1 {
		t.Fatalf("expected journal error counter increment, got %v", inc)
	}

	m.Observe("insert_events", nil, start)
}

func TestTokenClientRecords(t *testing.T) {
	m := NewTokenClient("")
	start := time.Now().Add(-200 * time.Millisecond)

	if inc := delta(t, tokenClientRequestsTotal.WithLabelValues("transfer_into", "unknown", "success"), func() {
		m.Observe("transfer_into", nil, start)
	}); inc != 1 {
		t.Fatalf("expected token client counter increment, got %v", inc)
	}

	m.Observe("transfer_out", errors.New("oops"), start)
}

func TestReconcilerRecords(t *testing.T) {
	m := NewReconciler()
	start := time.Now().Add(-time.Second)

	if inc := delta(t, reconcilerRunsTotal.WithLabelValues("success"), func() {
		m.ObserveRun(nil, start)
	}); inc != 1 {
		t.Fatalf("expected reconciler run counter increment, got %v", inc)
	}

	m.ObserveProblems(3)
	if got := testutil.ToFloat64(reconcilerProblems); got != 3 {
		t.Fatalf("expected problems gauge 3, got %v", got)
	}
	m.ObserveProblems(0)
}
