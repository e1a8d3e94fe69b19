package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"highxofy/internal/baseline/application/eventbus"
	"highxofy/internal/baseline/application/events"
)

func TestSubscribeTracksEvents(t *testing.T) {
	m := New(prometheus.NewRegistry())
	bus := eventbus.NewInMemoryBus()
	m.Subscribe(bus)

	ctx := context.Background()
	_ = bus.Publish(ctx, events.PartitionCalculated{DayType: "weekday", Records: 10, Undefined: 3})
	_ = bus.Publish(ctx, events.PartitionCalculated{DayType: "holiday", Records: 4, Undefined: 4})
	occurred := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	_ = bus.Publish(ctx, events.BaselineCalculated{Records: 14, OccurredAt: occurred})

	if got := testutil.ToFloat64(m.RecordsTotal.WithLabelValues("weekday")); got != 10 {
		t.Fatalf("expected 10 weekday records, got %v", got)
	}
	if got := testutil.ToFloat64(m.UndefinedTotal.WithLabelValues("holiday")); got != 4 {
		t.Fatalf("expected 4 undefined holiday results, got %v", got)
	}
	if got := testutil.ToFloat64(m.LastRunRecords); got != 14 {
		t.Fatalf("expected last run records 14, got %v", got)
	}
	if got := testutil.ToFloat64(m.LastRunTimestamp); got != float64(occurred.Unix()) {
		t.Fatalf("unexpected last run timestamp %v", got)
	}
}

func TestObserveRunAndExport(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveRun(ResultSuccess, 250*time.Millisecond)
	m.ObserveRun(ResultError, time.Second)
	m.ObserveExport("xlsx", ResultSuccess)

	if got := testutil.ToFloat64(m.RunsTotal.WithLabelValues(ResultSuccess)); got != 1 {
		t.Fatalf("expected 1 success, got %v", got)
	}
	if got := testutil.CollectAndCount(m.RunDuration); got != 1 {
		t.Fatalf("expected histogram collected, got %d", got)
	}
	if got := testutil.ToFloat64(m.ExportsTotal.WithLabelValues("xlsx", ResultSuccess)); got != 1 {
		t.Fatalf("expected 1 export, got %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveRun(ResultSuccess, time.Second)
	m.ObserveExport("pdf", ResultError)
	m.Subscribe(eventbus.NewInMemoryBus())
	m.RegisterStoredResults(nil, "baseline_results", nil)
}
