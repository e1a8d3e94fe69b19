package metrics

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"highxofy/internal/baseline/application/eventbus"
	"highxofy/internal/baseline/application/events"
)

const (
	metricPrefix = "highxofy_"

	ResultSuccess = "success"
	ResultError   = "error"
)

// Metrics bundles calculation metrics.
type Metrics struct {
	RunsTotal        *prometheus.CounterVec
	RunDuration      prometheus.Histogram
	RecordsTotal     *prometheus.CounterVec
	UndefinedTotal   *prometheus.CounterVec
	ExportsTotal     *prometheus.CounterVec
	LastRunTimestamp prometheus.Gauge
	LastRunRecords   prometheus.Gauge
	registerer       prometheus.Registerer
}

// New constructs metrics and registers them on reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "runs_total",
				Help: "Total baseline calculations by result",
			},
			[]string{"result"},
		),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    metricPrefix + "run_duration_seconds",
			Help:    "Baseline calculation duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		RecordsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "records_total",
				Help: "Records processed by day type",
			},
			[]string{"day_type"},
		),
		UndefinedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "undefined_results_total",
				Help: "Records without a high x of y result by day type",
			},
			[]string{"day_type"},
		),
		ExportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "exports_total",
				Help: "Result exports by format and result",
			},
			[]string{"format", "result"},
		),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "last_run_timestamp_seconds",
			Help: "Unix time of the last successful calculation",
		}),
		LastRunRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "last_run_records",
			Help: "Records produced by the last successful calculation",
		}),
		registerer: reg,
	}
	reg.MustRegister(
		m.RunsTotal,
		m.RunDuration,
		m.RecordsTotal,
		m.UndefinedTotal,
		m.ExportsTotal,
		m.LastRunTimestamp,
		m.LastRunRecords,
	)
	return m
}

// ObserveRun records a calculation outcome.
func (m *Metrics) ObserveRun(result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(result).Inc()
	m.RunDuration.Observe(duration.Seconds())
}

// ObserveExport records an export outcome.
func (m *Metrics) ObserveExport(format, result string) {
	if m == nil {
		return
	}
	m.ExportsTotal.WithLabelValues(format, result).Inc()
}

// Subscribe keeps partition and run gauges current from calculation events.
func (m *Metrics) Subscribe(bus eventbus.EventBus) {
	if m == nil || bus == nil {
		return
	}
	eventbus.On(bus, func(_ context.Context, evt events.PartitionCalculated) error {
		m.RecordsTotal.WithLabelValues(evt.DayType).Add(float64(evt.Records))
		m.UndefinedTotal.WithLabelValues(evt.DayType).Add(float64(evt.Undefined))
		return nil
	})
	eventbus.On(bus, func(_ context.Context, evt events.BaselineCalculated) error {
		m.LastRunTimestamp.Set(float64(evt.OccurredAt.Unix()))
		m.LastRunRecords.Set(float64(evt.Records))
		return nil
	})
}

// RegisterStoredResults exposes the stored result row count of a table.
func (m *Metrics) RegisterStoredResults(db *sql.DB, table string, logger *log.Logger) {
	if m == nil || db == nil || table == "" {
		return
	}
	m.registerer.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "stored_results",
			Help: "Stored baseline result rows",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM "+table)
		},
	))
}

func queryCount(db *sql.DB, logger *log.Logger, query string) float64 {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	var count int64
	if err := db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		if logger != nil {
			logger.Printf("metrics query failed: %v", err)
		}
		return 0
	}
	if count < 0 {
		return 0
	}
	return float64(count)
}
