package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"highxofy/internal/baseline/application/eventbus"
	"highxofy/internal/baseline/application/events"
	baseline "highxofy/internal/baseline/domain"
	"highxofy/internal/observability/metrics"
)

// Clock provides time for the application layer.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Result is the outcome of one calculation.
type Result struct {
	SubjectID string
	Records   []baseline.ResultRecord
	Summary   baseline.Summary
}

// Calculator runs the high x of y pipeline with weekday and holiday
// partitions computed concurrently.
type Calculator struct {
	cfg     baseline.Config
	bus     eventbus.EventBus
	metrics *metrics.Metrics
	logger  *log.Logger
	clock   Clock
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithEventBus publishes partition and run events on bus.
func WithEventBus(bus eventbus.EventBus) Option {
	return func(c *Calculator) { c.bus = bus }
}

// WithMetrics records run outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Calculator) { c.metrics = m }
}

// WithLogger overrides the discard logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Calculator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock overrides the system clock.
func WithClock(clock Clock) Option {
	return func(c *Calculator) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// NewCalculator validates cfg before any row is processed.
func NewCalculator(cfg baseline.Config, opts ...Option) (*Calculator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Calculator{
		cfg:    cfg,
		logger: log.New(io.Discard, "", 0),
		clock:  systemClock{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Config returns the calculation config.
func (c *Calculator) Config() baseline.Config { return c.cfg }

// Calculate sorts records by timestamp, classifies them and computes each
// day type partition. Weekday results precede holiday results.
func (c *Calculator) Calculate(ctx context.Context, subjectID string, records []baseline.DemandRecord, holidays baseline.HolidaySet) (*Result, error) {
	if c == nil {
		return nil, errors.New("baseline calculator: nil")
	}
	if subjectID == "" {
		return nil, baseline.ErrEmptySubjectID
	}
	started := c.clock.Now()
	result, err := c.calculate(ctx, subjectID, records, holidays)
	duration := c.clock.Now().Sub(started)
	if err != nil {
		c.metrics.ObserveRun(metrics.ResultError, duration)
		c.logger.Printf("baseline_run_failed subject=%s records=%d err=%v", subjectID, len(records), err)
		return nil, err
	}
	c.metrics.ObserveRun(metrics.ResultSuccess, duration)

	defined := 0
	for _, p := range result.Summary.Partitions {
		defined += p.Defined
	}
	evt := events.BaselineCalculated{
		SubjectID:  subjectID,
		Records:    len(result.Records),
		Defined:    defined,
		Duration:   duration,
		OccurredAt: c.clock.Now(),
	}
	if len(result.Records) > 0 {
		evt.FirstAt, evt.LastAt = timeRange(result.Records)
	}
	if err := c.publish(ctx, evt); err != nil {
		return nil, err
	}
	c.logger.Printf("baseline_run_done subject=%s records=%d defined=%d duration=%s", subjectID, len(result.Records), defined, duration)
	return result, nil
}

func (c *Calculator) calculate(ctx context.Context, subjectID string, records []baseline.DemandRecord, holidays baseline.HolidaySet) (*Result, error) {
	parts, err := baseline.Split(records, holidays, c.cfg)
	if err != nil {
		return nil, err
	}

	outputs := make([][]baseline.ResultRecord, len(baseline.DayTypes))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, dayType := range baseline.DayTypes {
		i, dayType := i, dayType
		partition := parts[dayType]
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			out, err := baseline.CalculatePartition(partition, c.cfg, dayType)
			if err != nil {
				return fmt.Errorf("%s partition: %w", dayType, err)
			}
			outputs[i] = out
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	for i, dayType := range baseline.DayTypes {
		out := outputs[i]
		params, _ := c.cfg.ParamsFor(dayType)
		undefined := 0
		for _, r := range out {
			if !r.HasResult() {
				undefined++
			}
		}
		c.logger.Printf("baseline_partition_done subject=%s day_type=%s x=%d y=%d records=%d undefined=%d", subjectID, dayType, params.X, params.Y, len(out), undefined)
		if err := c.publish(ctx, events.PartitionCalculated{
			SubjectID:  subjectID,
			DayType:    string(dayType),
			X:          params.X,
			Y:          params.Y,
			Records:    len(out),
			Undefined:  undefined,
			OccurredAt: c.clock.Now(),
		}); err != nil {
			return nil, err
		}
	}

	merged := baseline.Merge(outputs...)
	return &Result{
		SubjectID: subjectID,
		Records:   merged,
		Summary:   baseline.Summarize(merged, c.cfg),
	}, nil
}

func (c *Calculator) publish(ctx context.Context, event any) error {
	if c.bus == nil {
		return nil
	}
	return c.bus.Publish(ctx, event)
}

func timeRange(records []baseline.ResultRecord) (time.Time, time.Time) {
	first, last := records[0].Timestamp, records[0].Timestamp
	for _, r := range records[1:] {
		if r.Timestamp.Before(first) {
			first = r.Timestamp
		}
		if r.Timestamp.After(last) {
			last = r.Timestamp
		}
	}
	return first, last
}
