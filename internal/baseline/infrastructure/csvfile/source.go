package csvfile

import (
	"context"
	"errors"
	"os"
	"time"

	baseline "highxofy/internal/baseline/domain"
)

// Source reads a demand file and an optional holiday file.
type Source struct {
	demandPath  string
	holidayPath string
	location    *time.Location
}

// SourceOption configures a Source.
type SourceOption func(*Source)

// WithLocation reads timestamps without an offset in loc.
func WithLocation(loc *time.Location) SourceOption {
	return func(s *Source) {
		if loc != nil {
			s.location = loc
		}
	}
}

// NewSource builds a file-backed source. An empty holidayPath means no
// public holidays.
func NewSource(demandPath, holidayPath string, opts ...SourceOption) (*Source, error) {
	if demandPath == "" {
		return nil, errors.New("csv source: empty demand path")
	}
	s := &Source{demandPath: demandPath, holidayPath: holidayPath, location: time.UTC}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// LoadDemand reads the demand file and keeps rows within [from, to).
func (s *Source) LoadDemand(ctx context.Context, from, to time.Time) ([]baseline.DemandRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(s.demandPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := ReadDemand(file, s.demandPath, s.location)
	if err != nil {
		return nil, err
	}
	if from.IsZero() && to.IsZero() {
		return records, nil
	}
	filtered := records[:0]
	for _, r := range records {
		if !from.IsZero() && r.Timestamp.Before(from) {
			continue
		}
		if !to.IsZero() && !r.Timestamp.Before(to) {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered, nil
}

// LoadHolidays reads the holiday file, if any.
func (s *Source) LoadHolidays(ctx context.Context) (baseline.HolidaySet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.holidayPath == "" {
		return baseline.NewHolidaySet(), nil
	}
	file, err := os.Open(s.holidayPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadHolidays(file, s.holidayPath, s.location)
}
