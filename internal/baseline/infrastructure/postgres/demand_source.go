package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	baseline "highxofy/internal/baseline/domain"
)

const (
	defaultDemandTable  = "demand_records"
	defaultHolidayTable = "public_holidays"
)

// DemandSource reads the demand table and holiday calendar of one subject.
type DemandSource struct {
	db           *sql.DB
	subjectID    string
	demandTable  string
	holidayTable string
	loc          *time.Location
}

// SourceOption configures a DemandSource.
type SourceOption func(*DemandSource)

// WithDemandTable overrides the default demand table name.
func WithDemandTable(table string) SourceOption {
	return func(s *DemandSource) {
		if table != "" {
			s.demandTable = table
		}
	}
}

// WithHolidayTable overrides the default holiday table name.
func WithHolidayTable(table string) SourceOption {
	return func(s *DemandSource) {
		if table != "" {
			s.holidayTable = table
		}
	}
}

// WithLocation sets the calendar used for the date and day-of-week of each
// demand row. TIMESTAMPTZ values are converted into loc before classification.
func WithLocation(loc *time.Location) SourceOption {
	return func(s *DemandSource) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// NewDemandSource constructs a subject-scoped source.
func NewDemandSource(db *sql.DB, subjectID string, opts ...SourceOption) *DemandSource {
	source := &DemandSource{
		db:           db,
		subjectID:    subjectID,
		demandTable:  defaultDemandTable,
		holidayTable: defaultHolidayTable,
		loc:          time.UTC,
	}
	for _, opt := range opts {
		opt(source)
	}
	return source
}

// LoadDemand returns demand rows within [from, to) ordered by timestamp.
func (s *DemandSource) LoadDemand(ctx context.Context, from, to time.Time) ([]baseline.DemandRecord, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("demand source: nil db")
	}
	if s.subjectID == "" {
		return nil, baseline.ErrEmptySubjectID
	}

	where := []string{"subject_id = $1"}
	args := []any{s.subjectID}
	if !from.IsZero() {
		args = append(args, from)
		where = append(where, fmt.Sprintf("ts >= $%d", len(args)))
	}
	if !to.IsZero() {
		args = append(args, to)
		where = append(where, fmt.Sprintf("ts < $%d", len(args)))
	}

	query := fmt.Sprintf(`
SELECT ts, demand, invoked_unit
FROM %s
WHERE %s
ORDER BY ts ASC`, s.demandTable, strings.Join(where, "\n\tAND "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []baseline.DemandRecord
	for rows.Next() {
		var (
			ts          time.Time
			demand      sql.NullFloat64
			invokedUnit int
		)
		if err := rows.Scan(&ts, &demand, &invokedUnit); err != nil {
			return nil, err
		}
		record, err := s.demandRecord(len(records)+1, ts, demand, invokedUnit)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// demandRecord maps one scanned row. row is 1-based.
func (s *DemandSource) demandRecord(row int, ts time.Time, demand sql.NullFloat64, invokedUnit int) (baseline.DemandRecord, error) {
	record := baseline.DemandRecord{Timestamp: ts.In(s.loc), InvokedUnit: invokedUnit}
	if demand.Valid {
		record.Demand = baseline.Float(demand.Float64)
	}
	if err := record.Validate(); err != nil {
		return baseline.DemandRecord{}, &baseline.ParseError{
			Source: s.demandTable,
			Row:    row,
			Field:  "invoked_unit",
			Value:  fmt.Sprint(invokedUnit),
			Err:    err,
		}
	}
	return record, nil
}

// LoadHolidays returns every public holiday. DATE values are kept as
// scanned so the calendar date is not shifted by the source location.
func (s *DemandSource) LoadHolidays(ctx context.Context) (baseline.HolidaySet, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("demand source: nil db")
	}
	query := fmt.Sprintf(`SELECT holiday_date FROM %s ORDER BY holiday_date ASC`, s.holidayTable)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	holidays := baseline.NewHolidaySet()
	for rows.Next() {
		var date time.Time
		if err := rows.Scan(&date); err != nil {
			return nil, err
		}
		holidays.Add(date)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return holidays, nil
}
