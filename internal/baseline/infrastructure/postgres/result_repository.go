package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	baseline "highxofy/internal/baseline/domain"
)

// DefaultResultTable stores one row per subject and timestamp.
const DefaultResultTable = "baseline_results"

// ResultRepository is a Postgres implementation of baseline.ResultRepository.
type ResultRepository struct {
	db    *sql.DB
	table string
}

// ResultOption configures the repository.
type ResultOption func(*ResultRepository)

// WithResultTable overrides the default table name.
func WithResultTable(table string) ResultOption {
	return func(repo *ResultRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// NewResultRepository creates a repository using the default table name.
func NewResultRepository(db *sql.DB, opts ...ResultOption) *ResultRepository {
	repo := &ResultRepository{db: db, table: DefaultResultTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// Table returns the backing table name.
func (r *ResultRepository) Table() string { return r.table }

// EnsureSchema creates the result table when it does not exist.
func (r *ResultRepository) EnsureSchema(ctx context.Context) error {
	if r == nil || r.db == nil {
		return errors.New("result repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	subject_id TEXT NOT NULL,
	ts TIMESTAMPTZ NOT NULL,
	date DATE NOT NULL,
	day_of_week SMALLINT NOT NULL,
	is_public_holiday BOOLEAN NOT NULL,
	is_weekday BOOLEAN NOT NULL,
	day_type TEXT NOT NULL,
	unit_num INTEGER NOT NULL,
	demand DOUBLE PRECISION NULL,
	invoked_unit SMALLINT NOT NULL,
	dr_invoked_day INTEGER NOT NULL,
	mean_daily_demand_for_dr DOUBLE PRECISION NULL,
	demand_lags JSONB NOT NULL,
	dr_invoked_day_lags JSONB NOT NULL,
	mean_high_x_of_y DOUBLE PRECISION NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (subject_id, ts)
)`, r.table))
	return err
}

// SaveResults upserts all results in one transaction.
func (r *ResultRepository) SaveResults(ctx context.Context, subjectID string, results []baseline.ResultRecord) error {
	if r == nil || r.db == nil {
		return errors.New("result repo: nil db")
	}
	if subjectID == "" {
		return baseline.ErrEmptySubjectID
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
INSERT INTO %s (
	subject_id,
	ts,
	date,
	day_of_week,
	is_public_holiday,
	is_weekday,
	day_type,
	unit_num,
	demand,
	invoked_unit,
	dr_invoked_day,
	mean_daily_demand_for_dr,
	demand_lags,
	dr_invoked_day_lags,
	mean_high_x_of_y
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
)
ON CONFLICT (subject_id, ts)
DO UPDATE SET
	date = EXCLUDED.date,
	day_of_week = EXCLUDED.day_of_week,
	is_public_holiday = EXCLUDED.is_public_holiday,
	is_weekday = EXCLUDED.is_weekday,
	day_type = EXCLUDED.day_type,
	unit_num = EXCLUDED.unit_num,
	demand = EXCLUDED.demand,
	invoked_unit = EXCLUDED.invoked_unit,
	dr_invoked_day = EXCLUDED.dr_invoked_day,
	mean_daily_demand_for_dr = EXCLUDED.mean_daily_demand_for_dr,
	demand_lags = EXCLUDED.demand_lags,
	dr_invoked_day_lags = EXCLUDED.dr_invoked_day_lags,
	mean_high_x_of_y = EXCLUDED.mean_high_x_of_y,
	updated_at = NOW()`, r.table))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, result := range results {
		demandLags, err := json.Marshal(result.DemandDaysAgo)
		if err != nil {
			return err
		}
		invokedLags, err := json.Marshal(result.DRInvokedDayDaysAgo)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(
			ctx,
			subjectID,
			result.Timestamp,
			result.Date,
			int(result.DayOfWeek),
			result.IsPublicHoliday,
			result.IsWeekday,
			string(result.DayType),
			result.UnitNum,
			nullFloat(result.Demand),
			result.InvokedUnit,
			result.DRInvokedDay,
			nullFloat(result.MeanDailyDemandForDR),
			string(demandLags),
			string(invokedLags),
			nullFloat(result.MeanHighXOfY),
		); err != nil {
			return fmt.Errorf("upsert %s: %w", result.Timestamp.Format(time.RFC3339), err)
		}
	}
	return tx.Commit()
}

// ListResults lists stored results ordered by timestamp.
func (r *ResultRepository) ListResults(ctx context.Context, subjectID string, q baseline.ResultQuery) ([]baseline.ResultRecord, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("result repo: nil db")
	}
	if subjectID == "" {
		return nil, baseline.ErrEmptySubjectID
	}

	where := []string{"subject_id = $1"}
	args := []any{subjectID}
	if !q.From.IsZero() {
		args = append(args, q.From)
		where = append(where, fmt.Sprintf("ts >= $%d", len(args)))
	}
	if !q.To.IsZero() {
		args = append(args, q.To)
		where = append(where, fmt.Sprintf("ts < $%d", len(args)))
	}
	if q.DayType != "" {
		args = append(args, string(q.DayType))
		where = append(where, fmt.Sprintf("day_type = $%d", len(args)))
	}
	limit := ""
	if q.Limit > 0 {
		limit = fmt.Sprintf("\nLIMIT %d", q.Limit)
	}

	query := fmt.Sprintf(`
SELECT
	ts,
	date,
	day_of_week,
	is_public_holiday,
	is_weekday,
	day_type,
	unit_num,
	demand,
	invoked_unit,
	dr_invoked_day,
	mean_daily_demand_for_dr,
	demand_lags,
	dr_invoked_day_lags,
	mean_high_x_of_y
FROM %s
WHERE %s
ORDER BY ts ASC%s`, r.table, strings.Join(where, "\n\tAND "), limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []baseline.ResultRecord
	for rows.Next() {
		record, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanResult(scanner interface{ Scan(dest ...any) error }) (baseline.ResultRecord, error) {
	var (
		ts              time.Time
		date            time.Time
		dayOfWeek       int
		isPublicHoliday bool
		isWeekday       bool
		dayType         string
		unitNum         int
		demand          sql.NullFloat64
		invokedUnit     int
		drInvokedDay    int
		meanForDR       sql.NullFloat64
		demandLags      []byte
		invokedLags     []byte
		meanHighXOfY    sql.NullFloat64
	)
	if err := scanner.Scan(
		&ts,
		&date,
		&dayOfWeek,
		&isPublicHoliday,
		&isWeekday,
		&dayType,
		&unitNum,
		&demand,
		&invokedUnit,
		&drInvokedDay,
		&meanForDR,
		&demandLags,
		&invokedLags,
		&meanHighXOfY,
	); err != nil {
		return baseline.ResultRecord{}, err
	}

	parsedType, err := baseline.ParseDayType(dayType)
	if err != nil {
		return baseline.ResultRecord{}, err
	}

	var record baseline.ResultRecord
	record.Timestamp = ts
	record.Demand = floatPtr(demand)
	record.InvokedUnit = invokedUnit
	record.Date = date
	record.DayOfWeek = baseline.Weekday(dayOfWeek)
	record.IsPublicHoliday = isPublicHoliday
	record.IsWeekday = isWeekday
	record.UnitNum = unitNum
	record.DRInvokedDay = drInvokedDay
	record.MeanDailyDemandForDR = floatPtr(meanForDR)
	if err := json.Unmarshal(demandLags, &record.DemandDaysAgo); err != nil {
		return baseline.ResultRecord{}, fmt.Errorf("decode demand_lags: %w", err)
	}
	if err := json.Unmarshal(invokedLags, &record.DRInvokedDayDaysAgo); err != nil {
		return baseline.ResultRecord{}, fmt.Errorf("decode dr_invoked_day_lags: %w", err)
	}
	record.DayType = parsedType
	record.MeanHighXOfY = floatPtr(meanHighXOfY)
	return record, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return baseline.Float(v.Float64)
}
