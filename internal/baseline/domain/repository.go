package baseline

import (
	"context"
	"time"
)

// DemandSource supplies the raw demand table and the holiday calendar.
// A zero from or to leaves that side of the range open.
type DemandSource interface {
	LoadDemand(ctx context.Context, from, to time.Time) ([]DemandRecord, error)
	LoadHolidays(ctx context.Context) (HolidaySet, error)
}

// ResultQuery filters stored results. Zero values match everything.
type ResultQuery struct {
	From    time.Time
	To      time.Time
	DayType DayType
	Limit   int
}

// Matches reports whether a result falls inside the query.
func (q ResultQuery) Matches(r ResultRecord) bool {
	if !q.From.IsZero() && r.Timestamp.Before(q.From) {
		return false
	}
	if !q.To.IsZero() && !r.Timestamp.Before(q.To) {
		return false
	}
	if q.DayType != "" && r.DayType != q.DayType {
		return false
	}
	return true
}

// ResultRepository stores calculated results per subject (site or meter).
type ResultRepository interface {
	SaveResults(ctx context.Context, subjectID string, results []ResultRecord) error
	ListResults(ctx context.Context, subjectID string, query ResultQuery) ([]ResultRecord, error)
}
